package ingest

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/nao1215/threatdesk/internal/model"
)

// xmlNode is a generic element tree: the element name, its child elements,
// and its direct character data.
type xmlNode struct {
	XMLName  xml.Name
	Children []xmlNode `xml:",any"`
	Text     string    `xml:",chardata"`
}

// parseXML parses the content as an XML document and harvests every element
// named item, record, or entry in document order, including elements nested
// inside other matches. Each matched element becomes one record whose fields
// are its direct child elements (field name = child tag, field value =
// child's trimmed text). A matched element without child elements produces
// an empty record, not an error.
func (n *Normalizer) parseXML(content []byte) ([]model.Record, error) {
	var root xmlNode
	if err := xml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidXML, err.Error())
	}

	var records []model.Record
	var walk func(node xmlNode)
	walk = func(node xmlNode) {
		if isRecordElement(node.XMLName.Local) {
			records = append(records, recordFromElement(node))
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(root)

	return records, nil
}

// isRecordElement reports whether the element name marks one data record.
func isRecordElement(name string) bool {
	switch name {
	case "item", "record", "entry":
		return true
	default:
		return false
	}
}

// recordFromElement builds a record from an element's direct children.
func recordFromElement(node xmlNode) model.Record {
	record := make(model.Record, len(node.Children))
	for _, child := range node.Children {
		record[child.XMLName.Local] = model.String(strings.TrimSpace(child.Text))
	}
	return record
}
