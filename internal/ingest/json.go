package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/nao1215/threatdesk/internal/model"
)

// parseJSON parses the whole content as one JSON value. An array becomes
// one record per element; any other value becomes a one-element sequence.
// Malformed input fails with ErrInvalidJSON and no partial results.
func (n *Normalizer) parseJSON(content []byte) ([]model.Record, error) {
	var value model.Value
	if err := json.Unmarshal(content, &value); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, err.Error())
	}

	if items, ok := value.AsArray(); ok {
		records := make([]model.Record, 0, len(items))
		for _, item := range items {
			records = append(records, recordFromValue(item))
		}
		return records, nil
	}

	return []model.Record{recordFromValue(value)}, nil
}

// recordFromValue converts one parsed JSON value into a record. Objects map
// field-for-field; any other shape is wrapped under a "value" field so
// scalar entries survive normalization.
func recordFromValue(v model.Value) model.Record {
	if obj, ok := v.AsObject(); ok {
		if obj == nil {
			return model.Record{}
		}
		return model.Record(obj)
	}
	return model.Record{"value": v}
}
