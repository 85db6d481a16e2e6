package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/nao1215/threatdesk/internal/model"
)

// fixedClock returns a deterministic time source for text normalization.
func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// TestNormalizeFormatSelection tests extension dispatch.
func TestNormalizeFormatSelection(t *testing.T) {
	t.Parallel()

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		if _, err := n.Normalize("data.yaml", []byte("a: 1")); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("missing extension", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		if _, err := n.Normalize("data", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("DATA.JSON", []byte(`[{"a":1}]`))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("got %d records, expected 1", len(records))
		}
	})
}

// TestNormalizeJSON tests JSON normalization.
func TestNormalizeJSON(t *testing.T) {
	t.Parallel()

	t.Run("array yields one record per element", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("feed.json", []byte(`[{"ip":"1.2.3.4"},{"ip":"5.6.7.8"},{"ip":"9.9.9.9"}]`))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, expected 3", len(records))
		}

		// Array order is preserved.
		expected := []string{"1.2.3.4", "5.6.7.8", "9.9.9.9"}
		for i, want := range expected {
			if got, _ := records[i].GetString("ip"); got != want {
				t.Errorf("records[%d].ip = %q, expected %q", i, got, want)
			}
		}
	})

	t.Run("single object yields one record", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("one.json", []byte(`{"alert":"breach","count":2}`))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, expected 1", len(records))
		}
		if got, _ := records[0].GetString("alert"); got != "breach" {
			t.Errorf("alert = %q, expected %q", got, "breach")
		}
		if got, _ := records[0].GetNumber("count"); got != 2 {
			t.Errorf("count = %v, expected 2", got)
		}
	})

	t.Run("scalar value is wrapped", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("scalar.json", []byte(`"lone string"`))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, expected 1", len(records))
		}
		if got, _ := records[0].GetString("value"); got != "lone string" {
			t.Errorf("value = %q, expected %q", got, "lone string")
		}
	})

	t.Run("array of scalars wraps each element", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("nums.json", []byte(`[1,2]`))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, expected 2", len(records))
		}
		if got, _ := records[0].GetNumber("value"); got != 1 {
			t.Errorf("records[0].value = %v, expected 1", got)
		}
	})

	t.Run("malformed JSON fails with ErrInvalidJSON", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("bad.json", []byte(`{"a":`))
		if !errors.Is(err, ErrInvalidJSON) {
			t.Errorf("expected ErrInvalidJSON, got %v", err)
		}
		if records != nil {
			t.Errorf("expected no partial results, got %v", records)
		}
	})
}

// TestNormalizeCSV tests CSV normalization.
func TestNormalizeCSV(t *testing.T) {
	t.Parallel()

	t.Run("header defines field names positionally", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("data.csv", []byte("name,value\na,1\nb,2\n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, expected 2", len(records))
		}
		if got, _ := records[0].GetString("name"); got != "a" {
			t.Errorf("records[0].name = %q, expected %q", got, "a")
		}
		if got, _ := records[0].GetString("value"); got != "1" {
			t.Errorf("records[0].value = %q, expected %q", got, "1")
		}
		if got, _ := records[1].GetString("name"); got != "b" {
			t.Errorf("records[1].name = %q, expected %q", got, "b")
		}
	})

	t.Run("short rows fill missing fields with empty strings", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("short.csv", []byte("a,b,c\n1,2\n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, expected 1", len(records))
		}
		if got, ok := records[0].GetString("c"); !ok || got != "" {
			t.Errorf("records[0].c = (%q, %v), expected (%q, true)", got, ok, "")
		}
	})

	t.Run("extra values beyond the header are dropped", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("long.csv", []byte("a,b\n1,2,3,4\n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records[0]) != 2 {
			t.Errorf("record has %d fields, expected 2", len(records[0]))
		}
	})

	t.Run("values and names are trimmed", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("pad.csv", []byte(" name , value \n  a  ,  1  \n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if got, ok := records[0].GetString("name"); !ok || got != "a" {
			t.Errorf("name = (%q, %v), expected (%q, true)", got, ok, "a")
		}
	})

	t.Run("no quoting support: a comma always splits", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("quoted.csv", []byte("a,b\n\"hello, world\",x\n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if got, _ := records[0].GetString("a"); got != `"hello` {
			t.Errorf("a = %q, expected %q", got, `"hello`)
		}
		if got, _ := records[0].GetString("b"); got != `world"` {
			t.Errorf("b = %q, expected %q", got, `world"`)
		}
	})

	t.Run("header-only file fails with ErrInsufficientRows", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		if _, err := n.Normalize("header.csv", []byte("name,value\n")); !errors.Is(err, ErrInsufficientRows) {
			t.Errorf("expected ErrInsufficientRows, got %v", err)
		}
	})

	t.Run("empty file fails with ErrInsufficientRows", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		if _, err := n.Normalize("empty.csv", []byte("\n\n")); !errors.Is(err, ErrInsufficientRows) {
			t.Errorf("expected ErrInsufficientRows, got %v", err)
		}
	})

	t.Run("blank lines between rows are skipped", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("gaps.csv", []byte("a,b\n\n1,2\n   \n3,4\n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("got %d records, expected 2", len(records))
		}
	})
}

// TestNormalizeXML tests XML normalization.
func TestNormalizeXML(t *testing.T) {
	t.Parallel()

	t.Run("harvests item, record, and entry elements in document order", func(t *testing.T) {
		t.Parallel()

		input := `<feed>
			<item><ip>1.1.1.1</ip></item>
			<record><ip>2.2.2.2</ip></record>
			<entry><ip>3.3.3.3</ip></entry>
		</feed>`

		n := NewNormalizer()
		records, err := n.Normalize("feed.xml", []byte(input))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, expected 3", len(records))
		}

		expected := []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"}
		for i, want := range expected {
			if got, _ := records[i].GetString("ip"); got != want {
				t.Errorf("records[%d].ip = %q, expected %q", i, got, want)
			}
		}
	})

	t.Run("nested matches are harvested too", func(t *testing.T) {
		t.Parallel()

		input := `<feed><item><name>outer</name><record><name>inner</name></record></item></feed>`

		n := NewNormalizer()
		records, err := n.Normalize("nested.xml", []byte(input))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, expected 2", len(records))
		}
		if got, _ := records[0].GetString("name"); got != "outer" {
			t.Errorf("records[0].name = %q, expected %q", got, "outer")
		}
		if got, _ := records[1].GetString("name"); got != "inner" {
			t.Errorf("records[1].name = %q, expected %q", got, "inner")
		}
	})

	t.Run("matched element without children yields an empty record", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("bare.xml", []byte(`<feed><item>text only</item></feed>`))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, expected 1", len(records))
		}
		if len(records[0]) != 0 {
			t.Errorf("record has %d fields, expected 0", len(records[0]))
		}
	})

	t.Run("field text is trimmed", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("pad.xml", []byte("<feed><item><msg>\n  hello  \n</msg></item></feed>"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if got, _ := records[0].GetString("msg"); got != "hello" {
			t.Errorf("msg = %q, expected %q", got, "hello")
		}
	})

	t.Run("malformed XML fails with ErrInvalidXML", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		if _, err := n.Normalize("bad.xml", []byte(`<feed><item></feed>`)); !errors.Is(err, ErrInvalidXML) {
			t.Errorf("expected ErrInvalidXML, got %v", err)
		}
	})
}

// TestNormalizeText tests plain-text normalization.
func TestNormalizeText(t *testing.T) {
	t.Parallel()

	t.Run("one record per non-empty line, in order", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer(WithClock(fixedClock()))
		records, err := n.Normalize("log.txt", []byte("first line\n\nsecond line\n   \nthird line\n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, expected 3", len(records))
		}

		expected := []string{"first line", "second line", "third line"}
		for i, want := range expected {
			if got, _ := records[i].GetString("content"); got != want {
				t.Errorf("records[%d].content = %q, expected %q", i, got, want)
			}
			if got, _ := records[i].GetNumber("id"); got != float64(i+1) {
				t.Errorf("records[%d].id = %v, expected %d", i, got, i+1)
			}
		}
	})

	t.Run("timestamp is the capture time in RFC 3339", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer(WithClock(fixedClock()))
		records, err := n.Normalize("log.txt", []byte("entry\n"))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if got, _ := records[0].GetString("timestamp"); got != "2025-06-01T12:00:00Z" {
			t.Errorf("timestamp = %q, expected %q", got, "2025-06-01T12:00:00Z")
		}
	})

	t.Run("empty content yields no records", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		records, err := n.Normalize("empty.txt", []byte(""))
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("got %d records, expected 0", len(records))
		}
	})
}
