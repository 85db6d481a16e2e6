package model

import "encoding/json"

// Record is one normalized unit of ingested data: an open-ended key-value
// mapping with no fixed schema. Field sets vary by the producing format and
// source type. A record is exclusively owned by the record set of its
// source; it is never shared across sources.
type Record map[string]Value

// GetString returns the string content of the named field.
// The second return value is false when the field is absent or not a string.
func (r Record) GetString(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetNumber returns the numeric content of the named field. String fields
// are not coerced; a "port" of "8080" and a port of 8080 are different shapes
// and callers that accept both must check both.
func (r Record) GetNumber(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Text returns the compact JSON encoding of the record. It is used as the
// searchable text of a record (keyword heuristics) and as a short evidence
// rendering in report narratives.
func (r Record) Text() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(data)
}

// Clone returns a shallow copy of the record. Values are immutable from the
// caller's perspective, so a top-level copy is enough to protect the owning
// source's record set from mutation through accessor results.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
