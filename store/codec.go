package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The JSON codec shared by the document adapters. Documents travel
// through the gateway as their JSON encoding; equality matching
// compares the JSON encoding of the field against the query value.

// Encode marshals a record to its stored JSON form.
func Encode(doc any) (json.RawMessage, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}

// Decode unmarshals a stored document into dest.
func Decode(raw json.RawMessage, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DecodeList unmarshals a set of stored documents into dest, which must
// be a pointer to a slice of the record type.
func DecodeList(raws []json.RawMessage, dest any) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, raw := range raws {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')
	if err := json.Unmarshal(buf.Bytes(), dest); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	return nil
}

// Merge applies the partial update to a stored document and returns the
// new encoding.
func Merge(raw json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("merge document: %w", err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	return Encode(doc)
}

// WithID sets the document's "id" property, used by Add to mirror the
// generated id into the stored record.
func WithID(raw json.RawMessage, id string) (json.RawMessage, error) {
	return Merge(raw, map[string]any{"id": id})
}

// FieldMatches reports whether the document's JSON property equals the
// query value under JSON encoding.
func FieldMatches(raw json.RawMessage, field string, value any) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	got, ok := doc[field]
	if !ok {
		return false
	}
	want, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(want))
}
