package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Record is an opaque stored value. Its primary key lives in the field named
// by the owning store's key path; all other fields are carried through the
// local database and the wire untouched.
type Record map[string]any

// DecodeRecord parses a JSON object into a Record.
//
// Numbers are normalized: integral values become int64 and everything else
// becomes float64. Keys read back from storage therefore compare equal to
// the keys that were written.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: record is null", ErrDecodingRecord)
	}

	return Record(normalizeMap(raw)), nil
}

// DecodeRecords parses a JSON array of objects.
func DecodeRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		out = append(out, Record(normalizeMap(r)))
	}
	return out, nil
}

// Normalize converts a decoded JSON value the same way DecodeRecord does.
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
		return t
	case float32:
		return Normalize(float64(t))
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case map[string]any:
		return normalizeMap(t)
	case Record:
		return Record(normalizeMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Pick returns a record holding only the named fields that are present.
func (r Record) Pick(fields ...string) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Merge copies every field of other into r, overwriting existing values.
func (r Record) Merge(other Record) {
	maps.Copy(r, other)
}
