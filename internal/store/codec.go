package store

import (
	"encoding/json"
	"fmt"
)

// Documents are persisted as JSON field maps. Field values are limited to
// strings, timestamps and null; each value is wrapped in a small envelope so
// that timestamps survive the round-trip as Timestamp rather than decaying
// into plain numbers.

const (
	kindNull      = "null"
	kindString    = "string"
	kindTimestamp = "timestamp"
)

type fieldValue struct {
	Kind    string `json:"k"`
	Str     string `json:"s,omitempty"`
	Seconds int64  `json:"sec,omitempty"`
	Nanos   int32  `json:"ns,omitempty"`
}

func encodeFields(fields map[string]any) ([]byte, error) {
	enc := make(map[string]fieldValue, len(fields))
	for name, value := range fields {
		switch v := value.(type) {
		case nil:
			enc[name] = fieldValue{Kind: kindNull}
		case string:
			enc[name] = fieldValue{Kind: kindString, Str: v}
		case Timestamp:
			enc[name] = fieldValue{Kind: kindTimestamp, Seconds: v.Seconds, Nanos: v.Nanos}
		default:
			return nil, fmt.Errorf("field %q: unsupported value type %T", name, value)
		}
	}
	return json.Marshal(enc)
}

func decodeFields(data []byte) (map[string]any, error) {
	var enc map[string]fieldValue
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	fields := make(map[string]any, len(enc))
	for name, v := range enc {
		switch v.Kind {
		case kindNull:
			fields[name] = nil
		case kindString:
			fields[name] = v.Str
		case kindTimestamp:
			fields[name] = Timestamp{Seconds: v.Seconds, Nanos: v.Nanos}
		default:
			return nil, fmt.Errorf("field %q: unknown kind %q", name, v.Kind)
		}
	}
	return fields, nil
}
