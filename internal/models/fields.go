package models

import (
	"encoding/json"
	"fmt"
)

// Fields is a partial object as received on the wire. A key is "present"
// whenever it appears in the JSON body, including with a null value.
type Fields map[string]json.RawMessage

var jsonNull = json.RawMessage("null")

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Raw returns the raw value for key, or JSON null when absent.
func (f Fields) Raw(key string) json.RawMessage {
	if raw, ok := f[key]; ok {
		return raw
	}
	return jsonNull
}

// DecodeField unmarshals the value stored under key into dst.
func (f Fields) DecodeField(key string, dst any) error {
	if err := json.Unmarshal(f.Raw(key), dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// Decode unmarshals the whole object into dst.
func (f Fields) Decode(dst any) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// Only returns a copy of f restricted to keys.
func (f Fields) Only(keys ...string) Fields {
	out := make(Fields, len(keys))
	for _, k := range keys {
		if raw, ok := f[k]; ok {
			out[k] = raw
		}
	}
	return out
}
