// Package jsonl reads and writes the line oriented JSON files used for ledgers and
// market data. Objects are written with a stable field order so files stay
// diff friendly.
package jsonl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Object helps construct a JSON object with a specific field order.
// Its zero value is ready to use.
type Object struct {
	buf bytes.Buffer
	err error
}

// Append adds a new key-value pair to the JSON object.
func (w *Object) Append(key string, value any) *Object {
	if w.err != nil {
		return w
	}
	valBytes, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(valBytes)
	w.buf.WriteByte(',')
	return w
}

// Optional appends a key-value pair only if the value is not its type's zero value.
// Values implementing IsZero() bool (decimal, dates) are asked directly.
func (w *Object) Optional(key string, value any) *Object {
	if w.err != nil {
		return w
	}
	if z, ok := value.(interface{ IsZero() bool }); ok {
		if z.IsZero() {
			return w
		}
		return w.Append(key, value)
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// MarshalJSON returns the complete object.
func (w *Object) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	content := bytes.TrimSuffix(w.buf.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')
	return final, nil
}
