package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one entry of a Payload.
type Field struct {
	Key   string
	Value any
}

// Payload is a JSON object that keeps its fields in insertion order.
type Payload []Field

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func NewPayload(fields ...Field) Payload {
	return Payload(fields)
}

// Get returns the value of the first field named key.
func (p Payload) Get(key string) (any, bool) {
	for _, f := range p {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy of p with the field appended.
func (p Payload) With(key string, value any) Payload {
	out := make(Payload, len(p), len(p)+1)
	copy(out, p)
	return append(out, Field{Key: key, Value: value})
}

// MarshalJSON writes the fields in order. Values that cannot be encoded are
// written as their fmt string form instead of failing the whole payload.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(f.Value)
		if err != nil {
			val, err = json.Marshal(fmt.Sprint(f.Value))
			if err != nil {
				return nil, err
			}
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
