package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotEncodable is returned by StringEncoder for unsupported payload types.
var ErrNotEncodable = errors.New("kafka: payload not encodable")

// Encoder turns a pipeline payload into a record value.
type Encoder func(msg any) ([]byte, error)

// Decoder turns a record value into a pipeline payload.
type Decoder func(value []byte) (any, error)

// StringDecoder yields record values as strings.
var StringDecoder Decoder = func(value []byte) (any, error) {
	return string(value), nil
}

// BytesDecoder yields record values unchanged.
var BytesDecoder Decoder = func(value []byte) (any, error) {
	return value, nil
}

// StringEncoder encodes string, []byte and fmt.Stringer payloads.
var StringEncoder Encoder = func(msg any) ([]byte, error) {
	switch v := msg.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotEncodable, msg)
}

// JSONEncoder marshals payloads to JSON.
var JSONEncoder Encoder = func(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// JSONDecoder unmarshals record values into T.
func JSONDecoder[T any]() Decoder {
	return func(value []byte) (any, error) {
		var v T
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
