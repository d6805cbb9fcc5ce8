// Package codec turns typed messages into wire payloads and back.
package codec

import (
	"encoding/json"
	"fmt"
)

// Codec encodes and decodes values of one message type.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSON encodes messages as compact JSON.
type JSON[T any] struct{}

func (JSON[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }

func (JSON[T]) Decode(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}

// Funcs builds a Codec from a pair of functions.
type Funcs[T any] struct {
	EncodeFunc func(v T) ([]byte, error)
	DecodeFunc func(data []byte) (T, error)
}

func (c Funcs[T]) Encode(v T) ([]byte, error)    { return c.EncodeFunc(v) }
func (c Funcs[T]) Decode(data []byte) (T, error) { return c.DecodeFunc(data) }

var (
	_ Codec[any] = JSON[any]{}
	_ Codec[any] = Funcs[any]{}
)
