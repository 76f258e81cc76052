package redisstore

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec converts buffer values to and from their Redis representation.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

// JSONCodec stores values as JSON. It is the default.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec[V]) Decode(data []byte) (V, error) {
	var v V
	err := json.Unmarshal(data, &v)
	return v, err
}

// YAMLCodec stores values as YAML documents.
type YAMLCodec[V any] struct{}

func (YAMLCodec[V]) Encode(v V) ([]byte, error) { return yaml.Marshal(v) }

func (YAMLCodec[V]) Decode(data []byte) (V, error) {
	var v V
	err := yaml.Unmarshal(data, &v)
	return v, err
}

// StringCodec stores strings verbatim.
type StringCodec struct{}

func (StringCodec) Encode(v string) ([]byte, error)    { return []byte(v), nil }
func (StringCodec) Decode(data []byte) (string, error) { return string(data), nil }

var (
	_ Codec[int]    = JSONCodec[int]{}
	_ Codec[int]    = YAMLCodec[int]{}
	_ Codec[string] = StringCodec{}
)
