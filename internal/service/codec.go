package service

import (
	"connectrpc.com/connect"
	json "github.com/goccy/go-json"
)

// jsonCodec carries plain Go structs over Connect. It registers under the
// "json" name and so replaces the protobuf JSON codec for both handlers
// and clients.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON selects the JSON codec on a handler or client.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
