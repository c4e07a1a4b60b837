package rpc

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec replaces connect's protojson codec so plain Go structs from the
// models package can travel over the Connect protocol.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	// an empty body is a request with every field unset
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// JSONCodec returns the codec the portal handlers speak, for connect clients
func JSONCodec() connect.Codec {
	return jsonCodec{}
}
