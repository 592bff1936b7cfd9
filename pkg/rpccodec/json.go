// Package rpccodec provides a connect codec for plain Go structs.
//
// Services in this module are not generated from protobuf, so their
// messages cannot use connect's default protojson codec. Registering JSON
// under the "json" name keeps the Connect protocol (application/json,
// error envelopes, streaming framing) unchanged on the wire.
package rpccodec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const Name = "json"

type JSON struct{}

var _ connect.Codec = JSON{}

func (JSON) Name() string {
	return Name
}

func (JSON) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal rejects unknown fields so that typos in client payloads fail
// loudly instead of silently resetting a field.
func (JSON) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}

// WithJSON is the option every handler and client in this module is built with.
func WithJSON() connect.Option {
	return connect.WithCodec(JSON{})
}
