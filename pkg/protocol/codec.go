package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/aretw0/voicelink/pkg/transport"
)

// DecodeCommand turns an inbound frame into a command.
//
// Fragments, binary frames, bodies that are not a single JSON object and
// objects without a string "type" are rejected with the matching domain error.
func DecodeCommand(msg transport.Message) (domain.Command, error) {
	if !msg.Complete {
		return domain.Command{}, domain.ErrIncompleteMessage
	}
	if !msg.IsText() {
		return domain.Command{}, domain.ErrBinaryMessage
	}

	dec := json.NewDecoder(bytes.NewReader(msg.Data))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return domain.Command{}, fmt.Errorf("%w: %v", domain.ErrNotObject, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.Command{}, fmt.Errorf("%w: trailing data after value", domain.ErrNotObject)
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return domain.Command{}, domain.ErrNotObject
	}
	name, ok := obj[domain.KeyType].(string)
	if !ok {
		return domain.Command{}, domain.ErrMissingType
	}
	return domain.NewCommand(name, obj), nil
}

// Encode builds an outbound text frame of the given type. fields must not
// contain "type".
func Encode(typ string, fields map[string]any) (transport.Message, error) {
	obj := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		obj[k] = v
	}
	obj[domain.KeyType] = typ
	data, err := json.Marshal(obj)
	if err != nil {
		return transport.Message{}, fmt.Errorf("failed to encode %s: %w", typ, err)
	}
	return transport.Message{Kind: transport.KindText, Data: data, Complete: true}, nil
}

type negotiationRequest struct {
	Type      string     `json:"type"`
	Protocols [][]string `json:"protocols"`
}

// NegotiationRequest returns the fixed handshake message sent once per
// handshake entry.
func NegotiationRequest() transport.Message {
	data, _ := json.Marshal(negotiationRequest{
		Type:      TypeNegotiateRequest,
		Protocols: DeviceProtocols,
	})
	return transport.Text(string(data))
}

// AgreedProtocols extracts the server's choice from a negotiate/agree command.
func AgreedProtocols(cmd domain.Command) []string {
	var agree struct {
		Protocols []string `json:"protocols"`
	}
	if err := cmd.Decode(&agree); err != nil {
		return nil
	}
	return agree.Protocols
}
