package codec

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mitchellh/mapstructure"

	"github.com/GriffinCanCode/componentbridge/internal/types"
)

var (
	// ErrMalformedPayload is returned for inbound text that is not a JSON object
	ErrMalformedPayload = errors.New("codec: malformed payload")
	// ErrUnsupportedPayload is returned for inbound values of an unknown shape
	ErrUnsupportedPayload = errors.New("codec: unsupported payload")
)

// json mirrors encoding/json behavior (sorted map keys, HTML escaping) so
// the text encoding is stable.
var json = sonic.ConfigStd

// Encode returns the wire value for env: JSON text when text is true,
// otherwise the envelope itself.
func Encode(env *Envelope, text bool) (any, error) {
	if !text {
		return env, nil
	}
	out, err := json.MarshalToString(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", env.Action, err)
	}
	return out, nil
}

// Marshal serializes an arbitrary value as JSON text.
func Marshal(v any) (string, error) {
	return json.MarshalToString(v)
}

// DecodeText parses a text-channel payload.
func DecodeText(raw string) (*Message, error) {
	var generic map[string]any
	if err := json.UnmarshalFromString(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if generic == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}
	return DecodeStructured(generic)
}

// DecodeEnvelope parses an outbound envelope from JSON text. Hosts use it
// to read what a component sent.
func DecodeEnvelope(raw string) (*Envelope, error) {
	var env Envelope
	if err := json.UnmarshalFromString(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Action == "" || env.MessageID == "" {
		return nil, fmt.Errorf("%w: envelope without action or messageId", ErrMalformedPayload)
	}
	return &env, nil
}

// DecodeStructured normalizes a structured-channel payload. Maps,
// *Message and Message values are accepted.
func DecodeStructured(v any) (*Message, error) {
	switch m := v.(type) {
	case *Message:
		if m == nil {
			return nil, fmt.Errorf("%w: nil message", ErrUnsupportedPayload)
		}
		return m, nil
	case Message:
		return &m, nil
	case map[string]any:
		var msg Message
		if err := mapstructure.Decode(m, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
		}
		return &msg, nil
	case string:
		return nil, fmt.Errorf("%w: text payload on structured channel", ErrUnsupportedPayload)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, v)
	}
}

// Sanitize returns the acyclic wire form of item: a shallow copy with
// parent and children nulled and every other field preserved.
func Sanitize(item *types.Item) types.Record {
	if item == nil {
		return nil
	}
	rec := make(types.Record, len(item.Extra)+7)
	for k, v := range item.Extra {
		rec[k] = v
	}
	rec["uuid"] = item.UUID
	rec["content_type"] = item.ContentType
	rec["content"] = item.Content
	rec["created_at"] = timestamp(item.CreatedAt)
	rec["updated_at"] = timestamp(item.UpdatedAt)
	rec["parent"] = nil
	rec["children"] = nil
	return rec
}

// SanitizeAll sanitizes each item in order.
func SanitizeAll(items []*types.Item) []types.Record {
	out := make([]types.Record, 0, len(items))
	for _, item := range items {
		out = append(out, Sanitize(item))
	}
	return out
}

// timestamp keeps zero times off the wire.
func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
