package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
)

// ErrMalformedPayload marks a dispatch payload missing a field the
// entity cannot be constructed without. The action layer turns it into
// a diagnostic and drops the dispatch.
var ErrMalformedPayload = errors.New("malformed payload")

// ErrUnknownDiscriminator marks a payload whose variant discriminator
// has no registered constructor. Dropped with a diagnostic so protocol
// additions stay forward-compatible.
var ErrUnknownDiscriminator = errors.New("unknown discriminator")

func payloadKey(data RawData, field string) (string, error) {
	v, ok := data[field].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedPayload, field)
	}
	return v, nil
}

func payloadID(data RawData, field string) (snowflake.ID, error) {
	raw, err := payloadKey(data, field)
	if err != nil {
		return 0, err
	}
	id, err := snowflake.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a snowflake: %v", ErrMalformedPayload, field, err)
	}
	return id, nil
}

// payloadNumber reads a numeric field regardless of how the payload
// was decoded: gateway envelopes carry json.Number, REST responses
// float64, hand-built maps plain ints.
func payloadNumber(data RawData, field string) (float64, bool) {
	switch v := data[field].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func payloadMap(data RawData, field string) (RawData, bool) {
	m, ok := data[field].(map[string]any)
	return m, ok
}

func payloadList(data RawData, field string) ([]RawData, bool) {
	raw, ok := data[field].([]any)
	if !ok {
		return nil, false
	}
	out := make([]RawData, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, true
}
