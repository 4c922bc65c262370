package gateway

import (
	"encoding/json"
)

// Opcode tags an envelope on the socket. Only Dispatch envelopes reach
// the state layer; the rest are connection plumbing.
type Opcode int

const (
	OpcodeDispatch     Opcode = 0
	OpcodeHeartbeat    Opcode = 1
	OpcodeIdentify     Opcode = 2
	OpcodeHello        Opcode = 10
	OpcodeHeartbeatACK Opcode = 11
)

// Envelope is one decoded frame from the socket. For dispatches T names
// the event and D holds the event-specific payload; S is the session
// sequence number.
type Envelope struct {
	Op Opcode          `json:"op"`
	S  int             `json:"s"`
	T  string          `json:"t"`
	D  json.RawMessage `json:"d"`
}

// Handler receives dispatch envelopes one at a time, in receipt order.
// The connection never calls it concurrently.
type Handler func(env Envelope)
