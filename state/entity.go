// Package state maintains the in-memory mirror of gateway state: typed
// entities, bounded stores, and the per-dispatch actions that keep them
// synchronized with the event stream.
package state

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// RawData is one decoded dispatch payload, or a fragment of one.
type RawData = map[string]any

// Entity is anything a store can hold: it has a stable natural key, and
// it can absorb a partial payload in place. patch and snapshot are
// package-private on purpose — only stores and actions mutate entities;
// application code extending a built-in type gets both by embedding it.
type Entity interface {
	// Key is the store key: the snowflake id for most entities, a
	// natural key (invite code, emoji identity) for the rest.
	Key() string
	patch(data RawData) error
	snapshot() Entity
}

// SnowflakeEntity is the part of the surface shared by entities whose
// natural key is a snowflake id. CreatedAt is derived from the id —
// snowflakes bit-pack their creation timestamp, so no stored field is
// needed.
type SnowflakeEntity interface {
	Entity
	ID() snowflake.ID
	CreatedAt() time.Time
}

func createdAt(id snowflake.ID) time.Time {
	return id.Time()
}
