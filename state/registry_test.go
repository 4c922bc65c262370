package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("User", &User{}, newUser))

	err := r.Register("User", &User{}, newUser)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistryOverrideUnknownName(t *testing.T) {
	r := NewRegistry()
	err := r.Override("Nope", func(c Constructor) Constructor { return c })
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestRegistryNewUnknownName(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.registry.New("Nope", c, RawData{})
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

// loggedUser embeds the built-in type, so it remains a valid override
// product.
type loggedUser struct {
	*User

	constructions int
}

func TestRegistryOverrideWrapsConstructor(t *testing.T) {
	c, _ := newTestClient(t)

	built := 0
	err := c.registry.Override("User", func(next Constructor) Constructor {
		return func(c *Client, data RawData) (Entity, error) {
			e, err := next(c, data)
			if err != nil {
				return nil, err
			}
			built++
			return &loggedUser{User: e.(*User), constructions: built}, nil
		}
	})
	require.NoError(t, err)

	u, err := c.Users.add(RawData{"id": "42", "username": "someone"})
	require.NoError(t, err)
	assert.Equal(t, 1, built)
	assert.Equal(t, "someone", u.Username)
}

// taggedUser embeds the built-in by value rather than by pointer.
type taggedUser struct {
	User

	source string
}

func TestOverriddenUserFlowsThroughDispatch(t *testing.T) {
	c, _ := newTestClient(t)

	require.NoError(t, c.registry.Override("User", func(next Constructor) Constructor {
		return func(c *Client, data RawData) (Entity, error) {
			e, err := next(c, data)
			if err != nil {
				return nil, err
			}
			return &loggedUser{User: e.(*User)}, nil
		}
	}))

	// every construction site unwraps the override product, so a live
	// dispatch carrying a user payload must still commit it
	handle(t, c, "GUILD_CREATE", guildPayload("10", "guild"))
	handle(t, c, "CHANNEL_CREATE", textChannelPayload("60", "10", "general"))
	handle(t, c, "MESSAGE_CREATE", messagePayload("70", "60", "hi"))

	u, ok := c.Users.Get("500")
	require.True(t, ok)
	assert.Equal(t, "author", u.Username)

	// replays patch the committed instance in place
	handle(t, c, "MESSAGE_CREATE", messagePayload("71", "60", "again"))
	again, ok := c.Users.Get("500")
	require.True(t, ok)
	assert.Same(t, u, again)
}

func TestValueEmbeddedOverrideProduct(t *testing.T) {
	c, _ := newTestClient(t)

	require.NoError(t, c.registry.Override("User", func(next Constructor) Constructor {
		return func(c *Client, data RawData) (Entity, error) {
			e, err := next(c, data)
			if err != nil {
				return nil, err
			}
			return &taggedUser{User: *e.(*User), source: "test"}, nil
		}
	}))

	u, err := c.Users.add(RawData{"id": "42", "username": "someone"})
	require.NoError(t, err)
	assert.Equal(t, "someone", u.Username)
}

func TestOverriddenReactionAndOverwriteConstruction(t *testing.T) {
	c, _ := newTestClient(t)

	reactions, overwrites := 0, 0
	require.NoError(t, c.registry.Override("Reaction", func(next Constructor) Constructor {
		return func(c *Client, data RawData) (Entity, error) {
			reactions++
			return next(c, data)
		}
	}))
	require.NoError(t, c.registry.Override("Overwrite", func(next Constructor) Constructor {
		return func(c *Client, data RawData) (Entity, error) {
			overwrites++
			return next(c, data)
		}
	}))

	handle(t, c, "GUILD_CREATE", guildPayload("10", "guild"))
	channel := textChannelPayload("60", "10", "general")
	channel["permission_overwrites"] = []any{
		map[string]any{"id": "10", "type": 0, "allow": "0", "deny": "1024"},
	}
	handle(t, c, "CHANNEL_CREATE", channel)
	handle(t, c, "MESSAGE_CREATE", messagePayload("70", "60", "hi"))
	handle(t, c, "MESSAGE_REACTION_ADD", map[string]any{
		"channel_id": "60",
		"message_id": "70",
		"user_id":    "500",
		"emoji":      map[string]any{"id": nil, "name": "👍"},
	})

	assert.Equal(t, 1, reactions)
	assert.Equal(t, 1, overwrites)
}

// plainEntity does not embed any built-in type.
type plainEntity struct{ key string }

func (e *plainEntity) Key() string         { return e.key }
func (e *plainEntity) patch(RawData) error { return nil }
func (e *plainEntity) snapshot() Entity    { cp := *e; return &cp }

func TestRegistryOverrideMustProduceCompatibleShape(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.registry.Override("User", func(next Constructor) Constructor {
		return func(c *Client, data RawData) (Entity, error) {
			return &plainEntity{key: "42"}, nil
		}
	})
	require.NoError(t, err, "the shape check runs at construction, not at override time")

	_, err = c.registry.New("User", c, RawData{"id": "42"})
	assert.ErrorIs(t, err, ErrIncompatibleOverride)
}

func TestRegistryOverrideNilConstructor(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("User", &User{}, newUser))

	err := r.Override("User", func(Constructor) Constructor { return nil })
	assert.ErrorIs(t, err, ErrIncompatibleOverride)
}
