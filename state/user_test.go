package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAddIsIdempotentUpsert(t *testing.T) {
	c, _ := newTestClient(t)

	first, err := c.Users.add(RawData{"id": "500", "username": "alice"})
	require.NoError(t, err)

	second, err := c.Users.add(RawData{"id": "500", "username": "alice"})
	require.NoError(t, err)
	assert.Same(t, first, second, "replaying a payload must not build a second instance")
	assert.Equal(t, 1, c.Users.Len())

	third, err := c.Users.add(RawData{"id": "500", "username": "alicia"})
	require.NoError(t, err)
	assert.Same(t, first, third)
	assert.Equal(t, "alicia", first.Username, "a changed payload patches the one instance")
}

func TestUserDedupeAcrossPayloadSources(t *testing.T) {
	c, _ := newTestClient(t)
	setupChannel(t, c)

	// the same person arrives as a message author and as a guild member
	handle(t, c, "MESSAGE_CREATE", messagePayload("70", "60", "hello"))
	handle(t, c, "GUILD_MEMBER_ADD", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "500", "username": "author"},
	})

	assert.Equal(t, 1, c.Users.Len())

	g, _ := c.Guilds.Get("10")
	m, ok := g.Members.Get("500")
	require.True(t, ok)
	u, ok := m.User()
	require.True(t, ok)

	ch, _ := c.Channels.Get("60")
	msg, _ := ch.(*TextChannel).Messages().Get("70")
	author, ok := msg.Author()
	require.True(t, ok)
	assert.Same(t, u, author, "both paths resolve to the globally deduplicated instance")
}

func TestUserUpdatePatchesSelf(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "READY", map[string]any{
		"user": map[string]any{"id": "1", "username": "before"},
	})
	self, ok := c.Self()
	require.True(t, ok)

	handle(t, c, "USER_UPDATE", map[string]any{"id": "1", "username": "after"})

	after, _ := c.Self()
	assert.Same(t, self, after, "the update must mutate the cached instance")
	assert.Equal(t, "after", self.Username)

	updates := rec.ofType(func(e Event) bool { _, ok := e.(UserUpdate); return ok })
	require.Len(t, updates, 1)
	up := updates[0].(UserUpdate)
	assert.Same(t, self, up.User)
	require.NotNil(t, up.Old)
	assert.Equal(t, "before", up.Old.Username)
}

func TestUserUpdateBeforeReadyCommitsWithoutOld(t *testing.T) {
	c, rec := newTestClient(t)

	handle(t, c, "USER_UPDATE", map[string]any{"id": "1", "username": "early"})

	self, ok := c.Self()
	require.True(t, ok)
	assert.Equal(t, "early", self.Username)

	updates := rec.ofType(func(e Event) bool { _, ok := e.(UserUpdate); return ok })
	require.Len(t, updates, 1)
	assert.Nil(t, updates[0].(UserUpdate).Old)
}
