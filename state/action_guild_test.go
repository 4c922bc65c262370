package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildCreateCachesAndEmits(t *testing.T) {
	c, rec := newTestClient(t)

	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))

	g, ok := c.Guilds.Get("10")
	require.True(t, ok)
	assert.Equal(t, "testers", g.Name)
	assert.True(t, g.Available())

	created := rec.ofType(func(e Event) bool { _, ok := e.(GuildCreate); return ok })
	require.Len(t, created, 1)
	assert.Same(t, g, created[0].(GuildCreate).Guild)

	everyone, ok := g.Roles.Get("10")
	require.True(t, ok, "nested roles hydrate with the guild")
	assert.Equal(t, "@everyone", everyone.Name)
}

func TestGuildCreateHydratesNestedCollections(t *testing.T) {
	c, _ := newTestClient(t)

	payload := guildPayload("10", "testers")
	payload["member_count"] = 2
	payload["emojis"] = []any{
		map[string]any{"id": "41", "name": "wave"},
	}
	payload["members"] = []any{
		map[string]any{"user": map[string]any{"id": "100", "username": "owner"}},
		map[string]any{"user": map[string]any{"id": "101", "username": "other"}},
	}
	payload["channels"] = []any{
		map[string]any{"id": "60", "type": 0, "name": "general"},
		map[string]any{"id": "61", "type": 2, "name": "voice"},
	}
	payload["presences"] = []any{
		map[string]any{"user": map[string]any{"id": "101"}, "status": "online"},
	}
	payload["voice_states"] = []any{
		map[string]any{"user_id": "101", "channel_id": "61", "session_id": "abc"},
	}

	handle(t, c, "GUILD_CREATE", payload)

	g, ok := c.Guilds.Get("10")
	require.True(t, ok, "a full create must never be dropped as malformed")
	assert.Equal(t, "testers", g.Name)
	assert.Equal(t, 1, g.Roles.Len())
	assert.Equal(t, 1, g.Emojis.Len())
	assert.Equal(t, 2, g.Members.Len())
	assert.Equal(t, 2, g.Channels.Len())
	assert.Equal(t, 1, g.Presences.Len())
	assert.Equal(t, 1, g.VoiceStates.Len())

	ch, ok := c.Channels.Get("60")
	require.True(t, ok)
	tc, ok := ch.(*TextChannel)
	require.True(t, ok)
	assert.Equal(t, "general", tc.Channel.Name)

	owner, ok := g.Owner()
	require.True(t, ok)
	assert.Equal(t, "owner", owner.DisplayName())
}

func TestGuildCreateUnavailableStubStaysQuiet(t *testing.T) {
	c, rec := newTestClient(t)

	handle(t, c, "GUILD_CREATE", map[string]any{"id": "10", "unavailable": true})

	g, ok := c.Guilds.Get("10")
	require.True(t, ok)
	assert.False(t, g.Available())
	assert.Empty(t, rec.events, "an unavailable stub is not a create")
}

func TestGuildBecomesAvailable(t *testing.T) {
	c, rec := newTestClient(t)

	handle(t, c, "GUILD_CREATE", map[string]any{"id": "10", "unavailable": true})
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))

	g, _ := c.Guilds.Get("10")
	assert.True(t, g.Available())
	assert.Equal(t, "testers", g.Name)

	available := rec.ofType(func(e Event) bool { _, ok := e.(GuildAvailable); return ok })
	require.Len(t, available, 1)
	assert.Empty(t, rec.ofType(func(e Event) bool { _, ok := e.(GuildCreate); return ok }),
		"the availability transition must not double as a create")
}

func TestGuildUpdatePatchesInPlace(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "before"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_UPDATE", map[string]any{"id": "10", "name": "after"})

	after, _ := c.Guilds.Get("10")
	assert.Same(t, g, after, "updates must mutate the cached instance")
	assert.Equal(t, "after", g.Name)

	updates := rec.ofType(func(e Event) bool { _, ok := e.(GuildUpdate); return ok })
	require.Len(t, updates, 1)
	up := updates[0].(GuildUpdate)
	assert.Equal(t, "before", up.Old.Name)
	assert.Equal(t, "after", up.Guild.Name)
}

func TestGuildUpdateForUnknownGuildIsDropped(t *testing.T) {
	c, rec := newTestClient(t)

	handle(t, c, "GUILD_UPDATE", map[string]any{"id": "10", "name": "after"})

	assert.Empty(t, rec.events)
	_, ok := c.Guilds.Get("10")
	assert.False(t, ok)
}

func TestGuildDeleteOutageVersusRemoval(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_DELETE", map[string]any{"id": "10", "unavailable": true})
	assert.False(t, g.Available())
	_, stillCached := c.Guilds.Get("10")
	assert.True(t, stillCached, "an outage keeps the guild cached")
	require.Len(t, rec.ofType(func(e Event) bool { _, ok := e.(GuildUnavailable); return ok }), 1)

	handle(t, c, "GUILD_DELETE", map[string]any{"id": "10"})
	_, stillCached = c.Guilds.Get("10")
	assert.False(t, stillCached)
	assert.True(t, g.Deleted())
	require.Len(t, rec.ofType(func(e Event) bool { _, ok := e.(GuildDelete); return ok }), 1)
}

func TestMemberAddUpdateRemove(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_MEMBER_ADD", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "20", "username": "alice"},
		"nick":     "al",
	})
	m, ok := g.Members.Get("20")
	require.True(t, ok)
	assert.Equal(t, "al", m.Nick)
	assert.Equal(t, 1, g.MemberCount)

	u, ok := c.Users.Get("20")
	require.True(t, ok, "member payloads resolve users through the global store")
	assert.Equal(t, "alice", u.Username)

	handle(t, c, "GUILD_MEMBER_UPDATE", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "20", "username": "alice"},
		"nick":     "allie",
	})
	assert.Equal(t, "allie", m.Nick)
	updates := rec.ofType(func(e Event) bool { _, ok := e.(GuildMemberUpdate); return ok })
	require.Len(t, updates, 1)
	assert.Equal(t, "al", updates[0].(GuildMemberUpdate).Old.Nick)

	handle(t, c, "GUILD_MEMBER_REMOVE", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "20"},
	})
	_, ok = g.Members.Get("20")
	assert.False(t, ok)
	assert.True(t, m.Deleted())
	assert.Equal(t, 0, g.MemberCount)
}

func TestMemberUpdateForUnknownGuildIsDropped(t *testing.T) {
	c, rec := newTestClient(t)

	handle(t, c, "GUILD_MEMBER_UPDATE", map[string]any{
		"guild_id": "99",
		"user":     map[string]any{"id": "20", "username": "alice"},
	})

	assert.Empty(t, rec.events)
	_, ok := c.Users.Get("20")
	assert.False(t, ok, "nothing is committed for an unresolvable guild")
}

func TestMemberUpdateFirstSightCommitsSilently(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_MEMBER_UPDATE", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "20", "username": "alice"},
	})

	_, ok := g.Members.Get("20")
	assert.True(t, ok)
	assert.Empty(t, rec.ofType(func(e Event) bool { _, ok := e.(GuildMemberUpdate); return ok }),
		"no previous state means no update event")
}

func TestRoleLifecycle(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_ROLE_CREATE", map[string]any{
		"guild_id": "10",
		"role":     map[string]any{"id": "30", "name": "mods"},
	})
	role, ok := g.Roles.Get("30")
	require.True(t, ok)
	assert.Equal(t, "mods", role.Name)

	handle(t, c, "GUILD_ROLE_UPDATE", map[string]any{
		"guild_id": "10",
		"role":     map[string]any{"id": "30", "name": "admins"},
	})
	assert.Equal(t, "admins", role.Name)
	updates := rec.ofType(func(e Event) bool { _, ok := e.(GuildRoleUpdate); return ok })
	require.Len(t, updates, 1)
	assert.Equal(t, "mods", updates[0].(GuildRoleUpdate).Old.Name)

	handle(t, c, "GUILD_ROLE_DELETE", map[string]any{"guild_id": "10", "role_id": "30"})
	_, ok = g.Roles.Get("30")
	assert.False(t, ok)
	assert.True(t, role.Deleted())
}

func TestRoleUpdateForUncachedRoleEmitsCreate(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))

	handle(t, c, "GUILD_ROLE_UPDATE", map[string]any{
		"guild_id": "10",
		"role":     map[string]any{"id": "30", "name": "mods"},
	})

	require.Len(t, rec.ofType(func(e Event) bool { _, ok := e.(GuildRoleCreate); return ok }), 1)
	assert.Empty(t, rec.ofType(func(e Event) bool { _, ok := e.(GuildRoleUpdate); return ok }))
}

func TestEmojiBulkReconciliation(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_EMOJIS_UPDATE", map[string]any{
		"guild_id": "10",
		"emojis": []any{
			map[string]any{"id": "40", "name": "wave", "available": true},
			map[string]any{"id": "41", "name": "clap", "available": true},
		},
	})
	assert.Equal(t, 2, g.Emojis.Len())
	require.Len(t, rec.ofType(func(e Event) bool { _, ok := e.(EmojiCreate); return ok }), 2)

	rec.events = nil
	handle(t, c, "GUILD_EMOJIS_UPDATE", map[string]any{
		"guild_id": "10",
		"emojis": []any{
			map[string]any{"id": "40", "name": "wave", "available": true},
			map[string]any{"id": "41", "name": "cheer", "available": true},
		},
	})
	assert.Empty(t, rec.ofType(func(e Event) bool { _, ok := e.(EmojiCreate); return ok }))
	updates := rec.ofType(func(e Event) bool { _, ok := e.(EmojiUpdate); return ok })
	require.Len(t, updates, 1, "an unchanged emoji must not produce an update")
	assert.Equal(t, "clap", updates[0].(EmojiUpdate).Old.Name)
	assert.Equal(t, "cheer", updates[0].(EmojiUpdate).Emoji.Name)

	// one dispatch carrying an unchanged entry, a new one, and an
	// implicit removal
	rec.events = nil
	handle(t, c, "GUILD_EMOJIS_UPDATE", map[string]any{
		"guild_id": "10",
		"emojis": []any{
			map[string]any{"id": "41", "name": "cheer", "available": true},
			map[string]any{"id": "42", "name": "party", "available": true},
		},
	})
	assert.Empty(t, rec.ofType(func(e Event) bool { _, ok := e.(EmojiUpdate); return ok }))
	creates := rec.ofType(func(e Event) bool { _, ok := e.(EmojiCreate); return ok })
	require.Len(t, creates, 1)
	assert.Equal(t, "party", creates[0].(EmojiCreate).Emoji.Name)
	deletes := rec.ofType(func(e Event) bool { _, ok := e.(EmojiDelete); return ok })
	require.Len(t, deletes, 1)
	assert.Equal(t, "wave", deletes[0].(EmojiDelete).Emoji.Name)
	assert.True(t, deletes[0].(EmojiDelete).Emoji.Deleted())
	assert.Equal(t, []string{"41", "42"}, g.Emojis.Keys())
}

func TestBanAddAndRemove(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_BAN_ADD", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "50", "username": "spammer"},
	})
	_, ok := g.Bans.Get("50")
	require.True(t, ok)
	require.Len(t, rec.ofType(func(e Event) bool { _, ok := e.(GuildBanAdd); return ok }), 1)

	handle(t, c, "GUILD_BAN_REMOVE", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "50", "username": "spammer"},
	})
	_, ok = g.Bans.Get("50")
	assert.False(t, ok)
	removed := rec.ofType(func(e Event) bool { _, ok := e.(GuildBanRemove); return ok })
	require.Len(t, removed, 1)
	assert.True(t, removed[0].(GuildBanRemove).Ban.Deleted())
}

func TestBanRemoveForUncachedBanStillEmits(t *testing.T) {
	c, rec := newTestClient(t)
	handle(t, c, "GUILD_CREATE", guildPayload("10", "testers"))
	g, _ := c.Guilds.Get("10")

	handle(t, c, "GUILD_BAN_REMOVE", map[string]any{
		"guild_id": "10",
		"user":     map[string]any{"id": "50", "username": "spammer"},
	})

	removed := rec.ofType(func(e Event) bool { _, ok := e.(GuildBanRemove); return ok })
	require.Len(t, removed, 1)
	_, ok := g.Bans.Get("50")
	assert.False(t, ok, "the ephemeral ban must not be committed")
}

func TestReadySeedsSelfAndGuildStubs(t *testing.T) {
	c, rec := newTestClient(t)

	handle(t, c, "READY", map[string]any{
		"user": map[string]any{"id": "1", "username": "bot"},
		"guilds": []any{
			map[string]any{"id": "10", "unavailable": true},
			map[string]any{"id": "11", "unavailable": true},
		},
	})

	self, ok := c.Self()
	require.True(t, ok)
	assert.Equal(t, "bot", self.Username)
	assert.Equal(t, 2, c.Guilds.Len())
	g, _ := c.Guilds.Get("10")
	assert.False(t, g.Available())
	require.Len(t, rec.ofType(func(e Event) bool { _, ok := e.(Ready); return ok }), 1)
}
