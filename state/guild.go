package state

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Guild is the top-level aggregate: it exclusively owns its member,
// role, emoji, ban, invite, integration, presence and voice-state
// stores, and projects its channels as a view over the client's channel
// store. First sight may be an unavailable stub carrying only the id;
// the full payload rehydrates everything, replacing nested collections
// wholesale by id.
type Guild struct {
	Name        string       `json:"name"`
	Icon        string       `json:"icon"`
	Splash      string       `json:"splash"`
	OwnerID     snowflake.ID `json:"owner_id"`
	AfkTimeout  int          `json:"afk_timeout"`
	Large       bool         `json:"large"`
	MemberCount int          `json:"member_count"`
	Description string       `json:"description"`

	client    *Client
	id        snowflake.ID
	available bool
	deleted   bool

	Members      *MemberStore
	Roles        *RoleStore
	Emojis       *EmojiStore
	Channels     *View[Channel]
	Presences    *PresenceStore
	VoiceStates  *VoiceStateStore
	Bans         *BanStore
	Invites      *InviteStore
	Integrations *IntegrationStore
}

func (g *Guild) ID() snowflake.ID {
	return g.id
}

func (g *Guild) Key() string {
	return g.id.String()
}

func (g *Guild) CreatedAt() time.Time {
	return createdAt(g.id)
}

// Available reports whether the guild's nested state can be trusted.
// While unavailable only the id is guaranteed valid; permission and
// lookup logic must not rely on anything else.
func (g *Guild) Available() bool {
	return g.available
}

func (g *Guild) Deleted() bool {
	return g.deleted
}

func (g *Guild) Owner() (*Member, bool) {
	return g.Members.Get(g.OwnerID.String())
}

func (g *Guild) patch(data RawData) error {
	// the nested arrays must not reach the field decoder: it would try
	// to match them against the store fields by name
	fields := make(RawData, len(data))
	for k, v := range data {
		switch k {
		case "roles", "emojis", "members", "channels", "presences", "voice_states":
		default:
			fields[k] = v
		}
	}
	if err := patchInto(g, fields); err != nil {
		return err
	}
	if unavailable, ok := data["unavailable"].(bool); ok {
		g.available = !unavailable
	} else {
		g.available = true
	}

	// nested arrays replace by id, they never merge
	if roles, ok := payloadList(data, "roles"); ok {
		g.Roles.Clear()
		for _, r := range roles {
			if _, err := g.Roles.add(r); err != nil {
				return err
			}
		}
	}
	if emojis, ok := payloadList(data, "emojis"); ok {
		g.Emojis.Clear()
		for _, e := range emojis {
			if _, err := g.Emojis.add(e); err != nil {
				return err
			}
		}
	}
	if members, ok := payloadList(data, "members"); ok {
		g.Members.Clear()
		for _, m := range members {
			if _, err := g.Members.add(m); err != nil {
				return err
			}
		}
	}
	if channels, ok := payloadList(data, "channels"); ok {
		g.Channels.Clear()
		for _, chData := range channels {
			chData["guild_id"] = g.Key()
			ch, err := g.client.Channels.add(chData)
			if err != nil {
				return err
			}
			g.Channels.Add(ch.Key())
		}
	}
	if presences, ok := payloadList(data, "presences"); ok {
		g.Presences.Clear()
		for _, p := range presences {
			if _, err := g.Presences.add(p); err != nil {
				return err
			}
		}
	}
	if states, ok := payloadList(data, "voice_states"); ok {
		g.VoiceStates.Clear()
		for _, vs := range states {
			if _, err := g.VoiceStates.add(vs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Guild) snapshot() Entity {
	cp := *g
	return &cp
}

// Leave removes the current user from the guild over REST; the cache
// entry goes away with the GUILD_DELETE dispatch echo.
func (g *Guild) Leave(ctx context.Context) error {
	return g.client.requestNone(ctx, "DELETE", fmt.Sprintf("/users/@me/guilds/%s", g.Key()), "")
}

// Edit patches guild settings over REST and commits the response.
func (g *Guild) Edit(ctx context.Context, fields RawData, reason string) (*Guild, error) {
	data, err := g.client.requestMapBody(ctx, "PATCH", fmt.Sprintf("/guilds/%s", g.Key()), fields, reason)
	if err != nil {
		return nil, err
	}
	return g, g.patch(data)
}

func newGuild(c *Client, data RawData) (Entity, error) {
	id, err := payloadID(data, "id")
	if err != nil {
		return nil, err
	}
	g := &Guild{client: c, id: id}
	g.Roles = newRoleStore(g)
	g.Emojis = newEmojiStore(g)
	g.Members = newMemberStore(g)
	g.Channels = NewView(c.Channels.Store)
	g.Presences = newPresenceStore(g)
	g.VoiceStates = newVoiceStateStore(g)
	g.Bans = newBanStore(g)
	g.Invites = newInviteStore(g)
	g.Integrations = newIntegrationStore(g)

	// member payloads need the guild resolvable mid-hydration
	c.Guilds.Set(g.Key(), g)
	if err := g.patch(data); err != nil {
		return nil, err
	}
	return g, nil
}

type GuildStore struct {
	*Store[*Guild]

	client *Client
}

func newGuildStore(c *Client) *GuildStore {
	return &GuildStore{Store: NewStore[*Guild](c.limits.Guilds), client: c}
}

func (s *GuildStore) add(data RawData) (*Guild, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	e, err := s.client.registry.New("Guild", s.client, data)
	if err != nil {
		// the constructor registers the guild before hydrating so that
		// nested member payloads can resolve it; undo on failure
		s.Delete(key)
		return nil, err
	}
	g, ok := entityAs[*Guild](e)
	if !ok {
		s.Delete(key)
		return nil, fmt.Errorf("%w: Guild built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, g)
	return g, nil
}

// Fetch retrieves a guild over REST and commits it to the cache.
func (s *GuildStore) Fetch(ctx context.Context, id snowflake.ID) (*Guild, error) {
	data, err := s.client.requestMap(ctx, "GET", fmt.Sprintf("/guilds/%s", id))
	if err != nil {
		return nil, err
	}
	return s.add(data)
}
