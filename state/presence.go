package state

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
)

// Presence is keyed by the user it describes, scoped to one guild.
type Presence struct {
	Status     string             `json:"status"`
	Activities []discord.Activity `json:"activities"`

	client  *Client
	guild   *Guild
	userID  snowflake.ID
	deleted bool
}

func (p *Presence) ID() snowflake.ID {
	return p.userID
}

func (p *Presence) Key() string {
	return p.userID.String()
}

func (p *Presence) CreatedAt() time.Time {
	return createdAt(p.userID)
}

func (p *Presence) Guild() *Guild {
	return p.guild
}

func (p *Presence) User() (*User, bool) {
	return p.client.Users.Get(p.userID.String())
}

func (p *Presence) Deleted() bool {
	return p.deleted
}

func (p *Presence) patch(data RawData) error {
	return patchInto(p, data)
}

func (p *Presence) snapshot() Entity {
	cp := *p
	return &cp
}

func newPresence(c *Client, data RawData) (Entity, error) {
	guildID, err := payloadID(data, "guild_id")
	if err != nil {
		return nil, err
	}
	guild, ok := c.Guilds.Get(guildID.String())
	if !ok {
		return nil, fmt.Errorf("%w: guild %s", ErrMalformedPayload, guildID)
	}
	userData, ok := payloadMap(data, "user")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"user\"", ErrMalformedPayload)
	}
	userID, err := payloadID(userData, "id")
	if err != nil {
		return nil, err
	}
	p := &Presence{client: c, guild: guild, userID: userID}
	if err := p.patch(data); err != nil {
		return nil, err
	}
	return p, nil
}

type PresenceStore struct {
	*Store[*Presence]

	client *Client
	guild  *Guild
}

func newPresenceStore(g *Guild) *PresenceStore {
	return &PresenceStore{Store: NewStore[*Presence](g.client.limits.Presences), client: g.client, guild: g}
}

func (s *PresenceStore) add(data RawData) (*Presence, error) {
	userData, ok := payloadMap(data, "user")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"user\"", ErrMalformedPayload)
	}
	key, err := payloadKey(userData, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("Presence", s.client, data)
	if err != nil {
		return nil, err
	}
	p, ok := entityAs[*Presence](e)
	if !ok {
		return nil, fmt.Errorf("%w: Presence built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, p)
	return p, nil
}
