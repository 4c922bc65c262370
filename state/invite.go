package state

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Invite is the one entity keyed by a non-snowflake natural key: its
// code. CreatedAt therefore comes from the payload, not from the key.
type Invite struct {
	Code      string       `json:"code"`
	ChannelID snowflake.ID `json:"channel_id"`
	MaxAge    int          `json:"max_age"`
	MaxUses   int          `json:"max_uses"`
	Temporary bool         `json:"temporary"`
	Uses      int          `json:"uses"`
	Created   time.Time    `json:"created_at"`

	client    *Client
	guild     *Guild
	inviterID snowflake.ID
	deleted   bool
}

func (i *Invite) Key() string {
	return i.Code
}

func (i *Invite) CreatedAt() time.Time {
	return i.Created
}

func (i *Invite) Guild() *Guild {
	return i.guild
}

func (i *Invite) Inviter() (*User, bool) {
	if i.inviterID == 0 {
		return nil, false
	}
	return i.client.Users.Get(i.inviterID.String())
}

func (i *Invite) Channel() (Channel, bool) {
	return i.client.Channels.Get(i.ChannelID.String())
}

func (i *Invite) Deleted() bool {
	return i.deleted
}

func (i *Invite) URL() string {
	return "https://discord.gg/" + i.Code
}

func (i *Invite) patch(data RawData) error {
	if inviter, ok := payloadMap(data, "inviter"); ok {
		user, err := i.client.Users.add(inviter)
		if err != nil {
			return err
		}
		i.inviterID = user.ID()
	}
	return patchInto(i, data)
}

func (i *Invite) snapshot() Entity {
	cp := *i
	return &cp
}

func newInvite(c *Client, data RawData) (Entity, error) {
	guildID, err := payloadID(data, "guild_id")
	if err != nil {
		return nil, err
	}
	guild, ok := c.Guilds.Get(guildID.String())
	if !ok {
		return nil, fmt.Errorf("%w: guild %s", ErrMalformedPayload, guildID)
	}
	if _, err := payloadKey(data, "code"); err != nil {
		return nil, err
	}
	i := &Invite{client: c, guild: guild}
	if err := i.patch(data); err != nil {
		return nil, err
	}
	return i, nil
}

// InviteStore holds one guild's invites keyed by code.
type InviteStore struct {
	*Store[*Invite]

	client *Client
	guild  *Guild
}

func newInviteStore(g *Guild) *InviteStore {
	return &InviteStore{Store: NewStore[*Invite](g.client.limits.Invites), client: g.client, guild: g}
}

func (s *InviteStore) add(data RawData) (*Invite, error) {
	key, err := payloadKey(data, "code")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("Invite", s.client, data)
	if err != nil {
		return nil, err
	}
	i, ok := entityAs[*Invite](e)
	if !ok {
		return nil, fmt.Errorf("%w: Invite built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, i)
	return i, nil
}
