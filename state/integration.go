package state

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
)

type Integration struct {
	discord.Integration

	client  *Client
	guild   *Guild
	deleted bool
}

func (i *Integration) ID() snowflake.ID {
	return i.Integration.ID
}

func (i *Integration) Key() string {
	return i.Integration.ID.String()
}

func (i *Integration) CreatedAt() time.Time {
	return createdAt(i.Integration.ID)
}

func (i *Integration) Guild() *Guild {
	return i.guild
}

func (i *Integration) Deleted() bool {
	return i.deleted
}

func (i *Integration) patch(data RawData) error {
	return patchInto(i, data)
}

func (i *Integration) snapshot() Entity {
	cp := *i
	return &cp
}

func newIntegration(c *Client, data RawData) (Entity, error) {
	if _, err := payloadID(data, "id"); err != nil {
		return nil, err
	}
	guildID, err := payloadID(data, "guild_id")
	if err != nil {
		return nil, err
	}
	guild, ok := c.Guilds.Get(guildID.String())
	if !ok {
		return nil, fmt.Errorf("%w: guild %s", ErrMalformedPayload, guildID)
	}
	i := &Integration{client: c, guild: guild}
	if err := i.patch(data); err != nil {
		return nil, err
	}
	return i, nil
}

type IntegrationStore struct {
	*Store[*Integration]

	client *Client
	guild  *Guild
}

func newIntegrationStore(g *Guild) *IntegrationStore {
	return &IntegrationStore{Store: NewStore[*Integration](g.client.limits.Integrations), client: g.client, guild: g}
}

func (s *IntegrationStore) add(data RawData) (*Integration, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("Integration", s.client, data)
	if err != nil {
		return nil, err
	}
	i, ok := entityAs[*Integration](e)
	if !ok {
		return nil, fmt.Errorf("%w: Integration built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, i)
	return i, nil
}
