package state

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
)

type Emoji struct {
	discord.Emoji

	client  *Client
	guildID snowflake.ID
	deleted bool
}

func (e *Emoji) ID() snowflake.ID {
	return e.Emoji.ID
}

func (e *Emoji) Key() string {
	return e.Emoji.ID.String()
}

func (e *Emoji) CreatedAt() time.Time {
	return createdAt(e.Emoji.ID)
}

func (e *Emoji) Guild() (*Guild, bool) {
	return e.client.Guilds.Get(e.guildID.String())
}

func (e *Emoji) Deleted() bool {
	return e.deleted
}

func (e *Emoji) String() string {
	if e.Animated {
		return "<a:" + e.Name + ":" + e.Key() + ">"
	}
	return "<:" + e.Name + ":" + e.Key() + ">"
}

func (e *Emoji) patch(data RawData) error {
	return patchInto(e, data)
}

func (e *Emoji) snapshot() Entity {
	cp := *e
	return &cp
}

func newEmoji(c *Client, data RawData) (Entity, error) {
	if _, err := payloadID(data, "id"); err != nil {
		return nil, err
	}
	guildID, err := payloadID(data, "guild_id")
	if err != nil {
		return nil, err
	}
	e := &Emoji{client: c, guildID: guildID}
	if err := e.patch(data); err != nil {
		return nil, err
	}
	return e, nil
}

type EmojiStore struct {
	*Store[*Emoji]

	client *Client
	guild  *Guild
}

func newEmojiStore(g *Guild) *EmojiStore {
	return &EmojiStore{Store: NewStore[*Emoji](g.client.limits.Emojis), client: g.client, guild: g}
}

func (s *EmojiStore) add(data RawData) (*Emoji, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("Emoji", s.client, data)
	if err != nil {
		return nil, err
	}
	em, ok := entityAs[*Emoji](e)
	if !ok {
		return nil, fmt.Errorf("%w: Emoji built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, em)
	return em, nil
}
