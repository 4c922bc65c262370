package state

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/rest"
)

// Ban is keyed by the banned user's id within one guild.
type Ban struct {
	Reason string `json:"reason"`

	client  *Client
	guild   *Guild
	userID  snowflake.ID
	deleted bool
}

func (b *Ban) ID() snowflake.ID {
	return b.userID
}

func (b *Ban) Key() string {
	return b.userID.String()
}

func (b *Ban) CreatedAt() time.Time {
	return createdAt(b.userID)
}

func (b *Ban) Guild() *Guild {
	return b.guild
}

func (b *Ban) User() (*User, bool) {
	return b.client.Users.Get(b.userID.String())
}

func (b *Ban) Deleted() bool {
	return b.deleted
}

func (b *Ban) patch(data RawData) error {
	return patchInto(b, data)
}

func (b *Ban) snapshot() Entity {
	cp := *b
	return &cp
}

func newBan(c *Client, data RawData) (Entity, error) {
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
	b := &Ban{client: c, guild: guild, userID: userID}
	if err := b.patch(data); err != nil {
		return nil, err
	}
	return b, nil
}

type BanStore struct {
	*Store[*Ban]

	client *Client
	guild  *Guild
}

func newBanStore(g *Guild) *BanStore {
	return &BanStore{Store: NewStore[*Ban](g.client.limits.Bans), client: g.client, guild: g}
}

func (s *BanStore) add(data RawData) (*Ban, error) {
	userData, ok := payloadMap(data, "user")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"user\"", ErrMalformedPayload)
	}
	if _, err := s.client.Users.add(userData); err != nil {
		return nil, err
	}
	key, err := payloadKey(userData, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("Ban", s.client, data)
	if err != nil {
		return nil, err
	}
	b, ok := entityAs[*Ban](e)
	if !ok {
		return nil, fmt.Errorf("%w: Ban built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, b)
	return b, nil
}

// Create bans a user over REST. The cache entry arrives with the
// GUILD_BAN_ADD dispatch echo.
func (s *BanStore) Create(ctx context.Context, userID snowflake.ID, deleteMessageDays int, reason string) error {
	route := fmt.Sprintf("/guilds/%s/bans/%s", s.guild.Key(), userID)
	req := &rest.Request{Reason: reason}
	if deleteMessageDays > 0 {
		req.Query = url.Values{"delete_message_days": {strconv.Itoa(deleteMessageDays)}}
	}
	_, err := s.client.rest.Put(ctx, route, req)
	return err
}

// Remove lifts a ban over REST.
func (s *BanStore) Remove(ctx context.Context, userID snowflake.ID, reason string) error {
	route := fmt.Sprintf("/guilds/%s/bans/%s", s.guild.Key(), userID)
	return s.client.requestNone(ctx, "DELETE", route, reason)
}
