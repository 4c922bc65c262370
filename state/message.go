package state

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
	"github.com/fuad-daoud/discord-state/rest"
)

// Message lives in exactly one channel's message store. Its author is
// the globally deduplicated User; in a guild it additionally projects
// the author's Member.
type Message struct {
	Content         string              `json:"content"`
	Timestamp       time.Time           `json:"timestamp"`
	EditedTimestamp time.Time           `json:"edited_timestamp"`
	TTS             bool                `json:"tts"`
	MentionEveryone bool                `json:"mention_everyone"`
	Pinned          bool                `json:"pinned"`
	Type            discord.MessageType `json:"type"`
	Flags           int                 `json:"flags"`
	WebhookID       snowflake.ID        `json:"webhook_id"`

	client    *Client
	id        snowflake.ID
	channelID snowflake.ID
	guildID   snowflake.ID
	authorID  snowflake.ID
	Reactions *ReactionStore
	deleted   bool
}

func (m *Message) ID() snowflake.ID {
	return m.id
}

func (m *Message) Key() string {
	return m.id.String()
}

func (m *Message) CreatedAt() time.Time {
	return createdAt(m.id)
}

func (m *Message) ChannelID() snowflake.ID {
	return m.channelID
}

func (m *Message) Channel() (Channel, bool) {
	return m.client.Channels.Get(m.channelID.String())
}

func (m *Message) Guild() (*Guild, bool) {
	if m.guildID == 0 {
		return nil, false
	}
	return m.client.Guilds.Get(m.guildID.String())
}

func (m *Message) Author() (*User, bool) {
	return m.client.Users.Get(m.authorID.String())
}

// Member projects the author's membership when the message was sent in
// a guild.
func (m *Message) Member() (*Member, bool) {
	guild, ok := m.Guild()
	if !ok {
		return nil, false
	}
	return guild.Members.Get(m.authorID.String())
}

func (m *Message) Deleted() bool {
	return m.deleted
}

func (m *Message) patch(data RawData) error {
	// keep the reactions array away from the field decoder; it would
	// collide with the nested store field by name
	if _, ok := data["reactions"]; ok {
		fields := make(RawData, len(data))
		for k, v := range data {
			if k != "reactions" {
				fields[k] = v
			}
		}
		data = fields
	}
	return patchInto(m, data)
}

func (m *Message) snapshot() Entity {
	cp := *m
	return &cp
}

// Edit rewrites the message content over REST.
func (m *Message) Edit(ctx context.Context, content string) (*Message, error) {
	route := fmt.Sprintf("/channels/%s/messages/%s", m.channelID, m.id)
	data, err := m.client.requestMapBody(ctx, "PATCH", route, RawData{"content": content}, "")
	if err != nil {
		return nil, err
	}
	return m, m.patch(data)
}

func (m *Message) Delete(ctx context.Context, reason string) error {
	route := fmt.Sprintf("/channels/%s/messages/%s", m.channelID, m.id)
	return m.client.requestNone(ctx, "DELETE", route, reason)
}

func (m *Message) Pin(ctx context.Context) error {
	route := fmt.Sprintf("/channels/%s/pins/%s", m.channelID, m.id)
	return m.client.requestNone(ctx, "PUT", route, "")
}

func (m *Message) React(ctx context.Context, emoji string) error {
	route := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/@me", m.channelID, m.id, url.PathEscape(emoji))
	return m.client.requestNone(ctx, "PUT", route, "")
}

func newMessage(c *Client, data RawData) (Entity, error) {
	id, err := payloadID(data, "id")
	if err != nil {
		return nil, err
	}
	channelID, err := payloadID(data, "channel_id")
	if err != nil {
		return nil, err
	}
	m := &Message{client: c, id: id, channelID: channelID}
	m.Reactions = newReactionStore(c, m)

	if authorData, ok := payloadMap(data, "author"); ok {
		author, err := c.Users.add(authorData)
		if err != nil {
			return nil, err
		}
		m.authorID = author.ID()
		if guildID, err := payloadID(data, "guild_id"); err == nil {
			m.guildID = guildID
			if guild, ok := c.Guilds.Get(guildID.String()); ok {
				if memberData, ok := payloadMap(data, "member"); ok {
					memberData["user"] = authorData
					if _, err := guild.Members.add(memberData); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	if err := m.patch(data); err != nil {
		return nil, err
	}
	if reactions, ok := payloadList(data, "reactions"); ok {
		for _, r := range reactions {
			if _, err := m.Reactions.add(r); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// MessageStore holds one channel's messages, capacity-bounded
// independently per channel so a busy channel cannot evict another
// channel's history.
type MessageStore struct {
	*Store[*Message]

	client  *Client
	channel Channel
}

func newMessageStore(c *Client, ch Channel) *MessageStore {
	return &MessageStore{Store: NewStore[*Message](c.limits.Messages), client: c, channel: ch}
}

func (s *MessageStore) add(data RawData) (*Message, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	e, err := s.client.registry.New("Message", s.client, data)
	if err != nil {
		return nil, err
	}
	m, ok := entityAs[*Message](e)
	if !ok {
		return nil, fmt.Errorf("%w: Message built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, m)
	return m, nil
}

// Send posts a message to the owning channel and caches the response.
func (s *MessageStore) Send(ctx context.Context, content string) (*Message, error) {
	route := fmt.Sprintf("/channels/%s/messages", s.channel.Key())
	data, err := s.client.requestMapBody(ctx, "POST", route, RawData{"content": content}, "")
	if err != nil {
		return nil, err
	}
	return s.add(data)
}

// FetchOptions is the paginated history query: at most one of Before,
// After, Around may be set.
type FetchOptions struct {
	Before snowflake.ID
	After  snowflake.ID
	Around snowflake.ID
	Limit  int
}

// Fetch retrieves a page of history over REST and commits it to the
// cache, newest first as the API returns it.
func (s *MessageStore) Fetch(ctx context.Context, opts FetchOptions) ([]*Message, error) {
	query := url.Values{}
	if opts.Before != 0 {
		query.Set("before", opts.Before.String())
	}
	if opts.After != 0 {
		query.Set("after", opts.After.String())
	}
	if opts.Around != 0 {
		query.Set("around", opts.Around.String())
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	route := fmt.Sprintf("/channels/%s/messages", s.channel.Key())
	raw, err := s.client.rest.Get(ctx, route, &rest.Request{Query: query})
	if err != nil {
		return nil, err
	}
	pages, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	messages := make([]*Message, 0, len(pages))
	for _, data := range pages {
		data["channel_id"] = s.channel.Key()
		m, err := s.add(data)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// EachMessage walks the channel history backwards without a bound,
// paging transparently, until f returns false, history is exhausted,
// or ctx is done. Abandoning the walk needs no teardown.
func (s *MessageStore) EachMessage(ctx context.Context, f func(*Message) bool) error {
	var before snowflake.ID
	for {
		page, err := s.Fetch(ctx, FetchOptions{Before: before, Limit: 100})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		for _, m := range page {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !f(m) {
				return nil
			}
			before = m.ID()
		}
	}
}
