package state

import (
	"fmt"

	"github.com/fuad-daoud/discord-state/discord"
)

// Reaction aggregates one emoji's reactions on one message. Keyed by
// emoji identity: the custom emoji id, or the raw unicode string.
type Reaction struct {
	Count int                  `json:"count"`
	Me    bool                 `json:"me"`
	Emoji discord.PartialEmoji `json:"emoji"`

	client  *Client
	message *Message
	users   *View[*User]
	deleted bool
}

func (r *Reaction) Key() string {
	return r.Emoji.Key()
}

func (r *Reaction) Message() *Message {
	return r.message
}

// Users is the view of user ids seen reacting with this emoji. It only
// covers users observed through dispatches, not the full server-side
// list.
func (r *Reaction) Users() *View[*User] {
	return r.users
}

func (r *Reaction) Deleted() bool {
	return r.deleted
}

func (r *Reaction) patch(data RawData) error {
	return patchInto(r, data)
}

func (r *Reaction) snapshot() Entity {
	cp := *r
	return &cp
}

// newReaction builds the aggregate from its emoji identity alone; the
// owning store attaches the message.
func newReaction(c *Client, data RawData) (Entity, error) {
	emojiData, ok := payloadMap(data, "emoji")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"emoji\"", ErrMalformedPayload)
	}
	r := &Reaction{client: c, users: NewView(c.Users.Store)}
	if err := r.patch(RawData{"emoji": emojiData}); err != nil {
		return nil, err
	}
	if r.Emoji.Key() == "" {
		return nil, fmt.Errorf("%w: emoji has neither id nor name", ErrMalformedPayload)
	}
	return r, nil
}

// ReactionStore is the nested per-message store of reaction aggregates.
type ReactionStore struct {
	*Store[*Reaction]

	client  *Client
	message *Message
}

func newReactionStore(c *Client, msg *Message) *ReactionStore {
	return &ReactionStore{Store: NewStore[*Reaction](c.limits.Reactions), client: c, message: msg}
}

func (s *ReactionStore) add(data RawData) (*Reaction, error) {
	emojiData, ok := payloadMap(data, "emoji")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"emoji\"", ErrMalformedPayload)
	}
	key := discord.PartialEmoji{Name: stringOr(emojiData, "name")}
	if id := stringOr(emojiData, "id"); id != "" {
		parsed, err := payloadID(emojiData, "id")
		if err != nil {
			return nil, err
		}
		key.ID = parsed
	}
	if existing, ok := s.Get(key.Key()); ok {
		return existing, existing.patch(data)
	}
	e, err := s.client.registry.New("Reaction", s.client, data)
	if err != nil {
		return nil, err
	}
	r, ok := entityAs[*Reaction](e)
	if !ok {
		return nil, fmt.Errorf("%w: Reaction built %T", ErrIncompatibleOverride, e)
	}
	r.message = s.message
	if err := r.patch(data); err != nil {
		return nil, err
	}
	s.Set(r.Key(), r)
	return r, nil
}

func stringOr(data RawData, field string) string {
	v, _ := data[field].(string)
	return v
}
