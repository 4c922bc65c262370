package state

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
)

// User is a globally deduplicated person: every code path that sees a
// user payload — message authors, member payloads, ban payloads —
// resolves to the one cached instance per id.
type User struct {
	discord.User

	client *Client
}

func (u *User) ID() snowflake.ID {
	return u.User.ID
}

func (u *User) Key() string {
	return u.User.ID.String()
}

func (u *User) CreatedAt() time.Time {
	return createdAt(u.User.ID)
}

func (u *User) Client() *Client {
	return u.client
}

func (u *User) Mention() string {
	return "<@" + u.User.ID.String() + ">"
}

func (u *User) patch(data RawData) error {
	return patchInto(u, data)
}

func (u *User) snapshot() Entity {
	cp := *u
	return &cp
}

func newUser(c *Client, data RawData) (Entity, error) {
	if _, err := payloadID(data, "id"); err != nil {
		return nil, err
	}
	u := &User{client: c}
	if err := u.patch(data); err != nil {
		return nil, err
	}
	return u, nil
}

type UserStore struct {
	*Store[*User]

	client *Client
}

func newUserStore(c *Client) *UserStore {
	return &UserStore{Store: NewStore[*User](c.limits.Users), client: c}
}

// add is the canonical upsert: patch the cached instance in place if
// the id is known, construct through the registry otherwise. Idempotent
// under replays of the same payload.
func (s *UserStore) add(data RawData) (*User, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	e, err := s.client.registry.New("User", s.client, data)
	if err != nil {
		return nil, err
	}
	u, ok := entityAs[*User](e)
	if !ok {
		return nil, fmt.Errorf("%w: User built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, u)
	return u, nil
}

// Fetch retrieves a user over REST and commits it to the cache.
func (s *UserStore) Fetch(ctx context.Context, id snowflake.ID) (*User, error) {
	data, err := s.client.requestMap(ctx, "GET", fmt.Sprintf("/users/%s", id))
	if err != nil {
		return nil, err
	}
	return s.add(data)
}
