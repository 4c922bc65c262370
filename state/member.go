package state

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Member is a user's membership of one guild. Its identity is the user
// id, scoped to the guild — the same user is a distinct Member in every
// guild they share with the session.
type Member struct {
	Nick     string         `json:"nick"`
	RoleIDs  []snowflake.ID `json:"roles"`
	JoinedAt time.Time      `json:"joined_at"`
	Deaf     bool           `json:"deaf"`
	Mute     bool           `json:"mute"`
	Pending  bool           `json:"pending"`

	client  *Client
	guild   *Guild
	userID  snowflake.ID
	roles   *View[*Role]
	deleted bool
}

func (m *Member) ID() snowflake.ID {
	return m.userID
}

func (m *Member) Key() string {
	return m.userID.String()
}

func (m *Member) CreatedAt() time.Time {
	return createdAt(m.userID)
}

func (m *Member) Guild() *Guild {
	return m.guild
}

// User resolves the member's globally deduplicated user.
func (m *Member) User() (*User, bool) {
	return m.client.Users.Get(m.userID.String())
}

// Roles is a view over the guild's role store restricted to this
// member's role ids. The guild's everyone role is always included.
func (m *Member) Roles() *View[*Role] {
	return m.roles
}

func (m *Member) Deleted() bool {
	return m.deleted
}

func (m *Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	if u, ok := m.User(); ok {
		return u.Username
	}
	return m.userID.String()
}

func (m *Member) patch(data RawData) error {
	if err := patchInto(m, data); err != nil {
		return err
	}
	if _, ok := data["roles"]; ok {
		m.roles.Clear()
		m.roles.AddID(m.guild.ID())
		for _, id := range m.RoleIDs {
			m.roles.AddID(id)
		}
	}
	return nil
}

func (m *Member) snapshot() Entity {
	cp := *m
	return &cp
}

// AddRole assigns a role over REST; the cache updates when the member
// update dispatch echoes back.
func (m *Member) AddRole(ctx context.Context, roleID snowflake.ID, reason string) error {
	route := fmt.Sprintf("/guilds/%s/members/%s/roles/%s", m.guild.Key(), m.Key(), roleID)
	return m.client.requestNone(ctx, "PUT", route, reason)
}

func (m *Member) RemoveRole(ctx context.Context, roleID snowflake.ID, reason string) error {
	route := fmt.Sprintf("/guilds/%s/members/%s/roles/%s", m.guild.Key(), m.Key(), roleID)
	return m.client.requestNone(ctx, "DELETE", route, reason)
}

func (m *Member) Kick(ctx context.Context, reason string) error {
	route := fmt.Sprintf("/guilds/%s/members/%s", m.guild.Key(), m.Key())
	return m.client.requestNone(ctx, "DELETE", route, reason)
}

func newMember(c *Client, data RawData) (Entity, error) {
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
	m := &Member{client: c, guild: guild, userID: userID}
	m.roles = NewView(guild.Roles.Store)
	m.roles.AddID(guild.ID())
	if err := m.patch(data); err != nil {
		return nil, err
	}
	return m, nil
}

// MemberStore holds the members of one guild, keyed by user id.
type MemberStore struct {
	*Store[*Member]

	client *Client
	guild  *Guild
}

func newMemberStore(g *Guild) *MemberStore {
	return &MemberStore{Store: NewStore[*Member](g.client.limits.Members), client: g.client, guild: g}
}

// add resolves the embedded user through the global user store first,
// then upserts the member keyed by that user's id.
func (s *MemberStore) add(data RawData) (*Member, error) {
	userData, ok := payloadMap(data, "user")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"user\"", ErrMalformedPayload)
	}
	user, err := s.client.Users.add(userData)
	if err != nil {
		return nil, err
	}
	key := user.Key()
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("Member", s.client, data)
	if err != nil {
		return nil, err
	}
	m, ok := entityAs[*Member](e)
	if !ok {
		return nil, fmt.Errorf("%w: Member built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, m)
	return m, nil
}

// Fetch retrieves one member over REST and commits it to the cache.
func (s *MemberStore) Fetch(ctx context.Context, userID snowflake.ID) (*Member, error) {
	route := fmt.Sprintf("/guilds/%s/members/%s", s.guild.Key(), userID)
	data, err := s.client.requestMap(ctx, "GET", route)
	if err != nil {
		return nil, err
	}
	return s.add(data)
}
