package state

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
)

type Role struct {
	discord.Role

	client  *Client
	guildID snowflake.ID
	deleted bool
}

func (r *Role) ID() snowflake.ID {
	return r.Role.ID
}

func (r *Role) Key() string {
	return r.Role.ID.String()
}

func (r *Role) CreatedAt() time.Time {
	return createdAt(r.Role.ID)
}

func (r *Role) Guild() (*Guild, bool) {
	return r.client.Guilds.Get(r.guildID.String())
}

// Deleted reports that a removal dispatch detached this role from its
// store; outstanding references see it marked stale rather than torn
// down under them.
func (r *Role) Deleted() bool {
	return r.deleted
}

func (r *Role) Mention() string {
	return "<@&" + r.Role.ID.String() + ">"
}

func (r *Role) patch(data RawData) error {
	return patchInto(r, data)
}

func (r *Role) snapshot() Entity {
	cp := *r
	return &cp
}

func newRole(c *Client, data RawData) (Entity, error) {
	if _, err := payloadID(data, "id"); err != nil {
		return nil, err
	}
	guildID, err := payloadID(data, "guild_id")
	if err != nil {
		return nil, err
	}
	r := &Role{client: c, guildID: guildID}
	if err := r.patch(data); err != nil {
		return nil, err
	}
	return r, nil
}

// RoleStore holds the roles of one guild.
type RoleStore struct {
	*Store[*Role]

	client *Client
	guild  *Guild
}

func newRoleStore(g *Guild) *RoleStore {
	return &RoleStore{Store: NewStore[*Role](g.client.limits.Roles), client: g.client, guild: g}
}

func (s *RoleStore) add(data RawData) (*Role, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("Role", s.client, data)
	if err != nil {
		return nil, err
	}
	r, ok := entityAs[*Role](e)
	if !ok {
		return nil, fmt.Errorf("%w: Role built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, r)
	return r, nil
}

// Everyone returns the guild's implicit base role; its id equals the
// guild id.
func (s *RoleStore) Everyone() (*Role, bool) {
	return s.Get(s.guild.Key())
}

// Create makes a role over REST. The cache entry arrives with the
// GUILD_ROLE_CREATE dispatch echo, not here.
func (s *RoleStore) Create(ctx context.Context, fields RawData, reason string) (*Role, error) {
	data, err := s.client.requestMapBody(ctx, "POST", fmt.Sprintf("/guilds/%s/roles", s.guild.Key()), fields, reason)
	if err != nil {
		return nil, err
	}
	return s.add(data)
}
