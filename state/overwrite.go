package state

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
)

// Overwrite is a permission overwrite on one guild channel, keyed by
// the role or member it applies to.
type Overwrite struct {
	discord.Overwrite

	client  *Client
	channel Channel
	deleted bool
}

func (o *Overwrite) ID() snowflake.ID {
	return o.Overwrite.ID
}

func (o *Overwrite) Key() string {
	return o.Overwrite.ID.String()
}

func (o *Overwrite) CreatedAt() time.Time {
	return createdAt(o.Overwrite.ID)
}

func (o *Overwrite) Channel() Channel {
	return o.channel
}

func (o *Overwrite) Deleted() bool {
	return o.deleted
}

func (o *Overwrite) patch(data RawData) error {
	return patchInto(o, data)
}

func (o *Overwrite) snapshot() Entity {
	cp := *o
	return &cp
}

// OverwriteSet is what permission computation consumes: the channel's
// everyone overwrite, the overwrites of the roles a member holds, and
// the member-specific one, each optional. Callers combine allow/deny
// bits in that fixed precedence order.
type OverwriteSet struct {
	Everyone *Overwrite
	Roles    []*Overwrite
	Member   *Overwrite
}

// OverwriteStore holds the overwrites of one guild channel.
type OverwriteStore struct {
	*Store[*Overwrite]

	client  *Client
	channel Channel
}

// newOverwrite builds the overwrite detached; the owning store attaches
// the channel, which may still be mid-construction.
func newOverwrite(c *Client, data RawData) (Entity, error) {
	o := &Overwrite{client: c}
	if err := o.patch(data); err != nil {
		return nil, err
	}
	if o.Overwrite.ID == 0 {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedPayload, "id")
	}
	return o, nil
}

func newOverwriteStore(c *Client, ch Channel) *OverwriteStore {
	return &OverwriteStore{Store: NewStore[*Overwrite](c.limits.Overwrites), client: c, channel: ch}
}

func (s *OverwriteStore) add(data RawData) (*Overwrite, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	e, err := s.client.registry.New("Overwrite", s.client, data)
	if err != nil {
		return nil, err
	}
	o, ok := entityAs[*Overwrite](e)
	if !ok {
		return nil, fmt.Errorf("%w: Overwrite built %T", ErrIncompatibleOverride, e)
	}
	o.channel = s.channel
	s.Set(key, o)
	return o, nil
}

// For gathers the overwrites applicable to a member or a single role.
func (s *OverwriteStore) For(target any) (OverwriteSet, error) {
	var set OverwriteSet
	switch v := target.(type) {
	case *Member:
		guild := v.Guild()
		if everyone, ok := s.Get(guild.Key()); ok {
			set.Everyone = everyone
		}
		for _, roleID := range v.RoleIDs {
			if o, ok := s.Get(roleID.String()); ok {
				set.Roles = append(set.Roles, o)
			}
		}
		if o, ok := s.Get(v.Key()); ok {
			set.Member = o
		}
	case *Role:
		if everyone, ok := s.Get(v.guildID.String()); ok {
			set.Everyone = everyone
		}
		if o, ok := s.Get(v.Key()); ok {
			set.Roles = append(set.Roles, o)
		}
	default:
		return set, fmt.Errorf("overwrites: cannot resolve for %T", target)
	}
	return set, nil
}
