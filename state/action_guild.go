package state

import (
	"fmt"

	"github.com/fuad-daoud/discord-state/logger/dlog"
)

// guildCreateAction overrides the default flow: a create dispatch for
// a cached guild is the unavailable→available transition, which re-runs
// the full hydration instead of emitting an update.
type guildCreateAction struct{}

func (guildCreateAction) Run(c *Client, d *dispatch) {
	id, err := d.JSON.Get("id").String()
	if err != nil || id == "" {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	if g, ok := c.Guilds.Get(id); ok {
		wasUnavailable := !g.Available()
		if err := g.patch(d.Data); err != nil {
			c.diagnose(d, err)
			return
		}
		if wasUnavailable && g.Available() {
			c.emit(GuildAvailable{Guild: g})
		}
		return
	}
	g, err := c.Guilds.add(d.Data)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	if g.Available() {
		c.emit(GuildCreate{Guild: g})
	}
}

func guildUpdateAction() Action {
	return &genericAction{
		check: func(c *Client, d *dispatch) Entity {
			if g, ok := c.Guilds.Get(d.JSON.Get("id").MustString()); ok {
				return g
			}
			return nil
		},
		build: func(c *Client, d *dispatch) (Entity, error) {
			// an update for a guild the session never saw is
			// undeliverable
			return nil, nil
		},
		updated: func(c *Client, e Entity, old Entity) Event {
			return GuildUpdate{Guild: e.(*Guild), Old: old.(*Guild)}
		},
	}
}

// guildDeleteAction distinguishes outage (unavailable flag set) from
// removal.
type guildDeleteAction struct{}

func (guildDeleteAction) Run(c *Client, d *dispatch) {
	g, ok := c.Guilds.Get(d.JSON.Get("id").MustString())
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	if unavailable, _ := d.JSON.Get("unavailable").Bool(); unavailable {
		g.available = false
		c.emit(GuildUnavailable{Guild: g})
		return
	}
	c.Guilds.Delete(g.Key())
	g.deleted = true
	g.available = false
	c.emit(GuildDelete{Guild: g})
}

// emojiWatchedFields is the explicit field set whose change makes the
// bulk reconcile treat an emoji as updated: name, role gating, and
// availability. animated and managed are immutable server-side, so
// payload drift on them is absorbed without an event.
func emojiChanged(e *Emoji, data RawData) bool {
	if name, ok := data["name"].(string); ok && name != e.Name {
		return true
	}
	if available, ok := data["available"].(bool); ok && available != e.Available {
		return true
	}
	if roles, ok := data["roles"].([]any); ok {
		if len(roles) != len(e.Roles) {
			return true
		}
		have := make(map[string]struct{}, len(e.Roles))
		for _, id := range e.Roles {
			have[id.String()] = struct{}{}
		}
		for _, raw := range roles {
			id, _ := raw.(string)
			if _, ok := have[id]; !ok {
				return true
			}
		}
	}
	return false
}

// guildEmojisUpdateAction reconciles the incoming full emoji list
// against the store: both-sided entries patch in place only on a
// watched-field change, incoming-only entries are creates, store-only
// entries are deletes.
type guildEmojisUpdateAction struct{}

func (guildEmojisUpdateAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	incoming, _ := payloadList(d.Data, "emojis")
	seen := make(map[string]struct{}, len(incoming))
	for _, data := range incoming {
		id, err := payloadKey(data, "id")
		if err != nil {
			c.diagnose(d, err)
			continue
		}
		seen[id] = struct{}{}
		if existing, ok := guild.Emojis.Get(id); ok {
			if !emojiChanged(existing, data) {
				continue
			}
			old := existing.snapshot()
			if err := existing.patch(data); err != nil {
				c.diagnose(d, err)
				continue
			}
			c.emit(EmojiUpdate{Emoji: existing, Old: old.(*Emoji)})
			continue
		}
		created, err := guild.Emojis.add(data)
		if err != nil {
			c.diagnose(d, err)
			continue
		}
		c.emit(EmojiCreate{Emoji: created})
	}
	for _, key := range guild.Emojis.Keys() {
		if _, ok := seen[key]; ok {
			continue
		}
		removed, _ := guild.Emojis.Get(key)
		guild.Emojis.Delete(key)
		removed.deleted = true
		c.emit(EmojiDelete{Emoji: removed})
	}
}

type guildBanAddAction struct{}

func (guildBanAddAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	ban, err := guild.Bans.add(d.Data)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	c.emit(GuildBanAdd{Ban: ban})
}

type guildBanRemoveAction struct{}

func (guildBanRemoveAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	userID, err := d.JSON.Get("user").Get("id").String()
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	ban, ok := guild.Bans.Get(userID)
	if !ok {
		// lift of a ban the session never cached; build it for the
		// event without committing
		d.Data["guild_id"] = guild.Key()
		e, err := c.registry.New("Ban", c, d.Data)
		if err != nil {
			c.diagnose(d, err)
			return
		}
		ban, ok = entityAs[*Ban](e)
		if !ok {
			c.diagnose(d, fmt.Errorf("%w: Ban built %T", ErrIncompatibleOverride, e))
			return
		}
	} else {
		guild.Bans.Delete(userID)
	}
	ban.deleted = true
	c.emit(GuildBanRemove{Ban: ban})
}

type guildIntegrationsUpdateAction struct{}

func (guildIntegrationsUpdateAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	c.emit(GuildIntegrationsUpdate{Guild: guild})
}

func integrationUpsertAction() Action {
	return &genericAction{
		check: func(c *Client, d *dispatch) Entity {
			guild, ok := d.guild(c)
			if !ok {
				return nil
			}
			if i, ok := guild.Integrations.Get(d.JSON.Get("id").MustString()); ok {
				return i
			}
			return nil
		},
		build: func(c *Client, d *dispatch) (Entity, error) {
			guild, ok := d.guild(c)
			if !ok {
				return nil, nil
			}
			i, err := guild.Integrations.add(d.Data)
			if err != nil {
				return nil, err
			}
			return i, nil
		},
		created: func(c *Client, e Entity) Event {
			return GuildIntegrationsUpdate{Guild: e.(*Integration).guild}
		},
		updated: func(c *Client, e Entity, old Entity) Event {
			return GuildIntegrationsUpdate{Guild: e.(*Integration).guild}
		},
	}
}

type integrationDeleteAction struct{}

func (integrationDeleteAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	id := d.JSON.Get("id").MustString()
	integration, ok := guild.Integrations.Get(id)
	if !ok {
		return
	}
	guild.Integrations.Delete(id)
	integration.deleted = true
	c.emit(GuildIntegrationsUpdate{Guild: guild})
}
