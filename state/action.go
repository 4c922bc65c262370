package state

import (
	"errors"

	"github.com/bitly/go-simplejson"
	"github.com/fuad-daoud/discord-state/logger/dlog"
)

// dispatch is one decoded envelope in flight through an action: the
// payload both as a plain map (what patch consumes) and wrapped for
// path probing.
type dispatch struct {
	Type string
	Data RawData
	JSON *simplejson.Json
}

// guildID reads the guild reference most dispatches carry out-of-band.
func (d *dispatch) guildID() (string, bool) {
	id, err := d.JSON.Get("guild_id").String()
	return id, err == nil && id != ""
}

func (d *dispatch) channelID() (string, bool) {
	id, err := d.JSON.Get("channel_id").String()
	return id, err == nil && id != ""
}

// guild resolves the dispatch's owning guild; a miss means the
// dispatch is undeliverable and gets dropped.
func (d *dispatch) guild(c *Client) (*Guild, bool) {
	id, ok := d.guildID()
	if !ok {
		return nil, false
	}
	return c.Guilds.Get(id)
}

// Action handles exactly one dispatch type. Run executes synchronously
// to completion; nothing else mutates the cache while it does.
type Action interface {
	Run(c *Client, d *dispatch)
}

// genericAction is the default three-phase flow: check whether the
// entity is already cached (update path: snapshot, patch in place,
// emit new-then-old), otherwise build from the payload, commit, and
// emit create-shaped. Deletions, bulk reconciles and relays implement
// Run directly instead.
type genericAction struct {
	check   func(c *Client, d *dispatch) Entity
	build   func(c *Client, d *dispatch) (Entity, error)
	cache   func(c *Client, d *dispatch, e Entity)
	created func(c *Client, e Entity) Event
	updated func(c *Client, e Entity, old Entity) Event
}

func (a *genericAction) Run(c *Client, d *dispatch) {
	if a.check != nil {
		if found := a.check(c, d); found != nil {
			old := found.snapshot()
			if err := found.patch(d.Data); err != nil {
				c.diagnose(d, err)
				return
			}
			if a.updated != nil {
				c.emit(a.updated(c, found, old))
			}
			return
		}
	}
	built, err := a.build(c, d)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	if built == nil {
		// unresolvable reference: expected under eventual consistency
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	if a.cache != nil {
		a.cache(c, d, built)
	}
	if a.created != nil {
		c.emit(a.created(c, built))
	}
}

// diagnose reports a dropped dispatch on the diagnostic channel.
// Programming mistakes (incompatible overrides) surface here too, but
// loudly.
func (c *Client) diagnose(d *dispatch, err error) {
	if errors.Is(err, ErrIncompatibleOverride) {
		dlog.Error("dispatch dropped by incompatible override", "type", d.Type, "err", err)
	} else {
		dlog.Warn("dropping malformed dispatch", "type", d.Type, "err", err)
	}
	c.emit(Diagnostic{Dispatch: d.Type, Err: err})
}
