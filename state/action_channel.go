package state

import (
	"time"

	"github.com/fuad-daoud/discord-state/logger/dlog"
)

type channelCreateAction struct{}

func (channelCreateAction) Run(c *Client, d *dispatch) {
	var guild *Guild
	if guildID, ok := d.guildID(); ok {
		g, cached := c.Guilds.Get(guildID)
		if !cached {
			// nowhere consistent to attach it
			dlog.Debug("dropping dispatch", "type", d.Type)
			return
		}
		guild = g
	}
	ch, err := c.Channels.add(d.Data)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	if guild != nil {
		guild.Channels.Add(ch.Key())
	}
	c.emit(ChannelCreate{Channel: ch})
}

type channelUpdateAction struct{}

func (channelUpdateAction) Run(c *Client, d *dispatch) {
	id := d.JSON.Get("id").MustString()
	if existing, ok := c.Channels.Get(id); ok {
		old := existing.snapshot()
		if err := existing.patch(d.Data); err != nil {
			c.diagnose(d, err)
			return
		}
		c.emit(ChannelUpdate{Channel: existing, Old: old.(Channel)})
		return
	}
	// first sight: commit without an event
	if guildID, ok := d.guildID(); ok {
		guild, cached := c.Guilds.Get(guildID)
		if !cached {
			dlog.Debug("dropping dispatch", "type", d.Type)
			return
		}
		ch, err := c.Channels.add(d.Data)
		if err != nil {
			c.diagnose(d, err)
			return
		}
		guild.Channels.Add(ch.Key())
		return
	}
	if _, err := c.Channels.add(d.Data); err != nil {
		c.diagnose(d, err)
	}
}

type channelDeleteAction struct{}

func (channelDeleteAction) Run(c *Client, d *dispatch) {
	id := d.JSON.Get("id").MustString()
	ch, ok := c.Channels.Get(id)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	c.Channels.Delete(id)
	if guildID, hasGuild := d.guildID(); hasGuild {
		if guild, cached := c.Guilds.Get(guildID); cached {
			guild.Channels.Remove(id)
		}
	}
	ch.markDeleted()
	c.emit(ChannelDelete{Channel: ch})
}

// channelPinsUpdateAction is a pure relay; the pin set itself is only
// fetched on demand.
type channelPinsUpdateAction struct{}

func (channelPinsUpdateAction) Run(c *Client, d *dispatch) {
	channelID, ok := d.channelID()
	if !ok {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	ch, cached := c.Channels.Get(channelID)
	if !cached {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	var lastPin time.Time
	if raw, err := d.JSON.Get("last_pin_timestamp").String(); err == nil {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			lastPin = parsed
		}
	}
	c.emit(ChannelPinsUpdate{Channel: ch, LastPinAt: lastPin})
}
