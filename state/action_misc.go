package state

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/logger/dlog"
)

// readyAction seeds the session: the connected user and one
// unavailable stub per guild the session belongs to. The stubs flip to
// available as their full payloads arrive.
type readyAction struct{}

func (readyAction) Run(c *Client, d *dispatch) {
	userData, ok := payloadMap(d.Data, "user")
	if !ok {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	self, err := c.Users.add(userData)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	c.selfID = self.ID()
	if stubs, ok := payloadList(d.Data, "guilds"); ok {
		for _, stub := range stubs {
			if _, err := c.Guilds.add(stub); err != nil {
				c.diagnose(d, err)
			}
		}
	}
	dlog.Info("session ready", "user", self.Tag(), "guilds", c.Guilds.Len())
	c.emit(Ready{User: self})
}

func presenceUpdateAction() Action {
	return &genericAction{
		check: func(c *Client, d *dispatch) Entity {
			guild, ok := d.guild(c)
			if !ok {
				return nil
			}
			userID, err := d.JSON.Get("user").Get("id").String()
			if err != nil {
				return nil
			}
			if p, ok := guild.Presences.Get(userID); ok {
				return p
			}
			return nil
		},
		build: func(c *Client, d *dispatch) (Entity, error) {
			guild, ok := d.guild(c)
			if !ok {
				return nil, nil
			}
			return guild.Presences.add(d.Data)
		},
		created: func(c *Client, e Entity) Event {
			return PresenceUpdate{Presence: e.(*Presence)}
		},
		updated: func(c *Client, e, old Entity) Event {
			return PresenceUpdate{Presence: e.(*Presence), Old: old.(*Presence)}
		},
	}
}

// typingStartAction is a pure relay; nothing about a typing indicator
// is worth caching.
type typingStartAction struct{}

func (typingStartAction) Run(c *Client, d *dispatch) {
	channelID, err := snowflake.Parse(d.JSON.Get("channel_id").MustString())
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	userID, err := snowflake.Parse(d.JSON.Get("user_id").MustString())
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	at := time.Unix(d.JSON.Get("timestamp").MustInt64(), 0)
	c.emit(TypingStart{ChannelID: channelID, UserID: userID, At: at})
}

// userUpdateAction only ever concerns the connected user.
type userUpdateAction struct{}

func (userUpdateAction) Run(c *Client, d *dispatch) {
	self, ok := c.Users.Get(c.selfID.String())
	if !ok {
		// no ready yet; commit without an old snapshot
		user, err := c.Users.add(d.Data)
		if err != nil {
			c.diagnose(d, err)
			return
		}
		c.selfID = user.ID()
		c.emit(UserUpdate{User: user})
		return
	}
	old := self.snapshot().(*User)
	if err := self.patch(d.Data); err != nil {
		c.diagnose(d, err)
		return
	}
	c.emit(UserUpdate{User: self, Old: old})
}

// voiceStateUpdateAction upserts on a channel id, removes on null.
type voiceStateUpdateAction struct{}

func (voiceStateUpdateAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	userID, err := payloadKey(d.Data, "user_id")
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	disconnected := d.Data["channel_id"] == nil
	existing, cached := guild.VoiceStates.Get(userID)
	if disconnected {
		if !cached {
			dlog.Debug("dropping dispatch", "type", d.Type)
			return
		}
		guild.VoiceStates.Delete(userID)
		existing.ChannelID = 0
		existing.deleted = true
		c.emit(VoiceStateUpdate{VoiceState: existing})
		return
	}
	if cached {
		old := existing.snapshot().(*VoiceState)
		if err := existing.patch(d.Data); err != nil {
			c.diagnose(d, err)
			return
		}
		c.emit(VoiceStateUpdate{VoiceState: existing, Old: old})
		return
	}
	vs, err := guild.VoiceStates.add(d.Data)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	c.emit(VoiceStateUpdate{VoiceState: vs})
}

func inviteCreateAction() Action {
	return &genericAction{
		build: func(c *Client, d *dispatch) (Entity, error) {
			guild, ok := d.guild(c)
			if !ok {
				return nil, nil
			}
			return guild.Invites.add(d.Data)
		},
		created: func(c *Client, e Entity) Event {
			return InviteCreate{Invite: e.(*Invite)}
		},
	}
}

type inviteDeleteAction struct{}

func (inviteDeleteAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	code, err := payloadKey(d.Data, "code")
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	invite, ok := guild.Invites.Get(code)
	if !ok {
		// revocation of an invite the session never cached; build it
		// for the event without committing
		d.Data["guild_id"] = guild.Key()
		e, err := c.registry.New("Invite", c, d.Data)
		if err != nil {
			c.diagnose(d, err)
			return
		}
		invite, ok = entityAs[*Invite](e)
		if !ok {
			c.diagnose(d, fmt.Errorf("%w: Invite built %T", ErrIncompatibleOverride, e))
			return
		}
	} else {
		guild.Invites.Delete(code)
	}
	invite.deleted = true
	c.emit(InviteDelete{Invite: invite})
}
