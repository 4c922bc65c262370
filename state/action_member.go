package state

import (
	"github.com/fuad-daoud/discord-state/logger/dlog"
)

type guildMemberAddAction struct{}

func (guildMemberAddAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	member, err := guild.Members.add(d.Data)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	guild.MemberCount++
	c.emit(GuildMemberAdd{Member: member})
}

type guildMemberUpdateAction struct{}

func (guildMemberUpdateAction) Run(c *Client, d *dispatch) {
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
	if existing, ok := guild.Members.Get(userID); ok {
		old := existing.snapshot()
		if err := existing.patch(d.Data); err != nil {
			c.diagnose(d, err)
			return
		}
		c.emit(GuildMemberUpdate{Member: existing, Old: old.(*Member)})
		return
	}
	// first sight of this member: commit without an event, there is no
	// previous state to diff against
	if _, err := guild.Members.add(d.Data); err != nil {
		c.diagnose(d, err)
	}
}

type guildMemberRemoveAction struct{}

func (guildMemberRemoveAction) Run(c *Client, d *dispatch) {
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
	member, ok := guild.Members.Get(userID)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	guild.Members.Delete(userID)
	member.deleted = true
	if guild.MemberCount > 0 {
		guild.MemberCount--
	}
	c.emit(GuildMemberRemove{Member: member})
}
