package state

import (
	"fmt"

	"github.com/fuad-daoud/discord-state/logger/dlog"
)

// Role dispatches nest the role payload under a "role" key, so they
// run the three phases against that fragment rather than the envelope
// payload, which rules out the generic runner.
type guildRoleCreateAction struct{}

func (guildRoleCreateAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	roleData, ok := payloadMap(d.Data, "role")
	if !ok {
		c.diagnose(d, fmt.Errorf("%w: missing \"role\"", ErrMalformedPayload))
		return
	}
	role, err := guild.Roles.add(roleData)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	c.emit(GuildRoleCreate{Role: role})
}

type guildRoleUpdateAction struct{}

func (guildRoleUpdateAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	roleData, ok := payloadMap(d.Data, "role")
	if !ok {
		c.diagnose(d, fmt.Errorf("%w: missing \"role\"", ErrMalformedPayload))
		return
	}
	id, err := payloadKey(roleData, "id")
	if err != nil {
		c.diagnose(d, err)
		return
	}
	if existing, ok := guild.Roles.Get(id); ok {
		old := existing.snapshot()
		if err := existing.patch(roleData); err != nil {
			c.diagnose(d, err)
			return
		}
		c.emit(GuildRoleUpdate{Role: existing, Old: old.(*Role)})
		return
	}
	role, err := guild.Roles.add(roleData)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	c.emit(GuildRoleCreate{Role: role})
}

type guildRoleDeleteAction struct{}

func (guildRoleDeleteAction) Run(c *Client, d *dispatch) {
	guild, ok := d.guild(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	id := d.JSON.Get("role_id").MustString()
	role, ok := guild.Roles.Get(id)
	if !ok {
		return
	}
	guild.Roles.Delete(id)
	role.deleted = true
	c.emit(GuildRoleDelete{Role: role})
}
