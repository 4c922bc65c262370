package state

import (
	"github.com/fuad-daoud/discord-state/logger/dlog"
)

// messageChannel resolves the dispatch's channel if it is cached and
// carries message history.
func (d *dispatch) messageChannel(c *Client) (MessageChannel, bool) {
	id, ok := d.channelID()
	if !ok {
		return nil, false
	}
	ch, cached := c.Channels.Get(id)
	if !cached {
		return nil, false
	}
	mc, ok := ch.(MessageChannel)
	return mc, ok
}

type messageCreateAction struct{}

func (messageCreateAction) Run(c *Client, d *dispatch) {
	mc, ok := d.messageChannel(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	msg, err := mc.Messages().add(d.Data)
	if err != nil {
		c.diagnose(d, err)
		return
	}
	c.emit(MessageCreate{Message: msg})
}

func messageUpdateAction() Action {
	return &genericAction{
		check: func(c *Client, d *dispatch) Entity {
			mc, ok := d.messageChannel(c)
			if !ok {
				return nil
			}
			if msg, cached := mc.Messages().Get(d.JSON.Get("id").MustString()); cached {
				return msg
			}
			return nil
		},
		build: func(c *Client, d *dispatch) (Entity, error) {
			// edits to uncached (evicted or pre-session) messages have
			// no previous state to report against
			return nil, nil
		},
		updated: func(c *Client, e Entity, old Entity) Event {
			return MessageUpdate{Message: e.(*Message), Old: old.(*Message)}
		},
	}
}

type messageDeleteAction struct{}

func (messageDeleteAction) Run(c *Client, d *dispatch) {
	mc, ok := d.messageChannel(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	id := d.JSON.Get("id").MustString()
	msg, cached := mc.Messages().Get(id)
	if !cached {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	mc.Messages().Delete(id)
	msg.deleted = true
	c.emit(MessageDelete{Message: msg})
}

type messageDeleteBulkAction struct{}

func (messageDeleteBulkAction) Run(c *Client, d *dispatch) {
	mc, ok := d.messageChannel(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	ids, err := d.JSON.Get("ids").StringArray()
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	var deleted []*Message
	for _, id := range ids {
		msg, cached := mc.Messages().Get(id)
		if !cached {
			continue
		}
		mc.Messages().Delete(id)
		msg.deleted = true
		deleted = append(deleted, msg)
	}
	if len(deleted) > 0 {
		c.emit(MessageDeleteBulk{Messages: deleted})
	}
}
