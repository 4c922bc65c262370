package state

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/logger/dlog"
)

func (d *dispatch) reactionMessage(c *Client) (*Message, bool) {
	mc, ok := d.messageChannel(c)
	if !ok {
		return nil, false
	}
	id, err := d.JSON.Get("message_id").String()
	if err != nil {
		return nil, false
	}
	return mc.Messages().Get(id)
}

type messageReactionAddAction struct{}

func (messageReactionAddAction) Run(c *Client, d *dispatch) {
	msg, ok := d.reactionMessage(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	emojiData, ok := payloadMap(d.Data, "emoji")
	if !ok {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	reaction, err := msg.Reactions.add(RawData{"emoji": emojiData})
	if err != nil {
		c.diagnose(d, err)
		return
	}
	userID, err := snowflake.Parse(d.JSON.Get("user_id").MustString())
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	reaction.Count++
	reaction.users.AddID(userID)
	if userID == c.selfID {
		reaction.Me = true
	}
	// member payloads ride along on guild reactions
	if memberData, ok := payloadMap(d.Data, "member"); ok {
		if guild, cached := d.guild(c); cached {
			if _, err := guild.Members.add(memberData); err != nil {
				c.diagnose(d, err)
			}
		}
	}
	c.emit(MessageReactionAdd{Reaction: reaction, UserID: userID})
}

type messageReactionRemoveAction struct{}

func (messageReactionRemoveAction) Run(c *Client, d *dispatch) {
	msg, ok := d.reactionMessage(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	emojiData, ok := payloadMap(d.Data, "emoji")
	if !ok {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	key := reactionKey(emojiData)
	reaction, cached := msg.Reactions.Get(key)
	if !cached {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	userID, err := snowflake.Parse(d.JSON.Get("user_id").MustString())
	if err != nil {
		c.diagnose(d, ErrMalformedPayload)
		return
	}
	reaction.Count--
	reaction.users.Remove(userID.String())
	if userID == c.selfID {
		reaction.Me = false
	}
	if reaction.Count <= 0 {
		msg.Reactions.Delete(key)
		reaction.deleted = true
	}
	c.emit(MessageReactionRemove{Reaction: reaction, UserID: userID})
}

// messageReactionRemoveAllAction clears the message's entire nested
// reaction store in one operation and emits the snapshot it held.
type messageReactionRemoveAllAction struct{}

func (messageReactionRemoveAllAction) Run(c *Client, d *dispatch) {
	msg, ok := d.reactionMessage(c)
	if !ok {
		dlog.Debug("dropping dispatch", "type", d.Type)
		return
	}
	var removed []*Reaction
	msg.Reactions.ForEach(func(r *Reaction) bool {
		r.deleted = true
		removed = append(removed, r)
		return true
	})
	msg.Reactions.Clear()
	c.emit(MessageReactionRemoveAll{Message: msg, Removed: removed})
}

func reactionKey(emojiData RawData) string {
	if id, ok := emojiData["id"].(string); ok && id != "" {
		return id
	}
	name, _ := emojiData["name"].(string)
	return name
}
