package discord

import (
	"github.com/disgoorg/snowflake/v2"
)

type MessageType int

const (
	MessageTypeDefault MessageType = iota
	MessageTypeRecipientAdd
	MessageTypeRecipientRemove
	MessageTypeCall
	MessageTypeChannelNameChange
	MessageTypeChannelIconChange
	MessageTypeChannelPinnedMessage
	MessageTypeUserJoin
)

type Message struct {
	ID              snowflake.ID   `json:"id"`
	ChannelID       snowflake.ID   `json:"channel_id"`
	GuildID         snowflake.ID   `json:"guild_id"`
	Author          *User          `json:"author"`
	Member          *Member        `json:"member"`
	Content         string         `json:"content"`
	Timestamp       string         `json:"timestamp"`
	EditedTimestamp string         `json:"edited_timestamp"`
	TTS             bool           `json:"tts"`
	MentionEveryone bool           `json:"mention_everyone"`
	Mentions        []*User        `json:"mentions"`
	MentionRoles    []snowflake.ID `json:"mention_roles"`
	Pinned          bool           `json:"pinned"`
	WebhookID       snowflake.ID   `json:"webhook_id"`
	Type            MessageType    `json:"type"`
	Flags           int            `json:"flags"`
}

// PartialEmoji identifies the emoji of a reaction payload: custom emojis
// carry an id, unicode emojis only a name.
type PartialEmoji struct {
	ID       snowflake.ID `json:"id"`
	Name     string       `json:"name"`
	Animated bool         `json:"animated"`
}

// Key returns the reaction-store key: the custom emoji id, or the raw
// unicode string for standard emoji.
func (e PartialEmoji) Key() string {
	if e.ID != 0 {
		return e.ID.String()
	}
	return e.Name
}
