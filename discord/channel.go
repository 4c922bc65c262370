package discord

import (
	"github.com/disgoorg/snowflake/v2"
)

// ChannelType is the numeric discriminator the gateway sends for the
// concrete kind of a channel payload.
type ChannelType int

const (
	ChannelTypeGuildText ChannelType = iota
	ChannelTypeDM
	ChannelTypeGuildVoice
	ChannelTypeGroupDM
	ChannelTypeGuildCategory
	ChannelTypeGuildNews
	ChannelTypeGuildStore
)

func (t ChannelType) String() string {
	switch t {
	case ChannelTypeGuildText:
		return "text"
	case ChannelTypeDM:
		return "dm"
	case ChannelTypeGuildVoice:
		return "voice"
	case ChannelTypeGroupDM:
		return "group"
	case ChannelTypeGuildCategory:
		return "category"
	case ChannelTypeGuildNews:
		return "news"
	case ChannelTypeGuildStore:
		return "store"
	}
	return "unknown"
}

type Channel struct {
	ID                   snowflake.ID     `json:"id"`
	Type                 ChannelType      `json:"type"`
	GuildID              snowflake.ID     `json:"guild_id"`
	Position             int              `json:"position"`
	Name                 string           `json:"name"`
	Topic                string           `json:"topic"`
	NSFW                 bool             `json:"nsfw"`
	LastMessageID        snowflake.ID     `json:"last_message_id"`
	Bitrate              int              `json:"bitrate"`
	UserLimit            int              `json:"user_limit"`
	RateLimitPerUser     int              `json:"rate_limit_per_user"`
	Recipients           []*User          `json:"recipients"`
	ParentID             snowflake.ID     `json:"parent_id"`
	PermissionOverwrites []map[string]any `json:"permission_overwrites"`
}

// OverwriteType distinguishes role overwrites from member overwrites.
type OverwriteType int

const (
	OverwriteTypeRole OverwriteType = iota
	OverwriteTypeMember
)

type Overwrite struct {
	ID    snowflake.ID  `json:"id"`
	Type  OverwriteType `json:"type"`
	Allow Permissions   `json:"allow"`
	Deny  Permissions   `json:"deny"`
}
