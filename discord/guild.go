package discord

import (
	"github.com/disgoorg/snowflake/v2"
)

type Guild struct {
	ID          snowflake.ID `json:"id"`
	Name        string       `json:"name"`
	Icon        string       `json:"icon"`
	Splash      string       `json:"splash"`
	OwnerID     snowflake.ID `json:"owner_id"`
	AfkTimeout  int          `json:"afk_timeout"`
	Large       bool         `json:"large"`
	Unavailable bool         `json:"unavailable"`
	MemberCount int          `json:"member_count"`
	Description string       `json:"description"`

	Roles       []map[string]any `json:"roles"`
	Emojis      []map[string]any `json:"emojis"`
	Members     []map[string]any `json:"members"`
	Channels    []map[string]any `json:"channels"`
	Presences   []map[string]any `json:"presences"`
	VoiceStates []map[string]any `json:"voice_states"`
}

type Role struct {
	ID          snowflake.ID `json:"id"`
	Name        string       `json:"name"`
	Color       int          `json:"color"`
	Hoist       bool         `json:"hoist"`
	Position    int          `json:"position"`
	Permissions Permissions  `json:"permissions"`
	Managed     bool         `json:"managed"`
	Mentionable bool         `json:"mentionable"`
}

type Emoji struct {
	ID            snowflake.ID   `json:"id"`
	Name          string         `json:"name"`
	Roles         []snowflake.ID `json:"roles"`
	RequireColons bool           `json:"require_colons"`
	Managed       bool           `json:"managed"`
	Animated      bool           `json:"animated"`
	Available     bool           `json:"available"`
}

type Ban struct {
	Reason string `json:"reason"`
	User   *User  `json:"user"`
}

type Invite struct {
	Code      string       `json:"code"`
	GuildID   snowflake.ID `json:"guild_id"`
	ChannelID snowflake.ID `json:"channel_id"`
	Inviter   *User        `json:"inviter"`
	MaxAge    int          `json:"max_age"`
	MaxUses   int          `json:"max_uses"`
	Temporary bool         `json:"temporary"`
	Uses      int          `json:"uses"`
	CreatedAt string       `json:"created_at"`
}

type Integration struct {
	ID             snowflake.ID `json:"id"`
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	Enabled        bool         `json:"enabled"`
	Syncing        bool         `json:"syncing"`
	RoleID         snowflake.ID `json:"role_id"`
	Account        Account      `json:"account"`
	SyncedAt       string       `json:"synced_at"`
	Revoked        bool         `json:"revoked"`
	ExpireBehavior int          `json:"expire_behavior"`
}

type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type VoiceState struct {
	GuildID    snowflake.ID `json:"guild_id"`
	ChannelID  snowflake.ID `json:"channel_id"`
	UserID     snowflake.ID `json:"user_id"`
	SessionID  string       `json:"session_id"`
	Deaf       bool         `json:"deaf"`
	Mute       bool         `json:"mute"`
	SelfDeaf   bool         `json:"self_deaf"`
	SelfMute   bool         `json:"self_mute"`
	SelfStream bool         `json:"self_stream"`
	SelfVideo  bool         `json:"self_video"`
	Suppress   bool         `json:"suppress"`
}
