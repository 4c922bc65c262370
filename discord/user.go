package discord

import (
	"github.com/disgoorg/snowflake/v2"
)

type User struct {
	ID            snowflake.ID `json:"id"`
	Username      string       `json:"username"`
	Discriminator string       `json:"discriminator"`
	GlobalName    string       `json:"global_name"`
	Avatar        string       `json:"avatar"`
	Bot           bool         `json:"bot"`
	System        bool         `json:"system"`
	Banner        string       `json:"banner"`
	AccentColor   int          `json:"accent_color"`
	Locale        string       `json:"locale"`
	Flags         int          `json:"flags"`
	PublicFlags   int          `json:"public_flags"`
}

func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

type Member struct {
	User     *User          `json:"user"`
	Nick     string         `json:"nick"`
	Roles    []snowflake.ID `json:"roles"`
	JoinedAt string         `json:"joined_at"`
	Deaf     bool           `json:"deaf"`
	Mute     bool           `json:"mute"`
	Pending  bool           `json:"pending"`
}

type Presence struct {
	User       *User        `json:"user"`
	GuildID    snowflake.ID `json:"guild_id"`
	Status     string       `json:"status"`
	Activities []Activity   `json:"activities"`
}

type Activity struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	URL   string `json:"url"`
	State string `json:"state"`
}
