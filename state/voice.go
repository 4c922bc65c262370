package state

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceState tracks where in the guild's voice channels a user sits.
// Keyed by user id; a null channel id on the update dispatch means the
// user disconnected and the state is removed.
type VoiceState struct {
	ChannelID  snowflake.ID `json:"channel_id"`
	SessionID  string       `json:"session_id"`
	Deaf       bool         `json:"deaf"`
	Mute       bool         `json:"mute"`
	SelfDeaf   bool         `json:"self_deaf"`
	SelfMute   bool         `json:"self_mute"`
	SelfStream bool         `json:"self_stream"`
	SelfVideo  bool         `json:"self_video"`
	Suppress   bool         `json:"suppress"`

	client  *Client
	guild   *Guild
	userID  snowflake.ID
	deleted bool
}

func (v *VoiceState) ID() snowflake.ID {
	return v.userID
}

func (v *VoiceState) Key() string {
	return v.userID.String()
}

func (v *VoiceState) CreatedAt() time.Time {
	return createdAt(v.userID)
}

func (v *VoiceState) Guild() *Guild {
	return v.guild
}

func (v *VoiceState) Member() (*Member, bool) {
	return v.guild.Members.Get(v.userID.String())
}

func (v *VoiceState) Channel() (Channel, bool) {
	if v.ChannelID == 0 {
		return nil, false
	}
	return v.client.Channels.Get(v.ChannelID.String())
}

func (v *VoiceState) Deleted() bool {
	return v.deleted
}

func (v *VoiceState) patch(data RawData) error {
	if _, ok := data["channel_id"]; ok {
		// null means disconnect, which mapstructure would skip
		if data["channel_id"] == nil {
			v.ChannelID = 0
		}
	}
	return patchInto(v, data)
}

func (v *VoiceState) snapshot() Entity {
	cp := *v
	return &cp
}

func newVoiceState(c *Client, data RawData) (Entity, error) {
	guildID, err := payloadID(data, "guild_id")
	if err != nil {
		return nil, err
	}
	guild, ok := c.Guilds.Get(guildID.String())
	if !ok {
		return nil, fmt.Errorf("%w: guild %s", ErrMalformedPayload, guildID)
	}
	userID, err := payloadID(data, "user_id")
	if err != nil {
		return nil, err
	}
	v := &VoiceState{client: c, guild: guild, userID: userID}
	if err := v.patch(data); err != nil {
		return nil, err
	}
	return v, nil
}

type VoiceStateStore struct {
	*Store[*VoiceState]

	client *Client
	guild  *Guild
}

func newVoiceStateStore(g *Guild) *VoiceStateStore {
	return &VoiceStateStore{Store: NewStore[*VoiceState](g.client.limits.VoiceStates), client: g.client, guild: g}
}

func (s *VoiceStateStore) add(data RawData) (*VoiceState, error) {
	key, err := payloadKey(data, "user_id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	data["guild_id"] = s.guild.Key()
	e, err := s.client.registry.New("VoiceState", s.client, data)
	if err != nil {
		return nil, err
	}
	v, ok := entityAs[*VoiceState](e)
	if !ok {
		return nil, fmt.Errorf("%w: VoiceState built %T", ErrIncompatibleOverride, e)
	}
	s.Set(key, v)
	return v, nil
}
