package state

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Event is anything the client emits to application subscribers. The
// catalog and each event's field set are a public contract: create
// events and pure relays carry the new state alone, update events
// additionally carry the pre-mutation snapshot in Old, delete events
// carry the entity with its Deleted flag set.
type Event interface {
	eventType() string
}

// EventListener receives every emitted event; use NewListenerFunc for
// a listener scoped to one event type.
type EventListener interface {
	OnEvent(e Event)
}

type listenerFunc[E Event] struct {
	f func(e E)
}

func (l listenerFunc[E]) OnEvent(e Event) {
	if typed, ok := e.(E); ok {
		l.f(typed)
	}
}

func NewListenerFunc[E Event](f func(e E)) EventListener {
	return listenerFunc[E]{f: f}
}

// Ready fires once the initial state payload is processed.
type Ready struct {
	User *User
}

func (Ready) eventType() string { return "ready" }

// Diagnostic is the out-of-band channel for dropped dispatches:
// malformed payloads and unknown discriminators land here instead of
// the typed events.
type Diagnostic struct {
	Dispatch string
	Err      error
}

func (Diagnostic) eventType() string { return "diagnostic" }

type GuildCreate struct {
	Guild *Guild
}

func (GuildCreate) eventType() string { return "guildCreate" }

type GuildUpdate struct {
	Guild *Guild
	Old   *Guild
}

func (GuildUpdate) eventType() string { return "guildUpdate" }

type GuildDelete struct {
	Guild *Guild
}

func (GuildDelete) eventType() string { return "guildDelete" }

type GuildAvailable struct {
	Guild *Guild
}

func (GuildAvailable) eventType() string { return "guildAvailable" }

type GuildUnavailable struct {
	Guild *Guild
}

func (GuildUnavailable) eventType() string { return "guildUnavailable" }

type GuildMemberAdd struct {
	Member *Member
}

func (GuildMemberAdd) eventType() string { return "guildMemberAdd" }

type GuildMemberUpdate struct {
	Member *Member
	Old    *Member
}

func (GuildMemberUpdate) eventType() string { return "guildMemberUpdate" }

type GuildMemberRemove struct {
	Member *Member
}

func (GuildMemberRemove) eventType() string { return "guildMemberRemove" }

type GuildRoleCreate struct {
	Role *Role
}

func (GuildRoleCreate) eventType() string { return "guildRoleCreate" }

type GuildRoleUpdate struct {
	Role *Role
	Old  *Role
}

func (GuildRoleUpdate) eventType() string { return "guildRoleUpdate" }

type GuildRoleDelete struct {
	Role *Role
}

func (GuildRoleDelete) eventType() string { return "guildRoleDelete" }

type EmojiCreate struct {
	Emoji *Emoji
}

func (EmojiCreate) eventType() string { return "emojiCreate" }

type EmojiUpdate struct {
	Emoji *Emoji
	Old   *Emoji
}

func (EmojiUpdate) eventType() string { return "emojiUpdate" }

type EmojiDelete struct {
	Emoji *Emoji
}

func (EmojiDelete) eventType() string { return "emojiDelete" }

type GuildBanAdd struct {
	Ban *Ban
}

func (GuildBanAdd) eventType() string { return "guildBanAdd" }

type GuildBanRemove struct {
	Ban *Ban
}

func (GuildBanRemove) eventType() string { return "guildBanRemove" }

// GuildIntegrationsUpdate is a pure relay: the payload carries nothing
// cacheable beyond the guild reference.
type GuildIntegrationsUpdate struct {
	Guild *Guild
}

func (GuildIntegrationsUpdate) eventType() string { return "guildIntegrationsUpdate" }

type ChannelCreate struct {
	Channel Channel
}

func (ChannelCreate) eventType() string { return "channelCreate" }

type ChannelUpdate struct {
	Channel Channel
	Old     Channel
}

func (ChannelUpdate) eventType() string { return "channelUpdate" }

type ChannelDelete struct {
	Channel Channel
}

func (ChannelDelete) eventType() string { return "channelDelete" }

type ChannelPinsUpdate struct {
	Channel   Channel
	LastPinAt time.Time
}

func (ChannelPinsUpdate) eventType() string { return "channelPinsUpdate" }

type MessageCreate struct {
	Message *Message
}

func (MessageCreate) eventType() string { return "messageCreate" }

type MessageUpdate struct {
	Message *Message
	Old     *Message
}

func (MessageUpdate) eventType() string { return "messageUpdate" }

type MessageDelete struct {
	Message *Message
}

func (MessageDelete) eventType() string { return "messageDelete" }

type MessageDeleteBulk struct {
	Messages []*Message
}

func (MessageDeleteBulk) eventType() string { return "messageDeleteBulk" }

type MessageReactionAdd struct {
	Reaction *Reaction
	UserID   snowflake.ID
}

func (MessageReactionAdd) eventType() string { return "messageReactionAdd" }

type MessageReactionRemove struct {
	Reaction *Reaction
	UserID   snowflake.ID
}

func (MessageReactionRemove) eventType() string { return "messageReactionRemove" }

// MessageReactionRemoveAll carries the snapshot of everything that was
// cleared in the single store-wide removal.
type MessageReactionRemoveAll struct {
	Message *Message
	Removed []*Reaction
}

func (MessageReactionRemoveAll) eventType() string { return "messageReactionRemoveAll" }

type PresenceUpdate struct {
	Presence *Presence
	Old      *Presence
}

func (PresenceUpdate) eventType() string { return "presenceUpdate" }

// TypingStart is a pure relay of the typing indicator.
type TypingStart struct {
	ChannelID snowflake.ID
	UserID    snowflake.ID
	At        time.Time
}

func (TypingStart) eventType() string { return "typingStart" }

type UserUpdate struct {
	User *User
	Old  *User
}

func (UserUpdate) eventType() string { return "userUpdate" }

type VoiceStateUpdate struct {
	VoiceState *VoiceState
	Old        *VoiceState
}

func (VoiceStateUpdate) eventType() string { return "voiceStateUpdate" }

type InviteCreate struct {
	Invite *Invite
}

func (InviteCreate) eventType() string { return "inviteCreate" }

type InviteDelete struct {
	Invite *Invite
}

func (InviteDelete) eventType() string { return "inviteDelete" }
