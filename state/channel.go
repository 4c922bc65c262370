package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuad-daoud/discord-state/discord"
)

// Channel is the polymorphic face of the channel variants. The concrete
// type is chosen from the payload's numeric type discriminator through
// the registry, so hosts can substitute their own variants and unknown
// discriminators fail soft.
type Channel interface {
	Entity
	ID() snowflake.ID
	CreatedAt() time.Time
	Type() discord.ChannelType
	Deleted() bool
	markDeleted()
}

// channelTypeNames maps the wire discriminator to the registry name of
// the variant that handles it. A discriminator missing here is an
// unknown-discriminator drop.
var channelTypeNames = map[discord.ChannelType]string{
	discord.ChannelTypeGuildText:     "TextChannel",
	discord.ChannelTypeDM:            "DMChannel",
	discord.ChannelTypeGuildVoice:    "VoiceChannel",
	discord.ChannelTypeGroupDM:       "GroupDMChannel",
	discord.ChannelTypeGuildCategory: "CategoryChannel",
	discord.ChannelTypeGuildNews:     "NewsChannel",
	discord.ChannelTypeGuildStore:    "StoreChannel",
}

type baseChannel struct {
	discord.Channel

	client  *Client
	deleted bool
}

func (ch *baseChannel) ID() snowflake.ID {
	return ch.Channel.ID
}

func (ch *baseChannel) Key() string {
	return ch.Channel.ID.String()
}

func (ch *baseChannel) CreatedAt() time.Time {
	return createdAt(ch.Channel.ID)
}

func (ch *baseChannel) Type() discord.ChannelType {
	return ch.Channel.Type
}

func (ch *baseChannel) Guild() (*Guild, bool) {
	if ch.GuildID == 0 {
		return nil, false
	}
	return ch.client.Guilds.Get(ch.GuildID.String())
}

func (ch *baseChannel) Deleted() bool {
	return ch.deleted
}

func (ch *baseChannel) markDeleted() {
	ch.deleted = true
}

func (ch *baseChannel) Mention() string {
	return "<#" + ch.Channel.ID.String() + ">"
}

// guildChannel adds what every in-guild variant carries: permission
// overwrites, rebuilt wholesale whenever the payload includes them.
type guildChannel struct {
	baseChannel

	Overwrites *OverwriteStore
}

func (ch *guildChannel) patch(data RawData) error {
	if err := patchInto(&ch.baseChannel, data); err != nil {
		return err
	}
	if overwrites, ok := payloadList(data, "permission_overwrites"); ok {
		ch.Overwrites.Clear()
		for _, o := range overwrites {
			if _, err := ch.Overwrites.add(o); err != nil {
				return err
			}
		}
	}
	return nil
}

type TextChannel struct {
	guildChannel

	messages *MessageStore
	pins     *View[*Message]
}

// Messages is this channel's bounded message store.
func (ch *TextChannel) Messages() *MessageStore {
	return ch.messages
}

func (ch *TextChannel) snapshot() Entity {
	cp := *ch
	return &cp
}

// Pins is the view of pinned message ids over this channel's message
// store. FetchPins populates both.
func (ch *TextChannel) Pins() *View[*Message] {
	return ch.pins
}

// FetchPins retrieves the channel's pinned messages over REST, caching
// them in the message store and registering their ids in the pins view.
func (ch *TextChannel) FetchPins(ctx context.Context) ([]*Message, error) {
	raw, err := ch.client.rest.Get(ctx, fmt.Sprintf("/channels/%s/pins", ch.Key()), nil)
	if err != nil {
		return nil, err
	}
	pages, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	pinned := make([]*Message, 0, len(pages))
	for _, data := range pages {
		m, err := ch.messages.add(data)
		if err != nil {
			return nil, err
		}
		ch.pins.Add(m.Key())
		pinned = append(pinned, m)
	}
	return pinned, nil
}

type NewsChannel struct {
	TextChannel
}

func (ch *NewsChannel) snapshot() Entity {
	cp := *ch
	return &cp
}

type StoreChannel struct {
	guildChannel
}

func (ch *StoreChannel) snapshot() Entity {
	cp := *ch
	return &cp
}

type VoiceChannel struct {
	guildChannel
}

func (ch *VoiceChannel) snapshot() Entity {
	cp := *ch
	return &cp
}

// Members lists the members currently connected to this voice channel,
// resolved through the guild's voice states.
func (ch *VoiceChannel) Members() []*Member {
	guild, ok := ch.Guild()
	if !ok {
		return nil
	}
	var members []*Member
	guild.VoiceStates.ForEach(func(vs *VoiceState) bool {
		if vs.ChannelID == ch.Channel.ID {
			if m, ok := vs.Member(); ok {
				members = append(members, m)
			}
		}
		return true
	})
	return members
}

type CategoryChannel struct {
	guildChannel
}

func (ch *CategoryChannel) snapshot() Entity {
	cp := *ch
	return &cp
}

// Children lists the guild's channels parented under this category.
func (ch *CategoryChannel) Children() []Channel {
	guild, ok := ch.Guild()
	if !ok {
		return nil
	}
	var children []Channel
	guild.Channels.ForEach(func(c Channel) bool {
		if gc, ok := c.(interface{ Parent() snowflake.ID }); ok && gc.Parent() == ch.Channel.ID {
			children = append(children, c)
		}
		return true
	})
	return children
}

func (ch *baseChannel) Parent() snowflake.ID {
	return ch.ParentID
}

type DMChannel struct {
	baseChannel

	messages *MessageStore
}

func (ch *DMChannel) Messages() *MessageStore {
	return ch.messages
}

func (ch *DMChannel) patch(data RawData) error {
	if err := patchInto(&ch.baseChannel, data); err != nil {
		return err
	}
	if recipients, ok := payloadList(data, "recipients"); ok {
		for _, recipient := range recipients {
			if _, err := ch.client.Users.add(recipient); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ch *DMChannel) snapshot() Entity {
	cp := *ch
	return &cp
}

type GroupDMChannel struct {
	DMChannel
}

func (ch *GroupDMChannel) snapshot() Entity {
	cp := *ch
	return &cp
}

func newGuildChannel(c *Client) guildChannel {
	ch := guildChannel{baseChannel: baseChannel{client: c}}
	ch.Overwrites = newOverwriteStore(c, nil)
	return ch
}

func newTextChannel(c *Client, data RawData) (Entity, error) {
	ch := &TextChannel{guildChannel: newGuildChannel(c)}
	ch.Overwrites.channel = ch
	ch.messages = newMessageStore(c, ch)
	ch.pins = NewView(ch.messages.Store)
	if err := ch.patch(data); err != nil {
		return nil, err
	}
	return ch, nil
}

func newNewsChannel(c *Client, data RawData) (Entity, error) {
	ch := &NewsChannel{TextChannel{guildChannel: newGuildChannel(c)}}
	ch.Overwrites.channel = ch
	ch.messages = newMessageStore(c, ch)
	ch.pins = NewView(ch.messages.Store)
	if err := ch.patch(data); err != nil {
		return nil, err
	}
	return ch, nil
}

func newStoreChannel(c *Client, data RawData) (Entity, error) {
	ch := &StoreChannel{newGuildChannel(c)}
	ch.Overwrites.channel = ch
	if err := ch.patch(data); err != nil {
		return nil, err
	}
	return ch, nil
}

func newVoiceChannel(c *Client, data RawData) (Entity, error) {
	ch := &VoiceChannel{newGuildChannel(c)}
	ch.Overwrites.channel = ch
	if err := ch.patch(data); err != nil {
		return nil, err
	}
	return ch, nil
}

func newCategoryChannel(c *Client, data RawData) (Entity, error) {
	ch := &CategoryChannel{newGuildChannel(c)}
	ch.Overwrites.channel = ch
	if err := ch.patch(data); err != nil {
		return nil, err
	}
	return ch, nil
}

func newDMChannel(c *Client, data RawData) (Entity, error) {
	ch := &DMChannel{baseChannel: baseChannel{client: c}}
	ch.messages = newMessageStore(c, ch)
	if err := ch.patch(data); err != nil {
		return nil, err
	}
	return ch, nil
}

func newGroupDMChannel(c *Client, data RawData) (Entity, error) {
	ch := &GroupDMChannel{DMChannel{baseChannel: baseChannel{client: c}}}
	ch.messages = newMessageStore(c, ch)
	if err := ch.patch(data); err != nil {
		return nil, err
	}
	return ch, nil
}

// MessageChannel is satisfied by every variant that carries message
// history, including host-substituted variants embedding one.
type MessageChannel interface {
	Channel
	Messages() *MessageStore
}

// ChannelStore owns every channel the session knows, guild and DM
// alike. Guild channel membership is projected through each guild's
// channel view, never duplicated.
type ChannelStore struct {
	*Store[Channel]

	client *Client
}

func newChannelStore(c *Client) *ChannelStore {
	return &ChannelStore{Store: NewStore[Channel](c.limits.Channels), client: c}
}

func (s *ChannelStore) add(data RawData) (Channel, error) {
	key, err := payloadKey(data, "id")
	if err != nil {
		return nil, err
	}
	if existing, ok := s.Get(key); ok {
		return existing, existing.patch(data)
	}
	rawType, ok := payloadNumber(data, "type")
	if !ok {
		return nil, fmt.Errorf("%w: missing \"type\"", ErrMalformedPayload)
	}
	name, ok := channelTypeNames[discord.ChannelType(rawType)]
	if !ok {
		return nil, fmt.Errorf("%w: channel type %s", ErrUnknownDiscriminator, strconv.Itoa(int(rawType)))
	}
	e, err := s.client.registry.New(name, s.client, data)
	if err != nil {
		return nil, err
	}
	ch, ok := e.(Channel)
	if !ok {
		return nil, fmt.Errorf("%w: %s built %T", ErrIncompatibleOverride, name, e)
	}
	s.Set(key, ch)
	return ch, nil
}
