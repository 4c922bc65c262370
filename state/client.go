package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bitly/go-simplejson"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"

	"github.com/fuad-daoud/discord-state/gateway"
	"github.com/fuad-daoud/discord-state/logger/dlog"
	"github.com/fuad-daoud/discord-state/rest"
)

// Limits caps each store class by entry count. Unlimited disables the
// cap; zero turns the store into a writes-are-dropped no-op.
type Limits struct {
	Users        int
	Guilds       int
	Channels     int
	Members      int
	Roles        int
	Emojis       int
	Messages     int
	Presences    int
	VoiceStates  int
	Bans         int
	Invites      int
	Integrations int
	Reactions    int
	Overwrites   int
}

// DefaultLimits keeps every store unbounded except messages, the only
// class that grows without bound on a busy connection.
func DefaultLimits() Limits {
	return Limits{
		Users:        Unlimited,
		Guilds:       Unlimited,
		Channels:     Unlimited,
		Members:      Unlimited,
		Roles:        Unlimited,
		Emojis:       Unlimited,
		Messages:     100,
		Presences:    Unlimited,
		VoiceStates:  Unlimited,
		Bans:         Unlimited,
		Invites:      Unlimited,
		Integrations: Unlimited,
		Reactions:    Unlimited,
		Overwrites:   Unlimited,
	}
}

// Client is the dispatch-driven cache: feed it gateway envelopes
// through HandleDispatch and read the synchronized entity graph through
// the top-level stores. One dispatch is processed at a time; entity
// reads between dispatches observe a consistent snapshot.
type Client struct {
	Users    *UserStore
	Guilds   *GuildStore
	Channels *ChannelStore

	rest     rest.Requester
	registry *Registry
	limits   Limits
	actions  map[string]Action
	selfID   snowflake.ID

	dispatchMu sync.Mutex
	listenerMu sync.RWMutex
	listeners  map[string]EventListener
}

type Option func(c *Client)

// WithRequester swaps the REST transport, e.g. for a recording client
// in tests.
func WithRequester(r rest.Requester) Option {
	return func(c *Client) {
		c.rest = r
	}
}

func WithLimits(l Limits) Option {
	return func(c *Client) {
		c.limits = l
	}
}

// WithMessageCacheLimit caps the per-channel message stores only.
func WithMessageCacheLimit(n int) Option {
	return func(c *Client) {
		c.limits.Messages = n
	}
}

// WithRegistry installs a pre-populated registry. Built-in entity names
// already present in it are left alone, so registering a name up front
// is an alternative to Override.
func WithRegistry(r *Registry) Option {
	return func(c *Client) {
		c.registry = r
	}
}

// WithAction binds a dispatch type to a custom action, replacing the
// built-in one if any.
func WithAction(dispatchType string, a Action) Option {
	return func(c *Client) {
		c.actions[dispatchType] = a
	}
}

func New(token string, opts ...Option) (*Client, error) {
	c := &Client{
		rest:      rest.NewClient(token),
		registry:  NewRegistry(),
		limits:    DefaultLimits(),
		actions:   builtinActions(),
		listeners: make(map[string]EventListener),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := registerBuiltins(c.registry); err != nil {
		return nil, err
	}
	c.Users = newUserStore(c)
	c.Guilds = newGuildStore(c)
	c.Channels = newChannelStore(c)
	return c, nil
}

// Registry exposes the entity-type table for Override calls.
func (c *Client) Registry() *Registry {
	return c.registry
}

func (c *Client) SelfID() snowflake.ID {
	return c.selfID
}

// Self is the connected user; absent until the initial state payload
// arrives.
func (c *Client) Self() (*User, bool) {
	if c.selfID == 0 {
		return nil, false
	}
	return c.Users.Get(c.selfID.String())
}

// registerBuiltins installs every built-in entity constructor, skipping
// names the caller pre-registered through WithRegistry.
func registerBuiltins(r *Registry) error {
	builtins := []struct {
		name  string
		proto Entity
		fn    Constructor
	}{
		{"User", &User{}, newUser},
		{"Guild", &Guild{}, newGuild},
		{"Role", &Role{}, newRole},
		{"Member", &Member{}, newMember},
		{"Emoji", &Emoji{}, newEmoji},
		{"Presence", &Presence{}, newPresence},
		{"VoiceState", &VoiceState{}, newVoiceState},
		{"Ban", &Ban{}, newBan},
		{"Invite", &Invite{}, newInvite},
		{"Integration", &Integration{}, newIntegration},
		{"Message", &Message{}, newMessage},
		{"Reaction", &Reaction{}, newReaction},
		{"Overwrite", &Overwrite{}, newOverwrite},
		{"TextChannel", &TextChannel{}, newTextChannel},
		{"NewsChannel", &NewsChannel{}, newNewsChannel},
		{"StoreChannel", &StoreChannel{}, newStoreChannel},
		{"VoiceChannel", &VoiceChannel{}, newVoiceChannel},
		{"CategoryChannel", &CategoryChannel{}, newCategoryChannel},
		{"DMChannel", &DMChannel{}, newDMChannel},
		{"GroupDMChannel", &GroupDMChannel{}, newGroupDMChannel},
	}
	for _, b := range builtins {
		if err := r.Register(b.name, b.proto, b.fn); err != nil {
			if errors.Is(err, ErrAlreadyRegistered) {
				// pre-registered through WithRegistry
				continue
			}
			return err
		}
	}
	return nil
}

func builtinActions() map[string]Action {
	return map[string]Action{
		"READY":                       readyAction{},
		"GUILD_CREATE":                guildCreateAction{},
		"GUILD_UPDATE":                guildUpdateAction(),
		"GUILD_DELETE":                guildDeleteAction{},
		"GUILD_EMOJIS_UPDATE":         guildEmojisUpdateAction{},
		"GUILD_BAN_ADD":               guildBanAddAction{},
		"GUILD_BAN_REMOVE":            guildBanRemoveAction{},
		"GUILD_INTEGRATIONS_UPDATE":   guildIntegrationsUpdateAction{},
		"INTEGRATION_CREATE":          integrationUpsertAction(),
		"INTEGRATION_UPDATE":          integrationUpsertAction(),
		"INTEGRATION_DELETE":          integrationDeleteAction{},
		"GUILD_MEMBER_ADD":            guildMemberAddAction{},
		"GUILD_MEMBER_UPDATE":         guildMemberUpdateAction{},
		"GUILD_MEMBER_REMOVE":         guildMemberRemoveAction{},
		"GUILD_ROLE_CREATE":           guildRoleCreateAction{},
		"GUILD_ROLE_UPDATE":           guildRoleUpdateAction{},
		"GUILD_ROLE_DELETE":           guildRoleDeleteAction{},
		"CHANNEL_CREATE":              channelCreateAction{},
		"CHANNEL_UPDATE":              channelUpdateAction{},
		"CHANNEL_DELETE":              channelDeleteAction{},
		"CHANNEL_PINS_UPDATE":         channelPinsUpdateAction{},
		"MESSAGE_CREATE":              messageCreateAction{},
		"MESSAGE_UPDATE":              messageUpdateAction(),
		"MESSAGE_DELETE":              messageDeleteAction{},
		"MESSAGE_DELETE_BULK":         messageDeleteBulkAction{},
		"MESSAGE_REACTION_ADD":        messageReactionAddAction{},
		"MESSAGE_REACTION_REMOVE":     messageReactionRemoveAction{},
		"MESSAGE_REACTION_REMOVE_ALL": messageReactionRemoveAllAction{},
		"PRESENCE_UPDATE":             presenceUpdateAction(),
		"TYPING_START":                typingStartAction{},
		"USER_UPDATE":                 userUpdateAction{},
		"VOICE_STATE_UPDATE":          voiceStateUpdateAction{},
		"INVITE_CREATE":               inviteCreateAction(),
		"INVITE_DELETE":               inviteDeleteAction{},
	}
}

// HandleDispatch routes one gateway envelope through its action. Safe
// for concurrent callers; dispatches are serialized.
func (c *Client) HandleDispatch(env gateway.Envelope) {
	action, ok := c.actions[env.T]
	if !ok {
		dlog.Debug("no action for dispatch", "type", env.T)
		return
	}
	js, err := simplejson.NewJson(env.D)
	if err != nil {
		c.dispatchMu.Lock()
		c.diagnose(&dispatch{Type: env.T}, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
		c.dispatchMu.Unlock()
		return
	}
	data, err := js.Map()
	if err != nil {
		c.dispatchMu.Lock()
		c.diagnose(&dispatch{Type: env.T, JSON: js}, fmt.Errorf("%w: payload is not an object", ErrMalformedPayload))
		c.dispatchMu.Unlock()
		return
	}
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	action.Run(c, &dispatch{Type: env.T, Data: RawData(data), JSON: js})
}

// AddEventListener subscribes l to every emitted event and returns the
// id to deregister with.
func (c *Client) AddEventListener(l EventListener) string {
	id := uuid.NewString()
	c.listenerMu.Lock()
	c.listeners[id] = l
	c.listenerMu.Unlock()
	return id
}

func (c *Client) RemoveEventListener(id string) {
	c.listenerMu.Lock()
	delete(c.listeners, id)
	c.listenerMu.Unlock()
}

// emit delivers e to every listener, synchronously, in no particular
// order. Listener panics are the application's problem.
func (c *Client) emit(e Event) {
	c.listenerMu.RLock()
	snapshot := make([]EventListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		snapshot = append(snapshot, l)
	}
	c.listenerMu.RUnlock()
	for _, l := range snapshot {
		l.OnEvent(e)
	}
}

// requestMap performs a REST call expected to return a single object.
func (c *Client) requestMap(ctx context.Context, method, route string) (RawData, error) {
	return c.requestMapBody(ctx, method, route, nil, "")
}

func (c *Client) requestMapBody(ctx context.Context, method, route string, body RawData, reason string) (RawData, error) {
	raw, err := c.request(ctx, method, route, body, reason)
	if err != nil {
		return nil, err
	}
	var data RawData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", method, route, err)
	}
	return data, nil
}

// requestNone performs a REST call whose response body is discarded.
func (c *Client) requestNone(ctx context.Context, method, route, reason string) error {
	_, err := c.request(ctx, method, route, nil, reason)
	return err
}

func (c *Client) request(ctx context.Context, method, route string, body RawData, reason string) (json.RawMessage, error) {
	req := &rest.Request{Reason: reason}
	if body != nil {
		req.Body = body
	}
	switch method {
	case "GET":
		return c.rest.Get(ctx, route, req)
	case "POST":
		return c.rest.Post(ctx, route, req)
	case "PUT":
		return c.rest.Put(ctx, route, req)
	case "PATCH":
		return c.rest.Patch(ctx, route, req)
	case "DELETE":
		return c.rest.Delete(ctx, route, req)
	default:
		return nil, fmt.Errorf("unsupported method %s", method)
	}
}

// decodeList decodes a JSON array response into raw payload maps.
func decodeList(raw json.RawMessage) ([]RawData, error) {
	var list []RawData
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return list, nil
}
