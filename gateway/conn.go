package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fuad-daoud/discord-state/logger/dlog"
	"github.com/gorilla/websocket"
	"golang.org/x/net/context"
)

const DefaultURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Conn is a deliberately thin socket client: it identifies, answers
// heartbeats and hands every dispatch to a single Handler in receipt
// order. Reconnection, resuming and sharding orchestration are the
// embedding application's concern.
type Conn struct {
	URL     string
	Token   string
	Intents int

	ws      *websocket.Conn
	writeMu sync.Mutex
	handler Handler
	done    chan struct{}
}

// writeJSON funnels every outbound frame through one mutex; the socket
// tolerates only a single writer, and the heartbeat goroutine writes
// concurrently with the read loop.
func (c *Conn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

func Dial(ctx context.Context, token string, intents int, handler Handler) (*Conn, error) {
	return DialURL(ctx, DefaultURL, token, intents, handler)
}

// DialURL connects to a specific gateway endpoint.
func DialURL(ctx context.Context, url, token string, intents int, handler Handler) (*Conn, error) {
	c := &Conn{
		URL:     url,
		Token:   token,
		Intents: intents,
		handler: handler,
		done:    make(chan struct{}),
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return nil, err
	}
	c.ws = ws
	go c.readLoop()
	return c, nil
}

func (c *Conn) Close() {
	close(c.done)
	err := c.ws.Close()
	if err != nil {
		dlog.Warn("closing gateway socket", "err", err)
	}
}

func (c *Conn) readLoop() {
	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			select {
			case <-c.done:
			default:
				dlog.Error("gateway read failed", "err", err)
			}
			return
		}
		switch env.Op {
		case OpcodeHello:
			var hello struct {
				HeartbeatInterval int `json:"heartbeat_interval"`
			}
			if err := json.Unmarshal(env.D, &hello); err != nil {
				dlog.Error("bad hello payload", "err", err)
				return
			}
			go c.heartbeat(time.Duration(hello.HeartbeatInterval) * time.Millisecond)
			if err := c.identify(); err != nil {
				dlog.Error("identify failed", "err", err)
				return
			}
		case OpcodeHeartbeat:
			if err := c.writeJSON(map[string]any{"op": OpcodeHeartbeat, "d": env.S}); err != nil {
				return
			}
		case OpcodeDispatch:
			c.handler(env)
		}
	}
}

func (c *Conn) identify() error {
	return c.writeJSON(map[string]any{
		"op": OpcodeIdentify,
		"d": map[string]any{
			"token":   c.Token,
			"intents": c.Intents,
			"properties": map[string]any{
				"os":      "linux",
				"browser": "discord-state",
				"device":  "discord-state",
			},
		},
	})
}

func (c *Conn) heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.writeJSON(map[string]any{"op": OpcodeHeartbeat, "d": nil}); err != nil {
				dlog.Warn("heartbeat write failed", "err", err)
				return
			}
		}
	}
}
