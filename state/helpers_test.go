package state

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fuad-daoud/discord-state/gateway"
	"github.com/fuad-daoud/discord-state/rest"
)

// fakeRequester serves canned bodies keyed by "METHOD route" and
// records every call it sees.
type fakeRequester struct {
	responses map[string]string
	calls     []string
}

func (f *fakeRequester) respond(method, route string) (json.RawMessage, error) {
	f.calls = append(f.calls, method+" "+route)
	if body, ok := f.responses[method+" "+route]; ok {
		return json.RawMessage(body), nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeRequester) Get(_ context.Context, route string, _ *rest.Request) (json.RawMessage, error) {
	return f.respond("GET", route)
}

func (f *fakeRequester) Post(_ context.Context, route string, _ *rest.Request) (json.RawMessage, error) {
	return f.respond("POST", route)
}

func (f *fakeRequester) Put(_ context.Context, route string, _ *rest.Request) (json.RawMessage, error) {
	return f.respond("PUT", route)
}

func (f *fakeRequester) Patch(_ context.Context, route string, _ *rest.Request) (json.RawMessage, error) {
	return f.respond("PATCH", route)
}

func (f *fakeRequester) Delete(_ context.Context, route string, _ *rest.Request) (json.RawMessage, error) {
	return f.respond("DELETE", route)
}

// recorder captures every emitted event in order.
type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) ofType(matches func(Event) bool) []Event {
	var out []Event
	for _, e := range r.events {
		if matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *recorder) {
	t.Helper()
	c, err := New("test-token", append([]Option{WithRequester(&fakeRequester{})}, opts...)...)
	require.NoError(t, err)
	rec := &recorder{}
	c.AddEventListener(rec)
	return c, rec
}

// handle marshals payload and routes it through the client like a live
// gateway envelope would be.
func handle(t *testing.T, c *Client, dispatchType string, payload map[string]any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	c.HandleDispatch(gateway.Envelope{Op: gateway.OpcodeDispatch, T: dispatchType, D: raw})
}

func guildPayload(id, name string) map[string]any {
	return map[string]any{
		"id":           id,
		"name":         name,
		"owner_id":     "100",
		"member_count": 0,
		"roles": []any{
			map[string]any{"id": id, "name": "@everyone", "permissions": "104324673"},
		},
	}
}

func textChannelPayload(id, guildID, name string) map[string]any {
	return map[string]any{
		"id":       id,
		"guild_id": guildID,
		"type":     0,
		"name":     name,
	}
}

func messagePayload(id, channelID, content string) map[string]any {
	return map[string]any{
		"id":         id,
		"channel_id": channelID,
		"content":    content,
		"type":       0,
		"timestamp":  "2024-05-01T10:00:00Z",
		"author":     map[string]any{"id": "500", "username": "author"},
	}
}
