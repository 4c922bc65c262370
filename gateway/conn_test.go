package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

// The heartbeat goroutine writes concurrently with the read loop's
// identify and heartbeat replies; the socket tolerates one writer, so
// every outbound frame must still arrive whole.
func TestConcurrentWritesStayFramed(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := make(chan map[string]any, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer ws.Close()
		// a near-zero interval makes the heartbeats race the identify
		if err := ws.WriteJSON(map[string]any{
			"op": OpcodeHello,
			"d":  map[string]any{"heartbeat_interval": 1},
		}); err != nil {
			t.Error(err)
			return
		}
		for {
			var frame map[string]any
			if err := ws.ReadJSON(&frame); err != nil {
				close(frames)
				return
			}
			select {
			case frames <- frame:
			default:
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := DialURL(context.Background(), url, "token", 0, func(Envelope) {})
	require.NoError(t, err)
	defer conn.Close()

	identified := false
	heartbeats := 0
	deadline := time.After(2 * time.Second)
	for !identified || heartbeats < 5 {
		select {
		case frame, ok := <-frames:
			require.True(t, ok, "a torn frame kills the read side")
			switch Opcode(frame["op"].(float64)) {
			case OpcodeIdentify:
				identified = true
				assert.Equal(t, "token", frame["d"].(map[string]any)["token"])
			case OpcodeHeartbeat:
				heartbeats++
			}
		case <-deadline:
			t.Fatalf("saw identify=%v heartbeats=%d before the deadline", identified, heartbeats)
		}
	}
}
