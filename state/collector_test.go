package state

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenerCount(c *Client) int {
	c.listenerMu.RLock()
	defer c.listenerMu.RUnlock()
	return len(c.listeners)
}

func TestCollectMessagesFiltersAndStops(t *testing.T) {
	c, _ := newTestClient(t)
	setupChannel(t, c)
	before := listenerCount(c)

	col := c.CollectMessages(context.Background(), func(m *Message) bool {
		return m.Content == "match"
	}, CollectorOptions{Max: 1})

	go func() {
		handle(t, c, "MESSAGE_CREATE", messagePayload("70", "60", "skip"))
		handle(t, c, "MESSAGE_CREATE", messagePayload("71", "60", "match"))
	}()

	msg, ok := <-col.C
	require.True(t, ok)
	assert.Equal(t, "match", msg.Content)

	_, ok = <-col.C
	assert.False(t, ok, "the channel closes once the cap is hit")

	require.Eventually(t, func() bool { return listenerCount(c) == before }, time.Second, 5*time.Millisecond,
		"the backing listener must be deregistered")
}

func TestCollectorIdleTimeout(t *testing.T) {
	c, _ := newTestClient(t)
	before := listenerCount(c)

	col := c.CollectMessages(context.Background(), nil, CollectorOptions{Idle: 20 * time.Millisecond})

	select {
	case _, ok := <-col.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("collector did not time out")
	}
	require.Eventually(t, func() bool { return listenerCount(c) == before }, time.Second, 5*time.Millisecond)
}

func TestCollectorStopIsIdempotent(t *testing.T) {
	c, _ := newTestClient(t)
	before := listenerCount(c)

	col := c.CollectMessages(context.Background(), nil, CollectorOptions{})
	col.Stop()
	col.Stop()

	_, ok := <-col.C
	assert.False(t, ok)
	assert.Equal(t, before, listenerCount(c))
}

func TestCollectorContextCancel(t *testing.T) {
	c, _ := newTestClient(t)
	before := listenerCount(c)

	ctx, cancel := context.WithCancel(context.Background())
	col := c.CollectReactions(ctx, nil, CollectorOptions{})
	cancel()

	select {
	case _, ok := <-col.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("collector did not observe cancellation")
	}
	require.Eventually(t, func() bool { return listenerCount(c) == before }, time.Second, 5*time.Millisecond)
}

func TestAbandonedCollectorDoesNotStallDispatch(t *testing.T) {
	c, _ := newTestClient(t)
	setupChannel(t, c)

	// never read from col.C
	col := c.CollectMessages(context.Background(), nil, CollectorOptions{})
	defer col.Stop()

	for i := 0; i < 40; i++ {
		handle(t, c, "MESSAGE_CREATE", messagePayload(strconv.Itoa(100+i), "60", "flood"))
	}

	// dispatch stayed live past the collector's buffer
	handle(t, c, "GUILD_CREATE", guildPayload("11", "still-alive"))
	_, ok := c.Guilds.Get("11")
	assert.True(t, ok)
}
