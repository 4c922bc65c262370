package state

import (
	"context"
	"sync"
	"time"

	"github.com/fuad-daoud/discord-state/logger/dlog"
)

// CollectorOptions bound a collection run. Zero values mean unbounded
// on that axis; a run with no bound at all only ends when the context
// does or Stop is called.
type CollectorOptions struct {
	// Max closes the collector after this many matches.
	Max int
	// Idle closes the collector after this long without a match.
	Idle time.Duration
}

// Collector streams matched items until it is stopped, times out, or
// hits its match cap. The channel is closed exactly once, and the
// backing event listener is always deregistered.
type Collector[T any] struct {
	C <-chan T

	client   *Client
	listener string
	cancel   context.CancelFunc
	once     sync.Once
}

// Stop ends the run early. Safe to call more than once and after the
// channel already closed.
func (col *Collector[T]) Stop() {
	col.once.Do(func() {
		col.client.RemoveEventListener(col.listener)
		col.cancel()
	})
}

func collect[E Event, T any](ctx context.Context, c *Client, opts CollectorOptions, match func(E) (T, bool)) *Collector[T] {
	ctx, cancel := context.WithCancel(ctx)
	matched := make(chan T, 16)
	out := make(chan T)
	col := &Collector[T]{C: out, client: c, cancel: cancel}
	col.listener = c.AddEventListener(NewListenerFunc(func(e E) {
		item, ok := match(e)
		if !ok {
			return
		}
		// the listener runs on the dispatch path; a consumer that
		// stopped reading must not stall it, so overflow drops
		select {
		case matched <- item:
		default:
			dlog.Debug("collector backlogged, dropping match")
		}
	}))
	go func() {
		defer close(out)
		defer col.Stop()
		var idle *time.Timer
		var idleC <-chan time.Time
		if opts.Idle > 0 {
			idle = time.NewTimer(opts.Idle)
			idleC = idle.C
			defer idle.Stop()
		}
		seen := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-idleC:
				return
			case item := <-matched:
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
				seen++
				if opts.Max > 0 && seen >= opts.Max {
					return
				}
				if idle != nil {
					if !idle.Stop() {
						<-idle.C
					}
					idle.Reset(opts.Idle)
				}
			}
		}
	}()
	return col
}

// CollectMessages streams created messages that pass filter. A nil
// filter matches everything.
func (c *Client) CollectMessages(ctx context.Context, filter func(*Message) bool, opts CollectorOptions) *Collector[*Message] {
	return collect(ctx, c, opts, func(e MessageCreate) (*Message, bool) {
		if filter != nil && !filter(e.Message) {
			return nil, false
		}
		return e.Message, true
	})
}

// CollectReactions streams reaction additions that pass filter.
func (c *Client) CollectReactions(ctx context.Context, filter func(MessageReactionAdd) bool, opts CollectorOptions) *Collector[MessageReactionAdd] {
	return collect(ctx, c, opts, func(e MessageReactionAdd) (MessageReactionAdd, bool) {
		if filter != nil && !filter(e) {
			return e, false
		}
		return e, true
	})
}
