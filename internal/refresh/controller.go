// Package refresh keeps a locally held snapshot eventually consistent with a
// remote store by combining fixed-interval polling with change-event
// triggered refetches. Each fetch replaces the snapshot wholesale; there is
// no incremental merge.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"carebridge-chat/internal/events"
)

const DefaultInterval = 3 * time.Second

// FetchFunc returns the full current state for the watched scope. It must be
// safe to call repeatedly and concurrently.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type Options struct {
	// Interval between polls. Defaults to DefaultInterval.
	Interval time.Duration
	// Subscriber and Channels, when set, add a change-event trigger on top
	// of the poll. The controller owns exactly one subscription and releases
	// it on Close.
	Subscriber events.Subscriber
	Channels   []string
}

// Controller re-invokes a fetch function on a fixed interval and on every
// change event, applying only the freshest result. Fetches are tagged with a
// monotonically increasing sequence at dispatch time; a result whose sequence
// is lower than the highest already applied is discarded, so a slow fetch can
// never overwrite a fresher list with staler data. The same guard covers
// OnUpdate delivery: a superseded result is never handed to the callback
// after a fresher one.
//
// A failed fetch keeps the previous snapshot and reports the error; the next
// trigger retries. There is no backoff.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	interval time.Duration
	sub      events.Subscriber
	channels []string

	onUpdate func(T)
	onError  func(error)

	seq atomic.Uint64

	mu          sync.Mutex
	snapshot    T
	hasSnapshot bool
	lastApplied uint64

	// cbMu serializes onUpdate delivery; the seq re-check under it keeps a
	// result that was fresh at apply time from being delivered after a
	// fresher one already reached the consumer.
	cbMu sync.Mutex

	kick      chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

func NewController[T any](fetch FetchFunc[T], opts Options) *Controller[T] {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller[T]{
		fetch:    fetch,
		interval: interval,
		sub:      opts.Subscriber,
		channels: opts.Channels,
		kick:     make(chan struct{}, 1),
	}
}

// OnUpdate registers a callback invoked after each applied snapshot.
// Must be called before Start.
func (c *Controller[T]) OnUpdate(fn func(T)) {
	c.onUpdate = fn
}

// OnError registers a callback invoked for each failed fetch.
// Must be called before Start.
func (c *Controller[T]) OnError(fn func(error)) {
	c.onError = fn
}

// Start performs an immediate fetch and begins polling and, if configured,
// listening for change events. Safe to call once; later calls are no-ops.
func (c *Controller[T]) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx, c.cancel = context.WithCancel(ctx)

		c.dispatch(ctx)

		c.wg.Add(1)
		go c.loop(ctx)

		if c.sub != nil && len(c.channels) > 0 {
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				_ = c.sub.Subscribe(ctx, c.channels, func(channel string, payload []byte) {
					c.Invalidate()
				})
			}()
		}
	})
}

// Invalidate forces a refetch on the next loop turn. Called after a
// successful local write so the new row shows up without waiting a full
// interval. Non-blocking; a pending invalidation absorbs further ones.
func (c *Controller[T]) Invalidate() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Snapshot returns the last applied fetch result. The second return is false
// until the first fetch has been applied.
func (c *Controller[T]) Snapshot() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, c.hasSnapshot
}

// Close stops the poll timer, releases the change-event subscription, and
// waits for in-flight fetches to settle. Idempotent.
func (c *Controller[T]) Close() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
	})
}

func (c *Controller[T]) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.dispatch(ctx)
		case <-c.kick:
			c.dispatch(ctx)
		}
	}
}

// dispatch launches a fetch tagged with the next sequence number. Fetches
// run concurrently; apply enforces the ordering.
func (c *Controller[T]) dispatch(ctx context.Context) {
	seq := c.seq.Add(1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		result, err := c.fetch(ctx)
		if err != nil {
			if c.onError != nil && ctx.Err() == nil {
				c.onError(err)
			}
			return
		}
		c.apply(seq, result)
	}()
}

func (c *Controller[T]) apply(seq uint64, result T) {
	c.mu.Lock()
	if seq <= c.lastApplied {
		c.mu.Unlock()
		return
	}
	c.lastApplied = seq
	c.snapshot = result
	c.hasSnapshot = true
	onUpdate := c.onUpdate
	c.mu.Unlock()

	if onUpdate == nil {
		return
	}

	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.mu.Lock()
	superseded := seq < c.lastApplied
	c.mu.Unlock()
	if !superseded {
		onUpdate(result)
	}
}
