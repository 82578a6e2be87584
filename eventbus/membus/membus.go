// Package membus provides an in-memory implementation of eventbus.EventBus.
package membus

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/dpup/syncauth/errors"
	"github.com/dpup/syncauth/eventbus"
	"github.com/dpup/syncauth/logging"
	"google.golang.org/grpc/codes"
)

// Returned by Wait when the context ends before handlers finish.
var ErrWaitTimeout = errors.NewC("eventbus: timeout waiting for handlers to finish", codes.DeadlineExceeded)

// Option configures the bus.
type Option func(*Bus)

// WithWorkerPool sets the number of goroutines handling messages. Zero starts
// a goroutine per message. Defaults to 4.
func WithWorkerPool(size int) Option {
	return func(b *Bus) {
		b.workers = size
	}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l logging.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// New returns a new in-memory EventBus. ctx is passed to handlers.
func New(ctx context.Context, opts ...Option) *Bus {
	b := &Bus{
		ctx:     ctx,
		workers: 4,
		jobs:    make(chan job, 64),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNopLogger()
	}
	b.logger = b.logger.Named("eventbus")
	return b
}

type job struct {
	handler eventbus.Handler
	msg     *eventbus.Message
}

// Bus is an in-memory implementation of EventBus.
type Bus struct {
	ctx         context.Context
	logger      logging.Logger
	subscribers map[string][]eventbus.Handler

	mu sync.Mutex     // Protects subscribers and the jobs channel state.
	wg sync.WaitGroup // Waits for active handlers to complete.

	jobs    chan job
	workers int
	started bool
	closed  bool
}

var _ eventbus.EventBus = (*Bus)(nil)

// Subscribe registers a handler for topic.
func (b *Bus) Subscribe(topic string, handler eventbus.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers == nil {
		b.subscribers = make(map[string][]eventbus.Handler)
	}
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish sends a message to all subscribers of topic. It never blocks: when
// the worker queue is full, or the bus is shut down, the handler runs on its
// own goroutine.
func (b *Bus) Publish(topic string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Workers start on first publish.
	if !b.started && !b.closed {
		for range b.workers {
			go b.worker()
		}
		b.started = true
	}

	for _, handler := range b.subscribers[topic] {
		msg := eventbus.NewMessage(generateMessageID(), topic, data)
		b.wg.Add(1)
		if b.workers == 0 || b.closed {
			go b.execute(handler, msg)
			continue
		}
		select {
		case b.jobs <- job{handler: handler, msg: msg}:
		default:
			go b.execute(handler, msg)
		}
	}
}

// Shutdown stops the workers once pending messages are handled.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		if b.started && b.workers > 0 {
			close(b.jobs)
		}
		b.closed = true
	}
	b.mu.Unlock()
	return b.Wait(ctx)
}

// Wait blocks until all pending messages are processed.
func (b *Bus) Wait(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		b.wg.Wait()
	}()
	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return errors.Mark(ErrWaitTimeout, 0)
	}
}

func (b *Bus) worker() {
	for j := range b.jobs {
		b.execute(j.handler, j.msg)
	}
}

func (b *Bus) execute(handler eventbus.Handler, msg *eventbus.Message) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Wrap(r, 2)
			b.logger.Errorw("eventbus: recovered from panic",
				"error", r, "error.stack_trace", err.MinimalStack(0, 5), "message_id", msg.ID)
		}
		b.wg.Done()
	}()
	if err := handler(b.ctx, msg); err != nil {
		fields := append([]interface{}{"message_id", msg.ID, "topic", msg.Topic}, logging.ErrorFields(err)...)
		b.logger.Errorw("eventbus: handler error", fields...)
	}
}

func generateMessageID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
