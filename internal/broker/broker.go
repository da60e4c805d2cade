// Package broker fans the update flags of applied edits out to observers.
// Each subscriber registers with a flag mask and only hears about updates
// that touch one of its bits.
package broker

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/trackedit/trackedit/internal/channel"
	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/pkg/core"
)

const instrumentationName = "github.com/trackedit/trackedit/internal/broker"

// Update is one notification.
type Update struct {
	Session string
	Flags   core.UpdateFlags
}

// Func receives updates.
type Func func(Update)

type subscription struct {
	name  string
	mask  core.UpdateFlags
	fn    Func
	queue channel.Channel[Update]
	done  chan struct{}
}

// Option configures a subscription.
type Option func(*subscription)

// Queued delivers updates on the subscriber's own goroutine through a queue
// of the given size. Updates arriving while the queue is full are dropped.
func Queued(size int) Option {
	return func(s *subscription) {
		s.queue = channel.New[Update](size)
	}
}

// Broker delivers updates to subscribers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	logger dispatcher.Logger

	published metric.Int64Counter
	delivered metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a broker. Uses the global OTel meter for metrics.
func New(logger dispatcher.Logger) (*Broker, error) {
	b := &Broker{subs: make(map[int]*subscription), logger: logger}
	m := otel.Meter(instrumentationName)

	var err error
	b.published, err = m.Int64Counter(
		"broker.updates.published",
		metric.WithDescription("Updates published"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}
	b.delivered, err = m.Int64Counter(
		"broker.updates.delivered",
		metric.WithDescription("Updates handed to subscribers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivered counter: %w", err)
	}
	b.dropped, err = m.Int64Counter(
		"broker.updates.dropped",
		metric.WithDescription("Updates dropped due to a full subscriber queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	return b, nil
}

// Subscribe registers fn for updates matching mask and returns a function
// that removes the subscription. A zero mask matches nothing.
func (b *Broker) Subscribe(name string, mask core.UpdateFlags, fn Func, opts ...Option) (unsubscribe func()) {
	s := &subscription{name: name, mask: mask, fn: fn}
	for _, opt := range opts {
		opt(s)
	}
	if s.queue != nil {
		s.done = make(chan struct{})
		go s.run()
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			if s.queue != nil {
				s.queue.Close()
				<-s.done
			}
		})
	}
}

func (s *subscription) run() {
	defer close(s.done)
	for u := range s.queue.Receive() {
		s.fn(u)
	}
}

// Publish delivers u to every matching subscriber. Direct subscribers run on
// the publishing goroutine.
func (b *Broker) Publish(u Update) {
	if u.Flags == core.NoChange {
		return
	}
	ctx := context.Background()
	b.published.Add(ctx, 1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if !u.Flags.Has(s.mask) {
			continue
		}
		attrs := metric.WithAttributes(attribute.String("subscriber", s.name))
		if s.queue == nil {
			s.fn(u)
			b.delivered.Add(ctx, 1, attrs)
			continue
		}
		if s.queue.TrySend(u) {
			b.delivered.Add(ctx, 1, attrs)
			continue
		}
		b.dropped.Add(ctx, 1, attrs)
		if b.logger != nil {
			b.logger.Error("subscriber queue full", "subscriber", s.name, "session", u.Session, "flags", u.Flags.String())
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// ForSession returns a publisher that tags every update with the session name.
func (b *Broker) ForSession(name string) *SessionPublisher {
	return &SessionPublisher{broker: b, session: name}
}

// SessionPublisher publishes the updates of one session.
type SessionPublisher struct {
	broker  *Broker
	session string
}

// Publish implements undo.Publisher.
func (p *SessionPublisher) Publish(flags core.UpdateFlags) {
	p.broker.Publish(Update{Session: p.session, Flags: flags})
}
