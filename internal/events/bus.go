// Package events provides the named-callback registry that replaces the
// original toolkit signal wiring. Controllers publish lifecycle and domain
// events through a Bus; any front-end can subscribe without the controllers
// knowing about it.
package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Lifecycle events published by every controller operation.
const (
	OperationStarted   = "operation.started"
	OperationCompleted = "operation.completed"
	OperationError     = "operation.error"
	LoadingChanged     = "loading.changed"
	DataChanged        = "data.changed"
)

// Domain events. Payloads are documented on the publishing controller method.
const (
	ClaimCreated       = "claim.created"
	ClaimUpdated       = "claim.updated"
	ClaimDeleted       = "claim.deleted"
	ClaimStatusChanged = "claim.status_changed"
	ClaimSelected      = "claim.selected"
	ClaimsLoaded       = "claims.loaded"
	PersonCreated      = "person.created"
	PersonUpdated      = "person.updated"
	PersonMerged       = "person.merged"
	UnitCreated        = "unit.created"
	UnitUpdated        = "unit.updated"
	BuildingCreated    = "building.created"
	BuildingUpdated    = "building.updated"
	UserLoggedIn       = "user.logged_in"
	SurveyLoaded       = "survey.loaded"
)

// Callback receives the arguments passed to Publish, in order.
type Callback func(args ...interface{})

// Bus is a minimal in-process pub/sub registry. Callbacks for an event are
// invoked in registration order; duplicates are allowed and invoked once per
// registration. A panicking callback is recovered and logged and does not
// prevent the remaining callbacks from running.
type Bus struct {
	mu        sync.RWMutex
	callbacks map[string][]*subscription
	logger    zerolog.Logger
}

type subscription struct {
	fn Callback
}

// NewBus creates an event bus that reports callback panics to logger.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		callbacks: make(map[string][]*subscription),
		logger:    logger,
	}
}

// Subscribe registers a callback for an event and returns a handle usable
// with Unsubscribe. The same callback may be registered multiple times.
func (b *Bus) Subscribe(event string, fn Callback) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{fn: fn}
	b.callbacks[event] = append(b.callbacks[event], sub)
	return &Subscription{bus: b, event: event, sub: sub}
}

// Subscription identifies one registration on the bus.
type Subscription struct {
	bus   *Bus
	event string
	sub   *subscription
}

// Unsubscribe removes this registration. Removing an already-removed
// subscription is a no-op.
func (s *Subscription) Unsubscribe() {
	s.bus.unsubscribe(s.event, s.sub)
}

func (b *Bus) unsubscribe(event string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.callbacks[event]
	for i, sub := range subs {
		if sub == target {
			b.callbacks[event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish invokes all callbacks registered for event, in registration order.
// It returns after every callback has run; panics are contained per callback.
func (b *Bus) Publish(event string, args ...interface{}) {
	b.mu.RLock()
	subs := make([]*subscription, len(b.callbacks[event]))
	copy(subs, b.callbacks[event])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.invoke(event, sub.fn, args)
	}
}

func (b *Bus) invoke(event string, fn Callback, args []interface{}) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("event", event).
				Interface("panic", r).
				Msg("Event callback panicked")
		}
	}()
	fn(args...)
}

// SubscriberCount returns the number of callbacks registered for event.
func (b *Bus) SubscriberCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.callbacks[event])
}
