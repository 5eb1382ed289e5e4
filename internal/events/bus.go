// Package events implements the in-process event bus used for notification
// fan-out. Publishing is fire-and-forget: subscriber failures are logged and
// counted but never reach the publisher, so a broken notification path can
// never fail or roll back the aggregate mutation that produced the event.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/observability"
)

// Kind labels the aggregate events the portal emits.
type Kind string

const (
	KindMarksChanged       Kind = "marks.changed"
	KindAttendanceRecorded Kind = "attendance.recorded"
	KindBlackmarkAssigned  Kind = "blackmark.assigned"
	KindStudentRegistered  Kind = "student.registered"
	KindAdminLogin         Kind = "admin.login"
)

// Event describes a single aggregate mutation worth broadcasting.
type Event struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	StudentID uint      `json:"student_id,omitempty"`
	ActorID   uint      `json:"actor_id,omitempty"`
	At        time.Time `json:"at"`
}

// Handler consumes one event. Returned errors are logged, not propagated.
type Handler func(ctx context.Context, event Event) error

// Bus is a synchronous observer registry keyed by event kind.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
	logger   zerolog.Logger
}

// NewBus builds an empty bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Kind][]Handler),
		logger:   logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// SubscribeAll registers a handler for every known event kind.
func (b *Bus) SubscribeAll(handler Handler) {
	for _, kind := range []Kind{
		KindMarksChanged,
		KindAttendanceRecorded,
		KindBlackmarkAssigned,
		KindStudentRegistered,
		KindAdminLogin,
	} {
		b.Subscribe(kind, handler)
	}
}

// Publish delivers the event to every registered handler in order. Handler
// errors and panics are contained here.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Kind]))
	copy(handlers, b.handlers[event.Kind])
	b.mu.RUnlock()

	observability.EventsPublished().WithLabelValues(string(event.Kind)).Inc()

	for _, handler := range handlers {
		b.deliver(ctx, event, handler)
	}
}

func (b *Bus) deliver(ctx context.Context, event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			observability.EventDeliveryFailures().WithLabelValues(string(event.Kind)).Inc()
			b.logger.Error().Interface("panic", r).Str("kind", string(event.Kind)).Msg("event handler panicked")
		}
	}()

	if err := handler(ctx, event); err != nil {
		observability.EventDeliveryFailures().WithLabelValues(string(event.Kind)).Inc()
		b.logger.Warn().Err(err).Str("kind", string(event.Kind)).Msg("event handler failed")
	}
}
