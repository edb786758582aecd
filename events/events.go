package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"magbank/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeMagysChange     EventType = "magys_change"
	EventTypePlayCompleted   EventType = "play_completed"
	EventTypeRequestResolved EventType = "request_resolved"
	EventTypePrizeRedeemed   EventType = "prize_redeemed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// MagysChangeEvent represents a Magys balance change that occurred
type MagysChangeEvent struct {
	UserID     int64
	OldBalance int64
	NewBalance int64
	EventKind  models.EventType
	Amount     int64
}

func (e MagysChangeEvent) Type() EventType {
	return EventTypeMagysChange
}

// PlayCompletedEvent represents a settled slot play
type PlayCompletedEvent struct {
	UserID     int64
	GameID     int64
	Bet        int64
	Won        bool
	TicketsWon int64
}

func (e PlayCompletedEvent) Type() EventType {
	return EventTypePlayCompleted
}

// RequestResolvedEvent represents an account request that was resolved
type RequestResolvedEvent struct {
	AccountID    int64
	UserID       int64
	State        models.RequestState
	RewardIssued int64
}

func (e RequestResolvedEvent) Type() EventType {
	return EventTypeRequestResolved
}

// PrizeRedeemedEvent represents a completed prize redemption
type PrizeRedeemedEvent struct {
	RedemptionID int64
	UserID       int64
	PrizeID      int64
	Category     models.PrizeCategory
	TicketsSpent int64
}

func (e PrizeRedeemedEvent) Type() EventType {
	return EventTypePrizeRedeemed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after a successful commit.
// Events are best-effort telemetry; they never gate the transaction.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

// NewTransactionalBus creates a transactional bus on top of the main bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until the enclosing transaction commits
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use a background context so event delivery is independent of the
	// transaction context's lifetime
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events. Called after db rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
