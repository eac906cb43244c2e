// Package notify delivers lifecycle events to user inboxes. Delivery is
// fire-and-forget: the engine hands events to a buffered channel and a
// single consumer goroutine persists them. A slow or failing sink never
// blocks a lifecycle transition.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"civicworks-be/lifecycle"
	"civicworks-be/models"
)

// Sink persists one notification.
type Sink interface {
	SaveNotification(ctx context.Context, n models.Notification) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, n models.Notification) error

func (f SinkFunc) SaveNotification(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// Emitter implements lifecycle.Emitter over a buffered channel.
type Emitter struct {
	sink   Sink
	log    zerolog.Logger
	events chan lifecycle.Event
	done   chan struct{}
}

// NewEmitter builds an emitter with the given queue capacity.
func NewEmitter(sink Sink, log zerolog.Logger, capacity int) *Emitter {
	if capacity <= 0 {
		capacity = 256
	}
	return &Emitter{
		sink:   sink,
		log:    log,
		events: make(chan lifecycle.Event, capacity),
		done:   make(chan struct{}),
	}
}

// Emit enqueues the event without blocking. When the queue is full the
// event is dropped and counted against the log; losing a notification is
// acceptable, stalling a transition is not.
func (e *Emitter) Emit(event lifecycle.Event) {
	select {
	case e.events <- event:
	default:
		e.log.Warn().
			Str("recipient", event.Recipient.Hex()).
			Str("title", event.Title).
			Msg("notification queue full, event dropped")
	}
}

// Start launches the consumer goroutine. It drains the queue until the
// context is cancelled, then persists whatever is still buffered.
func (e *Emitter) Start(ctx context.Context) {
	go func() {
		defer close(e.done)
		for {
			select {
			case event := <-e.events:
				e.deliver(event)
			case <-ctx.Done():
				for {
					select {
					case event := <-e.events:
						e.deliver(event)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the consumer has exited.
func (e *Emitter) Wait() {
	<-e.done
}

func (e *Emitter) deliver(event lifecycle.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n := models.Notification{
		UserID:    event.Recipient,
		Type:      event.Type,
		Title:     event.Title,
		Message:   event.Message,
		CreatedAt: time.Now(),
	}
	if err := e.sink.SaveNotification(ctx, n); err != nil {
		e.log.Error().Err(err).
			Str("recipient", event.Recipient.Hex()).
			Str("title", event.Title).
			Msg("notification not persisted")
	}
}
