package lifecycle

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicworks-be/models"
)

// Event is a fire-and-forget notification produced by the engine. Delivery
// is best-effort; a dropped or delayed event never fails a transition.
type Event struct {
	Recipient primitive.ObjectID
	Type      models.NotificationType
	Title     string
	Message   string
}

// Emitter receives events from the engine. Implementations must not block.
type Emitter interface {
	Emit(event Event)
}

// NopEmitter discards every event. Useful in tests and tooling.
type NopEmitter struct{}

func (NopEmitter) Emit(Event) {}
