package queue

import "time"

type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketViewed  EventType = "ticket_viewed"
	EventQueueJoined   EventType = "queue_joined"
	EventMessagePosted EventType = "message_posted"
	EventTurnRotated   EventType = "turn_rotated"
	EventStageChanged  EventType = "stage_changed"
)

// Event is a committed ticket change announced to downstream consumers.
type Event struct {
	Type     EventType
	TicketID int64
	UserID   int64
	// Holder is the turn holder after the change, 0 when nobody holds it.
	Holder int64
	At     time.Time
}
