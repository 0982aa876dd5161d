package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"granaia/internal/core"
)

// Action names what happened to a record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// RecordEvent is the message published after a successful expense or
// income mutation. It carries only identifiers; consumers fetch the
// full row from storage when they need it.
type RecordEvent struct {
	Kind      core.RecordKind `json:"kind"`
	Action    Action          `json:"action"`
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"usuario"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecordEvent builds an event stamped with the current time.
func NewRecordEvent(kind core.RecordKind, action Action, id, userID uuid.UUID) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON parses an event from JSON bytes.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
