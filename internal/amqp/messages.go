package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Entity names carried by RecordEvent.
const (
	EntityCustomer = "customer"
	EntityBooking  = "booking"
	EntityVisa     = "visa"
	EntityExpense  = "expense"
	EntityDebt     = "debt"
)

// Operations carried by RecordEvent.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpToggled = "toggled"
)

// RecordEvent tells the worker that the records of one owner changed on a day.
// It only carries identifiers; the worker reloads what it needs.
type RecordEvent struct {
	EventID   string    `json:"event_id"`
	OwnerID   string    `json:"owner_id"`
	Entity    string    `json:"entity"`
	RecordID  string    `json:"record_id"`
	Op        string    `json:"op"`
	Day       string    `json:"day"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent stamps a fresh event id and the current time.
func NewRecordEvent(owner, entity, recordID, op, day string) *RecordEvent {
	return &RecordEvent{
		EventID:   uuid.NewString(),
		OwnerID:   owner,
		Entity:    entity,
		RecordID:  recordID,
		Op:        op,
		Day:       day,
		Timestamp: time.Now(),
	}
}

func (m *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordEventFromJSON decodes and checks a message body.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var msg RecordEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.EventID == "" || msg.OwnerID == "" || msg.Day == "" {
		return nil, errors.New("record event: missing event_id, owner_id or day")
	}
	return &msg, nil
}
