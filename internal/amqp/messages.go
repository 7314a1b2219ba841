package amqp

import (
	"encoding/json"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/events"
)

// EventMessage is the wire form of a ledger event.
// It names the categories the event touched so a consumer can reconcile
// them against its own copy of the store without the full payload.
type EventMessage struct {
	EventID       string          `json:"eventId"`
	Kind          events.Kind     `json:"kind"`
	Categories    []core.Category `json:"categories,omitempty"`
	TransactionID int64           `json:"transactionId,omitempty"`
	BudgetID      int64           `json:"budgetId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewEventMessage builds the message published for e.
func NewEventMessage(e events.Event) *EventMessage {
	msg := &EventMessage{
		EventID:    e.ID,
		Kind:       e.Kind,
		Categories: e.Categories(),
		OccurredAt: e.OccurredAt,
		Timestamp:  time.Now().UTC(),
	}
	if e.Transaction != nil {
		msg.TransactionID = e.Transaction.ID
	}
	if e.Budget != nil {
		msg.BudgetID = e.Budget.ID
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON creates a message from JSON bytes
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReconcilesAll reports whether the consumer should repair every budget
// rather than only the listed categories.
func (m *EventMessage) ReconcilesAll() bool {
	return m.Kind == events.DataCleared || len(m.Categories) == 0
}
