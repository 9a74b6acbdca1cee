package amqp

import (
	"encoding/json"
	"time"
)

// Event names for the split settlement lifecycle.
const (
	EventSplitCreated    = "split.created"
	EventDepositReceived = "deposit.received"
	EventSplitCompleted  = "split.completed"
	EventFundsReleased   = "funds.released"
	EventSplitCancelled  = "split.cancelled"
)

// SplitEventMessage is the wire format for split lifecycle events. The
// consumer fetches the full split from storage by ID; the message carries
// only what is needed for routing and audit.
type SplitEventMessage struct {
	Event         string    `json:"event"`
	SplitID       string    `json:"split_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewSplitEventMessage creates an event message stamped with the current time.
func NewSplitEventMessage(event, splitID string) *SplitEventMessage {
	return &SplitEventMessage{
		Event:     event,
		SplitID:   splitID,
		Timestamp: time.Now(),
	}
}

// NewDepositEventMessage creates a deposit.received message with the payer
// and amount attached.
func NewDepositEventMessage(splitID, participantID string, amountCents int64) *SplitEventMessage {
	msg := NewSplitEventMessage(EventDepositReceived, splitID)
	msg.ParticipantID = participantID
	msg.AmountCents = amountCents
	return msg
}

// ToJSON converts the message to JSON bytes.
func (m *SplitEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SplitEventMessageFromJSON creates a message from JSON bytes.
func SplitEventMessageFromJSON(data []byte) (*SplitEventMessage, error) {
	var msg SplitEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
