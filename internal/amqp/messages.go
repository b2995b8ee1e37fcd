package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerEventMessage announces a committed write to one user's ledger.
// It carries only identifiers; consumers reload the ledger from storage.
type LedgerEventMessage struct {
	Action        string    `json:"action"`
	UserID        int64     `json:"user_id"`
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(action string, userID, transactionID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:        action,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes and validates a message.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.UserID <= 0:
		return nil, fmt.Errorf("ledger event without user id")
	case msg.Action == "":
		return nil, fmt.Errorf("ledger event without action")
	}
	return &msg, nil
}
