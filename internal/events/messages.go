package events

import (
	"encoding/json"
	"time"

	"spendtracker/internal/core"
)

// Kind discriminates the change-feed message types sharing one queue.
type Kind string

const (
	KindTransactionCreated Kind = "transaction.created"
	KindTransactionDeleted Kind = "transaction.deleted"
	KindMonthClosed        Kind = "month.closed"
)

// ChangeMessage is the envelope published for every ledger change.
// It carries identifiers only; consumers fetch the full record from the
// backing store when they need it.
type ChangeMessage struct {
	Kind          Kind      `json:"kind"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Month         string    `json:"month,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreated(userID, transactionID string) *ChangeMessage {
	return &ChangeMessage{
		Kind:          KindTransactionCreated,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func NewTransactionDeleted(userID, transactionID string) *ChangeMessage {
	return &ChangeMessage{
		Kind:          KindTransactionDeleted,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func NewMonthClosed(userID string, month core.MonthKey) *ChangeMessage {
	return &ChangeMessage{
		Kind:      KindMonthClosed,
		UserID:    userID,
		Month:     month.String(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
