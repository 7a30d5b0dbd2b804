package events

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{63, 30 * time.Second}, // shift overflow still capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "closed connection", err: errors.New("connection closed"), expected: true},
		{name: "unexpected EOF", err: errors.New("unexpected EOF"), expected: true},
		{name: "protocol error", err: errors.New("channel/connection is not open"), expected: false},
		{name: "handler error", err: errors.New("append row: quota exceeded"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestChangeMessageRoundTrip(t *testing.T) {
	msg := NewMonthClosed("u1", "2026-01")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := ChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Kind != KindMonthClosed || decoded.UserID != "u1" || decoded.Month != "2026-01" {
		t.Fatalf("round trip mangled message: %+v", decoded)
	}
	if decoded.TransactionID != "" {
		t.Fatalf("month close must not carry a transaction id")
	}
}

func TestChangeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
