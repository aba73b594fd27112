package domain

import (
	"time"

	"github.com/google/uuid"
)

// SendState tracks the lifecycle of an impersonated message.
type SendState string

const (
	// SendPending is the state between local insert and server response.
	SendPending SendState = "pending"
	// SendSucceeded means the server accepted the message.
	SendSucceeded SendState = "succeeded"
	// SendFailed means the request failed or was rejected.
	SendFailed SendState = "failed"
)

// Result text shown in the send history.
const (
	ResultSending = "Sending..."
	ResultSent    = "Message sent successfully."
)

// SentMessage is one impersonated send attempt recorded in local history.
type SentMessage struct {
	ID        string
	From      string
	To        string
	Message   string
	Result    string
	State     SendState
	Timestamp time.Time
}

// NewPendingMessage creates a record with a fixed identity in the pending state.
func NewPendingMessage(from, to, text string) *SentMessage {
	return &SentMessage{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Message:   text,
		Result:    ResultSending,
		State:     SendPending,
		Timestamp: time.Now(),
	}
}

// Terminal returns true once the record has left the pending state.
func (m *SentMessage) Terminal() bool {
	return m.State == SendSucceeded || m.State == SendFailed
}

// Succeeded returns true if the send was accepted by the server.
func (m *SentMessage) Succeeded() bool {
	return m.State == SendSucceeded
}

// InstantMessageRequest is the body of POST /instant-message.
type InstantMessageRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}
