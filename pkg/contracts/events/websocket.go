// Package events contains the event contract definitions for WebSocket
// communication between the RevPulse server and the dashboard frontend.
package events

import (
	"time"

	"revpulse/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	// MessageTypeLoadState is the primary event type: one message per load
	// state transition (loading, success) including fallback metadata.
	MessageTypeLoadState MessageType = "load:state"

	// MessageTypeConnect is the welcome message sent to a newly registered
	// client.
	MessageTypeConnect MessageType = "connect"
)

// BaseMessage is the envelope shared by all WebSocket messages.
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// LoadStateEvent announces a load cycle state transition. The frontend
// refetches the dashboard payload when it sees a successful transition and
// shows the degraded-mode banner when UsingMockData is set.
type LoadStateEvent struct {
	BaseMessage
	Data domain.LoadStatus `json:"data"`
}

// ConnectData is the payload of the welcome message.
type ConnectData struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// ConnectEvent greets a newly connected client.
type ConnectEvent struct {
	BaseMessage
	Data ConnectData `json:"data"`
}
