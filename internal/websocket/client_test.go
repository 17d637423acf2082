package websocket

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClientConstants verifies the pump timing invariants
func TestClientConstants(t *testing.T) {
	assert.Equal(t, 10*time.Second, writeWait)
	assert.Equal(t, 60*time.Second, pongWait)
	assert.True(t, pingPeriod < pongWait, "pingPeriod must be less than pongWait")
	assert.Equal(t, int64(512), int64(maxMessageSize))
}

// TestNewClientWithConnection tests client creation with a mock connection
func TestNewClientWithConnection(t *testing.T) {
	hub := NewHub(testLogger())
	conn := NewMockConnection()

	client := NewClientWithConnection(hub, conn, testLogger())

	require.NotNil(t, client)
	assert.NotEmpty(t, client.id)
	assert.Equal(t, "127.0.0.1:8080", client.remoteAddr)
	assert.NotNil(t, client.send)
	assert.Equal(t, 256, cap(client.send))
}

// TestWritePumpSendsTextFrames tests that queued messages are written as text frames
func TestWritePumpSendsTextFrames(t *testing.T) {
	hub := NewHub(testLogger())
	conn := NewMockConnection()
	client := NewClientWithConnection(hub, conn, testLogger())

	done := make(chan struct{})
	go func() {
		client.WritePump()
		close(done)
	}()

	client.send <- []byte(`{"type":"load:state"}`)
	time.Sleep(50 * time.Millisecond)
	close(client.send)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WritePump did not exit after send channel close")
	}

	messages := conn.GetWrittenMessages()
	require.NotEmpty(t, messages)
	assert.Equal(t, websocket.TextMessage, messages[0].Type)
	assert.JSONEq(t, `{"type":"load:state"}`, string(messages[0].Data))

	// The final frame is the close message
	last := messages[len(messages)-1]
	assert.Equal(t, websocket.CloseMessage, last.Type)
}

// TestReadPumpHandlesHeartbeat tests heartbeat consumption and clean shutdown
func TestReadPumpHandlesHeartbeat(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	conn := NewMockConnection()
	conn.AddReadMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`), nil)

	client := NewClientWithConnection(hub, conn, testLogger())
	hub.Register(client)
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		client.ReadPump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReadPump did not exit after read error")
	}

	assert.EqualValues(t, 1, client.messagesReceived)
	assert.True(t, conn.Closed)
	assert.EqualValues(t, maxMessageSize, conn.ReadLimit)
	assert.NotNil(t, conn.PongHandler)
}

// TestReadPumpUnregistersClient tests the hub sees the disconnect
func TestReadPumpUnregistersClient(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	conn := NewMockConnection()
	client := NewClientWithConnection(hub, conn, testLogger())
	hub.Register(client)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, hub.ClientCount())

	go client.ReadPump()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, hub.ClientCount())
}
