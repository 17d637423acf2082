package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	require.NotNil(t, m)
	assert.NotNil(t, m.ErrorsByType)
	assert.False(t, m.LastReset.IsZero())
	assert.Zero(t, m.TotalConnections)
}

func TestMetricsRecordConnection(t *testing.T) {
	m := NewMetrics()

	m.RecordConnection()
	m.RecordConnection()

	assert.EqualValues(t, 2, m.TotalConnections)
	assert.EqualValues(t, 2, m.ActiveConnections)
	assert.EqualValues(t, 2, m.MaxConcurrent)
}

func TestMetricsRecordDisconnection(t *testing.T) {
	m := NewMetrics()

	m.RecordConnection()
	m.RecordConnection()
	m.RecordDisconnection(2 * time.Second)

	assert.EqualValues(t, 1, m.ActiveConnections)
	assert.EqualValues(t, 2, m.MaxConcurrent)
	assert.Equal(t, 2*time.Second, m.AvgConnectionTime)
}

func TestMetricsRecordMessage(t *testing.T) {
	m := NewMetrics()

	m.RecordMessage("sent", 100, true)
	m.RecordMessage("received", 50, true)
	m.RecordMessage("sent", 30, false)

	assert.EqualValues(t, 2, m.MessagesSent)
	assert.EqualValues(t, 1, m.MessagesReceived)
	assert.EqualValues(t, 130, m.BytesSent)
	assert.EqualValues(t, 50, m.BytesReceived)
	assert.EqualValues(t, 1, m.MessageErrors)
	assert.EqualValues(t, 60, m.AvgMessageSize)
}

func TestMetricsRecordError(t *testing.T) {
	m := NewMetrics()

	m.RecordError("unexpected_close")
	m.RecordError("unexpected_close")
	m.RecordError("write_failed")

	assert.EqualValues(t, 2, m.ErrorsByType["unexpected_close"])
	assert.EqualValues(t, 1, m.ErrorsByType["write_failed"])
}

func TestMetricsRecordQueueDepth(t *testing.T) {
	m := NewMetrics()

	m.RecordQueueDepth(10)
	assert.EqualValues(t, 10, m.MaxQueueDepth)
	assert.EqualValues(t, 10, m.AvgQueueDepth)

	m.RecordQueueDepth(4)
	assert.EqualValues(t, 10, m.MaxQueueDepth)
}

func TestMetricsGetSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordConnection()
	m.RecordMessage("sent", 42, true)
	m.RecordDroppedMessage()

	snapshot := m.GetSnapshot()

	connections, ok := snapshot["connections"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, connections["total"])
	assert.EqualValues(t, 1, connections["active"])

	messages, ok := snapshot["messages"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, messages["sent"])
	assert.EqualValues(t, 42, messages["bytes_sent"])
	assert.EqualValues(t, 1, messages["dropped"])
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.RecordConnection()
	m.RecordMessage("sent", 42, true)
	m.RecordError("write_failed")
	m.Reset()

	assert.Zero(t, m.TotalConnections)
	assert.Zero(t, m.MessagesSent)
	assert.Empty(t, m.ErrorsByType)
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordConnection()
			m.RecordMessage("sent", 10, true)
			m.GetSnapshot()
			m.RecordDisconnection(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 50, m.TotalConnections)
	assert.EqualValues(t, 0, m.ActiveConnections)
	assert.EqualValues(t, 50, m.MessagesSent)
}

func TestGetMetricsReturnsGlobalInstance(t *testing.T) {
	assert.Same(t, globalMetrics, GetMetrics())
}
