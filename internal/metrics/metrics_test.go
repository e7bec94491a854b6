package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageSent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MessageSent(true)
	m.MessageSent(true)
	m.MessageSent(false)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.messagesSent))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.messagesDelivered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messagesOffline))
}

func TestConnectionLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectionOpened()
	m.ConnectionOpened()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.activeConns))

	m.ConnectionClosed(5 * time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeConns))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.connections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.disconnections))
}

func TestErrorsByType(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Error("storage")
	m.Error("storage")
	m.Error("transport")
	m.RateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.errors.WithLabelValues("storage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("transport")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimits))
}

func TestDispatchTimer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	stop := m.DispatchStarted()
	stop()

	count, err := testutil.GatherAndCount(reg, "deepdrift_message_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
