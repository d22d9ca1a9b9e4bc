package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedpro/pids-licensing/internal/domain/service"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

type fakeMailer struct {
	mu       sync.Mutex
	sent     []string
	failures int
}

func (f *fakeMailer) Send(recipient, _, _ string, _ []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp: connection reset")
	}
	f.sent = append(f.sent, recipient)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestDispatcher(mailer Mailer) (*Dispatcher, prometheus.Counter, prometheus.Counter) {
	delivered := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_delivered_total"})
	deadLetter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_dead_letter_total"})
	d := NewDispatcher(mailer, logger.NewNop(), delivered, deadLetter)
	d.backoff = time.Millisecond
	return d, delivered, deadLetter
}

func job(recipient string) service.Notification {
	return service.Notification{
		Recipient:    recipient,
		CustomerName: "Acme",
		SystemID:     "CFS30_ACM_NOCS1_052024_5",
		Password:     "p4ssw0rd!abc",
		SealedBlob:   "v1:AAAA",
	}
}

func TestDispatcherDelivers(t *testing.T) {
	mailer := &fakeMailer{}
	d, delivered, deadLetter := newTestDispatcher(mailer)
	d.Start()

	require.True(t, d.Enqueue(job("ops@example.com")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))

	assert.Equal(t, 1, mailer.sentCount())
	assert.Equal(t, float64(1), testutil.ToFloat64(delivered))
	assert.Equal(t, float64(0), testutil.ToFloat64(deadLetter))
}

func TestDispatcherRetriesTransientFailure(t *testing.T) {
	mailer := &fakeMailer{failures: 2}
	d, delivered, deadLetter := newTestDispatcher(mailer)
	d.Start()

	require.True(t, d.Enqueue(job("ops@example.com")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))

	assert.Equal(t, 1, mailer.sentCount())
	assert.Equal(t, float64(1), testutil.ToFloat64(delivered))
	assert.Equal(t, float64(0), testutil.ToFloat64(deadLetter))
}

func TestDispatcherDeadLettersAfterMaxAttempts(t *testing.T) {
	mailer := &fakeMailer{failures: 100}
	d, delivered, deadLetter := newTestDispatcher(mailer)
	d.Start()

	require.True(t, d.Enqueue(job("ops@example.com")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))

	assert.Zero(t, mailer.sentCount())
	assert.Equal(t, float64(0), testutil.ToFloat64(delivered))
	assert.Equal(t, float64(1), testutil.ToFloat64(deadLetter))
}

func TestDispatcherEnqueueFullQueue(t *testing.T) {
	mailer := &fakeMailer{}
	d, _, _ := newTestDispatcher(mailer)
	// Worker not started: the channel fills up.
	for i := 0; i < cap(d.queue); i++ {
		require.True(t, d.Enqueue(job("ops@example.com")))
	}
	assert.False(t, d.Enqueue(job("ops@example.com")))
}
