package pump

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p1nant0m/packet-eater/internal/cache"
	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/internal/queue"
	"github.com/p1nant0m/packet-eater/internal/reconcile"
	"github.com/p1nant0m/packet-eater/internal/store"
	"github.com/p1nant0m/packet-eater/internal/store/duckdb"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
	"github.com/p1nant0m/packet-eater/pkg/options"
)

const submitter = "abc"

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store store.Factory
	queue *queue.MemoryQueue
	hints *cache.SessionHints
	pump  *Pump
	sub   *v1.Submitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f, err := duckdb.New(context.Background(), options.NewInMemoryDuckDBOptions())
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	sub, err := f.Submitters().Create(context.Background(), submitter, true)
	require.NoError(t, err)

	q := queue.NewMemory(64, 10*time.Millisecond)
	hints := cache.NewSessionHints(10 * time.Second)
	p, err := New(q, f, reconcile.New(10*time.Second),
		WithWorkers(1), WithRetryBackoff(0), WithSessionHints(hints))
	require.NoError(t, err)

	return &fixture{store: f, queue: q, hints: hints, pump: p, sub: sub}
}

func message(t *testing.T, ts time.Time, payload []byte) []byte {
	t.Helper()
	msg := &v1.IngestMessage{
		MessageID:           uuid.NewString(),
		SubmitterIdentifier: submitter,
		PayloadBase64:       base64.StdEncoding.EncodeToString(payload),
		ZoneID:              230,
		ClientVersion:       "1.0",
		TimestampEpochMs:    float64(ts.UnixMilli()),
		Direction:           v1.ServerToClient,
		Origin:              v1.OriginAshitaV4,
	}
	body, err := msg.Encode()
	require.NoError(t, err)
	return body
}

func (fx *fixture) sessions(t *testing.T) []*v1.CaptureSession {
	t.Helper()
	sessions, err := fx.store.Sessions().ListBySubmitter(context.Background(), fx.sub.ID, metav1.ListOptions{})
	require.NoError(t, err)
	return sessions
}

func TestEndToEndSessionSplit(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, offset := range []time.Duration{0, 5000 * time.Millisecond, 20000 * time.Millisecond} {
		require.NoError(t, fx.queue.Enqueue(ctx, message(t, t0.Add(offset), []byte{0x01, 0x03, 0xAA})))
	}

	done := make(chan error)
	go func() { done <- fx.pump.Run(ctx) }()

	require.Eventually(t, func() bool { return fx.pump.Stats().Processed == 3 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	sessions := fx.sessions(t)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].StartTime.Equal(t0))
	assert.True(t, sessions[0].LastUpdateTime.Equal(t0.Add(5*time.Second)))
	assert.True(t, sessions[1].StartTime.Equal(t0.Add(20*time.Second)))
	assert.True(t, sessions[1].LastUpdateTime.Equal(t0.Add(20*time.Second)))

	first, err := fx.store.Packets().ListBySession(context.Background(), sessions[0].ID, metav1.ListOptions{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, uint16(0x01), first[0].Type)
	assert.Equal(t, uint16(0x02), first[0].Size)
	assert.Equal(t, v1.OriginAshitaV4, first[0].Origin)

	id, ok := fx.hints.Lookup(submitter, t0.Add(25*time.Second))
	require.True(t, ok)
	assert.Equal(t, sessions[1].ID, id)
	assert.Equal(t, 0, fx.queue.InFlight())
}

func TestConcurrentProcessOpensOneSession(t *testing.T) {
	fx := newFixture(t)
	const k = 16

	var wg sync.WaitGroup
	errs := make(chan error, k)
	for i := 0; i < k; i++ {
		body := message(t, t0.Add(time.Duration(i)*300*time.Millisecond), []byte{0x34, 0x00})
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- fx.pump.Process(context.Background(), body)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sessions, err := fx.store.Sessions().Count(context.Background())
	require.NoError(t, err)
	if sessions != 1 {
		t.Fatalf("Expected 1 session, got %d", sessions)
	}
	packets, err := fx.store.Packets().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(k), packets)
}

func TestWorkersShareOneSession(t *testing.T) {
	fx := newFixture(t)
	const k = 24

	p, err := New(fx.queue, fx.store, reconcile.New(10*time.Second), WithWorkers(8), WithRetryBackoff(0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for i := 0; i < k; i++ {
		require.NoError(t, fx.queue.Enqueue(ctx, message(t, t0.Add(time.Duration(i)*200*time.Millisecond), []byte{0x34, 0x00})))
	}

	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return p.Stats().Processed == k }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	sessions := fx.sessions(t)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].LastUpdateTime.Equal(t0.Add((k-1)*200*time.Millisecond)))

	packets, err := fx.store.Packets().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(k), packets)
}

func TestProcessMalformedMessage(t *testing.T) {
	fx := newFixture(t)

	err := fx.pump.Process(context.Background(), []byte(`{"message_id":`))
	assert.True(t, errors.Is(err, errors.ErrMalformedPayload))

	err = fx.pump.Process(context.Background(), message(t, t0, []byte{0x01}))
	assert.True(t, errors.Is(err, errors.ErrMalformedPayload), "short payload: %v", err)

	assert.Empty(t, fx.sessions(t))
}

func TestProcessUnknownSubmitter(t *testing.T) {
	fx := newFixture(t)
	msg := &v1.IngestMessage{
		MessageID:           uuid.NewString(),
		SubmitterIdentifier: "nobody",
		PayloadBase64:       base64.StdEncoding.EncodeToString([]byte{0x34, 0x00}),
		TimestampEpochMs:    float64(t0.UnixMilli()),
	}
	body, err := msg.Encode()
	require.NoError(t, err)

	err = fx.pump.Process(context.Background(), body)
	assert.True(t, errors.Is(err, errors.ErrUnknownSubmitter))
	assert.True(t, errors.IsPermanent(err))

	n, err := fx.store.Sessions().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestProcessDuplicateDelivery(t *testing.T) {
	fx := newFixture(t)
	body := message(t, t0, []byte{0x34, 0x00})

	require.NoError(t, fx.pump.Process(context.Background(), body))
	err := fx.pump.Process(context.Background(), body)
	assert.True(t, errors.Is(err, errors.ErrDuplicateMessage))

	n, err := fx.store.Packets().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPermanentFailuresAreAcked(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	good := message(t, t0, []byte{0x34, 0x00})
	require.NoError(t, fx.queue.Enqueue(ctx, good))
	require.NoError(t, fx.queue.Enqueue(ctx, good))
	require.NoError(t, fx.queue.Enqueue(ctx, []byte("garbage")))

	done := make(chan error)
	go func() { done <- fx.pump.Run(ctx) }()

	require.Eventually(t, func() bool {
		s := fx.pump.Stats()
		return s.Processed == 1 && s.Duplicates == 1 && s.Dropped == 1
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	n, err := fx.queue.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 0, fx.queue.InFlight())
	assert.Greater(t, fx.pump.Stats().LatencyP99Ms, 0.0)
}

func TestTransientFailureIsRequeued(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.queue.Enqueue(ctx, message(t, t0, []byte{0x34, 0x00})))

	// Closing the database turns every write into a storage failure.
	require.NoError(t, fx.store.Close())

	d, err := fx.queue.Consume(ctx)
	require.NoError(t, err)
	fx.pump.handle(ctx, d, fx.pump.log)

	assert.Equal(t, uint64(1), fx.pump.Stats().Requeued)
	n, err := fx.queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(queue.NewMemory(1, time.Millisecond), nil, reconcile.New(0), WithWorkers(0))
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}
