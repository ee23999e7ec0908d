package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p1nant0m/packet-eater/internal/store"
	"github.com/p1nant0m/packet-eater/internal/store/duckdb"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
	"github.com/p1nant0m/packet-eater/pkg/options"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (store.Factory, *v1.Submitter) {
	t.Helper()
	f, err := duckdb.New(context.Background(), options.NewInMemoryDuckDBOptions())
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	sub, err := f.Submitters().Create(context.Background(), "abc", true)
	require.NoError(t, err)
	return f, sub
}

func TestReconcileWindow(t *testing.T) {
	f, sub := setup(t)
	r := New(10 * time.Second)
	ctx := context.Background()

	first, created, err := r.Reconcile(ctx, f.Sessions(), sub.ID, t0, "1.0")
	require.NoError(t, err)
	assert.True(t, created)

	// 9.999s later: same session.
	same, created, err := r.Reconcile(ctx, f.Sessions(), sub.ID, t0.Add(9999*time.Millisecond), "1.0")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, same.ID)

	// Exactly one window after the last update: new session.
	next, created, err := r.Reconcile(ctx, f.Sessions(), sub.ID, t0.Add(9999*time.Millisecond+10*time.Second), "1.0")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, next.ID)

	sessions, err := f.Sessions().ListBySubmitter(ctx, sub.ID, metav1.ListOptions{})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].LastUpdateTime.Equal(t0.Add(9999*time.Millisecond)))
}

func TestReconcileOutOfOrderKeepsLastUpdateMonotonic(t *testing.T) {
	f, sub := setup(t)
	r := New(10 * time.Second)
	ctx := context.Background()

	s, _, err := r.Reconcile(ctx, f.Sessions(), sub.ID, t0.Add(5*time.Second), "1.0")
	require.NoError(t, err)

	late, created, err := r.Reconcile(ctx, f.Sessions(), sub.ID, t0.Add(2*time.Second), "1.0")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, s.ID, late.ID)

	stored, err := f.Sessions().Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastUpdateTime.Equal(t0.Add(5*time.Second)), "got %v", stored.LastUpdateTime)
	assert.False(t, stored.LastUpdateTime.Before(stored.StartTime))
}

func TestConcurrentReconcileCreatesOneSession(t *testing.T) {
	f, sub := setup(t)
	r := New(10 * time.Second)
	ctx := context.Background()

	const k = 16
	var wg sync.WaitGroup
	ids := make([]int64, k)
	errs := make([]error, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ts := t0.Add(time.Duration(i) * 100 * time.Millisecond)
			errs[i] = r.Serialize(sub.Identifier, func() error {
				return f.Tx(ctx, func(tx store.Factory) error {
					s, _, err := r.Reconcile(ctx, tx.Sessions(), sub.ID, ts, "1.0")
					if err == nil {
						ids[i] = s.ID
					}
					return err
				})
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < k; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	n, err := f.Sessions().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultWindow, New(0).Window())
}
