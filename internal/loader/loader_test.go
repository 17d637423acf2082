package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revpulse/pkg/contracts/domain"
)

type stubFetcher struct {
	payload []map[string]any
	err     error

	mu    sync.Mutex
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]map[string]any, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.payload, f.err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	statuses []domain.LoadStatus
}

func (b *recordingBroadcaster) BroadcastLoadState(status domain.LoadStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, status)
}

func (b *recordingBroadcaster) all() []domain.LoadStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.LoadStatus(nil), b.statuses...)
}

func TestLoaderStartsIdle(t *testing.T) {
	l := New(&stubFetcher{}, nil, nil, nil)

	status := l.Status()
	assert.Equal(t, domain.LoadStateIdle, status.State)
	assert.Zero(t, status.Generation)
	assert.Zero(t, status.RecordCount)
	assert.Nil(t, status.LoadedAt)
}

func TestLoadLiveData(t *testing.T) {
	fetcher := &stubFetcher{payload: []map[string]any{
		{"Name": "Acme", "Dollars Collected": "50", "Expense Incurred": "10"},
		{"Name": "Globex", "Invoice Amount": 200},
	}}
	l := New(fetcher, nil, nil, nil)

	snap := l.Load(context.Background())

	assert.Equal(t, domain.LoadStateSuccess, snap.State)
	assert.False(t, snap.UsingMockData)
	assert.Equal(t, domain.FallbackNone, snap.FallbackReason)
	require.Len(t, snap.Records, 2)
	assert.Equal(t, "Acme", snap.Records[0].Name)
	assert.Equal(t, 40.0, snap.Records[0].NetRevenue)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 1, fetcher.callCount(), "exactly one webhook call per cycle")
}

func TestLoadFetchFailureFallsBackToMock(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	l := New(fetcher, nil, nil, nil)

	snap := l.Load(context.Background())

	assert.Equal(t, domain.LoadStateSuccess, snap.State, "failure still lands in success")
	assert.True(t, snap.UsingMockData)
	assert.Equal(t, domain.FallbackFetchFailed, snap.FallbackReason)
	assert.Len(t, snap.Records, 25)
}

func TestLoadEmptyDatasetFallsBackToMock(t *testing.T) {
	fetcher := &stubFetcher{payload: []map[string]any{}}
	l := New(fetcher, nil, nil, nil)

	snap := l.Load(context.Background())

	assert.Equal(t, domain.LoadStateSuccess, snap.State)
	assert.True(t, snap.UsingMockData)
	assert.Equal(t, domain.FallbackEmptyDataset, snap.FallbackReason)
	assert.Len(t, snap.Records, 25)
}

func TestLoadBroadcastsTransitions(t *testing.T) {
	fetcher := &stubFetcher{payload: []map[string]any{{"Name": "Acme"}}}
	broadcaster := &recordingBroadcaster{}
	l := New(fetcher, broadcaster, nil, nil)

	l.Load(context.Background())

	statuses := broadcaster.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, domain.LoadStateLoading, statuses[0].State)
	assert.Equal(t, domain.LoadStateSuccess, statuses[1].State)
	assert.Equal(t, 1, statuses[1].RecordCount)
}

// sequencedFetcher blocks its first call until released and answers every
// later call immediately, so a test can hold one generation in flight while
// a newer one completes.
type sequencedFetcher struct {
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *sequencedFetcher) Fetch(ctx context.Context) ([]map[string]any, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if call == 1 {
		<-f.release
		return []map[string]any{{"Name": "Stale"}}, nil
	}
	return []map[string]any{{"Name": "Fresh"}}, nil
}

func (f *sequencedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSupersededLoadResultIsDiscarded(t *testing.T) {
	fetcher := &sequencedFetcher{release: make(chan struct{})}
	l := New(fetcher, nil, nil, nil)

	var staleSnap Snapshot
	done := make(chan struct{})
	go func() {
		staleSnap = l.Load(context.Background())
		close(done)
	}()

	// Wait for the first generation to reach its fetch.
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 },
		time.Second, time.Millisecond)

	fresh := l.Load(context.Background())

	assert.Equal(t, uint64(2), fresh.Generation)
	require.Len(t, fresh.Records, 1)
	assert.Equal(t, "Fresh", fresh.Records[0].Name)

	// Let the stale generation finish; its commit must be skipped.
	close(fetcher.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stale load did not finish")
	}

	current := l.Snapshot()
	assert.Equal(t, uint64(2), current.Generation, "stale result must not clobber the newer load")
	assert.Equal(t, "Fresh", current.Records[0].Name)
	assert.Equal(t, "Fresh", staleSnap.Records[0].Name,
		"superseded Load returns the current snapshot, not its own")
}

func TestStartLoadReturnsLoadingStatus(t *testing.T) {
	fetcher := &stubFetcher{payload: []map[string]any{{"Name": "Acme"}}}
	broadcaster := &recordingBroadcaster{}
	l := New(fetcher, broadcaster, nil, nil)

	status := l.StartLoad(context.Background())

	assert.Equal(t, domain.LoadStateLoading, status.State)
	assert.Equal(t, uint64(1), status.Generation)

	require.Eventually(t, func() bool {
		return l.Status().State == domain.LoadStateSuccess
	}, time.Second, time.Millisecond)

	snap := l.Snapshot()
	assert.Equal(t, uint64(1), snap.Generation)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "Acme", snap.Records[0].Name)

	statuses := broadcaster.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, domain.LoadStateLoading, statuses[0].State)
	assert.Equal(t, domain.LoadStateSuccess, statuses[1].State)
}

func TestReloadReplacesRecordsWholesale(t *testing.T) {
	fetcher := &stubFetcher{payload: []map[string]any{{"Name": "First"}}}
	l := New(fetcher, nil, nil, nil)

	first := l.Load(context.Background())
	require.Len(t, first.Records, 1)

	fetcher.payload = []map[string]any{{"Name": "Second"}, {"Name": "Third"}}
	second := l.Load(context.Background())

	assert.Equal(t, uint64(2), second.Generation)
	require.Len(t, second.Records, 2)
	assert.Equal(t, "Second", second.Records[0].Name)
	assert.Equal(t, 2, fetcher.callCount())
}
