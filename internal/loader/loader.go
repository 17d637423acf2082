// Package loader owns the dashboard load state machine. A load cycle moves
// idle → loading → success; there is no user-facing error state because a
// failed or empty fetch lands in success with synthetic data. Each cycle is
// a generation: starting a new one cancels the in-flight fetch of the old
// one, and a result is committed only if its generation is still current,
// so a late response can never clobber a newer load.
package loader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"revpulse/internal/dataprocessing"
	"revpulse/internal/infrastructure"
	"revpulse/pkg/contracts/domain"
)

// Fetcher is the single operation the loader needs from the webhook client.
type Fetcher interface {
	Fetch(ctx context.Context) ([]map[string]any, error)
}

// StatusBroadcaster pushes load state transitions to connected dashboard
// clients. Implementations must not block the caller.
type StatusBroadcaster interface {
	BroadcastLoadState(status domain.LoadStatus)
}

// Snapshot is the committed result of one load cycle. Records are replaced
// wholesale per cycle and must be treated as read-only by callers.
type Snapshot struct {
	State          domain.LoadState
	Generation     uint64
	Records        []domain.DataRecord
	UsingMockData  bool
	FallbackReason domain.FallbackReason
	LoadedAt       time.Time
}

// Status returns the wire form of the snapshot.
func (s Snapshot) Status() domain.LoadStatus {
	status := domain.LoadStatus{
		State:          s.State,
		Generation:     s.Generation,
		UsingMockData:  s.UsingMockData,
		FallbackReason: s.FallbackReason,
		RecordCount:    len(s.Records),
	}
	if !s.LoadedAt.IsZero() {
		loadedAt := s.LoadedAt
		status.LoadedAt = &loadedAt
	}
	return status
}

// Loader coordinates fetch-or-fallback load cycles.
type Loader struct {
	fetcher     Fetcher
	broadcaster StatusBroadcaster
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger

	mu         sync.RWMutex
	state      domain.LoadState
	generation uint64
	cancel     context.CancelFunc
	snapshot   Snapshot
}

// New creates a loader in the idle state. The broadcaster may be nil for
// callers without connected clients and metrics may be nil for callers
// without an OTel pipeline, such as the report CLI and tests.
func New(fetcher Fetcher, broadcaster StatusBroadcaster, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher:     fetcher,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "loader")),
		state:       domain.LoadStateIdle,
		snapshot:    Snapshot{State: domain.LoadStateIdle},
	}
}

// Snapshot returns the last committed load result. During a reload the
// previous generation's records stay visible, so the dashboard keeps
// rendering while new data is on its way.
func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Status returns the current load metadata: the live state machine state
// combined with the last committed snapshot.
func (l *Loader) Status() domain.LoadStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.statusLocked()
}

func (l *Loader) statusLocked() domain.LoadStatus {
	status := l.snapshot.Status()
	status.State = l.state
	status.Generation = l.generation
	return status
}

// Load runs one complete load cycle: mark loading, fetch once, normalize or
// fall back to mock data, and commit. The commit is skipped if a newer
// generation started while the fetch was in flight; the newer snapshot is
// returned in that case. Within one generation the webhook is called
// exactly once, with no retry and no polling.
func (l *Loader) Load(ctx context.Context) Snapshot {
	gen, loadCtx, cancel, _ := l.begin(ctx)
	return l.finish(ctx, loadCtx, cancel, gen)
}

// StartLoad begins a load cycle and returns as soon as the loading state is
// visible, leaving the fetch and commit to run in the background. The
// returned status carries the new generation. Callers should hand in a
// context detached from any request lifetime; a closed connection must not
// abandon a load other clients are watching.
func (l *Loader) StartLoad(ctx context.Context) domain.LoadStatus {
	gen, loadCtx, cancel, status := l.begin(ctx)
	go l.finish(ctx, loadCtx, cancel, gen)
	return status
}

// begin claims the next generation: it cancels any in-flight fetch, flips
// the state to loading, and announces the transition.
func (l *Loader) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc, domain.LoadStatus) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	if l.cancel != nil {
		// Abandon the in-flight fetch of the superseded generation.
		l.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = domain.LoadStateLoading
	status := l.statusLocked()
	l.mu.Unlock()

	l.broadcast(status)
	infrastructure.RecordActiveLoadChange(ctx, l.metrics, 1)
	l.logger.InfoContext(ctx, "load cycle started", slog.Uint64("generation", gen))
	return gen, loadCtx, cancel, status
}

// finish completes the cycle begun under gen: fetch or fall back, then
// commit unless a newer generation claimed the loader in the meantime.
// Metrics are recorded only for committed cycles; a superseded result is
// pure noise and just decrements the in-flight gauge.
func (l *Loader) finish(ctx, loadCtx context.Context, cancel context.CancelFunc, gen uint64) Snapshot {
	defer infrastructure.RecordActiveLoadChange(ctx, l.metrics, -1)

	start := time.Now()
	records, usingMock, reason, fetchErr := l.fetchOrFallback(loadCtx)

	l.mu.Lock()
	if l.generation != gen {
		l.mu.Unlock()
		l.logger.InfoContext(ctx, "discarding superseded load result",
			slog.Uint64("generation", gen))
		return l.Snapshot()
	}
	l.cancel = nil
	cancel()

	l.snapshot = Snapshot{
		State:          domain.LoadStateSuccess,
		Generation:     gen,
		Records:        records,
		UsingMockData:  usingMock,
		FallbackReason: reason,
		LoadedAt:       time.Now(),
	}
	l.state = domain.LoadStateSuccess
	snapshot := l.snapshot
	status := l.statusLocked()
	l.mu.Unlock()

	l.broadcast(status)

	source := "webhook"
	if usingMock {
		source = "mock"
	}
	infrastructure.RecordLoadMetrics(ctx, l.metrics, source, int64(len(records)), time.Since(start), fetchErr)
	if reason != domain.FallbackNone {
		infrastructure.RecordFallback(ctx, l.metrics, string(reason))
	}

	l.logger.InfoContext(ctx, "load cycle committed",
		slog.Uint64("generation", gen),
		slog.Int("records", len(records)),
		slog.Bool("using_mock_data", usingMock),
		slog.String("fallback_reason", string(reason)))

	return snapshot
}

// fetchOrFallback performs the single webhook call and maps every failure
// mode onto the synthetic dataset. Failure and legitimately-empty responses
// produce identical fallback data but distinct reasons, so the banner and
// the logs can tell them apart. The fetch error travels out only for metric
// attribution; it never reaches a caller.
func (l *Loader) fetchOrFallback(ctx context.Context) ([]domain.DataRecord, bool, domain.FallbackReason, error) {
	raw, err := l.fetcher.Fetch(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "webhook fetch failed, serving mock data",
			slog.String("error", err.Error()))
		return dataprocessing.GenerateMockRecords(), true, domain.FallbackFetchFailed, err
	}
	if len(raw) == 0 {
		l.logger.WarnContext(ctx, "webhook returned an empty dataset, serving mock data")
		return dataprocessing.GenerateMockRecords(), true, domain.FallbackEmptyDataset, nil
	}
	return dataprocessing.NormalizeRecords(raw), false, domain.FallbackNone, nil
}

func (l *Loader) broadcast(status domain.LoadStatus) {
	if l.broadcaster != nil {
		l.broadcaster.BroadcastLoadState(status)
	}
}
