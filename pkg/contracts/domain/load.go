package domain

import "time"

// LoadState is the lifecycle state of a dashboard load cycle.
type LoadState string

const (
	LoadStateIdle    LoadState = "idle"
	LoadStateLoading LoadState = "loading"
	LoadStateSuccess LoadState = "success"
)

// FallbackReason records why a load cycle substituted synthetic data.
// The substitution behavior is identical for both reasons; the distinction
// exists for the degraded-mode banner and for operators reading logs.
type FallbackReason string

const (
	// FallbackNone means live webhook data is being served.
	FallbackNone FallbackReason = ""

	// FallbackFetchFailed means the webhook was unreachable, returned a
	// non-success status, or its body could not be parsed as JSON.
	FallbackFetchFailed FallbackReason = "fetch_failed"

	// FallbackEmptyDataset means the webhook answered correctly but the
	// decoded collection contained no records.
	FallbackEmptyDataset FallbackReason = "empty_dataset"
)

// LoadStatus is the wire form of a load cycle's metadata, exposed by the
// load-status endpoint and pushed over WebSocket on every state transition.
type LoadStatus struct {
	State          LoadState      `json:"state"`
	Generation     uint64         `json:"generation"`
	UsingMockData  bool           `json:"using_mock_data"`
	FallbackReason FallbackReason `json:"fallback_reason,omitempty"`
	RecordCount    int            `json:"record_count"`
	LoadedAt       *time.Time     `json:"loaded_at,omitempty"`
}
