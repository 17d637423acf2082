package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"revpulse/internal/dashboard"
	"revpulse/internal/infrastructure"
	"revpulse/internal/insight"
	"revpulse/internal/loader"
	api "revpulse/pkg/contracts/api/v1"
	"revpulse/pkg/contracts/domain"
)

// InsightGenerator is the slice of the insight client this service needs.
type InsightGenerator interface {
	Generate(ctx context.Context, records []domain.DataRecord) string
	Enabled() bool
}

// InsightResult is the insight endpoint payload. Generated distinguishes a
// model answer from the fixed fallback sentence so the frontend can style
// them apart.
type InsightResult struct {
	Text        string `json:"text"`
	Generated   bool   `json:"generated"`
	RecordCount int    `json:"recordCount"`
}

// errInsightFallback marks a request that ended in the fallback sentence.
// It exists only to attribute the metric; the caller still gets a normal
// result because insight failure is never an API failure.
var errInsightFallback = errors.New("insight fallback served")

// InsightService runs the best-effort insight collaborator over the
// currently filtered records.
type InsightService struct {
	generator InsightGenerator
	loader    *loader.Loader
	model     string
	timeout   time.Duration
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewInsightService creates an insight service. Metrics may be nil; a
// non-positive timeout falls back to twenty seconds.
func NewInsightService(generator InsightGenerator, ldr *loader.Loader, model string, timeout time.Duration, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *InsightService {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightService{
		generator: generator,
		loader:    ldr,
		model:     model,
		timeout:   timeout,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "insight_service")),
	}
}

// Enabled reports whether a collaborator credential is configured.
func (s *InsightService) Enabled() bool {
	return s.generator.Enabled()
}

// Insight generates (or falls back to) a one-sentence reading of the
// filtered view. The collaborator call is bounded by the service timeout;
// every failure mode yields the fallback sentence, never an error, so the
// only error path left is a malformed filter.
func (s *InsightService) Insight(ctx context.Context, req api.FilterRequest) (*InsightResult, error) {
	filter, err := resolveFilter(req)
	if err != nil {
		return nil, err
	}

	records := dashboard.Apply(s.loader.Snapshot().Records, filter)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text := s.generator.Generate(genCtx, records)
	generated := text != insight.Fallback

	// A fallback answer counts as a failed generation for alerting; the
	// user-facing contract stays success either way.
	var genErr error
	if !generated {
		genErr = errInsightFallback
	}
	infrastructure.RecordInsightMetrics(ctx, s.metrics, s.model, time.Since(start), genErr)

	s.logger.InfoContext(ctx, "insight served",
		slog.Bool("generated", generated),
		slog.Int("records", len(records)),
		slog.Duration("took", time.Since(start)))

	return &InsightResult{
		Text:        text,
		Generated:   generated,
		RecordCount: len(records),
	}, nil
}
