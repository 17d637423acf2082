package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"revpulse/internal/dashboard"
	"revpulse/internal/exporter"
	"revpulse/internal/infrastructure"
	"revpulse/internal/loader"
	api "revpulse/pkg/contracts/api/v1"
	"revpulse/pkg/contracts/domain"
)

// Overview is the one-call dashboard payload: aggregate stats and chart
// series over the filtered subset, option sets over the full collection,
// and the load metadata driving the degraded-mode banner.
type Overview struct {
	Stats    domain.DashboardStats    `json:"stats"`
	Options  dashboard.Options        `json:"options"`
	Monthly  []dashboard.MonthlyPoint `json:"monthly"`
	Entities []dashboard.EntityTotals `json:"entities"`
	Filter   dashboard.Filter         `json:"filter"`
	Load     domain.LoadStatus        `json:"load"`
}

// ExportResult describes a finished export body. The body itself has
// already been written to the writer handed to Export.
type ExportResult struct {
	Filename    string
	ContentType string
	Format      string
	RecordCount int
}

// DashboardService composes loader snapshots into the payloads the API
// serves. All read methods are pure over the current snapshot; Reload is
// the only mutation and delegates to the loader's generation machinery.
type DashboardService struct {
	loader  *loader.Loader
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewDashboardService creates a dashboard service. Metrics may be nil for
// callers without an OTel pipeline.
func NewDashboardService(ldr *loader.Loader, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:  ldr,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
}

// resolveFilter turns request selectors into a normalized filter. The
// transport layer validates request shape up front; this check is the
// contract of record for callers that bypass HTTP validation.
func resolveFilter(req api.FilterRequest) (dashboard.Filter, error) {
	f := dashboard.Filter{Name: req.Name, Month: req.Month}.Normalized()
	if f.Month != domain.FilterAll && !dashboard.ValidMonthYear(f.Month) {
		return dashboard.Filter{}, fmt.Errorf("%w: %q is not All or MM/YYYY", ErrInvalidFilter, req.Month)
	}
	return f, nil
}

// Overview assembles the full dashboard payload. The four derived sections
// are independent pure computations over the snapshot, so they run as one
// errgroup; a canceled request aborts the composition.
func (s *DashboardService) Overview(ctx context.Context, req api.FilterRequest) (*Overview, error) {
	filter, err := resolveFilter(req)
	if err != nil {
		return nil, err
	}

	snapshot := s.loader.Snapshot()
	filtered := dashboard.Apply(snapshot.Records, filter)

	overview := &Overview{
		Filter: filter,
		Load:   s.loader.Status(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview.Stats = dashboard.ComputeStats(filtered)
		return gctx.Err()
	})
	g.Go(func() error {
		overview.Options = dashboard.DeriveOptions(snapshot.Records)
		return gctx.Err()
	})
	g.Go(func() error {
		overview.Monthly = dashboard.MonthlyTrend(filtered)
		return gctx.Err()
	})
	g.Go(func() error {
		overview.Entities = dashboard.EntityBreakdown(filtered)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble overview: %w", err)
	}

	s.logger.DebugContext(ctx, "overview assembled",
		slog.String("name", filter.Name),
		slog.String("month", filter.Month),
		slog.Int("filtered_records", overview.Stats.RecordCount),
		slog.Uint64("generation", overview.Load.Generation))

	return overview, nil
}

// Records returns the filtered subset in snapshot order for the table view.
// The result is never nil so it renders as [] rather than null.
func (s *DashboardService) Records(ctx context.Context, req api.FilterRequest) ([]domain.DataRecord, error) {
	filter, err := resolveFilter(req)
	if err != nil {
		return nil, err
	}

	records := dashboard.Apply(s.loader.Snapshot().Records, filter)
	s.logger.DebugContext(ctx, "records filtered",
		slog.String("name", filter.Name),
		slog.String("month", filter.Month),
		slog.Int("matched", len(records)))
	return records, nil
}

// MonthlyTrend returns the filtered subset grouped per month in
// chronological order.
func (s *DashboardService) MonthlyTrend(ctx context.Context, req api.FilterRequest) ([]dashboard.MonthlyPoint, error) {
	filter, err := resolveFilter(req)
	if err != nil {
		return nil, err
	}
	return dashboard.MonthlyTrend(dashboard.Apply(s.loader.Snapshot().Records, filter)), nil
}

// EntityBreakdown returns the filtered subset grouped per entity in
// lexicographic order.
func (s *DashboardService) EntityBreakdown(ctx context.Context, req api.FilterRequest) ([]dashboard.EntityTotals, error) {
	filter, err := resolveFilter(req)
	if err != nil {
		return nil, err
	}
	return dashboard.EntityBreakdown(dashboard.Apply(s.loader.Snapshot().Records, filter)), nil
}

// LoadStatus returns the current load cycle metadata.
func (s *DashboardService) LoadStatus(ctx context.Context) domain.LoadStatus {
	return s.loader.Status()
}

// Reload starts a new load generation and returns immediately with the
// loading status. The cycle itself runs detached from the request context:
// a closed connection must not abandon a load other clients are watching.
// Trace values survive the detachment, so the background cycle's logs and
// metrics still correlate with the triggering request.
func (s *DashboardService) Reload(ctx context.Context, trigger string) domain.LoadStatus {
	s.logger.InfoContext(ctx, "reload requested", slog.String("trigger", trigger))
	return s.loader.StartLoad(context.WithoutCancel(ctx))
}

// Export writes the filtered table to w in the requested format and
// reports what was written. Callers buffer the body so headers can be set
// after a successful write; exports are tens of records, never large.
func (s *DashboardService) Export(ctx context.Context, req api.ExportRequest, w io.Writer) (*ExportResult, error) {
	filter, err := resolveFilter(req.FilterRequest)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(req.Format)
	records := dashboard.Apply(s.loader.Snapshot().Records, filter)
	table := exporter.RecordTable(records)

	start := time.Now()
	var contentType string
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = exporter.WriteCSV(w, table, exporter.CSVOptions{BOMPrefix: true})
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = exporter.WriteXLSX(w, table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, req.Format)
	}
	infrastructure.RecordExportMetrics(ctx, s.metrics, format, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("write %s export: %w", format, err)
	}

	result := &ExportResult{
		Filename:    exporter.Filename(format, time.Now()),
		ContentType: contentType,
		Format:      format,
		RecordCount: len(records),
	}

	s.logger.InfoContext(ctx, "export written",
		slog.String("format", format),
		slog.String("filename", result.Filename),
		slog.Int("records", result.RecordCount))

	return result, nil
}
