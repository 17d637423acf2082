package http

import (
	"context"
	"io"

	"revpulse/internal/dashboard"
	"revpulse/internal/services"
	api "revpulse/pkg/contracts/api/v1"
	"revpulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers
// depend on. The dashboard and export handlers share it because exports are
// just another projection of the same filtered snapshot.
type DashboardServiceInterface interface {
	Overview(ctx context.Context, req api.FilterRequest) (*services.Overview, error)
	Records(ctx context.Context, req api.FilterRequest) ([]domain.DataRecord, error)
	MonthlyTrend(ctx context.Context, req api.FilterRequest) ([]dashboard.MonthlyPoint, error)
	EntityBreakdown(ctx context.Context, req api.FilterRequest) ([]dashboard.EntityTotals, error)
	LoadStatus(ctx context.Context) domain.LoadStatus
	Reload(ctx context.Context, trigger string) domain.LoadStatus
	Export(ctx context.Context, req api.ExportRequest, w io.Writer) (*services.ExportResult, error)
}
