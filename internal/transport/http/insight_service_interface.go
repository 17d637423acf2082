package http

import (
	"context"

	"revpulse/internal/services"
	api "revpulse/pkg/contracts/api/v1"
)

// InsightServiceInterface defines the insight operations the handlers need
type InsightServiceInterface interface {
	Insight(ctx context.Context, req api.FilterRequest) (*services.InsightResult, error)
	Enabled() bool
}
