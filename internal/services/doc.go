// Package services implements the business logic layer between the HTTP
// handlers and the loader. Handlers stay thin: they decode and validate
// requests, call one service method, and render the result.
//
// # Services
//
//   - DashboardService: composes loader snapshots into overview, record,
//     chart, and export payloads, and triggers reload generations.
//   - InsightService: runs the best-effort AI collaborator over the
//     filtered view.
//   - HealthService: operational state for the health and version
//     endpoints.
//
// # Conventions
//
// Every service takes its dependencies through its constructor and keeps a
// component-scoped *slog.Logger. Methods take context.Context first and
// return explicit errors; sentinel errors in errors.go are the contract the
// transport layer maps onto problem documents via errors.Is. Read paths are
// pure functions over the current load snapshot, with no caching and no
// shared mutable state beyond the loader itself.
package services
