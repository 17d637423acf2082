// Package shared holds cross-cutting helpers that belong to no single
// layer. Today that is the testutil subpackage, whose slog capture
// helpers let tests assert on structured log output without touching the
// global logger. Keep this package free of business logic and of
// dependencies on other internal packages.
package shared
