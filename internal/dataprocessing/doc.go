// Package dataprocessing reconciles the loosely-typed webhook payload into
// the canonical DataRecord schema used everywhere else in the system.
//
// # Architecture
//
// The package is organized into three components:
//
//  1. Currency parser: absorbs arbitrary amount representations into floats
//  2. Normalizer: resolves aliased field names into canonical DataRecords
//  3. Mock generator: synthesizes the fallback dataset for degraded mode
//
// # Usage
//
// Normalizing a decoded webhook collection:
//
//	records := dataprocessing.NormalizeRecords(raw)
//
// Falling back to synthetic data:
//
//	records := dataprocessing.GenerateMockRecords()
//
// # Error Handling
//
// Nothing in this package returns an error. Malformed amounts collapse to 0
// and missing identity fields fall back to sentinels; rejecting individual
// records would serve the dashboard worse than rendering zeros.
package dataprocessing
