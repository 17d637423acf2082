// revpulse-report generates a one-shot report file from the configured
// webhook: fetch, normalize, filter, aggregate, and write the record table
// as CSV and/or XLSX. A webhook failure falls back to the sample dataset,
// same as the dashboard, so a scheduled report never comes up empty.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"revpulse/internal/config"
	"revpulse/internal/dashboard"
	"revpulse/internal/dataprocessing"
	"revpulse/internal/exporter"
	"revpulse/internal/infrastructure"
	"revpulse/internal/loader"
	"revpulse/internal/webhook"
	"revpulse/pkg/contracts/domain"
)

func main() {
	name := flag.String("name", domain.FilterAll, `entity name filter ("All" matches every entity)`)
	month := flag.String("month", domain.FilterAll, `month filter as MM/YYYY ("All" matches every month)`)
	format := flag.String("format", "both", "output format: csv | xlsx | both")
	outDir := flag.String("out", "", "output directory (defaults to data/exports relative to executable)")
	mock := flag.Bool("mock", false, "skip the webhook and report over the sample dataset")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *outDir == "" {
		*outDir = paths.ExportsDir
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("report.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	filter := dashboard.Filter{Name: *name, Month: *month}.Normalized()
	if filter.Month != domain.FilterAll && !dashboard.ValidMonthYear(filter.Month) {
		logger.Error("Invalid month filter, want All or MM/YYYY", slog.String("month", *month))
		fmt.Fprintf(os.Stderr, "Error: invalid -month %q, want All or MM/YYYY\n", *month)
		os.Exit(1)
	}

	formats, err := resolveFormats(*format)
	if err != nil {
		logger.Error("Invalid format flag", slog.String("format", *format))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Report generation starting",
		slog.String("name", filter.Name),
		slog.String("month", filter.Month),
		slog.String("format", *format),
		slog.String("output_dir", *outDir),
		slog.Bool("mock", *mock))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Webhook.Timeout+10*time.Second)
	defer cancel()

	records, usingMock := loadRecords(ctx, cfg, *mock, logger)
	filtered := dashboard.Apply(records, filter)
	stats := dashboard.ComputeStats(filtered)

	if len(filtered) == 0 {
		logger.Warn("Filter matched no records",
			slog.String("name", filter.Name),
			slog.String("month", filter.Month),
			slog.Int("total_records", len(records)))
	}

	table := exporter.RecordTable(filtered)
	now := time.Now()
	written := make([]string, 0, len(formats))

	for _, f := range formats {
		path := filepath.Join(*outDir, exporter.Filename(f, now))
		switch f {
		case "csv":
			err = exporter.WriteCSVFile(path, table, exporter.CSVOptions{BOMPrefix: true})
		case "xlsx":
			err = exporter.WriteXLSXFile(path, table)
		}
		if err != nil {
			logger.Error("Report write failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Error: write %s: %v\n", path, err)
			os.Exit(1)
		}
		written = append(written, path)
		logger.Info("Report written",
			slog.String("path", path),
			slog.Int("records", len(filtered)))
	}

	printSummary(os.Stdout, filter, stats, usingMock, written)
}

// loadRecords runs one load cycle. The loader handles fallback itself, so
// the only decision here is whether to contact the webhook at all.
func loadRecords(ctx context.Context, cfg *config.Config, mock bool, logger *slog.Logger) ([]domain.DataRecord, bool) {
	if mock {
		return dataprocessing.GenerateMockRecords(), true
	}

	fetcher := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout, logger)
	snapshot := loader.New(fetcher, nil, nil, logger).Load(ctx)

	if snapshot.UsingMockData {
		logger.Warn("Webhook unavailable, reporting over sample data",
			slog.String("fallback_reason", string(snapshot.FallbackReason)))
	}
	return snapshot.Records, snapshot.UsingMockData
}

// resolveFormats expands the -format flag into the concrete file formats
// to write, in a stable order.
func resolveFormats(format string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return []string{"csv"}, nil
	case "xlsx":
		return []string{"xlsx"}, nil
	case "both":
		return []string{"csv", "xlsx"}, nil
	default:
		return nil, fmt.Errorf("invalid -format %q, want csv, xlsx, or both", format)
	}
}

// printSummary writes the human-readable run summary to w.
func printSummary(w *os.File, filter dashboard.Filter, stats domain.DashboardStats, usingMock bool, written []string) {
	fmt.Fprintf(w, "%s report\n", config.AppName)
	fmt.Fprintf(w, "  Filter:           name=%s month=%s\n", filter.Name, filter.Month)
	fmt.Fprintf(w, "  Records:          %d\n", stats.RecordCount)
	fmt.Fprintf(w, "  Potential:        %.2f\n", stats.TotalPotentialRevenue)
	fmt.Fprintf(w, "  Invoiced:         %.2f\n", stats.TotalInvoiceAmount)
	fmt.Fprintf(w, "  Collected:        %.2f\n", stats.TotalDollarsCollected)
	fmt.Fprintf(w, "  Expenses:         %.2f\n", stats.TotalExpenseIncurred)
	fmt.Fprintf(w, "  Net revenue:      %.2f\n", stats.TotalNetRevenue)
	fmt.Fprintf(w, "  Collection rate:  %.1f%%\n", stats.CollectionRate)
	if usingMock {
		fmt.Fprintln(w, "  Source:           sample data (webhook unavailable or -mock)")
	} else {
		fmt.Fprintln(w, "  Source:           webhook")
	}
	for _, path := range written {
		fmt.Fprintf(w, "  Wrote:            %s\n", path)
	}
}
