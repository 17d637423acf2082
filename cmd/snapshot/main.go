// revpulse-snapshot captures a running dashboard as a full-page PNG or a
// printed PDF for scheduled reporting. It drives headless Chrome via
// chromedp and waits for the first rendered stat card before capturing,
// so the image shows loaded data rather than the boot state.
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

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"revpulse/internal/config"
	"revpulse/internal/infrastructure"
)

func main() {
	url := flag.String("url", "", "dashboard URL (defaults to the configured local server)")
	format := flag.String("format", "png", "capture format: png | pdf")
	out := flag.String("out", "", "output file (defaults to data/exports with a timestamped name)")
	waitFor := flag.String("wait-for", "#stats .stat-card", "CSS selector that must be visible before capturing")
	timeout := flag.Duration("timeout", 30*time.Second, "overall capture timeout")
	headless := flag.Bool("headless", true, "run browser headless")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("snapshot.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ext := strings.ToLower(strings.TrimSpace(*format))
	if ext != "png" && ext != "pdf" {
		logger.Error("Invalid format flag", slog.String("format", *format))
		fmt.Fprintf(os.Stderr, "Error: invalid -format %q, want png or pdf\n", *format)
		os.Exit(1)
	}

	if *url == "" {
		*url = fmt.Sprintf("http://localhost:%d/", cfg.Server.Port)
	}
	if *out == "" {
		stamp := time.Now().Format("20060102-150405")
		*out = paths.GetExportPath(fmt.Sprintf("revpulse-dashboard-%s.%s", stamp, ext))
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", *headless))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	ctx, cancel := context.WithTimeout(browserCtx, *timeout)
	defer cancel()

	logger.Info("Capturing dashboard",
		slog.String("url", *url),
		slog.String("format", ext),
		slog.String("wait_for", *waitFor),
		slog.String("output", *out))

	var buf []byte
	if err := chromedp.Run(ctx, captureTasks(*url, *waitFor, ext, &buf)); err != nil {
		logger.Error("Capture failed",
			slog.String("url", *url),
			slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: capture %s: %v\n", *url, err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logger.Error("Failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := os.WriteFile(*out, buf, 0o644); err != nil {
		logger.Error("Failed to write capture", slog.String("path", *out), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Capture written",
		slog.String("path", *out),
		slog.Int("size_bytes", len(buf)))
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(buf))
}

// captureTasks navigates to the dashboard, waits for the page to render
// data, and captures it in the requested format.
func captureTasks(url, waitFor, format string, buf *[]byte) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(1440, 1080),
		chromedp.Navigate(url),
		chromedp.WaitVisible(waitFor, chromedp.ByQuery),
	}

	switch format {
	case "png":
		tasks = append(tasks, chromedp.FullScreenshot(buf, 90))
	case "pdf":
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			*buf = data
			return nil
		}))
	}

	return tasks
}
