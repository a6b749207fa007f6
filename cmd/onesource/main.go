// Command onesource runs the document extraction pipeline over an input
// tree.
//
// Usage:
//
//	onesource -config onesource.yaml                  # run from YAML config
//	onesource -read ./in -write ./out                 # office documents
//	onesource -read ./in -write ./out -envelopes      # envelope exports
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/onesource/pipeline"
	"github.com/hazyhaar/onesource/runner"
)

func main() {
	configPath := flag.String("config", "", "path to onesource.yaml config file")
	readRoot := flag.String("read", "", "input directory (overrides config)")
	writeRoot := flag.String("write", "", "output directory (overrides config)")
	tempDir := flag.String("temp", "", "ledger directory (overrides config)")
	overwrite := flag.Bool("overwrite", false, "reprocess everything, ignoring a prior ledger")
	envelopes := flag.Bool("envelopes", false, "treat inputs as content-management envelope exports")
	markdown := flag.Bool("markdown", false, "also render each source document as markdown")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("onesource: config", "error", err)
		os.Exit(1)
	}
	if *readRoot != "" {
		cfg.ReadRoot = *readRoot
	}
	if *writeRoot != "" {
		cfg.WriteRoot = *writeRoot
	}
	if *tempDir != "" {
		cfg.TempDir = *tempDir
	}
	if *overwrite {
		cfg.Overwrite = true
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("onesource: config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := runner.Options{Envelopes: *envelopes, Markdown: *markdown}
	if err := runner.Run(ctx, cfg, logger, opts); err != nil {
		logger.Error("onesource: run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("onesource: run complete")
}

func loadConfig(path string) (*pipeline.Config, error) {
	if path == "" {
		return pipeline.DefaultConfig(), nil
	}
	return pipeline.LoadConfig(path)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
