// Command onesourced serves the extraction pipeline over HTTP: jobs are
// submitted against the configured directories and run one at a time.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/onesource/convert"
	"github.com/hazyhaar/onesource/pipeline"
	"github.com/hazyhaar/onesource/runner"
	"github.com/hazyhaar/onesource/shield"
)

func main() {
	configPath := flag.String("config", "", "path to onesource.yaml config file")
	listenAddr := flag.String("listen", "", "listen address (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg := pipeline.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = pipeline.LoadConfig(*configPath)
		if err != nil {
			slog.Error("onesourced: config", "error", err)
			os.Exit(1)
		}
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := &jobRunner{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range shield.DefaultStack(logger) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/formats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string][]string{"formats": convert.SupportedFormats()})
	})
	r.Post("/jobs", jobs.handleSubmit)
	r.Get("/jobs/last", jobs.handleLast)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// jobRequest is the submission body. Unset fields fall back to the server
// configuration.
type jobRequest struct {
	ReadRoot  string `json:"read_root_dir"`
	WriteRoot string `json:"write_root_dir"`
	Overwrite bool   `json:"overwrite"`
	Envelopes bool   `json:"envelopes"`
	Markdown  bool   `json:"markdown"`
}

// jobResult records the outcome of the most recent run.
type jobResult struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	ReadRoot string `json:"read_root_dir"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

var errJobRunning = errors.New("a job is already running")

// jobRunner serializes pipeline runs: one at a time against the configured
// directories.
type jobRunner struct {
	cfg    *pipeline.Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	last    *jobResult
}

func (j *jobRunner) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, err)
			return
		}
	}

	cfg := *j.cfg
	if req.ReadRoot != "" {
		cfg.ReadRoot = req.ReadRoot
	}
	if req.WriteRoot != "" {
		cfg.WriteRoot = req.WriteRoot
	}
	if req.Overwrite {
		cfg.Overwrite = true
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, 400, err)
		return
	}

	result, err := j.run(r.Context(), &cfg, runner.Options{Envelopes: req.Envelopes, Markdown: req.Markdown})
	if errors.Is(err, errJobRunning) {
		writeError(w, 409, err)
		return
	}
	code := 200
	if result.Status == pipeline.StatusError {
		code = 500
	}
	writeJSON(w, code, result)
}

func (j *jobRunner) handleLast(w http.ResponseWriter, _ *http.Request) {
	j.mu.Lock()
	last := j.last
	running := j.running
	j.mu.Unlock()

	if running {
		writeJSON(w, 200, map[string]string{"status": "running"})
		return
	}
	if last == nil {
		writeJSON(w, 200, map[string]string{"status": "idle"})
		return
	}
	writeJSON(w, 200, last)
}

func (j *jobRunner) run(ctx context.Context, cfg *pipeline.Config, opts runner.Options) (*jobResult, error) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil, errJobRunning
	}
	j.running = true
	j.mu.Unlock()

	result := &jobResult{Start: pipeline.NowISO(), ReadRoot: cfg.ReadRoot, Status: pipeline.StatusProcessed}
	if err := runner.Run(ctx, cfg, j.logger, opts); err != nil {
		result.Status = pipeline.StatusError
		result.Error = err.Error()
	}
	result.End = pipeline.NowISO()

	j.mu.Lock()
	j.running = false
	j.last = result
	j.mu.Unlock()
	return result, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
