package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/onesource/pipeline"
)

func testRunner(t *testing.T) *jobRunner {
	t.Helper()
	cfg := pipeline.DefaultConfig()
	cfg.ReadRoot = t.TempDir()
	cfg.WriteRoot = t.TempDir()
	cfg.TempDir = t.TempDir()
	cfg.Overwrite = true
	return &jobRunner{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSubmitJob(t *testing.T) {
	jobs := testRunner(t)
	page := `<html><head><title>Guide</title></head><body><main>
<h1>Coverage</h1>
<p>The policy covers water damage and fire damage in all covered homes.</p>
</main></body></html>`
	if err := os.WriteFile(filepath.Join(jobs.cfg.ReadRoot, "guide.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/jobs", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	jobs.handleSubmit(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result jobResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Status != pipeline.StatusProcessed {
		t.Errorf("job status = %s (%s)", result.Status, result.Error)
	}

	if _, err := os.Stat(filepath.Join(jobs.cfg.WriteRoot, "combine", "combine.txt")); err != nil {
		t.Errorf("missing combined output: %v", err)
	}
}

func TestSubmitJobBadDir(t *testing.T) {
	jobs := testRunner(t)
	body := `{"read_root_dir": "` + filepath.Join(jobs.cfg.ReadRoot, "missing") + `"}`
	req := httptest.NewRequest("POST", "/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	jobs.handleSubmit(rec, req)

	if rec.Code != 500 {
		t.Errorf("status = %d, want 500 for missing directory", rec.Code)
	}
}

func TestLastJobIdle(t *testing.T) {
	jobs := testRunner(t)
	rec := httptest.NewRecorder()
	jobs.handleLast(rec, httptest.NewRequest("GET", "/jobs/last", nil))

	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "idle") {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
