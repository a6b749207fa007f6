package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestControlDataRoundTrip(t *testing.T) {
	ctrl := &ControlData{
		Job: JobInfo{
			Start:     "2026-01-02T03:04:05.000000",
			Status:    StatusStarted,
			ReadRoot:  "/in",
			WriteRoot: "/out",
			Steps:     []string{"extract_text"},
		},
		Files: []FileRecord{
			{Filename: "a.xml", Path: "/in/a.xml", Status: StatusStarted},
		},
		StepOutputs: map[string][]FileRecord{
			"extract_text": {
				{Filename: "extract_text_a.json", Input: "/in/a.xml", Path: "/out/extract_text/extract_text_a.json", Status: StatusProcessed},
			},
		},
	}

	data, err := json.Marshal(ctrl)
	if err != nil {
		t.Fatal(err)
	}

	// Step outputs fold into top-level keys next to job and files.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"job", "files", "extract_text"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("marshalled ledger missing key %q", key)
		}
	}

	got := &ControlData{}
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatal(err)
	}
	if got.Job.ReadRoot != "/in" || got.Job.Status != StatusStarted {
		t.Errorf("job = %+v", got.Job)
	}
	if len(got.Files) != 1 || got.Files[0].Path != "/in/a.xml" {
		t.Errorf("files = %+v", got.Files)
	}
	outs := got.StepOutputs["extract_text"]
	if len(outs) != 1 || outs[0].Input != "/in/a.xml" {
		t.Errorf("step outputs = %+v", outs)
	}
}

func TestSourcePaths(t *testing.T) {
	ctrl := &ControlData{
		Files: []FileRecord{{Path: "/in/a.xml"}, {Path: "/in/b.xml"}},
		StepOutputs: map[string][]FileRecord{
			"extract_text": {{Path: "/out/a.json"}},
		},
	}
	if got := ctrl.SourcePaths(SourceFiles); len(got) != 2 || got[0] != "/in/a.xml" {
		t.Errorf("SourcePaths(files) = %v", got)
	}
	if got := ctrl.SourcePaths("extract_text"); len(got) != 1 || got[0] != "/out/a.json" {
		t.Errorf("SourcePaths(extract_text) = %v", got)
	}
}

func TestProcessedAndOutputsByInput(t *testing.T) {
	ctrl := &ControlData{
		StepOutputs: map[string][]FileRecord{
			"collect": {
				{Path: "/out/a.json", Input: "/in/a.xml", Status: StatusProcessed},
				{Path: "/out/b.json", Input: "/in/b.xml", Status: StatusStarted},
			},
		},
	}
	processed := ctrl.ProcessedPaths("collect")
	if !processed["/out/a.json"] || processed["/out/b.json"] {
		t.Errorf("ProcessedPaths = %v", processed)
	}
	byInput := ctrl.OutputsByInput("collect")
	if _, ok := byInput["/in/a.xml"]; !ok {
		t.Errorf("OutputsByInput missing processed input: %v", byInput)
	}
	if _, ok := byInput["/in/b.xml"]; ok {
		t.Errorf("OutputsByInput includes unprocessed input: %v", byInput)
	}
}

func TestLedgerPath(t *testing.T) {
	got, err := LedgerPath("/tmp", "/data/input")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/tmp", "data-input.json")
	if got != want {
		t.Errorf("LedgerPath = %q, want %q", got, want)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	ctrl := &ControlData{
		Job:   JobInfo{Start: "now", Status: StatusStarted, ReadRoot: "/in", WriteRoot: "/out"},
		Files: []FileRecord{{Path: "/in/a.xml", Status: StatusStarted}},
	}
	if err := ctrl.Save(path); err != nil {
		t.Fatal(err)
	}

	// No temp debris left behind after the atomic rename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".control-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}

	got, err := LoadControlData(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Job.ReadRoot != "/in" || len(got.Files) != 1 {
		t.Errorf("loaded = %+v", got)
	}
}
