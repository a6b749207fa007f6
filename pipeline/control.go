// Package pipeline runs a sequence of file-processing steps over an input
// tree, tracking progress in a JSON control ledger so interrupted jobs can
// resume where they left off.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File and job statuses recorded in the ledger.
const (
	StatusStarted   = "started"
	StatusProcessed = "processed"
	StatusError     = "error"
)

// FileRecord tracks one input or output file in the ledger.
type FileRecord struct {
	Filename string `json:"filename,omitempty"`
	Path     string `json:"path"`
	Input    string `json:"input,omitempty"`
	Status   string `json:"status,omitempty"`
	Time     string `json:"time,omitempty"`
}

// JobInfo is the job-level section of the ledger.
type JobInfo struct {
	Start     string   `json:"start"`
	End       string   `json:"end,omitempty"`
	Status    string   `json:"status"`
	Message   string   `json:"message,omitempty"`
	ReadRoot  string   `json:"read_root_dir"`
	WriteRoot string   `json:"write_root_dir"`
	Steps     []string `json:"steps,omitempty"`
}

// ControlData is the full ledger: job info, the input file set, and the
// output records of each completed or in-progress step, keyed by the step's
// underscore name.
type ControlData struct {
	Job         JobInfo
	Files       []FileRecord
	StepOutputs map[string][]FileRecord
}

// MarshalJSON flattens step outputs into top-level keys alongside job and
// files, which is the on-disk ledger shape.
func (c *ControlData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.StepOutputs)+2)
	out["job"] = c.Job
	out["files"] = c.Files
	for name, records := range c.StepOutputs {
		out[name] = records
	}
	return json.Marshal(out)
}

func (c *ControlData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.StepOutputs = make(map[string][]FileRecord)
	for key, val := range raw {
		switch key {
		case "job":
			if err := json.Unmarshal(val, &c.Job); err != nil {
				return fmt.Errorf("ledger job section: %w", err)
			}
		case "files":
			if err := json.Unmarshal(val, &c.Files); err != nil {
				return fmt.Errorf("ledger files section: %w", err)
			}
		default:
			var records []FileRecord
			if err := json.Unmarshal(val, &records); err != nil {
				return fmt.Errorf("ledger step %s: %w", key, err)
			}
			c.StepOutputs[key] = records
		}
	}
	return nil
}

// SourcePaths returns the input paths for a step: the job's file set for
// the "files" key, otherwise the outputs of the named earlier step.
func (c *ControlData) SourcePaths(key string) []string {
	records := c.Files
	if key != SourceFiles {
		records = c.StepOutputs[key]
	}
	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.Path)
	}
	return paths
}

// ProcessedPaths returns the set of output paths a step has already
// produced, for resume checks keyed on the step's own outputs.
func (c *ControlData) ProcessedPaths(stepName string) map[string]bool {
	out := make(map[string]bool)
	for _, r := range c.StepOutputs[stepName] {
		if r.Status == StatusProcessed {
			out[r.Path] = true
		}
	}
	return out
}

// OutputsByInput returns a step's processed output records keyed by source
// path, for resume checks keyed on inputs.
func (c *ControlData) OutputsByInput(stepName string) map[string]FileRecord {
	out := make(map[string]FileRecord)
	for _, r := range c.StepOutputs[stepName] {
		if r.Status == StatusProcessed && r.Input != "" {
			out[r.Input] = r
		}
	}
	return out
}

// SourceFiles is the source key naming the job's own input file set.
const SourceFiles = "files"

// LedgerPath derives the control ledger location for an input tree. Each
// distinct absolute input path maps to one ledger file under tempDir.
func LedgerPath(tempDir, readRoot string) (string, error) {
	abs, err := filepath.Abs(readRoot)
	if err != nil {
		return "", fmt.Errorf("resolve read root: %w", err)
	}
	name := strings.TrimPrefix(strings.ReplaceAll(abs, string(filepath.Separator), "-"), "-")
	return filepath.Join(tempDir, name+".json"), nil
}

// LoadControlData reads a ledger file.
func LoadControlData(path string) (*ControlData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read control file %s: %w", path, err)
	}
	ctrl := &ControlData{}
	if err := json.Unmarshal(data, ctrl); err != nil {
		return nil, fmt.Errorf("parse control file %s: %w", path, err)
	}
	return ctrl, nil
}

// Save writes the ledger atomically: a temp file in the target directory
// renamed over the destination, so a crash never leaves a torn ledger.
func (c *ControlData) Save(path string) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode control data: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".control-*")
	if err != nil {
		return fmt.Errorf("create temp control file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write control file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close control file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace control file: %w", err)
	}
	return nil
}

// NowISO is the timestamp format used throughout the ledger.
func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000")
}
