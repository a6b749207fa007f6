package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrMissingDir reports a read, write or temp directory that does not
	// exist.
	ErrMissingDir = errors.New("directory not found")

	// ErrLedgerMismatch reports a resumed job whose input tree no longer
	// matches the file set recorded in its ledger.
	ErrLedgerMismatch = errors.New("control fileset differs from input fileset")
)

// Hidden and temp files skipped when enumerating inputs.
var hiddenFilePrefixes = []string{"~", "."}

func isHiddenFile(name string) bool {
	for _, p := range hiddenFilePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// enumerateInputs walks the input tree in sorted order and returns a record
// per visible file, all with absolute paths.
func enumerateInputs(readRoot string) ([]FileRecord, error) {
	now := NowISO()
	var files []FileRecord
	err := filepath.WalkDir(readRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isHiddenFile(d.Name()) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files = append(files, FileRecord{
			Filename: d.Name(),
			Path:     abs,
			Time:     now,
			Status:   StatusStarted,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", readRoot, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// OpenJob creates or resumes the job for an input tree.
//
// With overwrite false and an existing ledger, the job resumes: the current
// input file set must equal the recorded one, and steps later skip files
// already processed. Otherwise a fresh ledger is written.
func OpenJob(readRoot, writeRoot, tempDir string, overwrite bool) (*ControlData, string, error) {
	for _, dir := range []string{readRoot, writeRoot, tempDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, "", fmt.Errorf("%w: %s", ErrMissingDir, dir)
		}
	}

	files, err := enumerateInputs(readRoot)
	if err != nil {
		return nil, "", err
	}

	ledgerPath, err := LedgerPath(tempDir, readRoot)
	if err != nil {
		return nil, "", err
	}

	now := NowISO()
	if !overwrite {
		if _, err := os.Stat(ledgerPath); err == nil {
			ctrl, err := LoadControlData(ledgerPath)
			if err != nil {
				return nil, "", err
			}
			if err := checkFileSet(ctrl.Files, files); err != nil {
				return nil, "", err
			}
			ctrl.Job.Start = now
			ctrl.Job.Status = StatusStarted
			return ctrl, ledgerPath, nil
		}
	}

	absRead, err := filepath.Abs(readRoot)
	if err != nil {
		return nil, "", fmt.Errorf("resolve read root: %w", err)
	}
	absWrite, err := filepath.Abs(writeRoot)
	if err != nil {
		return nil, "", fmt.Errorf("resolve write root: %w", err)
	}
	ctrl := &ControlData{
		Job: JobInfo{
			Start:     now,
			Status:    StatusStarted,
			ReadRoot:  absRead,
			WriteRoot: absWrite,
		},
		Files:       files,
		StepOutputs: make(map[string][]FileRecord),
	}
	if err := ctrl.Save(ledgerPath); err != nil {
		return nil, "", err
	}
	return ctrl, ledgerPath, nil
}

// checkFileSet requires the recorded and current input sets to be equal;
// any file added or removed since the ledger was written fails the resume.
func checkFileSet(recorded []FileRecord, current []FileRecord) error {
	seen := make(map[string]bool, len(recorded))
	for _, r := range recorded {
		seen[r.Path] = true
	}
	for _, f := range current {
		if !seen[f.Path] {
			return fmt.Errorf("%w: new file %s", ErrLedgerMismatch, f.Path)
		}
		delete(seen, f.Path)
	}
	for path := range seen {
		return fmt.Errorf("%w: missing file %s", ErrLedgerMismatch, path)
	}
	return nil
}
