package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Step is one stage of a pipeline run. Implementations read their inputs
// from the ledger via their source key, process files, and record processed
// inputs and produced outputs on the accumulator.
type Step interface {
	Name() string
	SourceKey() string
	SetSourceKey(key string)
	Run(ctx context.Context, ctrl *ControlData, logger *slog.Logger, acc *Accumulator) error
}

// BaseStep carries the identity every step shares. Embed it and implement
// Run.
type BaseStep struct {
	name      string
	sourceKey string
	Overwrite bool
}

func NewBaseStep(name, sourceKey string) BaseStep {
	return BaseStep{name: name, sourceKey: sourceKey}
}

func (s *BaseStep) Name() string            { return s.name }
func (s *BaseStep) SourceKey() string       { return s.sourceKey }
func (s *BaseStep) SetSourceKey(key string) { s.sourceKey = key }

var whitespaceRe = regexp.MustCompile(`\s+`)

// UnderscoreName converts a human-readable step name to its ledger key,
// e.g. "Extract text" to "extract_text".
func UnderscoreName(name string) string {
	return strings.ToLower(whitespaceRe.ReplaceAllString(strings.TrimSpace(name), "_"))
}

// FlushInterval is the number of file completions between mid-run ledger
// flushes. At most this much progress is lost to a crash.
const FlushInterval = 100

// Accumulator is the working storage a step fills during its run. The
// runner folds FilesProcessed and FilesOutput into the ledger when the step
// finishes; long steps flush mid-run every FlushInterval completions.
type Accumulator struct {
	FilesProcessed []FileRecord
	FilesOutput    []FileRecord
	FileCount      int

	// FlushFunc persists the progress recorded so far. The pipeline sets
	// it to a ledger write before running each step.
	FlushFunc func() error
}

// Flush persists the accumulated progress mid-run. With no FlushFunc set
// it is a no-op, so steps also run outside a pipeline.
func (a *Accumulator) Flush() error {
	if a.FlushFunc == nil {
		return nil
	}
	return a.FlushFunc()
}

// RecordProcessed marks a source file as consumed.
func (a *Accumulator) RecordProcessed(sourcePath string) {
	a.FilesProcessed = append(a.FilesProcessed, FileRecord{
		Path: sourcePath,
		Time: NowISO(),
	})
}

// RecordOutput registers one produced file, optionally tagged with the
// input it came from so resumed runs can match outputs to inputs.
func (a *Accumulator) RecordOutput(outputFilename, inputPath, outputPath string) {
	a.FilesOutput = append(a.FilesOutput, FileRecord{
		Filename: outputFilename,
		Input:    inputPath,
		Path:     outputPath,
		Status:   StatusProcessed,
		Time:     NowISO(),
	})
}
