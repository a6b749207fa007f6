package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/onesource/envelope"
	"github.com/hazyhaar/onesource/pipeline"
)

// ExtractStep parses content-management envelope exports into structured
// JSON documents, one per envelope, written directly under the write root.
type ExtractStep struct {
	pipeline.BaseStep
	parser       *envelope.Parser
	maxFileCount int
}

// NewExtractStep creates the envelope extraction step. It reads the job's
// own input files. With maxFileCount <= 0 all inputs are processed.
func NewExtractStep(name string, excludedTags []string, maxFileCount int) *ExtractStep {
	if maxFileCount <= 0 {
		maxFileCount = 100000
	}
	return &ExtractStep{
		BaseStep:     pipeline.NewBaseStep(name, pipeline.SourceFiles),
		parser:       envelope.NewParser(excludedTags),
		maxFileCount: maxFileCount,
	}
}

func (s *ExtractStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
	stepName := pipeline.UnderscoreName(s.Name())

	for _, path := range ctrl.SourcePaths(s.SourceKey()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if acc.FileCount >= s.maxFileCount {
			logger.Debug("file count limit reached", "step", s.Name(), "limit", s.maxFileCount)
			break
		}
		if isHiddenName(filepath.Base(path)) {
			continue
		}
		if err := s.processFile(ctrl, logger, acc, stepName, path); err != nil {
			return err
		}
		acc.FileCount++
	}
	return nil
}

func (s *ExtractStep) processFile(ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator, stepName, path string) error {
	logger.Debug("process file", "step", s.Name(), "path", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	doc, err := s.parser.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse envelope %s: %w", path, err)
	}

	outputFilename := fmt.Sprintf("%s_%s.json", stepName, doc.Metadata.RecordID)
	outputPath := filepath.Join(ctrl.Job.WriteRoot, outputFilename)
	acc.RecordProcessed(path)
	acc.RecordOutput(outputFilename, path, outputPath)
	return pipeline.WriteJSON(outputPath, doc)
}
