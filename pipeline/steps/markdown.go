package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/hazyhaar/onesource/convert"
	"github.com/hazyhaar/onesource/pipeline"
)

// MarkdownStep renders source documents as Markdown files, one per source,
// via their HTML rendition.
type MarkdownStep struct {
	pipeline.BaseStep
	converter *convert.Converter
}

func NewMarkdownStep(name string, converter *convert.Converter, overwrite bool) *MarkdownStep {
	s := &MarkdownStep{
		BaseStep:  pipeline.NewBaseStep(name, pipeline.SourceFiles),
		converter: converter,
	}
	s.Overwrite = overwrite
	return s
}

func (s *MarkdownStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
	stepName := pipeline.UnderscoreName(s.Name())
	priorOutputs := ctrl.OutputsByInput(stepName)

	for _, path := range ctrl.SourcePaths(s.SourceKey()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if isHiddenName(filepath.Base(path)) {
			continue
		}
		if !s.Overwrite {
			if prior, ok := priorOutputs[path]; ok {
				acc.FilesOutput = append(acc.FilesOutput, prior)
				continue
			}
		}
		if err := s.processFile(ctx, ctrl, logger, acc, stepName, path); err != nil {
			return err
		}
	}
	return nil
}

func (s *MarkdownStep) processFile(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator, stepName, path string) error {
	logger.Debug("process file", "step", s.Name(), "path", path)

	doc, err := s.converter.Convert(ctx, path)
	if err != nil {
		return err
	}
	markdown, err := htmltomarkdown.ConvertString(doc.Markup)
	if err != nil {
		return fmt.Errorf("render markdown %s: %w", path, err)
	}

	recordID := recordIDFromTitle(doc.Meta.Title)
	if recordID == "" {
		base := filepath.Base(path)
		recordID = recordIDFromTitle(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	outputFilename := fmt.Sprintf("%s_%s.md", stepName, recordID)
	outputPath := filepath.Join(ctrl.Job.WriteRoot, stepName, outputFilename)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	acc.RecordProcessed(path)
	acc.RecordOutput(outputFilename, path, outputPath)
	return nil
}
