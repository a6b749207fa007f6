package steps

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hazyhaar/onesource/extract"
	"github.com/hazyhaar/onesource/pipeline"
)

// CollectStep folds the per-section output of envelope extraction into a
// single content stream per document. The configuration names, per document
// type, which payload sections carry prose worth keeping.
type CollectStep struct {
	pipeline.BaseStep
	docTypes map[string]pipeline.DocTypeConfig
}

func NewCollectStep(name, sourceKey string, docTypes map[string]pipeline.DocTypeConfig, overwrite bool) *CollectStep {
	s := &CollectStep{
		BaseStep: pipeline.NewBaseStep(name, sourceKey),
		docTypes: docTypes,
	}
	s.Overwrite = overwrite
	return s
}

func (s *CollectStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
	stepName := pipeline.UnderscoreName(s.Name())
	priorOutputs := ctrl.OutputsByInput(stepName)

	for _, path := range ctrl.SourcePaths(s.SourceKey()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.Overwrite {
			if prior, ok := priorOutputs[path]; ok {
				acc.FilesOutput = append(acc.FilesOutput, prior)
				continue
			}
		}
		if err := s.processFile(ctrl, logger, acc, stepName, path); err != nil {
			return err
		}
	}
	return nil
}

func (s *CollectStep) processFile(ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator, stepName, path string) error {
	logger.Debug("process file", "step", s.Name(), "path", path)

	var doc sectionDoc
	if err := readJSONFile(path, &doc); err != nil {
		return err
	}

	docType := doc.Metadata.DocType()
	dt, ok := s.docTypes[docType]
	if !ok {
		return fmt.Errorf("no text_props configured for doc type %q (%s)", docType, path)
	}

	var content ContentData
	for _, key := range dt.TextProps {
		section, ok := doc.Data[key]
		if !ok {
			continue
		}
		content.StructuredContent = append(content.StructuredContent, section.StructuredContent...)
		switch t := section.Text.(type) {
		case string:
			content.Text = append(content.Text, t)
		case []any:
			for _, v := range t {
				if str, ok := v.(string); ok {
					content.Text = append(content.Text, str)
				}
			}
		}
	}
	if content.StructuredContent == nil {
		content.StructuredContent = []extract.ContentNode{}
	}
	if content.Text == nil {
		content.Text = []string{}
	}

	outputFilename := fmt.Sprintf("%s_%s.json", stepName, doc.Metadata.RecordID())
	outputPath := filepath.Join(ctrl.Job.WriteRoot, stepName, outputFilename)
	acc.RecordProcessed(path)
	acc.RecordOutput(outputFilename, path, outputPath)
	return pipeline.WriteJSON(outputPath, ContentDoc{Metadata: doc.Metadata, Data: content})
}
