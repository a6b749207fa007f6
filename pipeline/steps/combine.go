package steps

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/hazyhaar/onesource/extract"
	"github.com/hazyhaar/onesource/pipeline"
)

// CombineStep folds the text of many extracted documents into one plain
// text file, suitable for corpus building.
type CombineStep struct {
	pipeline.BaseStep
	docTypesWithText map[string]bool
}

// NewCombineStep creates the combining step. docTypesWithText names the
// document types whose flat text entries are included alongside the
// structured content text.
func NewCombineStep(name, sourceKey string, docTypesWithText []string, overwrite bool) *CombineStep {
	withText := make(map[string]bool, len(docTypesWithText))
	for _, dt := range docTypesWithText {
		withText[dt] = true
	}
	s := &CombineStep{
		BaseStep:         pipeline.NewBaseStep(name, sourceKey),
		docTypesWithText: withText,
	}
	s.Overwrite = overwrite
	return s
}

func (s *CombineStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
	stepName := pipeline.UnderscoreName(s.Name())
	outputFilename := stepName + ".txt"
	outputPath := filepath.Join(ctrl.Job.WriteRoot, stepName, outputFilename)

	// The single combined output is registered before processing so an
	// interrupted run still points at the partial file.
	acc.RecordOutput(outputFilename, "", outputPath)

	overwrite := s.Overwrite
	var texts []string
	flush := func() error {
		if len(texts) == 0 {
			return nil
		}
		if err := pipeline.WriteText(outputPath, texts, overwrite); err != nil {
			return err
		}
		// Later flushes append to the file the first one started.
		overwrite = false
		texts = texts[:0]
		return nil
	}

	fileCount := 0
	for _, path := range ctrl.SourcePaths(s.SourceKey()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("process file", "step", s.Name(), "path", path)

		var doc ContentDoc
		if err := readJSONFile(path, &doc); err != nil {
			return err
		}
		texts = append(texts, collectDocText(&doc, s.docTypesWithText)...)
		acc.RecordProcessed(path)
		acc.FileCount++

		fileCount++
		if fileCount%pipeline.FlushInterval == 0 {
			if err := flush(); err != nil {
				return err
			}
			if err := acc.Flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// collectDocText gathers the readable text of one document: flat text
// entries for document types configured to carry them, plus text, heading
// and list content from the structured view.
func collectDocText(doc *ContentDoc, docTypesWithText map[string]bool) []string {
	var texts []string
	if docTypesWithText[doc.Metadata.DocType()] {
		for _, t := range doc.Data.Text {
			if t != "" {
				texts = append(texts, extract.StripLinkMarkers(t))
			}
		}
		return texts
	}
	for _, node := range doc.Data.StructuredContent {
		switch node.Type {
		case extract.NodeText, extract.NodeHeading:
			if node.Text != "" {
				texts = append(texts, extract.StripLinkMarkers(node.Text))
			}
		case extract.NodeList:
			for _, item := range node.Items {
				if item != "" {
					texts = append(texts, extract.StripLinkMarkers(item))
				}
			}
		}
	}
	return texts
}
