package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hazyhaar/onesource/convert"
	"github.com/hazyhaar/onesource/extract"
	"github.com/hazyhaar/onesource/pipeline"
)

// DocumentExtractStep converts source documents (Word, PDF, HTML and
// friends) and extracts their structured content. Outputs go under a
// per-step directory in the write root, one JSON document per source.
type DocumentExtractStep struct {
	pipeline.BaseStep
	converter    *convert.Converter
	pool         *pipeline.Pool
	maxFileCount int
	deleteSource bool
}

// NewDocumentExtractStep creates the document extraction step.
// With deleteSource set, each source file is removed once processed.
func NewDocumentExtractStep(name string, converter *convert.Converter, workers, maxFileCount int, overwrite, deleteSource bool) *DocumentExtractStep {
	if maxFileCount <= 0 {
		maxFileCount = 100000
	}
	s := &DocumentExtractStep{
		BaseStep:     pipeline.NewBaseStep(name, pipeline.SourceFiles),
		converter:    converter,
		pool:         pipeline.NewPool(workers),
		maxFileCount: maxFileCount,
		deleteSource: deleteSource,
	}
	s.Overwrite = overwrite
	return s
}

func (s *DocumentExtractStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
	stepName := pipeline.UnderscoreName(s.Name())
	priorOutputs := ctrl.OutputsByInput(stepName)

	var pending []string
	for _, path := range ctrl.SourcePaths(s.SourceKey()) {
		if isHiddenName(filepath.Base(path)) {
			continue
		}
		if !s.Overwrite {
			if prior, ok := priorOutputs[path]; ok {
				acc.FilesOutput = append(acc.FilesOutput, prior)
				continue
			}
		}
		if len(pending) >= s.maxFileCount {
			logger.Debug("file count limit reached", "step", s.Name(), "limit", s.maxFileCount)
			break
		}
		pending = append(pending, path)
	}

	var mu sync.Mutex
	return s.pool.Each(ctx, pending, func(ctx context.Context, path string) error {
		rec, err := s.processFile(ctx, ctrl, logger, stepName, path)
		if err != nil {
			return err
		}
		mu.Lock()
		acc.RecordProcessed(path)
		acc.FilesOutput = append(acc.FilesOutput, rec)
		acc.FileCount++
		var flushErr error
		if acc.FileCount%pipeline.FlushInterval == 0 {
			flushErr = acc.Flush()
		}
		mu.Unlock()
		if flushErr != nil {
			return flushErr
		}

		if s.deleteSource {
			if err := os.Remove(path); err != nil {
				logger.Error("delete source file", "path", path, "error", err)
			}
		}
		return nil
	})
}

func (s *DocumentExtractStep) processFile(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, stepName, path string) (pipeline.FileRecord, error) {
	logger.Debug("process file", "step", s.Name(), "path", path)

	doc, err := s.converter.Convert(ctx, path)
	if err != nil {
		return pipeline.FileRecord{}, err
	}
	res, err := extract.Content(doc.Markup)
	if err != nil {
		return pipeline.FileRecord{}, fmt.Errorf("extract %s: %w", path, err)
	}

	recordID := recordIDFromTitle(doc.Meta.Title)
	if recordID == "" {
		base := filepath.Base(path)
		recordID = recordIDFromTitle(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	out := ContentDoc{
		Metadata: Metadata{
			"record_id":     recordID,
			"title":         doc.Meta.Title,
			"doc_type":      doc.DocType,
			"created_date":  doc.Meta.Created,
			"last_mod_date": doc.Meta.Modified,
			"author":        doc.Meta.Author,
			"word_count":    doc.Meta.WordCount,
		},
		Data: ContentData{
			StructuredContent: res.Nodes,
			Text:              res.TextList,
		},
	}

	outputFilename := fmt.Sprintf("%s_%s.json", stepName, recordID)
	outputPath := filepath.Join(ctrl.Job.WriteRoot, stepName, outputFilename)
	if err := pipeline.WriteJSON(outputPath, out); err != nil {
		return pipeline.FileRecord{}, err
	}
	return pipeline.FileRecord{
		Filename: outputFilename,
		Input:    path,
		Path:     outputPath,
		Status:   pipeline.StatusProcessed,
		Time:     pipeline.NowISO(),
	}, nil
}
