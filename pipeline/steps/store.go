package steps

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/onesource/pipeline"
	"github.com/hazyhaar/onesource/store"
)

// StoreStep loads extracted documents into the content graph database.
type StoreStep struct {
	pipeline.BaseStep
	db *store.Store
}

func NewStoreStep(name, sourceKey string, db *store.Store, overwrite bool) *StoreStep {
	s := &StoreStep{BaseStep: pipeline.NewBaseStep(name, sourceKey), db: db}
	s.Overwrite = overwrite
	return s
}

func (s *StoreStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
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
		logger.Debug("process file", "step", s.Name(), "path", path)

		var doc ContentDoc
		if err := readJSONFile(path, &doc); err != nil {
			return err
		}
		if err := s.db.WriteGraph(ctx, doc.Data.StructuredContent); err != nil {
			return err
		}
		acc.RecordProcessed(path)
		acc.RecordOutput(doc.Metadata.RecordID(), path, path)
		acc.FileCount++
	}
	return nil
}
