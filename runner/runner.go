// Package runner assembles and executes extraction jobs from configuration:
// it opens the job ledger, wires the step sequence for the input kind, and
// runs the pipeline.
package runner

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/onesource/convert"
	"github.com/hazyhaar/onesource/pipeline"
	"github.com/hazyhaar/onesource/pipeline/steps"
	"github.com/hazyhaar/onesource/store"
)

// Options select the step sequence for one run.
type Options struct {
	// Envelopes treats the input tree as content-management envelope
	// exports instead of office documents.
	Envelopes bool

	// Markdown adds a markdown rendition of every source document.
	Markdown bool
}

// Run executes one job over the configured input tree.
func Run(ctx context.Context, cfg *pipeline.Config, logger *slog.Logger, opts Options) error {
	ctrl, ledgerPath, err := pipeline.OpenJob(cfg.ReadRoot, cfg.WriteRoot, cfg.TempDir, cfg.Overwrite)
	if err != nil {
		return err
	}
	logger.Info("job opened",
		"read_root", ctrl.Job.ReadRoot,
		"write_root", ctrl.Job.WriteRoot,
		"ledger", ledgerPath,
		"files", len(ctrl.Files))

	var db *store.Store
	if cfg.DatabasePath != "" {
		db, err = store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	converter := convert.New(convert.Config{Logger: logger})

	p := pipeline.New(ctrl, logger, ledgerPath)

	var contentKey string
	if opts.Envelopes {
		p.AddStep(steps.NewExtractStep("Extract", nil, cfg.MaxFileCount))
		p.AddStep(steps.NewCollectStep("Collect", "extract", cfg.DocTypes, cfg.Overwrite))
		contentKey = "collect"
	} else {
		p.AddStep(steps.NewDocumentExtractStep("Extract documents", converter,
			cfg.Workers, cfg.MaxFileCount, cfg.Overwrite, cfg.DeleteAfterProcess))
		contentKey = "extract_documents"
	}

	p.AddStep(steps.NewQuestionsStep("Identify questions", contentKey, cfg.Overwrite))
	contentKey = "identify_questions"

	p.AddStep(steps.NewQAPrepStep("Prep for QA", contentKey, cfg.Overwrite))
	p.AddStep(steps.NewCombineStep("Combine", contentKey, cfg.DocTypesWithText, cfg.Overwrite))
	if db != nil {
		p.AddStep(steps.NewStoreStep("Store graph", contentKey, db, cfg.Overwrite))
	}
	if opts.Markdown && !opts.Envelopes {
		p.AddStep(steps.NewMarkdownStep("Render markdown", converter, cfg.Overwrite))
	}

	return p.Run(ctx)
}
