package steps

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/onesource/pipeline"
)

// questionWords open sentences that are questions even without a trailing
// question mark.
var questionWords = map[string]bool{
	"am": true, "are": true, "can": true, "could": true, "did": true,
	"does": true, "had": true, "has": true, "have": true, "how": true,
	"is": true, "may": true, "might": true, "shall": true, "was": true,
	"were": true, "what": true, "where": true, "which": true, "who": true,
	"why": true, "will": true, "would": true,
}

// QuestionsStep tags content nodes that read as questions, using a
// rule-based predictor. Tagged documents are re-emitted; the questions
// found across the run land in a side file for review.
type QuestionsStep struct {
	pipeline.BaseStep
}

func NewQuestionsStep(name, sourceKey string, overwrite bool) *QuestionsStep {
	s := &QuestionsStep{BaseStep: pipeline.NewBaseStep(name, sourceKey)}
	s.Overwrite = overwrite
	return s
}

// PredictQuestion reports whether a text reads as a question: it ends with
// a question mark or opens with an interrogative or auxiliary verb.
func PredictQuestion(text string) bool {
	if strings.HasSuffix(text, "?") {
		return true
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	return questionWords[strings.ToLower(fields[0])]
}

func (s *QuestionsStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
	stepName := pipeline.UnderscoreName(s.Name())
	priorOutputs := ctrl.OutputsByInput(stepName)

	var found []string
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
		if err := s.processFile(ctrl, logger, acc, stepName, path, &found); err != nil {
			return err
		}
	}

	if len(found) > 0 {
		foundPath := filepath.Join(ctrl.Job.WriteRoot, stepName, "found_questions.txt")
		if err := pipeline.WriteText(foundPath, found, s.Overwrite); err != nil {
			return err
		}
		logger.Debug("questions found", "step", s.Name(), "count", len(found))
	}
	return nil
}

func (s *QuestionsStep) processFile(ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator, stepName, path string, found *[]string) error {
	logger.Debug("process file", "step", s.Name(), "path", path)

	var doc ContentDoc
	if err := readJSONFile(path, &doc); err != nil {
		return err
	}

	for i := range doc.Data.StructuredContent {
		node := &doc.Data.StructuredContent[i]
		if node.Text == "" {
			continue
		}
		isQuestion := PredictQuestion(node.Text)
		node.IsQuestion = &isQuestion
		if isQuestion {
			*found = append(*found, node.Text)
		}
	}

	outputFilename := fmt.Sprintf("%s_%s.json", stepName, doc.Metadata.RecordID())
	outputPath := filepath.Join(ctrl.Job.WriteRoot, stepName, outputFilename)
	acc.RecordProcessed(path)
	acc.RecordOutput(outputFilename, path, outputPath)
	return pipeline.WriteJSON(outputPath, doc)
}
