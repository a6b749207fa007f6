package steps

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/hazyhaar/onesource/extract"
	"github.com/hazyhaar/onesource/pipeline"
)

// Passage is one retrievable unit of text prepared for a QA reader.
type Passage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QAPrepStep turns extracted documents into passage files for question
// answering: plain text passes through, short lists fold into a sentence,
// long lists split into one passage per item, and tables are rendered as
// natural-language statements.
type QAPrepStep struct {
	pipeline.BaseStep
}

func NewQAPrepStep(name, sourceKey string, overwrite bool) *QAPrepStep {
	s := &QAPrepStep{BaseStep: pipeline.NewBaseStep(name, sourceKey)}
	s.Overwrite = overwrite
	return s
}

func (s *QAPrepStep) Run(ctx context.Context, ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator) error {
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

func (s *QAPrepStep) processFile(ctrl *pipeline.ControlData, logger *slog.Logger, acc *pipeline.Accumulator, stepName, path string) error {
	logger.Debug("process file", "step", s.Name(), "path", path)

	var doc ContentDoc
	if err := readJSONFile(path, &doc); err != nil {
		return err
	}

	texts := PassageTexts(doc.Data.StructuredContent)
	passages := make([]any, 0, len(texts))
	for _, t := range texts {
		passages = append(passages, Passage{ID: uuid.NewString(), Text: t})
	}

	outputFilename := fmt.Sprintf("%s_%s.jsonl", stepName, doc.Metadata.RecordID())
	outputPath := filepath.Join(ctrl.Job.WriteRoot, stepName, outputFilename)
	acc.RecordProcessed(path)
	acc.RecordOutput(outputFilename, path, outputPath)
	return pipeline.WriteJSONLines(outputPath, passages)
}

// shortListMax is the largest list folded into a single sentence; longer
// lists contribute one passage per item.
const shortListMax = 5

// PassageTexts flattens structured content into passage texts.
func PassageTexts(nodes []extract.ContentNode) []string {
	var texts []string
	prevType := ""
	for _, node := range nodes {
		switch node.Type {
		case extract.NodeText:
			texts = append(texts, node.Text)

		case extract.NodeList:
			if len(node.Items) > shortListMax {
				texts = append(texts, node.Items...)
				break
			}
			intro := ""
			if prevType == extract.NodeText && len(texts) > 0 {
				if lead := InferListIntro(texts[len(texts)-1]); lead != "" {
					texts = texts[:len(texts)-1]
					intro = lead + ": "
				}
			}
			items := make([]string, 0, len(node.Items))
			for _, item := range node.Items {
				items = append(items, NormalizeListItem(item))
			}
			texts = append(texts, intro+strings.Join(items, "; "))

		case extract.NodeTable:
			texts = append(texts, extract.TableText(&node)...)
		}
		prevType = node.Type
	}
	return texts
}

// listIntroWords are sentence-final words that signal the sentence leads
// into the list that follows it.
var listIntroWords = map[string]bool{
	"of": true, "to": true, "for": true, "in": true, "on": true, "at": true,
	"by": true, "with": true, "from": true, "as": true, "are": true,
	"is": true, "include": true, "includes": true, "including": true,
	"follows": true, "following": true, "these": true,
}

// InferListIntro decides whether a text leads into the list after it, and
// returns the intro with trailing punctuation stripped. A sentence ending
// in a colon always leads in; one ending in a period never does; otherwise
// a preposition or linking verb at the end signals an unfinished sentence.
func InferListIntro(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	switch trimmed[len(trimmed)-1] {
	case ':':
		return strings.TrimSpace(trimmed[:len(trimmed)-1])
	case '.', '!', '?':
		return ""
	}
	fields := strings.Fields(trimmed)
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], ",;"))
	if listIntroWords[last] {
		return trimmed
	}
	return ""
}

// NormalizeListItem lowers a leading capital (unless the item starts with
// an acronym) and strips trailing punctuation.
func NormalizeListItem(text string) string {
	if text == "" {
		return text
	}
	r := []rune(text)
	if len(r) >= 2 && unicode.IsUpper(r[0]) && unicode.IsLower(r[1]) {
		r[0] = unicode.ToLower(r[0])
	}
	return strings.TrimRightFunc(string(r), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_'
	})
}
