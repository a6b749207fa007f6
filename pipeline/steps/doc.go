// Package steps implements the pipeline stages: envelope extraction,
// document extraction, collection, question tagging, markdown rendition,
// text combination, passage preparation, and graph storage.
package steps

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hazyhaar/onesource/extract"
)

// Metadata is document metadata passed between steps. The map form keeps
// source-specific keys intact across stages that only read a couple of
// them.
type Metadata map[string]any

func (m Metadata) str(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// RecordID is the stable document identifier used in output filenames.
func (m Metadata) RecordID() string { return m.str("record_id") }

// DocType labels the source kind, e.g. "Word" or "PDF".
func (m Metadata) DocType() string { return m.str("doc_type") }

// ContentData is the extracted body every step after extraction works on.
type ContentData struct {
	StructuredContent []extract.ContentNode `json:"structured_content"`
	Text              []string              `json:"text"`
}

// ContentDoc is the JSON document steps exchange on disk.
type ContentDoc struct {
	Metadata Metadata    `json:"metadata"`
	Data     ContentData `json:"data"`
}

// sectionDoc is the envelope extraction output shape: payload sections
// keyed by element name, each with its own text and structure.
type sectionDoc struct {
	Metadata Metadata `json:"metadata"`
	Data     map[string]struct {
		Text              any                   `json:"text"`
		StructuredContent []extract.ContentNode `json:"structured_content"`
	} `json:"data"`
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// recordIDFromTitle turns a document title into a filename-safe record id.
func recordIDFromTitle(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// isHiddenName reports temp and hidden files skipped during processing.
func isHiddenName(name string) bool {
	return strings.HasPrefix(name, "~") || strings.HasPrefix(name, ".")
}
