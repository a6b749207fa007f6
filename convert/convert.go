// Package convert turns source documents (Word, PDF, OpenDocument, HTML,
// Markdown, plain text) into an HTML rendition plus document metadata, ready
// for structured content extraction.
package convert

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a source document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatODT  Format = "odt"
	FormatPDF  Format = "pdf"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

// Document type labels recorded in extracted output.
const (
	DocTypeWord = "Word"
	DocTypePDF  = "PDF"
)

// Meta is the document-level metadata a converter recovers from its source.
type Meta struct {
	Title    string
	Author   string
	Created  string
	Modified string

	// WordCount is -1 when the source does not carry a count.
	WordCount int
}

// Document is the result of converting a source file.
type Document struct {
	Path    string
	Format  Format
	DocType string
	Meta    Meta

	// Markup is the HTML rendition of the document body.
	Markup string

	// Quality carries extraction quality metrics for PDF sources.
	Quality *ExtractionQuality
}

// section is the structural unit converters emit before markup rendering.
type section struct {
	kind  string // heading, paragraph, list, table
	level int    // heading level 1-6
	text  string
	items []string   // list items
	rows  [][]string // table rows
}

// Config configures a Converter.
type Config struct {
	// MaxFileSize is the maximum source size to process (default 100 MB).
	MaxFileSize int64 `yaml:"max_file_size"`

	// Selectors, when set, pick the main content of HTML sources instead
	// of density analysis.
	Selectors []string `yaml:"selectors"`

	// MinTextLen is the minimum text length for an HTML region to count
	// as content (default 25).
	MinTextLen int `yaml:"min_text_len"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.MinTextLen <= 0 {
		c.MinTextLen = 25
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter dispatches document conversion by format.
type Converter struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{cfg: cfg, logger: cfg.Logger}
}

// Detect returns the document format based on file extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDocx, nil
	case ".odt":
		return FormatODT, nil
	case ".pdf":
		return FormatPDF, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".html", ".htm", ".xhtml":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", filepath.Ext(path))
	}
}

// DocType maps a format to the document type label used in extracted
// output. Formats outside the Word/PDF pair have no label.
func DocType(format Format) string {
	switch format {
	case FormatDocx, FormatODT:
		return DocTypeWord
	case FormatPDF:
		return DocTypePDF
	default:
		return ""
	}
}

// Convert parses a source file into its HTML rendition and metadata.
func (c *Converter) Convert(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > c.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), c.cfg.MaxFileSize)
	}

	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("convert document", "path", path, "format", format)

	doc := &Document{Path: path, Format: format, DocType: DocType(format)}
	var sections []section

	switch format {
	case FormatDocx:
		doc.Meta, sections, err = convertDocx(path)
	case FormatODT:
		doc.Meta, sections, err = convertODT(path)
	case FormatPDF:
		doc.Meta, sections, doc.Quality, err = convertPDF(path)
	case FormatMD:
		doc.Meta, sections, err = convertMarkdown(path)
	case FormatTXT:
		doc.Meta, sections, err = convertText(path)
	case FormatHTML:
		doc.Meta, doc.Markup, err = convertHTMLFile(path, c.cfg.Selectors, c.cfg.MinTextLen)
	}
	if err != nil {
		return nil, fmt.Errorf("convert %s (%s): %w", path, format, err)
	}

	if doc.Markup == "" {
		doc.Markup = renderSections(sections)
	}
	if doc.Quality != nil && doc.Quality.NeedsOCR() {
		c.logger.Warn("low extraction quality, source may need OCR",
			"path", path, "chars_per_page", doc.Quality.CharsPerPage)
	}
	return doc, nil
}

// renderSections builds the HTML rendition from converter sections.
func renderSections(sections []section) string {
	var sb strings.Builder
	for _, s := range sections {
		switch s.kind {
		case "heading":
			level := s.level
			if level < 1 {
				level = 1
			} else if level > 6 {
				level = 6
			}
			fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", level, html.EscapeString(s.text), level)
		case "list":
			sb.WriteString("<ul>\n")
			for _, item := range s.items {
				fmt.Fprintf(&sb, "<li>%s</li>\n", html.EscapeString(item))
			}
			sb.WriteString("</ul>\n")
		case "table":
			sb.WriteString("<table>\n")
			for _, row := range s.rows {
				sb.WriteString("<tr>")
				for _, cell := range row {
					fmt.Fprintf(&sb, "<td>%s</td>", html.EscapeString(cell))
				}
				sb.WriteString("</tr>\n")
			}
			sb.WriteString("</table>\n")
		default:
			fmt.Fprintf(&sb, "<p>%s</p>\n", html.EscapeString(s.text))
		}
	}
	return sb.String()
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"docx", "odt", "pdf", "md", "txt", "html"}
}
