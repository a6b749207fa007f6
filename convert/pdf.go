package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// convertPDF extracts text from a PDF via pdfcpu content streams, one
// paragraph section per page, with extraction quality metrics.
func convertPDF(path string) (Meta, []section, *ExtractionQuality, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, nil, nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return Meta{}, nil, nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	meta := Meta{WordCount: -1}
	var sections []section
	var allText strings.Builder
	totalChars := 0

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := extractPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		totalChars += len([]rune(pageText))

		if meta.Title == "" {
			meta.Title = firstLine(pageText)
		}
		for _, para := range splitParagraphs(pageText) {
			sections = append(sections, section{kind: "paragraph", text: para})
		}
		if allText.Len() > 0 {
			allText.WriteByte('\n')
		}
		allText.WriteString(pageText)
	}

	if len(sections) == 0 {
		return Meta{}, nil, nil, fmt.Errorf("no text content found in PDF")
	}

	fullText := allText.String()
	meta.WordCount = len(strings.Fields(fullText))

	var charsPerPage float64
	if ctx.PageCount > 0 {
		charsPerPage = float64(totalChars) / float64(ctx.PageCount)
	}
	quality := &ExtractionQuality{
		PageCount:       ctx.PageCount,
		CharsPerPage:    charsPerPage,
		PrintableRatio:  computePrintableRatio(fullText),
		WordlikeRatio:   computeWordlikeRatio(fullText),
		HasImageStreams: detectImageStreams(ctx),
	}
	return meta, sections, quality, nil
}

// extractPageText extracts text from a single page's content stream.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

// detectImageStreams checks if the PDF contains image XObjects.
func detectImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// pdfStringRe matches PDF string literals in parentheses.
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// extractTextFromStream parses PDF content stream text operators.
func extractTextFromStream(data []byte) string {
	var sb strings.Builder

	appendStrings := func(line []byte) {
		for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
			if text := decodePDFString(m[1]); text != "" {
				sb.WriteString(text)
			}
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			appendStrings(line)
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			sb.WriteByte('\n')
			appendStrings(line)
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}
	return cleanPDFText(sb.String())
}

// decodePDFString handles basic PDF escape sequences, including octal.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanPDFText normalises whitespace in extracted PDF text. Line structure
// survives: a whitespace run with one newline becomes a single newline,
// one with several becomes a blank line, anything else a single space.
func cleanPDFText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var sb strings.Builder
	newlines := 0
	pendingSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if r == '\n' {
				newlines++
			}
			pendingSpace = true
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		if pendingSpace && sb.Len() > 0 {
			switch {
			case newlines >= 2:
				sb.WriteString("\n\n")
			case newlines == 1:
				sb.WriteByte('\n')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteRune(r)
		newlines = 0
		pendingSpace = false
	}
	return sb.String()
}

// splitParagraphs splits page text on blank lines. Single line breaks
// within a paragraph are flowed into spaces.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}
