package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxXMLDepth bounds element nesting while decoding archive XML. Deeper
// documents are rejected as malformed.
const maxXMLDepth = 256

// convertDocx parses a .docx file: body content from word/document.xml,
// metadata from the docProps parts.
func convertDocx(path string) (Meta, []section, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	meta := Meta{WordCount: -1}
	parts := map[string]*zip.File{}
	for _, f := range r.File {
		switch f.Name {
		case "word/document.xml", "docProps/core.xml", "docProps/app.xml":
			parts[f.Name] = f
		}
	}
	docFile := parts["word/document.xml"]
	if docFile == nil {
		return Meta{}, nil, fmt.Errorf("word/document.xml not found in archive")
	}

	if f := parts["docProps/core.xml"]; f != nil {
		if err := readCoreProps(f, &meta); err != nil {
			return Meta{}, nil, err
		}
	}
	if f := parts["docProps/app.xml"]; f != nil {
		if err := readAppProps(f, &meta); err != nil {
			return Meta{}, nil, err
		}
	}

	rc, err := docFile.Open()
	if err != nil {
		return Meta{}, nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	sections, err := parseDocxBody(rc)
	if err != nil {
		return Meta{}, nil, err
	}

	if meta.Title == "" {
		for _, s := range sections {
			if s.kind == "heading" {
				meta.Title = s.text
				break
			}
		}
	}
	return meta, sections, nil
}

// parseDocxBody streams word/document.xml into sections: headings by
// paragraph style, list paragraphs grouped by numbering, tables by tbl/tr/tc.
func parseDocxBody(rc io.Reader) ([]section, error) {
	decoder := xml.NewDecoder(rc)
	var sections []section
	var currentText strings.Builder
	var inParagraph, inNumbering bool
	var paragraphStyle string
	depth := 0

	var listItems []string
	var tableRows [][]string
	var tableRow []string
	var inTable, inCell bool

	flushList := func() {
		if len(listItems) > 0 {
			sections = append(sections, section{kind: "list", items: listItems})
			listItems = nil
		}
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return nil, fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "tbl":
				flushList()
				inTable = true
				tableRows = nil
			case "tr":
				if inTable {
					tableRow = nil
				}
			case "tc":
				if inTable {
					inCell = true
					currentText.Reset()
				}
			case "p":
				if !inTable {
					inParagraph = true
					currentText.Reset()
					paragraphStyle = ""
					inNumbering = false
				}
			case "pStyle":
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							paragraphStyle = attr.Value
						}
					}
				}
			case "numPr":
				if inParagraph {
					inNumbering = true
				}
			}

		case xml.CharData:
			if inParagraph || inCell {
				currentText.Write(t)
			}

		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "tc":
				if inTable && inCell {
					inCell = false
					tableRow = append(tableRow, strings.TrimSpace(currentText.String()))
				}
			case "tr":
				if inTable && len(tableRow) > 0 {
					tableRows = append(tableRows, tableRow)
					tableRow = nil
				}
			case "tbl":
				if inTable {
					inTable = false
					if len(tableRows) > 0 {
						sections = append(sections, section{kind: "table", rows: tableRows})
					}
				}
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				if inNumbering || strings.EqualFold(paragraphStyle, "ListParagraph") {
					listItems = append(listItems, text)
					continue
				}
				flushList()
				if level := docxHeadingLevel(paragraphStyle); level > 0 {
					sections = append(sections, section{kind: "heading", level: level, text: text})
				} else {
					sections = append(sections, section{kind: "paragraph", text: text})
				}
			}
		}
	}
	flushList()
	return sections, nil
}

// docxHeadingLevel extracts the heading level from a paragraph style name,
// e.g. "Heading1" is 1, "Title" is 1, "Subtitle" is 2.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)
	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

// readCoreProps fills title, author and dates from docProps/core.xml.
func readCoreProps(f *zip.File, meta *Meta) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open core.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var current string
	var text strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse core.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			val := strings.TrimSpace(text.String())
			switch current {
			case "title":
				meta.Title = val
			case "lastModifiedBy":
				meta.Author = val
			case "creator":
				if meta.Author == "" {
					meta.Author = val
				}
			case "created":
				meta.Created = val
			case "modified":
				meta.Modified = val
			}
			current = ""
		}
	}
	return nil
}

// readAppProps fills the word count from docProps/app.xml.
func readAppProps(f *zip.File, meta *Meta) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open app.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var current string
	var text strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse app.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if current == "Words" {
				if n, err := strconv.Atoi(strings.TrimSpace(text.String())); err == nil {
					meta.WordCount = n
				}
			}
			current = ""
		}
	}
	return nil
}
