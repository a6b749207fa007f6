package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// convertODT parses an .odt file: body from content.xml, metadata from
// meta.xml.
func convertODT(path string) (Meta, []section, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	meta := Meta{WordCount: -1}
	var contentFile, metaFile *zip.File
	for _, f := range r.File {
		switch f.Name {
		case "content.xml":
			contentFile = f
		case "meta.xml":
			metaFile = f
		}
	}
	if contentFile == nil {
		return Meta{}, nil, fmt.Errorf("content.xml not found in archive")
	}

	if metaFile != nil {
		if err := readODTMeta(metaFile, &meta); err != nil {
			return Meta{}, nil, err
		}
	}

	rc, err := contentFile.Open()
	if err != nil {
		return Meta{}, nil, fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	sections, err := parseODTBody(rc)
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

func parseODTBody(rc io.Reader) ([]section, error) {
	decoder := xml.NewDecoder(rc)
	var sections []section
	var currentText strings.Builder
	var inHeading, inParagraph, inList bool
	var headingLevel, depth int
	var listItems []string

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
			return nil, fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return nil, fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "h":
				inHeading = true
				currentText.Reset()
				headingLevel = 1
				for _, attr := range t.Attr {
					if attr.Name.Local == "outline-level" {
						if n, err := strconv.Atoi(attr.Value); err == nil {
							headingLevel = n
						}
					}
				}
			case "p":
				inParagraph = true
				currentText.Reset()
			case "list":
				inList = true
			}

		case xml.CharData:
			if inHeading || inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			depth--
			switch {
			case t.Name.Local == "h" && inHeading:
				inHeading = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				flushList()
				sections = append(sections, section{kind: "heading", level: headingLevel, text: text})

			case t.Name.Local == "p" && inParagraph:
				inParagraph = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				if inList {
					listItems = append(listItems, text)
				} else {
					flushList()
					sections = append(sections, section{kind: "paragraph", text: text})
				}

			case t.Name.Local == "list":
				inList = false
				flushList()
			}
		}
	}
	flushList()
	return sections, nil
}

// readODTMeta fills title, author, dates and word count from meta.xml.
func readODTMeta(f *zip.File, meta *Meta) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open meta.xml: %w", err)
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
			return fmt.Errorf("parse meta.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
			text.Reset()
			if current == "document-statistic" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "word-count" {
						if n, err := strconv.Atoi(attr.Value); err == nil {
							meta.WordCount = n
						}
					}
				}
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			val := strings.TrimSpace(text.String())
			switch current {
			case "title":
				meta.Title = val
			case "creator":
				meta.Author = val
			case "creation-date":
				meta.Created = val
			case "date":
				meta.Modified = val
			}
			current = ""
		}
	}
	return nil
}
