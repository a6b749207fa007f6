package convert

import (
	"os"
	"strings"
	"unicode"
)

// convertText reads a plain text file as a single paragraph.
func convertText(path string) (Meta, []section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, nil, err
	}
	text := normalizeWhitespace(string(data))
	if text == "" {
		return Meta{WordCount: -1}, nil, nil
	}
	meta := Meta{
		Title:     firstLine(text),
		WordCount: len(strings.Fields(text)),
	}
	return meta, []section{{kind: "paragraph", text: text}}, nil
}

// convertMarkdown splits a Markdown file into heading, list and paragraph
// sections. ATX headings only.
func convertMarkdown(path string) (Meta, []section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, nil, err
	}

	var sections []section
	var title string
	var currentText strings.Builder
	var listItems []string

	flushParagraph := func() {
		if text := strings.TrimSpace(currentText.String()); text != "" {
			sections = append(sections, section{kind: "paragraph", text: text})
		}
		currentText.Reset()
	}
	flushList := func() {
		if len(listItems) > 0 {
			sections = append(sections, section{kind: "list", items: listItems})
			listItems = nil
		}
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			flushParagraph()
			flushList()
			level := 0
			for _, ch := range trimmed {
				if ch != '#' {
					break
				}
				level++
			}
			if level > 6 {
				level = 6
			}
			text := strings.TrimSpace(strings.TrimRight(strings.TrimLeft(trimmed, "#"), "#"))
			if text != "" {
				if title == "" {
					title = text
				}
				sections = append(sections, section{kind: "heading", level: level, text: text})
			}
			continue
		}

		if item, ok := markdownListItem(trimmed); ok {
			flushParagraph()
			listItems = append(listItems, item)
			continue
		}

		if trimmed == "" {
			flushParagraph()
			flushList()
			continue
		}

		flushList()
		if currentText.Len() > 0 {
			currentText.WriteByte(' ')
		}
		currentText.WriteString(trimmed)
	}
	flushParagraph()
	flushList()

	if title == "" && len(sections) > 0 {
		title = firstLine(sections[0].text)
	}

	total := 0
	for _, s := range sections {
		total += len(strings.Fields(s.text))
		for _, item := range s.items {
			total += len(strings.Fields(item))
		}
	}
	return Meta{Title: title, WordCount: total}, sections, nil
}

// markdownListItem strips a bullet or ordered-list marker, if present.
func markdownListItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:]), true
	}
	return "", false
}

func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
