package convert

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		path   string
		format Format
	}{
		{"doc.docx", FormatDocx},
		{"doc.odt", FormatODT},
		{"doc.pdf", FormatPDF},
		{"doc.md", FormatMD},
		{"doc.markdown", FormatMD},
		{"doc.txt", FormatTXT},
		{"doc.html", FormatHTML},
		{"doc.htm", FormatHTML},
		{"doc.xhtml", FormatHTML},
	}
	for _, tt := range tests {
		f, err := Detect(tt.path)
		if err != nil {
			t.Errorf("Detect(%q): %v", tt.path, err)
			continue
		}
		if f != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, f, tt.format)
		}
	}

	if _, err := Detect("file.xyz"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDocType(t *testing.T) {
	if got := DocType(FormatDocx); got != "Word" {
		t.Errorf("DocType(docx) = %q", got)
	}
	if got := DocType(FormatPDF); got != "PDF" {
		t.Errorf("DocType(pdf) = %q", got)
	}
	if got := DocType(FormatHTML); got != "" {
		t.Errorf("DocType(html) = %q", got)
	}
}

func writeDocx(t *testing.T, path string, parts map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range parts {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	w.Close()
	f.Close()
}

func TestConvertDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.docx")
	writeDocx(t, path, map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Claims Process</w:t></w:r></w:p>
<w:p><w:r><w:t>Submit your claim within 30 days.</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/></w:numPr></w:pPr><w:r><w:t>Complete the form</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/></w:numPr></w:pPr><w:r><w:t>Attach receipts</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Limit</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Basic</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1000</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body>
</w:document>`,
		"docProps/core.xml": `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
<dc:title>Claims Guide</dc:title>
<dc:creator>Author One</dc:creator>
<cp:lastModifiedBy>Editor Two</cp:lastModifiedBy>
<dcterms:created>2020-01-01T00:00:00Z</dcterms:created>
<dcterms:modified>2020-06-01T00:00:00Z</dcterms:modified>
</cp:coreProperties>`,
		"docProps/app.xml": `<?xml version="1.0" encoding="UTF-8"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
<Words>42</Words>
</Properties>`,
	})

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.DocType != "Word" {
		t.Errorf("doc type = %q", doc.DocType)
	}
	if doc.Meta.Title != "Claims Guide" {
		t.Errorf("title = %q", doc.Meta.Title)
	}
	if doc.Meta.Author != "Editor Two" {
		t.Errorf("author = %q", doc.Meta.Author)
	}
	if doc.Meta.Created != "2020-01-01T00:00:00Z" || doc.Meta.Modified != "2020-06-01T00:00:00Z" {
		t.Errorf("dates = %q / %q", doc.Meta.Created, doc.Meta.Modified)
	}
	if doc.Meta.WordCount != 42 {
		t.Errorf("word count = %d", doc.Meta.WordCount)
	}
	for _, want := range []string{
		"<h1>Claims Process</h1>",
		"<p>Submit your claim within 30 days.</p>",
		"<li>Complete the form</li>",
		"<li>Attach receipts</li>",
		"<td>Basic</td><td>1000</td>",
	} {
		if !strings.Contains(doc.Markup, want) {
			t.Errorf("markup missing %q:\n%s", want, doc.Markup)
		}
	}
}

func TestConvertDocxMissingProps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.docx")
	writeDocx(t, path, map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Fallback Title</w:t></w:r></w:p>
<w:p><w:r><w:t>Body text.</w:t></w:r></w:p>
</w:body>
</w:document>`,
	})

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Meta.Title != "Fallback Title" {
		t.Errorf("title = %q, want first heading", doc.Meta.Title)
	}
	if doc.Meta.WordCount != -1 {
		t.Errorf("word count = %d, want -1 without app.xml", doc.Meta.WordCount)
	}
}

func TestConvertDocxDepthLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomb.docx")
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for i := 0; i < 300; i++ {
		b.WriteString("<w:p>")
	}
	b.WriteString("<w:r><w:t>deep</w:t></w:r>")
	for i := 0; i < 300; i++ {
		b.WriteString("</w:p>")
	}
	b.WriteString("</w:body></w:document>")
	writeDocx(t, path, map[string]string{"word/document.xml": b.String()})

	_, err := New(Config{}).Convert(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "nesting depth") {
		t.Errorf("err = %v, want nesting depth error", err)
	}
}

func TestConvertODT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.odt")
	writeDocx(t, path, map[string]string{
		"content.xml": `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
<office:body>
<office:text>
<text:h text:outline-level="1">Policy Overview</text:h>
<text:p>First paragraph.</text:p>
<text:list><text:list-item><text:p>Item one</text:p></text:list-item>
<text:list-item><text:p>Item two</text:p></text:list-item></text:list>
</office:text>
</office:body>
</office:document-content>`,
		"meta.xml": `<?xml version="1.0" encoding="UTF-8"?>
<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:dc="http://purl.org/dc/elements/1.1/"
  xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0">
<office:meta>
<dc:title>ODT Guide</dc:title>
<dc:creator>Writer</dc:creator>
<meta:creation-date>2021-02-03T00:00:00Z</meta:creation-date>
<dc:date>2021-03-04T00:00:00Z</dc:date>
<meta:document-statistic meta:word-count="17"/>
</office:meta>
</office:document-meta>`,
	})

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.DocType != "Word" {
		t.Errorf("doc type = %q", doc.DocType)
	}
	if doc.Meta.Title != "ODT Guide" || doc.Meta.Author != "Writer" {
		t.Errorf("meta = %+v", doc.Meta)
	}
	if doc.Meta.WordCount != 17 {
		t.Errorf("word count = %d", doc.Meta.WordCount)
	}
	for _, want := range []string{"<h1>Policy Overview</h1>", "<p>First paragraph.</p>", "<li>Item one</li>", "<li>Item two</li>"} {
		if !strings.Contains(doc.Markup, want) {
			t.Errorf("markup missing %q:\n%s", want, doc.Markup)
		}
	}
}

func TestConvertText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	os.WriteFile(path, []byte("Hello  world\n\n  test  "), 0o644)

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatTXT || doc.DocType != "" {
		t.Errorf("format = %s, doc type = %q", doc.Format, doc.DocType)
	}
	if !strings.Contains(doc.Markup, "<p>Hello world test</p>") {
		t.Errorf("markup = %q", doc.Markup)
	}
	if doc.Meta.WordCount != 3 {
		t.Errorf("word count = %d", doc.Meta.WordCount)
	}
}

func TestConvertMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.md")
	content := `# My Title

This is a paragraph.

- first item
- second item

## Section Two

Another paragraph here.
`
	os.WriteFile(path, []byte(content), 0o644)

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Meta.Title != "My Title" {
		t.Errorf("title = %q", doc.Meta.Title)
	}
	for _, want := range []string{
		"<h1>My Title</h1>",
		"<p>This is a paragraph.</p>",
		"<li>first item</li>",
		"<li>second item</li>",
		"<h2>Section Two</h2>",
	} {
		if !strings.Contains(doc.Markup, want) {
			t.Errorf("markup missing %q:\n%s", want, doc.Markup)
		}
	}
}

func TestConvertHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.html")
	page := `<!DOCTYPE html>
<html><head><title>HTML Test</title></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<article>
<h1>Main Heading</h1>
<p>This is a substantial paragraph of text that should be selected as the main
content region because it contains enough words to pass the threshold.</p>
</article>
<footer>Copyright</footer>
</body></html>`
	os.WriteFile(path, []byte(page), 0o644)

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Meta.Title != "HTML Test" {
		t.Errorf("title = %q", doc.Meta.Title)
	}
	if !strings.Contains(doc.Markup, "substantial paragraph") {
		t.Errorf("markup missing content:\n%s", doc.Markup)
	}
	if strings.Contains(doc.Markup, "Copyright") {
		t.Errorf("markup kept footer boilerplate:\n%s", doc.Markup)
	}
}

func TestConvertHTMLSelectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sel.html")
	page := `<html><head><title>T</title></head><body>
<div class="sidebar">Sidebar links and widgets live over here in the margin.</div>
<div class="content">The selected region carries the body of the page with plenty of text.</div>
</body></html>`
	os.WriteFile(path, []byte(page), 0o644)

	doc, err := New(Config{Selectors: []string{"div.content"}}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Markup, "selected region") {
		t.Errorf("markup missing selected content:\n%s", doc.Markup)
	}
	if strings.Contains(doc.Markup, "Sidebar") {
		t.Errorf("markup kept unselected content:\n%s", doc.Markup)
	}
}

func TestConvertHTMLHiddenText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hidden.html")
	page := `<html><body><main>
<p>Visible text stays in the converted output because it is rendered normally.</p>
<div style="display:none">secret hidden text</div>
<span style="visibility:hidden">hidden payload</span>
</main></body></html>`
	os.WriteFile(path, []byte(page), 0o644)

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(doc.Markup, "secret hidden text") || strings.Contains(doc.Markup, "hidden payload") {
		t.Errorf("hidden text leaked:\n%s", doc.Markup)
	}
	if !strings.Contains(doc.Markup, "Visible text stays") {
		t.Errorf("visible text lost:\n%s", doc.Markup)
	}
}

func TestConvertHTMLStripsScripts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.html")
	page := `<html><body><main>
<p>Safe paragraph content that is long enough to register as the main region.</p>
<script>alert("xss")</script>
</main></body></html>`
	os.WriteFile(path, []byte(page), 0o644)

	doc, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(doc.Markup, "<script") || strings.Contains(doc.Markup, "alert(") {
		t.Errorf("script survived sanitisation:\n%s", doc.Markup)
	}
}

func TestConvertRejectsOversizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0o644)

	_, err := New(Config{MaxFileSize: 10}).Convert(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("err = %v, want size error", err)
	}
}

func TestSupportedFormats(t *testing.T) {
	if got := SupportedFormats(); len(got) != 6 {
		t.Errorf("formats = %v", got)
	}
}
