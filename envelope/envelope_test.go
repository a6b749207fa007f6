package envelope

import (
	"strings"
	"testing"

	"github.com/hazyhaar/onesource/extract"
)

const sampleEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<CONTENT RECORDID="rec-001">
	<MASTERIDENTIFER>  Expense   Policy </MASTERIDENTIFER>
	<TYPE>POLICY</TYPE>
	<DOCUMENTID>doc-42</DOCUMENTID>
	<VERSION>3</VERSION>
	<AUTHOR>Jordan Smith</AUTHOR>
	<GUID>ignore-me</GUID>
	<RESOURCEPATH>/content/policies/expense.xml</RESOURCEPATH>
	<CREATETIMESTAMP_MILLIS>1262304000000</CREATETIMESTAMP_MILLIS>
	<LASTMODIFIEDTIMESTAMP_MILLIS>1262390400000</LASTMODIFIEDTIMESTAMP_MILLIS>
	<POLICY>
		<BODY>&lt;h1&gt;Claims&lt;/h1&gt;&lt;p&gt;Submit within &lt;b&gt;30&lt;/b&gt; days.&lt;/p&gt;</BODY>
		<SUMMARY>&lt;p&gt;Expense claim rules.&lt;/p&gt;</SUMMARY>
		<EMPTY>   </EMPTY>
	</POLICY>
</CONTENT>`

func TestParseEnvelope(t *testing.T) {
	doc, err := NewParser(nil).Parse(strings.NewReader(sampleEnvelope))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	m := doc.Metadata
	if m.RecordID != "rec-001" {
		t.Errorf("record id = %q", m.RecordID)
	}
	if m.Title != "Expense Policy" {
		t.Errorf("title = %q", m.Title)
	}
	if m.DocType != "POLICY" || m.DocID != "doc-42" || m.Version != "3" {
		t.Errorf("metadata = %+v", m)
	}
	if m.Author != "Jordan Smith" {
		t.Errorf("author = %q", m.Author)
	}
	if m.DocLocationPath != "/content/policies/expense.xml" {
		t.Errorf("doc location = %q", m.DocLocationPath)
	}
	if m.CreateTimestampMillis != 1262304000000 {
		t.Errorf("create millis = %d", m.CreateTimestampMillis)
	}
	if m.CreateTime != "2010-01-01T00:00:00.000" {
		t.Errorf("create time = %q", m.CreateTime)
	}
	if m.LastModifiedTime != "2010-01-02T00:00:00.000" {
		t.Errorf("last modified time = %q", m.LastModifiedTime)
	}

	if len(doc.Data) != 2 {
		t.Fatalf("data sections = %v", doc.Data)
	}
	body, ok := doc.Data["body"]
	if !ok {
		t.Fatalf("missing body section: %v", doc.Data)
	}
	if len(body.StructuredContent) != 2 {
		t.Fatalf("body nodes = %+v", body.StructuredContent)
	}
	if body.StructuredContent[0].Type != extract.NodeHeading ||
		body.StructuredContent[0].Text != "Claims" {
		t.Errorf("body node 0 = %+v", body.StructuredContent[0])
	}
	if body.StructuredContent[1].Text != "Submit within 30 days." {
		t.Errorf("body node 1 = %+v", body.StructuredContent[1])
	}
	texts, ok := body.Text.([]string)
	if !ok || len(texts) != 2 {
		t.Fatalf("body text = %#v", body.Text)
	}

	summary := doc.Data["summary"]
	if text, ok := summary.Text.(string); !ok || text != "Expense claim rules." {
		t.Errorf("summary text = %#v", summary.Text)
	}
	if _, ok := doc.Data["empty"]; ok {
		t.Errorf("blank payload element should be dropped")
	}
}

func TestParseEnvelopeBadTimestamp(t *testing.T) {
	bad := `<CONTENT RECORDID="r"><TYPE>DOC</TYPE><CREATETIMESTAMP_MILLIS>soon</CREATETIMESTAMP_MILLIS></CONTENT>`
	if _, err := NewParser(nil).Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for non-numeric timestamp")
	}
}

func TestISOFromMillis(t *testing.T) {
	if got := ISOFromMillis(1262304000500); got != "2010-01-01T00:00:00.500" {
		t.Errorf("got %q", got)
	}
}
