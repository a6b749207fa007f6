// Package envelope reads content-management export envelopes: XML documents
// that carry document metadata in fixed elements plus one payload element,
// named by the TYPE value, whose character data is escaped markup.
package envelope

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/onesource/extract"
)

// Metadata is the envelope header mapped to output keys.
type Metadata struct {
	RecordID                    string `json:"record_id"`
	Title                       string `json:"title,omitempty"`
	DocType                     string `json:"doc_type"`
	DocID                       string `json:"doc_id,omitempty"`
	Version                     string `json:"version,omitempty"`
	Author                      string `json:"author,omitempty"`
	StartTimestampMillis        int64  `json:"start_timestamp_millis,omitempty"`
	StartTime                   string `json:"start_time,omitempty"`
	EndTimestampMillis          int64  `json:"end_timestamp_millis,omitempty"`
	EndTime                     string `json:"end_time,omitempty"`
	CreateTimestampMillis       int64  `json:"create_timestamp_millis,omitempty"`
	CreateTime                  string `json:"create_time,omitempty"`
	LastModifiedTimestampMillis int64  `json:"last_modified_timestamp_millis,omitempty"`
	LastModifiedTime            string `json:"last_modified_time,omitempty"`
	PublishedTimestampMillis    int64  `json:"published_timestamp_millis,omitempty"`
	PublishedTime               string `json:"published_time,omitempty"`
	DocLocationPath             string `json:"doc_location_path,omitempty"`
}

// Section is the extracted view of one payload element.
type Section struct {
	Text              any                   `json:"text"`
	StructuredContent []extract.ContentNode `json:"structured_content,omitempty"`
}

// Document is one parsed envelope: header metadata plus extracted payload
// sections keyed by lowercased element name.
type Document struct {
	Metadata Metadata           `json:"metadata"`
	Data     map[string]Section `json:"data"`
}

// ISOFromMillis renders an epoch-milliseconds timestamp as an ISO 8601
// instant in UTC.
func ISOFromMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000")
}

// Parser reads envelopes. Elements named in excluded are skipped entirely;
// by default that is GUID, whose value is opaque and never useful
// downstream.
type Parser struct {
	excluded map[string]bool
}

// NewParser creates a parser. With nil excludedTags, GUID elements are
// skipped.
func NewParser(excludedTags []string) *Parser {
	if excludedTags == nil {
		excludedTags = []string{"GUID"}
	}
	return &Parser{excluded: extract.TagSet(excludedTags)}
}

// Parse streams one envelope. The payload element is only recognized once
// TYPE has been seen, so envelopes must carry TYPE before the payload, as
// exports do.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	doc := &Document{Data: make(map[string]Section)}
	dec := xml.NewDecoder(r)

	var stack []*strings.Builder
	inPayload := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read envelope: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, &strings.Builder{})
			name := t.Name.Local
			if p.excluded[name] {
				continue
			}
			switch {
			case name == "CONTENT":
				for _, a := range t.Attr {
					if a.Name.Local == "RECORDID" {
						doc.Metadata.RecordID = a.Value
					}
				}
			case doc.Metadata.DocType != "" && name == doc.Metadata.DocType:
				inPayload = true
			}

		case xml.CharData:
			if n := len(stack); n > 0 {
				stack[n-1].Write(t)
			}

		case xml.EndElement:
			var raw string
			if n := len(stack); n > 0 {
				raw = stack[n-1].String()
				stack = stack[:n-1]
			}
			name := t.Name.Local
			if p.excluded[name] {
				continue
			}
			if err := p.closeElement(doc, name, raw, &inPayload); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func (p *Parser) closeElement(doc *Document, name, raw string, inPayload *bool) error {
	text := extract.CleanText(raw)
	m := &doc.Metadata

	switch name {
	case "MASTERIDENTIFER":
		m.Title = text
	case "TYPE":
		m.DocType = text
	case "DOCUMENTID":
		m.DocID = text
	case "VERSION":
		m.Version = text
	case "AUTHOR":
		m.Author = text
	case "RESOURCEPATH":
		m.DocLocationPath = text
	case "STARTTIMESTAMP_MILLIS":
		return setMillis(name, text, &m.StartTimestampMillis, &m.StartTime)
	case "ENDTIMESTAMP_MILLIS":
		return setMillis(name, text, &m.EndTimestampMillis, &m.EndTime)
	case "CREATETIMESTAMP_MILLIS":
		return setMillis(name, text, &m.CreateTimestampMillis, &m.CreateTime)
	case "LASTMODIFIEDTIMESTAMP_MILLIS":
		return setMillis(name, text, &m.LastModifiedTimestampMillis, &m.LastModifiedTime)
	case "PUBLISHEDTIMESTAMP_MILLIS":
		return setMillis(name, text, &m.PublishedTimestampMillis, &m.PublishedTime)
	case "CONTENT":
		// record id was read from the start tag attribute
	default:
		switch {
		case m.DocType != "" && name == m.DocType:
			*inPayload = false
		case *inPayload && strings.TrimSpace(raw) != "":
			res, err := extract.Content(raw)
			if err != nil {
				return fmt.Errorf("extract payload %s: %w", name, err)
			}
			doc.Data[strings.ToLower(name)] = Section{
				Text:              res.TextValue(),
				StructuredContent: res.Nodes,
			}
		}
	}
	return nil
}

func setMillis(name, text string, millis *int64, iso *string) error {
	ms, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", name, text, err)
	}
	*millis = ms
	*iso = ISOFromMillis(ms)
	return nil
}
