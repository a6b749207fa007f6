package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// EventKind tags a markup event as an element open or close.
type EventKind int

const (
	StartEvent EventKind = iota
	EndEvent
)

func (k EventKind) String() string {
	if k == StartEvent {
		return "start"
	}
	return "end"
}

// Element is the view of a markup element the extractors consume. Text is
// the character data before the first child element; Tail is the character
// data between this element's close tag and the next sibling element.
type Element struct {
	Tag   string
	Attrs map[string]string
	Text  string
	Tail  string
}

// Attr returns the named attribute or "".
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// ParseHTML parses markup into a document tree, repairing bare fragments
// first. Malformed input is recovered best-effort, never rejected.
func ParseHTML(content string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(FixContent(content)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Walk traverses the tree in document order, calling fn with a start event
// before each element's children and an end event after. Tags in excluded
// are filtered per event; their children still appear unless also excluded.
func Walk(root *html.Node, excluded map[string]bool, fn func(EventKind, *Element)) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}
		el := newElement(n)
		skip := excluded[el.Tag]
		if !skip {
			fn(StartEvent, el)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if !skip {
			fn(EndEvent, el)
		}
	}
	walk(root)
}

// TagSet builds the excluded-tag lookup used by Walk and the extractors.
func TagSet(tags []string) map[string]bool {
	s := make(map[string]bool, len(tags))
	for _, t := range tags {
		s[t] = true
	}
	return s
}

func newElement(n *html.Node) *Element {
	el := &Element{Tag: n.Data}
	if len(n.Attr) > 0 {
		el.Attrs = make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			el.Attrs[a.Key] = a.Val
		}
	}
	el.Text = leadingText(n)
	el.Tail = tailText(n)
	return el
}

// leadingText is the character data before the first child element.
func leadingText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			break
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// tailText is the character data after n's close tag up to the next sibling
// element.
func tailText(n *html.Node) string {
	var b strings.Builder
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			break
		}
		if s.Type == html.TextNode {
			b.WriteString(s.Data)
		}
	}
	return b.String()
}
