package extract

import "fmt"

// TextExtractor emits text nodes for block-level runs. p, div and body are
// block boundaries that flush then restart accumulation; br flushes but
// keeps accumulating into the same run; unrecognized inline tags merge
// their text and tail into the running accumulator. Images emit an image
// node plus an inline {image:url} placeholder.
type TextExtractor struct {
	current       string
	excluded      map[string]bool
	excludedDepth int
	anchor        anchorState
}

// NewTextExtractor creates a text extractor. With nil excludedTags, text
// inside lists, tables and headings is ignored.
func NewTextExtractor(excludedTags []string) *TextExtractor {
	if excludedTags == nil {
		excludedTags = []string{"ul", "ol", "table", "title", "h1", "h2", "h3", "h4"}
	}
	return &TextExtractor{excluded: TagSet(excludedTags)}
}

func (x *TextExtractor) flush(res *Result) {
	if x.current == "" {
		return
	}
	c := CleanText(x.current)
	x.current = ""
	if c != "" {
		res.TextList = append(res.TextList, StripLinkMarkers(c))
		res.Nodes = append(res.Nodes, ContentNode{Type: NodeText, Text: c})
	}
}

func (x *TextExtractor) Extract(kind EventKind, el *Element, res *Result) {
	if x.excluded[el.Tag] {
		if kind == StartEvent {
			x.excludedDepth++
			x.flush(res)
		} else {
			x.excludedDepth--
			x.current = el.Tail
		}
		return
	}
	if x.excludedDepth > 0 {
		return
	}

	switch {
	case el.Tag == "br" && kind == EndEvent:
		x.flush(res)
		x.current += el.Tail

	case el.Tag == "p" || el.Tag == "div" || el.Tag == "body":
		if kind == StartEvent {
			x.flush(res)
			x.current += el.Text
		} else {
			x.flush(res)
			x.current += el.Tail
		}

	default:
		if el.Tag == "a" {
			if kind == StartEvent {
				x.anchor.open(el, &x.current)
			} else {
				x.anchor.close(&x.current, res)
			}
		} else if el.Tag == "img" && kind == StartEvent {
			url := el.Attr("src")
			title := el.Attr("title")
			if title == "" {
				title = el.Attr("alt")
			}
			if title == "" {
				title = url
			}
			res.Nodes = append(res.Nodes, ContentNode{Type: NodeImage, URL: url, Title: title})
			ref := fmt.Sprintf("{image:%s}", url)
			x.current += ref
			x.anchor.accumulate(ref)
		}
		if kind == StartEvent && el.Text != "" {
			x.current += el.Text
			x.anchor.accumulate(el.Text)
		} else if kind == EndEvent && el.Tail != "" {
			x.current += el.Tail
			x.anchor.accumulate(el.Tail)
		}
	}
}
