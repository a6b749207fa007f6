package extract

import (
	"golang.org/x/net/html"
)

// defaultExtractors returns a fresh extractor set in dispatch order: list,
// table, text, heading. The order is a contract: when one event makes
// several extractors emit, their nodes land in the result in exactly this
// order, and downstream consumers depend on that sequencing. Do not
// reorder the slice.
func defaultExtractors() []Extractor {
	return []Extractor{
		NewListExtractor([]string{"table"}),
		NewTableExtractor(),
		NewTextExtractor([]string{"ul", "ol", "table", "title", "h1", "h2", "h3", "h4"}),
		NewHeadingExtractor([]string{"ul", "ol", "table"}),
	}
}

// Content runs the full extraction over a markup fragment: parse, replay
// all events through a fresh extractor set, then re-derive content from
// single-column layout tables.
func Content(markup string) (*Result, error) {
	doc, err := ParseHTML(markup)
	if err != nil {
		return nil, err
	}
	res := runExtractors(doc, defaultExtractors())
	return SpliceLayoutTables(doc, res), nil
}

func runExtractors(doc *html.Node, extractors []Extractor) *Result {
	res := &Result{}
	Walk(doc, nil, func(kind EventKind, el *Element) {
		for _, x := range extractors {
			x.Extract(kind, el, res)
		}
	})
	return res
}

// TextValue returns the plain-text view in its external form: the single
// string when there is exactly one entry, else the list.
func (r *Result) TextValue() any {
	if len(r.TextList) == 1 {
		return r.TextList[0]
	}
	return r.TextList
}

// SpliceLayoutTables replaces each single-column layout table node, along
// with the nested-table nodes emitted just before it and its span of
// text-list entries, with content re-extracted from the table's cells. The
// splice preserves every untouched node before and after the span.
func SpliceLayoutTables(doc *html.Node, res *Result) *Result {
	tables := tableElements(doc)
	occurrence := make(map[int]int)

	i := 0
	for i < len(res.Nodes) {
		node := res.Nodes[i]
		if node.Type != NodeTable || len(node.Fields) != 1 {
			i++
			continue
		}
		el := findTable(tables, node.Index, occurrence[node.Index])
		occurrence[node.Index]++
		if el == nil {
			i++
			continue
		}

		sub := extractFromElements(cellChildren(el))

		lo := i - len(node.References)
		if lo < 0 {
			lo = 0
		}
		textLo := sumSpans(res.Nodes[:lo])
		textHi := sumSpans(res.Nodes[:i+1])

		nodes := make([]ContentNode, 0, lo+len(sub.Nodes)+len(res.Nodes)-i-1)
		nodes = append(nodes, res.Nodes[:lo]...)
		nodes = append(nodes, sub.Nodes...)
		nodes = append(nodes, res.Nodes[i+1:]...)

		texts := make([]string, 0, textLo+len(sub.TextList)+len(res.TextList)-textHi)
		texts = append(texts, res.TextList[:textLo]...)
		texts = append(texts, sub.TextList...)
		texts = append(texts, res.TextList[textHi:]...)

		res.Nodes = nodes
		res.TextList = texts
		i = lo + len(sub.Nodes)
	}
	return res
}

func sumSpans(nodes []ContentNode) int {
	total := 0
	for i := range nodes {
		total += TextSpan(&nodes[i])
	}
	return total
}

type tableElement struct {
	node  *html.Node
	index int
}

// tableElements enumerates table elements in document order with the same
// index assignment the table extractor uses: a counter incremented per
// open, reset after a top-level table closes. The positional lookup keeps
// working when sibling top-level tables reuse an index.
func tableElements(doc *html.Node) []tableElement {
	var out []tableElement
	counter := 1
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		isTable := n.Type == html.ElementNode && n.Data == "table"
		childDepth := depth
		if isTable {
			out = append(out, tableElement{node: n, index: counter})
			counter++
			childDepth++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, childDepth)
		}
		if isTable && depth == 0 {
			counter = 1
		}
	}
	walk(doc, 0)
	return out
}

// findTable returns the nth (0-based) table element carrying the given
// index, or nil.
func findTable(tables []tableElement, index, nth int) *html.Node {
	seen := 0
	for _, t := range tables {
		if t.index != index {
			continue
		}
		if seen == nth {
			return t.node
		}
		seen++
	}
	return nil
}

// cellChildren collects the child elements of every td cell in the table,
// whether rows sit under tbody or directly under the table.
func cellChildren(table *html.Node) []*html.Node {
	var cells []*html.Node
	rows := make([]*html.Node, 0, 4)
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "tbody":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.Data == "tr" {
					rows = append(rows, r)
				}
			}
		}
	}
	for _, row := range rows {
		for td := row.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || td.Data != "td" {
				continue
			}
			for c := td.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode {
					cells = append(cells, c)
				}
			}
		}
	}
	return cells
}

// extractFromElements replays the given elements through a fresh extractor
// set inside a synthetic container, so block boundaries at the edges still
// flush.
func extractFromElements(els []*html.Node) *Result {
	res := &Result{}
	extractors := defaultExtractors()
	container := &Element{Tag: "div"}
	dispatch := func(kind EventKind, el *Element) {
		for _, x := range extractors {
			x.Extract(kind, el, res)
		}
	}
	dispatch(StartEvent, container)
	for _, el := range els {
		Walk(el, nil, dispatch)
	}
	dispatch(EndEvent, container)
	return res
}
