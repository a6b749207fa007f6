// Package extract converts markup into typed content nodes and a parallel
// plain-text view.
//
// Four cooperating extractors (heading, text, list, table) consume the same
// event stream in a fixed order. Each is stateful per document and must be
// freshly constructed for each one.
package extract

// Node types emitted into a Result.
const (
	NodeText    = "text"
	NodeHeading = "heading"
	NodeLink    = "link"
	NodeList    = "list"
	NodeTable   = "table"
	NodeImage   = "image"
)

// List subtypes.
const (
	SubtypeOrdered   = "ordered"
	SubtypeUnordered = "unordered"
)

// Field describes an inferred table column.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ContentNode is one unit of extracted structure. Type discriminates which
// of the remaining fields are meaningful; unused fields stay at their zero
// values and are omitted from JSON.
type ContentNode struct {
	Type       string     `json:"type"`
	Text       string     `json:"text,omitempty"`
	URL        string     `json:"url,omitempty"`
	Title      string     `json:"title,omitempty"`
	Subtype    string     `json:"subtype,omitempty"`
	Heading    string     `json:"heading,omitempty"`
	Items      []string   `json:"items,omitempty"`
	Head       [][]string `json:"head,omitempty"`
	Body       [][]string `json:"body,omitempty"`
	Fields     []Field    `json:"fields,omitempty"`
	References []string   `json:"references,omitempty"`
	Index      int        `json:"index,omitempty"`
	IsQuestion *bool      `json:"is_question,omitempty"`
}

// Result collects the outputs of an extraction pass. Nodes is in document
// reading order. TextList is the flat plain-text view; each emitted node
// that carries readable text contributes entries in the same order.
type Result struct {
	Nodes    []ContentNode
	TextList []string
}

// TextSpan returns the number of TextList entries contributed by n.
// Link and image nodes contribute none; their text lives inline in the
// surrounding node's entry.
func TextSpan(n *ContentNode) int {
	switch n.Type {
	case NodeText, NodeHeading:
		return 1
	case NodeList:
		return len(n.Items)
	case NodeTable:
		return len(n.Head) + len(n.Body)
	default:
		return 0
	}
}

// Extractor is implemented by the per-document content extractors.
// Implementations keep internal state between events and are not safe for
// reuse across documents or goroutines.
type Extractor interface {
	Extract(kind EventKind, el *Element, res *Result)
}
