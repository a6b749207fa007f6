package extract

var listHeadingTags = map[string]bool{
	"title": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"div": true, "strong": true,
}

var listBlockTags = map[string]bool{
	"p": true, "div": true, "title": true, "h1": true, "h2": true, "h3": true, "h4": true,
}

// ListExtractor emits one flat list node per outermost ul/ol. Nested lists
// are flattened: a depth counter ensures only the outermost close emits,
// and items at any depth land in a single items sequence. Content before
// the first item accumulates as the list heading; text between items is
// emitted as plain text nodes.
type ListExtractor struct {
	current       string
	headingText   string
	excluded      map[string]bool
	excludedDepth int
	inHeading     bool
	inItems       bool
	inList        bool
	listLevel     int
	list          ContentNode
	anchor        anchorState
}

// NewListExtractor creates a list extractor. With nil excludedTags, lists
// inside tables are ignored.
func NewListExtractor(excludedTags []string) *ListExtractor {
	if excludedTags == nil {
		excludedTags = []string{"table"}
	}
	return &ListExtractor{
		excluded: TagSet(excludedTags),
		list:     ContentNode{Type: NodeList, Subtype: SubtypeUnordered},
	}
}

// flushPre handles text accumulated before or between items. Pre-item text
// joins the heading; between-item text becomes a plain text node. sep is
// appended to raw heading text, matching how block and item boundaries
// differ in spacing.
func (x *ListExtractor) flushPre(res *Result, sep string) {
	if x.current == "" {
		return
	}
	c := CleanText(x.current)
	if c != "" {
		res.TextList = append(res.TextList, StripLinkMarkers(c))
		if x.inHeading {
			x.headingText += x.current + sep
		} else {
			res.Nodes = append(res.Nodes, ContentNode{Type: NodeText, Text: c})
		}
	}
	x.current = ""
}

func (x *ListExtractor) Extract(kind EventKind, el *Element, res *Result) {
	if x.excluded[el.Tag] {
		if kind == StartEvent {
			x.excludedDepth++
		} else {
			x.excludedDepth--
		}
		return
	}
	if x.excludedDepth > 0 {
		return
	}

	if el.Tag == "ul" || el.Tag == "ol" {
		if kind == StartEvent {
			x.inList = true
			x.listLevel++
			if x.listLevel == 1 && el.Tag == "ol" {
				x.list.Subtype = SubtypeOrdered
			}
		} else {
			x.listLevel--
			if x.listLevel == 0 {
				x.flushPre(res, "")
				if x.headingText != "" {
					x.list.Heading = CleanText(x.headingText)
				}
				if x.headingText != "" || len(x.list.Items) > 0 {
					res.Nodes = append(res.Nodes, x.list)
				}
				x.list = ContentNode{Type: NodeList, Subtype: SubtypeUnordered}
				x.inItems = false
				x.inHeading = false
				x.inList = false
				x.headingText = ""
				x.current = ""
			}
		}
		return
	}

	if !x.inList {
		return
	}

	if listHeadingTags[el.Tag] && kind == StartEvent && !x.inItems {
		x.inHeading = true
	}

	switch {
	case el.Tag == "li":
		if kind == StartEvent {
			x.flushPre(res, "")
			x.inHeading = false
			x.inItems = true
			x.current += el.Text
		} else {
			if x.current != "" {
				c := CleanText(x.current)
				x.current = ""
				if c != "" {
					res.TextList = append(res.TextList, StripLinkMarkers(c))
					x.list.Items = append(x.list.Items, c)
				}
			}
			x.current += el.Tail
		}

	case el.Tag == "br" && kind == EndEvent:
		x.flushPre(res, " ")
		x.current += el.Tail

	case listBlockTags[el.Tag]:
		if kind == StartEvent {
			x.flushPre(res, " ")
			x.current += el.Text
		} else {
			x.flushPre(res, " ")
			x.current += el.Tail
		}

	default:
		if el.Tag == "a" {
			if kind == StartEvent {
				x.anchor.open(el, &x.current)
			} else {
				x.anchor.close(&x.current, res)
			}
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
