package extract

var headingTags = map[string]bool{
	"title": true, "h1": true, "h2": true, "h3": true, "h4": true,
}

// HeadingExtractor emits heading nodes for title and h1-h4 content. Anchors
// inside an open heading produce a link node before the heading node,
// because the anchor's own close event fires first.
type HeadingExtractor struct {
	current       string
	excluded      map[string]bool
	excludedDepth int
	inHeading     bool
	anchor        anchorState
}

// NewHeadingExtractor creates a heading extractor. With nil excludedTags,
// headings inside lists and tables are ignored.
func NewHeadingExtractor(excludedTags []string) *HeadingExtractor {
	if excludedTags == nil {
		excludedTags = []string{"ul", "ol", "table"}
	}
	return &HeadingExtractor{excluded: TagSet(excludedTags)}
}

func (x *HeadingExtractor) Extract(kind EventKind, el *Element, res *Result) {
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

	if headingTags[el.Tag] {
		if kind == StartEvent {
			x.inHeading = true
			x.current += el.Text
		} else {
			x.inHeading = false
			if x.current != "" {
				c := CleanText(x.current)
				x.current = ""
				if c != "" {
					res.TextList = append(res.TextList, StripLinkMarkers(c))
					res.Nodes = append(res.Nodes, ContentNode{Type: NodeHeading, Text: c})
				}
			}
		}
		return
	}

	if !x.inHeading {
		return
	}
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
	}
	if kind == EndEvent && el.Tail != "" {
		x.current += el.Tail
		x.anchor.accumulate(el.Tail)
	}
}
