package extract

import "strings"

// anchorState tracks an open anchor while its surrounding extractor
// accumulates text. Anchor text is wrapped in link markers inside the
// accumulator and also emitted as a standalone link node on close. An
// anchor whose resolved text is blank collapses to a single space so no
// marker residue is left behind.
type anchorState struct {
	active bool
	text   string
	url    string
}

func (a *anchorState) open(el *Element, current *string) {
	if url := el.Attr("href"); url != "" {
		a.active = true
		a.url = url
		*current += LinkOpenMarker
	}
}

func (a *anchorState) close(current *string, res *Result) {
	if !a.active {
		return
	}
	a.active = false
	if strings.TrimSpace(a.text) != "" {
		*current += LinkCloseMarker
		if a.url != "" && a.text != "" {
			res.Nodes = append(res.Nodes, ContentNode{Type: NodeLink, URL: a.url, Text: a.text})
		}
	} else if n := strings.LastIndex(*current, LinkOpenMarker); n >= 0 {
		*current = (*current)[:n] + " "
	}
	a.url = ""
	a.text = ""
}

func (a *anchorState) accumulate(s string) {
	if a.active {
		a.text += s
	}
}
