package convert

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9]`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0[^.]`),
}

func hasHiddenStyle(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val) {
					return true
				}
			}
		}
	}
	return false
}

// markupPolicy keeps the structural elements downstream extraction works
// on and strips scripts, styles, event handlers and the rest.
var markupPolicy = bluemonday.UGCPolicy()

// convertHTMLFile selects the main content of an HTML file and returns it
// as sanitised markup. Selector-based selection when selectors are
// configured, semantic landmarks and density analysis otherwise.
func convertHTMLFile(path string, selectors []string, minTextLen int) (Meta, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, "", err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return Meta{}, "", err
	}
	pruneHidden(doc)

	meta := Meta{Title: findHTMLTitle(doc), WordCount: -1}

	var nodes []*html.Node
	if len(selectors) > 0 {
		nodes = selectContent(doc, selectors, minTextLen)
		if len(nodes) == 0 {
			return Meta{}, "", fmt.Errorf("no content matched selectors: %v", selectors)
		}
	} else {
		nodes = mainContent(doc, minTextLen)
	}
	if len(nodes) == 0 {
		return meta, "", nil
	}

	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(renderNode(n))
		sb.WriteByte('\n')
	}
	return meta, markupPolicy.Sanitize(sb.String()), nil
}

// pruneHidden removes subtrees hidden by inline style.
func pruneHidden(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if hasHiddenStyle(c) {
			n.RemoveChild(c)
			continue
		}
		pruneHidden(c)
	}
}

// selectContent returns nodes matched by the configured selectors that
// carry enough text.
func selectContent(doc *html.Node, selectors []string, minTextLen int) []*html.Node {
	var out []*html.Node
	for _, sel := range selectors {
		for _, n := range querySelectorAll(doc, sel) {
			if len(collectText(n)) >= minTextLen {
				out = append(out, n)
			}
		}
	}
	return out
}

// mainContent picks the document's content region: semantic landmarks
// first, then the densest non-boilerplate subtree, then the whole body.
func mainContent(doc *html.Node, minTextLen int) []*html.Node {
	var landmarks []*html.Node
	for _, n := range findContentByLandmarks(doc) {
		if isBoilerplate(n) {
			continue
		}
		if len(collectText(n)) >= minTextLen {
			landmarks = append(landmarks, n)
		}
	}
	if len(landmarks) > 0 {
		return landmarks
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}
	if best := findDensestNode(body, minTextLen); best != nil {
		return []*html.Node{best}
	}
	return []*html.Node{body}
}

// findHTMLTitle extracts the <title> text.
func findHTMLTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findHTMLTitle(c); t != "" {
			return t
		}
	}
	return ""
}
