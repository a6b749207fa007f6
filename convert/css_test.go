package convert

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestQuerySelectorAll(t *testing.T) {
	doc := parse(t, `<html><body>
<div id="main" class="content wide"><p>one</p><p>two</p></div>
<div class="other"><p>three</p></div>
<span data-role="x">four</span>
<div role="main">five</div>
</body></html>`)

	tests := []struct {
		selector string
		want     int
	}{
		{"p", 3},
		{".content", 1},
		{"#main", 1},
		{"div.content", 1},
		{"div#main", 1},
		{"span[data-role]", 1},
		{"div[role=main]", 1},
		{"div.content p", 2},
		{".missing", 0},
	}
	for _, tt := range tests {
		if got := len(querySelectorAll(doc, tt.selector)); got != tt.want {
			t.Errorf("querySelectorAll(%q) matched %d, want %d", tt.selector, got, tt.want)
		}
	}
}

func TestFindDensestNodeSkipsNavigation(t *testing.T) {
	doc := parse(t, `<html><body>
<div class="menu"><a href="/a">A</a><a href="/b">B</a><a href="/c">C</a></div>
<div><p>A long run of body prose that dominates the page and should win the
density comparison over the link-heavy navigation block above it.</p></div>
</body></html>`)

	best := findDensestNode(findBody(doc), 25)
	if best == nil {
		t.Fatal("no dense node found")
	}
	if !strings.Contains(collectText(best), "body prose") {
		t.Errorf("densest node text = %q", collectText(best))
	}
}

func TestIsBoilerplate(t *testing.T) {
	doc := parse(t, `<html><body>
<nav>menu</nav>
<div class="cookie-banner">accept</div>
<div role="contentinfo">legal</div>
<div class="story">content</div>
</body></html>`)

	classes := map[string]bool{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			key := n.Data
			if c := getAttr(n, "class"); c != "" {
				key = c
			} else if r := getAttr(n, "role"); r != "" {
				key = r
			}
			classes[key] = isBoilerplate(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !classes["nav"] || !classes["cookie-banner"] || !classes["contentinfo"] {
		t.Errorf("boilerplate not flagged: %v", classes)
	}
	if classes["story"] {
		t.Error("content block flagged as boilerplate")
	}
}
