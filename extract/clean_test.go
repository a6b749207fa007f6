package extract

import (
	"reflect"
	"testing"
)

func TestCleanText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"  a  b ", "a b"},
		{"line\n\tbreak", "line break"},
		{"\n\t  ", ""},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Errorf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripLinkMarkers(t *testing.T) {
	if got := StripLinkMarkers("My [[Heading]] text"); got != "My Heading text" {
		t.Errorf("got %q", got)
	}
}

func TestRemoveBulletMarkers(t *testing.T) {
	cases := []struct{ in, want string }{
		{"• item", "item"},
		{"* item", "item"},
		{"o item", "item"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := RemoveBulletMarkers(c.in); got != c.want {
			t.Errorf("RemoveBulletMarkers(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFixContent(t *testing.T) {
	if got := FixContent("<p>open ended"); got != "<div><p>open ended</div>" {
		t.Errorf("got %q", got)
	}
	if got := FixContent("<p>closed</p>"); got != "<p>closed</p>" {
		t.Errorf("got %q", got)
	}
	if got := FixContent("no tags at all"); got != "no tags at all" {
		t.Errorf("got %q", got)
	}
	if got := FixContent(""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestLinkedTexts(t *testing.T) {
	got := LinkedTexts("see [[one]] and [[two]] here")
	if !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("got %q", got)
	}
	if LinkedTexts("no links") != nil {
		t.Errorf("expected nil for plain text")
	}
}
