package extract

import (
	"regexp"
	"strings"
)

// Markers wrapped around anchor text in accumulated strings. They survive in
// structured content so link positions stay recoverable; the plain-text view
// has them stripped.
const (
	LinkOpenMarker  = "[["
	LinkCloseMarker = "]]"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	linkMarkerRe  = regexp.MustCompile(`(\[\[|]])`)
	bulletRe      = regexp.MustCompile(`^[•*o]\s`)
	nonASCIIRe    = regexp.MustCompile(`[^\x00-\x7F]+`)
	startTagRe    = regexp.MustCompile(`^\s*<`)
	endTagRe      = regexp.MustCompile(`>\s*$`)
	linkContentRe = regexp.MustCompile(`\[\[(.*?)]]`)
)

// CleanText collapses contiguous whitespace to a single space and trims.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// StripLinkMarkers removes link open/close markers.
func StripLinkMarkers(text string) string {
	return linkMarkerRe.ReplaceAllString(text, "")
}

// RemoveBulletMarkers strips a leading bullet char and any non-ASCII runs.
func RemoveBulletMarkers(text string) string {
	return nonASCIIRe.ReplaceAllString(bulletRe.ReplaceAllString(text, ""), "")
}

// FixContent wraps a markup fragment in a div when it opens with a tag but
// does not close with one, so truncated fragments still parse.
func FixContent(content string) string {
	if content == "" {
		return ""
	}
	if startTagRe.MatchString(content) && !endTagRe.MatchString(content) {
		return "<div>" + content + "</div>"
	}
	return content
}

// LinkedTexts returns the marker-wrapped link texts found in text, in order.
func LinkedTexts(text string) []string {
	var out []string
	for _, m := range linkContentRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}
