package convert

import (
	"reflect"
	"testing"
)

func TestExtractTextFromStreamKeepsLineBreaks(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
(Policy Overview) Tj
T*
T*
(This policy covers fire) Tj
(and flood damage.) '
T*
T*
(Claims go to the portal.) Tj
ET`)

	got := extractTextFromStream(stream)
	want := "Policy Overview\n\nThis policy covers fire\nand flood damage.\n\nClaims go to the portal."
	if got != want {
		t.Errorf("stream text = %q, want %q", got, want)
	}

	if title := firstLine(got); title != "Policy Overview" {
		t.Errorf("title = %q, want first line only", title)
	}
	paras := splitParagraphs(got)
	wantParas := []string{
		"Policy Overview",
		"This policy covers fire and flood damage.",
		"Claims go to the portal.",
	}
	if !reflect.DeepEqual(paras, wantParas) {
		t.Errorf("paragraphs = %q, want %q", paras, wantParas)
	}
}

func TestCleanPDFText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"runs   of \t spaces", "runs of spaces"},
		{"one\nbreak", "one\nbreak"},
		{"blank\n\nline", "blank\n\nline"},
		{"many\n\n\n\nblanks", "many\n\nblanks"},
		{"carriage\r\nreturn", "carriage\nreturn"},
		{"break \n with spaces", "break\nwith spaces"},
		{"\n\nleading and trailing\n\n", "leading and trailing"},
		{"ctrl\x00chars\x07gone", "ctrlcharsgone"},
	}
	for _, tt := range tests {
		if got := cleanPDFText(tt.in); got != tt.want {
			t.Errorf("cleanPDFText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"one paragraph", []string{"one paragraph"}},
		{"first\n\nsecond", []string{"first", "second"}},
		{"wrapped\nline\n\nnext", []string{"wrapped line", "next"}},
		{"", nil},
		{"\n\n", nil},
	}
	for _, tt := range tests {
		if got := splitParagraphs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitParagraphs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte(`plain`), "plain"},
		{[]byte(`escaped \( paren \)`), "escaped ( paren )"},
		{[]byte(`line\nbreak`), "line\nbreak"},
		{[]byte(`octal \101\102`), "octal AB"},
	}
	for _, tt := range tests {
		if got := decodePDFString(tt.in); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
