package extract

import (
	"reflect"
	"testing"
)

func TestGuessType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2021-03-04T05:06:07Z", TypeDatetime},
		{"2021-03-04 05:06:07", TypeDatetime},
		{"05:06:07", TypeTime},
		{"2021-03-04", TypeDate},
		{"42", TypeInteger},
		{"4.2", TypeNumber},
		{"true", TypeBoolean},
		{"FALSE", TypeBoolean},
		{"hello", TypeString},
	}
	for _, c := range cases {
		if got := GuessType(c.in); got != c.want {
			t.Errorf("GuessType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInferFieldsMajorityWins(t *testing.T) {
	body := [][]string{
		{"Age", "Alice"},
		{"30", "Bob"},
		{"40", "Carol"},
	}
	got := InferFields(body, []string{"a", "b"})
	want := []Field{{Name: "a", Type: TypeInteger}, {Name: "b", Type: TypeString}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestInferFieldsTieBreaksTowardSpecific(t *testing.T) {
	body := [][]string{
		{"2021-03-04"},
		{"hello"},
	}
	got := InferFields(body, []string{"when"})
	if got[0].Type != TypeDate {
		t.Errorf("got %+v, want date", got)
	}
}

func TestInferFieldsEmptyColumn(t *testing.T) {
	got := InferFields(nil, []string{"a"})
	if got[0].Type != TypeAny {
		t.Errorf("got %+v, want any", got)
	}
}

func TestInferFieldsRaggedRows(t *testing.T) {
	body := [][]string{
		{"1", "x", "extra"},
		{"2"},
	}
	got := InferFields(body, []string{"a", "b"})
	if got[0].Type != TypeInteger || got[1].Type != TypeString {
		t.Errorf("got %+v", got)
	}
}
