package flagon

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArgMatchesOneToken(t *testing.T) {
	p := Anon(Arg("count", Int()))
	v, err := parseValue(p, "7")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != 7 {
		t.Errorf("value = %d, want 7", v)
	}
}

func TestArgMissing(t *testing.T) {
	p := Anon(Arg("count", Int()))
	_, err := parseValue(p)
	var mae *MissingAnonArgumentError
	if !errors.As(err, &mae) {
		t.Fatalf("error = %v, want MissingAnonArgumentError", err)
	}
	if mae.Name != "count" {
		t.Errorf("name = %q", mae.Name)
	}
}

func TestArgDecodeFailure(t *testing.T) {
	p := Anon(Arg("count", Int()))
	_, err := parseValue(p, "abc")
	var iae *InvalidArgumentError
	if !errors.As(err, &iae) {
		t.Fatalf("error = %v, want InvalidArgumentError", err)
	}
	if iae.Name != "count" || iae.Raw != "abc" {
		t.Errorf("fields = %q %q", iae.Name, iae.Raw)
	}
}

func TestUnexpectedAnonArgument(t *testing.T) {
	p := Anon(Arg("src", String()))
	_, err := parseValue(p, "a", "b")
	var uae *UnexpectedAnonArgumentError
	if !errors.As(err, &uae) {
		t.Fatalf("error = %v, want UnexpectedAnonArgumentError", err)
	}
	if uae.Token != "b" {
		t.Errorf("token = %q", uae.Token)
	}
}

func TestSequence(t *testing.T) {
	p := Anon(Sequence(Arg("n", Int())))

	v, err := parseValue(p)
	if err != nil {
		t.Fatalf("empty parse error = %v", err)
	}
	if len(v) != 0 {
		t.Errorf("empty sequence = %v", v)
	}

	v, err = parseValue(p, "1", "2", "3")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, v); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestNonEmptySequence(t *testing.T) {
	p := Anon(NonEmptySequence(Arg("file", String())))
	_, err := parseValue(p)
	var mae *MissingAnonArgumentError
	if !errors.As(err, &mae) {
		t.Fatalf("error = %v, want MissingAnonArgumentError", err)
	}

	v, err := parseValue(p, "a")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, v); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestMaybe(t *testing.T) {
	p := Anon(Maybe(Arg("limit", Int())))

	v, err := parseValue(p)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != nil {
		t.Errorf("absent maybe = %v, want nil", v)
	}

	v, err = parseValue(p, "5")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v == nil || *v != 5 {
		t.Errorf("present maybe = %v", v)
	}
}

func TestMaybeTupleAllOrNothing(t *testing.T) {
	pair := Tuple2(Arg("key", String()), Arg("value", String()))
	p := Anon(Maybe(pair))

	v, err := parseValue(p)
	if err != nil {
		t.Fatalf("zero tokens: parse error = %v", err)
	}
	if v != nil {
		t.Errorf("zero tokens = %v, want nil", v)
	}

	v, err = parseValue(p, "k", "v")
	if err != nil {
		t.Fatalf("two tokens: parse error = %v", err)
	}
	want := Pair[string, string]{First: "k", Second: "v"}
	if v == nil || *v != want {
		t.Errorf("two tokens = %v", v)
	}

	// One token cannot satisfy the pair, and Maybe refuses partial matches,
	// so the token is left over.
	if _, err := parseValue(p, "k"); err == nil {
		t.Error("one token should fail")
	}
}

func TestMaybeDefault(t *testing.T) {
	p := Anon(MaybeDefault(10, Arg("n", Int())))
	v, err := parseValue(p)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != 10 {
		t.Errorf("absent = %d, want 10", v)
	}
	v, err = parseValue(p, "3")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != 3 {
		t.Errorf("present = %d, want 3", v)
	}
}

func TestTuple3(t *testing.T) {
	p := Anon(Tuple3(Arg("a", String()), Arg("b", Int()), Arg("c", String())))
	v, err := parseValue(p, "x", "2", "y")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	want := Triple[string, int, string]{First: "x", Second: 2, Third: "y"}
	if v != want {
		t.Errorf("value = %+v", v)
	}
}

func TestFixedThenVariadic(t *testing.T) {
	p := Anon(Tuple2(Arg("cmd", String()), Sequence(Arg("arg", String()))))
	v, err := parseValue(p, "run", "a", "b")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v.First != "run" {
		t.Errorf("first = %q", v.First)
	}
	if diff := cmp.Diff([]string{"a", "b"}, v.Second); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}
}

func TestGrammarAfterVariadicPanics(t *testing.T) {
	wantPanic(t, "invalid anonymous grammar", func() {
		Tuple2(Sequence(Arg("a", String())), Arg("b", String()))
	})
	wantPanic(t, "invalid anonymous grammar", func() {
		Both(
			Anon(Sequence(Arg("a", String()))),
			Anon(Sequence(Arg("b", String()))),
		)
	})
}

func TestMaybeOfVariadicPanics(t *testing.T) {
	wantPanic(t, "fixed-arity", func() {
		Maybe(Sequence(Arg("a", String())))
	})
}

func TestEmptyAtomNamePanics(t *testing.T) {
	wantPanic(t, "display name", func() {
		Arg("", String())
	})
}

func TestGrammarUsage(t *testing.T) {
	tests := []struct {
		name string
		node *anonNode
		want string
	}{
		{"atom", Arg("file", String()).node, "FILE"},
		{"sequence", Sequence(Arg("file", String())).node, "[FILE...]"},
		{"non-empty", NonEmptySequence(Arg("file", String())).node, "FILE..."},
		{"maybe", Maybe(Arg("file", String())).node, "[FILE]"},
		{"tuple", Tuple2(Arg("src", String()), Arg("dst", String())).node, "SRC DST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.usage(); got != tt.want {
				t.Errorf("usage() = %q, want %q", got, tt.want)
			}
		})
	}
}
