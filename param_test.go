package flagon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// parseValue runs the full parse pipeline against a typed specification,
// the way a Basic command would before calling its handler.
func parseValue[T any](p *Param[T], args ...string) (T, error) {
	var zero T
	b, aborted, err := p.spec().parse(args)
	if err != nil {
		return zero, err
	}
	if aborted {
		return zero, nil
	}
	return p.decode(b)
}

func wantPanic(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, got none", substr)
		}
		if !strings.Contains(fmt.Sprint(r), substr) {
			t.Fatalf("panic = %v, want substring %q", r, substr)
		}
	}()
	fn()
}

func TestPure(t *testing.T) {
	v, err := parseValue(Pure(42))
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != 42 {
		t.Errorf("value = %d, want 42", v)
	}
	if _, err := parseValue(Pure(42), "extra"); err == nil {
		t.Error("leftover token should fail")
	}
}

func TestBothPureIdentity(t *testing.T) {
	p := Flag("n", Required(Int()), "")

	left, err := parseValue(Both(Pure("x"), p), "-n", "1")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if left != (Pair[string, int]{First: "x", Second: 1}) {
		t.Errorf("left identity = %+v", left)
	}

	right, err := parseValue(Both(p, Pure("x")), "-n", "1")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if right != (Pair[int, string]{First: 1, Second: "x"}) {
		t.Errorf("right identity = %+v", right)
	}
}

func TestMap(t *testing.T) {
	p := Map(Flag("n", Required(Int()), "a number"), func(n int) int { return n * 2 })
	v, err := parseValue(p, "-n", "21")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != 42 {
		t.Errorf("value = %d, want 42", v)
	}
}

func TestBothCombinesFlagsAndAnons(t *testing.T) {
	p := Both(
		Flag("verbose", NoArg(), "chatty output"),
		Anon(Arg("file", String())),
	)
	v, err := parseValue(p, "-verbose", "a.txt")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	want := Pair[bool, string]{First: true, Second: "a.txt"}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestMap3(t *testing.T) {
	p := Map3(
		Flag("host", OptionalDefault(String(), "localhost"), ""),
		Flag("port", Required(Int()), ""),
		Flag("tls", NoArg(), ""),
		func(host string, port int, tls bool) string {
			return fmt.Sprintf("%s:%d tls=%v", host, port, tls)
		},
	)
	v, err := parseValue(p, "-port", "8080")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != "localhost:8080 tls=false" {
		t.Errorf("value = %q", v)
	}
}

func TestFlagNameCollisionPanics(t *testing.T) {
	wantPanic(t, "collision", func() {
		Both(
			Flag("out", Required(String()), ""),
			Flag("out", NoArg(), ""),
		)
	})
}

func TestAliasCollisionPanics(t *testing.T) {
	wantPanic(t, "collision", func() {
		Both(
			Flag("output", Required(String()), "", "-o"),
			Flag("o", NoArg(), ""),
		)
	})
}

func TestFlagNameValidation(t *testing.T) {
	wantPanic(t, "invalid flag name", func() {
		Flag("-", NoArg(), "")
	})
	wantPanic(t, "underscores", func() {
		Flag("dry_run", NoArg(), "")
	})
}

func TestFlagNameNormalization(t *testing.T) {
	// With or without a leading dash, the canonical name is dash-prefixed.
	for _, name := range []string{"count", "-count"} {
		p := Flag(name, Required(Int()), "")
		v, err := parseValue(p, "-count", "3")
		if err != nil {
			t.Fatalf("Flag(%q): parse error = %v", name, err)
		}
		if v != 3 {
			t.Errorf("Flag(%q): value = %d, want 3", name, v)
		}
	}
}

func TestFlagAlias(t *testing.T) {
	p := Flag("output", Required(String()), "", "o")
	v, err := parseValue(p, "-o", "x.bin")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if v != "x.bin" {
		t.Errorf("value = %q, want x.bin", v)
	}
}

func TestDecodeErrorPrecedesHandler(t *testing.T) {
	called := false
	cmd := Basic("test", Flag("n", Required(Int()), ""),
		func(ctx context.Context, inv *Invocation, n int) error {
			called = true
			return nil
		})
	err := cmd.Invoke("-n", "abc").Run()
	if err == nil {
		t.Fatal("expected parse error")
	}
	var iae *InvalidArgumentError
	if !errors.As(err, &iae) {
		t.Fatalf("error = %v, want InvalidArgumentError", err)
	}
	if iae.Name != "-n" || iae.Raw != "abc" {
		t.Errorf("error fields = %q %q", iae.Name, iae.Raw)
	}
	if called {
		t.Error("handler ran despite an invalid argument")
	}
}
