package flagon

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// ContextKey identifies a typed slot in a CompleteContext. Keys compare by
// identity, so two keys created with the same name are still distinct.
type ContextKey[T any] struct {
	name string
}

// NewKey creates a context key. The name is only used in diagnostics.
func NewKey[T any](name string) *ContextKey[T] {
	return &ContextKey[T]{name: name}
}

func (k *ContextKey[T]) String() string { return k.name }

// CompleteContext accumulates values decoded from tokens to the left of the
// cursor during a single completion query. It is created per query and never
// outlives it.
type CompleteContext struct {
	values map[any]any
}

func newCompleteContext() *CompleteContext {
	return &CompleteContext{values: make(map[any]any)}
}

func (c *CompleteContext) put(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// KeyValue reads the value published under key earlier in the same
// completion query. The second return is false if nothing was published.
func KeyValue[T any](c *CompleteContext, key *ContextKey[T]) (T, bool) {
	var zero T
	if c == nil || c.values == nil {
		return zero, false
	}
	v, ok := c.values[key]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// ArgType describes how to decode one token into a T and, optionally, how to
// complete a partial token. Values are immutable; the With* methods return
// modified copies.
type ArgType[T any] struct {
	name     string
	decode   func(string) (T, error)
	complete func(*CompleteContext, string) []string
	key      *ContextKey[T]
}

// NewArgType builds an ArgType from a decode function. The name appears in
// help text (for example "int" or "host:port").
func NewArgType[T any](name string, decode func(string) (T, error)) ArgType[T] {
	if decode == nil {
		specBug("ArgType %q has no decode function", name)
	}
	return ArgType[T]{name: name, decode: decode}
}

// WithComplete attaches a completion function. It receives the context of
// values decoded so far and the in-progress partial token, and returns
// candidates in preference order. Absence of a completion function means
// "no suggestions".
func (a ArgType[T]) WithComplete(fn func(c *CompleteContext, partial string) []string) ArgType[T] {
	a.complete = fn
	return a
}

// WithKey publishes every value this type decodes during a completion query
// under key, so later arguments in the same specification can condition their
// own completion on it.
func (a ArgType[T]) WithKey(key *ContextKey[T]) ArgType[T] {
	a.key = key
	return a
}

// Name returns the display name of the type.
func (a ArgType[T]) Name() string { return a.name }

// Decode decodes a single raw token.
func (a ArgType[T]) Decode(raw string) (T, error) { return a.decode(raw) }

// argTypeCore is the erased form stored inside flag and anon definitions.
// The typed decode path lives in Param closures; the core only carries what
// the parser and the completion engine need without knowing T.
type argTypeCore struct {
	name     string
	complete func(*CompleteContext, string) []string
	register func(*CompleteContext, string)
}

func (a ArgType[T]) core() *argTypeCore {
	dec := a.decode
	key := a.key
	c := &argTypeCore{name: a.name, complete: a.complete}
	c.register = func(cc *CompleteContext, raw string) {
		if key == nil {
			return
		}
		v, err := dec(raw)
		if err != nil {
			return
		}
		cc.put(key, v)
	}
	return c
}

func prefixFilter(partial string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, partial) {
			out = append(out, c)
		}
	}
	return out
}

// String accepts any token verbatim.
func String() ArgType[string] {
	return NewArgType("string", func(s string) (string, error) { return s, nil })
}

// Int decodes a decimal integer.
func Int() ArgType[int] {
	return NewArgType("int", func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("not an integer")
		}
		return v, nil
	})
}

// Int64 decodes a decimal 64-bit integer.
func Int64() ArgType[int64] {
	return NewArgType("int64", func(s string) (int64, error) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer")
		}
		return v, nil
	})
}

// Float64 decodes a floating point number.
func Float64() ArgType[float64] {
	return NewArgType("float", func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		return v, nil
	})
}

// Bool decodes strconv-style booleans and completes "true"/"false".
func Bool() ArgType[bool] {
	return NewArgType("bool", func(s string) (bool, error) {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("not a boolean")
		}
		return v, nil
	}).WithComplete(func(_ *CompleteContext, partial string) []string {
		return prefixFilter(partial, []string{"false", "true"})
	})
}

// Duration decodes a time.Duration such as "1h30m".
func Duration() ArgType[time.Duration] {
	return NewArgType("duration", time.ParseDuration)
}

// Enum accepts exactly one of choices and completes them by prefix.
func Enum(choices ...string) ArgType[string] {
	if len(choices) == 0 {
		specBug("Enum needs at least one choice")
	}
	sorted := append([]string(nil), choices...)
	sort.Strings(sorted)
	return NewArgType(strings.Join(choices, "|"), func(s string) (string, error) {
		for _, c := range choices {
			if s == c {
				return s, nil
			}
		}
		return "", fmt.Errorf("must be one of %s", strings.Join(choices, ", "))
	}).WithComplete(func(_ *CompleteContext, partial string) []string {
		return prefixFilter(partial, sorted)
	})
}

// HostPort decodes a "host:port" pair.
type HostPort struct {
	Host string
	Port string
}

// HostPortArg decodes host:port, including bracketed IPv6 literals.
func HostPortArg() ArgType[HostPort] {
	return NewArgType("host:port", func(s string) (HostPort, error) {
		host, port, err := net.SplitHostPort(s)
		if err != nil {
			return HostPort{}, fmt.Errorf("not a host:port pair")
		}
		return HostPort{Host: host, Port: port}, nil
	})
}

// File accepts any token and completes against the filesystem. Directories
// complete with a trailing separator so completion can continue into them.
func File() ArgType[string] {
	return NewArgType("file", func(s string) (string, error) {
		return s, nil
	}).WithComplete(func(_ *CompleteContext, partial string) []string {
		dir, stem := filepath.Split(partial)
		readFrom := dir
		if readFrom == "" {
			readFrom = "."
		}
		entries, err := os.ReadDir(readFrom)
		if err != nil {
			return nil
		}
		var out []string
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, stem) {
				continue
			}
			cand := dir + name
			if e.IsDir() {
				cand += string(filepath.Separator)
			}
			out = append(out, cand)
		}
		sort.Strings(out)
		return out
	})
}

// PflagArg adapts any pflag.Value factory into an ArgType, so the pflag value
// zoo can be used without re-implementation. Each decode calls the factory
// and sets the token on a fresh value.
func PflagArg[V pflag.Value](newValue func() V) ArgType[V] {
	probe := newValue()
	return NewArgType(probe.Type(), func(s string) (V, error) {
		v := newValue()
		if err := v.Set(s); err != nil {
			var zero V
			return zero, err
		}
		return v, nil
	})
}
