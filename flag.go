package flagon

import "strings"

type flagArity int

const (
	arityRequired flagArity = iota
	arityOptional
	arityOptionalDefault
	arityListed
	arityOneOrMore
	arityNoArg
	arityNoArgRegister
	arityNoArgAbort
	arityEscape
)

// flagDef is the erased per-flag record the parser and completion engine
// work with. Arities that take no argument (NoArg*, Escape) carry no arg
// type; all others do.
type flagDef struct {
	name    string
	aliases []string
	doc     string
	arity   flagArity
	arg     *argTypeCore
	publish func(*CompleteContext) // NoArgRegister only
	abort   func()                 // NoArgAbort only
}

func (d *flagDef) takesArg() bool { return d.arg != nil }

func (d *flagDef) repeatable() bool {
	return d.arity == arityListed || d.arity == arityOneOrMore
}

// FlagGrammar pairs a cardinality policy with the typed reduction from the
// raw occurrences of one flag to its decoded value.
type FlagGrammar[T any] struct {
	arity   flagArity
	arg     *argTypeCore
	publish func(*CompleteContext)
	abort   func()
	reduce  func(name string, b *bindings) (T, error)
}

func decodeOne[T any](at ArgType[T], name, raw string) (T, error) {
	v, err := at.decode(raw)
	if err != nil {
		var zero T
		return zero, &InvalidArgumentError{Name: name, Raw: raw, Err: err}
	}
	return v, nil
}

// Required: the flag must appear exactly once.
func Required[T any](at ArgType[T]) FlagGrammar[T] {
	return FlagGrammar[T]{
		arity: arityRequired,
		arg:   at.core(),
		reduce: func(name string, b *bindings) (T, error) {
			return decodeOne(at, name, b.flags[name][0])
		},
	}
}

// Optional: zero or one occurrence; absent yields nil.
func Optional[T any](at ArgType[T]) FlagGrammar[*T] {
	return FlagGrammar[*T]{
		arity: arityOptional,
		arg:   at.core(),
		reduce: func(name string, b *bindings) (*T, error) {
			raws := b.flags[name]
			if len(raws) == 0 {
				return nil, nil
			}
			v, err := decodeOne(at, name, raws[0])
			if err != nil {
				return nil, err
			}
			return &v, nil
		},
	}
}

// OptionalDefault: zero or one occurrence; absent yields def.
func OptionalDefault[T any](at ArgType[T], def T) FlagGrammar[T] {
	return FlagGrammar[T]{
		arity: arityOptionalDefault,
		arg:   at.core(),
		reduce: func(name string, b *bindings) (T, error) {
			raws := b.flags[name]
			if len(raws) == 0 {
				return def, nil
			}
			return decodeOne(at, name, raws[0])
		},
	}
}

// Listed: any number of occurrences, decoded in input order.
func Listed[T any](at ArgType[T]) FlagGrammar[[]T] {
	return FlagGrammar[[]T]{
		arity:  arityListed,
		arg:    at.core(),
		reduce: listReduce(at),
	}
}

// OneOrMore: like Listed but at least one occurrence is required.
func OneOrMore[T any](at ArgType[T]) FlagGrammar[[]T] {
	return FlagGrammar[[]T]{
		arity:  arityOneOrMore,
		arg:    at.core(),
		reduce: listReduce(at),
	}
}

func listReduce[T any](at ArgType[T]) func(string, *bindings) ([]T, error) {
	return func(name string, b *bindings) ([]T, error) {
		raws := b.flags[name]
		out := make([]T, 0, len(raws))
		for _, raw := range raws {
			v, err := decodeOne(at, name, raw)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// NoArg: a boolean switch; true when the flag was present.
func NoArg() FlagGrammar[bool] {
	return FlagGrammar[bool]{
		arity:  arityNoArg,
		reduce: presenceReduce,
	}
}

// NoArgRegister is NoArg that additionally publishes value under key into the
// CompleteContext during completion queries, so later arguments can condition
// their candidates on the switch being present.
func NoArgRegister[T any](key *ContextKey[T], value T) FlagGrammar[bool] {
	return FlagGrammar[bool]{
		arity:   arityNoArgRegister,
		publish: func(cc *CompleteContext) { cc.put(key, value) },
		reduce:  presenceReduce,
	}
}

// NoArgAbort halts parsing the instant the flag is recognized and invokes fn,
// which must not return (it typically prints something and calls os.Exit).
// No further tokens are read and no other validation is performed.
func NoArgAbort(fn func()) FlagGrammar[bool] {
	if fn == nil {
		specBug("NoArgAbort needs a termination callback")
	}
	return FlagGrammar[bool]{
		arity:  arityNoArgAbort,
		abort:  fn,
		reduce: presenceReduce,
	}
}

// EscapeRest: recognizing the flag terminates all flag and positional
// recognition and binds the remaining argv verbatim, in order. Absent yields
// nil. Conventionally named "--".
func EscapeRest() FlagGrammar[[]string] {
	return FlagGrammar[[]string]{
		arity: arityEscape,
		reduce: func(name string, b *bindings) ([]string, error) {
			if b.escapedBy != name {
				return nil, nil
			}
			return b.escapeTail, nil
		},
	}
}

func presenceReduce(name string, b *bindings) (bool, error) {
	return len(b.flags[name]) > 0, nil
}

// normalizeFlagName dash-prefixes a name and rejects the ones the matcher
// cannot work with: a bare dash, underscores (use dashes), and empty names.
func normalizeFlagName(name string) string {
	if !strings.HasPrefix(name, "-") {
		name = "-" + name
	}
	if name == "-" {
		specBug("invalid flag name %q", name)
	}
	if strings.Contains(name, "_") {
		specBug("invalid flag name %q: use dashes, not underscores", name)
	}
	return name
}
