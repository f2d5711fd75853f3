package flagon

// Param is a typed specification of flags and positional arguments together
// with the decode from a matched invocation to a T. Params are built only
// through Pure, Map, Both, Flag, and Anon, and are immutable afterwards, so
// one Param may serve any number of concurrent parse or completion requests.
type Param[T any] struct {
	flags  map[string]*flagDef
	order  []string // flag declaration order, canonical names
	anon   []*anonComp
	decode func(*bindings) (T, error)
}

// anonComp is one positional component of a composed specification. Results
// are stored per component during matching and read back, keyed by identity,
// when the typed decode runs.
type anonComp struct {
	node        *anonNode
	matchDecode func(*tokenQueue) (any, error)
}

// bindings is the per-invocation record of what phase 1 classified: raw
// occurrences per canonical flag name (no-argument occurrences record an
// empty string), matched positional values per component, and the escape
// tail if an escape flag was recognized. Created fresh per parse attempt.
type bindings struct {
	flags      map[string][]string
	anonVals   map[*anonComp]any
	escapedBy  string
	escapeTail []string
}

func newBindings() *bindings {
	return &bindings{
		flags:    make(map[string][]string),
		anonVals: make(map[*anonComp]any),
	}
}

// Pure declares nothing and decodes to v.
func Pure[T any](v T) *Param[T] {
	return &Param[T]{decode: func(*bindings) (T, error) { return v, nil }}
}

// Map applies f to p's decoded result. Flags and positional grammar are
// unchanged.
func Map[A, B any](p *Param[A], f func(A) B) *Param[B] {
	dec := p.decode
	return &Param[B]{
		flags: p.flags,
		order: p.order,
		anon:  p.anon,
		decode: func(b *bindings) (B, error) {
			v, err := dec(b)
			if err != nil {
				var zero B
				return zero, err
			}
			return f(v), nil
		},
	}
}

// Both combines two specifications: the union of their flags, pa's positional
// grammar before pb's, and a paired decode. A flag name (or alias) declared
// on both sides is a specification bug and panics here, as is a positional
// grammar following an open-ended one.
func Both[A, B any](pa *Param[A], pb *Param[B]) *Param[Pair[A, B]] {
	flags := make(map[string]*flagDef, len(pa.flags)+len(pb.flags))
	order := make([]string, 0, len(pa.order)+len(pb.order))
	taken := make(map[string]bool)
	add := func(p map[string]*flagDef, names []string) {
		for _, name := range names {
			def := p[name]
			for _, n := range append([]string{def.name}, def.aliases...) {
				if taken[n] {
					specBug("flag name collision: %s declared twice", n)
				}
				taken[n] = true
			}
			flags[name] = def
			order = append(order, name)
		}
	}
	add(pa.flags, pa.order)
	add(pb.flags, pb.order)

	anon := make([]*anonComp, 0, len(pa.anon)+len(pb.anon))
	anon = append(anon, pa.anon...)
	anon = append(anon, pb.anon...)
	nodes := make([]*anonNode, len(anon))
	for i, c := range anon {
		nodes[i] = c.node
	}
	composeShape(nodes)

	da, db := pa.decode, pb.decode
	return &Param[Pair[A, B]]{
		flags: flags,
		order: order,
		anon:  anon,
		decode: func(b *bindings) (Pair[A, B], error) {
			var out Pair[A, B]
			av, err := da(b)
			if err != nil {
				return out, err
			}
			bv, err := db(b)
			if err != nil {
				return out, err
			}
			return Pair[A, B]{First: av, Second: bv}, nil
		},
	}
}

// Map2 combines two specifications through f.
func Map2[A, B, R any](pa *Param[A], pb *Param[B], f func(A, B) R) *Param[R] {
	return Map(Both(pa, pb), func(p Pair[A, B]) R {
		return f(p.First, p.Second)
	})
}

// Map3 combines three specifications through f.
func Map3[A, B, C, R any](pa *Param[A], pb *Param[B], pc *Param[C], f func(A, B, C) R) *Param[R] {
	return Map(Both(Both(pa, pb), pc), func(p Pair[Pair[A, B], C]) R {
		return f(p.First.First, p.First.Second, p.Second)
	})
}

// Map4 combines four specifications through f.
func Map4[A, B, C, D, R any](pa *Param[A], pb *Param[B], pc *Param[C], pd *Param[D], f func(A, B, C, D) R) *Param[R] {
	return Map(Both(Both(pa, pb), Both(pc, pd)), func(p Pair[Pair[A, B], Pair[C, D]]) R {
		return f(p.First.First, p.First.Second, p.Second.First, p.Second.Second)
	})
}

// Flag declares a single flag. The name is normalized to be dash-prefixed;
// aliases match during parsing but are not displayed in help.
func Flag[T any](name string, g FlagGrammar[T], doc string, aliases ...string) *Param[T] {
	canon := normalizeFlagName(name)
	normAliases := make([]string, 0, len(aliases))
	for _, a := range aliases {
		na := normalizeFlagName(a)
		if na == canon {
			specBug("flag name collision: %s declared twice", canon)
		}
		normAliases = append(normAliases, na)
	}
	def := &flagDef{
		name:    canon,
		aliases: normAliases,
		doc:     doc,
		arity:   g.arity,
		arg:     g.arg,
		publish: g.publish,
		abort:   g.abort,
	}
	reduce := g.reduce
	return &Param[T]{
		flags: map[string]*flagDef{canon: def},
		order: []string{canon},
		decode: func(b *bindings) (T, error) {
			return reduce(canon, b)
		},
	}
}

// Anon lifts a positional grammar into a specification with no flags.
func Anon[T any](g *AnonGrammar[T]) *Param[T] {
	comp := &anonComp{node: g.node}
	match := g.match
	comp.matchDecode = func(q *tokenQueue) (any, error) {
		return match(q)
	}
	return &Param[T]{
		anon: []*anonComp{comp},
		decode: func(b *bindings) (T, error) {
			return b.anonVals[comp].(T), nil
		},
	}
}

// paramSpec is the erased view of a Param that the parser, help, and
// completion engines share. It drops T; the typed decode stays behind in the
// command's run closure.
type paramSpec struct {
	flags map[string]*flagDef
	order []string
	anon  []*anonComp
}

func (p *Param[T]) spec() paramSpec {
	return paramSpec{flags: p.flags, order: p.order, anon: p.anon}
}
