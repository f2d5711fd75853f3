package flagon

import "strings"

// anonShape is the static arity of an anonymous grammar: either exactly
// fixed tokens, or an unbounded number.
type anonShape struct {
	fixed    int
	variadic bool
}

type anonKind int

const (
	anonAtom anonKind = iota
	anonSequence
	anonNonEmpty
	anonMaybe
	anonTuple
)

// anonNode is the erased structural form of a grammar, used for arity
// checks, help rendering, and completion slot lookup. The typed matching
// closure lives in AnonGrammar.
type anonNode struct {
	kind  anonKind
	name  string       // atom display name
	arg   *argTypeCore // atom only
	kids  []*anonNode
	shape anonShape
}

// displayName returns the leftmost atom name, for "missing argument" errors
// raised by wrappers that have no name of their own.
func (n *anonNode) displayName() string {
	if n.kind == anonAtom {
		return n.name
	}
	for _, k := range n.kids {
		if name := k.displayName(); name != "" {
			return name
		}
	}
	return "argument"
}

// usage renders the grammar for help text: FILE, [FILE], FILE..., [FILE...].
func (n *anonNode) usage() string {
	switch n.kind {
	case anonAtom:
		return strings.ToUpper(n.name)
	case anonSequence:
		return "[" + n.kids[0].usage() + "...]"
	case anonNonEmpty:
		return n.kids[0].usage() + "..."
	case anonMaybe:
		return "[" + n.kids[0].usage() + "]"
	case anonTuple:
		parts := make([]string, len(n.kids))
		for i, k := range n.kids {
			parts[i] = k.usage()
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// composeShape computes the shape of a left-to-right composition and enforces
// the construction-time invariant: at most one variadic sub-grammar, and
// nothing may follow it.
func composeShape(kids []*anonNode) anonShape {
	var shape anonShape
	for _, k := range kids {
		if shape.variadic {
			specBug("invalid anonymous grammar: %s follows an open-ended grammar", k.usage())
		}
		if k.shape.variadic {
			shape.variadic = true
		} else {
			shape.fixed += k.shape.fixed
		}
	}
	return shape
}

// flatten reduces a grammar to the leading fixed argument slots plus an
// optional repeating tail, which is all completion needs to find the ArgType
// for the k-th positional token. Maybe slots are treated as present.
func (n *anonNode) flatten() (fixed []*argTypeCore, tail []*argTypeCore) {
	switch n.kind {
	case anonAtom:
		return []*argTypeCore{n.arg}, nil
	case anonSequence, anonNonEmpty:
		inner, innerTail := n.kids[0].flatten()
		if innerTail != nil {
			return nil, innerTail
		}
		return nil, inner
	case anonMaybe:
		return n.kids[0].flatten()
	case anonTuple:
		for _, k := range n.kids {
			kf, kt := k.flatten()
			fixed = append(fixed, kf...)
			if kt != nil {
				return fixed, kt
			}
		}
		return fixed, nil
	}
	return nil, nil
}

// tokenQueue is the leftover (anonymous) token queue a grammar matches
// against, consumed strictly left to right.
type tokenQueue struct {
	toks []string
	pos  int
}

func (q *tokenQueue) remaining() int { return len(q.toks) - q.pos }

func (q *tokenQueue) peek() string { return q.toks[q.pos] }

func (q *tokenQueue) next() string {
	t := q.toks[q.pos]
	q.pos++
	return t
}

// AnonGrammar describes the shape of zero or more positional arguments and
// how they decode into a T. Grammars are built once and immutable.
type AnonGrammar[T any] struct {
	node  *anonNode
	match func(*tokenQueue) (T, error)
}

// Arg is a single named positional slot decoded by at.
func Arg[T any](name string, at ArgType[T]) *AnonGrammar[T] {
	if name == "" {
		specBug("anonymous argument needs a display name")
	}
	dec := at.decode
	node := &anonNode{kind: anonAtom, name: name, arg: at.core(), shape: anonShape{fixed: 1}}
	return &AnonGrammar[T]{
		node: node,
		match: func(q *tokenQueue) (T, error) {
			var zero T
			if q.remaining() == 0 {
				return zero, &MissingAnonArgumentError{Name: name}
			}
			raw := q.next()
			v, err := dec(raw)
			if err != nil {
				return zero, &InvalidArgumentError{Name: name, Raw: raw, Err: err}
			}
			return v, nil
		},
	}
}

// Sequence matches g against every remaining token, possibly zero times.
// Nothing may follow a Sequence in a composition.
func Sequence[T any](g *AnonGrammar[T]) *AnonGrammar[[]T] {
	node := &anonNode{kind: anonSequence, kids: []*anonNode{g.node}, shape: anonShape{variadic: true}}
	inner := g.match
	return &AnonGrammar[[]T]{
		node: node,
		match: func(q *tokenQueue) ([]T, error) {
			var out []T
			for q.remaining() > 0 {
				v, err := inner(q)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
	}
}

// NonEmptySequence is Sequence that fails if no tokens remain at all.
func NonEmptySequence[T any](g *AnonGrammar[T]) *AnonGrammar[[]T] {
	node := &anonNode{kind: anonNonEmpty, kids: []*anonNode{g.node}, shape: anonShape{variadic: true}}
	inner := g.match
	name := g.node.displayName()
	return &AnonGrammar[[]T]{
		node: node,
		match: func(q *tokenQueue) ([]T, error) {
			if q.remaining() == 0 {
				return nil, &MissingAnonArgumentError{Name: name}
			}
			var out []T
			for q.remaining() > 0 {
				v, err := inner(q)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
	}
}

// Maybe matches g if enough tokens remain for its full fixed arity, and
// yields nil otherwise. The inner grammar must have a fixed arity.
func Maybe[T any](g *AnonGrammar[T]) *AnonGrammar[*T] {
	need := maybeInnerArity(g.node)
	node := &anonNode{kind: anonMaybe, kids: []*anonNode{g.node}, shape: anonShape{variadic: true}}
	inner := g.match
	return &AnonGrammar[*T]{
		node: node,
		match: func(q *tokenQueue) (*T, error) {
			if q.remaining() < need {
				return nil, nil
			}
			v, err := inner(q)
			if err != nil {
				return nil, err
			}
			return &v, nil
		},
	}
}

// MaybeDefault is Maybe with a default instead of nil for the absent case.
func MaybeDefault[T any](def T, g *AnonGrammar[T]) *AnonGrammar[T] {
	need := maybeInnerArity(g.node)
	node := &anonNode{kind: anonMaybe, kids: []*anonNode{g.node}, shape: anonShape{variadic: true}}
	inner := g.match
	return &AnonGrammar[T]{
		node: node,
		match: func(q *tokenQueue) (T, error) {
			if q.remaining() < need {
				return def, nil
			}
			return inner(q)
		},
	}
}

func maybeInnerArity(n *anonNode) int {
	if n.shape.variadic {
		specBug("invalid anonymous grammar: Maybe requires a fixed-arity grammar, got %s", n.usage())
	}
	return n.shape.fixed
}

// Pair is the result of combining two specifications.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the result of a three-way tuple grammar.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Quad is the result of a four-way tuple grammar.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// Tuple2 matches a then b, left to right.
func Tuple2[A, B any](a *AnonGrammar[A], b *AnonGrammar[B]) *AnonGrammar[Pair[A, B]] {
	kids := []*anonNode{a.node, b.node}
	node := &anonNode{kind: anonTuple, kids: kids, shape: composeShape(kids)}
	ma, mb := a.match, b.match
	return &AnonGrammar[Pair[A, B]]{
		node: node,
		match: func(q *tokenQueue) (Pair[A, B], error) {
			var out Pair[A, B]
			av, err := ma(q)
			if err != nil {
				return out, err
			}
			bv, err := mb(q)
			if err != nil {
				return out, err
			}
			return Pair[A, B]{First: av, Second: bv}, nil
		},
	}
}

// Tuple3 matches a, b, then c.
func Tuple3[A, B, C any](a *AnonGrammar[A], b *AnonGrammar[B], c *AnonGrammar[C]) *AnonGrammar[Triple[A, B, C]] {
	kids := []*anonNode{a.node, b.node, c.node}
	node := &anonNode{kind: anonTuple, kids: kids, shape: composeShape(kids)}
	ma, mb, mc := a.match, b.match, c.match
	return &AnonGrammar[Triple[A, B, C]]{
		node: node,
		match: func(q *tokenQueue) (Triple[A, B, C], error) {
			var out Triple[A, B, C]
			av, err := ma(q)
			if err != nil {
				return out, err
			}
			bv, err := mb(q)
			if err != nil {
				return out, err
			}
			cv, err := mc(q)
			if err != nil {
				return out, err
			}
			return Triple[A, B, C]{First: av, Second: bv, Third: cv}, nil
		},
	}
}

// Tuple4 matches a, b, c, then d.
func Tuple4[A, B, C, D any](a *AnonGrammar[A], b *AnonGrammar[B], c *AnonGrammar[C], d *AnonGrammar[D]) *AnonGrammar[Quad[A, B, C, D]] {
	kids := []*anonNode{a.node, b.node, c.node, d.node}
	node := &anonNode{kind: anonTuple, kids: kids, shape: composeShape(kids)}
	ma, mb, mc, md := a.match, b.match, c.match, d.match
	return &AnonGrammar[Quad[A, B, C, D]]{
		node: node,
		match: func(q *tokenQueue) (Quad[A, B, C, D], error) {
			var out Quad[A, B, C, D]
			av, err := ma(q)
			if err != nil {
				return out, err
			}
			bv, err := mb(q)
			if err != nil {
				return out, err
			}
			cv, err := mc(q)
			if err != nil {
				return out, err
			}
			dv, err := md(q)
			if err != nil {
				return out, err
			}
			return Quad[A, B, C, D]{First: av, Second: bv, Third: cv, Fourth: dv}, nil
		},
	}
}
