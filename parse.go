package flagon

import (
	"sort"
	"strings"
)

// nameTable maps every canonical flag name and alias to its definition, with
// a sorted name list for deterministic prefix resolution.
type nameTable struct {
	byName map[string]*flagDef
	sorted []string
}

func (s paramSpec) names() nameTable {
	t := nameTable{byName: make(map[string]*flagDef)}
	for _, name := range s.order {
		def := s.flags[name]
		t.byName[def.name] = def
		for _, a := range def.aliases {
			t.byName[a] = def
		}
	}
	t.sorted = make([]string, 0, len(t.byName))
	for name := range t.byName {
		t.sorted = append(t.sorted, name)
	}
	sort.Strings(t.sorted)
	return t
}

// resolve finds the flag a token refers to. An exact match wins outright;
// otherwise the token must be a strict prefix of names belonging to exactly
// one flag (a canonical name and its own alias sharing the prefix is not
// ambiguous).
func (t nameTable) resolve(tok string) (*flagDef, error) {
	if def, ok := t.byName[tok]; ok {
		return def, nil
	}
	var candidates []string
	defs := make(map[*flagDef]bool)
	for _, name := range t.sorted {
		if strings.HasPrefix(name, tok) {
			candidates = append(candidates, name)
			defs[t.byName[name]] = true
		}
	}
	switch {
	case len(defs) == 0:
		return nil, &UnrecognizedFlagError{Token: tok}
	case len(defs) > 1:
		return nil, &AmbiguousFlagError{Token: tok, Candidates: candidates}
	}
	return t.byName[candidates[0]], nil
}

// isFlagToken reports whether a token is classified as a flag reference: it
// starts with a dash and is not the single character "-".
func isFlagToken(tok string) bool {
	return strings.HasPrefix(tok, "-") && tok != "-"
}

// classify is phase 1: a single left-to-right pass splitting argv into flag
// occurrences and leftover positional tokens, resolving flag references as it
// goes. It reports aborted=true when a NoArgAbort flag fired.
func (s paramSpec) classify(args []string) (b *bindings, anonToks []string, aborted bool, err error) {
	b = newBindings()
	table := s.names()
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if !isFlagToken(tok) {
			anonToks = append(anonToks, tok)
			continue
		}
		def, rerr := table.resolve(tok)
		if rerr != nil {
			return nil, nil, false, rerr
		}
		switch {
		case def.arity == arityEscape:
			b.flags[def.name] = append(b.flags[def.name], "")
			b.escapedBy = def.name
			b.escapeTail = append([]string(nil), args[i+1:]...)
			return b, anonToks, false, nil
		case def.arity == arityNoArgAbort:
			def.abort()
			// The callback must not return; if it does, stop anyway.
			return b, nil, true, nil
		case def.takesArg():
			if i+1 >= len(args) {
				return nil, nil, false, &MissingFlagArgumentError{Flag: def.name}
			}
			i++
			b.flags[def.name] = append(b.flags[def.name], args[i])
		default:
			b.flags[def.name] = append(b.flags[def.name], "")
		}
	}
	return b, anonToks, false, nil
}

// matchBindings is phase 2: cardinality validation per flag, then
// deterministic matching of the positional grammar against the leftover
// queue. Positional values are decoded as they match; flag values decode in
// the typed reduction afterwards. Either way no handler runs until the whole
// invocation is valid.
func (s paramSpec) matchBindings(b *bindings, anonToks []string) error {
	for _, name := range s.order {
		def := s.flags[name]
		n := len(b.flags[name])
		switch def.arity {
		case arityRequired:
			if n == 0 {
				return &MissingRequiredFlagError{Flag: name}
			}
			if n > 1 {
				return &DuplicateFlagError{Flag: name, Count: n}
			}
		case arityOptional, arityOptionalDefault:
			if n > 1 {
				return &DuplicateFlagError{Flag: name, Count: n}
			}
		case arityOneOrMore:
			if n == 0 {
				return &MissingRequiredFlagError{Flag: name}
			}
		}
	}

	q := &tokenQueue{toks: anonToks}
	for _, comp := range s.anon {
		v, err := comp.matchDecode(q)
		if err != nil {
			return err
		}
		b.anonVals[comp] = v
	}
	if q.remaining() > 0 {
		return &UnexpectedAnonArgumentError{Token: q.peek()}
	}
	return nil
}

// parse runs both phases against one command's specification.
func (s paramSpec) parse(args []string) (b *bindings, aborted bool, err error) {
	b, anonToks, aborted, err := s.classify(args)
	if err != nil || aborted {
		return b, aborted, err
	}
	if err := s.matchBindings(b, anonToks); err != nil {
		return nil, false, err
	}
	return b, false, nil
}
