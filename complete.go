package flagon

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// CompleteQuery answers a TAB-completion query against a command tree. The
// words are everything typed after the program name, with the in-progress
// partial token last (an empty string when the cursor follows a space).
// Candidates come back in preference order.
//
// The walk mirrors real dispatch: group children resolve by exact or
// unambiguous-prefix match. At a Basic command, every complete preceding
// token is decoded best-effort (failures ignored) to populate a
// CompleteContext before the slot under the cursor is asked for candidates.
func CompleteQuery(root *Command, words []string) []string {
	if len(words) == 0 {
		words = []string{""}
	}
	return completeNode(root, words)
}

func completeNode(c *Command, words []string) []string {
	partial := words[len(words)-1]
	switch c.kind {
	case kindGroup:
		if len(words) == 1 {
			var names []string
			for _, ch := range c.children {
				if strings.HasPrefix(ch.name, partial) {
					names = append(names, ch.name)
				}
			}
			return names
		}
		child, _, err := c.resolveChild(words[0], nil)
		if err != nil {
			return nil
		}
		return completeNode(child, words[1:])

	case kindExec:
		target, err := c.target.resolvePath()
		if err != nil {
			return nil
		}
		return delegateComplete(target, words)

	case kindBasic:
		return completeBasic(c.spec, words[:len(words)-1], partial)
	}
	return nil
}

// delegateComplete forwards the remaining completion query to an external
// executable over the reserved query channel. A target that does not answer
// the protocol yields no candidates.
func delegateComplete(target string, words []string) []string {
	cmd := exec.Command(target, words...)
	cmd.Env = append(os.Environ(), EnvCompleteQuery+"=1")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil
	}
	var cands []string
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			cands = append(cands, line)
		}
	}
	return cands
}

func completeBasic(spec paramSpec, prior []string, partial string) []string {
	table := spec.names()
	cc := newCompleteContext()

	var anonCount int
	var pending *flagDef // previous token was a flag still owed an argument
	for i := 0; i < len(prior); i++ {
		tok := prior[i]
		if !isFlagToken(tok) {
			if at := spec.anonSlot(anonCount); at != nil {
				at.register(cc, tok)
			}
			anonCount++
			continue
		}
		def, err := table.resolve(tok)
		if err != nil {
			continue
		}
		switch {
		case def.arity == arityEscape:
			// Everything after the escape is verbatim; nothing completes.
			return nil
		case def.takesArg():
			if i+1 < len(prior) {
				i++
				def.arg.register(cc, prior[i])
			} else {
				pending = def
			}
		case def.publish != nil:
			def.publish(cc)
		}
	}

	if pending != nil {
		if pending.arg.complete == nil {
			return nil
		}
		return pending.arg.complete(cc, partial)
	}

	if strings.HasPrefix(partial, "-") {
		var names []string
		for _, name := range table.sorted {
			if strings.HasPrefix(name, partial) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return names
	}

	if at := spec.anonSlot(anonCount); at != nil && at.complete != nil {
		return at.complete(cc, partial)
	}
	return nil
}

// anonSlot returns the ArgType occupying the idx-th positional token, walking
// the fixed leading slots of each component and cycling the repeating tail of
// an open-ended one.
func (s paramSpec) anonSlot(idx int) *argTypeCore {
	for _, comp := range s.anon {
		fixed, tail := comp.node.flatten()
		if idx < len(fixed) {
			return fixed[idx]
		}
		idx -= len(fixed)
		if len(tail) > 0 {
			return tail[idx%len(tail)]
		}
	}
	return nil
}
