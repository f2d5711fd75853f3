package flagon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Reserved out-of-band query channels. Any binary built on this package
// answers them before normal dispatch, which is what makes recursive help and
// completion work across Exec boundaries.
const (
	// EnvShapeQuery makes the binary emit its JSON-serialized shape and exit.
	EnvShapeQuery = "FLAGON_SHAPE"
	// EnvCompleteQuery makes the binary treat argv as a completion query
	// (the cursor word last) and print one candidate per line.
	EnvCompleteQuery = "FLAGON_COMPLETE"
)

type commandKind int

const (
	kindBasic commandKind = iota
	kindGroup
	kindExec
)

// Command is one node of a command tree: a Basic leaf with a specification
// and a handler, a Group routing to named children, or an Exec hand-off to an
// external executable. Commands are built once at startup and immutable
// afterwards, so one tree may serve concurrent parse and completion requests.
type Command struct {
	summary string
	readme  string

	kind commandKind

	// basic
	spec paramSpec
	run  func(context.Context, *Invocation, *bindings) error

	// group
	children []childEntry
	body     func(context.Context, *Invocation) error

	// exec
	target ExecTarget
}

type childEntry struct {
	name string
	cmd  *Command
}

// Child names a subcommand inside a Group.
type Child struct {
	Name string
	Cmd  *Command
}

// Summary returns the one-line description of the command.
func (c *Command) Summary() string { return c.summary }

// Readme returns the long-form description, if any.
func (c *Command) Readme() string { return c.readme }

// WithReadme attaches a long-form description shown on the help page.
func (c *Command) WithReadme(readme string) *Command {
	c2 := *c
	c2.readme = readme
	return &c2
}

// Basic builds a leaf command. The handler receives the fully decoded value
// of the specification and is never invoked if any part of the invocation
// failed to parse.
func Basic[T any](summary string, p *Param[T], handler func(ctx context.Context, inv *Invocation, v T) error) *Command {
	if handler == nil {
		specBug("Basic command %q has no handler", summary)
	}
	dec := p.decode
	return &Command{
		summary: summary,
		kind:    kindBasic,
		spec:    p.spec(),
		run: func(ctx context.Context, inv *Invocation, b *bindings) error {
			v, err := dec(b)
			if err != nil {
				return err
			}
			return handler(ctx, inv, v)
		},
	}
}

// Group builds a routing command whose children are displayed and
// introspected in sorted name order.
func Group(summary string, children ...Child) *Command {
	sorted := append([]Child(nil), children...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return newGroup(summary, sorted)
}

// OrderedGroup is Group with the declaration order of children preserved.
func OrderedGroup(summary string, children ...Child) *Command {
	return newGroup(summary, children)
}

func newGroup(summary string, children []Child) *Command {
	entries := make([]childEntry, 0, len(children))
	seen := make(map[string]bool)
	for _, ch := range children {
		if ch.Name == "" || strings.ContainsAny(ch.Name, " \t") {
			specBug("invalid subcommand name %q", ch.Name)
		}
		if seen[ch.Name] {
			specBug("duplicate subcommand name %q", ch.Name)
		}
		if ch.Cmd == nil {
			specBug("subcommand %q has no command", ch.Name)
		}
		seen[ch.Name] = true
		entries = append(entries, childEntry{name: ch.Name, cmd: ch.Cmd})
	}
	return &Command{summary: summary, kind: kindGroup, children: entries}
}

// WithBody attaches a callback run when the group is invoked with no
// subcommand at all; without one, a bare group prints its help and succeeds.
func (c *Command) WithBody(fn func(ctx context.Context, inv *Invocation) error) *Command {
	if c.kind != kindGroup {
		specBug("WithBody on a non-group command")
	}
	c2 := *c
	c2.body = fn
	return &c2
}

// ExecTarget locates the external executable an Exec command delegates to.
type ExecTarget struct {
	path     string
	relative bool
}

// AbsolutePath targets an executable by its path as given.
func AbsolutePath(path string) ExecTarget {
	return ExecTarget{path: path}
}

// RelativeToSelf targets an executable relative to the directory containing
// the currently running binary.
func RelativeToSelf(path string) ExecTarget {
	return ExecTarget{path: path, relative: true}
}

func (t ExecTarget) resolvePath() (string, error) {
	if !t.relative {
		return t.path, nil
	}
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(self), t.path), nil
}

// Exec builds a command that hands the entire remaining argument list to an
// external executable, inheriting stdio and exit status. The engine does not
// parse or validate those arguments itself.
func Exec(summary string, target ExecTarget) *Command {
	return &Command{summary: summary, kind: kindExec, target: target}
}

// Invocation is one execution of a command tree against an argument list,
// carrying the stdio streams and the resolved command path. Invoke discards
// output, which is what tests want; WithOS fills in the process defaults for
// mains.
type Invocation struct {
	ctx     context.Context
	Command *Command

	// Name is the program name shown in usage and help, normally argv[0].
	Name string

	// Args is the raw argument list, excluding the program name.
	Args []string

	// Path is the canonical command path resolved so far, starting with
	// Name. Populated during dispatch; handlers may read it.
	Path []string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// Invoke creates a new invocation of the command with stdio discarded.
// It is not live until Run is called.
func (c *Command) Invoke(args ...string) *Invocation {
	return &Invocation{
		Command: c,
		Args:    args,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
		Stdin:   strings.NewReader(""),
	}
}

// WithOS fills the invocation's fields with OS defaults, for use from a main
// package.
func (inv *Invocation) WithOS() *Invocation {
	return inv.with(func(i *Invocation) {
		i.Name = filepath.Base(os.Args[0])
		i.Args = os.Args[1:]
		i.Stdout = os.Stdout
		i.Stderr = os.Stderr
		i.Stdin = os.Stdin
	})
}

// WithName sets the program name used in usage and help text.
func (inv *Invocation) WithName(name string) *Invocation {
	return inv.with(func(i *Invocation) { i.Name = name })
}

// WithContext returns a copy of the invocation with the given context.
func (inv *Invocation) WithContext(ctx context.Context) *Invocation {
	return inv.with(func(i *Invocation) { i.ctx = ctx })
}

// Context returns the invocation's context, defaulting to Background.
func (inv *Invocation) Context() context.Context {
	if inv.ctx == nil {
		return context.Background()
	}
	return inv.ctx
}

func (inv *Invocation) with(fn func(*Invocation)) *Invocation {
	i2 := *inv
	fn(&i2)
	return &i2
}

// usageError tags a parse-phase error with the command it occurred at, so the
// front door can print that command's usage next to the message.
type usageError struct {
	err  error
	cmd  *Command
	path []string
}

func (u *usageError) Error() string { return u.err.Error() }

func (u *usageError) Unwrap() error { return u.err }

// Run executes the invocation: it answers the reserved shape and completion
// queries if present in the environment, then dispatches the command tree.
func (inv *Invocation) Run() error {
	if os.Getenv(EnvShapeQuery) != "" {
		return writeShape(inv.Stdout, inv.Command)
	}
	if os.Getenv(EnvCompleteQuery) != "" {
		for _, cand := range CompleteQuery(inv.Command, inv.Args) {
			fmt.Fprintln(inv.Stdout, cand)
		}
		return nil
	}
	path := []string{inv.Name}
	if inv.Name == "" {
		path = nil
	}
	return inv.dispatch(inv.Context(), inv.Command, inv.Args, path)
}

func (inv *Invocation) dispatch(ctx context.Context, c *Command, args []string, path []string) error {
	switch c.kind {
	case kindBasic:
		b, aborted, err := c.spec.parse(args)
		if err != nil {
			return &usageError{err: err, cmd: c, path: path}
		}
		if aborted {
			return nil
		}
		sub := inv.with(func(i *Invocation) { i.Path = path })
		if err := c.run(ctx, sub, b); err != nil {
			// Typed flag reduction happens inside run; its failures are
			// still pre-handler parse failures.
			if IsParseError(err) {
				return &usageError{err: err, cmd: c, path: path}
			}
			return err
		}
		return nil

	case kindGroup:
		if len(args) == 0 {
			sub := inv.with(func(i *Invocation) { i.Path = path })
			if c.body != nil {
				return c.body(ctx, sub)
			}
			return writeHelp(inv.Stdout, c, path)
		}
		child, name, err := c.resolveChild(args[0], path)
		if err != nil {
			return &usageError{err: err, cmd: c, path: path}
		}
		return inv.dispatch(ctx, child, args[1:], append(path, name))

	case kindExec:
		target, err := c.target.resolvePath()
		if err != nil {
			return err
		}
		cmd := exec.CommandContext(ctx, target, args...)
		cmd.Stdin = inv.Stdin
		cmd.Stdout = inv.Stdout
		cmd.Stderr = inv.Stderr
		return cmd.Run()
	}
	return fmt.Errorf("unknown command kind %d", c.kind)
}

// resolveChild applies unambiguous-prefix resolution to a subcommand token
// and returns the canonical, not abbreviated, child name.
func (c *Command) resolveChild(tok string, path []string) (*Command, string, error) {
	var prefixed []childEntry
	for i := range c.children {
		ch := &c.children[i]
		if ch.name == tok {
			return ch.cmd, ch.name, nil
		}
		if strings.HasPrefix(ch.name, tok) {
			prefixed = append(prefixed, *ch)
		}
	}
	switch len(prefixed) {
	case 1:
		return prefixed[0].cmd, prefixed[0].name, nil
	case 0:
		return nil, "", &UnrecognizedSubcommandError{Token: tok, Path: path}
	}
	names := make([]string, len(prefixed))
	for i, ch := range prefixed {
		names[i] = ch.name
	}
	sort.Strings(names)
	return nil, "", &AmbiguousSubcommandError{Token: tok, Candidates: names}
}

// Main is the process front door: it runs the root command against os.Args
// and exits with the documented status codes. Parse-phase failures print the
// failing command's usage and exit 2; handler failures exit 1 without usage
// text; an Exec delegation propagates the external exit status.
func Main(root *Command) {
	inv := root.Invoke().WithOS()
	err := inv.Run()
	if err == nil {
		return
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		_ = writeHelp(os.Stderr, ue.cmd, ue.path)
		os.Exit(2)
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		os.Exit(ee.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
