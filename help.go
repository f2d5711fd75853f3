package flagon

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mitchellh/go-wordwrap"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// FlagHelp describes one declared flag for help rendering.
type FlagHelp struct {
	Name       string
	Aliases    []string
	Arg        string // arg type display name, empty for switches
	Doc        string
	Required   bool
	Repeatable bool
}

// SubcommandHelp describes one group child for help rendering.
type SubcommandHelp struct {
	Name    string
	Summary string
}

// CommandHelp is the structured help data for one command. Rendering to a
// terminal is a pure function of this value, so the same data can back other
// frontends (or tests) without scraping text.
type CommandHelp struct {
	Path        []string
	Summary     string
	Readme      string
	Usage       string
	Flags       []FlagHelp
	Subcommands []SubcommandHelp
}

// HelpOf derives the structured help for a command at a given path.
func HelpOf(c *Command, path []string) CommandHelp {
	h := CommandHelp{
		Path:    append([]string(nil), path...),
		Summary: c.summary,
		Readme:  c.readme,
	}
	switch c.kind {
	case kindBasic:
		parts := append([]string(nil), path...)
		if len(c.spec.order) > 0 {
			parts = append(parts, "[flags]")
		}
		for _, comp := range c.spec.anon {
			parts = append(parts, comp.node.usage())
		}
		h.Usage = strings.Join(parts, " ")
		for _, name := range c.spec.order {
			def := c.spec.flags[name]
			fh := FlagHelp{
				Name:       def.name,
				Aliases:    def.aliases,
				Doc:        def.doc,
				Required:   def.arity == arityRequired || def.arity == arityOneOrMore,
				Repeatable: def.repeatable(),
			}
			if def.arg != nil {
				fh.Arg = def.arg.name
			}
			h.Flags = append(h.Flags, fh)
		}
	case kindGroup:
		h.Usage = strings.Join(append(append([]string(nil), path...), "<subcommand>"), " ")
		for _, ch := range c.children {
			h.Subcommands = append(h.Subcommands, SubcommandHelp{Name: ch.name, Summary: ch.cmd.summary})
		}
	case kindExec:
		h.Usage = strings.Join(append(append([]string(nil), path...), "[args...]"), " ")
	}
	return h
}

func ttyWidth() int {
	width, _, err := term.GetSize(0)
	if err != nil {
		return 80
	}
	return width
}

// wrapTTY wraps a string to the width of the terminal, or 80 if no terminal
// is detected.
func wrapTTY(s string) string {
	return wordwrap.WrapString(s, uint(ttyWidth()))
}

var (
	helpColorProfile termenv.Profile
	helpColorOnce    sync.Once
)

func helpProfile() termenv.Profile {
	helpColorOnce.Do(func() {
		helpColorProfile = termenv.NewOutput(os.Stdout).ColorProfile()
		if flag.Lookup("test.v") != nil {
			// Use a consistent colorless profile in tests so that results
			// are deterministic.
			helpColorProfile = termenv.Ascii
		}
	})
	return helpColorProfile
}

func header(s string) string {
	p := helpProfile()
	return termenv.String(strings.ToUpper(s) + ":").Foreground(p.Color("#337CA0")).Bold().String()
}

func keyword(s string) string {
	p := helpProfile()
	return termenv.String(s).Foreground(p.Color("#04A777")).String()
}

// writeHelp renders a command's help page: usage line, descriptions, then a
// tab-aligned flag or subcommand listing.
func writeHelp(w io.Writer, c *Command, path []string) error {
	h := HelpOf(c, path)

	fmt.Fprintf(w, "%s\n  %s\n", header("usage"), h.Usage)
	if h.Summary != "" {
		fmt.Fprintf(w, "\n%s", wrapTTY(h.Summary))
		if !strings.HasSuffix(h.Summary, "\n") {
			fmt.Fprintln(w)
		}
	}
	if h.Readme != "" {
		fmt.Fprintf(w, "\n%s\n", wrapTTY(strings.TrimRight(h.Readme, "\n")))
	}

	if len(h.Subcommands) > 0 {
		fmt.Fprintf(w, "\n%s\n", header("subcommands"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, sub := range h.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", keyword(sub.Name), sub.Summary)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(h.Flags) > 0 {
		fmt.Fprintf(w, "\n%s\n", header("flags"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, fh := range h.Flags {
			names := fh.Name
			if len(fh.Aliases) > 0 {
				names += ", " + strings.Join(fh.Aliases, ", ")
			}
			sig := names
			if fh.Arg != "" {
				sig += " <" + fh.Arg + ">"
			}
			var notes []string
			if fh.Required {
				notes = append(notes, "required")
			}
			if fh.Repeatable {
				notes = append(notes, "repeatable")
			}
			doc := fh.Doc
			if len(notes) > 0 {
				doc = strings.TrimRight(doc, ".")
				if doc != "" {
					doc += " "
				}
				doc += "(" + strings.Join(notes, ", ") + ")"
			}
			fmt.Fprintf(tw, "  %s\t%s\n", keyword(sig), doc)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// WriteHelp renders the help page for a command as it would appear at the
// given path (normally the program name followed by subcommand names).
func WriteHelp(w io.Writer, c *Command, path ...string) error {
	return writeHelp(w, c, path)
}
