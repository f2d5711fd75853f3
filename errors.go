package flagon

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError is implemented by every error produced while matching argv
// against a specification. When a ParseError is returned, the command's
// handler was never invoked. Errors raised inside a handler do not implement
// ParseError, which is how callers (and Main) tell a bad invocation apart
// from a program-level failure.
type ParseError interface {
	error
	parseError()
}

// IsParseError reports whether any error in err's chain is a ParseError.
func IsParseError(err error) bool {
	var pe ParseError
	return errors.As(err, &pe)
}

// UnrecognizedFlagError is returned for a dash-prefixed token that is neither
// a declared flag name nor a prefix of exactly one.
type UnrecognizedFlagError struct {
	Token string
}

func (e *UnrecognizedFlagError) Error() string {
	return fmt.Sprintf("unrecognized flag %q", e.Token)
}

func (*UnrecognizedFlagError) parseError() {}

// AmbiguousFlagError is returned when a token is a strict prefix of two or
// more declared flag names.
type AmbiguousFlagError struct {
	Token      string
	Candidates []string
}

func (e *AmbiguousFlagError) Error() string {
	return fmt.Sprintf("ambiguous flag %q: could be %s", e.Token, strings.Join(e.Candidates, ", "))
}

func (*AmbiguousFlagError) parseError() {}

// MissingFlagArgumentError is returned when argv ends right after a flag
// whose grammar requires an argument.
type MissingFlagArgumentError struct {
	Flag string
}

func (e *MissingFlagArgumentError) Error() string {
	return fmt.Sprintf("flag %s requires an argument", e.Flag)
}

func (*MissingFlagArgumentError) parseError() {}

// MissingRequiredFlagError is returned when a Required flag appears zero
// times, or a OneOrMore flag appears zero times.
type MissingRequiredFlagError struct {
	Flag string
}

func (e *MissingRequiredFlagError) Error() string {
	return fmt.Sprintf("missing required flag %s", e.Flag)
}

func (*MissingRequiredFlagError) parseError() {}

// DuplicateFlagError is returned when a flag limited to a single occurrence
// appears more than once.
type DuplicateFlagError struct {
	Flag  string
	Count int
}

func (e *DuplicateFlagError) Error() string {
	return fmt.Sprintf("flag %s given %d times, expected at most once", e.Flag, e.Count)
}

func (*DuplicateFlagError) parseError() {}

// MissingAnonArgumentError is returned when the leftover token queue runs dry
// while a positional slot still needs input.
type MissingAnonArgumentError struct {
	Name string
}

func (e *MissingAnonArgumentError) Error() string {
	return fmt.Sprintf("missing %s argument", e.Name)
}

func (*MissingAnonArgumentError) parseError() {}

// UnexpectedAnonArgumentError is returned when tokens remain after the full
// anonymous grammar has matched.
type UnexpectedAnonArgumentError struct {
	Token string
}

func (e *UnexpectedAnonArgumentError) Error() string {
	return fmt.Sprintf("unexpected argument %q", e.Token)
}

func (*UnexpectedAnonArgumentError) parseError() {}

// InvalidArgumentError wraps an ArgType decode failure with the flag or
// positional slot it was bound to and the raw text that failed.
type InvalidArgumentError struct {
	Name string
	Raw  string
	Err  error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Raw, e.Name, e.Err)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

func (*InvalidArgumentError) parseError() {}

// UnrecognizedSubcommandError is returned when group dispatch cannot resolve
// a token against any child name.
type UnrecognizedSubcommandError struct {
	Token string
	Path  []string
}

func (e *UnrecognizedSubcommandError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("unrecognized subcommand %q for %q", e.Token, strings.Join(e.Path, " "))
	}
	return fmt.Sprintf("unrecognized subcommand %q", e.Token)
}

func (*UnrecognizedSubcommandError) parseError() {}

// AmbiguousSubcommandError is returned when a token is a strict prefix of two
// or more sibling subcommand names.
type AmbiguousSubcommandError struct {
	Token      string
	Candidates []string
}

func (e *AmbiguousSubcommandError) Error() string {
	return fmt.Sprintf("ambiguous subcommand %q: could be %s", e.Token, strings.Join(e.Candidates, ", "))
}

func (*AmbiguousSubcommandError) parseError() {}

// Specification mistakes (colliding flag names, malformed anonymous
// grammars, bad flag names) are programmer bugs, not user input errors.
// They panic at construction time so a broken specification fails the
// instant the program starts.
func specBug(format string, args ...any) {
	panic("flagon: " + fmt.Sprintf(format, args...))
}
