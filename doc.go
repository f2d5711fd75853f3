// Package flagon is a composable command-line specification and parsing
// engine. A program declares flags, positional arguments, and a tree of
// subcommands once, as a typed specification, and receives back decoded
// values, generated help, TAB completion, and delegation to external
// executables.
//
// The building blocks compose bottom-up: an ArgType describes how one token
// decodes into a typed value; flag grammars (Required, Optional, Listed, ...)
// wrap an ArgType with a cardinality policy; anonymous grammars (Arg,
// Sequence, Maybe, Tuple2...) describe positional shapes; Pure, Map, and Both
// combine them into a single Param. A Command wraps a Param with a handler
// (Basic), routes to named children (Group), or hands off to an external
// executable (Exec).
//
// Parsing is strict and happens in full before any handler runs: if anything
// about the invocation is invalid, the handler is never invoked and a typed
// parse error is returned instead.
package flagon
