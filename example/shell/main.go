package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/flagon-cli/flagon"
)

// An interactive shell over a command tree. TAB completes subcommands, flags,
// and argument values through the same engine the bash hook uses.
func main() {
	store := map[string]string{}

	set := flagon.Basic("Set a key.",
		flagon.Anon(flagon.Tuple2(
			flagon.Arg("key", flagon.String()),
			flagon.Arg("value", flagon.String()),
		)),
		func(ctx context.Context, inv *flagon.Invocation, kv flagon.Pair[string, string]) error {
			store[kv.First] = kv.Second
			return nil
		})

	get := flagon.Basic("Print a key.",
		flagon.Anon(flagon.Arg("key", flagon.NewArgType("key", func(s string) (string, error) {
			return s, nil
		}).WithComplete(func(_ *flagon.CompleteContext, partial string) []string {
			var out []string
			for k := range store {
				if strings.HasPrefix(k, partial) {
					out = append(out, k)
				}
			}
			return out
		}))),
		func(ctx context.Context, inv *flagon.Invocation, key string) error {
			v, ok := store[key]
			if !ok {
				return fmt.Errorf("no such key %q", key)
			}
			_, err := fmt.Fprintln(inv.Stdout, v)
			return err
		})

	list := flagon.Basic("List all keys.", flagon.Pure(struct{}{}),
		func(ctx context.Context, inv *flagon.Invocation, _ struct{}) error {
			for k, v := range store {
				fmt.Fprintf(inv.Stdout, "%s=%s\n", k, v)
			}
			return nil
		})

	root := flagon.Group("An in-memory key-value store.",
		flagon.Child{Name: "set", Cmd: set},
		flagon.Child{Name: "get", Cmd: get},
		flagon.Child{Name: "list", Cmd: list},
	)

	if err := flagon.Interactive(context.Background(), root, "kv> "); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
