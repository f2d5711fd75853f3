package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/flagon-cli/flagon"
	"github.com/flagon-cli/flagon/cmds/completioncmd"
)

// toolbox is a front-end that delegates its "worker" subcommand to a sibling
// binary (build example/toolbox-worker next to it). Help and completion for
// the delegated subtree are resolved by querying that binary over the
// reserved shape and completion channels.

var root *flagon.Command

func main() {
	version := flagon.Flag("version",
		flagon.NoArgAbort(func() {
			fmt.Println("toolbox 1.0.0")
			os.Exit(0)
		}),
		"print the version and exit")

	status := flagon.Basic("Show toolbox status.",
		flagon.Map2(version,
			flagon.Flag("verbose", flagon.NoArg(), "include details", "v"),
			func(_ bool, verbose bool) bool { return verbose },
		),
		func(ctx context.Context, inv *flagon.Invocation, verbose bool) error {
			fmt.Fprintln(inv.Stdout, "ok")
			if verbose {
				fmt.Fprintln(inv.Stdout, "all subsystems nominal")
			}
			return nil
		})

	describe := flagon.Basic("Print the shape of the whole tree as JSON.",
		flagon.Pure(struct{}{}),
		func(ctx context.Context, inv *flagon.Invocation, _ struct{}) error {
			shape, err := flagon.ShapeOf(root).Load()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(inv.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(shape)
		})

	root = flagon.Group("A toolbox with a delegated worker.",
		flagon.Child{Name: "status", Cmd: status},
		flagon.Child{Name: "describe", Cmd: describe},
		flagon.Child{Name: "worker", Cmd: flagon.Exec("Run worker operations.", flagon.RelativeToSelf("toolbox-worker"))},
		flagon.Child{Name: "completion", Cmd: completioncmd.Command("toolbox")},
	)

	flagon.Main(root)
}
