package main

import (
	"context"
	"fmt"

	"github.com/flagon-cli/flagon"
)

// toolbox-worker is the binary the toolbox example delegates to. Run through
// toolbox it still answers shape and completion queries, so "toolbox worker
// <TAB>" completes against this tree.
func main() {
	run := flagon.Basic("Run a job.",
		flagon.Map2(
			flagon.Flag("priority", flagon.OptionalDefault(flagon.Enum("low", "normal", "high"), "normal"), "job priority"),
			flagon.Anon(flagon.Arg("job", flagon.String())),
			func(prio, job string) [2]string { return [2]string{prio, job} },
		),
		func(ctx context.Context, inv *flagon.Invocation, v [2]string) error {
			_, err := fmt.Fprintf(inv.Stdout, "running %s at %s priority\n", v[1], v[0])
			return err
		})

	drain := flagon.Basic("Stop accepting jobs.", flagon.Pure(struct{}{}),
		func(ctx context.Context, inv *flagon.Invocation, _ struct{}) error {
			_, err := fmt.Fprintln(inv.Stdout, "draining")
			return err
		})

	root := flagon.Group("Worker operations.",
		flagon.Child{Name: "run", Cmd: run},
		flagon.Child{Name: "drain", Cmd: drain},
	)

	flagon.Main(root)
}
