package main

import (
	"context"
	"fmt"

	"github.com/flagon-cli/flagon"
)

func main() {
	add := flagon.Basic("Sum the given numbers.",
		flagon.Anon(flagon.NonEmptySequence(flagon.Arg("n", flagon.Float64()))),
		func(ctx context.Context, inv *flagon.Invocation, ns []float64) error {
			var sum float64
			for _, n := range ns {
				sum += n
			}
			_, err := fmt.Fprintln(inv.Stdout, sum)
			return err
		})

	div := flagon.Basic("Divide one number by another.",
		flagon.Anon(flagon.Tuple2(
			flagon.Arg("dividend", flagon.Float64()),
			flagon.Arg("divisor", flagon.Float64()),
		)),
		func(ctx context.Context, inv *flagon.Invocation, p flagon.Pair[float64, float64]) error {
			if p.Second == 0 {
				return fmt.Errorf("division by zero")
			}
			_, err := fmt.Fprintln(inv.Stdout, p.First/p.Second)
			return err
		})

	// The digit count is optional and defaults to whole-number rounding.
	round := flagon.Basic("Round a number.",
		flagon.Anon(flagon.Tuple2(
			flagon.Arg("n", flagon.Float64()),
			flagon.MaybeDefault(0, flagon.Arg("digits", flagon.Int())),
		)),
		func(ctx context.Context, inv *flagon.Invocation, p flagon.Pair[float64, int]) error {
			_, err := fmt.Fprintf(inv.Stdout, "%.*f\n", p.Second, p.First)
			return err
		})

	root := flagon.Group("A tiny calculator.",
		flagon.Child{Name: "add", Cmd: add},
		flagon.Child{Name: "div", Cmd: div},
		flagon.Child{Name: "round", Cmd: round},
	)

	flagon.Main(root)
}
