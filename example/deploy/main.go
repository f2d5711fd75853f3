package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/flagon-cli/flagon"
)

type releaseSpec struct {
	Service  string            `yaml:"service"`
	Image    string            `yaml:"image"`
	Replicas int               `yaml:"replicas"`
	Env      map[string]string `yaml:"env"`
}

// releaseFile decodes a positional token by loading and parsing the YAML
// release file it names.
func releaseFile() flagon.ArgType[*releaseSpec] {
	return flagon.NewArgType("release.yaml", func(path string) (*releaseSpec, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var spec releaseSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("parsing release file: %w", err)
		}
		if spec.Service == "" {
			return nil, fmt.Errorf("release file names no service")
		}
		return &spec, nil
	})
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	apply := flagon.Basic("Apply a release to an environment.",
		flagon.Map3(
			flagon.Flag("env", flagon.Required(flagon.Enum("dev", "staging", "prod")), "target environment"),
			flagon.Flag("timeout", flagon.OptionalDefault(flagon.Duration(), 5*time.Minute), "rollout deadline"),
			flagon.Anon(flagon.Arg("release", releaseFile())),
			func(env string, timeout time.Duration, rel *releaseSpec) applyArgs {
				return applyArgs{env: env, timeout: timeout, rel: rel}
			},
		),
		func(ctx context.Context, inv *flagon.Invocation, a applyArgs) error {
			logger.Info("applying release",
				"service", a.rel.Service,
				"image", a.rel.Image,
				"replicas", a.rel.Replicas,
				"env", a.env,
				"timeout", a.timeout)
			for k, v := range a.rel.Env {
				logger.Debug("setting variable", "key", k, "value", v)
			}
			fmt.Fprintf(inv.Stdout, "%s deployed to %s\n", a.rel.Service, a.env)
			return nil
		})

	lint := flagon.Basic("Check release files without deploying.",
		flagon.Anon(flagon.NonEmptySequence(flagon.Arg("release", releaseFile()))),
		func(ctx context.Context, inv *flagon.Invocation, rels []*releaseSpec) error {
			for _, rel := range rels {
				logger.Info("release ok", "service", rel.Service)
			}
			return nil
		})

	root := flagon.Group("Deploy services from release files.",
		flagon.Child{Name: "apply", Cmd: apply},
		flagon.Child{Name: "lint", Cmd: lint},
	)

	flagon.Main(root)
}

type applyArgs struct {
	env     string
	timeout time.Duration
	rel     *releaseSpec
}
