package flagon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Shape kinds, as serialized over the query protocol.
const (
	ShapeBasic = "basic"
	ShapeGroup = "group"
	ShapeExec  = "exec"
)

// Shape is the introspectable structure of a command tree, used by help and
// completion independently of execution. It is derived, never stored: group
// shapes are computed from the tree, and exec shapes are computed lazily by
// invoking the external executable with the reserved shape query. No cycle
// detection is performed; an exec chain that refers back into its own tree
// makes recursive shape walks recurse without bound, even though ordinary
// invocation of that node terminates (it delegates instead of recursing).
type Shape struct {
	Kind     string       `json:"kind"`
	Summary  string       `json:"summary,omitempty"`
	Children []NamedShape `json:"children,omitempty"`
	Target   string       `json:"target,omitempty"` // exec: resolved path

	load func() (*Shape, error)
}

// NamedShape pairs a subcommand name with its shape.
type NamedShape struct {
	Name  string `json:"name"`
	Shape *Shape `json:"shape"`
}

// ShapeOf computes the shape of a command tree. Exec nodes resolve their
// target path eagerly but defer the external query until Load is called.
func ShapeOf(c *Command) *Shape {
	switch c.kind {
	case kindBasic:
		return &Shape{Kind: ShapeBasic, Summary: c.summary}
	case kindGroup:
		s := &Shape{Kind: ShapeGroup, Summary: c.summary}
		for _, ch := range c.children {
			s.Children = append(s.Children, NamedShape{Name: ch.name, Shape: ShapeOf(ch.cmd)})
		}
		return s
	case kindExec:
		s := &Shape{Kind: ShapeExec, Summary: c.summary}
		target, err := c.target.resolvePath()
		if err == nil {
			s.Target = target
		}
		s.load = func() (*Shape, error) {
			if err != nil {
				return nil, err
			}
			return queryShape(target)
		}
		return s
	}
	return nil
}

// Load resolves an exec shape by invoking its target with the reserved shape
// query and parsing the self-description it emits. Non-exec shapes load to
// themselves. There is no timeout: a hung target hangs the query.
func (s *Shape) Load() (*Shape, error) {
	if s.Kind != ShapeExec {
		return s, nil
	}
	if s.load == nil {
		// A shape that arrived over the wire still knows its target.
		return queryShape(s.Target)
	}
	return s.load()
}

// writeShape serializes the shape of a command tree, answering the reserved
// FLAGON_SHAPE query.
func writeShape(w io.Writer, c *Command) error {
	enc := json.NewEncoder(w)
	return enc.Encode(ShapeOf(c))
}

// queryShape invokes an external executable with the shape query directive
// and parses its structured self-description. Any non-conforming response is
// an error; help rendering treats it as "shape unavailable" while completion
// propagates it.
func queryShape(target string) (*Shape, error) {
	cmd := exec.Command(target)
	cmd.Env = append(os.Environ(), EnvShapeQuery+"=1")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("shape query of %s: %w", target, err)
	}
	var s Shape
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		return nil, fmt.Errorf("shape query of %s: malformed response: %w", target, err)
	}
	if s.Kind != ShapeBasic && s.Kind != ShapeGroup && s.Kind != ShapeExec {
		return nil, fmt.Errorf("shape query of %s: unknown kind %q", target, s.Kind)
	}
	return &s, nil
}
