package flagon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// treeCompleter adapts the engine's completion queries to readline's
// AutoCompleter interface, so an interactive shell over a command tree gets
// the same TAB completion the bash hook would.
type treeCompleter struct {
	root *Command
}

func (t *treeCompleter) Do(line []rune, pos int) ([][]rune, int) {
	typed := string(line[:pos])
	words := strings.Fields(typed)
	if typed == "" || strings.HasSuffix(typed, " ") {
		words = append(words, "")
	}
	partial := words[len(words)-1]
	var out [][]rune
	for _, cand := range CompleteQuery(t.root, words) {
		if !strings.HasPrefix(cand, partial) {
			continue
		}
		out = append(out, []rune(cand[len(partial):]+" "))
	}
	return out, len([]rune(partial))
}

// Interactive runs a read-eval loop over a command tree: each line is split
// into words and dispatched as a fresh invocation, with errors reported but
// never fatal. The loop ends on EOF or an "exit"/"quit" line.
func Interactive(ctx context.Context, root *Command, prompt string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       prompt,
		AutoComplete: &treeCompleter{root: root},
	})
	if err != nil {
		return fmt.Errorf("starting interactive shell: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		if len(words) == 1 && (words[0] == "exit" || words[0] == "quit") {
			return nil
		}
		inv := root.Invoke(words...).WithContext(ctx)
		inv.Name = strings.TrimSpace(prompt)
		inv.Stdout = os.Stdout
		inv.Stderr = os.Stderr
		inv.Stdin = os.Stdin
		if err := inv.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
