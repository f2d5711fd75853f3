// Package completioncmd provides a "completion" subcommand that prints the
// shell hook wiring TAB completion to a flagon binary's reserved query
// channel.
package completioncmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/flagon-cli/flagon"
)

var shells = []string{"bash", "fish", "zsh"}

// Command builds the "completion" subcommand for an application. The printed
// script invokes the application with FLAGON_COMPLETE set and the words typed
// so far as arguments; the binary answers with one candidate per line.
func Command(appName string) *flagon.Command {
	if appName == "" || strings.ContainsAny(appName, " \t") {
		panic(fmt.Sprintf("completioncmd: invalid application name %q", appName))
	}
	shell := flagon.Anon(flagon.Arg("shell", flagon.Enum(shells...)))
	return flagon.Basic(
		"Print the shell completion hook.",
		shell,
		func(ctx context.Context, inv *flagon.Invocation, shell string) error {
			script, err := Script(appName, shell)
			if err != nil {
				return err
			}
			_, werr := fmt.Fprint(inv.Stdout, script)
			return werr
		},
	).WithReadme("Load the hook into the current shell with e.g.\n" +
		"  source <(" + appName + " completion bash)")
}

// Script returns the completion hook for one of bash, zsh, or fish.
func Script(appName, shell string) (string, error) {
	switch shell {
	case "bash":
		return bashScript(appName), nil
	case "zsh":
		return zshScript(appName), nil
	case "fish":
		return fishScript(appName), nil
	}
	return "", fmt.Errorf("unsupported shell %q, available shells: %s", shell, strings.Join(shells, ", "))
}

func bashScript(app string) string {
	fn := "_" + sanitize(app) + "_complete"
	return fmt.Sprintf(`%[1]s() {
    local -a words=("${COMP_WORDS[@]:1:COMP_CWORD}")
    if [[ ${COMP_LINE: -1} == " " ]]; then
        words+=("")
    fi
    COMPREPLY=()
    while IFS= read -r line; do
        COMPREPLY+=("$line")
    done < <(%[3]s=1 %[2]s "${words[@]}" 2>/dev/null)
}
complete -o nospace -F %[1]s %[2]s
`, fn, app, flagon.EnvCompleteQuery)
}

func zshScript(app string) string {
	fn := "_" + sanitize(app) + "_complete"
	return fmt.Sprintf(`%[1]s() {
    local -a completions
    local -a words=("${(@)words[2,CURRENT]}")
    completions=(${(f)"$(%[3]s=1 %[2]s "${words[@]}" 2>/dev/null)"})
    compadd -S '' -- "${completions[@]}"
}
compdef %[1]s %[2]s
`, fn, app, flagon.EnvCompleteQuery)
}

func fishScript(app string) string {
	return fmt.Sprintf(`function __%[1]s_complete
    set -l words (commandline -opc)[2..-1]
    set -l current (commandline -ct)
    %[3]s=1 %[2]s $words $current 2>/dev/null
end
complete -f -c %[2]s -a '(__%[1]s_complete)'
`, sanitize(app), app, flagon.EnvCompleteQuery)
}

func sanitize(app string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, app)
}
