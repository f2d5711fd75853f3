package completioncmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flagon-cli/flagon"
)

func TestScript(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			script, err := Script("mytool", shell)
			if err != nil {
				t.Fatalf("Script() error = %v", err)
			}
			if !strings.Contains(script, "mytool") {
				t.Error("script does not mention the application")
			}
			if !strings.Contains(script, flagon.EnvCompleteQuery+"=1") {
				t.Error("script does not set the completion query variable")
			}
		})
	}
}

func TestScriptUnsupportedShell(t *testing.T) {
	if _, err := Script("mytool", "powershell"); err == nil {
		t.Fatal("expected an error for an unsupported shell")
	}
}

func TestCommandPrintsScript(t *testing.T) {
	cmd := Command("mytool")
	var out bytes.Buffer
	inv := cmd.Invoke("bash")
	inv.Stdout = &out
	if err := inv.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "complete -o nospace") {
		t.Errorf("unexpected script:\n%s", out.String())
	}
}

func TestCommandRejectsUnknownShell(t *testing.T) {
	cmd := Command("mytool")
	if err := cmd.Invoke("tcsh").Run(); err == nil {
		t.Fatal("expected a parse error for an unknown shell")
	}
	if !flagon.IsParseError(cmd.Invoke("tcsh").Run()) {
		t.Error("unknown shell should be a parse error")
	}
}

func TestCommandCompletesShells(t *testing.T) {
	got := flagon.CompleteQuery(Command("mytool"), []string{"f"})
	if len(got) != 1 || got[0] != "fish" {
		t.Errorf("candidates = %v, want [fish]", got)
	}
}

func TestCommandSanitizesName(t *testing.T) {
	script, err := Script("my-tool.v2", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "_my_tool_v2_complete") {
		t.Errorf("function name not sanitized:\n%s", script)
	}
}
