package main

// Notes:
// - GenerateCompletion: we test that shell scripts are generated with expected
//   content markers. We do not test that the scripts actually work in the
//   target shell (that would require integration tests with actual shells).
// - getCommands: we test the command definitions are complete and derived
//   from the real FlagSets.
// These are acceptable gaps: we test observable behavior, not runtime shell behavior.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion_SupportedShells - Shell completion script generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell        Shell
		wantContains []string
	}{
		{ShellBash, []string{
			"_itmd_completions", "complete -F", "compgen", "shopt -s extglob",
			"'!*.@(md|markdown)'", "--format|-f)", "\"json yaml ics\"",
		}},
		{ShellZsh, []string{
			"#compdef itmd", "_itmd", "_arguments", "_describe",
			"'(-o --output)'{-o,--output}", ":format:(json yaml ics)", "'*--allow-scheme",
		}},
		{ShellFish, []string{
			"complete -c itmd", "__fish_itmd_needs_command", "__fish_itmd_using_command",
			"-l output", "-s o", "-x -a 'json yaml ics'", "__fish_complete_suffix .md",
		}},
		{ShellPowerShell, []string{
			"Register-ArgumentCompleter", "-CommandName itmd", "CompletionResult", "'--rate'",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			script := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(script, want) {
					t.Errorf("%s script should contain %q", tt.shell, want)
				}
			}
			for _, cmd := range getCommands() {
				if !strings.Contains(script, cmd.Name) {
					t.Errorf("%s script should mention command %q", tt.shell, cmd.Name)
				}
			}
			if !strings.Contains(script, "output") || !strings.Contains(script, "date-format") {
				t.Errorf("%s script should list command flags", tt.shell)
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := GenerateCompletion(&buf, Shell("tcsh"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Fatalf("error = %v, want ErrUnsupportedShell", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}

func TestZshDesc_Escapes(t *testing.T) {
	t.Parallel()

	got := zshDesc("stay placement: default [x] it's")
	want := `stay placement\: default \[x\] it'\''s`
	if got != want {
		t.Errorf("zshDesc() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestRunCompletion - completion command
// ---------------------------------------------------------------------------

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv("")
	if err := runCompletion(nil, env); err != nil {
		t.Fatalf("runCompletion(nil) error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Usage: itmd completion <shell>") {
		t.Errorf("usage expected, got %q", stdout.String())
	}

	env, stdout, _ = testEnv("")
	if err := runCompletion([]string{"fish"}, env); err != nil {
		t.Fatalf("runCompletion(fish) error = %v", err)
	}
	if !strings.Contains(stdout.String(), "complete -c itmd") {
		t.Errorf("fish script expected, got %q", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands - Command registry
// ---------------------------------------------------------------------------

func TestGetCommands(t *testing.T) {
	t.Parallel()

	cmds := getCommands()
	byName := map[string]commandDef{}
	for _, c := range cmds {
		byName[c.Name] = c
	}
	for _, name := range commands {
		if _, ok := byName[name]; !ok {
			t.Errorf("command %q missing from completion registry", name)
		}
	}

	flagsOf := func(cmd string) map[string]flagDef {
		out := map[string]flagDef{}
		for _, f := range byName[cmd].Flags {
			out[f.Long] = f
		}
		return out
	}

	parse := flagsOf("parse")
	if f := parse["format"]; f.Type != flagEnum || strings.Join(f.Values, ",") != "json,yaml,ics" {
		t.Errorf("parse --format = %+v", f)
	}
	if f := parse["output"]; f.Type != flagDir || f.Short != "o" {
		t.Errorf("parse --output = %+v", f)
	}
	if f := parse["config"]; f.Type != flagFile || f.FileGlob == "" {
		t.Errorf("parse --config = %+v", f)
	}
	if f := parse["workers"]; f.Type != flagInt {
		t.Errorf("parse --workers = %+v", f)
	}
	if f := parse["allow-scheme"]; !f.Repeatable {
		t.Errorf("parse --allow-scheme should be repeatable: %+v", f)
	}
	if f := flagsOf("watch")["debounce"]; f.Type != flagDuration {
		t.Errorf("watch --debounce = %+v", f)
	}
	if f := flagsOf("check")["strict"]; f.Type != flagBool {
		t.Errorf("check --strict = %+v", f)
	}
	if _, ok := flagsOf("stats")["rate"]; !ok {
		t.Error("stats should expose --rate")
	}

	if got := strings.Join(byName["completion"].Args, ","); got != "bash,zsh,fish,powershell" {
		t.Errorf("completion args = %s", got)
	}
}
