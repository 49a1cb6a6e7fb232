package main

import (
	"fmt"
	"io"
	"strings"
)

// globExtensions turns "*.md,*.markdown" into ["md", "markdown"].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		g = strings.TrimPrefix(strings.TrimSpace(g), "*.")
		if g != "" {
			exts = append(exts, g)
		}
	}
	return exts
}

// flagWords lists the long and short spellings of flags.
func flagWords(flags []flagDef) []string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

func writeScript(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# bash completion for itmd\n")
	b.WriteString("# eval \"$(itmd completion bash)\"\n\n")
	b.WriteString("shopt -s extglob\n\n")
	b.WriteString("_itmd_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && len(c.Args) == 0 && !c.TakesFiles {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(c.Args, " "))
			b.WriteString("            ;;\n")
			continue
		}

		b.WriteString("            case \"${prev}\" in\n")
		var valueFlags []string
		for _, f := range c.Flags {
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, "                %s)\n", pattern)
				fmt.Fprintf(&b, "                    COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(f.Values, " "))
				b.WriteString("                    return 0\n")
				b.WriteString("                    ;;\n")
			case flagFile:
				fmt.Fprintf(&b, "                %s)\n", pattern)
				fmt.Fprintf(&b, "                    COMPREPLY=( $(compgen -f -X '!*.@(%s)' -- \"${cur}\") $(compgen -d -- \"${cur}\") )\n", strings.Join(globExtensions(f.FileGlob), "|"))
				b.WriteString("                    return 0\n")
				b.WriteString("                    ;;\n")
			case flagDir:
				fmt.Fprintf(&b, "                %s)\n", pattern)
				b.WriteString("                    COMPREPLY=( $(compgen -d -- \"${cur}\") )\n")
				b.WriteString("                    return 0\n")
				b.WriteString("                    ;;\n")
			case flagString, flagInt, flagDuration:
				valueFlags = append(valueFlags, pattern)
			}
		}
		if len(valueFlags) > 0 {
			fmt.Fprintf(&b, "                %s)\n", strings.Join(valueFlags, "|"))
			b.WriteString("                    return 0\n")
			b.WriteString("                    ;;\n")
		}
		b.WriteString("            esac\n")
		b.WriteString("            if [[ \"${cur}\" == -* ]]; then\n")
		fmt.Fprintf(&b, "                COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(flagWords(c.Flags), " "))
		if c.TakesFiles {
			b.WriteString("            else\n")
			fmt.Fprintf(&b, "                COMPREPLY=( $(compgen -f -X '!*.@(%s)' -- \"${cur}\") $(compgen -d -- \"${cur}\") )\n", strings.Join(globExtensions(c.FilePattern), "|"))
		}
		b.WriteString("            fi\n")
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _itmd_completions itmd\n")
	return writeScript(w, &b)
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

// zshDesc escapes a description for an _arguments option spec.
func zshDesc(s string) string {
	r := strings.NewReplacer("[", "\\[", "]", "\\]", "'", "'\\''", ":", "\\:")
	return r.Replace(s)
}

func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagEnum:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		action = ":file:_files -g \"*.(" + strings.Join(globExtensions(f.FileGlob), "|") + ")\""
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + f.Long + ": "
	}

	desc := "[" + zshDesc(f.Desc) + "]"
	if f.Short == "" {
		repeat := ""
		if f.Repeatable {
			repeat = "*"
		}
		return "'" + repeat + "--" + f.Long + desc + action + "'"
	}
	return "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'" + desc + action + "'"
}

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("#compdef itmd\n\n")
	b.WriteString("_itmd() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, strings.ReplaceAll(c.Desc, "'", "'\\''"))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments -C \\\n")
	b.WriteString("        '1: :->command' \\\n")
	b.WriteString("        '*:: :->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("        command)\n")
	b.WriteString("            _describe 'command' commands\n")
	b.WriteString("            ;;\n")
	b.WriteString("        args)\n")
	b.WriteString("            case $words[1] in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && len(c.Args) == 0 && !c.TakesFiles {
			continue
		}
		fmt.Fprintf(&b, "                %s)\n", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "                    _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
			b.WriteString("                    ;;\n")
			continue
		}
		b.WriteString("                    _arguments")
		for _, f := range c.Flags {
			b.WriteString(" \\\n                        ")
			b.WriteString(zshFlagSpec(f))
		}
		if c.TakesFiles {
			b.WriteString(" \\\n                        ")
			fmt.Fprintf(&b, "'*:file:_files -g \"*.(%s)\"'", strings.Join(globExtensions(c.FilePattern), "|"))
		}
		b.WriteString("\n                    ;;\n")
	}

	b.WriteString("            esac\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_itmd \"$@\"\n")
	return writeScript(w, &b)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func fishQuote(s string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s, "\\", "\\\\"), "'", "\\'") + "'"
}

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# fish completion for itmd\n\n")
	b.WriteString("function __fish_itmd_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_itmd_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c itmd -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c itmd -n __fish_itmd_needs_command -a %s -d %s\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := fishQuote("__fish_itmd_using_command " + c.Name)
		if len(c.Args) > 0 || len(c.Flags) > 0 || c.TakesFiles {
			b.WriteString("\n")
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c itmd -n %s -x -a %s\n", cond, fishQuote(strings.Join(c.Args, " ")))
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c itmd -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s -d %s", f.Long, fishQuote(f.Desc))
			switch f.Type {
			case flagBool:
			case flagEnum:
				fmt.Fprintf(&b, " -x -a %s", fishQuote(strings.Join(f.Values, " ")))
			case flagFile:
				b.WriteString(" -r -F")
			case flagDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			default:
				b.WriteString(" -x")
			}
			b.WriteString("\n")
		}
		if c.TakesFiles {
			for _, ext := range globExtensions(c.FilePattern) {
				fmt.Fprintf(&b, "complete -c itmd -n %s -a '(__fish_complete_suffix .%s)'\n", cond, ext)
			}
		}
	}
	return writeScript(w, &b)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func generatePowerShell(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# PowerShell completion for itmd\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName itmd -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $values = @{\n")
	for _, c := range cmds {
		words := c.Args
		if len(words) == 0 {
			words = flagWords(c.Flags)
		}
		if len(words) == 0 {
			continue
		}
		quoted := make([]string, len(words))
		for i, v := range words {
			quoted[i] = psQuote(v)
		}
		fmt.Fprintf(&b, "        %s = @(%s)\n", psQuote(c.Name), strings.Join(quoted, ", "))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    if ($words.Count -lt 2 -or ($words.Count -eq 2 -and $wordToComplete -ne '')) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $cmd = $words[1]\n")
	b.WriteString("    if ($values.ContainsKey($cmd)) {\n")
	b.WriteString("        $values[$cmd] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return writeScript(w, &b)
}
