package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmd <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  parse       Parse itinerary Markdown to JSON, YAML or ICS")
	fmt.Fprintln(w, "  check       Report warnings and diagnostics")
	fmt.Fprintln(w, "  watch       Re-parse files when they change")
	fmt.Fprintln(w, "  stats       Show day, event and cost totals")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'itmd help <command>' for details on a specific command.")
}

// printPolicyFlags prints the policy flag group shared by all commands.
func printPolicyFlags(w io.Writer) {
	fmt.Fprintln(w, "Policy:")
	fmt.Fprintln(w, "      --tz <zone>           Fallback timezone (IANA name or UTC offset)")
	fmt.Fprintln(w, "      --currency <code>     Fallback currency (ISO code)")
	fmt.Fprintln(w, "      --stay-mode <s>       Stay placement: default, header")
	fmt.Fprintln(w, "      --am-hour <n>         Hour used for [AM] markers (0-23)")
	fmt.Fprintln(w, "      --pm-hour <n>         Hour used for [PM] markers (0-23)")
	fmt.Fprintln(w, "      --allow-scheme <s>    Allowed link scheme (repeatable)")
	fmt.Fprintln(w)
}

// printCommonFlags prints the output control flag group.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printParseUsage prints usage for the parse command.
func printParseUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmd parse <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse itinerary Markdown into a structured document.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file, directory, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (- = stdout)")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: json, yaml, ics (default: json)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --pretty              Indent JSON output")
	fmt.Fprintln(w, "      --html                Render passthrough blocks to HTML")
	fmt.Fprintln(w, "      --calendar-name <s>   Calendar name for ics output")
	fmt.Fprintln(w)
	printPolicyFlags(w)
	printCommonFlags(w)
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmd check <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Report document diagnostics and event warnings.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file, directory, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check:")
	fmt.Fprintln(w, "      --strict              Exit with code 4 when warnings are found")
	fmt.Fprintln(w, "      --schema              Validate JSON output against the document schema")
	fmt.Fprintln(w, "      --date-format <s>     Date format: YYYY, YY, MMMM, MMM, MM, M, DD, D, dddd, ddd")
	fmt.Fprintln(w, "                            Presets (case-insensitive): iso, european, us, long, weekday")
	fmt.Fprintln(w, "                            Use [text] to escape literals: [Day] D")
	fmt.Fprintln(w)
	printPolicyFlags(w)
	printCommonFlags(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmd watch <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse files, then re-parse them each time they change.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: json, yaml, ics (default: json)")
	fmt.Fprintln(w, "      --debounce <d>        Delay before re-parsing, e.g. 500ms")
	fmt.Fprintln(w, "      --pretty              Indent JSON output")
	fmt.Fprintln(w, "      --html                Render passthrough blocks to HTML")
	fmt.Fprintln(w, "      --calendar-name <s>   Calendar name for ics output")
	fmt.Fprintln(w)
	printPolicyFlags(w)
	printCommonFlags(w)
}

// printStatsUsage prints usage for the stats command.
func printStatsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmd stats <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show day and event counts with cost totals per currency.")
	fmt.Fprintln(w, "Rates are never fetched; pass them with --rate or the config file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file, directory, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --target <code>       Currency of the converted total")
	fmt.Fprintln(w, "      --rate <CUR=value>    Value of one CUR in the target (repeatable)")
	fmt.Fprintln(w, "      --json                Print statistics as JSON")
	fmt.Fprintln(w)
	printPolicyFlags(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "parse":
		printParseUsage(env.Stdout)
	case "check":
		printCheckUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "stats":
		printStatsUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: itmd version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: itmd help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, args[0])
	}
	return nil
}
