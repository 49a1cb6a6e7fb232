package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// hourUnset detects if --am-hour or --pm-hour was explicitly set.
// 0 is a valid hour, so an out-of-range sentinel is used.
const hourUnset = -1

// ErrUsage wraps flag and argument errors.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// policyFlags override the parse policy from the config file.
type policyFlags struct {
	tz       string
	currency string
	stayMode string
	amHour   int
	pmHour   int
	schemes  []string
}

// outputFlags holds output rendering flags.
type outputFlags struct {
	output       string
	format       string
	pretty       bool
	html         bool
	calendarName string
}

// parseFlags holds all flags for the parse command.
type parseFlags struct {
	common  commonFlags
	policy  policyFlags
	output  outputFlags
	workers int
}

// checkFlags holds all flags for the check command.
type checkFlags struct {
	common     commonFlags
	policy     policyFlags
	strict     bool
	schema     bool
	dateFormat string
}

// watchFlags holds all flags for the watch command.
type watchFlags struct {
	common   commonFlags
	policy   policyFlags
	output   outputFlags
	debounce time.Duration
}

// statsFlags holds all flags for the stats command.
type statsFlags struct {
	common commonFlags
	policy policyFlags
	target string
	rates  []string
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addPolicyFlags adds parse policy flags to a FlagSet.
func addPolicyFlags(fs *flag.FlagSet, f *policyFlags) {
	fs.StringVar(&f.tz, "tz", "", "fallback timezone (IANA name or UTC offset)")
	fs.StringVar(&f.currency, "currency", "", "fallback currency (ISO code)")
	fs.StringVar(&f.stayMode, "stay-mode", "", "stay placement: default, header")
	fs.IntVar(&f.amHour, "am-hour", hourUnset, "hour used for [AM] markers (0-23)")
	fs.IntVar(&f.pmHour, "pm-hour", hourUnset, "hour used for [PM] markers (0-23)")
	fs.StringSliceVar(&f.schemes, "allow-scheme", nil, "allowed link schemes (repeatable)")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (- = stdout)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: json, yaml, ics")
	fs.BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	fs.BoolVar(&f.html, "html", false, "render passthrough blocks to HTML")
	fs.StringVar(&f.calendarName, "calendar-name", "", "calendar name for ics output")
}

func newParseFlagSet(f *parseFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addOutputFlags(fs, &f.output)
	addPolicyFlags(fs, &f.policy)
	addCommonFlags(fs, &f.common)
	return fs
}

func newCheckFlagSet(f *checkFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.BoolVar(&f.strict, "strict", false, "exit with code 4 when warnings are found")
	fs.BoolVar(&f.schema, "schema", false, "validate JSON output against the document schema")
	fs.StringVar(&f.dateFormat, "date-format", "", "heading date format or preset: iso, european, us, long, weekday")
	addPolicyFlags(fs, &f.policy)
	addCommonFlags(fs, &f.common)
	return fs
}

func newWatchFlagSet(f *watchFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.DurationVar(&f.debounce, "debounce", 0, "delay before re-parsing (0 = config, default 200ms)")
	addOutputFlags(fs, &f.output)
	addPolicyFlags(fs, &f.policy)
	addCommonFlags(fs, &f.common)
	return fs
}

func newStatsFlagSet(f *statsFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.StringVar(&f.target, "target", "", "currency of the converted total")
	fs.StringSliceVar(&f.rates, "rate", nil, "conversion rate CUR=value (repeatable)")
	fs.BoolVar(&f.json, "json", false, "print statistics as JSON")
	addPolicyFlags(fs, &f.policy)
	addCommonFlags(fs, &f.common)
	return fs
}

// parseArgs runs fs on args. Help requests return flag.ErrHelp; other flag
// errors wrap ErrUsage.
func parseArgs(fs *flag.FlagSet, args []string, usage func(io.Writer), stderr io.Writer) ([]string, error) {
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// parseParseFlags parses parse command flags and returns positional args.
func parseParseFlags(args []string, stderr io.Writer) (*parseFlags, []string, error) {
	f := &parseFlags{}
	rest, err := parseArgs(newParseFlagSet(f), args, printParseUsage, stderr)
	return f, rest, err
}

// parseCheckFlags parses check command flags and returns positional args.
func parseCheckFlags(args []string, stderr io.Writer) (*checkFlags, []string, error) {
	f := &checkFlags{}
	rest, err := parseArgs(newCheckFlagSet(f), args, printCheckUsage, stderr)
	return f, rest, err
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, stderr io.Writer) (*watchFlags, []string, error) {
	f := &watchFlags{}
	rest, err := parseArgs(newWatchFlagSet(f), args, printWatchUsage, stderr)
	return f, rest, err
}

// parseStatsFlags parses stats command flags and returns positional args.
func parseStatsFlags(args []string, stderr io.Writer) (*statsFlags, []string, error) {
	f := &statsFlags{}
	rest, err := parseArgs(newStatsFlagSet(f), args, printStatsUsage, stderr)
	return f, rest, err
}

// wantsVerbose reports whether args request verbose output. It is read
// before command dispatch to configure GOMAXPROCS logging.
func wantsVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}
