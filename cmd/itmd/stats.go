package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alnah/go-itmd"
	"github.com/alnah/go-itmd/internal/assemble"
	"github.com/alnah/go-itmd/internal/config"
	"github.com/alnah/go-itmd/internal/hints"
	"github.com/alnah/go-itmd/internal/money"
	"github.com/alnah/go-itmd/internal/stats"
)

// baseTypeOrder is the display order of base types.
var baseTypeOrder = []assemble.BaseType{
	assemble.BaseTransportation,
	assemble.BaseStay,
	assemble.BaseActivity,
}

// fileStats pairs a document name with its statistics.
type fileStats struct {
	File  string     `json:"file"`
	Stats itmd.Stats `json:"stats"`
}

// runStats handles the stats command.
func runStats(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseStatsFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	conv, err := resolveConversion(cfg, f)
	if err != nil {
		return err
	}
	var opts []itmd.Option
	if conv != nil {
		opts = append(opts, itmd.WithRates(conv.Target, conv.Rates))
	}
	parser, err := newParser(cfg, f.policy, newLogger(f.common, env), opts...)
	if err != nil {
		return err
	}

	input, err := singleInput(positional)
	if err != nil {
		return err
	}

	var results []fileStats
	if input == stdinArg {
		st, err := statsStream(ctx, parser, stdinName, env.Stdin)
		if err != nil {
			return err
		}
		results = append(results, fileStats{File: stdinName, Stats: st})
	} else {
		files, err := discoverMarkdown(input)
		if err != nil {
			return err
		}
		for _, path := range files {
			st, err := statsFile(ctx, parser, path)
			if err != nil {
				return err
			}
			results = append(results, fileStats{File: path, Stats: st})
		}
	}

	if f.json {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = fmt.Fprintf(env.Stdout, "%s\n", data)
		return err
	}
	for _, r := range results {
		printStats(env.Stdout, r)
	}
	return nil
}

// resolveConversion merges the stats config section with --target and
// --rate. Flag rates override config rates for the same currency. Returns
// nil when no target is set.
func resolveConversion(cfg *config.Config, f *statsFlags) (*itmd.Conversion, error) {
	target := cfg.Stats.Target
	if f.target != "" {
		target = f.target
	}
	if target == "" {
		if len(f.rates) > 0 {
			return nil, fmt.Errorf("%w: --rate needs --target%s", stats.ErrInvalidRate, hints.ForInvalidRate())
		}
		return nil, nil
	}
	code, ok := money.NormalizeCode(target)
	if !ok {
		return nil, fmt.Errorf("%w: unknown target currency %q%s", stats.ErrInvalidRate, target, hints.ForInvalidRate())
	}

	pairs := make([]string, 0, len(cfg.Stats.Rates)+len(f.rates))
	for _, cur := range sortedKeys(cfg.Stats.Rates) {
		pairs = append(pairs, cur+"="+cfg.Stats.Rates[cur])
	}
	pairs = append(pairs, f.rates...)

	rates, err := itmd.ParseRates(pairs)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForInvalidRate())
	}
	return &itmd.Conversion{Target: code, Rates: rates}, nil
}

func statsFile(ctx context.Context, parser *itmd.Parser, path string) (itmd.Stats, error) {
	src, err := os.Open(path) // #nosec G304 -- discovered path
	if err != nil {
		return itmd.Stats{}, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	defer src.Close()
	return statsStream(ctx, parser, path, src)
}

func statsStream(ctx context.Context, parser *itmd.Parser, name string, r io.Reader) (itmd.Stats, error) {
	source, err := readSource(r)
	if err != nil {
		return itmd.Stats{}, err
	}
	doc, err := parser.Parse(ctx, itmd.Input{Markdown: source, Name: name})
	if err != nil {
		return itmd.Stats{}, err
	}
	return parser.Stats(doc), nil
}

func printStats(w io.Writer, r fileStats) {
	s := r.Stats
	fmt.Fprintln(w, r.File)
	fmt.Fprintf(w, "  days %d, events %d (%d timed, %d with warnings)\n", s.Days, s.Events, s.Timed, s.WithIssues)
	for _, base := range baseTypeOrder {
		bs, ok := s.ByBaseType[base]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-16s %d event(s)  %s\n", base, bs.Events, formatTotals(bs.Totals))
	}
	fmt.Fprintf(w, "  %-16s %s\n", "total", formatTotals(s.Totals))
	if s.Converted != nil {
		fmt.Fprintf(w, "  %-16s %s %s\n", "converted", s.Converted.Currency, s.Converted.Amount)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "  %-16s %s\n", warn.Code, warn.Currency)
	}
}

func formatTotals(totals []stats.Total) string {
	if len(totals) == 0 {
		return "-"
	}
	parts := make([]string, len(totals))
	for i, t := range totals {
		parts[i] = t.Currency + " " + t.Amount
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
