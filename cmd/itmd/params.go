package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-itmd"
	"github.com/alnah/go-itmd/internal/config"
	"github.com/alnah/go-itmd/internal/hints"
	"github.com/alnah/go-itmd/internal/logging"
)

// ErrUnknownFormat is returned for an output format outside config.Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// renderParams holds the resolved output settings shared by parse and watch.
type renderParams struct {
	format       string
	pretty       bool
	calendarName string
	outputDir    string
}

// loadConfig returns the config named by --config, or the environment's
// config when the flag is empty.
func loadConfig(f commonFlags, env *Environment) (*config.Config, error) {
	if f.config == "" {
		if env.Config != nil {
			return env.Config, nil
		}
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(f.config)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(f.config)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergePolicyFlags returns a copy of cfg with the policy flags applied.
// Flags override config values.
func mergePolicyFlags(cfg *config.Config, f policyFlags) *config.Config {
	merged := *cfg
	pc := cfg.Policy
	pc.AllowURLSchemes = slices.Clone(pc.AllowURLSchemes)
	pc.PriceKeys = slices.Clone(pc.PriceKeys)

	if f.tz != "" {
		pc.TZFallback = f.tz
	}
	if f.currency != "" {
		pc.CurrencyFallback = f.currency
	}
	if f.stayMode != "" {
		pc.StayMode = f.stayMode
	}
	if f.amHour != hourUnset {
		h := f.amHour
		pc.AMHour = &h
	}
	if f.pmHour != hourUnset {
		h := f.pmHour
		pc.PMHour = &h
	}
	if len(f.schemes) > 0 {
		pc.AllowURLSchemes = slices.Clone(f.schemes)
	}
	merged.Policy = pc
	return &merged
}

// buildPolicy resolves the effective parse policy from config and flags.
func buildPolicy(cfg *config.Config, f policyFlags) (itmd.Policy, error) {
	p, err := mergePolicyFlags(cfg, f).ApplyPolicy(itmd.DefaultPolicy())
	if err != nil {
		return itmd.Policy{}, fmt.Errorf("%w%s", err, hints.ForInvalidPolicy())
	}
	return p, nil
}

// newLogger returns the stderr logger for the common flags. Quiet mode
// discards everything; verbose mode adds debug entries.
func newLogger(f commonFlags, env *Environment) logging.Logger {
	if f.quiet {
		return logging.NoOp{}
	}
	level := logging.LevelWarn
	if f.verbose {
		level = logging.LevelDebug
	}
	return logging.NewConsole(logging.Options{
		Writer:   env.Stderr,
		TimeFunc: env.Now,
		MinLevel: level,
	})
}

// newParser builds a parser for the merged config, policy flags and extra
// options.
func newParser(cfg *config.Config, f policyFlags, logger logging.Logger, opts ...itmd.Option) (*itmd.Parser, error) {
	pol, err := buildPolicy(cfg, f)
	if err != nil {
		return nil, err
	}
	all := append([]itmd.Option{itmd.WithPolicy(pol), itmd.WithLogger(logger)}, opts...)
	return itmd.NewParser(all...)
}

// resolveRenderParams merges output flags over the config output section.
func resolveRenderParams(cfg *config.Config, f outputFlags) (*renderParams, error) {
	p := &renderParams{
		format:       cfg.Output.Format,
		pretty:       cfg.Output.Pretty || f.pretty,
		calendarName: cfg.Output.CalendarName,
		outputDir:    cfg.Output.DefaultDir,
	}
	if f.format != "" {
		p.format = strings.ToLower(f.format)
	}
	if p.format == "" {
		p.format = config.FormatJSON
	}
	if !slices.Contains(config.Formats, p.format) {
		return nil, fmt.Errorf("%w: %q%s", ErrUnknownFormat, p.format, hints.ForUnknownFormat(config.Formats))
	}
	if f.calendarName != "" {
		p.calendarName = f.calendarName
	}
	if f.output != "" {
		p.outputDir = f.output
	}
	return p, nil
}

// render encodes doc in the requested format.
func render(doc *itmd.Document, p *renderParams) ([]byte, error) {
	switch p.format {
	case config.FormatJSON:
		data, err := doc.JSON(p.pretty)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case config.FormatYAML:
		return doc.YAML()
	case config.FormatICS:
		return doc.ICS(itmd.ICSOptions{Name: p.calendarName}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, p.format)
	}
}
