package main

// Notes:
// - Flag parsing goes through pflag; we test our defaults, the hour sentinel,
//   repeatable flags and error wrapping, not pflag itself.
// - wantsVerbose: we test the pre-dispatch scan used for automaxprocs logging.

import (
	"bytes"
	"errors"
	"slices"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseParseFlags - parse command flags
// ---------------------------------------------------------------------------

func TestParseParseFlags(t *testing.T) {
	t.Parallel()

	f, rest, err := parseParseFlags([]string{
		"trip.md", "-o", "out", "-f", "yaml", "-w", "4", "--pretty", "--html",
		"--calendar-name", "Japan", "--tz", "Asia/Tokyo", "--am-hour", "0",
		"--allow-scheme", "https", "--allow-scheme", "geo", "-q",
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseParseFlags() error = %v", err)
	}

	if !slices.Equal(rest, []string{"trip.md"}) {
		t.Errorf("positional = %v", rest)
	}
	if f.output.output != "out" || f.output.format != "yaml" || !f.output.pretty || !f.output.html {
		t.Errorf("output flags = %+v", f.output)
	}
	if f.output.calendarName != "Japan" {
		t.Errorf("calendarName = %q", f.output.calendarName)
	}
	if f.workers != 4 {
		t.Errorf("workers = %d, want 4", f.workers)
	}
	if f.policy.tz != "Asia/Tokyo" {
		t.Errorf("tz = %q", f.policy.tz)
	}
	if f.policy.amHour != 0 {
		t.Errorf("amHour = %d, want explicit 0", f.policy.amHour)
	}
	if f.policy.pmHour != hourUnset {
		t.Errorf("pmHour = %d, want unset", f.policy.pmHour)
	}
	if !slices.Equal(f.policy.schemes, []string{"https", "geo"}) {
		t.Errorf("schemes = %v", f.policy.schemes)
	}
	if !f.common.quiet {
		t.Error("quiet should be set")
	}
}

func TestParseCheckFlags(t *testing.T) {
	t.Parallel()

	f, rest, err := parseCheckFlags([]string{"--strict", "--schema", "--date-format", "long", "-"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseCheckFlags() error = %v", err)
	}
	if !f.strict || !f.schema || f.dateFormat != "long" {
		t.Errorf("check flags = %+v", f)
	}
	if !slices.Equal(rest, []string{"-"}) {
		t.Errorf("positional = %v", rest)
	}
}

func TestParseWatchFlags(t *testing.T) {
	t.Parallel()

	f, _, err := parseWatchFlags([]string{"--debounce", "500ms", "docs"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseWatchFlags() error = %v", err)
	}
	if f.debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v, want 500ms", f.debounce)
	}
}

func TestParseStatsFlags(t *testing.T) {
	t.Parallel()

	f, _, err := parseStatsFlags([]string{"--target", "EUR", "--rate", "JPY=0.0061,USD=0.92", "--json", "trip.md"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseStatsFlags() error = %v", err)
	}
	if f.target != "EUR" || !f.json {
		t.Errorf("stats flags = %+v", f)
	}
	if !slices.Equal(f.rates, []string{"JPY=0.0061", "USD=0.92"}) {
		t.Errorf("rates = %v", f.rates)
	}
}

// ---------------------------------------------------------------------------
// TestParseArgs_Errors - Help and usage errors
// ---------------------------------------------------------------------------

func TestParseArgs_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantHelp  bool
		wantUsage bool
	}{
		{"help flag", []string{"-h"}, true, false},
		{"long help flag", []string{"--help"}, true, false},
		{"unknown flag", []string{"--bogus"}, false, true},
		{"bad int", []string{"--workers", "many"}, false, true},
		{"missing value", []string{"--format"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			_, _, err := parseParseFlags(tt.args, &stderr)
			if got := errors.Is(err, flag.ErrHelp); got != tt.wantHelp {
				t.Errorf("ErrHelp = %v, want %v (err %v)", got, tt.wantHelp, err)
			}
			if got := errors.Is(err, ErrUsage); got != tt.wantUsage {
				t.Errorf("ErrUsage = %v, want %v (err %v)", got, tt.wantUsage, err)
			}
			if tt.wantHelp && !bytes.Contains(stderr.Bytes(), []byte("Usage: itmd parse")) {
				t.Errorf("help should print parse usage, got %q", stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWantsVerbose - Pre-dispatch verbose detection
// ---------------------------------------------------------------------------

func TestWantsVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"parse", "-v", "trip.md"}, true},
		{[]string{"parse", "--verbose", "trip.md"}, true},
		{[]string{"parse", "--verbose=true"}, true},
		{[]string{"parse", "trip.md"}, false},
		{[]string{"parse", "--", "-v"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := wantsVerbose(tt.args); got != tt.want {
			t.Errorf("wantsVerbose(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
