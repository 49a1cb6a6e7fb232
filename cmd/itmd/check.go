package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alnah/go-itmd"
	"github.com/alnah/go-itmd/internal/assemble"
	"github.com/alnah/go-itmd/internal/dateutil"
	"github.com/alnah/go-itmd/internal/icsexport"
)

// ErrCheckFailed is returned by check when --strict finds warnings or
// --schema finds violations.
var ErrCheckFailed = errors.New("check failed")

// checkIssue is one line of a check report.
type checkIssue struct {
	date    string
	clock   string
	subject string
	codes   []string
	detail  string
}

// checkReport lists the problems of one document.
type checkReport struct {
	name   string
	issues []checkIssue
	schema []string
}

func (r *checkReport) warnings() int { return len(r.issues) }

// checkStyles are the lipgloss styles of the report. They are bound to the
// output writer, so redirected output carries no escape codes.
type checkStyles struct {
	file lipgloss.Style
	ok   lipgloss.Style
	code lipgloss.Style
	date lipgloss.Style
	fail lipgloss.Style
}

func newCheckStyles(w io.Writer) checkStyles {
	r := lipgloss.NewRenderer(w)
	return checkStyles{
		file: r.NewStyle().Bold(true),
		ok:   r.NewStyle().Foreground(lipgloss.Color("2")),
		code: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		date: r.NewStyle().Foreground(lipgloss.Color("8")),
		fail: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// runCheck handles the check command.
func runCheck(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseCheckFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if f.dateFormat != "" {
		if _, err := dateutil.FormatDate(env.Now(), f.dateFormat); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	parser, err := newParser(cfg, f.policy, newLogger(commonFlags{quiet: !f.common.verbose, verbose: f.common.verbose}, env))
	if err != nil {
		return err
	}

	input, err := singleInput(positional)
	if err != nil {
		return err
	}

	var reports []checkReport
	if input == stdinArg {
		report, err := checkStream(ctx, parser, stdinName, env.Stdin, f)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	} else {
		files, err := discoverMarkdown(input)
		if err != nil {
			return err
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := checkFile(ctx, parser, path, f)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
	}

	styles := newCheckStyles(env.Stdout)
	var warnings, violations int
	for i := range reports {
		warnings += reports[i].warnings()
		violations += len(reports[i].schema)
		if !f.common.quiet || reports[i].warnings() > 0 || len(reports[i].schema) > 0 {
			printReport(env.Stdout, styles, &reports[i])
		}
	}

	if violations > 0 {
		return fmt.Errorf("%w: %d schema violation(s)", ErrCheckFailed, violations)
	}
	if f.strict && warnings > 0 {
		return fmt.Errorf("%w: %d warning(s) in %d file(s)", ErrCheckFailed, warnings, len(reports))
	}
	return nil
}

func checkFile(ctx context.Context, parser DocumentParser, path string, f *checkFlags) (checkReport, error) {
	src, err := os.Open(path) // #nosec G304 -- discovered path
	if err != nil {
		return checkReport{}, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	defer src.Close()
	return checkStream(ctx, parser, path, src, f)
}

func checkStream(ctx context.Context, parser DocumentParser, name string, r io.Reader, f *checkFlags) (checkReport, error) {
	source, err := readSource(r)
	if err != nil {
		return checkReport{}, err
	}
	doc, err := parser.Parse(ctx, itmd.Input{Markdown: source, Name: name})
	if err != nil {
		return checkReport{}, err
	}

	report := buildReport(name, doc, f.dateFormat)
	if f.schema {
		data, err := doc.JSON(false)
		if err != nil {
			return checkReport{}, err
		}
		report.schema = schemaProblems(itmd.ValidateJSON(data))
	}
	return report, nil
}

// schemaProblems turns a ValidateJSON result into report lines.
func schemaProblems(err error) []string {
	if err == nil {
		return nil
	}
	var serr *itmd.SchemaError
	if !errors.As(err, &serr) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(serr.Issues))
	for _, issue := range serr.Issues {
		loc := issue.Location
		if loc == "" {
			loc = "/"
		}
		out = append(out, loc+": "+issue.Message)
	}
	return out
}

// buildReport collects document diagnostics and event warnings.
func buildReport(name string, doc *itmd.Document, dateFormat string) checkReport {
	report := checkReport{name: name}
	for _, d := range doc.Diagnostics {
		report.issues = append(report.issues, checkIssue{
			subject: d.Source,
			codes:   []string{d.Code},
			detail:  d.Message,
		})
	}
	for _, e := range doc.Events() {
		if !e.HasWarnings() {
			continue
		}
		issue := checkIssue{
			date:    formatHeadingDate(e.Context.DateISO, dateFormat),
			clock:   formatClock(e.Time),
			subject: icsexport.Summary(e),
			codes:   eventCodes(e),
		}
		if e.Suggestion != "" {
			issue.detail = fmt.Sprintf("did you mean %q?", e.Suggestion)
		}
		report.issues = append(report.issues, issue)
	}
	return report
}

// eventCodes lists the event's warnings followed by its price warnings,
// prefixed with the price key.
func eventCodes(e *assemble.EventNode) []string {
	codes := append([]string(nil), e.Warnings...)
	keys := make([]string, 0, len(e.Prices))
	for k := range e.Prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, p := range e.Prices[k] {
			for _, w := range p.Warnings {
				codes = append(codes, k+":"+w)
			}
		}
	}
	return codes
}

// formatHeadingDate renders an ISO date with a date format or preset.
// Undated events render as "undated".
func formatHeadingDate(dateISO, format string) string {
	t, ok := dateutil.ParseDateISO(dateISO)
	if !ok {
		return "undated"
	}
	s, err := dateutil.FormatDate(t, format)
	if err != nil {
		return dateISO
	}
	return s
}

// formatClock renders the start of an event time.
func formatClock(t assemble.Time) string {
	switch t.Kind {
	case assemble.TimeMarker:
		return t.Marker
	case assemble.TimePoint, assemble.TimeRange:
		if t.Start != nil {
			return fmt.Sprintf("%02d:%02d", t.Start.Hour, t.Start.Minute)
		}
	}
	return "--:--"
}

func printReport(w io.Writer, s checkStyles, r *checkReport) {
	n := r.warnings()
	if n == 0 && len(r.schema) == 0 {
		fmt.Fprintf(w, "%s %s\n", s.file.Render(r.name), s.ok.Render("ok"))
		return
	}

	fmt.Fprintf(w, "%s %d warning(s)\n", s.file.Render(r.name), n)
	for _, is := range r.issues {
		var b strings.Builder
		b.WriteString("  ")
		if is.date != "" {
			b.WriteString(s.date.Render(is.date + " " + is.clock))
			b.WriteString(" ")
		}
		b.WriteString(is.subject)
		b.WriteString(" ")
		b.WriteString(s.code.Render("[" + strings.Join(is.codes, ", ") + "]"))
		if is.detail != "" {
			b.WriteString(" ")
			b.WriteString(is.detail)
		}
		fmt.Fprintln(w, b.String())
	}
	for _, line := range r.schema {
		fmt.Fprintf(w, "  %s %s\n", s.fail.Render("schema"), line)
	}
}
