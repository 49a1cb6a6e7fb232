package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alnah/go-itmd"
	"github.com/alnah/go-itmd/internal/fileutil"
	"github.com/alnah/go-itmd/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteOutput  = errors.New("failed to write output file")
)

// DocumentParser is the parsing surface used by the CLI.
type DocumentParser interface {
	Parse(ctx context.Context, input itmd.Input) (*itmd.Document, error)
}

// Compile-time interface implementation check.
var _ DocumentParser = (*itmd.Parser)(nil)

// ParseResult holds the outcome of a single file.
type ParseResult struct {
	InputPath  string
	OutputPath string
	Warnings   int
	Err        error
	Duration   time.Duration
}

// parseBatch parses files concurrently. A single parser is shared by all
// workers. Results keep the order of files.
func parseBatch(ctx context.Context, parser DocumentParser, workers int, files []FileToParse, rp *renderParams) []ParseResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(itmd.ResolveWorkers(workers), len(files))

	results := make([]ParseResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ParseResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = parseFile(ctx, parser, files[idx], rp)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// parseFile parses one file and writes its rendered output.
func parseFile(ctx context.Context, parser DocumentParser, f FileToParse, rp *renderParams) ParseResult {
	start := time.Now()
	result := ParseResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ParseResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	doc, err := parser.Parse(ctx, itmd.Input{Markdown: string(content), Name: f.InputPath})
	if err != nil {
		return fail(err)
	}
	result.Warnings = doc.WarningCount()

	data, err := render(doc, rp)
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory()))
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, data, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed files.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Warnings  int
}

// countResults tallies succeeded and failed files.
func countResults(results []ParseResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.Warnings += r.Warnings
	}
	return summary
}

// printResults outputs parse results and returns the first failure wrapped
// with the failure count, or nil.
func printResults(results []ParseResult, quiet, verbose bool, stdout, stderr io.Writer) error {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		if quiet {
			continue
		}

		suffix := ""
		if r.Warnings > 0 {
			suffix = fmt.Sprintf(" (%d warning(s))", r.Warnings)
		}
		if verbose {
			fmt.Fprintf(stdout, "%s -> %s (%v)%s\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond), suffix)
		} else {
			fmt.Fprintf(stdout, "Created %s%s\n", r.OutputPath, suffix)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(stdout, "\n%d succeeded, %d failed, %d warning(s)\n", summary.Succeeded, summary.Failed, summary.Warnings)
	}

	if firstErr != nil {
		return fmt.Errorf("%d of %d file(s) failed: %w", summary.Failed, len(results), firstErr)
	}
	return nil
}
