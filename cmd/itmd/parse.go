package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-itmd"
	"github.com/alnah/go-itmd/internal/fileutil"
	"github.com/alnah/go-itmd/internal/hints"
)

// stdinName labels documents read from standard input.
const stdinName = "<stdin>"

// runParse handles the parse command.
func runParse(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseParseFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(f.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	rp, err := resolveRenderParams(cfg, f.output)
	if err != nil {
		return err
	}
	logger := newLogger(f.common, env)
	parser, err := newParser(cfg, f.policy, logger, itmd.WithPassthroughHTML(f.output.html || cfg.Output.HTML))
	if err != nil {
		return err
	}

	input, err := singleInput(positional)
	if err != nil {
		return err
	}
	if input == stdinArg {
		return parseStream(ctx, parser, stdinName, env.Stdin, rp, f.output.output, env.Stdout)
	}

	files, err := discoverFiles(input, rp.outputDir, rp.format)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !f.common.quiet {
			fmt.Fprintf(env.Stderr, "no markdown files found in %s\n", input)
		}
		return nil
	}

	if rp.outputDir == stdinArg {
		if len(files) > 1 {
			return fmt.Errorf("%w: --output - needs a single input file, %s has %d", ErrUsage, input, len(files))
		}
		src, err := os.Open(files[0].InputPath) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		}
		defer src.Close()
		return parseStream(ctx, parser, files[0].InputPath, src, rp, stdinArg, env.Stdout)
	}

	logger.Debug("parsing", "files", len(files), "workers", min(itmd.ResolveWorkers(f.workers), len(files)))
	results := parseBatch(ctx, parser, f.workers, files, rp)
	return printResults(results, f.common.quiet, f.common.verbose, env.Stdout, env.Stderr)
}

// singleInput returns the one positional argument.
func singleInput(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return "", fmt.Errorf("%w%s", ErrNoInput, hints.ForNoInput())
	case 1:
		return positional[0], nil
	default:
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(positional))
	}
}

// readSource reads a whole document, refusing inputs over itmd.MaxInputSize.
func readSource(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, itmd.MaxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	if len(data) > itmd.MaxInputSize {
		return "", fmt.Errorf("%w: more than %d bytes", itmd.ErrInputTooLarge, itmd.MaxInputSize)
	}
	return string(data), nil
}

// parseStream parses one document from r and writes the rendered output to
// dest, or to w when dest is empty or "-". A directory dest receives
// stdin.<format>.
func parseStream(ctx context.Context, parser DocumentParser, name string, r io.Reader, rp *renderParams, dest string, w io.Writer) error {
	source, err := readSource(r)
	if err != nil {
		return err
	}
	doc, err := parser.Parse(ctx, itmd.Input{Markdown: source, Name: name})
	if err != nil {
		return err
	}
	data, err := render(doc, rp)
	if err != nil {
		return err
	}

	if dest != "" && dest != stdinArg {
		if fileutil.IsDir(dest) {
			dest = filepath.Join(dest, "stdin."+rp.format)
		}
		if err := fileutil.WriteFileAtomic(dest, data, filePermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
