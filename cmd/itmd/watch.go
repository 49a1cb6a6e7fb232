package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-itmd"
	"github.com/alnah/go-itmd/internal/fileutil"
	"github.com/alnah/go-itmd/internal/hints"
)

// debouncer collects paths and flushes them once no new path has arrived for
// delay.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]struct{}
	timer   *time.Timer
	flush   func(paths []string)
}

func newDebouncer(delay time.Duration, flush func(paths []string)) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]struct{}),
		flush:   flush,
	}
}

// add records path and restarts the timer.
func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	d.flush(paths)
}

// stop cancels a pending flush.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// watchSession re-parses changed sources and writes their outputs.
type watchSession struct {
	ctx     context.Context
	parser  DocumentParser
	rp      *renderParams
	root    string // watched file or directory
	baseDir string // root when it is a directory
	env     *Environment
	quiet   bool
	verbose bool
}

// outputFor returns the output path of a source under the watched root.
func (s *watchSession) outputFor(path string) (string, error) {
	return resolveOutputPath(path, s.rp.outputDir, s.baseDir, s.rp.format)
}

// rebuild parses the given sources, skipping ones that no longer exist.
func (s *watchSession) rebuild(paths []string) {
	files := make([]FileToParse, 0, len(paths))
	for _, p := range paths {
		if !fileutil.FileExists(p) {
			continue
		}
		out, err := s.outputFor(p)
		if err != nil {
			fmt.Fprintf(s.env.Stderr, "FAILED %s: %v\n", p, err)
			continue
		}
		files = append(files, FileToParse{InputPath: p, OutputPath: out})
	}
	if len(files) == 0 {
		return
	}
	results := parseBatch(s.ctx, s.parser, 0, files, s.rp)
	_ = printResults(results, s.quiet, s.verbose, s.env.Stdout, s.env.Stderr)
}

// relevant reports whether an event on path concerns the session.
func (s *watchSession) relevant(path string) bool {
	if s.baseDir == "" {
		return filepath.Clean(path) == filepath.Clean(s.root)
	}
	return fileutil.IsMarkdown(path)
}

// runWatch handles the watch command.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
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
	if rp.outputDir == stdinArg {
		return fmt.Errorf("%w: watch cannot write to stdout", ErrUsage)
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
		return fmt.Errorf("%w: watch needs a file or directory", ErrUsage)
	}
	files, err := discoverFiles(input, rp.outputDir, rp.format)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForWatch())
	}

	delay := f.debounce
	if delay <= 0 {
		delay = time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	}

	s := &watchSession{
		ctx:     ctx,
		parser:  parser,
		rp:      rp,
		root:    input,
		env:     env,
		quiet:   f.common.quiet,
		verbose: f.common.verbose,
	}
	if fileutil.IsDir(input) {
		s.baseDir = input
	}

	_ = printResults(parseBatch(ctx, parser, 0, files, rp), s.quiet, s.verbose, env.Stdout, env.Stderr)
	return watch(ctx, s, delay)
}

// watch blocks until ctx is done, re-parsing sources as they change.
func watch(ctx context.Context, s *watchSession, delay time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w%s", err, hints.ForWatch())
	}
	defer w.Close()

	dirs := []string{filepath.Dir(s.root)}
	if s.baseDir != "" {
		dirs = walkDirs(s.baseDir)
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w%s", d, err, hints.ForWatch())
		}
	}

	if !s.quiet {
		fmt.Fprintf(s.env.Stderr, "Watching %s (%d director%s). Press Ctrl+C to stop.\n", s.root, len(dirs), plural(len(dirs), "y", "ies"))
	}

	d := newDebouncer(delay, s.rebuild)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if s.baseDir != "" && event.Has(fsnotify.Create) && fileutil.IsDir(event.Name) {
				if err := w.Add(event.Name); err != nil {
					fmt.Fprintf(s.env.Stderr, "watch: could not watch %s: %v\n", event.Name, err)
				}
				continue
			}
			if !s.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				d.add(event.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(s.env.Stderr, "watch error: %v\n", err)
		}
	}
}

// walkDirs lists root and its subdirectories, skipping hidden ones.
func walkDirs(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
