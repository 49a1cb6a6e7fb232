package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-itmd"
	"github.com/alnah/go-itmd/internal/fileutil"
)

// stdinArg selects standard input as the source, or standard output as the
// destination.
const stdinArg = "-"

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToParse is a single source document and its output path.
type FileToParse struct {
	InputPath  string
	OutputPath string
}

// discoverMarkdown lists the Markdown files under inputPath, or inputPath
// itself when it is a file.
func discoverMarkdown(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !fileutil.IsMarkdown(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		return []string{inputPath}, nil
	}

	var files []string
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsMarkdown(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// discoverFiles pairs each Markdown file under inputPath with its output
// path for the given extension.
func discoverFiles(inputPath, outputDir, ext string) ([]FileToParse, error) {
	sources, err := discoverMarkdown(inputPath)
	if err != nil {
		return nil, err
	}

	baseDir := ""
	if fileutil.IsDir(inputPath) {
		baseDir = inputPath
	}

	files := make([]FileToParse, 0, len(sources))
	for _, src := range sources {
		out, err := resolveOutputPath(src, outputDir, baseDir, ext)
		if err != nil {
			return nil, err
		}
		files = append(files, FileToParse{InputPath: src, OutputPath: out})
	}
	return files, nil
}

// resolveOutputPath determines the output path for a Markdown file.
// Without outputDir the output sits next to the source. An outputDir ending
// in .ext is a file path. Directory inputs are mirrored under outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir, ext string) (string, error) {
	name, err := fileutil.ReplaceExt(filepath.Base(inputPath), ext)
	if err != nil {
		return "", err
	}

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name), nil
	}
	if outputDir == stdinArg || strings.EqualFold(filepath.Ext(outputDir), "."+ext) {
		return outputDir, nil
	}

	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), name), nil
		}
	}
	return filepath.Join(outputDir, name), nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > itmd.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, itmd.MaxWorkers)
	}
	return nil
}
