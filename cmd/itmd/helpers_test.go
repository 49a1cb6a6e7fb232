package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-itmd/internal/config"
)

// ---------------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------------

// tripMarkdown parses without warnings.
const tripMarkdown = "---\n" +
	"title: Japan\n" +
	"timezone: Asia/Tokyo\n" +
	"currency: JPY\n" +
	"---\n" +
	"\n" +
	"## 2024-03-10\n" +
	"\n" +
	"> [09:30]-[11:45] train Nozomi 21 from Tokyo to Kyoto\n" +
	"> - cost: ¥14,170\n" +
	"\n" +
	"> Hotel Gracery Kyoto\n" +
	"> - cost: ¥9,000\n"

// typoMarkdown has one event with an unknown keyword.
const typoMarkdown = "## 2024-03-10\n\n> [10:00] flght AF1\n"

// fixedNow is the clock used by test environments.
func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

// testEnv returns an environment writing to buffers and reading stdin.
func testEnv(stdin string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    fixedNow,
		Stdout: &stdout,
		Stderr: &stderr,
		Stdin:  strings.NewReader(stdin),
		Config: config.DefaultConfig(),
	}
	return env, &stdout, &stderr
}

// writeFile creates path under dir with content and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

// run calls runMain with "itmd" prepended to args.
func run(env *Environment, args ...string) int {
	return runMain(context.Background(), append([]string{"itmd"}, args...), env)
}
