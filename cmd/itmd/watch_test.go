package main

// Notes:
// - debouncer: we use short delays and wait on a channel, never on sleeps
//   alone, to keep the test stable under load.
// - watch: one end-to-end test runs fsnotify on a temp dir and polls for the
//   rebuilt output with a generous deadline.

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-itmd"
)

// ---------------------------------------------------------------------------
// TestDebouncer - Event coalescing
// ---------------------------------------------------------------------------

func TestDebouncer_Coalesces(t *testing.T) {
	t.Parallel()

	flushed := make(chan []string, 4)
	d := newDebouncer(30*time.Millisecond, func(paths []string) { flushed <- paths })
	defer d.stop()

	d.add("b.md")
	d.add("a.md")
	d.add("b.md")

	select {
	case got := <-flushed:
		if !slices.Equal(got, []string{"a.md", "b.md"}) {
			t.Errorf("flushed %v, want [a.md b.md]", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	select {
	case got := <-flushed:
		t.Errorf("unexpected second flush %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	d := newDebouncer(20*time.Millisecond, func([]string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	d.add("a.md")
	d.stop()

	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("flush ran %d time(s) after stop", calls)
	}
}

// ---------------------------------------------------------------------------
// TestWatchSession - Relevance and rebuild
// ---------------------------------------------------------------------------

func TestWatchSession_Relevant(t *testing.T) {
	t.Parallel()

	file := &watchSession{root: filepath.Join("trips", "japan.md")}
	if !file.relevant(filepath.Join("trips", ".", "japan.md")) {
		t.Error("the watched file should be relevant")
	}
	if file.relevant(filepath.Join("trips", "other.md")) {
		t.Error("a sibling should not be relevant when watching a file")
	}

	dir := &watchSession{root: "trips", baseDir: "trips"}
	if !dir.relevant(filepath.Join("trips", "a", "b.markdown")) {
		t.Error("markdown under a watched dir should be relevant")
	}
	if dir.relevant(filepath.Join("trips", "b.json")) {
		t.Error("outputs should not be relevant")
	}
}

func TestWatchSession_Rebuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "trip.md", tripMarkdown)
	p, err := itmd.NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	env, stdout, _ := testEnv("")
	s := &watchSession{
		ctx:     context.Background(),
		parser:  p,
		rp:      &renderParams{format: "yaml"},
		root:    dir,
		baseDir: dir,
		env:     env,
	}
	s.rebuild([]string{src, filepath.Join(dir, "deleted.md")})

	if got := readFile(t, filepath.Join(dir, "trip.yaml")); !strings.Contains(got, "title: Japan") {
		t.Errorf("trip.yaml = %q", got)
	}
	if !strings.Contains(stdout.String(), "Created") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "deleted.yaml")); err == nil {
		t.Error("deleted sources should be skipped")
	}
}

func TestWalkDirs_SkipsHidden(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, d := range []string{"a", "a/b", ".git", ".git/objects"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	got := walkDirs(dir)
	want := []string{dir, filepath.Join(dir, "a"), filepath.Join(dir, "a", "b")}
	if !slices.Equal(got, want) {
		t.Errorf("walkDirs() = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestRunWatch - watch command
// ---------------------------------------------------------------------------

func TestRunWatch_RejectsStdout(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv("")
	if code := exitCodeFor(runWatch(context.Background(), []string{"-o", "-", t.TempDir()}, env)); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if code := exitCodeFor(runWatch(context.Background(), []string{"-"}, env)); code != ExitUsage {
		t.Errorf("stdin exit code = %d, want %d", code, ExitUsage)
	}
}

func TestRunWatch_RebuildsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "trip.md", tripMarkdown)
	out := filepath.Join(dir, "trip.json")

	ctx, cancel := context.WithCancel(context.Background())
	env, _, _ := testEnv("")
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, []string{"-q", "--debounce", "20ms", dir}, env)
	}()

	waitFor(t, func() bool { return strings.Contains(readIfExists(out), "Nozomi") })

	// Events can be missed while the watcher is still registering, so the
	// edit is repeated until it shows up.
	edited := strings.Replace(tripMarkdown, "Nozomi 21", "Hikari 503", 1)
	waitFor(t, func() bool {
		if err := os.WriteFile(src, []byte(edited), 0o644); err != nil {
			t.Fatal(err)
		}
		return strings.Contains(readIfExists(out), "Hikari")
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
}

func readIfExists(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
