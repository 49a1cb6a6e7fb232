// Package logging provides the leveled key=value logger used by the CLI.
//
// Entries are single lines: timestamp, level, message, then fields sorted by
// key. Args are alternating key/value pairs; a trailing value without a key
// is kept under a positional name.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level is the severity of an entry.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String renders the severity label.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Logger is the logging surface shared by the parser and the CLI.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Console logger.
type Options struct {
	Writer   io.Writer        // default os.Stderr
	TimeFunc func() time.Time // default time.Now
	MinLevel Level
}

// Console writes entries to a writer. It is safe for concurrent use.
type Console struct {
	writer   io.Writer
	clock    func() time.Time
	minLevel Level
	mu       *sync.Mutex
	fields   map[string]any
}

var _ Logger = (*Console)(nil)

// NewConsole returns a Console logger.
func NewConsole(opts Options) *Console {
	c := &Console{
		writer:   opts.Writer,
		clock:    opts.TimeFunc,
		minLevel: opts.MinLevel,
		mu:       &sync.Mutex{},
	}
	if c.writer == nil {
		c.writer = os.Stderr
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	return c
}

// With returns a logger that adds fields to every entry.
func (c *Console) With(args ...any) *Console {
	fields := argsToFields(args)
	if len(fields) == 0 {
		return c
	}
	merged := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	clone := *c
	clone.fields = merged
	return &clone
}

func (c *Console) Debug(msg string, args ...any) { c.log(LevelDebug, msg, args) }
func (c *Console) Info(msg string, args ...any)  { c.log(LevelInfo, msg, args) }
func (c *Console) Warn(msg string, args ...any)  { c.log(LevelWarn, msg, args) }
func (c *Console) Error(msg string, args ...any) { c.log(LevelError, msg, args) }

func (c *Console) log(level Level, msg string, args []any) {
	if level < c.minLevel {
		return
	}
	fields := argsToFields(args)
	for k, v := range c.fields {
		if _, ok := fields[k]; !ok {
			if fields == nil {
				fields = map[string]any{}
			}
			fields[k] = v
		}
	}
	entry := formatEntry(c.clock().UTC(), level, msg, fields)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.writer, entry+"\n")
}

// NoOp discards every entry.
type NoOp struct{}

var _ Logger = NoOp{}

func (NoOp) Debug(string, ...any) {}
func (NoOp) Info(string, ...any)  {}
func (NoOp) Warn(string, ...any)  {}
func (NoOp) Error(string, ...any) {}

func argsToFields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i == len(args)-1 {
			fields["arg"+strconv.Itoa(i/2)] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg" + strconv.Itoa(i/2)
		}
		fields[key] = args[i+1]
	}
	return fields
}

func formatEntry(ts time.Time, level Level, msg string, fields map[string]any) string {
	var b strings.Builder
	b.Grow(48 + len(msg) + len(fields)*16)
	b.WriteString(ts.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
	return b.String()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quoteIfNeeded(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case time.Duration:
		return v.String()
	case error:
		return quoteIfNeeded(v.Error())
	case fmt.Stringer:
		return quoteIfNeeded(v.String())
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return quoteIfNeeded(fmt.Sprint(v))
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
