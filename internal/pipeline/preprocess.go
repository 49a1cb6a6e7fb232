package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Opening or closing code fence outside a blockquote
	fenceLine = regexp.MustCompile("^ *(`{3,}|~{3,})")
)

// byteOrderMark is stripped from the start of the source.
const byteOrderMark = "\ufeff"

// Preprocessor defines the contract for source preprocessing.
type Preprocessor interface {
	Preprocess(ctx context.Context, content string) string
}

// SourcePreprocessor prepares itmd source for tokenization.
type SourcePreprocessor struct{}

var _ Preprocessor = (*SourcePreprocessor)(nil)

// Preprocess applies all transformations to prepare source for tokenization.
func (p *SourcePreprocessor) Preprocess(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = stripByteOrderMark(content)
	content = normalizeLineEndings(content)
	content = compressBlankLines(content)
	return content
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return normalizeLineEndings(content)
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines keeps at most one empty line between content lines.
// Empty lines inside fenced code blocks are part of the code and kept. A
// fence opened inside a blockquote ends with the quote at the first empty
// line, so only unquoted fences are tracked.
func compressBlankLines(content string) string {
	trailing := strings.HasSuffix(content, "\n")
	if trailing {
		content = content[:len(content)-1]
	}

	lines := strings.Split(content, "\n")
	out := lines[:0]
	fence := ""
	blank := false
	for _, line := range lines {
		if m := fenceLine.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case m[1][0] == fence[0] && len(m[1]) >= len(fence) &&
				strings.TrimSpace(line[len(m[0]):]) == "":
				fence = ""
			}
		}
		if line == "" && fence == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}

	result := strings.Join(out, "\n")
	if trailing {
		result += "\n"
	}
	return result
}

func stripByteOrderMark(content string) string {
	return strings.TrimPrefix(content, byteOrderMark)
}
