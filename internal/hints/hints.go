// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-itmd/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForWatch returns hints for watch setup failures. Inside containers, file
// events on bind mounts are often not delivered.
func ForWatch() string {
	var hints []string
	if IsInContainer() {
		hints = append(hints, "file events may not cross bind mounts; run watch on the host")
	}
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		hints = append(hints, "keep watched files on the Linux filesystem, not /mnt")
	}
	hints = append(hints, "check the path exists and is readable")
	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-itmd") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnknownFormat returns hints listing the accepted output formats.
func ForUnknownFormat(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForInvalidPolicy returns hints for rejected policy values.
func ForInvalidPolicy() string {
	return format("hours are 0-23, timezones are IANA names like Asia/Tokyo, currencies are ISO codes like EUR")
}

// ForInvalidRate returns hints for malformed --rate values.
func ForInvalidRate() string {
	return format("use --rate CUR=value, e.g. --rate JPY=0.0061")
}

// ForNoInput returns hints when no source document was given.
func ForNoInput() string {
	return format("pass a .md file or directory, or pipe Markdown on stdin")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
