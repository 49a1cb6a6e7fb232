// Package config loads itmd CLI configuration files.
//
// A config file is YAML (.yaml, .yml) or TOML (.toml). Unknown keys are
// rejected in both formats. Files are found by path, or by name in the
// current directory and then in the user config directory under go-itmd/.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-itmd/internal/fileutil"
	"github.com/alnah/go-itmd/internal/frontmatter"
	"github.com/alnah/go-itmd/internal/policy"
	"github.com/alnah/go-itmd/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
)

// DirName is the directory searched under os.UserConfigDir.
const DirName = "go-itmd"

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxSchemeLength = 32
	MaxKeyLength    = 64
	MaxNameLength   = 200
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatICS  = "ics"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatJSON, FormatYAML, FormatICS}

// Extensions are tried in order when resolving a config by name.
var Extensions = []string{".yaml", ".yml", ".toml"}

// Config holds the CLI configuration.
type Config struct {
	Policy PolicyConfig `yaml:"policy" toml:"policy"`
	Output OutputConfig `yaml:"output" toml:"output"`
	Stats  StatsConfig  `yaml:"stats" toml:"stats"`
	Watch  WatchConfig  `yaml:"watch" toml:"watch"`
}

// PolicyConfig overrides the built-in parse policy. Zero values keep the
// default.
type PolicyConfig struct {
	AMHour           *int     `yaml:"amHour" toml:"amHour"`
	PMHour           *int     `yaml:"pmHour" toml:"pmHour"`
	AllowURLSchemes  []string `yaml:"allowUrlSchemes" toml:"allowUrlSchemes"`
	TZFallback       string   `yaml:"tzFallback" toml:"tzFallback"`
	CurrencyFallback string   `yaml:"currencyFallback" toml:"currencyFallback"`
	PriceKeys        []string `yaml:"priceKeys" toml:"priceKeys"`
	StayMode         string   `yaml:"stayMode" toml:"stayMode"`
}

// OutputConfig defines output options.
type OutputConfig struct {
	Format       string `yaml:"format" toml:"format"`             // json, yaml or ics (default: json)
	DefaultDir   string `yaml:"defaultDir" toml:"defaultDir"`     // empty = next to the source
	HTML         bool   `yaml:"html" toml:"html"`                 // render passthrough blocks
	Pretty       bool   `yaml:"pretty" toml:"pretty"`             // indent JSON
	CalendarName string `yaml:"calendarName" toml:"calendarName"` // X-WR-CALNAME for ics
}

// StatsConfig defines the conversion used by the stats command.
type StatsConfig struct {
	Target string            `yaml:"target" toml:"target"`
	Rates  map[string]string `yaml:"rates" toml:"rates"`
}

// WatchConfig defines watch mode options.
type WatchConfig struct {
	DebounceMS int `yaml:"debounceMs" toml:"debounceMs"`
}

// Validate checks field lengths and enumerations. Policy values are checked
// when the policy is built, see ApplyPolicy.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.calendarName", c.Output.CalendarName, MaxNameLength); err != nil {
		return err
	}
	for i, s := range c.Policy.AllowURLSchemes {
		if err := validateFieldLength(fmt.Sprintf("policy.allowUrlSchemes[%d]", i), s, MaxSchemeLength); err != nil {
			return err
		}
	}
	for i, k := range c.Policy.PriceKeys {
		if err := validateFieldLength(fmt.Sprintf("policy.priceKeys[%d]", i), k, MaxKeyLength); err != nil {
			return err
		}
	}

	err := validation.Errors{
		"output.format":   validation.Validate(c.Output.Format, validation.In(FormatJSON, FormatYAML, FormatICS)),
		"policy.stayMode": validation.Validate(c.Policy.StayMode, validation.In(string(frontmatter.StayModeDefault), string(frontmatter.StayModeHeader))),
		"watch.debounceMs": validation.Validate(c.Watch.DebounceMS,
			validation.Min(0), validation.Max(60000)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyPolicy returns base with the configured overrides applied and
// validated.
func (c *Config) ApplyPolicy(base policy.Policy) (policy.Policy, error) {
	p := base.Clone()
	pc := c.Policy
	if pc.AMHour != nil {
		p.AMHour = *pc.AMHour
	}
	if pc.PMHour != nil {
		p.PMHour = *pc.PMHour
	}
	if len(pc.AllowURLSchemes) > 0 {
		p.AllowURLSchemes = lower(pc.AllowURLSchemes)
	}
	if pc.TZFallback != "" {
		p.TZFallback = pc.TZFallback
	}
	if pc.CurrencyFallback != "" {
		p.CurrencyFallback = strings.ToUpper(pc.CurrencyFallback)
	}
	if len(pc.PriceKeys) > 0 {
		p.PriceKeys = append([]string(nil), pc.PriceKeys...)
	}
	if pc.StayMode != "" {
		p.StayMode = frontmatter.StayMode(pc.StayMode)
	}
	if err := p.Validate(); err != nil {
		return policy.Policy{}, err
	}
	return p, nil
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that keeps every built-in default.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Format: FormatJSON},
		Watch:  WatchConfig{DebounceMS: 200},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched by name in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = ResolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(configPath, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode picks the format from the file extension.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil
	}
	return yamlutil.UnmarshalStrict(data, cfg)
}

// ResolveConfigPath searches for a config file by name in the current
// directory and then in the user config directory, trying each extension.
func ResolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// SearchPaths returns the candidate paths for a config name, in search order.
func SearchPaths(name string) []string {
	paths := make([]string, 0, len(Extensions)*2)
	for _, ext := range Extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range Extensions {
			paths = append(paths, filepath.Join(dir, DirName, name+ext))
		}
	}
	return paths
}
