package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/monishjocata/Vendor-Check/internal/model"
)

const (
	DefaultConfigPath = ".vendor-check.yml"

	envSource      = "VENDOR_CHECK_SRC"
	envFormat      = "VENDOR_CHECK_FORMAT"
	envOutput      = "VENDOR_CHECK_OUTPUT"
	envExcludes    = "VENDOR_CHECK_EXCLUDE"
	envExtensions  = "VENDOR_CHECK_EXTENSIONS"
	envWorkers     = "VENDOR_CHECK_WORKERS"
	envSplit       = "VENDOR_CHECK_SPLIT"
	envMinSeverity = "VENDOR_CHECK_MIN_SEVERITY"
	envFailOn      = "VENDOR_CHECK_FAIL_ON"
	envDisable     = "VENDOR_CHECK_DISABLE"
	envDebug       = "VENDOR_CHECK_DEBUG"

	maxWorkers = 256
)

var formats = map[string]struct{}{"console": {}, "json": {}, "sarif": {}}

// Loader merges configuration coming from files, environment variables, and CLI flags.
type Loader struct {
	ConfigPath string
}

// CustomDefect is a catalog entry declared in the config file. Exactly one
// of Contains or Regex backs its matcher.
type CustomDefect struct {
	ID          string   `yaml:"id"`
	Category    string   `yaml:"category"`
	Severity    string   `yaml:"severity"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Contains    []string `yaml:"contains"`
	Regex       string   `yaml:"regex"`
}

// Definition converts c into a catalog row.
func (c CustomDefect) Definition() model.DefectDefinition {
	return model.DefectDefinition{
		ID:          c.ID,
		Category:    model.Category(c.Category),
		Title:       c.Title,
		Description: c.Description,
		Severity:    model.Severity(c.Severity),
	}
}

// RuntimeConfig contains the fully merged settings for a scan.
type RuntimeConfig struct {
	Source      string
	Format      string
	Output      string
	Excludes    []string
	Extensions  []string
	Workers     int
	Split       bool
	MinSeverity model.Severity
	FailOn      model.Severity
	Disabled    []string
	Custom      []CustomDefect
	Debug       bool
}

// Overrides captures values coming from the file, env vars or CLI flags.
type Overrides struct {
	Source      string
	Format      string
	Output      string
	Excludes    []string
	Extensions  []string
	Workers     int
	WorkersSet  bool
	Split       *bool
	MinSeverity string
	FailOn      string
	Disabled    []string
	Custom      []CustomDefect
	Debug       *bool
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Source:      ".",
		Format:      "console",
		Excludes:    []string{".git", "vendor", "node_modules", "__pycache__"},
		Extensions:  []string{"py", "go", "js", "ts", "java", "php", "rb"},
		Workers:     10,
		Split:       true,
		MinSeverity: model.SeverityInfo,
	}
}

// Load resolves the final runtime configuration: defaults, then the config
// file, then the environment, then override.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		cfg.apply(fileOv)
	} else if l.ConfigPath != "" {
		return cfg, fmt.Errorf("config file %s not found", l.ConfigPath)
	}

	env, err := overridesFromEnv()
	if err != nil {
		return cfg, err
	}
	cfg.apply(env)
	cfg.apply(override)

	return cfg, nil
}

// Validate reports every problem in the config at once.
func (c RuntimeConfig) Validate() error {
	var err error
	if strings.TrimSpace(c.Source) == "" {
		err = multierr.Append(err, errors.New("source path cannot be empty"))
	}
	if _, ok := formats[c.Format]; !ok {
		err = multierr.Append(err, fmt.Errorf("unknown format %q (want console, json or sarif)", c.Format))
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		err = multierr.Append(err, fmt.Errorf("workers must be between 1 and %d (got %d)", maxWorkers, c.Workers))
	}
	if !c.MinSeverity.Valid() {
		err = multierr.Append(err, fmt.Errorf("unknown min severity %q", c.MinSeverity))
	}
	if c.FailOn != "" && !c.FailOn.Valid() {
		err = multierr.Append(err, fmt.Errorf("unknown fail-on severity %q", c.FailOn))
	}

	seen := make(map[string]struct{})
	for i, d := range c.Custom {
		name := d.ID
		if name == "" {
			name = "#" + strconv.Itoa(i+1)
			err = multierr.Append(err, fmt.Errorf("custom defect %s: id cannot be empty", name))
		}
		if _, dup := seen[d.ID]; dup && d.ID != "" {
			err = multierr.Append(err, fmt.Errorf("custom defect %s: declared twice", name))
		}
		seen[d.ID] = struct{}{}
		if strings.TrimSpace(d.Title) == "" {
			err = multierr.Append(err, fmt.Errorf("custom defect %s: title cannot be empty", name))
		}
		if !model.Category(d.Category).Valid() {
			err = multierr.Append(err, fmt.Errorf("custom defect %s: unknown category %q", name, d.Category))
		}
		if !model.Severity(d.Severity).Valid() {
			err = multierr.Append(err, fmt.Errorf("custom defect %s: unknown severity %q", name, d.Severity))
		}
		switch {
		case len(d.Contains) == 0 && d.Regex == "":
			err = multierr.Append(err, fmt.Errorf("custom defect %s: needs contains or regex", name))
		case len(d.Contains) > 0 && d.Regex != "":
			err = multierr.Append(err, fmt.Errorf("custom defect %s: contains and regex are exclusive", name))
		case d.Regex != "":
			if _, reErr := regexp.Compile(d.Regex); reErr != nil {
				err = multierr.Append(err, fmt.Errorf("custom defect %s: %w", name, reErr))
			}
		}
	}
	return err
}

func (c *RuntimeConfig) apply(src Overrides) {
	if src.Source != "" {
		c.Source = src.Source
	}
	if src.Format != "" {
		c.Format = strings.ToLower(src.Format)
	}
	if src.Output != "" {
		c.Output = src.Output
	}
	if len(src.Excludes) > 0 {
		c.Excludes = cleanList(src.Excludes)
	}
	if len(src.Extensions) > 0 {
		c.Extensions = cleanList(src.Extensions)
	}
	if src.WorkersSet {
		c.Workers = src.Workers
	}
	if src.Split != nil {
		c.Split = *src.Split
	}
	if src.MinSeverity != "" {
		c.MinSeverity = model.Severity(strings.ToLower(src.MinSeverity))
	}
	if src.FailOn != "" {
		c.FailOn = model.Severity(strings.ToLower(src.FailOn))
	}
	if len(src.Disabled) > 0 {
		c.Disabled = append(c.Disabled, cleanList(src.Disabled)...)
	}
	if len(src.Custom) > 0 {
		c.Custom = append(c.Custom, src.Custom...)
	}
	if src.Debug != nil {
		c.Debug = *src.Debug
	}
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		Source        string         `yaml:"source"`
		Format        string         `yaml:"format"`
		Output        string         `yaml:"output"`
		Exclude       stringList     `yaml:"exclude"`
		Extensions    stringList     `yaml:"extensions"`
		Workers       *int           `yaml:"workers"`
		Split         *bool          `yaml:"split"`
		MinSeverity   string         `yaml:"minSeverity"`
		FailOn        string         `yaml:"failOn"`
		Disable       stringList     `yaml:"disable"`
		CustomDefects []CustomDefect `yaml:"customDefects"`
		Debug         *bool          `yaml:"debug"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		Source:      raw.Source,
		Format:      raw.Format,
		Output:      raw.Output,
		Excludes:    raw.Exclude,
		Extensions:  raw.Extensions,
		Split:       raw.Split,
		MinSeverity: raw.MinSeverity,
		FailOn:      raw.FailOn,
		Disabled:    raw.Disable,
		Custom:      raw.CustomDefects,
		Debug:       raw.Debug,
	}
	if raw.Workers != nil {
		over.Workers = *raw.Workers
		over.WorkersSet = true
	}
	return over, nil
}

func overridesFromEnv() (Overrides, error) {
	ov := Overrides{
		Source:      os.Getenv(envSource),
		Format:      os.Getenv(envFormat),
		Output:      os.Getenv(envOutput),
		Excludes:    ParseList(os.Getenv(envExcludes)),
		Extensions:  ParseList(os.Getenv(envExtensions)),
		MinSeverity: os.Getenv(envMinSeverity),
		FailOn:      os.Getenv(envFailOn),
		Disabled:    ParseList(os.Getenv(envDisable)),
	}

	if value := os.Getenv(envWorkers); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return ov, fmt.Errorf("%s: %w", envWorkers, err)
		}
		ov.Workers = parsed
		ov.WorkersSet = true
	}
	if value := os.Getenv(envSplit); value != "" {
		parsed := parseBool(value)
		ov.Split = &parsed
	}
	if value := os.Getenv(envDebug); value != "" {
		parsed := parseBool(value)
		ov.Debug = &parsed
	}
	return ov, nil
}

func parseBool(value string) bool {
	return strings.EqualFold(value, "true") || value == "1"
}

// ParseList splits comma, space or newline separated input.
func ParseList(input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\r'
	})
	return cleanList(parts)
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// stringList enables YAML fields that can be specified as a scalar or sequence.
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*s = cleanList(out)
	case yaml.ScalarNode:
		*s = ParseList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for list")
	}
	return nil
}
