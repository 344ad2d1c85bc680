package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gyeh/gaexport/internal/model"
	"github.com/gyeh/gaexport/internal/normalize"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a gaexport run.
type Config struct {
	CredentialsFile string
	OutputDir       string
	LogFormat       string // "text" or "json"
	LogFile         string // empty means <OutputDir>/analytics.log
	ConfigFile      string
	StartDate       string // YYYY-MM-DD; empty means today
	EndDate         string // YYYY-MM-DD; empty means StartDate
	Only            []string
	DSN             string // optional postgres sink
	WriteParquet    bool
	Endpoint        string // reporting API endpoint override

	Scope         string
	DateDimension string
	PageSize      int64
	MaxPages      int
	Properties    []model.Property
	Dimensions    []string
	Metrics       []string
}

// yamlConfig is the on-disk YAML structure. Omitted keys keep their defaults.
type yamlConfig struct {
	Scope         string           `yaml:"scope"`
	DateDimension string           `yaml:"date_dimension"`
	PageSize      int64            `yaml:"page_size"`
	MaxPages      int              `yaml:"max_pages"`
	Properties    []model.Property `yaml:"properties"`
	Dimensions    []string         `yaml:"dimensions"`
	Metrics       []string         `yaml:"metrics"`
}

// Default returns a Config carrying the built-in properties, field lists
// and paging limits.
func Default() Config {
	return Config{
		CredentialsFile: filepath.Join("credentials", "client_secrets.json"),
		OutputDir:       "output",
		LogFormat:       "text",
		Scope:           model.ReadonlyScope,
		DateDimension:   model.DateDimension,
		PageSize:        100000,
		MaxPages:        1000,
		Properties:      model.DefaultProperties(),
		Dimensions:      model.DefaultDimensions(),
		Metrics:         model.DefaultMetrics(),
	}
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if yc.Scope != "" {
		c.Scope = yc.Scope
	}
	if yc.DateDimension != "" {
		c.DateDimension = yc.DateDimension
	}
	if yc.PageSize != 0 {
		c.PageSize = yc.PageSize
	}
	if yc.MaxPages != 0 {
		c.MaxPages = yc.MaxPages
	}
	if len(yc.Properties) > 0 {
		c.Properties = yc.Properties
	}
	if len(yc.Dimensions) > 0 {
		c.Dimensions = yc.Dimensions
	}
	if len(yc.Metrics) > 0 {
		c.Metrics = yc.Metrics
	}
	return c.validateFields()
}

// validateFields checks the property and field lists and normalizes view ids.
func (c *Config) validateFields() error {
	if len(c.Properties) == 0 {
		return fmt.Errorf("no properties configured")
	}
	seen := make(map[string]bool, len(c.Properties))
	dirs := make(map[string]string, len(c.Properties))
	for i, p := range c.Properties {
		if !normalize.IsViewID(p.ID) {
			return fmt.Errorf("property %d: invalid view id %q", i+1, p.ID)
		}
		id := normalize.ViewID(p.ID)
		dir := normalize.DirName(p.Label)
		if dir == "" {
			return fmt.Errorf("property %s: invalid label %q", id, p.Label)
		}
		if seen[id] {
			return fmt.Errorf("property %s listed twice", id)
		}
		if other, ok := dirs[dir]; ok {
			return fmt.Errorf("properties %s and %s both write to directory %q", other, id, dir)
		}
		seen[id] = true
		dirs[dir] = id
		c.Properties[i].ID = id
	}

	if len(c.Dimensions) == 0 || len(c.Metrics) == 0 {
		return fmt.Errorf("at least one dimension and one metric are required")
	}
	hasDate := false
	for _, d := range c.Dimensions {
		if d == c.DateDimension {
			hasDate = true
			break
		}
	}
	if !hasDate {
		return fmt.Errorf("date dimension %q must be one of the dimensions %v", c.DateDimension, c.Dimensions)
	}
	if c.PageSize <= 0 || c.MaxPages <= 0 {
		return fmt.Errorf("page_size and max_pages must be positive")
	}
	return nil
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("--output-dir is required")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("--log-format must be text or json, got %q", c.LogFormat)
	}
	if err := c.validateFields(); err != nil {
		return err
	}
	for _, key := range c.Only {
		if _, ok := model.PropertyByKey(c.Properties, key); ok {
			continue
		}
		if id := keyViewID(key); id != "" {
			if _, ok := model.PropertyByKey(c.Properties, id); ok {
				continue
			}
		}
		return fmt.Errorf("unknown property %q", key)
	}
	_, _, err := c.DateRange(time.Now())
	return err
}

// ValidateWithCredentials checks the config and that the key file exists.
func (c *Config) ValidateWithCredentials() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.CredentialsFile == "" {
		return fmt.Errorf("--credentials or GAEXPORT_CREDENTIALS is required")
	}
	if _, err := os.Stat(c.CredentialsFile); err != nil {
		return fmt.Errorf("credentials file not accessible: %w", err)
	}
	return nil
}

// DateRange resolves the inclusive export range. Without flags it is the
// single calendar day of now.
func (c *Config) DateRange(now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	start := today
	if c.StartDate != "" {
		t, err := time.Parse(time.DateOnly, c.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--start-date: %w", err)
		}
		start = t
	}
	end := start
	if c.EndDate != "" {
		t, err := time.Parse(time.DateOnly, c.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--end-date: %w", err)
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return start, end, nil
}

// SelectedProperties returns the properties to export in configured order,
// restricted to Only when it is set.
func (c *Config) SelectedProperties() []model.Property {
	if len(c.Only) == 0 {
		return append([]model.Property(nil), c.Properties...)
	}
	want := make(map[string]bool, len(c.Only))
	for _, key := range c.Only {
		want[key] = true
		if id := keyViewID(key); id != "" {
			want[id] = true
		}
	}
	var out []model.Property
	for _, p := range c.Properties {
		if want[p.ID] || want[p.Label] {
			out = append(out, p)
		}
	}
	return out
}

// keyViewID returns the normalized view id for a --property key written as
// one, or "" when the key can only be a label.
func keyViewID(key string) string {
	if !normalize.IsViewID(key) {
		return ""
	}
	return normalize.ViewID(key)
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.OutputDir, "analytics.log")
}
