// Package config loads agenda settings from ~/.agenda/config.yaml and
// AGENDA_* environment variables. Environment values win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexanderramin/agenda/internal/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// TemplatesDir holds agenda template JSON files.
	TemplatesDir string `yaml:"templates_dir"`

	// WorkHoursStart and WorkHoursEnd bound auto-scheduling, as "HH:MM".
	WorkHoursStart string `yaml:"work_hours_start"`
	WorkHoursEnd   string `yaml:"work_hours_end"`

	// Timezone names the IANA zone work hours and CLI times are read in.
	// Empty means the system zone.
	Timezone string `yaml:"timezone,omitempty"`

	// DefaultDurationMin is the minimum length auto-scheduling gives a child.
	DefaultDurationMin int `yaml:"default_duration_min"`

	// HistoryLimit caps the undo stack of each event.
	HistoryLimit int `yaml:"history_limit"`

	// AutosaveDelayMs is the quiet period before reorders are saved.
	AutosaveDelayMs int `yaml:"autosave_delay_ms"`

	// Actor is recorded as the completer of milestones.
	Actor string `yaml:"actor"`

	// LogUseCases writes one structured log line per service call to stderr.
	LogUseCases bool `yaml:"log_use_cases"`
}

// Dir returns the per-user agenda directory, ~/.agenda.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".agenda"), nil
}

// DefaultPath returns AGENDA_CONFIG or ~/.agenda/config.yaml.
func DefaultPath() (string, error) {
	if v := os.Getenv("AGENDA_CONFIG"); v != "" {
		return v, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns the built-in settings rooted at dir.
func DefaultConfig(dir string) *Config {
	return &Config{
		DBPath:             filepath.Join(dir, "agenda.db"),
		TemplatesDir:       filepath.Join(dir, "templates"),
		WorkHoursStart:     "09:00",
		WorkHoursEnd:       "17:00",
		DefaultDurationMin: 30,
		HistoryLimit:       50,
		AutosaveDelayMs:    1000,
	}
}

// Normalize fills zero values from defaults so partial files behave.
func (c *Config) Normalize(dir string) {
	def := DefaultConfig(dir)
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.TemplatesDir == "" {
		c.TemplatesDir = def.TemplatesDir
	}
	if c.WorkHoursStart == "" {
		c.WorkHoursStart = def.WorkHoursStart
	}
	if c.WorkHoursEnd == "" {
		c.WorkHoursEnd = def.WorkHoursEnd
	}
	if c.DefaultDurationMin <= 0 {
		c.DefaultDurationMin = def.DefaultDurationMin
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.AutosaveDelayMs <= 0 {
		c.AutosaveDelayMs = def.AutosaveDelayMs
	}
}

// Load reads the YAML file at path. A missing file yields the defaults.
// Relative paths inside the file are resolved against dir.
func Load(path, dir string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(dir), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize(dir)
	return &cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from AGENDA_* variables. Invalid numbers are
// ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("AGENDA_DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("AGENDA_TEMPLATES"); v != "" {
		c.TemplatesDir = v
	}
	if v := getenv("AGENDA_WORK_HOURS_START"); v != "" {
		c.WorkHoursStart = v
	}
	if v := getenv("AGENDA_WORK_HOURS_END"); v != "" {
		c.WorkHoursEnd = v
	}
	if v := getenv("AGENDA_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := getenv("AGENDA_DEFAULT_DURATION_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DefaultDurationMin = n
		}
	}
	if v := getenv("AGENDA_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HistoryLimit = n
		}
	}
	if v := getenv("AGENDA_AUTOSAVE_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AutosaveDelayMs = n
		}
	}
	if v := getenv("AGENDA_ACTOR"); v != "" {
		c.Actor = v
	}
	if v := getenv("AGENDA_LOG_USE_CASES"); v != "" {
		c.LogUseCases, _ = strconv.ParseBool(v)
	}
}

// LoadConfig reads the default config file and applies the environment.
func LoadConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := Load(path, dir)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if cfg.Actor == "" {
		cfg.Actor = os.Getenv("USER")
	}
	return cfg, nil
}

// Scheduler converts the work-hour settings for auto-scheduling.
func (c *Config) Scheduler() (scheduler.Config, error) {
	start, err := parseClock(c.WorkHoursStart)
	if err != nil {
		return scheduler.Config{}, fmt.Errorf("work_hours_start: %w", err)
	}
	end, err := parseClock(c.WorkHoursEnd)
	if err != nil {
		return scheduler.Config{}, fmt.Errorf("work_hours_end: %w", err)
	}
	if end <= start {
		return scheduler.Config{}, fmt.Errorf("work hours end %s is not after start %s", c.WorkHoursEnd, c.WorkHoursStart)
	}
	loc, err := c.Location()
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{
		WorkHoursStart:         start,
		WorkHoursEnd:           end,
		DefaultDurationMinutes: c.DefaultDurationMin,
		Location:               loc,
	}, nil
}

// Location resolves Timezone, falling back to the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AutosaveDelay returns the reorder debounce as a duration.
func (c *Config) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMs) * time.Millisecond
}

// parseClock converts "HH:MM" to minutes after midnight. "24:00" is
// accepted as the end of the day.
func parseClock(s string) (int, error) {
	if s == "24:00" {
		return 24 * 60, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q (want HH:MM)", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
