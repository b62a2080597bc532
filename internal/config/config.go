package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

// Config is the top-level application configuration.
type Config struct {
	// Data is where quarter files live: an http(s) base URL
	// ("https://example.com/data") or a local directory ("./data").
	Data string `yaml:"data" json:"data"`

	// MinDate is the earliest date the calendar can be moved to (YYYY-MM-DD).
	MinDate string `yaml:"min_date" json:"min_date"`

	// WeekStart controls which weekday opens a week row. Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// Timezone is the IANA zone used to decide what "today" is.
	Timezone string `yaml:"timezone" json:"timezone"`

	// PageSize is the number of search results per page.
	PageSize int `yaml:"page_size" json:"page_size"`

	// MonthDayCap is the maximum number of events drawn in one month cell.
	MonthDayCap int `yaml:"month_day_cap" json:"month_day_cap"`

	// ListSeparator splits list columns (game, tags) inside one CSV field.
	// "," for the original schema, "|" for schema v2.
	ListSeparator string `yaml:"list_separator" json:"list_separator"`

	// FetchTimeout bounds a single quarter fetch. Zero disables the bound.
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	// Prefetch is a cron schedule for warming nearby quarters in
	// long-running sessions. Empty disables it.
	Prefetch string `yaml:"prefetch" json:"prefetch"`

	// Listen and DataDir configure the read-only data host (serve-data).
	Listen  string `yaml:"listen" json:"listen"`
	DataDir string `yaml:"data_dir" json:"data_dir"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data:          "./data",
		MinDate:       "2021-01-01",
		WeekStart:     "sunday",
		Timezone:      "Local",
		PageSize:      10,
		MonthDayCap:   3,
		ListSeparator: ",",
		FetchTimeout:  15 * time.Second,
		Prefetch:      "@hourly",
		Listen:        "127.0.0.1:8080",
		DataDir:       "./data",
		LogLevel:      "info",
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Data == "" {
		c.Data = def.Data
	}
	if _, err := time.Parse(DateLayout, c.MinDate); err != nil {
		c.MinDate = def.MinDate
	}
	switch c.WeekStart {
	case "sunday", "monday":
		// ok
	default:
		c.WeekStart = def.WeekStart
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.MonthDayCap < 0 {
		c.MonthDayCap = 0
	}
	if c.ListSeparator == "" {
		c.ListSeparator = def.ListSeparator
	}
	if c.FetchTimeout < 0 {
		c.FetchTimeout = 0
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// MinDateValue returns MinDate as a civil date (midnight UTC).
func (c *Config) MinDateValue() time.Time {
	t, err := time.Parse(DateLayout, c.MinDate)
	if err != nil {
		t, _ = time.Parse(DateLayout, DefaultConfig().MinDate)
	}
	return t
}

// WeekStartDay returns the configured first day of the week.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path, then applies
// environment overrides (a .env file in the working directory is
// honoured).
//
// Behavior:
//   - If path is empty or the file does not exist, defaults are used.
//     Nothing is written; see Save / "eventcal config init".
//   - If the file exists, it is unmarshalled over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// First run: defaults.
		default:
			return nil, err
		}
	}

	// Missing .env is the normal case.
	_ = godotenv.Load()
	applyEnv(cfg)

	cfg.Normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("EVENTCAL_DATA"); v != "" {
		cfg.Data = v
	}
	if v := os.Getenv("EVENTCAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EVENTCAL_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename, final mode 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
