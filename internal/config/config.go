package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyPath = errors.New("config path is empty")
	ErrNilConfig = errors.New("config is nil")
)

// SnapshotConfig controls the periodic PNG capture of the /calendar page.
type SnapshotConfig struct {
	// Cron is a standard 5-field schedule. Empty disables snapshots.
	Cron string `yaml:"cron" json:"cron" validate:"omitempty,cron"`
	// URL defaults to http://<listen>/calendar.
	URL    string `yaml:"url,omitempty" json:"url,omitempty" validate:"omitempty,url"`
	Output string `yaml:"output" json:"output"`
	Width  int    `yaml:"width" json:"width" validate:"gte=0"`
	Height int    `yaml:"height" json:"height" validate:"gte=0"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the calendar UI and API.
	Listen string `yaml:"listen" json:"listen" validate:"required,hostname_port"`

	// Timezone is the IANA zone in which calendar days are counted.
	Timezone string `yaml:"timezone" json:"timezone" validate:"required,timezone"`

	// WeekStart is the weekday of the first grid column: "sunday" (default)
	// or "monday".
	WeekStart string `yaml:"week_start" json:"week_start" validate:"oneof=sunday monday"`

	// Locale selects display strings: "ko_KR" (default) or "en_US".
	Locale string `yaml:"locale" json:"locale" validate:"oneof=ko_KR en_US"`

	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	// Rollover resets the screen to today on this schedule. Empty disables it.
	Rollover string `yaml:"rollover" json:"rollover" validate:"omitempty,cron"`

	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// Metrics exposes /metrics.
	Metrics bool `yaml:"metrics" json:"metrics"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// envOverrides mirrors the MEDCAL_* variables. Empty values are ignored.
type envOverrides struct {
	Listen    string `envconfig:"LISTEN"`
	Timezone  string `envconfig:"TIMEZONE"`
	WeekStart string `envconfig:"WEEK_START"`
	Locale    string `envconfig:"LOCALE"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTimezone = "Asia/Seoul"
	defaultRollover = "0 0 * * *"
	defaultOutput   = "/var/lib/medcal/preview.png"
	defaultWidth    = 390
	defaultHeight   = 844
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    defaultListen,
		Timezone:  defaultTimezone,
		WeekStart: "sunday",
		Locale:    "ko_KR",
		LogLevel:  "info",
		Rollover:  defaultRollover,
		Snapshot: SnapshotConfig{
			Output: defaultOutput,
			Width:  defaultWidth,
			Height: defaultHeight,
		},
		Metrics: true,
	}
}

// Normalize fills missing or unknown values with defaults so that partial
// config files still work.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch c.WeekStart {
	case "sunday", "monday":
	default:
		c.WeekStart = "sunday"
	}
	switch c.Locale {
	case "ko_KR", "en_US":
	default:
		c.Locale = "ko_KR"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.Snapshot.Output == "" {
		c.Snapshot.Output = defaultOutput
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = defaultWidth
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = defaultHeight
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		c.BasicAuth = nil
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field formats (listen address, zone name, cron specs).
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from MEDCAL_* environment variables.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process("medcal", &env); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	if env.Listen != "" {
		c.Listen = env.Listen
	}
	if env.Timezone != "" {
		c.Timezone = env.Timezone
	}
	if env.WeekStart != "" {
		c.WeekStart = env.WeekStart
	}
	if env.Locale != "" {
		c.Locale = env.Locale
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday maps WeekStart to a time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Load reads the YAML config at path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is decoded and normalized.
//
// Env overrides and validation are left to the caller (see ApplyEnv and
// Validate) so that a broken environment does not rewrite the file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return ErrNilConfig
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

	tmp, err := os.CreateTemp(dir, ".medcal-config-*.tmp")
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
