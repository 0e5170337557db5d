// Package config loads console settings from a YAML file, an optional
// secret overlay and ZEFIT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultConfigPath   = "zefit.yaml"
	DefaultSecretPath   = "zefit.secret.yaml"
	DefaultAddr         = ":8080"
	DefaultDBDriver     = "sqlite"
	DefaultSQLiteDSN    = "zefit.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	DefaultTimeZone     = "Europe/Zagreb"
	DefaultUploadDir    = "uploads"
	DefaultCacheTTL     = 300
	DefaultSlowQueryMs  = 50
	DefaultSlowRequest  = 500
	DefaultReminderDays = 7
	EnvProduction       = "production"
)

// Config is the full console configuration.
type Config struct {
	Env      string `yaml:"env"`
	Addr     string `yaml:"addr"`
	TimeZone string `yaml:"time_zone"`

	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`

	Security struct {
		CSRFKey string `yaml:"csrf_key"` // 64 hex chars
	} `yaml:"security"`

	Email struct {
		ResendAPIKey string `yaml:"resend_api_key"`
		From         string `yaml:"from"`
		ReplyTo      string `yaml:"reply_to"`
	} `yaml:"email"`

	Uploads struct {
		Dir        string `yaml:"dir"`
		Cloudinary struct {
			CloudName string `yaml:"cloud_name"`
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
			Folder    string `yaml:"folder"`
		} `yaml:"cloudinary"`
	} `yaml:"uploads"`

	Cache struct {
		RedisURL   string `yaml:"redis_url"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`

	Perf struct {
		SlowQueryMs   int `yaml:"slow_query_ms"`
		SlowRequestMs int `yaml:"slow_request_ms"`
	} `yaml:"perf"`

	Packages struct {
		RejectOverlap bool `yaml:"reject_overlap"`
	} `yaml:"packages"`

	Reminders struct {
		WindowDays int `yaml:"window_days"`
	} `yaml:"reminders"`
}

// Default returns a configuration that runs locally with no files present.
func Default() *Config {
	c := &Config{Addr: DefaultAddr, TimeZone: DefaultTimeZone}
	c.Database.Driver = DefaultDBDriver
	c.Database.DSN = DefaultSQLiteDSN
	c.Admin.Email = "admin@zefit.local"
	c.Email.From = "ZeFit <noreply@zefit.local>"
	c.Uploads.Dir = DefaultUploadDir
	c.Cache.TTLSeconds = DefaultCacheTTL
	c.Perf.SlowQueryMs = DefaultSlowQueryMs
	c.Perf.SlowRequestMs = DefaultSlowRequest
	c.Reminders.WindowDays = DefaultReminderDays
	return c
}

// Load reads the environment-selected files and applies overrides.
// Outside production a .env file in the working directory is loaded first.
// PRE: none
// POST: Returns a validated configuration or the first error met
func Load() (*Config, error) {
	if os.Getenv("ZEFIT_ENV") != EnvProduction {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return LoadFiles(
		envOrDefault(os.Getenv, "ZEFIT_CONFIG", DefaultConfigPath),
		envOrDefault(os.Getenv, "ZEFIT_SECRET_CONFIG", DefaultSecretPath),
		os.Getenv,
	)
}

// LoadFiles builds a Config from defaults, path, secretPath and getenv.
// Missing files are skipped; malformed ones are errors.
// PRE: getenv is non-nil
// POST: Returns a validated configuration
func LoadFiles(path, secretPath string, getenv func(string) string) (*Config, error) {
	c := Default()
	for _, p := range []string{path, secretPath} {
		if err := overlayFile(c, p); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// overlayFile decodes p over c; keys absent from the file keep their value.
func overlayFile(c *Config, p string) error {
	if p == "" {
		return nil
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", p, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", p, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"ZEFIT_ENV", &c.Env},
		{"ZEFIT_ADDR", &c.Addr},
		{"ZEFIT_TZ", &c.TimeZone},
		{"ZEFIT_DB_DRIVER", &c.Database.Driver},
		{"ZEFIT_DB_DSN", &c.Database.DSN},
		{"ZEFIT_ADMIN_EMAIL", &c.Admin.Email},
		{"ZEFIT_ADMIN_PASSWORD", &c.Admin.Password},
		{"ZEFIT_CSRF_KEY", &c.Security.CSRFKey},
		{"ZEFIT_RESEND_API_KEY", &c.Email.ResendAPIKey},
		{"ZEFIT_EMAIL_FROM", &c.Email.From},
		{"ZEFIT_EMAIL_REPLY_TO", &c.Email.ReplyTo},
		{"ZEFIT_UPLOAD_DIR", &c.Uploads.Dir},
		{"ZEFIT_CLOUDINARY_CLOUD_NAME", &c.Uploads.Cloudinary.CloudName},
		{"ZEFIT_CLOUDINARY_API_KEY", &c.Uploads.Cloudinary.APIKey},
		{"ZEFIT_CLOUDINARY_API_SECRET", &c.Uploads.Cloudinary.APISecret},
		{"ZEFIT_CLOUDINARY_FOLDER", &c.Uploads.Cloudinary.Folder},
		{"ZEFIT_REDIS_URL", &c.Cache.RedisURL},
	}
	for _, s := range strs {
		*s.dst = envOrDefault(getenv, s.key, *s.dst)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"ZEFIT_CACHE_TTL_SECONDS", &c.Cache.TTLSeconds},
		{"ZEFIT_SLOW_QUERY_MS", &c.Perf.SlowQueryMs},
		{"ZEFIT_SLOW_REQUEST_MS", &c.Perf.SlowRequestMs},
		{"ZEFIT_REMINDER_WINDOW_DAYS", &c.Reminders.WindowDays},
	}
	for _, i := range ints {
		v := getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}

	if v := getenv("ZEFIT_REJECT_PACKAGE_OVERLAP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ZEFIT_REJECT_PACKAGE_OVERLAP: %w", err)
		}
		c.Packages.RejectOverlap = b
	}
	return nil
}

// Validate checks cross-field constraints.
// PRE: none
// POST: Returns nil when the configuration is usable
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("time_zone: %w", err)
	}
	if c.Reminders.WindowDays < 0 {
		return errors.New("reminders.window_days cannot be negative")
	}
	if c.IsProduction() && c.Admin.Password == "" {
		return errors.New("admin.password is required in production")
	}
	return nil
}

// IsProduction reports whether the console runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location returns the gym's time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CacheTTL returns the membership-type cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CloudinaryEnabled reports whether uploads go to Cloudinary instead of disk.
func (c *Config) CloudinaryEnabled() bool {
	cl := c.Uploads.Cloudinary
	return cl.CloudName != "" && cl.APIKey != "" && cl.APISecret != ""
}

func envOrDefault(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
