// Package config holds the importer settings and the rules for loading and
// validating them. Sources apply in increasing precedence: Defaults, a JSON
// file (LoadFile), ELBIMPORT_* environment variables (ApplyEnv), and finally
// command-line flags applied by cmd/elbimport.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"elbimport/internal/schema"
)

// Malformed line policies.
const (
	OnErrorAbort = "abort"
	OnErrorSkip  = "skip"
)

// StorageKinds are the backends cmd/elbimport registers.
var StorageKinds = []string{"mysql", "sqlite", "postgres", "mssql", "dryrun"}

// Config is one import run.
type Config struct {
	Dir   string `json:"dir"`
	Table string `json:"table"`

	// MySQL connection parts, used when Storage is mysql and DSN is empty.
	Database string `json:"db"`
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`

	Storage string `json:"storage"`
	DSN     string `json:"dsn,omitempty"`

	Create bool `json:"create"`
	Drop   bool `json:"drop"`

	Timezone   string `json:"timezone"`
	StrictTime bool   `json:"strict_time"`
	OnError    string `json:"on_error"`
	LazyQuotes bool   `json:"lazy_quotes"`

	// Fields overrides the default ELB column model.
	Fields []schema.FieldSpec `json:"fields,omitempty"`

	MetricsBackend string `json:"metrics_backend"`
	MetricsTags    string `json:"metrics_tags,omitempty"`
}

// Defaults returns the settings used when nothing else is given.
func Defaults() Config {
	return Config{
		Host:           "localhost",
		Storage:        "mysql",
		Timezone:       "UTC",
		OnError:        OnErrorAbort,
		MetricsBackend: "none",
	}
}

// LoadFile overlays the JSON file at path onto Defaults. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. An empty path tries
// ".env" and ignores its absence.
func LoadEnvFile(path string) error {
	optional := path == ""
	if optional {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// EnvPrefix prefixes every environment variable ApplyEnv reads.
const EnvPrefix = "ELBIMPORT_"

// ApplyEnv overlays ELBIMPORT_* variables found through lookup (normally
// os.LookupEnv). Malformed booleans are errors.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"DIR", &cfg.Dir},
		{"TABLE", &cfg.Table},
		{"DB", &cfg.Database},
		{"HOST", &cfg.Host},
		{"USER", &cfg.User},
		{"PASSWORD", &cfg.Password},
		{"STORAGE", &cfg.Storage},
		{"DSN", &cfg.DSN},
		{"TIMEZONE", &cfg.Timezone},
		{"ON_ERROR", &cfg.OnError},
		{"METRICS_BACKEND", &cfg.MetricsBackend},
		{"METRICS_TAGS", &cfg.MetricsTags},
	}
	for _, s := range strs {
		if v, ok := lookup(EnvPrefix + s.key); ok {
			*s.dst = v
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"CREATE", &cfg.Create},
		{"DROP", &cfg.Drop},
		{"STRICT_TIME", &cfg.StrictTime},
		{"LAZY_QUOTES", &cfg.LazyQuotes},
	}
	for _, b := range bools {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %s%s=%q: %w", EnvPrefix, b.key, v, err)
		}
		*b.dst = parsed
	}
	return nil
}

// Normalize trims and lower-cases enumerations and makes Drop imply Create.
func (c *Config) Normalize() {
	c.Dir = strings.TrimSpace(c.Dir)
	c.Table = strings.TrimSpace(c.Table)
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	c.OnError = strings.ToLower(strings.TrimSpace(c.OnError))
	c.MetricsBackend = strings.ToLower(strings.TrimSpace(c.MetricsBackend))
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Drop {
		c.Create = true
	}
}

// Location resolves Timezone; empty means UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Model returns the column model: Fields when set, otherwise schema.ELB().
func (c Config) Model() (*schema.FieldModel, error) {
	if len(c.Fields) == 0 {
		return schema.ELB(), nil
	}
	return schema.NewFieldModel(c.Fields...)
}
