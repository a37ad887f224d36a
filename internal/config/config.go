package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/titanous/json5"
)

const (
	BackendFile      = "file"
	BackendOverrides = "overrides"
)

const DefaultFile = "roofdb.json5"

type Config struct {
	Port         string `json:"port"`
	DataFile     string `json:"dataFile"`
	Marker       string `json:"exportMarker"`
	Backend      string `json:"backend"`
	OverridesDSN string `json:"overridesDsn"`
	AdminToken   string `json:"adminToken"`
	LogLevel     string `json:"logLevel"`
	LogDev       bool   `json:"logDev"`
	Watch        bool   `json:"watch"`
}

func Defaults() Config {
	return Config{
		Port:         "8080",
		DataFile:     "app/roofers/data/roofers.ts",
		Marker:       "export const rooferData",
		Backend:      BackendFile,
		OverridesDSN: "file:roofer-overrides.db?_pragma=busy_timeout(5000)",
		LogLevel:     "info",
	}
}

// Load builds the configuration from the defaults, then the config file at
// path and its .local sibling, then the environment. A missing config file
// is not an error. An empty path skips the files.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		fromFiles, err := ReadFiles(path)
		if err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}

		if err := mergo.Merge(&cfg, fromFiles, mergo.WithOverride); err != nil {
			return nil, errors.Wrap(err, "could not merge config files")
		}
	}

	// .env is optional
	_ = godotenv.Load()

	cfg.Port = getenv("ROOFDB_PORT", getenv("PORT", cfg.Port))
	cfg.DataFile = getenv("ROOFDB_DATA_FILE", cfg.DataFile)
	cfg.Marker = getenv("ROOFDB_EXPORT_MARKER", cfg.Marker)
	cfg.Backend = getenv("ROOFDB_BACKEND", cfg.Backend)
	cfg.OverridesDSN = getenv("ROOFDB_OVERRIDES_DSN", cfg.OverridesDSN)
	cfg.AdminToken = getenv("ROOFDB_ADMIN_TOKEN", cfg.AdminToken)
	cfg.LogLevel = getenv("ROOFDB_LOG_LEVEL", cfg.LogLevel)
	cfg.LogDev = getbool("ROOFDB_LOG_DEV", cfg.LogDev)
	cfg.Watch = getbool("ROOFDB_WATCH", cfg.Watch)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendOverrides:
	default:
		return errors.Errorf("unknown backend %q, expected %q or %q", c.Backend, BackendFile, BackendOverrides)
	}

	if c.DataFile == "" {
		return errors.New("data file is not configured")
	}

	if c.Backend == BackendOverrides && c.OverridesDSN == "" {
		return errors.New("overrides backend needs an overrides dsn")
	}

	return nil
}

// ReadFiles reads name and merges <name>.local.<ext> over it. It returns
// os.ErrNotExist when neither file exists.
func ReadFiles(name string) (Config, error) {
	var out Config
	found := false

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, errors.Wrapf(err, "could not read %s", name)
	}

	if len(base) > 0 {
		if err := json5.Unmarshal(base, &out); err != nil {
			return out, errors.Wrapf(err, "could not parse %s", name)
		}
		found = true
	}

	local := localName(name)
	override, err := os.ReadFile(local)
	if err != nil && !os.IsNotExist(err) {
		return out, errors.Wrapf(err, "could not read %s", local)
	}

	if len(override) > 0 {
		var o Config
		if err := json5.Unmarshal(override, &o); err != nil {
			return out, errors.Wrapf(err, "could not parse %s", local)
		}

		if err := mergo.Merge(&out, o, mergo.WithOverride); err != nil {
			return out, errors.Wrapf(err, "could not merge %s", local)
		}
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}

	return out, nil
}

func localName(name string) string {
	dir, file := filepath.Split(name)
	ext := filepath.Ext(file)
	return filepath.Join(dir, fmt.Sprintf("%s.local%s", strings.TrimSuffix(file, ext), ext))
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
