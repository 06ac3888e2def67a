// Package config resolves runtime settings from defaults, an optional YAML
// file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/aryannaik/sustainify/internal/store"
)

type Config struct {
	Env          string        `yaml:"env"`
	Port         string        `yaml:"port"`
	DataDir      string        `yaml:"data_dir"`
	StaticDir    string        `yaml:"static_dir"`
	Catalog      string        `yaml:"catalog"`
	Store        string        `yaml:"store"`
	PerPage      int           `yaml:"per_page"`
	Locale       string        `yaml:"locale"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

func Default() Config {
	return Config{
		Env:          "development",
		Port:         "8990",
		DataDir:      "data",
		StaticDir:    "static",
		Catalog:      "assets/data/products.json",
		Store:        store.BackendFile,
		PerPage:      6,
		Locale:       "en",
		FetchTimeout: 30 * time.Second,
	}
}

// Load builds the configuration. path may be empty; a missing .env is fine.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SUSTAINIFY_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("SUSTAINIFY_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SUSTAINIFY_STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("SUSTAINIFY_CATALOG"); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv("SUSTAINIFY_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("SUSTAINIFY_LOCALE"); v != "" {
		c.Locale = v
	}
	if n, err := strconv.Atoi(os.Getenv("SUSTAINIFY_PER_PAGE")); err == nil {
		c.PerPage = n
	}
	if d, err := time.ParseDuration(os.Getenv("SUSTAINIFY_FETCH_TIMEOUT")); err == nil {
		c.FetchTimeout = d
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case store.BackendFile, store.BackendSQLite, store.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("store must be one of file, sqlite, memory; got %q", c.Store))
	}
	if c.PerPage <= 0 {
		errs = append(errs, fmt.Errorf("per_page must be positive; got %d", c.PerPage))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	return errors.Join(errs...)
}

// Language returns the collation language for name sorting.
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
