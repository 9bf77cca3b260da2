// Package config resolves the run configuration from command-line flags,
// XDOCS_* environment variables (optionally seeded from .env files), an
// optional YAML file and built-in defaults, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved run configuration.
type Config struct {
	Input  string `yaml:"вхід"`
	Output string `yaml:"вихід"`
	Theme  string `yaml:"вигляд"`
	GTag   string `yaml:"ґтег"`
	Domain string `yaml:"домен"`

	CacheBust string `yaml:"кеш"`
	Minify    bool   `yaml:"мінімізувати"`
	Sass      string `yaml:"sass"`

	MetricsFile string `yaml:"метрики"`
	Journal     string `yaml:"журнал"`
	NATSURL     string `yaml:"nats"`
	NATSSubject string `yaml:"nats_тема"`

	Debounce time.Duration `yaml:"затримка"`
	Period   time.Duration `yaml:"період"`
	Port     int           `yaml:"порт"`

	SitemapExclude []string `yaml:"мапа_виключення"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		CacheBust: "none",
		Sass:      "sass",
		Debounce:  300 * time.Millisecond,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Environment references
// (${VAR}) in the file are expanded before parsing.
func LoadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("configuration file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Merge overlays every non-zero field of o onto c.
func (c *Config) Merge(o Config) {
	setString(&c.Input, o.Input)
	setString(&c.Output, o.Output)
	setString(&c.Theme, o.Theme)
	setString(&c.GTag, o.GTag)
	setString(&c.Domain, o.Domain)
	setString(&c.CacheBust, o.CacheBust)
	setString(&c.Sass, o.Sass)
	setString(&c.MetricsFile, o.MetricsFile)
	setString(&c.Journal, o.Journal)
	setString(&c.NATSURL, o.NATSURL)
	setString(&c.NATSSubject, o.NATSSubject)
	if o.Minify {
		c.Minify = true
	}
	if o.Debounce != 0 {
		c.Debounce = o.Debounce
	}
	if o.Period != 0 {
		c.Period = o.Period
	}
	if o.Port != 0 {
		c.Port = o.Port
	}
	if len(o.SitemapExclude) > 0 {
		c.SitemapExclude = append([]string(nil), o.SitemapExclude...)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Resolve builds the configuration: defaults, then the YAML file (if any),
// then the environment, then flags.
func Resolve(configFile string, flags Config) (Config, error) {
	cfg := Defaults()
	if configFile != "" {
		if err := LoadFile(&cfg, configFile); err != nil {
			return cfg, err
		}
	}

	LoadEnvFiles()
	env, err := FromEnv(os.LookupEnv)
	if err != nil {
		return cfg, err
	}
	cfg.Merge(env)
	cfg.Merge(flags)
	return cfg, nil
}
