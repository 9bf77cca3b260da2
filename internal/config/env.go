package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "XDOCS_"

// Environment variable names.
const (
	EnvInput          = EnvPrefix + "INPUT"
	EnvOutput         = EnvPrefix + "OUTPUT"
	EnvTheme          = EnvPrefix + "THEME"
	EnvGTag           = EnvPrefix + "GTAG"
	EnvDomain         = EnvPrefix + "DOMAIN"
	EnvCacheBust      = EnvPrefix + "CACHE_BUST"
	EnvMinify         = EnvPrefix + "MINIFY"
	EnvSass           = EnvPrefix + "SASS"
	EnvMetricsFile    = EnvPrefix + "METRICS_FILE"
	EnvJournal        = EnvPrefix + "JOURNAL"
	EnvNATSURL        = EnvPrefix + "NATS_URL"
	EnvNATSSubject    = EnvPrefix + "NATS_SUBJECT"
	EnvDebounce       = EnvPrefix + "DEBOUNCE"
	EnvPeriod         = EnvPrefix + "PERIOD"
	EnvPort           = EnvPrefix + "PORT"
	EnvSitemapExclude = EnvPrefix + "SITEMAP_EXCLUDE"
	EnvLogLevel       = EnvPrefix + "LOG_LEVEL"
)

// envFiles are loaded in order; variables already present in the process
// environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads .env and .env.local from the working directory when present.
func LoadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", slog.String("path", name), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("path", name))
	}
}

// FromEnv reads the XDOCS_* variables through lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg.Input = get(EnvInput)
	cfg.Output = get(EnvOutput)
	cfg.Theme = get(EnvTheme)
	cfg.GTag = get(EnvGTag)
	cfg.Domain = get(EnvDomain)
	cfg.CacheBust = get(EnvCacheBust)
	cfg.Sass = get(EnvSass)
	cfg.MetricsFile = get(EnvMetricsFile)
	cfg.Journal = get(EnvJournal)
	cfg.NATSURL = get(EnvNATSURL)
	cfg.NATSSubject = get(EnvNATSSubject)

	if v := get(EnvMinify); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvMinify, err)
		}
		cfg.Minify = b
	}
	for key, dst := range map[string]*time.Duration{EnvDebounce: &cfg.Debounce, EnvPeriod: &cfg.Period} {
		if v := get(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	if v := get(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Port = port
	}
	if v := get(EnvSitemapExclude); v != "" {
		for _, pattern := range strings.Split(v, ",") {
			if p := strings.TrimSpace(pattern); p != "" {
				cfg.SitemapExclude = append(cfg.SitemapExclude, p)
			}
		}
	}
	return cfg, nil
}
