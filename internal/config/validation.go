package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/xdocs/internal/assets"
	"git.home.luguber.info/inful/xdocs/internal/errors"
)

// Command names the operation a configuration is validated for.
type Command string

const (
	CommandGenerate Command = "generate"
	CommandWatch    Command = "watch"
	CommandSitemap  Command = "sitemap"
)

// User-facing messages for missing required settings.
const (
	MsgMissingInput  = "Необхідно вказати шлях до документації параметром --вхід="
	MsgMissingOutput = "Необхідно вказати шлях до вихідної папки параметром --вихід="
	MsgMissingDomain = "Необхідно вказати домен сайту параметром --домен="
	MsgMissingTheme  = "Необхідно вказати шлях до теми параметром --вигляд="
)

// Validate checks that cfg carries everything command needs.
func (c Config) Validate(command Command) error {
	switch command {
	case CommandGenerate, CommandWatch:
		if c.Input == "" {
			return errors.ConfigError(MsgMissingInput).Build()
		}
		if c.Output == "" {
			return errors.ConfigError(MsgMissingOutput).Build()
		}
		if c.Theme == "" {
			return errors.ConfigError(MsgMissingTheme).Build()
		}
		if _, err := assets.ParseCacheBust(c.CacheBust); err != nil {
			return errors.ConfigError(fmt.Sprintf("Невідомий режим кешування %q параметра --кеш= (none, time, fingerprint, git)", c.CacheBust)).
				WithCause(err).
				Build()
		}
	case CommandSitemap:
		if c.Output == "" {
			return errors.ConfigError(MsgMissingOutput).Build()
		}
		if c.Domain == "" {
			return errors.ConfigError(MsgMissingDomain).Build()
		}
		for _, pattern := range c.SitemapExclude {
			if !doublestar.ValidatePattern(pattern) {
				return errors.ConfigError(fmt.Sprintf("Некоректний шаблон виключення %q", pattern)).Build()
			}
		}
	default:
		return errors.InternalError(fmt.Sprintf("unknown command %q", command)).Build()
	}

	if command == CommandWatch {
		if c.Debounce < 0 || c.Period < 0 {
			return errors.ConfigError("Інтервали --затримка= та --період= не можуть бути від'ємними").Build()
		}
		if c.Port < 0 || c.Port > 65535 {
			return errors.ConfigError(fmt.Sprintf("Некоректний порт %d параметра --порт=", c.Port)).Build()
		}
	}
	return nil
}
