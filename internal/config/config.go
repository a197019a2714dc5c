package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	GitHub GitHubConfig `toml:"github"`
	Chat   ChatConfig   `toml:"chat"`
	Redis  RedisConfig  `toml:"redis"`
	Dedup  DedupConfig  `toml:"dedup"`
	Roster RosterConfig `toml:"roster"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr" validate:"required"`
	CorsOrigins []string `toml:"cors_origins"`
}

type GitHubConfig struct {
	APIURL          string   `toml:"api_url" validate:"required,url"`
	Token           string   `toml:"token"`
	WebhookSecret   string   `toml:"webhook_secret" validate:"required"`
	BotLogins       []string `toml:"bot_logins"`
	AutoApproveOrgs []string `toml:"auto_approve_orgs"`
	// Assignees applied to workshop issues. Empty disables the behavior.
	WorkshopAssignees []string `toml:"workshop_assignees"`
}

type ChatConfig struct {
	Enabled    bool   `toml:"enabled"`
	WebhookURL string `toml:"webhook_url" validate:"omitempty,url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type DedupConfig struct {
	TTLSeconds int `toml:"ttl_seconds" validate:"gt=0"`
	MaxEntries int `toml:"max_entries" validate:"gt=0"`
}

type RosterConfig struct {
	IgnoredLogins []string     `toml:"ignored_logins"`
	Users         []RosterUser `toml:"users"`
}

type RosterUser struct {
	Login  string `toml:"login" validate:"required"`
	ChatID string `toml:"chat_id"`
	Name   string `toml:"name"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		GitHub: GitHubConfig{
			APIURL:    "https://api.github.com",
			BotLogins: []string{"sesheta", "khebhut[bot]"},
		},
		Dedup: DedupConfig{
			TTLSeconds: 10,
			MaxEntries: 100,
		},
	}
}

func (c DedupConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":8080"
	}
	if strings.TrimSpace(c.GitHub.APIURL) == "" {
		c.GitHub.APIURL = "https://api.github.com"
	}
	if c.Dedup.TTLSeconds <= 0 {
		c.Dedup.TTLSeconds = 10
	}
	if c.Dedup.MaxEntries <= 0 {
		c.Dedup.MaxEntries = 100
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("config invalid: field %s failed %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("config invalid: %w", err)
	}
	if cfg.Chat.Enabled && strings.TrimSpace(cfg.Chat.WebhookURL) == "" {
		return fmt.Errorf("config invalid: chat.webhook_url required when chat.enabled")
	}
	for i, user := range cfg.Roster.Users {
		if strings.TrimSpace(user.Login) == "" {
			return fmt.Errorf("roster.users[%d] invalid: login is required", i)
		}
	}
	return nil
}
