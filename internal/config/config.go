// Package config loads persona-agent settings from TOML, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "persona-agent"

// Duration decodes TOML strings such as "2s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Settings struct {
	Fetch    FetchConfig    `toml:"fetch"`
	Reddit   RedditConfig   `toml:"reddit"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Retry    RetryConfig    `toml:"retry"`
	Output   OutputConfig   `toml:"output"`
	Postgres PostgresConfig `toml:"postgres"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Redis    RedisConfig    `toml:"redis"`
	Telegram TelegramConfig `toml:"telegram"`
}

type FetchConfig struct {
	Limit       int    `toml:"limit"`
	Source      string `toml:"source"` // reddit | fixture
	FixturesDir string `toml:"fixtures_dir"`
}

type RedditConfig struct {
	ClientID        string   `toml:"-"`
	ClientSecret    string   `toml:"-"`
	UserAgent       string   `toml:"user_agent"`
	BaseURL         string   `toml:"base_url"`
	TokenURL        string   `toml:"token_url"`
	RequestInterval Duration `toml:"request_interval"`
	Timeout         Duration `toml:"timeout"`
}

type GeminiConfig struct {
	APIKey      string      `toml:"-"`
	Models      []ModelSpec `toml:"models"`
	Timeout     Duration    `toml:"timeout"`
	Temperature float32     `toml:"temperature"`
}

type ModelSpec struct {
	Name string `toml:"name"`
	RPM  int    `toml:"rpm"`
	RPD  int    `toml:"rpd"`
}

type RetryConfig struct {
	MaxRetries      uint64   `toml:"max_retries"`
	InitialInterval Duration `toml:"initial_interval"`
	MaxInterval     Duration `toml:"max_interval"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type PostgresConfig struct {
	URL string `toml:"-"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type RedisConfig struct {
	Addr string   `toml:"addr"`
	DB   int      `toml:"db"`
	TTL  Duration `toml:"ttl"`
}

type TelegramConfig struct {
	Token        string `toml:"-"`
	ChatID       string `toml:"chat_id"`
	FailuresOnly bool   `toml:"failures_only"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Fetch: FetchConfig{
			Limit:       10,
			Source:      "reddit",
			FixturesDir: "fixtures",
		},
		Reddit: RedditConfig{
			BaseURL:         "https://oauth.reddit.com",
			TokenURL:        "https://www.reddit.com/api/v1/access_token",
			RequestInterval: Duration{2 * time.Second},
			Timeout:         Duration{30 * time.Second},
		},
		Gemini: GeminiConfig{
			Models: []ModelSpec{
				{Name: "gemini-2.5-flash", RPM: 10, RPD: 250},
				{Name: "gemini-2.5-flash-lite", RPM: 15, RPD: 1000},
			},
			Timeout:     Duration{60 * time.Second},
			Temperature: 0.4,
		},
		Retry: RetryConfig{
			InitialInterval: Duration{2 * time.Second},
			MaxInterval:     Duration{30 * time.Second},
		},
		Output: OutputConfig{Dir: "output"},
		Kafka:  KafkaConfig{Topic: "personas"},
		Redis:  RedisConfig{TTL: Duration{15 * time.Minute}},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/persona-agent/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load decodes path over the defaults. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return settings, nil
}

// BindEnv registers the environment variables that carry secrets and
// deployment endpoints.
func BindEnv(v *viper.Viper) {
	for key, env := range map[string]string{
		"reddit.client_id":     "REDDIT_CLIENT_ID",
		"reddit.client_secret": "REDDIT_CLIENT_SECRET",
		"reddit.user_agent":    "REDDIT_USER_AGENT",
		"gemini.api_key":       "GEMINI_API_KEY",
		"postgres.url":         "DATABASE_URL",
		"telegram.token":       "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":     "TELEGRAM_CHAT_ID",
		"redis.addr":           "REDIS_ADDR",
		"kafka.brokers":        "KAFKA_BROKERS",
	} {
		_ = v.BindEnv(key, env)
	}
}

// ApplyOverrides copies every value set in v (env or flags) onto s.
func (s *Settings) ApplyOverrides(v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			if val := v.GetString(key); val != "" {
				*dst = val
			}
		}
	}

	str("reddit.client_id", &s.Reddit.ClientID)
	str("reddit.client_secret", &s.Reddit.ClientSecret)
	str("reddit.user_agent", &s.Reddit.UserAgent)
	str("gemini.api_key", &s.Gemini.APIKey)
	str("postgres.url", &s.Postgres.URL)
	str("telegram.token", &s.Telegram.Token)
	str("telegram.chat_id", &s.Telegram.ChatID)
	str("redis.addr", &s.Redis.Addr)
	str("output.dir", &s.Output.Dir)
	str("fetch.source", &s.Fetch.Source)
	str("fetch.fixtures_dir", &s.Fetch.FixturesDir)

	if v.IsSet("fetch.limit") {
		if n := v.GetInt("fetch.limit"); n > 0 {
			s.Fetch.Limit = n
		}
	}
	if v.IsSet("kafka.brokers") {
		var brokers []string
		for _, b := range strings.Split(v.GetString("kafka.brokers"), ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		if len(brokers) > 0 {
			s.Kafka.Brokers = brokers
		}
	}
}

// Validate reports missing credentials; it is the only fatal configuration
// check and runs before any profile is processed.
func (s *Settings) Validate() error {
	errs := []error{s.ValidateSource()}
	if s.Gemini.APIKey == "" {
		errs = append(errs, fmt.Errorf("GEMINI_API_KEY is required"))
	}
	if len(s.Gemini.Models) == 0 {
		errs = append(errs, fmt.Errorf("at least one gemini model is required"))
	}
	if s.Output.Dir == "" {
		errs = append(errs, fmt.Errorf("output.dir is required"))
	}
	if (s.Telegram.Token == "") != (s.Telegram.ChatID == "") {
		errs = append(errs, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}
	return errors.Join(errs...)
}

// ValidateSource checks only what fetching activity needs.
func (s *Settings) ValidateSource() error {
	var errs []error
	if s.Fetch.Limit <= 0 {
		errs = append(errs, fmt.Errorf("fetch.limit must be positive"))
	}
	switch s.Fetch.Source {
	case "reddit":
		if s.Reddit.ClientID == "" || s.Reddit.ClientSecret == "" {
			errs = append(errs, fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required"))
		}
		if s.Reddit.UserAgent == "" {
			errs = append(errs, fmt.Errorf("REDDIT_USER_AGENT is required"))
		}
	case "fixture":
		if s.Fetch.FixturesDir == "" {
			errs = append(errs, fmt.Errorf("fetch.fixtures_dir is required for the fixture source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown fetch.source %q", s.Fetch.Source))
	}
	return errors.Join(errs...)
}
