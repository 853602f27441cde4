package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, 10, s.Fetch.Limit)
	assert.Equal(t, 2*time.Second, s.Reddit.RequestInterval.Duration)
}

func TestLoad_DecodesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[fetch]
limit = 3
source = "fixture"

[reddit]
request_interval = "500ms"

[gemini]
timeout = "5s"
models = [{ name = "gemini-2.5-pro", rpm = 2, rpd = 50 }]

[retry]
max_retries = 2

[kafka]
brokers = ["localhost:9092"]
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Fetch.Limit)
	assert.Equal(t, "fixture", s.Fetch.Source)
	assert.Equal(t, "fixtures", s.Fetch.FixturesDir)
	assert.Equal(t, 500*time.Millisecond, s.Reddit.RequestInterval.Duration)
	assert.Equal(t, 5*time.Second, s.Gemini.Timeout.Duration)
	assert.Equal(t, []ModelSpec{{Name: "gemini-2.5-pro", RPM: 2, RPD: 50}}, s.Gemini.Models)
	assert.Equal(t, uint64(2), s.Retry.MaxRetries)
	assert.Equal(t, []string{"localhost:9092"}, s.Kafka.Brokers)
	assert.Equal(t, "personas", s.Kafka.Topic)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[fetch\nlimit = "), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	v := viper.New()
	BindEnv(v)
	v.Set("fetch.limit", 4)
	v.Set("output.dir", "/tmp/personas")

	s := Default()
	s.ApplyOverrides(v)

	assert.Equal(t, "id", s.Reddit.ClientID)
	assert.Equal(t, "secret", s.Reddit.ClientSecret)
	assert.Equal(t, "key", s.Gemini.APIKey)
	assert.Equal(t, []string{"a:9092", "b:9092"}, s.Kafka.Brokers)
	assert.Equal(t, 4, s.Fetch.Limit)
	assert.Equal(t, "/tmp/personas", s.Output.Dir)
	assert.Equal(t, "reddit", s.Fetch.Source)
}

func TestValidate(t *testing.T) {
	s := Default()
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDDIT_CLIENT_ID")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	s.Reddit.ClientID, s.Reddit.ClientSecret, s.Reddit.UserAgent = "id", "secret", "ua"
	s.Gemini.APIKey = "key"
	require.NoError(t, s.Validate())

	s.Telegram.Token = "token"
	require.Error(t, s.Validate())

	fixture := Default()
	fixture.Fetch.Source = "fixture"
	fixture.Gemini.APIKey = "key"
	require.NoError(t, fixture.Validate())

	fixture.Fetch.Source = "myspace"
	require.Error(t, fixture.Validate())
}

func TestValidateSourceIgnoresModelSettings(t *testing.T) {
	s := Default()
	s.Fetch.Source = "fixture"
	require.NoError(t, s.ValidateSource())
	require.Error(t, s.Validate())

	s.Fetch.Limit = 0
	assert.ErrorContains(t, s.ValidateSource(), "fetch.limit")
}
