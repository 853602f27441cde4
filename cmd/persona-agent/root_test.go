package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"persona-agent/internal/brain"
	"persona-agent/internal/config"
	"persona-agent/internal/core/domain"
)

func TestReadInputs(t *testing.T) {
	in := strings.NewReader(`
# sample profiles
https://www.reddit.com/user/kojied/
   https://reddit.com/user/spez

#https://www.reddit.com/user/ignored/
`)
	lines, err := readInputs(in)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.reddit.com/user/kojied/",
		"https://reddit.com/user/spez",
	}, lines)
}

func TestCollectInputs(t *testing.T) {
	got, err := collectInputs(nil, "")
	require.NoError(t, err)
	assert.Equal(t, defaultProfiles, got)

	path := filepath.Join(t.TempDir(), "profiles.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://www.reddit.com/user/b/\n"), 0o644))

	got, err = collectInputs([]string{"https://www.reddit.com/user/a/"}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.reddit.com/user/a/", "https://www.reddit.com/user/b/"}, got)

	_, err = collectInputs(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRetryPolicy(t *testing.T) {
	assert.Equal(t, brain.NoRetry{}, retryPolicy(config.RetryConfig{}))

	p := retryPolicy(config.RetryConfig{MaxRetries: 2})
	assert.Equal(t, brain.ExponentialRetry{MaxRetries: 2}, p)
}

func TestModelConfigs(t *testing.T) {
	got := modelConfigs([]config.ModelSpec{{Name: "m", RPM: 1, RPD: 2}})
	assert.Equal(t, []brain.ModelConfig{{Name: "m", RPM: 1, RPD: 2}}, got)
}

func TestLogSummary(t *testing.T) {
	// must not panic on an empty batch
	logSummary(zap.NewNop(), nil)
	logSummary(zap.NewNop(), []domain.Outcome{{Status: domain.OutcomeSaved}, {Status: domain.OutcomeSkipped}})
}

func TestRunPromptWithFixtures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kojied.json"), []byte(`{
		"posts": [{"id": "p1", "subreddit": "nyc", "title": "Moving", "body": "Any tips?"}],
		"comments": [{"id": "c1", "subreddit": "nyc", "body": "Thanks!"}]
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiet.json"), []byte(`{}`), 0o644))

	logger = zap.NewNop()
	settings = config.Default()
	settings.Fetch.Source = "fixture"
	settings.Fetch.FixturesDir = dir

	var out, errOut bytes.Buffer
	promptCmd.SetOut(&out)
	promptCmd.SetErr(&errOut)
	promptCmd.SetContext(context.Background())
	t.Cleanup(func() {
		promptCmd.SetOut(nil)
		promptCmd.SetErr(nil)
	})

	require.NoError(t, runPrompt(promptCmd, []string{"https://www.reddit.com/user/kojied/"}))
	assert.Contains(t, out.String(), "Post ID: p1, Subreddit: nyc, Title: Moving, Body: Any tips?")
	assert.Contains(t, out.String(), "Comment ID: c1, Subreddit: nyc, Body: Thanks!")

	out.Reset()
	require.NoError(t, runPrompt(promptCmd, []string{"https://www.reddit.com/user/quiet/"}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "quiet has no posts or comments")

	err := runPrompt(promptCmd, []string{"https://www.reddit.com/user/nobody/"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = runPrompt(promptCmd, []string{"not a url"})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}
