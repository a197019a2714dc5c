package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notifyd.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[github]
webhook_secret = "s3cret"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.APIURL)
	assert.Equal(t, 10, cfg.Dedup.TTLSeconds)
	assert.Equal(t, 100, cfg.Dedup.MaxEntries)
	assert.Contains(t, cfg.GitHub.BotLogins, "sesheta")
}

func TestLoadRejectsMissingWebhookSecret(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9999"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WebhookSecret")
}

func TestLoadRejectsChatEnabledWithoutURL(t *testing.T) {
	path := writeConfig(t, `
[github]
webhook_secret = "s3cret"

[chat]
enabled = true
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat.webhook_url")
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, `[server`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config parse failed")
}

func TestLoadParsesRoster(t *testing.T) {
	path := writeConfig(t, `
[github]
webhook_secret = "s3cret"

[roster]
ignored_logins = ["sesheta", "khebhut[bot]"]

[[roster.users]]
login = "octocat"
chat_id = "12345"
name = "Octo Cat"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Roster.Users, 1)
	assert.Equal(t, "octocat", cfg.Roster.Users[0].Login)
	assert.Equal(t, "12345", cfg.Roster.Users[0].ChatID)
}

func TestTemplateRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starter.toml")
	require.NoError(t, WriteTemplate(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "change-me", cfg.GitHub.WebhookSecret)

	err = WriteTemplate(path, false)
	require.Error(t, err)
	require.NoError(t, WriteTemplate(path, true))
}
