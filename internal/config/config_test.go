package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"JIRA_BASE_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_ACCOUNT_ID", "JIRA_TIMEOUT_SECONDS",
	"TEMPO_BASE_URL", "TEMPO_API_TOKEN", "TEMPO_TIMEOUT_SECONDS", "TEMPO_PAGE_SIZE", "TEMPO_BILLING_ATTRIBUTE",
	"MCP_TRANSPORT", "MCP_HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JIRA_BASE_URL", "https://example.atlassian.net/")
	t.Setenv("JIRA_EMAIL", "dev@example.com")
	t.Setenv("JIRA_API_TOKEN", "jira-token")
	t.Setenv("TEMPO_API_TOKEN", "tempo-token")
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv("JIRA_ACCOUNT_ID", "acc-1")
	t.Setenv("TEMPO_PAGE_SIZE", "250")
	t.Setenv("MCP_TRANSPORT", "HTTP")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.atlassian.net", cfg.Jira.BaseURL)
	assert.Equal(t, "dev@example.com", cfg.Jira.Email)
	assert.Equal(t, "acc-1", cfg.Jira.AccountID)
	assert.Equal(t, "https://api.tempo.io/4", cfg.Tempo.BaseURL)
	assert.Equal(t, 250, cfg.Tempo.PageSize)
	assert.Equal(t, "_Account_", cfg.Tempo.BillingAttribute)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, 30, cfg.Jira.Timeout)
}

func TestLoad_MissingRequiredNamesEveryValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIRA_BASE_URL", "https://example.atlassian.net")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_EMAIL, JIRA_API_TOKEN, TEMPO_API_TOKEN")
	assert.NotContains(t, err.Error(), "JIRA_BASE_URL")
}

func TestLoad_FileThenEnvironmentOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
jira:
  base_url: https://file.atlassian.net
  email: file@example.com
  api_token: file-token
  timeout_seconds: 10
tempo:
  api_token: file-tempo
  billing_attribute: _Billing_
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("JIRA_EMAIL", "env@example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://file.atlassian.net", cfg.Jira.BaseURL)
	assert.Equal(t, "env@example.com", cfg.Jira.Email)
	assert.Equal(t, 10, cfg.Jira.Timeout)
	assert.Equal(t, "_Billing_", cfg.Tempo.BillingAttribute)
	assert.Equal(t, 1000, cfg.Tempo.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jira: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate_RejectsUnknownTransportAndLevel(t *testing.T) {
	cfg := Default()
	cfg.Jira.BaseURL = "https://x"
	cfg.Jira.Email = "a@b"
	cfg.Jira.APIToken = "t"
	cfg.Tempo.APIToken = "t"
	require.NoError(t, cfg.Validate())

	cfg.Server.Transport = "sse"
	assert.ErrorContains(t, cfg.Validate(), "transport")

	cfg.Server.Transport = TransportStdio
	cfg.Log.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "log level")
}
