package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr":                   "www.example:9000",
		"database_dsn":                    "postgres://example/auth",
		"client_url":                      "http://client.example",
		"activation_base_url":             "http://api.example",
		"access_token_secret":             "my_access_secret",
		"refresh_token_secret":            "my_refresh_secret",
		"access_token_validity_duration":  "30m",
		"refresh_token_validity_duration": "720h",
		"password_hash_cost":              12,
		"smtp_host":                       "mail.example",
		"smtp_port":                       2525,
		"smtp_username":                   "mailer",
		"smtp_password":                   "mailpass",
		"smtp_from":                       "noreply@example",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddr)
		assert.Equal(t, "postgres://example/auth", cfg.DatabaseDSN)
		assert.Equal(t, "http://client.example", cfg.ClientURL)
		assert.Equal(t, "http://api.example", cfg.ActivationBaseURL)
		assert.Equal(t, "my_access_secret", cfg.AccessTokenSecret)
		assert.Equal(t, "my_refresh_secret", cfg.RefreshTokenSecret)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 720*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 12, cfg.PasswordHashCost)
		assert.Equal(t, "mail.example", cfg.SMTPHost)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, "mailer", cfg.SMTPUsername)
		assert.Equal(t, "mailpass", cfg.SMTPPassword)
		assert.Equal(t, "noreply@example", cfg.SMTPFrom)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddr:                 "defaults:1234",
			DatabaseDSN:                  "postgres://defaults/auth",
			ClientURL:                    "http://defaults",
			ActivationBaseURL:            "http://defaults:1234",
			AccessTokenSecret:            "akey",
			RefreshTokenSecret:           "rkey",
			AccessTokenValidityDuration:  2 * time.Minute,
			RefreshTokenValidityDuration: 3 * time.Minute,
			PasswordHashCost:             10,
			SMTPHost:                     "smtphost",
			SMTPPort:                     587,
			SMTPUsername:                 "smtpuser",
			SMTPPassword:                 "smtppass",
			SMTPFrom:                     "from@defaults",
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddr)
		assert.Equal(t, "postgres://defaults/auth", cfg.DatabaseDSN)
		assert.Equal(t, "http://defaults", cfg.ClientURL)
		assert.Equal(t, "http://defaults:1234", cfg.ActivationBaseURL)
		assert.Equal(t, "akey", cfg.AccessTokenSecret)
		assert.Equal(t, "rkey", cfg.RefreshTokenSecret)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 10, cfg.PasswordHashCost)
		assert.Equal(t, "smtphost", cfg.SMTPHost)
		assert.Equal(t, 587, cfg.SMTPPort)
		assert.Equal(t, "smtpuser", cfg.SMTPUsername)
		assert.Equal(t, "smtppass", cfg.SMTPPassword)
		assert.Equal(t, "from@defaults", cfg.SMTPFrom)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
