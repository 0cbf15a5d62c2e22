package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvVerifyToken, "verify-me")
	t.Setenv(EnvPageAccessToken, "page-token")
	t.Setenv(EnvDataDir, t.TempDir())
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "verify-me", cfg.VerifyToken)
	assert.Equal(t, "page-token", cfg.PageAccessToken)

	// Defaults
	assert.Equal(t, "8989", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://graph.facebook.com/v2.6", cfg.GraphAPIBaseURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.SearchCacheTTL)
	assert.Equal(t, SendRequest, cfg.SendTimeout)
	assert.Equal(t, DefaultSessionSweepSpec, cfg.SessionSweepSpec)
	assert.False(t, cfg.MetricsAuthEnabled)
}

func TestLoad_LegacyVariableNames(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv("VERIFY_TOKEN", "legacy-verify")
	t.Setenv("access_token", "legacy-token")
	t.Setenv("movieApi", "http://movies.local/")
	t.Setenv("movieApikey", "mk")
	t.Setenv("footballApi", "http://football.local/")
	t.Setenv("apikey", "fk")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy-verify", cfg.VerifyToken)
	assert.Equal(t, "legacy-token", cfg.PageAccessToken)
	assert.Equal(t, "http://movies.local/", cfg.Search.MovieURL)
	assert.Equal(t, "mk", cfg.Search.MovieKey)
	assert.Equal(t, "http://football.local/", cfg.Search.FootballURL)
	assert.Equal(t, "fk", cfg.Search.FootballKey)
}

func TestLoad_PrefixedKeysWinOverLegacy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VERIFY_TOKEN", "legacy-verify")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "verify-me", cfg.VerifyToken)
}

func TestLoad_TrimsGraphBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvGraphAPIBaseURL, "http://graph.local/v19.0/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://graph.local/v19.0", cfg.GraphAPIBaseURL)
}

func TestLoad_InvalidDurationFallsBackToDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvSessionTTL, "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			VerifyToken:      "v",
			PageAccessToken:  "p",
			GraphAPIBaseURL:  "https://graph.facebook.com/v2.6",
			Port:             "8989",
			DataDir:          "/data",
			SearchCacheTTL:   time.Hour,
			SessionTTL:       time.Minute,
			SendTimeout:      time.Second,
			SearchTimeout:    time.Second,
			SentrySampleRate: 1,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "missing tokens",
			mutate: func(c *Config) {
				c.VerifyToken = ""
				c.PageAccessToken = ""
			},
			errContains: []string{EnvVerifyToken, EnvPageAccessToken},
		},
		{
			name:        "non-positive session ttl",
			mutate:      func(c *Config) { c.SessionTTL = 0 },
			errContains: []string{EnvSessionTTL},
		},
		{
			name: "metrics auth without password",
			mutate: func(c *Config) {
				c.MetricsAuthEnabled = true
			},
			errContains: []string{EnvMetricsPassword},
		},
		{
			name:        "sample rate out of range",
			mutate:      func(c *Config) { c.SentrySampleRate = 1.5 },
			errContains: []string{EnvSentrySampleRate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.errContains) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, s := range tt.errContains {
				assert.True(t, strings.Contains(err.Error(), s), "error %q should mention %q", err, s)
			}
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/zoky"}
	assert.Equal(t, "/tmp/zoky/search_cache.db", cfg.SQLitePath())
}

func TestHasBetterStack(t *testing.T) {
	assert.False(t, (&Config{}).HasBetterStack())
	assert.True(t, (&Config{BetterStackToken: "tok"}).HasBetterStack())
}
