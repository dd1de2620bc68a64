package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/eversense/internal/poller"
	"github.com/naveenspark/eversense/internal/render"
	"github.com/naveenspark/eversense/pkg/client"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("eversense", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlags(t, "--username", "me@example.com", "--password", "pw"))
	require.NoError(t, err)
	require.Equal(t, "me@example.com", cfg.Username)
	require.Equal(t, "pw", cfg.Password)
	require.Equal(t, client.DefaultTokenURL, cfg.TokenURL)
	require.Equal(t, client.DefaultAPIURL, cfg.APIURL)
	require.Equal(t, poller.DefaultInterval, cfg.Interval)
	require.Equal(t, poller.DefaultBackfill, cfg.Backfill)
	require.Equal(t, client.DefaultTimeout, cfg.Timeout)
	require.Equal(t, render.FormatText, cfg.Output)
	require.False(t, cfg.Verbose)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("EVERSENSE_USERNAME", "env@example.com")
	t.Setenv("EVERSENSE_PASSWORD", "env-pw")
	t.Setenv("EVERSENSE_INTERVAL", "90s")
	t.Setenv("EVERSENSE_API_URL", "http://localhost:9999")
	t.Setenv("EVERSENSE_OUTPUT", "json")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	require.Equal(t, "env@example.com", cfg.Username)
	require.Equal(t, "env-pw", cfg.Password)
	require.Equal(t, 90*time.Second, cfg.Interval)
	require.Equal(t, "http://localhost:9999", cfg.APIURL)
	require.Equal(t, render.FormatJSON, cfg.Output)
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("EVERSENSE_USERNAME", "env@example.com")
	t.Setenv("EVERSENSE_PASSWORD", "env-pw")

	cfg, err := Load(newFlags(t, "--username", "flag@example.com", "--interval", "2m"))
	require.NoError(t, err)
	require.Equal(t, "flag@example.com", cfg.Username)
	require.Equal(t, "env-pw", cfg.Password)
	require.Equal(t, 2*time.Minute, cfg.Interval)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing username", []string{"--password", "pw"}},
		{"missing password", []string{"--username", "u"}},
		{"zero interval", []string{"--username", "u", "--password", "pw", "--interval", "0s"}},
		{"negative timeout", []string{"--username", "u", "--password", "pw", "--timeout", "-1s"}},
		{"bad output", []string{"--username", "u", "--password", "pw", "-o", "xml"}},
		{"bad timezone", []string{"--username", "u", "--password", "pw", "--timezone", "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFlags(t, tt.args...))
			require.Error(t, err)
		})
	}
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	require.Equal(t, "UTC", loc.String())
}
