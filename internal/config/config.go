// Package config loads the poller configuration from flags and EVERSENSE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/naveenspark/eversense/internal/poller"
	"github.com/naveenspark/eversense/internal/render"
	"github.com/naveenspark/eversense/pkg/client"
)

// EnvPrefix prefixes every environment variable, e.g. EVERSENSE_USERNAME.
const EnvPrefix = "EVERSENSE"

// Flag names.
const (
	FlagUsername    = "username"
	FlagPassword    = "password"
	FlagTokenURL    = "token-url"
	FlagAPIURL      = "api-url"
	FlagInterval    = "interval"
	FlagBackfill    = "backfill"
	FlagTimeout     = "timeout"
	FlagTimezone    = "timezone"
	FlagOutput      = "output"
	FlagVerbose     = "verbose"
	FlagMetricsAddr = "metrics-addr"
)

// Config is the complete runtime configuration.
type Config struct {
	Username    string
	Password    string
	TokenURL    string
	APIURL      string
	Interval    time.Duration
	Backfill    time.Duration
	Timeout     time.Duration
	Timezone    string
	Output      render.Format
	Verbose     bool
	MetricsAddr string
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagUsername, "", "Username of the follower account (email address)")
	fs.String(FlagPassword, "", "Password of the follower account")
	fs.String(FlagTokenURL, client.DefaultTokenURL, "OAuth token endpoint")
	fs.String(FlagAPIURL, client.DefaultAPIURL, "Base URL of the care API")
	fs.Duration(FlagInterval, poller.DefaultInterval, "Wait between live-state polls")
	fs.Duration(FlagBackfill, poller.DefaultBackfill, "History window fetched at startup")
	fs.Duration(FlagTimeout, client.DefaultTimeout, "Per-request timeout")
	fs.String(FlagTimezone, "Local", "Timezone for printed timestamps (IANA name or Local)")
	fs.StringP(FlagOutput, "o", string(render.FormatText), "Output format: text or json")
	fs.BoolP(FlagVerbose, "v", false, "Enable debug logging")
	fs.String(FlagMetricsAddr, "", "Serve Prometheus metrics on this address (disabled when empty)")
}

// Load reads the configuration. Flags set on the command line win over
// environment variables, which win over flag defaults.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	output, err := render.ParseFormat(v.GetString(FlagOutput))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Username:    v.GetString(FlagUsername),
		Password:    v.GetString(FlagPassword),
		TokenURL:    v.GetString(FlagTokenURL),
		APIURL:      v.GetString(FlagAPIURL),
		Interval:    v.GetDuration(FlagInterval),
		Backfill:    v.GetDuration(FlagBackfill),
		Timeout:     v.GetDuration(FlagTimeout),
		Timezone:    v.GetString(FlagTimezone),
		Output:      output,
		Verbose:     v.GetBool(FlagVerbose),
		MetricsAddr: v.GetString(FlagMetricsAddr),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Username == "" {
		return errors.New("username required (--username or EVERSENSE_USERNAME)")
	}
	if c.Password == "" {
		return errors.New("password required (--password or EVERSENSE_PASSWORD)")
	}
	if c.TokenURL == "" || c.APIURL == "" {
		return errors.New("token and API URLs must not be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Backfill <= 0 {
		return fmt.Errorf("backfill must be positive, got %s", c.Backfill)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
