package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvProfile     = "SHOTTY_PROFILE"
	EnvRegion      = "SHOTTY_REGION"
	EnvLogLevel    = "SHOTTY_LOG_LEVEL"
	EnvWaitTimeout = "SHOTTY_WAIT_TIMEOUT"
)

const (
	DefaultProfile     = "shotty"
	DefaultLogLevel    = "warn"
	DefaultWaitTimeout = 10 * time.Minute
)

// Options is the resolved global configuration of a shotty run.
type Options struct {
	Profile     string
	Region      string
	LogLevel    string
	WaitTimeout time.Duration

	DryRun  bool
	Yes     bool
	Confirm bool
}

// Default returns the built-in defaults.
func Default() Options {
	return Options{
		Profile:     DefaultProfile,
		LogLevel:    DefaultLogLevel,
		WaitTimeout: DefaultWaitTimeout,
	}
}

// WithEnv overrides fields from the environment. lookup has the signature of
// os.LookupEnv.
func (o Options) WithEnv(lookup func(string) (string, bool)) (Options, error) {
	if v, ok := lookup(EnvProfile); ok && v != "" {
		o.Profile = v
	}
	if v, ok := lookup(EnvRegion); ok && v != "" {
		o.Region = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		o.LogLevel = v
	}
	if v, ok := lookup(EnvWaitTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return o, fmt.Errorf("%s: %w", EnvWaitTimeout, err)
		}
		o.WaitTimeout = d
	}
	return o, nil
}

// Validate checks the option values.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Profile) == "" {
		return errors.New("profile must not be empty")
	}
	if o.WaitTimeout <= 0 {
		return fmt.Errorf("wait timeout must be > 0, got %s", o.WaitTimeout)
	}
	if _, err := ParseLevel(o.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return l, fmt.Errorf("invalid log level %q (want debug|info|warn|error)", s)
	}
	return l, nil
}
