// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the FIBSEQ_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"PORT", []string{"port"}, func(c *AppConfig, v string) error {
		return parseIntEnv(v, &c.Port)
	}},
	{"SHARDS", []string{"shards"}, func(c *AppConfig, v string) error {
		return parseIntEnv(v, &c.Shards)
	}},

	// Duration overrides
	{"READ_TIMEOUT", []string{"read-timeout"}, func(c *AppConfig, v string) error {
		return parseDurationEnv(v, &c.ReadTimeout)
	}},
	{"WRITE_TIMEOUT", []string{"write-timeout"}, func(c *AppConfig, v string) error {
		return parseDurationEnv(v, &c.WriteTimeout)
	}},
	{"IDLE_TIMEOUT", []string{"idle-timeout"}, func(c *AppConfig, v string) error {
		return parseDurationEnv(v, &c.IdleTimeout)
	}},
	{"SHUTDOWN_TIMEOUT", []string{"shutdown-timeout"}, func(c *AppConfig, v string) error {
		return parseDurationEnv(v, &c.ShutdownTimeout)
	}},
	{"STATS_INTERVAL", []string{"stats-interval"}, func(c *AppConfig, v string) error {
		return parseDurationEnv(v, &c.StatsInterval)
	}},

	// String overrides; their values are checked by Validate.
	{"HOST", []string{"host"}, func(c *AppConfig, v string) error {
		c.Host = v
		return nil
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) error {
		c.LogLevel = v
		return nil
	}},
	{"LOG_FORMAT", []string{"log-format"}, func(c *AppConfig, v string) error {
		c.LogFormat = v
		return nil
	}},

	// Boolean overrides
	{"CORS", []string{"cors"}, func(c *AppConfig, v string) error {
		return parseBoolEnv(v, &c.EnableCORS)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) error {
		return parseBoolEnv(v, &c.NoColor)
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) error {
		return parseBoolEnv(v, &c.Quiet)
	}},
}

// parseIntEnv parses a decimal integer into dst.
func parseIntEnv(val string, dst *int) error {
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("not an integer: %q", val)
	}
	*dst = parsed
	return nil
}

// parseBoolEnv parses a boolean environment variable value into dst.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func parseBoolEnv(val string, dst *bool) error {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		return fmt.Errorf("not a boolean: %q", val)
	}
	return nil
}

// parseDurationEnv parses values like "5s" or "1m30s" into dst.
func parseDurationEnv(val string, dst *time.Duration) error {
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("not a duration: %q", val)
	}
	*dst = parsed
	return nil
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
// A value that cannot be parsed is reported as a ConfigError naming the
// variable.
//
// Supported environment variables (all prefixed with FIBSEQ_):
//   - HOST, PORT, SHARDS, READ_TIMEOUT, WRITE_TIMEOUT, IDLE_TIMEOUT,
//     SHUTDOWN_TIMEOUT, STATS_INTERVAL, LOG_LEVEL, LOG_FORMAT, CORS, NO_COLOR, QUIET
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		val := os.Getenv(EnvPrefix + o.envKey)
		if val == "" {
			continue
		}
		if err := o.apply(config, val); err != nil {
			return apperrors.NewConfigError("invalid %s%s: %v", EnvPrefix, o.envKey, err)
		}
	}
	return nil
}
