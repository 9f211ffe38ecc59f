// Package config defines the service configuration and how it is read from
// command-line flags and FIBSEQ_ environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/sequence"
)

// EnvPrefix is prepended to every environment variable read by this package.
const EnvPrefix = "FIBSEQ_"

// Default values for AppConfig.
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultStatsInterval   = time.Minute
	DefaultLogLevel        = "info"
	DefaultLogFormat       = logging.FormatJSON
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Host is the interface to bind; empty means all interfaces.
	Host string
	// Port is the TCP port the HTTP server listens on.
	Port int
	// Shards is the number of client-state shards in the sequence engine.
	Shards int
	// ReadTimeout bounds reading a full request.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration
	// IdleTimeout bounds keep-alive idleness.
	IdleTimeout time.Duration
	// ShutdownTimeout bounds the graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration
	// StatsInterval is how often engine statistics are logged; 0 disables it.
	StatsInterval time.Duration
	// LogLevel is a zerolog level name.
	LogLevel string
	// LogFormat is "json" or "console".
	LogFormat string
	// EnableCORS toggles CORS headers on API responses.
	EnableCORS bool
	// NoColor disables colored terminal output.
	NoColor bool
	// Quiet suppresses the startup banner.
	Quiet bool
	// ShowVersion prints version information and exits.
	ShowVersion bool
}

// Addr returns the listen address in host:port form.
func (c AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration for semantic errors.
//
// Returns:
//   - error: A ConfigError describing the first invalid value, or nil.
func (c AppConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return apperrors.NewConfigError("invalid port %d: must be between 0 and 65535", c.Port)
	}
	if c.Shards < 1 {
		return apperrors.NewConfigError("invalid shard count %d: must be at least 1", c.Shards)
	}
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"read-timeout", c.ReadTimeout},
		{"write-timeout", c.WriteTimeout},
		{"idle-timeout", c.IdleTimeout},
		{"shutdown-timeout", c.ShutdownTimeout},
	}
	for _, d := range timeouts {
		if d.value <= 0 {
			return apperrors.NewConfigError("invalid %s %s: must be positive", d.name, d.value)
		}
	}
	if c.StatsInterval < 0 {
		return apperrors.NewConfigError("invalid stats-interval %s: must not be negative", c.StatsInterval)
	}
	if _, err := logging.NewWithOptions(io.Discard, logging.Options{Level: c.LogLevel, Format: c.LogFormat}); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	return nil
}

// ParseConfig parses command-line arguments, applies environment overrides
// for flags that were not set explicitly, and validates the result.
//
// Parameters:
//   - programName: The name used in usage output.
//   - args: The arguments, without the program name.
//   - errorWriter: Where usage and parse errors are written.
//
// Returns:
//   - AppConfig: The resulting configuration.
//   - error: flag.ErrHelp when -h was given, a parse error, or a ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintln(errorWriter, "Serves per-client Fibonacci sequences over HTTP.")
		fmt.Fprintln(errorWriter)
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEvery flag can also be set with a %s environment variable, e.g. %sPORT=9090.\n", EnvPrefix, EnvPrefix)
	}

	config := AppConfig{}
	fs.StringVar(&config.Host, "host", "", "Interface to bind (empty for all interfaces).")
	fs.IntVar(&config.Port, "port", DefaultPort, "TCP port to listen on.")
	fs.IntVar(&config.Shards, "shards", sequence.DefaultShards, "Number of client-state shards (rounded up to a power of two).")
	fs.DurationVar(&config.ReadTimeout, "read-timeout", DefaultReadTimeout, "Maximum duration for reading a request.")
	fs.DurationVar(&config.WriteTimeout, "write-timeout", DefaultWriteTimeout, "Maximum duration for writing a response.")
	fs.DurationVar(&config.IdleTimeout, "idle-timeout", DefaultIdleTimeout, "Maximum keep-alive idle time.")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "Grace period for in-flight requests on shutdown.")
	fs.DurationVar(&config.StatsInterval, "stats-interval", DefaultStatsInterval, "How often to log engine statistics (0 disables).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error).")
	fs.StringVar(&config.LogFormat, "log-format", DefaultLogFormat, "Log format (json or console).")
	fs.BoolVar(&config.EnableCORS, "cors", true, "Send CORS headers on API responses.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Do not print the startup banner.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version information and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	if err := applyEnvOverrides(&config, fs); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	return config, nil
}
