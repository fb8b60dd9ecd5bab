package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. Each one overrides the matching Config field.
const (
	EnvHTTPAddr        = "SPENDY_HTTP_ADDR"
	EnvDatabaseDSN     = "SPENDY_DATABASE_DSN"
	EnvMaxDBConns      = "SPENDY_DB_MAX_CONNS"
	EnvSecretKey       = "SPENDY_SECRET_KEY"
	EnvAccessTokenTTL  = "SPENDY_ACCESS_TOKEN_TTL"
	EnvShutdownTimeout = "SPENDY_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "SPENDY_LOG_LEVEL"
	EnvLogFormat       = "SPENDY_LOG_FORMAT"
	EnvMetricsEnabled  = "SPENDY_METRICS_ENABLED"
)

var lookupEnv = os.LookupEnv

// loadDotEnv exports the variables of a .env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays SPENDY_* variables onto config.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHTTPAddr); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := lookup(EnvDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookup(EnvSecretKey); ok {
		config.SecretKey = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		config.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		config.LogFormat = v
	}

	if v, ok := lookup(EnvMaxDBConns); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDBConns, err)
		}
		config.MaxDBConns = n
	}
	if v, ok := lookup(EnvAccessTokenTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAccessTokenTTL, err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := lookup(EnvShutdownTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
		}
		config.ShutdownTimeout = d
	}
	if v, ok := lookup(EnvMetricsEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMetricsEnabled, err)
		}
		config.MetricsEnabled = b
	}

	return nil
}
