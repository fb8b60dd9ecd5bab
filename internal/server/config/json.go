package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/spendy/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Durations use
// timex.Duration so both "1m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	MaxDBConns                  int            `json:"max_db_conns"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	LogLevel                    string         `json:"log_level"`
	LogFormat                   string         `json:"log_format"`
	MetricsEnabled              bool           `json:"metrics_enabled"`
}

// parseJson overlays the JSON file at path onto config. Keys missing from
// the file keep their current values. An empty path is a no-op.
func parseJSON(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{
		EndpointAddrHTTP:            config.EndpointAddrHTTP,
		DatabaseDSN:                 config.DatabaseDSN,
		MaxDBConns:                  config.MaxDBConns,
		SecretKey:                   config.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: config.AccessTokenValidityDuration},
		ShutdownTimeout:             timex.Duration{Duration: config.ShutdownTimeout},
		LogLevel:                    config.LogLevel,
		LogFormat:                   config.LogFormat,
		MetricsEnabled:              config.MetricsEnabled,
	}

	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.MaxDBConns = c.MaxDBConns
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.MetricsEnabled = c.MetricsEnabled
	return nil
}
