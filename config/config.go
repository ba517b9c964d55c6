// Package config loads the façade's settings from a JSON file plus
// environment overrides, grounded on original_source/common/config.py's
// Config (load/get/save-default-on-missing), redesigned per spec.md §6 to
// use github.com/spf13/viper instead of hand-rolled json.load/json.dump
// and mtime polling — viper's own file watcher and env binding replace
// reload_if_modified and the manual os.path.getmtime check.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// VerifyPolicy selects how strictly an enable_ssl connection validates
// the server's certificate, per spec.md §6's three-way tls_verify choice.
type VerifyPolicy string

const (
	// VerifyFull validates the certificate chain and the server hostname.
	VerifyFull VerifyPolicy = "verify_full"
	// VerifyPeerOnly validates the certificate chain against trusted
	// roots but does not check that it matches the server hostname.
	VerifyPeerOnly VerifyPolicy = "verify_peer_only"
	// NoVerify performs no certificate validation at all.
	NoVerify VerifyPolicy = "no_verify"
)

// Config mirrors spec.md §6's key table exactly; field names match the
// JSON/env keys with Go capitalization.
type Config struct {
	DefaultHost     string `mapstructure:"default_host"`
	DefaultPort     int    `mapstructure:"default_port"`
	DefaultUsername string `mapstructure:"default_username"`
	DefaultPassword string `mapstructure:"default_password"`

	EnableSSL bool         `mapstructure:"enable_ssl"`
	TLSVerify VerifyPolicy `mapstructure:"tls_verify"`

	Timeout     time.Duration `mapstructure:"timeout"`
	PassiveMode bool          `mapstructure:"passive_mode"`

	MaxConcurrentTransfers int `mapstructure:"max_concurrent_transfers"`

	AutoRetry     bool          `mapstructure:"auto_retry"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	RetryBackoff  float64       `mapstructure:"retry_backoff"`

	BandwidthLimit int64 `mapstructure:"bandwidth_limit"`

	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

// defaults mirrors client_config.json's _create_default_config values,
// extended with the keys the Go redesign adds.
func defaults() map[string]any {
	return map[string]any{
		"default_host":              "localhost",
		"default_port":              21,
		"default_username":          "",
		"default_password":          "",
		"enable_ssl":                false,
		"tls_verify":                string(VerifyFull),
		"timeout":                   "30s",
		"passive_mode":              true,
		"max_concurrent_transfers":  3,
		"auto_retry":                true,
		"max_retries":               3,
		"retry_delay":               "5s",
		"retry_backoff":             2.0,
		"bandwidth_limit":           0,
		"keep_alive_interval":       "0s",
		"idle_timeout":              "5m",
	}
}

// Load reads path as JSON, falling back to and persisting the built-in
// defaults when the file does not exist (matching
// _create_default_config's "write defaults on first run" behavior).
// Environment variables of the form FTPCLIENT_<KEY> (e.g.
// FTPCLIENT_DEFAULT_HOST) override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("ftpclient")
	v.AutomaticEnv()

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
		if err := writeDefaults(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(v *viper.Viper, path string) error {
	for key, val := range defaults() {
		v.Set(key, val)
	}
	return v.WriteConfigAs(path)
}
