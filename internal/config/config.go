// Package config loads skiphire settings from .skiphire/config.json with
// SKIPHIRE_* environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Gateway and photo store choices.
const (
	GatewayStub   = "stub"
	GatewayStripe = "stripe"

	PhotoStoreFilesystem = "filesystem"
	PhotoStoreCloudinary = "cloudinary"
)

// Defaults for duration settings, used when the configured value does not parse.
const (
	DefaultPaymentDelay  = 2 * time.Second
	DefaultRetryInterval = 30 * time.Second
)

// Config represents the flat skiphire configuration
type Config struct {
	Version        string `json:"version" mapstructure:"version"`
	Postcode       string `json:"postcode" mapstructure:"postcode"`
	DBPath         string `json:"db_path" mapstructure:"db_path"`
	PaymentGateway string `json:"payment_gateway" mapstructure:"payment_gateway"`
	PaymentDelay   string `json:"payment_delay" mapstructure:"payment_delay"`
	StripeKey      string `json:"stripe_secret_key,omitempty" mapstructure:"stripe_secret_key"`

	PhotoStore          string `json:"photo_store" mapstructure:"photo_store"`
	PhotoDir            string `json:"photo_dir" mapstructure:"photo_dir"`
	CloudinaryCloudName string `json:"cloudinary_cloud_name,omitempty" mapstructure:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `json:"cloudinary_api_key,omitempty" mapstructure:"cloudinary_api_key"`
	CloudinaryAPISecret string `json:"cloudinary_api_secret,omitempty" mapstructure:"cloudinary_api_secret"`
	CloudinaryFolder    string `json:"cloudinary_folder,omitempty" mapstructure:"cloudinary_folder"`

	ListenAddr    string `json:"listen_addr" mapstructure:"listen_addr"`
	LogLevel      string `json:"log_level" mapstructure:"log_level"`
	LogFile       string `json:"log_file,omitempty" mapstructure:"log_file"`
	Env           string `json:"env" mapstructure:"env"`
	RetryBurst    int    `json:"retry_burst" mapstructure:"retry_burst"`
	RetryInterval string `json:"retry_interval" mapstructure:"retry_interval"`
}

// Path returns the config file location under dir.
func Path(dir string) string {
	return filepath.Join(dir, ".skiphire", "config.json")
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	base := ".skiphire"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".skiphire")
	}
	return &Config{
		Version:          "1",
		Postcode:         "NR32",
		DBPath:           filepath.Join(base, "skiphire.db"),
		PaymentGateway:   GatewayStub,
		PaymentDelay:     DefaultPaymentDelay.String(),
		PhotoStore:       PhotoStoreFilesystem,
		PhotoDir:         filepath.Join(base, "photos"),
		CloudinaryFolder: "skiphire",
		ListenAddr:       "127.0.0.1:8080",
		LogLevel:         "info",
		Env:              "development",
		RetryBurst:       3,
		RetryInterval:    DefaultRetryInterval.String(),
	}
}

// LoadConfig reads .skiphire/config.json from the specified directory.
// A missing file is not an error: defaults and environment apply.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("SKIPHIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("version", d.Version)
	v.SetDefault("postcode", d.Postcode)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("payment_gateway", d.PaymentGateway)
	v.SetDefault("payment_delay", d.PaymentDelay)
	v.SetDefault("stripe_secret_key", "")
	v.SetDefault("photo_store", d.PhotoStore)
	v.SetDefault("photo_dir", d.PhotoDir)
	v.SetDefault("cloudinary_cloud_name", "")
	v.SetDefault("cloudinary_api_key", "")
	v.SetDefault("cloudinary_api_secret", "")
	v.SetDefault("cloudinary_folder", d.CloudinaryFolder)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("env", d.Env)
	v.SetDefault("retry_burst", d.RetryBurst)
	v.SetDefault("retry_interval", d.RetryInterval)

	path := Path(dir)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Dir(Path(dir))
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .skiphire dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// PaymentDelayDuration returns the simulated gateway delay.
func (c *Config) PaymentDelayDuration() time.Duration {
	return parseDuration(c.PaymentDelay, DefaultPaymentDelay)
}

// RetryIntervalDuration returns the refill interval of the payment retry limiter.
func (c *Config) RetryIntervalDuration() time.Duration {
	return parseDuration(c.RetryInterval, DefaultRetryInterval)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
