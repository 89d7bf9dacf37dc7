package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "WSCHAT"
	envConfigDefaultPath = "WSCHAT_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load resolves configuration and returns it with the config file path used.
// Precedence: defaults < config file < WSCHAT_* env vars < caller overrides.
// A missing config file is created from the defaults.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	cfg := Default()
	path := resolveConfigPath(explicitPath)
	v := newViper(cfg, path)

	if err := readOrCreate(v, path, cfg, logger); err != nil {
		return cfg, path, err
	}
	// viper carries the defaults; decode into a zero value so slices are replaced, not merged.
	var resolved Config
	if err := v.Unmarshal(&resolved); err != nil {
		return cfg, path, fmt.Errorf("unmarshal config: %w", err)
	}
	return resolved, path, nil
}

func newViper(defaults Config, path string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	for key, value := range fileViewOf(defaults).asMap() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func readOrCreate(v *viper.Viper, path string, defaults Config, logger *zerolog.Logger) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}

	if writeErr := writeDefaultConfig(path, defaults); writeErr != nil {
		// Defaults and env still apply without a file.
		logger.Warn().Err(writeErr).Str("path", path).Msg("failed to write default config")
		return nil
	}
	logger.Info().Str("path", path).Msg("created default config")

	if readErr := v.ReadInConfig(); readErr != nil {
		logger.Warn().Err(readErr).Str("path", path).Msg("failed to read config after writing default")
	}
	return nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

// fileView is the on-disk shape of Config with durations spelled as strings.
type fileView struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout string   `yaml:"read_header_timeout"`
	ShutdownTimeout   string   `yaml:"shutdown_timeout"`
	LogLevel          string   `yaml:"log_level"`
	LogFormat         string   `yaml:"log_format"`
	SubscriberBuffer  int      `yaml:"subscriber_buffer"`
	MaxMessageBytes   int64    `yaml:"max_message_bytes"`
	IdleTimeout       string   `yaml:"idle_timeout"`
	RateLimit         int      `yaml:"rate_limit"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	MetricsEnabled    bool     `yaml:"metrics_enabled"`
}

func fileViewOf(c Config) fileView {
	return fileView{
		Addr:              c.Addr,
		ReadHeaderTimeout: c.ReadHeaderTimeout.String(),
		ShutdownTimeout:   c.ShutdownTimeout.String(),
		LogLevel:          c.LogLevel,
		LogFormat:         c.LogFormat,
		SubscriberBuffer:  c.SubscriberBuffer,
		MaxMessageBytes:   c.MaxMessageBytes,
		IdleTimeout:       c.IdleTimeout.String(),
		RateLimit:         c.RateLimit,
		AllowedOrigins:    c.AllowedOrigins,
		MetricsEnabled:    c.MetricsEnabled,
	}
}

func (f fileView) asMap() map[string]any {
	return map[string]any{
		"addr":                f.Addr,
		"read_header_timeout": f.ReadHeaderTimeout,
		"shutdown_timeout":    f.ShutdownTimeout,
		"log_level":           f.LogLevel,
		"log_format":          f.LogFormat,
		"subscriber_buffer":   f.SubscriberBuffer,
		"max_message_bytes":   f.MaxMessageBytes,
		"idle_timeout":        f.IdleTimeout,
		"rate_limit":          f.RateLimit,
		"allowed_origins":     f.AllowedOrigins,
		"metrics_enabled":     f.MetricsEnabled,
	}
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(fileViewOf(cfg))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
