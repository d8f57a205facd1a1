package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configDir  = ".stockq"
	configFile = "config"
	configType = "yaml"
)

// Load reads the configuration from ~/.stockq/config.yaml.
// Returns the default config if the file does not exist.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}
	return LoadFrom(dir)
}

// LoadFrom reads config.yaml from dir.
func LoadFrom(dir string) (*Config, error) {
	v := newViper(dir)

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Preferences.QueryTimeout <= 0 {
		cfg.Preferences.QueryTimeout = DefaultQueryTimeout
	}

	return cfg, nil
}

// Save writes the configuration to ~/.stockq/config.yaml.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}
	return SaveTo(dir, cfg)
}

// SaveTo writes config.yaml into dir. Passwords are never written.
func SaveTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	conns := make([]Connection, len(cfg.Connections))
	for i, c := range cfg.Connections {
		c.Password = ""
		conns[i] = c
	}

	v := newViper(dir)
	v.Set("connections", conns)
	v.Set("preferences", map[string]any{
		"theme":              cfg.Preferences.Theme,
		"default_connection": cfg.Preferences.DefaultConnection,
		"query_timeout":      cfg.Preferences.QueryTimeout.String(),
		"atomic_mutations":   cfg.Preferences.AtomicMutations,
		"debug":              cfg.Preferences.Debug,
	})

	path := filepath.Join(dir, configFile+"."+configType)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveConnection adds conn to cfg and persists it.
func SaveConnection(cfg *Config, conn Connection) error {
	if cfg.HasConnection(conn.Name) {
		return nil
	}
	cfg.AddConnection(conn)
	return Save(cfg)
}

// DefaultConnection returns the default connection from config, or the first one.
func DefaultConnection(cfg *Config) *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == cfg.Preferences.DefaultConnection {
				return &cfg.Connections[i]
			}
		}
	}

	return &cfg.Connections[0]
}

// Dir returns the directory holding config, log and exports.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetDefault("preferences.theme", "default")
	v.SetDefault("preferences.query_timeout", DefaultQueryTimeout.String())
	v.SetDefault("preferences.atomic_mutations", true)
	return v
}
