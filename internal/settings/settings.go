// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings resolves tool configuration from the config file, the
// environment, and the secrets directory, and inspects its health.
// Implements: prd005-settings (R1-R2);
//
//	docs/ARCHITECTURE § Settings.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

const (
	// ConfigName is the viper config name; the file is ConfigName.yaml.
	ConfigName = "pdfebc"

	// EnvPrefix scopes environment overrides (e.g. PDFEBC_EMAIL_USER).
	EnvPrefix = "PDFEBC"

	appDir         = "pdfebc"
	configFileName = "pdfebc.yaml"
	historyDBName  = "history.db"
	secretsDirName = "secrets"
)

// Defaults registers the built-in defaults on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("email.smtp_server", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("compression.source_dir", ".")
	v.SetDefault("compression.out_dir", "pdfebc_out")
	v.SetDefault("compression.ghostscript", "gs")
	v.SetDefault("compression.jobs", 1)
	v.SetDefault("compression.min_size_bytes", int64(1<<20))
	v.SetDefault("server.binary", "pdfebc-web")
	v.SetDefault("history.max_results", 20)
}

// FromViper reads the full tool configuration out of v.
func FromViper(v *viper.Viper) types.Config {
	return types.Config{
		Email: types.EmailConfig{
			User:           v.GetString("email.user"),
			Receiver:       v.GetString("email.receiver"),
			Password:       v.GetString("email.password"),
			SealedPassword: v.GetString("email.sealed_password"),
			SMTPServer:     v.GetString("email.smtp_server"),
			SMTPPort:       v.GetInt("email.smtp_port"),
		},
		Compression: types.CompressionConfig{
			SourceDir:    v.GetString("compression.source_dir"),
			OutDir:       v.GetString("compression.out_dir"),
			Ghostscript:  v.GetString("compression.ghostscript"),
			Jobs:         v.GetInt("compression.jobs"),
			MinSizeBytes: v.GetInt64("compression.min_size_bytes"),
		},
		// Host and port are runserver flags, never config keys.
		Server: types.ServerConfig{
			Binary: v.GetString("server.binary"),
		},
		History: types.HistoryConfig{
			Database:   v.GetString("history.database"),
			MaxResults: v.GetInt("history.max_results"),
		},
	}
}

// ConfigDir returns the per-user configuration directory, ~/.config/pdfebc.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}

// DefaultConfigPath returns the file config init writes.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// HistoryDatabasePath resolves the history database location: the
// configured path when set, otherwise ConfigDir()/history.db.
func HistoryDatabasePath(cfg types.HistoryConfig) (string, error) {
	if cfg.Database != "" {
		return cfg.Database, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyDBName), nil
}

// SecretsDir returns the secrets directory, ConfigDir()/secrets.
func SecretsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, secretsDirName), nil
}

// WriteConfig writes cfg as YAML to path with owner-only permissions,
// creating parent directories as needed. The file may carry a plain-text
// password, hence 0600.
func WriteConfig(cfg types.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
