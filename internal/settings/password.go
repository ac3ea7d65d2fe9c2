// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"fmt"
	"path/filepath"

	"github.com/pdiddy/pdfebc-cli/internal/secrets"
	"github.com/pdiddy/pdfebc-cli/internal/vault"
	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// PasswordSource identifies where the SMTP password was resolved from.
type PasswordSource string

const (
	// SourceConfig means the plain-text email.password value was used.
	SourceConfig PasswordSource = "config"

	// SourceSealed means the sealed password was opened with a passphrase.
	SourceSealed PasswordSource = "sealed"

	// SourceSecrets means the secrets directory supplied the password.
	SourceSecrets PasswordSource = "secrets"

	// SourceNone means no password could be resolved.
	SourceNone PasswordSource = "none"
)

// PassphraseFunc supplies the master passphrase that opens the sealed
// password. Commands inject a terminal prompt; tests inject a fixture.
type PassphraseFunc func() (string, error)

// ResolvePassword returns the SMTP password following the documented
// precedence (R2.3): the plain-text config value first, then the sealed
// password, then the secrets directory. A sealed password that fails to
// open is an error rather than a fallthrough, so a typo in the passphrase
// never silently sends with a stale secrets-file password.
func ResolvePassword(cfg types.EmailConfig, secretsDir string, prompt PassphraseFunc) (string, PasswordSource, error) {
	if cfg.Password != "" {
		return cfg.Password, SourceConfig, nil
	}

	if cfg.SealedPassword != "" {
		if prompt == nil {
			return "", SourceSealed, fmt.Errorf("sealed password is set but no passphrase prompt is available")
		}
		passphrase, err := prompt()
		if err != nil {
			return "", SourceSealed, fmt.Errorf("reading passphrase: %w", err)
		}
		password, err := vault.Open(cfg.SealedPassword, passphrase)
		if err != nil {
			return "", SourceSealed, err
		}
		return password, SourceSealed, nil
	}

	password, err := secrets.SMTPPassword(secretsDir)
	if err != nil {
		return "", SourceNone, err
	}
	if password != "" {
		return password, SourceSecrets, nil
	}

	return "", SourceNone, fmt.Errorf(
		"no SMTP password configured: set email.password, run config init to seal one, or create %s",
		filepath.Join(secretsDir, secrets.KeySMTPPassword))
}

// PasswordConfigured reports which source a resolution would use without
// prompting or reading anything sensitive. config status uses it to report
// the password state.
func PasswordConfigured(cfg types.EmailConfig, secretsDir string) PasswordSource {
	if cfg.Password != "" {
		return SourceConfig
	}
	if cfg.SealedPassword != "" {
		return SourceSealed
	}
	if password, err := secrets.SMTPPassword(secretsDir); err == nil && password != "" {
		return SourceSecrets
	}
	return SourceNone
}
