// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// CheckState classifies the outcome of one configuration check.
type CheckState string

const (
	// StateOK means the checked value is present and usable.
	StateOK CheckState = "ok"

	// StateWarn means the tool works but something deserves attention.
	StateWarn CheckState = "warn"

	// StateMissing means a command depending on the value will fail.
	StateMissing CheckState = "missing"
)

// Check is one line of the config status report.
type Check struct {
	Name   string
	State  CheckState
	Detail string
}

// gsProbe is the slice of the Ghostscript wrapper the diagnosis needs.
type gsProbe interface {
	Bin() string
	Available() bool
	Version() (string, error)
}

// lookPath resolves binaries on PATH. Variable for test substitution.
var lookPath = exec.LookPath

// Diagnose runs every configuration check and returns the results in
// display order. configFile is the loaded config path ("" when none was
// found). Diagnosis never prompts and never creates anything on disk.
func Diagnose(cfg types.Config, configFile, secretsDir string, gs gsProbe) []Check {
	checks := []Check{
		checkConfigFile(configFile),
		checkValue("email user", cfg.Email.User, "set email.user"),
		checkValue("email receiver", cfg.Email.Receiver, "set email.receiver"),
		checkPassword(cfg.Email, secretsDir),
		checkSMTP(cfg.Email),
		checkGhostscript(gs),
		checkServerBinary(cfg.Server.Binary),
		checkHistory(cfg.History),
	}
	return checks
}

func checkConfigFile(configFile string) Check {
	if configFile == "" {
		return Check{
			Name:   "config file",
			State:  StateWarn,
			Detail: "not found, using defaults and environment (run config init)",
		}
	}
	return Check{Name: "config file", State: StateOK, Detail: configFile}
}

func checkValue(name, value, hint string) Check {
	if value == "" {
		return Check{Name: name, State: StateMissing, Detail: hint}
	}
	return Check{Name: name, State: StateOK, Detail: value}
}

func checkPassword(cfg types.EmailConfig, secretsDir string) Check {
	c := Check{Name: "smtp password"}
	switch PasswordConfigured(cfg, secretsDir) {
	case SourceConfig:
		c.State = StateWarn
		c.Detail = "stored in plain text (run config init to seal it)"
	case SourceSealed:
		c.State = StateOK
		c.Detail = "sealed, passphrase required to send"
	case SourceSecrets:
		c.State = StateOK
		c.Detail = "secrets directory"
	default:
		c.State = StateMissing
		c.Detail = "set email.password or run config init"
	}
	return c
}

func checkSMTP(cfg types.EmailConfig) Check {
	if cfg.SMTPServer == "" {
		return Check{Name: "smtp server", State: StateMissing, Detail: "set email.smtp_server"}
	}
	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		return Check{
			Name:   "smtp server",
			State:  StateMissing,
			Detail: fmt.Sprintf("port %d is not a valid TCP port", cfg.SMTPPort),
		}
	}
	addr := net.JoinHostPort(cfg.SMTPServer, strconv.Itoa(cfg.SMTPPort))
	return Check{Name: "smtp server", State: StateOK, Detail: addr}
}

func checkGhostscript(gs gsProbe) Check {
	c := Check{Name: "ghostscript"}
	if !gs.Available() {
		c.State = StateMissing
		c.Detail = fmt.Sprintf("%s not on PATH, compress will fail", gs.Bin())
		return c
	}
	version, err := gs.Version()
	if err != nil {
		c.State = StateWarn
		c.Detail = fmt.Sprintf("%s found but version query failed: %v", gs.Bin(), err)
		return c
	}
	c.State = StateOK
	c.Detail = fmt.Sprintf("%s %s", gs.Bin(), version)
	return c
}

// checkServerBinary warns rather than fails: only runserver needs the web
// frontend, and a missing binary surfaces there with its own error.
func checkServerBinary(bin string) Check {
	c := Check{Name: "web frontend"}
	path, err := lookPath(bin)
	if err != nil {
		c.State = StateWarn
		c.Detail = fmt.Sprintf("%s not on PATH, runserver unavailable", bin)
		return c
	}
	c.State = StateOK
	c.Detail = path
	return c
}

func checkHistory(cfg types.HistoryConfig) Check {
	c := Check{Name: "history database"}
	path, err := HistoryDatabasePath(cfg)
	if err != nil {
		c.State = StateWarn
		c.Detail = fmt.Sprintf("cannot resolve database path: %v", err)
		return c
	}
	if _, err := os.Stat(path); err != nil {
		c.State = StateOK
		c.Detail = fmt.Sprintf("%s (created on first run)", path)
		return c
	}
	c.State = StateOK
	c.Detail = path
	return c
}
