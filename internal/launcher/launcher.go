// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package launcher validates runserver invocations and delegates to the
// pdfebc-web frontend.
// Implements: prd001-server-delegation (R1-R4);
//
//	docs/ARCHITECTURE § Server Delegation.
package launcher

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfebc-cli/internal/cli"
	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// DefaultBinary is the web frontend executable resolved on PATH when the
// configuration names no other.
const DefaultBinary = "pdfebc-web"

// hostLabelPattern matches one RFC 1123 hostname label: "localhost",
// "my-host", "0example". Hyphens only in the interior.
var hostLabelPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// ParseConfig validates the host and port strings from the command line and
// returns the server configuration for delegation. Validation failures are
// usage errors (exit code 2) and nothing is resolved or started for them.
func ParseConfig(host, port string) (types.ServerConfig, error) {
	if err := ValidateHost(host); err != nil {
		return types.ServerConfig{}, cli.Usagef("invalid host: %w", err)
	}

	p, err := ParsePort(port)
	if err != nil {
		return types.ServerConfig{}, cli.Usagef("invalid port: %w", err)
	}

	return types.ServerConfig{Host: host, Port: p}, nil
}

// ValidateHost accepts an IP literal or an RFC 1123 hostname: labels of 1 to
// 63 characters, alphanumeric with interior hyphens, at most 253 characters
// in total. A single trailing dot is tolerated.
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host must not be empty")
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	name := strings.TrimSuffix(host, ".")
	if name == "" || len(name) > 253 {
		return fmt.Errorf("%q is not a valid hostname", host)
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) == 0 || len(label) > 63 || !hostLabelPattern.MatchString(label) {
			return fmt.Errorf("%q is not a valid hostname", host)
		}
	}
	return nil
}

// ParsePort parses a base-10 port number and checks it is in 0 through 65535.
func ParsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("port must be an integer, got %q", s)
	}
	if p < 0 || p > 65535 {
		return 0, fmt.Errorf("port must be between 0 and 65535, got %d", p)
	}
	return p, nil
}

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)

	// Run starts the named program and blocks until it exits. It returns
	// the program's exit status when the program ran, or an error when it
	// could not be started at all.
	Run(name string, args ...string) (int, error)
}

// osExecutor is the production executor backed by os/exec. The child process
// inherits this process's stdin, stdout, and stderr so the frontend owns the
// terminal for its lifetime.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

// Launcher resolves the web frontend binary and runs it in the foreground.
type Launcher struct {
	bin  string
	out  io.Writer
	exec executor
}

var defaultExec = &osExecutor{}

// New returns a Launcher for the given frontend binary, falling back to
// DefaultBinary when bin is empty. Status lines go to out.
func New(bin string, out io.Writer) *Launcher {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Launcher{bin: bin, out: out, exec: defaultExec}
}

// Binary returns the frontend binary the launcher will resolve.
func (l *Launcher) Binary() string { return l.bin }

// Launch hands the validated host and port to the web frontend and blocks
// until it exits. A frontend that exits non-zero surfaces as an ExitError
// carrying the same status, so the calling process mirrors it. A frontend
// that cannot be resolved or started is an ordinary error.
func (l *Launcher) Launch(cfg types.ServerConfig) error {
	path, err := l.exec.LookPath(l.bin)
	if err != nil {
		return fmt.Errorf("%s not found on PATH: %w", l.bin, err)
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	fmt.Fprintf(l.out, "Starting %s on %s\n", l.bin, addr)

	code, err := l.exec.Run(path, "--host", cfg.Host, "--port", strconv.Itoa(cfg.Port))
	if err != nil {
		return fmt.Errorf("starting %s: %w", l.bin, err)
	}
	if code != 0 {
		return cli.Exit(code, fmt.Errorf("%s exited with status %d", l.bin, code))
	}
	return nil
}
