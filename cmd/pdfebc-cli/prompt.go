package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// promptLine reads one trimmed line from in, offering def as the default.
func promptLine(in *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := in.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func promptInt(in *bufio.Reader, label string, def int) int {
	for {
		raw := promptLine(in, label, strconv.Itoa(def))
		n, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Printf("%q is not a number\n", raw)
			continue
		}
		return n
	}
}

func promptYesNo(in *bufio.Reader, label string) bool {
	fmt.Printf("%s [y/N]: ", label)
	line, err := in.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// promptPassword reads a line without echo. The prompt goes to stderr so
// the flow works when stdout is redirected.
func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}

// passphrasePrompt asks for the master passphrase that opens the sealed
// password. It matches settings.PassphraseFunc.
func passphrasePrompt() (string, error) {
	return promptPassword("Master passphrase: ")
}
