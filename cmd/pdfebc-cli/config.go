// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfebc-cli/internal/ghostscript"
	"github.com/pdiddy/pdfebc-cli/internal/settings"
	"github.com/pdiddy/pdfebc-cli/internal/vault"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create the tool configuration",
	Long: `Config manages the pdfebc configuration file. Use status to diagnose
the current values and environment, or init to create the file
interactively.`,
}

// --- status subcommand ---

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Diagnose the configuration and environment",
	Long: `Status reports, one line per check, whether each configuration value
and external dependency is in place: the config file, the e-mail account,
the SMTP password source, Ghostscript, the web frontend, and the history
database. It never modifies anything and always exits zero; a missing
value fails the command that needs it instead.`,
	RunE: runConfigStatus,
}

func runConfigStatus(cmd *cobra.Command, args []string) error {
	cfg := settings.FromViper(viper.GetViper())
	secretsDir, err := settings.SecretsDir()
	if err != nil {
		secretsDir = ""
	}

	gs := ghostscript.New(cfg.Compression.Ghostscript)
	checks := settings.Diagnose(cfg, viper.ConfigFileUsed(), secretsDir, gs)
	printChecks(checks, os.Stdout)
	return nil
}

func printChecks(checks []settings.Check, w io.Writer) {
	var missing, warned int
	for _, c := range checks {
		fmt.Fprintf(w, "%-8s  %-18s  %s\n", c.State, c.Name, c.Detail)
		switch c.State {
		case settings.StateMissing:
			missing++
		case settings.StateWarn:
			warned++
		}
	}

	switch {
	case missing > 0:
		fmt.Fprintf(w, "\n%d check(s) missing, %d warning(s)\n", missing, warned)
	case warned > 0:
		fmt.Fprintf(w, "\n%d warning(s)\n", warned)
	default:
		fmt.Fprintln(w, "\nConfiguration is complete.")
	}
}

// --- init subcommand ---

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file interactively",
	Long: `Init walks through the e-mail settings and writes the configuration
file with owner-only permissions. The SMTP password is read without echo
and can be sealed under a master passphrase instead of being stored in
plain text. An existing file is only replaced with --force.`,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := settings.DefaultConfigPath()
	if err != nil {
		return err
	}
	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to replace it", path)
		}
	}

	// Start from the loaded configuration so a rerun offers the current
	// values as defaults.
	cfg := settings.FromViper(viper.GetViper())

	in := bufio.NewReader(os.Stdin)
	fmt.Println("pdfebc configuration")
	cfg.Email.User = promptLine(in, "Sender address", cfg.Email.User)
	cfg.Email.Receiver = promptLine(in, "Receiver address", cfg.Email.Receiver)
	cfg.Email.SMTPServer = promptLine(in, "SMTP server", cfg.Email.SMTPServer)
	cfg.Email.SMTPPort = promptInt(in, "SMTP port", cfg.Email.SMTPPort)

	password, err := promptPassword("SMTP password: ")
	if err != nil {
		return err
	}
	switch {
	case password == "":
		fmt.Println("No password entered, leaving the password settings unchanged.")
	case promptYesNo(in, "Seal the password with a master passphrase?"):
		passphrase, err := promptNewPassphrase()
		if err != nil {
			return err
		}
		sealed, err := vault.Seal(password, passphrase)
		if err != nil {
			return err
		}
		cfg.Email.SealedPassword = sealed
		cfg.Email.Password = ""
	default:
		cfg.Email.Password = password
		cfg.Email.SealedPassword = ""
	}

	if err := settings.WriteConfig(cfg, path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func promptNewPassphrase() (string, error) {
	passphrase, err := promptPassword("Master passphrase: ")
	if err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	again, err := promptPassword("Master passphrase (again): ")
	if err != nil {
		return "", err
	}
	if passphrase != again {
		return "", fmt.Errorf("passphrases do not match")
	}
	return passphrase, nil
}

func init() {
	configInitCmd.Flags().Bool("force", false, "replace an existing config file")

	configCmd.AddCommand(configStatusCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
}
