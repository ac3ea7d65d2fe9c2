// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfebc-cli tool.
// Implements: prd001-server-delegation, prd002-compression,
//             prd003-email-dispatch, prd004-run-history, prd005-settings (CLI surface).
// See docs/ARCHITECTURE § Command Interface, § Project Structure.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfebc-cli/internal/cli"
	"github.com/pdiddy/pdfebc-cli/internal/settings"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdfebc-cli tool.
var rootCmd = &cobra.Command{
	Use:   "pdfebc-cli",
	Short: "Compress PDF files for e-book use",
	Long: `pdfebc-cli compresses PDF files for e-book use by shelling out to
Ghostscript, optionally e-mails the compressed results, and keeps a local
history of compression runs. The companion pdfebc-web frontend is launched
through the runserver command.

Sources are read from a directory, recompressed with Ghostscript's /ebook
profile, and written next to a run manifest that the send and history
commands consume.`,

	// Errors and usage are printed by main, which also owns exit codes.
	SilenceUsage:  true,
	SilenceErrors: true,

	// Bare and unrecognized invocations are usage errors, not help (which
	// stays available behind --help). Args passes them through to RunE so
	// both exit with the usage code.
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cli.Usagef("no command given")
		}
		return cli.Usagef("unknown command %q for %q", args[0], cmd.CommandPath())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfebc.yaml or ~/.config/pdfebc/pdfebc.yaml)")

	// Unknown or malformed flags carry the usage exit code.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cli.Usagef("%w", err)
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(settings.ConfigName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfebc"))
		}
	}

	viper.SetEnvPrefix(settings.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	settings.Defaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		os.Exit(cli.CodeOK)
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.CodeError)
	}

	if exitErr.Err != nil {
		fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
	}
	if exitErr.Code == cli.CodeUsage {
		fmt.Fprint(os.Stderr, cmd.UsageString())
	}
	os.Exit(exitErr.Code)
}
