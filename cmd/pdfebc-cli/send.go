package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfebc-cli/internal/cli"
	"github.com/pdiddy/pdfebc-cli/internal/compress"
	"github.com/pdiddy/pdfebc-cli/internal/email"
	"github.com/pdiddy/pdfebc-cli/internal/history"
	"github.com/pdiddy/pdfebc-cli/internal/settings"
	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// authGuidance mirrors the SMTP server's rejection so the user can match it
// against their provider's documentation.
const authGuidance = `An authentication error has occurred!
Status code: %d
Message: %s

This usually happens due to an incorrect username and/or password in the
configuration file, so please look it over!
`

const sendGuidance = `An unexpected error occurred when attempting to send the e-mail.

Error: %v
`

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "E-mail the products of a compression run",
	Long: `Send reads the run manifest from the output directory and mails the
files the run produced to the configured receiver. The SMTP account comes
from the email section of the config; a sealed password is opened with the
master passphrase, prompted without echo.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().String("outdir", "", "output directory holding the run manifest (default \"pdfebc_out\")")

	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg := settings.FromViper(viper.GetViper())
	if cmd.Flags().Changed("outdir") {
		cfg.Compression.OutDir, _ = cmd.Flags().GetString("outdir")
	}

	manifest, err := compress.ReadManifest(cfg.Compression.OutDir)
	if err != nil {
		return fmt.Errorf("no compression run recorded in %s: %w", cfg.Compression.OutDir, err)
	}
	if len(manifest.Produced()) == 0 {
		return fmt.Errorf("the run recorded in %s produced no files", cfg.Compression.OutDir)
	}

	if err := sendProducts(cfg.Email, manifest); err != nil {
		reportSendFailure(err)
		return cli.Exit(cli.CodeError, nil)
	}

	markEmailed(cfg.History, manifest.ID)
	return nil
}

// sendProducts mails the files a run produced, resolving the SMTP password
// through the configured precedence.
func sendProducts(cfg types.EmailConfig, m *types.Manifest) error {
	if cfg.User == "" || cfg.Receiver == "" {
		return fmt.Errorf("email.user and email.receiver must be configured (run config init)")
	}

	secretsDir, err := settings.SecretsDir()
	if err != nil {
		secretsDir = ""
	}
	password, _, err := settings.ResolvePassword(cfg, secretsDir, passphrasePrompt)
	if err != nil {
		return err
	}
	cfg.Password = password

	produced := m.Produced()
	paths := make([]string, len(produced))
	for i, name := range produced {
		paths[i] = filepath.Join(m.OutDir, name)
	}

	fmt.Fprintf(os.Stdout, "Sending %d file(s) to %s\n", len(paths), cfg.Receiver)
	if err := email.NewSender(cfg).Send(paths); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Sent.")
	return nil
}

func reportSendFailure(err error) {
	var authErr *email.AuthError
	if errors.As(err, &authErr) {
		fmt.Fprintf(os.Stderr, authGuidance, authErr.Code, authErr.Msg)
		return
	}
	fmt.Fprintf(os.Stderr, sendGuidance, err)
}

// markEmailed flags the run in the history database. Best effort: the mail
// is out either way.
func markEmailed(cfg types.HistoryConfig, runID string) {
	path, err := settings.HistoryDatabasePath(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run not marked as e-mailed: %v\n", err)
		return
	}
	store, err := history.Open(path, cfg.MaxResults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run not marked as e-mailed: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.MarkEmailed(context.Background(), runID); err != nil {
		fmt.Fprintf(os.Stderr, "warning: run not marked as e-mailed: %v\n", err)
	}
}
