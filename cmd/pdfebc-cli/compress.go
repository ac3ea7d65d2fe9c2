package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfebc-cli/internal/compress"
	"github.com/pdiddy/pdfebc-cli/internal/ghostscript"
	"github.com/pdiddy/pdfebc-cli/internal/history"
	"github.com/pdiddy/pdfebc-cli/internal/settings"
	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress the PDFs in a directory for e-book use",
	Long: `Compress runs every PDF in the source directory through Ghostscript's
/ebook profile and writes the results to the output directory, along with
a run manifest that the send and history commands consume. Files below the
minimum size are copied through unchanged, and files whose product already
exists are skipped, so reruns only do new work.

One file failing does not abort the batch; the run exits non-zero when any
file failed. With --email the products are mailed afterwards, and --clean
removes the output directory once everything else is done.`,
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().String("srcdir", "", "source directory scanned for PDFs (default \".\")")
	compressCmd.Flags().String("outdir", "", "output directory for the products (default \"pdfebc_out\")")
	compressCmd.Flags().String("ghostscript", "", "Ghostscript binary name or path (default \"gs\")")
	compressCmd.Flags().Int("jobs", 0, "number of files compressed concurrently (default 1)")
	compressCmd.Flags().Bool("email", false, "e-mail the products when the batch finishes")
	compressCmd.Flags().Bool("clean", false, "remove the output directory when done")

	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	cfg := settings.FromViper(viper.GetViper())
	applyCompressFlags(cmd, &cfg.Compression)

	gs := ghostscript.New(cfg.Compression.Ghostscript)

	manifest, err := compress.CompressBatch(gs, compress.BatchOptions{
		SourceDir:   cfg.Compression.SourceDir,
		OutDir:      cfg.Compression.OutDir,
		Ghostscript: gs.Bin(),
		Jobs:        cfg.Compression.Jobs,
		MinSize:     cfg.Compression.MinSizeBytes,
	}, os.Stdout)
	if err != nil {
		return err
	}

	if manifest.Total() > 0 {
		if err := compress.WriteManifest(manifest); err != nil {
			fmt.Fprintf(os.Stderr, "warning: manifest write failed: %v\n", err)
		}
	}

	// Delivery failures never fail a batch that compressed fine; the user
	// gets the guidance text and keeps the products on disk.
	emailed := false
	doEmail, _ := cmd.Flags().GetBool("email")
	if doEmail {
		if len(manifest.Produced()) == 0 {
			fmt.Fprintln(os.Stdout, "Nothing to send.")
		} else if err := sendProducts(cfg.Email, manifest); err != nil {
			reportSendFailure(err)
		} else {
			emailed = true
		}
	}

	cleaned := false
	if doClean, _ := cmd.Flags().GetBool("clean"); doClean {
		if err := os.RemoveAll(cfg.Compression.OutDir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cleaning %s failed: %v\n", cfg.Compression.OutDir, err)
		} else {
			fmt.Fprintf(os.Stdout, "Removed %s\n", cfg.Compression.OutDir)
			cleaned = true
		}
	}

	if manifest.Total() > 0 {
		recordRun(cfg.History, manifest, emailed, cleaned)
	}

	if manifest.HasFailures() {
		return fmt.Errorf("%d file(s) failed compression", manifest.Failed)
	}
	return nil
}

// applyCompressFlags overlays explicitly set flags onto the configured
// values, so flags win over the config file and environment.
func applyCompressFlags(cmd *cobra.Command, cfg *types.CompressionConfig) {
	if cmd.Flags().Changed("srcdir") {
		cfg.SourceDir, _ = cmd.Flags().GetString("srcdir")
	}
	if cmd.Flags().Changed("outdir") {
		cfg.OutDir, _ = cmd.Flags().GetString("outdir")
	}
	if cmd.Flags().Changed("ghostscript") {
		cfg.Ghostscript, _ = cmd.Flags().GetString("ghostscript")
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs, _ = cmd.Flags().GetInt("jobs")
	}
}

// recordRun stores the run in the history database. Best effort: a history
// problem never undoes a finished batch.
func recordRun(cfg types.HistoryConfig, m *types.Manifest, emailed, cleaned bool) {
	path, err := settings.HistoryDatabasePath(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %v\n", err)
		return
	}
	store, err := history.Open(path, cfg.MaxResults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(context.Background(), m, emailed, cleaned); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %v\n", err)
	}
}
