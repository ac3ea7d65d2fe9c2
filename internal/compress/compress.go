// Package compress runs PDF batches through Ghostscript and records the
// outcome in a run manifest.
// Implements: prd002-compression (R1-R5);
//
//	docs/ARCHITECTURE § Compression.
package compress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// DefaultMinSize is the copy-through threshold: recompressing PDFs below
// 1 MiB tends to grow them instead.
const DefaultMinSize int64 = 1 << 20

// Compressor turns one source PDF into a smaller output PDF. The
// Ghostscript wrapper is the production implementation.
type Compressor interface {
	Compress(src, dst string) error
}

// BatchOptions configures one compression run.
type BatchOptions struct {
	// SourceDir is scanned (non-recursively) for *.pdf files.
	SourceDir string

	// OutDir receives the products, one per source file, same basename.
	OutDir string

	// Ghostscript is the binary name recorded in the manifest.
	Ghostscript string

	// Jobs is the number of files processed concurrently. Values below 1
	// mean sequential.
	Jobs int

	// MinSize is the copy-through threshold in bytes. Values below 1 mean
	// DefaultMinSize.
	MinSize int64
}

// ListSources returns the paths of all PDF files directly in dir, sorted by
// name. The extension match is case-insensitive; subdirectories are not
// descended into.
func ListSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// PrepareOutDir ensures dir exists and is a directory. A regular file at the
// path is an error rather than something to silently replace.
func PrepareOutDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("output directory %s is a file", dir)
	case err == nil:
		return nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
		return nil
	default:
		return fmt.Errorf("checking output directory %s: %w", dir, err)
	}
}

// CompressBatch processes every PDF in opts.SourceDir through c, printing a
// status line per file to w and a trailing summary. One file failing does
// not abort the batch. The returned manifest lists entries in source order
// regardless of completion order; it is not yet written to disk.
func CompressBatch(c Compressor, opts BatchOptions, w io.Writer) (*types.Manifest, error) {
	// The output directory is checked before the source scan; a regular
	// file at that path fails the run even when the batch is empty.
	if err := PrepareOutDir(opts.OutDir); err != nil {
		return nil, err
	}

	sources, err := ListSources(opts.SourceDir)
	if err != nil {
		return nil, err
	}

	manifest := &types.Manifest{
		ID:          uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		SourceDir:   opts.SourceDir,
		OutDir:      opts.OutDir,
		Ghostscript: opts.Ghostscript,
	}

	if len(sources) == 0 {
		fmt.Fprintf(w, "No PDF files found in %s\n", opts.SourceDir)
		manifest.FinishedAt = time.Now().UTC()
		return manifest, nil
	}

	minSize := opts.MinSize
	if minSize < 1 {
		minSize = DefaultMinSize
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	fmt.Fprintf(w, "Compressing %d files ...\n", len(sources))

	entries := make([]types.ManifestEntry, len(sources))
	var g errgroup.Group
	g.SetLimit(jobs)
	var mu sync.Mutex // serializes status lines from concurrent workers

	for i, src := range sources {
		i, src := i, src // per-iteration copies; the go directive predates Go 1.22 loop scoping
		g.Go(func() error {
			e := compressOne(c, src, opts.OutDir, minSize)
			mu.Lock()
			printStatus(w, e)
			mu.Unlock()
			entries[i] = e
			return nil
		})
	}
	_ = g.Wait() // workers report through their entries, never an error

	manifest.Files = entries
	for _, e := range entries {
		switch e.Status {
		case types.StatusCompressed:
			manifest.Compressed++
		case types.StatusCopied:
			manifest.Copied++
		case types.StatusSkipped:
			manifest.Skipped++
		case types.StatusFailed:
			manifest.Failed++
		}
		manifest.SourceBytes += e.SourceBytes
		manifest.OutputBytes += e.OutputBytes
	}
	manifest.FinishedAt = time.Now().UTC()

	fmt.Fprintf(w, "\nBatch summary: %d compressed, %d copied, %d skipped, %d failed (total: %d)\n",
		manifest.Compressed, manifest.Copied, manifest.Skipped, manifest.Failed, manifest.Total())

	return manifest, nil
}

// compressOne handles a single source file: skip if the product exists, copy
// through below the size threshold, otherwise recompress. Partial output is
// removed on failure so a rerun is not fooled by it.
func compressOne(c Compressor, src, outDir string, minSize int64) types.ManifestEntry {
	name := filepath.Base(src)
	dst := filepath.Join(outDir, name)
	entry := types.ManifestEntry{Source: name}

	info, err := os.Stat(src)
	if err != nil {
		entry.Status = types.StatusFailed
		entry.Error = err.Error()
		return entry
	}
	entry.SourceBytes = info.Size()

	if existing, err := os.Stat(dst); err == nil {
		entry.Status = types.StatusSkipped
		entry.Output = name
		entry.OutputBytes = existing.Size()
		return entry
	}

	if info.Size() < minSize {
		if err := copyFile(src, dst); err != nil {
			entry.Status = types.StatusFailed
			entry.Error = err.Error()
			return entry
		}
		entry.Status = types.StatusCopied
		entry.Output = name
		entry.OutputBytes = info.Size()
		return entry
	}

	if err := c.Compress(src, dst); err != nil {
		os.Remove(dst)
		entry.Status = types.StatusFailed
		entry.Error = err.Error()
		return entry
	}

	produced, err := os.Stat(dst)
	if err != nil {
		entry.Status = types.StatusFailed
		entry.Error = fmt.Sprintf("no output produced: %v", err)
		return entry
	}
	entry.Status = types.StatusCompressed
	entry.Output = name
	entry.OutputBytes = produced.Size()
	return entry
}

func printStatus(w io.Writer, e types.ManifestEntry) {
	switch e.Status {
	case types.StatusCompressed:
		fmt.Fprintf(w, "compressed: %s (%s -> %s)\n",
			e.Source, formatSize(e.SourceBytes), formatSize(e.OutputBytes))
	case types.StatusCopied:
		fmt.Fprintf(w, "copied:  %s (%s, below minimum size)\n", e.Source, formatSize(e.SourceBytes))
	case types.StatusSkipped:
		fmt.Fprintf(w, "skipped: %s (already exists)\n", e.Source)
	case types.StatusFailed:
		fmt.Fprintf(w, "failed:  %s (%s)\n", e.Source, e.Error)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// formatSize renders a byte count the way the status lines show it.
func formatSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
