// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ghostscript wraps the Ghostscript binary for PDF recompression.
// Implements: prd002-compression (R1, R2);
//
//	docs/ARCHITECTURE § Compression.
package ghostscript

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the Ghostscript executable resolved on PATH when the
// configuration names no other.
const DefaultBinary = "gs"

// ebookArgs is the fixed argument prefix for e-book recompression. The
// /ebook profile downsamples images to 150 dpi, which is where the size
// win for reader devices comes from.
var ebookArgs = []string{
	"-sDEVICE=pdfwrite",
	"-dCompatibilityLevel=1.4",
	"-dPDFSETTINGS=/ebook",
	"-dNOPAUSE",
	"-dQUIET",
	"-dBATCH",
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec. Run returns the
// combined output so Ghostscript's diagnostics survive into error messages.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

var defaultExec = &osExecutor{}

// Ghostscript invokes a Ghostscript binary to recompress single PDF files.
type Ghostscript struct {
	bin  string
	exec executor
}

// New returns a Ghostscript wrapper for the given binary, falling back to
// DefaultBinary when bin is empty.
func New(bin string) *Ghostscript {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Ghostscript{bin: bin, exec: defaultExec}
}

// Bin returns the binary name the wrapper resolves.
func (g *Ghostscript) Bin() string { return g.bin }

// Available reports whether the binary exists on PATH.
func (g *Ghostscript) Available() bool {
	_, err := g.exec.LookPath(g.bin)
	return err == nil
}

// Version returns the Ghostscript version string (e.g. "10.02.1").
func (g *Ghostscript) Version() (string, error) {
	out, err := g.exec.Run(g.bin, "--version")
	if err != nil {
		return "", fmt.Errorf("querying %s version: %w", g.bin, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Compress recompresses the PDF at src into dst using the /ebook profile.
// Ghostscript's own output is folded into the error on failure.
func (g *Ghostscript) Compress(src, dst string) error {
	out, err := g.exec.Run(g.bin, compressArgs(src, dst)...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s failed for %s: %w: %s", g.bin, filepath.Base(src), err, msg)
		}
		return fmt.Errorf("%s failed for %s: %w", g.bin, filepath.Base(src), err)
	}
	return nil
}

func compressArgs(src, dst string) []string {
	args := make([]string, 0, len(ebookArgs)+2)
	args = append(args, ebookArgs...)
	args = append(args, "-sOutputFile="+dst, src)
	return args
}
