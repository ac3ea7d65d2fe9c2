// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FileStatus indicates how a source PDF was handled during a compression run.
// Per prd002-compression R4.2.
type FileStatus string

const (
	// StatusCompressed means Ghostscript produced the output file.
	StatusCompressed FileStatus = "compressed"

	// StatusCopied means the source was below the minimum size and was
	// copied through unchanged.
	StatusCopied FileStatus = "copied"

	// StatusSkipped means the output file already existed and was left alone.
	StatusSkipped FileStatus = "skipped"

	// StatusFailed means Ghostscript exited non-zero or the copy failed.
	StatusFailed FileStatus = "failed"
)

// ManifestEntry records the outcome for a single source PDF.
type ManifestEntry struct {
	// Source is the input filename relative to the source directory.
	Source string `json:"source" yaml:"source"`

	// Output is the output filename relative to the output directory.
	// Empty when the file failed or was skipped without a product.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Status is the handling outcome for this file.
	Status FileStatus `json:"status" yaml:"status"`

	// SourceBytes is the size of the input file.
	SourceBytes int64 `json:"source_bytes" yaml:"source_bytes"`

	// OutputBytes is the size of the produced file, 0 when none was produced.
	OutputBytes int64 `json:"output_bytes,omitempty" yaml:"output_bytes,omitempty"`

	// Error holds the failure message when Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Manifest records one compression run: which files were processed, how each
// one fared, and the directories involved. It is written to the output
// directory and is the contract between compress, send, and history.
// Per prd002-compression R4.1-R4.4.
type Manifest struct {
	// ID uniquely identifies the run (UUID).
	ID string `json:"id" yaml:"id"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// SourceDir is the directory the run scanned for PDFs.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// OutDir is the directory products were written to.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Ghostscript is the Ghostscript binary the run used.
	Ghostscript string `json:"ghostscript" yaml:"ghostscript"`

	// Compressed, Copied, Skipped, and Failed count entries by status.
	Compressed int `json:"compressed" yaml:"compressed"`
	Copied     int `json:"copied" yaml:"copied"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Failed     int `json:"failed" yaml:"failed"`

	// SourceBytes and OutputBytes total the entry sizes.
	SourceBytes int64 `json:"source_bytes" yaml:"source_bytes"`
	OutputBytes int64 `json:"output_bytes" yaml:"output_bytes"`

	// Files lists the per-file outcomes in source order.
	Files []ManifestEntry `json:"files" yaml:"files"`
}

// Total returns the number of files the run processed.
func (m *Manifest) Total() int {
	return m.Compressed + m.Copied + m.Skipped + m.Failed
}

// HasFailures reports whether any file failed.
func (m *Manifest) HasFailures() bool {
	return m.Failed > 0
}

// Produced returns the output filenames of entries that yielded a product,
// in source order. Skipped entries count: their product is already present.
func (m *Manifest) Produced() []string {
	var names []string
	for _, f := range m.Files {
		if f.Output != "" {
			names = append(names, f.Output)
		}
	}
	return names
}
