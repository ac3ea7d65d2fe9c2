// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes runs as a human-readable table to w.
func FormatTable(runs []RunSummary, w io.Writer) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-8s  %-16s  %-24s  %-5s  %-6s  %-7s  %s\n",
		"Run", "Date", "Source", "Files", "Failed", "Saved", "Flags")
	fmt.Fprintln(w, strings.Repeat("-", 82))

	for _, r := range runs {
		src := r.SourceDir
		if len(src) > 24 {
			src = src[:21] + "..."
		}
		total := r.Compressed + r.Copied + r.Skipped + r.Failed
		fmt.Fprintf(w, "%-8s  %-16s  %-24s  %-5d  %-6d  %-7s  %s\n",
			shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04"),
			src, total, r.Failed, formatSaved(r.BytesIn, r.BytesOut), flagString(r))
	}

	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}

// FormatFiles writes one run's header and per-file rows to w.
func FormatFiles(r RunSummary, files []FileRecord, w io.Writer) {
	fmt.Fprintf(w, "Run %s\n", r.ID)
	fmt.Fprintf(w, "Started:  %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Source:   %s\n", r.SourceDir)
	fmt.Fprintf(w, "Output:   %s\n", r.OutputDir)
	if r.Ghostscript != "" {
		fmt.Fprintf(w, "Binary:   %s\n", r.Ghostscript)
	}
	fmt.Fprintf(w, "Emailed:  %v\n", r.Emailed)
	fmt.Fprintf(w, "Cleaned:  %v\n\n", r.Cleaned)

	if len(files) == 0 {
		fmt.Fprintln(w, "No files recorded.")
		return
	}

	fmt.Fprintf(w, "%-30s  %-10s  %-9s  %-9s  %s\n",
		"Source", "Status", "In", "Out", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 74))

	for _, f := range files {
		name := f.Source
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(w, "%-30s  %-10s  %-9s  %-9s  %s\n",
			name, f.Status, sizeString(f.BytesIn), sizeString(f.BytesOut), f.Error)
	}
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatSaved renders the size reduction as a percentage; runs that produced
// nothing show a dash.
func formatSaved(in, out int64) string {
	if in <= 0 || out <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*(1-float64(out)/float64(in)))
}

func flagString(r RunSummary) string {
	var b strings.Builder
	if r.Emailed {
		b.WriteString("e")
	}
	if r.Cleaned {
		b.WriteString("c")
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func sizeString(n int64) string {
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
