package history

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), 0)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testManifest(id string, started time.Time) *types.Manifest {
	return &types.Manifest{
		ID:          id,
		StartedAt:   started,
		FinishedAt:  started.Add(45 * time.Second),
		SourceDir:   "papers",
		OutDir:      "pdfebc_out",
		Ghostscript: "gs",
		Compressed:  2,
		Failed:      1,
		SourceBytes: 5 << 20,
		OutputBytes: 1 << 20,
		Files: []types.ManifestEntry{
			{Source: "a.pdf", Output: "a.pdf", Status: types.StatusCompressed, SourceBytes: 3 << 20, OutputBytes: 512 << 10},
			{Source: "b.pdf", Output: "b.pdf", Status: types.StatusCompressed, SourceBytes: 2 << 20, OutputBytes: 512 << 10},
			{Source: "c.pdf", Status: types.StatusFailed, Error: "gs blew up"},
		},
	}
}

func TestRecordAndListRuns(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	older := testManifest("run-older-1111", time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC))
	newer := testManifest("run-newer-2222", time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC))

	if err := s.RecordRun(ctx, older, false, false); err != nil {
		t.Fatalf("recording older run: %v", err)
	}
	if err := s.RecordRun(ctx, newer, true, true); err != nil {
		t.Fatalf("recording newer run: %v", err)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-newer-2222" || runs[1].ID != "run-older-1111" {
		t.Errorf("runs not newest first: %s, %s", runs[0].ID, runs[1].ID)
	}

	got := runs[0]
	if !got.StartedAt.Equal(newer.StartedAt) {
		t.Errorf("got start %v, want %v", got.StartedAt, newer.StartedAt)
	}
	if got.SourceDir != "papers" || got.OutputDir != "pdfebc_out" || got.Ghostscript != "gs" {
		t.Errorf("run row survived badly: %+v", got)
	}
	if got.Compressed != 2 || got.Failed != 1 {
		t.Errorf("counts survived badly: %+v", got)
	}
	if got.BytesIn != 5<<20 || got.BytesOut != 1<<20 {
		t.Errorf("byte totals survived badly: %+v", got)
	}
	if !got.Emailed || !got.Cleaned {
		t.Errorf("flags survived badly: %+v", got)
	}
}

func TestRecordRunDuplicate(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	m := testManifest("run-dup-0000", time.Now().UTC())
	if err := s.RecordRun(ctx, m, false, false); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := s.RecordRun(ctx, m, false, false); err == nil {
		t.Fatal("recording the same run twice should fail")
	}
}

func TestListRunsLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := s.RecordRun(ctx, testManifest(id, base.Add(time.Duration(i)*time.Hour)), false, false); err != nil {
			t.Fatalf("recording %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-c" {
		t.Errorf("got first run %s, want run-c", runs[0].ID)
	}
}

func TestListRunsSameSecondOrdering(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	// Fractions chosen so a trimmed-zero encoding would invert the order:
	// ".2Z" sorts after ".25Z" as text.
	sec := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	earlier := testManifest("run-early", sec.Add(200*time.Millisecond))
	later := testManifest("run-late", sec.Add(250*time.Millisecond))

	if err := s.RecordRun(ctx, earlier, false, false); err != nil {
		t.Fatalf("recording earlier run: %v", err)
	}
	if err := s.RecordRun(ctx, later, false, false); err != nil {
		t.Fatalf("recording later run: %v", err)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-late" || runs[1].ID != "run-early" {
		t.Errorf("same-second runs not newest first: %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[0].StartedAt.Equal(later.StartedAt) {
		t.Errorf("got start %v, want %v", runs[0].StartedAt, later.StartedAt)
	}
}

func TestMarkEmailed(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	m := testManifest("run-mail-1234", time.Now().UTC())
	if err := s.RecordRun(ctx, m, false, false); err != nil {
		t.Fatalf("recording run: %v", err)
	}

	if err := s.MarkEmailed(ctx, "run-mail-1234"); err != nil {
		t.Fatalf("marking run: %v", err)
	}
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if !runs[0].Emailed {
		t.Error("run should be flagged as emailed")
	}

	if err := s.MarkEmailed(ctx, "run-unknown"); err == nil {
		t.Fatal("marking an unrecorded run should fail")
	}
}

func TestResolveRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for _, id := range []string{"aaa1111", "aaa2222", "bbb3333"} {
		if err := s.RecordRun(ctx, testManifest(id, base), false, false); err != nil {
			t.Fatalf("recording %s: %v", id, err)
		}
	}

	tests := []struct {
		name    string
		prefix  string
		want    string
		wantErr string
	}{
		{name: "full id", prefix: "bbb3333", want: "bbb3333"},
		{name: "unique prefix", prefix: "bbb", want: "bbb3333"},
		{name: "unique longer prefix", prefix: "aaa2", want: "aaa2222"},
		{name: "ambiguous prefix", prefix: "aaa", wantErr: "ambiguous"},
		{name: "no match", prefix: "zzz", wantErr: "no run matches"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ResolveRun(ctx, tt.prefix)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q should contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunFiles(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	m := testManifest("run-files-9876", time.Now().UTC())
	if err := s.RecordRun(ctx, m, false, false); err != nil {
		t.Fatalf("recording run: %v", err)
	}

	summary, files, err := s.RunFiles(ctx, "run-files")
	if err != nil {
		t.Fatalf("loading run files: %v", err)
	}
	if summary.ID != "run-files-9876" {
		t.Errorf("got run %s, want run-files-9876", summary.ID)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	if files[0].Source != "a.pdf" || files[1].Source != "b.pdf" || files[2].Source != "c.pdf" {
		t.Errorf("files not in source order: %+v", files)
	}
	if files[2].Status != string(types.StatusFailed) || files[2].Error != "gs blew up" {
		t.Errorf("failed entry survived badly: %+v", files[2])
	}
	if files[2].Output != "" {
		t.Errorf("failed entry should have no output, got %q", files[2].Output)
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	if !strings.Contains(buf.String(), "No runs recorded.") {
		t.Errorf("empty listing should say so, got: %q", buf.String())
	}

	runs := []RunSummary{
		{
			ID:        "0d9f2a4e-8b1c-4f3a-9c67-2f51f0a8f7d1",
			StartedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
			SourceDir: "papers",
			Compressed: 3, Failed: 1,
			BytesIn: 10 << 20, BytesOut: 2 << 20,
			Emailed: true,
		},
	}
	buf.Reset()
	FormatTable(runs, &buf)
	out := buf.String()
	if !strings.Contains(out, "0d9f2a4e") {
		t.Errorf("table should show the short run id, got:\n%s", out)
	}
	if strings.Contains(out, "0d9f2a4e-") {
		t.Errorf("table should truncate the run id, got:\n%s", out)
	}
	if !strings.Contains(out, "80.0%") {
		t.Errorf("table should show the size saving, got:\n%s", out)
	}
	if !strings.Contains(out, "1 runs") {
		t.Errorf("table should end with the run count, got:\n%s", out)
	}
}

func TestFormatFiles(t *testing.T) {
	r := RunSummary{
		ID:        "run-files-9876",
		StartedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
		SourceDir: "papers",
		OutputDir: "pdfebc_out",
	}
	files := []FileRecord{
		{Source: "a.pdf", Output: "a.pdf", Status: "compressed", BytesIn: 3 << 20, BytesOut: 512 << 10},
		{Source: "c.pdf", Status: "failed", Error: "gs blew up"},
	}

	var buf bytes.Buffer
	FormatFiles(r, files, &buf)
	out := buf.String()
	for _, want := range []string{"Run run-files-9876", "a.pdf", "compressed", "3.0 MiB", "failed", "gs blew up"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
