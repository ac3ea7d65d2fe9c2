// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ghostscript

import (
	"errors"
	"strings"
	"testing"
)

// mockExecutor records Run calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	output        []byte
	err           error
	calls         [][]string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	return m.output, m.err
}

func TestCompressArgs(t *testing.T) {
	got := compressArgs("in.pdf", "out/in.pdf")
	want := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/ebook",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=out/in.pdf",
		"in.pdf",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d args, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompressInvokesBinary(t *testing.T) {
	exec := &mockExecutor{}
	g := &Ghostscript{bin: "gs", exec: exec}

	if err := g.Compress("a.pdf", "out/a.pdf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("got %d executions, want 1", len(exec.calls))
	}
	call := exec.calls[0]
	if call[0] != "gs" {
		t.Errorf("got binary %q, want %q", call[0], "gs")
	}
	if call[len(call)-1] != "a.pdf" {
		t.Errorf("source should be the last argument, got %q", call[len(call)-1])
	}
}

func TestCompressFailureIncludesOutput(t *testing.T) {
	exec := &mockExecutor{
		output: []byte("GPL Ghostscript: Error: /invalidfileaccess\n"),
		err:    errors.New("exit status 1"),
	}
	g := &Ghostscript{bin: "gs", exec: exec}

	err := g.Compress("broken.pdf", "out/broken.pdf")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("error should name the source file, got: %v", err)
	}
	if !strings.Contains(err.Error(), "invalidfileaccess") {
		t.Errorf("error should carry ghostscript output, got: %v", err)
	}
}

func TestCompressFailureWithoutOutput(t *testing.T) {
	exec := &mockExecutor{err: errors.New("exit status 1")}
	g := &Ghostscript{bin: "gs", exec: exec}

	err := g.Compress("a.pdf", "out/a.pdf")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("error should wrap the exit error, got: %v", err)
	}
}

func TestAvailable(t *testing.T) {
	g := &Ghostscript{bin: "gs", exec: &mockExecutor{availableBins: map[string]bool{"gs": true}}}
	if !g.Available() {
		t.Error("gs on PATH should be available")
	}
	g = &Ghostscript{bin: "gs", exec: &mockExecutor{availableBins: map[string]bool{}}}
	if g.Available() {
		t.Error("missing gs should not be available")
	}
}

func TestVersion(t *testing.T) {
	exec := &mockExecutor{output: []byte("10.02.1\n")}
	g := &Ghostscript{bin: "gs", exec: exec}

	v, err := g.Version()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "10.02.1" {
		t.Errorf("got version %q, want %q", v, "10.02.1")
	}
	if len(exec.calls) != 1 || exec.calls[0][1] != "--version" {
		t.Errorf("expected a --version invocation, got %v", exec.calls)
	}
}

func TestNewDefaultsBinary(t *testing.T) {
	if g := New(""); g.Bin() != DefaultBinary {
		t.Errorf("got binary %q, want %q", g.Bin(), DefaultBinary)
	}
	if g := New("gs10"); g.Bin() != "gs10" {
		t.Errorf("got binary %q, want %q", g.Bin(), "gs10")
	}
}
