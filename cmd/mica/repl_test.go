package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestREPL(t *testing.T) *REPL {
	t.Helper()
	return NewREPL(false, filepath.Join(t.TempDir(), ".mica_history"), 100)
}

func TestEvaluateExpression(t *testing.T) {
	r := newTestREPL(t)
	out, err := r.Evaluate("2 + 3 * 4")
	if err != nil {
		t.Fatalf("Evaluate() returned error: %v", err)
	}
	if out != "14\n" {
		t.Errorf("output wrong. expected=%q, got=%q", "14\n", out)
	}
}

func TestEvaluateStatement(t *testing.T) {
	r := newTestREPL(t)
	out, err := r.Evaluate("print 1 + 1;")
	if err != nil {
		t.Fatalf("Evaluate() returned error: %v", err)
	}
	if out != "2\n" {
		t.Errorf("output wrong. expected=%q, got=%q", "2\n", out)
	}
}

func TestEvaluateKeepsDeclarations(t *testing.T) {
	r := newTestREPL(t)
	if _, err := r.Evaluate("func double(x: i32) -> i32 { return x * 2; }"); err != nil {
		t.Fatalf("declaration rejected: %v", err)
	}
	out, err := r.Evaluate("double(21)")
	if err != nil {
		t.Fatalf("Evaluate() returned error: %v", err)
	}
	if out != "42\n" {
		t.Errorf("output wrong. expected=%q, got=%q", "42\n", out)
	}
}

func TestEvaluateRejectsBadDeclaration(t *testing.T) {
	r := newTestREPL(t)
	if _, err := r.Evaluate("func bad() -> i32 { return true; }"); err == nil {
		t.Fatal("expected semantic error, got nil")
	}
	if len(r.decls) != 0 {
		t.Errorf("expected rejected declaration to be dropped, kept %d", len(r.decls))
	}
}

func TestEvaluateSemanticError(t *testing.T) {
	r := newTestREPL(t)
	_, err := r.Evaluate("1 + true")
	if err == nil {
		t.Fatal("expected semantic error, got nil")
	}
	if !strings.Contains(err.Error(), "semantic error") {
		t.Errorf("expected semantic error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	r := newTestREPL(t)
	path := filepath.Join(t.TempDir(), "defs.mica")
	src := "func inc(x: i32) -> i32 { return x + 1; }\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() returned error: %v", err)
	}
	out, err := r.Evaluate("inc(41)")
	if err != nil {
		t.Fatalf("Evaluate() returned error: %v", err)
	}
	if out != "42\n" {
		t.Errorf("output wrong. expected=%q, got=%q", "42\n", out)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	histPath := filepath.Join(dir, ".mica_history")

	r := NewREPL(false, histPath, 100)
	r.AddToHistory("print 1;")
	r.AddToHistory("print 2;")
	r.SaveHistory()

	r2 := NewREPL(false, histPath, 100)
	r2.LoadHistory()
	if len(r2.history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(r2.history))
	}
	if r2.history[1] != "print 2;" {
		t.Errorf("expected last entry %q, got %q", "print 2;", r2.history[1])
	}
}

func TestHistoryCapped(t *testing.T) {
	r := NewREPL(false, filepath.Join(t.TempDir(), ".mica_history"), 3)
	for _, line := range []string{"a", "b", "c", "d"} {
		r.AddToHistory(line)
	}
	if len(r.history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(r.history))
	}
	if r.history[0] != "b" {
		t.Errorf("expected oldest entry %q, got %q", "b", r.history[0])
	}
}
