package mexp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"nickandperla.net/mexp/internal/store"
)

// isStored reports whether name is in the store.
func isStored(t *testing.T, s Store, name string) bool {
	t.Helper()
	entries, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, e := range entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

func TestExpandKeepsDefinitions(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	if _, err := r.Expand(`\def{x}{[#]}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := r.Expand(`\x{\x{Z}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "[[Z]]" {
		t.Errorf("expected '[[Z]]', got '%s'", result)
	}
	if !r.Defined("x") {
		t.Errorf("expected x to be defined")
	}
}

func TestExpandErrorCodes(t *testing.T) {
	r, _ := New()
	defer r.Close()

	_, err := r.Expand(`\undefinedname{A}`)
	if !ErrorIs(err, ErrUndefinedMacro) {
		t.Errorf("expected ErrUndefinedMacro, got %v", err)
	}
	_, err = r.Expand(`\def{x}{a}\def{x}{b}`)
	if !ErrorIs(err, ErrRedefined) {
		t.Errorf("expected ErrRedefined, got %v", err)
	}
	// The first definition of the failed run survives.
	if !r.Defined("x") {
		t.Errorf("expected x to stay defined after the failed run")
	}
}

func TestPrelude(t *testing.T) {
	r, err := New(WithPrelude(`\def{greet}{Hello, #!}ignored output`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	result, err := r.Expand(`\greet{world}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Hello, world!" {
		t.Errorf("expected 'Hello, world!', got '%s'", result)
	}
}

func TestStandardPrelude(t *testing.T) {
	r, err := New(WithStandardPrelude(), WithPrelude(`\def{title}{\strong{\emph{#}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	result, err := r.Expand(`\title{Go} \code{x} \paren{\discard{gone}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("**_Go_** `x` ()", result); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if !r.Defined("identity") {
		t.Errorf("expected identity to be defined")
	}
}

func TestBadPrelude(t *testing.T) {
	_, err := New(WithPrelude(`\def{x}{`))
	if !ErrorIs(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced from prelude, got %v", err)
	}
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "defs.tex")
	body := filepath.Join(dir, "body.tex")
	os.WriteFile(defs, []byte("\\def{x}{<#>}% definitions\n"), 0644)
	os.WriteFile(body, []byte(`\x{one} \x{two}`), 0644)

	r, _ := New()
	defer r.Close()

	result, err := r.ExpandFiles(defs, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("<one> <two>", result); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.ExpandFiles(filepath.Join(dir, "missing.tex")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestExpandReader(t *testing.T) {
	r, _ := New()
	defer r.Close()

	result, err := r.ExpandReader(strings.NewReader(`\if{x}{yes}{no}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "yes" {
		t.Errorf("expected 'yes', got '%s'", result)
	}
}

func TestIncludeDirs(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "chapter.tex"), []byte(`\def{c}{C}\c{}`), 0644)

	r, _ := New(WithIncludeDirs(dir))
	defer r.Close()

	result, err := r.Expand(`[\include{chapter.tex}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "[C]" {
		t.Errorf("expected '[C]', got '%s'", result)
	}

	_, err = r.Expand(`\include{nowhere.tex}`)
	if !ErrorIs(err, ErrInclude) {
		t.Errorf("expected ErrInclude, got %v", err)
	}
}

func TestCustomFileReader(t *testing.T) {
	r, _ := New(WithFileReader(func(path string) (string, error) {
		return "<" + path + ">", nil
	}))
	defer r.Close()

	result, err := r.Expand(`\include{anything}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "<anything>" {
		t.Errorf("expected '<anything>', got '%s'", result)
	}
}

func TestMaxNestingOption(t *testing.T) {
	r, _ := New(WithMaxNesting(1))
	defer r.Close()

	if _, err := r.Expand(`\expandafter{a}{b}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := r.Expand(`\expandafter{a}{\expandafter{b}{c}}`)
	if !ErrorIs(err, ErrNestingLimit) {
		t.Errorf("expected ErrNestingLimit, got %v", err)
	}
}

func TestPersistAlways(t *testing.T) {
	s := store.NewMemory()
	r, err := New(WithStore(s), WithPersistMode(PersistAlways))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := r.Expand(`\def{a}{1}\def{b}{2}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Expand(`\undef{a}\def{c}{3}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, _ := s.List()
	want := []store.Entry{{Name: "b", Definition: "2"}, {Name: "c", Definition: "3"}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("stored definitions mismatch (-want +got):\n%s", diff)
	}

	// A failed run writes nothing.
	if _, err := r.Expand(`\def{d}{4}\nope{}`); err == nil {
		t.Fatalf("expected error")
	}
	if isStored(t, s, "d") {
		t.Errorf("expected d not to be stored after a failed run")
	}
}

func TestPersistLoad(t *testing.T) {
	s := store.NewMemory()
	s.Put("greet", "Hi #")
	s.Put("x", "stored")

	r, err := New(WithStore(s), WithPrelude(`\def{x}{prelude}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := r.Expand(`\greet{there}, \x{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Hi there, stored" {
		t.Errorf("expected 'Hi there, stored', got '%s'", result)
	}

	// Load mode never writes back.
	if _, err := r.Expand(`\def{extra}{e}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isStored(t, s, "extra") {
		t.Errorf("expected extra not to be stored in load mode")
	}
}

func TestPersistNever(t *testing.T) {
	s := store.NewMemory()
	s.Put("greet", "Hi #")

	r, err := New(WithStore(s), WithPersistMode(PersistNever))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Defined("greet") {
		t.Errorf("expected stored definitions to be ignored")
	}
}

func TestSQLitePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.db")

	r, err := New(WithSQLiteStore(path), WithPersistMode(PersistAlways))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Expand(`\def{sig}{-- #}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Close()

	r2, err := New(WithSQLiteStore(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r2.Close()

	result, err := r2.Expand(`\sig{nick}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "-- nick" {
		t.Errorf("expected '-- nick', got '%s'", result)
	}
	if diff := cmp.Diff([]Entry{{Name: "sig", Definition: "-- #"}}, r2.Definitions()); diff != "" {
		t.Errorf("definitions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReportsLastSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.db")

	r, err := New(WithSQLiteStore(path), WithPersistMode(PersistAlways))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Expand(`\def{x}{X}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	UseLogger(zap.New(core))
	defer UseLogger(zap.NewNop())

	r2, err := New(WithSQLiteStore(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r2.Close()

	entries := logs.FilterMessage("loaded stored definitions").All()
	if len(entries) != 1 {
		t.Fatalf("expected one load entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["count"] != int64(1) {
		t.Errorf("expected count 1, got %v", fields["count"])
	}
	if lastSync, _ := fields["last_sync"].(string); lastSync == "" {
		t.Errorf("expected a recorded sync time, got %v", fields["last_sync"])
	}
}

func TestSQLiteStoreOpenError(t *testing.T) {
	dir := t.TempDir()
	_, err := New(WithSQLiteStore(filepath.Join(dir, "no", "such", "dir", "x.db")))
	if !ErrorIs(err, ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
}

func TestParsePersistMode(t *testing.T) {
	tests := []struct {
		in   string
		mode PersistMode
		ok   bool
	}{
		{"load", PersistLoad, true},
		{"ALWAYS", PersistAlways, true},
		{"never", PersistNever, true},
		{"sometimes", PersistLoad, false},
	}
	for _, tt := range tests {
		mode, ok := ParsePersistMode(tt.in)
		if mode != tt.mode || ok != tt.ok {
			t.Errorf("ParsePersistMode(%q) = %v, %v; want %v, %v", tt.in, mode, ok, tt.mode, tt.ok)
		}
		if ok && !strings.EqualFold(mode.String(), tt.in) {
			t.Errorf("expected String() to round-trip %q, got %q", tt.in, mode.String())
		}
	}
}
