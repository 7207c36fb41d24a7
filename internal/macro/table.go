// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package macro implements the user macro table.
package macro

import (
	"strings"
	"sync"

	"nickandperla.net/mexp/internal/macroerr"
	"nickandperla.net/mexp/internal/scanner"
)

// Marker is replaced by the invocation's argument when a macro expands.
const Marker = '#'

// Entry is one user-defined macro.
type Entry struct {
	Name       string
	Definition string
}

// Table is an ordered, thread-safe collection of macro definitions. Names
// are unique and compared byte for byte.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewTable creates a new empty table.
func NewTable() *Table {
	return &Table{}
}

// Locate returns the index of name, or -1 if it is not defined.
func (t *Table) Locate(name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.locate(name)
}

func (t *Table) locate(name string) int {
	for i, e := range t.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Has returns true if name is defined.
func (t *Table) Has(name string) bool {
	return t.Locate(name) != -1
}

// Lookup returns the definition of name.
func (t *Table) Lookup(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.locate(name); i != -1 {
		return t.entries[i].Definition, true
	}
	return "", false
}

// Define adds a macro. Redefining a live name is an error.
func (t *Table) Define(name, definition string) error {
	if !ValidName(name) {
		return macroerr.Newf(macroerr.ErrMacroName,
			"cannot define %q: macro name must be alphanumeric", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locate(name) != -1 {
		return macroerr.Newf(macroerr.ErrRedefined, "cannot redefine macro %q", name)
	}
	t.entries = append(t.entries, Entry{Name: name, Definition: definition})
	return nil
}

// Undefine removes a macro, keeping the order of the others.
func (t *Table) Undefine(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.locate(name)
	if i == -1 {
		return macroerr.Newf(macroerr.ErrNotDefined, "cannot undefine %q: macro not defined", name)
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return nil
}

// Expand returns the definition of name with arg substituted for each
// unescaped marker.
func (t *Table) Expand(name, arg string) (string, error) {
	definition, ok := t.Lookup(name)
	if !ok {
		return "", macroerr.Newf(macroerr.ErrUndefinedMacro, "macro %q not defined", name)
	}
	return Substitute(definition, arg), nil
}

// Entries returns a copy of the definitions in definition order.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Substitute replaces every marker in definition with arg. A backslash
// protects the byte after it; the backslash itself is always kept, so an
// escaped marker comes out as the two bytes `\#`.
func Substitute(definition, arg string) string {
	var sb strings.Builder
	escaped := false
	for i := 0; i < len(definition); i++ {
		c := definition[i]
		if c == Marker && !escaped {
			sb.WriteString(arg)
			continue
		}
		escaped = !escaped && c == '\\'
		sb.WriteByte(c)
	}
	return sb.String()
}

// ValidName reports whether name can be invoked as a macro.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !scanner.IsAlnum(name[i]) {
			return false
		}
	}
	return true
}
