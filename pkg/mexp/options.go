package mexp

import (
	"nickandperla.net/mexp/internal/expand"
	"nickandperla.net/mexp/internal/macro"
	"nickandperla.net/mexp/internal/macroerr"
	"nickandperla.net/mexp/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// Store interface for custom stores.
type Store = store.Store

// Entry is one macro definition.
type Entry = macro.Entry

// FileReader returns the entire contents of a file named by include.
type FileReader = expand.FileReader

// Error is the error type returned for every expansion failure.
type Error = macroerr.Error

// ErrorCode identifies the kind of an Error.
type ErrorCode = macroerr.ErrorCode

// Error codes.
const (
	ErrMacroName      = macroerr.ErrMacroName
	ErrMissingBrace   = macroerr.ErrMissingBrace
	ErrUnbalanced     = macroerr.ErrUnbalanced
	ErrRedefined      = macroerr.ErrRedefined
	ErrNotDefined     = macroerr.ErrNotDefined
	ErrUndefinedMacro = macroerr.ErrUndefinedMacro
	ErrUnterminated   = macroerr.ErrUnterminated
	ErrInclude        = macroerr.ErrInclude
	ErrStore          = macroerr.ErrStore
	ErrNestingLimit   = macroerr.ErrNestingLimit
)

// ErrorIs returns true if err carries the given code.
func ErrorIs(err error, code ErrorCode) bool {
	return macroerr.Is(err, code)
}

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.storeErr = err
			return
		}
		r.store = s
	}
}

// WithStore configures a custom store. The Runtime closes it.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithPersistMode sets the persistence mode.
func WithPersistMode(mode PersistMode) Option {
	return func(r *Runtime) {
		r.persistMode = mode
	}
}

// WithPrelude sets a document expanded once when the Runtime is created.
// Its output is discarded; its definitions are kept.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// WithStandardPrelude defines the standard formatting macros (emph, strong,
// code, quote, paren, bracket, identity, discard) before any other prelude.
func WithStandardPrelude() Option {
	return func(r *Runtime) {
		r.standard = true
	}
}

// WithIncludeDirs adds directories searched for relative include paths.
func WithIncludeDirs(dirs ...string) Option {
	return func(r *Runtime) {
		r.includeDirs = append(r.includeDirs, dirs...)
	}
}

// WithFileReader replaces the file access used by include. Include
// directories are not consulted when it is set.
func WithFileReader(reader FileReader) Option {
	return func(r *Runtime) {
		r.fileReader = reader
	}
}

// WithMaxNesting bounds the nesting depth of expandafter. Zero means
// unbounded.
func WithMaxNesting(n int) Option {
	return func(r *Runtime) {
		r.maxNesting = n
	}
}
