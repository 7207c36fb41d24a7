// Package mexp provides the public API for the mexp macro expander.
package mexp

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"nickandperla.net/mexp/internal/expand"
	"nickandperla.net/mexp/internal/macro"
	"nickandperla.net/mexp/internal/macroerr"
	"nickandperla.net/mexp/internal/stdlib"
	"nickandperla.net/mexp/internal/store"
)

// Runtime expands documents against a macro table that lives as long as
// the Runtime does.
type Runtime struct {
	table       *macro.Table
	expander    *expand.Expander
	store       Store
	storeErr    error // deferred from WithSQLiteStore
	persistMode PersistMode
	standard    bool
	prelude     string
	includeDirs []string
	fileReader  FileReader
	maxNesting  int
	synced      map[string]string // definitions as last written to the store
}

// New creates a Runtime. The standard prelude and the prelude are expanded
// first, then stored definitions are loaded according to the persist mode.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		table:       macro.NewTable(),
		persistMode: PersistLoad,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.storeErr != nil {
		return nil, macroerr.Wrap(macroerr.ErrStore, r.storeErr, "cannot open definition store")
	}

	reader := r.fileReader
	if reader == nil {
		reader = includeReader(r.includeDirs)
	}
	r.expander = expand.New(r.table,
		expand.WithFileReader(expand.FileReader(reader)),
		expand.WithMaxNesting(r.maxNesting),
	)

	var preludes []string
	if r.standard {
		preludes = append(preludes, stdlib.Prelude)
	}
	if r.prelude != "" {
		preludes = append(preludes, r.prelude)
	}
	for _, p := range preludes {
		if _, err := r.expander.Expand(p); err != nil {
			r.Close()
			return nil, err
		}
	}

	if err := r.load(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Expand expands text and returns the result. Definitions made by text
// remain for later calls, even if expansion fails part way through.
func (r *Runtime) Expand(text string) (string, error) {
	out, err := r.expander.Expand(text)
	if err != nil {
		return "", err
	}
	if err := r.sync(); err != nil {
		return "", err
	}
	return out, nil
}

// ExpandReader expands everything read from reader.
func (r *Runtime) ExpandReader(reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return r.Expand(string(data))
}

// ExpandFiles concatenates the named files in order and expands the result
// as one document.
func (r *Runtime) ExpandFiles(paths ...string) (string, error) {
	var sb strings.Builder
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		sb.Write(data)
	}
	return r.Expand(sb.String())
}

// Defined returns true if name is currently defined.
func (r *Runtime) Defined(name string) bool {
	return r.table.Has(name)
}

// Definitions returns the current definitions in definition order.
func (r *Runtime) Definitions() []Entry {
	return r.table.Entries()
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// UseLogger routes logging of all mexp packages to logger.
func UseLogger(logger *zap.Logger) {
	sugar := logger.Sugar()
	log = sugar
	expand.UseLogger(sugar)
	store.UseLogger(sugar)
}

var log = zap.NewNop().Sugar()
