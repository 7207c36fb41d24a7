package mexp

import (
	"strings"
	"time"

	"nickandperla.net/mexp/internal/macroerr"
)

// PersistMode controls when definitions are read from and written to the
// store.
type PersistMode int

const (
	// PersistLoad is the default - stored definitions are loaded at startup
	// and never written back.
	PersistLoad PersistMode = iota
	// PersistAlways loads at startup and syncs the table to the store after
	// every successful expansion.
	PersistAlways
	// PersistNever ignores the store.
	PersistNever
)

// String returns the string representation of a PersistMode.
func (m PersistMode) String() string {
	switch m {
	case PersistLoad:
		return "load"
	case PersistAlways:
		return "always"
	case PersistNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParsePersistMode parses a string into a PersistMode.
func ParsePersistMode(s string) (PersistMode, bool) {
	switch strings.ToLower(s) {
	case "load":
		return PersistLoad, true
	case "always":
		return PersistAlways, true
	case "never":
		return PersistNever, true
	default:
		return PersistLoad, false
	}
}

// metadataStore is implemented by stores that keep bookkeeping values.
type metadataStore interface {
	GetMetadata(key string) (string, error)
	SetMetadata(key, value string) error
}

// load defines every stored macro. A stored definition replaces one of the
// same name made by the prelude.
func (r *Runtime) load() error {
	if r.store == nil || r.persistMode == PersistNever {
		return nil
	}
	entries, err := r.store.List()
	if err != nil {
		return macroerr.Wrap(macroerr.ErrStore, err, "cannot list stored definitions")
	}
	r.synced = make(map[string]string, len(entries))
	for _, e := range entries {
		if r.table.Has(e.Name) {
			if err := r.table.Undefine(e.Name); err != nil {
				return err
			}
		}
		if err := r.table.Define(e.Name, e.Definition); err != nil {
			return err
		}
		r.synced[e.Name] = e.Definition
	}
	if ms, ok := r.store.(metadataStore); ok {
		lastSync, err := ms.GetMetadata("last_sync")
		if err != nil {
			return macroerr.Wrap(macroerr.ErrStore, err, "cannot read sync time")
		}
		log.Infow("loaded stored definitions", "count", len(entries), "last_sync", lastSync)
		return nil
	}
	log.Debugw("loaded stored definitions", "count", len(entries))
	return nil
}

// sync writes changed definitions to the store and deletes undefined ones.
func (r *Runtime) sync() error {
	if r.store == nil || r.persistMode != PersistAlways {
		return nil
	}
	current := r.table.Entries()
	next := make(map[string]string, len(current))
	puts := 0
	for _, e := range current {
		next[e.Name] = e.Definition
		if old, ok := r.synced[e.Name]; ok && old == e.Definition {
			continue
		}
		if err := r.store.Put(e.Name, e.Definition); err != nil {
			return macroerr.Wrap(macroerr.ErrStore, err, "cannot store definition "+e.Name)
		}
		puts++
	}
	deletes := 0
	for name := range r.synced {
		if _, ok := next[name]; ok {
			continue
		}
		if err := r.store.Delete(name); err != nil {
			return macroerr.Wrap(macroerr.ErrStore, err, "cannot delete definition "+name)
		}
		deletes++
	}
	r.synced = next

	if ms, ok := r.store.(metadataStore); ok && puts+deletes > 0 {
		if err := ms.SetMetadata("last_sync", time.Now().UTC().Format(time.RFC3339)); err != nil {
			return macroerr.Wrap(macroerr.ErrStore, err, "cannot record sync time")
		}
	}
	log.Debugw("synced definitions", "put", puts, "deleted", deletes)
	return nil
}
