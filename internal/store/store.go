// Package store provides persistence for macro definitions.
package store

import "go.uber.org/zap"

// Entry is one persisted macro definition.
type Entry struct {
	Name       string
	Definition string
}

// Store is the interface for definition persistence.
type Store interface {
	// Put stores a definition, overwriting if it exists. An overwritten
	// entry keeps its position in List.
	Put(name, definition string) error
	// Delete removes a definition. Deleting a missing name is not an error.
	Delete(name string) error
	// List returns all definitions in the order they were first stored.
	List() ([]Entry, error)
	// Close releases resources.
	Close() error
}

var log = zap.NewNop().Sugar()

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger *zap.SugaredLogger) {
	log = logger
}
