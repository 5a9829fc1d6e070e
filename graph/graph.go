// Package graph describes the slice of the node-graph engine the variation
// system consumes: instances with stable child ids, typed input slots, and
// cache invalidation.
package graph

import (
	"errors"

	"github.com/google/uuid"

	"go-variations/value"
)

var ErrNotFound = errors.New("graph: not found")

// InputDef describes one input slot of an instance
type InputDef struct {
	ID   uuid.UUID
	Name string
	Kind value.Kind
}

// Slot is a live, mutable parameter slot
type Slot interface {
	Kind() value.Kind
	Value() value.Value
	Set(v value.Value) error

	// Invalidate marks the slot's cached evaluation stale
	Invalidate()
}

// Instance is a node in the composition tree
type Instance interface {
	ID() uuid.UUID // child id, stable within the parent composition
	SymbolID() uuid.UUID
	Name() string
	Namespace() string

	// Path lists child ids from the composition root down to this instance.
	// The root's path is empty.
	Path() []uuid.UUID
	Parent() Instance
	Children() []Instance
	Inputs() []InputDef
}

// Graph resolves instance paths to slots. Resolution happens at apply time;
// callers must not keep slots across frames since instances may be rebuilt.
type Graph interface {
	Resolve(path []uuid.UUID, input uuid.UUID) (Slot, error)
}

// PathKey renders a path (and optional input) as a map key
func PathKey(path []uuid.UUID, input uuid.UUID) string {
	b := make([]byte, 0, (len(path)+1)*37)
	for _, id := range path {
		b = append(b, id.String()...)
		b = append(b, '/')
	}
	b = append(b, input.String()...)
	return string(b)
}

// HasPrefix reports whether path starts with prefix
func HasPrefix(path, prefix []uuid.UUID) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
