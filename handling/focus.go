package handling

import (
	"github.com/google/uuid"

	"go-variations/debug"
	"go-variations/graph"
)

// focusSet limits snapshots of a composition to some of its children.
// Children added after the focus was set are included as well.
type focusSet struct {
	children map[uuid.UUID]bool
	known    map[uuid.UUID]bool
}

// SetFocus restricts snapshots of composition to the given child ids
func (h *Handler) SetFocus(composition graph.Instance, childIDs []uuid.UUID) {
	fs := &focusSet{
		children: make(map[uuid.UUID]bool, len(childIDs)),
		known:    make(map[uuid.UUID]bool),
	}
	for _, id := range childIDs {
		fs.children[id] = true
	}
	for _, child := range composition.Children() {
		fs.known[child.ID()] = true
	}
	h.focus[composition.SymbolID()] = fs
	debug.Log("handling", "focus %s on %d of %d children", composition.Name(), len(childIDs), len(fs.known))
}

// ClearFocus removes the focus set of composition
func (h *Handler) ClearFocus(composition graph.Instance) {
	delete(h.focus, composition.SymbolID())
}

// Focused reports whether composition has a focus set
func (h *Handler) Focused(composition graph.Instance) bool {
	_, ok := h.focus[composition.SymbolID()]
	return ok
}

// affectedInstances returns the children of composition a snapshot covers
func (h *Handler) affectedInstances(composition graph.Instance) []graph.Instance {
	children := composition.Children()
	fs, ok := h.focus[composition.SymbolID()]
	if !ok {
		return children
	}

	var out []graph.Instance
	added := 0
	for _, child := range children {
		switch {
		case fs.children[child.ID()]:
			out = append(out, child)
		case !fs.known[child.ID()]:
			out = append(out, child)
			added++
		}
	}
	if added > 0 {
		debug.Log("handling", "%d children added since setting focus", added)
	}
	return out
}
