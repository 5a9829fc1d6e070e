// Package handling connects the variation pools to the UI selection and the
// control surfaces. The binding is rebuilt every frame and handed to the
// commands explicitly.
package handling

import (
	"strings"

	"go-variations/graph"
	"go-variations/surface"
	"go-variations/variation"
)

// LibraryNamespacePrefix marks shared library compositions. Snapshots
// would modify every user of such a symbol, so they get no snapshot pool.
const LibraryNamespacePrefix = "lib."

// Selection is the UI state a frame is bound from
type Selection struct {
	// Composition is the composition open in the graph view
	Composition graph.Instance
	// Selected are the selected children of Composition
	Selected []graph.Instance
}

// Context is the active binding of one frame
type Context struct {
	SnapshotPool     *variation.Pool
	SnapshotInstance graph.Instance
	PresetPool       *variation.Pool
	PresetInstance   graph.Instance
}

// Bind derives the active pools from a selection. A single selected
// instance binds the presets of its own symbol and the snapshots of its
// parent; otherwise the open composition's snapshots are bound unless it
// lives in the library namespace.
func Bind(reg *variation.Registry, sel Selection) Context {
	var ctx Context

	if len(sel.Selected) == 1 && sel.Selected[0] != nil {
		inst := sel.Selected[0]
		ctx.PresetPool = reg.GetOrLoad(inst.SymbolID())
		ctx.PresetInstance = inst
		if parent := inst.Parent(); parent != nil {
			ctx.SnapshotPool = reg.GetOrLoad(parent.SymbolID())
			ctx.SnapshotInstance = parent
		}
		return ctx
	}

	if sel.Composition == nil {
		return ctx
	}
	ctx.SnapshotInstance = sel.Composition
	if !IsLibrary(sel.Composition) {
		ctx.SnapshotPool = reg.GetOrLoad(sel.Composition.SymbolID())
	}
	if len(sel.Selected) == 0 {
		ctx.PresetInstance = sel.Composition
	}
	return ctx
}

// IsLibrary reports whether inst belongs to the library namespace
func IsLibrary(inst graph.Instance) bool {
	return strings.HasPrefix(inst.Namespace(), LibraryNamespacePrefix)
}

// Feedback returns the pool shown on the surfaces, or nil
func (c Context) Feedback() surface.Feedback {
	if c.SnapshotPool == nil {
		return nil
	}
	return c.SnapshotPool
}
