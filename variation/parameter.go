// Package variation stores snapshots of parameter values ("variations") in
// per-composition pools, blends between them, and applies them through
// undoable commands.
package variation

import (
	"fmt"

	"github.com/google/uuid"

	"go-variations/graph"
	"go-variations/value"
)

// ParameterRef identifies an input slot by path, never by a live slot.
// InstancePath starts at the graph root, so a ref only resolves inside the
// instance it was captured on, even though pools are shared per symbol.
type ParameterRef struct {
	InstancePath []uuid.UUID
	InputID      uuid.UUID
	Kind         value.Kind
}

// Key is unique per (path, input)
func (r ParameterRef) Key() string {
	return graph.PathKey(r.InstancePath, r.InputID)
}

// Parameter is a tracked input plus its baseline value. Pools hand out one
// *Parameter per reference so variations of a pool can be blended key by key.
type Parameter struct {
	Ref ParameterRef

	// Display names captured when tracked
	InstanceName string
	InputName    string

	Original value.Value
	Strength float64
}

func newParameter(ref ParameterRef, original value.Value) *Parameter {
	return &Parameter{
		Ref:      ref,
		Original: original,
		Strength: 1,
	}
}

// Resolve finds the live slot and checks it still has the declared kind
func (p *Parameter) Resolve(g graph.Graph) (graph.Slot, error) {
	slot, err := g.Resolve(p.Ref.InstancePath, p.Ref.InputID)
	if err != nil {
		return nil, err
	}
	if slot.Kind() != p.Ref.Kind {
		return nil, fmt.Errorf("parameter %s: slot is %s, tracked as %s", p.Label(), slot.Kind(), p.Ref.Kind)
	}
	return slot, nil
}

// Label is a human readable name
func (p *Parameter) Label() string {
	switch {
	case p.InstanceName != "":
		return p.InstanceName + "." + p.InputName
	case p.InputName != "":
		return p.InputName
	}
	return p.Ref.Key()
}

// Blendable reports whether inputs of this kind can be tracked
func Blendable(k value.Kind) bool {
	return k.Components() > 0
}
