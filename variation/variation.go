package variation

import (
	"fmt"

	"github.com/google/uuid"

	"go-variations/graph"
	"go-variations/undo"
	"go-variations/value"
)

// NoIndex marks a variation that is not reachable from hardware
const NoIndex = -1

// GridCell places a variation on the 2-D blending canvas
type GridCell struct {
	X, Y int
}

// Variation is one snapshot of parameter values
type Variation struct {
	ID                   uuid.UUID
	GridCell             GridCell
	ThumbnailNeedsUpdate bool

	activationIndex int
	params          []*Parameter
	values          map[*Parameter]value.Value

	// live values when the variation was created; undo restores these
	originals map[*Parameter]value.Value

	graph   graph.Graph
	command *undo.Macro
}

// Neighbor weights a variation for Mix
type Neighbor struct {
	Variation *Variation
	Weight    float64
}

// newVariation builds a variation and its change command. Values whose kind
// does not match the parameter are dropped.
func newVariation(g graph.Graph, params []*Parameter, values map[*Parameter]value.Value) *Variation {
	v := &Variation{
		ID:                   uuid.New(),
		ThumbnailNeedsUpdate: true,
		activationIndex:      NoIndex,
		values:               make(map[*Parameter]value.Value, len(params)),
		originals:            make(map[*Parameter]value.Value, len(params)),
		graph:                g,
	}
	for _, p := range params {
		val, ok := values[p]
		if !ok || val == nil || val.Kind() != p.Ref.Kind {
			continue
		}
		if _, dup := v.values[p]; dup {
			continue
		}
		v.params = append(v.params, p)
		v.values[p] = val
		v.originals[p] = p.Original
		if slot, err := p.Resolve(g); err == nil {
			v.originals[p] = slot.Value()
		}
	}
	v.command = v.createChangeCommand()
	return v
}

func (v *Variation) createChangeCommand() *undo.Macro {
	commands := make([]undo.Command, 0, len(v.params))
	for _, p := range v.params {
		commands = append(commands, undo.NewChangeInputValue(v.graph, p.Ref.InstancePath, p.Ref.InputID, v.originals[p], v.values[p]))
	}
	return undo.NewMacro("Set Preset Values", commands)
}

// ActivationIndex returns the hardware index, if any
func (v *Variation) ActivationIndex() (int, bool) {
	return v.activationIndex, v.activationIndex != NoIndex
}

// Value returns the stored value for p
func (v *Variation) Value(p *Parameter) (value.Value, bool) {
	val, ok := v.values[p]
	return val, ok
}

// Parameters lists the variation's parameters in capture order
func (v *Variation) Parameters() []*Parameter {
	return v.params
}

func (v *Variation) Len() int {
	return len(v.params)
}

// Command is the reversible change that applies this variation
func (v *Variation) Command() undo.Command {
	return v.command
}

// Clone copies the values into a new unindexed variation with a fresh command
func (v *Variation) Clone() *Variation {
	values := make(map[*Parameter]value.Value, len(v.values))
	for p, val := range v.values {
		values[p] = val
	}
	return newVariation(v.graph, v.params, values)
}

// ApplyValues executes the change command without recording it. Use
// Pool.Apply for an undoable application.
func (v *Variation) ApplyValues() error {
	return v.command.Do()
}

// RestoreValues reverts the parameters to the values they had when the
// variation was created
func (v *Variation) RestoreValues() error {
	return v.command.Undo()
}

// Mix blends the neighbors' values for every parameter. Without neighbors
// each parameter gets its original value. A parameter's Strength scales the
// distance from its original value to the blended value.
func Mix(g graph.Graph, params []*Parameter, neighbors []Neighbor, scatter float64, cell GridCell, rng value.Source) (*Variation, error) {
	if len(params) == 0 {
		return nil, ErrNoParameters
	}
	values := make(map[*Parameter]value.Value, len(params))
	for _, p := range params {
		// Parameters no neighbor knows about keep their original value
		var weighted []value.Weighted
		for _, n := range neighbors {
			if val, ok := n.Variation.Value(p); ok {
				weighted = append(weighted, value.Weighted{Value: val, Weight: n.Weight})
			}
		}

		blended, err := value.Blend(p.Original, weighted, scatter, rng)
		if err != nil {
			return nil, fmt.Errorf("mix %s: %w", p.Label(), err)
		}
		values[p] = applyStrength(p, blended)
	}

	v := newVariation(g, params, values)
	v.GridCell = cell
	return v, nil
}

func applyStrength(p *Parameter, blended value.Value) value.Value {
	if p.Strength == 1 || p.Original == nil {
		return blended
	}
	orig, b := p.Original.Components(), blended.Components()
	out := make([]float64, len(b))
	for i := range b {
		out[i] = orig[i] + (b[i]-orig[i])*p.Strength
	}
	v, err := value.FromComponents(blended.Kind(), out)
	if err != nil {
		return blended
	}
	return v
}
