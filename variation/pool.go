package variation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"go-variations/debug"
	"go-variations/graph"
	"go-variations/undo"
	"go-variations/value"
)

var (
	ErrIndexTaken   = errors.New("variation: activation index already in use")
	ErrNotInPool    = errors.New("variation: not in pool")
	ErrInvalidIndex = errors.New("variation: invalid activation index")
	ErrNoParameters = errors.New("variation: no parameters to mix")
)

const (
	modifiedEpsilon  = 1e-6
	defaultGridWidth = 8
)

// State describes a pool slot for feedback rendering
type State int

const (
	StateUndefined State = iota
	StateInactive
	StateActive
	StateModified
	StateBlended
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	case StateModified:
		return "modified"
	case StateBlended:
		return "blended"
	}
	return "undefined"
}

// Pool holds the variations and tracked parameters of one composition.
// Pools are keyed by symbol but store root-absolute paths: variations
// captured on one instance of a symbol do not resolve on its other instances.
type Pool struct {
	SymbolID uuid.UUID

	graph graph.Graph
	stack *undo.Stack
	rng   value.Source

	variations []*Variation
	byIndex    map[int]*Variation
	active     *Variation
	blended    map[*Variation]bool

	params []*Parameter
	byKey  map[string]*Parameter
}

// NewPool creates an empty pool for a composition symbol
func NewPool(symbolID uuid.UUID, g graph.Graph, stack *undo.Stack, rng value.Source) *Pool {
	return &Pool{
		SymbolID: symbolID,
		graph:    g,
		stack:    stack,
		rng:      rng,
		byIndex:  make(map[int]*Variation),
		blended:  make(map[*Variation]bool),
		byKey:    make(map[string]*Parameter),
	}
}

// Variations returns the variations in creation order
func (p *Pool) Variations() []*Variation {
	return p.variations
}

func (p *Pool) Len() int {
	return len(p.variations)
}

// Active returns the last applied variation, or nil
func (p *Pool) Active() *Variation {
	return p.active
}

// Parameters returns all tracked parameters
func (p *Pool) Parameters() []*Parameter {
	return p.params
}

// Track starts tracking every blendable input of the given instances.
// Already tracked inputs keep their original value. Returns the number of
// newly tracked parameters.
func (p *Pool) Track(instances []graph.Instance) int {
	added := 0
	for _, inst := range instances {
		path := inst.Path()
		for _, in := range inst.Inputs() {
			if !Blendable(in.Kind) {
				continue
			}
			ref := ParameterRef{InstancePath: path, InputID: in.ID, Kind: in.Kind}
			if _, ok := p.byKey[ref.Key()]; ok {
				continue
			}
			slot, err := p.graph.Resolve(path, in.ID)
			if err != nil {
				debug.Warn("pool", "track %s.%s: %v", inst.Name(), in.Name, err)
				continue
			}
			param := p.trackRef(ref, slot.Value())
			param.InstanceName = inst.Name()
			param.InputName = in.Name
			added++
		}
	}
	if added > 0 {
		debug.Log("pool", "%s: tracking %d new parameters (%d total)", p.SymbolID, added, len(p.params))
	}
	return added
}

// Parameter returns the tracked parameter for a reference
func (p *Pool) Parameter(ref ParameterRef) (*Parameter, bool) {
	param, ok := p.byKey[ref.Key()]
	return param, ok
}

func (p *Pool) trackRef(ref ParameterRef, original value.Value) *Parameter {
	if param, ok := p.byKey[ref.Key()]; ok {
		return param
	}
	param := newParameter(ref, original)
	p.params = append(p.params, param)
	p.byKey[ref.Key()] = param
	return param
}

// ParametersFor returns the tracked parameters belonging to the instances
func (p *Pool) ParametersFor(instances []graph.Instance) []*Parameter {
	keys := make(map[string]bool, len(instances))
	for _, inst := range instances {
		keys[graph.PathKey(inst.Path(), uuid.Nil)] = true
	}
	var out []*Parameter
	for _, param := range p.params {
		if keys[graph.PathKey(param.Ref.InstancePath, uuid.Nil)] {
			out = append(out, param)
		}
	}
	return out
}

// CreateVariationForInstances snapshots the current values of the tracked
// parameters of the instances and adds the result to the pool. Returns nil if
// none of the instances has tracked parameters.
func (p *Pool) CreateVariationForInstances(instances []graph.Instance) *Variation {
	params := p.ParametersFor(instances)
	if len(params) == 0 {
		return nil
	}

	values := make(map[*Parameter]value.Value, len(params))
	for _, param := range params {
		slot, err := param.Resolve(p.graph)
		if err != nil {
			debug.Warn("pool", "snapshot skips %s: %v", param.Label(), err)
			continue
		}
		values[param] = slot.Value()
	}
	if len(values) == 0 {
		return nil
	}

	v := newVariation(p.graph, params, values)
	p.variations = append(p.variations, v)
	return v
}

// Mix blends neighbors into a new variation placed at cell. The result is
// not added to the pool and has no activation index.
func (p *Pool) Mix(params []*Parameter, neighbors []Neighbor, scatter float64, cell GridCell) (*Variation, error) {
	return Mix(p.graph, params, neighbors, scatter, cell, p.rng)
}

// Add inserts a variation built elsewhere (Mix, Clone). An index already set
// on v must be free.
func (p *Pool) Add(v *Variation) error {
	if p.contains(v) {
		return nil
	}
	if idx, ok := v.ActivationIndex(); ok {
		if other, taken := p.byIndex[idx]; taken && other != v {
			return fmt.Errorf("add variation at %d: %w", idx, ErrIndexTaken)
		}
		p.byIndex[idx] = v
	}
	p.variations = append(p.variations, v)
	return nil
}

// SetActivationIndex assigns a hardware index to a pool variation
func (p *Pool) SetActivationIndex(v *Variation, idx int) error {
	if idx < 0 {
		return ErrInvalidIndex
	}
	if !p.contains(v) {
		return ErrNotInPool
	}
	if other, taken := p.byIndex[idx]; taken && other != v {
		return fmt.Errorf("set index %d: %w", idx, ErrIndexTaken)
	}
	p.ClearActivationIndex(v)
	v.activationIndex = idx
	p.byIndex[idx] = v
	return nil
}

// ClearActivationIndex makes v unindexed
func (p *Pool) ClearActivationIndex(v *Variation) {
	if idx, ok := v.ActivationIndex(); ok {
		if p.byIndex[idx] == v {
			delete(p.byIndex, idx)
		}
		v.activationIndex = NoIndex
	}
}

// GetSnapshot looks up a variation by activation index
func (p *Pool) GetSnapshot(idx int) (*Variation, bool) {
	v, ok := p.byIndex[idx]
	return v, ok
}

// DeleteVariation removes v; its parameters stay tracked. Returns false if v
// was not in the pool.
func (p *Pool) DeleteVariation(v *Variation) bool {
	for i, other := range p.variations {
		if other != v {
			continue
		}
		p.variations = append(p.variations[:i], p.variations[i+1:]...)
		p.ClearActivationIndex(v)
		delete(p.blended, v)
		if p.active == v {
			p.active = nil
		}
		return true
	}
	return false
}

// Apply runs the variation's change command as one undo step. Undo restores
// the values the parameters held when v was created. With
// resetOthersToDefault, tracked parameters of instance that v does not set
// are first reset to their original value within the same step.
func (p *Pool) Apply(instance graph.Instance, v *Variation, resetOthersToDefault bool) error {
	if v == nil || !p.contains(v) {
		return ErrNotInPool
	}

	var cmd undo.Command = v.command
	if resetOthersToDefault {
		if resets := p.resetCommands(instance, v); len(resets) > 0 {
			cmd = undo.NewMacro("Apply Preset", append(resets, v.command))
		}
	}

	if err := p.stack.AddAndExecute(cmd); err != nil {
		return fmt.Errorf("apply variation: %w", err)
	}
	p.active = v
	return nil
}

func (p *Pool) resetCommands(instance graph.Instance, v *Variation) []undo.Command {
	var scope []uuid.UUID
	if instance != nil {
		scope = instance.Path()
	}

	var cmds []undo.Command
	for _, param := range p.params {
		if _, ok := v.values[param]; ok {
			continue
		}
		if !graph.HasPrefix(param.Ref.InstancePath, scope) {
			continue
		}
		slot, err := param.Resolve(p.graph)
		if err != nil {
			continue
		}
		current := slot.Value()
		if value.Equal(current, param.Original) {
			continue
		}
		cmds = append(cmds, undo.NewChangeInputValue(p.graph, param.Ref.InstancePath, param.Ref.InputID, current, param.Original))
	}
	return cmds
}

// IsModified reports whether live values differ from what v stores
func (p *Pool) IsModified(v *Variation) bool {
	for _, param := range v.params {
		slot, err := param.Resolve(p.graph)
		if err != nil {
			continue
		}
		if !value.Near(slot.Value(), v.values[param], modifiedEpsilon) {
			return true
		}
	}
	return false
}

// State returns the feedback state of an activation index
func (p *Pool) State(idx int) State {
	v, ok := p.byIndex[idx]
	if !ok {
		return StateUndefined
	}
	switch {
	case p.blended[v]:
		return StateBlended
	case v == p.active && p.IsModified(v):
		return StateModified
	case v == p.active:
		return StateActive
	}
	return StateInactive
}

// SetBlended marks the variations taking part in a live blend
func (p *Pool) SetBlended(vs []*Variation) {
	clear(p.blended)
	for _, v := range vs {
		p.blended[v] = true
	}
}

// FindFreeCell returns the first grid cell (row-major, width columns) not
// used by any variation.
func (p *Pool) FindFreeCell(width int) GridCell {
	if width <= 0 {
		width = defaultGridWidth
	}
	used := make(map[GridCell]bool, len(p.variations))
	for _, v := range p.variations {
		used[v.GridCell] = true
	}
	for i := 0; ; i++ {
		cell := GridCell{X: i % width, Y: i / width}
		if !used[cell] {
			return cell
		}
	}
}

func (p *Pool) contains(v *Variation) bool {
	for _, other := range p.variations {
		if other == v {
			return true
		}
	}
	return false
}
