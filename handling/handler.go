package handling

import (
	"go-variations/debug"
	"go-variations/surface"
	"go-variations/variation"

	"github.com/google/uuid"
)

// AutoIndex asks CreateOrUpdateSnapshotVariation for an unindexed snapshot
const AutoIndex = -1

// blendRange is the controller value range mapped onto blend position [0, 1]
const blendRange = 127.0

// Settings tune the handler
type Settings struct {
	// ResetToDefaultValues resets parameters a snapshot does not set
	ResetToDefaultValues bool
	// BlendIdleTicks ends a blend after that many ticks without movement
	BlendIdleTicks int
	// GridWidth is the number of columns used to place new snapshots
	GridWidth int
	// Scatter is the random perturbation added by MixPresets
	Scatter float64
}

// Handler is the per-frame orchestrator. All pool mutation happens inside
// Update or the commands it dispatches, on the caller's goroutine.
type Handler struct {
	registry *variation.Registry
	settings Settings

	devices []surface.Device
	ctx     Context
	gesture *variation.Gesture
	focus   map[uuid.UUID]*focusSet

	frames int
	closed bool
}

// New creates a handler over the pools of reg
func New(reg *variation.Registry, settings Settings) *Handler {
	return &Handler{
		registry: reg,
		settings: settings,
		gesture:  variation.NewGesture(settings.BlendIdleTicks),
		focus:    make(map[uuid.UUID]*focusSet),
	}
}

// Context returns the binding of the current frame
func (h *Handler) Context() Context {
	return h.ctx
}

// Gesture returns the blend gesture
func (h *Handler) Gesture() *variation.Gesture {
	return h.gesture
}

// Settings returns the current settings
func (h *Handler) Settings() Settings {
	return h.settings
}

// SetResetToDefaultValues toggles resetting untouched parameters on apply
func (h *Handler) SetResetToDefaultValues(on bool) {
	h.settings.ResetToDefaultValues = on
}

// AddDevice registers a surface. A device with the same id is replaced.
func (h *Handler) AddDevice(d surface.Device) {
	h.RemoveDevice(d.ID())
	h.devices = append(h.devices, d)
	debug.Log("handling", "device %s added", d.ID())
}

// RemoveDevice drops and closes the surface with id
func (h *Handler) RemoveDevice(id string) bool {
	for i, d := range h.devices {
		if d.ID() != id {
			continue
		}
		d.Close()
		h.devices = append(h.devices[:i], h.devices[i+1:]...)
		debug.Log("handling", "device %s removed", id)
		return true
	}
	return false
}

// Devices returns the registered surfaces
func (h *Handler) Devices() []surface.Device {
	return h.devices
}

// Mode returns the first non-default mode of any device
func (h *Handler) Mode() surface.InputMode {
	for _, d := range h.devices {
		if m := d.Mode(); m != surface.ModeDefault {
			return m
		}
	}
	return surface.ModeDefault
}

// Update rebinds the pools from sel, runs every device and advances the
// blend gesture.
func (h *Handler) Update(sel Selection) {
	h.frames++
	prev := h.ctx.SnapshotPool
	h.ctx = Bind(h.registry, sel)

	if h.gesture.State() == variation.GestureDragging && prev != h.ctx.SnapshotPool {
		debug.Log("handling", "binding changed, aborting blend")
		h.abortGesture()
	}

	switched := false
	for _, d := range h.devices {
		before := d.ModeChanges()
		d.Update(h, h.ctx.Feedback())
		if d.ModeChanges() != before {
			switched = true
		}
	}

	if switched || h.Mode() != surface.ModeDefault {
		h.abortGesture()
	}
	h.gesture.Tick()
}

func (h *Handler) abortGesture() {
	if h.gesture.State() != variation.GestureDragging {
		return
	}
	if err := h.gesture.Abort(); err != nil {
		debug.Warn("handling", "abort blend: %v", err)
	}
}

// finishGesture settles a running blend before another mutation
func (h *Handler) finishGesture() {
	h.gesture.Finish()
}

// ActivateOrCreatePresetAtIndex applies the snapshot at index, or creates
// one there when the index is empty.
func (h *Handler) ActivateOrCreatePresetAtIndex(index int) {
	pool := h.ctx.SnapshotPool
	if pool == nil {
		debug.Warn("handling", "can't activate variation #%d: no variation pool active", index)
		return
	}
	h.finishGesture()

	if v, ok := pool.GetSnapshot(index); ok {
		if err := pool.Apply(h.ctx.SnapshotInstance, v, h.settings.ResetToDefaultValues); err != nil {
			debug.Warn("handling", "apply variation #%d: %v", index, err)
		}
		return
	}
	h.CreateOrUpdateSnapshotVariation(index)
}

// SavePresetAtIndex stores a new snapshot at index, replacing any existing one
func (h *Handler) SavePresetAtIndex(index int) {
	if h.ctx.SnapshotPool == nil {
		debug.Warn("handling", "can't save variation #%d: no variation pool active", index)
		return
	}
	h.finishGesture()
	h.CreateOrUpdateSnapshotVariation(index)
}

// RemovePresetAtIndex deletes the snapshot at index
func (h *Handler) RemovePresetAtIndex(index int) {
	pool := h.ctx.SnapshotPool
	if pool == nil {
		debug.Warn("handling", "can't remove variation #%d: no variation pool active", index)
		return
	}
	h.finishGesture()

	v, ok := pool.GetSnapshot(index)
	if !ok {
		debug.Warn("handling", "no preset to delete at index %d", index)
		return
	}
	pool.DeleteVariation(v)
}

// StartBlendingPresets begins a blend towards the snapshots at indices
func (h *Handler) StartBlendingPresets(indices []int) {
	pool := h.ctx.SnapshotPool
	if pool == nil {
		debug.Warn("handling", "can't blend %v: no variation pool active", indices)
		return
	}

	var targets []*variation.Variation
	for _, index := range indices {
		v, ok := pool.GetSnapshot(index)
		if !ok {
			debug.Warn("handling", "no preset to blend at index %d", index)
			continue
		}
		targets = append(targets, v)
	}
	if len(targets) == 0 {
		return
	}
	if err := h.gesture.Start(pool, targets); err != nil {
		debug.Warn("handling", "start blend: %v", err)
	}
}

// BlendValuesUpdate moves a running blend; value is a controller value 0-127
func (h *Handler) BlendValuesUpdate(value int) {
	if h.gesture.State() != variation.GestureDragging {
		debug.LogEvery(20, "handling", "blend update %d without blend", value)
		return
	}
	if err := h.gesture.Update(float64(value) / blendRange); err != nil {
		debug.Warn("handling", "blend update: %v", err)
	}
}

// MixPresets blends the snapshots at indices with equal weights into a new
// snapshot at target (or unindexed with AutoIndex). Settings.Scatter is
// added to every component.
func (h *Handler) MixPresets(indices []int, target int) *variation.Variation {
	pool := h.ctx.SnapshotPool
	if pool == nil {
		debug.Warn("handling", "can't mix %v: no variation pool active", indices)
		return nil
	}
	h.finishGesture()

	var neighbors []variation.Neighbor
	var params []*variation.Parameter
	seen := make(map[*variation.Parameter]bool)
	for _, index := range indices {
		v, ok := pool.GetSnapshot(index)
		if !ok {
			debug.Warn("handling", "no preset to mix at index %d", index)
			continue
		}
		neighbors = append(neighbors, variation.Neighbor{Variation: v, Weight: 1})
		for _, p := range v.Parameters() {
			if !seen[p] {
				seen[p] = true
				params = append(params, p)
			}
		}
	}
	if len(neighbors) == 0 {
		return nil
	}

	mixed, err := pool.Mix(params, neighbors, h.settings.Scatter, pool.FindFreeCell(h.settings.GridWidth))
	if err != nil {
		debug.Warn("handling", "mix %v: %v", indices, err)
		return nil
	}

	if target != AutoIndex {
		if existing, ok := pool.GetSnapshot(target); ok {
			pool.DeleteVariation(existing)
		}
	}
	if err := pool.Add(mixed); err != nil {
		debug.Warn("handling", "mix %v: %v", indices, err)
		return nil
	}
	if target != AutoIndex {
		if err := pool.SetActivationIndex(mixed, target); err != nil {
			debug.Warn("handling", "mix into #%d: %v", target, err)
		}
	}
	debug.Log("handling", "mixed %d presets into #%d", len(neighbors), target)
	return mixed
}

// AppendPresetToCurrentGroup is bound on the surfaces but preset groups do
// not exist in this system.
func (h *Handler) AppendPresetToCurrentGroup() {
	debug.Warn("handling", "append preset to group: groups are not supported")
}

// CreateOrUpdateSnapshotVariation snapshots the children of the bound
// composition (limited by its focus set) into the snapshot pool. With an
// index other than AutoIndex the snapshot replaces the one at that index.
func (h *Handler) CreateOrUpdateSnapshotVariation(index int) *variation.Variation {
	pool, inst := h.ctx.SnapshotPool, h.ctx.SnapshotInstance
	if pool == nil || inst == nil {
		debug.Warn("handling", "can't create snapshot: no variation pool active")
		return nil
	}

	if index != AutoIndex {
		if existing, ok := pool.GetSnapshot(index); ok {
			pool.DeleteVariation(existing)
		}
	}

	affected := h.affectedInstances(inst)
	pool.Track(affected)

	cell := pool.FindFreeCell(h.settings.GridWidth)
	v := pool.CreateVariationForInstances(affected)
	if v == nil {
		debug.Warn("handling", "nothing to snapshot in %s", inst.Name())
		return nil
	}
	v.GridCell = cell

	if index != AutoIndex {
		if err := pool.SetActivationIndex(v, index); err != nil {
			debug.Warn("handling", "snapshot #%d: %v", index, err)
		}
	}
	debug.Log("handling", "snapshot #%d with %d parameters", index, v.Len())
	return v
}

// Save persists every pool
func (h *Handler) Save() error {
	return h.registry.SaveAll()
}

// Close finishes a running blend, releases the devices and saves the pools.
// Calls after the first are no-ops.
func (h *Handler) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.finishGesture()
	for _, d := range h.devices {
		d.Close()
	}
	h.devices = nil
	return h.Save()
}
