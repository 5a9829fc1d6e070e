package variation

import (
	"errors"
	"math"

	"go-variations/debug"
	"go-variations/undo"
	"go-variations/value"
)

// GestureState is the state of a live blend gesture
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDragging
	GestureCommitted
)

func (s GestureState) String() string {
	switch s {
	case GestureDragging:
		return "dragging"
	case GestureCommitted:
		return "committed"
	}
	return "idle"
}

// DefaultIdleTicks is how many update ticks without a fader move end a gesture
const DefaultIdleTicks = 90

var ErrNotDragging = errors.New("variation: no blend in progress")

// Gesture blends live between the values at gesture start and a sequence of
// variations. The change command is created at Start, amended on every
// Update and pushed to the undo stack only on Commit. Abort restores the
// values from gesture start.
type Gesture struct {
	idleLimit int

	state   GestureState
	pool    *Pool
	targets []*Variation
	params  []*Parameter
	start   map[*Parameter]value.Value
	changes []*undo.ChangeInputValue
	command *undo.Macro

	updates   int
	idleTicks int
	position  float64
}

// NewGesture creates an idle gesture. idleTicks <= 0 uses DefaultIdleTicks.
func NewGesture(idleTicks int) *Gesture {
	if idleTicks <= 0 {
		idleTicks = DefaultIdleTicks
	}
	return &Gesture{idleLimit: idleTicks}
}

func (g *Gesture) State() GestureState { return g.state }
func (g *Gesture) Position() float64   { return g.position }

// Targets returns the variations being blended
func (g *Gesture) Targets() []*Variation {
	return g.targets
}

// Start begins a gesture over targets. A gesture already in progress is
// committed (or aborted when it never moved) first.
func (g *Gesture) Start(pool *Pool, targets []*Variation) error {
	if g.state == GestureDragging {
		g.Finish()
	}
	if pool == nil || len(targets) == 0 {
		return errors.New("variation: nothing to blend")
	}

	seen := make(map[*Parameter]bool)
	var params []*Parameter
	for _, v := range targets {
		for _, p := range v.params {
			if !seen[p] {
				seen[p] = true
				params = append(params, p)
			}
		}
	}

	start := make(map[*Parameter]value.Value, len(params))
	var changes []*undo.ChangeInputValue
	var commands []undo.Command
	var resolved []*Parameter
	for _, p := range params {
		slot, err := p.Resolve(pool.graph)
		if err != nil {
			debug.Warn("blend", "skip %s: %v", p.Label(), err)
			continue
		}
		cur := slot.Value()
		start[p] = cur
		c := undo.NewChangeInputValue(pool.graph, p.Ref.InstancePath, p.Ref.InputID, cur, cur)
		changes = append(changes, c)
		commands = append(commands, c)
		resolved = append(resolved, p)
	}

	g.state = GestureDragging
	g.pool = pool
	g.targets = targets
	g.params = resolved
	g.start = start
	g.changes = changes
	g.command = undo.NewMacro("Blend Presets", commands)
	g.updates = 0
	g.idleTicks = 0
	g.position = 0
	pool.SetBlended(targets)

	debug.Log("blend", "start: %d targets, %d parameters", len(targets), len(resolved))
	return nil
}

// Update moves the blend to t in [0, 1]. t = 0 is the state at gesture
// start; the targets are spread evenly over the remaining range.
func (g *Gesture) Update(t float64) error {
	if g.state != GestureDragging {
		return ErrNotDragging
	}
	t = math.Max(0, math.Min(1, t))

	// stop 0 is the start state, stop i is targets[i-1]
	stops := len(g.targets)
	pos := t * float64(stops)
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	if i >= stops {
		i, frac = stops-1, 1
	}

	for n, p := range g.params {
		from := g.stopValue(i, p)
		to := g.stopValue(i+1, p)
		var neighbors []value.Weighted
		if from != nil && frac < 1 {
			neighbors = append(neighbors, value.Weighted{Value: from, Weight: 1 - frac})
		}
		if to != nil && frac > 0 {
			neighbors = append(neighbors, value.Weighted{Value: to, Weight: frac})
		}
		blended, err := value.Blend(g.start[p], neighbors, 0, nil)
		if err != nil {
			blended = g.start[p]
		}
		g.changes[n].Amend(blended)
	}

	err := g.command.Do()
	g.updates++
	g.idleTicks = 0
	g.position = t
	return err
}

// stopValue returns the value of p at a stop. Targets without p hold the
// start value.
func (g *Gesture) stopValue(stop int, p *Parameter) value.Value {
	if stop > 0 {
		if val, ok := g.targets[stop-1].Value(p); ok {
			return val
		}
	}
	return g.start[p]
}

// Tick advances the idle timer; a gesture idle for too long is finished.
func (g *Gesture) Tick() GestureState {
	if g.state != GestureDragging {
		return g.state
	}
	g.idleTicks++
	if g.idleTicks >= g.idleLimit {
		debug.Log("blend", "idle for %d ticks", g.idleTicks)
		return g.Finish()
	}
	return g.state
}

// Finish commits a gesture that moved and aborts one that did not
func (g *Gesture) Finish() GestureState {
	if g.state != GestureDragging {
		return g.state
	}
	if g.updates == 0 {
		g.Abort()
	} else {
		g.Commit()
	}
	return g.state
}

// Commit pushes the amended command to the undo stack as one step
func (g *Gesture) Commit() error {
	if g.state != GestureDragging {
		return ErrNotDragging
	}
	if g.updates > 0 {
		g.pool.stack.Push(g.command)
	}
	g.state = GestureCommitted
	g.pool.SetBlended(nil)
	debug.Log("blend", "commit after %d updates", g.updates)
	return nil
}

// Abort restores the values from gesture start without touching the undo stack
func (g *Gesture) Abort() error {
	if g.state != GestureDragging {
		return nil
	}
	var err error
	if g.updates > 0 {
		err = g.command.Undo()
	}
	g.state = GestureIdle
	g.pool.SetBlended(nil)
	debug.Log("blend", "abort after %d updates", g.updates)
	return err
}
