package surface

import (
	"slices"

	"go-variations/debug"
	"go-variations/midi"
)

// Decoder turns a device's raw events into fired combinations. Events are
// handled one at a time in arrival order, so the result does not depend on
// how events were batched into ticks.
type Decoder struct {
	combinations []*Combination
	modeButtons  []ModeButton

	mode InputMode
	// held mode buttons, most recent last
	heldModes []int
	// number of mode switches so far
	modeChanges int
}

func NewDecoder(combinations []*Combination, modeButtons []ModeButton) *Decoder {
	return &Decoder{
		combinations: combinations,
		modeButtons:  modeButtons,
	}
}

// Mode returns the current input mode
func (d *Decoder) Mode() InputMode {
	return d.mode
}

// ModeChanges counts every mode switch, including ones that were undone
// within the same batch of events
func (d *Decoder) ModeChanges() int {
	return d.modeChanges
}

// Combinations returns the declared combinations
func (d *Decoder) Combinations() []*Combination {
	return d.combinations
}

// ModeButtons returns the declared mode buttons
func (d *Decoder) ModeButtons() []ModeButton {
	return d.modeButtons
}

// Process decodes events and runs the actions of the combinations they
// fire. Returns the number of fired combinations.
func (d *Decoder) Process(events []midi.Event, cmds Commands) int {
	fired := 0
	for _, e := range events {
		if d.modeButton(e) {
			continue
		}
		for _, c := range d.combinations {
			if c.Mode != d.mode {
				continue
			}
			if c.feed(e, cmds) {
				debug.Log("surface", "%s fired (index %d, mode %s)", c.Name, e.Index, d.mode)
				fired++
			}
		}
	}
	return fired
}

// modeButton handles e if it belongs to a mode button. Holding several mode
// buttons selects the most recently pressed one; releasing it falls back to
// the next still held.
func (d *Decoder) modeButton(e midi.Event) bool {
	if e.Kind == midi.KindControlChange {
		return false
	}
	for i, mb := range d.modeButtons {
		if !mb.Range.Contains(e.Index) {
			continue
		}
		d.heldModes = slices.DeleteFunc(d.heldModes, func(h int) bool { return h == i })
		if e.Pressed() {
			d.heldModes = append(d.heldModes, i)
		}

		next := ModeDefault
		if n := len(d.heldModes); n > 0 {
			next = d.modeButtons[d.heldModes[n-1]].Mode
		}
		d.setMode(next)
		return true
	}
	return false
}

func (d *Decoder) setMode(m InputMode) {
	if m == d.mode {
		return
	}
	debug.Log("surface", "mode %s -> %s", d.mode, m)
	d.mode = m
	d.modeChanges++
	for _, c := range d.combinations {
		c.reset()
	}
}

// Reset drops all held state and returns to the default mode
func (d *Decoder) Reset() {
	d.heldModes = nil
	if d.mode != ModeDefault {
		d.modeChanges++
	}
	d.mode = ModeDefault
	for _, c := range d.combinations {
		c.reset()
	}
}
