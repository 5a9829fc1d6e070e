// Package surface decodes control surface input into variation commands and
// renders pool state back onto the surface LEDs.
package surface

import (
	"slices"

	"go-variations/midi"
)

// InputMode gates which trigger combinations are live
type InputMode int

const (
	ModeDefault InputMode = iota
	ModeSave
	ModeDelete
)

func (m InputMode) String() string {
	switch m {
	case ModeSave:
		return "save"
	case ModeDelete:
		return "delete"
	}
	return "default"
}

// ButtonRange is an inclusive range of logical indices
type ButtonRange struct {
	Start, End int
}

// Button is a range holding a single index
func Button(index int) ButtonRange {
	return ButtonRange{Start: index, End: index}
}

// Range returns the inclusive range [start, end]
func Range(start, end int) ButtonRange {
	return ButtonRange{Start: start, End: end}
}

func (r ButtonRange) Contains(index int) bool {
	return index >= r.Start && index <= r.End
}

// Offset maps a raw index to its position within the range
func (r ButtonRange) Offset(index int) int {
	return index - r.Start
}

func (r ButtonRange) Len() int {
	return r.End - r.Start + 1
}

// ExecutesAt is the firing policy of a combination
type ExecutesAt int

const (
	// SingleButtonPressed fires when a button goes down while no other
	// button of the combination is held.
	SingleButtonPressed ExecutesAt = iota
	// SingleRangeButtonPressed is SingleButtonPressed passing the offset
	SingleRangeButtonPressed
	// AllCombinedButtonsReleased collects every button pressed since the
	// first press and fires with all of them once the last one is released.
	AllCombinedButtonsReleased
	// ControllerChange fires on every controller message within range
	ControllerChange
	// SingleActionButtonPressed is a SingleButtonPressed on a dedicated button
	SingleActionButtonPressed
)

func (e ExecutesAt) String() string {
	switch e {
	case SingleButtonPressed:
		return "single-button-pressed"
	case SingleRangeButtonPressed:
		return "single-range-button-pressed"
	case AllCombinedButtonsReleased:
		return "all-combined-buttons-released"
	case ControllerChange:
		return "controller-change"
	case SingleActionButtonPressed:
		return "single-action-button-pressed"
	}
	return "unknown"
}

// Trigger is what a fired combination passes to its action
type Trigger struct {
	Index   int   // raw index of the event that fired
	Offset  int   // offset of Index within its range
	Offsets []int // AllCombinedButtonsReleased: offsets in press order
	Value   uint8 // ControllerChange: controller value
}

// Action runs a command for a fired combination
type Action func(cmds Commands, t Trigger)

// Combination binds a command to buttons, a mode and a firing policy
type Combination struct {
	Name       string
	Mode       InputMode
	Ranges     []ButtonRange
	ExecutesAt ExecutesAt
	// MinButtons is the smallest set AllCombinedButtonsReleased fires for
	MinButtons int
	Action     Action

	held    map[int]bool
	pressed []int
}

// NewCombination creates a combination over one or more ranges
func NewCombination(name string, mode InputMode, at ExecutesAt, action Action, ranges ...ButtonRange) *Combination {
	return &Combination{
		Name:       name,
		Mode:       mode,
		Ranges:     ranges,
		ExecutesAt: at,
		MinButtons: 1,
		Action:     action,
		held:       make(map[int]bool),
	}
}

func (c *Combination) rangeOf(index int) (ButtonRange, bool) {
	for _, r := range c.Ranges {
		if r.Contains(index) {
			return r, true
		}
	}
	return ButtonRange{}, false
}

// reset forgets held buttons and accumulated presses
func (c *Combination) reset() {
	clear(c.held)
	c.pressed = nil
}

// feed applies one event and reports whether the action fired
func (c *Combination) feed(e midi.Event, cmds Commands) bool {
	r, ok := c.rangeOf(e.Index)
	if !ok {
		return false
	}

	if c.ExecutesAt == ControllerChange {
		if e.Kind != midi.KindControlChange {
			return false
		}
		c.fire(cmds, Trigger{Index: e.Index, Offset: r.Offset(e.Index), Value: e.Value})
		return true
	}

	switch {
	case e.Pressed():
		c.held[e.Index] = true
		switch c.ExecutesAt {
		case SingleButtonPressed, SingleRangeButtonPressed, SingleActionButtonPressed:
			if len(c.held) == 1 {
				c.fire(cmds, Trigger{Index: e.Index, Offset: r.Offset(e.Index), Value: e.Value})
				return true
			}
		case AllCombinedButtonsReleased:
			if !slices.Contains(c.pressed, e.Index) {
				c.pressed = append(c.pressed, e.Index)
			}
		}

	case e.Released():
		delete(c.held, e.Index)
		if c.ExecutesAt != AllCombinedButtonsReleased || len(c.held) > 0 || len(c.pressed) == 0 {
			return false
		}
		pressed := c.pressed
		c.pressed = nil
		if len(pressed) < max(c.MinButtons, 1) {
			return false
		}
		offsets := make([]int, len(pressed))
		for i, index := range pressed {
			pr, _ := c.rangeOf(index)
			offsets[i] = pr.Offset(index)
		}
		c.fire(cmds, Trigger{Index: e.Index, Offset: r.Offset(e.Index), Offsets: offsets})
		return true
	}
	return false
}

func (c *Combination) fire(cmds Commands, t Trigger) {
	if c.Action != nil {
		c.Action(cmds, t)
	}
}

// ModeButton switches the input mode while held
type ModeButton struct {
	Range ButtonRange
	Mode  InputMode
}
