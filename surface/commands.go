package surface

import "go-variations/variation"

// Commands are the operations a surface can trigger
type Commands interface {
	ActivateOrCreatePresetAtIndex(index int)
	SavePresetAtIndex(index int)
	RemovePresetAtIndex(index int)
	StartBlendingPresets(indices []int)
	BlendValuesUpdate(value int)
	AppendPresetToCurrentGroup()
}

// Feedback exposes the pool state shown on the LEDs
type Feedback interface {
	State(index int) variation.State
}

// Device is a control surface updated once per tick
type Device interface {
	ID() string
	Mode() InputMode
	// ModeChanges is a counter of mode switches; it changes whenever the
	// mode was switched, even if it switched back before the tick ended
	ModeChanges() int
	// Update decodes pending input into cmds and refreshes the LEDs from fb.
	// fb may be nil when no pool is bound.
	Update(cmds Commands, fb Feedback)
	Close() error
}
