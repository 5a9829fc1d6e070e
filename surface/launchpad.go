package surface

import (
	"go-variations/midi"
	"go-variations/variation"
)

// Launchpad state colors, matched to the nearest palette entry
var launchpadColors = map[variation.State]uint8{
	variation.StateUndefined: midi.ColorOff,
	variation.StateInactive:  midi.NearestLaunchpadHex("#006400"),
	variation.StateActive:    midi.NearestLaunchpadHex("#ff0000"),
	variation.StateModified:  midi.NearestLaunchpadHex("#ffc800"),
	variation.StateBlended:   midi.NearestLaunchpadHex("#ff50b4"),
}

type launchpadPalette struct{}

func (launchpadPalette) StateColor(s variation.State) uint8 {
	return launchpadColors[s]
}

func (launchpadPalette) ModeColor(m InputMode) (uint8, bool) {
	switch m {
	case ModeSave:
		return midi.ColorYellow, true
	case ModeDelete:
		return midi.ColorRed, true
	}
	return 0, false
}

func (launchpadPalette) Off() uint8 { return midi.ColorOff }

// NewLaunchpadX creates a Launchpad X surface using the APC mini bindings;
// the layout translates its pads into the same indices.
func NewLaunchpadX(port Port) *Surface {
	return NewSurface("Launchpad X", port, NewDecoder(Bindings(), ModeButtons()), launchpadPalette{}, SceneTrigger1To64)
}

// New creates the surface for a device type
func New(t midi.DeviceType, port Port) (*Surface, bool) {
	switch t {
	case midi.DeviceApcMini:
		return NewApcMini(port), true
	case midi.DeviceLaunchpadX:
		return NewLaunchpadX(port), true
	}
	return nil, false
}
