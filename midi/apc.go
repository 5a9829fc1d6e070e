package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// APC mini note and controller numbers
const (
	apcLastPad     = 63
	apcFirstTrack  = 64
	apcLastTrack   = 71
	apcFirstScene  = 82
	apcLastScene   = 89
	apcShift       = 98
	apcFirstSlider = 48
	apcLastSlider  = 56
	apcLEDChannel  = 0
	apcMaxVelocity = 127
)

// ApcMiniLayout is the Akai APC mini. Its note numbers are already the
// logical indices.
type ApcMiniLayout struct{}

func (ApcMiniLayout) Type() DeviceType { return DeviceApcMini }

func (ApcMiniLayout) Translate(kind EventKind, number, value uint8) (Event, bool) {
	n := int(number)
	ev := Event{Index: n, Kind: kind, Value: value}
	if kind == KindControlChange {
		return ev, n >= apcFirstSlider && n <= apcLastSlider
	}
	switch {
	case n <= apcLastTrack:
		return ev, true
	case n >= apcFirstScene && n <= apcLastScene:
		return ev, true
	case n == apcShift:
		return ev, true
	}
	return Event{}, false
}

// LEDMessage sets pad, track and scene LEDs. Shift and sliders have none.
func (ApcMiniLayout) LEDMessage(index int, color uint8) (gomidi.Message, bool) {
	if index < 0 || index > apcLastScene || (index > apcLastTrack && index < apcFirstScene) {
		return nil, false
	}
	if color > apcMaxVelocity {
		color = apcMaxVelocity
	}
	return gomidi.NoteOn(apcLEDChannel, uint8(index), color), true
}

func (ApcMiniLayout) Init() []gomidi.Message { return nil }
