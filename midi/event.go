package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI status bytes
const (
	StatusNoteOff uint8 = 0x80
	StatusNoteOn  uint8 = 0x90
	StatusCC      uint8 = 0xB0

	StatusMask  uint8 = 0xF0
	ChannelMask uint8 = 0x0F
)

// EventKind is the kind of a control surface input
type EventKind int

const (
	KindNoteOn EventKind = iota
	KindNoteOff
	KindControlChange
)

func (k EventKind) String() string {
	switch k {
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindControlChange:
		return "cc"
	}
	return "unknown"
}

// Event is an input already translated into the device's logical index space
type Event struct {
	Index int
	Kind  EventKind
	Value uint8
}

// Pressed reports a button going down
func (e Event) Pressed() bool {
	return e.Kind == KindNoteOn
}

// Released reports a button going up
func (e Event) Released() bool {
	return e.Kind == KindNoteOff
}

// Decode extracts kind, note/controller number and value from a raw message.
// A note-on with velocity 0 is reported as note-off.
func Decode(msg gomidi.Message) (kind EventKind, number, value uint8, ok bool) {
	var channel uint8
	switch {
	case msg.GetNoteOn(&channel, &number, &value):
		if value == 0 {
			return KindNoteOff, number, 0, true
		}
		return KindNoteOn, number, value, true
	case msg.GetNoteOff(&channel, &number, &value):
		return KindNoteOff, number, value, true
	case msg.GetControlChange(&channel, &number, &value):
		return KindControlChange, number, value, true
	}
	return 0, 0, 0, false
}
