package midi

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// DeviceType identifies the kind of control surface
type DeviceType int

const (
	DeviceUnknown DeviceType = iota
	DeviceApcMini
	DeviceLaunchpadX
)

func (t DeviceType) String() string {
	switch t {
	case DeviceApcMini:
		return "apc-mini"
	case DeviceLaunchpadX:
		return "launchpad-x"
	}
	return "unknown"
}

// ParseDeviceType is the inverse of DeviceType.String
func ParseDeviceType(s string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apc-mini", "apc mini", "apcmini":
		return DeviceApcMini, nil
	case "launchpad-x", "launchpad x", "launchpad":
		return DeviceLaunchpadX, nil
	}
	return DeviceUnknown, fmt.Errorf("unknown device type %q", s)
}

// Layout maps hardware note and controller numbers to logical indices and back.
// Indices follow the APC mini numbering: pads 0-63, channel buttons 64-71,
// scene launch 82-89, shift 98, sliders 48-56 as controller changes.
type Layout interface {
	Type() DeviceType
	// Translate turns a decoded message into a logical event
	Translate(kind EventKind, number, value uint8) (Event, bool)
	// LEDMessage builds the message that sets the LED at index
	LEDMessage(index int, color uint8) (gomidi.Message, bool)
	// Init returns messages sent once when the output opens
	Init() []gomidi.Message
}

// LayoutFor returns the layout of a device type
func LayoutFor(t DeviceType) (Layout, bool) {
	switch t {
	case DeviceApcMini:
		return ApcMiniLayout{}, true
	case DeviceLaunchpadX:
		return LaunchpadLayout{}, true
	}
	return nil, false
}

// DetectLayout guesses the layout from a port name
func DetectLayout(portName string) (Layout, bool) {
	switch {
	case isApcMini(portName):
		return ApcMiniLayout{}, true
	case isLaunchpad(portName):
		return LaunchpadLayout{}, true
	}
	return nil, false
}

func isApcMini(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "apc") && strings.Contains(name, "mini")
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
