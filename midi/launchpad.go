package midi

import (
	"github.com/lucasb-eyer/go-colorful"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Launchpad X color palette (velocity values 0-127)
// See Programmer's Reference Manual for full palette
const (
	ColorOff         uint8 = 0
	ColorRed         uint8 = 5
	ColorDimRed      uint8 = 7
	ColorOrange      uint8 = 9
	ColorYellow      uint8 = 13
	ColorGreen       uint8 = 21
	ColorDimGreen    uint8 = 19
	ColorCyan        uint8 = 37
	ColorBlue        uint8 = 45
	ColorPurple      uint8 = 49
	ColorPink        uint8 = 53
	ColorWhite       uint8 = 3
	ColorBrightWhite uint8 = 119
)

const (
	lpFirstTopCC = 91
	lpLastTopCC  = 98
	lpLEDChannel = 0
)

// LaunchpadLayout is a Novation Launchpad X in programmer mode.
// Grid pads map to 0-63 (row 0 at the bottom), the right column to scene
// launch 82-89 (top to bottom), top row CC 91-97 to 64-70 and CC 98 to shift.
// Top row presses arrive as controller changes and are reported as notes.
type LaunchpadLayout struct{}

func (LaunchpadLayout) Type() DeviceType { return DeviceLaunchpadX }

func (LaunchpadLayout) Translate(kind EventKind, number, value uint8) (Event, bool) {
	if kind == KindControlChange {
		index, ok := topRowIndex(number)
		if !ok {
			return Event{}, false
		}
		if value == 0 {
			return Event{Index: index, Kind: KindNoteOff}, true
		}
		return Event{Index: index, Kind: KindNoteOn, Value: value}, true
	}

	row, col := noteToRowCol(number)
	var index int
	switch {
	case row < 0:
		return Event{}, false
	case row == 8:
		i, ok := topRowIndex(number)
		if !ok {
			return Event{}, false
		}
		index = i
	case col == 8:
		index = apcFirstScene + (7 - row)
	default:
		index = row*8 + col
	}
	return Event{Index: index, Kind: kind, Value: value}, true
}

func (LaunchpadLayout) LEDMessage(index int, color uint8) (gomidi.Message, bool) {
	switch {
	case index >= 0 && index <= apcLastPad:
		return gomidi.NoteOn(lpLEDChannel, rowColToNote(index/8, index%8), color), true
	case index >= apcFirstScene && index <= apcLastScene:
		return gomidi.NoteOn(lpLEDChannel, rowColToNote(7-(index-apcFirstScene), 8), color), true
	case index >= apcFirstTrack && index < apcLastTrack:
		return gomidi.ControlChange(lpLEDChannel, uint8(lpFirstTopCC+index-apcFirstTrack), color), true
	case index == apcShift:
		return gomidi.ControlChange(lpLEDChannel, lpLastTopCC, color), true
	}
	return nil, false
}

// Init switches to programmer mode, sets full brightness and enables
// external LED feedback.
func (LaunchpadLayout) Init() []gomidi.Message {
	return []gomidi.Message{
		// F0 00 20 29 02 0C 00 7F F7
		gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}),
		// F0 00 20 29 02 0C 08 <brightness> F7
		gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}),
		// F0 00 20 29 02 0C 0A 01 01 F7
		gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}),
	}
}

func topRowIndex(number uint8) (int, bool) {
	switch {
	case number == lpLastTopCC:
		return apcShift, true
	case number >= lpFirstTopCC && number < lpLastTopCC:
		return apcFirstTrack + int(number-lpFirstTopCC), true
	}
	return 0, false
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, 39, 49, 59, 69, 79, 89
// Top row:   Row 8 (top control row) = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(lpFirstTopCC + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= lpFirstTopCC && note <= lpLastTopCC {
		return 8, int(note - lpFirstTopCC)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	// Accept 8x8 grid (rows 0-7, cols 0-7) plus side column (col 8)
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

// launchpadPalette holds approximate RGB values for key palette entries
var launchpadPalette = []struct {
	velocity uint8
	color    colorful.Color
}{
	{0, rgb255(0, 0, 0)},
	{5, rgb255(255, 0, 0)},
	{6, rgb255(255, 80, 80)},
	{7, rgb255(180, 60, 60)},
	{9, rgb255(255, 100, 0)},
	{11, rgb255(180, 80, 40)},
	{13, rgb255(255, 200, 0)},
	{17, rgb255(0, 180, 0)},
	{19, rgb255(0, 100, 0)},
	{21, rgb255(0, 255, 0)},
	{37, rgb255(0, 200, 200)},
	{43, rgb255(40, 60, 120)},
	{45, rgb255(0, 100, 255)},
	{47, rgb255(80, 150, 255)},
	{49, rgb255(150, 0, 200)},
	{53, rgb255(255, 80, 180)},
	{78, rgb255(100, 100, 255)},
	{84, rgb255(255, 150, 50)},
	{87, rgb255(150, 255, 100)},
	{97, rgb255(180, 180, 60)},
	{119, rgb255(255, 255, 255)},
}

func rgb255(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// NearestLaunchpadColor finds the palette velocity closest to c in Lab space
func NearestLaunchpadColor(c colorful.Color) uint8 {
	best := ColorOff
	bestDist := -1.0
	for _, p := range launchpadPalette {
		d := c.DistanceLab(p.color)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = p.velocity
		}
	}
	return best
}

// NearestLaunchpadHex is NearestLaunchpadColor for a "#rrggbb" string.
// Invalid strings map to off.
func NearestLaunchpadHex(hex string) uint8 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ColorOff
	}
	return NearestLaunchpadColor(c)
}
