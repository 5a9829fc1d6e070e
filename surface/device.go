package surface

import (
	"go-variations/debug"
	"go-variations/midi"
	"go-variations/variation"
)

const (
	highlightPeriod = 30
	highlightWidth  = 4
	highlightRowLen = 8
)

// Port is the hardware side of a surface
type Port interface {
	ID() string
	Drain() []midi.Event
	OutputConnected() bool
	SendLED(index int, color uint8) error
	Close() error
}

// Palette maps states to device color codes
type Palette interface {
	StateColor(s variation.State) uint8
	// ModeColor is the highlight color of a non-default mode
	ModeColor(m InputMode) (uint8, bool)
	Off() uint8
}

// HighlightActive reports whether index is inside the mode highlight window
// at counter. The window is highlightWidth ticks out of every
// highlightPeriod, shifted by one tick per row of eight.
func HighlightActive(counter, index int) bool {
	return (counter+index/highlightRowLen)%highlightPeriod < highlightWidth
}

// ModeHighlight overlays the mode color on base inside the highlight window
func ModeHighlight(counter, index int, mode InputMode, base uint8, p Palette) uint8 {
	if mode == ModeDefault || !HighlightActive(counter, index) {
		return base
	}
	if c, ok := p.ModeColor(mode); ok {
		return c
	}
	return base
}

// Surface is a Device built from a port, bindings and a palette
type Surface struct {
	name    string
	port    Port
	decoder *Decoder
	palette Palette
	pads    ButtonRange

	updateCount int
	leds        map[int]uint8
}

// NewSurface creates a surface whose pads range shows pool state
func NewSurface(name string, port Port, decoder *Decoder, palette Palette, pads ButtonRange) *Surface {
	return &Surface{
		name:    name,
		port:    port,
		decoder: decoder,
		palette: palette,
		pads:    pads,
		leds:    make(map[int]uint8),
	}
}

func (s *Surface) ID() string {
	return s.port.ID()
}

// Name is the device model name
func (s *Surface) Name() string {
	return s.name
}

func (s *Surface) Mode() InputMode {
	return s.decoder.Mode()
}

func (s *Surface) ModeChanges() int {
	return s.decoder.ModeChanges()
}

func (s *Surface) Decoder() *Decoder {
	return s.decoder
}

// UpdateCount is the number of ticks seen so far
func (s *Surface) UpdateCount() int {
	return s.updateCount
}

func (s *Surface) Update(cmds Commands, fb Feedback) {
	s.updateCount++
	s.decoder.Process(s.port.Drain(), cmds)

	if !s.port.OutputConnected() {
		// repaint everything once output comes back
		clear(s.leds)
		return
	}
	s.render(fb)
}

func (s *Surface) render(fb Feedback) {
	mode := s.decoder.Mode()
	for index := s.pads.Start; index <= s.pads.End; index++ {
		state := variation.StateUndefined
		if fb != nil {
			state = fb.State(s.pads.Offset(index))
		}
		color := ModeHighlight(s.updateCount, index, mode, s.palette.StateColor(state), s.palette)
		s.setLED(index, color)
	}

	for _, mb := range s.decoder.ModeButtons() {
		color := s.palette.Off()
		if mb.Mode == mode {
			if c, ok := s.palette.ModeColor(mode); ok {
				color = c
			}
		}
		for index := mb.Range.Start; index <= mb.Range.End; index++ {
			s.setLED(index, color)
		}
	}
}

// setLED writes color unless it is already showing
func (s *Surface) setLED(index int, color uint8) {
	if prev, ok := s.leds[index]; ok && prev == color {
		return
	}
	if err := s.port.SendLED(index, color); err != nil {
		debug.LogEvery(50, "surface", "%s: led %d: %v", s.ID(), index, err)
		delete(s.leds, index)
		return
	}
	s.leds[index] = color
}

// Close resets the decoder and releases the port
func (s *Surface) Close() error {
	s.decoder.Reset()
	return s.port.Close()
}
