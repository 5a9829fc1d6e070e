package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-variations/debug"
)

// Port is a connected control surface. Input and output are opened
// independently; a surface without output still delivers events.
type Port struct {
	id     string
	layout Layout
	queue  Queue

	mu   sync.Mutex
	send func(msg gomidi.Message) error
	out  drivers.Out
	stop func()

	ledSendCount uint64
}

// Open connects a port pair. Either side may be nil. Failing to open the
// output is logged and leaves the port input-only.
func Open(id string, layout Layout, in drivers.In, out drivers.Out) (*Port, error) {
	p := newPort(id, layout)

	if in != nil {
		stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
			p.receive(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", id, err)
		}
		p.stop = stop
	}

	if out != nil {
		if err := p.ConnectOutput(out); err != nil {
			debug.Warn("midi", "%s: output unavailable: %v", id, err)
		}
	}

	return p, nil
}

func newPort(id string, layout Layout) *Port {
	return &Port{id: id, layout: layout}
}

// ConnectOutput opens out and sends the layout's init messages
func (p *Port) ConnectOutput(out drivers.Out) error {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	p.mu.Lock()
	p.out = out
	p.mu.Unlock()
	p.attach(send)
	return nil
}

// DisconnectOutput drops LED feedback after the output went away; input
// keeps working.
func (p *Port) DisconnectOutput() {
	p.mu.Lock()
	out := p.out
	p.send = nil
	p.out = nil
	p.mu.Unlock()

	if out != nil && out.IsOpen() {
		if err := out.Close(); err != nil {
			debug.Log("midi", "%s: close output: %v", p.id, err)
		}
	}
}

func (p *Port) attach(send func(msg gomidi.Message) error) {
	p.mu.Lock()
	p.send = send
	p.mu.Unlock()

	for _, msg := range p.layout.Init() {
		if err := send(msg); err != nil {
			debug.Warn("midi", "%s: init: %v", p.id, err)
		}
	}
}

func (p *Port) receive(msg gomidi.Message) {
	kind, number, value, ok := Decode(msg)
	if !ok {
		return
	}
	ev, ok := p.layout.Translate(kind, number, value)
	if !ok {
		debug.Log("midi", "%s: unmapped %s %d", p.id, kind, number)
		return
	}
	p.queue.Push(ev)
}

func (p *Port) ID() string {
	return p.id
}

func (p *Port) Layout() Layout {
	return p.layout
}

// Drain returns the events received since the last call
func (p *Port) Drain() []Event {
	return p.queue.Drain()
}

// OutputConnected reports whether LED feedback can be sent
func (p *Port) OutputConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.send != nil
}

// SendLED sets one LED. It is a no-op without output.
func (p *Port) SendLED(index int, color uint8) error {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()
	if send == nil {
		return nil
	}

	msg, ok := p.layout.LEDMessage(index, color)
	if !ok {
		return nil
	}
	count := atomic.AddUint64(&p.ledSendCount, 1)
	if count%100 == 0 {
		debug.Log("midi-send", "%s: led count=%d", p.id, count)
	}
	return send(msg)
}

// SentLEDs is the number of LED messages written so far
func (p *Port) SentLEDs() uint64 {
	return atomic.LoadUint64(&p.ledSendCount)
}

// ClearLEDs turns every LED of the layout off
func (p *Port) ClearLEDs() {
	for i := 0; i <= apcShift; i++ {
		p.SendLED(i, 0)
	}
}

// Close clears the LEDs, stops listening and drops the output
func (p *Port) Close() error {
	p.ClearLEDs()

	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	p.DisconnectOutput()

	if stop != nil {
		stop()
	}
	return nil
}
