package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-variations/debug"
)

// DeviceEvent is emitted when control surfaces connect/disconnect
type DeviceEvent struct {
	Type DeviceEventType
	Port *Port
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Detector picks the layout for a port name, or reports that the port is
// not a control surface.
type Detector func(portName string) (Layout, bool)

// DeviceManager handles hot-plug detection of control surfaces
type DeviceManager struct {
	ports    map[string]*Port
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
	detect   Detector
	backend  Backend
}

// Backend is the MIDI system the manager polls. Ports are addressed by name.
type Backend interface {
	// Ports lists the names of the present input and output ports
	Ports(ctx context.Context) (ins, outs []string, err error)
	// Open starts listening on input name and attaches output out when it
	// is not empty
	Open(name string, layout Layout, out string) (*Port, error)
	// Connect attaches output out to an open port
	Connect(p *Port, out string) error
}

// NewDeviceManager creates a new device manager. A nil detector uses
// DetectLayout.
func NewDeviceManager(detect Detector) *DeviceManager {
	if detect == nil {
		detect = DetectLayout
	}
	return &DeviceManager{
		ports:    make(map[string]*Port),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		detect:   detect,
		backend:  &rtmidiBackend{},
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Ports returns a snapshot of connected ports
func (dm *DeviceManager) Ports() map[string]*Port {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]*Port, len(dm.ports))
	for k, v := range dm.ports {
		out[k] = v
	}
	return out
}

// scanTimeout bounds one port query; CoreMIDI can hang
const scanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the MIDI system does not answer in time
var ErrScanTimeout = errors.New("midi: port scan timed out")

// ListPorts queries the MIDI ports in a separate goroutine and gives up
// after timeout or when ctx is done.
func ListPorts(ctx context.Context, timeout time.Duration) ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	select {
	case result := <-ch:
		return result.inPorts, result.outPorts, nil
	case <-time.After(timeout):
		return nil, nil, ErrScanTimeout
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return nil
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	inNames, outNames, err := dm.backend.Ports(ctx)
	if err != nil {
		if errors.Is(err, ErrScanTimeout) {
			debug.LogEvery(10, "devices", "port scan timed out")
		}
		return
	}

	seenIDs := make(map[string]bool)

	for _, id := range inNames {
		layout, ok := dm.detect(id)
		if !ok {
			continue
		}
		seenIDs[id] = true

		out := ""
		if idx := matchName(id, outNames); idx >= 0 {
			out = outNames[idx]
		}

		dm.mu.RLock()
		port, exists := dm.ports[id]
		dm.mu.RUnlock()
		if exists {
			dm.syncOutput(port, out)
			continue
		}

		port, err := dm.backend.Open(id, layout, out)
		if err != nil {
			debug.Warn("devices", "%s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.ports[id] = port
		dm.mu.Unlock()

		debug.Log("devices", "connected %s as %s (output=%v)", id, layout.Type(), port.OutputConnected())
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Port: port, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var removed []string
	for id, port := range dm.ports {
		if !seenIDs[id] {
			port.Close()
			delete(dm.ports, id)
			removed = append(removed, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range removed {
		debug.Log("devices", "disconnected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

// syncOutput attaches an output that showed up after the input and drops
// one that went away.
func (dm *DeviceManager) syncOutput(port *Port, out string) {
	connected := port.OutputConnected()
	switch {
	case out != "" && !connected:
		if err := dm.backend.Connect(port, out); err != nil {
			debug.LogEvery(10, "devices", "%s: output unavailable: %v", port.ID(), err)
			return
		}
		debug.Log("devices", "%s: output connected", port.ID())
	case out == "" && connected:
		port.DisconnectOutput()
		debug.Log("devices", "%s: output disconnected", port.ID())
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, p := range dm.ports {
		p.Close()
	}
	dm.ports = make(map[string]*Port)
}

// MatchOutput finds the output port with the same name as an input
func MatchOutput(name string, outPorts []drivers.Out) drivers.Out {
	idx := matchName(name, outPortNames(outPorts))
	if idx < 0 {
		return nil
	}
	return outPorts[idx]
}

func outPortNames(outPorts []drivers.Out) []string {
	names := make([]string, len(outPorts))
	for i, op := range outPorts {
		names[i] = op.String()
	}
	return names
}

// matchName returns the index of the candidate equal to name ignoring case,
// or -1.
func matchName(name string, candidates []string) int {
	name = strings.ToLower(name)
	for i, c := range candidates {
		if strings.ToLower(c) == name {
			return i
		}
	}
	return -1
}

// rtmidiBackend talks to the registered gomidi driver and remembers the
// handles of the last listing so ports can be opened by name.
type rtmidiBackend struct {
	mu   sync.Mutex
	ins  []drivers.In
	outs []drivers.Out
}

func (b *rtmidiBackend) Ports(ctx context.Context) ([]string, []string, error) {
	ins, outs, err := ListPorts(ctx, scanTimeout)
	if err != nil {
		return nil, nil, err
	}
	b.mu.Lock()
	b.ins, b.outs = ins, outs
	b.mu.Unlock()

	inNames := make([]string, len(ins))
	for i, in := range ins {
		inNames[i] = in.String()
	}
	return inNames, outPortNames(outs), nil
}

func (b *rtmidiBackend) Open(name string, layout Layout, out string) (*Port, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var in drivers.In
	for _, p := range b.ins {
		if p.String() == name {
			in = p
			break
		}
	}
	if in == nil {
		return nil, fmt.Errorf("input %s is gone", name)
	}
	return Open(name, layout, in, b.findOut(out))
}

func (b *rtmidiBackend) Connect(p *Port, out string) error {
	b.mu.Lock()
	o := b.findOut(out)
	b.mu.Unlock()
	if o == nil {
		return fmt.Errorf("output %s is gone", out)
	}
	return p.ConnectOutput(o)
}

func (b *rtmidiBackend) findOut(name string) drivers.Out {
	if name == "" {
		return nil
	}
	for _, o := range b.outs {
		if o.String() == name {
			return o
		}
	}
	return nil
}
