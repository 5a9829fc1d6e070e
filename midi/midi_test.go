package midi

import (
	"context"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		msg    gomidi.Message
		kind   EventKind
		number uint8
		value  uint8
		ok     bool
	}{
		{"note on", gomidi.NoteOn(0, 12, 127), KindNoteOn, 12, 127, true},
		{"note on zero velocity", gomidi.NoteOn(0, 12, 0), KindNoteOff, 12, 0, true},
		{"note off", gomidi.NoteOff(3, 40), KindNoteOff, 40, 0, true},
		{"control change", gomidi.ControlChange(0, 48, 64), KindControlChange, 48, 64, true},
		{"sysex", gomidi.SysEx([]byte{0x00, 0x20}), 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, number, value, ok := Decode(tt.msg)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if kind != tt.kind || number != tt.number || value != tt.value {
				t.Errorf("got (%s, %d, %d), want (%s, %d, %d)", kind, number, value, tt.kind, tt.number, tt.value)
			}
		})
	}
}

func TestQueueDrainKeepsOrder(t *testing.T) {
	var q Queue
	for i := 0; i < 5; i++ {
		q.Push(Event{Index: i})
	}
	if q.Len() != 5 {
		t.Fatalf("expected 5 queued, got %d", q.Len())
	}
	events := q.Drain()
	for i, e := range events {
		if e.Index != i {
			t.Errorf("event %d has index %d", i, e.Index)
		}
	}
	if q.Drain() != nil {
		t.Error("second drain should be empty")
	}
}

func TestApcMiniLayout(t *testing.T) {
	var l ApcMiniLayout
	tests := []struct {
		kind   EventKind
		number uint8
		index  int
		ok     bool
	}{
		{KindNoteOn, 0, 0, true},
		{KindNoteOn, 63, 63, true},
		{KindNoteOff, 71, 71, true},
		{KindNoteOn, 75, 0, false},
		{KindNoteOn, 82, 82, true},
		{KindNoteOn, 98, 98, true},
		{KindControlChange, 48, 48, true},
		{KindControlChange, 56, 56, true},
		{KindControlChange, 57, 0, false},
	}
	for _, tt := range tests {
		ev, ok := l.Translate(tt.kind, tt.number, 100)
		if ok != tt.ok || (ok && (ev.Index != tt.index || ev.Kind != tt.kind)) {
			t.Errorf("Translate(%s, %d) = %+v, %v", tt.kind, tt.number, ev, ok)
		}
	}

	if _, ok := l.LEDMessage(98, 1); ok {
		t.Error("shift has no LED")
	}
	msg, ok := l.LEDMessage(7, 5)
	var ch, key, vel uint8
	if !ok || !msg.GetNoteOn(&ch, &key, &vel) || key != 7 || vel != 5 {
		t.Errorf("unexpected LED message %v", msg)
	}
}

func TestLaunchpadLayoutRoundTrip(t *testing.T) {
	var l LaunchpadLayout

	indices := []int{0, 7, 8, 63, 64, 70, 82, 89, 98}
	for _, index := range indices {
		msg, ok := l.LEDMessage(index, ColorRed)
		if !ok {
			t.Fatalf("no LED for index %d", index)
		}
		kind, number, value, ok := Decode(msg)
		if !ok {
			t.Fatalf("undecodable LED message for %d", index)
		}
		ev, ok := l.Translate(kind, number, value)
		if !ok || ev.Index != index || ev.Kind != KindNoteOn {
			t.Errorf("index %d: round trip gave %+v (%v)", index, ev, ok)
		}
	}

	tests := []struct {
		kind   EventKind
		number uint8
		value  uint8
		want   Event
	}{
		// bottom-left pad is note 11, top-right is 88
		{KindNoteOn, 11, 90, Event{Index: 0, Kind: KindNoteOn, Value: 90}},
		{KindNoteOn, 88, 90, Event{Index: 63, Kind: KindNoteOn, Value: 90}},
		// top scene button is 89, bottom is 19
		{KindNoteOn, 89, 90, Event{Index: 82, Kind: KindNoteOn, Value: 90}},
		{KindNoteOff, 19, 0, Event{Index: 89, Kind: KindNoteOff}},
		// top row arrives as CC
		{KindControlChange, 98, 127, Event{Index: 98, Kind: KindNoteOn, Value: 127}},
		{KindControlChange, 98, 0, Event{Index: 98, Kind: KindNoteOff}},
	}
	for _, tt := range tests {
		got, ok := l.Translate(tt.kind, tt.number, tt.value)
		if !ok || got != tt.want {
			t.Errorf("Translate(%s, %d, %d) = %+v, %v", tt.kind, tt.number, tt.value, got, ok)
		}
	}
	if _, ok := l.Translate(KindNoteOn, 5, 100); ok {
		t.Error("note 5 is not on the grid")
	}
	if _, ok := l.Translate(KindControlChange, 48, 100); ok {
		t.Error("launchpad has no sliders")
	}
}

func TestNearestLaunchpadColor(t *testing.T) {
	tests := []struct {
		hex  string
		want uint8
	}{
		{"#000000", ColorOff},
		{"#ff0000", ColorRed},
		{"#ffffff", ColorBrightWhite},
		{"#00ff00", ColorGreen},
		{"not a color", ColorOff},
	}
	for _, tt := range tests {
		if got := NearestLaunchpadHex(tt.hex); got != tt.want {
			t.Errorf("NearestLaunchpadHex(%q) = %d, want %d", tt.hex, got, tt.want)
		}
	}

	// slightly off red still maps to red
	if got := NearestLaunchpadColor(colorful.Color{R: 0.95, G: 0.02, B: 0.01}); got != ColorRed {
		t.Errorf("near red mapped to %d", got)
	}
}

func TestPortTranslatesAndSends(t *testing.T) {
	p := newPort("APC MINI", ApcMiniLayout{})
	if p.OutputConnected() {
		t.Fatal("new port should have no output")
	}
	if err := p.SendLED(0, 1); err != nil {
		t.Fatalf("SendLED without output: %v", err)
	}

	p.receive(gomidi.NoteOn(0, 3, 127))
	p.receive(gomidi.NoteOn(0, 77, 127)) // unmapped
	p.receive(gomidi.NoteOff(0, 3))
	p.receive(gomidi.ControlChange(0, 50, 10))

	events := p.Drain()
	want := []Event{
		{Index: 3, Kind: KindNoteOn, Value: 127},
		{Index: 3, Kind: KindNoteOff},
		{Index: 50, Kind: KindControlChange, Value: 10},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}

	var sent []gomidi.Message
	p.attach(func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	})
	p.SendLED(5, 3)
	p.SendLED(98, 3) // no LED on shift
	if len(sent) != 1 || p.SentLEDs() != 1 {
		t.Fatalf("expected one LED message, got %d", len(sent))
	}
}

func TestLaunchpadInitOnAttach(t *testing.T) {
	p := newPort("Launchpad X MIDI", LaunchpadLayout{})
	var sent int
	p.attach(func(msg gomidi.Message) error {
		sent++
		return nil
	})
	if sent != 3 {
		t.Errorf("expected 3 init messages, got %d", sent)
	}
}

type fakeBackend struct {
	ins, outs []string
	opened    int
	connected int
}

func (b *fakeBackend) Ports(ctx context.Context) ([]string, []string, error) {
	return b.ins, b.outs, nil
}

func (b *fakeBackend) Open(name string, layout Layout, out string) (*Port, error) {
	b.opened++
	p := newPort(name, layout)
	if out != "" {
		b.Connect(p, out)
	}
	return p, nil
}

func (b *fakeBackend) Connect(p *Port, out string) error {
	b.connected++
	p.attach(func(msg gomidi.Message) error { return nil })
	return nil
}

func TestManagerFollowsOutputHotPlug(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{ins: []string{"APC MINI"}}
	dm := NewDeviceManager(nil)
	dm.backend = b

	dm.scan(ctx)
	ev := <-dm.Events()
	if ev.Type != DeviceConnected || ev.ID != "APC MINI" {
		t.Fatalf("unexpected event %+v", ev)
	}
	port := dm.Ports()["APC MINI"]
	if port == nil || port.OutputConnected() {
		t.Fatal("input-only surface should be open without output")
	}

	// output appears on a later scan
	b.outs = []string{"apc mini"}
	dm.scan(ctx)
	if !port.OutputConnected() || b.connected != 1 {
		t.Fatalf("output should attach once, connected=%d", b.connected)
	}
	dm.scan(ctx)
	if b.connected != 1 || b.opened != 1 {
		t.Errorf("rescans must not reopen, opened=%d connected=%d", b.opened, b.connected)
	}

	// output goes away while the input stays
	b.outs = nil
	dm.scan(ctx)
	if port.OutputConnected() {
		t.Error("vanished output should be detached")
	}
	if len(dm.Ports()) != 1 {
		t.Error("input is still present, port must stay")
	}

	b.ins = nil
	dm.scan(ctx)
	ev = <-dm.Events()
	if ev.Type != DeviceDisconnected || len(dm.Ports()) != 0 {
		t.Errorf("expected disconnect, got %+v with %d ports", ev, len(dm.Ports()))
	}
}

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name string
		want DeviceType
		ok   bool
	}{
		{"APC MINI:APC MINI MIDI 1 20:0", DeviceApcMini, true},
		{"Launchpad X LPX MIDI In", DeviceLaunchpadX, true},
		{"Launchpad X LPX DAW In", 0, false},
		{"Midi Through Port-0", 0, false},
	}
	for _, tt := range tests {
		l, ok := DetectLayout(tt.name)
		if ok != tt.ok || (ok && l.Type() != tt.want) {
			t.Errorf("DetectLayout(%q) = %v, %v", tt.name, l, ok)
		}
	}
}

func TestParseDeviceType(t *testing.T) {
	for _, dt := range []DeviceType{DeviceApcMini, DeviceLaunchpadX} {
		got, err := ParseDeviceType(dt.String())
		if err != nil || got != dt {
			t.Errorf("ParseDeviceType(%q) = %v, %v", dt, got, err)
		}
	}
	if _, err := ParseDeviceType("keyboard"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestMatchName(t *testing.T) {
	names := []string{"Midi Through", "apc mini:apc mini midi 1"}
	if got := matchName("APC MINI:APC MINI MIDI 1", names); got != 1 {
		t.Errorf("matchName = %d", got)
	}
	if got := matchName("Launchpad", names); got != -1 {
		t.Errorf("matchName = %d", got)
	}
}
