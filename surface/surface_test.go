package surface

import (
	"slices"
	"testing"

	"go-variations/midi"
	"go-variations/variation"
)

type call struct {
	name    string
	index   int
	indices []int
}

type recorder struct {
	calls []call
}

func (r *recorder) ActivateOrCreatePresetAtIndex(index int) {
	r.calls = append(r.calls, call{name: "activate", index: index})
}

func (r *recorder) SavePresetAtIndex(index int) {
	r.calls = append(r.calls, call{name: "save", index: index})
}

func (r *recorder) RemovePresetAtIndex(index int) {
	r.calls = append(r.calls, call{name: "remove", index: index})
}

func (r *recorder) StartBlendingPresets(indices []int) {
	r.calls = append(r.calls, call{name: "blend", indices: indices})
}

func (r *recorder) BlendValuesUpdate(value int) {
	r.calls = append(r.calls, call{name: "blend-update", index: value})
}

func (r *recorder) AppendPresetToCurrentGroup() {
	r.calls = append(r.calls, call{name: "append"})
}

func (r *recorder) named(name string) []call {
	var out []call
	for _, c := range r.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func press(i int) midi.Event   { return midi.Event{Index: i, Kind: midi.KindNoteOn, Value: 127} }
func release(i int) midi.Event { return midi.Event{Index: i, Kind: midi.KindNoteOff} }
func cc(i int, v uint8) midi.Event {
	return midi.Event{Index: i, Kind: midi.KindControlChange, Value: v}
}

func TestAllCombinedButtonsReleased(t *testing.T) {
	tests := []struct {
		name   string
		events []midi.Event
		want   [][]int
	}{
		{
			name:   "fires once after last release",
			events: []midi.Event{press(3), press(5), release(3), release(5)},
			want:   [][]int{{3, 5}},
		},
		{
			name:   "partial release does not fire",
			events: []midi.Event{press(3), press(5), release(3)},
			want:   nil,
		},
		{
			name:   "single button below minimum",
			events: []midi.Event{press(3), release(3)},
			want:   nil,
		},
		{
			name:   "overlapping presses accumulate",
			events: []midi.Event{press(3), press(5), release(3), press(9), release(5), release(9)},
			want:   [][]int{{3, 5, 9}},
		},
		{
			name:   "two gestures",
			events: []midi.Event{press(1), press(2), release(2), release(1), press(4), press(6), release(4), release(6)},
			want:   [][]int{{1, 2}, {4, 6}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(Bindings(), ModeButtons())
			rec := &recorder{}
			d.Process(tt.events, rec)

			blends := rec.named("blend")
			if len(blends) != len(tt.want) {
				t.Fatalf("expected %d blends, got %v", len(tt.want), blends)
			}
			for i, b := range blends {
				if !slices.Equal(b.indices, tt.want[i]) {
					t.Errorf("blend %d: got %v, want %v", i, b.indices, tt.want[i])
				}
			}
		})
	}
}

func TestBatchingDoesNotChangeDecoding(t *testing.T) {
	events := []midi.Event{
		press(98), press(7), release(7), release(98),
		press(3), press(5), release(3), release(5),
		cc(48, 64), press(82), press(12), release(82), release(12),
		press(89), release(89),
	}

	whole := &recorder{}
	NewDecoder(Bindings(), ModeButtons()).Process(events, whole)

	for _, size := range []int{1, 2, 3, 7} {
		split := &recorder{}
		d := NewDecoder(Bindings(), ModeButtons())
		for i := 0; i < len(events); i += size {
			d.Process(events[i:min(i+size, len(events))], split)
		}
		if len(split.calls) != len(whole.calls) {
			t.Fatalf("batch %d: %d calls, want %d", size, len(split.calls), len(whole.calls))
		}
		for i := range whole.calls {
			a, b := whole.calls[i], split.calls[i]
			if a.name != b.name || a.index != b.index || !slices.Equal(a.indices, b.indices) {
				t.Errorf("batch %d: call %d = %+v, want %+v", size, i, b, a)
			}
		}
	}

	want := []string{"save", "activate", "blend", "blend-update", "remove", "append"}
	var got []string
	for _, c := range whole.calls {
		got = append(got, c.name)
	}
	if !slices.Equal(got, want) {
		t.Errorf("calls %v, want %v", got, want)
	}
}

func TestSaveModeGating(t *testing.T) {
	d := NewDecoder(Bindings(), ModeButtons())
	rec := &recorder{}

	d.Process([]midi.Event{press(7), release(7)}, rec)
	if len(rec.named("save")) != 0 {
		t.Fatal("save must not fire in default mode")
	}
	if a := rec.named("activate"); len(a) != 1 || a[0].index != 7 {
		t.Fatalf("expected activate 7, got %v", a)
	}

	d.Process([]midi.Event{press(Shift.Start)}, rec)
	if d.Mode() != ModeSave {
		t.Fatalf("expected save mode, got %s", d.Mode())
	}
	d.Process([]midi.Event{press(7), release(7)}, rec)
	if s := rec.named("save"); len(s) != 1 || s[0].index != 7 {
		t.Fatalf("expected save at offset 7, got %v", s)
	}
	if len(rec.named("activate")) != 1 {
		t.Error("activate must not fire in save mode")
	}

	d.Process([]midi.Event{release(Shift.Start)}, rec)
	if d.Mode() != ModeDefault {
		t.Errorf("expected default mode after release, got %s", d.Mode())
	}
}

func TestOffsetWithinRange(t *testing.T) {
	var got []int
	c := NewCombination("x", ModeDefault, SingleRangeButtonPressed,
		func(_ Commands, t Trigger) { got = append(got, t.Offset) },
		Range(10, 19), Range(40, 41))
	d := NewDecoder([]*Combination{c}, nil)
	d.Process([]midi.Event{press(17), release(17), press(41), release(41), press(20), release(20)}, &recorder{})
	if !slices.Equal(got, []int{7, 1}) {
		t.Errorf("offsets %v", got)
	}
	if !Range(0, 63).Contains(63) || Range(0, 63).Contains(64) || Range(0, 63).Len() != 64 {
		t.Error("ranges are inclusive")
	}
}

func TestSingleButtonIgnoresChords(t *testing.T) {
	d := NewDecoder(Bindings(), ModeButtons())
	rec := &recorder{}
	d.Process([]midi.Event{press(3), press(5), release(5), press(6), release(6), release(3), press(5)}, rec)

	a := rec.named("activate")
	if len(a) != 2 || a[0].index != 3 || a[1].index != 5 {
		t.Errorf("expected activate 3 then 5, got %v", a)
	}
}

func TestModeButtonsLastPressedWins(t *testing.T) {
	d := NewDecoder(Bindings(), ModeButtons())
	rec := &recorder{}

	steps := []struct {
		event midi.Event
		mode  InputMode
	}{
		{press(98), ModeSave},
		{press(82), ModeDelete},
		{release(82), ModeSave},
		{press(82), ModeDelete},
		{release(98), ModeDelete},
		{release(82), ModeDefault},
	}
	for i, s := range steps {
		d.Process([]midi.Event{s.event}, rec)
		if d.Mode() != s.mode {
			t.Errorf("step %d: mode %s, want %s", i, d.Mode(), s.mode)
		}
	}
	if len(rec.calls) != 0 {
		t.Errorf("mode buttons must not fire commands, got %v", rec.calls)
	}
}

func TestModeSwitchDropsPendingGesture(t *testing.T) {
	d := NewDecoder(Bindings(), ModeButtons())
	rec := &recorder{}
	d.Process([]midi.Event{press(3), press(5), press(98), release(98), release(3), release(5)}, rec)
	if len(rec.named("blend")) != 0 {
		t.Errorf("blend should be dropped by mode switch, got %v", rec.named("blend"))
	}
}

func TestModeChangesCountsTapsWithinOneBatch(t *testing.T) {
	d := NewDecoder(Bindings(), ModeButtons())
	rec := &recorder{}

	d.Process([]midi.Event{press(98), release(98)}, rec)
	if d.Mode() != ModeDefault || d.ModeChanges() != 2 {
		t.Errorf("tap: mode %s, changes %d, want default and 2", d.Mode(), d.ModeChanges())
	}

	// releasing the later button falls back to the one still held
	d.Process([]midi.Event{press(82), press(98), release(98)}, rec)
	if d.Mode() != ModeDelete || d.ModeChanges() != 5 {
		t.Errorf("mode %s, changes %d, want delete and 5", d.Mode(), d.ModeChanges())
	}

	d.Reset()
	if d.Mode() != ModeDefault || d.ModeChanges() != 6 {
		t.Errorf("reset: mode %s, changes %d", d.Mode(), d.ModeChanges())
	}
}

func TestControllerChange(t *testing.T) {
	d := NewDecoder(Bindings(), ModeButtons())
	rec := &recorder{}
	d.Process([]midi.Event{cc(48, 10), cc(56, 127), cc(57, 3), press(48)}, rec)

	u := rec.named("blend-update")
	if len(u) != 2 || u[0].index != 10 || u[1].index != 127 {
		t.Errorf("unexpected updates %v", u)
	}
	// note 48 is a pad, not a slider
	if a := rec.named("activate"); len(a) != 1 || a[0].index != 48 {
		t.Errorf("expected pad 48 activation, got %v", a)
	}
}

func TestHighlightWindow(t *testing.T) {
	for _, index := range []int{0, 8} {
		active, rising := 0, 0
		for counter := 0; counter < 30; counter++ {
			on := HighlightActive(counter, index)
			if on != HighlightActive(counter+30, index) {
				t.Errorf("index %d: counter %d differs one period later", index, counter)
			}
			if on {
				active++
			}
			if !on && HighlightActive(counter+1, index) {
				rising++
			}
		}
		if active != 4 {
			t.Errorf("index %d: %d active ticks per period, want 4", index, active)
		}
		if rising != 1 {
			t.Errorf("index %d: window should be one consecutive run, got %d", index, rising)
		}
	}

	// row 1 is shifted one tick earlier than row 0
	if HighlightActive(29, 0) || !HighlightActive(29, 8) {
		t.Error("unexpected row offset")
	}
}

func TestModeHighlightColors(t *testing.T) {
	p := apcPalette{}
	tests := []struct {
		mode    InputMode
		counter int
		want    uint8
	}{
		{ModeDefault, 0, ApcGreen},
		{ModeSave, 0, ApcYellow},
		{ModeDelete, 3, ApcRed},
		{ModeSave, 4, ApcGreen},
	}
	for _, tt := range tests {
		if got := ModeHighlight(tt.counter, 0, tt.mode, ApcGreen, p); got != tt.want {
			t.Errorf("mode %s counter %d: got %d, want %d", tt.mode, tt.counter, got, tt.want)
		}
	}
}

type fakePort struct {
	pending   []midi.Event
	connected bool
	sent      map[int]uint8
	writes    int
	closed    bool
}

func newFakePort() *fakePort {
	return &fakePort{connected: true, sent: make(map[int]uint8)}
}

func (p *fakePort) ID() string { return "fake" }

func (p *fakePort) Drain() []midi.Event {
	out := p.pending
	p.pending = nil
	return out
}

func (p *fakePort) OutputConnected() bool { return p.connected }

func (p *fakePort) SendLED(index int, color uint8) error {
	p.sent[index] = color
	p.writes++
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

type fakeFeedback map[int]variation.State

func (f fakeFeedback) State(index int) variation.State {
	return f[index]
}

func TestSurfaceWritesOnlyChangedLEDs(t *testing.T) {
	port := newFakePort()
	s := NewApcMini(port)
	fb := fakeFeedback{0: variation.StateActive, 1: variation.StateInactive}
	rec := &recorder{}

	s.Update(rec, fb)
	first := port.writes
	if first != 64+2 {
		t.Fatalf("first frame should paint every LED, wrote %d", first)
	}
	if port.sent[0] != ApcRed || port.sent[1] != ApcGreen || port.sent[2] != ApcOff {
		t.Errorf("unexpected colors %d %d %d", port.sent[0], port.sent[1], port.sent[2])
	}

	s.Update(rec, fb)
	if port.writes != first {
		t.Errorf("unchanged frame wrote %d LEDs", port.writes-first)
	}

	fb[2] = variation.StateModified
	s.Update(rec, fb)
	if port.writes != first+1 || port.sent[2] != ApcYellowBlinking {
		t.Errorf("expected exactly one write, got %d", port.writes-first)
	}
}

func TestSurfaceWithoutOutputStillDecodes(t *testing.T) {
	port := newFakePort()
	port.connected = false
	s := NewApcMini(port)
	rec := &recorder{}

	port.pending = []midi.Event{press(4), release(4)}
	s.Update(rec, nil)
	if port.writes != 0 {
		t.Errorf("disconnected output wrote %d LEDs", port.writes)
	}
	if a := rec.named("activate"); len(a) != 1 || a[0].index != 4 {
		t.Errorf("input should still decode, got %v", rec.calls)
	}

	port.connected = true
	s.Update(rec, nil)
	if port.writes == 0 {
		t.Error("reconnected output should be repainted")
	}
}

func TestSurfaceModeHighlight(t *testing.T) {
	port := newFakePort()
	s := NewApcMini(port)
	rec := &recorder{}

	port.pending = []midi.Event{press(82)}
	s.Update(rec, fakeFeedback{})
	if s.Mode() != ModeDelete {
		t.Fatalf("expected delete mode, got %s", s.Mode())
	}
	// counter 1: rows 0..2 are inside the window
	if port.sent[0] != ApcRed || port.sent[16] != ApcRed {
		t.Errorf("expected highlight on rows 0-2, got %d %d", port.sent[0], port.sent[16])
	}
	if port.sent[24] != ApcOff {
		t.Errorf("row 3 should not be highlighted, got %d", port.sent[24])
	}
	if port.sent[63] != ApcOff {
		t.Errorf("row 7 should not be highlighted, got %d", port.sent[63])
	}
	if port.sent[82] != ApcRed {
		t.Errorf("delete button should be lit, got %d", port.sent[82])
	}

	if err := s.Close(); err != nil || !port.closed {
		t.Error("close should release the port")
	}
	if s.Mode() != ModeDefault {
		t.Error("close should reset the mode")
	}
}

func TestNewByDeviceType(t *testing.T) {
	if s, ok := New(midi.DeviceApcMini, newFakePort()); !ok || s.Name() != "APC mini" {
		t.Error("expected APC mini surface")
	}
	if s, ok := New(midi.DeviceLaunchpadX, newFakePort()); !ok || s.Name() != "Launchpad X" {
		t.Error("expected Launchpad X surface")
	}
	if _, ok := New(midi.DeviceUnknown, newFakePort()); ok {
		t.Error("unknown device type")
	}
	if launchpadColors[variation.StateActive] != midi.ColorRed {
		t.Errorf("active should be red, got %d", launchpadColors[variation.StateActive])
	}
}
