package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderPadGridPutsRowZeroAtBottom(t *testing.T) {
	cells := make([]Cell, GridSize*GridSize)
	for i := range cells {
		cells[i] = Cell{Symbol: '.'}
	}
	cells[0] = Cell{Symbol: 'A'}
	cells[63] = Cell{Symbol: 'Z', Cursor: true}

	lines := strings.Split(RenderPadGrid(cells), "\n")
	if len(lines) != GridSize {
		t.Fatalf("expected %d lines, got %d", GridSize, len(lines))
	}
	if !strings.Contains(lines[GridSize-1], "A") {
		t.Errorf("index 0 should be on the bottom line: %q", lines[GridSize-1])
	}
	if !strings.Contains(lines[0], "[") || !strings.Contains(lines[0], "Z") {
		t.Errorf("cursor at index 63 should be on the top line: %q", lines[0])
	}
}

func TestRenderPadGridShortInput(t *testing.T) {
	lines := strings.Split(RenderPadGrid([]Cell{{Symbol: 'x'}}), "\n")
	if len(lines) != GridSize {
		t.Fatalf("expected %d lines, got %d", GridSize, len(lines))
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		norm  float64
		width int
		want  string
	}{
		{0, 4, "----"},
		{0.5, 4, "##--"},
		{1, 4, "####"},
		{2, 4, "####"},
		{-1, 4, "----"},
		{0.5, 0, ""},
	}
	for _, tt := range tests {
		if got := RenderBar(tt.norm, tt.width, '#', '-'); got != tt.want {
			t.Errorf("RenderBar(%v, %d) = %q, want %q", tt.norm, tt.width, got, tt.want)
		}
	}
}

func TestRenderParamTable(t *testing.T) {
	st := TableStyles{Normal: lipgloss.NewStyle(), Muted: lipgloss.NewStyle(), Selected: lipgloss.NewStyle()}

	if got := RenderParamTable(nil, st); !strings.Contains(got, "no parameters") {
		t.Errorf("empty table: %q", got)
	}

	out := RenderParamTable([]ParamRow{
		{Instance: "Blur", Input: "Radius", Value: "4.000", Tracked: true, Selected: true},
		{Instance: "Color", Input: "Hue", Value: "0.500"},
	}, st)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], ">*") {
		t.Errorf("selected tracked row: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  Color") {
		t.Errorf("untracked row: %q", lines[1])
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Pool", Keys: []KeyBinding{{Key: "enter", Desc: "activate"}}}})
	if !strings.Contains(out, "Pool") || !strings.Contains(out, "enter") {
		t.Errorf("unexpected help %q", out)
	}
}
