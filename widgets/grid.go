package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GridSize is the number of rows and columns of a pad grid
const GridSize = 8

// Cell is one pad of a rendered grid
type Cell struct {
	Color  [3]uint8
	Symbol rune
	Cursor bool
	Marked bool
}

// RenderPad renders a single colored pad
func RenderPad(c Cell) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(c.Color)))
	if c.Marked {
		style = style.Underline(true)
	}
	pad := style.Render(string(c.Symbol))
	if c.Cursor {
		return "[" + pad + "]"
	}
	return " " + pad + " "
}

// RenderPadRow renders a row of pads
func RenderPadRow(cells []Cell) string {
	var out strings.Builder
	for _, c := range cells {
		out.WriteString(RenderPad(c))
	}
	return out.String()
}

// RenderPadGrid renders cells indexed row*8+col, row 0 at the bottom like
// the hardware. Missing cells render blank.
func RenderPadGrid(cells []Cell) string {
	var lines []string
	for row := GridSize - 1; row >= 0; row-- {
		start := row * GridSize
		rowCells := make([]Cell, GridSize)
		for col := range rowCells {
			if i := start + col; i < len(cells) {
				rowCells[col] = cells[i]
			} else {
				rowCells[col] = Cell{Symbol: ' '}
			}
		}
		lines = append(lines, RenderPadRow(rowCells))
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "● name - description"
func RenderLegendItem(c Cell, name, desc string) string {
	c.Cursor = false
	return fmt.Sprintf(" %s%s - %s", RenderPad(c), name, desc)
}

// RenderBar renders a horizontal bar filled to norm (0-1)
func RenderBar(norm float64, width int, filled, empty rune) string {
	if width <= 0 {
		return ""
	}
	n := int(norm*float64(width) + 0.5)
	n = max(0, min(width, n))
	return strings.Repeat(string(filled), n) + strings.Repeat(string(empty), width-n)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
