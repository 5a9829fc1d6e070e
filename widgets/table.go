package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ParamRow is one line of the parameter table
type ParamRow struct {
	Instance string
	Input    string
	Value    string
	Tracked  bool
	Selected bool
}

// TableStyles colors the parameter table
type TableStyles struct {
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
}

// RenderParamTable renders rows as aligned columns. Untracked rows are
// muted, the selected row is marked with ">".
func RenderParamTable(rows []ParamRow, st TableStyles) string {
	if len(rows) == 0 {
		return st.Muted.Render("  (no parameters)")
	}

	instW, inputW := 0, 0
	for _, r := range rows {
		instW = max(instW, len(r.Instance))
		inputW = max(inputW, len(r.Input))
	}

	var lines []string
	for _, r := range rows {
		marker := " "
		if r.Selected {
			marker = ">"
		}
		tracked := " "
		if r.Tracked {
			tracked = "*"
		}
		line := fmt.Sprintf("%s%s %-*s  %-*s  %s", marker, tracked, instW, r.Instance, inputW, r.Input, r.Value)

		style := st.Normal
		switch {
		case r.Selected:
			style = st.Selected
		case !r.Tracked:
			style = st.Muted
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}
