package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"go-variations/debug"
	"go-variations/graph"
	"go-variations/handling"
	"go-variations/midi"
	"go-variations/surface"
	"go-variations/theme"
	"go-variations/undo"
	"go-variations/value"
	"go-variations/variation"
	"go-variations/widgets"
)

const (
	padCount    = widgets.GridSize * widgets.GridSize
	padWidth    = 3
	nudgeStep   = 0.05
	blendStep   = 8
	maxBlend    = 127
	warningRows = 3
	blendBarLen = 24
)

// layoutBounds holds cached layout info
type layoutBounds struct {
	gridTop int
}

type Model struct {
	Handler   *handling.Handler
	Graph     *graph.Memory
	Stack     *undo.Stack
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	fps      int
	selected int // index into the composition's children, -1 for none
	cursor   int // pool index under the keyboard cursor
	param    int // row of the parameter table
	blend    int // keyboard fader position
	marked   map[int]bool
	quitting bool
	bounds   *layoutBounds
}

type TickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

func NewModel(h *handling.Handler, g *graph.Memory, stack *undo.Stack, deviceMgr *midi.DeviceManager, th *theme.Theme, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	return Model{
		Handler:   h,
		Graph:     g,
		Stack:     stack,
		DeviceMgr: deviceMgr,
		Theme:     th,
		fps:       fps,
		selected:  -1,
		marked:    make(map[int]bool),
		bounds:    &layoutBounds{},
	}
}

// Tick drives the handler at fps
func Tick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{Tick(m.fps)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

// Selection is what the handler binds its pools from
func (m Model) Selection() handling.Selection {
	sel := handling.Selection{Composition: m.Graph.Root()}
	if inst := m.selectedInstance(); inst != nil {
		sel.Selected = []graph.Instance{inst}
	}
	return sel
}

func (m Model) selectedInstance() graph.Instance {
	children := m.Graph.Root().Children()
	if m.selected < 0 || m.selected >= len(children) {
		return nil
	}
	return children[m.selected]
}

// scope lists the instances whose inputs the parameter table shows
func (m Model) scope() []graph.Instance {
	if inst := m.selectedInstance(); inst != nil {
		return []graph.Instance{inst}
	}
	return m.Graph.Root().Children()
}

type paramEntry struct {
	inst graph.Instance
	def  graph.InputDef
}

func (m Model) params() []paramEntry {
	var out []paramEntry
	for _, inst := range m.scope() {
		for _, def := range inst.Inputs() {
			out = append(out, paramEntry{inst: inst, def: def})
		}
	}
	return out
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if idx, ok := m.hitTest(msg.X, msg.Y); ok {
				m.cursor = idx
			}
		}

	case TickMsg:
		m.Handler.Update(m.Selection())
		return m, Tick(m.fps)

	case DeviceEventMsg:
		m.handleDevice(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleDevice(event midi.DeviceEvent) {
	switch event.Type {
	case midi.DeviceConnected:
		if event.Port == nil {
			return
		}
		dev, ok := surface.New(event.Port.Layout().Type(), event.Port)
		if !ok {
			debug.Warn("tui", "no surface for %s", event.ID)
			return
		}
		m.Handler.AddDevice(dev)
	case midi.DeviceDisconnected:
		m.Handler.RemoveDevice(event.ID)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if err := m.Handler.Close(); err != nil {
			debug.Warn("tui", "save variations: %v", err)
		}
		return m, tea.Quit

	// Pool cursor
	case "left", "h":
		if m.cursor%widgets.GridSize > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%widgets.GridSize < widgets.GridSize-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor+widgets.GridSize < padCount {
			m.cursor += widgets.GridSize
		}
	case "down", "j":
		if m.cursor-widgets.GridSize >= 0 {
			m.cursor -= widgets.GridSize
		}

	// Pool commands
	case "enter", " ":
		m.Handler.ActivateOrCreatePresetAtIndex(m.cursor)
	case "s":
		m.Handler.SavePresetAtIndex(m.cursor)
	case "x":
		m.Handler.RemovePresetAtIndex(m.cursor)
	case "n":
		m.Handler.CreateOrUpdateSnapshotVariation(handling.AutoIndex)

	// Blending
	case "m":
		if m.marked[m.cursor] {
			delete(m.marked, m.cursor)
		} else {
			m.marked[m.cursor] = true
		}
	case "b":
		indices := m.markedIndices()
		if len(indices) == 0 {
			indices = []int{m.cursor}
		}
		m.blend = 0
		m.Handler.StartBlendingPresets(indices)
		clear(m.marked)
	case "g":
		if indices := m.markedIndices(); len(indices) > 0 {
			m.Handler.MixPresets(indices, m.cursor)
			clear(m.marked)
		}
	case ">", ".":
		m.blend = min(maxBlend, m.blend+blendStep)
		m.Handler.BlendValuesUpdate(m.blend)
	case "<", ",":
		m.blend = max(0, m.blend-blendStep)
		m.Handler.BlendValuesUpdate(m.blend)

	// History
	case "u", "ctrl+z":
		m.Handler.Gesture().Finish()
		if _, err := m.Stack.Undo(); err != nil {
			debug.Warn("tui", "undo: %v", err)
		}
	case "r", "ctrl+y":
		m.Handler.Gesture().Finish()
		if _, err := m.Stack.Redo(); err != nil {
			debug.Warn("tui", "redo: %v", err)
		}

	// Selection and focus
	case "tab":
		n := len(m.Graph.Root().Children())
		m.selected++
		if m.selected >= n {
			m.selected = -1
		}
		m.param = 0
	case "0", "esc":
		m.selected = -1
		m.param = 0
	case "f":
		if inst := m.selectedInstance(); inst != nil {
			m.Handler.SetFocus(m.Graph.Root(), []uuid.UUID{inst.ID()})
		}
	case "F":
		m.Handler.ClearFocus(m.Graph.Root())
	case "d":
		m.Handler.SetResetToDefaultValues(!m.Handler.Settings().ResetToDefaultValues)

	// Parameters
	case "J":
		if m.param < len(m.params())-1 {
			m.param++
		}
	case "K":
		if m.param > 0 {
			m.param--
		}
	case "+", "=":
		m.nudge(nudgeStep)
	case "-", "_":
		m.nudge(-nudgeStep)
	}

	return m, nil
}

func (m Model) markedIndices() []int {
	var out []int
	for idx := range m.marked {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// nudge changes the first component of the selected parameter as one undo
// step
func (m Model) nudge(delta float64) {
	entries := m.params()
	if m.param < 0 || m.param >= len(entries) {
		return
	}
	e := entries[m.param]
	path := e.inst.Path()

	slot, err := m.Graph.Resolve(path, e.def.ID)
	if err != nil {
		debug.Warn("tui", "nudge %s: %v", e.def.Name, err)
		return
	}
	cur := slot.Value()
	comps := slices.Clone(cur.Components())
	if len(comps) == 0 {
		return
	}
	comps[0] += delta
	next, err := value.FromComponents(cur.Kind(), comps)
	if err != nil {
		debug.Warn("tui", "nudge %s: %v", e.def.Name, err)
		return
	}

	m.Handler.Gesture().Finish()
	cmd := undo.NewChangeInputValue(m.Graph, path, e.def.ID, cur, next)
	if err := m.Stack.AddAndExecute(cmd); err != nil {
		debug.Warn("tui", "nudge %s: %v", e.def.Name, err)
	}
}

// hitTest maps a mouse position to a pool index
func (m Model) hitTest(x, y int) (int, bool) {
	relY := y - m.bounds.gridTop
	if relY < 0 || relY >= widgets.GridSize || x < 0 {
		return 0, false
	}
	col := x / padWidth
	if col >= widgets.GridSize {
		return 0, false
	}
	row := widgets.GridSize - 1 - relY
	return row*widgets.GridSize + col, true
}

func (m Model) stateCell(s variation.State) widgets.Cell {
	sym := m.Theme.Symbols
	switch s {
	case variation.StateInactive:
		return widgets.Cell{Color: m.Theme.RGB(theme.RoleFG), Symbol: sym.Inactive}
	case variation.StateActive:
		return widgets.Cell{Color: m.Theme.RGB(theme.RoleSuccess), Symbol: sym.Active}
	case variation.StateModified:
		return widgets.Cell{Color: m.Theme.RGB(theme.RoleWarning), Symbol: sym.Modified}
	case variation.StateBlended:
		return widgets.Cell{Color: m.Theme.RGB(theme.RoleAccent), Symbol: sym.Blended}
	}
	return widgets.Cell{Color: m.Theme.RGB(theme.RoleMuted), Symbol: sym.Undefined}
}

func (m Model) gridView(pool *variation.Pool) string {
	cells := make([]widgets.Cell, padCount)
	for i := range cells {
		state := variation.StateUndefined
		if pool != nil {
			state = pool.State(i)
		}
		cells[i] = m.stateCell(state)
		cells[i].Cursor = i == m.cursor
		cells[i].Marked = m.marked[i]
	}
	return widgets.RenderPadGrid(cells)
}

func (m Model) paramView(pool *variation.Pool, st widgets.TableStyles) string {
	var rows []widgets.ParamRow
	for i, e := range m.params() {
		row := widgets.ParamRow{
			Instance: e.inst.Name(),
			Input:    e.def.Name,
			Selected: i == m.param,
		}
		if slot, err := m.Graph.Resolve(e.inst.Path(), e.def.ID); err == nil {
			row.Value = value.Format(slot.Value())
		}
		if pool != nil {
			ref := variation.ParameterRef{InstancePath: e.inst.Path(), InputID: e.def.ID, Kind: e.def.Kind}
			_, row.Tracked = pool.Parameter(ref)
		}
		rows = append(rows, row)
	}
	return widgets.RenderParamTable(rows, st)
}

func (m Model) blendView() string {
	g := m.Handler.Gesture()
	if g.State() != variation.GestureDragging {
		return "blend: idle"
	}
	bar := widgets.RenderBar(g.Position(), blendBarLen, m.Theme.Symbols.Filled, m.Theme.Symbols.Empty)
	return fmt.Sprintf("blend: %s %3.0f%%  %d targets", bar, g.Position()*100, len(g.Targets()))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	tableStyles := widgets.TableStyles{
		Normal:   lipgloss.NewStyle().Foreground(m.Theme.FG()),
		Muted:    dimStyle,
		Selected: lipgloss.NewStyle().Foreground(m.Theme.Success()),
	}

	ctx := m.Handler.Context()
	selName := "-"
	if inst := m.selectedInstance(); inst != nil {
		selName = inst.Name()
	}
	focus := ""
	if m.Handler.Focused(m.Graph.Root()) {
		focus = "  focus"
	}

	header := headerStyle.Render(fmt.Sprintf("go-variations  %s  sel:%s  mode:%s  reset:%s  devices:%d  undo:%d%s",
		m.Graph.Root().Name(), selName, m.Handler.Mode(),
		onOff(m.Handler.Settings().ResetToDefaultValues), len(m.Handler.Devices()), m.Stack.Depth(), focus))

	grid := m.gridView(ctx.SnapshotPool)
	if ctx.SnapshotPool == nil {
		grid = dimStyle.Render(grid)
	}

	var warnings []string
	for _, w := range debug.Recent(warningRows) {
		warnings = append(warnings, warnStyle.Render("! "+w))
	}

	help := dimStyle.Render("hjkl:cursor  enter:activate  s:save  x:delete  n:new  m/b/<>:blend  g:mix  u/r:undo/redo  tab:select  f/F:focus  d:reset  J/K +/-:params  q:quit")

	m.bounds.gridTop = 1 + lipgloss.Height(header) + 1

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(m.blendView())
	out.WriteString("\n\n")
	out.WriteString(m.paramView(ctx.SnapshotPool, tableStyles))
	if len(warnings) > 0 {
		out.WriteString("\n\n")
		out.WriteString(strings.Join(warnings, "\n"))
	}
	out.WriteString("\n\n")
	out.WriteString(help)

	return out.String()
}
