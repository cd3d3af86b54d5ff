package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/scene-bridge/native/wasmengine"
	"github.com/wippyai/scene-bridge/scene"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	compStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type treeRow struct {
	node   *scene.Node
	depth  int
	active bool
}

type interactiveModel struct {
	cfg      *Config
	eng      *wasmengine.Engine
	sc       *scene.Context
	root     *scene.Node
	err      error
	rows     []treeRow
	inspect  []string
	pathIn   textinput.Model
	status   string
	selected int
	state    modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateInspect
	stateLoadScene
)

func newInteractiveModel(cfg *Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "path/to/file.scene"
	ti.Prompt = "scene: "
	ti.Width = 48
	return &interactiveModel{cfg: cfg, pathIn: ti}
}

type loadedMsg struct {
	err  error
	eng  *wasmengine.Engine
	sc   *scene.Context
	root *scene.Node
}

type appendedMsg struct {
	err     error
	path    string
	pending bool
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadEngine
}

func (m *interactiveModel) loadEngine() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.cfg.Engine.Path)
	if err != nil {
		return loadedMsg{err: err}
	}
	eng, err := wasmengine.Load(ctx, data)
	if err != nil {
		return loadedMsg{err: err}
	}
	sc, err := scene.New(eng, scene.WithLogger(zap.NewNop()))
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}
	roots, err := sc.CreateNodes(1, m.cfg.Engine.ComponentHint)
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}
	return loadedMsg{eng: eng, sc: sc, root: roots[0]}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateLoadScene {
			switch msg.String() {
			case "enter":
				path := m.pathIn.Value()
				m.pathIn.Reset()
				m.state = stateBrowse
				if path != "" {
					return m, m.appendScene(path)
				}
				return m, nil
			case "esc":
				m.pathIn.Reset()
				m.state = stateBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.pathIn, cmd = m.pathIn.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.eng != nil {
				m.eng.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.rows) > 0 {
					m.inspectNode(m.rows[m.selected].node)
					m.state = stateInspect
				}
			case stateInspect:
				m.state = stateBrowse
				m.inspect = nil
			}

		case "l":
			if m.state == stateBrowse {
				m.state = stateLoadScene
				m.pathIn.Focus()
			}

		case "a":
			if m.state == stateBrowse && len(m.rows) > 0 {
				row := m.rows[m.selected]
				if err := row.node.SetActive(!row.active); err != nil {
					m.status = err.Error()
				}
				m.refreshTree()
			}

		case "esc":
			if m.state == stateInspect {
				m.state = stateBrowse
				m.inspect = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.eng = msg.eng
		m.sc = msg.sc
		m.root = msg.root
		m.refreshTree()

	case appendedMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("load %s: %v", msg.path, msg.err)
		case msg.pending:
			m.status = fmt.Sprintf("loading %s...", msg.path)
		default:
			m.status = fmt.Sprintf("appended %s", msg.path)
		}
		m.refreshTree()
	}

	return m, nil
}

// appendScene issues the async load against the selected node and resolves
// the bubbletea message from the completion callback.
func (m *interactiveModel) appendScene(path string) tea.Cmd {
	target := m.root
	if len(m.rows) > 0 {
		target = m.rows[m.selected].node
	}
	return func() tea.Msg {
		done := make(chan appendedMsg, 1)
		err := target.AppendScene(path, func(n *scene.Node, err error) {
			done <- appendedMsg{path: path, err: err}
		})
		if err != nil {
			return appendedMsg{path: path, err: err}
		}
		// The engine delivers the completion during a boundary call; if it
		// did not resolve inside the append itself, report it as pending and
		// let the Pending counter track it.
		select {
		case msg := <-done:
			return msg
		default:
			return appendedMsg{path: path, pending: true}
		}
	}
}

func (m *interactiveModel) refreshTree() {
	m.rows = m.rows[:0]
	if m.root != nil {
		m.walk(m.root, 0)
	}
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *interactiveModel) walk(n *scene.Node, depth int) {
	active, err := n.Active()
	if err != nil {
		return
	}
	m.rows = append(m.rows, treeRow{node: n, depth: depth, active: active})

	children, err := n.Children()
	if err != nil {
		return
	}
	for _, c := range children {
		m.walk(c, depth+1)
	}
}

// inspectNode collects the detail lines shown in the inspect pane.
func (m *interactiveModel) inspectNode(n *scene.Node) {
	m.inspect = m.inspect[:0]
	add := func(format string, args ...any) {
		m.inspect = append(m.inspect, fmt.Sprintf(format, args...))
	}

	t, err := n.Transform()
	if err != nil {
		add("%s", errorStyle.Render(err.Error()))
		return
	}
	add("position %v", t.Position)
	add("rotation %v", t.Rotation)
	add("scale    %v", t.Scale)

	for _, kind := range builtinKinds {
		comp, err := n.Component(kind)
		if err != nil || comp == nil {
			continue
		}
		add("%s", compStyle.Render(kindName(kind)))

		r, ok := comp.(*scene.MeshRenderer)
		if !ok {
			continue
		}
		if mesh, err := r.Mesh(); err == nil && mesh != nil {
			add("  mesh: %d vertices", mesh.VertexCount())
		}
		mat, err := r.Material()
		if err != nil || mat == nil {
			continue
		}
		params, err := mat.Params()
		if err != nil {
			continue
		}
		for _, p := range params {
			v, set, err := mat.Get(p.Name)
			switch {
			case err != nil:
				add("  %s: %v", p.Name, errorStyle.Render(err.Error()))
			case !set:
				add("  %s: %s %s", p.Name, p.Type, inactiveStyle.Render("(unset)"))
			default:
				add("  %s: %s = %v", p.Name, p.Type, v)
			}
		}
	}

	if anims, err := n.Animations(); err == nil && len(anims) > 0 {
		add("%s", compStyle.Render("animations"))
		for _, a := range anims {
			name, err := a.Name()
			if err != nil {
				continue
			}
			add("  %s (%.2fs)", name, a.Duration())
		}
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.sc == nil {
		return "Loading engine..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Scene Browser"))
	b.WriteString(" ")
	b.WriteString(m.cfg.Engine.Path)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		for i, row := range m.rows {
			line := strings.Repeat("  ", row.depth) + fmt.Sprintf("node %d", row.node.Handle())
			switch {
			case i == m.selected:
				b.WriteString(selectedStyle.Render("> " + line))
			case !row.active:
				b.WriteString("  " + inactiveStyle.Render(line))
			default:
				b.WriteString("  " + nodeStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.status != "" {
			b.WriteString(m.status)
			b.WriteString("\n")
		}
		if n := m.sc.Pending(); n > 0 {
			b.WriteString(fmt.Sprintf("%d loads pending\n", n))
		}
		b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • a toggle active • l load scene • q quit"))

	case stateInspect:
		row := m.rows[m.selected]
		b.WriteString(nodeStyle.Render(fmt.Sprintf("node %d", row.node.Handle())))
		b.WriteString("\n\n")
		for _, line := range m.inspect {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))

	case stateLoadScene:
		b.WriteString("Append a scene under the selected node:\n\n")
		b.WriteString(m.pathIn.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter load • esc cancel"))
	}

	return b.String()
}
