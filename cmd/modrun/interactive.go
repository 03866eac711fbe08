package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/engine"
	"github.com/blockpeak/mod-sandbox/gateway"
	"github.com/blockpeak/mod-sandbox/sandbox"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	modStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	faultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// faultLog collects contained faults from the sandbox tick for display.
// The handler runs inside Tick, the view reads from the TUI goroutine.
type faultLog struct {
	mu     sync.Mutex
	faults []sandbox.Fault
}

func (l *faultLog) record(f sandbox.Fault) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults = append(l.faults, f)
}

func (l *faultLog) recent(n int) []sandbox.Fault {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.faults) > n {
		return l.faults[len(l.faults)-n:]
	}
	return l.faults
}

type interactiveModel struct {
	err      error
	sb       *sandbox.Sandbox
	gw       *gateway.Gateway
	faults   *faultLog
	modsDir  string
	tickRate int
	last     time.Time
	selected int
	entering bool
	payload  textinput.Model
	capture  bool
	loaded   int

	loadSandbox func() tea.Msg
}

type tickMsg time.Time

type loadedMsg struct {
	err    error
	sb     *sandbox.Sandbox
	gw     *gateway.Gateway
	loaded int
}

func newInteractiveModel(modsDir, worldFile string, tickRate int, callBudget time.Duration, faults *faultLog) *interactiveModel {
	m := &interactiveModel{
		modsDir:  modsDir,
		tickRate: tickRate,
		faults:   faults,
		capture:  true,
	}
	m.loadSandbox = func() tea.Msg {
		ctx := context.Background()

		gw, err := buildGateway(worldFile)
		if err != nil {
			return loadedMsg{err: err}
		}

		sb, err := sandbox.New(ctx, &sandbox.Config{
			Engine:  &engine.Config{CallTimeout: callBudget},
			Gateway: gw,
			OnFault: faults.record,
		})
		if err != nil {
			return loadedMsg{err: err}
		}

		loaded, err := loadMods(ctx, sb, modsDir, zap.NewNop())
		if err != nil {
			sb.Close(ctx)
			return loadedMsg{err: err}
		}
		return loadedMsg{sb: sb, gw: gw, loaded: loaded}
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadSandbox
}

func (m *interactiveModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.tickRate), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sb = msg.sb
		m.gw = msg.gw
		m.loaded = msg.loaded
		m.last = time.Now()
		return m, m.tick()

	case tickMsg:
		now := time.Time(msg)
		m.sb.Tick(context.Background(), now.Sub(m.last))
		m.last = now
		return m, m.tick()

	case tea.KeyMsg:
		if m.entering {
			return m.updatePayload(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *interactiveModel) updatePayload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.entering = false
		return m, nil
	case "enter":
		m.entering = false
		if inst := m.selectedInstance(); inst != nil {
			if err := m.sb.DeliverServerData(inst.Name(), []byte(m.payload.Value())); err != nil {
				m.err = err
			}
		}
		return m, nil
	case "ctrl+c":
		return m.quit()
	}
	var cmd tea.Cmd
	m.payload, cmd = m.payload.Update(msg)
	return m, cmd
}

func (m *interactiveModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	instances := m.instances()

	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(instances)-1 {
			m.selected++
		}

	case "enter":
		if inst := m.selectedInstance(); inst != nil {
			var err error
			if inst.State() == sandbox.StateReady {
				err = m.sb.Disable(inst.Name())
			} else {
				err = m.sb.Enable(inst.Name())
			}
			m.err = err
		}

	case "x":
		if inst := m.selectedInstance(); inst != nil {
			m.err = m.sb.Unload(context.Background(), inst.Name())
			if m.selected > 0 {
				m.selected--
			}
		}

	case "p":
		ti := textinput.New()
		ti.Prompt = "payload: "
		ti.Width = 40
		ti.Focus()
		m.payload = ti
		m.entering = true

	case "c":
		m.capture = !m.capture
		m.sb.SetCaptureInput(m.capture)

	case "w", "a", "s", "d", " ", "space":
		if key, ok := contractKey(msg.String()); ok {
			// Terminals report no key releases, so a press maps to a tap.
			m.sb.PushKeyboard(api.KeyboardEvent{Key: key})
			m.sb.PushKeyboard(api.KeyboardEvent{Key: key, Released: true})
		}
	}
	return m, nil
}

func contractKey(s string) (api.Key, bool) {
	switch s {
	case "w":
		return api.KeyW, true
	case "a":
		return api.KeyA, true
	case "s":
		return api.KeyS, true
	case "d":
		return api.KeyD, true
	case " ", "space":
		return api.KeySpace, true
	}
	return 0, false
}

func (m *interactiveModel) quit() (tea.Model, tea.Cmd) {
	if m.sb != nil {
		m.sb.Close(context.Background())
	}
	return m, tea.Quit
}

func (m *interactiveModel) instances() []*sandbox.Instance {
	if m.sb == nil {
		return nil
	}
	return m.sb.Instances()
}

func (m *interactiveModel) selectedInstance() *sandbox.Instance {
	instances := m.instances()
	if m.selected < 0 || m.selected >= len(instances) {
		return nil
	}
	return instances[m.selected]
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.sb == nil {
		return faultStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.sb == nil {
		return "Loading mods..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Mod Sandbox"))
	b.WriteString(fmt.Sprintf(" %s  %d mods  %d Hz", m.modsDir, m.loaded, m.tickRate))
	if !m.capture {
		b.WriteString("  " + helpStyle.Render("[input released]"))
	}
	b.WriteString("\n\n")

	instances := m.instances()
	if len(instances) == 0 {
		b.WriteString("No mods loaded.\n")
	}
	for i, inst := range instances {
		line := fmt.Sprintf("%s %s %s",
			modStyle.Render(inst.Name()),
			helpStyle.Render(inst.Manifest().Version),
			stateStyle.Render(inst.State().String()))
		if inst.Faulted() {
			line += " " + faultStyle.Render("faulted")
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	player := m.gatewayView()
	if player != "" {
		b.WriteString("\n" + player + "\n")
	}

	if faults := m.faults.recent(3); len(faults) > 0 {
		b.WriteString("\nRecent faults:\n")
		for _, f := range faults {
			b.WriteString(faultStyle.Render(fmt.Sprintf("  %s %s (%s): %v",
				f.Mod, f.Call, f.Kind, f.Err)))
			b.WriteString("\n")
		}
	}

	if m.entering {
		b.WriteString("\n")
		b.WriteString(m.payload.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter send to selected mod • esc cancel"))
		return b.String()
	}

	if m.err != nil {
		b.WriteString("\n" + faultStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter enable/disable • x unload • p send payload • w/a/s/d/space keys • c capture • q quit"))
	return b.String()
}

func (m *interactiveModel) gatewayView() string {
	if m.gw == nil || m.gw.Transforms == nil {
		return ""
	}
	t := m.gw.PlayerTransform()
	return helpStyle.Render(fmt.Sprintf("player (%.2f, %.2f, %.2f) scale %.2f",
		t.Translation.X, t.Translation.Y, t.Translation.Z, t.Scale))
}

func runInteractive(modsDir, worldFile string, tickRate int, callBudget time.Duration) error {
	if tickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", tickRate)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}

	faults := &faultLog{}
	p := tea.NewProgram(newInteractiveModel(modsDir, worldFile, tickRate, callBudget, faults), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
