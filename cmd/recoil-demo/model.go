package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/recoilui/recoil"
)

const (
	headerHeight = 1
	statusHeight = 2

	// Sideways launch velocity in cells per second when fling is on.
	flingVelocityX = 40

	// Catch-up cap so a backgrounded terminal does not replay seconds of
	// integration in one frame.
	maxFrameDelta = 250 * time.Millisecond
)

type frameMsg time.Time

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type keyMap struct {
	quit        key.Binding
	toggleArm   key.Binding
	toggleStop  key.Binding
	nextPreset  key.Binding
	toggleFling key.Binding
	copyPreset  key.Binding
	toggleHelp  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		toggleArm: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "arm/disarm"),
		),
		toggleStop: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s", "stop/start"),
		),
		nextPreset: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next preset"),
		),
		toggleFling: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle fling"),
		),
		copyPreset: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy preset"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.toggleArm,
		k.toggleStop,
		k.nextPreset,
		k.toggleFling,
		k.copyPreset,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggleArm, k.toggleStop},
		{k.nextPreset, k.toggleFling, k.copyPreset},
		{k.toggleHelp, k.quit},
	}
}

type model struct {
	width  int
	height int
	sized  bool

	styles styles
	keys   keyMap
	help   help.Model

	fps    int
	prop   *recoil.Prop[recoil.Point]
	engine *recoil.Engine[recoil.Point]
	spring *recoil.Spring[recoil.Point]

	presets    *presetConfig
	presetPath string
	presetIdx  int

	store       *runStore
	settleCount int

	flingOn   bool
	tapAt     time.Time
	tapDest   recoil.Point
	tapLanded bool

	showHelp      bool
	recentSettles []settleRecord
	lastFrame     time.Time

	toastMessage string
	toastExpires time.Time
}

func initialModel(fps int) *model {
	presets, presetPath := loadPresetConfig()
	store, _ := openRunStore()
	return newDemoModel(fps, presets, presetPath, store)
}

func newDemoModel(fps int, presets *presetConfig, presetPath string, store *runStore) *model {
	if fps <= 0 {
		fps = 60
	}

	prop := recoil.NewProp(recoil.Point{})
	engine := recoil.NewEngine(prop, fps)
	spring := recoil.NewSpring[recoil.Point](prop, engine)

	m := &model{
		styles:     newStyles(),
		keys:       newKeyMap(),
		help:       help.New(),
		fps:        fps,
		prop:       prop,
		engine:     engine,
		spring:     spring,
		presets:    presets,
		presetPath: presetPath,
		presetIdx:  presets.indexOf(presets.Active),
		lastFrame:  time.Now(),
	}
	m.applyPreset(m.presetIdx)

	if store != nil {
		m.store = store
		if count, err := store.Count(); err == nil {
			m.settleCount = count
		}
	}

	// Fires only for natural completions: the disarm/stop paths clear the
	// pending tap before cancelling.
	spring.Subscribe(func(st recoil.State) {
		if st != recoil.AtRest || m.tapAt.IsZero() {
			return
		}
		rec := settleRecord{
			Preset:     m.activePreset().Name,
			DestX:      m.tapDest.X,
			DestY:      m.tapDest.Y,
			SettleMS:   time.Since(m.tapAt).Milliseconds(),
			Overlapped: m.tapLanded,
		}
		if m.store != nil && m.store.Record(rec) == nil {
			m.settleCount++
		}
		m.tapAt = time.Time{}
		m.tapLanded = false
		m.setToast(fmt.Sprintf("Settled in %dms", rec.SettleMS), 2*time.Second)
	})

	spring.Enable()
	return m
}

func (m *model) Init() tea.Cmd {
	return frameCmd(m.fps)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		now := time.Time(msg)
		dt := now.Sub(m.lastFrame)
		if dt > maxFrameDelta {
			dt = maxFrameDelta
		}
		m.lastFrame = now
		m.engine.Step(dt)
		if !m.toastExpires.IsZero() && now.After(m.toastExpires) {
			m.toastMessage = ""
			m.toastExpires = time.Time{}
		}
		return m, frameCmd(m.fps)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		setMarkdownWordWrap(minInt(msg.Width-6, 78))
		if !m.sized {
			m.sized = true
			center := recoil.Point{
				X: float64(msg.Width) / 2,
				Y: float64(m.fieldHeight()) / 2,
			}
			m.prop.Set(center)
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Type != tea.MouseLeft {
			return m, nil
		}
		return m, m.handleTap(msg.X, msg.Y)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *model) handleTap(x, y int) tea.Cmd {
	if m.showHelp {
		return nil
	}
	row := y - headerHeight
	if row < 0 || row >= m.fieldHeight() || x < 0 || x >= m.width {
		return nil
	}
	dest := recoil.Point{X: float64(x), Y: float64(row)}
	if m.spring.State() == recoil.Active {
		m.tapLanded = true
	}
	m.tapAt = time.Now()
	m.tapDest = dest
	m.spring.SetDestination(dest)
	if !m.spring.Enabled() {
		m.setToast("Spring is disarmed; press e", 3*time.Second)
	} else if m.spring.Stopped() {
		m.setToast("Simulation stopped; press s", 3*time.Second)
	}
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		_ = m.store.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = !m.showHelp
		if m.showHelp {
			m.recentSettles, _ = m.store.Recent(5)
		}

	case key.Matches(msg, m.keys.toggleArm):
		if m.spring.Enabled() {
			m.clearPendingTap()
			m.spring.Disable()
			m.setToast("Disarmed", 2*time.Second)
		} else {
			m.spring.Enable()
			m.setToast("Armed", 2*time.Second)
		}

	case key.Matches(msg, m.keys.toggleStop):
		if m.spring.Stopped() {
			m.spring.Start()
			m.setToast("Simulation started", 2*time.Second)
		} else {
			m.clearPendingTap()
			m.spring.Stop()
			m.setToast("Simulation stopped", 2*time.Second)
		}

	case key.Matches(msg, m.keys.nextPreset):
		m.presetIdx = (m.presetIdx + 1) % len(m.presets.Presets)
		m.applyPreset(m.presetIdx)
		m.presets.Active = m.activePreset().Name
		_ = savePresetConfig(m.presets, m.presetPath)
		m.setToast("Preset: "+m.activePreset().Name, 2*time.Second)

	case key.Matches(msg, m.keys.toggleFling):
		m.flingOn = !m.flingOn
		if m.flingOn {
			m.spring.SetInitialVelocity(recoil.Point{X: flingVelocityX})
			m.setToast("Fling on", 2*time.Second)
		} else {
			m.spring.ClearInitialVelocity()
			m.setToast("Fling off", 2*time.Second)
		}

	case key.Matches(msg, m.keys.copyPreset):
		data, err := yaml.Marshal(m.activePreset())
		if err == nil {
			err = clipboard.WriteAll(string(data))
		}
		if err != nil {
			m.setToast("Clipboard unavailable", 4*time.Second)
		} else {
			m.setToast("Preset copied", 2*time.Second)
		}
	}

	return m, nil
}

// clearPendingTap forgets the in-flight tap so a cancellation's AtRest
// transition is not mistaken for a settle.
func (m *model) clearPendingTap() {
	m.tapAt = time.Time{}
	m.tapLanded = false
}

func (m *model) applyPreset(idx int) {
	if idx < 0 || idx >= len(m.presets.Presets) {
		return
	}
	p := m.presets.Presets[idx]
	m.spring.Tension = p.Tension
	m.spring.Friction = p.Friction
	m.spring.Mass = p.Mass
	m.spring.SuggestedDuration = p.duration()
}

func (m *model) activePreset() springPreset {
	if m.presetIdx < 0 || m.presetIdx >= len(m.presets.Presets) {
		return springPreset{Name: "custom"}
	}
	return m.presets.Presets[m.presetIdx]
}

func (m *model) fieldHeight() int {
	h := m.height - headerHeight - statusHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}

func (m *model) View() string {
	if !m.sized {
		return "loading..."
	}
	if m.showHelp {
		body := renderHelp()
		if recent := m.renderRecentSettles(); recent != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, body, recent)
		}
		return m.styles.helpOverlay.Render(body)
	}

	header := m.renderHeader()
	field := m.renderField()
	status := m.renderStatus()
	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left, header, field, status))
}

func (m *model) renderHeader() string {
	p := m.activePreset()
	title := m.styles.topTitle.Render("recoil")
	params := fmt.Sprintf("%s  t=%.0f f=%.0f m=%.1f", p.Name, p.Tension, p.Friction, p.Mass)
	if p.DurationMS > 0 {
		params += fmt.Sprintf(" d=%dms", p.DurationMS)
	}
	info := m.styles.topStatus.Render(params + "  " + m.flagSummary())
	return m.styles.topBar.Render(title + "  " + info)
}

func (m *model) flagSummary() string {
	flags := make([]string, 0, 3)
	if m.spring.Enabled() {
		flags = append(flags, "armed")
	} else {
		flags = append(flags, "disarmed")
	}
	if m.spring.Stopped() {
		flags = append(flags, "stopped")
	}
	flags = append(flags, m.spring.State().String())
	return strings.Join(flags, " · ")
}

func (m *model) renderField() string {
	height := m.fieldHeight()
	width := m.width
	if width < 1 {
		width = 1
	}

	display := m.prop.Display()
	glyphX := clampInt(int(math.Round(display.X)), 0, width-1)
	glyphY := clampInt(int(math.Round(display.Y)), 0, height-1)

	targetX, targetY := -1, -1
	if dest, ok := m.spring.Destination(); ok {
		targetX = clampInt(int(math.Round(dest.X)), 0, width-1)
		targetY = clampInt(int(math.Round(dest.Y)), 0, height-1)
	}

	rows := make([]string, height)
	for y := 0; y < height; y++ {
		if y != glyphY && y != targetY {
			rows[y] = ""
			continue
		}
		var b strings.Builder
		for x := 0; x < width; x++ {
			switch {
			case x == glyphX && y == glyphY:
				b.WriteString(m.styles.glyph.Render("●"))
			case x == targetX && y == targetY:
				b.WriteString(m.styles.target.Render("✕"))
			default:
				b.WriteByte(' ')
			}
		}
		rows[y] = b.String()
	}
	return m.styles.field.Render(strings.Join(rows, "\n"))
}

func (m *model) renderRecentSettles() string {
	if len(m.recentSettles) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.recentSettles)+1)
	lines = append(lines, m.styles.statusHint.Render("Recent settles"))
	for _, rec := range m.recentSettles {
		line := fmt.Sprintf("  %-10s %5dms → (%.0f, %.0f)", rec.Preset, rec.SettleMS, rec.DestX, rec.DestY)
		if rec.Overlapped {
			line += "  overlapped"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderStatus() string {
	var top string
	if m.toastMessage != "" {
		top = m.styles.toast.Render(m.toastMessage)
	} else if m.settleCount > 0 {
		top = m.styles.statusHint.Render(fmt.Sprintf("%d settles recorded", m.settleCount))
	}
	bottom := m.help.View(m.keys)
	return m.styles.statusBar.Render(lipgloss.JoinVertical(lipgloss.Left, top, bottom))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
