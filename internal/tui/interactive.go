package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/phys"
	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var scenarioInfo = map[string]string{
	"drop":      "box settles on the ground",
	"trigger":   "body crosses a sensor zone",
	"character": "capsule walks and jumps",
	"vehicle":   "four wheels on a flat road",
	"float":     "buoyancy versus gravity",
}

type state int

const (
	stateMenu state = iota
	stateConfig
	stateSim
)

type model struct {
	state     state
	cursor    int
	scenarios []string
	selected  string

	params      map[string]float64
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	running   bool
	paused    bool
	run       *scenarioRun
	simTime   float64
	speed     float64
	history   []float64
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

// scenarioRun owns the live world for one simulation session.
type scenarioRun struct {
	world *phys.World
	graph *scene.Graph

	focus     scene.NodeRef
	character *phys.CharacterController
	vehicle   *phys.VehicleController

	triggerPos    mathf.Vec3
	triggerRadius float32
	events        []string
	trail         []trailPoint
}

type trailPoint struct {
	x, y  float64
	speed float64
}

func NewInteractiveApp() *model {
	return &model{
		state:     stateMenu,
		scenarios: []string{"drop", "trigger", "character", "vehicle", "float"},
		params: map[string]float64{
			"height": 5, "gravity": -9.81, "duration": 30,
			"speed": 4, "mass": 100, "throttle": 1,
		},
		paramNames: []string{"height", "gravity", "duration"},
		speed:      1.0,
		history:    make([]float64, 0, 60),
		width:      80,
		height:     24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if m.running && !m.paused && m.run != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				dt := now.Sub(m.lastFrame).Seconds()
				if dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			steps := int(m.speed)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps; i++ {
				m.step()
			}
		}
		if m.running && m.state == stateSim {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.scenarios[m.cursor]
		m.state = stateConfig
		m.paramCursor = 0
		m.setParamsForScenario()
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(m.editBuf, "%f", &val)
			m.params[m.paramNames[m.paramCursor]] = val
			m.editing = false
			m.editBuf = ""
		case "escape":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "escape":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = fmt.Sprintf("%.2f", m.params[m.paramNames[m.paramCursor]])
	case "s":
		m.start()
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick())
	case "left", "h":
		m.params[m.paramNames[m.paramCursor]] -= 0.1
	case "right", "l":
		m.params[m.paramNames[m.paramCursor]] += 0.1
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape":
		m.running = false
		m.state = stateMenu
		m.reset()
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.reset()
		m.start()
		return m, tea.ClearScreen
	case "c":
		m.running = false
		m.state = stateConfig
		m.reset()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = math.Min(m.speed*2, 16)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) setParamsForScenario() {
	switch m.selected {
	case "drop":
		m.paramNames = []string{"height", "gravity", "duration"}
	case "trigger":
		m.paramNames = []string{"speed", "duration"}
	case "character":
		m.paramNames = []string{"speed", "duration"}
	case "vehicle":
		m.paramNames = []string{"throttle", "duration"}
	case "float":
		m.paramNames = []string{"mass", "duration"}
	}
	for _, name := range m.paramNames {
		if _, ok := m.params[name]; !ok {
			m.params[name] = 0.0
		}
	}
}

func (m *model) start() {
	m.run = m.buildRun()
	m.history = make([]float64, 0, 60)
	m.simTime = 0
	m.speed = 1.0
	m.lastFrame = time.Time{}
	m.running = true
	m.paused = false
}

func (m *model) buildRun() *scenarioRun {
	opts := phys.DefaultOptions()
	if g := m.params["gravity"]; g != 0 && m.selected == "drop" {
		opts.Gravity = mathf.V3(0, float32(g), 0)
	}
	w := phys.NewWorld(opts)
	g := scene.NewGraph()
	run := &scenarioRun{world: w, graph: g}

	ground, err := w.Bodies().CreateBoxBody(mathf.V3(100, 0.5, 100), mathf.V3(0, -0.5, 0), mathf.QuatIdentity(), solver.MotionStatic, phys.BodyCreation{Friction: 0.9})
	if err == nil && m.selected != "float" {
		w.Bodies().AddBody(ground, false)
	}

	switch m.selected {
	case "drop":
		h := float32(m.params["height"])
		run.focus = g.Spawn("crate", mathf.V3(0, h, 0), mathf.QuatIdentity())
		body, _ := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, h, 0), mathf.QuatIdentity(), solver.MotionDynamic, phys.BodyCreation{Mass: 10, Restitution: 0.3})
		w.Bodies().AddBody(body, true)
		w.BindBody(body, run.focus)

	case "trigger":
		run.triggerPos = mathf.V3(0, 1, 0)
		run.triggerRadius = 1.5
		zone := g.Spawn("zone", run.triggerPos, mathf.QuatIdentity())
		trig, _ := w.Bodies().CreateSphereTrigger(run.triggerRadius, run.triggerPos, mathf.QuatIdentity())
		w.Bodies().AddTrigger(trig, false)
		w.BindTrigger(trig, zone)

		run.focus = g.Spawn("probe", mathf.V3(-8, 1, 0), mathf.QuatIdentity())
		body, _ := w.Bodies().CreateBoxBody(mathf.V3(0.4, 0.4, 0.4), mathf.V3(-8, 1, 0), mathf.QuatIdentity(), solver.MotionDynamic, phys.BodyCreation{Mass: 1})
		w.Bodies().AddBody(body, true)
		w.Bodies().SetGravityFactor(body, 0)
		w.Bodies().SetVelocity(body, mathf.V3(float32(m.params["speed"]), 0, 0))
		w.BindBody(body, run.focus)

		w.Observe(zone, phys.ContactFuncs{
			TriggerEnter: func(other scene.NodeRef) { run.logEvent("enter") },
			TriggerExit:  func(other scene.NodeRef) { run.logEvent("exit") },
		})

	case "character":
		run.focus = g.Spawn("player", mathf.V3(-10, 1.2, 0), mathf.QuatIdentity())
		run.character, _ = w.AttachCharacterController(g, run.focus, phys.DefaultCharacterSettings())

	case "vehicle":
		run.focus = g.Spawn("car", mathf.V3(-20, 0.9, 0), mathf.QuatIdentity())
		run.vehicle, _ = w.AttachVehicleController(run.focus, phys.DefaultVehicleSettings(), mathf.V3(-20, 0.9, 0), mathf.QuatIdentity())
		if run.vehicle != nil {
			run.vehicle.SetThrottle(float32(m.params["throttle"]))
		}

	case "float":
		w.AddFluidVolume(phys.WaterVolumeSettings(mathf.V3(0, -5, 0), mathf.V3(50, 5, 50)))
		run.focus = g.Spawn("buoy", mathf.V3(0, -2, 0), mathf.QuatIdentity())
		body, _ := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, -2, 0), mathf.QuatIdentity(), solver.MotionDynamic, phys.BodyCreation{Mass: float32(m.params["mass"])})
		w.Bodies().AddBody(body, true)
		w.BindBody(body, run.focus)
	}
	return run
}

func (r *scenarioRun) logEvent(kind string) {
	r.events = append(r.events, kind)
	if len(r.events) > 6 {
		r.events = r.events[1:]
	}
}

func (m *model) reset() {
	if m.run != nil {
		m.run.world.Close()
		m.run = nil
	}
	m.history = nil
	m.simTime = 0
}

func (m *model) step() {
	if m.simTime >= m.params["duration"] {
		m.paused = true
		return
	}
	r := m.run

	if r.character != nil {
		r.character.Move(mathf.V3(float32(m.params["speed"]), 0, 0))
		if r.character.Position().X > 5 {
			r.character.Jump(5)
		}
	}

	if err := r.world.Process(r.graph, phys.FixedStep); err != nil {
		m.paused = true
		return
	}
	m.simTime += phys.FixedStep

	pos, speed := r.focusState()
	r.trail = append(r.trail, trailPoint{float64(pos.X), float64(pos.Y), speed})
	if len(r.trail) > 100 {
		r.trail = r.trail[1:]
	}
	m.history = append(m.history, float64(pos.Y))
	if len(m.history) > 60 {
		m.history = m.history[1:]
	}
}

func (r *scenarioRun) focusState() (mathf.Vec3, float64) {
	switch {
	case r.character != nil:
		return r.character.Position(), float64(r.character.Velocity().Length())
	case r.vehicle != nil:
		return r.vehicle.Position(), float64(r.vehicle.Speed())
	default:
		if n, ok := r.graph.Resolve(r.focus); ok {
			return n.Position, 0
		}
		return mathf.Vec3{}, 0
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("i m p e l") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.scenarios {
		desc := scenarioInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.selected) + "  " + dim.Render(scenarioInfo[m.selected]) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	for i, name := range m.paramNames {
		val := fmt.Sprintf("%8.3f", m.params[name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-10s", name)) + dim.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  s start  esc back") + "\n")

	return b.String()
}

func (m model) viewSim() string {
	cw := m.width - 6
	ch := m.height - 11
	if cw < 50 {
		cw = 50
	}
	if ch < 12 {
		ch = 12
	}

	canvas := make([][]rune, ch)
	for i := range canvas {
		canvas[i] = make([]rune, cw)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	m.drawScene(canvas, cw, ch)

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n",
		statusIcon, cyan.Render(m.selected), statusText))

	progress := m.simTime / m.params["duration"]
	if progress > 1 {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.0fs", m.simTime, m.params["duration"])
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(timeStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	for _, row := range canvas {
		b.WriteString("   " + string(row) + "\n")
	}

	if m.run != nil {
		pos, speed := m.run.focusState()
		b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s\n",
			dim.Render("x="), white.Render(fmt.Sprintf("%.2f", pos.X)),
			dim.Render("y="), white.Render(fmt.Sprintf("%.2f", pos.Y)),
			dim.Render("v="), white.Render(fmt.Sprintf("%.2f", speed))))

		if len(m.run.events) > 0 {
			b.WriteString("   " + dim.Render("events ") + yellow.Render(strings.Join(m.run.events, " ")) + "\n")
		}
	}

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("y"), cyan.Render(sparkline(m.history, 24))))
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  r reset  c config  q quit") + "\n")

	return b.String()
}

// drawScene projects the world side-on: x maps across, y maps up.
func (m model) drawScene(canvas [][]rune, w, h int) {
	if m.run == nil {
		return
	}
	gy := h - 2
	for x := 1; x < w-1; x++ {
		set(canvas, x, gy+1, '═', w, h)
	}

	scale := 2.5
	toCanvas := func(wx, wy float64) (int, int) {
		return w/2 + int(wx*scale), gy - int(wy*scale)
	}

	maxV := 0.0
	for _, pt := range m.run.trail {
		if pt.speed > maxV {
			maxV = pt.speed
		}
	}
	for _, pt := range m.run.trail {
		tx, ty := toCanvas(pt.x, pt.y)
		set(canvas, tx, ty, trailChar(pt.speed, maxV), w, h)
	}

	if m.run.triggerRadius > 0 {
		cx, cy := toCanvas(float64(m.run.triggerPos.X), float64(m.run.triggerPos.Y))
		rr := int(float64(m.run.triggerRadius) * scale)
		for a := 0.0; a < 2*math.Pi; a += 0.25 {
			set(canvas, cx+int(float64(rr)*math.Cos(a)*2), cy+int(float64(rr)*math.Sin(a)), '·', w, h)
		}
	}

	if m.selected == "float" {
		for x := 1; x < w-1; x++ {
			if canvas[gy][x] == ' ' {
				set(canvas, x, gy, '~', w, h)
			}
		}
	}

	pos, _ := m.run.focusState()
	bx, by := toCanvas(float64(pos.X), float64(pos.Y))
	switch m.selected {
	case "vehicle":
		set(canvas, bx-2, by, '▗', w, h)
		set(canvas, bx-1, by, '█', w, h)
		set(canvas, bx, by, '█', w, h)
		set(canvas, bx+1, by, '▖', w, h)
		set(canvas, bx-1, by+1, '○', w, h)
		set(canvas, bx+1, by+1, '○', w, h)
	case "character":
		set(canvas, bx, by-1, 'O', w, h)
		set(canvas, bx, by, '█', w, h)
	default:
		set(canvas, bx, by, '⬤', w, h)
	}
}

func trailChar(speed, maxSpeed float64) rune {
	if maxSpeed == 0 {
		return '·'
	}
	ratio := speed / maxSpeed
	if ratio < 0.25 {
		return '·'
	} else if ratio < 0.5 {
		return '∘'
	} else if ratio < 0.75 {
		return '○'
	}
	return '●'
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func set(canvas [][]rune, x, y int, c rune, w, h int) {
	if x >= 0 && x < w && y >= 0 && y < h {
		canvas[y][x] = c
	}
}

func RunInteractive() error {
	p := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
