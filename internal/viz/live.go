package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/experiment"
	"github.com/san-kum/kinetics/internal/metrics"
	"github.com/san-kum/kinetics/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 600
	trailCapacity   = 400
	// ensembles up to this size draw a trail per particle
	trailParticles = 16
	maxDrawn       = 4000
	// a full run plays back in about this many frames at normal speed
	playbackFrames = 60 * 20
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a scenario frame by frame and renders its particles next to
// the energy drift history.
type Model struct {
	cfg       *config.Config
	sim       *sim.Simulator
	step      int
	steps     int
	dt        float64
	perFrame  int
	e0        float64
	canvas    *Canvas
	view      Viewport
	fixedView bool
	camera    *Camera
	threeD    bool
	trails    [][]dynamo.Vector
	drift     []float64
	running   bool
	finished  bool
	showHelp  bool
	err       error
}

// NewModel builds the scenario described by cfg. cfg is not modified.
func NewModel(cfg *config.Config) (Model, error) {
	m := Model{
		cfg:     cfg.Clone(),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(),
		running: true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.finished && m.err == nil {
				m.running = !m.running
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "v":
			m.threeD = !m.threeD
		case "h", "left":
			m.camera.Rotate(-0.1, 0)
		case "l", "right":
			m.camera.Rotate(0.1, 0)
		case "k", "up":
			m.camera.Rotate(0, 0.1)
		case "j", "down":
			m.camera.Rotate(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case ">", ".":
			m.perFrame *= 2
		case "<", ",":
			m.perFrame = max(1, m.perFrame/2)
		}
		m.draw()
	case tea.WindowSizeMsg:
		m.canvas = NewCanvas(max(20, msg.Width-56), max(8, msg.Height-4))
		m.draw()
	case TickMsg:
		if m.running {
			m.advance()
			m.draw()
		}
		return m, tick()
	}
	return m, nil
}

// reset rebuilds the experiment from the config, so a reset replays the
// same seed.
func (m *Model) reset() error {
	x := experiment.New(m.cfg.Clone())
	if err := x.Setup(); err != nil {
		return err
	}
	m.sim = x.Simulator()
	sc := x.SimConfig()
	m.dt = sc.Dt
	m.steps = sc.Steps()
	m.perFrame = max(1, m.steps/playbackFrames)
	m.step = 0
	m.e0 = m.sim.Energy()
	m.drift = m.drift[:0]
	m.running, m.finished, m.err = true, false, nil

	e := m.sim.Ensemble()
	if d, ok := m.sim.Domain(); ok {
		m.view, m.fixedView = DomainViewport(d), true
	} else {
		m.view, m.fixedView = Fit(e, m.initialReach()), false
	}
	m.trails = nil
	if len(e) <= trailParticles {
		m.trails = make([][]dynamo.Vector, len(e))
	}
	m.draw()
	return nil
}

// initialReach guesses the distance a lone particle covers in a run.
func (m *Model) initialReach() float64 {
	speed := 0.0
	for _, p := range m.sim.Ensemble() {
		speed = math.Max(speed, p.Speed())
	}
	return speed * m.cfg.Duration / 20
}

// advance runs the steps of one frame.
func (m *Model) advance() {
	for i := 0; i < m.perFrame && m.step < m.steps; i++ {
		if err := m.sim.Step(m.step, m.dt); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.step++
	}

	m.drift = append(m.drift, metrics.RelativeDrift(m.e0, m.sim.Energy()))
	if len(m.drift) > historyCapacity {
		m.drift = m.drift[1:]
	}

	e := m.sim.Ensemble()
	for i := range m.trails {
		m.trails[i] = append(m.trails[i], e[i].Position)
		if len(m.trails[i]) > trailCapacity {
			m.trails[i] = m.trails[i][1:]
		}
	}
	if !m.fixedView {
		for i := range e {
			m.view.Include(e[i].Position)
		}
	}
	if m.step >= m.steps {
		m.finished = true
		m.running = false
	}
}

func (m *Model) project(p dynamo.Vector) (int, int, bool) {
	w, h := m.canvas.Pixels()
	if m.threeD {
		return m.camera.Project(p, m.view, w, h)
	}
	return m.view.Project(p, w, h)
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.threeD {
		m.camera.DrawBox(m.canvas, m.view)
	}
	for _, trail := range m.trails {
		for _, p := range trail {
			if x, y, ok := m.project(p); ok {
				m.canvas.Set(x, y)
			}
		}
	}
	e := m.sim.Ensemble()
	stride := max(1, len(e)/maxDrawn)
	for i := 0; i < len(e); i += stride {
		if x, y, ok := m.project(e[i].Position); ok {
			m.canvas.Set(x, y)
		}
	}
}

// Time is the simulated time reached so far.
func (m Model) Time() float64 { return float64(m.step) * m.dt }

func (m Model) Steps() int { return m.step }

func (m Model) Finished() bool { return m.finished }

func (m Model) Err() error { return m.err }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return "ERROR"
	case m.finished:
		return "DONE"
	case !m.running:
		return "PAUSED"
	}
	return "RUNNING"
}

func (m Model) View() string {
	st := themeStyles(CurrentTheme)
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.cfg.Name)) + "\n")
	s.WriteString(m.status() + "\n")
	if m.err != nil {
		s.WriteString(st.warn.Render(m.err.Error()) + "\n")
	}

	if len(m.drift) > 1 {
		chart := asciigraph.Plot(m.drift, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Energy drift"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.4gs", m.Time()))
	row("Step", fmt.Sprintf("%d/%d ×%d", m.step, m.steps, m.perFrame))
	row("Particles", fmt.Sprintf("%d", len(m.sim.Ensemble())))
	integrator := m.cfg.Integrator
	if integrator == "" {
		integrator = "newton"
	}
	row("Integrator", integrator)
	row("Energy", fmt.Sprintf("%.6g", m.sim.Energy()))
	if n := len(m.drift); n > 0 {
		row("Drift", fmt.Sprintf("%+.3e", m.drift[n-1]))
	}
	if cs, ok := m.sim.CollisionStats(); ok {
		row("Collisions", fmt.Sprintf("%d/%d", cs.Collisions, cs.Events))
		row("Acceptance", fmt.Sprintf("%.3f", cs.AcceptanceRatio()))
	}
	if sp := m.sim.Sampler(); sp != nil {
		row("Side hits", fmt.Sprintf("%d", sp.Len()))
		row("Side speed", fmt.Sprintf("%.4g m/s", sp.MeanSpeed()))
	}
	view := "xy"
	if m.threeD {
		view = "3d"
	}
	row("View", view+" / "+CurrentTheme.Name)

	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit\nV:3D T:Theme <>:Speed ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space     pause or resume
  R         rebuild the scenario from its seed
  Q         quit
  V         toggle xy / 3d view
  H/L J/K   orbit the 3d camera
  + -       zoom
  < >       halve or double steps per frame
  T         cycle themes
  ?         toggle this help
`

// RunLive opens the live view for one scenario.
func RunLive(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
