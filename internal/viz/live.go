package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/wcsph/internal/metrics"
	"github.com/san-kum/wcsph/internal/sim"
	"github.com/san-kum/wcsph/internal/sph"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 80
	height          = 20
	historyCapacity = 120
)

type TickMsg time.Time

// Model is the Bubble Tea model of the live view. Every tick runs one
// frame of substeps and redraws the display buffer.
type Model struct {
	solver    *sph.Solver
	name      string
	canvas    *Canvas
	points    []r2.Vec
	frame     int
	maxFrames int
	fps       int
	running   bool
	unstable  bool
	hits      int

	kinetic   *metrics.KineticEnergy
	density   *metrics.MeanDensity
	keHistory []float64
}

// NewModel builds a live view over solver. maxFrames of 0 runs until quit.
func NewModel(solver *sph.Solver, name string, fps, maxFrames int) Model {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		solver:    solver,
		name:      name,
		canvas:    NewCanvas(width, height),
		maxFrames: maxFrames,
		fps:       fps,
		running:   true,
		kinetic:   metrics.NewKineticEnergy(),
		density:   metrics.NewMeanDensity(),
		keHistory: make([]float64, 0, historyCapacity),
	}
	m.points = solver.Display(nil)
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		}
		return m, nil
	case TickMsg:
		if m.running && !m.unstable {
			m.step()
		}
		if m.maxFrames > 0 && m.frame >= m.maxFrames {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.hits = m.solver.Frame()
	p := m.solver.Particles()
	if !p.Valid() {
		m.unstable = true
		return
	}

	sample := sim.Sample{
		Frame:     sim.Frame{Index: m.frame, Time: m.solver.Time(), Collisions: m.hits},
		Particles: p,
		Params:    m.solver.Params(),
	}
	m.kinetic.Observe(sample)
	m.density.Observe(sample)

	if len(m.keHistory) == historyCapacity {
		m.keHistory = m.keHistory[1:]
	}
	m.keHistory = append(m.keHistory, m.kinetic.Current())
	m.points = m.solver.Display(m.points)
	m.frame++
}

func (m *Model) reset() {
	m.solver.Reset()
	m.kinetic.Reset()
	m.density.Reset()
	m.keHistory = m.keHistory[:0]
	m.points = m.solver.Display(m.points)
	m.frame, m.hits = 0, 0
	m.unstable = false
}

func (m *Model) draw() {
	m.canvas.Clear()
	right, bottom := width*2-1, height*4-1
	m.canvas.DrawLine(0, 0, 0, bottom)
	m.canvas.DrawLine(0, bottom, right, bottom)
	m.canvas.DrawLine(right, bottom, right, 0)
	m.canvas.PlotPoints(m.points)
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	status := statusRunning.Render("RUNNING")
	switch {
	case m.unstable:
		status = statusFailed.Render("UNSTABLE")
	case !m.running:
		status = statusPaused.Render("PAUSED")
	}

	prm := m.solver.Params()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(status + "\n\n")
	if len(m.keHistory) > 1 {
		chart := asciigraph.Plot(m.keHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d", m.frame)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", m.solver.Time())) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", prm.N)) + "\n")
	s.WriteString(labelStyle.Render("Kinetic") + valueStyle.Render(fmt.Sprintf("%.2f", m.kinetic.Current())) + "\n")
	s.WriteString(labelStyle.Render("Mean ρ") + valueStyle.Render(fmt.Sprintf("%.3f", m.density.Current())) + "\n")
	s.WriteString(labelStyle.Render("Wall hits") + valueStyle.Render(fmt.Sprintf("%d", m.hits)) + "\n")
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause N:Step R:Reset Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
