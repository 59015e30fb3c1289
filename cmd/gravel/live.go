package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/akmonengine/gravel"
	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

const (
	mapWidth  = 48
	mapHeight = 20
)

type TickMsg time.Time

// liveModel steps a world at a fixed rate and draws it from above.
type liveModel struct {
	cfg      *config.Config
	world    *gravel.World
	rec      *recorder
	interval time.Duration
	running  bool
	time     float64
	err      error
}

func newLiveModel(cfg *config.Config, fps int) (liveModel, error) {
	m := liveModel{
		cfg:      cfg,
		interval: time.Second / time.Duration(max(fps, 1)),
		running:  true,
	}
	return m, m.reset()
}

func (m *liveModel) reset() error {
	w, _, err := buildWorld(m.cfg)
	if err != nil {
		return err
	}
	m.world = w
	m.rec = newRecorder(w)
	m.time = 0
	return nil
}

func (m liveModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m liveModel) Init() tea.Cmd {
	return m.tick()
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		case "n":
			if !m.running {
				m.step()
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the world by one frame worth of fixed steps.
func (m *liveModel) step() {
	frame := m.interval.Seconds()
	for done := 0.0; done < frame; done += m.cfg.Dt {
		m.world.Integrate(m.cfg.Dt)
		m.rec.sample(m.world.Bodies())
		m.time += m.cfg.Dt
	}
}

func (m liveModel) View() string {
	stats := m.world.Stats()
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(sceneName())) + "\n")
	s.WriteString(status + "\n\n")
	s.WriteString(field("Time", fmt.Sprintf("%.2fs", m.time)))
	s.WriteString(field("Steps", fmt.Sprint(stats.Steps)))
	s.WriteString(field("Bodies", fmt.Sprintf("%d (%d awake)", stats.Bodies, stats.ActiveBodies)))
	s.WriteString(field("Contacts", fmt.Sprintf("%d / %d pts", stats.Contacts, stats.ContactPoints)))
	s.WriteString(field("Warm started", fmt.Sprint(stats.WarmStarted)))
	s.WriteString(field("Energy", fmt.Sprintf("%.3f J", m.rec.lastEnergy())))
	if len(m.rec.energy) > 1 {
		chart := asciigraph.Plot(downsample(m.rec.energy, 30), asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause N:Step R:Reset Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		mapStyle.Render(topDown(m.world.Bodies(), mapWidth, mapHeight)),
		statsStyle.Render(s.String()),
	)
}

// topDown projects the bodies on the xz plane, fitting the view to the
// dynamic bodies. Awake bodies draw as 'o', sleeping ones as '.', static
// ones as '#'.
func topDown(bodies []*actor.RigidBody, width, height int) string {
	minX, maxX, minZ, maxZ := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, b := range bodies {
		if b.BodyType != actor.BodyTypeDynamic {
			continue
		}
		p := b.Transform.Position
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minZ, maxZ = math.Min(minZ, p[2]), math.Max(maxZ, p[2])
	}
	if math.IsInf(minX, 0) || math.IsNaN(minX+maxX+minZ+maxZ) {
		minX, maxX, minZ, maxZ = -5, 5, -5, 5
	}
	// square cells, a terminal glyph is about twice as tall as wide
	span := math.Max(math.Max(maxX-minX, 2*(maxZ-minZ)), 4) * 1.2
	cx, cz := (minX+maxX)/2, (minZ+maxZ)/2

	grid := make([][]byte, height)
	for j := range grid {
		grid[j] = []byte(strings.Repeat(" ", width))
	}
	for _, b := range bodies {
		if b.ID == 0 {
			continue
		}
		p := b.Transform.Position
		i := int(math.Round((p[0]-cx)/span*float64(width-1))) + width/2
		j := int(math.Round((p[2]-cz)/span*2*float64(height-1))) + height/2
		if i < 0 || i >= width || j < 0 || j >= height {
			continue
		}
		glyph := byte('o')
		switch {
		case b.BodyType == actor.BodyTypeStatic:
			if grid[j][i] != ' ' {
				continue
			}
			glyph = '#'
		case b.IsSleeping:
			glyph = '.'
		}
		grid[j][i] = glyph
	}

	lines := make([]string, height)
	for j := range grid {
		lines[j] = string(grid[j])
	}
	return strings.Join(lines, "\n")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := newLiveModel(cfg, frameRate)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if lm, ok := final.(liveModel); ok && lm.err != nil {
		return lm.err
	}
	return nil
}
