package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/kinetics/internal/config"
)

var presetInfo = map[string]string{
	"boris":              "gyration and E×B drift",
	"boris_relativistic": "electron near light speed",
	"collisionless":      "thermal box, free streaming",
	"collisional":        "cold argon background",
	"hot":                "thermal argon background",
	"solar":              "sun, earth and moon",
}

type entry struct{ kind, name string }

const (
	stateMenu = iota
	stateLive
)

// App lists the presets and opens the live view for the chosen one.
type App struct {
	state   int
	cursor  int
	entries []entry
	live    Model
	err     error
}

func NewApp() App {
	var entries []entry
	for _, kind := range config.Kinds() {
		for _, name := range config.ListPresets(kind) {
			entries = append(entries, entry{kind, name})
		}
	}
	return App{entries: entries}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateLive {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.entries) == 0 {
			return a, nil
		}
		sel := a.entries[a.cursor]
		m, err := NewModel(config.GetPreset(sel.kind, sel.name))
		if err != nil {
			a.err = err
			return a, nil
		}
		a.live, a.state, a.err = m, stateLive, nil
		return a, a.live.Init()
	}
	return a, nil
}

func (a App) View() string {
	if a.state == stateLive {
		return a.live.View()
	}
	t := CurrentTheme
	title := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.Muted)
	selected := lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.Primary)

	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("KINETICS") + "\n    " + muted.Render("particle kinetics and collisions") + "\n\n")
	kind := ""
	for i, e := range a.entries {
		if e.kind != kind {
			kind = e.kind
			b.WriteString("    " + muted.Render(kind) + "\n")
		}
		line := fmt.Sprintf("%-20s", e.name)
		if i == a.cursor {
			b.WriteString("    " + title.Render("▸ ") + selected.Render(line) + desc.Render(presetInfo[e.name]) + "\n")
		} else {
			b.WriteString("      " + muted.Render(line+presetInfo[e.name]) + "\n")
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(t.Warning).Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + muted.Render("j/k navigate  enter run  esc back  q quit") + "\n")
	return b.String()
}

// RunInteractive opens the preset menu.
func RunInteractive() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen()).Run()
	return err
}
