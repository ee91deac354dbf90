package terminal

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skidoodle/nowplaying/internal/overlay"
)

const defaultWidth = 60

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1DB954")).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	artistStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B3B3B3"))
	fadedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#535353"))
	artStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	hiddenStyle = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model of the terminal overlay.
type Model struct {
	layout  overlay.Layout
	visible bool
	text    map[overlay.Element]string
	images  map[overlay.Element]string
	fades   map[overlay.Element]overlay.Fade
	percent float64
	bar     progress.Model
	width   int
}

// NewModel creates a hidden Model.
func NewModel(layout overlay.Layout) Model {
	return Model{
		layout: layout,
		text:   make(map[overlay.Element]string),
		images: make(map[overlay.Element]string),
		fades:  make(map[overlay.Element]overlay.Fade),
		bar:    progress.New(progress.WithSolidFill("#1DB954"), progress.WithoutPercentage()),
		width:  defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = min(msg.Width-4, defaultWidth)
	case textMsg:
		m.text[msg.el] = msg.text
	case imageMsg:
		m.images[msg.el] = msg.src
	case widthMsg:
		if msg.el == overlay.ProgressBar {
			m.percent = msg.percent
		}
	case visibleMsg:
		m.visible = bool(msg)
	case fadeMsg:
		m.fades[msg.el] = msg.fade
	}
	return m, nil
}

func (m Model) View() string {
	if !m.visible {
		return hiddenStyle.Render("nothing playing") + "\n"
	}

	inner := max(m.width-4, 10)
	m.bar.Width = inner

	lines := []string{
		m.label(overlay.SongLabel, titleStyle),
		m.label(overlay.ArtistLabel, artistStyle),
	}
	if !m.layout.HideAlbumArt {
		if src := m.images[overlay.AlbumArt]; src != "" {
			lines = append(lines, artStyle.Render(truncate(src, inner)))
		}
	}

	elapsed := m.text[overlay.ProgressTime]
	remaining := m.text[overlay.TimeRemaining]
	gap := max(inner-lipgloss.Width(elapsed)-lipgloss.Width(remaining), 1)
	lines = append(lines,
		m.bar.ViewAs(barFraction(m.percent)),
		elapsed+strings.Repeat(" ", gap)+remaining,
	)

	return cardStyle.Width(m.width).Render(strings.Join(lines, "\n")) + "\n"
}

// label renders an element's text, dimmed while it is faded out.
func (m Model) label(el overlay.Element, style lipgloss.Style) string {
	if m.fades[el] == overlay.FadeOut {
		style = fadedStyle
	}
	return style.Render(m.text[el])
}

// barFraction converts a width percentage into the bar's 0..1 fill. The bar itself
// cannot draw outside that range.
func barFraction(percent float64) float64 {
	if math.IsNaN(percent) {
		return 0
	}
	return math.Max(0, math.Min(1, percent/100))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}
