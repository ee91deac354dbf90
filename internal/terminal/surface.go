// Package terminal renders the overlay in a terminal with bubbletea.
package terminal

import (
	tea "github.com/charmbracelet/bubbletea"

	"skidoodle/nowplaying/internal/overlay"
)

// Sender delivers messages to a running program. [tea.Program] satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

type (
	textMsg struct {
		el   overlay.Element
		text string
	}
	imageMsg struct {
		el  overlay.Element
		src string
	}
	widthMsg struct {
		el      overlay.Element
		percent float64
	}
	visibleMsg bool
	fadeMsg    struct {
		el   overlay.Element
		fade overlay.Fade
	}
)

// Surface forwards display updates to a bubbletea program.
type Surface struct {
	program Sender
}

// NewSurface creates a Surface that sends to program.
func NewSurface(program Sender) *Surface {
	return &Surface{program: program}
}

func (s *Surface) SetText(el overlay.Element, text string) {
	s.program.Send(textMsg{el: el, text: text})
}

func (s *Surface) SetImageSrc(el overlay.Element, src string) {
	s.program.Send(imageMsg{el: el, src: src})
}

func (s *Surface) SetWidthPercent(el overlay.Element, percent float64) {
	s.program.Send(widthMsg{el: el, percent: percent})
}

func (s *Surface) SetVisible(visible bool) {
	s.program.Send(visibleMsg(visible))
}

func (s *Surface) SetFade(el overlay.Element, fade overlay.Fade) {
	s.program.Send(fadeMsg{el: el, fade: fade})
}
