package websocket

import (
	"sync"

	"skidoodle/nowplaying/internal/overlay"
)

// Op is the kind of display command sent to overlay pages.
type Op string

const (
	OpLayout  Op = "layout"
	OpText    Op = "text"
	OpImage   Op = "image"
	OpWidth   Op = "width"
	OpVisible Op = "visible"
	OpFade    Op = "fade"
)

// Command is the client-facing message. Exactly the fields relevant to Op are set.
type Command struct {
	Op      Op              `json:"op"`
	Element overlay.Element `json:"element,omitempty"`
	Text    string          `json:"text,omitempty"`
	Percent float64         `json:"percent,omitempty"`
	Visible bool            `json:"visible,omitempty"`
	Fade    overlay.Fade    `json:"fade,omitempty"`
	Layout  *overlay.Layout `json:"layout,omitempty"`
}

func (c Command) key() string {
	return string(c.Op) + ":" + string(c.Element)
}

// mirror keeps the latest encoded command per (op, element) so that pages connecting
// mid-track can be brought up to date.
type mirror struct {
	mu    sync.RWMutex
	order []string
	last  map[string][]byte
}

func newMirror() *mirror {
	return &mirror{last: make(map[string][]byte)}
}

func (m *mirror) record(key string, msg []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.last[key]; !ok {
		m.order = append(m.order, key)
	}
	m.last[key] = msg
}

// snapshot returns the mirrored commands in first-seen order, with visibility last so
// that content is in place before the overlay slides in.
func (m *mirror) snapshot() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([][]byte, 0, len(m.order))
	var visible []byte
	for _, k := range m.order {
		if k == string(OpVisible)+":" {
			visible = m.last[k]
			continue
		}
		out = append(out, m.last[k])
	}
	if visible != nil {
		out = append(out, visible)
	}
	return out
}
