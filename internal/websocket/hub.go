package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync/atomic"

	"skidoodle/nowplaying/internal/overlay"
)

// Hub manages the set of active clients and broadcasts display commands.
// It implements [overlay.Surface].
type Hub struct {
	clients    map[*Client]struct{}
	count      atomic.Int32
	layout     overlay.Layout
	mirror     *mirror
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a new Hub. Layout is sent to every client when it connects.
func NewHub(layout overlay.Layout) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		layout:     layout,
		mirror:     newMirror(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It must be run in a separate goroutine.
func (h *Hub) Run(ctx context.Context) {
	slog.Info("hub started")
	defer slog.Info("hub stopped")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAllConnections()
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int32(len(h.clients)))
			h.replay(client)
			slog.Debug("client registered", "client", client.id, "remoteAddr", client.conn.RemoteAddr())
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.count.Store(int32(len(h.clients)))
			}
			slog.Debug("client unregistered", "client", client.id, "remoteAddr", client.conn.RemoteAddr())
		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Broadcast sends a command to all connected clients and remembers it for clients
// that connect later.
func (h *Hub) Broadcast(cmd Command) {
	msg, err := json.Marshal(cmd)
	if err != nil {
		slog.Warn("failed to encode overlay command", "error", err, "op", cmd.Op)
		return
	}
	h.mirror.record(cmd.key(), msg)

	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) SetText(el overlay.Element, text string) {
	h.Broadcast(Command{Op: OpText, Element: el, Text: text})
}

func (h *Hub) SetImageSrc(el overlay.Element, src string) {
	h.Broadcast(Command{Op: OpImage, Element: el, Text: src})
}

// SetWidthPercent forwards out-of-range widths unchanged. JSON cannot carry NaN or
// Inf, so those become zero.
func (h *Hub) SetWidthPercent(el overlay.Element, percent float64) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		slog.Debug("non-finite progress width, sending 0", "element", el)
		percent = 0
	}
	h.Broadcast(Command{Op: OpWidth, Element: el, Percent: percent})
}

func (h *Hub) SetVisible(visible bool) {
	h.Broadcast(Command{Op: OpVisible, Visible: visible})
}

func (h *Hub) SetFade(el overlay.Element, fade overlay.Fade) {
	h.Broadcast(Command{Op: OpFade, Element: el, Fade: fade})
}

// replay brings a newly registered client up to date. Must be called from Run.
func (h *Hub) replay(client *Client) {
	layout := h.layout
	msg, err := json.Marshal(Command{Op: OpLayout, Layout: &layout})
	if err != nil {
		slog.Warn("failed to encode layout", "error", err)
		return
	}

	for _, m := range append([][]byte{msg}, h.mirror.snapshot()...) {
		select {
		case client.send <- m:
		default:
			slog.Warn("client send buffer full during replay", "client", client.id)
			return
		}
	}
}

// broadcastMessage fans msg out. Clients that cannot keep up are dropped.
func (h *Hub) broadcastMessage(msg []byte) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			slog.Warn("client too slow, dropping connection", "client", client.id, "remoteAddr", client.conn.RemoteAddr())
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.count.Store(int32(len(h.clients)))
}

// closeAllConnections closes all active client connections during shutdown.
func (h *Hub) closeAllConnections() {
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
		if err := client.conn.Close(); err != nil {
			slog.Warn("error closing client connection during shutdown", "error", err, "remoteAddr", client.conn.RemoteAddr())
		}
	}
	h.count.Store(0)
}
