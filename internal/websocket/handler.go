package websocket

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// staleAfter is how long the poller may go without completing a cycle before the
// service reports itself unhealthy.
const staleAfter = 30 * time.Second

var (
	//go:embed static/index.html
	indexPage []byte

	//go:embed static/placeholder-album-art.svg
	placeholderArt []byte
)

// newUpgrader creates an upgrader that enforces the server's origin allow-list.
func (s *Server) newUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if !s.originChecker(origin) {
				slog.Warn("origin not allowed, rejecting connection", "origin", origin)
				return false
			}
			return true
		},
	}
}

// serveWebsocket registers a new overlay page with the hub.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		slog.Debug("websocket upgrade failed", "error", err, "remoteAddr", r.RemoteAddr)
		return
	}

	client := newClient(s.hub, conn)
	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// indexHandler serves the overlay page used as a browser source.
func indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Source", "github.com/skidoodle/nowplaying")
	if _, err := w.Write(indexPage); err != nil {
		slog.Warn("failed to write overlay page", "error", err)
	}
}

func placeholderHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(placeholderArt); err != nil {
		slog.Warn("failed to write placeholder art", "error", err)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Poller  any    `json:"poller"`
}

// healthHandler responds to Docker health checks. The service is unhealthy when the
// poll loop has stopped making progress.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	st := s.poller.Status()
	resp := healthResponse{Status: "ok", Clients: s.hub.ClientCount(), Poller: st}
	code := http.StatusOK
	if !st.LastPoll.IsZero() && s.now().Sub(st.LastPoll) > staleAfter {
		resp.Status = "stale"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("failed to write health check response", "error", err)
	}
}
