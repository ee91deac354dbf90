package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"skidoodle/nowplaying/internal/overlay"
	"skidoodle/nowplaying/internal/schedule"
)

// Server is the main application orchestrator.
type Server struct {
	addr          string
	httpServer    *http.Server
	hub           *Hub
	poller        *overlay.Poller
	loop          *schedule.Loop
	upgrader      *websocket.Upgrader
	originChecker func(string) bool
	now           func() time.Time
}

// NewServer creates a new, fully configured overlay server. The hub must be the
// surface the poller's updater renders to, and loop its scheduler.
func NewServer(addr string, allowedOrigins []string, hub *Hub, poller *overlay.Poller, loop *schedule.Loop) *Server {
	s := &Server{
		addr:   addr,
		hub:    hub,
		poller: poller,
		loop:   loop,
		originChecker: func(origin string) bool {
			return len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
		},
		now: time.Now,
	}
	s.upgrader = s.newUpgrader()
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/"+overlay.PlaceholderAlbumArt, placeholderHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.serveWebsocket(w, r)
			return
		}
		indexHandler(w, r)
	})
	return mux
}

// Run starts the server and its components and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.hub.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		s.loop.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		s.poller.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, stopping http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "error", err)
		}
	}()

	slog.Info("http server listening", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	wg.Wait()

	return nil
}
