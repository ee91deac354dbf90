package overlay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"skidoodle/nowplaying/internal/schedule"
	"skidoodle/nowplaying/internal/spotify"
)

const (
	// PollInterval is the delay after any poll that reached the API.
	PollInterval = 1000 * time.Millisecond
	// FailureInterval is the delay after a transport or parse failure.
	FailureInterval = 2000 * time.Millisecond
)

// Fetcher returns the current playback snapshot.
type Fetcher interface {
	CurrentlyPlaying(ctx context.Context) (*spotify.Snapshot, error)
}

// Refresher re-acquires the access token.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Display receives poll outcomes. [Updater] is the production implementation.
type Display interface {
	Apply(s spotify.Snapshot)
	Hide()
}

// Status summarizes the poller's recent history.
type Status struct {
	LastPoll    time.Time `json:"last_poll,omitzero"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

// Poller is responsible for fetching playback from the Spotify API periodically.
type Poller struct {
	fetcher Fetcher
	tokens  Refresher
	display Display
	sched   schedule.Scheduler
	now     func() time.Time
	after   func(time.Duration) <-chan time.Time

	mu     sync.RWMutex
	status Status
}

// NewPoller creates a new Poller. Display updates are posted to sched.
func NewPoller(fetcher Fetcher, tokens Refresher, display Display, sched schedule.Scheduler) *Poller {
	return &Poller{
		fetcher: fetcher,
		tokens:  tokens,
		display: display,
		sched:   sched,
		now:     time.Now,
		after:   time.After,
	}
}

// Run acquires an initial token and polls until ctx is cancelled. It must be run in a
// separate goroutine.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("poller started")
	defer slog.Info("poller stopped")

	if err := p.tokens.Refresh(ctx); err != nil {
		slog.Warn("initial token refresh failed, will retry on 401", "error", err)
	}

	var delay time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.after(delay):
			delay = p.Cycle(ctx)
		}
	}
}

// Cycle performs one poll and returns the delay before the next one.
func (p *Poller) Cycle(ctx context.Context) time.Duration {
	snap, err := p.fetcher.CurrentlyPlaying(ctx)
	if err == nil {
		p.record(nil)
		s := *snap
		p.sched.Post(func() { p.display.Apply(s) })
		return PollInterval
	}

	p.record(err)

	var apiErr *spotify.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			slog.Info("access token rejected, refreshing")
			// The new token is picked up by the next cycle.
			if err := p.tokens.Refresh(ctx); err != nil {
				slog.Debug("token refresh failed", "error", err)
			}
			return PollInterval
		}
		slog.Error("spotify api error", "status", apiErr.StatusCode, "message", apiErr.Message)
		return PollInterval
	}

	// Nothing playing carries no snapshot to parse, so it takes the hard failure path.
	if errors.Is(err, spotify.ErrNothingPlaying) {
		slog.Debug("nothing playing")
	} else {
		slog.Error("failed to get currently playing track", "error", err)
	}
	p.sched.Post(p.display.Hide)
	return FailureInterval
}

// Status returns a copy of the poller's status.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Poller) record(err error) {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.LastPoll = now
	if err != nil {
		p.status.LastError = err.Error()
		return
	}
	p.status.LastSuccess = now
	p.status.LastError = ""
}
