package overlay

import (
	"log/slog"
	"time"

	"skidoodle/nowplaying/internal/schedule"
	"skidoodle/nowplaying/internal/spotify"
)

const (
	// FadeDelay is how long an element stays faded out before its content is swapped.
	FadeDelay = 500 * time.Millisecond
	// BackBufferDelay is when the new artwork is preloaded into the back elements.
	BackBufferDelay = 1000 * time.Millisecond
	// PlaceholderAlbumArt is shown when a track has no artwork.
	PlaceholderAlbumArt = "images/placeholder-album-art.svg"
)

// DisplayState is what the updater remembers between snapshots to detect transitions.
type DisplayState struct {
	Playing  bool
	TrackURI string
}

type pendingSwap struct {
	value string
	seq   uint64
	timer schedule.Timer
}

// Updater maps snapshots onto a Surface.
//
// An Updater is not safe for concurrent use. All methods, and all callbacks it
// schedules, must run on the scheduler's goroutine.
type Updater struct {
	surface    Surface
	sched      schedule.Scheduler
	visibleFor time.Duration

	state     DisplayState
	displayed map[Element]string
	pending   map[Element]pendingSwap
	seq       uint64

	hideTimer schedule.Timer
	hideSeq   uint64
}

// NewUpdater creates an Updater. When visibleFor is positive the overlay hides itself
// that long after each show.
func NewUpdater(surface Surface, sched schedule.Scheduler, visibleFor time.Duration) *Updater {
	return &Updater{
		surface:    surface,
		sched:      sched,
		visibleFor: visibleFor,
		displayed:  make(map[Element]string),
		pending:    make(map[Element]pendingSwap),
	}
}

// State returns the tracked play state.
func (u *Updater) State() DisplayState {
	return u.state
}

// Apply renders a freshly polled snapshot.
func (u *Updater) Apply(s spotify.Snapshot) {
	if s.IsPlaying != u.state.Playing || s.TrackURI != u.state.TrackURI {
		if s.IsPlaying {
			u.setVisible(true, true)
			u.scheduleAutoHide()
		} else {
			u.cancelAutoHide()
			u.setVisible(false, true)
		}
		u.state.TrackURI = s.TrackURI
		slog.Info("playback changed", "isPlaying", s.IsPlaying, "track", s.Title, "artist", s.Artist)
	}

	art := s.AlbumArtURL
	if art == "" {
		art = PlaceholderAlbumArt
	}

	u.crossfade(AlbumArt, art, u.surface.SetImageSrc)
	u.crossfade(Background, art, u.surface.SetImageSrc)
	u.crossfade(ArtistLabel, s.Artist, u.surface.SetText)
	u.crossfade(SongLabel, s.Title, u.surface.SetText)

	elapsed := s.Progress.Seconds()
	duration := s.Duration.Seconds()
	u.surface.SetWidthPercent(ProgressBar, ProgressPercent(elapsed, duration))
	u.surface.SetText(ProgressTime, ConvertSeconds(elapsed))
	u.surface.SetText(TimeRemaining, "-"+ConvertSeconds(duration-elapsed))

	u.sched.After(BackBufferDelay, func() {
		u.surface.SetImageSrc(AlbumArtBack, art)
		u.surface.SetImageSrc(BackgroundBack, art)
	})
}

// Hide forces the overlay hidden after a failed poll. The tracked play state is left
// alone.
func (u *Updater) Hide() {
	u.cancelAutoHide()
	u.setVisible(false, false)
}

func (u *Updater) setVisible(visible, track bool) {
	u.surface.SetVisible(visible)
	if track {
		u.state.Playing = visible
	}
}

// scheduleAutoHide supersedes any earlier auto-hide so that a stale timer from a
// previous show cannot hide a newer one early.
func (u *Updater) scheduleAutoHide() {
	u.cancelAutoHide()
	if u.visibleFor <= 0 {
		return
	}

	u.hideSeq++
	seq := u.hideSeq
	u.hideTimer = u.sched.After(u.visibleFor, func() {
		if seq != u.hideSeq {
			return
		}
		u.hideTimer = nil
		u.setVisible(false, false)
	})
}

func (u *Updater) cancelAutoHide() {
	if u.hideTimer == nil {
		return
	}
	u.hideTimer.Stop()
	u.hideTimer = nil
	u.hideSeq++
}

// crossfade fades el out, then swaps in value after FadeDelay and fades it back in.
// Nothing happens when value is already shown or already on its way in.
func (u *Updater) crossfade(el Element, value string, swap func(Element, string)) {
	target := u.displayed[el]
	p, inFlight := u.pending[el]
	if inFlight {
		target = p.value
	}
	if target == value {
		return
	}
	if inFlight {
		p.timer.Stop()
	}

	u.seq++
	seq := u.seq
	u.surface.SetFade(el, FadeOut)
	timer := u.sched.After(FadeDelay, func() {
		if cur, ok := u.pending[el]; !ok || cur.seq != seq {
			return
		}
		delete(u.pending, el)
		u.displayed[el] = value
		swap(el, value)
		u.surface.SetFade(el, FadeIn)
	})
	u.pending[el] = pendingSwap{value: value, seq: seq, timer: timer}
}
