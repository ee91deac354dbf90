package spotify

import (
	"time"

	zspotify "github.com/zmb3/spotify"
)

// Snapshot is one polled sample of the user's playback.
type Snapshot struct {
	IsPlaying   bool
	TrackURI    string
	Artist      string
	Title       string
	AlbumArtURL string // empty when the album has no artwork
	Duration    time.Duration
	Progress    time.Duration
}

// newSnapshot flattens the API's currently playing object. The item must not be nil.
func newSnapshot(cp *zspotify.CurrentlyPlaying) *Snapshot {
	item := cp.Item
	s := &Snapshot{
		IsPlaying: cp.Playing,
		TrackURI:  string(item.URI),
		Title:     item.Name,
		Duration:  time.Duration(item.Duration) * time.Millisecond,
		Progress:  time.Duration(cp.Progress) * time.Millisecond,
	}
	if len(item.Artists) > 0 {
		s.Artist = item.Artists[0].Name
	}
	if len(item.Album.Images) > 0 {
		s.AlbumArtURL = item.Album.Images[0].URL
	}
	return s
}
