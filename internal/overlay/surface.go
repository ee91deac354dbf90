// Package overlay turns playback snapshots into display updates.
package overlay

import (
	"fmt"
	"strings"
)

// Element names a display element of the overlay.
type Element string

const (
	AlbumArt       Element = "albumArt"
	AlbumArtBack   Element = "albumArtBack"
	Background     Element = "backgroundImage"
	BackgroundBack Element = "backgroundImageBack"
	ArtistLabel    Element = "artistLabel"
	SongLabel      Element = "songLabel"
	ProgressBar    Element = "progressBar"
	ProgressTime   Element = "progressTime"
	TimeRemaining  Element = "timeRemaining"
)

// Fade is the crossfade phase of an element.
type Fade string

const (
	FadeOut Fade = "text-fade"
	FadeIn  Fade = "text-show"
)

// Surface is the rendering target of the overlay.
type Surface interface {
	SetText(el Element, text string)
	SetImageSrc(el Element, src string)
	SetWidthPercent(el Element, percent float64)
	SetVisible(visible bool)
	SetFade(el Element, fade Fade)
}

// SlideFrom is the edge the overlay slides in from.
type SlideFrom string

const (
	SlideFromTop    SlideFrom = "top"
	SlideFromBottom SlideFrom = "bottom"
	SlideFromLeft   SlideFrom = "left"
	SlideFromRight  SlideFrom = "right"
)

// ParseSlideFrom parses a slide direction. An empty string yields the bottom default.
func ParseSlideFrom(s string) (SlideFrom, error) {
	switch d := SlideFrom(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return SlideFromBottom, nil
	case SlideFromTop, SlideFromBottom, SlideFromLeft, SlideFromRight:
		return d, nil
	default:
		return SlideFromBottom, fmt.Errorf("invalid slide direction %q", s)
	}
}

// Layout is the static presentation applied once when a display attaches.
type Layout struct {
	SlideFrom    SlideFrom `json:"slideFrom"`
	HideAlbumArt bool      `json:"hideAlbumArt"`
}
