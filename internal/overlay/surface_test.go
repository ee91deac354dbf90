package overlay

import (
	"fmt"
	"testing"
)

// recorder is a Surface that keeps the last value per element and a call log.
type recorder struct {
	text    map[Element]string
	images  map[Element]string
	widths  map[Element]float64
	fades   map[Element]Fade
	visible bool
	shows   int
	hides   int
	calls   []string
}

func newRecorder() *recorder {
	return &recorder{
		text:   make(map[Element]string),
		images: make(map[Element]string),
		widths: make(map[Element]float64),
		fades:  make(map[Element]Fade),
	}
}

func (r *recorder) SetText(el Element, text string) {
	r.text[el] = text
	r.calls = append(r.calls, fmt.Sprintf("text %s=%s", el, text))
}

func (r *recorder) SetImageSrc(el Element, src string) {
	r.images[el] = src
	r.calls = append(r.calls, fmt.Sprintf("image %s=%s", el, src))
}

func (r *recorder) SetWidthPercent(el Element, percent float64) {
	r.widths[el] = percent
	r.calls = append(r.calls, fmt.Sprintf("width %s=%g", el, percent))
}

func (r *recorder) SetVisible(visible bool) {
	r.visible = visible
	if visible {
		r.shows++
	} else {
		r.hides++
	}
	r.calls = append(r.calls, fmt.Sprintf("visible %t", visible))
}

func (r *recorder) SetFade(el Element, fade Fade) {
	r.fades[el] = fade
	r.calls = append(r.calls, fmt.Sprintf("fade %s=%s", el, fade))
}

func TestParseSlideFrom(t *testing.T) {
	tests := []struct {
		in      string
		want    SlideFrom
		wantErr bool
	}{
		{in: "", want: SlideFromBottom},
		{in: "top", want: SlideFromTop},
		{in: " Left ", want: SlideFromLeft},
		{in: "RIGHT", want: SlideFromRight},
		{in: "bottom", want: SlideFromBottom},
		{in: "diagonal", want: SlideFromBottom, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSlideFrom(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
