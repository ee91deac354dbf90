package overlay

import (
	"fmt"
	"math"
)

// ConvertSeconds renders a number of seconds as M:SS. Minutes are not padded and
// fractional seconds are truncated.
func ConvertSeconds(seconds float64) string {
	m := math.Floor(seconds / 60)
	s := math.Floor(math.Mod(seconds, 60))
	return fmt.Sprintf("%d:%02d", int(m), int(s))
}

// ProgressPercent returns elapsed as a percentage of duration. Values are not
// clamped; a zero duration yields NaN or Inf.
func ProgressPercent(elapsed, duration float64) float64 {
	return elapsed / duration * 100
}
