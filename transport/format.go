// ABOUTME: Formats positions and durations for display
// ABOUTME: Renders m:ss with floor truncation and a safe fallback for unknown values

package transport

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as m:ss. NaN, infinite and negative values
// render as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}

	total := int64(math.Floor(seconds))

	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Progress returns position/duration in [0,1], 0 when the duration is unknown
func Progress(position, duration float64) float64 {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return 0
	}

	if math.IsNaN(position) || position <= 0 {
		return 0
	}

	return math.Min(position/duration, 1)
}
