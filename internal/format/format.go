// Package format renders times and sizes for ffmpeg arguments, logs, and reports.
package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Seconds formats a timestamp or duration for ffmpeg's -ss and -t options.
// Precision is fixed at milliseconds; changing it changes cut positions.
func Seconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// Clock formats seconds as HH:MM:SS.mmm, or MM:SS.mmm under an hour.
// Negative values are clamped to zero.
func Clock(s float64) string {
	if s < 0 || math.IsNaN(s) {
		s = 0
	}
	ms := int64(math.Round(s * 1000))
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	sec := (ms / 1000) % 60
	frac := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, sec, frac)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, sec, frac)
}

// Size formats a byte count with IEC units, e.g. "100 MiB".
func Size(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// Ratio formats part/whole as a percentage with one decimal, e.g. "42.5%".
// A zero or negative whole yields "n/a".
func Ratio(part, whole float64) string {
	if whole <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", part/whole*100)
}
