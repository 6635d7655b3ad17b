package components

import (
	"fmt"
	"math"
	"strings"
)

const (
	filledChar = "■"
	emptyChar  = "□"
)

// Progress renders a progress bar like: ■■■■□□□□ 50%
type Progress struct {
	Percent float64
	Width   int // character width of the bar portion
}

// NewProgress creates a new Progress instance.
func NewProgress(percent float64, width int) Progress {
	return Progress{
		Percent: percent,
		Width:   width,
	}
}

// View returns the rendered progress bar string.
func (p Progress) View() string {
	if p.Width <= 0 {
		return ""
	}

	percent := math.Max(0, math.Min(100, p.Percent))
	filled := int(percent * float64(p.Width) / 100)

	bar := strings.Repeat(filledChar, filled) + strings.Repeat(emptyChar, p.Width-filled)

	// Half steps show one decimal: 62.5% rather than 62%
	if percent == math.Trunc(percent) {
		return fmt.Sprintf("%s %.0f%%", bar, percent)
	}
	return fmt.Sprintf("%s %.1f%%", bar, percent)
}
