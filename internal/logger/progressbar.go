package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ProgressBar renders how much of a total a value represents, e.g. a
// command's share of the run time in the report.
type ProgressBar struct {
	current     int64
	total       int64
	width       int
	enableColor bool
	mu          sync.RWMutex
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total int64, width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{
		total:       total,
		width:       width,
		enableColor: enableColor,
	}
}

// Update sets the current progress value
func (pb *ProgressBar) Update(current int64) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current = current
}

// percentage returns the progress percentage (0-100). Callers hold pb.mu.
func (pb *ProgressBar) percentage() int {
	if pb.total <= 0 {
		return 0
	}

	perc := int((pb.current * 100) / pb.total)
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}
	return perc
}

// Render generates the bar string, e.g. "███░░░░░░░  30%".
func (pb *ProgressBar) Render() string {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	perc := pb.percentage()
	filled := (perc * pb.width) / 100

	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.width-filled)
	if pb.enableColor {
		bar = color.New(color.FgCyan).Sprint(bar)
	}

	return fmt.Sprintf("%s %3d%%", bar, perc)
}
