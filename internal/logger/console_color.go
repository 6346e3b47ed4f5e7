package logger

import (
	"github.com/fatih/color"
)

// colorScheme defines consistent styles for run output.
// Green: success glyphs
// Red: failure glyphs and error details
// Yellow: verbose command text
// Cyan: informational labels
// Faint: tree connectors and timings
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	muted   *color.Color
	title   *color.Color
	header  *color.Color
	command *color.Color
}

// newColorScheme creates the standard color scheme for run output.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan, color.Bold),
		muted:   color.New(color.Faint),
		title:   color.New(color.Bold),
		header:  color.New(color.Bold, color.Faint),
		command: color.New(color.FgYellow, color.Faint),
	}
}

// paint applies c to s when enabled; otherwise s is returned untouched.
// fatih/color additionally drops the codes when NO_COLOR is set.
func paint(enabled bool, c *color.Color, s string) string {
	if !enabled || c == nil {
		return s
	}
	return c.Sprint(s)
}
