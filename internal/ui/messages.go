// Package ui provides the Bubble Tea dice widget for factdice.
package ui

import (
	"github.com/hurttlocker/factdice/internal/roll"
	"github.com/hurttlocker/factdice/internal/theme"
)

// RollStart is sent when the roll animation has run and the roll itself
// should begin.
type RollStart struct {
	Topic string
}

// RollFinished is sent when the session returns a result.
type RollFinished struct {
	Result *roll.Result
	Err    error
}

// ThemeSaved is sent after the theme preference was written.
type ThemeSaved struct {
	Theme theme.Name
	Err   error
}
