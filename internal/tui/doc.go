// Package tui draws retry progress and schedules for humans.
//
// Animated output is used only on an interactive stderr; in CI, with NO_COLOR
// or RETRIER_NON_INTERACTIVE=1, callers fall back to plain log lines.
package tui
