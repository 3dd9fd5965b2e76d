// Package signal queries the OS for the activity inputs that drive the
// tracker: input idle time, display-sleep power assertions, and the
// presence of a meeting helper process.
package signal

import "time"

// Input samples keyboard/mouse idle time and power assertions.
// Uses platform-specific APIs (macOS ioreg HIDIdleTime, Windows
// GetLastInputInfo, Linux xprintidle) wrapped behind osIdleDuration().
type Input struct{}

// NewInput creates an input signal source.
func NewInput() *Input {
	return &Input{}
}

// IdleDuration returns how long the user has been idle. A non-nil error
// means the platform query failed; callers treat that as "not active"
// for the current tick rather than guessing.
func (s *Input) IdleDuration() (time.Duration, error) {
	return osIdleDuration()
}

// HasDisplaySleepAssertion reports whether some application is holding the
// display awake — a video call counts as work even with zero input.
func (s *Input) HasDisplaySleepAssertion() bool {
	return osDisplaySleepAssertion()
}
