package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────

var (
	// Settings validation — rejected at the API boundary, never inside
	// the tick loop.
	ErrIdleThresholdRange = errors.New("idle threshold out of range (10–3600 seconds)")
	ErrDailyGoalRange     = errors.New("daily goal out of range (1 minute – 24 hours)")
	ErrIntervalRange      = errors.New("reminder interval out of range (0–480 minutes)")
	ErrLocationRange      = errors.New("location out of range (lat ±90, lon ±180)")

	// Signals
	ErrSignalUnavailable = errors.New("input signal unavailable")
)
