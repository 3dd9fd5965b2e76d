// Package domain holds the plain data types shared across daywatch.
// Domain types are pure — no infrastructure dependency.
package domain

import (
	"fmt"
	"time"
)

// WorkDayStartHour anchors the logical work day. Two timestamps belong to
// the same work day iff they fall on the same calendar day after shifting
// back by this many hours. Anchoring to 4am instead of midnight keeps a
// late-night session (someone still typing at 2am) inside the previous day.
const WorkDayStartHour = 4

// DayState is the persisted, day-scoped tracking record.
// WorkStart, GoalReached and LastTick use the zero time.Time as
// "not yet set" — check with IsZero before formatting or comparing.
type DayState struct {
	// ActiveSeconds accumulates one per active tick. Monotonically
	// non-decreasing within a logical work day; reset only at rollover.
	ActiveSeconds int `json:"active_seconds"`

	// WorkStart is latched on the first active tick at or after the
	// work-day boundary and never changes until the next rollover.
	WorkStart time.Time `json:"work_start"`

	// GoalReached is set on the tick where ActiveSeconds first meets the
	// configured daily goal. It doubles as the at-most-once guard for the
	// goal notification: non-zero means the notification went out.
	GoalReached time.Time `json:"goal_reached"`

	// LastTick is the timestamp of the most recent active tick; compared
	// against "now" to detect day rollover.
	LastTick time.Time `json:"last_tick"`
}

// SameWorkDay reports whether a and b fall in the same logical work day
// under the WorkDayStartHour boundary rule.
func SameWorkDay(a, b time.Time) bool {
	sa := a.Add(-WorkDayStartHour * time.Hour)
	sb := b.Add(-WorkDayStartHour * time.Hour)
	ya, ma, da := sa.Date()
	yb, mb, db := sb.Date()
	return ya == yb && ma == mb && da == db
}

// FormatActive renders an active-seconds counter as "7h 32m", dropping the
// hour part when it is zero.
func FormatActive(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// Snapshot is the read-only view of the engine handed to the API layer and
// any menu-bar front end. Recomputed on demand, never stored.
type Snapshot struct {
	ActiveSeconds   int       `json:"active_seconds"`
	FormattedActive string    `json:"formatted_active"`
	WorkStart       time.Time `json:"work_start"`
	GoalReached     time.Time `json:"goal_reached"`
	EstimatedFinish time.Time `json:"estimated_finish"`
	IdleSeconds     int       `json:"idle_seconds"`
	Progress        float64   `json:"progress"`
	Active          bool      `json:"active"`
	Paused          bool      `json:"paused"`
	InMeeting       bool      `json:"in_meeting"`
	OverlayVisible  bool      `json:"overlay_visible"`
	FlashSymbol     string    `json:"flash_symbol,omitempty"`
}
