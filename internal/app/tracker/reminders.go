package tracker

import (
	"time"

	"github.com/daywatch-app/daywatch/internal/domain"
	"github.com/daywatch-app/daywatch/internal/infra/metrics"
)

// stretchMinute is the wall-clock minute of every hour when the hourly
// stretch flash fires.
const stretchMinute = 55

// reminderState is the session-scoped side of the reminder scheduler.
// Everything here resets at day rollover alongside the counters; none of
// it is persisted, so at worst a restart repeats a once-per-day reminder
// a single extra time.
type reminderState struct {
	eyeBreakSeconds int // active seconds since the last eye-break flash
	lastStretchHour int // hour-of-day of the last stretch flash, -1 = none
	windDownShown   bool
	sunsetShown     bool
}

func newReminderState() reminderState {
	return reminderState{lastStretchHour: -1}
}

// evalReminders runs every independent, idempotent-per-period reminder
// check against the just-incremented counter and the wall clock. Only
// called on active, unpaused ticks; caller holds the engine lock.
func (e *Engine) evalReminders(now time.Time, set Settings) {
	e.evalEyeBreak(set)
	e.evalStretch(now, set)
	e.evalWindDown(set)
	e.evalSunset(now, set)
}

// evalEyeBreak counts active seconds toward the next eye-break flash.
// Disabling the interval zeroes the counter so re-enabling starts fresh.
func (e *Engine) evalEyeBreak(set Settings) {
	if set.EyeBreakIntervalMinutes <= 0 {
		e.rem.eyeBreakSeconds = 0
		return
	}
	e.rem.eyeBreakSeconds++
	if e.rem.eyeBreakSeconds < set.EyeBreakIntervalMinutes*60 {
		return
	}
	e.rem.eyeBreakSeconds = 0
	e.flash.Flash("eye")
	metrics.RemindersFired.WithLabelValues(string(domain.TriggerEyeBreak)).Inc()
}

// evalStretch fires once per hour at minute 55, suppressed while a
// meeting is in progress so calls are not interrupted.
func (e *Engine) evalStretch(now time.Time, set Settings) {
	if !set.StretchBreakEnabled {
		return
	}
	if now.Minute() != stretchMinute || e.rem.lastStretchHour == now.Hour() {
		return
	}
	if e.meeting.InMeeting() {
		return
	}
	e.rem.lastStretchHour = now.Hour()
	e.flash.Flash("figure.walk")
	metrics.RemindersFired.WithLabelValues(string(domain.TriggerStretch)).Inc()
}

// evalWindDown fires at most once per day when the remaining goal time
// drops inside the configured window.
func (e *Engine) evalWindDown(set Settings) {
	if set.WindDownMinutes <= 0 || e.rem.windDownShown {
		return
	}
	remaining := set.DailyGoalSeconds - e.day.ActiveSeconds
	if remaining <= 0 || remaining > set.WindDownMinutes*60 {
		return
	}
	e.rem.windDownShown = true
	e.flash.Flash("hourglass")
	metrics.RemindersFired.WithLabelValues(string(domain.TriggerWindDown)).Inc()
}

// evalSunset fires at most once per day when sunset is close enough.
// Skipped entirely without a configured location.
func (e *Engine) evalSunset(now time.Time, set Settings) {
	if set.SunsetAlertMinutes <= 0 || e.rem.sunsetShown || !set.HasLocation || e.sunset == nil {
		return
	}
	mins, ok := e.sunset(set.Latitude, set.Longitude, now)
	if !ok || mins <= 0 || mins > set.SunsetAlertMinutes {
		return
	}
	e.rem.sunsetShown = true
	e.flash.Flash("sun.horizon")
	metrics.RemindersFired.WithLabelValues(string(domain.TriggerSunset)).Inc()
}
