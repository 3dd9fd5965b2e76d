// Package tracker implements the daywatch activity engine: a 1 Hz
// tick-driven state machine that samples idle/power signals, maintains
// the persisted day-scoped counters, and fans out reminder triggers
// exactly once per qualifying event.
package tracker

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/daywatch-app/daywatch/internal/domain"
	"github.com/daywatch-app/daywatch/internal/infra/metrics"
	"github.com/daywatch-app/daywatch/internal/infra/sqlite"
)

const (
	// persistEvery batches day-state writes: one write per 30 accumulated
	// active seconds bounds data loss on an unclean shutdown to 30s.
	persistEvery = 30

	// overlayCooldown is how long a dismissed goal overlay stays away
	// before reappearing (unless muted for the day).
	overlayCooldown = 15 * time.Minute
)

// Tracker KV keys. Timestamps are unix seconds, "0" meaning unset.
const (
	keyActiveSeconds = "day_active_seconds"
	keyWorkStart     = "day_work_start"
	keyGoalReached   = "day_goal_reached"
	keyLastTick      = "day_last_tick"
)

// InputSignal is the idle/power-assertion source sampled every tick.
type InputSignal interface {
	IdleDuration() (time.Duration, error)
	HasDisplaySleepAssertion() bool
}

// MeetingSignal exposes the verified meeting state.
type MeetingSignal interface {
	InMeeting() bool
}

// NotificationSink delivers user notifications.
type NotificationSink interface {
	Deliver(title, body string, urgency domain.Urgency) error
}

// FlashSink renders short-lived or persistent menu-bar symbols.
type FlashSink interface {
	Flash(symbol string)
	ShowPersistent(symbol string)
	Hide()
}

// OverlaySink renders the full-screen goal celebration.
type OverlaySink interface {
	Show()
	Hide()
}

// SunsetFunc returns whole minutes until sunset at the given location,
// false when there is none (already past, or polar day/night).
type SunsetFunc func(lat, lon float64, now time.Time) (int, bool)

// Engine is the activity state machine. One instance per process,
// constructed at startup and injected into its consumers.
type Engine struct {
	mu       sync.Mutex
	db       *sqlite.DB
	settings *SettingsStore
	input    InputSignal
	meeting  MeetingSignal
	notifier NotificationSink
	flash    FlashSink
	overlay  OverlaySink
	sunset   SunsetFunc

	day    domain.DayState
	paused bool
	active bool

	rem reminderState

	overlayDismissedAt time.Time
	overlayMuted       bool

	// unsavedTicks counts active seconds since the last successful
	// persist; it is not reset on a failed write so the write retries
	// on the next tick.
	unsavedTicks int
}

// NewEngine wires the engine and loads the persisted day state. Rollover
// of stale state happens on the first tick.
func NewEngine(db *sqlite.DB, settings *SettingsStore, input InputSignal, meeting MeetingSignal,
	notifier NotificationSink, flash FlashSink, overlay OverlaySink, sunset SunsetFunc) *Engine {

	e := &Engine{
		db:       db,
		settings: settings,
		input:    input,
		meeting:  meeting,
		notifier: notifier,
		flash:    flash,
		overlay:  overlay,
		sunset:   sunset,
		rem:      newReminderState(),
	}
	e.loadDay()
	return e
}

// Run ticks the engine once per second until the context is cancelled.
// Call in a goroutine. The first tick runs immediately so stale state
// from a previous day rolls over before anything reads a snapshot.
func (e *Engine) Run(ctx context.Context) {
	e.Tick(time.Now())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(time.Now())
		}
	}
}

// Tick advances the state machine by one second anchored at now.
// Order is fixed: rollover check, signal sample, pause/inactive
// short-circuit, work-start latch, counter increment, reminder
// evaluation, goal check, batched persist.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := e.settings.Current()

	if !e.day.LastTick.IsZero() && !domain.SameWorkDay(e.day.LastTick, now) {
		e.resetDayLocked()
	}

	e.active = e.sampleActive(set)

	if e.paused {
		metrics.Ticks.WithLabelValues("paused").Inc()
		return
	}
	if !e.active {
		metrics.Ticks.WithLabelValues("inactive").Inc()
		return
	}
	metrics.Ticks.WithLabelValues("active").Inc()

	// Work-start latch: rare write, persisted immediately — losing it to
	// a crash would corrupt the start-time display for the rest of the day.
	if e.day.WorkStart.IsZero() && now.Hour() >= domain.WorkDayStartHour {
		e.day.WorkStart = now
		e.day.LastTick = now
		if err := e.persistDayLocked(); err == nil {
			e.unsavedTicks = 0
		}
	}

	e.day.ActiveSeconds++
	e.day.LastTick = now
	metrics.ActiveSeconds.Set(float64(e.day.ActiveSeconds))

	e.evalReminders(now, set)
	e.checkGoal(now, set)
	e.maybeReshowOverlay(now, set)

	e.unsavedTicks++
	if e.unsavedTicks >= persistEvery {
		if err := e.persistDayLocked(); err == nil {
			e.unsavedTicks = 0
		}
	}
}

// sampleActive reads the input signals. A failed idle query counts the
// tick as inactive (undercount, never overcount); a power assertion
// counts as activity even with zero physical input.
func (e *Engine) sampleActive(set Settings) bool {
	userActive := false
	idle, err := e.input.IdleDuration()
	if err == nil {
		metrics.IdleSeconds.Set(idle.Seconds())
		userActive = idle < time.Duration(set.IdleThresholdSeconds)*time.Second
	}
	return userActive || e.input.HasDisplaySleepAssertion()
}

// checkGoal handles the goal-reached transition. The persisted
// GoalReached timestamp is the at-most-once guard, so a restart between
// crossing and notification neither suppresses it forever nor re-fires it
// on every rollover. Raising the goal past current progress re-arms it.
func (e *Engine) checkGoal(now time.Time, set Settings) {
	if !e.day.GoalReached.IsZero() && e.day.ActiveSeconds < set.DailyGoalSeconds {
		e.day.GoalReached = time.Time{}
		metrics.GoalReached.Set(0)
		if err := e.persistDayLocked(); err == nil {
			e.unsavedTicks = 0
		}
	}

	if !e.day.GoalReached.IsZero() || e.day.ActiveSeconds < set.DailyGoalSeconds {
		return
	}

	e.day.GoalReached = now
	metrics.GoalReached.Set(1)
	if err := e.persistDayLocked(); err == nil {
		e.unsavedTicks = 0
	}

	e.deliver(domain.Notification{
		Kind:      domain.TriggerGoal,
		Title:     "Daily goal reached",
		Body:      domain.FormatActive(e.day.ActiveSeconds) + " of active work today. Time to wrap up.",
		Urgency:   domain.UrgencyNormal,
		CreatedAt: now,
	})

	if set.OverlayOnGoal && !e.overlayMuted {
		e.overlay.Show()
	}
}

// maybeReshowOverlay brings a dismissed goal overlay back after the
// cooldown, unless it was muted for the day.
func (e *Engine) maybeReshowOverlay(now time.Time, set Settings) {
	if e.day.GoalReached.IsZero() || !set.OverlayOnGoal || e.overlayMuted {
		return
	}
	if e.overlayDismissedAt.IsZero() {
		return
	}
	if now.Sub(e.overlayDismissedAt) >= overlayCooldown {
		e.overlayDismissedAt = time.Time{}
		e.overlay.Show()
	}
}

// deliver logs the notification, hands it to the platform notifier, and
// marks the log entry shown on success. No failure is fatal to the tick.
func (e *Engine) deliver(n domain.Notification) {
	id, err := e.db.InsertNotification(n)
	if err != nil {
		log.Printf("[tracker] log notification: %v", err)
	}
	if err := e.notifier.Deliver(n.Title, n.Body, n.Urgency); err != nil {
		log.Printf("[tracker] deliver notification: %v", err)
	} else if id != 0 {
		if err := e.db.MarkNotificationShown(id); err != nil {
			log.Printf("[tracker] mark notification shown: %v", err)
		}
	}
	metrics.RemindersFired.WithLabelValues(string(n.Kind)).Inc()
}

// resetDayLocked starts a fresh logical work day: counters, latches and
// all session-scoped "already shown" flags clear together.
func (e *Engine) resetDayLocked() {
	e.day = domain.DayState{}
	e.rem = newReminderState()
	e.overlayDismissedAt = time.Time{}
	e.overlayMuted = false
	e.overlay.Hide()
	e.unsavedTicks = 0

	metrics.ActiveSeconds.Set(0)
	metrics.GoalReached.Set(0)
	metrics.DayRollovers.Inc()

	if err := e.persistDayLocked(); err != nil {
		log.Printf("[tracker] persist rollover: %v", err)
	}
}

// ─── Pause ──────────────────────────────────────────────────────────────────

// SetPaused toggles the user pause override. Paused ticks neither count
// nor evaluate reminders.
func (e *Engine) SetPaused(p bool) {
	e.mu.Lock()
	e.paused = p
	e.mu.Unlock()
	if p {
		metrics.Paused.Set(1)
	} else {
		metrics.Paused.Set(0)
	}
}

// Paused reports the pause override.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// ─── Meeting edges ──────────────────────────────────────────────────────────

// standUpWindow spaces stand-up nudges: back-to-back meetings inside the
// window share a single reminder.
const standUpWindow = time.Hour

// HandleMeetingJoin runs on a verified meeting-join edge: show the
// do-not-sleep indicator and, if enabled, the stand-up reminder.
func (e *Engine) HandleMeetingJoin(now time.Time) {
	e.mu.Lock()
	set := e.settings.Current()
	e.mu.Unlock()

	metrics.MeetingActive.Set(1)
	e.flash.ShowPersistent("video")

	if !set.StandUpForMeeting {
		return
	}
	if n, err := e.db.CountNotificationsSince(domain.TriggerStandUp, now.Add(-standUpWindow)); err == nil && n > 0 {
		return
	}
	e.mu.Lock()
	e.deliver(domain.Notification{
		Kind:      domain.TriggerStandUp,
		Title:     "Meeting started",
		Body:      "Stand up for this one — your legs will thank you.",
		Urgency:   domain.UrgencyLow,
		CreatedAt: now,
	})
	e.mu.Unlock()
}

// HandleMeetingLeave runs on a verified meeting-leave edge.
func (e *Engine) HandleMeetingLeave(now time.Time) {
	e.mu.Lock()
	set := e.settings.Current()
	e.mu.Unlock()

	metrics.MeetingActive.Set(0)
	e.flash.Hide()

	if set.StretchAfterMeeting {
		e.flash.Flash("figure.cooldown")
		metrics.RemindersFired.WithLabelValues(string(domain.TriggerMeetingStretch)).Inc()
	}
}

// ─── Overlay controls (from the UI) ─────────────────────────────────────────

// DismissOverlay hides the goal overlay; it reappears after the cooldown.
func (e *Engine) DismissOverlay(now time.Time) {
	e.mu.Lock()
	e.overlayDismissedAt = now
	e.mu.Unlock()
	e.overlay.Hide()
}

// MuteOverlay hides the goal overlay for the rest of the day.
func (e *Engine) MuteOverlay() {
	e.mu.Lock()
	e.overlayMuted = true
	e.overlayDismissedAt = time.Time{}
	e.mu.Unlock()
	e.overlay.Hide()
}

// ─── Derived display values ─────────────────────────────────────────────────

// Snapshot returns the read-only view of the engine for UI rendering.
func (e *Engine) Snapshot(now time.Time) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := e.settings.Current()

	s := domain.Snapshot{
		ActiveSeconds:   e.day.ActiveSeconds,
		FormattedActive: domain.FormatActive(e.day.ActiveSeconds),
		WorkStart:       e.day.WorkStart,
		GoalReached:     e.day.GoalReached,
		Active:          e.active,
		Paused:          e.paused,
		InMeeting:       e.meeting.InMeeting(),
	}
	s.EstimatedFinish = e.estimatedFinishLocked(now, set)
	s.IdleSeconds = e.idleTodayLocked(now, set)
	if set.DailyGoalSeconds > 0 {
		s.Progress = float64(e.day.ActiveSeconds) / float64(set.DailyGoalSeconds)
		if s.Progress > 1 {
			s.Progress = 1
		}
	}
	return s
}

// estimatedFinishLocked freezes at GoalReached once set; before that it is
// now plus the remaining goal time.
func (e *Engine) estimatedFinishLocked(now time.Time, set Settings) time.Time {
	if !e.day.GoalReached.IsZero() {
		return e.day.GoalReached
	}
	remaining := set.DailyGoalSeconds - e.day.ActiveSeconds
	if remaining < 0 {
		remaining = 0
	}
	return now.Add(time.Duration(remaining) * time.Second)
}

// idleTodayLocked is the cumulative non-active time inside the elapsed
// work window, frozen once the goal is reached.
func (e *Engine) idleTodayLocked(now time.Time, set Settings) int {
	if e.day.WorkStart.IsZero() {
		return 0
	}
	var idle int
	if !e.day.GoalReached.IsZero() {
		idle = int(e.day.GoalReached.Sub(e.day.WorkStart)/time.Second) - set.DailyGoalSeconds
	} else {
		idle = int(now.Sub(e.day.WorkStart)/time.Second) - e.day.ActiveSeconds
	}
	if idle < 0 {
		idle = 0
	}
	return idle
}

// ─── Persistence ────────────────────────────────────────────────────────────

// Flush persists the day state synchronously. Called on shutdown.
func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.persistDayLocked()
	if err == nil {
		e.unsavedTicks = 0
	}
	return err
}

// loadDay restores the persisted day state. Missing or malformed keys
// read as "no prior state" — first run is not an error.
func (e *Engine) loadDay() {
	var day domain.DayState

	if v, err := e.db.GetTracker(keyActiveSeconds); err == nil && v != "" {
		day.ActiveSeconds, _ = strconv.Atoi(v)
	}
	day.WorkStart = loadUnix(e.db, keyWorkStart)
	day.GoalReached = loadUnix(e.db, keyGoalReached)
	day.LastTick = loadUnix(e.db, keyLastTick)

	e.day = day
	metrics.ActiveSeconds.Set(float64(day.ActiveSeconds))
	if !day.GoalReached.IsZero() {
		metrics.GoalReached.Set(1)
	}
}

// persistDayLocked writes every day-state key. Failures are counted and
// logged; the caller decides whether to reset the batching counter.
func (e *Engine) persistDayLocked() error {
	pairs := map[string]string{
		keyActiveSeconds: strconv.Itoa(e.day.ActiveSeconds),
		keyWorkStart:     encodeUnix(e.day.WorkStart),
		keyGoalReached:   encodeUnix(e.day.GoalReached),
		keyLastTick:      encodeUnix(e.day.LastTick),
	}
	for k, v := range pairs {
		if err := e.db.SetTracker(k, v); err != nil {
			metrics.PersistFailures.Inc()
			log.Printf("[tracker] persist %s: %v", k, err)
			return err
		}
	}
	return nil
}

// encodeUnix maps the zero time to "0" so "not yet set" survives the
// string round trip.
func encodeUnix(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func loadUnix(db *sqlite.DB, key string) time.Time {
	v, err := db.GetTracker(key)
	if err != nil || v == "" || v == "0" {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}
