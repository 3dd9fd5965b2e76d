// Package metrics provides Prometheus metrics for daywatch — gauges for the
// live tracking state and counters for reminders and persistence health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Tracking state ─────────────────────────────────────────────────────────

// ActiveSeconds mirrors the day's accumulated active-seconds counter.
var ActiveSeconds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "daywatch",
	Name:      "active_seconds",
	Help:      "Accumulated active seconds for the current work day.",
})

// IdleSeconds is the most recent input-idle duration sample.
var IdleSeconds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "daywatch",
	Name:      "idle_seconds",
	Help:      "Seconds since the last user input, as of the latest tick.",
})

// GoalReached is 1 once the daily goal has been hit, 0 otherwise.
var GoalReached = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "daywatch",
	Name:      "goal_reached",
	Help:      "Whether the daily goal has been reached (1) or not (0).",
})

// Paused is 1 while tracking is paused by the user.
var Paused = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "daywatch",
	Name:      "paused",
	Help:      "Whether tracking is paused (1) or running (0).",
})

// MeetingActive is 1 while the meeting helper process is verified present.
var MeetingActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "daywatch",
	Name:      "meeting_active",
	Help:      "Whether a meeting is currently detected (1) or not (0).",
})

// ─── Engine ─────────────────────────────────────────────────────────────────

// Ticks counts engine ticks by outcome.
var Ticks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "daywatch",
	Name:      "ticks_total",
	Help:      "Engine ticks by outcome.",
}, []string{"outcome"}) // active, inactive, paused

// RemindersFired counts reminder triggers by kind.
var RemindersFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "daywatch",
	Name:      "reminders_fired_total",
	Help:      "Reminder triggers fired, by kind.",
}, []string{"kind"})

// PersistFailures counts failed state writes (retried on the next tick).
var PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "daywatch",
	Name:      "persist_failures_total",
	Help:      "Failed day-state writes.",
})

// DayRollovers counts logical day boundaries crossed.
var DayRollovers = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "daywatch",
	Name:      "day_rollovers_total",
	Help:      "Day-state resets at the logical work-day boundary.",
})
