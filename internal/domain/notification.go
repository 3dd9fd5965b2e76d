package domain

import "time"

// TriggerKind identifies a reminder or alert produced by the engine.
type TriggerKind string

const (
	TriggerGoal           TriggerKind = "goal"
	TriggerEyeBreak       TriggerKind = "eye_break"
	TriggerStretch        TriggerKind = "stretch"
	TriggerWindDown       TriggerKind = "wind_down"
	TriggerSunset         TriggerKind = "sunset"
	TriggerStandUp        TriggerKind = "stand_up"
	TriggerMeetingStretch TriggerKind = "meeting_stretch"
)

// Urgency maps to the delivery priority of the platform notifier.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Notification is one delivered (or pending) user notification, logged to
// the local store so delivery history survives restarts.
type Notification struct {
	ID        int64       `json:"id"`
	Kind      TriggerKind `json:"kind"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	Urgency   Urgency     `json:"urgency"`
	CreatedAt time.Time   `json:"created_at"`
	Shown     bool        `json:"shown"`
}
