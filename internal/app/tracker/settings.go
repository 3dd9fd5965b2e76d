package tracker

import (
	"sync"

	"github.com/daywatch-app/daywatch/internal/domain"
)

// Settings are the user-tunable knobs the engine reads on every tick.
// The UI mutates them through the settings store; no other propagation
// mechanism exists or is needed at 1 Hz.
type Settings struct {
	// IdleThresholdSeconds is the largest input-idle gap still counted
	// as active.
	IdleThresholdSeconds int `json:"idle_threshold_seconds"`

	// DailyGoalSeconds is the active-time target for one work day.
	DailyGoalSeconds int `json:"daily_goal_seconds"`

	// EyeBreakIntervalMinutes spaces eye-break flashes; 0 disables.
	EyeBreakIntervalMinutes int `json:"eye_break_interval_minutes"`

	// StretchBreakEnabled fires an hourly stretch flash at minute 55.
	StretchBreakEnabled bool `json:"stretch_break_enabled"`

	// WindDownMinutes flashes a wrap-up hint when that many minutes of
	// goal time remain; 0 disables.
	WindDownMinutes int `json:"wind_down_minutes"`

	// SunsetAlertMinutes warns that many minutes before sunset; 0
	// disables. Requires a configured location.
	SunsetAlertMinutes int `json:"sunset_alert_minutes"`

	// OverlayOnGoal shows the full-screen celebration when the goal is
	// reached.
	OverlayOnGoal bool `json:"overlay_on_goal"`

	// StandUpForMeeting notifies on a verified meeting join.
	StandUpForMeeting bool `json:"stand_up_for_meeting"`

	// StretchAfterMeeting flashes a stretch hint on a verified leave.
	StretchAfterMeeting bool `json:"stretch_after_meeting"`

	// Latitude/Longitude locate the user for sunset math. HasLocation
	// false means the sunset alert is skipped entirely.
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	HasLocation bool    `json:"has_location"`
}

// DefaultSettings returns the out-of-the-box configuration: 2-minute idle
// threshold, 8-hour goal, 20-minute eye breaks.
func DefaultSettings() Settings {
	return Settings{
		IdleThresholdSeconds:    120,
		DailyGoalSeconds:        8 * 3600,
		EyeBreakIntervalMinutes: 20,
		StretchBreakEnabled:     true,
		WindDownMinutes:         30,
		SunsetAlertMinutes:      0,
		OverlayOnGoal:           true,
		StandUpForMeeting:       true,
		StretchAfterMeeting:     true,
	}
}

// Validate rejects out-of-range values at the boundary so the engine
// never sees them.
func (s Settings) Validate() error {
	if s.IdleThresholdSeconds < 10 || s.IdleThresholdSeconds > 3600 {
		return domain.ErrIdleThresholdRange
	}
	if s.DailyGoalSeconds < 60 || s.DailyGoalSeconds > 24*3600 {
		return domain.ErrDailyGoalRange
	}
	if s.EyeBreakIntervalMinutes < 0 || s.EyeBreakIntervalMinutes > 480 {
		return domain.ErrIntervalRange
	}
	if s.WindDownMinutes < 0 || s.WindDownMinutes > 480 {
		return domain.ErrIntervalRange
	}
	if s.SunsetAlertMinutes < 0 || s.SunsetAlertMinutes > 480 {
		return domain.ErrIntervalRange
	}
	if s.HasLocation {
		if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
			return domain.ErrLocationRange
		}
	}
	return nil
}

// SettingsStore is the mutable home of the current settings. Reads happen
// once per tick; writes come from the HTTP API.
type SettingsStore struct {
	mu sync.RWMutex
	s  Settings
}

// NewSettingsStore creates a store with the given initial settings.
func NewSettingsStore(s Settings) *SettingsStore {
	return &SettingsStore{s: s}
}

// Current returns the settings as of now.
func (st *SettingsStore) Current() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Update validates and replaces the settings.
func (st *SettingsStore) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	st.mu.Lock()
	st.s = s
	st.mu.Unlock()
	return nil
}
