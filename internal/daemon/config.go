// Package daemon manages the daywatch daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/daywatch-app/daywatch/internal/app/tracker"
)

// Config holds all daemon configuration.
type Config struct {
	Tracking  TrackingConfig  `toml:"tracking"`
	API       APIConfig       `toml:"api"`
	Meeting   MeetingConfig   `toml:"meeting"`
	Presence  PresenceConfig  `toml:"presence"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// TrackingConfig holds the user-facing tracking knobs. It mirrors
// tracker.Settings so the config file is the settings' home on disk.
type TrackingConfig struct {
	IdleThresholdSeconds    int     `toml:"idle_threshold_seconds"`
	DailyGoalSeconds        int     `toml:"daily_goal_seconds"`
	EyeBreakIntervalMinutes int     `toml:"eye_break_interval_minutes"`
	StretchBreakEnabled     bool    `toml:"stretch_break_enabled"`
	WindDownMinutes         int     `toml:"wind_down_minutes"`
	SunsetAlertMinutes      int     `toml:"sunset_alert_minutes"`
	OverlayOnGoal           bool    `toml:"overlay_on_goal"`
	StandUpForMeeting       bool    `toml:"stand_up_for_meeting"`
	StretchAfterMeeting     bool    `toml:"stretch_after_meeting"`
	Latitude                float64 `toml:"latitude"`
	Longitude               float64 `toml:"longitude"`
	HasLocation             bool    `toml:"has_location"`
}

// APIConfig controls the local HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// MeetingConfig controls meeting-process detection.
type MeetingConfig struct {
	// ProcessName is the video-call process to watch, e.g. "zoom.us".
	// Empty disables meeting detection.
	ProcessName string `toml:"process_name"`

	// PollSeconds is the probe cadence.
	PollSeconds int `toml:"poll_seconds"`

	// VerifySeconds is how long a state change must hold before the
	// join/leave edge fires.
	VerifySeconds int `toml:"verify_seconds"`
}

// PresenceConfig controls the team-chat presence publisher.
type PresenceConfig struct {
	Enabled         bool   `toml:"enabled"`
	WebhookURL      string `toml:"webhook_url"`
	IntervalMinutes int    `toml:"interval_minutes"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the out-of-the-box configuration.
func DefaultConfig() Config {
	set := tracker.DefaultSettings()
	return Config{
		Tracking: trackingFromSettings(set),
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 21764,
		},
		Meeting: MeetingConfig{
			ProcessName:   "zoom.us",
			PollSeconds:   5,
			VerifySeconds: 10,
		},
		Presence: PresenceConfig{
			Enabled:         false,
			IntervalMinutes: 5,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
	}
}

// LoadConfig reads config from <home>/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(Home(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to <home>/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(Home(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Home returns the daywatch data directory, honoring DAYWATCH_HOME.
func Home() string {
	if env := os.Getenv("DAYWATCH_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".daywatch")
}

// Settings converts the tracking section into engine settings.
func (c Config) Settings() tracker.Settings {
	t := c.Tracking
	return tracker.Settings{
		IdleThresholdSeconds:    t.IdleThresholdSeconds,
		DailyGoalSeconds:        t.DailyGoalSeconds,
		EyeBreakIntervalMinutes: t.EyeBreakIntervalMinutes,
		StretchBreakEnabled:     t.StretchBreakEnabled,
		WindDownMinutes:         t.WindDownMinutes,
		SunsetAlertMinutes:      t.SunsetAlertMinutes,
		OverlayOnGoal:           t.OverlayOnGoal,
		StandUpForMeeting:       t.StandUpForMeeting,
		StretchAfterMeeting:     t.StretchAfterMeeting,
		Latitude:                t.Latitude,
		Longitude:               t.Longitude,
		HasLocation:             t.HasLocation,
	}
}

// WithSettings returns a copy of the config carrying the given settings,
// so a settings update over the API can be written back to disk.
func (c Config) WithSettings(s tracker.Settings) Config {
	c.Tracking = trackingFromSettings(s)
	return c
}

func trackingFromSettings(s tracker.Settings) TrackingConfig {
	return TrackingConfig{
		IdleThresholdSeconds:    s.IdleThresholdSeconds,
		DailyGoalSeconds:        s.DailyGoalSeconds,
		EyeBreakIntervalMinutes: s.EyeBreakIntervalMinutes,
		StretchBreakEnabled:     s.StretchBreakEnabled,
		WindDownMinutes:         s.WindDownMinutes,
		SunsetAlertMinutes:      s.SunsetAlertMinutes,
		OverlayOnGoal:           s.OverlayOnGoal,
		StandUpForMeeting:       s.StandUpForMeeting,
		StretchAfterMeeting:     s.StretchAfterMeeting,
		Latitude:                s.Latitude,
		Longitude:               s.Longitude,
		HasLocation:             s.HasLocation,
	}
}

// MeetingVerifyDelay returns the configured edge-verification window.
func (c Config) MeetingVerifyDelay() time.Duration {
	if c.Meeting.VerifySeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Meeting.VerifySeconds) * time.Second
}

// MeetingPollInterval returns the configured probe cadence.
func (c Config) MeetingPollInterval() time.Duration {
	if c.Meeting.PollSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Meeting.PollSeconds) * time.Second
}

// PresenceInterval returns the publisher cadence.
func (c Config) PresenceInterval() time.Duration {
	if c.Presence.IntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Presence.IntervalMinutes) * time.Minute
}
