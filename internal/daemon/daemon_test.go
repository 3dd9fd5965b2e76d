package daemon

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	t.Setenv("DAYWATCH_HOME", t.TempDir())

	d, err := NewWithConfig(DefaultConfig())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(func() { _ = d.DB.Close() })
	return d
}

func TestSettingsUpdateSurvivesRestart(t *testing.T) {
	d := newTestDaemon(t)

	set := d.Settings.Current()
	set.DailyGoalSeconds = 6 * 3600
	body, _ := json.Marshal(set)

	req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	d.Server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/settings = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if got := d.Settings.Current().DailyGoalSeconds; got != 6*3600 {
		t.Errorf("live goal = %d, want %d", got, 6*3600)
	}

	// The next start reads config.toml; the API change must be there.
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Tracking.DailyGoalSeconds; got != 6*3600 {
		t.Errorf("reloaded goal = %d, want %d (UI change must survive a restart)", got, 6*3600)
	}
}

func TestRejectedSettingsNotWritten(t *testing.T) {
	d := newTestDaemon(t)

	set := d.Settings.Current()
	set.IdleThresholdSeconds = 1 // out of range
	body, _ := json.Marshal(set)

	req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	d.Server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("POST /api/settings = %d, want 422", rec.Code)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Tracking.IdleThresholdSeconds; got != DefaultConfig().Tracking.IdleThresholdSeconds {
		t.Errorf("rejected settings leaked into config.toml (threshold = %d)", got)
	}
}
