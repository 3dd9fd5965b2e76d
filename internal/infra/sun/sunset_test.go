package sun_test

import (
	"testing"
	"time"

	"github.com/daywatch-app/daywatch/internal/infra/sun"
)

func TestSunsetAt_Equator(t *testing.T) {
	// On the equator at the prime meridian, sunset sits near 18:00 UTC
	// all year (within ~20 minutes either side).
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	set, ok := sun.SunsetAt(0, 0, now)
	if !ok {
		t.Fatal("expected a sunset on the equator")
	}
	earliest := time.Date(2025, 3, 20, 17, 30, 0, 0, time.UTC)
	latest := time.Date(2025, 3, 20, 18, 30, 0, 0, time.UTC)
	if set.Before(earliest) || set.After(latest) {
		t.Errorf("sunset %v outside expected window [%v, %v]", set, earliest, latest)
	}
}

func TestMinutesUntilSunset_BeforeAndAfter(t *testing.T) {
	morning := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	mins, ok := sun.MinutesUntilSunset(0, 0, morning)
	if !ok {
		t.Fatal("expected minutes before sunset in the morning")
	}
	if mins < 8*60 || mins > 10*60 {
		t.Errorf("minutes until sunset = %d, expected roughly 9 hours", mins)
	}

	night := time.Date(2025, 3, 20, 23, 0, 0, 0, time.UTC)
	if _, ok := sun.MinutesUntilSunset(0, 0, night); ok {
		t.Error("expected no remaining minutes after sunset")
	}
}

func TestSunsetAt_PolarNight(t *testing.T) {
	// Svalbard in midwinter: the sun never rises.
	now := time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC)
	if _, ok := sun.SunsetAt(78.22, 15.65, now); ok {
		t.Error("expected no sunset during polar night")
	}
}
