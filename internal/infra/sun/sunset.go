// Package sun computes sunset times for the sunset alert reminder.
package sun

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// SunsetAt returns today's sunset for the given coordinates, in the
// location of now. The second return is false above the polar circles
// when the sun never sets (or never rises) that day.
func SunsetAt(lat, lon float64, now time.Time) (time.Time, bool) {
	_, set := sunrise.SunriseSunset(lat, lon, now.Year(), now.Month(), now.Day())
	if set.IsZero() {
		return time.Time{}, false
	}
	return set.In(now.Location()), true
}

// MinutesUntilSunset returns whole minutes from now until sunset, and
// false when sunset is unavailable or already past.
func MinutesUntilSunset(lat, lon float64, now time.Time) (int, bool) {
	set, ok := SunsetAt(lat, lon, now)
	if !ok {
		return 0, false
	}
	d := set.Sub(now)
	if d <= 0 {
		return 0, false
	}
	return int(d / time.Minute), true
}
