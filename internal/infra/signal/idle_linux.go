//go:build linux

package signal

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// osIdleDuration returns how long the user has been idle on Linux.
// Uses xprintidle (milliseconds) when available. Wayland compositors
// without an idle protocol report an error and the tick counts as
// inactive — undercounting beats guessing.
func osIdleDuration() (time.Duration, error) {
	out, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse xprintidle output: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// osDisplaySleepAssertion reports whether an idle inhibitor is held
// (video call, media playback) via systemd-inhibit.
func osDisplaySleepAssertion() bool {
	out, err := exec.Command("systemd-inhibit", "--list", "--no-legend").Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "idle") {
			return true
		}
	}
	return false
}
