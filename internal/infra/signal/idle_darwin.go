//go:build darwin

package signal

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/daywatch-app/daywatch/internal/domain"
)

// osIdleDuration returns how long the user has been idle on macOS.
// Uses ioreg to query HIDIdleTime (in nanoseconds).
func osIdleDuration() (time.Duration, error) {
	out, err := exec.Command("ioreg", "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	// Parse "HIDIdleTime" = <nanoseconds>
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "HIDIdleTime") {
			continue
		}
		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			continue
		}
		ns, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			continue
		}
		return time.Duration(ns), nil
	}
	return 0, domain.ErrSignalUnavailable
}

// osDisplaySleepAssertion reports whether any process holds a
// PreventUserIdleDisplaySleep assertion (pmset -g assertions).
func osDisplaySleepAssertion() bool {
	out, err := exec.Command("pmset", "-g", "assertions").Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "PreventUserIdleDisplaySleep") {
			continue
		}
		// Summary line looks like "   PreventUserIdleDisplaySleep    1"
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "PreventUserIdleDisplaySleep" {
			return fields[1] != "0"
		}
	}
	return false
}
