package signal

import (
	"context"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// DefaultVerifyDelay is how long an observed meeting-state change must
// persist before the edge callback fires. Meeting clients spawn and kill
// their helper process around lobby screens, so a raw edge flaps.
const DefaultVerifyDelay = 10 * time.Second

// MeetingDetector watches for a meeting helper process and fires
// edge-triggered join/leave callbacks. An observed change is held for
// verifyDelay and re-validated before the callback runs.
type MeetingDetector struct {
	mu           sync.Mutex
	probe        func() bool
	verifyDelay  time.Duration
	inMeeting    bool
	pending      bool
	pendingState bool
	pendingSince time.Time
	onJoin       func()
	onLeave      func()
}

// NewMeetingDetector creates a detector that polls the OS process list
// for the named helper process (e.g. Zoom's "CptHost").
func NewMeetingDetector(processName string) *MeetingDetector {
	return &MeetingDetector{
		probe:       func() bool { return processRunning(processName) },
		verifyDelay: DefaultVerifyDelay,
	}
}

// NewMeetingDetectorWithProbe creates a detector with a custom probe and
// verification delay. Used by tests and by front ends that already know
// the meeting state.
func NewMeetingDetectorWithProbe(probe func() bool, verifyDelay time.Duration) *MeetingDetector {
	return &MeetingDetector{probe: probe, verifyDelay: verifyDelay}
}

// SetVerifyDelay overrides the edge-verification window.
func (d *MeetingDetector) SetVerifyDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if delay > 0 {
		d.verifyDelay = delay
	}
}

// OnJoin registers the meeting-join edge callback.
func (d *MeetingDetector) OnJoin(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onJoin = fn
}

// OnLeave registers the meeting-leave edge callback.
func (d *MeetingDetector) OnLeave(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onLeave = fn
}

// InMeeting returns the current verified meeting state.
func (d *MeetingDetector) InMeeting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inMeeting
}

// Poll samples the probe once and advances the debounce state.
// An edge only commits after the observed state has held steady for
// verifyDelay; a flap back to the old state cancels the pending edge.
func (d *MeetingDetector) Poll(now time.Time) {
	observed := d.probe()

	var fire func()

	d.mu.Lock()
	switch {
	case observed == d.inMeeting:
		// Steady state, or a flap that undid a pending change.
		d.pending = false

	case !d.pending || d.pendingState != observed:
		d.pending = true
		d.pendingState = observed
		d.pendingSince = now

	case now.Sub(d.pendingSince) >= d.verifyDelay:
		d.inMeeting = observed
		d.pending = false
		if observed {
			fire = d.onJoin
		} else {
			fire = d.onLeave
		}
	}
	d.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// Run polls at the given interval until the context is cancelled.
// Call in a goroutine.
func (d *MeetingDetector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Poll(time.Now())
		}
	}
}

// processRunning reports whether a process with the given name exists.
func processRunning(name string) bool {
	if name == "" {
		return false
	}
	switch runtime.GOOS {
	case "windows":
		out, err := exec.Command("tasklist", "/FI", "IMAGENAME eq "+name+".exe", "/NH").Output()
		if err != nil {
			return false
		}
		return len(out) > 0 && string(out[0]) != "I" // "INFO: No tasks..."
	default:
		return exec.Command("pgrep", "-x", name).Run() == nil
	}
}
