// Package notify renders engine triggers for the user: platform desktop
// notifications, plus observable state for the menu-bar flash symbol and
// the full-screen goal overlay (drawn by the front end, owned here).
package notify

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"

	"github.com/daywatch-app/daywatch/internal/domain"
)

// Desktop delivers notifications through the platform notifier.
// Delivery is best-effort: failures are logged and swallowed so the
// tick loop never stalls on a broken notifier.
type Desktop struct {
	AppName string
}

// NewDesktop creates a desktop notification sink.
func NewDesktop(appName string) *Desktop {
	return &Desktop{AppName: appName}
}

// Deliver shows a desktop notification.
func (d *Desktop) Deliver(title, body string, urgency domain.Urgency) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", "-u", string(urgency), "-a", d.AppName, title, body)
	default:
		log.Printf("[notify] %s: %s — %s", urgency, title, body)
		return nil
	}

	if err := cmd.Run(); err != nil {
		log.Printf("[notify] delivery failed: %v", err)
		return fmt.Errorf("deliver notification: %w", err)
	}
	return nil
}
