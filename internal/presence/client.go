// Package presence publishes the tracker state to a team-chat webhook so
// teammates can see whether someone is heads-down, in a meeting, or done
// for the day. Publishing is strictly best-effort: webhook failures back
// off and retry, and never touch the tracking engine.
package presence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daywatch-app/daywatch/internal/domain"
)

// Config configures the presence publisher.
type Config struct {
	Enabled    bool
	WebhookURL string
	Interval   time.Duration
}

// DefaultConfig returns presence defaults: disabled, 5-minute cadence.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Interval: 5 * time.Minute,
	}
}

// maxBackoff caps the retry delay after consecutive webhook failures.
const maxBackoff = 10 * time.Minute

// SnapshotFunc supplies the current tracker state to publish.
type SnapshotFunc func(now time.Time) domain.Snapshot

// update is the JSON body posted to the webhook.
type update struct {
	SessionID     string    `json:"session_id"`
	Timestamp     time.Time `json:"timestamp"`
	Active        bool      `json:"active"`
	Paused        bool      `json:"paused"`
	InMeeting     bool      `json:"in_meeting"`
	ActiveSeconds int       `json:"active_seconds"`
	GoalReached   bool      `json:"goal_reached"`
	Display       string    `json:"display"`
}

// Publisher posts periodic presence updates.
type Publisher struct {
	config   Config
	snapshot SnapshotFunc
	client   *http.Client

	// sessionID distinguishes restarts of the same machine on the
	// receiving side.
	sessionID string

	failures int
}

// NewPublisher creates a presence publisher.
func NewPublisher(cfg Config, snapshot SnapshotFunc) *Publisher {
	return &Publisher{
		config:    cfg,
		snapshot:  snapshot,
		client:    &http.Client{Timeout: 10 * time.Second},
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the identifier sent with every update.
func (p *Publisher) SessionID() string { return p.sessionID }

// Run publishes on the configured cadence until the context is cancelled.
// Returns immediately when presence is disabled or has no webhook URL.
func (p *Publisher) Run(ctx context.Context) {
	if !p.config.Enabled || p.config.WebhookURL == "" {
		log.Println("[presence] disabled")
		return
	}

	log.Printf("[presence] publishing every %s (session %s)", p.config.Interval, p.sessionID[:8])

	timer := time.NewTimer(p.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := p.Publish(ctx, time.Now()); err != nil {
				p.failures++
				log.Printf("[presence] publish: %v (attempt %d)", err, p.failures)
			} else {
				p.failures = 0
			}
			timer.Reset(p.nextDelay())
		}
	}
}

// nextDelay doubles the interval per consecutive failure, capped at
// maxBackoff, so a dead webhook does not get hammered all day.
func (p *Publisher) nextDelay() time.Duration {
	d := p.config.Interval
	for i := 0; i < p.failures && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// Publish posts one presence update.
func (p *Publisher) Publish(ctx context.Context, now time.Time) error {
	snap := p.snapshot(now)

	body, err := json.Marshal(update{
		SessionID:     p.sessionID,
		Timestamp:     now,
		Active:        snap.Active,
		Paused:        snap.Paused,
		InMeeting:     snap.InMeeting,
		ActiveSeconds: snap.ActiveSeconds,
		GoalReached:   !snap.GoalReached.IsZero(),
		Display:       snap.FormattedActive,
	})
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
