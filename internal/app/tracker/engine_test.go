package tracker_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/daywatch-app/daywatch/internal/app/tracker"
	"github.com/daywatch-app/daywatch/internal/domain"
	"github.com/daywatch-app/daywatch/internal/infra/sqlite"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeInput struct {
	mu        sync.Mutex
	idle      time.Duration
	err       error
	assertion bool
}

func (f *fakeInput) IdleDuration() (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idle, f.err
}

func (f *fakeInput) HasDisplaySleepAssertion() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assertion
}

type fakeMeeting struct{ in bool }

func (f *fakeMeeting) InMeeting() bool { return f.in }

type fakeNotifier struct {
	titles []string
}

func (f *fakeNotifier) Deliver(title, body string, urgency domain.Urgency) error {
	f.titles = append(f.titles, title)
	return nil
}

func (f *fakeNotifier) count(title string) int {
	n := 0
	for _, t := range f.titles {
		if t == title {
			n++
		}
	}
	return n
}

type fakeFlash struct {
	flashes    []string
	persistent string
	hides      int
}

func (f *fakeFlash) Flash(symbol string)          { f.flashes = append(f.flashes, symbol) }
func (f *fakeFlash) ShowPersistent(symbol string) { f.persistent = symbol }
func (f *fakeFlash) Hide()                        { f.persistent = ""; f.hides++ }

func (f *fakeFlash) count(symbol string) int {
	n := 0
	for _, s := range f.flashes {
		if s == symbol {
			n++
		}
	}
	return n
}

type fakeOverlay struct {
	shows, hides int
}

func (f *fakeOverlay) Show() { f.shows++ }
func (f *fakeOverlay) Hide() { f.hides++ }

// ─── Harness ────────────────────────────────────────────────────────────────

type fixture struct {
	db       *sqlite.DB
	store    *tracker.SettingsStore
	input    *fakeInput
	meeting  *fakeMeeting
	notifier *fakeNotifier
	flash    *fakeFlash
	overlay  *fakeOverlay

	sunsetMins int
	sunsetOK   bool
}

// baseSettings disables every reminder so individual tests opt in to the
// one they exercise.
func baseSettings() tracker.Settings {
	s := tracker.DefaultSettings()
	s.EyeBreakIntervalMinutes = 0
	s.StretchBreakEnabled = false
	s.WindDownMinutes = 0
	s.SunsetAlertMinutes = 0
	s.OverlayOnGoal = false
	s.StandUpForMeeting = false
	s.StretchAfterMeeting = false
	return s
}

func newFixture(t *testing.T, set tracker.Settings) (*tracker.Engine, *fixture) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fx := &fixture{
		db:       db,
		store:    tracker.NewSettingsStore(set),
		input:    &fakeInput{},
		meeting:  &fakeMeeting{},
		notifier: &fakeNotifier{},
		flash:    &fakeFlash{},
		overlay:  &fakeOverlay{},
	}
	eng := tracker.NewEngine(db, fx.store, fx.input, fx.meeting,
		fx.notifier, fx.flash, fx.overlay, fx.sunsetFunc)
	return eng, fx
}

func (fx *fixture) sunsetFunc(lat, lon float64, now time.Time) (int, bool) {
	return fx.sunsetMins, fx.sunsetOK
}

// reopen builds a second engine over the same database, simulating a
// process restart.
func (fx *fixture) reopen() *tracker.Engine {
	return tracker.NewEngine(fx.db, fx.store, fx.input, fx.meeting,
		fx.notifier, fx.flash, fx.overlay, fx.sunsetFunc)
}

// tickRange feeds n consecutive 1-second ticks starting at from.
func tickRange(e *tracker.Engine, from time.Time, n int) time.Time {
	for i := 0; i < n; i++ {
		e.Tick(from.Add(time.Duration(i) * time.Second))
	}
	return from.Add(time.Duration(n) * time.Second)
}

// ─── Core state machine ─────────────────────────────────────────────────────

func TestEngine_BasicAccumulationToGoal(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 28800
	eng, fx := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	tickRange(eng, start, 28800)

	snap := eng.Snapshot(start.Add(28800 * time.Second))
	if snap.ActiveSeconds != 28800 {
		t.Errorf("ActiveSeconds = %d, want 28800", snap.ActiveSeconds)
	}
	if !snap.WorkStart.Equal(start) {
		t.Errorf("WorkStart = %v, want %v", snap.WorkStart, start)
	}
	wantGoalAt := start.Add(28799 * time.Second)
	if !snap.GoalReached.Equal(wantGoalAt) {
		t.Errorf("GoalReached = %v, want %v (the 28800th tick)", snap.GoalReached, wantGoalAt)
	}
	if got := fx.notifier.count("Daily goal reached"); got != 1 {
		t.Errorf("goal notifications = %d, want exactly 1", got)
	}
	if snap.FormattedActive != "8h 0m" {
		t.Errorf("FormattedActive = %q, want %q", snap.FormattedActive, "8h 0m")
	}
}

func TestEngine_Monotonicity(t *testing.T) {
	eng, fx := newFixture(t, baseSettings())

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	prev := 0
	for i := 0; i < 600; i++ {
		// Flip between active and idle every 37 ticks.
		if i%74 < 37 {
			fx.input.idle = 0
		} else {
			fx.input.idle = time.Hour
		}
		eng.Tick(now.Add(time.Duration(i) * time.Second))

		got := eng.Snapshot(now.Add(time.Duration(i) * time.Second)).ActiveSeconds
		if got < prev {
			t.Fatalf("ActiveSeconds decreased within a day: %d -> %d at tick %d", prev, got, i)
		}
		prev = got
	}
}

func TestEngine_AtMostOneGoalNotification(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 120
	eng, fx := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 300) // well past the goal

	if got := fx.notifier.count("Daily goal reached"); got != 1 {
		t.Fatalf("goal notifications = %d, want 1", got)
	}

	// Restart mid-day: the persisted guard must hold.
	eng2 := fx.reopen()
	tickRange(eng2, end, 60)
	if got := fx.notifier.count("Daily goal reached"); got != 1 {
		t.Errorf("goal notifications after restart = %d, want still 1", got)
	}
}

func TestEngine_NoNotificationBelowGoal(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 3600
	eng, fx := newFixture(t, set)

	tickRange(eng, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), 3599)
	if got := fx.notifier.count("Daily goal reached"); got != 0 {
		t.Errorf("goal notifications = %d, want 0 below the goal", got)
	}
}

func TestEngine_PowerAssertionOverridesIdle(t *testing.T) {
	eng, fx := newFixture(t, baseSettings())
	fx.input.idle = 10 * time.Hour // far past the threshold
	fx.input.assertion = true      // a muted video call is still work

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	tickRange(eng, start, 50)

	if got := eng.Snapshot(start).ActiveSeconds; got != 50 {
		t.Errorf("ActiveSeconds = %d, want 50 under a power assertion", got)
	}
}

func TestEngine_IdleTicksDontCount(t *testing.T) {
	eng, fx := newFixture(t, baseSettings())
	fx.input.idle = time.Hour

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	tickRange(eng, start, 50)

	if got := eng.Snapshot(start).ActiveSeconds; got != 0 {
		t.Errorf("ActiveSeconds = %d, want 0 while idle", got)
	}
}

func TestEngine_SignalErrorMeansInactive(t *testing.T) {
	eng, fx := newFixture(t, baseSettings())
	fx.input.err = errors.New("ioreg exploded")

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	tickRange(eng, start, 20)

	if got := eng.Snapshot(start).ActiveSeconds; got != 0 {
		t.Errorf("ActiveSeconds = %d, want 0 when the signal query fails", got)
	}
}

func TestEngine_PauseIdempotent(t *testing.T) {
	eng, fx := newFixture(t, baseSettings())
	_ = fx

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 30)
	before := eng.Snapshot(end).ActiveSeconds

	eng.SetPaused(true)
	end = tickRange(eng, end, 10)
	eng.SetPaused(false)

	if got := eng.Snapshot(end).ActiveSeconds; got != before {
		t.Errorf("ActiveSeconds = %d, want unchanged %d across paused ticks", got, before)
	}

	// Toggling pause on and off with zero elapsed time changes nothing.
	eng.SetPaused(true)
	eng.SetPaused(false)
	if got := eng.Snapshot(end).ActiveSeconds; got != before {
		t.Errorf("ActiveSeconds = %d after pause toggle, want %d", got, before)
	}
}

func TestEngine_FrozenFinishTime(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 60
	eng, _ := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 200)

	snap := eng.Snapshot(end)
	if snap.GoalReached.IsZero() {
		t.Fatal("expected goal reached")
	}
	if !snap.EstimatedFinish.Equal(snap.GoalReached) {
		t.Errorf("EstimatedFinish = %v, want frozen at GoalReached %v",
			snap.EstimatedFinish, snap.GoalReached)
	}

	// Much later the same day: still frozen.
	later := eng.Snapshot(end.Add(3 * time.Hour))
	if !later.EstimatedFinish.Equal(snap.GoalReached) {
		t.Errorf("EstimatedFinish drifted to %v after more time", later.EstimatedFinish)
	}
}

func TestEngine_EstimatedFinishBeforeGoal(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 1000
	eng, _ := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 400)

	snap := eng.Snapshot(end)
	want := end.Add(600 * time.Second)
	if !snap.EstimatedFinish.Equal(want) {
		t.Errorf("EstimatedFinish = %v, want %v", snap.EstimatedFinish, want)
	}
}

func TestEngine_DayRolloverResets(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 60
	eng, fx := newFixture(t, set)

	day1 := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	tickRange(eng, day1, 120)
	if eng.Snapshot(day1).GoalReached.IsZero() {
		t.Fatal("expected goal reached on day 1")
	}

	day2 := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)
	eng.Tick(day2)

	snap := eng.Snapshot(day2)
	if snap.ActiveSeconds != 1 {
		t.Errorf("ActiveSeconds = %d, want 1 (the rollover tick itself)", snap.ActiveSeconds)
	}
	if !snap.WorkStart.Equal(day2) {
		t.Errorf("WorkStart = %v, want relatched at %v", snap.WorkStart, day2)
	}
	if !snap.GoalReached.IsZero() {
		t.Errorf("GoalReached = %v, want cleared at rollover", snap.GoalReached)
	}
	if got := fx.notifier.count("Daily goal reached"); got != 1 {
		t.Errorf("rollover alone must not re-deliver the goal notification (got %d)", got)
	}
}

func TestEngine_RolloverAtWorkDayBoundary(t *testing.T) {
	eng, _ := newFixture(t, baseSettings())

	// 3:59am belongs to the previous logical day; work-start does not
	// latch before the 4am boundary.
	preBoundary := time.Date(2025, 7, 2, 3, 59, 0, 0, time.UTC)
	eng.Tick(preBoundary)
	if got := eng.Snapshot(preBoundary); !got.WorkStart.IsZero() {
		t.Errorf("WorkStart latched at %v before the boundary", got.WorkStart)
	}
	if got := eng.Snapshot(preBoundary).ActiveSeconds; got != 1 {
		t.Errorf("ActiveSeconds = %d, want 1 (counting is independent of the latch)", got)
	}

	// 4:01am is a new logical day: the counter resets.
	postBoundary := time.Date(2025, 7, 2, 4, 1, 0, 0, time.UTC)
	eng.Tick(postBoundary)
	snap := eng.Snapshot(postBoundary)
	if snap.ActiveSeconds != 1 {
		t.Errorf("ActiveSeconds = %d, want 1 after crossing the 4am boundary", snap.ActiveSeconds)
	}
	if !snap.WorkStart.Equal(postBoundary) {
		t.Errorf("WorkStart = %v, want %v", snap.WorkStart, postBoundary)
	}
}

func TestEngine_RestartKeepsState(t *testing.T) {
	eng, fx := newFixture(t, baseSettings())

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 45)
	if err := eng.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	eng2 := fx.reopen()
	snap := eng2.Snapshot(end)
	if snap.ActiveSeconds != 45 {
		t.Errorf("ActiveSeconds after restart = %d, want 45", snap.ActiveSeconds)
	}
	if !snap.WorkStart.Equal(start) {
		t.Errorf("WorkStart after restart = %v, want %v", snap.WorkStart, start)
	}

	// Continue the same day seamlessly.
	tickRange(eng2, end, 15)
	if got := eng2.Snapshot(end).ActiveSeconds; got != 60 {
		t.Errorf("ActiveSeconds = %d, want 60 after resuming", got)
	}
}

func TestEngine_DeliveredNotificationMarkedShown(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 60
	eng, fx := newFixture(t, set)

	tickRange(eng, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), 60)

	notifs, err := fx.db.ListRecentNotifications(5)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("logged notifications = %d, want 1", len(notifs))
	}
	if notifs[0].Kind != domain.TriggerGoal {
		t.Errorf("kind = %q, want %q", notifs[0].Kind, domain.TriggerGoal)
	}
	if !notifs[0].Shown {
		t.Error("delivered notification not marked shown in the log")
	}
}

func TestEngine_PersistFailureNeverStopsTheTickLoop(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 60
	eng, fx := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 30)

	// Kill the store mid-day: every write from here on fails. Counting,
	// reminders and the goal transition must keep working.
	if err := fx.db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	end = tickRange(eng, end, 70)

	snap := eng.Snapshot(end)
	if snap.ActiveSeconds != 100 {
		t.Errorf("ActiveSeconds = %d, want 100 with a dead store", snap.ActiveSeconds)
	}
	if snap.GoalReached.IsZero() {
		t.Error("goal transition suppressed by a persist failure")
	}
	if got := fx.notifier.count("Daily goal reached"); got != 1 {
		t.Errorf("goal notifications = %d, want exactly 1 with a dead store", got)
	}

	// Flush reports the failure instead of panicking or hanging.
	if err := eng.Flush(); err == nil {
		t.Error("Flush() = nil against a closed store, want an error")
	}
}

func TestEngine_GoalRearmsWhenTargetRaised(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 60
	eng, fx := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 60)
	if got := fx.notifier.count("Daily goal reached"); got != 1 {
		t.Fatalf("goal notifications = %d, want 1", got)
	}

	// Raise the goal past current progress: the guard re-arms.
	set.DailyGoalSeconds = 180
	if err := fx.store.Update(set); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	end = tickRange(eng, end, 60)
	if got := eng.Snapshot(end); !got.GoalReached.IsZero() {
		t.Errorf("GoalReached = %v, want cleared after raising the target", got.GoalReached)
	}

	tickRange(eng, end, 60)
	if got := fx.notifier.count("Daily goal reached"); got != 2 {
		t.Errorf("goal notifications = %d, want 2 (one per transition)", got)
	}
}

func TestEngine_IdleTimeToday(t *testing.T) {
	eng, _ := newFixture(t, baseSettings())

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	tickRange(eng, start, 50)

	// 200 seconds into the work window with only 50 active.
	now := start.Add(200 * time.Second)
	if got := eng.Snapshot(now).IdleSeconds; got != 150 {
		t.Errorf("IdleSeconds = %d, want 150", got)
	}
}

func TestEngine_OverlayShowDismissReshow(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 60
	set.OverlayOnGoal = true
	eng, fx := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 60)
	if fx.overlay.shows != 1 {
		t.Fatalf("overlay shows = %d, want 1 on goal", fx.overlay.shows)
	}

	eng.DismissOverlay(end)
	if fx.overlay.hides == 0 {
		t.Fatal("dismiss should hide the overlay")
	}

	// Still inside the cooldown: stays hidden.
	end = tickRange(eng, end.Add(5*time.Minute), 5)
	if fx.overlay.shows != 1 {
		t.Errorf("overlay reappeared inside the cooldown (shows=%d)", fx.overlay.shows)
	}

	// Past the cooldown: reappears.
	tickRange(eng, end.Add(16*time.Minute), 5)
	if fx.overlay.shows != 2 {
		t.Errorf("overlay shows = %d, want 2 after the cooldown", fx.overlay.shows)
	}
}

func TestEngine_OverlayMuteStopsReshow(t *testing.T) {
	set := baseSettings()
	set.DailyGoalSeconds = 60
	set.OverlayOnGoal = true
	eng, fx := newFixture(t, set)

	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := tickRange(eng, start, 60)

	eng.MuteOverlay()
	tickRange(eng, end.Add(30*time.Minute), 10)
	if fx.overlay.shows != 1 {
		t.Errorf("overlay shows = %d, want 1 (muted for the day)", fx.overlay.shows)
	}
}
