package notify

import (
	"sync"
	"time"
)

// flashDuration is how long a one-shot flash symbol stays visible.
const flashDuration = 10 * time.Second

// Flash holds the menu-bar flash symbol state. The menu front end polls it
// through the status snapshot; this side only tracks what should be shown.
type Flash struct {
	mu         sync.Mutex
	symbol     string
	persistent bool
	shownAt    time.Time
}

// NewFlash creates a flash sink.
func NewFlash() *Flash {
	return &Flash{}
}

// Flash shows a one-shot symbol; it expires after flashDuration.
func (f *Flash) Flash(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.symbol = symbol
	f.persistent = false
	f.shownAt = time.Now()
}

// ShowPersistent shows a symbol that stays until Hide is called
// (e.g. the do-not-sleep indicator during a meeting).
func (f *Flash) ShowPersistent(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.symbol = symbol
	f.persistent = true
	f.shownAt = time.Now()
}

// Hide clears the symbol.
func (f *Flash) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.symbol = ""
	f.persistent = false
}

// Current returns the symbol that should be visible right now, or "".
func (f *Flash) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.symbol == "" {
		return ""
	}
	if !f.persistent && time.Since(f.shownAt) > flashDuration {
		return ""
	}
	return f.symbol
}

// Overlay holds the full-screen goal-reached overlay state.
type Overlay struct {
	mu      sync.Mutex
	visible bool
}

// NewOverlay creates an overlay sink.
func NewOverlay() *Overlay {
	return &Overlay{}
}

// Show makes the overlay visible.
func (o *Overlay) Show() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = true
}

// Hide removes the overlay.
func (o *Overlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
}

// Visible reports whether the overlay should currently be drawn.
func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}
