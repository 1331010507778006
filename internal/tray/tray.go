// Package tray provides an optional system tray consumer of the engine
// state: a one-line session summary, mode switching, a capture toggle,
// and quit. All engine interaction goes through callbacks wired by the
// caller; the tray itself never touches the orchestrator directly.
package tray

import (
	"strconv"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/session"
)

// Tray is the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onMode   func(kind string)
	onStop   func()
	onOpenUI func()
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a Tray with capture enabled by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback invoked when capture is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnMode sets the callback invoked when a mode menu item is clicked.
// The argument is the mode kind ("learn", "quiz", "mcq", "spelling",
// "snake").
func (t *Tray) OnMode(fn func(kind string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMode = fn
}

// OnStop sets the callback invoked when "End Session" is clicked.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnOpenUI sets the callback invoked when the dashboard item is clicked.
func (t *Tray) OnOpenUI(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenUI = fn
}

// OnQuit sets the callback invoked when quit is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the systray loop. Safe to call from any goroutine; the
// signal handler uses it to unblock Run during shutdown.
func Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Sign Alphabet Trainer")

	t.menuStatus = systray.AddMenuItem("Idle", "Current session")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem("● Capture On", "Toggle camera capture")
	systray.AddSeparator()

	modes := []struct {
		label string
		kind  string
	}{
		{"Learn", string(mode.KindLearn)},
		{"Quiz", string(mode.KindQuiz)},
		{"Multiple Choice", string(mode.KindMCQ)},
		{"Spelling", string(mode.KindSpelling)},
		{"Snake", session.KindSnake},
	}
	for _, m := range modes {
		item := systray.AddMenuItem(m.label, "Start "+m.label)
		go func(kind string, ch <-chan struct{}) {
			for range ch {
				t.handleMode(kind)
			}
		}(m.kind, item.ClickedCh)
	}
	menuStop := systray.AddMenuItem("End Session", "Abandon the active session")
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the web dashboard")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuStop.ClickedCh:
				t.handleStop()
			case <-menuOpen.ClickedCh:
				t.handleOpenUI()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle flips the capture state and notifies the caller.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Capture On")
	} else {
		t.menuToggle.SetTitle("○ Capture Off")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleMode(kind string) {
	t.mu.RLock()
	callback := t.onMode
	t.mu.RUnlock()

	if callback != nil {
		callback(kind)
	}
}

func (t *Tray) handleStop() {
	t.mu.RLock()
	callback := t.onStop
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleOpenUI() {
	t.mu.RLock()
	callback := t.onOpenUI
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the session summary line in the menu.
func (t *Tray) SetStatus(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		if text == "" {
			t.menuStatus.SetTitle("Idle")
		} else {
			t.menuStatus.SetTitle(text)
		}
	}
}

// IsEnabled returns the current capture toggle state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// StatusLine renders a snapshot as a short menu label, e.g.
// "Quiz · target R" or "Snake · score 4".
func StatusLine(snap session.Snapshot) string {
	switch {
	case snap.Active == "":
		return ""
	case snap.Game != nil:
		return "Snake · score " + strconv.Itoa(snap.Game.Score)
	case snap.Mode != nil && snap.Mode.Target != "":
		return title(snap.Active) + " · target " + snap.Mode.Target
	default:
		return title(snap.Active)
	}
}

func title(kind string) string {
	switch kind {
	case string(mode.KindLearn):
		return "Learn"
	case string(mode.KindQuiz):
		return "Quiz"
	case string(mode.KindMCQ):
		return "Multiple Choice"
	case string(mode.KindSpelling):
		return "Spelling"
	case session.KindSnake:
		return "Snake"
	}
	return kind
}
