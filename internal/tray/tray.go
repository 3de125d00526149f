// Package tray provides the system tray menu for guineaday.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu. Callbacks run on the menu goroutine.
type Tray struct {
	mu        sync.RWMutex
	gesture   bool
	last      string
	onGesture func(enabled bool)
	onRestart func()
	onOpen    func()
	onQuit    func()

	menuGesture *systray.MenuItem
	menuLast    *systray.MenuItem
}

// New creates a Tray. gesture is the initial hand tracking state.
func New(gesture bool) *Tray {
	return &Tray{gesture: gesture}
}

// OnGesture sets the callback for the hand tracking toggle.
func (t *Tray) OnGesture(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onGesture = fn
}

// OnRestart sets the callback for "Restart".
func (t *Tray) OnRestart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRestart = fn
}

// OnOpen sets the callback for "Open in Browser".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for "Quit".
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run shows the tray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Guinea Day")
	systray.SetTooltip("Guinea Day")

	t.mu.Lock()
	t.menuGesture = systray.AddMenuItem(gestureTitle(t.gesture), "Toggle hand tracking")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last completion")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuRestart := systray.AddMenuItem("Restart", "Start a new session")
	menuOpen := systray.AddMenuItem("Open in Browser", "Open the play surface")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Guinea Day")

	go func() {
		for {
			select {
			case <-t.menuGesture.ClickedCh:
				t.toggleGesture()
			case <-menuRestart.ClickedCh:
				t.call(func() func() { return t.onRestart })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	fn := get()
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (t *Tray) toggleGesture() {
	t.mu.Lock()
	t.gesture = !t.gesture
	enabled := t.gesture
	if t.menuGesture != nil {
		t.menuGesture.SetTitle(gestureTitle(enabled))
	}
	fn := t.onGesture
	t.mu.Unlock()

	if fn != nil {
		fn(enabled)
	}
}

// SetGesture updates the toggle without calling back, for mode changes
// made elsewhere.
func (t *Tray) SetGesture(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gesture = enabled
	if t.menuGesture != nil {
		t.menuGesture.SetTitle(gestureTitle(enabled))
	}
}

// Gesture reports whether hand tracking is on.
func (t *Tray) Gesture() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gesture
}

// SetLast shows the most recent completion, e.g. "Sunny → Carrot".
func (t *Tray) SetLast(body, zone string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = describe(body, zone)
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(t.last))
	}
}

// Last returns the text after "Last: ".
func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func gestureTitle(enabled bool) string {
	if enabled {
		return "● Hand tracking"
	}
	return "○ Hand tracking"
}

func lastTitle(last string) string {
	if last == "" {
		return "Last: none"
	}
	return "Last: " + last
}

func describe(body, zone string) string {
	switch {
	case body == "":
		return ""
	case zone == "":
		return body + " crossed"
	default:
		return body + " → " + zone
	}
}
