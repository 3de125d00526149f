// Package term hosts the play surface in a terminal. The mouse is the
// pointer device and one character cell maps to a fixed patch of surface.
package term

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/ayusman/guineaday/internal/completion"
	"github.com/ayusman/guineaday/internal/config"
	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/physics"
)

// Controller is what the host drives. app.App satisfies it.
type Controller interface {
	Engine() *engine.Engine
	SetMode(m input.Mode) error
}

var (
	styleZone    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBody    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorOrange)
	styleGrabbed = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleDone    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLime)
)

// Host renders snapshots and turns terminal events into engine input.
type Host struct {
	screen tcell.Screen
	ctrl   Controller
	eng    *engine.Engine
	cellW  float64
	cellH  float64
	chime  Chime
	log    *zap.Logger

	// pressed tracks button 1; tcell reports button state, not transitions.
	pressed bool

	mu      sync.Mutex
	message string
}

// NewHost creates a host on an initialized screen. chime may be nil.
func NewHost(screen tcell.Screen, ctrl Controller, cfg config.TermConfig, chime Chime, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Host{
		screen: screen,
		ctrl:   ctrl,
		eng:    ctrl.Engine(),
		cellW:  cfg.CellWidth,
		cellH:  cfg.CellHeight,
		chime:  chime,
		log:    log,
	}
	h.eng.OnCompletion(h.completed)
	return h
}

// Run draws every snapshot and handles input until ctx ends or the user
// quits. The engine loop runs elsewhere.
func (h *Host) Run(ctx context.Context) error {
	h.screen.EnableMouse(tcell.MouseMotionEvents)
	h.screen.EnableFocus()
	h.resize()

	snaps, unsubscribe := h.eng.Subscribe()
	defer unsubscribe()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	h.draw(h.eng.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if h.handle(ev) {
				return nil
			}
		case s, ok := <-snaps:
			if !ok {
				return nil
			}
			h.draw(s)
		}
	}
}

// handle applies one terminal event and reports whether the user quit.
func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.resize()
		h.screen.Sync()
	case *tcell.EventFocus:
		h.eng.SetActive(ev.Focused)
	case *tcell.EventKey:
		return h.key(ev)
	case *tcell.EventMouse:
		h.mouse(ev)
	}
	return false
}

func (h *Host) key(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'r':
		h.pressed = false
		id := h.eng.Restart()
		h.setMessage("")
		h.log.Info("session restarted", zap.String("session", id))
	case 'g':
		next := input.ModeGesture
		if h.eng.Mode() == input.ModeGesture {
			next = input.ModePointer
		}
		if err := h.ctrl.SetMode(next); err != nil {
			h.setMessage(err.Error())
		}
	}
	return false
}

func (h *Host) mouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	x, y := h.toSurface(col, row)
	down := ev.Buttons()&tcell.Button1 != 0

	kind := input.EventMove
	switch {
	case down && !h.pressed:
		kind = input.EventPress
	case !down && h.pressed:
		kind = input.EventRelease
	}
	h.pressed = down
	h.eng.PushPointer(input.Mouse(kind, x, y))
}

// resize gives the engine every row but the status line.
func (h *Host) resize() {
	w, ht := h.screen.Size()
	if ht > 1 {
		ht--
	}
	h.eng.Resize(float64(w)*h.cellW, float64(ht)*h.cellH)
}

// toSurface maps a cell to the surface point at its center.
func (h *Host) toSurface(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * h.cellW, (float64(row) + 0.5) * h.cellH
}

// cellSpan returns the cells covering [pos, pos+size) along one axis.
func cellSpan(pos, size, cell float64) (int, int) {
	from := int(pos / cell)
	to := int((pos + size) / cell)
	if to <= from {
		to = from + 1
	}
	return from, to
}

func (h *Host) completed(n engine.Notice) {
	c := n.Completion
	if c.Zone != "" {
		h.setMessage(fmt.Sprintf("%s found the %s!", c.Body, c.Zone))
	} else {
		h.setMessage(fmt.Sprintf("%s made it across!", c.Body))
	}
	if h.chime != nil {
		h.chime.Play()
	}
}

func (h *Host) setMessage(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.message = msg
}

// Message returns the text shown after a completion or failed command.
func (h *Host) Message() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.message
}

func (h *Host) draw(s engine.Snapshot) {
	h.screen.Clear()
	w, ht := h.screen.Size()

	for _, z := range s.Zones {
		c0, c1 := cellSpan(z.Pos.X, z.Size, h.cellW)
		r0, r1 := cellSpan(z.Pos.Y, z.Size, h.cellH)
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				h.screen.SetContent(c, r, '·', nil, styleZone)
			}
		}
		h.text(c0, r0, z.Label, styleZone)
	}

	for _, b := range s.Bodies {
		style := styleBody
		if b.State == physics.Grabbed.String() {
			style = styleGrabbed
		}
		c0, c1 := cellSpan(b.X, b.Size, h.cellW)
		r0, r1 := cellSpan(b.Y, b.Size, h.cellH)
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				h.screen.SetContent(c, r, ' ', nil, style)
			}
		}
		h.text(c0, (r0+r1-1)/2, b.Label, style)
	}

	status, style := h.status(s), styleStatus
	if s.Frozen {
		style = styleDone
	}
	for c := 0; c < w; c++ {
		h.screen.SetContent(c, ht-1, ' ', nil, style)
	}
	h.text(0, ht-1, status, style)
	h.screen.Show()
}

func (h *Host) status(s engine.Snapshot) string {
	session := s.Session
	if len(session) > 8 {
		session = session[:8]
	}
	line := fmt.Sprintf(" %s | %s", s.Mode, session)
	if s.Policy == completion.PolicyProgress {
		line += fmt.Sprintf(" | %3.0f%%", s.Progress)
	}
	if msg := h.Message(); msg != "" {
		line += " | " + msg
	}
	return line + " | g: hand tracking  r: restart  q: quit"
}

func (h *Host) text(col, row int, s string, style tcell.Style) {
	for _, r := range s {
		h.screen.SetContent(col, row, r, nil, style)
		col++
	}
}
