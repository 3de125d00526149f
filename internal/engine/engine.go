// Package engine runs an interaction session: it drains canonical pointer
// input once per tick, drives the drag state machine, advances free bodies
// and raises at most one completion per session.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/guineaday/internal/completion"
	"github.com/ayusman/guineaday/internal/drag"
	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/physics"
)

// ErrUnknownMode is returned for an unsupported input mode.
var ErrUnknownMode = input.ErrUnknownMode

// subscriberBuffer is the channel depth given to snapshot subscribers.
const subscriberBuffer = 4

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRand seeds placement and jitter, for reproducible sessions.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithJournal records session starts and ends.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithSessionStart registers fn to be called with the record of every started
// session, the first one included. It runs outside the engine lock.
func WithSessionStart(fn func(Record)) Option {
	return func(e *Engine) { e.starts = append(e.starts, fn) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine owns the bodies, zones and input of one session at a time. All
// methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	log     *zap.Logger
	rng     *rand.Rand
	now     func() time.Time
	journal Journal
	starts  []func(Record)

	sim        *physics.Simulator
	norm       *input.Normalizer
	ctrl       *drag.Controller
	classifier *gesture.Classifier
	policy     completion.Policy
	tracker    completion.Tracker

	bodies  []*physics.Body
	zones   []completion.Zone
	placed  bool
	active  bool
	frozen  bool
	pointer input.PointerState

	session   string
	ended     bool
	startedAt time.Time
	tick      uint64

	subs      map[int]chan Snapshot
	nextSub   int
	listeners []func(Notice)
}

// effects are collected under the lock and delivered after it is released.
type effects struct {
	records []Record
	notices []Notice
}

// New creates an engine and starts its first session. Bodies are placed on
// the first Resize with a positive size.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if _, err := input.ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	policy, err := completion.New(cfg.Completion)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = append([]string(nil), DefaultBodies...)
	}

	e := &Engine{
		cfg:    cfg,
		log:    zap.NewNop(),
		now:    time.Now,
		policy: policy,
		active: true,
		subs:   make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.sim = physics.NewSimulator(cfg.Physics, e.rng)
	e.norm = input.NewNormalizer(cfg.Mode, cfg.StaleTicks)
	e.ctrl = drag.NewController(nil)
	e.classifier = gesture.NewClassifier(cfg.Gesture)

	var fx effects
	e.mu.Lock()
	e.startSession(&fx)
	e.mu.Unlock()
	e.deliver(fx)
	return e, nil
}

// Resize sets the surface size. The first valid size places the bodies;
// later sizes clamp free bodies into the new bounds.
func (e *Engine) Resize(width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sim.SetBounds(physics.Bounds{Width: width, Height: height})
	if w, ok := e.policy.(interface{ SetWidth(float64) }); ok {
		w.SetWidth(width)
	}
	if !e.sim.Bounds().Valid() {
		return
	}
	if !e.placed {
		e.place()
		return
	}
	for _, b := range e.bodies {
		e.sim.Contain(b)
	}
}

// SetOffset sets the surface's screen offset used to localize input.
func (e *Engine) SetOffset(x, y float64) {
	e.norm.SetOffset(x, y)
}

// SetScreen sets the screen size gesture positions are scaled to.
func (e *Engine) SetScreen(width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classifier.SetScreen(width, height)
}

// SetActive pauses or resumes the session. Deactivating clears any drag
// without completing it.
func (e *Engine) SetActive(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == active {
		return
	}
	e.active = active
	if !active {
		e.handle(e.ctrl.Cancel(), nil)
	}
	e.log.Debug("surface visibility changed", zap.Bool("active", active))
}

// Active reports whether the surface is visible.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SetMode switches the live input modality. Any drag is cleared without
// completing and pending input from the old source is discarded.
func (e *Engine) SetMode(m input.Mode) error {
	if _, err := input.ParseMode(string(m)); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if m == e.norm.Mode() {
		return nil
	}
	e.handle(e.ctrl.Reset(), nil)
	e.norm.Reset(m)
	e.pointer = input.Absent
	e.cfg.Mode = m
	e.log.Info("input mode changed", zap.String("session", e.session), zap.String("mode", string(m)))
	return nil
}

// Mode returns the live input modality.
func (e *Engine) Mode() input.Mode {
	return e.norm.Mode()
}

// Session returns the current session ID.
func (e *Engine) Session() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Restart ends the current session and starts a new one with freshly placed
// bodies and zones.
func (e *Engine) Restart() string {
	var fx effects
	e.mu.Lock()
	e.endSession(&fx, OutcomeAbandoned)
	e.startSession(&fx)
	id := e.session
	e.mu.Unlock()

	e.deliver(fx)
	return id
}

// Close records the current session as abandoned if it has not completed.
func (e *Engine) Close() {
	var fx effects
	e.mu.Lock()
	e.endSession(&fx, OutcomeAbandoned)
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
	e.mu.Unlock()
	e.deliver(fx)
}

// PushPointer queues a pointer device event. It reports false when pointer
// input is not the live modality.
func (e *Engine) PushPointer(ev input.PointerEvent) bool {
	return e.norm.PushPointer(ev)
}

// PushFrame classifies a landmark frame and queues the result. Frames that
// carry no usable hand are queued as an absent pointer.
func (e *Engine) PushFrame(f gesture.Frame) bool {
	e.mu.Lock()
	res, ok := e.classifier.Classify(f)
	e.mu.Unlock()
	return e.norm.PushGesture(res, ok)
}

// PushGesture queues an already classified result.
func (e *Engine) PushGesture(res gesture.Result, ok bool) bool {
	return e.norm.PushGesture(res, ok)
}

// OnCompletion registers fn to be called after a session completes. It runs
// outside the engine lock.
func (e *Engine) OnCompletion(fn func(Notice)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Subscribe returns a channel receiving a snapshot after every tick. Slow
// readers miss snapshots. The returned func unsubscribes.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan Snapshot, subscriberBuffer)
	e.subs[id] = ch

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			close(c)
			delete(e.subs, id)
		}
	}
}

// Run ticks the engine at the configured rate until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("engine loop started", zap.Float64("tick_rate", e.cfg.Physics.TickRate))
	err := Repeat(ctx, TickInterval(e.cfg.Physics.TickRate), func() { e.Tick() })
	e.log.Info("engine loop stopped")
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Tick applies queued input, advances free bodies and publishes a snapshot.
func (e *Engine) Tick() Snapshot {
	var fx effects

	e.mu.Lock()
	e.tick++
	states := e.norm.Drain()
	for _, p := range states {
		e.pointer = p
		if e.active && !e.frozen && e.placed {
			e.handle(e.ctrl.Update(p), &fx)
		} else {
			e.ctrl.Observe(p)
		}
	}
	if e.active && !e.frozen {
		e.sim.Step(e.bodies)
	}
	snap := e.snapshot()
	e.publish(snap)
	e.mu.Unlock()

	e.deliver(fx)
	return snap
}

// Snapshot returns the current state without advancing.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// handle feeds a drag event to the completion policy. fx may be nil when
// the event cannot complete.
func (e *Engine) handle(ev drag.Event, fx *effects) {
	switch ev.Kind {
	case drag.Grab:
		e.policy.Grab(ev.Body, ev.Pointer)
		e.log.Debug("grab", zap.String("body", ev.Body.Label), zap.Float64("x", ev.Pointer.X), zap.Float64("y", ev.Pointer.Y))

	case drag.Move:
		if c, ok := e.policy.Move(ev.Body, ev.Pointer); ok {
			e.complete(c, fx)
		}

	case drag.Release:
		e.log.Debug("release", zap.String("body", ev.Body.Label))
		c, ok := e.policy.Release(ev.Body, ev.Pointer)
		e.sim.Contain(ev.Body)
		if ok {
			e.complete(c, fx)
		}

	case drag.Lost:
		e.policy.Abort()
		e.sim.Contain(ev.Body)
		e.log.Debug("pointer lost during drag", zap.String("body", ev.Body.Label))

	case drag.Cancel:
		e.policy.Abort()
		e.sim.Contain(ev.Body)
		e.log.Debug("drag cancelled", zap.String("body", ev.Body.Label))
	}
}

func (e *Engine) complete(c completion.Completion, fx *effects) {
	if fx == nil || !e.tracker.Offer(c) {
		return
	}
	e.frozen = true
	// A progress completion can fire while the body is still held.
	e.handle(e.ctrl.Cancel(), nil)
	for _, b := range e.bodies {
		b.Vel = physics.Vec2{}
	}

	e.log.Info("session completed",
		zap.String("session", e.session),
		zap.String("body", c.Body),
		zap.String("zone", c.Zone),
		zap.String("policy", c.Policy),
		zap.Float64("progress", c.Progress),
	)
	fx.notices = append(fx.notices, Notice{Session: e.session, Completion: c})
	e.endSession(fx, OutcomeCompleted)
}

func (e *Engine) startSession(fx *effects) {
	e.session = uuid.NewString()
	e.ended = false
	e.startedAt = e.now()
	e.tick = 0
	e.frozen = false
	e.tracker.Reset()
	e.policy.Reset()
	e.ctrl.SetBodies(nil)
	e.bodies = nil
	e.zones = nil
	e.placed = false
	if e.sim.Bounds().Valid() {
		e.place()
	}

	e.log.Info("session started",
		zap.String("session", e.session),
		zap.String("mode", string(e.norm.Mode())),
		zap.String("policy", e.policy.Name()),
	)
	fx.records = append(fx.records, e.record(OutcomeActive))
}

// endSession records the session end once.
func (e *Engine) endSession(fx *effects, outcome Outcome) {
	if e.session == "" || e.ended {
		return
	}
	e.ended = true
	e.handle(e.ctrl.Cancel(), nil)
	fx.records = append(fx.records, e.record(outcome))
}

func (e *Engine) place() {
	e.bodies = e.sim.Place(e.cfg.Bodies)
	e.ctrl.SetBodies(e.bodies)

	e.zones = make([]completion.Zone, len(e.cfg.Zones))
	for i, spec := range e.cfg.Zones {
		size := spec.Size
		if size <= 0 {
			size = completion.DefaultZoneSize
		}
		pos := physics.Vec2{X: spec.X, Y: spec.Y}
		if spec.Random {
			pos = e.sim.RandomPoint(ZoneMargin, ZoneReserve)
		}
		e.zones[i] = completion.Zone{ID: i, Label: spec.Label, Pos: pos, Size: size}
	}
	if z, ok := e.policy.(interface{ SetZones([]completion.Zone) }); ok {
		z.SetZones(e.zones)
	}
	e.placed = true

	b := e.sim.Bounds()
	e.log.Debug("bodies placed",
		zap.String("session", e.session),
		zap.Int("bodies", len(e.bodies)),
		zap.Int("zones", len(e.zones)),
		zap.Float64("width", b.Width),
		zap.Float64("height", b.Height),
	)
}

func (e *Engine) record(outcome Outcome) Record {
	r := Record{
		ID:        e.session,
		Mode:      e.norm.Mode(),
		Policy:    e.policy.Name(),
		Bodies:    append([]string(nil), e.cfg.Bodies...),
		Outcome:   outcome,
		Progress:  e.policy.Progress(),
		StartedAt: e.startedAt,
	}
	for _, z := range e.cfg.Zones {
		r.Zones = append(r.Zones, z.Label)
	}
	if outcome != OutcomeActive {
		r.EndedAt = e.now()
	}
	if c, ok := e.tracker.Last(); ok {
		r.Completion = &c
	}
	return r
}

func (e *Engine) snapshot() Snapshot {
	b := e.sim.Bounds()
	s := Snapshot{
		Session:  e.session,
		Tick:     e.tick,
		Mode:     e.norm.Mode(),
		Policy:   e.policy.Name(),
		Active:   e.active,
		Frozen:   e.frozen,
		Width:    b.Width,
		Height:   b.Height,
		Bodies:   make([]BodyView, len(e.bodies)),
		Zones:    append([]completion.Zone(nil), e.zones...),
		Progress: e.policy.Progress(),
		Pointer:  e.pointer,
	}
	for i, body := range e.bodies {
		s.Bodies[i] = BodyView{
			ID:    body.ID,
			Label: body.Label,
			X:     body.Pos.X,
			Y:     body.Pos.Y,
			VX:    body.Vel.X,
			VY:    body.Vel.Y,
			Size:  body.Size,
			State: body.State.String(),
		}
	}
	if g := e.ctrl.Grabbed(); g != nil {
		id := g.ID
		s.Grabbed = &id
	}
	if c, ok := e.tracker.Last(); ok {
		s.Completion = &c
	}
	return s
}

func (e *Engine) publish(s Snapshot) {
	for _, ch := range e.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

func (e *Engine) deliver(fx effects) {
	if e.journal != nil {
		for _, r := range fx.records {
			if err := e.journal.SaveSession(r); err != nil {
				e.log.Warn("failed to record session", zap.String("session", r.ID), zap.Error(err))
			}
		}
	}
	for _, r := range fx.records {
		if r.Outcome != OutcomeActive {
			continue
		}
		for _, fn := range e.starts {
			fn(r)
		}
	}
	if len(fx.notices) == 0 {
		return
	}

	e.mu.Lock()
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()
	for _, n := range fx.notices {
		for _, fn := range listeners {
			fn(n)
		}
	}
}
