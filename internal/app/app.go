// Package app wires the engine to its surroundings: the session journal,
// the persisted input mode, the gesture source and completion hooks.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/guineaday/internal/capture"
	"github.com/ayusman/guineaday/internal/config"
	"github.com/ayusman/guineaday/internal/detector"
	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/hook"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/store"
)

// frameRetry is the pause after a failed gesture frame.
const frameRetry = 100 * time.Millisecond

// Option customizes an App.
type Option func(*options)

type options struct {
	source gesture.Source
	engine []engine.Option
}

// WithSource replaces the gesture source chosen by the config.
func WithSource(src gesture.Source) Option {
	return func(o *options) { o.source = src }
}

// WithEngineOptions passes options through to the engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) { o.engine = append(o.engine, opts...) }
}

// App is the running application.
type App struct {
	cfg    *config.Config
	store  *store.Store
	log    *zap.Logger
	engine *engine.Engine
	hooks  *hook.Runner

	source gesture.Source
	remote *gesture.RemoteSource
	camera *capture.CameraSource

	mu      sync.Mutex
	runCtx  context.Context
	init    *gesture.Initializer
	pumping bool
	work    sync.WaitGroup
}

// New builds an App. st may be nil, in which case nothing is journaled and
// the input mode is not persisted.
func New(cfg *config.Config, st *store.Store, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, store: st, log: log}

	mgr := hook.NewManager(cfg.Hooks.Dir)
	if err := mgr.Discover(); err != nil {
		log.Warn("hook discovery failed", zap.String("dir", cfg.Hooks.Dir), zap.Error(err))
	} else if n := len(mgr.List()); n > 0 {
		log.Info("hooks loaded", zap.Int("count", n), zap.String("dir", cfg.Hooks.Dir))
	}
	a.hooks = hook.NewRunner(mgr, hook.NewExecutor(cfg.Hooks.Timeout), log.Named("hook"))

	ec := cfg.Engine()
	if st != nil {
		if saved, err := st.Settings().Get(store.SettingInputMode); err == nil {
			if m, err := input.ParseMode(saved); err == nil {
				ec.Mode = m
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Warn("failed to read saved input mode", zap.Error(err))
		}
	}

	engOpts := []engine.Option{
		engine.WithLogger(log.Named("engine")),
		engine.WithSessionStart(a.sessionStarted),
	}
	if st != nil {
		engOpts = append(engOpts, engine.WithJournal(&storeJournal{sessions: st.Sessions()}))
	}
	eng, err := engine.New(ec, append(engOpts, o.engine...)...)
	if err != nil {
		return nil, err
	}
	a.engine = eng
	eng.OnCompletion(a.completed)

	if err := a.setupSource(o.source); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) setupSource(src gesture.Source) error {
	if src != nil {
		a.source = src
		if r, ok := src.(*gesture.RemoteSource); ok {
			a.remote = r
		}
		return nil
	}

	switch a.cfg.Gesture.Source {
	case config.SourceCamera:
		det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
		if err != nil {
			// Loading fails later and the initializer falls back to pointer input.
			a.log.Warn("hand landmarker unavailable", zap.Error(err))
			a.source = &unavailable{err: err}
			return nil
		}
		cc := a.cfg.Camera
		a.camera = capture.NewCameraSource(capture.NewCamera(cc.Device), det, capture.SourceConfig{
			IdleFPS:         cc.IdleFPS,
			ActiveFPS:       cc.ActiveFPS,
			MotionThreshold: cc.MotionThreshold,
			IdleAfter:       cc.IdleAfter,
			Preview:         cc.Preview,
		}, a.log.Named("camera"))
		a.source = a.camera
	case config.SourceRemote:
		a.remote = gesture.NewRemoteSource()
		a.source = a.remote
	default:
		return fmt.Errorf("%w: gesture source %q", config.ErrInvalid, a.cfg.Gesture.Source)
	}
	return nil
}

// Engine returns the session engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.store
}

// Remote returns the remote gesture source, or nil when frames come from a camera.
func (a *App) Remote() *gesture.RemoteSource {
	return a.remote
}

// Preview returns the latest camera JPEG, or nil.
func (a *App) Preview() []byte {
	if a.camera == nil {
		return nil
	}
	return a.camera.Preview()
}

// GestureState reports how far the gesture source got in loading.
func (a *App) GestureState() (gesture.State, error) {
	a.mu.Lock()
	init := a.init
	a.mu.Unlock()
	if init == nil {
		return gesture.StateUninitialized, nil
	}
	return init.State()
}

// SetMode switches the input modality and remembers the choice. Selecting
// gesture input starts loading the gesture source.
func (a *App) SetMode(m input.Mode) error {
	if err := a.engine.SetMode(m); err != nil {
		return err
	}
	if a.store != nil {
		if err := a.store.Settings().Set(store.SettingInputMode, string(m)); err != nil {
			a.log.Warn("failed to save input mode", zap.Error(err))
		}
	}
	if m == input.ModeGesture {
		a.startGesture()
	}
	return nil
}

// Run ticks the engine until ctx ends, then stops the gesture source and
// waits for running hooks.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.runCtx = ctx
	a.mu.Unlock()

	if a.engine.Mode() == input.ModeGesture {
		a.startGesture()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.engine.Run(ctx)
	})
	err := g.Wait()

	if serr := a.source.Stop(); serr != nil {
		a.log.Warn("failed to stop gesture source", zap.Error(serr))
	}
	a.work.Wait()
	return err
}

// Close ends the current session.
func (a *App) Close() {
	a.engine.Close()
}

// startGesture loads the gesture source once Run has started. A failed
// load is retried on the next call.
func (a *App) startGesture() {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx := a.runCtx
	if ctx == nil {
		return
	}
	if a.init != nil {
		if state, _ := a.init.State(); state != gesture.StateFailed {
			return
		}
	}

	init := gesture.NewInitializer(a.source)
	a.init = init
	init.Start(ctx)

	a.work.Add(1)
	go func() {
		defer a.work.Done()
		a.awaitGesture(ctx, init)
	}()
}

func (a *App) awaitGesture(ctx context.Context, init *gesture.Initializer) {
	err := init.Wait(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.log.Warn("gesture input unavailable", zap.Error(err))
		if a.cfg.Gesture.FallbackToPointer && a.engine.Mode() == input.ModeGesture {
			a.log.Info("falling back to pointer input")
			if err := a.engine.SetMode(input.ModePointer); err != nil {
				a.log.Error("failed to fall back to pointer input", zap.Error(err))
			}
		}
		return
	}

	a.mu.Lock()
	if a.pumping {
		a.mu.Unlock()
		return
	}
	a.pumping = true
	a.mu.Unlock()

	a.log.Info("gesture input ready")
	a.pump(ctx)

	a.mu.Lock()
	a.pumping = false
	a.mu.Unlock()
}

// pump forwards frames from the source to the engine until the source
// stops. A frame error counts as "no hand".
func (a *App) pump(ctx context.Context) {
	for {
		f, err := a.source.Next(ctx)
		switch {
		case err == nil:
			a.engine.PushFrame(f)
		case ctx.Err() != nil,
			errors.Is(err, gesture.ErrSourceStopped),
			errors.Is(err, gesture.ErrNotStarted):
			return
		default:
			a.log.Debug("gesture frame failed", zap.Error(err))
			a.engine.PushFrame(gesture.Frame{})
			select {
			case <-ctx.Done():
				return
			case <-time.After(frameRetry):
			}
		}
	}
}

func (a *App) sessionStarted(r engine.Record) {
	a.fire(hook.Request{
		Event:   hook.EventSessionStart,
		Session: r.ID,
		Policy:  r.Policy,
		At:      r.StartedAt,
	})
}

func (a *App) completed(n engine.Notice) {
	c := n.Completion
	a.fire(hook.Request{
		Event:    hook.EventCompletion,
		Session:  n.Session,
		Body:     c.Body,
		Zone:     c.Zone,
		Policy:   c.Policy,
		Progress: c.Progress,
		At:       c.At,
	})
}

// fire runs hooks in the background. Hooks outlive the engine tick that
// triggered them but not the App's Run.
func (a *App) fire(req hook.Request) {
	a.mu.Lock()
	ctx := a.runCtx
	a.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	a.work.Add(1)
	go func() {
		defer a.work.Done()
		a.hooks.Run(ctx, req)
	}()
}

// unavailable is a gesture source that always fails to start.
type unavailable struct{ err error }

func (u *unavailable) Start(context.Context) error { return u.err }
func (u *unavailable) Stop() error                 { return nil }
func (u *unavailable) Next(context.Context) (gesture.Frame, error) {
	return gesture.Frame{}, gesture.ErrNotStarted
}
