// Package app provides the terminal map viewer: it wires the map view,
// the smooth zoom handler, the renderer and the configuration watcher
// together and runs them on a single frame loop.
package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dshills/smoothzoom/internal/config"
	"github.com/dshills/smoothzoom/internal/config/watcher"
	"github.com/dshills/smoothzoom/internal/frame"
	"github.com/dshills/smoothzoom/internal/mapview"
	"github.com/dshills/smoothzoom/internal/policy"
	"github.com/dshills/smoothzoom/internal/renderer"
	"github.com/dshills/smoothzoom/internal/renderer/backend"
	"github.com/dshills/smoothzoom/internal/zoom"
)

// Application owns one map view and everything that drives it. After Run
// starts, all view, handler and renderer state is touched only on the
// frame loop goroutine.
type Application struct {
	cfg *config.Config
	log *Logger

	backend  backend.Backend
	view     *mapview.View
	loop     *frame.Loop
	handler  *zoom.Handler
	renderer *renderer.Renderer

	metrics *Metrics

	lua        *policy.Lua
	watcher    *watcher.Watcher
	configPath string

	overrides func(*config.Config) error

	// lastMode is restored when smooth zoom is toggled back on.
	lastMode zoom.Mode
	dirty    bool

	cancel  context.CancelFunc
	running atomic.Bool
}

// Options configures the application.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config

	// ConfigPath is reloaded when it changes on disk. Empty disables
	// live reload.
	ConfigPath string

	// Backend is the terminal. Run fails without one.
	Backend backend.Backend

	// Logger defaults to a stderr logger at the configured level.
	Logger *Logger

	// Overrides is applied to every reloaded configuration, after the
	// file and environment layers. Command line flags use it to stay in
	// force across live reloads.
	Overrides func(*config.Config) error
}

// New creates an application. The frame loop, zoom handler and view are
// ready for use; the terminal is not touched until Run.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	log := opts.Logger
	if log == nil {
		log = NewLogger(DefaultLoggerConfig())
	}
	if level, err := ParseLogLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	app := &Application{
		cfg:        cfg,
		log:        log,
		backend:    opts.Backend,
		configPath: opts.ConfigPath,
		overrides:  opts.Overrides,
		lastMode:   zoom.ModeCursor,
		metrics:    NewMetrics(),
	}
	if cfg.Zoom.Mode != zoom.ModeOff {
		app.lastMode = cfg.Zoom.Mode
	}

	limit, err := app.buildPolicy()
	if err != nil {
		return nil, &InitError{Component: "policy", Err: err}
	}

	app.view = mapview.New(mapview.Options{
		Center:  cfg.Center(),
		Zoom:    cfg.Map.Zoom,
		MinZoom: cfg.Map.MinZoom,
		MaxZoom: cfg.Map.MaxZoom,
		Policy:  limit,
	})
	app.view.OnMove(func(mapview.MoveEvent) {
		app.dirty = true
	})

	app.loop = frame.NewLoop(frame.WithFPS(cfg.Zoom.FrameRate))

	zlog := log.WithComponent("zoom").WithField("view", app.view.ID())
	app.handler = zoom.New(app.view, app.loop, append(cfg.ZoomOptions(), zoom.WithLogger(zlog))...)

	return app, nil
}

// buildPolicy returns the zoom-limiting policy: the Lua script when one
// is configured, falling back to snapping, otherwise snapping alone.
func (app *Application) buildPolicy() (policy.Func, error) {
	snap := policy.Snap(app.cfg.Map.ZoomSnap)
	if app.cfg.Map.PolicyScript == "" {
		return snap, nil
	}

	l, err := policy.LoadLuaFile(app.cfg.Map.PolicyScript, policy.WithFallback(snap))
	if err != nil {
		return nil, err
	}
	app.lua = l
	app.log.Info("zoom policy loaded from %s", app.cfg.Map.PolicyScript)
	return l.Func(), nil
}

// SetBackend sets the terminal backend. It has no effect while running.
func (app *Application) SetBackend(b backend.Backend) {
	if app.running.Load() {
		return
	}
	app.backend = b
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// View returns the map view.
func (app *Application) View() *mapview.View {
	return app.view
}

// Handler returns the smooth zoom handler.
func (app *Application) Handler() *zoom.Handler {
	return app.handler
}

// Loop returns the frame loop.
func (app *Application) Loop() *frame.Loop {
	return app.loop
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.log
}

// IsRunning reports whether Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Run initializes the terminal and processes input and frames until the
// user quits or ctx is cancelled. The frame loop cannot be restarted, so
// Run may only be called once.
func (app *Application) Run(ctx context.Context) error {
	if app.backend == nil {
		return ErrNoBackend
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	app.attach()
	if app.configPath != "" {
		if err := app.startWatcher(); err != nil {
			app.log.Warn("live reload disabled: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.cancel = cancel

	app.loop.OnFrame(app.onFrame)

	inputDone := make(chan struct{})
	go app.pollInput(inputDone)

	app.log.Info("map view %s running at %d fps", app.view.ID(), app.loop.FPS())
	err := app.loop.Run(ctx)

	app.shutdown()

	// Wake the input goroutine; its next Post fails and it exits.
	app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	<-inputDone

	return err
}

// attach creates the renderer, which sizes the view to the terminal.
func (app *Application) attach() {
	app.renderer = renderer.New(app.backend, app.view, app.handler)
	app.dirty = true
}

// onFrame redraws after the view moved and on every frame of a zoom
// animation.
func (app *Application) onFrame(dt time.Duration) {
	app.metrics.RecordFrame(dt, time.Second/time.Duration(app.loop.FPS()))
	if app.renderer == nil {
		return
	}
	if app.dirty || app.handler.State() != zoom.StateIdle {
		start := time.Now()
		app.renderer.Render()
		app.metrics.RecordRender(time.Since(start))
		app.dirty = false
	}
}

// pollInput forwards terminal events to the frame loop until the loop
// stops accepting them.
func (app *Application) pollInput(done chan<- struct{}) {
	defer close(done)
	for {
		ev := app.backend.PollEvent()
		ok := app.loop.Post(func() {
			app.metrics.RecordInput(ev.Type == backend.EventMouse && ev.MouseButton.IsWheel())
			if err := app.handleBackendEvent(ev); errors.Is(err, ErrQuit) {
				app.quit()
			}
		})
		if !ok {
			return
		}
	}
}

// quit stops the frame loop. Safe to call before Run.
func (app *Application) quit() {
	if app.cancel != nil {
		app.cancel()
	}
}

// shutdown releases everything Run and New acquired except the backend.
func (app *Application) shutdown() {
	app.handler.Disable()

	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.log.Warn("closing config watcher: %v", err)
		}
		app.watcher = nil
	}
	if app.lua != nil {
		if n := app.lua.Failures(); n > 0 {
			app.log.Warn("zoom policy script failed %d times", n)
		}
		app.lua.Close()
		app.lua = nil
	}

	stats := app.view.Stats()
	m := app.metrics.Snapshot()
	app.log.Info("map view %s stopped moves=%d resets=%d", app.view.ID(), stats.Moves, stats.Resets)
	app.log.Info("frames=%d late=%d avg_fps=%.1f renders=%d avg_render=%s wheel=%d",
		m.Frames, m.LateFrames, m.AvgFPS(), m.Renders, m.AvgRender, m.WheelEvents)
}
