package app

import (
	"github.com/dshills/smoothzoom/internal/config"
	"github.com/dshills/smoothzoom/internal/config/watcher"
	"github.com/dshills/smoothzoom/internal/zoom"
)

// startWatcher reloads the configuration whenever the config file changes.
func (app *Application) startWatcher() error {
	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		app.log.Warn("%v", &ComponentError{Component: "watcher", Err: err})
	}))
	if err != nil {
		return err
	}
	if err := w.Watch(app.configPath); err != nil {
		_ = w.Close()
		return err
	}

	w.OnChange(app.onConfigChange)
	app.watcher = w
	app.log.Debug("watching %s", app.configPath)
	return nil
}

// onConfigChange runs on the watcher goroutine. The file is parsed here;
// the result is applied on the frame loop.
func (app *Application) onConfigChange(ev watcher.Event) {
	if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
		app.log.Info("config %s %s, keeping current settings", ev.Path, ev.Op)
		return
	}

	cfg, err := app.reloadConfig()
	if err != nil {
		err = &ComponentError{Component: "reload", Action: ev.Path, Err: err}
		app.log.Warn("%v", err)
		app.loop.Post(func() {
			app.notify("config error, keeping current settings")
		})
		return
	}

	app.loop.Post(func() {
		app.applyConfig(cfg)
	})
}

// reloadConfig reads the configuration again from defaults, the file and
// the environment, then reapplies the overrides given at startup.
func (app *Application) reloadConfig() (*config.Config, error) {
	cfg, err := config.Load(app.configPath)
	if err != nil {
		return nil, err
	}
	if app.overrides != nil {
		if err := app.overrides(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyConfig applies the settings that can change while running: the
// zoom mode and sensitivity, the zoom limits and the log level. Debounce,
// frame rate, zoom snap and the policy script take effect on restart.
func (app *Application) applyConfig(cfg *config.Config) {
	old := app.cfg

	app.handler.SetSensitivity(cfg.Zoom.Sensitivity)
	app.handler.SetMode(cfg.Zoom.Mode)
	if cfg.Zoom.Mode != zoom.ModeOff {
		app.lastMode = cfg.Zoom.Mode
	}

	app.view.SetZoomLimits(cfg.Map.MinZoom, cfg.Map.MaxZoom)

	if level, err := ParseLogLevel(cfg.Logging.Level); err == nil {
		app.log.SetLevel(level)
	}

	if cfg.Zoom.Debounce != old.Zoom.Debounce || cfg.Zoom.FrameRate != old.Zoom.FrameRate ||
		cfg.Map.ZoomSnap != old.Map.ZoomSnap || cfg.Map.PolicyScript != old.Map.PolicyScript {
		app.log.Info("some settings changed and take effect on restart")
	}

	app.cfg = cfg
	app.notify("config reloaded")
}
