// Package main is the entry point for the smoothzoom terminal map viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/smoothzoom/internal/app"
	"github.com/dshills/smoothzoom/internal/config"
	"github.com/dshills/smoothzoom/internal/renderer/backend"
	"github.com/dshills/smoothzoom/internal/zoom"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	configPath  string
	logLevel    string
	logFile     string
	mode        string
	sensitivity float64
}

func main() {
	os.Exit(run())
}

func run() int {
	f, set := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}
	if err := applyFlags(cfg, f, set); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The terminal owns stderr while the map is shown.
	var out io.Writer = io.Discard
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer file.Close()
		out = file
	}
	cfgLog := app.DefaultLoggerConfig()
	cfgLog.Output = out
	logger := app.NewLogger(cfgLog)

	if cfg.Source != "" {
		logger.Info("config loaded from %s", cfg.Source)
	}

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	application, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: f.configPath,
		Backend:    term,
		Logger:     logger,
		Overrides:  func(c *config.Config) error {
			return applyFlags(c, f, set)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags parses the command line and reports which flags were given.
func parseFlags() (flags, map[string]bool) {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&f.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.logFile, "log-file", "", "Append logs to this file")
	flag.StringVar(&f.mode, "mode", "true", "Smooth zoom: true (cursor), center or false")
	flag.Float64Var(&f.sensitivity, "sensitivity", zoom.DefaultSensitivity, "Wheel sensitivity multiplier")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "smoothzoom - terminal map viewer with smooth wheel zoom\n\n")
		fmt.Fprintf(os.Stderr, "Usage: smoothzoom [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  wheel       zoom            arrows  pan\n")
		fmt.Fprintf(os.Stderr, "  c           cursor/center   s       smooth zoom on/off\n")
		fmt.Fprintf(os.Stderr, "  + / -       sensitivity     r       reset view\n")
		fmt.Fprintf(os.Stderr, "  q, Esc      quit\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment variables prefixed SMOOTHZOOM_ override the config file.\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("smoothzoom %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) {
		set[fl.Name] = true
	})
	return f, set
}

// applyFlags overrides cfg with the flags given on the command line, the
// last configuration layer, and revalidates it.
func applyFlags(cfg *config.Config, f flags, set map[string]bool) error {
	if set["log-level"] {
		cfg.Logging.Level = f.logLevel
	}
	if set["mode"] {
		m, err := zoom.ParseMode(f.mode)
		if err != nil {
			return err
		}
		cfg.Zoom.Mode = m
	}
	if set["sensitivity"] {
		cfg.Zoom.Sensitivity = f.sensitivity
	}
	return cfg.Validate()
}
