package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/raaihank/clip-sentinel/internal/config"
	"github.com/raaihank/clip-sentinel/internal/detector"
	"github.com/raaihank/clip-sentinel/internal/logger"
	"github.com/raaihank/clip-sentinel/internal/pasteboard"
	"github.com/raaihank/clip-sentinel/internal/patterns"
	"github.com/raaihank/clip-sentinel/internal/recognizer"
	"github.com/raaihank/clip-sentinel/internal/server"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Exit codes of one-shot mode
const (
	exitDetected = 0
	exitError    = 1
	exitNone     = 2
)

type options struct {
	configPath  string
	showVersion bool
	serve       bool
	preset      string
	want        string
	tolerate    string
	text        string
	textSet     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitError
	}

	// Show version and exit
	if opts.showVersion {
		fmt.Fprintf(stdout, "clip-sentinel %s (commit: %s, built: %s)\n", version, commit, date)
		return exitDetected
	}

	// Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitError
	}
	if opts.textSet {
		cfg.Clipboard.Source = "static"
		cfg.Clipboard.Text = opts.text
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return exitError
	}
	defer func() { _ = log.Sync() }()

	det, err := newDetector(cfg, log)
	if err != nil {
		log.Error("Failed to create detector", zap.Error(err))
		return exitError
	}

	if opts.serve {
		return serve(cfg, det, log)
	}
	return detectOnce(opts, det, log, stdout, stderr)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("clipsentinel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.serve, "serve", false, "Run the HTTP detection server")
	fs.StringVar(&opts.preset, "preset", "", "Named preset to detect with")
	fs.StringVar(&opts.want, "want", "", "Comma separated kinds to detect")
	fs.StringVar(&opts.tolerate, "tolerate", "", "Comma separated kinds allowed alongside the wanted ones")
	fs.StringVar(&opts.text, "text", "", "Inspect this text instead of the system clipboard")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "text" {
			opts.textSet = true
		}
	})

	if opts.preset != "" && (opts.want != "" || opts.tolerate != "") {
		fmt.Fprintln(stderr, "-preset cannot be combined with -want or -tolerate")
		return nil, errors.New("conflicting flags")
	}
	return opts, nil
}

// newDetector wires the text source, the recognizer client and the
// configured presets together
func newDetector(cfg *config.Config, log *logger.Logger) (*detector.Detector, error) {
	client, err := recognizer.New(recognizer.Config{
		Endpoint: cfg.Recognizer.Endpoint,
		Token:    cfg.Recognizer.Token,
		Timeout:  cfg.Recognizer.Timeout,
	}, log.WithComponent("recognizer").Logger)
	if err != nil {
		return nil, err
	}

	var reader pasteboard.TextReader = pasteboard.SystemClipboard{}
	if cfg.Clipboard.Source == "static" {
		reader = pasteboard.StaticText(cfg.Clipboard.Text)
	}

	presets, err := cfg.DetectorPresets()
	if err != nil {
		return nil, err
	}

	source := pasteboard.New(reader, client, log.WithComponent("pasteboard"))
	return detector.New(source, log.WithComponent("detector"), presets...)
}

func detectOnce(opts *options, det *detector.Detector, log *logger.Logger, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		detections []patterns.Detection
		err        error
	)
	if opts.want != "" || opts.tolerate != "" {
		want, perr := patterns.ParseKinds(splitList(opts.want))
		if perr != nil {
			fmt.Fprintf(stderr, "Invalid -want: %v\n", perr)
			return exitError
		}
		tolerate, perr := patterns.ParseKinds(splitList(opts.tolerate))
		if perr != nil {
			fmt.Fprintf(stderr, "Invalid -tolerate: %v\n", perr)
			return exitError
		}
		detections, err = det.Detect(ctx, want, tolerate)
	} else {
		preset := opts.preset
		if preset == "" {
			preset = detector.PresetNumber
		}
		detections, err = det.DetectPreset(ctx, preset)
	}
	if err != nil {
		log.Error("Detection failed", zap.Error(err))
		fmt.Fprintf(stderr, "Detection failed: %v\n", err)
		return exitError
	}

	encoded, err := patterns.EncodeDetections(detections)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to encode detections: %v\n", err)
		return exitError
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(server.DetectResponse{Detected: len(detections) > 0, Detections: encoded}); err != nil {
		fmt.Fprintf(stderr, "Failed to write output: %v\n", err)
		return exitError
	}

	if len(detections) == 0 {
		return exitNone
	}
	return exitDetected
}

func serve(cfg *config.Config, det *detector.Detector, log *logger.Logger) int {
	server.Version = version

	log.Info("Starting clip-sentinel",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	srv, err := server.New(cfg, det, log)
	if err != nil {
		log.Error("Failed to create server", zap.Error(err))
		return exitError
	}

	// Presets follow the config file while the server runs
	err = config.Watch(func(newConfig *config.Config) {
		presets, err := newConfig.DetectorPresets()
		if err == nil {
			err = det.SetPresets(presets)
		}
		if err != nil {
			log.Error("Failed to reload presets", zap.Error(err))
			return
		}
		log.Info("Presets reloaded", zap.Int("presets", len(det.Presets())))
	}, func(err error) {
		log.Warn("Ignoring invalid configuration change", zap.Error(err))
	})
	if err != nil {
		log.Debug("Configuration hot reload disabled", zap.Error(err))
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
			return exitError
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			return exitError
		}

		log.Info("Server shutdown complete")
	}
	return 0
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
