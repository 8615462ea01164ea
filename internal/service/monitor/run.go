package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/ergomon/internal/alert"
	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/logger"
	"github.com/oshokin/ergomon/internal/service/common"
)

// StdinPath selects standard input as the frame source.
const StdinPath = "-"

// Options controls the monitor run.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// InputPath is the NDJSON frame file, StdinPath or empty for standard input.
	InputPath string
	// Replay drives the clock from frame timestamps instead of wall time.
	Replay bool
	// LogLevel overrides the configured log level when set.
	LogLevel string
}

// Stats summarises a finished run.
type Stats struct {
	// Frames is the number of frames read.
	Frames int
	// Processed is the number of frames analyzed after skipping.
	Processed int
	// Malformed is the number of lines that failed to decode.
	Malformed int
	// Alerts is the number of accepted alerts.
	Alerts int
}

// Run analyzes frames until the input ends or ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	if err = logger.Setup(level, logger.Format(cfg.LogFormat)); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	ctx = logger.WithName(ctx, "monitor")

	input, err := openInput(opts.InputPath)
	if err != nil {
		return err
	}

	defer func() {
		_ = input.Close()
	}()

	var clk clock.Clock = clock.Real{}
	if opts.Replay {
		clk = clock.NewManual(replayEpoch)
	}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Alert source unknown", "error", err)
	}

	sinks, err := buildSinks(ctx, &cfg.Sinks, clk)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := sinks.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to release sinks", "error", closeErr)
		}
	}()

	arbiter := alert.New(ctx, alert.Options{
		Config: cfg.Alert,
		Clock:  clk,
		Source: actor,
	})

	for _, s := range sinks.sinks {
		arbiter.Register(s)
	}

	engine, err := NewEngine(cfg, clk, arbiter)
	if err != nil {
		arbiter.Close()

		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	loopCtx, stopHub := context.WithCancel(groupCtx)
	defer stopHub()

	if sinks.web != nil {
		group.Go(func() error {
			return sinks.web.Serve(loopCtx, cfg.Sinks.Web.ListenAddress)
		})
	}

	var stats Stats

	group.Go(func() error {
		// The dashboard stops with the input.
		defer stopHub()

		return process(loopCtx, &processor{
			engine:    engine,
			reader:    NewFrameReader(input),
			clock:     clk,
			fps:       cfg.Camera.FPS,
			skip:      cfg.Performance.SkipFrames,
			publisher: sinks.web,
		}, &stats)
	})

	err = group.Wait()

	// Pending deliveries finish before the sinks are released.
	arbiter.Close()

	logger.InfoKV(ctx, "Monitor stopped",
		"frames", stats.Frames,
		"processed", stats.Processed,
		"malformed", stats.Malformed,
		"alerts", stats.Alerts,
	)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// openInput opens the frame source.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == StdinPath {
		return io.NopCloser(os.Stdin), nil
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open frames: %w", err)
	}

	return file, nil
}
