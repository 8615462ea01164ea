package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oshokin/ergomon/internal/analysis/distance"
	"github.com/oshokin/ergomon/internal/analysis/geometry"
	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/logger"
)

// CalibrateOptions controls focal length calibration.
type CalibrateOptions struct {
	// ConfigPath is the settings file updated with the result.
	ConfigPath string
	// InputPath is the NDJSON frame file, StdinPath or empty for standard input.
	InputPath string
	// Distance is the measured distance from the camera in centimeters.
	Distance float64
	// DryRun computes the focal length without saving it.
	DryRun bool
}

// errNoFace is returned when no frame carries landmarks.
var errNoFace = errors.New("no face found in calibration frames")

// Calibrate derives the focal length from frames captured at a known distance
// and stores it in the configuration file. It returns the focal length.
func Calibrate(ctx context.Context, opts *CalibrateOptions) (float64, error) {
	ctx = logger.WithName(ctx, "calibrate")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}

	input, err := openInput(opts.InputPath)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = input.Close()
	}()

	width, samples, err := meanFaceWidth(ctx, NewFrameReader(input))
	if err != nil {
		return 0, err
	}

	focalLength, err := distance.CalibrateFocalLength(opts.Distance, width, cfg.Distance.KnownFaceWidth)
	if err != nil {
		return 0, fmt.Errorf("calibrate focal length: %w", err)
	}

	logger.InfoKV(ctx, "Focal length calibrated",
		"focal_length", focalLength,
		"face_width", width,
		"frames", samples,
		"distance", opts.Distance,
	)

	if opts.DryRun {
		return focalLength, nil
	}

	cfg.Camera.FocalLength = focalLength
	if err = config.Save(opts.ConfigPath, cfg); err != nil {
		return 0, fmt.Errorf("save settings: %w", err)
	}

	return focalLength, nil
}

// meanFaceWidth averages the landmark bounding box width over frames with a face.
func meanFaceWidth(ctx context.Context, reader *FrameReader) (float64, int, error) {
	var (
		sum     float64
		samples int
	)

	for {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}

		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			logger.WarnKV(ctx, "Skipping frame", "line", reader.Line(), "error", err)

			continue
		}

		if len(frame.Points) == 0 {
			continue
		}

		if width := geometry.BoundingBox(frame.XY()).Width(); width > 0 {
			sum += width
			samples++
		}
	}

	if samples == 0 {
		return 0, 0, errNoFace
	}

	return sum / float64(samples), samples, nil
}
