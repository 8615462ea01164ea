package monitor

import (
	"context"
	"errors"
	"io"

	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/logger"
)

// StatusPublisher receives dashboard status updates. *sink.Web implements it.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, status any) bool
}

// processor feeds frames from a reader into the engine.
type processor struct {
	// engine analyzes frames.
	engine *Engine
	// reader produces frames.
	reader *FrameReader
	// clock is moved by frame timestamps when it is a *clock.Manual.
	clock clock.Clock
	// fps spaces frames without timestamps on the replay clock.
	fps int
	// skip drops this many frames after each processed one.
	skip int
	// publisher receives status updates, nil when no dashboard runs.
	publisher StatusPublisher
}

// process runs until the reader is exhausted or ctx is canceled.
func process(ctx context.Context, p *processor, stats *Stats) error {
	manual, replay := p.clock.(*clock.Manual)
	skipped := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := p.reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			stats.Malformed++

			logger.WarnKV(ctx, "Skipping frame", "line", p.reader.Line(), "error", err)

			continue
		}

		stats.Frames++

		if replay {
			manual.Set(frameTime(frame, manual.Now(), p.fps))
		}

		if stats.Frames > 1 && skipped < p.skip {
			skipped++

			continue
		}

		skipped = 0
		stats.Processed++

		snapshot := p.engine.Process(ctx, frame)
		stats.Alerts += len(snapshot.Fired)

		logger.DebugKV(ctx, "Frame processed",
			"line", p.reader.Line(),
			"health", snapshot.Health,
			"fatigue", snapshot.Fatigue.Level.String(),
			"distance", snapshot.Distance.Distance,
			"posture", snapshot.Posture.Type,
		)

		if p.publisher != nil {
			p.publisher.PublishStatus(ctx, snapshot.View())
		}
	}
}
