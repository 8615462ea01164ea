package alert

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/logger"
)

// Options configure an Arbiter.
type Options struct {
	// Config holds cooldowns and pool sizes.
	Config config.AlertConfig
	// Clock is the shared time source. Defaults to clock.Real.
	Clock clock.Clock
	// Source is attached to every event, nil when unknown.
	Source *domain.Actor
}

// delivery is one event bound for one sink.
type delivery struct {
	// sink receives the event.
	sink Sink
	// event is the accepted alert.
	event *domain.Event
}

// Arbiter gates alerts by category cooldown and dispatches accepted ones.
type Arbiter struct {
	// clock is the time source shared with the analyzers.
	clock clock.Clock
	// cooldown is the default cooldown.
	cooldown time.Duration
	// cooldowns overrides cooldown per category.
	cooldowns map[domain.Category]time.Duration
	// source is attached to every event.
	source *domain.Actor

	// mu guards lastFired, sinks and closed.
	mu sync.Mutex
	// lastFired maps a category to its last accepted firing.
	lastFired map[domain.Category]time.Time
	// sinks receive accepted events.
	sinks []Sink
	// closed is set once Close starts draining.
	closed bool

	// queue holds pending deliveries.
	queue chan delivery
	// workers tracks pool goroutines.
	workers sync.WaitGroup
}

// New creates an arbiter and starts its delivery workers. Deliveries run with
// a context detached from ctx's cancellation, so in-flight sinks are never cut off.
func New(ctx context.Context, opts Options) *Arbiter {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	cooldowns := make(map[domain.Category]time.Duration, len(opts.Config.Cooldowns))
	for name, cooldown := range opts.Config.Cooldowns {
		cooldowns[domain.Category(name)] = cooldown
	}

	a := &Arbiter{
		clock:     clk,
		cooldown:  opts.Config.Cooldown,
		cooldowns: cooldowns,
		source:    opts.Source.Clone(),
		lastFired: make(map[domain.Category]time.Time),
		queue:     make(chan delivery, max(1, opts.Config.QueueSize)),
	}

	ctx = logger.WithName(context.WithoutCancel(ctx), "dispatch")

	for range max(1, opts.Config.Workers) {
		a.workers.Go(func() {
			for d := range a.queue {
				a.deliver(ctx, d)
			}
		})
	}

	return a
}

// Register adds a sink. Events accepted afterwards are delivered to it.
func (a *Arbiter) Register(sink Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sinks = append(a.sinks, sink)
}

// CanFire reports whether the category is outside its cooldown.
func (a *Arbiter) CanFire(category domain.Category) bool {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.canFire(category, now)
}

// Fire records and dispatches an alert unless the category is cooling down
// or the arbiter is closed. It never blocks on sinks and reports whether the
// alert was accepted.
func (a *Arbiter) Fire(ctx context.Context, category domain.Category, message string, severity domain.Severity) bool {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || !a.canFire(category, now) {
		return false
	}

	a.lastFired[category] = now

	event := domain.NewEvent(category, message, severity, now, a.source)

	logger.InfoKV(ctx, "Alert fired",
		"id", event.ID.String(),
		"category", category,
		"severity", severity,
		"message", message,
	)

	for _, sink := range a.sinks {
		select {
		case a.queue <- delivery{sink: sink, event: event}:
		default:
			logger.WarnKV(ctx, "Dispatch queue is full, dropping delivery",
				"sink", sink.Name(),
				"category", category,
			)
		}
	}

	return true
}

// Reset clears the cooldown of the given categories, or of all categories when none are given.
func (a *Arbiter) Reset(categories ...domain.Category) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(categories) == 0 {
		clear(a.lastFired)

		return
	}

	for _, category := range categories {
		delete(a.lastFired, category)
	}
}

// LastFired returns when the category last fired.
func (a *Arbiter) LastFired(category domain.Category) (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	fired, ok := a.lastFired[category]

	return fired, ok
}

// Sinks returns the registered sinks.
func (a *Arbiter) Sinks() []Sink {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.sinks)
}

// Close stops accepting alerts and waits for queued deliveries to finish.
func (a *Arbiter) Close() {
	a.mu.Lock()

	if a.closed {
		a.mu.Unlock()

		return
	}

	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.workers.Wait()
}

func (a *Arbiter) canFire(category domain.Category, now time.Time) bool {
	last, ok := a.lastFired[category]
	if !ok {
		return true
	}

	return now.Sub(last) >= a.cooldownOf(category)
}

func (a *Arbiter) cooldownOf(category domain.Category) time.Duration {
	if cooldown, ok := a.cooldowns[category]; ok {
		return cooldown
	}

	return a.cooldown
}

// deliver runs one sink call, containing its errors and panics.
func (a *Arbiter) deliver(ctx context.Context, d delivery) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Sink panicked",
				"sink", d.sink.Name(),
				"category", d.event.Category,
				"panic", r,
			)
		}
	}()

	if err := d.sink.Deliver(ctx, d.event.Clone()); err != nil {
		logger.ErrorKV(ctx, "Failed to deliver alert",
			"sink", d.sink.Name(),
			"category", d.event.Category,
			"error", err,
		)

		return
	}

	logger.DebugKV(ctx, "Alert delivered",
		"sink", d.sink.Name(),
		"category", d.event.Category,
	)
}
