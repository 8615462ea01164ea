package sink

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"

	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
	"github.com/oshokin/ergomon/internal/logger"
)

// Runner executes an external command and waits for it to finish.
type Runner func(ctx context.Context, name string, args ...string) error

// errNoCommand is returned when the audio sink has no command configured.
var errNoCommand = errors.New("no speech command configured")

// Audio speaks the voice text of an alert through a text-to-speech command.
type Audio struct {
	// command is the executable, espeak by default.
	command string
	// args are passed before the spoken text.
	args []string
	// run executes the command.
	run Runner
}

// NewAudio creates the speech sink. A nil runner executes the command with os/exec.
func NewAudio(cfg config.AudioSinkConfig, run Runner) (*Audio, error) {
	if cfg.Command == "" {
		return nil, errNoCommand
	}

	if run == nil {
		run = execRunner
	}

	return &Audio{
		command: cfg.Command,
		args:    slices.Clone(cfg.Args),
		run:     run,
	}, nil
}

// Name returns the sink name.
func (a *Audio) Name() string {
	return "audio"
}

// Deliver speaks the event and blocks until the command exits.
func (a *Audio) Deliver(ctx context.Context, event *domain.Event) error {
	text := domain.TemplateFor(event).Voice

	logger.DebugKV(ctx, "Speaking alert", "category", event.Category, "text", text)

	args := append(slices.Clone(a.args), text)
	if err := a.run(ctx, a.command, args...); err != nil {
		return fmt.Errorf("run %s: %w", a.command, err)
	}

	return nil
}

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
