package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/ergomon/internal/alert"
	"github.com/oshokin/ergomon/internal/alert/sink"
	"github.com/oshokin/ergomon/internal/clock"
	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/logger"
	"github.com/oshokin/ergomon/internal/service/common"
)

// sinkSet holds the sinks built from configuration and what must be released.
type sinkSet struct {
	// sinks are registered with the arbiter.
	sinks []alert.Sink
	// web is the dashboard hub, nil when disabled.
	web *sink.Web
	// closers release pins and connections.
	closers []func() error
}

// Close releases every resource held by the sinks.
func (s *sinkSet) Close() error {
	errs := make([]error, 0, len(s.closers))
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

// buildSinks creates the enabled sinks. The arbiter logs every accepted alert
// itself, so an empty set is valid.
func buildSinks(ctx context.Context, cfg *config.SinksConfig, clk clock.Clock) (*sinkSet, error) {
	set := new(sinkSet)

	if cfg.Audio.Enabled {
		audio, err := sink.NewAudio(cfg.Audio, nil)
		if err != nil {
			return nil, fmt.Errorf("create audio sink: %w", err)
		}

		set.sinks = append(set.sinks, audio)
	}

	if cfg.Hardware.Enabled {
		var pin sink.Pin = sink.LogPin{}

		if !cfg.Hardware.Simulate {
			gpio, err := sink.OpenGPIOPin(ctx, cfg.Hardware.GPIORoot, cfg.Hardware.Pin)
			if err != nil {
				_ = set.Close()

				return nil, fmt.Errorf("open gpio pin: %w", err)
			}

			pin = gpio
		}

		hardware := sink.NewHardware(pin)
		set.sinks = append(set.sinks, hardware)
		set.closers = append(set.closers, hardware.Close)
	}

	if cfg.Remote.Enabled {
		client, err := common.Dial(ctx, cfg.Remote.Address, common.WithCallTimeout(cfg.Remote.Timeout))
		if err != nil {
			_ = set.Close()

			return nil, fmt.Errorf("dial relay: %w", err)
		}

		set.sinks = append(set.sinks, sink.NewRemote(client))
		set.closers = append(set.closers, client.Close)
	}

	if cfg.Web.Enabled {
		set.web = sink.NewWeb(cfg.Web, clk)
		set.sinks = append(set.sinks, set.web)
	}

	names := make([]string, 0, len(set.sinks))
	for _, s := range set.sinks {
		names = append(names, s.Name())
	}

	logger.InfoKV(ctx, "Sinks ready", "sinks", names)

	return set, nil
}
