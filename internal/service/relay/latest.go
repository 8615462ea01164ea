package relay

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/service/common"
)

// LatestOptions controls the latest subcommand.
type LatestOptions struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Address overrides the relay address from the configuration.
	Address string
}

// PrintLatest fetches the latest alerts from a running relay and writes one line per category.
func PrintLatest(ctx context.Context, opts *LatestOptions, w io.Writer) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	address := settings.Sinks.Remote.Address
	if opts.Address != "" {
		address = opts.Address
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(settings.Sinks.Remote.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	events, err := client.Latest(ctx)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		_, err = fmt.Fprintln(w, "no alerts")

		return err
	}

	for _, event := range events {
		source := "unknown"
		if event.Source != nil {
			source = event.Source.Username + "@" + event.Source.Hostname
		}

		_, err = fmt.Fprintf(w, "%s\t%-8s\t%-8s\t%s\t%s\n",
			event.Timestamp.Local().Format(time.DateTime),
			event.Category,
			event.Severity,
			source,
			event.Message,
		)
		if err != nil {
			return fmt.Errorf("write alert: %w", err)
		}
	}

	return nil
}
