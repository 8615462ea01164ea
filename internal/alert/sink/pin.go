package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oshokin/ergomon/internal/logger"
)

// Pin is a digital output driving a buzzer or LED.
type Pin interface {
	// Set drives the pin high when on is true.
	Set(ctx context.Context, on bool) error
	// Close releases the pin.
	Close() error
}

const (
	// sysfsExportDelay gives udev time to fix permissions on a freshly exported pin.
	sysfsExportDelay = 100 * time.Millisecond
	// sysfsFilePermissions is passed to os.WriteFile; sysfs attributes already exist.
	sysfsFilePermissions = 0o644
)

// GPIOPin drives a pin through the sysfs GPIO interface.
type GPIOPin struct {
	// root is the sysfs GPIO directory, /sys/class/gpio on a Raspberry Pi.
	root string
	// number is the BCM pin number.
	number int
}

// OpenGPIOPin exports the pin, configures it as an output and drives it low.
func OpenGPIOPin(ctx context.Context, root string, number int) (*GPIOPin, error) {
	p := &GPIOPin{
		root:   root,
		number: number,
	}

	if _, err := os.Stat(p.path()); errors.Is(err, os.ErrNotExist) {
		if err = p.write(filepath.Join(root, "export"), strconv.Itoa(number)); err != nil {
			return nil, err
		}

		time.Sleep(sysfsExportDelay)
	}

	if err := p.write(filepath.Join(p.path(), "direction"), "out"); err != nil {
		return nil, err
	}

	if err := p.Set(ctx, false); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "GPIO pin ready", "pin", number)

	return p, nil
}

// Set writes the pin value.
func (p *GPIOPin) Set(_ context.Context, on bool) error {
	value := "0"
	if on {
		value = "1"
	}

	return p.write(filepath.Join(p.path(), "value"), value)
}

// Close drives the pin low and unexports it.
func (p *GPIOPin) Close() error {
	return errors.Join(
		p.Set(context.Background(), false),
		p.write(filepath.Join(p.root, "unexport"), strconv.Itoa(p.number)),
	)
}

func (p *GPIOPin) path() string {
	return filepath.Join(p.root, "gpio"+strconv.Itoa(p.number))
}

func (p *GPIOPin) write(path, value string) error {
	if err := os.WriteFile(path, []byte(value), sysfsFilePermissions); err != nil {
		return fmt.Errorf("write gpio %d %s: %w", p.number, filepath.Base(path), err)
	}

	return nil
}

// LogPin logs pin transitions instead of touching hardware.
type LogPin struct{}

// Set logs the transition.
func (LogPin) Set(ctx context.Context, on bool) error {
	if on {
		logger.Debug(ctx, "BEEP")
	} else {
		logger.Debug(ctx, "SILENCE")
	}

	return nil
}

// Close does nothing.
func (LogPin) Close() error {
	return nil
}
