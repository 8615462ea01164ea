package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the monitor and the relay.
// One value is loaded at startup and handed to each component's constructor.
type Config struct {
	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// LogFormat selects the log encoder: console or json.
	LogFormat string `yaml:"log_format"`
	// Camera holds the calibrated intrinsics and frame geometry.
	Camera CameraConfig `yaml:"camera"`
	// Landmarks maps detector indices to the eye and pose subsets.
	Landmarks LandmarkConfig `yaml:"landmarks"`
	// Fatigue holds eye-closure thresholds.
	Fatigue FatigueConfig `yaml:"fatigue"`
	// Distance holds viewing distance thresholds and anthropometric constants.
	Distance DistanceConfig `yaml:"distance"`
	// Posture holds head pitch thresholds.
	Posture PostureConfig `yaml:"posture"`
	// Alert controls cooldowns and the sink dispatch pool.
	Alert AlertConfig `yaml:"alert"`
	// Sinks enables and configures notification sinks.
	Sinks SinksConfig `yaml:"sinks"`
	// Performance holds frame throttling knobs.
	Performance PerformanceConfig `yaml:"performance"`
	// Relay configures the alert relay server and the remote sink target.
	Relay RelayConfig `yaml:"relay"`
}

// CameraConfig describes the camera the landmarks were produced from.
type CameraConfig struct {
	// Width is the frame width in pixels.
	Width int `yaml:"width"`
	// Height is the frame height in pixels.
	Height int `yaml:"height"`
	// FPS is the nominal frame rate, used to size the PERCLOS window.
	FPS int `yaml:"fps"`
	// FocalLength is the calibrated focal length in pixels.
	FocalLength float64 `yaml:"focal_length"`
}

// LandmarkConfig lists detector indices for the fixed landmark subsets.
type LandmarkConfig struct {
	// LeftEye holds 6 indices: corner, upper-left, upper-right, corner, lower-right, lower-left.
	LeftEye []int `yaml:"left_eye"`
	// RightEye holds 6 indices in the same order as LeftEye.
	RightEye []int `yaml:"right_eye"`
	// Pose holds nose tip, chin, left eye corner, right eye corner, left and right mouth corners.
	Pose []int `yaml:"pose"`
}

// FatigueConfig holds eye-closure and blink thresholds.
type FatigueConfig struct {
	// EARThreshold marks an eye as closed when the average EAR falls below it.
	EARThreshold float64 `yaml:"ear_threshold"`
	// PerclosThreshold is the moderate-fatigue PERCLOS bound.
	PerclosThreshold float64 `yaml:"perclos_threshold"`
	// PerclosWindow is the span of recent frames PERCLOS is computed over.
	PerclosWindow time.Duration `yaml:"perclos_window"`
	// BlinkMin is the lowest healthy blinks-per-minute value.
	BlinkMin int `yaml:"blink_min"`
	// BlinkMax is the highest healthy blinks-per-minute value.
	BlinkMax int `yaml:"blink_max"`
	// ClosedEyeDuration is the continuous closure after which the user is drowsy.
	ClosedEyeDuration time.Duration `yaml:"closed_eye_duration"`
}

// DistanceConfig holds viewing distance settings.
type DistanceConfig struct {
	// Method is the preferred estimation method: "eye" or "face".
	Method string `yaml:"method"`
	// WarningDistance is the distance in centimeters below which the user is too close.
	WarningDistance float64 `yaml:"warning_distance"`
	// WarningDuration is how long the user must stay too close before it counts.
	WarningDuration time.Duration `yaml:"warning_duration"`
	// KnownFaceWidth is the average face width in centimeters.
	KnownFaceWidth float64 `yaml:"known_face_width"`
	// KnownEyeDistance is the average inter-eye distance in centimeters.
	KnownEyeDistance float64 `yaml:"known_eye_distance"`
	// SmoothingWindow is the number of valid samples averaged into the published distance.
	SmoothingWindow int `yaml:"smoothing_window"`
}

// PostureConfig holds head posture thresholds in degrees.
type PostureConfig struct {
	// PitchThresholdDown classifies pitch above it as head down.
	PitchThresholdDown float64 `yaml:"pitch_threshold_down"`
	// PitchThresholdUp classifies pitch below it as head up.
	PitchThresholdUp float64 `yaml:"pitch_threshold_up"`
	// WarningDuration is how long a bad posture must last before it counts.
	WarningDuration time.Duration `yaml:"warning_duration"`
}

// AlertConfig controls alert arbitration and dispatch.
type AlertConfig struct {
	// Cooldown is the minimum time between two firings of one category.
	Cooldown time.Duration `yaml:"cooldown"`
	// Cooldowns overrides Cooldown per category name.
	Cooldowns map[string]time.Duration `yaml:"cooldowns,omitempty"`
	// Workers is the number of goroutines delivering events to sinks.
	Workers int `yaml:"workers"`
	// QueueSize bounds pending deliveries; extra deliveries are dropped.
	QueueSize int `yaml:"queue_size"`
}

// SinksConfig enables the notification sinks.
type SinksConfig struct {
	// Audio speaks the alert message through a text-to-speech command.
	Audio AudioSinkConfig `yaml:"audio"`
	// Hardware drives a buzzer or LED pin.
	Hardware HardwareSinkConfig `yaml:"hardware"`
	// Remote forwards alerts to the relay over gRPC.
	Remote RemoteSinkConfig `yaml:"remote"`
	// Web pushes alerts and status to browsers over websocket.
	Web WebSinkConfig `yaml:"web"`
}

// AudioSinkConfig configures the text-to-speech sink.
type AudioSinkConfig struct {
	// Enabled turns the sink on.
	Enabled bool `yaml:"enabled"`
	// Command is the executable invoked with the message as the last argument.
	Command string `yaml:"command"`
	// Args are passed before the message.
	Args []string `yaml:"args,omitempty"`
}

// HardwareSinkConfig configures the buzzer/LED sink.
type HardwareSinkConfig struct {
	// Enabled turns the sink on.
	Enabled bool `yaml:"enabled"`
	// Pin is the BCM GPIO number.
	Pin int `yaml:"pin"`
	// GPIORoot is the sysfs GPIO directory.
	GPIORoot string `yaml:"gpio_root"`
	// Simulate logs the pattern instead of toggling a pin.
	Simulate bool `yaml:"simulate"`
}

// RemoteSinkConfig configures the relay client.
type RemoteSinkConfig struct {
	// Enabled turns the sink on.
	Enabled bool `yaml:"enabled"`
	// Address is the relay gRPC address.
	Address string `yaml:"address"`
	// Timeout bounds one Deliver call.
	Timeout time.Duration `yaml:"timeout"`
}

// WebSinkConfig configures the browser push hub.
type WebSinkConfig struct {
	// Enabled turns the sink on.
	Enabled bool `yaml:"enabled"`
	// ListenAddress is the HTTP address serving the websocket endpoint.
	ListenAddress string `yaml:"listen_address"`
	// StatusInterval throttles status broadcasts.
	StatusInterval time.Duration `yaml:"status_interval"`
}

// PerformanceConfig holds frame throttling knobs.
type PerformanceConfig struct {
	// SkipFrames drops this many frames after each processed frame.
	SkipFrames int `yaml:"skip_frames"`
}

// RelayConfig configures the relay server process.
type RelayConfig struct {
	// ListenAddress is the gRPC listen address.
	ListenAddress string `yaml:"listen_address"`
	// StateFile stores the latest alert per category.
	StateFile string `yaml:"state_file"`
}

const (
	// DefaultConfigFilename is the default filename for monitor settings.
	DefaultConfigFilename = "ergomon.yaml"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// Load reads configuration from the provided path on top of Default and validates it.
// Keys missing from the file keep their default values, and zero sink timings
// are replaced by the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save validates the configuration and writes it to the provided path. The
// configuration itself is not modified.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks thresholds and subsets. Invalid values are fatal: the
// monitor refuses to start rather than run with a broken classifier.
//
//nolint:cyclop,funlen // A flat list of checks reads better than helpers per section.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	checks := []struct {
		failed bool
		reason string
	}{
		{cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0, "camera width and height must be positive"},
		{cfg.Camera.FPS <= 0, "camera.fps must be positive"},
		{cfg.Camera.FocalLength <= 0, "camera.focal_length must be positive"},
		{cfg.Fatigue.EARThreshold <= 0 || cfg.Fatigue.EARThreshold >= 1, "fatigue.ear_threshold must be in (0, 1)"},
		{
			cfg.Fatigue.PerclosThreshold <= 0 || cfg.Fatigue.PerclosThreshold >= 1,
			"fatigue.perclos_threshold must be in (0, 1)",
		},
		{cfg.Fatigue.PerclosWindow <= 0, "fatigue.perclos_window must be positive"},
		{cfg.Fatigue.BlinkMin < 0 || cfg.Fatigue.BlinkMax < cfg.Fatigue.BlinkMin, "fatigue blink band is invalid"},
		{cfg.Fatigue.ClosedEyeDuration <= 0, "fatigue.closed_eye_duration must be positive"},
		{cfg.Distance.Method != MethodEye && cfg.Distance.Method != MethodFace, "distance.method must be eye or face"},
		{cfg.Distance.WarningDistance <= 0, "distance.warning_distance must be positive"},
		{cfg.Distance.WarningDuration < 0, "distance.warning_duration must not be negative"},
		{cfg.Distance.KnownFaceWidth <= 0, "distance.known_face_width must be positive"},
		{cfg.Distance.KnownEyeDistance <= 0, "distance.known_eye_distance must be positive"},
		{cfg.Distance.SmoothingWindow <= 0, "distance.smoothing_window must be positive"},
		{
			cfg.Posture.PitchThresholdUp >= cfg.Posture.PitchThresholdDown,
			"posture.pitch_threshold_up must be below pitch_threshold_down",
		},
		{cfg.Posture.WarningDuration < 0, "posture.warning_duration must not be negative"},
		{cfg.Alert.Cooldown < 0, "alert.cooldown must not be negative"},
		{cfg.Alert.Workers <= 0, "alert.workers must be positive"},
		{cfg.Alert.QueueSize <= 0, "alert.queue_size must be positive"},
		{cfg.Performance.SkipFrames < 0, "performance.skip_frames must not be negative"},
	}

	for _, check := range checks {
		if check.failed {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, check.reason)
		}
	}

	if err := validateSubsets(&cfg.Landmarks); err != nil {
		return err
	}

	for name, cooldown := range cfg.Alert.Cooldowns {
		if cooldown < 0 {
			return fmt.Errorf("%w: alert.cooldowns[%s] must not be negative", ErrInvalidConfig, name)
		}
	}

	return validateSinks(cfg)
}

// validateSubsets checks that every landmark subset has exactly six non-negative indices.
func validateSubsets(landmarks *LandmarkConfig) error {
	subsets := map[string][]int{
		"left_eye":  landmarks.LeftEye,
		"right_eye": landmarks.RightEye,
		"pose":      landmarks.Pose,
	}

	for name, indices := range subsets {
		if len(indices) != SubsetSize {
			return fmt.Errorf("%w: landmarks.%s must list %d indices", ErrInvalidConfig, name, SubsetSize)
		}

		for _, index := range indices {
			if index < 0 {
				return fmt.Errorf("%w: landmarks.%s has negative index %d", ErrInvalidConfig, name, index)
			}
		}
	}

	return nil
}

// validateSinks checks enabled sinks.
func validateSinks(cfg *Config) error {
	sinks := &cfg.Sinks

	if sinks.Audio.Enabled && sinks.Audio.Command == "" {
		return fmt.Errorf("%w: sinks.audio.command is required", ErrInvalidConfig)
	}

	if sinks.Hardware.Enabled && sinks.Hardware.Pin < 0 {
		return fmt.Errorf("%w: sinks.hardware.pin must not be negative", ErrInvalidConfig)
	}

	if sinks.Remote.Enabled {
		if _, err := net.ResolveTCPAddr("tcp", sinks.Remote.Address); err != nil {
			return fmt.Errorf("%w: invalid sinks.remote.address: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// applyDefaults fills the timings and paths a file may leave empty.
func applyDefaults(cfg *Config) {
	if cfg.Sinks.Remote.Timeout <= 0 {
		cfg.Sinks.Remote.Timeout = DefaultRemoteTimeout
	}

	if cfg.Sinks.Web.StatusInterval <= 0 {
		cfg.Sinks.Web.StatusInterval = DefaultStatusInterval
	}

	if cfg.Relay.StateFile == "" {
		cfg.Relay.StateFile = DefaultRelayStateFilename
	}
}
