package config

import (
	"math"
	"time"
)

// Distance estimation methods.
const (
	// MethodEye estimates distance from the inter-eye pixel span.
	MethodEye = "eye"
	// MethodFace estimates distance from the face bounding box width.
	MethodFace = "face"
)

const (
	// SubsetSize is the number of indices in every landmark subset.
	SubsetSize = 6

	// DefaultRemoteTimeout bounds one relay call.
	DefaultRemoteTimeout = 5 * time.Second

	// DefaultStatusInterval throttles websocket status broadcasts.
	DefaultStatusInterval = time.Second

	// DefaultRelayStateFilename stores the relay's latest alerts.
	DefaultRelayStateFilename = "ergomon-relay-state.json"
)

// Default returns the configuration the monitor ships with.
// MediaPipe Face Mesh indices are used for the landmark subsets.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "console",
		Camera: CameraConfig{
			Width:       640,
			Height:      480,
			FPS:         30,
			FocalLength: 600,
		},
		Landmarks: LandmarkConfig{
			LeftEye:  []int{33, 160, 158, 133, 153, 144},
			RightEye: []int{362, 385, 387, 263, 373, 380},
			Pose:     []int{1, 152, 33, 263, 61, 291},
		},
		Fatigue: FatigueConfig{
			EARThreshold:      0.25,
			PerclosThreshold:  0.15,
			PerclosWindow:     time.Minute,
			BlinkMin:          10,
			BlinkMax:          30,
			ClosedEyeDuration: 2 * time.Second,
		},
		Distance: DistanceConfig{
			Method:           MethodEye,
			WarningDistance:  50,
			WarningDuration:  30 * time.Second,
			KnownFaceWidth:   14.5,
			KnownEyeDistance: 6.3,
			SmoothingWindow:  10,
		},
		Posture: PostureConfig{
			PitchThresholdDown: 12,
			PitchThresholdUp:   -8,
			WarningDuration:    time.Minute,
		},
		Alert: AlertConfig{
			Cooldown:  5 * time.Minute,
			Workers:   4,
			QueueSize: 64,
		},
		Sinks: SinksConfig{
			Audio: AudioSinkConfig{
				Command: "espeak",
			},
			Hardware: HardwareSinkConfig{
				Pin:      18,
				GPIORoot: "/sys/class/gpio",
			},
			Remote: RemoteSinkConfig{
				Address: "127.0.0.1:50061",
				Timeout: DefaultRemoteTimeout,
			},
			Web: WebSinkConfig{
				ListenAddress:  ":8088",
				StatusInterval: DefaultStatusInterval,
			},
		},
		Relay: RelayConfig{
			ListenAddress: ":50061",
			StateFile:     DefaultRelayStateFilename,
		},
	}
}

// PerclosCapacity returns the number of frames held by the PERCLOS window.
func (c *FatigueConfig) PerclosCapacity(fps int) int {
	capacity := int(math.Round(c.PerclosWindow.Seconds() * float64(fps)))
	if capacity < 1 {
		return 1
	}

	return capacity
}
