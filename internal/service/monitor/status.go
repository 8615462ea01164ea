package monitor

import (
	"math"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// StatusView is the dashboard rendering of a snapshot.
type StatusView struct {
	// Timestamp is the processing time in Unix seconds.
	Timestamp float64 `json:"timestamp"`
	// FaceDetected is false for frames without landmarks.
	FaceDetected bool `json:"face_detected"`
	// Health is the combined score.
	Health int `json:"health"`
	// Fatigue summarises the eye state.
	Fatigue FatigueView `json:"fatigue"`
	// Distance summarises the viewing distance.
	Distance DistanceView `json:"distance"`
	// Posture summarises the head pose.
	Posture PostureView `json:"posture"`
	// Fired lists the categories accepted for the frame.
	Fired []domain.Category `json:"fired,omitempty"`
}

// FatigueView is the dashboard fatigue block.
type FatigueView struct {
	// Level is 0 to 3.
	Level int `json:"level"`
	// Description is the level text.
	Description string `json:"description"`
	// EAR is the average eye aspect ratio.
	EAR float64 `json:"ear"`
	// Perclos is the closed-frame percentage.
	Perclos float64 `json:"perclos"`
	// BlinkRate is the last published blinks per minute.
	BlinkRate int `json:"blink_rate"`
}

// DistanceView is the dashboard distance block.
type DistanceView struct {
	// Value is the smoothed distance in centimeters.
	Value float64 `json:"value"`
	// Zone is the distance label.
	Zone string `json:"zone"`
	// IsTooClose reports a sustained close distance.
	IsTooClose bool `json:"is_too_close"`
}

// PostureView is the dashboard posture block.
type PostureView struct {
	// Pitch is in degrees, positive looking down.
	Pitch float64 `json:"pitch"`
	// Yaw is in degrees.
	Yaw float64 `json:"yaw"`
	// Roll is in degrees.
	Roll float64 `json:"roll"`
	// Type is the posture label.
	Type string `json:"type"`
	// IsBad reports a sustained bad posture.
	IsBad bool `json:"is_bad"`
}

// View renders the snapshot for dashboards with rounded numbers.
func (s *Snapshot) View() StatusView {
	return StatusView{
		Timestamp:    float64(s.Timestamp.UnixMilli()) / 1e3,
		FaceDetected: s.FaceDetected,
		Health:       s.Health,
		Fatigue: FatigueView{
			Level:       int(s.Fatigue.Level),
			Description: s.Fatigue.Description(),
			EAR:         round(s.Fatigue.AvgEAR, 3),
			Perclos:     round(s.Fatigue.Perclos*100, 1),
			BlinkRate:   s.Fatigue.BlinksPerMinute,
		},
		Distance: DistanceView{
			Value:      round(s.Distance.Distance, 1),
			Zone:       string(s.Distance.Zone),
			IsTooClose: s.Distance.IsTooClose,
		},
		Posture: PostureView{
			Pitch: round(s.Posture.Pitch, 1),
			Yaw:   round(s.Posture.Yaw, 1),
			Roll:  round(s.Posture.Roll, 1),
			Type:  string(s.Posture.Type),
			IsBad: s.Posture.IsBadPosture,
		},
		Fired: s.Fired,
	}
}

func round(v float64, digits int) float64 {
	scale := math.Pow10(digits)

	return math.Round(v*scale) / scale
}
