package posture

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/domain/landmark"
)

var epoch = time.Unix(1_700_000_000, 0)

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// project renders the model with the given pose through the default camera.
func project(rotation Mat3, translation Vec3) landmark.PoseSample {
	camera := config.Default().Camera

	var sample landmark.PoseSample
	for i, model := range ModelPoints {
		p := rotation.MulVec(model).Add(translation)
		sample[i] = landmark.Point2{
			X: camera.FocalLength*p[0]/p[2] + float64(camera.Width)/2,
			Y: camera.FocalLength*p[1]/p[2] + float64(camera.Height)/2,
		}
	}

	return sample
}

// compose builds Rz(yaw) * Ry(pitch) * Rx(roll) from degrees.
func compose(pitch, yaw, roll float64) Mat3 {
	return RotationZ(radians(yaw)).Mul(RotationY(radians(pitch))).Mul(RotationX(radians(roll)))
}

// TestEulerAngles_Identity ensures the identity rotation has zero angles.
func TestEulerAngles_Identity(t *testing.T) {
	t.Parallel()

	angles := EulerAngles(Identity())
	require.InDelta(t, 0.0, angles.Pitch, 1e-12)
	require.InDelta(t, 0.0, angles.Yaw, 1e-12)
	require.InDelta(t, 0.0, angles.Roll, 1e-12)
}

// TestEulerAngles_Roundtrip decomposes composed rotations, including gimbal lock.
func TestEulerAngles_Roundtrip(t *testing.T) {
	t.Parallel()

	angles := EulerAngles(compose(20, -35, 170))
	require.InDelta(t, 20.0, angles.Pitch, 1e-9)
	require.InDelta(t, -35.0, angles.Yaw, 1e-9)
	require.InDelta(t, 170.0, angles.Roll, 1e-9)

	locked := EulerAngles(compose(90, 0, 30))
	require.InDelta(t, 90.0, locked.Pitch, 1e-6)
	require.InDelta(t, 0.0, locked.Yaw, 1e-12)
}

// TestEstimator_Estimate_SyntheticPose projects the model and solves it back.
func TestEstimator_Estimate_SyntheticPose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pitch       float64
		yaw         float64
		roll        float64
		translation Vec3
	}{
		{"frontal", 0, 0, 180, Vec3{0, 0, 1000}},
		{"turned", 10, 5, 170, Vec3{30, -20, 1100}},
		{"tilted", -15, -20, -172, Vec3{-50, 40, 900}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			estimator := NewEstimator(config.Default().Camera)

			pose := estimator.Estimate(project(compose(tt.pitch, tt.yaw, tt.roll), tt.translation))
			require.True(t, pose.Valid)
			require.InDelta(t, tt.pitch, pose.Pitch, 1e-3)
			require.InDelta(t, tt.yaw, pose.Yaw, 1e-3)
			require.InDelta(t, 0.0, math.Remainder(tt.roll-pose.Roll, 360), 1e-3)
			require.InDelta(t, tt.translation[2], pose.Translation[2], 1e-2)
			require.Less(t, pose.ReprojectionError, 1e-3)
		})
	}
}

// TestEstimator_Estimate_DegenerateInput covers coincident, collinear and mirrored input.
func TestEstimator_Estimate_DegenerateInput(t *testing.T) {
	t.Parallel()

	estimator := NewEstimator(config.Default().Camera)

	var coincident landmark.PoseSample
	for i := range coincident {
		coincident[i] = landmark.Point2{X: 320, Y: 240}
	}

	require.False(t, estimator.Estimate(coincident).Valid)

	var collinear landmark.PoseSample
	for i := range collinear {
		collinear[i] = landmark.Point2{X: 300 + 10*float64(i), Y: 200 + 5*float64(i)}
	}

	require.False(t, estimator.Estimate(collinear).Valid)

	behind := project(compose(0, 0, 180), Vec3{0, 0, -1000})
	require.False(t, estimator.Estimate(behind).Valid)
}

// TestClassify covers both thresholds.
func TestClassify(t *testing.T) {
	t.Parallel()

	require.Equal(t, TypeHeadDown, Classify(12.5, 12, -8))
	require.Equal(t, TypeNormal, Classify(12, 12, -8))
	require.Equal(t, TypeNormal, Classify(-8, 12, -8))
	require.Equal(t, TypeHeadUp, Classify(-8.5, 12, -8))
}

// TestClassifier_Update_TimesBadPosture checks the warning gate and the reset on Normal.
func TestClassifier_Update_TimesBadPosture(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier(config.Default().Posture)
	down := Pose{Valid: true, Angles: Angles{Pitch: 20}}
	upright := Pose{Valid: true, Angles: Angles{Pitch: 2}}

	status := classifier.Update(down, epoch)
	require.Equal(t, TypeHeadDown, status.Type)
	require.False(t, status.IsBadPosture)

	status = classifier.Update(down, epoch.Add(59*time.Second))
	require.False(t, status.IsBadPosture)

	status = classifier.Update(down, epoch.Add(time.Minute))
	require.True(t, status.IsBadPosture)

	status = classifier.Update(upright, epoch.Add(61*time.Second))
	require.Equal(t, TypeNormal, status.Type)
	require.False(t, status.IsBadPosture)
	require.Zero(t, status.BadDuration)
}

// TestClassifier_Update_FreezesOnInvalidPose ensures a dropped pose keeps angles and duration.
func TestClassifier_Update_FreezesOnInvalidPose(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier(config.Default().Posture)
	up := Pose{Valid: true, Angles: Angles{Pitch: -15, Yaw: 3, Roll: 178}}

	classifier.Update(up, epoch)
	classifier.Update(up, epoch.Add(50*time.Second))

	status := classifier.Update(Pose{}, epoch.Add(55*time.Second))
	require.Equal(t, TypeUnknown, status.Type)
	require.False(t, status.PoseValid)
	require.False(t, status.IsBadPosture)
	require.Equal(t, up.Angles, status.Angles)
	require.Equal(t, 55*time.Second, status.BadDuration)

	status = classifier.Update(up, epoch.Add(61*time.Second))
	require.Equal(t, TypeHeadUp, status.Type)
	require.True(t, status.IsBadPosture)

	classifier.Reset()

	status = classifier.Update(Pose{}, epoch.Add(62*time.Second))
	require.Zero(t, status.BadDuration)
	require.Equal(t, Angles{}, status.Angles)
}
