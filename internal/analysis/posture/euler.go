package posture

import "math"

// gimbalEpsilon is the sy bound below which the decomposition is singular.
const gimbalEpsilon = 1e-6

// Angles are Tait-Bryan angles in degrees.
type Angles struct {
	// Pitch is the rotation about the Y axis.
	Pitch float64
	// Yaw is the rotation about the Z axis.
	Yaw float64
	// Roll is the rotation about the X axis.
	Roll float64
}

// EulerAngles decomposes r = Rz(yaw) * Ry(pitch) * Rx(roll).
// Near gimbal lock yaw is fixed at 0.
func EulerAngles(r Mat3) Angles {
	sy := math.Hypot(r[0][0], r[1][0])

	var pitch, yaw, roll float64
	if sy >= gimbalEpsilon {
		roll = math.Atan2(r[2][1], r[2][2])
		pitch = math.Atan2(-r[2][0], sy)
		yaw = math.Atan2(r[1][0], r[0][0])
	} else {
		roll = math.Atan2(-r[1][2], r[1][1])
		pitch = math.Atan2(-r[2][0], sy)
	}

	return Angles{
		Pitch: degrees(pitch),
		Yaw:   degrees(yaw),
		Roll:  degrees(roll),
	}
}

func degrees(radians float64) float64 {
	return radians * 180 / math.Pi
}
