package posture

import "math"

// Vec3 is a 3D vector.
type Vec3 [3]float64

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Identity returns the identity matrix.
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// MulVec returns m * v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	var out Vec3
	for i := range 3 {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}

	return out
}

// Mul returns m * n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var out Mat3

	for i := range 3 {
		for j := range 3 {
			out[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}

	return out
}

// RotationX returns a rotation of angle radians about the X axis.
func RotationX(angle float64) Mat3 {
	s, c := math.Sincos(angle)

	return Mat3{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

// RotationY returns a rotation of angle radians about the Y axis.
func RotationY(angle float64) Mat3 {
	s, c := math.Sincos(angle)

	return Mat3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// RotationZ returns a rotation of angle radians about the Z axis.
func RotationZ(angle float64) Mat3 {
	s, c := math.Sincos(angle)

	return Mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// rodrigues maps a rotation vector to its rotation matrix.
func rodrigues(w Vec3) Mat3 {
	theta := w.Norm()
	if theta < 1e-12 {
		return Mat3{{1, -w[2], w[1]}, {w[2], 1, -w[0]}, {-w[1], w[0], 1}}
	}

	k := Vec3{w[0] / theta, w[1] / theta, w[2] / theta}
	skew := Mat3{{0, -k[2], k[1]}, {k[2], 0, -k[0]}, {-k[1], k[0], 0}}
	skew2 := skew.Mul(skew)
	s, c := math.Sincos(theta)

	out := Identity()
	for i := range 3 {
		for j := range 3 {
			out[i][j] += s*skew[i][j] + (1-c)*skew2[i][j]
		}
	}

	return out
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
