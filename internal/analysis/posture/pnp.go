package posture

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/oshokin/ergomon/internal/domain/landmark"
)

const (
	// maxIterations bounds Levenberg-Marquardt iterations.
	maxIterations = 100
	// maxDampingTries bounds damping increases within one iteration.
	maxDampingTries = 12
	// derivativeStep is the forward difference step for the Jacobian.
	derivativeStep = 1e-7
	// stepTolerance stops refinement once the update is this small.
	stepTolerance = 1e-12
	// parameters is the number of refined parameters: rotation vector and translation.
	parameters = 6
	// residuals is the number of reprojection residuals.
	residuals = 2 * correspondences
)

var (
	// errSVD is returned when a singular value decomposition fails.
	errSVD = errors.New("singular value decomposition failed")
	// errScale is returned when the projection matrix has no usable scale.
	errScale = errors.New("projection matrix has zero scale")
)

// initialPose estimates [R|t] with a Hartley-normalized direct linear transform.
func initialPose(model *[correspondences]Vec3, image *[correspondences]landmark.Point2) (Mat3, Vec3, error) {
	imageT, imageTInv := normalize2D(image)
	modelT := normalize3D(model)

	a := mat.NewDense(residuals, 12, nil)

	for i := range correspondences {
		var x, u mat.VecDense
		x.MulVec(modelT, mat.NewVecDense(4, []float64{model[i][0], model[i][1], model[i][2], 1}))
		u.MulVec(imageT, mat.NewVecDense(3, []float64{image[i].X, image[i].Y, 1}))

		for k := range 4 {
			xk := x.AtVec(k)
			a.Set(2*i, k, xk)
			a.Set(2*i, 8+k, -u.AtVec(0)*xk)
			a.Set(2*i+1, 4+k, xk)
			a.Set(2*i+1, 8+k, -u.AtVec(1)*xk)
		}
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return Mat3{}, Vec3{}, errSVD
	}

	var v mat.Dense
	svd.VTo(&v)

	normalized := mat.NewDense(3, 4, mat.Col(nil, 11, &v))

	// P = T^-1 * P~ * U
	var left, projection mat.Dense
	left.Mul(imageTInv, normalized)
	projection.Mul(&left, modelT)

	return decompose(&projection)
}

// decompose splits P = s[R|t] into a proper rotation and translation.
func decompose(projection *mat.Dense) (Mat3, Vec3, error) {
	m := projection.Slice(0, 3, 0, 3)

	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return Mat3{}, Vec3{}, errSVD
	}

	values := svd.Values(nil)

	scale := (values[0] + values[1] + values[2]) / 3
	if scale == 0 || !finite(scale) {
		return Mat3{}, Vec3{}, errScale
	}

	var u, v, r mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	r.Mul(&u, v.T())

	// det(M) carries the sign of s.
	if mat.Det(&r) < 0 {
		r.Scale(-1, &r)
		scale = -scale
	}

	var rotation Mat3
	for i := range 3 {
		for j := range 3 {
			rotation[i][j] = r.At(i, j)
		}
	}

	translation := Vec3{
		projection.At(0, 3) / scale,
		projection.At(1, 3) / scale,
		projection.At(2, 3) / scale,
	}

	return rotation, translation, nil
}

// normalize2D returns the similarity moving the points' centroid to the
// origin with mean distance sqrt(2), and its inverse.
func normalize2D(points *[correspondences]landmark.Point2) (*mat.Dense, *mat.Dense) {
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}

	cx /= correspondences
	cy /= correspondences

	var spread float64
	for _, p := range points {
		spread += math.Hypot(p.X-cx, p.Y-cy)
	}

	s := math.Sqrt2 / (spread / correspondences)

	forward := mat.NewDense(3, 3, []float64{
		s, 0, -s * cx,
		0, s, -s * cy,
		0, 0, 1,
	})
	inverse := mat.NewDense(3, 3, []float64{
		1 / s, 0, cx,
		0, 1 / s, cy,
		0, 0, 1,
	})

	return forward, inverse
}

// normalize3D returns the similarity moving the points' centroid to the
// origin with mean distance sqrt(3).
func normalize3D(points *[correspondences]Vec3) *mat.Dense {
	var c Vec3
	for _, p := range points {
		for k := range 3 {
			c[k] += p[k]
		}
	}

	for k := range 3 {
		c[k] /= correspondences
	}

	var spread float64
	for _, p := range points {
		spread += Vec3{p[0] - c[0], p[1] - c[1], p[2] - c[2]}.Norm()
	}

	s := math.Sqrt(3) / (spread / correspondences)

	return mat.NewDense(4, 4, []float64{
		s, 0, 0, -s * c[0],
		0, s, 0, -s * c[1],
		0, 0, s, -s * c[2],
		0, 0, 0, 1,
	})
}

// refine runs Levenberg-Marquardt on the reprojection error. The rotation is
// updated multiplicatively, R <- exp(w) * R, so no angle wraps are involved.
// It returns the refined pose and its squared error sum.
func refine(
	model *[correspondences]Vec3,
	image *[correspondences]landmark.Point2,
	rotation Mat3,
	translation Vec3,
) (Mat3, Vec3, float64) {
	current := reproject(model, image, rotation, translation)
	cost := sumSquares(current)
	damping := 1e-3

	jacobian := mat.NewDense(residuals, parameters, nil)

	for range maxIterations {
		for k := range parameters {
			var delta [parameters]float64
			delta[k] = derivativeStep

			r, t := step(rotation, translation, &delta)
			shifted := reproject(model, image, r, t)

			for i := range residuals {
				jacobian.Set(i, k, (shifted[i]-current[i])/derivativeStep)
			}
		}

		var normal mat.Dense
		normal.Mul(jacobian.T(), jacobian)

		var gradient mat.VecDense
		gradient.MulVec(jacobian.T(), mat.NewVecDense(residuals, current[:]))

		improved, size := false, 0.0

		for range maxDampingTries {
			damped := mat.DenseCopyOf(&normal)
			for d := range parameters {
				damped.Set(d, d, normal.At(d, d)*(1+damping)+1e-18)
			}

			var solution mat.VecDense
			if err := solution.SolveVec(damped, &gradient); err != nil {
				damping *= 10

				continue
			}

			var delta [parameters]float64
			for k := range parameters {
				delta[k] = -solution.AtVec(k)
			}

			r, t := step(rotation, translation, &delta)
			candidate := reproject(model, image, r, t)

			if candidateCost := sumSquares(candidate); candidateCost < cost {
				rotation, translation, current, cost = r, t, candidate, candidateCost
				damping /= 10
				improved, size = true, mat.Norm(&solution, 2)

				break
			}

			damping *= 10
		}

		if !improved || size < stepTolerance {
			break
		}
	}

	return rotation, translation, cost
}

// step applies a parameter update: rotation vector delta[0:3], translation delta[3:6].
func step(rotation Mat3, translation Vec3, delta *[parameters]float64) (Mat3, Vec3) {
	r := rodrigues(Vec3{delta[0], delta[1], delta[2]}).Mul(rotation)
	t := translation.Add(Vec3{delta[3], delta[4], delta[5]})

	return r, t
}

// reproject returns the normalized reprojection residuals.
func reproject(
	model *[correspondences]Vec3,
	image *[correspondences]landmark.Point2,
	rotation Mat3,
	translation Vec3,
) [residuals]float64 {
	var out [residuals]float64

	for i := range correspondences {
		p := rotation.MulVec(model[i]).Add(translation)
		out[2*i] = p[0]/p[2] - image[i].X
		out[2*i+1] = p[1]/p[2] - image[i].Y
	}

	return out
}

func sumSquares(values [residuals]float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v * v
	}

	return sum
}
