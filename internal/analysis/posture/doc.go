// Package posture estimates head pose from six facial landmarks and
// classifies sitting posture from the resulting pitch.
//
// Estimator solves the perspective-n-point problem against a fixed
// anthropometric face model: a normalized DLT gives the initial pose, which
// Levenberg-Marquardt then refines on reprojection error. Angles come from a
// Tait-Bryan decomposition of the rotation.
//
// Classifier times continuous bad posture. A frame without a valid pose
// reports Unknown but does not reset the accumulated duration.
package posture
