// Package spatialmath provides the rotation, orientation and pose
// primitives shared by the tracker, the plane detector, the image-target
// tracker and the hit tester, following the interface shape of the
// teacher's spatialmath package.
package spatialmath

import (
	"gonum.org/v1/gonum/num/quat"
)

// Orientation expresses the orientation of a rigid body or frame of
// reference in 3D Euclidean space through several equivalent
// parameterizations.
type Orientation interface {
	Quaternion() quat.Number
	RotationMatrix() *RotationMatrix
	AxisAngles() *R4AA
	EulerAngles() *EulerAngles
}

// NewZeroOrientation returns an orientation representing no rotation.
func NewZeroOrientation() Orientation {
	return &Quaternion{Real: 1}
}

// OrientationAlmostEqual reports whether two orientations are equal to
// within the default quaternion tolerance.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the orientation representing the rotation
// from o1 to o2.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion()))
	return &Quaternion{Real: q.Real, Imag: q.Imag, Jmag: q.Jmag, Kmag: q.Kmag}
}
