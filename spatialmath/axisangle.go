package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// R4AA represents an orientation as a rotation of Theta radians about the
// axis (RX, RY, RZ), following the teacher's axisAngle.go convention.
type R4AA struct {
	Theta float64
	RX    float64
	RY    float64
	RZ    float64
}

// NewR4AA creates an axis-angle with no rotation, axis pointing +Z.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// AxisAngles returns r4 itself.
func (r4 *R4AA) AxisAngles() *R4AA { return r4 }

// Quaternion converts the axis-angle representation to a quaternion.
func (r4 *R4AA) Quaternion() quat.Number {
	n := math.Sqrt(r4.RX*r4.RX + r4.RY*r4.RY + r4.RZ*r4.RZ)
	if n < 1e-9 {
		return quat.Number{Real: 1}
	}
	half := r4.Theta / 2
	s := math.Sin(half) / n
	return quat.Number{Real: math.Cos(half), Imag: r4.RX * s, Jmag: r4.RY * s, Kmag: r4.RZ * s}
}

// RotationMatrix converts the axis-angle representation to a rotation matrix.
func (r4 *R4AA) RotationMatrix() *RotationMatrix {
	return QuaternionFromNumber(r4.Quaternion()).RotationMatrix()
}

// EulerAngles converts the axis-angle representation to Euler angles.
func (r4 *R4AA) EulerAngles() *EulerAngles {
	return QuaternionFromNumber(r4.Quaternion()).EulerAngles()
}

// EulerAngles holds roll/pitch/yaw, in radians, XYZ extrinsic convention.
type EulerAngles struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// Quaternion converts Euler angles to a quaternion.
func (e *EulerAngles) Quaternion() quat.Number {
	cr, sr := math.Cos(e.Roll/2), math.Sin(e.Roll/2)
	cp, sp := math.Cos(e.Pitch/2), math.Sin(e.Pitch/2)
	cy, sy := math.Cos(e.Yaw/2), math.Sin(e.Yaw/2)
	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// RotationMatrix converts Euler angles to a rotation matrix.
func (e *EulerAngles) RotationMatrix() *RotationMatrix {
	return QuaternionFromNumber(e.Quaternion()).RotationMatrix()
}

// AxisAngles converts Euler angles to axis-angle.
func (e *EulerAngles) AxisAngles() *R4AA {
	return QuaternionFromNumber(e.Quaternion()).AxisAngles()
}

// EulerAngles returns e itself.
func (e *EulerAngles) EulerAngles() *EulerAngles { return e }
