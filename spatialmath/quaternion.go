package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is an Orientation backed by a gonum quat.Number, mirroring
// the teacher's `quaternion` type built around quat.Number.
type Quaternion struct {
	Real, Imag, Jmag, Kmag float64
}

// NewQuaternion builds a Quaternion from its four components.
func NewQuaternion(w, x, y, z float64) *Quaternion {
	return &Quaternion{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// QuaternionFromNumber wraps a gonum quat.Number.
func QuaternionFromNumber(q quat.Number) *Quaternion {
	return &Quaternion{Real: q.Real, Imag: q.Imag, Jmag: q.Jmag, Kmag: q.Kmag}
}

// Quaternion returns the gonum representation.
func (q *Quaternion) Quaternion() quat.Number {
	return quat.Number{Real: q.Real, Imag: q.Imag, Jmag: q.Jmag, Kmag: q.Kmag}
}

// Normalized returns a unit quaternion pointing in the same direction.
func (q *Quaternion) Normalized() *Quaternion {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n < 1e-9 {
		return &Quaternion{Real: 1}
	}
	return &Quaternion{Real: q.Real / n, Imag: q.Imag / n, Jmag: q.Jmag / n, Kmag: q.Kmag / n}
}

// RotationMatrix converts the quaternion to a 3x3 rotation matrix.
func (q *Quaternion) RotationMatrix() *RotationMatrix {
	u := q.Normalized()
	w, x, y, z := u.Real, u.Imag, u.Jmag, u.Kmag
	return &RotationMatrix{data: [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}}
}

// AxisAngles converts the quaternion to an axis-angle representation.
func (q *Quaternion) AxisAngles() *R4AA {
	u := q.Normalized()
	theta := 2 * math.Acos(clamp(u.Real, -1, 1))
	s := math.Sqrt(1 - u.Real*u.Real)
	if s < 1e-9 {
		return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
	}
	return &R4AA{Theta: theta, RX: u.Imag / s, RY: u.Jmag / s, RZ: u.Kmag / s}
}

// EulerAngles converts the quaternion to roll/pitch/yaw (XYZ extrinsic).
func (q *Quaternion) EulerAngles() *EulerAngles {
	u := q.Normalized()
	w, x, y, z := u.Real, u.Imag, u.Jmag, u.Kmag

	sinrCosp := 2 * (w*x + y*z)
	cosrCosp := 1 - 2*(x*x+y*y)
	roll := math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (w*y - z*x)
	var pitch float64
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (w*z + x*y)
	cosyCosp := 1 - 2*(y*y+z*z)
	yaw := math.Atan2(sinyCosp, cosyCosp)

	return &EulerAngles{Roll: roll, Pitch: pitch, Yaw: yaw}
}

// QuaternionAlmostEqual reports whether two quaternions are equal to
// within the given tolerance, accounting for the double cover (q == -q).
func QuaternionAlmostEqual(q1, q2 quat.Number, tol float64) bool {
	diff := func(a, b quat.Number) float64 {
		return math.Abs(a.Real-b.Real) + math.Abs(a.Imag-b.Imag) + math.Abs(a.Jmag-b.Jmag) + math.Abs(a.Kmag-b.Kmag)
	}
	neg := quat.Number{Real: -q2.Real, Imag: -q2.Imag, Jmag: -q2.Jmag, Kmag: -q2.Kmag}
	return diff(q1, q2) < tol || diff(q1, neg) < tol
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
