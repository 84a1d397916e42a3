package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a row-major 3x3 rotation matrix, the representation
// the tracker's pose-recovery pipeline (essential-matrix decomposition,
// PnP) produces natively.
type RotationMatrix struct {
	data [9]float64
}

// NewRotationMatrix builds a RotationMatrix from 9 row-major values.
func NewRotationMatrix(data []float64) (*RotationMatrix, error) {
	if len(data) != 9 {
		return nil, errors.Errorf("rotation matrix data must have length 9, got %d", len(data))
	}
	r := &RotationMatrix{}
	copy(r.data[:], data)
	return r, nil
}

// At returns the element at (row, col), 0-indexed.
func (r *RotationMatrix) At(row, col int) float64 {
	return r.data[row*3+col]
}

// Set assigns the element at (row, col).
func (r *RotationMatrix) Set(row, col int, v float64) {
	r.data[row*3+col] = v
}

// RawRowMajor returns the 9 backing values in row-major order.
func (r *RotationMatrix) RawRowMajor() []float64 {
	out := make([]float64, 9)
	copy(out, r.data[:])
	return out
}

// RotationMatrix implements Orientation by returning itself.
func (r *RotationMatrix) RotationMatrix() *RotationMatrix { return r }

// RotateVector applies the rotation to v.
func (r *RotationMatrix) RotateVector(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r.At(0, 0)*v.X + r.At(0, 1)*v.Y + r.At(0, 2)*v.Z,
		Y: r.At(1, 0)*v.X + r.At(1, 1)*v.Y + r.At(1, 2)*v.Z,
		Z: r.At(2, 0)*v.X + r.At(2, 1)*v.Y + r.At(2, 2)*v.Z,
	}
}

// Quaternion converts the rotation matrix to a quaternion.
func (r *RotationMatrix) Quaternion() quat.Number {
	m00, m01, m02 := r.At(0, 0), r.At(0, 1), r.At(0, 2)
	m10, m11, m12 := r.At(1, 0), r.At(1, 1), r.At(1, 2)
	m20, m21, m22 := r.At(2, 0), r.At(2, 1), r.At(2, 2)

	trace := m00 + m11 + m22
	var w, x, y, z float64
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1.0)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2.0 * math.Sqrt(1.0+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2.0 * math.Sqrt(1.0+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2.0 * math.Sqrt(1.0+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// AxisAngles converts the rotation matrix to axis-angle via its quaternion.
func (r *RotationMatrix) AxisAngles() *R4AA {
	return QuaternionFromNumber(r.Quaternion()).AxisAngles()
}

// EulerAngles converts the rotation matrix to Euler angles via its quaternion.
func (r *RotationMatrix) EulerAngles() *EulerAngles {
	return QuaternionFromNumber(r.Quaternion()).EulerAngles()
}
