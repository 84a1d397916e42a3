package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Matrix4 is a 4x4 transform stored row-major internally: data[row*4+col].
// Rotation occupies the top-left 3x3 block, translation the last column,
// and the bottom row is [0,0,0,1] for a rigid transform, matching §3's
// KeyFrame.pose invariant.
type Matrix4 struct {
	data [16]float64
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() *Matrix4 {
	m := &Matrix4{}
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	m.Set(2, 2, 1)
	m.Set(3, 3, 1)
	return m
}

// At returns the element at (row, col).
func (m *Matrix4) At(row, col int) float64 { return m.data[row*4+col] }

// Set assigns the element at (row, col).
func (m *Matrix4) Set(row, col int, v float64) { m.data[row*4+col] = v }

// NewPoseMatrix builds a world-from-X pose matrix from a rotation block
// and a translation vector.
func NewPoseMatrix(rot *RotationMatrix, t r3.Vector) *Matrix4 {
	m := Identity4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, rot.At(i, j))
		}
	}
	m.Set(0, 3, t.X)
	m.Set(1, 3, t.Y)
	m.Set(2, 3, t.Z)
	return m
}

// Rotation returns the top-left 3x3 rotation block.
func (m *Matrix4) Rotation() *RotationMatrix {
	r := &RotationMatrix{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, m.At(i, j))
		}
	}
	return r
}

// Translation returns the last column's first three components.
func (m *Matrix4) Translation() r3.Vector {
	return r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}
}

// Mul returns m * other.
func (m *Matrix4) Mul(other *Matrix4) *Matrix4 {
	out := &Matrix4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m.At(row, k) * other.At(k, col)
			}
			out.Set(row, col, sum)
		}
	}
	return out
}

// TransformPoint applies the matrix to a 3D point, treating it as
// homogeneous with w=1.
func (m *Matrix4) TransformPoint(p r3.Vector) r3.Vector {
	v := [4]float64{p.X, p.Y, p.Z, 1}
	var out [4]float64
	for row := 0; row < 4; row++ {
		for k := 0; k < 4; k++ {
			out[row] += m.At(row, k) * v[k]
		}
	}
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}

// TransformHomogeneous applies the matrix to a homogeneous 4-vector and
// returns the raw (possibly non-unit-w) result, used by the hit tester's
// unprojection pipeline.
func (m *Matrix4) TransformHomogeneous(v [4]float64) [4]float64 {
	var out [4]float64
	for row := 0; row < 4; row++ {
		for k := 0; k < 4; k++ {
			out[row] += m.At(row, k) * v[k]
		}
	}
	return out
}

// Transpose returns the transposed matrix.
func (m *Matrix4) Transpose() *Matrix4 {
	out := &Matrix4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out.Set(row, col, m.At(col, row))
		}
	}
	return out
}

// Inverse computes the general 4x4 matrix inverse via cofactor expansion,
// returning ok=false when |det| < 1e-10, per the hit-test design's
// required inverter contract.
func (m *Matrix4) Inverse() (*Matrix4, bool) {
	a := m.data
	inv, det := invert4x4(a)
	if math.Abs(det) < 1e-10 {
		return nil, false
	}
	out := &Matrix4{data: inv}
	return out, true
}

// ToRowMajorArray returns the matrix as a flat 16-element row-major array,
// the default serialization for poses crossing the embedding boundary.
func (m *Matrix4) ToRowMajorArray() [16]float64 {
	return m.data
}

// FromRowMajorArray builds a Matrix4 from a flat row-major array.
func FromRowMajorArray(a [16]float64) *Matrix4 {
	return &Matrix4{data: a}
}

// ToColumnMajorArray returns the matrix as a flat 16-element column-major
// array, used specifically by the view and projection matrix getters.
func (m *Matrix4) ToColumnMajorArray() [16]float64 {
	var out [16]float64
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[col*4+row] = m.At(row, col)
		}
	}
	return out
}

// FromColumnMajorArray builds a Matrix4 from a flat column-major array.
func FromColumnMajorArray(a [16]float64) *Matrix4 {
	m := &Matrix4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			m.Set(row, col, a[col*4+row])
		}
	}
	return m
}

// invert4x4 computes the inverse of a row-major 4x4 matrix by cofactor
// expansion, returning the inverse (valid only if det is non-degenerate)
// and the determinant.
func invert4x4(m [16]float64) ([16]float64, float64) {
	// m[row*4+col]
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if math.Abs(det) < 1e-10 {
		return [16]float64{}, det
	}
	invDet := 1 / det

	var out [16]float64
	out[0] = (a11*b11 - a12*b10 + a13*b09) * invDet
	out[1] = (a02*b10 - a01*b11 - a03*b09) * invDet
	out[2] = (a31*b05 - a32*b04 + a33*b03) * invDet
	out[3] = (a22*b04 - a21*b05 - a23*b03) * invDet
	out[4] = (a12*b08 - a10*b11 - a13*b07) * invDet
	out[5] = (a00*b11 - a02*b08 + a03*b07) * invDet
	out[6] = (a32*b02 - a30*b05 - a33*b01) * invDet
	out[7] = (a20*b05 - a22*b02 + a23*b01) * invDet
	out[8] = (a10*b10 - a11*b08 + a13*b06) * invDet
	out[9] = (a01*b08 - a00*b10 - a03*b06) * invDet
	out[10] = (a30*b04 - a31*b02 + a33*b00) * invDet
	out[11] = (a21*b02 - a20*b04 - a23*b00) * invDet
	out[12] = (a11*b07 - a10*b09 - a12*b06) * invDet
	out[13] = (a00*b09 - a01*b07 + a02*b06) * invDet
	out[14] = (a31*b01 - a30*b03 - a32*b00) * invDet
	out[15] = (a20*b03 - a21*b01 + a22*b00) * invDet

	return out, det
}
