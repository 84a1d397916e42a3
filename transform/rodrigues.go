package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
)

// RodriguesToMatrix converts a Rodrigues rotation vector (axis * angle) to a
// 3x3 rotation matrix. SolvePnPRANSAC returns its rotation as a matrix
// directly, so the PnP paths of §4.3/§4.8 do not go through this function.
func RodriguesToMatrix(rvec [3]float64) *spatialmath.RotationMatrix {
	theta := math.Sqrt(rvec[0]*rvec[0] + rvec[1]*rvec[1] + rvec[2]*rvec[2])
	if theta < 1e-12 {
		m, _ := spatialmath.NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
		return m
	}
	kx, ky, kz := rvec[0]/theta, rvec[1]/theta, rvec[2]/theta
	c, s := math.Cos(theta), math.Sin(theta)
	t := 1 - c

	data := []float64{
		c + kx*kx*t, kx*ky*t - kz*s, kx*kz*t + ky*s,
		ky*kx*t + kz*s, c + ky*ky*t, ky*kz*t - kx*s,
		kz*kx*t - ky*s, kz*ky*t + kx*s, c + kz*kz*t,
	}
	m, _ := spatialmath.NewRotationMatrix(data)
	return m
}

// MatrixToRodrigues converts a rotation matrix back to its Rodrigues vector,
// the inverse of RodriguesToMatrix, via the angle-axis representation
// already implemented by spatialmath.RotationMatrix.AxisAngles.
func MatrixToRodrigues(r *spatialmath.RotationMatrix) [3]float64 {
	aa := r.AxisAngles()
	return [3]float64{aa.Theta * aa.RX, aa.Theta * aa.RY, aa.Theta * aa.RZ}
}

// skewSymmetric returns the 3x3 skew-symmetric cross-product matrix [v]x.
func skewSymmetric(v []float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v[2], v[1],
		v[2], 0, -v[0],
		-v[1], v[0], 0,
	})
}
