// Package transform implements the pinhole-camera projection geometry,
// two-view initialization (essential/fundamental matrix, pose recovery),
// triangulation, homography estimation and PnP used by the tracker, the
// image-target tracker and the facade's projection-matrix getter,
// following the structure of the teacher's rimage/transform package.
package transform

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
)

// PinholeCameraIntrinsics holds the parameters needed to project a 3D
// scene onto a 2D image plane, matching the teacher's
// PinholeCameraIntrinsics (Fx, Fy, Ppx, Ppy here renamed Cx, Cy).
type PinholeCameraIntrinsics struct {
	Width  int
	Height int
	Fx     float64
	Fy     float64
	Cx     float64
	Cy     float64
}

// DefaultIntrinsics returns the hard-coded default of §6/§9:
// fx=fy=500, cx=320, cy=240 over a 640x480 sensor.
func DefaultIntrinsics() *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 500, Fy: 500, Cx: 320, Cy: 240}
}

// CheckValid mirrors the teacher's PinholeCameraIntrinsics.CheckValid.
func (p *PinholeCameraIntrinsics) CheckValid() error {
	if p == nil {
		return errors.New("camera intrinsics are not available")
	}
	if p.Fx <= 0 || p.Fy <= 0 {
		return errors.Errorf("invalid focal length (fx=%v, fy=%v)", p.Fx, p.Fy)
	}
	return nil
}

// GetCameraMatrix returns the 3x3 camera intrinsics matrix K.
func (p *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	k := mat.NewDense(3, 3, nil)
	k.Set(0, 0, p.Fx)
	k.Set(1, 1, p.Fy)
	k.Set(0, 2, p.Cx)
	k.Set(1, 2, p.Cy)
	k.Set(2, 2, 1)
	return k
}

// ProjectionMatrix builds the OpenGL-style perspective projection matrix
// for a screen of size width x height, rewritten for pixel intrinsics as
// described in §6: the standard OpenCV-intrinsics-to-OpenGL-clip-space
// conversion.
func (p *PinholeCameraIntrinsics) ProjectionMatrix(width, height int, near, far float64) *spatialmath.Matrix4 {
	w, h := float64(width), float64(height)
	m := &spatialmath.Matrix4{}
	m.Set(0, 0, 2*p.Fx/w)
	m.Set(0, 2, (w-2*p.Cx)/w)
	m.Set(1, 1, 2*p.Fy/h)
	m.Set(1, 2, (2*p.Cy-h)/h)
	m.Set(2, 2, -(far+near)/(far-near))
	m.Set(2, 3, -2*far*near/(far-near))
	m.Set(3, 2, -1)
	return m
}
