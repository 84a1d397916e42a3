// Package hittest implements the screen-point to world-point raycasting
// of §4.9: ground-plane RANSAC estimation from a point cloud (or a default
// y=0 plane) and NDC-based unprojection against it, following the
// geometry-service shape of the teacher's rimage/transform package.
package hittest

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/config"
	"github.com/Yoon-seoyeon286/tossinapp-ar/pointcloud"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
)

// defaultPlaneID is returned by Hit for the default ground plane, §4.9
// step 5.
const defaultPlaneID = -1

// Hit is a single raycast result.
type Hit struct {
	Point    r3.Vector
	Distance float64
	PlaneID  int
}

// Tester holds the current ground plane used for raycasting.
type Tester struct {
	opts    *config.Options
	rng     *rand.Rand
	normal  r3.Vector
	d       float64
	planeID int
}

// NewTester builds a Tester with the default ground plane y=0,
// normal=(0,1,0) installed, per §4.9.
func NewTester(opts *config.Options) *Tester {
	return &Tester{
		opts:    opts,
		rng:     rand.New(rand.NewSource(0xA40B1D)), //nolint:gosec
		normal:  r3.Vector{X: 0, Y: 1, Z: 0},
		d:       0,
		planeID: defaultPlaneID,
	}
}

// EstimateGroundPlane implements §4.9's optional ground-plane estimation:
// RANSAC over a point cloud with a horizontal test forcing the normal
// upward. On failure, the tester's plane is left unchanged (the default
// remains installed unless a prior call succeeded).
func (t *Tester) EstimateGroundPlane(points pointcloud.Vectors) error {
	fit, inliers, err := pointcloud.FitPlaneRANSAC(points, t.opts.GroundRANSACIterations, t.opts.GroundRANSACThreshold, t.rng)
	if err != nil {
		return err
	}
	if len(inliers) < t.opts.GroundMinInliers {
		return arerrors.WrapInsufficientInput("EstimateGroundPlane: too few inliers for a ground plane")
	}
	if math.Abs(fit.Normal.Y) <= t.opts.GroundHorizontalCos {
		return arerrors.WrapDegenerateGeometry("EstimateGroundPlane: plane is not sufficiently horizontal")
	}

	normal, d := fit.Normal, fit.D
	if normal.Y < 0 {
		normal = normal.Mul(-1)
		d = -d
	}
	t.normal = normal
	t.d = d
	t.planeID = defaultPlaneID
	return nil
}

// Raycast implements §4.9's raycast algorithm against the tester's current
// plane, given column-major view and projection matrices.
func (t *Tester) Raycast(screenX, screenY float64, width, height int, viewColumnMajor, projColumnMajor [16]float64) (Hit, bool) {
	nx := 2*screenX/float64(width) - 1
	ny := 1 - 2*screenY/float64(height)

	view := spatialmath.FromColumnMajorArray(viewColumnMajor)
	proj := spatialmath.FromColumnMajorArray(projColumnMajor)

	projInv, ok := proj.Inverse()
	if !ok {
		return Hit{}, false
	}
	viewInv, ok := view.Inverse()
	if !ok {
		return Hit{}, false
	}

	near, ok := unproject(projInv, viewInv, nx, ny, -1)
	if !ok {
		return Hit{}, false
	}
	far, ok := unproject(projInv, viewInv, nx, ny, 1)
	if !ok {
		return Hit{}, false
	}

	origin := near
	direction := far.Sub(near).Normalize()

	denom := t.normal.Dot(direction)
	if math.Abs(denom) < 1e-6 {
		return Hit{}, false
	}
	dist := -(t.normal.Dot(origin) + t.d) / denom
	if dist < 0 {
		return Hit{}, false
	}

	point := origin.Add(direction.Mul(dist))
	return Hit{Point: point, Distance: dist, PlaneID: t.planeID}, true
}

// unproject inverts the projection then the view transform for a clip-space
// point at (nx, ny, z), perspective-dividing by w when |w| > 1e-6.
func unproject(projInv, viewInv *spatialmath.Matrix4, nx, ny, z float64) (r3.Vector, bool) {
	clip := [4]float64{nx, ny, z, 1}
	eye := projInv.TransformHomogeneous(clip)
	if math.Abs(eye[3]) > 1e-6 {
		eye[0] /= eye[3]
		eye[1] /= eye[3]
		eye[2] /= eye[3]
		eye[3] = 1
	}
	world := viewInv.TransformHomogeneous(eye)
	if math.Abs(world[3]) > 1e-6 {
		world[0] /= world[3]
		world[1] /= world[3]
		world[2] /= world[3]
	}
	return r3.Vector{X: world[0], Y: world[1], Z: world[2]}, true
}
