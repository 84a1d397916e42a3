// Package pointcloud provides the r3.Vector collection type and RANSAC
// plane-fitting primitive shared by the plane detector and the hit
// tester's ground-plane estimation, following the structure of the
// teacher's pointcloud package (Vectors, NewVector) stripped of the
// per-point color/value metadata this project has no use for.
package pointcloud

import "github.com/golang/geo/r3"

// NewVector is a convenience constructor for a point, matching the
// teacher's pointcloud.NewVector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Vectors is a flat collection of 3D points, the input format RANSAC
// plane fitting and ground-plane estimation both consume.
type Vectors []r3.Vector

// Len returns the number of points.
func (vs Vectors) Len() int { return len(vs) }

// Centroid returns the mean of all points, or the zero vector if empty.
func (vs Vectors) Centroid() r3.Vector {
	if len(vs) == 0 {
		return r3.Vector{}
	}
	var sum r3.Vector
	for _, v := range vs {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(vs)))
}
