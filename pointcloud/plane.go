package pointcloud

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
)

// Plane is an infinite plane in Hessian normal form: normal.Dot(p) + d == 0
// for every p on the plane, following the RANSAC plane fit described for
// the plane detector (§4.4 step 1) and hit-test ground-plane estimation
// (§4.7).
type Plane struct {
	Normal r3.Vector
	D      float64
}

// Distance returns the signed distance from p to the plane.
func (p Plane) Distance(pt r3.Vector) float64 {
	return p.Normal.Dot(pt) + p.D
}

const planeSampleSize = 3

// FitPlaneRANSAC fits a plane to points via RANSAC: three distinct random
// points define a candidate normal by cross product; candidates whose
// normal length falls below 1e-6 (near-collinear samples) are rejected and
// re-rolled, and the plane with the most inliers within threshold wins.
func FitPlaneRANSAC(points Vectors, iterations int, threshold float64, rng *rand.Rand) (Plane, []int, error) {
	if len(points) < planeSampleSize {
		return Plane{}, nil, arerrors.WrapInsufficientInput("FitPlaneRANSAC: need at least 3 points")
	}

	var best Plane
	var bestInliers []int
	for i := 0; i < iterations; i++ {
		plane, ok := candidatePlane(points, rng)
		if !ok {
			continue
		}

		inliers := make([]int, 0, len(points))
		for j, pt := range points {
			if math.Abs(plane.Distance(pt)) < threshold {
				inliers = append(inliers, j)
			}
		}
		if len(inliers) > len(bestInliers) {
			best, bestInliers = plane, inliers
		}
	}

	if len(bestInliers) == 0 {
		return Plane{}, nil, arerrors.WrapDegenerateGeometry("FitPlaneRANSAC: no plane candidate produced a valid normal")
	}
	return best, bestInliers, nil
}

// candidatePlane draws a 3-point minimal sample (re-rolling on duplicate
// draws) and returns the plane through them, or ok=false if the points are
// degenerate (near-collinear).
func candidatePlane(points Vectors, rng *rand.Rand) (Plane, bool) {
	idx := sampleThreeDistinct(len(points), rng)
	p1, p2, p3 := points[idx[0]], points[idx[1]], points[idx[2]]

	v1 := p2.Sub(p1)
	v2 := p3.Sub(p1)
	normal := v1.Cross(v2)
	length := normal.Norm()
	if length < 1e-6 {
		return Plane{}, false
	}
	normal = normal.Mul(1 / length)
	d := -normal.Dot(p1)
	return Plane{Normal: normal, D: d}, true
}

func sampleThreeDistinct(n int, rng *rand.Rand) [3]int {
	var out [3]int
	seen := map[int]bool{}
	for i := 0; i < planeSampleSize; i++ {
		for {
			idx := rng.Intn(n)
			if !seen[idx] {
				seen[idx] = true
				out[i] = idx
				break
			}
		}
	}
	return out
}
