package transform

import (
	"math/rand"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
)

const homographySampleSize = 4

// Homography is a 3x3 planar-projective transform, matching the teacher's
// rimage/transform/homography_parameters.go Homography type.
type Homography [3][3]float64

// At returns the element at (row, col).
func (h *Homography) At(row, col int) float64 { return h[row][col] }

// Apply maps src through the homography, dividing out the homogeneous
// coordinate, following the teacher's Homography.Apply.
func (h *Homography) Apply(src r2.Point) r2.Point {
	x := h[0][0]*src.X + h[0][1]*src.Y + h[0][2]
	y := h[1][0]*src.X + h[1][1]*src.Y + h[1][2]
	w := h[2][0]*src.X + h[2][1]*src.Y + h[2][2]
	if w == 0 {
		w = 1e-12
	}
	return r2.Point{X: x / w, Y: y / w}
}

// homographyFromPoints solves the direct linear transform for a
// homography mapping each src[i] to dst[i], from 4 or more points.
func homographyFromPoints(src, dst []r2.Point) (*Homography, error) {
	n := len(src)
	if n < homographySampleSize {
		return nil, arerrors.WrapInsufficientInput("homographyFromPoints: need at least 4 correspondences")
	}

	a := mat.NewDense(2*n, 9, nil)
	for i := 0; i < n; i++ {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y
		a.SetRow(2*i, []float64{-sx, -sy, -1, 0, 0, 0, dx * sx, dx * sy, dx})
		a.SetRow(2*i+1, []float64{0, 0, 0, -sx, -sy, -1, dy * sx, dy * sy, dy})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, arerrors.WrapDegenerateGeometry("homographyFromPoints: SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	h := v.ColView(8)

	var out Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = h.AtVec(i*3 + j)
		}
	}
	if out[2][2] != 0 {
		scale := 1 / out[2][2]
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				out[i][j] *= scale
			}
		}
	}
	return &out, nil
}

// EstimateHomographyRANSAC robustly fits a homography mapping src onto dst,
// following §4.8 step 3: RANSAC with a 5px reprojection threshold.
func EstimateHomographyRANSAC(src, dst []r2.Point, thresholdPx float64, maxIters int, rng *rand.Rand) (*Homography, []int, error) {
	if len(src) < homographySampleSize || len(src) != len(dst) {
		return nil, nil, arerrors.WrapInsufficientInput("EstimateHomographyRANSAC: need at least 4 correspondences")
	}
	thresholdSq := thresholdPx * thresholdPx

	var best *Homography
	var bestInliers []int
	for i := 0; i < maxIters; i++ {
		sample := sampleIndices(len(src), homographySampleSize, rng)
		s1 := make([]r2.Point, homographySampleSize)
		s2 := make([]r2.Point, homographySampleSize)
		for j, idx := range sample {
			s1[j] = src[idx]
			s2[j] = dst[idx]
		}
		h, err := homographyFromPoints(s1, s2)
		if err != nil {
			continue
		}

		inliers := make([]int, 0, len(src))
		for j := range src {
			proj := h.Apply(src[j])
			dx, dy := proj.X-dst[j].X, proj.Y-dst[j].Y
			if dx*dx+dy*dy < thresholdSq {
				inliers = append(inliers, j)
			}
		}
		if len(inliers) > len(bestInliers) {
			best, bestInliers = h, inliers
		}
	}

	if best == nil {
		return nil, nil, arerrors.WrapDegenerateGeometry("EstimateHomographyRANSAC: RANSAC failed to find a consistent homography")
	}

	in1 := make([]r2.Point, len(bestInliers))
	in2 := make([]r2.Point, len(bestInliers))
	for i, idx := range bestInliers {
		in1[i] = src[idx]
		in2[i] = dst[idx]
	}
	if refined, err := homographyFromPoints(in1, in2); err == nil {
		best = refined
	}
	return best, bestInliers, nil
}
