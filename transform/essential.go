package transform

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
)

const essentialSampleSize = 8

// normalization holds the isotropic scaling transform T such that
// T * p brings a point set to zero mean and average distance sqrt(2) from
// the origin, the preconditioning step of the normalized 8-point algorithm.
type normalization struct {
	T            *mat.Dense
	scale        float64
	meanX, meanY float64
}

func computeNormalization(pts []r2.Point) *normalization {
	var meanX, meanY float64
	for _, p := range pts {
		meanX += p.X
		meanY += p.Y
	}
	n := float64(len(pts))
	meanX /= n
	meanY /= n

	var avgDist float64
	for _, p := range pts {
		dx, dy := p.X-meanX, p.Y-meanY
		avgDist += math.Hypot(dx, dy)
	}
	avgDist /= n
	if avgDist < 1e-12 {
		avgDist = 1e-12
	}
	scale := math.Sqrt2 / avgDist

	t := mat.NewDense(3, 3, []float64{
		scale, 0, -scale * meanX,
		0, scale, -scale * meanY,
		0, 0, 1,
	})
	return &normalization{T: t, scale: scale, meanX: meanX, meanY: meanY}
}

func (n *normalization) apply(p r2.Point) r2.Point {
	return r2.Point{X: n.scale * (p.X - n.meanX), Y: n.scale * (p.Y - n.meanY)}
}

// fundamentalFromEightPoint runs the normalized 8-point algorithm over
// exactly len(pts1) correspondences (>=8), following the structure of the
// teacher's ComputeFundamentalMatrixAllPoints in rimage/transform/two_view_geom.go:
// build the point-wise constraint matrix A, take the singular vector of
// smallest singular value, then enforce rank 2 via a second SVD.
func fundamentalFromEightPoint(pts1, pts2 []r2.Point) (*mat.Dense, error) {
	if len(pts1) < essentialSampleSize || len(pts1) != len(pts2) {
		return nil, arerrors.WrapInsufficientInput("fundamentalFromEightPoint: need at least 8 correspondences")
	}

	norm1 := computeNormalization(pts1)
	norm2 := computeNormalization(pts2)

	n := len(pts1)
	a := mat.NewDense(n, 9, nil)
	for i := 0; i < n; i++ {
		p1 := norm1.apply(pts1[i])
		p2 := norm2.apply(pts2[i])
		a.SetRow(i, []float64{
			p2.X * p1.X, p2.X * p1.Y, p2.X,
			p2.Y * p1.X, p2.Y * p1.Y, p2.Y,
			p1.X, p1.Y, 1,
		})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, arerrors.WrapDegenerateGeometry("fundamentalFromEightPoint: SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	fVec := v.ColView(8)

	fNorm := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			fNorm.Set(i, j, fVec.AtVec(i*3+j))
		}
	}

	fRank2, err := enforceRank2(fNorm)
	if err != nil {
		return nil, err
	}

	// Denormalize: F = T2^T * Fn * T1
	var tmp, f mat.Dense
	tmp.Mul(norm2.T.T(), fRank2)
	f.Mul(&tmp, norm1.T)
	return &f, nil
}

// enforceRank2 zeroes the smallest singular value of m, the rank-2
// constraint every fundamental matrix must satisfy.
func enforceRank2(m *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDFull); !ok {
		return nil, arerrors.WrapDegenerateGeometry("enforceRank2: SVD factorization failed")
	}
	sv := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := mat.NewDense(3, 3, []float64{sv[0], 0, 0, 0, sv[1], 0, 0, 0, 0})

	var tmp, out mat.Dense
	tmp.Mul(&u, s)
	out.Mul(&tmp, v.T())
	return &out, nil
}

// fundamentalToEssential converts a fundamental matrix to an essential
// matrix given the shared camera intrinsics K, E = K^T F K.
func fundamentalToEssential(f *mat.Dense, k *mat.Dense) *mat.Dense {
	var tmp, e mat.Dense
	tmp.Mul(k.T(), f)
	e.Mul(&tmp, k)
	return &e
}

// sampsonDistance returns the squared Sampson distance of a correspondence
// against fundamental matrix f, in squared pixels.
func sampsonDistance(f *mat.Dense, p1, p2 r2.Point) float64 {
	x1 := []float64{p1.X, p1.Y, 1}
	x2 := []float64{p2.X, p2.Y, 1}

	fx1 := mulMatVec(f, x1)
	ftx2 := mulMatVecTransposed(f, x2)

	num := x2[0]*fx1[0] + x2[1]*fx1[1] + x2[2]*fx1[2]
	denom := fx1[0]*fx1[0] + fx1[1]*fx1[1] + ftx2[0]*ftx2[0] + ftx2[1]*ftx2[1]
	if denom < 1e-12 {
		return math.Inf(1)
	}
	return num * num / denom
}

func mulMatVec(m *mat.Dense, v []float64) []float64 {
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = m.At(i, 0)*v[0] + m.At(i, 1)*v[1] + m.At(i, 2)*v[2]
	}
	return out
}

func mulMatVecTransposed(m *mat.Dense, v []float64) []float64 {
	out := make([]float64, 3)
	for j := 0; j < 3; j++ {
		out[j] = m.At(0, j)*v[0] + m.At(1, j)*v[1] + m.At(2, j)*v[2]
	}
	return out
}

// EstimateEssentialMatrixRANSAC robustly estimates the essential matrix
// between two sets of pixel correspondences, following §4.3 step 4: RANSAC
// over the normalized 8-point algorithm with confidence 0.999 and a
// threshold expressed in pixels (squared Sampson distance).
func EstimateEssentialMatrixRANSAC(pts1, pts2 []r2.Point, k *mat.Dense, thresholdPx, confidence float64, maxIters int, rng *rand.Rand) (*mat.Dense, []int, error) {
	if len(pts1) < essentialSampleSize || len(pts1) != len(pts2) {
		return nil, nil, arerrors.WrapInsufficientInput("EstimateEssentialMatrixRANSAC: need at least 8 correspondences")
	}
	thresholdSq := thresholdPx * thresholdPx

	var bestF *mat.Dense
	var bestInliers []int
	iters := maxIters
	for i := 0; i < iters; i++ {
		sample := sampleIndices(len(pts1), essentialSampleSize, rng)
		s1 := make([]r2.Point, essentialSampleSize)
		s2 := make([]r2.Point, essentialSampleSize)
		for j, idx := range sample {
			s1[j] = pts1[idx]
			s2[j] = pts2[idx]
		}
		f, err := fundamentalFromEightPoint(s1, s2)
		if err != nil {
			continue
		}

		inliers := make([]int, 0, len(pts1))
		for j := range pts1 {
			if sampsonDistance(f, pts1[j], pts2[j]) < thresholdSq {
				inliers = append(inliers, j)
			}
		}
		if len(inliers) > len(bestInliers) {
			bestF, bestInliers = f, inliers
			iters = adaptiveMaxIters(confidence, float64(len(inliers))/float64(len(pts1)), essentialSampleSize, maxIters)
		}
	}

	if bestF == nil || len(bestInliers) < essentialSampleSize {
		return nil, nil, arerrors.WrapDegenerateGeometry("EstimateEssentialMatrixRANSAC: RANSAC failed to find a consistent essential matrix")
	}

	// Refit on all inliers for a less noisy final estimate.
	in1 := make([]r2.Point, len(bestInliers))
	in2 := make([]r2.Point, len(bestInliers))
	for i, idx := range bestInliers {
		in1[i] = pts1[idx]
		in2[i] = pts2[idx]
	}
	fRefined, err := fundamentalFromEightPoint(in1, in2)
	if err != nil {
		fRefined = bestF
	}

	e := fundamentalToEssential(fRefined, k)
	return e, bestInliers, nil
}
