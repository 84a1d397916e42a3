package transform

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
)

const pnpSampleSize = 6

// pnpConfidence is the RANSAC success probability used to shorten
// SolvePnPRANSAC's iteration count once a good inlier set is found.
const pnpConfidence = 0.99

// PnPResult is a solved camera-from-world pose of §4.3 step 3 / §4.8
// step 5, held as a rotation matrix and a translation vector.
type PnPResult struct {
	Rotation    *spatialmath.RotationMatrix
	Translation r3.Vector
}

// solvePnPLinear solves for the camera-from-world pose via the DLT method:
// normalize image points by K^-1, build the 2n x 12 constraint matrix for
// the 3x4 projection [R|t] up to scale, then project the rotation block
// onto the nearest orthonormal matrix. There is no PnP routine anywhere in
// the reference corpus; this reuses the same SVD-based DLT technique as
// fundamentalFromEightPoint and homographyFromPoints rather than
// introducing an unrelated numerical method.
func solvePnPLinear(objPts []r3.Vector, imgPts []r2.Point, k *mat.Dense) (*PnPResult, error) {
	n := len(objPts)
	if n < pnpSampleSize || n != len(imgPts) {
		return nil, arerrors.WrapInsufficientInput("solvePnPLinear: need at least 6 correspondences")
	}

	kInv := mat.NewDense(3, 3, nil)
	if err := kInv.Inverse(k); err != nil {
		return nil, arerrors.WrapDegenerateGeometry("solvePnPLinear: camera matrix not invertible: " + err.Error())
	}

	a := mat.NewDense(2*n, 12, nil)
	for i := 0; i < n; i++ {
		px := mulMatVec(kInv, []float64{imgPts[i].X, imgPts[i].Y, 1})
		xn, yn := px[0]/px[2], px[1]/px[2]
		X, Y, Z := objPts[i].X, objPts[i].Y, objPts[i].Z

		a.SetRow(2*i, []float64{
			-X, -Y, -Z, -1, 0, 0, 0, 0, xn * X, xn * Y, xn * Z, xn,
		})
		a.SetRow(2*i+1, []float64{
			0, 0, 0, 0, -X, -Y, -Z, -1, yn * X, yn * Y, yn * Z, yn,
		})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, arerrors.WrapDegenerateGeometry("solvePnPLinear: SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	m := v.ColView(11)

	aBlock := mat.NewDense(3, 3, []float64{
		m.AtVec(0), m.AtVec(1), m.AtVec(2),
		m.AtVec(4), m.AtVec(5), m.AtVec(6),
		m.AtVec(8), m.AtVec(9), m.AtVec(10),
	})
	b := []float64{m.AtVec(3), m.AtVec(7), m.AtVec(11)}

	var rowNorm float64
	for i := 0; i < 3; i++ {
		rowNorm += math.Sqrt(aBlock.At(i, 0)*aBlock.At(i, 0) + aBlock.At(i, 1)*aBlock.At(i, 1) + aBlock.At(i, 2)*aBlock.At(i, 2))
	}
	scale := 3 / rowNorm
	if rowNorm < 1e-12 {
		return nil, arerrors.WrapDegenerateGeometry("solvePnPLinear: degenerate PnP solution")
	}

	var rSvd mat.SVD
	scaled := mat.NewDense(3, 3, nil)
	scaled.Scale(scale, aBlock)
	if ok := rSvd.Factorize(scaled, mat.SVDFull); !ok {
		return nil, arerrors.WrapDegenerateGeometry("solvePnPLinear: SVD factorization failed")
	}
	var ru, rv mat.Dense
	rSvd.UTo(&ru)
	rSvd.VTo(&rv)
	var rMat mat.Dense
	rMat.Mul(&ru, rv.T())

	if mat.Det(&rMat) < 0 {
		scale = -scale
		rMat.Scale(-1, &rMat)
	}

	t := r3.Vector{X: scale * b[0], Y: scale * b[1], Z: scale * b[2]}
	rot, err := spatialmath.NewRotationMatrix(flattenDense(&rMat))
	if err != nil {
		return nil, err
	}
	return &PnPResult{Rotation: rot, Translation: t}, nil
}

// reprojectionErrorSq returns the squared pixel reprojection error of
// objPt under (R,t,K) against imgPt.
func reprojectionErrorSq(r *PnPResult, k *mat.Dense, objPt r3.Vector, imgPt r2.Point) float64 {
	rowMajor := r.Rotation.RawRowMajor()
	cam := r3.Vector{
		X: rowMajor[0]*objPt.X + rowMajor[1]*objPt.Y + rowMajor[2]*objPt.Z + r.Translation.X,
		Y: rowMajor[3]*objPt.X + rowMajor[4]*objPt.Y + rowMajor[5]*objPt.Z + r.Translation.Y,
		Z: rowMajor[6]*objPt.X + rowMajor[7]*objPt.Y + rowMajor[8]*objPt.Z + r.Translation.Z,
	}
	if cam.Z <= 1e-9 {
		return math.Inf(1)
	}
	proj := mulMatVec(k, []float64{cam.X, cam.Y, cam.Z})
	px, py := proj[0]/cam.Z, proj[1]/cam.Z
	dx, dy := px-imgPt.X, py-imgPt.Y
	return dx*dx + dy*dy
}

// SolvePnPRANSAC robustly recovers the camera-from-world pose from object
// point / image point correspondences, the PnP-RANSAC step shared by §4.3
// step 3 and §4.8 step 5 (100 iterations and an 8px threshold at the call
// sites; confidence 0.99 via pnpConfidence, which caps maxIters adaptively).
func SolvePnPRANSAC(objPts []r3.Vector, imgPts []r2.Point, k *mat.Dense, thresholdPx float64, maxIters int, rng *rand.Rand) (*PnPResult, []int, error) {
	if len(objPts) < pnpSampleSize || len(objPts) != len(imgPts) {
		return nil, nil, arerrors.WrapInsufficientInput("SolvePnPRANSAC: need at least 6 correspondences")
	}
	thresholdSq := thresholdPx * thresholdPx

	var best *PnPResult
	var bestInliers []int
	iters := maxIters
	for i := 0; i < iters; i++ {
		sample := sampleIndices(len(objPts), pnpSampleSize, rng)
		s1 := make([]r3.Vector, pnpSampleSize)
		s2 := make([]r2.Point, pnpSampleSize)
		for j, idx := range sample {
			s1[j] = objPts[idx]
			s2[j] = imgPts[idx]
		}
		result, err := solvePnPLinear(s1, s2, k)
		if err != nil {
			continue
		}

		inliers := make([]int, 0, len(objPts))
		for j := range objPts {
			if reprojectionErrorSq(result, k, objPts[j], imgPts[j]) < thresholdSq {
				inliers = append(inliers, j)
			}
		}
		if len(inliers) > len(bestInliers) {
			best, bestInliers = result, inliers
			iters = adaptiveMaxIters(pnpConfidence, float64(len(inliers))/float64(len(objPts)), pnpSampleSize, maxIters)
		}
	}

	if best == nil || len(bestInliers) < pnpSampleSize {
		return nil, nil, arerrors.WrapDegenerateGeometry("SolvePnPRANSAC: RANSAC failed to find a consistent pose")
	}

	in1 := make([]r3.Vector, len(bestInliers))
	in2 := make([]r2.Point, len(bestInliers))
	for i, idx := range bestInliers {
		in1[i] = objPts[idx]
		in2[i] = imgPts[idx]
	}
	if refined, err := solvePnPLinear(in1, in2, k); err == nil {
		best = refined
	}
	return best, bestInliers, nil
}
