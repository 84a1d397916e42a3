package transform

import (
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
)

// CandidatePose is one of the four (R, t) hypotheses produced by essential
// matrix decomposition, following the teacher's cam_poses.go.
type CandidatePose struct {
	Rotation    *spatialmath.RotationMatrix
	Translation r3.Vector
}

// DecomposeEssentialMatrix factors e = U*diag(1,1,0)*V^T and returns the
// four candidate relative poses (R1,t), (R1,-t), (R2,t), (R2,-t), mirroring
// the teacher's DecomposeEssentialMatrix in rimage/transform/cam_poses.go.
func DecomposeEssentialMatrix(e *mat.Dense) ([]CandidatePose, error) {
	var svd mat.SVD
	if ok := svd.Factorize(e, mat.SVDFull); !ok {
		return nil, arerrors.WrapDegenerateGeometry("DecomposeEssentialMatrix: SVD factorization of essential matrix failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	if mat.Det(&u) < 0 {
		scaleCol(&u, 2, -1)
	}
	if mat.Det(&v) < 0 {
		scaleCol(&v, 2, -1)
	}

	w := mat.NewDense(3, 3, []float64{0, -1, 0, 1, 0, 0, 0, 0, 1})

	var r1, r2m, tmp mat.Dense
	tmp.Mul(&u, w)
	r1.Mul(&tmp, v.T())
	tmp.Mul(&u, w.T())
	r2m.Mul(&tmp, v.T())

	t := r3.Vector{X: u.At(0, 2), Y: u.At(1, 2), Z: u.At(2, 2)}

	rot1, err := spatialmath.NewRotationMatrix(flattenDense(&r1))
	if err != nil {
		return nil, err
	}
	rot2, err := spatialmath.NewRotationMatrix(flattenDense(&r2m))
	if err != nil {
		return nil, err
	}

	return []CandidatePose{
		{Rotation: rot1, Translation: t},
		{Rotation: rot1, Translation: t.Mul(-1)},
		{Rotation: rot2, Translation: t},
		{Rotation: rot2, Translation: t.Mul(-1)},
	}, nil
}

func scaleCol(m *mat.Dense, col int, factor float64) {
	for i := 0; i < m.RawMatrix().Rows; i++ {
		m.Set(i, col, m.At(i, col)*factor)
	}
}

func flattenDense(m *mat.Dense) []float64 {
	out := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*3+j] = m.At(i, j)
		}
	}
	return out
}

// GetCorrectCameraPose selects, among the four candidates, the one that
// places the most triangulated points in front of both cameras, following
// the teacher's GetCorrectCameraPoseFromPoints in cam_poses.go.
func GetCorrectCameraPose(candidates []CandidatePose, pts1, pts2 []r2.Point, k *mat.Dense) (CandidatePose, []r3.Vector, error) {
	identity := spatialmath.Identity4()
	p1 := projectionFromPose(k, identity)

	var best CandidatePose
	var bestPoints []r3.Vector
	bestCount := -1
	for _, cand := range candidates {
		poseMat := spatialmath.NewPoseMatrix(cand.Rotation, cand.Translation)
		p2 := projectionFromPose(k, poseMat)

		points := make([]r3.Vector, 0, len(pts1))
		count := 0
		for i := range pts1 {
			pt, ok := TriangulatePoint(p1, p2, pts1[i], pts2[i])
			if !ok {
				continue
			}
			depth2 := poseMat.At(2, 0)*pt.X + poseMat.At(2, 1)*pt.Y + poseMat.At(2, 2)*pt.Z + poseMat.At(2, 3)
			if pt.Z > 0 && depth2 > 0 {
				count++
			}
			points = append(points, pt)
		}
		if count > bestCount {
			bestCount, best, bestPoints = count, cand, points
		}
	}
	if bestCount <= 0 {
		return CandidatePose{}, nil, arerrors.WrapDegenerateGeometry("GetCorrectCameraPose: no candidate pose produced positive-depth points")
	}
	return best, bestPoints, nil
}

// ProjectionFromPose builds the 3x4 camera projection matrix K*[R|t] for a
// camera-from-world pose, used for triangulation against arbitrary
// keyframes (§4.4) as well as internally for two-view initialization.
func ProjectionFromPose(k *mat.Dense, pose *spatialmath.Matrix4) *mat.Dense {
	return projectionFromPose(k, pose)
}

// projectionFromPose builds the 3x4 camera projection matrix K*[R|t],
// taking [R|t] directly from a camera-from-world pose.
func projectionFromPose(k *mat.Dense, pose *spatialmath.Matrix4) *mat.Dense {
	rt := mat.NewDense(3, 4, []float64{
		pose.At(0, 0), pose.At(0, 1), pose.At(0, 2), pose.At(0, 3),
		pose.At(1, 0), pose.At(1, 1), pose.At(1, 2), pose.At(1, 3),
		pose.At(2, 0), pose.At(2, 1), pose.At(2, 2), pose.At(2, 3),
	})
	out := mat.NewDense(3, 4, nil)
	out.Mul(k, rt)
	return out
}

// EstimateRelativePose runs the full two-view initialization pipeline of
// §4.3 step 4-5: RANSAC essential matrix, decomposition, and best-pose
// selection by positive-depth triangulation count.
func EstimateRelativePose(pts1, pts2 []r2.Point, k *mat.Dense, thresholdPx, confidence float64, maxIters int, rng *rand.Rand) (CandidatePose, []r3.Vector, []int, error) {
	e, inliers, err := EstimateEssentialMatrixRANSAC(pts1, pts2, k, thresholdPx, confidence, maxIters, rng)
	if err != nil {
		return CandidatePose{}, nil, nil, err
	}

	in1 := make([]r2.Point, len(inliers))
	in2 := make([]r2.Point, len(inliers))
	for i, idx := range inliers {
		in1[i] = pts1[idx]
		in2[i] = pts2[idx]
	}

	candidates, err := DecomposeEssentialMatrix(e)
	if err != nil {
		return CandidatePose{}, nil, nil, err
	}
	best, points, err := GetCorrectCameraPose(candidates, in1, in2, k)
	if err != nil {
		return CandidatePose{}, nil, nil, err
	}
	return best, points, inliers, nil
}
