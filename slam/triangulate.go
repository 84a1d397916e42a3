package slam

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints"
	"github.com/Yoon-seoyeon286/tossinapp-ar/transform"
)

// maxTriangulationDistance is the descriptor-distance ceiling for a
// cross-check match to be eligible for triangulation, per §4.4.
const maxTriangulationDistance = 50

// TriangulateBetweenKeyFrames implements §4.4: for every cross-check match
// between kfI and kfJ under the distance ceiling whose left keypoint has no
// existing map-point link, triangulate a new map point and link both
// keyframes' keypoints to it.
func TriangulateBetweenKeyFrames(store *MapStore, kfI, kfJ *KeyFrame, k *mat.Dense) int {
	matches := keypoints.CrossCheckMatchWithMaxDist(kfI.Descriptors, kfJ.Descriptors, maxTriangulationDistance)

	poseI := kfI.Pose
	poseJ := kfJ.Pose
	worldToCamI, okI := poseI.Inverse()
	worldToCamJ, okJ := poseJ.Inverse()
	if !okI || !okJ {
		return 0
	}
	pI := transform.ProjectionFromPose(k, worldToCamI)
	pJ := transform.ProjectionFromPose(k, worldToCamJ)

	created := 0
	for _, m := range matches {
		if kfI.MapPointIDs[m.Idx1] != NoMapPoint {
			continue
		}
		pi := kfI.Keypoints[m.Idx1]
		pj := kfJ.Keypoints[m.Idx2]

		world, ok := transform.TriangulatePoint(pI, pJ, r2.Point{X: float64(pi.X), Y: float64(pi.Y)}, r2.Point{X: float64(pj.X), Y: float64(pj.Y)})
		if !ok {
			continue
		}
		camI := worldToCamI.TransformPoint(world)
		if camI.Z <= 0 {
			continue
		}

		mp := store.AddMapPoint(&MapPoint{
			WorldPos:   world,
			Descriptor: kfI.Descriptors[m.Idx1],
			MatchCount: 1,
		})
		mp.Observations[kfI.ID] = true
		mp.Observations[kfJ.ID] = true
		kfI.MapPointIDs[m.Idx1] = mp.ID
		kfJ.MapPointIDs[m.Idx2] = mp.ID
		created++
	}
	return created
}
