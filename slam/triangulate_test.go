package slam

import (
	"image"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
	"github.com/Yoon-seoyeon286/tossinapp-ar/transform"
)

func projectToPixel(k *mat.Dense, extrinsics *spatialmath.Matrix4, world r3.Vector) image.Point {
	worldToCam, _ := extrinsics.Inverse()
	p := transform.ProjectionFromPose(k, worldToCam)
	hom := []float64{world.X, world.Y, world.Z, 1}
	var out [3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			out[r] += p.At(r, c) * hom[c]
		}
	}
	return image.Point{X: int(out[0] / out[2]), Y: int(out[1] / out[2])}
}

func TestTriangulateBetweenKeyFramesCreatesPoints(t *testing.T) {
	k := mat.NewDense(3, 3, []float64{500, 0, 320, 0, 500, 240, 0, 0, 1})

	poseI := spatialmath.Identity4()
	rotJ, _ := spatialmath.NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	poseJ := spatialmath.NewPoseMatrix(rotJ, r3.Vector{X: 0.3, Y: 0, Z: 0})

	worlds := []r3.Vector{
		{X: 0.1, Y: 0.1, Z: 3}, {X: -0.2, Y: 0.2, Z: 4}, {X: 0.3, Y: -0.1, Z: 2.5},
	}

	kfI := &KeyFrame{Pose: poseI}
	kfJ := &KeyFrame{Pose: poseJ}
	for i, w := range worlds {
		kfI.Keypoints = append(kfI.Keypoints, projectToPixel(k, poseI, w))
		kfJ.Keypoints = append(kfJ.Keypoints, projectToPixel(k, poseJ, w))
		var d descriptors.Descriptor
		d[0] = uint64(i)
		kfI.Descriptors = append(kfI.Descriptors, d)
		kfJ.Descriptors = append(kfJ.Descriptors, d)
	}
	kfI.MapPointIDs = []int{NoMapPoint, NoMapPoint, NoMapPoint}
	kfJ.MapPointIDs = []int{NoMapPoint, NoMapPoint, NoMapPoint}

	store := NewMapStore()
	kfI = store.AddKeyFrame(kfI)
	kfJ = store.AddKeyFrame(kfJ)

	created := TriangulateBetweenKeyFrames(store, kfI, kfJ, k)
	test.That(t, created, test.ShouldEqual, 3)
	test.That(t, store.MapPointCount(), test.ShouldEqual, 3)

	for _, id := range kfI.MapPointIDs {
		test.That(t, id, test.ShouldNotEqual, NoMapPoint)
	}
}

func TestTriangulateBetweenKeyFramesSkipsAlreadyLinked(t *testing.T) {
	k := mat.NewDense(3, 3, []float64{500, 0, 320, 0, 500, 240, 0, 0, 1})
	poseI := spatialmath.Identity4()
	rotJ, _ := spatialmath.NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	poseJ := spatialmath.NewPoseMatrix(rotJ, r3.Vector{X: 0.3, Y: 0, Z: 0})

	world := r3.Vector{X: 0.1, Y: 0.1, Z: 3}
	var d descriptors.Descriptor
	d[0] = 1

	kfI := &KeyFrame{
		Pose:        poseI,
		Keypoints:   []image.Point{projectToPixel(k, poseI, world)},
		Descriptors: descriptors.Descriptors{d},
		MapPointIDs: []int{5},
	}
	kfJ := &KeyFrame{
		Pose:        poseJ,
		Keypoints:   []image.Point{projectToPixel(k, poseJ, world)},
		Descriptors: descriptors.Descriptors{d},
		MapPointIDs: []int{NoMapPoint},
	}

	store := NewMapStore()
	kfI = store.AddKeyFrame(kfI)
	kfJ = store.AddKeyFrame(kfJ)

	created := TriangulateBetweenKeyFrames(store, kfI, kfJ, k)
	test.That(t, created, test.ShouldEqual, 0)
}
