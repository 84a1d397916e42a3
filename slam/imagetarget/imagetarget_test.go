package imagetarget

import (
	"image"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/Yoon-seoyeon286/tossinapp-ar/config"
	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints"
	"github.com/Yoon-seoyeon286/tossinapp-ar/transform"
)

func TestIsConvexAcceptsSquareRejectsBowtie(t *testing.T) {
	square := [4]r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	test.That(t, isConvex(square), test.ShouldBeTrue)

	bowtie := [4]r2.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	test.That(t, isConvex(bowtie), test.ShouldBeFalse)
}

func TestProjectedCornersAppliesIdentityHomography(t *testing.T) {
	target := &Target{TemplateW: 100, TemplateH: 50}
	identity := &transform.Homography{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	corners := projectedCorners(target, identity)
	test.That(t, corners[0], test.ShouldResemble, r2.Point{X: 0, Y: 0})
	test.That(t, corners[2], test.ShouldResemble, r2.Point{X: 100, Y: 50})
}

func TestObjectAndImagePointsCentersOnTemplateMiddle(t *testing.T) {
	target := &Target{
		Keypoints: []image.Point{{X: 0, Y: 0}, {X: 100, Y: 50}},
		WidthM:    2,
		HeightM:   1,
		TemplateW: 100,
		TemplateH: 50,
	}
	framePts := []image.Point{{X: 5, Y: 5}, {X: 6, Y: 6}}
	matches := []keypoints.Match{{Idx1: 0, Idx2: 0}, {Idx1: 1, Idx2: 1}}

	objPts, imgPts := objectAndImagePoints(target, matches, framePts)
	test.That(t, objPts[0].X, test.ShouldAlmostEqual, -1.0, 1e-9)
	test.That(t, objPts[0].Y, test.ShouldAlmostEqual, -0.5, 1e-9)
	test.That(t, objPts[1].X, test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, objPts[1].Y, test.ShouldAlmostEqual, 0.5, 1e-9)
	test.That(t, imgPts[0], test.ShouldResemble, r2.Point{X: 5, Y: 5})
}

func TestTrackerRegistrySetEnabledAndRemove(t *testing.T) {
	opts := config.DefaultOptions()
	tr := NewTracker(opts)

	tr.targets[0] = &Target{ID: 0, Name: "card", Enabled: true}
	tr.nextID = 1
	test.That(t, tr.Count(), test.ShouldEqual, 1)

	test.That(t, tr.SetEnabled(0, false), test.ShouldBeTrue)
	test.That(t, tr.targets[0].Enabled, test.ShouldBeFalse)
	test.That(t, tr.SetEnabled(99, false), test.ShouldBeFalse)

	test.That(t, tr.RemoveTarget(0), test.ShouldBeTrue)
	test.That(t, tr.Count(), test.ShouldEqual, 0)
	test.That(t, tr.RemoveTarget(0), test.ShouldBeFalse)
}

func TestRegisterRejectsTooFewKeypoints(t *testing.T) {
	opts := config.DefaultOptions()
	opts.MinMatches = 10
	tr := NewTracker(opts)

	// A blank image yields no FAST corners at all, well under MinMatches.
	blank := image.NewGray(image.Rect(0, 0, 32, 32))
	_, err := tr.Register(blank, "blank", 0.1, 0.1)
	test.That(t, err, test.ShouldNotBeNil)
}
