package engine

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/Yoon-seoyeon286/tossinapp-ar/config"
)

func blankFrame(t *testing.T, width, height int) []byte {
	t.Helper()
	return make([]byte, width*height*4)
}

func TestProcessFrameRejectsMismatchedBufferLength(t *testing.T) {
	e := New(config.DefaultOptions(), golog.NewTestLogger(t))
	ok := e.ProcessFrame(640, 480, make([]byte, 10))
	test.That(t, ok, test.ShouldBeFalse)
}

func TestProcessFrameOnBlankFrameStaysUninitialized(t *testing.T) {
	e := New(config.DefaultOptions(), golog.NewTestLogger(t))
	frame := blankFrame(t, 640, 480)

	ok := e.ProcessFrame(640, 480, frame)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, e.IsInitialized(), test.ShouldBeFalse)
	test.That(t, e.IsTracking(), test.ShouldBeFalse)

	stats := e.Stats()
	test.That(t, stats.FrameCount, test.ShouldEqual, 1)
}

func TestGetProjectionMatrixUsesConfiguredNearFar(t *testing.T) {
	opts := config.DefaultOptions()
	e := New(opts, golog.NewTestLogger(t))

	proj := e.GetProjectionMatrix(640, 480)
	// Index 10 of the column-major array is column 2, row 2, which
	// encodes -(far+near)/(far-near); just check it's populated and not
	// the zero matrix.
	test.That(t, proj[10], test.ShouldNotEqual, 0.0)
}

func TestGetViewMatrixAvailableBeforeInitialization(t *testing.T) {
	// The tracker's currentPose starts as identity, which is invertible,
	// so the view matrix is available even before tracking initializes.
	e := New(config.DefaultOptions(), golog.NewTestLogger(t))
	_, ok := e.GetViewMatrix()
	test.That(t, ok, test.ShouldBeTrue)
}

func TestAddImageTargetRejectsTooFewKeypoints(t *testing.T) {
	opts := config.DefaultOptions()
	opts.MinMatches = 10
	e := New(opts, golog.NewTestLogger(t))

	id := e.AddImageTarget(64, 64, blankFrame(t, 64, 64), "card", 0.1)
	test.That(t, id, test.ShouldEqual, -1)
}

func TestSetAndRemoveImageTargetOnUnknownIDFails(t *testing.T) {
	e := New(config.DefaultOptions(), golog.NewTestLogger(t))
	test.That(t, e.SetImageTargetEnabled(42, true), test.ShouldBeFalse)
	test.That(t, e.RemoveImageTarget(42), test.ShouldBeFalse)
}

func TestEstimateGroundPlaneFailsWithEmptyMap(t *testing.T) {
	e := New(config.DefaultOptions(), golog.NewTestLogger(t))
	err := e.EstimateGroundPlane()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestResetClearsFrameCountAndStats(t *testing.T) {
	e := New(config.DefaultOptions(), golog.NewTestLogger(t))
	e.ProcessFrame(640, 480, blankFrame(t, 640, 480))
	test.That(t, e.Stats().FrameCount, test.ShouldEqual, 1)

	e.Reset()
	test.That(t, e.Stats().FrameCount, test.ShouldEqual, 0)
	test.That(t, e.GetMapPointCount(), test.ShouldEqual, int32(0))
	test.That(t, e.GetKeyframeCount(), test.ShouldEqual, int32(0))
	test.That(t, len(e.GetDetectedTargets()), test.ShouldEqual, 0)
	test.That(t, len(e.GetDetectedPlanes()), test.ShouldEqual, 0)
}

func TestRaycastFailsAtIdentityPoseParallelToGroundPlane(t *testing.T) {
	// The tracker's pose starts as identity: the camera sits on the y=0
	// ground plane looking straight along it, so the centre ray is
	// parallel to the plane and no hit is possible.
	e := New(config.DefaultOptions(), golog.NewTestLogger(t))
	_, ok := e.Raycast(320, 240, 640, 480)
	test.That(t, ok, test.ShouldBeFalse)
}
