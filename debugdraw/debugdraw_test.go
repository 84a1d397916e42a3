package debugdraw

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/Yoon-seoyeon286/tossinapp-ar/slam/imagetarget"
	"github.com/Yoon-seoyeon286/tossinapp-ar/slam/plane"
)

func blankBase(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestNewPreservesFrameDimensions(t *testing.T) {
	o := New(blankBase(64, 48))
	out := o.Image()
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 64)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 48)
}

func TestDrawKeypointsDoesNotPanicOnEmptyOrOutOfBoundsPoints(t *testing.T) {
	o := New(blankBase(64, 48))
	o.DrawKeypoints(nil)
	o.DrawKeypoints([]image.Point{{X: 10, Y: 10}, {X: -5, Y: 1000}})
}

func TestDrawProjectedPlaneDrawsClosedQuad(t *testing.T) {
	o := New(blankBase(64, 48))
	corners := [4]r2.Point{{X: 5, Y: 5}, {X: 50, Y: 5}, {X: 50, Y: 40}, {X: 5, Y: 40}}
	o.DrawProjectedPlane(corners)
}

func TestDrawTargetDrawsQuadAndLabel(t *testing.T) {
	o := New(blankBase(64, 48))
	target := imagetarget.DetectedTarget{
		Name:    "card",
		Corners: [4]r2.Point{{X: 1, Y: 1}, {X: 40, Y: 1}, {X: 40, Y: 30}, {X: 1, Y: 30}},
	}
	o.DrawTarget(target)
}

func TestDrawPlanesSkipsPlaneWithFailedProjection(t *testing.T) {
	o := New(blankBase(64, 48))
	planes := []*plane.DetectedPlane{
		{Corners: [4]r3.Vector{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 2}, {X: 0, Y: 0, Z: 2}}},
	}
	calls := 0
	project := func(x, y, z float64) (r2.Point, bool) {
		calls++
		return r2.Point{}, false
	}
	o.DrawPlanes(planes, project)
	test.That(t, calls, test.ShouldBeGreaterThan, 0)
}
