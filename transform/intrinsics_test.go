package transform

import (
	"testing"

	"go.viam.com/test"
)

func TestDefaultIntrinsicsValid(t *testing.T) {
	p := DefaultIntrinsics()
	test.That(t, p.CheckValid(), test.ShouldBeNil)
	test.That(t, p.Width, test.ShouldEqual, 640)
	test.That(t, p.Height, test.ShouldEqual, 480)
}

func TestCheckValidRejectsBadFocalLength(t *testing.T) {
	p := &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 0, Fy: 500, Cx: 320, Cy: 240}
	test.That(t, p.CheckValid(), test.ShouldNotBeNil)

	var nilPtr *PinholeCameraIntrinsics
	test.That(t, nilPtr.CheckValid(), test.ShouldNotBeNil)
}

func TestGetCameraMatrix(t *testing.T) {
	p := DefaultIntrinsics()
	k := p.GetCameraMatrix()
	test.That(t, k.At(0, 0), test.ShouldEqual, 500.0)
	test.That(t, k.At(1, 1), test.ShouldEqual, 500.0)
	test.That(t, k.At(0, 2), test.ShouldEqual, 320.0)
	test.That(t, k.At(1, 2), test.ShouldEqual, 240.0)
	test.That(t, k.At(2, 2), test.ShouldEqual, 1.0)
}

func TestProjectionMatrixRow3(t *testing.T) {
	p := DefaultIntrinsics()
	m := p.ProjectionMatrix(640, 480, 0.01, 1000)
	test.That(t, m.At(3, 2), test.ShouldEqual, -1.0)
	test.That(t, m.At(3, 3), test.ShouldEqual, 0.0)
}
