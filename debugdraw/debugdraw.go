// Package debugdraw renders an optional diagnostic overlay (tracked
// keypoints, plane outlines, target quadrilaterals) on top of a camera
// frame. It is never on the tracking hot path: callers opt in per frame,
// following the teacher's rimage draw helpers wrapping fogleman/gg.
package debugdraw

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"

	"github.com/Yoon-seoyeon286/tossinapp-ar/slam/imagetarget"
	"github.com/Yoon-seoyeon286/tossinapp-ar/slam/plane"
)

var (
	colorKeypoint = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	colorPlane    = color.RGBA{R: 0, G: 128, B: 255, A: 255}
	colorTarget   = color.RGBA{R: 255, G: 64, B: 0, A: 255}
)

// Overlay accumulates drawing commands against a base frame and produces
// an annotated RGBA image.
type Overlay struct {
	dc *gg.Context
}

// New builds an Overlay over a frame of the given size, drawn from base.
func New(base image.Image) *Overlay {
	bounds := base.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(base, 0, 0)
	return &Overlay{dc: dc}
}

// DrawKeypoints marks every tracked keypoint with a small filled circle.
func (o *Overlay) DrawKeypoints(points []image.Point) {
	o.dc.SetColor(colorKeypoint)
	for _, p := range points {
		o.dc.DrawCircle(float64(p.X), float64(p.Y), 2)
		o.dc.Fill()
	}
}

// DrawProjectedPlane draws a plane's already-projected screen-space
// quadrilateral.
func (o *Overlay) DrawProjectedPlane(corners [4]r2.Point) {
	o.drawQuad(corners, colorPlane, 2)
}

// DrawTarget draws a detected image target's screen-space quadrilateral
// and its label.
func (o *Overlay) DrawTarget(target imagetarget.DetectedTarget) {
	o.drawQuad(target.Corners, colorTarget, 3)
	o.dc.SetColor(colorTarget)
	o.dc.DrawStringAnchored(target.Name, target.Corners[0].X, target.Corners[0].Y-6, 0, 1)
}

// DrawPlanes is a convenience wrapper that reprojects every tracked plane
// through project into screen space and draws it, skipping any plane
// whose corners fail to project.
func (o *Overlay) DrawPlanes(planes []*plane.DetectedPlane, project func(x, y, z float64) (r2.Point, bool)) {
	for _, p := range planes {
		var screen [4]r2.Point
		ok := true
		for i, c := range p.Corners {
			pt, projOK := project(c.X, c.Y, c.Z)
			if !projOK {
				ok = false
				break
			}
			screen[i] = pt
		}
		if ok {
			o.DrawProjectedPlane(screen)
		}
	}
}

func (o *Overlay) drawQuad(corners [4]r2.Point, c color.Color, width float64) {
	o.dc.SetColor(c)
	o.dc.SetLineWidth(width)
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		o.dc.DrawLine(a.X, a.Y, b.X, b.Y)
		o.dc.Stroke()
	}
}

// Image returns the annotated frame.
func (o *Overlay) Image() image.Image {
	return o.dc.Image()
}
