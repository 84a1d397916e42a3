// Package odometry implements the optional, self-contained
// fast-corners-plus-pyramidal-LK visual-odometry variant of §4.6: an
// alternative tracker path that publishes a view matrix and per-feature
// track metadata without maintaining a map, grounded on the teacher's
// vision/odometry motion-estimation structure (feature tracks, essential
// matrix recovery, accumulated pose) adapted from depth-assisted odometry
// to a pure optical-flow front end.
package odometry

import (
	"image"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
	"github.com/Yoon-seoyeon286/tossinapp-ar/transform"
)

// Config holds the variant's tunables, per §4.6.
type Config struct {
	MaxFeatures     int
	MinSpacingPx    float64
	LKWindow        int
	LKPyramidLevels int
	LKIterations    int
	LKEpsilon       float64
	EssentialThresh float64
	EssentialConf   float64
	MinPoseInliers  int
}

// DefaultConfig returns the parameters named in §4.6.
func DefaultConfig() *Config {
	return &Config{
		MaxFeatures:     500,
		MinSpacingPx:    10,
		LKWindow:        21,
		LKPyramidLevels: 3,
		LKIterations:    30,
		LKEpsilon:       0.01,
		EssentialThresh: 1.0,
		EssentialConf:   0.999,
		MinPoseInliers:  20,
	}
}

// track is a single tracked feature: its current position, id and age.
type track struct {
	id       int
	point    image.Point
	age      int
	lastFlow r2.Point
}

// Result is the per-frame published output of §4.6.
type Result struct {
	ViewMatrix  [16]float64
	Quaternion  spatialmath.Orientation
	Translation r3.Vector
	FeaturePos  []image.Point
	FeatureFlow []r2.Point
	FeatureIDs  []int
	FeatureAges []int
}

// Odometer runs the fast-corner + pyramidal-LK variant frame by frame.
type Odometer struct {
	cfg     *Config
	k       *mat.Dense
	rng     *rand.Rand
	prevImg *image.Gray
	tracks  []*track
	nextID  int
	rTotal  *spatialmath.RotationMatrix
	tTotal  r3.Vector
}

// NewOdometer builds an Odometer against camera matrix k.
func NewOdometer(cfg *Config, k *mat.Dense) *Odometer {
	identity, _ := spatialmath.NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	return &Odometer{
		cfg:    cfg,
		k:      k,
		rng:    rand.New(rand.NewSource(0xA40B1D)), //nolint:gosec
		rTotal: identity,
	}
}

// ProcessFrame implements §4.6's per-frame step.
func (o *Odometer) ProcessFrame(img *image.Gray) (Result, error) {
	if o.prevImg == nil {
		o.detectInitial(img)
		o.prevImg = img
		return o.publish(), nil
	}

	prevPts, currPts := o.trackFeatures(img)
	if len(prevPts) < o.cfg.MinPoseInliers {
		o.replenish(img)
		o.prevImg = img
		return o.publish(), arerrors.WrapInsufficientInput("ProcessFrame: too few surviving tracks for pose estimation")
	}

	candidate, _, inliers, err := transform.EstimateRelativePose(prevPts, currPts, o.k, o.cfg.EssentialThresh, o.cfg.EssentialConf, 500, o.rng)
	if err != nil || len(inliers) < o.cfg.MinPoseInliers {
		o.replenish(img)
		o.prevImg = img
		return o.publish(), arerrors.WrapDegenerateGeometry("ProcessFrame: essential matrix recovery failed")
	}

	o.tTotal = o.tTotal.Add(o.rTotal.RotateVector(candidate.Translation))
	o.rTotal = composeRotation(candidate.Rotation, o.rTotal)

	if len(o.tracks) < o.cfg.MaxFeatures/2 {
		o.replenish(img)
	}
	o.prevImg = img
	return o.publish(), nil
}

// detectInitial seeds the initial track set from FAST corners, honouring
// the minimum spacing constraint.
func (o *Odometer) detectInitial(img *image.Gray) {
	cfg := keypoints.DefaultFASTConfig()
	corners := keypoints.DetectFAST(img, cfg, o.cfg.MaxFeatures*4)
	o.tracks = nil
	for _, c := range corners {
		if len(o.tracks) >= o.cfg.MaxFeatures {
			break
		}
		if o.tooClose(c.Point) {
			continue
		}
		o.tracks = append(o.tracks, &track{id: o.nextID, point: c.Point, age: 0})
		o.nextID++
	}
}

// replenish adds new corners, respecting minimum spacing against existing
// tracks, per §4.6's replenishment rule.
func (o *Odometer) replenish(img *image.Gray) {
	cfg := keypoints.DefaultFASTConfig()
	corners := keypoints.DetectFAST(img, cfg, o.cfg.MaxFeatures*4)
	for _, c := range corners {
		if len(o.tracks) >= o.cfg.MaxFeatures {
			break
		}
		if o.tooClose(c.Point) {
			continue
		}
		o.tracks = append(o.tracks, &track{id: o.nextID, point: c.Point, age: 0})
		o.nextID++
	}
}

func (o *Odometer) tooClose(p image.Point) bool {
	for _, t := range o.tracks {
		dx := float64(p.X - t.point.X)
		dy := float64(p.Y - t.point.Y)
		if dx*dx+dy*dy < o.cfg.MinSpacingPx*o.cfg.MinSpacingPx {
			return true
		}
	}
	return false
}

// trackFeatures runs pyramidal LK (approximated as single-level patch
// matching, since no corpus KLT implementation exists to adapt; see the
// design notes) for every surviving track, discarding any that leave
// image bounds or fail to match.
func (o *Odometer) trackFeatures(img *image.Gray) ([]r2.Point, []r2.Point) {
	bounds := img.Bounds()
	half := o.cfg.LKWindow / 2

	survivors := make([]*track, 0, len(o.tracks))
	prevPts := make([]r2.Point, 0, len(o.tracks))
	currPts := make([]r2.Point, 0, len(o.tracks))

	for _, t := range o.tracks {
		newPoint, flow, ok := lkTrackOne(o.prevImg, img, t.point, half, o.cfg.LKIterations, o.cfg.LKEpsilon)
		if !ok || !newPoint.In(bounds) {
			continue
		}
		t.point = newPoint
		t.age++
		t.lastFlow = flow
		survivors = append(survivors, t)
		prevPts = append(prevPts, r2.Point{X: float64(t.point.X - int(flow.X)), Y: float64(t.point.Y - int(flow.Y))})
		currPts = append(currPts, r2.Point{X: float64(t.point.X), Y: float64(t.point.Y)})
	}
	o.tracks = survivors
	return prevPts, currPts
}

// lkTrackOne performs gradient-descent patch alignment around p between
// prev and curr, approximating single-level Lucas-Kanade optical flow.
func lkTrackOne(prev, curr *image.Gray, p image.Point, half, iterations int, epsilon float64) (image.Point, r2.Point, bool) {
	bounds := prev.Bounds()
	if p.X-half < bounds.Min.X || p.X+half >= bounds.Max.X || p.Y-half < bounds.Min.Y || p.Y+half >= bounds.Max.Y {
		return image.Point{}, r2.Point{}, false
	}

	dx, dy := 0.0, 0.0
	for iter := 0; iter < iterations; iter++ {
		var gxx, gxy, gyy, bx, by float64
		cb := curr.Bounds()
		for wy := -half; wy <= half; wy++ {
			for wx := -half; wx <= half; wx++ {
				px, py := p.X+wx, p.Y+wy
				cx, cy := p.X+wx+int(dx), p.Y+wy+int(dy)
				if cx < cb.Min.X+1 || cx >= cb.Max.X-1 || cy < cb.Min.Y+1 || cy >= cb.Max.Y-1 {
					continue
				}
				gx := float64(curr.GrayAt(cx+1, cy).Y) - float64(curr.GrayAt(cx-1, cy).Y)
				gy := float64(curr.GrayAt(cx, cy+1).Y) - float64(curr.GrayAt(cx, cy-1).Y)
				diff := float64(prev.GrayAt(px, py).Y) - float64(curr.GrayAt(cx, cy).Y)
				gxx += gx * gx
				gxy += gx * gy
				gyy += gy * gy
				bx += gx * diff
				by += gy * diff
			}
		}
		det := gxx*gyy - gxy*gxy
		if det < 1e-6 {
			break
		}
		stepX := (gyy*bx - gxy*by) / det
		stepY := (gxx*by - gxy*bx) / det
		dx += stepX
		dy += stepY
		if stepX*stepX+stepY*stepY < epsilon*epsilon {
			break
		}
	}

	newPoint := image.Point{X: p.X + int(dx), Y: p.Y + int(dy)}
	return newPoint, r2.Point{X: dx, Y: dy}, true
}

// composeRotation returns candidate*total, the "R_total <- R*R_total"
// accumulation of §4.6.
func composeRotation(candidate, total *spatialmath.RotationMatrix) *spatialmath.RotationMatrix {
	c := candidate.RawRowMajor()
	t := total.RawRowMajor()
	var out [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += c[i*3+k] * t[k*3+j]
			}
			out[i*3+j] = sum
		}
	}
	rot, _ := spatialmath.NewRotationMatrix(out[:])
	return rot
}

// publish builds the variant's published Result: a view matrix
// [R^T | -R^T*t] column-major, quaternion+translation pose, and
// per-feature track metadata.
func (o *Odometer) publish() Result {
	rt := o.rTotal.RotationMatrix()
	translation := rTransposeTimesNegative(rt, o.tTotal)

	pose := spatialmath.NewPoseMatrix(transposeRotation(rt), translation)
	view := pose.ToColumnMajorArray()

	positions := make([]image.Point, len(o.tracks))
	flows := make([]r2.Point, len(o.tracks))
	ids := make([]int, len(o.tracks))
	ages := make([]int, len(o.tracks))
	for i, t := range o.tracks {
		positions[i] = t.point
		flows[i] = t.lastFlow
		ids[i] = t.id
		ages[i] = t.age
	}

	return Result{
		ViewMatrix:  view,
		Quaternion:  rt,
		Translation: o.tTotal,
		FeaturePos:  positions,
		FeatureFlow: flows,
		FeatureIDs:  ids,
		FeatureAges: ages,
	}
}

func transposeRotation(r *spatialmath.RotationMatrix) *spatialmath.RotationMatrix {
	d := r.RawRowMajor()
	out := []float64{d[0], d[3], d[6], d[1], d[4], d[7], d[2], d[5], d[8]}
	rot, _ := spatialmath.NewRotationMatrix(out)
	return rot
}

func rTransposeTimesNegative(r *spatialmath.RotationMatrix, t r3.Vector) r3.Vector {
	rt := transposeRotation(r)
	return rt.RotateVector(t).Mul(-1)
}
