// Package imagetarget implements the image-target tracker of §4.8:
// registration of planar image markers and per-frame recognition via
// feature matching, homography and PnP, following the registry-plus-
// per-frame-detection shape of the teacher's vision service packages.
package imagetarget

import (
	"image"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/config"
	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints"
	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
	"github.com/Yoon-seoyeon286/tossinapp-ar/transform"
)

// Target is a registered planar image marker, described by §3.
type Target struct {
	ID          int
	Name        string
	Keypoints   []image.Point
	Descriptors descriptors.Descriptors
	WidthM      float64
	HeightM     float64
	TemplateW   int
	TemplateH   int
	Enabled     bool
}

// DetectedTarget is a per-frame recognition result, described by §3.
type DetectedTarget struct {
	TargetID   int
	Name       string
	Pose       *spatialmath.Matrix4
	Corners    [4]r2.Point
	Confidence float64
	IsTracking bool
}

// Tracker is the registry of targets plus per-frame detection state.
type Tracker struct {
	opts      *config.Options
	extractor *keypoints.Extractor
	targets   map[int]*Target
	nextID    int
	rng       *rand.Rand
}

// NewTracker builds a Tracker against opts.
func NewTracker(opts *config.Options) *Tracker {
	return &Tracker{
		opts:      opts,
		extractor: keypoints.NewExtractor(keypoints.TargetExtractorConfig()),
		targets:   make(map[int]*Target),
		rng:       rand.New(rand.NewSource(0xA40B1D)), //nolint:gosec
	}
}

// Register implements §4.8's registration step: grayscale conversion (done
// by the caller), feature extraction, and a minimum-keypoint-count check
// against MIN_MATCHES.
func (t *Tracker) Register(img *image.Gray, name string, widthM, heightM float64) (int, error) {
	pts, _, descs, err := t.extractor.Extract(img)
	if err != nil {
		return -1, err
	}
	if len(pts) < t.opts.MinMatches {
		return -1, arerrors.WrapInsufficientInput("Register: registration requires at least MinMatches keypoints")
	}

	bounds := img.Bounds()
	target := &Target{
		ID:          t.nextID,
		Name:        name,
		Keypoints:   pts,
		Descriptors: descs,
		WidthM:      widthM,
		HeightM:     heightM,
		TemplateW:   bounds.Dx(),
		TemplateH:   bounds.Dy(),
		Enabled:     true,
	}
	t.nextID++
	t.targets[target.ID] = target
	return target.ID, nil
}

// SetEnabled toggles whether a target participates in per-frame detection,
// a supplemented operation beyond the distilled spec's registration/
// detection pair.
func (t *Tracker) SetEnabled(id int, enabled bool) bool {
	target, ok := t.targets[id]
	if !ok {
		return false
	}
	target.Enabled = enabled
	return true
}

// RemoveTarget deregisters a target entirely.
func (t *Tracker) RemoveTarget(id int) bool {
	if _, ok := t.targets[id]; !ok {
		return false
	}
	delete(t.targets, id)
	return true
}

// Count returns the number of registered targets.
func (t *Tracker) Count() int { return len(t.targets) }

// Detect implements §4.8's per-frame detection steps 1-5 against every
// enabled registered target.
func (t *Tracker) Detect(img *image.Gray, k *mat.Dense) []DetectedTarget {
	framePts, _, frameDescs, err := t.extractor.Extract(img)
	if err != nil {
		return nil
	}

	out := make([]DetectedTarget, 0, len(t.targets))
	for _, target := range t.targets {
		if !target.Enabled {
			continue
		}
		detected, ok := t.detectOne(target, framePts, frameDescs, k)
		if ok {
			out = append(out, detected)
		}
	}
	return out
}

func (t *Tracker) detectOne(target *Target, framePts []image.Point, frameDescs descriptors.Descriptors, k *mat.Dense) (DetectedTarget, bool) {
	matches := keypoints.KNNRatioMatch(target.Descriptors, frameDescs, t.opts.GoodMatchRatio)
	if len(matches) < t.opts.MinMatches {
		return DetectedTarget{}, false
	}

	src := make([]r2.Point, len(matches))
	dst := make([]r2.Point, len(matches))
	for i, m := range matches {
		src[i] = pointToR2(target.Keypoints[m.Idx1])
		dst[i] = pointToR2(framePts[m.Idx2])
	}

	homography, inliers, err := transform.EstimateHomographyRANSAC(src, dst, 5.0, 100, t.rng)
	if err != nil || len(inliers) < t.opts.MinMatches {
		return DetectedTarget{}, false
	}

	corners := projectedCorners(target, homography)
	if !isConvex(corners) {
		return DetectedTarget{}, false
	}

	objPts, imgPts := objectAndImagePoints(target, matches, framePts)
	result, pnpInliers, err := transform.SolvePnPRANSAC(objPts, imgPts, k, 8.0, 100, t.rng)
	if err != nil {
		return DetectedTarget{}, false
	}

	pose := spatialmath.NewPoseMatrix(result.Rotation, result.Translation)
	confidence := float64(len(pnpInliers)) / float64(len(matches))
	return DetectedTarget{
		TargetID:   target.ID,
		Name:       target.Name,
		Pose:       pose,
		Corners:    corners,
		Confidence: confidence,
		IsTracking: true,
	}, true
}

// projectedCorners maps the template's four corners through the homography
// into frame pixel coordinates, §4.8 step 4.
func projectedCorners(target *Target, h *transform.Homography) [4]r2.Point {
	w, hgt := float64(target.TemplateW), float64(target.TemplateH)
	templateCorners := [4]r2.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: hgt}, {X: 0, Y: hgt}}
	var out [4]r2.Point
	for i, c := range templateCorners {
		out[i] = h.Apply(c)
	}
	return out
}

// isConvex tests that the four corners, taken in order, form a convex
// quadrilateral: every consecutive cross product must share the same sign.
func isConvex(corners [4]r2.Point) bool {
	var sign float64
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		c := corners[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return sign != 0
}

// objectAndImagePoints builds the PnP correspondence arrays of §4.8 step 5:
// template pixel -> metric plane z=0 with origin at the template centre,
// matched against frame image points.
func objectAndImagePoints(target *Target, matches []keypoints.Match, framePts []image.Point) ([]r3.Vector, []r2.Point) {
	objPts := make([]r3.Vector, len(matches))
	imgPts := make([]r2.Point, len(matches))
	sx := target.WidthM / float64(target.TemplateW)
	sy := target.HeightM / float64(target.TemplateH)
	halfW := target.WidthM / 2
	halfH := target.HeightM / 2
	for i, m := range matches {
		kp := target.Keypoints[m.Idx1]
		objPts[i] = r3.Vector{X: float64(kp.X)*sx - halfW, Y: float64(kp.Y)*sy - halfH, Z: 0}
		imgPts[i] = pointToR2(framePts[m.Idx2])
	}
	return objPts, imgPts
}

func pointToR2(p image.Point) r2.Point { return r2.Point{X: float64(p.X), Y: float64(p.Y)} }
