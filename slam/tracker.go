package slam

import (
	"image"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/Yoon-seoyeon286/tossinapp-ar/config"
	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints"
	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
	"github.com/Yoon-seoyeon286/tossinapp-ar/transform"
)

// State is the tracker's tagged-variant status, §9's "Variant states"
// design note: a single tagged value rather than independent booleans.
type State int

const (
	// Uninitialized is the tracker's start state: no cached frame yet.
	Uninitialized State = iota
	// WaitingSecondView holds a cached first frame awaiting a second view
	// with which to run two-view initialization.
	WaitingSecondView
	// Tracking is the steady state: the tracker has a map and a pose.
	Tracking
	// Lost means tracking failed this frame; the map is untouched and the
	// next successful track re-enters Tracking with no relocalisation step.
	Lost
)

// cachedFrame holds a frame's extracted features for reuse across calls,
// used both for the WaitingSecondView cache and the frame-to-frame
// fallback's previous-frame cache.
type cachedFrame struct {
	image       *image.Gray
	keypoints   []image.Point
	descriptors descriptors.Descriptors
}

// Tracker drives the Initialization -> Tracking state machine of §4.3. It
// exclusively owns the MapStore, as required by §3's ownership rule.
type Tracker struct {
	opts       *config.Options
	intrinsics *transform.PinholeCameraIntrinsics
	extractor  *keypoints.Extractor
	store      *MapStore
	logger     golog.Logger
	rng        *rand.Rand

	state       State
	cached      *cachedFrame
	prevFrame   *cachedFrame
	currentPose *spatialmath.Matrix4

	frameCount            int
	lastKeyframeTranslate r3.Vector
	lastKeyframeSet       bool
}

// NewTracker builds a Tracker against the given options and camera
// intrinsics, following the constructor-with-injected-config pattern of
// the teacher's builtin SLAM service.
func NewTracker(opts *config.Options, intrinsics *transform.PinholeCameraIntrinsics, logger golog.Logger) *Tracker {
	return &Tracker{
		opts:        opts,
		intrinsics:  intrinsics,
		extractor:   keypoints.NewExtractor(keypoints.TrackerExtractorConfig()),
		store:       NewMapStore(),
		logger:      logger,
		rng:         rand.New(rand.NewSource(0xA40B1D)), //nolint:gosec
		state:       Uninitialized,
		currentPose: spatialmath.Identity4(),
	}
}

// State returns the tracker's current tagged state.
func (t *Tracker) State() State { return t.state }

// MapStore exposes the owned map store for read access by the plane
// detector and image-target tracker, which are read-only per §5.
func (t *Tracker) MapStore() *MapStore { return t.store }

// CurrentPose returns the current world-from-camera pose.
func (t *Tracker) CurrentPose() *spatialmath.Matrix4 { return t.currentPose }

// IsInitialized reports whether the tracker has ever left Uninitialized.
func (t *Tracker) IsInitialized() bool { return t.state != Uninitialized }

// IsTracking reports whether the current frame produced a valid pose.
func (t *Tracker) IsTracking() bool { return t.state == Tracking }

// Reset restores the tracker to its start state, reverting all state per
// §7's "reset() reverts all state" policy.
func (t *Tracker) Reset() {
	t.store.Reset()
	t.state = Uninitialized
	t.cached = nil
	t.prevFrame = nil
	t.currentPose = spatialmath.Identity4()
	t.frameCount = 0
	t.lastKeyframeSet = false
	t.rng = rand.New(rand.NewSource(0xA40B1D)) //nolint:gosec
}

// ProcessFrame runs one step of the state machine against a grayscale
// frame, implementing §4.3 in full. It returns whether tracking succeeded
// this frame.
func (t *Tracker) ProcessFrame(img *image.Gray) bool {
	t.frameCount++
	pts, _, descs, err := t.extractor.Extract(img)
	if err != nil {
		t.logger.Debugw("feature extraction failed", "err", err)
		return false
	}
	frame := &cachedFrame{image: img, keypoints: pts, descriptors: descs}

	switch t.state {
	case Uninitialized:
		return t.handleUninitialized(frame)
	case WaitingSecondView:
		return t.handleWaitingSecondView(frame)
	case Tracking, Lost:
		return t.handleTrackingStep(frame)
	default:
		return false
	}
}

// handleUninitialized implements the Uninitialized -> WaitingSecondView
// transition: accept the first frame only if it clears MIN_INIT_MATCHES.
func (t *Tracker) handleUninitialized(frame *cachedFrame) bool {
	if len(frame.keypoints) < t.opts.MinInitMatches {
		return false
	}
	t.cached = frame
	t.state = WaitingSecondView
	return false
}

// handleWaitingSecondView implements two-view initialization, §4.3 steps
// 1-7. On failure at any step, the new frame replaces the cache and the
// state stays WaitingSecondView.
func (t *Tracker) handleWaitingSecondView(frame *cachedFrame) bool {
	prev := t.cached
	defer func() { t.cached = frame }()

	matches := keypoints.CrossCheckMatch(prev.descriptors, frame.descriptors)
	if len(matches) == 0 {
		return false
	}
	maxDist := maxOf(2*keypoints.MinDistance(matches), 30)
	filtered := make([]keypoints.Match, 0, len(matches))
	for _, m := range matches {
		if m.Distance <= maxDist {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) < t.opts.MinInitMatches/2 {
		return false
	}

	pts1 := make([]r2.Point, len(filtered))
	pts2 := make([]r2.Point, len(filtered))
	for i, m := range filtered {
		pts1[i] = pointToR2(prev.keypoints[m.Idx1])
		pts2[i] = pointToR2(frame.keypoints[m.Idx2])
	}

	k := t.intrinsics.GetCameraMatrix()
	candidate, _, inliers, err := transform.EstimateRelativePose(pts1, pts2, k, 1.0, 0.999, 500, t.rng)
	if err != nil || len(inliers) < 30 {
		return false
	}

	worldToCam := spatialmath.NewPoseMatrix(candidate.Rotation, candidate.Translation)
	relativePose, ok := worldToCam.Inverse()
	if !ok {
		return false
	}

	kf0 := t.store.AddKeyFrame(&KeyFrame{
		Image:       prev.image,
		Pose:        spatialmath.Identity4(),
		Keypoints:   prev.keypoints,
		Descriptors: prev.descriptors,
	})
	kf1 := t.store.AddKeyFrame(&KeyFrame{
		Image:       frame.image,
		Pose:        relativePose,
		Keypoints:   frame.keypoints,
		Descriptors: frame.descriptors,
	})

	created := TriangulateBetweenKeyFrames(t.store, kf0, kf1, k)
	if created == 0 {
		t.store.Reset()
		return false
	}

	t.currentPose = relativePose
	t.state = Tracking
	t.prevFrame = frame
	t.lastKeyframeTranslate = relativePose.Translation()
	t.lastKeyframeSet = true
	return true
}

// handleTrackingStep implements the Tracking/Lost step: map tracking first,
// frame-to-frame fallback second, per §4.3.
func (t *Tracker) handleTrackingStep(frame *cachedFrame) bool {
	k := t.intrinsics.GetCameraMatrix()

	if pose, ok := t.trackAgainstMap(frame, k); ok {
		t.currentPose = pose
		t.state = Tracking
		t.prevFrame = frame
		t.maybeInsertKeyFrame(frame, k)
		return true
	}

	if pose, ok := t.trackFrameToFrame(frame, k); ok {
		t.currentPose = pose
		t.state = Tracking
		t.prevFrame = frame
		return true
	}

	t.state = Lost
	t.prevFrame = frame
	return false
}

// trackAgainstMap implements the map-tracking path of §4.3 Tracking step.
func (t *Tracker) trackAgainstMap(frame *cachedFrame, k *mat.Dense) (*spatialmath.Matrix4, bool) {
	nonBad := t.store.NonBadMapPoints()
	if len(nonBad) == 0 {
		return nil, false
	}
	mapDescs := make(descriptors.Descriptors, len(nonBad))
	for i, p := range nonBad {
		mapDescs[i] = p.Descriptor
	}

	matches := keypoints.CrossCheckMatchUnderMaxDist(mapDescs, frame.descriptors, 50)
	if len(matches) < t.opts.MinTrackingMatches {
		return nil, false
	}

	objPts := make([]r3.Vector, len(matches))
	imgPts := make([]r2.Point, len(matches))
	for i, m := range matches {
		objPts[i] = nonBad[m.Idx1].WorldPos
		imgPts[i] = pointToR2(frame.keypoints[m.Idx2])
	}

	result, inliers, err := transform.SolvePnPRANSAC(objPts, imgPts, k, 8.0, 100, t.rng)
	if err != nil || len(inliers) < t.opts.MinTrackingMatches {
		return nil, false
	}

	worldToCam := spatialmath.NewPoseMatrix(result.Rotation, result.Translation)
	pose, ok := worldToCam.Inverse()
	if !ok {
		return nil, false
	}
	return pose, true
}

// trackFrameToFrame implements the frame-to-frame recovery path of §4.3.
// It never mutates the map. The composition convention follows §9's open
// question decision: world-from-camera, current <- current * delta.
func (t *Tracker) trackFrameToFrame(frame *cachedFrame, k *mat.Dense) (*spatialmath.Matrix4, bool) {
	if t.prevFrame == nil {
		return nil, false
	}
	matches := keypoints.CrossCheckMatch(t.prevFrame.descriptors, frame.descriptors)
	if len(matches) < t.opts.MinTrackingMatches {
		return nil, false
	}

	pts1 := make([]r2.Point, len(matches))
	pts2 := make([]r2.Point, len(matches))
	for i, m := range matches {
		pts1[i] = pointToR2(t.prevFrame.keypoints[m.Idx1])
		pts2[i] = pointToR2(frame.keypoints[m.Idx2])
	}

	candidate, _, inliers, err := transform.EstimateRelativePose(pts1, pts2, k, 1.0, 0.999, 500, t.rng)
	if err != nil || len(inliers) < t.opts.MinTrackingMatches {
		return nil, false
	}

	return t.applyFrameToFrameDelta(candidate), true
}

// applyFrameToFrameDelta composes the frame-to-frame essential-matrix delta
// onto the current pose. §9's Open Question is resolved here: pose is
// world-from-camera, and the delta (also world-from-camera, since it was
// recovered directly from pixel correspondences without inverting through
// a camera-from-world convention) is applied as current <- current * delta.
func (t *Tracker) applyFrameToFrameDelta(delta transform.CandidatePose) *spatialmath.Matrix4 {
	deltaMat := spatialmath.NewPoseMatrix(delta.Rotation, delta.Translation)
	return t.currentPose.Mul(deltaMat)
}

// maybeInsertKeyFrame implements the keyframe insertion decision of §4.3.
func (t *Tracker) maybeInsertKeyFrame(frame *cachedFrame, k *mat.Dense) {
	if t.frameCount%t.opts.KeyframeInterval != 0 {
		return
	}
	translation := t.currentPose.Translation()
	if t.lastKeyframeSet && translation.Sub(t.lastKeyframeTranslate).Norm() <= t.opts.KeyframeTranslation {
		return
	}

	prevKF := t.store.LastKeyFrame()
	newKF := t.store.AddKeyFrame(&KeyFrame{
		Image:       frame.image,
		Pose:        t.currentPose,
		Keypoints:   frame.keypoints,
		Descriptors: frame.descriptors,
	})
	if prevKF != nil {
		TriangulateBetweenKeyFrames(t.store, prevKF, newKF, k)
	}
	t.lastKeyframeTranslate = translation
	t.lastKeyframeSet = true

	if t.store.KeyFrameCount() > 10 {
		DetectLoopClosure(t.store, newKF, t.logger)
	}
}

func pointToR2(p image.Point) r2.Point { return r2.Point{X: float64(p.X), Y: float64(p.Y)} }

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}
