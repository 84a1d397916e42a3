// Package engine exposes the facade of §6: the thin top-level entry point
// that dispatches process_frame and the query methods a host embedding
// calls, following the teacher's builtin SLAM service's role as a single
// stateful entry point wrapping an internal pipeline.
package engine

import (
	"time"

	"github.com/edaniels/golog"

	"github.com/Yoon-seoyeon286/tossinapp-ar/arerrors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/config"
	"github.com/Yoon-seoyeon286/tossinapp-ar/pointcloud"
	"github.com/Yoon-seoyeon286/tossinapp-ar/rimage"
	"github.com/Yoon-seoyeon286/tossinapp-ar/slam"
	"github.com/Yoon-seoyeon286/tossinapp-ar/slam/hittest"
	"github.com/Yoon-seoyeon286/tossinapp-ar/slam/imagetarget"
	"github.com/Yoon-seoyeon286/tossinapp-ar/slam/plane"
	"github.com/Yoon-seoyeon286/tossinapp-ar/transform"
)

// planeDetectionInterval is the "every 30 frames" cadence of §4.7.
const planeDetectionInterval = 30

// planeDetectionMinMapPoints is the "once the map has >= 50 points"
// precondition of §4.7.
const planeDetectionMinMapPoints = 50

// targetDetectionInterval is the "every 5 frames" cadence of §4.8.
const targetDetectionInterval = 5

// FrameStats is a supplemented per-frame diagnostic snapshot beyond the
// distilled spec's boolean process_frame result, following the
// processing-time metric already published by the visual-odometry variant
// of §4.6.
type FrameStats struct {
	FrameCount      int
	ProcessingTime  time.Duration
	MapPointCount   int
	KeyFrameCount   int
	DetectedTargets int
	DetectedPlanes  int
	TrackerState    slam.State
}

// TargetResult mirrors the get_detected_targets() entry shape of §6.
type TargetResult struct {
	ID         int
	Name       string
	Confidence float64
	IsTracking bool
	Pose       [16]float64
	Corners    [4][2]float64
}

// PlaneResult mirrors the get_detected_planes() entry shape of §6.
type PlaneResult struct {
	ID           int
	IsHorizontal bool
	Confidence   float64
	Width        float64
	Height       float64
	Center       [3]float64
	Normal       [3]float64
	Corners      [4][3]float64
}

// Engine is the top-level facade of §6's embedding contract.
type Engine struct {
	opts       *config.Options
	intrinsics *transform.PinholeCameraIntrinsics
	logger     golog.Logger

	tracker       *slam.Tracker
	planeDetector *plane.Detector
	imageTargets  *imagetarget.Tracker
	hitTester     *hittest.Tester

	frameCount      int
	detectedTargets []imagetarget.DetectedTarget
	lastStats       FrameStats
}

// New builds an Engine from opts, using the default camera intrinsics of
// §6/§9 unless overridden by opts' DefaultFx/Fy/Cx/Cy.
func New(opts *config.Options, logger golog.Logger) *Engine {
	intrinsics := &transform.PinholeCameraIntrinsics{
		Width: 640, Height: 480,
		Fx: opts.DefaultFx, Fy: opts.DefaultFy, Cx: opts.DefaultCx, Cy: opts.DefaultCy,
	}
	return &Engine{
		opts:          opts,
		intrinsics:    intrinsics,
		logger:        logger,
		tracker:       slam.NewTracker(opts, intrinsics, logger),
		planeDetector: plane.NewDetector(opts),
		imageTargets:  imagetarget.NewTracker(opts),
		hitTester:     hittest.NewTester(opts),
	}
}

// ProcessFrame implements process_frame: converts a packed RGBA buffer to
// grayscale, runs tracking, and periodically runs plane and image-target
// detection, per §4.7/§4.8's cadences.
func (e *Engine) ProcessFrame(width, height int, rgba []byte) bool {
	start := time.Now()
	gray, err := rimage.ToGray(width, height, rgba)
	if err != nil {
		return false
	}

	e.frameCount++
	ok := e.tracker.ProcessFrame(gray)

	store := e.tracker.MapStore()
	if store.MapPointCount() >= planeDetectionMinMapPoints && e.frameCount%planeDetectionInterval == 0 {
		e.planeDetector.Detect(mapPointsToVectors(store.NonBadMapPoints()))
	}

	if e.imageTargets.Count() >= 1 && e.frameCount%targetDetectionInterval == 0 {
		k := e.intrinsics.GetCameraMatrix()
		e.detectedTargets = e.imageTargets.Detect(gray, k)
	}

	e.lastStats = FrameStats{
		FrameCount:      e.frameCount,
		ProcessingTime:  time.Since(start),
		MapPointCount:   store.MapPointCount(),
		KeyFrameCount:   store.KeyFrameCount(),
		DetectedTargets: len(e.detectedTargets),
		DetectedPlanes:  len(e.planeDetector.Planes()),
		TrackerState:    e.tracker.State(),
	}
	return ok
}

// GetViewMatrix returns the world-to-camera matrix, column-major, per §6.
func (e *Engine) GetViewMatrix() ([16]float64, bool) {
	view, ok := e.tracker.CurrentPose().Inverse()
	if !ok {
		return [16]float64{}, false
	}
	return view.ToColumnMajorArray(), true
}

// GetProjectionMatrix builds the projection matrix for a W x H viewport
// using the configured intrinsics and near/far planes, column-major,
// per §6.
func (e *Engine) GetProjectionMatrix(width, height int) [16]float64 {
	proj := e.intrinsics.ProjectionMatrix(width, height, e.opts.NearPlane, e.opts.FarPlane)
	return proj.ToColumnMajorArray()
}

// IsInitialized reports whether the tracker has left Uninitialized.
func (e *Engine) IsInitialized() bool { return e.tracker.IsInitialized() }

// IsTracking reports whether the current frame produced a valid pose.
func (e *Engine) IsTracking() bool { return e.tracker.IsTracking() }

// GetMapPointCount returns the total number of map points ever created.
func (e *Engine) GetMapPointCount() int32 { return int32(e.tracker.MapStore().MapPointCount()) }

// GetKeyframeCount returns the total number of keyframes ever inserted.
func (e *Engine) GetKeyframeCount() int32 { return int32(e.tracker.MapStore().KeyFrameCount()) }

// AddImageTarget implements add_image_target: registers a planar image
// marker and returns its id, or -1 on failure, per §6.
func (e *Engine) AddImageTarget(width, height int, rgba []byte, name string, widthM float64) int {
	gray, err := rimage.ToGray(width, height, rgba)
	if err != nil {
		return -1
	}
	heightM := widthM * float64(height) / float64(width)
	id, err := e.imageTargets.Register(gray, name, widthM, heightM)
	if err != nil {
		return -1
	}
	return id
}

// SetImageTargetEnabled toggles whether a registered target participates
// in per-frame detection, a supplemented operation.
func (e *Engine) SetImageTargetEnabled(id int, enabled bool) bool {
	return e.imageTargets.SetEnabled(id, enabled)
}

// RemoveImageTarget deregisters a target entirely, a supplemented
// operation.
func (e *Engine) RemoveImageTarget(id int) bool {
	return e.imageTargets.RemoveTarget(id)
}

// GetDetectedTargets implements get_detected_targets, per §6.
func (e *Engine) GetDetectedTargets() []TargetResult {
	out := make([]TargetResult, 0, len(e.detectedTargets))
	for _, d := range e.detectedTargets {
		var corners [4][2]float64
		for i, c := range d.Corners {
			corners[i] = [2]float64{c.X, c.Y}
		}
		out = append(out, TargetResult{
			ID:         d.TargetID,
			Name:       d.Name,
			Confidence: d.Confidence,
			IsTracking: d.IsTracking,
			Pose:       d.Pose.ToRowMajorArray(),
			Corners:    corners,
		})
	}
	return out
}

// GetDetectedPlanes implements get_detected_planes, per §6.
func (e *Engine) GetDetectedPlanes() []PlaneResult {
	planes := e.planeDetector.Planes()
	out := make([]PlaneResult, 0, len(planes))
	for _, p := range planes {
		var corners [4][3]float64
		for i, c := range p.Corners {
			corners[i] = [3]float64{c.X, c.Y, c.Z}
		}
		out = append(out, PlaneResult{
			ID:           p.ID,
			IsHorizontal: p.IsHorizontal,
			Confidence:   p.Confidence,
			Width:        p.Width,
			Height:       p.Height,
			Center:       [3]float64{p.Center.X, p.Center.Y, p.Center.Z},
			Normal:       [3]float64{p.Normal.X, p.Normal.Y, p.Normal.Z},
			Corners:      corners,
		})
	}
	return out
}

// Raycast implements the hit tester's screen-to-world query of §4.9,
// consuming the engine's current view/projection matrices.
func (e *Engine) Raycast(screenX, screenY float64, width, height int) (hittest.Hit, bool) {
	view, ok := e.GetViewMatrix()
	if !ok {
		return hittest.Hit{}, false
	}
	proj := e.GetProjectionMatrix(width, height)
	return e.hitTester.Raycast(screenX, screenY, width, height, view, proj)
}

// EstimateGroundPlane implements §4.9's optional RANSAC ground-plane
// estimation from the current map's non-bad points.
func (e *Engine) EstimateGroundPlane() error {
	points := mapPointsToVectors(e.tracker.MapStore().NonBadMapPoints())
	if len(points) == 0 {
		return arerrors.WrapInsufficientInput("EstimateGroundPlane: map has no points")
	}
	return e.hitTester.EstimateGroundPlane(points)
}

// Reset reverts all tracking state (map, pose, keyframes) per §7's
// "reset() reverts all state" policy. Registered image targets are
// templates independent of the tracking session and are kept; see
// the design notes for this decision.
func (e *Engine) Reset() {
	e.tracker.Reset()
	e.planeDetector = plane.NewDetector(e.opts)
	e.hitTester = hittest.NewTester(e.opts)
	e.frameCount = 0
	e.detectedTargets = nil
	e.lastStats = FrameStats{}
}

// Stats returns a diagnostic snapshot of the most recently processed
// frame, a supplemented operation beyond the distilled spec.
func (e *Engine) Stats() FrameStats { return e.lastStats }

func mapPointsToVectors(points []*slam.MapPoint) pointcloud.Vectors {
	out := make(pointcloud.Vectors, len(points))
	for i, p := range points {
		out[i] = p.WorldPos
	}
	return out
}
