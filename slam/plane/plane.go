// Package plane implements the plane detector of §4.7: RANSAC extraction
// of up to three dominant planar surfaces from the sparse map, with bounded
// planes and a merge policy, following the structure of the teacher's
// periodic-detection services pattern generalized from camera-frame
// object detection to point-cloud plane fitting.
package plane

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"

	"github.com/Yoon-seoyeon286/tossinapp-ar/config"
	"github.com/Yoon-seoyeon286/tossinapp-ar/pointcloud"
)

// maxPlanes is the number of planes extracted per detection pass.
const maxPlanes = 3

// up is the world up axis used for horizontal classification and local
// basis construction.
var up = r3.Vector{X: 0, Y: 1, Z: 0}

// DetectedPlane is a bounded planar surface, described by §3.
type DetectedPlane struct {
	ID           int
	Center       r3.Vector
	Normal       r3.Vector
	Width        float64
	Height       float64
	Corners      [4]r3.Vector
	IsHorizontal bool
	Confidence   float64

	stalePasses int
}

// Detector maintains the set of detected planes across repeated detection
// passes, merging new candidates into existing planes per §4.7.
type Detector struct {
	opts   *config.Options
	rng    *rand.Rand
	planes []*DetectedPlane
	nextID int
}

// NewDetector builds a Detector against opts.
func NewDetector(opts *config.Options) *Detector {
	return &Detector{opts: opts, rng: rand.New(rand.NewSource(0xA40B1D))} //nolint:gosec
}

// Planes returns the currently maintained set of planes.
func (d *Detector) Planes() []*DetectedPlane { return d.planes }

// Detect runs one detection pass over points, extracting up to maxPlanes
// planes and merging or appending them into the maintained set, following
// §4.7's algorithm exactly. Planes not refreshed by this pass age by one;
// planes stale for PlaneStalePasses consecutive passes are pruned, a
// supplemented bounded-lifetime behaviour beyond the distilled spec.
func (d *Detector) Detect(points pointcloud.Vectors) {
	for _, p := range d.planes {
		p.stalePasses++
	}

	remaining := make(pointcloud.Vectors, len(points))
	copy(remaining, points)

	for i := 0; i < maxPlanes; i++ {
		if len(remaining) < d.opts.MinPlanePoints {
			break
		}
		fitted, inlierIdx, ok := d.fitOnePlane(remaining)
		if !ok {
			break
		}
		d.mergeOrAppend(fitted)
		remaining = removeIndices(remaining, inlierIdx)
	}

	d.pruneStale()
}

// fitOnePlane runs the RANSAC plane fit of §4.7 step 1 and, on success,
// builds the bounded-plane representation of steps 3-5.
func (d *Detector) fitOnePlane(points pointcloud.Vectors) (*DetectedPlane, []int, bool) {
	fit, inliers, err := pointcloud.FitPlaneRANSAC(points, d.opts.PlaneRANSACIterations, d.opts.PlaneRANSACThreshold, d.rng)
	if err != nil || len(inliers) < d.opts.MinPlanePoints {
		return nil, nil, false
	}

	normal := fit.Normal
	if normal.Y < 0 {
		normal = normal.Mul(-1)
	}
	isHorizontal := math.Abs(normal.Dot(up)) > d.opts.HorizontalThreshold

	right := up.Cross(normal)
	if right.Norm() < 0.1 {
		right = r3.Vector{X: 1, Y: 0, Z: 0}
	} else {
		right = right.Normalize()
	}
	forward := normal.Cross(right).Normalize()

	inlierPoints := make([]r3.Vector, len(inliers))
	for i, idx := range inliers {
		inlierPoints[i] = points[idx]
	}
	center, width, height, corners := boundedPlane(inlierPoints, right, forward)

	confidence := math.Min(1, float64(len(inliers))/float64(len(points)))
	detected := &DetectedPlane{
		Center:       center,
		Normal:       normal,
		Width:        width,
		Height:       height,
		Corners:      corners,
		IsHorizontal: isHorizontal,
		Confidence:   confidence,
	}
	return detected, inliers, true
}

// boundedPlane projects inliers onto the plane-local basis (right, forward)
// and takes axis-aligned min/max to derive the bounded rectangle, §4.7
// step 5.
func boundedPlane(points []r3.Vector, right, forward r3.Vector) (center r3.Vector, width, height float64, corners [4]r3.Vector) {
	origin := centroid(points)
	minU, maxU := math.Inf(1), math.Inf(-1)
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		rel := p.Sub(origin)
		u := rel.Dot(right)
		v := rel.Dot(forward)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}
	width = maxU - minU
	height = maxV - minV
	centerU, centerV := (minU+maxU)/2, (minV+maxV)/2
	center = origin.Add(right.Mul(centerU)).Add(forward.Mul(centerV))

	halfW, halfH := width/2, height/2
	corners = [4]r3.Vector{
		center.Add(right.Mul(-halfW)).Add(forward.Mul(-halfH)),
		center.Add(right.Mul(halfW)).Add(forward.Mul(-halfH)),
		center.Add(right.Mul(halfW)).Add(forward.Mul(halfH)),
		center.Add(right.Mul(-halfW)).Add(forward.Mul(halfH)),
	}
	return center, width, height, corners
}

func centroid(points []r3.Vector) r3.Vector {
	var sum r3.Vector
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// mergeOrAppend implements §4.7's merge policy.
func (d *Detector) mergeOrAppend(candidate *DetectedPlane) {
	for _, existing := range d.planes {
		if existing.IsHorizontal != candidate.IsHorizontal {
			continue
		}
		if math.Abs(existing.Normal.Dot(candidate.Normal)) < 0.95 {
			continue
		}
		if existing.Center.Sub(candidate.Center).Norm() >= 0.1 {
			continue
		}
		existing.Center = existing.Center.Add(candidate.Center).Mul(0.5)
		existing.Width = math.Max(existing.Width, candidate.Width)
		existing.Height = math.Max(existing.Height, candidate.Height)
		existing.Confidence = math.Min(1, existing.Confidence+0.5*candidate.Confidence)
		existing.stalePasses = 0
		return
	}
	candidate.ID = d.nextID
	d.nextID++
	d.planes = append(d.planes, candidate)
}

// pruneStale drops any plane not refreshed for PlaneStalePasses consecutive
// detection passes.
func (d *Detector) pruneStale() {
	kept := make([]*DetectedPlane, 0, len(d.planes))
	for _, p := range d.planes {
		if p.stalePasses < d.opts.PlaneStalePasses {
			kept = append(kept, p)
		}
	}
	d.planes = kept
}

func removeIndices(points pointcloud.Vectors, indices []int) pointcloud.Vectors {
	remove := make(map[int]bool, len(indices))
	for _, idx := range indices {
		remove[idx] = true
	}
	out := make(pointcloud.Vectors, 0, len(points)-len(indices))
	for i, p := range points {
		if !remove[i] {
			out = append(out, p)
		}
	}
	return out
}
