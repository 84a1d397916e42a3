// Package slam implements the tracking-and-mapping pipeline of §4.3-§4.5:
// the map store, the Initialization/Tracking/Lost state machine, keyframe
// triangulation and loop-closure detection, following the structure of the
// teacher's services/slam/builtin package (a long-lived stateful service
// driven by repeated per-frame calls) generalized from a SLAM-service shell
// to an embedded tracking engine.
package slam

import (
	"image"

	"github.com/golang/geo/r3"

	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/spatialmath"
)

// NoMapPoint is the sentinel value used in a KeyFrame's MapPointIDs where a
// keypoint has not been linked to any map point, matching the "none" value
// of §3.
const NoMapPoint = -1

// MapPoint is a triangulated 3D point in the world frame, described by §3.
type MapPoint struct {
	ID           int
	WorldPos     r3.Vector
	Descriptor   descriptors.Descriptor
	Observations map[int]bool
	MatchCount   int
	IsBad        bool
}

// KeyFrame is a retained frame with its features, descriptors, pose and
// map-point linkages, described by §3.
type KeyFrame struct {
	ID          int
	Image       *image.Gray
	Pose        *spatialmath.Matrix4
	Keypoints   []image.Point
	Descriptors descriptors.Descriptors
	MapPointIDs []int
}

// MapStore owns the keyframe sequence and the map-point table, assigning
// strictly monotonic ids to each as required by Testable Property 1 and
// owned exclusively by the tracker per §3's ownership rule.
type MapStore struct {
	keyframes      []*KeyFrame
	mapPoints      map[int]*MapPoint
	nextKeyframeID int
	nextMapPointID int
}

// NewMapStore returns an empty map store.
func NewMapStore() *MapStore {
	return &MapStore{mapPoints: make(map[int]*MapPoint)}
}

// AddKeyFrame assigns kf a fresh monotonic id, deep-copies its image so the
// caller's frame buffer may be reused (§5's deep-copy-on-entry policy), and
// appends it to the sequence.
func (s *MapStore) AddKeyFrame(kf *KeyFrame) *KeyFrame {
	kf.ID = s.nextKeyframeID
	s.nextKeyframeID++
	kf.Image = copyGray(kf.Image)
	if kf.MapPointIDs == nil {
		kf.MapPointIDs = make([]int, len(kf.Keypoints))
		for i := range kf.MapPointIDs {
			kf.MapPointIDs[i] = NoMapPoint
		}
	}
	s.keyframes = append(s.keyframes, kf)
	return kf
}

func copyGray(img *image.Gray) *image.Gray {
	if img == nil {
		return nil
	}
	out := image.NewGray(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

// AddMapPoint assigns p a fresh monotonic id and stores it.
func (s *MapStore) AddMapPoint(p *MapPoint) *MapPoint {
	p.ID = s.nextMapPointID
	s.nextMapPointID++
	if p.Observations == nil {
		p.Observations = make(map[int]bool)
	}
	s.mapPoints[p.ID] = p
	return p
}

// KeyFrames returns the keyframe sequence in insertion order.
func (s *MapStore) KeyFrames() []*KeyFrame { return s.keyframes }

// KeyFrameCount returns the number of keyframes ever inserted.
func (s *MapStore) KeyFrameCount() int { return len(s.keyframes) }

// LastKeyFrame returns the most recently inserted keyframe, or nil if none.
func (s *MapStore) LastKeyFrame() *KeyFrame {
	if len(s.keyframes) == 0 {
		return nil
	}
	return s.keyframes[len(s.keyframes)-1]
}

// MapPoint looks up a map point by id.
func (s *MapStore) MapPoint(id int) (*MapPoint, bool) {
	p, ok := s.mapPoints[id]
	return p, ok
}

// MapPointCount returns the number of map points ever created, including
// those marked bad (they are never physically removed per §3).
func (s *MapStore) MapPointCount() int { return len(s.mapPoints) }

// NonBadMapPoints returns every map point whose IsBad flag is not set.
func (s *MapStore) NonBadMapPoints() []*MapPoint {
	out := make([]*MapPoint, 0, len(s.mapPoints))
	for _, p := range s.mapPoints {
		if !p.IsBad {
			out = append(out, p)
		}
	}
	return out
}

// Reset clears all keyframes and map points and restarts id assignment
// from zero, the idempotency behaviour required by Testable Property 7.
func (s *MapStore) Reset() {
	s.keyframes = nil
	s.mapPoints = make(map[int]*MapPoint)
	s.nextKeyframeID = 0
	s.nextMapPointID = 0
}
