package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Pose represents the position and orientation of a rigid body, mirroring
// the CamPose.Pose() conversion of the teacher's rimage/transform package.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

// NewPose builds a Pose from a point and an orientation.
func NewPose(point r3.Vector, orientation Orientation) Pose {
	if orientation == nil {
		orientation = NewZeroOrientation()
	}
	return &pose{point: point, orientation: orientation}
}

func (p *pose) Point() r3.Vector         { return p.point }
func (p *pose) Orientation() Orientation { return p.orientation }

// PoseToMatrix4 converts a Pose to its 4x4 world-from-X transform.
func PoseToMatrix4(p Pose) *Matrix4 {
	return NewPoseMatrix(p.Orientation().RotationMatrix(), p.Point())
}

// PoseFromMatrix4 extracts a Pose from a 4x4 world-from-X transform.
func PoseFromMatrix4(m *Matrix4) Pose {
	rot := m.Rotation()
	return NewPose(m.Translation(), rot)
}
