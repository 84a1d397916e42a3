package keypoints

import (
	"image"
	"math"
	"math/rand"

	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
	"github.com/Yoon-seoyeon286/tossinapp-ar/rimage"
)

// descriptorBits is the fixed descriptor width required by §3 ("one
// 256-bit binary descriptor").
const descriptorBits = 256

// SamplingType selects how BRIEF sample-pair offsets are drawn, mirroring
// the teacher's briefdesc.go SamplingType.
type SamplingType int

const (
	// SamplingUniform draws offsets from a uniform distribution.
	SamplingUniform SamplingType = iota
	// SamplingNormal draws offsets from a Gaussian distribution.
	SamplingNormal
)

// BRIEFConfig holds the parameters needed to build a descriptor.
type BRIEFConfig struct {
	Sampling       SamplingType `json:"sampling"`
	PatchSize      int          `json:"patch_size"`
	UseOrientation bool         `json:"use_orientation"`
}

// DefaultBRIEFConfig returns the parameters used for both extractor
// configurations in §4.1.
func DefaultBRIEFConfig() *BRIEFConfig {
	return &BRIEFConfig{Sampling: SamplingUniform, PatchSize: 31, UseOrientation: true}
}

// samplePairs are the descriptorBits (x0,y0)-(x1,y1) offset pairs compared
// at each keypoint, generated once and reused for every keypoint in a
// frame, following GenerateSamplePairs in the teacher's briefdesc.go.
type samplePairs struct {
	p0, p1 []image.Point
}

func generateSamplePairs(cfg *BRIEFConfig, rng *rand.Rand) *samplePairs {
	half := float64(cfg.PatchSize) / 2
	sample := func() int {
		switch cfg.Sampling {
		case SamplingNormal:
			v := rng.NormFloat64() * half / 2
			return clampPatch(int(math.Round(v)), half)
		default:
			return clampPatch(int(math.Round((rng.Float64()*2-1)*half)), half)
		}
	}
	p0 := make([]image.Point, descriptorBits)
	p1 := make([]image.Point, descriptorBits)
	for i := 0; i < descriptorBits; i++ {
		p0[i] = image.Point{X: sample(), Y: sample()}
		p1[i] = image.Point{X: sample(), Y: sample()}
	}
	return &samplePairs{p0: p0, p1: p1}
}

func clampPatch(v int, half float64) int {
	h := int(half)
	if v > h {
		return h
	}
	if v < -h {
		return -h
	}
	return v
}

// computeBRIEFDescriptor computes a single 256-bit descriptor for the
// patch centered at kp in the (already blurred) image blurred, optionally
// rotated by orientation, following ComputeBRIEFDescriptors in the
// teacher's vision/keypoints/briefdesc.go.
func computeBRIEFDescriptor(blurred *image.Gray, kp image.Point, orientation float64, sp *samplePairs, cfg *BRIEFConfig) descriptors.Descriptor {
	bounds := blurred.Bounds()
	cosT, sinT := 1.0, 0.0
	if cfg.UseOrientation {
		cosT, sinT = math.Cos(orientation), math.Sin(orientation)
	}

	bits := make([]bool, descriptorBits)
	for i := 0; i < descriptorBits; i++ {
		x0, y0 := float64(sp.p0[i].X), float64(sp.p0[i].Y)
		x1, y1 := float64(sp.p1[i].X), float64(sp.p1[i].Y)
		rx0 := int(math.Round(cosT*x0 - sinT*y0))
		ry0 := int(math.Round(sinT*x0 + cosT*y0))
		rx1 := int(math.Round(cosT*x1 - sinT*y1))
		ry1 := int(math.Round(sinT*x1 + cosT*y1))

		p0 := image.Point{X: kp.X + rx0, Y: kp.Y + ry0}
		p1 := image.Point{X: kp.X + rx1, Y: kp.Y + ry1}
		if !p0.In(bounds) || !p1.In(bounds) {
			continue
		}
		bits[i] = blurred.GrayAt(p0.X, p0.Y).Y > blurred.GrayAt(p1.X, p1.Y).Y
	}
	return descriptors.FromBits(bits)
}

// blurForDescriptors applies the Gaussian pre-filter BRIEF needs to be
// robust to noise, following the teacher's GetGaussian5/ConvolveGray call
// in briefdesc.go.
func blurForDescriptors(img *image.Gray) (*image.Gray, error) {
	kernel := rimage.GetGaussian5().Normalize()
	return rimage.ConvolveGray(img, kernel, image.Point{X: 2, Y: 2}, rimage.BorderReplicate)
}
