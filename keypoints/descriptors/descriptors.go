// Package descriptors defines the 256-bit binary descriptor type shared by
// the feature extractor, the descriptor matcher, the tracker's map
// matching and the image-target tracker, grounded on the teacher's
// []uint64 BRIEF descriptor representation (vision/keypoints/briefdesc.go)
// and its Hamming distance helper (utils/distance.go).
package descriptors

import "math/bits"

// Descriptor is a 256-bit binary descriptor packed into four 64-bit words.
type Descriptor [4]uint64

// Descriptors is an ordered collection of Descriptor, one per keypoint.
type Descriptors []Descriptor

// HammingDistance returns the number of differing bits between two
// descriptors.
func HammingDistance(a, b Descriptor) int {
	dist := 0
	for i := 0; i < 4; i++ {
		dist += bits.OnesCount64(a[i] ^ b[i])
	}
	return dist
}

// FromBits packs a slice of 256 booleans (bit i goes to bit i%64 of word
// i/64, least significant first; bit i set means "first sample value
// greater") into a Descriptor.
func FromBits(bitValues []bool) Descriptor {
	var d Descriptor
	for i, v := range bitValues {
		if i >= 256 {
			break
		}
		if v {
			d[i/64] |= 1 << uint(i%64)
		}
	}
	return d
}
