// Package rimage provides the small set of grayscale image utilities the
// feature extractor needs: RGBA-to-grayscale conversion, padding and
// convolution, following the teacher's rimage package conventions
// (MakeGray, ConvolveGray, GaussianKernel).
package rimage

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ToGray converts a packed RGBA byte buffer of the given width/height into
// an image.Gray using the standard luminance weighting, the first step of
// process_frame per the embedding contract in §6.
func ToGray(width, height int, rgba []byte) (*image.Gray, error) {
	if len(rgba) != width*height*4 {
		return nil, errors.Errorf("rgba buffer length %d does not match width*height*4 (%d)", len(rgba), width*height*4)
	}
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			r, g, b := rgba[i], rgba[i+1], rgba[i+2]
			lum := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
			gray.SetGray(x, y, color.Gray{Y: uint8(lum)})
		}
	}
	return gray, nil
}

// SameImgSize compares two images' bounds for equality.
func SameImgSize(g1, g2 image.Image) bool {
	return g1.Bounds().Max.X == g2.Bounds().Max.X && g1.Bounds().Max.Y == g2.Bounds().Max.Y
}
