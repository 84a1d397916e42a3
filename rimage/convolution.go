package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

// BorderPad selects how ConvolveGray/PaddingGray extend the image border.
type BorderPad int

const (
	// BorderConstant pads with a fixed value.
	BorderConstant BorderPad = iota
	// BorderReplicate repeats the edge pixel.
	BorderReplicate
)

// Kernel is a dense 2D convolution kernel, row-major.
type Kernel struct {
	values [][]float64
	height int
	width  int
}

// NewKernel builds a Kernel from a dense 2D slice.
func NewKernel(values [][]float64) *Kernel {
	h := len(values)
	w := 0
	if h > 0 {
		w = len(values[0])
	}
	return &Kernel{values: values, height: h, width: w}
}

// Size returns the kernel's (width, height).
func (k *Kernel) Size() image.Point { return image.Point{X: k.width, Y: k.height} }

// At returns the kernel weight at (x, y).
func (k *Kernel) At(x, y int) float64 { return k.values[y][x] }

// Normalize returns a copy of the kernel whose weights sum to 1.
func (k *Kernel) Normalize() *Kernel {
	sum := 0.0
	for _, row := range k.values {
		for _, v := range row {
			sum += v
		}
	}
	if sum == 0 {
		sum = 1
	}
	out := make([][]float64, k.height)
	for y, row := range k.values {
		outRow := make([]float64, k.width)
		for x, v := range row {
			outRow[x] = v / sum
		}
		out[y] = outRow
	}
	return NewKernel(out)
}

// GetGaussian5 returns the canonical 5x5 Gaussian blur kernel used ahead of
// BRIEF descriptor sampling, sigma chosen so the kernel's support covers
// the patch the way the teacher's briefdesc.go expects.
func GetGaussian5() *Kernel {
	return gaussianKernel(1.0, 5)
}

// gaussianKernel builds an isotropic Gaussian kernel of the requested odd
// size, following the teacher's GaussianFunction2D/GaussianKernel formula.
func gaussianKernel(sigma float64, size int) *Kernel {
	half := size / 2
	values := make([][]float64, size)
	for y := 0; y < size; y++ {
		row := make([]float64, size)
		for x := 0; x < size; x++ {
			dx := float64(x - half)
			dy := float64(y - half)
			row[x] = math.Exp(-0.5*(dx*dx+dy*dy)/(sigma*sigma)) / (2 * math.Pi * sigma * sigma)
		}
		values[y] = row
	}
	return NewKernel(values)
}

// PaddingGray pads img by kernelSize around anchor, using the requested
// border policy.
func PaddingGray(img *image.Gray, kernelSize, anchor image.Point, border BorderPad) (*image.Gray, error) {
	if kernelSize.X <= 0 || kernelSize.Y <= 0 {
		return nil, errors.New("kernel size must be positive")
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	padLeft, padTop := anchor.X, anchor.Y
	padRight, padBottom := kernelSize.X-anchor.X-1, kernelSize.Y-anchor.Y-1

	out := image.NewGray(image.Rect(0, 0, w+padLeft+padRight, h+padTop+padBottom))
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			srcX := x - padLeft
			srcY := y - padTop
			out.SetGray(x, y, color.Gray{Y: sampleBordered(img, srcX, srcY, w, h, border)})
		}
	}
	return out, nil
}

func sampleBordered(img *image.Gray, x, y, w, h int, border BorderPad) uint8 {
	if x >= 0 && x < w && y >= 0 && y < h {
		return img.GrayAt(x, y).Y
	}
	switch border {
	case BorderReplicate:
		cx, cy := clampInt(x, 0, w-1), clampInt(y, 0, h-1)
		return img.GrayAt(cx, cy).Y
	default: // BorderConstant
		return 0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConvolveGray applies kernel to img with the given anchor and border
// policy, clamping results to [0,255].
func ConvolveGray(img *image.Gray, kernel *Kernel, anchor image.Point, border BorderPad) (*image.Gray, error) {
	size := kernel.Size()
	padded, err := PaddingGray(img, size, anchor, border)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			sum := 0.0
			for ky := 0; ky < size.Y; ky++ {
				for kx := 0; kx < size.X; kx++ {
					sum += float64(padded.GrayAt(x+kx, y+ky).Y) * kernel.At(kx, ky)
				}
			}
			out.SetGray(x, y, color.Gray{Y: uint8(clampF64(sum, 0, 255))})
		}
	}
	return out, nil
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
