// Package keypoints implements the feature extractor and descriptor
// matcher capabilities of §4.1/§4.2: FAST corner detection, an
// intensity-centroid orientation pass, BRIEF descriptors, and Hamming
// cross-check / k-NN-ratio matching, following the structure of the
// teacher's vision/keypoints package (FAST config, BRIEF sample pairs,
// ORB-style combination of the two).
package keypoints

import (
	"image"
	"math"
	"sort"
)

// FASTConfig holds the parameters for FAST corner detection.
type FASTConfig struct {
	// Threshold is a fraction (0,1) of the 0-255 intensity range a
	// circle pixel must differ from the center by to count as
	// brighter/darker.
	Threshold float64 `json:"threshold"`
	// NMatchesCircle is the minimum run length (out of the 16-pixel
	// Bresenham circle of radius 3) of consistently brighter or
	// consistently darker pixels required to call a pixel a corner.
	NMatchesCircle int `json:"n_matches_circle"`
	// NMSWinSize is the side length, in pixels, of the square
	// non-maximum-suppression cells applied across corner responses.
	NMSWinSize int `json:"nms_win_size"`
}

// DefaultFASTConfig returns FAST-9 parameters, a common default.
func DefaultFASTConfig() *FASTConfig {
	return &FASTConfig{Threshold: 0.15, NMatchesCircle: 9, NMSWinSize: 7}
}

// FASTKeypoint is a single detected corner with its response strength.
type FASTKeypoint struct {
	Point    image.Point
	Response float64
}

// circleOffsets is the 16-pixel Bresenham circle of radius 3 used by
// the classic FAST corner test.
var circleOffsets = [16]image.Point{
	{0, -3}, {1, -3}, {2, -2}, {3, -1},
	{3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1},
	{-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

// DetectFAST finds up to nMax corners in img, applying non-maximum
// suppression across cfg.NMSWinSize windows and returning the
// highest-response survivors.
func DetectFAST(img *image.Gray, cfg *FASTConfig, nMax int) []FASTKeypoint {
	bounds := img.Bounds()
	const border = 3
	threshold := cfg.Threshold * 255

	candidates := make([]FASTKeypoint, 0, 1024)
	for y := bounds.Min.Y + border; y < bounds.Max.Y-border; y++ {
		for x := bounds.Min.X + border; x < bounds.Max.X-border; x++ {
			response := cornerResponse(img, x, y, threshold, cfg.NMatchesCircle)
			if response > 0 {
				candidates = append(candidates, FASTKeypoint{Point: image.Point{X: x, Y: y}, Response: response})
			}
		}
	}

	survivors := nonMaxSuppress(candidates, cfg.NMSWinSize)
	sort.Slice(survivors, func(i, j int) bool { return survivors[i].Response > survivors[j].Response })
	if nMax > 0 && len(survivors) > nMax {
		survivors = survivors[:nMax]
	}
	return survivors
}

// cornerResponse returns the sum of absolute intensity deviations for the
// longest contiguous brighter/darker run around (x,y), or 0 if no run of
// at least nMatchesCircle pixels qualifies.
func cornerResponse(img *image.Gray, x, y int, threshold float64, nMatchesCircle int) float64 {
	center := float64(img.GrayAt(x, y).Y)
	var brighter, darker [16]bool
	var diffs [16]float64
	for i, off := range circleOffsets {
		v := float64(img.GrayAt(x+off.X, y+off.Y).Y)
		diffs[i] = v - center
		brighter[i] = diffs[i] > threshold
		darker[i] = -diffs[i] > threshold
	}

	brightRun, brightSum := longestCircularRun(brighter, diffs, true)
	darkRun, darkSum := longestCircularRun(darker, diffs, false)

	if brightRun >= nMatchesCircle && brightSum >= darkSum {
		return brightSum
	}
	if darkRun >= nMatchesCircle {
		return darkSum
	}
	return 0
}

// longestCircularRun returns the length and summed |diff| of the longest
// run of true values in a circular boolean array.
func longestCircularRun(flags [16]bool, diffs [16]float64, positive bool) (int, float64) {
	best, bestSum := 0, 0.0
	cur, curSum := 0, 0.0
	// walk twice around to handle wraparound runs.
	for i := 0; i < 32; i++ {
		idx := i % 16
		if flags[idx] {
			cur++
			if positive {
				curSum += diffs[idx]
			} else {
				curSum += -diffs[idx]
			}
		} else {
			cur, curSum = 0, 0
		}
		if cur > best {
			best, bestSum = cur, curSum
		}
		if i >= 16 && cur == i+1 {
			// the run spans the entire circle; cap to avoid double count.
			break
		}
	}
	if best > 16 {
		best = 16
	}
	return best, bestSum
}

// nonMaxSuppress keeps, within each win x win neighbourhood, only the
// highest-response candidate.
func nonMaxSuppress(candidates []FASTKeypoint, win int) []FASTKeypoint {
	if win <= 0 {
		return candidates
	}
	best := make(map[image.Point]FASTKeypoint)
	for _, c := range candidates {
		cell := image.Point{X: c.Point.X / win, Y: c.Point.Y / win}
		if existing, ok := best[cell]; !ok || c.Response > existing.Response {
			best[cell] = c
		}
	}
	out := make([]FASTKeypoint, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}

// computeOrientation returns the intensity-centroid angle (in radians) of
// a patch centered on p, the orientation assignment used to make BRIEF
// descriptors rotation-aware, following the teacher's moment-based method
// (vision/keypoints/keypoints.go computeKeypointsOrientations).
func computeOrientation(img *image.Gray, p image.Point, radius int) float64 {
	bounds := img.Bounds()
	var m01, m10 float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			px, py := p.X+dx, p.Y+dy
			if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
				continue
			}
			v := float64(img.GrayAt(px, py).Y)
			m10 += v * float64(dx)
			m01 += v * float64(dy)
		}
	}
	return math.Atan2(m01, m10)
}
