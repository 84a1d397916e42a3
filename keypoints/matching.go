package keypoints

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
)

// Match is a single descriptor correspondence between two sets, the
// Hamming-distance matcher output of §4.2.
type Match struct {
	Idx1     int
	Idx2     int
	Distance int
}

// distanceMatrix computes the full pairwise Hamming distance matrix
// between two descriptor sets.
func distanceMatrix(d1, d2 descriptors.Descriptors) [][]int {
	out := make([][]int, len(d1))
	for i, a := range d1 {
		row := make([]int, len(d2))
		for j, b := range d2 {
			row[j] = descriptors.HammingDistance(a, b)
		}
		out[i] = row
	}
	return out
}

func argMinRow(row []int) (idx int, dist int) {
	dist = row[0]
	idx = 0
	for j, v := range row {
		if v < dist {
			dist = v
			idx = j
		}
	}
	return idx, dist
}

// CrossCheckMatch finds, for every descriptor in d1, its nearest neighbour
// in d2, keeping only mutually-best (cross-checked) pairs, the default
// tracker matcher mode of §4.2. Results are sorted by ascending distance,
// following the teacher's gonum/floats.Argsort usage in matching.go.
func CrossCheckMatch(d1, d2 descriptors.Descriptors) []Match {
	if len(d1) == 0 || len(d2) == 0 {
		return nil
	}
	dist12 := distanceMatrix(d1, d2)
	dist21 := distanceMatrix(d2, d1)

	matches := make([]Match, 0, len(d1))
	for i, row := range dist12 {
		j, d := argMinRow(row)
		back, _ := argMinRow(dist21[j])
		if back == i {
			matches = append(matches, Match{Idx1: i, Idx2: j, Distance: d})
		}
	}
	return sortMatchesByDistance(matches)
}

// CrossCheckMatchWithMaxDist behaves like CrossCheckMatch but additionally
// discards any pair whose distance exceeds maxDist, the filter used by
// keyframe triangulation (§4.4).
func CrossCheckMatchWithMaxDist(d1, d2 descriptors.Descriptors, maxDist int) []Match {
	matches := CrossCheckMatch(d1, d2)
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Distance <= maxDist {
			out = append(out, m)
		}
	}
	return out
}

// CrossCheckMatchUnderMaxDist behaves like CrossCheckMatchWithMaxDist but
// applies a strict less-than bound, the filter used by the tracker's
// frame-to-map matching (§4.3 step 2).
func CrossCheckMatchUnderMaxDist(d1, d2 descriptors.Descriptors, maxDist int) []Match {
	matches := CrossCheckMatch(d1, d2)
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Distance < maxDist {
			out = append(out, m)
		}
	}
	return out
}

// KNNRatioMatch implements Lowe's ratio test: for every descriptor in d1,
// the two nearest neighbours in d2 are found and the match is kept only if
// the best distance is less than ratio times the second-best, the
// image-target matcher mode of §4.2/§4.8.
func KNNRatioMatch(d1, d2 descriptors.Descriptors, ratio float64) []Match {
	if len(d2) < 2 {
		return nil
	}
	matches := make([]Match, 0, len(d1))
	for i, a := range d1 {
		best, second := -1, -1
		bestDist, secondDist := 1<<30, 1<<30
		for j, b := range d2 {
			d := descriptors.HammingDistance(a, b)
			switch {
			case d < bestDist:
				second, secondDist = best, bestDist
				best, bestDist = j, d
			case d < secondDist:
				second, secondDist = j, d
			}
		}
		if best < 0 || second < 0 {
			continue
		}
		if float64(bestDist) < ratio*float64(secondDist) {
			matches = append(matches, Match{Idx1: i, Idx2: best, Distance: bestDist})
		}
	}
	return sortMatchesByDistance(matches)
}

// sortMatchesByDistance orders matches by ascending Hamming distance using
// gonum/floats.Argsort, mirroring the teacher's matching.go.
func sortMatchesByDistance(matches []Match) []Match {
	if len(matches) == 0 {
		return matches
	}
	dists := make([]float64, len(matches))
	for i, m := range matches {
		dists[i] = float64(m.Distance)
	}
	indices := make([]int, len(matches))
	floats.Argsort(dists, indices)
	out := make([]Match, len(matches))
	for i, idx := range indices {
		out[i] = matches[idx]
	}
	return out
}

// MinDistance returns the smallest distance among matches, used to derive
// the adaptive "max(2*min, 30)" threshold of §4.3 step 2.
func MinDistance(matches []Match) int {
	if len(matches) == 0 {
		return 0
	}
	min := matches[0].Distance
	for _, m := range matches {
		if m.Distance < min {
			min = m.Distance
		}
	}
	return min
}

// SortedByDistance returns a copy of matches sorted ascending by distance,
// using sort.Slice rather than the gonum machinery, for small candidate
// sets.
func SortedByDistance(matches []Match) []Match {
	out := make([]Match, len(matches))
	copy(out, matches)
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}
