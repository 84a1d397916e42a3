package transform

import (
	"math/rand"
	"testing"

	"go.viam.com/test"
)

func TestSampleIndicesDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	idx := sampleIndices(10, 4, rng)
	test.That(t, len(idx), test.ShouldEqual, 4)
	seen := make(map[int]bool)
	for _, i := range idx {
		test.That(t, seen[i], test.ShouldBeFalse)
		seen[i] = true
		test.That(t, i, test.ShouldBeLessThan, 10)
	}
}

func TestSampleIndicesRejectsOversizedSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	idx := sampleIndices(3, 5, rng)
	test.That(t, idx, test.ShouldBeNil)
}

func TestAdaptiveMaxItersShrinksWithHighInlierRatio(t *testing.T) {
	n := adaptiveMaxIters(0.99, 0.9, 8, 1000)
	test.That(t, n, test.ShouldBeLessThan, 1000)
	test.That(t, n, test.ShouldBeGreaterThan, 0)
}

func TestAdaptiveMaxItersCapsAtMaxIters(t *testing.T) {
	n := adaptiveMaxIters(0.99, 0, 8, 500)
	test.That(t, n, test.ShouldEqual, 500)
}
