package slam

import (
	"github.com/edaniels/golog"

	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
)

// loopClosureLookback is the "i < n-5" exclusion window of §4.5: a
// just-inserted keyframe is never matched against its own recent history.
const loopClosureLookback = 5

// loopClosureMatchDistance is the Hamming distance ceiling a candidate
// correspondence must clear to count toward a loop-closure candidate's
// score.
const loopClosureMatchDistance = 40

// loopClosureMinMatches is the minimum match count a candidate must reach
// to be accepted as a loop closure.
const loopClosureMinMatches = 50

// DetectLoopClosure implements §4.5: for a just-inserted keyframe,
// brute-force Hamming-match against every keyframe older than the lookback
// window, keep the highest-scoring candidate above the minimum match
// count, and invoke the bundle-adjustment hook on a hit.
func DetectLoopClosure(store *MapStore, newKF *KeyFrame, logger golog.Logger) {
	keyframes := store.KeyFrames()
	bestCount := 0
	var bestCandidate *KeyFrame

	for _, kf := range keyframes {
		if kf.ID >= newKF.ID-loopClosureLookback {
			continue
		}
		count := 0
		for _, d := range newKF.Descriptors {
			for _, other := range kf.Descriptors {
				if descriptors.HammingDistance(d, other) < loopClosureMatchDistance {
					count++
					break
				}
			}
		}
		if count > bestCount {
			bestCount, bestCandidate = count, kf
		}
	}

	if bestCandidate == nil || bestCount <= loopClosureMinMatches {
		return
	}

	logger.Infow("loop closure detected", "new_keyframe", newKF.ID, "matched_keyframe", bestCandidate.ID, "matches", bestCount)
	runBundleAdjustmentHook(store, bestCandidate, newKF)
}

// runBundleAdjustmentHook is the named local-bundle-adjustment extension
// point of §4.5/§9: it currently leaves every keyframe pose unchanged. An
// embedding that needs pose refinement plugs a nonlinear solver in here.
func runBundleAdjustmentHook(store *MapStore, from, to *KeyFrame) {
}
