package keypoints

import (
	"image"
	"math/rand"

	"github.com/Yoon-seoyeon286/tossinapp-ar/keypoints/descriptors"
)

// ExtractorConfig configures an Extractor. §4.1 defines two concrete
// configurations: the tracker's (NMax=2000) and the image-target /
// per-target extractor's (NMax=1000).
type ExtractorConfig struct {
	NMax  int
	FAST  *FASTConfig
	BRIEF *BRIEFConfig
}

// TrackerExtractorConfig is the configuration used by the tracker's
// per-frame feature extraction.
func TrackerExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{NMax: 2000, FAST: DefaultFASTConfig(), BRIEF: DefaultBRIEFConfig()}
}

// TargetExtractorConfig is the configuration used by image-target
// registration and per-frame detection.
func TargetExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{NMax: 1000, FAST: DefaultFASTConfig(), BRIEF: DefaultBRIEFConfig()}
}

// Extractor produces keypoints and binary descriptors for a grayscale
// image, the "feature extractor" capability of §4.1.
type Extractor struct {
	cfg   *ExtractorConfig
	rng   *rand.Rand
	pairs *samplePairs
}

// NewExtractor builds an Extractor from cfg. The sample-pair RNG is seeded
// deterministically so that repeated calls against the same image produce
// the same descriptors, which matters for reset()-then-replay idempotency
// (Testable Property 7).
func NewExtractor(cfg *ExtractorConfig) *Extractor {
	rng := rand.New(rand.NewSource(0xA40B1D)) //nolint:gosec
	return &Extractor{cfg: cfg, rng: rng, pairs: generateSamplePairs(cfg.BRIEF, rng)}
}

// Extract returns up to cfg.NMax keypoints (x, y, response) and their
// corresponding 256-bit binary descriptors.
func (e *Extractor) Extract(img *image.Gray) ([]image.Point, []float64, descriptors.Descriptors, error) {
	fastKps := DetectFAST(img, e.cfg.FAST, e.cfg.NMax)

	blurred, err := blurForDescriptors(img)
	if err != nil {
		return nil, nil, nil, err
	}
	sp := e.pairs

	points := make([]image.Point, len(fastKps))
	responses := make([]float64, len(fastKps))
	descs := make(descriptors.Descriptors, len(fastKps))
	for i, kp := range fastKps {
		points[i] = kp.Point
		responses[i] = kp.Response
		orientation := 0.0
		if e.cfg.BRIEF.UseOrientation {
			orientation = computeOrientation(img, kp.Point, 7)
		}
		descs[i] = computeBRIEFDescriptor(blurred, kp.Point, orientation, sp, e.cfg.BRIEF)
	}
	return points, responses, descs, nil
}
