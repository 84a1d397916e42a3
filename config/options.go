// Package config holds the tunable parameters of the tracking, mapping and
// geometry pipeline, following the ORBConfig / AttrConfig pattern used
// throughout the teacher corpus: a plain struct with a Validate method and
// a JSON loader.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Options collects every recognized configuration option in §6 of the spec.
type Options struct {
	// Two-view initialization and tracking.
	MinInitMatches      int     `json:"min_init_matches"`
	MinTrackingMatches  int     `json:"min_tracking_matches"`
	KeyframeInterval    int     `json:"keyframe_interval"`
	KeyframeTranslation float64 `json:"keyframe_translation"`

	// Plane detector.
	PlaneRANSACIterations int     `json:"plane_ransac_iterations"`
	PlaneRANSACThreshold  float64 `json:"plane_ransac_threshold"`
	MinPlanePoints        int     `json:"min_plane_points"`
	HorizontalThreshold   float64 `json:"horizontal_threshold"`
	PlaneStalePasses      int     `json:"plane_stale_passes"`

	// Image target tracker.
	GoodMatchRatio float64 `json:"good_match_ratio"`
	MinMatches     int     `json:"min_matches"`

	// Hit tester ground-plane RANSAC.
	GroundRANSACIterations int     `json:"ground_ransac_iterations"`
	GroundRANSACThreshold  float64 `json:"ground_ransac_threshold"`
	GroundMinInliers       int     `json:"ground_min_inliers"`
	GroundHorizontalCos    float64 `json:"ground_horizontal_cos"`

	// Default camera intrinsics (§6, §9: treated as a configurable default).
	DefaultFx float64 `json:"default_fx"`
	DefaultFy float64 `json:"default_fy"`
	DefaultCx float64 `json:"default_cx"`
	DefaultCy float64 `json:"default_cy"`
	NearPlane float64 `json:"near_plane"`
	FarPlane  float64 `json:"far_plane"`
}

// DefaultOptions returns the option set described by spec §6.
func DefaultOptions() *Options {
	return &Options{
		MinInitMatches:      100,
		MinTrackingMatches:  20,
		KeyframeInterval:    15,
		KeyframeTranslation: 0.1,

		PlaneRANSACIterations: 100,
		PlaneRANSACThreshold:  0.02,
		MinPlanePoints:        50,
		HorizontalThreshold:   0.9,
		PlaneStalePasses:      20,

		GoodMatchRatio: 0.75,
		MinMatches:     15,

		GroundRANSACIterations: 100,
		GroundRANSACThreshold:  0.03,
		GroundMinInliers:       20,
		GroundHorizontalCos:    0.85,

		DefaultFx: 500,
		DefaultFy: 500,
		DefaultCx: 320,
		DefaultCy: 240,
		NearPlane: 0.01,
		FarPlane:  1000,
	}
}

// Validate checks the counts, ratios, focal lengths and clip planes below
// for a sane range, following the ORBConfig.Validate convention of the
// teacher corpus; the plane and ground RANSAC thresholds, PlaneStalePasses,
// GroundHorizontalCos and the default principal point are not checked.
func (o *Options) Validate() error {
	if o.MinInitMatches <= 0 {
		return errors.New("min_init_matches must be > 0")
	}
	if o.MinTrackingMatches <= 0 {
		return errors.New("min_tracking_matches must be > 0")
	}
	if o.KeyframeInterval <= 0 {
		return errors.New("keyframe_interval must be > 0")
	}
	if o.KeyframeTranslation <= 0 {
		return errors.New("keyframe_translation must be > 0")
	}
	if o.PlaneRANSACIterations <= 0 {
		return errors.New("plane_ransac_iterations must be > 0")
	}
	if o.MinPlanePoints <= 0 {
		return errors.New("min_plane_points must be > 0")
	}
	if o.HorizontalThreshold <= 0 || o.HorizontalThreshold > 1 {
		return errors.New("horizontal_threshold must be in (0, 1]")
	}
	if o.GoodMatchRatio <= 0 || o.GoodMatchRatio > 1 {
		return errors.New("good_match_ratio must be in (0, 1]")
	}
	if o.MinMatches <= 0 {
		return errors.New("min_matches must be > 0")
	}
	if o.GroundRANSACIterations <= 0 {
		return errors.New("ground_ransac_iterations must be > 0")
	}
	if o.GroundMinInliers <= 0 {
		return errors.New("ground_min_inliers must be > 0")
	}
	if o.DefaultFx <= 0 || o.DefaultFy <= 0 {
		return errors.New("default_fx and default_fy must be > 0")
	}
	if o.NearPlane <= 0 || o.FarPlane <= o.NearPlane {
		return errors.New("near_plane must be > 0 and less than far_plane")
	}
	return nil
}

// LoadOptions loads an Options set from a JSON file; any field the file
// leaves unspecified keeps its DefaultOptions value. Callers get an
// explicit error for a missing or unparsable file.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	clean := filepath.Clean(path)
	f, err := os.Open(clean) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "opening options file")
	}
	defer f.Close() //nolint:errcheck

	if err := json.NewDecoder(f).Decode(opts); err != nil {
		return nil, errors.Wrap(err, "decoding options file")
	}
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	return opts, nil
}
