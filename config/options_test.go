package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestDefaultOptionsValidates(t *testing.T) {
	opts := DefaultOptions()
	test.That(t, opts.Validate(), test.ShouldBeNil)
}

func TestValidateRejectsNonPositiveMinInitMatches(t *testing.T) {
	opts := DefaultOptions()
	opts.MinInitMatches = 0
	test.That(t, opts.Validate(), test.ShouldNotBeNil)
}

func TestValidateRejectsBadHorizontalThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.HorizontalThreshold = 1.5
	test.That(t, opts.Validate(), test.ShouldNotBeNil)
}

func TestValidateRejectsFarPlaneNotAboveNearPlane(t *testing.T) {
	opts := DefaultOptions()
	opts.NearPlane = 10
	opts.FarPlane = 5
	test.That(t, opts.Validate(), test.ShouldNotBeNil)
}

func TestLoadOptionsReadsOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.json")
	data, err := json.Marshal(map[string]interface{}{"min_init_matches": 42})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)

	opts, err := LoadOptions(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.MinInitMatches, test.ShouldEqual, 42)
	// Fields left unspecified in the file keep their DefaultOptions value.
	test.That(t, opts.MinTrackingMatches, test.ShouldEqual, DefaultOptions().MinTrackingMatches)
}

func TestLoadOptionsRejectsMissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadOptionsRejectsInvalidResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.json")
	data, err := json.Marshal(map[string]interface{}{"min_init_matches": -1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)

	_, err = LoadOptions(path)
	test.That(t, err, test.ShouldNotBeNil)
}
