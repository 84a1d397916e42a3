// Package arerrors defines the error taxonomy shared across the tracking,
// mapping and geometry packages: InsufficientInput, DegenerateGeometry,
// NotConvex and Invariant, as described by the error handling design.
package arerrors

import "github.com/pkg/errors"

// ErrInsufficientInput signals that too few features, matches or inliers
// were available to proceed. Common and recoverable: the caller's frame
// is consumed and the state machine may stay put or advance elsewhere.
var ErrInsufficientInput = errors.New("insufficient input for this operation")

// ErrDegenerateGeometry signals a geometric computation produced no usable
// result: an empty essential matrix or homography, a matrix inversion
// whose determinant was too small, or a zero-length normal.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// ErrNotConvex signals that a projected quadrilateral (image-target
// corners) failed the convexity check and the detection must be discarded.
var ErrNotConvex = errors.New("projected corners are not convex")

// ErrInvariant signals a type or shape mismatch at a boundary, such as an
// RGBA buffer whose length does not match width*height*4.
var ErrInvariant = errors.New("invariant violated")

// WrapInsufficientInput wraps a context message around ErrInsufficientInput.
func WrapInsufficientInput(msg string) error {
	return errors.Wrap(ErrInsufficientInput, msg)
}

// WrapDegenerateGeometry wraps a context message around ErrDegenerateGeometry.
func WrapDegenerateGeometry(msg string) error {
	return errors.Wrap(ErrDegenerateGeometry, msg)
}

// WrapInvariant wraps a context message around ErrInvariant.
func WrapInvariant(msg string) error {
	return errors.Wrap(ErrInvariant, msg)
}
