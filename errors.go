package fitsplit

import "errors"

var (
	// ErrInvalidCut is returned when a cut index falls outside the usable
	// sample range or too close to either end of the recording.
	ErrInvalidCut = errors.New("invalid cut index")

	// ErrCannotRemoveLastSegment is returned when a removal would leave the
	// plan with no segments at all.
	ErrCannotRemoveLastSegment = errors.New("cannot remove the only segment")

	// ErrInsufficientSegments is returned by reconstruction when fewer than
	// two segments are supplied; splitting into one piece is a no-op.
	ErrInsufficientSegments = errors.New("need at least two segments")

	// ErrEmptySegment is returned when a segment covers no samples.
	ErrEmptySegment = errors.New("segment covers no samples")
)
