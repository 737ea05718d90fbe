// Package split plans segment boundaries over a decoded activity. All
// operations are pure: inputs are never mutated and rejected operations
// return the zero value.
package split

import (
	"fmt"

	"github.com/fitsplit/fitsplit"
)

// boundaryGuard is the minimum distance, in samples, a cut must keep from
// either end of the recording. Segments shorter than this carry no usable
// signal for discipline tagging.
const boundaryGuard = 5

// Reset returns the trivial plan: one segment covering every sample. The
// segment keeps the discipline the recording itself declares; the speed
// guess only steps in when the recording declares none.
func Reset(samples []fitsplit.Sample, recorded fitsplit.Discipline) fitsplit.SegmentList {
	seg := fitsplit.Segment{StartIndex: 0, EndIndex: len(samples) - 1}
	seg.Discipline = recorded
	if seg.Discipline == fitsplit.DisciplineGeneric {
		seg.Discipline = guessFor(samples, seg)
	}
	return fitsplit.SegmentList{seg}
}

// RebuildFromCuts replaces the whole plan with the partition induced by the
// given cut indices. Each cut becomes the first sample of a new segment.
// Cuts must be strictly ascending and clear of the boundary guard on both
// ends; otherwise ErrInvalidCut is returned and prev is left untouched.
//
// Disciplines carry over by position from prev; segments beyond prev's
// length are guessed from their mean speed.
func RebuildFromCuts(samples []fitsplit.Sample, prev fitsplit.SegmentList, cuts []int) (fitsplit.SegmentList, error) {
	n := len(samples)
	for i, c := range cuts {
		if c <= boundaryGuard || c >= n-1-boundaryGuard {
			return nil, fmt.Errorf("cut %d out of range (%d, %d): %w", c, boundaryGuard, n-1-boundaryGuard, fitsplit.ErrInvalidCut)
		}
		if i > 0 && c <= cuts[i-1] {
			return nil, fmt.Errorf("cuts not strictly ascending at %d: %w", c, fitsplit.ErrInvalidCut)
		}
	}

	out := make(fitsplit.SegmentList, 0, len(cuts)+1)
	start := 0
	for _, c := range cuts {
		out = append(out, fitsplit.Segment{StartIndex: start, EndIndex: c - 1})
		start = c
	}
	out = append(out, fitsplit.Segment{StartIndex: start, EndIndex: n - 1})

	for i := range out {
		if i < len(prev) {
			out[i].Discipline = prev[i].Discipline
		} else {
			out[i].Discipline = guessFor(samples, out[i])
		}
	}
	return out, nil
}

// RemoveCut deletes the segment at index by merging its range into the
// following segment, or into the preceding one when it is last. A plan with
// a single segment cannot shrink further.
func RemoveCut(segments fitsplit.SegmentList, index int) (fitsplit.SegmentList, error) {
	if len(segments) <= 1 {
		return nil, fitsplit.ErrCannotRemoveLastSegment
	}
	if index < 0 || index >= len(segments) {
		return nil, fmt.Errorf("segment index %d out of range: %w", index, fitsplit.ErrInvalidCut)
	}
	out := segments.Clone()
	if index < len(out)-1 {
		out[index+1].StartIndex = out[index].StartIndex
	} else {
		out[index-1].EndIndex = out[index].EndIndex
	}
	return append(out[:index], out[index+1:]...), nil
}

// ApplyDiscipline retags one segment.
func ApplyDiscipline(segments fitsplit.SegmentList, index int, d fitsplit.Discipline) (fitsplit.SegmentList, error) {
	if index < 0 || index >= len(segments) {
		return nil, fmt.Errorf("segment index %d out of range: %w", index, fitsplit.ErrInvalidCut)
	}
	out := segments.Clone()
	out[index].Discipline = d
	return out, nil
}

// GuessDiscipline maps a mean speed in km/h to a discipline. Above 20 km/h
// reads as cycling, below 3 km/h as a transition, everything between as
// running. Swimming is never inferred; it has to be set explicitly.
func GuessDiscipline(meanSpeedKmh float64) fitsplit.Discipline {
	switch {
	case meanSpeedKmh > 20:
		return fitsplit.DisciplineCycling
	case meanSpeedKmh < 3:
		return fitsplit.DisciplineTransition
	default:
		return fitsplit.DisciplineRunning
	}
}

func guessFor(samples []fitsplit.Sample, seg fitsplit.Segment) fitsplit.Discipline {
	return GuessDiscipline(fitsplit.MeanSpeed(samples, seg) * 3.6)
}
