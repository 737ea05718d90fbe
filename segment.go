package fitsplit

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Segment is one contiguous, inclusive index range of the sample sequence.
type Segment struct {
	StartIndex int
	EndIndex   int
	Discipline Discipline
}

// Len reports the number of samples the segment covers.
func (s Segment) Len() int { return s.EndIndex - s.StartIndex + 1 }

// SegmentList is an ordered partition of the sample sequence.
type SegmentList []Segment

// Validate checks the partition invariant against a recording of n samples:
// at least one segment, first starts at 0, last ends at n-1, and every
// segment begins exactly one past its predecessor's end.
func (sl SegmentList) Validate(n int) error {
	if len(sl) == 0 {
		return fmt.Errorf("segment list: %w", ErrEmptySegment)
	}
	if sl[0].StartIndex != 0 {
		return fmt.Errorf("segment 0 starts at %d, want 0", sl[0].StartIndex)
	}
	if sl[len(sl)-1].EndIndex != n-1 {
		return fmt.Errorf("last segment ends at %d, want %d", sl[len(sl)-1].EndIndex, n-1)
	}
	for i, seg := range sl {
		if seg.EndIndex < seg.StartIndex {
			return fmt.Errorf("segment %d [%d,%d]: %w", i, seg.StartIndex, seg.EndIndex, ErrEmptySegment)
		}
		if i > 0 && seg.StartIndex != sl[i-1].EndIndex+1 {
			return fmt.Errorf("segment %d starts at %d, want %d", i, seg.StartIndex, sl[i-1].EndIndex+1)
		}
	}
	return nil
}

// Clone returns an independent copy of the list.
func (sl SegmentList) Clone() SegmentList {
	out := make(SegmentList, len(sl))
	copy(out, sl)
	return out
}

// SegmentStats are the aggregates reported for one segment. Metric fields
// are nil when no sample in the segment carried a defined value.
type SegmentStats struct {
	StartTime  time.Time
	EndTime    time.Time
	ElapsedSec float64
	DistanceM  float64
	AvgSpeed   *float64
	MaxSpeed   *float64
	AvgHR      *float64
	MaxHR      *float64
	AvgCadence *float64
	AvgPower   *float64
}

// ComputeStats aggregates the samples a segment covers. Elapsed time is the
// end-to-start timestamp difference; distance is the delta of the cumulative
// distance field, clamped at zero and zero when either endpoint has no
// distance.
func ComputeStats(samples []Sample, seg Segment) SegmentStats {
	first := samples[seg.StartIndex]
	last := samples[seg.EndIndex]
	st := SegmentStats{
		StartTime:  first.Timestamp,
		EndTime:    last.Timestamp,
		ElapsedSec: last.Timestamp.Sub(first.Timestamp).Seconds(),
	}
	if first.Distance != nil && last.Distance != nil {
		if d := *last.Distance - *first.Distance; d > 0 {
			st.DistanceM = d
		}
	}

	var speeds, hrs, cads, pows []float64
	for i := seg.StartIndex; i <= seg.EndIndex; i++ {
		s := samples[i]
		if s.Speed != nil {
			speeds = append(speeds, *s.Speed)
		}
		if s.HeartRate != nil {
			hrs = append(hrs, float64(*s.HeartRate))
		}
		if s.Cadence != nil {
			cads = append(cads, float64(*s.Cadence))
		}
		if s.Power != nil {
			pows = append(pows, float64(*s.Power))
		}
	}
	if len(speeds) > 0 {
		avg, max := stat.Mean(speeds, nil), floats.Max(speeds)
		st.AvgSpeed, st.MaxSpeed = &avg, &max
	}
	if len(hrs) > 0 {
		avg, max := stat.Mean(hrs, nil), floats.Max(hrs)
		st.AvgHR, st.MaxHR = &avg, &max
	}
	if len(cads) > 0 {
		avg := stat.Mean(cads, nil)
		st.AvgCadence = &avg
	}
	if len(pows) > 0 {
		avg := stat.Mean(pows, nil)
		st.AvgPower = &avg
	}
	return st
}

// MeanSpeed returns the mean of the defined speed samples in the segment,
// or 0 when none carry speed.
func MeanSpeed(samples []Sample, seg Segment) float64 {
	var sum float64
	var n int
	for i := seg.StartIndex; i <= seg.EndIndex; i++ {
		if v := samples[i].Speed; v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
