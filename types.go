// Package fitsplit holds the domain types for re-partitioning one continuous
// activity recording into contiguous segments, each tagged with a discipline.
package fitsplit

import (
	"fmt"
	"strings"
	"time"
)

// Discipline is the activity type assigned to one segment.
type Discipline int

const (
	DisciplineGeneric Discipline = iota
	DisciplineRunning
	DisciplineCycling
	DisciplineTransition
	DisciplineSwimming
)

func (d Discipline) String() string {
	switch d {
	case DisciplineRunning:
		return "running"
	case DisciplineCycling:
		return "cycling"
	case DisciplineTransition:
		return "transition"
	case DisciplineSwimming:
		return "swimming"
	default:
		return "generic"
	}
}

// ParseDiscipline maps user-supplied discipline names, including common
// shorthands, to a Discipline. Swimming is accepted here even though the
// speed heuristic never infers it.
func ParseDiscipline(s string) (Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run", "running":
		return DisciplineRunning, nil
	case "bike", "ride", "cycling":
		return DisciplineCycling, nil
	case "transition", "t1", "t2":
		return DisciplineTransition, nil
	case "swim", "swimming":
		return DisciplineSwimming, nil
	case "", "generic", "other":
		return DisciplineGeneric, nil
	default:
		return DisciplineGeneric, fmt.Errorf("unknown discipline %q", s)
	}
}

// Sample is one timestamped measurement row of the activity. Metric fields
// are nil when the source record carried no defined value for them.
type Sample struct {
	Timestamp time.Time
	Speed     *float64 // m/s
	HeartRate *int     // bpm
	Distance  *float64 // meters, monotonic within an activity
	Cadence   *int
	Power     *int // watts
	Altitude  *float64
	Lat       *float64 // degrees
	Lon       *float64
}
