// Package activity builds an immutable in-memory view of one decoded FIT
// activity. The raw message stream and the sample view stay index-aligned:
// Samples[i] is the scaled reading of Messages[RecordIndexes[i]].
package activity

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/basetype"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/profile/untyped/mesgnum"
	"github.com/muktihari/fit/proto"

	"github.com/fitsplit/fitsplit"
)

// Summary holds the whole-recording aggregates shown before any split.
type Summary struct {
	Discipline       fitsplit.Discipline
	StartTime        time.Time
	EndTime          time.Time
	TotalDurationSec float64
	TotalDistanceM   float64
	AvgHR            *float64
}

// Model is the decoded view of one activity. It is built once by Decode and
// never mutated afterwards; planners and reconstructors only read from it.
type Model struct {
	// Samples holds one entry per record message, in stream order.
	Samples []fitsplit.Sample

	// Messages is the full decoded stream in original order.
	Messages []proto.Message

	// RecordIndexes maps sample position to position within Messages.
	RecordIndexes []int

	Summary  Summary
	Warnings []string
}

// Decode parses a whole FIT file held in memory. A CRC mismatch is treated
// as a soft failure: the file is decoded again with checksum validation off
// and a warning is recorded on the model. A file with no record messages is
// an error.
func Decode(data []byte) (*Model, error) {
	var warnings []string
	fit, err := decoder.New(bytes.NewReader(data)).Decode()
	if err != nil {
		if !errors.Is(err, decoder.ErrCRCChecksumMismatch) {
			return nil, fmt.Errorf("decode fit: %w", err)
		}
		fit, err = decoder.New(bytes.NewReader(data), decoder.WithIgnoreChecksum()).Decode()
		if err != nil {
			return nil, fmt.Errorf("decode fit: %w", err)
		}
		warnings = append(warnings, "crc checksum mismatch, file decoded without integrity check")
	}

	m := &Model{
		Messages: fit.Messages,
		Warnings: warnings,
	}
	for i := range fit.Messages {
		msg := &fit.Messages[i]
		switch msg.Num {
		case mesgnum.Record:
			m.Samples = append(m.Samples, sampleFromRecord(mesgdef.NewRecord(msg)))
			m.RecordIndexes = append(m.RecordIndexes, i)
		case mesgnum.Session:
			if m.Summary.Discipline == fitsplit.DisciplineGeneric {
				m.Summary.Discipline = disciplineFromSport(mesgdef.NewSession(msg).Sport)
			}
		}
	}
	if len(m.Samples) == 0 {
		return nil, errors.New("decode fit: no record messages")
	}

	first, last := m.Samples[0], m.Samples[len(m.Samples)-1]
	m.Summary.StartTime = first.Timestamp
	m.Summary.EndTime = last.Timestamp
	m.Summary.TotalDurationSec = last.Timestamp.Sub(first.Timestamp).Seconds()
	if first.Distance != nil && last.Distance != nil {
		if d := *last.Distance - *first.Distance; d > 0 {
			m.Summary.TotalDistanceM = d
		}
	}
	var hrSum, hrN float64
	for _, s := range m.Samples {
		if s.HeartRate != nil {
			hrSum += float64(*s.HeartRate)
			hrN++
		}
	}
	if hrN > 0 {
		avg := hrSum / hrN
		m.Summary.AvgHR = &avg
	}
	return m, nil
}

// Encode writes an ordered message stream as a FIT file. Header, scaling and
// CRC are owned by the codec.
func Encode(w io.Writer, messages []proto.Message) error {
	fit := proto.FIT{Messages: messages}
	if err := encoder.New(w).Encode(&fit); err != nil {
		return fmt.Errorf("encode fit: %w", err)
	}
	return nil
}

// sampleFromRecord lifts one record message into the sample view. Enhanced
// speed and altitude win over the legacy fields when both are defined, and
// invalid sentinels become nil.
func sampleFromRecord(rec *mesgdef.Record) fitsplit.Sample {
	s := fitsplit.Sample{Timestamp: rec.Timestamp}

	if v := rec.EnhancedSpeedScaled(); !math.IsNaN(v) {
		s.Speed = &v
	} else if v := rec.SpeedScaled(); !math.IsNaN(v) {
		s.Speed = &v
	}
	if v := rec.DistanceScaled(); !math.IsNaN(v) {
		s.Distance = &v
	}
	if v := rec.EnhancedAltitudeScaled(); !math.IsNaN(v) {
		s.Altitude = &v
	} else if v := rec.AltitudeScaled(); !math.IsNaN(v) {
		s.Altitude = &v
	}
	if rec.HeartRate != basetype.Uint8Invalid {
		v := int(rec.HeartRate)
		s.HeartRate = &v
	}
	if rec.Cadence != basetype.Uint8Invalid {
		v := int(rec.Cadence)
		s.Cadence = &v
	}
	if rec.Power != basetype.Uint16Invalid {
		v := int(rec.Power)
		s.Power = &v
	}
	if v := rec.PositionLatDegrees(); !math.IsNaN(v) {
		s.Lat = &v
	}
	if v := rec.PositionLongDegrees(); !math.IsNaN(v) {
		s.Lon = &v
	}
	return s
}

func disciplineFromSport(sport typedef.Sport) fitsplit.Discipline {
	switch sport {
	case typedef.SportRunning:
		return fitsplit.DisciplineRunning
	case typedef.SportCycling:
		return fitsplit.DisciplineCycling
	case typedef.SportTransition:
		return fitsplit.DisciplineTransition
	case typedef.SportSwimming:
		return fitsplit.DisciplineSwimming
	default:
		return fitsplit.DisciplineGeneric
	}
}
