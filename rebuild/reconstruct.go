// Package rebuild re-expresses a decoded activity as a multi-session FIT
// message stream following the segment plan. Record messages pass through
// unmodified; everything else in the output is synthesized.
package rebuild

import (
	"fmt"
	"time"

	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/profile/untyped/mesgnum"
	"github.com/muktihari/fit/proto"

	"github.com/fitsplit/fitsplit"
	"github.com/fitsplit/fitsplit/activity"
)

// Reconstruct builds the output stream: one file_id, the original device
// metadata, then per segment a timer start event, the segment's record
// messages verbatim, a stop_all event, a lap and a session summary, and
// finally one activity message. At least two segments are required; a
// single segment would reproduce the input.
func Reconstruct(model *activity.Model, segments fitsplit.SegmentList) ([]proto.Message, error) {
	if len(segments) < 2 {
		return nil, fitsplit.ErrInsufficientSegments
	}
	if err := segments.Validate(len(model.Samples)); err != nil {
		return nil, fmt.Errorf("segment plan: %w", err)
	}

	out := make([]proto.Message, 0, len(model.Messages))
	out = append(out, fileIDMessage(model))
	out = append(out, metadataMessages(model)...)

	lapIndex := 0
	for i, seg := range segments {
		stats := fitsplit.ComputeStats(model.Samples, seg)

		out = append(out, mesgdef.NewEvent(nil).
			SetTimestamp(stats.StartTime).
			SetEvent(typedef.EventTimer).
			SetEventType(typedef.EventTypeStart).
			ToMesg(nil))

		for j := seg.StartIndex; j <= seg.EndIndex; j++ {
			out = append(out, model.Messages[model.RecordIndexes[j]])
		}

		out = append(out, mesgdef.NewEvent(nil).
			SetTimestamp(stats.EndTime).
			SetEvent(typedef.EventTimer).
			SetEventType(typedef.EventTypeStopAll).
			ToMesg(nil))

		out = append(out, lapMessage(lapIndex, seg, stats))
		out = append(out, sessionMessage(i, lapIndex, seg, stats))
		lapIndex++
	}

	out = append(out, activityMessage(model, len(segments)))
	return out, nil
}

// fileIDMessage clones the original file identity, forcing the file type to
// activity, or synthesizes one when the input carried none.
func fileIDMessage(model *activity.Model) proto.Message {
	for i := range model.Messages {
		if model.Messages[i].Num == mesgnum.FileId {
			return mesgdef.NewFileId(&model.Messages[i]).
				SetType(typedef.FileActivity).
				ToMesg(nil)
		}
	}
	return mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetTimeCreated(model.Samples[0].Timestamp).
		ToMesg(nil)
}

// metadataMessages copies device_info and the developer-field plumbing in
// original order. Without developer_data_id and field_description the
// encoder could not re-emit records carrying developer fields.
func metadataMessages(model *activity.Model) []proto.Message {
	var out []proto.Message
	for _, msg := range model.Messages {
		switch msg.Num {
		case mesgnum.DeviceInfo, mesgnum.DeveloperDataId, mesgnum.FieldDescription:
			out = append(out, msg)
		}
	}
	return out
}

func lapMessage(lapIndex int, seg fitsplit.Segment, stats fitsplit.SegmentStats) proto.Message {
	lap := mesgdef.NewLap(nil).
		SetMessageIndex(typedef.MessageIndex(lapIndex)).
		SetTimestamp(stats.EndTime).
		SetStartTime(stats.StartTime).
		SetEvent(typedef.EventLap).
		SetEventType(typedef.EventTypeStop).
		SetSport(sportFor(seg.Discipline)).
		SetTotalElapsedTime(uint32(stats.ElapsedSec * 1000)).
		SetTotalTimerTime(uint32(stats.ElapsedSec * 1000)).
		SetTotalDistance(uint32(stats.DistanceM * 100))
	if stats.AvgSpeed != nil {
		lap.SetAvgSpeed(uint16(*stats.AvgSpeed * 1000))
	}
	if stats.MaxSpeed != nil {
		lap.SetMaxSpeed(uint16(*stats.MaxSpeed * 1000))
	}
	if stats.AvgHR != nil {
		lap.SetAvgHeartRate(uint8(*stats.AvgHR))
	}
	if stats.MaxHR != nil {
		lap.SetMaxHeartRate(uint8(*stats.MaxHR))
	}
	if stats.AvgCadence != nil {
		lap.SetAvgCadence(uint8(*stats.AvgCadence))
	}
	if stats.AvgPower != nil {
		lap.SetAvgPower(uint16(*stats.AvgPower))
	}
	return lap.ToMesg(nil)
}

func sessionMessage(segIndex, lapIndex int, seg fitsplit.Segment, stats fitsplit.SegmentStats) proto.Message {
	ses := mesgdef.NewSession(nil).
		SetMessageIndex(typedef.MessageIndex(segIndex)).
		SetTimestamp(stats.EndTime).
		SetStartTime(stats.StartTime).
		SetEvent(typedef.EventSession).
		SetEventType(typedef.EventTypeStop).
		SetTrigger(typedef.SessionTriggerActivityEnd).
		SetSport(sportFor(seg.Discipline)).
		SetFirstLapIndex(uint16(lapIndex)).
		SetNumLaps(1).
		SetTotalElapsedTime(uint32(stats.ElapsedSec * 1000)).
		SetTotalTimerTime(uint32(stats.ElapsedSec * 1000)).
		SetTotalDistance(uint32(stats.DistanceM * 100))
	if stats.AvgSpeed != nil {
		ses.SetAvgSpeed(uint16(*stats.AvgSpeed * 1000))
	}
	if stats.MaxSpeed != nil {
		ses.SetMaxSpeed(uint16(*stats.MaxSpeed * 1000))
	}
	if stats.AvgHR != nil {
		ses.SetAvgHeartRate(uint8(*stats.AvgHR))
	}
	if stats.MaxHR != nil {
		ses.SetMaxHeartRate(uint8(*stats.MaxHR))
	}
	if stats.AvgCadence != nil {
		ses.SetAvgCadence(uint8(*stats.AvgCadence))
	}
	if stats.AvgPower != nil {
		ses.SetAvgPower(uint16(*stats.AvgPower))
	}
	return ses.ToMesg(nil)
}

func activityMessage(model *activity.Model, numSessions int) proto.Message {
	last := model.Samples[len(model.Samples)-1].Timestamp
	total := last.Sub(model.Samples[0].Timestamp).Seconds()
	_, offset := last.Zone()
	return mesgdef.NewActivity(nil).
		SetTimestamp(last).
		SetLocalTimestamp(last.Add(time.Duration(offset) * time.Second)).
		SetTotalTimerTime(uint32(total * 1000)).
		SetNumSessions(uint16(numSessions)).
		SetType(typedef.ActivityAutoMultiSport).
		SetEvent(typedef.EventActivity).
		SetEventType(typedef.EventTypeStop).
		ToMesg(nil)
}

func sportFor(d fitsplit.Discipline) typedef.Sport {
	switch d {
	case fitsplit.DisciplineRunning:
		return typedef.SportRunning
	case fitsplit.DisciplineCycling:
		return typedef.SportCycling
	case fitsplit.DisciplineTransition:
		return typedef.SportTransition
	case fitsplit.DisciplineSwimming:
		return typedef.SportSwimming
	default:
		return typedef.SportGeneric
	}
}
