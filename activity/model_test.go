package activity

import (
	"bytes"
	"testing"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/profile/untyped/mesgnum"
	"github.com/muktihari/fit/proto"
)

var testStart = time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)

func buildTestFIT(t *testing.T, numRecords int, speedMps float64) []byte {
	t.Helper()

	fit := proto.FIT{}
	fit.Messages = append(fit.Messages, mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetTimeCreated(testStart).
		ToMesg(nil))

	for i := 0; i < numRecords; i++ {
		rec := mesgdef.NewRecord(nil).
			SetTimestamp(testStart.Add(time.Duration(i) * time.Second)).
			SetSpeed(uint16(speedMps * 1000)).
			SetDistance(uint32(float64(i) * speedMps * 100)).
			SetHeartRate(135).
			SetCadence(90).
			SetPower(245)
		fit.Messages = append(fit.Messages, rec.ToMesg(nil))
	}

	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(&fit); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBuildsAlignedModel(t *testing.T) {
	data := buildTestFIT(t, 120, 10)

	model, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if len(model.Samples) != 120 {
		t.Fatalf("expected 120 samples, got %d", len(model.Samples))
	}
	if len(model.RecordIndexes) != len(model.Samples) {
		t.Fatalf("record index count %d != sample count %d", len(model.RecordIndexes), len(model.Samples))
	}
	for i, pos := range model.RecordIndexes {
		if model.Messages[pos].Num != mesgnum.Record {
			t.Fatalf("RecordIndexes[%d]=%d does not point at a record message", i, pos)
		}
	}

	s := model.Samples[10]
	if s.Speed == nil || *s.Speed < 9.99 || *s.Speed > 10.01 {
		t.Fatalf("unexpected speed for sample 10: %v", s.Speed)
	}
	if s.HeartRate == nil || *s.HeartRate != 135 {
		t.Fatalf("unexpected heart rate: %v", s.HeartRate)
	}
	if !s.Timestamp.Equal(testStart.Add(10 * time.Second)) {
		t.Fatalf("unexpected timestamp: %v", s.Timestamp)
	}

	if model.Summary.TotalDurationSec != 119 {
		t.Fatalf("unexpected duration: %v", model.Summary.TotalDurationSec)
	}
	if model.Summary.AvgHR == nil || *model.Summary.AvgHR != 135 {
		t.Fatalf("unexpected avg hr: %v", model.Summary.AvgHR)
	}
	if len(model.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", model.Warnings)
	}
}

func TestDecodeRejectsFileWithoutRecords(t *testing.T) {
	fit := proto.FIT{Messages: []proto.Message{
		mesgdef.NewFileId(nil).
			SetType(typedef.FileActivity).
			SetManufacturer(typedef.ManufacturerDevelopment).
			SetTimeCreated(testStart).
			ToMesg(nil),
	}}
	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(&fit); err != nil {
		t.Fatalf("encode fit: %v", err)
	}

	if _, err := Decode(buf.Bytes()); err == nil {
		t.Fatal("expected error for file without records")
	}
}

func TestDecodeCRCMismatchIsSoftFailure(t *testing.T) {
	data := buildTestFIT(t, 120, 10)
	data[len(data)-1] ^= 0xFF // corrupt the file CRC

	model, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(model.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", model.Warnings)
	}
	if len(model.Samples) != 120 {
		t.Fatalf("expected 120 samples, got %d", len(model.Samples))
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data := buildTestFIT(t, 60, 3)
	model, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, model.Messages); err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	again, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("second Decode error: %v", err)
	}
	if len(again.Samples) != len(model.Samples) {
		t.Fatalf("sample count changed: %d != %d", len(again.Samples), len(model.Samples))
	}
}

func TestSampleFieldsAreOptional(t *testing.T) {
	fit := proto.FIT{}
	fit.Messages = append(fit.Messages, mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetTimeCreated(testStart).
		ToMesg(nil))
	// Record carrying only a timestamp.
	fit.Messages = append(fit.Messages, mesgdef.NewRecord(nil).
		SetTimestamp(testStart).
		ToMesg(nil))

	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(&fit); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	model, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	s := model.Samples[0]
	if s.Speed != nil || s.HeartRate != nil || s.Distance != nil || s.Power != nil {
		t.Fatalf("expected nil metrics, got %+v", s)
	}
}
