// Package export writes the sample series together with the segment plan as
// CSV or parquet, for inspection outside the tool.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"time"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/fitsplit/fitsplit"
)

// Row is one exported sample annotated with its segment assignment.
type Row struct {
	TSUTCISO     string
	ElapsedS     float64
	SpeedMPS     *float64
	HRBPM        *float64
	CadenceRPM   *float64
	PowerW       *float64
	DistanceM    *float64
	AltitudeM    *float64
	SegmentIndex int
	Discipline   string
}

// BuildRows flattens the samples against the segment plan. Segments are
// assumed to validate; samples outside any segment cannot occur then.
func BuildRows(samples []fitsplit.Sample, segments fitsplit.SegmentList) []Row {
	rows := make([]Row, 0, len(samples))
	if len(samples) == 0 {
		return rows
	}
	start := samples[0].Timestamp
	segIdx := 0
	for i, s := range samples {
		for segIdx < len(segments)-1 && i > segments[segIdx].EndIndex {
			segIdx++
		}
		rows = append(rows, Row{
			TSUTCISO:     s.Timestamp.UTC().Format(time.RFC3339),
			ElapsedS:     s.Timestamp.Sub(start).Seconds(),
			SpeedMPS:     s.Speed,
			HRBPM:        intFloat(s.HeartRate),
			CadenceRPM:   intFloat(s.Cadence),
			PowerW:       intFloat(s.Power),
			DistanceM:    s.Distance,
			AltitudeM:    s.Altitude,
			SegmentIndex: segIdx,
			Discipline:   segments[segIdx].Discipline.String(),
		})
	}
	return rows
}

// WriteCSV writes the annotated sample rows with a header line.
func WriteCSV(w io.Writer, samples []fitsplit.Sample, segments fitsplit.SegmentList) error {
	cw := csv.NewWriter(w)
	header := []string{
		"ts_utc_iso", "elapsed_s", "speed_mps", "hr_bpm", "cadence_rpm",
		"power_w", "distance_m", "altitude_m", "segment_index", "discipline",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range BuildRows(samples, segments) {
		row := []string{
			r.TSUTCISO,
			formatFloat(r.ElapsedS),
			formatFloatPtr(r.SpeedMPS),
			formatFloatPtr(r.HRBPM),
			formatFloatPtr(r.CadenceRPM),
			formatFloatPtr(r.PowerW),
			formatFloatPtr(r.DistanceM),
			formatFloatPtr(r.AltitudeM),
			strconv.Itoa(r.SegmentIndex),
			r.Discipline,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type parquetRow struct {
	TSUTCISO     string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS     float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	SpeedMPS     float64 `parquet:"name=speed_mps, type=DOUBLE"`
	HRBPM        float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	DistanceM    float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM    float64 `parquet:"name=altitude_m, type=DOUBLE"`
	SegmentIndex int64   `parquet:"name=segment_index, type=INT64"`
	Discipline   string  `parquet:"name=discipline, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// MarshalParquet renders the annotated sample rows as an in-memory parquet
// file. Missing metrics become NaN, parquet has no optional doubles here.
func MarshalParquet(samples []fitsplit.Sample, segments fitsplit.SegmentList) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range BuildRows(samples, segments) {
		row := parquetRow{
			TSUTCISO:     r.TSUTCISO,
			ElapsedS:     r.ElapsedS,
			SpeedMPS:     valueOrNaN(r.SpeedMPS),
			HRBPM:        valueOrNaN(r.HRBPM),
			CadenceRPM:   valueOrNaN(r.CadenceRPM),
			PowerW:       valueOrNaN(r.PowerW),
			DistanceM:    valueOrNaN(r.DistanceM),
			AltitudeM:    valueOrNaN(r.AltitudeM),
			SegmentIndex: int64(r.SegmentIndex),
			Discipline:   r.Discipline,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func intFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	return &v
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
