package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/fitsplit/fitsplit/activity"
)

var testStart = time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)

// buildTestFIT writes a fixture whose speed switches from slow to fast
// halfway through, one record per second.
func buildTestFIT(t *testing.T, numRecords int, slowMps, fastMps float64) string {
	t.Helper()

	fit := proto.FIT{}
	fit.Messages = append(fit.Messages, mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetTimeCreated(testStart).
		ToMesg(nil))
	dist := 0.0
	for i := 0; i < numRecords; i++ {
		speed := slowMps
		if i >= numRecords/2 {
			speed = fastMps
		}
		fit.Messages = append(fit.Messages, mesgdef.NewRecord(nil).
			SetTimestamp(testStart.Add(time.Duration(i)*time.Second)).
			SetSpeed(uint16(speed*1000)).
			SetDistance(uint32(dist*100)).
			SetHeartRate(128).
			ToMesg(nil))
		dist += speed
	}

	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(&fit); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "input.fit")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunWithExplicitCuts(t *testing.T) {
	fitPath := buildTestFIT(t, 200, 2.5, 8)
	outPath := filepath.Join(t.TempDir(), "out.fit")

	result, err := Run(Options{
		FitPath: fitPath,
		OutPath: outPath,
		Cuts:    []int{100},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.SegmentCount != 2 {
		t.Fatalf("expected 2 segments, got %d", result.SegmentCount)
	}
	if result.Segments[0].Discipline != "running" {
		t.Fatalf("segment 0 discipline %q, want running", result.Segments[0].Discipline)
	}
	if result.Segments[1].Discipline != "cycling" {
		t.Fatalf("segment 1 discipline %q, want cycling", result.Segments[1].Discipline)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	model, err := activity.Decode(data)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(model.Samples) != 200 {
		t.Fatalf("output sample count %d, want 200", len(model.Samples))
	}
}

func TestRunWithDetection(t *testing.T) {
	fitPath := buildTestFIT(t, 600, 2.5, 8)
	outPath := filepath.Join(t.TempDir(), "out.fit")

	result, err := Run(Options{
		FitPath:  fitPath,
		OutPath:  outPath,
		Sessions: 2,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.SegmentCount != 2 {
		t.Fatalf("expected 2 segments, got %d", result.SegmentCount)
	}
	// The regime boundary sits at sample 300.
	cut := result.Segments[1].StartIndex
	if cut < 260 || cut > 340 {
		t.Fatalf("detected cut %d not near 300", cut)
	}
}

func TestRunDisciplineOverrides(t *testing.T) {
	fitPath := buildTestFIT(t, 200, 2.5, 8)
	outPath := filepath.Join(t.TempDir(), "out.fit")

	result, err := Run(Options{
		FitPath:     fitPath,
		OutPath:     outPath,
		Cuts:        []int{100},
		Disciplines: []string{"swim", ""},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Segments[0].Discipline != "swimming" {
		t.Fatalf("segment 0 discipline %q, want swimming", result.Segments[0].Discipline)
	}
	if result.Segments[1].Discipline != "cycling" {
		t.Fatalf("segment 1 discipline %q, want cycling (kept guess)", result.Segments[1].Discipline)
	}
}

func TestRunWritesCSVExport(t *testing.T) {
	fitPath := buildTestFIT(t, 200, 2.5, 8)
	tmp := t.TempDir()
	outPath := filepath.Join(tmp, "out.fit")
	exportPath := filepath.Join(tmp, "plan.csv")

	result, err := Run(Options{
		FitPath:      fitPath,
		OutPath:      outPath,
		Cuts:         []int{100},
		ExportPath:   exportPath,
		ExportFormat: "csv",
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.ExportPath != exportPath {
		t.Fatalf("export path %q, want %q", result.ExportPath, exportPath)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 201 {
		t.Fatalf("expected header + 200 rows, got %d", len(lines))
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	fitPath := buildTestFIT(t, 200, 2.5, 8)
	outPath := filepath.Join(t.TempDir(), "out.fit")

	if _, err := Run(Options{OutPath: outPath, Cuts: []int{100}}); err == nil {
		t.Fatal("expected error for missing fit path")
	}
	if _, err := Run(Options{FitPath: fitPath, Cuts: []int{100}}); err == nil {
		t.Fatal("expected error for missing output path")
	}
	if _, err := Run(Options{FitPath: fitPath, OutPath: outPath}); err == nil {
		t.Fatal("expected error for missing cuts and sessions")
	}
	if _, err := Run(Options{FitPath: fitPath, OutPath: outPath, Cuts: []int{2}}); err == nil {
		t.Fatal("expected error for out-of-range cut")
	}
	if _, err := Run(Options{FitPath: fitPath, OutPath: outPath, Cuts: []int{100}, ExportFormat: "xml"}); err == nil {
		t.Fatal("expected error for unsupported export format")
	}
	if _, err := Run(Options{FitPath: fitPath, OutPath: outPath, Cuts: []int{100}, Disciplines: []string{"a", "b", "c"}}); err == nil {
		t.Fatal("expected error for too many overrides")
	}
}
