// Package pipeline orchestrates one split run: decode, plan, reconstruct,
// encode, export. Single-threaded, whole-file I/O at the edges only.
package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/fitsplit/fitsplit"
	"github.com/fitsplit/fitsplit/activity"
	"github.com/fitsplit/fitsplit/export"
	"github.com/fitsplit/fitsplit/rebuild"
	"github.com/fitsplit/fitsplit/split"
)

// Run executes the full split pipeline and writes all requested artifacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.FitPath) == "" {
		return nil, fmt.Errorf("fit path is required")
	}
	if strings.TrimSpace(opts.OutPath) == "" {
		return nil, fmt.Errorf("output path is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.ExportFormat))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}

	data, err := os.ReadFile(opts.FitPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	model, err := activity.Decode(data)
	if err != nil {
		return nil, err
	}

	segments, err := plan(model, opts)
	if err != nil {
		return nil, err
	}
	segments, err = applyOverrides(segments, opts.Disciplines)
	if err != nil {
		return nil, err
	}

	messages, err := rebuild.Reconstruct(model, segments)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := activity.Encode(&buf, messages); err != nil {
		return nil, err
	}
	if err := os.WriteFile(opts.OutPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write output file: %w", err)
	}

	result := &Result{
		OutPath:      opts.OutPath,
		SegmentCount: len(segments),
		Warnings:     model.Warnings,
	}
	for i, seg := range segments {
		stats := fitsplit.ComputeStats(model.Samples, seg)
		result.Segments = append(result.Segments, SegmentInfo{
			Index:      i,
			StartIndex: seg.StartIndex,
			EndIndex:   seg.EndIndex,
			Discipline: seg.Discipline.String(),
			StartTime:  stats.StartTime,
			EndTime:    stats.EndTime,
			ElapsedS:   stats.ElapsedSec,
			DistanceM:  stats.DistanceM,
			AvgSpeed:   stats.AvgSpeed,
			AvgHR:      stats.AvgHR,
		})
	}

	if strings.TrimSpace(opts.ExportPath) != "" {
		if err := writeExport(opts.ExportPath, format, model.Samples, segments); err != nil {
			return nil, err
		}
		result.ExportPath = opts.ExportPath
	}
	return result, nil
}

// plan derives the segment list from explicit cuts or detection. Every
// segment gets a fresh discipline guess; there is no earlier plan to carry
// tags from. Detection that comes back short falls back to an even split.
func plan(model *activity.Model, opts Options) (fitsplit.SegmentList, error) {
	if len(opts.Cuts) > 0 {
		segments, err := split.RebuildFromCuts(model.Samples, nil, opts.Cuts)
		if err != nil {
			return nil, fmt.Errorf("apply cuts: %w", err)
		}
		return segments, nil
	}
	if opts.Sessions < 2 {
		return nil, fmt.Errorf("need --cuts or --sessions >= 2")
	}
	k := opts.Sessions - 1
	cuts := split.DetectTransitions(model.Samples, k)
	if len(cuts) < k {
		cuts = split.EvenCuts(len(model.Samples), k)
	}
	segments, err := split.RebuildFromCuts(model.Samples, nil, cuts)
	if err != nil {
		return nil, fmt.Errorf("apply detected cuts: %w", err)
	}
	return segments, nil
}

func applyOverrides(segments fitsplit.SegmentList, names []string) (fitsplit.SegmentList, error) {
	if len(names) == 0 {
		return segments, nil
	}
	if len(names) > len(segments) {
		return nil, fmt.Errorf("%d discipline overrides for %d segments", len(names), len(segments))
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		d, err := fitsplit.ParseDiscipline(name)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments, err = split.ApplyDiscipline(segments, i, d)
		if err != nil {
			return nil, err
		}
	}
	return segments, nil
}

func writeExport(path, format string, samples []fitsplit.Sample, segments fitsplit.SegmentList) error {
	switch format {
	case "csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("write export csv: %w", err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, samples, segments); err != nil {
			return fmt.Errorf("write export csv: %w", err)
		}
		return nil
	default:
		data, err := export.MarshalParquet(samples, segments)
		if err != nil {
			return fmt.Errorf("write export parquet: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write export parquet: %w", err)
		}
		return nil
	}
}
