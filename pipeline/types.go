package pipeline

import "time"

// Options configures one split run.
type Options struct {
	// FitPath is the input activity file.
	FitPath string
	// OutPath is where the rebuilt multi-session file is written.
	OutPath string
	// Cuts are explicit split indices into the record sequence. When set,
	// Sessions is ignored.
	Cuts []int
	// Sessions asks for automatic detection of Sessions-1 cut points.
	Sessions int
	// Disciplines overrides the guessed discipline per segment, in order.
	// Empty entries keep the guess.
	Disciplines []string
	// ExportPath, when set, additionally writes the annotated sample table.
	ExportPath string
	// ExportFormat is parquet or csv. Defaults to parquet.
	ExportFormat string
}

// SegmentInfo is the per-segment view reported back to the caller.
type SegmentInfo struct {
	Index      int       `json:"index"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	Discipline string    `json:"discipline"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	ElapsedS   float64   `json:"elapsed_s"`
	DistanceM  float64   `json:"distance_m"`
	AvgSpeed   *float64  `json:"avg_speed_mps,omitempty"`
	AvgHR      *float64  `json:"avg_hr_bpm,omitempty"`
}

// Result reports the written artifacts.
type Result struct {
	OutPath      string        `json:"out_path"`
	ExportPath   string        `json:"export_path,omitempty"`
	SegmentCount int           `json:"segment_count"`
	Segments     []SegmentInfo `json:"segments"`
	Warnings     []string      `json:"warnings,omitempty"`
}
