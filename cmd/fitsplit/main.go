// fitsplit re-partitions one continuous FIT activity into a multi-session
// file, one session per discipline segment.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitsplit/fitsplit"
	"github.com/fitsplit/fitsplit/activity"
	"github.com/fitsplit/fitsplit/export"
	"github.com/fitsplit/fitsplit/pipeline"
	"github.com/fitsplit/fitsplit/split"
)

var (
	fitPath      string
	outPath      string
	cutsFlag     string
	sessionsFlag int
	sportFlag    string
	exportPath   string
	formatFlag   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fitsplit",
	Short: "Split one FIT activity into multiple sessions",
	Long: `fitsplit re-partitions a continuous FIT activity recording into
contiguous segments, tags each with a discipline, and writes the result as a
multi-session activity file.`,
	SilenceUsage: true,
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split an activity at explicit or detected cut points",
	Long: `Split an activity and write the rebuilt multi-session file.

Examples:
  fitsplit split --fit ride.fit --out brick.fit --cuts 1200,3400
  fitsplit split --fit race.fit --out race_multi.fit --sessions 3 --sport swim,bike,run
  fitsplit split --fit ride.fit --out out.fit --cuts 900 --export plan.csv --format csv`,
	RunE: runSplit,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print candidate cut points for a session count",
	RunE:  runDetect,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode an activity and print its summary",
	RunE:  runInspect,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the sample table with segment annotations, no FIT output",
	RunE:  runExport,
}

func init() {
	for _, c := range []*cobra.Command{splitCmd, detectCmd, inspectCmd, exportCmd} {
		c.Flags().StringVar(&fitPath, "fit", "", "path to input .fit file")
		_ = c.MarkFlagRequired("fit")
	}
	splitCmd.Flags().StringVar(&outPath, "out", "", "path of the rebuilt .fit file")
	_ = splitCmd.MarkFlagRequired("out")
	splitCmd.Flags().StringVar(&cutsFlag, "cuts", "", "comma-separated cut indices, e.g. 1200,3400")
	splitCmd.Flags().IntVar(&sessionsFlag, "sessions", 0, "detect cut points for this many sessions")
	splitCmd.Flags().StringVar(&sportFlag, "sport", "", "per-segment discipline overrides, e.g. run,transition,bike")
	splitCmd.Flags().StringVar(&exportPath, "export", "", "also write the annotated sample table here")
	splitCmd.Flags().StringVar(&formatFlag, "format", "parquet", "export format: parquet|csv")

	detectCmd.Flags().IntVar(&sessionsFlag, "sessions", 2, "number of sessions to detect")

	exportCmd.Flags().StringVar(&outPath, "out", "", "path of the sample table")
	_ = exportCmd.MarkFlagRequired("out")
	exportCmd.Flags().StringVar(&cutsFlag, "cuts", "", "comma-separated cut indices to annotate with")
	exportCmd.Flags().StringVar(&formatFlag, "format", "parquet", "export format: parquet|csv")

	rootCmd.AddCommand(splitCmd, detectCmd, inspectCmd, exportCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	cuts, err := parseCuts(cutsFlag)
	if err != nil {
		return err
	}
	var disciplines []string
	if strings.TrimSpace(sportFlag) != "" {
		disciplines = strings.Split(sportFlag, ",")
	}
	result, err := pipeline.Run(pipeline.Options{
		FitPath:      fitPath,
		OutPath:      outPath,
		Cuts:         cuts,
		Sessions:     sessionsFlag,
		Disciplines:  disciplines,
		ExportPath:   exportPath,
		ExportFormat: formatFlag,
	})
	if err != nil {
		return err
	}

	fmt.Printf("fitsplit complete\n")
	fmt.Printf("output file:  %s\n", result.OutPath)
	if result.ExportPath != "" {
		fmt.Printf("export file:  %s\n", result.ExportPath)
	}
	fmt.Printf("sessions:     %d\n", result.SegmentCount)
	for _, seg := range result.Segments {
		fmt.Printf("  [%d] %-10s samples %d..%d  %.0fs  %.0fm\n",
			seg.Index, seg.Discipline, seg.StartIndex, seg.EndIndex, seg.ElapsedS, seg.DistanceM)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	if sessionsFlag < 2 {
		return fmt.Errorf("--sessions must be at least 2")
	}
	model, err := decode(fitPath)
	if err != nil {
		return err
	}
	cuts := split.DetectTransitions(model.Samples, sessionsFlag-1)
	if len(cuts) == 0 {
		fmt.Println("no transitions detected")
		return nil
	}
	for _, c := range cuts {
		fmt.Printf("cut %d  %s\n", c, model.Samples[c].Timestamp.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	model, err := decode(fitPath)
	if err != nil {
		return err
	}
	segments := split.Reset(model.Samples, model.Summary.Discipline)
	stats := fitsplit.ComputeStats(model.Samples, segments[0])
	guess := split.GuessDiscipline(fitsplit.MeanSpeed(model.Samples, segments[0]) * 3.6)

	fmt.Printf("samples:      %d\n", len(model.Samples))
	fmt.Printf("discipline:   %s (speed suggests %s)\n", segments[0].Discipline, guess)
	fmt.Printf("start:        %s\n", model.Summary.StartTime.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Printf("duration:     %.0fs\n", model.Summary.TotalDurationSec)
	fmt.Printf("distance:     %.0fm\n", model.Summary.TotalDistanceM)
	if stats.AvgSpeed != nil {
		fmt.Printf("avg speed:    %.2f m/s\n", *stats.AvgSpeed)
	}
	if stats.AvgHR != nil {
		fmt.Printf("avg hr:       %.0f bpm\n", *stats.AvgHR)
	}
	for _, w := range model.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cuts, err := parseCuts(cutsFlag)
	if err != nil {
		return err
	}
	model, err := decode(fitPath)
	if err != nil {
		return err
	}
	segments := split.Reset(model.Samples, model.Summary.Discipline)
	if len(cuts) > 0 {
		segments, err = split.RebuildFromCuts(model.Samples, segments, cuts)
		if err != nil {
			return err
		}
	}
	switch strings.ToLower(strings.TrimSpace(formatFlag)) {
	case "csv":
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("write export csv: %w", err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, model.Samples, segments); err != nil {
			return fmt.Errorf("write export csv: %w", err)
		}
	case "", "parquet":
		data, err := export.MarshalParquet(model.Samples, segments)
		if err != nil {
			return fmt.Errorf("write export parquet: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write export parquet: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q (expected parquet|csv)", formatFlag)
	}
	fmt.Printf("export file:  %s\n", outPath)
	return nil
}

func decode(path string) (*activity.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	return activity.Decode(data)
}

func parseCuts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	cuts := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid cut %q", p)
		}
		cuts = append(cuts, v)
	}
	return cuts, nil
}
