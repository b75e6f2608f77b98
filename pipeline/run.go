package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	ftracker "github.com/lucasjlepore/fit-tracker"
)

// Artifact names written by every run.
const (
	ManifestFile = "manifest.json"
	JSONLFile    = "reports.jsonl"
	SummaryFile  = "summary.txt"
	reportsBase  = "reports"
)

var now = func() time.Time { return time.Now().UTC() }

// Run computes a report for every package and FIT file and writes all
// artifacts to opts.OutDir. Rejected inputs are listed in the manifest and the
// summary; they never fail the run.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if len(opts.Packages) == 0 && len(opts.FitFiles) == 0 {
		return nil, fmt.Errorf("at least one package or FIT file is required")
	}
	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	outcomes := ftracker.ProcessBatch(opts.Packages)
	outcomes = append(outcomes, ftracker.ProcessFiles(opts.FitFiles, opts.Athlete, len(opts.Packages))...)

	runID := uuid.New()
	rows := buildRows(runID, outcomes)
	logRejected(outcomes)

	jsonlPath := filepath.Join(opts.OutDir, JSONLFile)
	if err := writeFile(jsonlPath, func(w io.Writer) error { return encodeReportsJSONL(w, rows) }); err != nil {
		return nil, fmt.Errorf("write %s: %w", JSONLFile, err)
	}

	reportsPath := filepath.Join(opts.OutDir, reportsBase+"."+format)
	switch format {
	case "csv":
		err = writeFile(reportsPath, func(w io.Writer) error { return encodeReportsCSV(w, rows) })
	case "parquet":
		err = writeReportsParquet(reportsPath, rows)
	}
	if err != nil {
		return nil, fmt.Errorf("write reports %s: %w", format, err)
	}

	summaryPath := filepath.Join(opts.OutDir, SummaryFile)
	if err := os.WriteFile(summaryPath, summaryBytes(outcomes), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", SummaryFile, err)
	}

	sources := make([]SourceFile, 0, len(opts.FitFiles))
	for i, path := range opts.FitFiles {
		sources = append(sources, describeSourceFile(len(opts.Packages)+i, path))
	}
	manifest := buildManifest(runID, format, outcomes, len(rows), sources)
	manifestPath := filepath.Join(opts.OutDir, ManifestFile)
	if err := writeFile(manifestPath, func(w io.Writer) error { return encodeJSON(w, manifest) }); err != nil {
		return nil, fmt.Errorf("write %s: %w", ManifestFile, err)
	}

	slog.Info("pipeline: run complete",
		"run_id", manifest.RunID, "out_dir", opts.OutDir, "reports", manifest.Reports, "rejected", manifest.Rejected)

	return &Result{
		RunID:        manifest.RunID,
		OutputDir:    opts.OutDir,
		ManifestPath: manifestPath,
		JSONLPath:    jsonlPath,
		ReportsPath:  reportsPath,
		SummaryPath:  summaryPath,
		Reports:      manifest.Reports,
		Rejected:     manifest.Rejected,
		Outcomes:     outcomes,
	}, nil
}

// RunBytes is Run without a filesystem: FIT files arrive as bytes and every
// artifact is returned in memory.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if len(opts.Packages) == 0 && len(opts.FitData) == 0 {
		return nil, fmt.Errorf("at least one package or FIT file is required")
	}

	outcomes := ftracker.ProcessBatch(opts.Packages)
	names := make([]string, 0, len(opts.FitData))
	for name := range opts.FitData {
		names = append(names, name)
	}
	sort.Strings(names)
	sources := make([]SourceFile, 0, len(names))
	for i, name := range names {
		sources = append(sources, describeSource(len(opts.Packages)+i, name, opts.FitData[name]))
		o := ftracker.Outcome{Index: len(opts.Packages) + i, Path: name}
		s, err := ftracker.DecodeBytes(opts.FitData[name], opts.Athlete)
		if err != nil {
			o.Err = err
		} else {
			report := ftracker.BuildReport(s)
			o.Sample = s
			o.Report = &report
		}
		outcomes = append(outcomes, o)
	}

	runID := uuid.New()
	rows := buildRows(runID, outcomes)

	files := make(map[string][]byte, 4)
	var buf bytes.Buffer
	if err := encodeReportsJSONL(&buf, rows); err != nil {
		return nil, fmt.Errorf("encode %s: %w", JSONLFile, err)
	}
	files[JSONLFile] = append([]byte(nil), buf.Bytes()...)

	reportsName := reportsBase + "." + format
	switch format {
	case "csv":
		buf.Reset()
		if err := encodeReportsCSV(&buf, rows); err != nil {
			return nil, fmt.Errorf("encode reports csv: %w", err)
		}
		files[reportsName] = append([]byte(nil), buf.Bytes()...)
	case "parquet":
		data, err := marshalReportsParquet(rows)
		if err != nil {
			return nil, fmt.Errorf("encode reports parquet: %w", err)
		}
		files[reportsName] = data
	}

	files[SummaryFile] = summaryBytes(outcomes)

	manifest := buildManifest(runID, format, outcomes, len(rows), sources)
	buf.Reset()
	if err := encodeJSON(&buf, manifest); err != nil {
		return nil, fmt.Errorf("encode %s: %w", ManifestFile, err)
	}
	files[ManifestFile] = append([]byte(nil), buf.Bytes()...)

	var warnings []string
	for _, e := range manifest.Errors {
		warnings = append(warnings, fmt.Sprintf("#%d %s: %s", e.Index+1, e.Source, e.Error))
	}

	return &BytesResult{
		RunID:    manifest.RunID,
		Files:    files,
		Outcomes: outcomes,
		Warnings: warnings,
	}, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

// buildRows assigns each successful outcome a workout id derived from the run
// id and the input index, so ids are unique across runs and stable within one.
func buildRows(runID uuid.UUID, outcomes []ftracker.Outcome) []ReportRow {
	rows := make([]ReportRow, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		s, r := o.Sample, o.Report
		rows = append(rows, ReportRow{
			WorkoutID:    uuid.NewSHA1(runID, []byte(strconv.Itoa(o.Index))).String(),
			RunID:        runID.String(),
			InputIndex:   o.Index,
			Source:       o.Source(),
			KindCode:     s.Kind.Code(),
			Kind:         r.Kind,
			Action:       s.Action,
			DurationH:    r.DurationH,
			WeightKG:     s.WeightKG,
			HeightCM:     s.HeightCM,
			PoolLengthM:  s.PoolLengthM,
			PoolLaps:     s.PoolLaps,
			DistanceKM:   r.DistanceKM,
			SpeedKMH:     r.SpeedKMH,
			CaloriesKcal: r.Calories,
			Message:      r.Message(),
		})
	}
	return rows
}

func buildManifest(runID uuid.UUID, format string, outcomes []ftracker.Outcome, reports int, sources []SourceFile) Manifest {
	m := Manifest{
		RunID:        runID.String(),
		CreatedAtUTC: now().Format(time.RFC3339),
		Format:       format,
		Inputs:       len(outcomes),
		Reports:      reports,
		Rejected:     len(outcomes) - reports,
		Files:        []string{JSONLFile, reportsBase + "." + format, SummaryFile, ManifestFile},
		Sources:      sources,
	}
	for _, o := range ftracker.Failed(outcomes) {
		m.Errors = append(m.Errors, InputError{
			Index:  o.Index,
			Source: o.Source(),
			Reason: ftracker.RejectReason(o.Err),
			Error:  errorText(o.Err),
		})
	}
	return m
}

func errorText(err error) string {
	if err == nil {
		return "no report produced"
	}
	return err.Error()
}

func logRejected(outcomes []ftracker.Outcome) {
	for _, o := range ftracker.Failed(outcomes) {
		slog.Warn("pipeline: input rejected", "index", o.Index, "source", o.Source(), "err", o.Err)
	}
}

func summaryBytes(outcomes []ftracker.Outcome) []byte {
	summary := ftracker.BuildSummary(outcomes)
	if summary == "" {
		return nil
	}
	return []byte(summary + "\n")
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeReportsJSONL(w io.Writer, rows []ReportRow) error {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return buf.Flush()
}

var csvHeader = []string{
	"workout_id", "run_id", "input_index", "source", "kind_code", "kind", "action", "duration_h", "weight_kg",
	"height_cm", "pool_length_m", "pool_laps", "distance_km", "speed_kmh", "calories_kcal",
}

func encodeReportsCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.WorkoutID,
			r.RunID,
			strconv.Itoa(r.InputIndex),
			r.Source,
			r.KindCode,
			r.Kind,
			strconv.Itoa(r.Action),
			formatFloat(r.DurationH),
			formatFloat(r.WeightKG),
			formatOptional(r.HeightCM),
			formatOptional(r.PoolLengthM),
			formatOptional(float64(r.PoolLaps)),
			formatFloat(r.DistanceKM),
			formatFloat(r.SpeedKMH),
			formatFloat(r.CaloriesKcal),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v float64) string {
	if v == 0 {
		return ""
	}
	return formatFloat(v)
}
