package pipeline

import (
	ftracker "github.com/lucasjlepore/fit-tracker"
)

// Options configures an export run written to disk.
type Options struct {
	Packages []ftracker.Package
	FitFiles []string
	Athlete  ftracker.Athlete
	OutDir   string
	Format   string // parquet|csv
	// Overwrite allows writing into a non-empty OutDir.
	Overwrite bool
}

// BytesOptions configures an in-memory export run.
type BytesOptions struct {
	Packages []ftracker.Package
	// FitData maps a source file name to raw FIT bytes.
	FitData map[string][]byte
	Athlete ftracker.Athlete
	Format  string // parquet|csv
}

// Result returns generated output paths.
type Result struct {
	RunID        string `json:"run_id"`
	OutputDir    string `json:"output_dir"`
	ManifestPath string `json:"manifest_path"`
	JSONLPath    string `json:"reports_jsonl_path"`
	ReportsPath  string `json:"reports_path"`
	SummaryPath  string `json:"summary_path"`
	Reports      int    `json:"reports"`
	Rejected     int    `json:"rejected"`

	Outcomes []ftracker.Outcome `json:"-"`
}

// BytesResult holds every artifact keyed by file name.
type BytesResult struct {
	RunID    string
	Files    map[string][]byte
	Outcomes []ftracker.Outcome
	Warnings []string
}

// Manifest describes one run.
type Manifest struct {
	RunID        string       `json:"run_id"`
	CreatedAtUTC string       `json:"created_at_utc"`
	Format       string       `json:"format"`
	Inputs       int          `json:"inputs"`
	Reports      int          `json:"reports"`
	Rejected     int          `json:"rejected"`
	Files        []string     `json:"files"`
	Sources      []SourceFile `json:"sources,omitempty"`
	Errors       []InputError `json:"errors,omitempty"`
}

// InputError records one rejected input.
type InputError struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Reason string `json:"reason"` // unknown_code|arity_mismatch|invalid_magnitude|other
	Error  string `json:"error"`
}

// ReportRow is one successful workout as exported to reports.jsonl and the
// tabular reports file.
type ReportRow struct {
	WorkoutID    string  `json:"workout_id"`
	RunID        string  `json:"run_id"`
	InputIndex   int     `json:"input_index"`
	Source       string  `json:"source"`
	KindCode     string  `json:"kind_code"`
	Kind         string  `json:"kind"`
	Action       int     `json:"action"`
	DurationH    float64 `json:"duration_h"`
	WeightKG     float64 `json:"weight_kg"`
	HeightCM     float64 `json:"height_cm,omitempty"`
	PoolLengthM  float64 `json:"pool_length_m,omitempty"`
	PoolLaps     int     `json:"pool_laps,omitempty"`
	DistanceKM   float64 `json:"distance_km"`
	SpeedKMH     float64 `json:"speed_kmh"`
	CaloriesKcal float64 `json:"calories_kcal"`
	Message      string  `json:"message"`
}
