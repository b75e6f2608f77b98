package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	ftracker "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/config"
	"github.com/lucasjlepore/fit-tracker/metrics"
	"github.com/lucasjlepore/fit-tracker/pipeline"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv(config.EnvPath), "Path to ftracker.yaml (defaults to $"+config.EnvPath+")")
		outDir     = flag.String("out", "", "Output directory (overrides config)")
		format     = flag.String("format", "", "Report format: parquet|csv (overrides config)")
		weightKG   = flag.Float64("weight", 0, "Athlete weight in kg for FIT files (overrides config)")
		heightCM   = flag.Float64("height", 0, "Athlete height in cm for FIT files (overrides config)")
		overwrite  = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
		samples    = flag.Bool("samples", false, "Export the built-in sample packages")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config ftracker.yaml] [-out outdir] [-format parquet|csv] [activity.fit ...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if strings.TrimSpace(*configPath) != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ftracker_export failed: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	slog.SetDefault(slog.New(cfg.Log.NewHandler(os.Stderr)))

	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *weightKG > 0 {
		cfg.Athlete.WeightKG = *weightKG
	}
	if *heightCM > 0 {
		cfg.Athlete.HeightCM = *heightCM
	}
	packages := cfg.Packages
	if *samples {
		packages = append(packages, ftracker.SamplePackages()...)
	}
	fitFiles := append(cfg.FitFiles, flag.Args()...)

	if len(packages) == 0 && len(fitFiles) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		Packages:  packages,
		FitFiles:  fitFiles,
		Athlete:   cfg.Athlete,
		OutDir:    cfg.Output.Dir,
		Format:    cfg.Output.Format,
		Overwrite: *overwrite && cfg.Output.Overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ftracker_export failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.Metrics.Textfile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(result.Outcomes, time.Now())
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.Error("metrics textfile not written", "path", cfg.Metrics.Textfile, "err", err)
		}
	}

	fmt.Printf("ftracker_export complete\n")
	fmt.Printf("Run id:         %s\n", result.RunID)
	fmt.Printf("Output dir:     %s\n", result.OutputDir)
	fmt.Printf("reports.jsonl:  %s\n", result.JSONLPath)
	fmt.Printf("reports:        %s\n", result.ReportsPath)
	fmt.Printf("summary.txt:    %s\n", result.SummaryPath)
	fmt.Printf("manifest.json:  %s\n", result.ManifestPath)
	fmt.Printf("workouts:       %d reported, %d rejected\n", result.Reports, result.Rejected)
}
