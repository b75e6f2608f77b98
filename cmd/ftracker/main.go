package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	ftracker "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/config"
	"github.com/lucasjlepore/fit-tracker/metrics"
)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

type jsonOutcome struct {
	Index  int              `json:"index"`
	Source string           `json:"source"`
	Report *ftracker.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type tracker struct {
	athlete  ftracker.Athlete
	fitFiles []string
	jsonOut  bool
	textfile string
	recorder *metrics.Recorder
	stdout   io.Writer
	stderr   io.Writer
}

func main() {
	envErr := godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv(config.EnvPath), "Path to ftracker.yaml (defaults to $"+config.EnvPath+")")
		jsonOut    = flag.Bool("json", false, "Emit reports as JSON")
		weightKG   = flag.Float64("weight", 0, "Athlete weight in kg for FIT files (overrides config)")
		heightCM   = flag.Float64("height", 0, "Athlete height in cm for FIT files (overrides config)")
		watch      = flag.Bool("watch", false, "Re-run whenever the config file changes")
		textfile   = flag.String("metrics", "", "Write Prometheus metrics to this textfile (overrides config)")
		fitFiles   pathList
	)
	flag.Var(&fitFiles, "fit", "Path to an activity .fit file (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config ftracker.yaml] [-fit activity.fit ...] [-weight 75] [-height 180] [-json] [-watch]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	fitFiles = append(fitFiles, flag.Args()...)

	if *watch && *configPath == "" {
		fmt.Fprintln(os.Stderr, "-watch requires -config")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ftracker failed: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	setupLogger(cfg.Log)
	if envErr != nil {
		slog.Debug("no .env file found, using process environment")
	}

	t := &tracker{
		fitFiles: fitFiles,
		jsonOut:  *jsonOut,
		textfile: *textfile,
		recorder: metrics.NewRecorder(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	t.athlete = ftracker.Athlete{WeightKG: *weightKG, HeightCM: *heightCM}

	if !*watch {
		if rejected := t.run(cfg); rejected > 0 {
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	t.run(cfg)
	if err := config.Watch(ctx, *configPath, func(next *config.Config) {
		setupLogger(next.Log)
		t.run(next)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "ftracker failed: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	slog.SetDefault(slog.New(cfg.NewHandler(os.Stderr)))
}

// run processes one configuration and returns how many inputs were rejected.
func (t *tracker) run(cfg *config.Config) int {
	athlete := cfg.Athlete
	if t.athlete.WeightKG > 0 {
		athlete.WeightKG = t.athlete.WeightKG
	}
	if t.athlete.HeightCM > 0 {
		athlete.HeightCM = t.athlete.HeightCM
	}

	pkgs := cfg.Packages
	fitFiles := append(append([]string(nil), cfg.FitFiles...), t.fitFiles...)
	if len(pkgs) == 0 && len(fitFiles) == 0 {
		slog.Debug("no inputs configured, using sample packages")
		pkgs = ftracker.SamplePackages()
	}

	outcomes := ftracker.ProcessBatch(pkgs)
	outcomes = append(outcomes, ftracker.ProcessFiles(fitFiles, athlete, len(pkgs))...)

	failed := ftracker.Failed(outcomes)
	for _, o := range failed {
		slog.Warn("input rejected", "index", o.Index, "source", o.Source(), "reason", ftracker.RejectReason(o.Err), "err", o.Err)
	}

	if err := t.print(outcomes); err != nil {
		fmt.Fprintf(t.stderr, "ftracker failed: %v\n", err)
	}

	t.recorder.Observe(outcomes, time.Now())
	textfile := cfg.Metrics.Textfile
	if t.textfile != "" {
		textfile = t.textfile
	}
	if textfile != "" {
		if err := t.recorder.WriteTextfile(textfile); err != nil {
			slog.Error("metrics textfile not written", "path", textfile, "err", err)
		}
	}

	slog.Info("run complete", "inputs", len(outcomes), "rejected", len(failed))
	return len(failed)
}

func (t *tracker) print(outcomes []ftracker.Outcome) error {
	if t.jsonOut {
		out := make([]jsonOutcome, 0, len(outcomes))
		for _, o := range outcomes {
			item := jsonOutcome{Index: o.Index, Source: o.Source(), Report: o.Report}
			if o.Err != nil {
				item.Error = o.Err.Error()
			}
			out = append(out, item)
		}
		enc := json.NewEncoder(t.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, o := range outcomes {
		if o.OK() {
			fmt.Fprintln(t.stdout, o.Report.Message())
			continue
		}
		fmt.Fprintf(t.stderr, "#%d %s: %v\n", o.Index+1, o.Source(), o.Err)
	}
	return nil
}
