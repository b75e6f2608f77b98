package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ftracker "github.com/lucasjlepore/fit-tracker"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
athlete:
  weight_kg: 75
  height_cm: 180
packages:
  - code: RUN
    values: [15000, 1, 75]
  - code: SWM
    values: [720, 1, 80, 25, 40]
fit_files:
  - activities/morning.fit
  - /abs/evening.fit
output:
  dir: out
  format: csv
  overwrite: false
metrics:
  textfile: out/ftracker.prom
log:
  level: debug
  format: text
`
	path := writeConfig(t, yaml)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ftracker.Athlete{WeightKG: 75, HeightCM: 180}, cfg.Athlete)
	require.Len(t, cfg.Packages, 2)
	assert.Equal(t, ftracker.Package{Code: "RUN", Values: []float64{15000, 1, 75}}, cfg.Packages[0])
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "activities/morning.fit"), "/abs/evening.fit"}, cfg.FitFiles)
	assert.Equal(t, OutputConfig{Dir: "out", Format: "csv", Overwrite: false}, cfg.Output)
	assert.Equal(t, "out/ftracker.prom", cfg.Metrics.Textfile)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "athlete:\n  weight_kg: 70\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultFormat, cfg.Output.Format)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.True(t, cfg.Output.Overwrite)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Empty(t, cfg.Packages)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown code", "packages:\n  - code: XYZ\n    values: [1, 2, 3]\n"},
		{"arity", "packages:\n  - code: WLK\n    values: [9000, 1, 75]\n"},
		{"negative weight", "athlete:\n  weight_kg: -1\n"},
		{"format", "output:\n  format: xlsx\n"},
		{"log level", "log:\n  level: loud\n"},
		{"log format", "log:\n  format: xml\n"},
		{"empty fit path", "fit_files:\n  - \"\"\n"},
		{"bad yaml", "packages: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnknownCodeWrapsSentinel(t *testing.T) {
	_, err := Load(writeConfig(t, "packages:\n  - code: run\n    values: [1, 2, 3]\n"))
	assert.ErrorIs(t, err, ftracker.ErrUnknownActivityCode)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{}.SlogLevel())
}

func TestLogConfig_NewHandler(t *testing.T) {
	var buf bytes.Buffer
	slog.New(LogConfig{Level: "warn", Format: "text"}.NewHandler(&buf)).Info("hidden")
	slog.New(LogConfig{Level: "warn", Format: "text"}.NewHandler(&buf)).Warn("shown", "k", 1)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "level=WARN msg=shown k=1")

	buf.Reset()
	slog.New(LogConfig{Level: "info", Format: "json"}.NewHandler(&buf)).Info("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "INFO", line["level"])
}

func TestWatch_Reloads(t *testing.T) {
	path := writeConfig(t, "athlete:\n  weight_kg: 70\n")
	changed, stop := startWatch(t, path)

	waitForWeight(t, changed, 82, func() {
		require.NoError(t, os.WriteFile(path, []byte("athlete:\n  weight_kg: 82\n"), 0o600))
	})
	stop()
}

func TestWatch_NeverReportsTruncatedFile(t *testing.T) {
	path := writeConfig(t, "athlete:\n  weight_kg: 70\n")
	changed, stop := startWatch(t, path)

	seen := waitForWeight(t, changed, 82, func() {
		for i := 0; i < 5; i++ {
			require.NoError(t, os.WriteFile(path, []byte("athlete:\n  weight_kg: 82\n"), 0o600))
		}
	})
	stop()

	close(changed)
	for cfg := range changed {
		seen = append(seen, cfg)
	}
	for _, cfg := range seen {
		assert.Equal(t, 82.0, cfg.Athlete.WeightKG, "reload saw a partial file")
	}
}

func TestWatch_SurvivesRenameOverFile(t *testing.T) {
	path := writeConfig(t, "athlete:\n  weight_kg: 70\n")
	changed, stop := startWatch(t, path)

	for _, weight := range []float64{81, 83} {
		content := fmt.Sprintf("athlete:\n  weight_kg: %v\n", weight)
		waitForWeight(t, changed, weight, func() {
			tmp := filepath.Join(filepath.Dir(path), "ftracker.yaml.tmp")
			require.NoError(t, os.WriteFile(tmp, []byte(content), 0o600))
			require.NoError(t, os.Rename(tmp, path))
		})
	}
	stop()
}

func TestReload_SkipsEmptyAndInvalidFiles(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, ok := reload(empty)
	assert.False(t, ok)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("output:\n  format: xlsx\n"), 0o600))
	_, ok = reload(bad)
	assert.False(t, ok)

	_, ok = reload(filepath.Join(dir, "missing.yaml"))
	assert.False(t, ok)

	good := writeConfig(t, "athlete:\n  weight_kg: 64\n")
	cfg, ok := reload(good)
	require.True(t, ok)
	assert.Equal(t, 64.0, cfg.Athlete.WeightKG)
}

// startWatch runs Watch on path until the returned stop func is called.
// stop waits for Watch to return; no callback runs after it.
func startWatch(t *testing.T, path string) (chan *Config, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan *Config, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { changed <- cfg })
	}()

	var stopped bool
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop")
		}
	}
	t.Cleanup(stop)
	return changed, stop
}

// waitForWeight calls save until a reload carrying want arrives and returns
// every config received. save is repeated because the watch may not be
// registered yet on the first call.
func waitForWeight(t *testing.T, changed <-chan *Config, want float64, save func()) []*Config {
	t.Helper()
	var seen []*Config
	deadline := time.After(5 * time.Second)
	retry := time.NewTicker(4 * ReloadDebounce)
	defer retry.Stop()

	save()
	for {
		select {
		case cfg := <-changed:
			seen = append(seen, cfg)
			if cfg.Athlete.WeightKG == want {
				return seen
			}
		case <-retry.C:
			save()
		case <-deadline:
			t.Fatalf("reload with weight_kg %v not observed", want)
			return nil
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ftracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
