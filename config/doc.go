// Package config loads and watches the tracker configuration file (ftracker.yaml).
//
// Top-level types:
//   - Config{Athlete, Packages, FitFiles, Output, Metrics, Log} parsed from YAML
//   - OutputConfig: dir, format (parquet|csv), overwrite
//   - MetricsConfig: textfile path for the node-exporter textfile collector
//   - LogConfig: level (debug|info|warn|error), format (json|text)
//
// Load(path) reads the YAML file, applies defaults (parquet output, overwrite,
// info level, json logs), resolves fit_files relative to the config file and
// validates package codes and enums.
//
// Watch(ctx, path, onChange) watches the config file's directory with fsnotify,
// waits for writes to settle and calls onChange with the newly parsed Config.
// Empty or invalid files are skipped.
package config
