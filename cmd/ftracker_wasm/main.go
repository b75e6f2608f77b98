//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	ftracker "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/pipeline"
)

func main() {
	js.Global().Set("computeWorkout", js.FuncOf(computeWorkout))
	js.Global().Set("analyzeFit", js.FuncOf(analyzeFit))
	select {}
}

// computeWorkout(code string, values number[]) computes one sensor package.
func computeWorkout(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: code(string), values(number[])")
	}
	if args[0].Type() != js.TypeString {
		return failure("code must be a string")
	}
	valuesArg := args[1]
	if valuesArg.IsUndefined() || valuesArg.IsNull() {
		return failure("values are required")
	}

	values := make([]float64, valuesArg.Get("length").Int())
	for i := range values {
		v := valuesArg.Index(i)
		if v.Type() != js.TypeNumber {
			return failure(fmt.Sprintf("values[%d] is not a number", i))
		}
		values[i] = v.Float()
	}

	report, err := ftracker.Dispatch(args[0].String(), values)
	if err != nil {
		return map[string]any{
			"ok":     false,
			"error":  err.Error(),
			"reason": ftracker.RejectReason(err),
		}
	}
	return map[string]any{
		"ok":      true,
		"message": report.Message(),
		"report": map[string]any{
			"kind":          report.Kind,
			"duration_h":    report.DurationH,
			"distance_km":   report.DistanceKM,
			"speed_kmh":     report.SpeedKMH,
			"calories_kcal": report.Calories,
		},
	}
}

// analyzeFit(fileBytes Uint8Array, options object) runs the export pipeline on
// one FIT file and returns the artifacts as a zip.
func analyzeFit(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("fit file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read FIT bytes from JS input")
	}

	name := getString(optsArg, "source_file_name", "input.fit")
	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		FitData: map[string][]byte{name: fileBytes},
		Athlete: ftracker.Athlete{
			WeightKG: getFloat(optsArg, "weight_kg"),
			HeightCM: getFloat(optsArg, "height_cm"),
		},
		// parquet is not built for js.
		Format: getString(optsArg, "format", "csv"),
	})
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	messages := ftracker.Messages(result.Outcomes)
	return map[string]any{
		"ok":       true,
		"run_id":   result.RunID,
		"zip":      payload,
		"messages": stringsToAny(messages),
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(fileNames),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeString {
		return fallback
	}
	if s := out.String(); s != "" {
		return s
	}
	return fallback
}

func getFloat(v js.Value, key string) float64 {
	if v.IsUndefined() || v.IsNull() {
		return 0
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
