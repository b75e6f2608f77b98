//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type reportParquetRow struct {
	WorkoutID    string  `parquet:"name=workout_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	RunID        string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	InputIndex   int64   `parquet:"name=input_index, type=INT64"`
	Source       string  `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8"`
	KindCode     string  `parquet:"name=kind_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Kind         string  `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Action       int64   `parquet:"name=action, type=INT64"`
	DurationH    float64 `parquet:"name=duration_h, type=DOUBLE"`
	WeightKG     float64 `parquet:"name=weight_kg, type=DOUBLE"`
	HeightCM     float64 `parquet:"name=height_cm, type=DOUBLE"`
	PoolLengthM  float64 `parquet:"name=pool_length_m, type=DOUBLE"`
	PoolLaps     int64   `parquet:"name=pool_laps, type=INT64"`
	DistanceKM   float64 `parquet:"name=distance_km, type=DOUBLE"`
	SpeedKMH     float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	CaloriesKcal float64 `parquet:"name=calories_kcal, type=DOUBLE"`
	Message      string  `parquet:"name=message, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func toParquetRow(r ReportRow) reportParquetRow {
	return reportParquetRow{
		WorkoutID:    r.WorkoutID,
		RunID:        r.RunID,
		InputIndex:   int64(r.InputIndex),
		Source:       r.Source,
		KindCode:     r.KindCode,
		Kind:         r.Kind,
		Action:       int64(r.Action),
		DurationH:    r.DurationH,
		WeightKG:     r.WeightKG,
		HeightCM:     r.HeightCM,
		PoolLengthM:  r.PoolLengthM,
		PoolLaps:     int64(r.PoolLaps),
		DistanceKM:   r.DistanceKM,
		SpeedKMH:     r.SpeedKMH,
		CaloriesKcal: r.CaloriesKcal,
		Message:      r.Message,
	}
}

func writeReportsParquet(path string, rows []ReportRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := encodeReportsParquet(fw, rows); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func marshalReportsParquet(rows []ReportRow) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := encodeReportsParquet(fw, rows); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func encodeReportsParquet(fw source.ParquetFile, rows []ReportRow) error {
	pw, err := writer.NewParquetWriter(fw, new(reportParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(toParquetRow(r)); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}
