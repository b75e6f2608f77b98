//go:build js

package pipeline

import "errors"

var errParquetUnsupported = errors.New("parquet output is not available in this build, use csv")

func writeReportsParquet(string, []ReportRow) error { return errParquetUnsupported }

func marshalReportsParquet([]ReportRow) ([]byte, error) { return nil, errParquetUnsupported }
