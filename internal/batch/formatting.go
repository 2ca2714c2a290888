package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(result *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(result)
	case "csv":
		return formatCSV(result)
	default: // text
		return formatText(result), nil
	}
}

// formatJSON formats results as JSON.
func formatJSON(result *Result) (string, error) {
	doc := struct {
		Rows        []RowResult `json:"rows"`
		Encoded     int         `json:"encoded"`
		Failed      int         `json:"failed"`
		DurationMS  int64       `json:"duration_ms"`
		WorkerCount int         `json:"worker_count"`
	}{
		Rows:        result.Rows,
		Encoded:     result.Encoded(),
		Failed:      result.Failed(),
		DurationMS:  result.Duration.Milliseconds(),
		WorkerCount: result.WorkerCount,
	}

	bts, err := json.MarshalIndent(doc, "", "  ")
	return string(bts), err
}

// enrichedColumns are appended to the input columns in CSV output.
var enrichedColumns = []string{"tracking_number", "barcode", "error_code", "error"}

// formatCSV formats results as an enriched CSV: every original input row
// (names, addresses, whatever the mailing list carried) with the encoding
// results appended, so the output round-trips back into presort software.
// The header is taken from the first row's source file.
func formatCSV(result *Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)

	if len(result.Rows) > 0 {
		header := append(append([]string{}, result.Rows[0].Header...), enrichedColumns...)
		if err := writer.Write(header); err != nil {
			return "", err
		}
	}

	for i := range result.Rows {
		row := &result.Rows[i]
		tracking, barcode := "", ""
		if row.Result != nil {
			tracking = row.Result.TrackingNumber
			barcode = row.Result.Barcode
		}
		rec := append(append([]string{}, row.Raw...),
			tracking, barcode, string(row.ErrCode), row.ErrText)
		if err := writer.Write(rec); err != nil {
			return "", err
		}
	}

	writer.Flush()
	return output.String(), writer.Error()
}

// formatText formats results as plain text, one line per row.
func formatText(result *Result) string {
	var output strings.Builder
	for i := range result.Rows {
		row := &result.Rows[i]
		if row.Err != nil {
			fmt.Fprintf(&output, "%s:%d ERROR %s\n", row.File, row.Line, row.ErrText)
			continue
		}
		fmt.Fprintf(&output, "%s:%d %s %s\n", row.File, row.Line, row.Result.TrackingNumber, row.Result.Barcode)
	}
	fmt.Fprintf(&output, "\n%d encoded, %d failed in %s\n",
		result.Encoded(), result.Failed(), result.Duration.Round(time.Millisecond))
	return output.String()
}
