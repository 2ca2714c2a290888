package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/postalworks/imbgen/internal/imb"
)

// ProcessBatch encodes all mailing list files named by args with the given
// configuration. Row-level failures are collected in the result; with
// ContinueOnError disabled the first failing row aborts the run.
func ProcessBatch(ctx context.Context, args []string, config *Config) (*Result, error) {
	files, err := discoverListFiles(args, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover list files: %w", err)
	}

	if len(files) == 0 {
		return nil, errors.New("no mailing list files found")
	}

	var records []record
	for _, file := range files {
		recs, err := readRecords(file, config)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	if len(records) == 0 {
		return nil, errors.New("no records found in mailing list files")
	}

	var progress ProgressCallback
	if config.ShowProgress && !config.Quiet {
		progress = NewConsoleProgressCallback(os.Stderr, "Encoding: ").
			WithUpdateInterval(config.ProgressInterval)
	}

	encoder := imb.New(imb.Options{
		ServiceTypes:    config.serviceTypes(),
		StrictBarcodeID: config.Strict,
	})

	startTime := time.Now()
	rows, err := processRecords(ctx, encoder, records, config.Workers, progress)
	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	result := &Result{
		Rows:        rows,
		Files:       files,
		Duration:    time.Since(startTime),
		WorkerCount: config.Workers,
	}

	if !config.ContinueOnError {
		for i := range rows {
			if rows[i].Err != nil {
				return result, fmt.Errorf("%s:%d: %w", rows[i].File, rows[i].Line, rows[i].Err)
			}
		}
	}

	return result, nil
}
