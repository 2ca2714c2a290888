package batch

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/postalworks/imbgen/internal/imb"
)

// rowJob represents a single row encoding job.
type rowJob struct {
	index int
	rec   record
}

// rowOutcome represents the result of encoding a single row.
type rowOutcome struct {
	index  int
	req    imb.Request
	result *imb.Result
	err    error
}

// encodeRecord parses and encodes one staged record.
func encodeRecord(enc *imb.Encoder, rec record) (imb.Request, *imb.Result, error) {
	seq, err := strconv.ParseInt(rec.sequence, 10, 64)
	if err != nil {
		return imb.Request{}, nil, fmt.Errorf("invalid sequence %q: %w", rec.sequence, err)
	}
	req := imb.Request{
		BarcodeID:   rec.barcodeID,
		ServiceType: rec.serviceType,
		MailerID:    rec.mailerID,
		Sequence:    seq,
		RoutingCode: rec.routingCode,
	}
	res, err := enc.Encode(req)
	return req, res, err
}

// processRecords encodes staged records using a worker pool.
// Results come back in input order.
func processRecords(ctx context.Context, enc *imb.Encoder, records []record,
	workers int, progress ProgressCallback,
) ([]RowResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = len(records)
	}

	if progress != nil {
		progress.OnStart(len(records))
		defer progress.OnComplete()
	}

	rows := make([]RowResult, len(records))

	// Sequential path for trivial workloads.
	if workers <= 1 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rows[i] = buildRowResult(enc, rec)
			if progress != nil {
				progress.OnProgress(i+1, len(records))
			}
		}
		return rows, nil
	}

	jobs := make(chan rowJob, len(records))
	outcomes := make(chan rowOutcome, len(records))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				req, res, err := encodeRecord(enc, job.rec)
				outcomes <- rowOutcome{index: job.index, req: req, result: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, rec := range records {
			select {
			case jobs <- rowJob{index: i, rec: rec}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	done := 0
	for out := range outcomes {
		rec := records[out.index]
		rows[out.index] = newRowResult(rec, out.req, out.result, out.err)
		done++
		if progress != nil {
			progress.OnProgress(done, len(records))
		}
		if out.err != nil && progress != nil {
			progress.OnError(out.index, out.err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func buildRowResult(enc *imb.Encoder, rec record) RowResult {
	req, res, err := encodeRecord(enc, rec)
	return newRowResult(rec, req, res, err)
}

func newRowResult(rec record, req imb.Request, res *imb.Result, err error) RowResult {
	if req == (imb.Request{}) {
		// Sequence parsing failed; keep the raw fields for reporting.
		req = imb.Request{
			BarcodeID:   rec.barcodeID,
			ServiceType: rec.serviceType,
			MailerID:    rec.mailerID,
			RoutingCode: rec.routingCode,
		}
	}
	row := RowResult{
		File:    rec.file,
		Line:    rec.line,
		Header:  rec.header,
		Raw:     rec.raw,
		Request: req,
		Result:  res,
		Err:     err,
	}
	if err != nil {
		row.ErrCode = imb.CodeOf(err)
		row.ErrText = err.Error()
	}
	return row
}
