// Package batch provides batch barcode generation from CSV mailing lists.
package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/postalworks/imbgen/internal/imb"
)

// ColumnMap maps the logical input fields to CSV column headers. Matching
// is case-insensitive; a missing column falls back to the per-run default
// for that field.
type ColumnMap struct {
	BarcodeID   string
	ServiceType string
	MailerID    string
	Sequence    string
	RoutingCode string
}

// DefaultColumnMap returns the conventional column names.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		BarcodeID:   "barcode_id",
		ServiceType: "service_type",
		MailerID:    "mailer_id",
		Sequence:    "sequence",
		RoutingCode: "routing_code",
	}
}

// Config holds all configuration for batch processing.
type Config struct {
	// Per-run defaults applied to rows whose column is absent or empty.
	BarcodeID   string
	ServiceType string
	MailerID    string

	// Encoder settings
	Strict       bool
	ServiceTypes map[string]string // extends the built-in STID registry

	// Input settings
	Columns ColumnMap
	Charset string // utf-8, latin-1 or windows-1252

	// Output settings
	Format     string
	OutputFile string

	// Parallel processing settings
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration
}

// RowResult holds the outcome of encoding one CSV row.
type RowResult struct {
	File    string        `json:"file"`
	Line    int           `json:"line"` // 1-based, header included
	Header  []string      `json:"-"`    // input header, shared per file
	Raw     []string      `json:"-"`    // original input row for enriched CSV output
	Request imb.Request   `json:"-"`
	Result  *imb.Result   `json:"result,omitempty"`
	Err     error         `json:"-"`
	ErrCode imb.ErrorCode `json:"error_code,omitempty"`
	ErrText string        `json:"error,omitempty"`
}

// Result holds the result of batch processing.
type Result struct {
	Rows        []RowResult
	Files       []string
	Duration    time.Duration
	WorkerCount int
}

// Encoded returns the number of successfully encoded rows.
func (r *Result) Encoded() int {
	n := 0
	for i := range r.Rows {
		if r.Rows[i].Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of rows that failed validation or encoding.
func (r *Result) Failed() int {
	return len(r.Rows) - r.Encoded()
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults saves the formatted results to a file or stdout.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile == "" {
		if !quiet {
			fmt.Print(output)
		}
		return nil
	}

	if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputFile, err)
	}
	return nil
}

// columns returns the configured column map with defaults filled in.
func (c *Config) columns() ColumnMap {
	cols := c.Columns
	def := DefaultColumnMap()
	if cols.BarcodeID == "" {
		cols.BarcodeID = def.BarcodeID
	}
	if cols.ServiceType == "" {
		cols.ServiceType = def.ServiceType
	}
	if cols.MailerID == "" {
		cols.MailerID = def.MailerID
	}
	if cols.Sequence == "" {
		cols.Sequence = def.Sequence
	}
	if cols.RoutingCode == "" {
		cols.RoutingCode = def.RoutingCode
	}
	return cols
}

// serviceTypes merges the built-in STID registry with the configured
// additions. Returns nil when there is nothing to add, letting the encoder
// use its default set.
func (c *Config) serviceTypes() map[string]string {
	if len(c.ServiceTypes) == 0 {
		return nil
	}
	merged := make(map[string]string, len(imb.DefaultServiceTypes)+len(c.ServiceTypes))
	for k, v := range imb.DefaultServiceTypes {
		merged[k] = v
	}
	for k, v := range c.ServiceTypes {
		merged[k] = v
	}
	return merged
}
