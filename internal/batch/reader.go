package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// record is one CSV row staged for encoding. The sequence stays a raw
// string here; parsing it is part of per-row processing so a bad value
// fails that row instead of the whole file. The original row and its
// header are kept so CSV output can return the full input (names,
// addresses) with the encoding results appended.
type record struct {
	file        string
	line        int      // 1-based line number in the source file
	header      []string // file header, shared across the file's records
	raw         []string // the row exactly as read
	barcodeID   string
	serviceType string
	mailerID    string
	sequence    string
	routingCode string
}

// newCharsetReader wraps r with a decoder for the configured charset.
// Mailing list exports from legacy presort software are commonly Latin-1
// or Windows-1252 rather than UTF-8.
func newCharsetReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin-1", "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported charset: %s", charset)
	}
}

// columnIndex resolves the configured column names against the CSV header.
// Header matching is case-insensitive and ignores surrounding whitespace
// and a UTF-8 byte order mark on the first column.
type columnIndex struct {
	barcodeID   int
	serviceType int
	mailerID    int
	sequence    int
	routingCode int
}

func resolveColumns(header []string, cols ColumnMap) columnIndex {
	idx := columnIndex{barcodeID: -1, serviceType: -1, mailerID: -1, sequence: -1, routingCode: -1}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case strings.ToLower(cols.BarcodeID):
			idx.barcodeID = i
		case strings.ToLower(cols.ServiceType):
			idx.serviceType = i
		case strings.ToLower(cols.MailerID):
			idx.mailerID = i
		case strings.ToLower(cols.Sequence):
			idx.sequence = i
		case strings.ToLower(cols.RoutingCode):
			idx.routingCode = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readRecords reads one mailing list file into staged records, applying
// the per-run defaults for fields whose column is absent or empty.
func readRecords(path string, cfg *Config) ([]record, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from CLI arguments
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	decoded, err := newCharsetReader(f, cfg.Charset)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1 // ragged rows are handled per field

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header: %w", path, err)
	}

	// Strip a UTF-8 byte order mark so it never leaks into enriched output.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	idx := resolveColumns(header, cfg.columns())
	if idx.sequence < 0 {
		return nil, fmt.Errorf("%s: missing required column %q", path, cfg.columns().Sequence)
	}

	var records []record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, line, err)
		}

		rec := record{
			file:        path,
			line:        line,
			header:      header,
			raw:         row,
			barcodeID:   cell(row, idx.barcodeID),
			serviceType: cell(row, idx.serviceType),
			mailerID:    cell(row, idx.mailerID),
			sequence:    cell(row, idx.sequence),
			routingCode: cell(row, idx.routingCode),
		}
		if rec.barcodeID == "" {
			rec.barcodeID = cfg.BarcodeID
		}
		if rec.serviceType == "" {
			rec.serviceType = cfg.ServiceType
		}
		if rec.mailerID == "" {
			rec.mailerID = cfg.MailerID
		}
		records = append(records, rec)
	}

	return records, nil
}
