// Package imb encodes USPS Intelligent Mail barcodes: it validates the
// five logical input fields, derives the tracking number and full data
// field, and runs the four-state encoding pipeline (binary conversion,
// 11-bit frame check sequence, codeword split, character lookup, bar
// assembly) to the 65-symbol barcode string.
//
// Every encode call is a pure function of its input; the only shared
// state is the read-only reference tables built at package init. Callers
// may encode concurrently without synchronization.
package imb

import "fmt"

// Options configures an Encoder.
type Options struct {
	// ServiceTypes is the set of accepted STIDs, keyed by identifier
	// with a descriptive label. Nil means DefaultServiceTypes.
	ServiceTypes map[string]string

	// StrictBarcodeID additionally enforces the USPS digit conventions
	// on the barcode identifier (second digit 0-4). The default accepts
	// any two digits and lets the capacity check catch the rest.
	StrictBarcodeID bool
}

// Encoder validates encode requests and produces barcodes. The zero
// value is not usable; construct with New.
type Encoder struct {
	serviceTypes map[string]string
	strict       bool
}

// Result is the outcome of one successful encode call.
type Result struct {
	TrackingNumber string `json:"tracking_number"` // 20 digits
	FullDataField  string `json:"full_data_field"` // 20, 25, 29 or 31 digits
	Barcode        string `json:"barcode"`         // 65 chars of A/D/F/T
	FCS            uint16 `json:"fcs"`             // 11-bit frame check sequence
}

// New returns an Encoder with the given options.
func New(opts Options) *Encoder {
	st := opts.ServiceTypes
	if st == nil {
		st = DefaultServiceTypes
	}
	return &Encoder{serviceTypes: st, strict: opts.StrictBarcodeID}
}

// ServiceTypes returns the configured STID set.
func (e *Encoder) ServiceTypes() map[string]string {
	return e.serviceTypes
}

// Encode validates req, assembles the tracking number and full data
// field, and encodes the 65-bar barcode. Validation rules run in field
// order and the first failure wins; all failures are *ValidationError.
func (e *Encoder) Encode(req Request) (*Result, error) {
	barcodeID, err := normalizeBarcodeID(req.BarcodeID, e.strict)
	if err != nil {
		return nil, err
	}
	stid, err := validateServiceType(req.ServiceType, e.serviceTypes)
	if err != nil {
		return nil, err
	}
	mailerID, err := validateMailerID(req.MailerID)
	if err != nil {
		return nil, err
	}
	sequence, err := padSequence(req.Sequence, len(mailerID))
	if err != nil {
		return nil, err
	}
	routing, err := normalizeRoutingCode(req.RoutingCode)
	if err != nil {
		return nil, err
	}

	tracking := barcodeID + stid + mailerID + sequence
	if len(tracking) != trackingLen {
		// Unreachable once the per-field rules hold; kept as a guard on
		// the concatenation order invariant.
		return nil, fmt.Errorf("tracking number has %d digits, want %d", len(tracking), trackingLen)
	}

	barcode, fcs, err := encodeTracking(tracking, routing)
	if err != nil {
		return nil, err
	}
	return &Result{
		TrackingNumber: tracking,
		FullDataField:  tracking + routing,
		Barcode:        barcode,
		FCS:            fcs,
	}, nil
}

// EncodeTrackingNumber encodes a pre-assembled 20-digit tracking number
// with an optional routing code, bypassing field-level validation. This
// is the entry point for callers that already hold the canonical digits,
// such as re-encoding previously issued tracking numbers.
func EncodeTrackingNumber(tracking, routing string) (*Result, error) {
	if len(tracking) != trackingLen || !isDigits(tracking) {
		return nil, fmt.Errorf("tracking number %q: must be exactly %d decimal digits", tracking, trackingLen)
	}
	rc, err := normalizeRoutingCode(routing)
	if err != nil {
		return nil, err
	}
	barcode, fcs, err := encodeTracking(tracking, rc)
	if err != nil {
		return nil, err
	}
	return &Result{
		TrackingNumber: tracking,
		FullDataField:  tracking + rc,
		Barcode:        barcode,
		FCS:            fcs,
	}, nil
}

// encodeTracking runs the encoding pipeline over an already validated
// tracking number and routing code.
func encodeTracking(tracking, routing string) (string, uint16, error) {
	payload := payloadValue(tracking, routing)
	fcs := frameCheckSequence(payload)
	cw, err := codewords(payload, fcs)
	if err != nil {
		return "", 0, err
	}
	return assembleBars(characters(cw, fcs)), fcs, nil
}
