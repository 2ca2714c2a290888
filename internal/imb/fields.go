package imb

import (
	"fmt"
	"strings"
)

const (
	barcodeIDLen    = 2
	serviceTypeLen  = 3
	trackingLen     = 20
	mailerSeqDigits = 15 // mailer ID and sequence number always total 15 digits
)

// Request holds the five raw input fields for one encode call. BarcodeID,
// ServiceType and MailerID are decimal strings; Sequence is the raw serial
// value and is zero-padded to the width left over by the mailer ID.
// RoutingCode may be empty or 5, 9 or 11 digits; dashes are tolerated and
// stripped (mailing lists routinely carry "12345-6789" ZIPs).
type Request struct {
	BarcodeID   string
	ServiceType string
	MailerID    string
	Sequence    int64
	RoutingCode string
}

// DefaultServiceTypes is the STID set recognized out of the box, keyed by
// the three-digit identifier.
var DefaultServiceTypes = map[string]string{
	"040": "First-Class Mail",
	"240": "USPS Marketing Mail Basic",
	"271": "USPS Marketing Mail Full-Service",
	"340": "Periodicals",
	"440": "Bound Printed Matter",
	"540": "Package Services",
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// normalizeBarcodeID zero-pads and validates the barcode identifier.
// Strict mode additionally requires the second digit to be 0-4: the binary
// conversion encodes that digit in base 5, so values 5-9 there consume
// capacity reserved by the specification and overflow the payload for
// large routing codes.
func normalizeBarcodeID(raw string, strict bool) (string, error) {
	id := raw
	if len(id) == 1 {
		id = "0" + id
	}
	if len(id) != barcodeIDLen || !isDigits(id) {
		return "", &ValidationError{
			Code:       ErrInvalidBarcodeID,
			Field:      "barcode_id",
			Value:      raw,
			Constraint: "must be exactly 2 decimal digits",
		}
	}
	if strict && id[1] > '4' {
		return "", &ValidationError{
			Code:       ErrInvalidBarcodeID,
			Field:      "barcode_id",
			Value:      raw,
			Constraint: "second digit must be 0-4",
		}
	}
	return id, nil
}

func validateServiceType(raw string, stids map[string]string) (string, error) {
	if len(raw) != serviceTypeLen || !isDigits(raw) {
		return "", &ValidationError{
			Code:       ErrInvalidServiceType,
			Field:      "service_type",
			Value:      raw,
			Constraint: "must be exactly 3 decimal digits",
		}
	}
	if _, ok := stids[raw]; !ok {
		return "", &ValidationError{
			Code:       ErrInvalidServiceType,
			Field:      "service_type",
			Value:      raw,
			Constraint: "unknown service type identifier",
		}
	}
	return raw, nil
}

func validateMailerID(raw string) (string, error) {
	if len(raw) != 6 && len(raw) != 9 {
		return "", &ValidationError{
			Code:       ErrInvalidMailerIDLength,
			Field:      "mailer_id",
			Value:      raw,
			Constraint: "must be exactly 6 or 9 digits",
		}
	}
	if !isDigits(raw) {
		return "", &ValidationError{
			Code:       ErrInvalidMailerIDFormat,
			Field:      "mailer_id",
			Value:      raw,
			Constraint: "must contain only decimal digits",
		}
	}
	return raw, nil
}

// padSequence zero-pads seq to the width complementary to the mailer ID
// length, so the two fields always total 15 digits.
func padSequence(seq int64, mailerLen int) (string, error) {
	width := mailerSeqDigits - mailerLen
	s := fmt.Sprintf("%0*d", width, seq)
	if seq < 0 || len(s) > width {
		return "", &ValidationError{
			Code:       ErrSequenceOverflow,
			Field:      "sequence",
			Value:      fmt.Sprintf("%d", seq),
			Constraint: fmt.Sprintf("must fit in %d digits for a %d-digit mailer ID", width, mailerLen),
		}
	}
	return s, nil
}

func normalizeRoutingCode(raw string) (string, error) {
	rc := strings.ReplaceAll(raw, "-", "")
	switch len(rc) {
	case 0:
		return "", nil
	case 5, 9, 11:
		if !isDigits(rc) {
			return "", &ValidationError{
				Code:       ErrInvalidRoutingCodeLength,
				Field:      "routing_code",
				Value:      raw,
				Constraint: "must contain only decimal digits",
			}
		}
		return rc, nil
	default:
		return "", &ValidationError{
			Code:       ErrInvalidRoutingCodeLength,
			Field:      "routing_code",
			Value:      raw,
			Constraint: "must be 0, 5, 9 or 11 digits",
		}
	}
}

// BuildRoutingCode assembles the 11-digit routing code from its address
// components, zero-padding each part. Empty components default to zeros.
func BuildRoutingCode(zip5, zip4, deliveryPoint string) string {
	pad := func(s string, w int) string {
		s = strings.ReplaceAll(s, "-", "")
		if len(s) < w {
			s = strings.Repeat("0", w-len(s)) + s
		}
		return s
	}
	return pad(zip5, 5) + pad(zip4, 4) + pad(deliveryPoint, 2)
}
