package imb

import (
	"errors"
	"fmt"
)

// ErrorCode identifies which validation stage rejected an encode request.
type ErrorCode string

const (
	ErrInvalidBarcodeID         ErrorCode = "invalid_barcode_id"
	ErrInvalidServiceType       ErrorCode = "invalid_service_type"
	ErrInvalidMailerIDLength    ErrorCode = "invalid_mailer_id_length"
	ErrInvalidMailerIDFormat    ErrorCode = "invalid_mailer_id_format"
	ErrSequenceOverflow         ErrorCode = "sequence_overflow"
	ErrInvalidRoutingCodeLength ErrorCode = "invalid_routing_code_length"
	ErrFieldOverflow            ErrorCode = "field_overflow"
)

// ValidationError describes a per-record encode failure. It carries enough
// context for a batch caller to report the failing row and continue.
type ValidationError struct {
	Code       ErrorCode
	Field      string // logical field name, e.g. "mailer_id"
	Value      string // the received value
	Constraint string // human-readable constraint that was violated
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", e.Code, e.Field, e.Value, e.Constraint)
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a
// ValidationError.
func CodeOf(err error) ErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
