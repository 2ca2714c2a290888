package imb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tracking number and barcodes below are the published test vectors
// of the four-state barcode specification, one per routing code length.
const specTracking = "01234567094987654321"

var specVectors = []struct {
	name    string
	routing string
	barcode string
}{
	{
		name:    "no routing code",
		routing: "",
		barcode: "ATTFATTDTTADTAATTDTDTATTDAFDDFADFDFTFFFFFTATFAAAATDFFTDAADFTFDTDT",
	},
	{
		name:    "5-digit routing code",
		routing: "01234",
		barcode: "DTTAFADDTTFTDTFTFDTDDADADAFADFATDDFTAAAFDTTADFAAATDFDTDFADDDTDFFT",
	},
	{
		name:    "9-digit routing code",
		routing: "012345678",
		barcode: "ADFTTAFDTTTTFATTADTAAATFTFTATDAAAFDDADATATDTDTTDFDTDATADADTDFFTFA",
	},
	{
		name:    "11-digit routing code",
		routing: "01234567891",
		barcode: "AADTFFDFTDADTAADAATFDTDDAAADDTDTTDAFADADDDTFFFDDTTTADFAAADFTDAADA",
	},
}

func TestEncodeTrackingNumber_SpecVectors(t *testing.T) {
	for _, tc := range specVectors {
		t.Run(tc.name, func(t *testing.T) {
			res, err := EncodeTrackingNumber(specTracking, tc.routing)
			require.NoError(t, err)
			assert.Equal(t, tc.barcode, res.Barcode)
			assert.Equal(t, specTracking, res.TrackingNumber)
			assert.Equal(t, specTracking+tc.routing, res.FullDataField)
		})
	}
}

func TestEncodeTrackingNumber_SpecFCS(t *testing.T) {
	res, err := EncodeTrackingNumber(specTracking, "01234567891")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x751), res.FCS)
}

func TestEncode_BoundaryScenario(t *testing.T) {
	enc := New(Options{})
	res, err := enc.Encode(Request{
		BarcodeID:   "00",
		ServiceType: "040",
		MailerID:    "123456",
		Sequence:    1,
		RoutingCode: "900123456",
	})
	require.NoError(t, err)

	assert.Equal(t, "00040123456000000001", res.TrackingNumber)
	assert.Len(t, res.TrackingNumber, 20)
	assert.Equal(t, "00040123456000000001900123456", res.FullDataField)
	assert.Equal(t,
		"TTFTFFAAFFADDFAATATDDFFDDDADAAFDAFADTADAFFTAFATTTDTAFDFDTDDTFTDAF",
		res.Barcode)
	assert.Equal(t, uint16(0x7A8), res.FCS)
}

func TestEncodeTrackingNumber_RoutingFromZIPParts(t *testing.T) {
	// BuildRoutingCode always yields the 11-digit form: a missing delivery
	// point pads to "00", so ZIP+4 input encodes differently than the
	// plain 9-digit routing code.
	rc := BuildRoutingCode("90012", "3456", "")
	require.Equal(t, "90012345600", rc)

	res, err := EncodeTrackingNumber("00040123456000000001", rc)
	require.NoError(t, err)
	assert.Equal(t,
		"FAAAFFATDDFFTADATATFTFTATTATAFDDFAFAFTDAADAATAFDFDTAADDTFTDAAFDFF",
		res.Barcode)

	nine, err := EncodeTrackingNumber("00040123456000000001", "900123456")
	require.NoError(t, err)
	assert.NotEqual(t, nine.Barcode, res.Barcode)
}

func TestEncode_NineDigitMailerID(t *testing.T) {
	enc := New(Options{})
	res, err := enc.Encode(Request{
		BarcodeID:   "01",
		ServiceType: "234",
		MailerID:    "567891234",
		Sequence:    567891,
		RoutingCode: "12345678901",
	})
	require.NoError(t, err)
	assert.Equal(t, "01234567891234567891", res.TrackingNumber)
	assert.Equal(t,
		"TTFDTDDTAFDTDTDFTTFTATFDFFDTFAAAADTADTTAADATDTADFTDDFATFFFFDAFTAF",
		res.Barcode)
	assert.Equal(t, uint16(0x625), res.FCS)
}

func TestEncode_MaximumPayloadFits(t *testing.T) {
	// All-nines input lands exactly on the codeword capacity limit.
	res, err := EncodeTrackingNumber("99999999999999999999", "99999999999")
	require.NoError(t, err)
	assert.Equal(t,
		"AATATAATFTFDTTDATFFAADATDTTDDTTFTDTAFFFADDFTDTDTFAFFFTATFAFDTTFFF",
		res.Barcode)
}

func TestEncode_Deterministic(t *testing.T) {
	enc := New(Options{})
	req := Request{
		BarcodeID:   "00",
		ServiceType: "040",
		MailerID:    "123456",
		Sequence:    42,
		RoutingCode: "90210-5432-01",
	}
	first, err := enc.Encode(req)
	require.NoError(t, err)
	second, err := enc.Encode(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncode_OutputShape(t *testing.T) {
	enc := New(Options{})
	res, err := enc.Encode(Request{
		BarcodeID:   "20",
		ServiceType: "240",
		MailerID:    "902200000",
		Sequence:    123456,
		RoutingCode: "90210",
	})
	require.NoError(t, err)
	assert.Len(t, res.TrackingNumber, 20)
	assert.Len(t, res.Barcode, 65)
	for i := range len(res.Barcode) {
		assert.Contains(t, "ADFT", string(res.Barcode[i]))
	}
}

func TestEncode_ValidationOrder(t *testing.T) {
	enc := New(Options{})
	// Multiple fields are invalid; the barcode ID check runs first.
	_, err := enc.Encode(Request{
		BarcodeID:   "XYZ",
		ServiceType: "999",
		MailerID:    "12",
		Sequence:    -1,
		RoutingCode: "123",
	})
	require.Error(t, err)
	assert.Equal(t, ErrInvalidBarcodeID, CodeOf(err))
}

func TestEncodeTrackingNumber_RejectsMalformedInput(t *testing.T) {
	_, err := EncodeTrackingNumber("123", "")
	require.Error(t, err)

	_, err = EncodeTrackingNumber("0123456709498765432X", "")
	require.Error(t, err)
}

func TestServiceTypes_DefaultSet(t *testing.T) {
	enc := New(Options{})
	st := enc.ServiceTypes()
	assert.Len(t, st, 6)
	assert.Equal(t, "First-Class Mail", st["040"])
}
