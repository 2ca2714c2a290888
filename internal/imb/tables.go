package imb

import "math/bits"

// The character tables and the bar map below are the fixed reference data
// of the USPS four-state barcode specification (USPS-B-3200). The two
// N-of-13 tables are materialized by the specification's own construction
// procedure and checked against embedded reference values at init; the
// encoder refuses to start with corrupt tables because a single wrong
// entry yields barcodes that scan equipment misreads without any
// downstream error.

const (
	// payloadBits is the fixed width of the binary payload.
	payloadBits = 102

	numCodewords = 10
	numBars      = 65

	// Codeword value ranges. Codeword J is taken modulo 636 and doubled,
	// codewords I..B modulo 1365, and codeword A must not exceed 658
	// before the FCS bit 10 offset of 659 is applied.
	codewordJRadix = 636
	codewordRadix  = 1365
	codewordAMax   = 658

	table5of13Len = 1287
	table2of13Len = 78
)

// characterTable maps a codeword value (0..1364) to its 13-bit character:
// the first 1287 entries come from the 5-of-13 table, the remaining 78
// from the 2-of-13 table.
var characterTable [codewordRadix]uint16

// barEntry ties one bar position to the character bits that drive its
// descender and ascender halves.
type barEntry struct {
	descChar, descBit uint8
	ascChar, ascBit   uint8
}

// barMap is the bar-to-character mapping for all 65 bar positions, in
// print order left to right. Each of the 130 character/bit combinations
// appears exactly once, which initVerify re-checks on startup.
var barMap = [numBars]barEntry{
	{7, 2, 4, 3}, {1, 10, 0, 0}, {9, 12, 2, 8}, {5, 5, 6, 11}, {8, 9, 3, 1},
	{0, 1, 5, 12}, {2, 5, 1, 8}, {4, 4, 9, 11}, {6, 3, 8, 10}, {3, 9, 7, 6},
	{5, 11, 1, 4}, {8, 5, 2, 12}, {9, 10, 0, 2}, {7, 1, 6, 7}, {3, 6, 4, 9},
	{0, 3, 8, 6}, {6, 4, 2, 7}, {1, 1, 9, 9}, {7, 10, 5, 2}, {4, 0, 3, 8},
	{6, 2, 0, 4}, {8, 11, 1, 0}, {9, 8, 3, 12}, {2, 6, 7, 7}, {5, 1, 4, 10},
	{1, 12, 6, 9}, {7, 3, 8, 0}, {5, 8, 9, 7}, {4, 6, 2, 10}, {3, 4, 0, 5},
	{8, 4, 5, 7}, {7, 11, 1, 9}, {6, 0, 9, 6}, {0, 6, 4, 8}, {2, 1, 3, 2},
	{5, 9, 8, 12}, {4, 11, 6, 1}, {9, 5, 7, 4}, {3, 3, 1, 2}, {0, 7, 2, 0},
	{1, 3, 4, 1}, {6, 10, 3, 5}, {8, 7, 9, 4}, {2, 11, 5, 6}, {0, 8, 7, 12},
	{4, 2, 8, 1}, {5, 10, 3, 0}, {9, 3, 0, 9}, {6, 5, 2, 4}, {7, 8, 1, 7},
	{5, 0, 4, 5}, {2, 3, 0, 10}, {6, 12, 9, 2}, {3, 11, 1, 6}, {8, 8, 7, 9},
	{5, 4, 0, 11}, {1, 5, 2, 2}, {9, 1, 4, 12}, {8, 3, 6, 6}, {7, 0, 3, 7},
	{4, 7, 7, 5}, {0, 12, 1, 11}, {2, 9, 9, 0}, {6, 8, 5, 3}, {3, 10, 8, 2},
}

// reverse13 mirrors the low 13 bits of v.
func reverse13(v uint16) uint16 {
	return bits.Reverse16(v) >> 3
}

// buildNof13Table fills dst with every 13-bit value of Hamming weight n,
// ordered per the specification: mirror-asymmetric values fill the table
// from the front in scan order (each immediately followed by its
// reversal), palindromic values fill it from the back.
func buildNof13Table(dst []uint16, n int) bool {
	lower, upper := 0, len(dst)-1
	for v := uint16(0); v < 1<<13; v++ {
		if bits.OnesCount16(v) != n {
			continue
		}
		r := reverse13(v)
		if r < v {
			continue // counted when its reversal was reached
		}
		if r == v {
			dst[upper] = v
			upper--
		} else {
			dst[lower] = v
			dst[lower+1] = r
			lower += 2
		}
	}
	return lower == upper+1
}

func init() {
	ok5 := buildNof13Table(characterTable[:table5of13Len], 5)
	ok2 := buildNof13Table(characterTable[table5of13Len:], 2)
	if !ok5 || !ok2 {
		panic("imb: character table construction failed")
	}
	if err := verifyTables(); err != nil {
		panic("imb: " + err.Error())
	}
}
