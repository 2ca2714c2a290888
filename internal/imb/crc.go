package imb

import "math/big"

const (
	// Generator polynomial of the 11-bit frame check sequence, as
	// published by the USPS four-state barcode specification. Not a
	// generic CRC-11: interoperability requires this exact polynomial.
	crcPolynomial = 0x0F35

	crcInitial = 0x07FF
	crcMask    = 0x07FF
	crcTopBit  = 0x0400

	payloadBytes = 13 // 102 bits left-padded into 13 bytes
)

// frameCheckSequence computes the 11-bit FCS over the 102-bit payload,
// most significant bit first. The payload is processed as 13 bytes with
// the top two bits of the leading byte skipped, exactly as the published
// reference routine does.
func frameCheckSequence(payload *big.Int) uint16 {
	var buf [payloadBytes]byte
	payload.FillBytes(buf[:])

	fcs := uint16(crcInitial)

	// Leading byte carries only 6 payload bits.
	data := uint16(buf[0]) << 5
	for range 6 {
		if (fcs^data)&crcTopBit != 0 {
			fcs = (fcs << 1) ^ crcPolynomial
		} else {
			fcs <<= 1
		}
		fcs &= crcMask
		data <<= 1
	}
	for _, b := range buf[1:] {
		data = uint16(b) << 3
		for range 8 {
			if (fcs^data)&crcTopBit != 0 {
				fcs = (fcs << 1) ^ crcPolynomial
			} else {
				fcs <<= 1
			}
			fcs &= crcMask
			data <<= 1
		}
	}
	return fcs
}
