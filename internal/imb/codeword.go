package imb

import "math/big"

// codewords splits the 102-bit payload into the ten codewords A..J.
// Codeword J holds payload mod 636 and is doubled so its low bit is
// always zero; codewords I through B each hold a base-1365 digit; the
// remainder lands in codeword A, which also carries FCS bit 10 as an
// offset of 659. Payloads past the representable capacity are rejected
// with FieldOverflow rather than truncated.
func codewords(payload *big.Int, fcs uint16) ([numCodewords]uint16, error) {
	var cw [numCodewords]uint16

	if payload.Sign() < 0 || payload.BitLen() > payloadBits {
		return cw, &ValidationError{
			Code:       ErrFieldOverflow,
			Field:      "full_data_field",
			Value:      payload.String(),
			Constraint: "exceeds the 102-bit payload capacity",
		}
	}

	v := new(big.Int).Set(payload)
	m := new(big.Int)

	v.DivMod(v, big.NewInt(codewordJRadix), m)
	cw[numCodewords-1] = uint16(m.Int64())
	radix := big.NewInt(codewordRadix)
	for i := numCodewords - 2; i >= 1; i-- {
		v.DivMod(v, radix, m)
		cw[i] = uint16(m.Int64())
	}
	if !v.IsInt64() || v.Int64() > codewordAMax {
		return cw, &ValidationError{
			Code:       ErrFieldOverflow,
			Field:      "full_data_field",
			Value:      payload.String(),
			Constraint: "exceeds the codeword capacity of the barcode",
		}
	}
	cw[0] = uint16(v.Int64())

	// Orientation and FCS markers.
	cw[numCodewords-1] *= 2
	if fcs&crcTopBit != 0 {
		cw[0] += codewordAMax + 1
	}
	return cw, nil
}

// characters maps each codeword through the combined character table and
// complements the characters whose FCS bit is set.
func characters(cw [numCodewords]uint16, fcs uint16) [numCodewords]uint16 {
	var chars [numCodewords]uint16
	for i, c := range cw {
		chars[i] = characterTable[c]
		if fcs&(1<<i) != 0 {
			chars[i] ^= 0x1FFF
		}
	}
	return chars
}
