package imb

// Symbol is one of the four bar shapes of the four-state code.
type Symbol byte

const (
	Tracker   Symbol = 'T' // neither half extended
	Descender Symbol = 'D' // lower half extended
	Ascender  Symbol = 'A' // upper half extended
	Full      Symbol = 'F' // both halves extended
)

// assembleBars produces the 65-character barcode string from the ten
// 13-bit characters. Each bar position takes its descender and ascender
// bits from the fixed bar map; positions run left to right in print order.
func assembleBars(chars [numCodewords]uint16) string {
	out := make([]byte, numBars)
	for i, e := range barMap {
		desc := chars[e.descChar]>>e.descBit&1 != 0
		asc := chars[e.ascChar]>>e.ascBit&1 != 0
		switch {
		case asc && desc:
			out[i] = byte(Full)
		case asc:
			out[i] = byte(Ascender)
		case desc:
			out[i] = byte(Descender)
		default:
			out[i] = byte(Tracker)
		}
	}
	return string(out)
}
