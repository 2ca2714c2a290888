package imb

import "math/big"

// Routing code offsets from the specification's binary conversion: each
// length class is shifted past the value space of the shorter classes so
// the decoder can recover both the digits and the original length.
var routingOffsets = map[int]int64{
	0:  0,
	5:  1,
	9:  100000 + 1,
	11: 1000000000 + 100000 + 1,
}

// payloadValue converts a validated 20-digit tracking number and
// normalized routing code into the 102-bit binary payload. The routing
// value seeds the accumulator, then the tracking digits are mixed in
// most-significant first; the second digit is encoded base 5, all others
// base 10.
func payloadValue(tracking, routing string) *big.Int {
	v := big.NewInt(0)
	if routing != "" {
		r, _ := new(big.Int).SetString(routing, 10)
		v.Add(r, big.NewInt(routingOffsets[len(routing)]))
	}
	ten := big.NewInt(10)
	five := big.NewInt(5)
	for i := range len(tracking) {
		d := big.NewInt(int64(tracking[i] - '0'))
		if i == 1 {
			v.Mul(v, five)
		} else {
			v.Mul(v, ten)
		}
		v.Add(v, d)
	}
	return v
}
