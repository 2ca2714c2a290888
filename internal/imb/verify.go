package imb

import (
	"fmt"
	"math/bits"
)

// Reference checkpoints taken from the published tables. They pin the
// construction order, not just the membership, so a table built with the
// wrong pairing or scan direction fails fast.
var tableCheckpoints = map[int]uint16{
	0:                 0x001F,
	1:                 0x1F00,
	2:                 0x002F,
	table5of13Len - 1: 0x01F0,
	table5of13Len:     0x0003,
	table5of13Len + 1: 0x1800,
	codewordRadix - 1: 0x00A0,
}

// verifyTables checks the generated character tables and the embedded bar
// map. Called once from init; any error here is a startup-fatal condition.
func verifyTables() error {
	for i, want := range tableCheckpoints {
		if got := characterTable[i]; got != want {
			return fmt.Errorf("character table checkpoint %d: got %#04x, want %#04x", i, got, want)
		}
	}
	for i, c := range characterTable {
		want := 5
		if i >= table5of13Len {
			want = 2
		}
		if bits.OnesCount16(c) != want {
			return fmt.Errorf("character table entry %d: weight %d, want %d", i, bits.OnesCount16(c), want)
		}
	}

	// Every character/bit combination must drive exactly one bar half.
	var seen [numCodewords * 13]bool
	for i, e := range barMap {
		for _, half := range [][2]uint8{{e.descChar, e.descBit}, {e.ascChar, e.ascBit}} {
			if half[0] >= numCodewords || half[1] >= 13 {
				return fmt.Errorf("bar map entry %d: character %d bit %d out of range", i, half[0], half[1])
			}
			idx := int(half[0])*13 + int(half[1])
			if seen[idx] {
				return fmt.Errorf("bar map entry %d: character %d bit %d mapped twice", i, half[0], half[1])
			}
			seen[idx] = true
		}
	}
	return nil
}
