package gal

import "fmt"

// pinToColumn returns the AND-array column that holds pin's true
// literal; its complement sits at column+1. The column assignment is
// chip-specific wiring, opaque outside the fuse emitter.
//
// The GAL16V8 and GAL22V10 tables are the device wiring: every
// non-power pin has a fixed column, and on GAL16V8 the two OLMC pins at
// the middle of its macrocell range (15, 16) have none, since those two
// outputs have no feedback path back into the AND array in simple mode.
//
// The GAL20V8 and GAL20RA10 tables are generated: dedicated input pins
// and OLMC-feedback pins are assigned ascending column pairs in pin
// order, excluding the middle two macrocell pins the same way the
// GAL16V8 table does. See DESIGN.md for the fidelity caveats.
func pinToColumn(chip Chip, pin int) (int, error) {
	table := columnTable(chip)
	col, ok := table[pin]
	if !ok {
		return 0, fmt.Errorf("pin %d is not a valid AND-array input on %s", pin, chip.Name())
	}
	return col, nil
}

var (
	col16v8Table   map[int]int
	col20v8Table   map[int]int
	col22v10Table  map[int]int
	col20ra10Table map[int]int
)

func init() {
	col16v8Table = map[int]int{
		2: 0, 1: 2, 3: 4, 4: 8, 5: 12, 6: 16, 7: 20, 8: 24, 9: 28, 11: 30,
		12: 26, 13: 22, 14: 18, 17: 14, 18: 10, 19: 6,
	}
	col22v10Table = buildSymmetric22v10Table()
	col20v8Table = buildGeneratedTable(chip20v8)
	col20ra10Table = buildGeneratedTable(chip20ra10)
}

func columnTable(chip Chip) map[int]int {
	switch chip {
	case ChipGAL16V8:
		return col16v8Table
	case ChipGAL20V8:
		return col20v8Table
	case ChipGAL22V10:
		return col22v10Table
	case ChipGAL20RA10:
		return col20ra10Table
	default:
		return nil
	}
}

// buildSymmetric22v10Table lays out the GAL22V10 wiring: pins 1-11
// ascend in steps of 4 starting at column 0, pins 13-23 descend in
// steps of 4 starting at column 42, using every even column 0..42
// exactly once.
func buildSymmetric22v10Table() map[int]int {
	t := make(map[int]int, 22)
	for i := 1; i <= 11; i++ {
		t[i] = 4 * (i - 1)
	}
	for i := 13; i <= 23; i++ {
		t[i] = 42 - 4*(i-13)
	}
	return t
}

// buildGeneratedTable assigns ascending column pairs to every non-power
// pin, skipping the two pins at the middle of the chip's macrocell
// range (see pinToColumn doc comment).
func buildGeneratedTable(d chipData) map[int]int {
	excludeLo, excludeHi := middlePair(d.minOLMC, d.maxOLMC)

	t := make(map[int]int)
	col := 0
	for pin := 1; pin <= d.numPins; pin++ {
		if pin == d.numPins || pin == d.numPins/2 { // VCC, GND
			continue
		}
		if pin == excludeLo || pin == excludeHi {
			continue
		}
		t[pin] = col
		col += 2
	}
	return t
}

// middlePair returns the two pin numbers at the center of [lo, hi]
// (an even-length inclusive range, since every supported chip has an
// even OLMC count).
func middlePair(lo, hi int) (int, int) {
	n := hi - lo + 1
	mid := lo + n/2
	return mid - 1, mid
}
