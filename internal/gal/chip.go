// Package gal models the four GAL chip families this compiler targets and
// the per-macrocell logic (OLMC) that turns equations into a fuse map.
package gal

import (
	"fmt"
	"strings"
)

// Chip identifies one of the four supported GAL device families.
type Chip int

const (
	ChipUnknown Chip = iota
	ChipGAL16V8
	ChipGAL20V8
	ChipGAL22V10
	ChipGAL20RA10
)

// chipData is the fixed descriptor table for one chip family.
type chipData struct {
	name      string
	numPins   int
	minOLMC   int // lowest OLMC-bearing pin number
	maxOLMC   int // highest OLMC-bearing pin number
	rowWidth  int
	rowCount  int
	totalSize int // JEDEC *QF fuse count, delegated boundary use only
	olmcStart []int
	olmcCap   []int
	hasARSP   bool // GAL22V10 only
}

var (
	chip16v8 = chipData{
		name:      "GAL16V8",
		numPins:   20,
		minOLMC:   12,
		maxOLMC:   19,
		rowWidth:  32,
		rowCount:  64,
		totalSize: 2194,
		olmcStart: fixedOLMCStarts(8, 8),
		olmcCap:   fixedCaps(8, 8),
	}
	chip20v8 = chipData{
		name:      "GAL20V8",
		numPins:   24,
		minOLMC:   15,
		maxOLMC:   22,
		rowWidth:  40,
		rowCount:  64,
		totalSize: 2706,
		olmcStart: fixedOLMCStarts(8, 8),
		olmcCap:   fixedCaps(8, 8),
	}
	chip22v10 = chipData{
		name:     "GAL22V10",
		numPins:  24,
		minOLMC:  14,
		maxOLMC:  23,
		rowWidth: 44,
		rowCount: 132,
		// Row 0 is AR, row 131 is SP; the ten real OLMCs occupy the rows
		// between, in descending pin order (pin counts down from 23 while
		// the fuse rows count up). The descriptor carries two extra slots
		// (indices 10, 11) for AR and SP with capacity 1 each; they are
		// addressable through OLMCCapacity/BoundsForOLMC but are not part
		// of the Blueprint's OLMC array.
		totalSize: 5892,
		olmcStart: []int{122, 111, 98, 83, 66, 49, 34, 21, 10, 1, 0, 131},
		olmcCap:   []int{9, 11, 13, 15, 17, 17, 15, 13, 11, 9, 1, 1},
		hasARSP:   true,
	}
	chip20ra10 = chipData{
		name:      "GAL20RA10",
		numPins:   24,
		minOLMC:   14,
		maxOLMC:   23,
		rowWidth:  40,
		rowCount:  80,
		totalSize: 3274,
		olmcStart: fixedOLMCStarts(10, 8),
		olmcCap:   fixedCaps(10, 8),
	}
)

// fixedOLMCStarts builds the descending-row-per-OLMC table used by every
// chip family whose OLMCs all share the same product-term capacity: OLMC
// index 0 (lowest output pin) lands in the last block of rows, OLMC
// index n-1 (highest output pin) lands in the first block.
func fixedOLMCStarts(n, cap int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = (n - 1 - i) * cap
	}
	return out
}

func fixedCaps(n, cap int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = cap
	}
	return out
}

// ParseChip maps a CUPL-style device mnemonic (e.g. "g16v8as", "G22V10")
// to a Chip.
func ParseChip(name string) (Chip, error) {
	n := normalizeDevice(name)
	switch {
	case strings.Contains(n, "16V8"):
		return ChipGAL16V8, nil
	case strings.Contains(n, "20V8"):
		return ChipGAL20V8, nil
	case strings.Contains(n, "22V10"):
		return ChipGAL22V10, nil
	case strings.Contains(n, "20RA10"):
		return ChipGAL20RA10, nil
	default:
		return ChipUnknown, fmt.Errorf("unsupported device: %s", name)
	}
}

func normalizeDevice(name string) string {
	// Accept CUPL-style names like g16v8as, g22v10.
	// Normalize to GALxxVx for internal use.
	var buf []rune
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			buf = append(buf, r)
		case r >= 'a' && r <= 'z':
			buf = append(buf, r-('a'-'A'))
		case r >= '0' && r <= '9':
			buf = append(buf, r)
		}
	}
	upper := string(buf)
	if len(upper) >= 5 && upper[0] == 'G' {
		upper = "GAL" + upper[1:]
	}
	return upper
}

func (c Chip) data() chipData {
	switch c {
	case ChipGAL16V8:
		return chip16v8
	case ChipGAL20V8:
		return chip20v8
	case ChipGAL22V10:
		return chip22v10
	case ChipGAL20RA10:
		return chip20ra10
	default:
		return chipData{}
	}
}

func (c Chip) Name() string        { return c.data().name }
func (c Chip) NumPins() int        { return c.data().numPins }
func (c Chip) RowWidth() int       { return c.data().rowWidth }
func (c Chip) RowCount() int       { return c.data().rowCount }
func (c Chip) TotalSize() int      { return c.data().totalSize }
func (c Chip) HasGlobalARSP() bool { return c.data().hasARSP }

// NumOLMCs returns the number of user-addressable output macrocells.
// GAL22V10's descriptor additionally reserves rows 0 and (RowCount-1)
// for AR/SP; those slots are not counted here since they are not part
// of the Blueprint.OLMC array.
func (c Chip) NumOLMCs() int {
	d := c.data()
	return d.maxOLMC - d.minOLMC + 1
}

// PinToOLMC maps a 1-indexed pin number to its OLMC index, or false if
// the pin carries no macrocell (input, clock, power, or out of range).
func (c Chip) PinToOLMC(pin int) (int, bool) {
	d := c.data()
	if pin < d.minOLMC || pin > d.maxOLMC {
		return 0, false
	}
	return pin - d.minOLMC, true
}

// OLMCToPin is the inverse of PinToOLMC.
func (c Chip) OLMCToPin(olmc int) int {
	return c.data().minOLMC + olmc
}

// OLMCCapacity returns the number of fuse rows (product terms) available
// to OLMC index olmc.
func (c Chip) OLMCCapacity(olmc int) int {
	d := c.data()
	if olmc < 0 || olmc >= len(d.olmcCap) {
		return 0
	}
	return d.olmcCap[olmc]
}

// Bounds describes the usable fuse-row range for one term.
type Bounds struct {
	StartRow  int
	MaxRows   int
	RowOffset int
}

// BoundsForOLMC returns the row range reserved for OLMC index olmc.
func (c Chip) BoundsForOLMC(olmc int) Bounds {
	d := c.data()
	return Bounds{StartRow: d.olmcStart[olmc], MaxRows: d.olmcCap[olmc]}
}

// ARRow and SPRow are only meaningful when HasGlobalARSP() is true.
func (c Chip) ARRow() int { return 0 }
func (c Chip) SPRow() int { return c.data().rowCount - 1 }

// VCCPin and GNDPin return the sentinel pin numbers used by the
// equation-to-term lowering: VCC is the highest-numbered pin, GND sits
// at the physical midpoint.
func (c Chip) VCCPin() int { return c.NumPins() }
func (c Chip) GNDPin() int { return c.NumPins() / 2 }
