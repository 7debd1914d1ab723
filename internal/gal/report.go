package gal

import (
	"fmt"
	"strings"
)

// OLMCPinType classifies a macrocell pin for the pin-table report: it
// never participates in fuse-map generation, only in `.pin` text.
type OLMCPinType int

const (
	OLMCPinNC OLMCPinType = iota
	OLMCPinOutput
	OLMCPinInput
)

// OLMCPinTypes derives, per OLMC, whether its pin ended up driven
// (Output), referenced only as feedback (Input), or unused (NC).
func OLMCPinTypes(bp Blueprint) []OLMCPinType {
	out := make([]OLMCPinType, len(bp.OLMC))
	for i, olmc := range bp.OLMC {
		switch {
		case olmc.Output != nil:
			out[i] = OLMCPinOutput
		case olmc.Feedback:
			out[i] = OLMCPinInput
		default:
			out[i] = OLMCPinNC
		}
	}
	return out
}

func makeSpaces(buf *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte(' ')
	}
}

// ChipDiagram renders the ASCII package outline with each pin's name.
// Pin n sits on the left; pin NumPins-n+1 mirrors it on the right.
func ChipDiagram(chip Chip, pinNames []string) string {
	n := len(pinNames)
	var buf strings.Builder

	buf.WriteString("\n\n")
	makeSpaces(&buf, 31)
	switch chip {
	case ChipGAL20RA10:
		buf.WriteString("GAL20RA10\n\n")
	default:
		fmt.Fprintf(&buf, " %s\n\n", chip.Name())
	}

	makeSpaces(&buf, 26)
	buf.WriteString("-------\\___/-------\n")

	started := false
	for i := 0; i < n/2; i++ {
		if started {
			makeSpaces(&buf, 26)
			buf.WriteString("|                 |\n")
		} else {
			started = true
		}

		makeSpaces(&buf, 25-len(pinNames[i]))
		fmt.Fprintf(&buf, "%s | %2d           %2d | %s\n",
			pinNames[i], i+1, n-i, pinNames[n-i-1])
	}

	makeSpaces(&buf, 26)
	buf.WriteString("-------------------\n")
	return buf.String()
}

// PinTable renders the per-pin name/role table.
func PinTable(chip Chip, pinNames []string, mode Mode, pinTypes []OLMCPinType) string {
	n := len(pinNames)
	var buf strings.Builder
	buf.WriteString("\n\n")
	buf.WriteString(" Pin # | Name     | Pin Type\n")
	buf.WriteString("-----------------------------\n")

	for p := 1; p <= n; p++ {
		fmt.Fprintf(&buf, "  %2d   | ", p)
		name := pinNames[p-1]
		buf.WriteString(name)
		makeSpaces(&buf, 9-len(name))

		flagged := false
		if p == n/2 {
			buf.WriteString("| GND\n")
			flagged = true
		}
		if p == n {
			buf.WriteString("| VCC\n\n")
			flagged = true
		}

		if chip == ChipGAL16V8 || chip == ChipGAL20V8 {
			if mode == ModeRegistered && p == 1 {
				buf.WriteString("| Clock\n")
				flagged = true
			}
			if mode == ModeRegistered {
				if chip == ChipGAL16V8 && p == 11 {
					buf.WriteString("| /OE\n")
					flagged = true
				}
				if chip == ChipGAL20V8 && p == 13 {
					buf.WriteString("| /OE\n")
					flagged = true
				}
			}
		}

		if chip == ChipGAL22V10 && p == 1 {
			buf.WriteString("| Clock/Input\n")
			flagged = true
		}

		if olmcIdx, ok := chip.PinToOLMC(p); ok {
			switch pinTypes[olmcIdx] {
			case OLMCPinInput:
				buf.WriteString("| Input\n")
			case OLMCPinOutput:
				buf.WriteString("| Output\n")
			default:
				buf.WriteString("| NC\n")
			}
		} else if !flagged {
			buf.WriteString("| Input\n")
		}
	}

	return buf.String()
}

func makeRow(buf *strings.Builder, rowLen, row int, fuses []bool) {
	fmt.Fprintf(buf, "\n%3d ", row)
	for col := 0; col < rowLen; col++ {
		if col%4 == 0 {
			buf.WriteByte(' ')
		}
		if fuses[row*rowLen+col] {
			buf.WriteByte('-')
		} else {
			buf.WriteByte('x')
		}
	}
}

// FuseListing renders the per-OLMC product-term fuse grid alongside
// each output's XOR/AC1 (or S0/S1) bits, in decreasing pin order. On
// GAL22V10 the AR row precedes the first block and the SP row follows
// the last.
func FuseListing(g *GAL, pinNames []string) string {
	chip := g.Chip
	var buf strings.Builder

	pin := chip.maxOLMCPin()
	rowLen := chip.RowWidth()
	olmcs := chip.NumOLMCs()
	row := 0

	for olmc := 0; olmc < olmcs; olmc++ {
		if chip == ChipGAL22V10 && olmc == 0 {
			buf.WriteString("\n\nAR")
			makeRow(&buf, rowLen, row, g.Fuses)
			row++
		}

		numRows := chip.OLMCCapacity(olmc)

		fmt.Fprintf(&buf, "\n\nPin %2d = %s", pin, pinNames[pin-1])
		makeSpaces(&buf, 13-len(pinNames[pin-1]))

		idx := olmc
		switch chip {
		case ChipGAL16V8, ChipGAL20V8:
			fmt.Fprintf(&buf, "XOR = %d   AC1 = %d", boolDigit(g.Xor[idx]), boolDigit(g.AC1[idx]))
		case ChipGAL22V10:
			fmt.Fprintf(&buf, "S0 = %d   S1 = %d", boolDigit(g.Xor[idx]), boolDigit(g.S1[idx]))
		case ChipGAL20RA10:
			fmt.Fprintf(&buf, "S0 = %d", boolDigit(g.Xor[idx]))
		}

		for n := 0; n < numRows; n++ {
			makeRow(&buf, rowLen, row, g.Fuses)
			row++
		}

		if chip == ChipGAL22V10 && olmc == olmcs-1 {
			buf.WriteString("\n\nSP")
			makeRow(&buf, rowLen, row, g.Fuses)
		}

		pin--
	}

	buf.WriteString("\n\n")
	return buf.String()
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// maxOLMCPin is the highest OLMC pin number, the starting point for
// FuseListing's descending pin walk.
func (c Chip) maxOLMCPin() int { return c.data().maxOLMC }
