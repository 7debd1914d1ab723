package testutil

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

type JEDEC struct {
	QF    int
	G     int
	Fuses []bool
	Csum  uint16
}

func ParseJEDEC(data []byte) (JEDEC, error) {
	var j JEDEC
	s := string(data)
	// remove STX/ETX if present
	s = strings.TrimPrefix(s, "\x02")
	if idx := strings.Index(s, "\x03"); idx >= 0 {
		s = s[:idx]
	}
	scanner := bufio.NewScanner(strings.NewReader(s))
	fuses := map[int]bool{}
	maxIndex := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*QF") {
			v := strings.TrimPrefix(line, "*QF")
			qf, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return j, err
			}
			j.QF = qf
			continue
		}
		if strings.HasPrefix(line, "*G") {
			v := strings.TrimPrefix(line, "*G")
			g, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return j, err
			}
			j.G = g
			continue
		}
		if strings.HasPrefix(line, "*C") {
			v := strings.TrimPrefix(line, "*C")
			cs, err := strconv.ParseUint(strings.TrimSpace(v), 16, 16)
			if err != nil {
				return j, err
			}
			j.Csum = uint16(cs)
			continue
		}
		if strings.HasPrefix(line, "*L") {
			parts := strings.SplitN(line[2:], " ", 2)
			if len(parts) != 2 {
				return j, fmt.Errorf("invalid L line: %q", line)
			}
			off, err := strconv.Atoi(parts[0])
			if err != nil {
				return j, err
			}
			bits := strings.TrimSpace(parts[1])
			for i, ch := range bits {
				idx := off + i
				if ch == '1' {
					fuses[idx] = true
				} else if ch == '0' {
					fuses[idx] = false
				} else {
					return j, fmt.Errorf("invalid bit %q", ch)
				}
				if idx > maxIndex {
					maxIndex = idx
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return j, err
	}
	if j.QF == 0 {
		j.QF = maxIndex + 1
	}
	j.Fuses = make([]bool, j.QF)
	for i := 0; i < j.QF; i++ {
		if v, ok := fuses[i]; ok {
			j.Fuses[i] = v
		} else {
			j.Fuses[i] = false
		}
	}
	return j, nil
}

func FuseChecksum(bits []bool) uint16 {
	var (
		bitNum  uint8
		byteVal uint8
		sum     uint16
	)
	for _, bit := range bits {
		if bit {
			byteVal |= 1 << bitNum
		}
		bitNum++
		if bitNum == 8 {
			sum += uint16(byteVal)
			byteVal = 0
			bitNum = 0
		}
	}
	return sum + uint16(byteVal)
}

// FuseSectionName16V8 returns the section name for a given fuse index on a GAL16V8.
// JED layout: Logic(2048) + XOR(8) + SIG(64) + AC1(8) + PT(64) + SYN(1) + AC0(1) = 2194
func FuseSectionName16V8(idx int) string {
	switch {
	case idx < 2048:
		row := idx / 32
		col := idx % 32
		olmcNames := []string{"OLMC7(pin19)", "OLMC6(pin18)", "OLMC5(pin17)", "OLMC4(pin16)", "OLMC3(pin15)", "OLMC2(pin14)", "OLMC1(pin13)", "OLMC0(pin12)"}
		olmcIdx := row / 8
		olmcRow := row % 8
		name := "?"
		if olmcIdx < len(olmcNames) {
			name = olmcNames[olmcIdx]
		}
		return fmt.Sprintf("Logic %s row%d col%d", name, olmcRow, col)
	case idx < 2056:
		return fmt.Sprintf("XOR[%d]", idx-2048)
	case idx < 2120:
		return fmt.Sprintf("SIG[%d]", idx-2056)
	case idx < 2128:
		return fmt.Sprintf("AC1[%d]", idx-2120)
	case idx < 2192:
		return fmt.Sprintf("PT[%d]", idx-2128)
	case idx == 2192:
		return "SYN"
	case idx == 2193:
		return "AC0"
	default:
		return fmt.Sprintf("unknown(%d)", idx)
	}
}

// FuseSectionName22V10 returns the section name for a given fuse index on a GAL22V10.
func FuseSectionName22V10(idx int) string {
	switch {
	case idx < 5808:
		row := idx / 44
		col := idx % 44
		// OLMC boundaries
		olmcStarts := []int{0, 1, 10, 21, 34, 49, 66, 83, 98, 111, 122, 131}
		olmcSizes := []int{1, 9, 11, 13, 15, 17, 17, 15, 13, 11, 9, 1}
		olmcPins := []string{"AR", "pin23", "pin22", "pin21", "pin20", "pin19", "pin18", "pin17", "pin16", "pin15", "pin14", "SP"}
		for i := len(olmcStarts) - 1; i >= 0; i-- {
			if row >= olmcStarts[i] {
				localRow := row - olmcStarts[i]
				return fmt.Sprintf("Logic OLMC(%s) row%d/%d col%d", olmcPins[i], localRow, olmcSizes[i], col)
			}
		}
		return fmt.Sprintf("Logic row%d col%d", row, col)
	case idx < 5828:
		// S0/S1 pairs, interleaved per OLMC.
		n := idx - 5808
		if n%2 == 0 {
			return fmt.Sprintf("S0[%d]", n/2)
		}
		return fmt.Sprintf("S1[%d]", n/2)
	case idx < 5892:
		return fmt.Sprintf("SIG[%d]", idx-5828)
	default:
		return fmt.Sprintf("unknown(%d)", idx)
	}
}

// FuseSectionName20V8 returns the section name for a given fuse index on a GAL20V8.
// JED layout: Logic(40*64=2560) + XOR(8) + SIG(64) + AC1(8) + PT(64) + SYN(1) + AC0(1) = 2706
func FuseSectionName20V8(idx int) string {
	switch {
	case idx < 2560:
		row := idx / 40
		col := idx % 40
		olmcIdx := row / 8
		olmcRow := row % 8
		return fmt.Sprintf("Logic OLMC%d(pin%d) row%d col%d", olmcIdx, 22-olmcIdx, olmcRow, col)
	case idx < 2568:
		return fmt.Sprintf("XOR[%d]", idx-2560)
	case idx < 2632:
		return fmt.Sprintf("SIG[%d]", idx-2568)
	case idx < 2640:
		return fmt.Sprintf("AC1[%d]", idx-2632)
	case idx < 2704:
		return fmt.Sprintf("PT[%d]", idx-2640)
	case idx == 2704:
		return "SYN"
	case idx == 2705:
		return "AC0"
	default:
		return fmt.Sprintf("unknown(%d)", idx)
	}
}

// FuseSectionName20RA10 returns the section name for a given fuse index on
// a GAL20RA10. JED layout: Logic(40*80=3200) + S0(10) + SIG(64) = 3274;
// this chip carries no AC1/PT/SYN/AC0 section.
func FuseSectionName20RA10(idx int) string {
	switch {
	case idx < 3200:
		row := idx / 40
		col := idx % 40
		olmcIdx := row / 8
		olmcRow := row % 8
		return fmt.Sprintf("Logic OLMC%d(pin%d) row%d col%d", olmcIdx, 23-olmcIdx, olmcRow, col)
	case idx < 3210:
		return fmt.Sprintf("S0[%d]", idx-3200)
	case idx < 3274:
		return fmt.Sprintf("SIG[%d]", idx-3210)
	default:
		return fmt.Sprintf("unknown(%d)", idx)
	}
}

// CompareJEDEC compares two parsed JEDEC structs and returns a human-readable diff.
// qf is used to pick the right chip section names.
func CompareJEDEC(got, want JEDEC) string {
	if got.QF != want.QF {
		return fmt.Sprintf("QF mismatch: got %d want %d", got.QF, want.QF)
	}
	if len(got.Fuses) != len(want.Fuses) {
		return fmt.Sprintf("fuse length mismatch: got %d want %d", len(got.Fuses), len(want.Fuses))
	}

	sectionName := func(idx int) string {
		switch got.QF {
		case 2194:
			return FuseSectionName16V8(idx)
		case 2706:
			return FuseSectionName20V8(idx)
		case 5892:
			return FuseSectionName22V10(idx)
		case 3274:
			return FuseSectionName20RA10(idx)
		default:
			return fmt.Sprintf("fuse[%d]", idx)
		}
	}

	var buf bytes.Buffer
	mismatches := 0
	for i := range got.Fuses {
		if got.Fuses[i] != want.Fuses[i] {
			mismatches++
			gotVal := '0'
			wantVal := '0'
			if got.Fuses[i] {
				gotVal = '1'
			}
			if want.Fuses[i] {
				wantVal = '1'
			}
			fmt.Fprintf(&buf, "  fuse[%d] %s: got=%c want=%c\n", i, sectionName(i), gotVal, wantVal)
			if mismatches >= 40 {
				fmt.Fprintf(&buf, "  ... (%d+ mismatches, truncated)\n", mismatches)
				break
			}
		}
	}
	if mismatches == 0 {
		return ""
	}
	return fmt.Sprintf("%d fuse mismatches:\n%s", mismatches, buf.String())
}

// NormalizeJEDEC re-chunks a parsed JEDEC fuse stream into fixed-width
// *L lines of rowLen bits, for byte-for-byte comparison between two
// JEDEC texts that differ only in line chunking. rowLen should match the
// chip's AND-array row width (gal.Chip.RowWidth()) for a faithful
// normalization of the logic section.
func NormalizeJEDEC(data []byte, rowLen int) ([]byte, error) {
	j, err := ParseJEDEC(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "*QF%d\n", j.QF)
	fmt.Fprintf(&buf, "*G%d\n", j.G)
	for i, b := range j.Fuses {
		if i%rowLen == 0 {
			fmt.Fprintf(&buf, "*L%05d ", i)
		}
		if b {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
		if i%rowLen == rowLen-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
