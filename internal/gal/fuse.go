package gal

import "fmt"

// Mode is the GAL16V8/GAL20V8 operating mode. Both chips encode the
// same simple/complex/registered structure in their Syn/AC0 bits;
// detectMode picks one from the accumulated blueprint.
type Mode int

const (
	ModeAuto Mode = iota
	ModeSimple
	ModeComplex
	ModeRegistered
)

// GAL holds the flat fuse bit arrays consumed by the JEDEC writer and
// the report generators. Every array is opaque outside this package
// except for its indexing scheme, which the fuse-listing report relies
// on.
type GAL struct {
	Chip Chip

	Fuses []bool
	Xor   []bool // also called S0 on GAL22V10/GAL20RA10
	Sig   []bool
	AC1   []bool // GAL16V8/GAL20V8 only
	S1    []bool // GAL22V10 only
	PT    []bool // GAL16V8/GAL20V8 only
	Syn   bool   // GAL16V8/GAL20V8 only
	AC0   bool   // GAL16V8/GAL20V8 only
}

func NewGAL(chip Chip) *GAL {
	olmcs := chip.NumOLMCs()
	g := &GAL{
		Chip:  chip,
		Fuses: make([]bool, chip.RowWidth()*chip.RowCount()),
		Xor:   make([]bool, olmcs),
		Sig:   make([]bool, 64),
	}
	switch chip {
	case ChipGAL16V8, ChipGAL20V8:
		g.AC1 = make([]bool, olmcs)
		g.PT = make([]bool, 64)
	case ChipGAL22V10:
		g.S1 = make([]bool, olmcs)
	}
	for i := range g.Fuses {
		g.Fuses[i] = true
	}
	return g
}

func (g *GAL) SetSimpleMode() { g.Syn, g.AC0 = true, false }
func (g *GAL) setComplexMode() { g.Syn, g.AC0 = true, true }
func (g *GAL) setRegisteredMode() { g.Syn, g.AC0 = false, true }

// AddTerm programs one Term into the fuse array at the given row bounds,
// blowing fuses (setting them false) for every literal present and
// clearing every row beyond the term's rows up to MaxRows.
func (g *GAL) AddTerm(term Term, bounds Bounds) error {
	b := bounds
	capacity := b.MaxRows - b.RowOffset
	for _, row := range term.Pins {
		if b.RowOffset == b.MaxRows {
			if capacity == 1 {
				return fmt.Errorf("line %d: more than one product term", term.Line)
			}
			return fmt.Errorf("line %d: too many product terms (max %d)", term.Line, capacity)
		}
		for _, lit := range row {
			if err := g.setAnd(b.StartRow+b.RowOffset, lit.Pin, lit.Neg); err != nil {
				return fmt.Errorf("line %d: %w", term.Line, err)
			}
		}
		b.RowOffset++
	}
	g.clearRows(b)
	return nil
}

// AddTermOpt is AddTerm for an optional term, substituting the
// false-constant when absent.
func (g *GAL) AddTermOpt(term *Term, bounds Bounds) error {
	if term == nil {
		return g.AddTerm(FalseTerm(0), bounds)
	}
	return g.AddTerm(*term, bounds)
}

func (g *GAL) clearRows(bounds Bounds) {
	rowLen := g.Chip.RowWidth()
	start := (bounds.StartRow + bounds.RowOffset) * rowLen
	end := (bounds.StartRow + bounds.MaxRows) * rowLen
	for i := start; i < end; i++ {
		g.Fuses[i] = false
	}
}

func (g *GAL) setAnd(row, pin int, neg bool) error {
	rowLen := g.Chip.RowWidth()
	col, err := pinToColumn(g.Chip, pin)
	if err != nil {
		return err
	}
	off := 0
	if neg {
		off = 1
	}
	idx := row*rowLen + col + off
	if idx < 0 || idx >= len(g.Fuses) {
		return fmt.Errorf("fuse index out of range")
	}
	g.Fuses[idx] = false
	return nil
}

// BuildGAL lowers a finished Blueprint into a fuse map: per-chip mode
// detection, signature, XOR and AC1/S1 bits, the global AR/SP rows on
// GAL22V10, and every OLMC's product terms.
func BuildGAL(bp Blueprint) (*GAL, error) {
	g := NewGAL(bp.Chip)

	if bp.Chip == ChipGAL16V8 || bp.Chip == ChipGAL20V8 {
		switch detectMode(bp) {
		case ModeSimple:
			g.SetSimpleMode()
		case ModeComplex:
			g.setComplexMode()
		case ModeRegistered:
			g.setRegisteredMode()
		}
	}

	setSig(g, bp.Sig)
	setXors(g, bp)
	setTristate(g, bp)

	if bp.Chip.HasGlobalARSP() {
		if err := setGlobalARSP(g, bp); err != nil {
			return nil, err
		}
	}
	if err := setCoreEqns(g, bp); err != nil {
		return nil, err
	}
	setPTs(g)
	return g, nil
}

// detectMode determines the GAL16V8/GAL20V8 operating mode from the
// blueprint: any Registered output forces registered mode; any explicit
// OE term, any use of the two macrocell pins that have no simple-mode
// feedback column as inputs, or any feedback-driving output forces
// complex mode; otherwise simple mode.
func detectMode(bp Blueprint) Mode {
	for _, olmc := range bp.OLMC {
		if olmc.Output != nil && olmc.Output.Mode == Registered {
			return ModeRegistered
		}
	}
	for _, olmc := range bp.OLMC {
		if olmc.TriCon != nil {
			return ModeComplex
		}
	}
	d := bp.Chip.data()
	midLo, midHi := middlePair(d.minOLMC, d.maxOLMC)
	for _, olmc := range bp.OLMC {
		if olmc.Output == nil {
			continue
		}
		for _, row := range olmc.Output.Term.Pins {
			for _, pin := range row {
				if pin.Pin == midLo || pin.Pin == midHi {
					return ModeComplex
				}
			}
		}
	}
	for _, olmc := range bp.OLMC {
		if olmc.Feedback && olmc.Output != nil {
			return ModeComplex
		}
	}
	return ModeSimple
}

func setSig(g *GAL, sig []byte) {
	for i := 0; i < len(sig) && i < 8; i++ {
		c := sig[i]
		for j := 0; j < 8; j++ {
			g.Sig[i*8+j] = (c<<j)&0x80 != 0
		}
	}
}

func setXors(g *GAL, bp Blueprint) {
	olmcs := len(bp.OLMC)
	for i, olmc := range bp.OLMC {
		if olmc.Output != nil && olmc.Active == ActiveHigh {
			g.Xor[olmcs-1-i] = true
		}
	}
}

// setTristate configures the AC1 bits (GAL16V8/GAL20V8) or S1 bits
// (GAL22V10) for each OLMC. On GAL22V10, and in complex/registered modes
// on GAL16V8/GAL20V8, combinatorial outputs are implemented as tristate
// with OE asserted. Registered outputs get AC1/S1=0. GAL20RA10 carries
// no such per-OLMC bit.
func setTristate(g *GAL, bp Blueprint) {
	comIsTri := false
	switch bp.Chip {
	case ChipGAL22V10:
		comIsTri = true
	case ChipGAL16V8, ChipGAL20V8:
		comIsTri = g.AC0 // AC0=true in both complex and registered modes
	}

	isSimple := (bp.Chip == ChipGAL16V8 || bp.Chip == ChipGAL20V8) && g.Syn && !g.AC0

	olmcs := len(bp.OLMC)
	for i, olmc := range bp.OLMC {
		isTri := false
		switch {
		case olmc.Output == nil:
			// In simple mode, unused OLMCs are inputs (AC1=1). Otherwise
			// unused OLMCs stay 0 unless fed back into the array.
			if isSimple {
				isTri = true
			} else {
				isTri = olmc.Feedback
			}
		case olmc.Output.Mode == Registered:
			isTri = false
		default:
			isTri = comIsTri
		}
		if !isTri {
			continue
		}
		switch bp.Chip {
		case ChipGAL16V8, ChipGAL20V8:
			g.AC1[olmcs-1-i] = true
		case ChipGAL22V10:
			g.S1[olmcs-1-i] = true
		}
	}
}

func setPTs(g *GAL) {
	for i := range g.PT {
		g.PT[i] = true
	}
}

// setGlobalARSP places the GAL22V10 global AR/SP terms at their fixed
// single-row slots.
func setGlobalARSP(g *GAL, bp Blueprint) error {
	if err := g.AddTermOpt(bp.AR, Bounds{StartRow: bp.Chip.ARRow(), MaxRows: 1}); err != nil {
		return err
	}
	if err := g.AddTermOpt(bp.SP, Bounds{StartRow: bp.Chip.SPRow(), MaxRows: 1}); err != nil {
		return err
	}
	return nil
}

// setCoreEqns places each OLMC's terms into the fuse array. Every driven
// OLMC on GAL22V10 reserves its first row for the OE term, as do
// non-registered outputs on GAL16V8/GAL20V8 once AC0 is set (complex and
// registered modes). On GAL20RA10 the first four rows of a driven OLMC
// are the OE, clock, async-reset and async-preset product terms; the sum
// terms get the remaining rows. A reserved row with no explicit term
// stays all-1s (OE always on).
func setCoreEqns(g *GAL, bp Blueprint) error {
	for i, olmc := range bp.OLMC {
		bounds := g.Chip.BoundsForOLMC(i)

		if olmc.Output != nil {
			switch bp.Chip {
			case ChipGAL20RA10:
				ctl := []*Term{olmc.TriCon, olmc.Clock, olmc.Arst, olmc.Aprst}
				for n, t := range ctl {
					if t == nil {
						continue
					}
					rowBounds := Bounds{StartRow: bounds.StartRow + n, MaxRows: 1}
					if err := g.AddTerm(*t, rowBounds); err != nil {
						return err
					}
				}
				bounds.RowOffset = len(ctl)
			case ChipGAL22V10:
				bounds.RowOffset = 1
			case ChipGAL16V8, ChipGAL20V8:
				if g.AC0 && olmc.Output.Mode != Registered {
					bounds.RowOffset = 1
				}
			}
			if olmc.TriCon != nil && bp.Chip != ChipGAL20RA10 {
				oeBounds := Bounds{StartRow: bounds.StartRow, MaxRows: 1}
				if err := g.AddTerm(*olmc.TriCon, oeBounds); err != nil {
					return err
				}
			}
		}

		if err := g.AddTermOpt(olmcTermOrNil(olmc), bounds); err != nil {
			return err
		}
	}
	return nil
}

func olmcTermOrNil(olmc OLMC) *Term {
	if olmc.Output == nil {
		return nil
	}
	return &olmc.Output.Term
}
