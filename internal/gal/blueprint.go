package gal

// Blueprint is the per-chip configuration assembled from a parsed
// source file: one OLMC record per macrocell, plus (GAL22V10 only) a
// global asynchronous-reset term and a global synchronous-preset term.
type Blueprint struct {
	Chip Chip
	Sig  []byte
	Pins []string
	OLMC []OLMC
	AR   *Term
	SP   *Term
}

// NewBlueprint allocates an empty Blueprint with default OLMC records
// sized to the chip's macrocell count.
func NewBlueprint(chip Chip) Blueprint {
	return Blueprint{
		Chip: chip,
		OLMC: make([]OLMC, chip.NumOLMCs()),
	}
}

// BlueprintFrom assembles a Blueprint from parsed Content, mutating each
// OLMC exactly once per equation in source order. The first error
// terminates processing.
func BlueprintFrom(content Content) (Blueprint, error) {
	bp := NewBlueprint(content.Chip)

	for _, eqn := range content.Eqns {
		if err := bp.addEquation(eqn); err != nil {
			return Blueprint{}, err
		}
	}

	bp.Sig = content.Sig
	bp.Pins = content.Pins
	return bp, nil
}

// addEquation steers one equation to the right OLMC facet setter (or the
// global AR/SP slots), marking feedback along the way.
func (bp *Blueprint) addEquation(eqn RawEquation) error {
	// Mark feedback: any RHS literal whose pin maps to an OLMC sets that
	// OLMC's Feedback, regardless of whether the pin is actually driven.
	// The downstream fitter interprets the overapproximation.
	for _, lit := range eqn.RHS {
		if i, ok := bp.Chip.PinToOLMC(lit.Pin); ok {
			bp.OLMC[i].Feedback = true
		}
	}

	term, err := EqnToTerm(bp.Chip, eqn)
	if err != nil {
		return err
	}

	switch eqn.LHS.Kind {
	case LHSAr:
		if bp.Chip != ChipGAL22V10 || bp.AR != nil {
			return errAt(eqn.Line, ErrRepeatedARSP)
		}
		bp.AR = &term
		return nil
	case LHSSp:
		if bp.Chip != ChipGAL22V10 || bp.SP != nil {
			return errAt(eqn.Line, ErrRepeatedARSP)
		}
		bp.SP = &term
		return nil
	}

	olmcIdx, ok := bp.Chip.PinToOLMC(eqn.LHS.Pin.Pin)
	if !ok {
		return errAt(eqn.Line, ErrNotAnOutput)
	}
	olmc := &bp.OLMC[olmcIdx]

	switch eqn.LHS.Suffix {
	case SuffixNone, SuffixR, SuffixT:
		return olmc.SetBase(eqn.LHS.Pin, term, eqn.LHS.Suffix)
	case SuffixE:
		return olmc.SetEnable(bp.Chip, eqn.LHS.Pin, term)
	case SuffixCLK:
		return olmc.SetClock(eqn.LHS.Pin, term)
	case SuffixARST:
		return olmc.SetArst(eqn.LHS.Pin, term)
	case SuffixAPRST:
		return olmc.SetAprst(eqn.LHS.Pin, term)
	default:
		panic("gal: unreachable suffix in addEquation")
	}
}
