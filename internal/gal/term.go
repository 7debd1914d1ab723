package gal

// Pin is a literal: a reference to pin `Pin`, optionally negated. The
// sentinel values NumPins (VCC) and NumPins/2 (GND) occupy the same
// integer space as real pins, so Term consumers must treat them as
// ordinary literals. The true/false lowering below only triggers when
// one appears alone as an equation's entire RHS.
type Pin struct {
	Pin int
	Neg bool
}

// Term is a sum-of-products: an OR of AND-groups, each AND-group a list
// of literals, in surface order (no commutative simplification). The
// empty-of-products and all-false conventions are the two sentinel
// constructors below.
type Term struct {
	Line int
	Pins [][]Pin
}

// TrueTerm is the constant-true term: one empty AND-group (vacuously
// true, since an AND of zero literals is true).
func TrueTerm(line int) Term {
	return Term{Line: line, Pins: [][]Pin{{}}}
}

// FalseTerm is the constant-false term: no AND-groups at all (an OR of
// zero disjuncts is false).
func FalseTerm(line int) Term {
	return Term{Line: line, Pins: nil}
}

// Suffix tags which facet of an OLMC an equation's LHS targets.
type Suffix int

const (
	SuffixNone Suffix = iota
	SuffixT
	SuffixR
	SuffixE
	SuffixCLK
	SuffixARST
	SuffixAPRST
)

// LHSKind distinguishes an ordinary output-pin equation from the
// GAL22V10-only global AR/SP equations.
type LHSKind int

const (
	LHSPin LHSKind = iota
	LHSAr
	LHSSp
)

// LHS is the left-hand side of an equation.
type LHS struct {
	Kind   LHSKind
	Pin    Pin // meaningful when Kind == LHSPin
	Suffix Suffix
}

// RawEquation is the parser's output for one equation: an LHS plus an
// ordered RHS literal list, with `IsOr[i]` true when an OR appears
// immediately before literal i (IsOr[0] is ignored).
type RawEquation struct {
	Line int
	LHS  LHS
	RHS  []Pin
	IsOr []bool
}

// Content is the parser's output for an entire source file.
type Content struct {
	Chip  Chip
	Sig   []byte
	Pins  []string
	Eqns  []RawEquation
}

// EqnToTerm lowers one equation's RHS into a Term. A single-literal RHS
// equal to the chip's VCC or GND sentinel pin yields the corresponding
// constant term; a negated power literal is an error. Otherwise the RHS
// is walked left to right, closing the current AND-group whenever IsOr
// is set. Surface order is preserved exactly; there is no commutative
// simplification.
func EqnToTerm(chip Chip, eqn RawEquation) (Term, error) {
	if len(eqn.RHS) == 1 {
		lit := eqn.RHS[0]
		switch lit.Pin {
		case chip.VCCPin():
			if lit.Neg {
				return Term{}, errAt(eqn.Line, ErrInvertedPower)
			}
			return TrueTerm(eqn.Line), nil
		case chip.GNDPin():
			if lit.Neg {
				return Term{}, errAt(eqn.Line, ErrInvertedPower)
			}
			return FalseTerm(eqn.Line), nil
		}
	}

	var ors [][]Pin
	var ands []Pin
	for i, lit := range eqn.RHS {
		if i > 0 && i < len(eqn.IsOr) && eqn.IsOr[i] {
			ors = append(ors, ands)
			ands = nil
		}
		ands = append(ands, lit)
	}
	ors = append(ors, ands)

	return Term{Line: eqn.Line, Pins: ors}, nil
}
