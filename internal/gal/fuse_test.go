package gal

import (
	"strings"
	"testing"
)

func TestNewGALAllocatesByChip(t *testing.T) {
	g16 := NewGAL(ChipGAL16V8)
	if len(g16.AC1) == 0 || len(g16.PT) == 0 {
		t.Error("GAL16V8 should allocate AC1/PT")
	}
	if len(g16.S1) != 0 {
		t.Error("GAL16V8 should not allocate S1")
	}

	g22 := NewGAL(ChipGAL22V10)
	if len(g22.S1) == 0 {
		t.Error("GAL22V10 should allocate S1")
	}
	if len(g22.AC1) != 0 || len(g22.PT) != 0 {
		t.Error("GAL22V10 should not allocate AC1/PT")
	}

	ra10 := NewGAL(ChipGAL20RA10)
	if len(ra10.AC1) != 0 || len(ra10.PT) != 0 || len(ra10.S1) != 0 {
		t.Error("GAL20RA10 should carry no AC1/PT/S1 sections")
	}
}

func TestNewGALFusesStartIntact(t *testing.T) {
	g := NewGAL(ChipGAL16V8)
	for i, f := range g.Fuses {
		if !f {
			t.Fatalf("fuse %d should start true (unprogrammed)", i)
		}
	}
}

func TestAddTermTooManyRows(t *testing.T) {
	g := NewGAL(ChipGAL16V8)
	// GAL16V8 OLMC0 (pin12) has 8 rows; build a 9-AND-group term to overflow it.
	bounds := ChipGAL16V8.BoundsForOLMC(0)
	var rows [][]Pin
	for i := 0; i < bounds.MaxRows+1; i++ {
		rows = append(rows, []Pin{{Pin: 1}})
	}
	term := Term{Line: 7, Pins: rows}
	err := g.AddTerm(term, bounds)
	if err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestAddTermSingleRowOverflowMessage(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	bounds := Bounds{StartRow: 0, MaxRows: 1}
	term := Term{Line: 3, Pins: [][]Pin{{{Pin: 1}}, {{Pin: 2}}}}
	err := g.AddTerm(term, bounds)
	if err == nil {
		t.Fatal("expected error for single-row budget with two product terms")
	}
	if !strings.Contains(err.Error(), "more than one product term") {
		t.Errorf("single-row overflow message = %q, want it to mention \"more than one product term\"", err)
	}
}

func TestBuildGALSimpleModeDetection(t *testing.T) {
	bp := NewBlueprint(ChipGAL16V8)
	term := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	bp.OLMC[0].Output = &Output{Mode: Combinatorial, Term: term}
	bp.OLMC[0].Active = ActiveHigh

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	if !g.Syn || g.AC0 {
		t.Errorf("expected simple mode (Syn=true, AC0=false), got Syn=%v AC0=%v", g.Syn, g.AC0)
	}
	olmcs := len(bp.OLMC)
	if !g.Xor[olmcs-1-0] {
		t.Error("expected XOR set for ActiveHigh output")
	}
}

func TestBuildGALRegisteredModeDetection(t *testing.T) {
	bp := NewBlueprint(ChipGAL16V8)
	term := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	bp.OLMC[0].Output = &Output{Mode: Registered, Term: term}

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	if g.Syn || !g.AC0 {
		t.Errorf("expected registered mode (Syn=false, AC0=true), got Syn=%v AC0=%v", g.Syn, g.AC0)
	}
}

func TestBuildGALComplexModeFromTriCon(t *testing.T) {
	bp := NewBlueprint(ChipGAL16V8)
	term := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	bp.OLMC[0].Output = &Output{Mode: Tristate, Term: term}
	oe := Term{Line: 1, Pins: [][]Pin{{{Pin: 2}}}}
	bp.OLMC[0].TriCon = &oe

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	if !g.Syn || !g.AC0 {
		t.Errorf("expected complex mode (Syn=true, AC0=true), got Syn=%v AC0=%v", g.Syn, g.AC0)
	}
}

func TestBuildGALSimpleModeUnusedOLMCsAreInputs(t *testing.T) {
	bp := NewBlueprint(ChipGAL16V8)
	term := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	bp.OLMC[0].Output = &Output{Mode: Combinatorial, Term: term}

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	olmcs := len(bp.OLMC)
	if g.AC1[olmcs-1-0] {
		t.Error("driven combinatorial OLMC should have AC1=0 in simple mode")
	}
	for i := 1; i < olmcs; i++ {
		if !g.AC1[olmcs-1-i] {
			t.Errorf("unused OLMC %d should have AC1=1 (input) in simple mode", i)
		}
	}
}

func TestBuildGALMiddlePairInputForcesComplex(t *testing.T) {
	bp := NewBlueprint(ChipGAL16V8)
	// Pin 15 has no simple-mode feedback column, so reading it forces
	// complex mode.
	term := Term{Line: 1, Pins: [][]Pin{{{Pin: 15}}}}
	bp.OLMC[0].Output = &Output{Mode: Combinatorial, Term: term}
	bp.OLMC[3].Feedback = true

	if mode := detectMode(bp); mode != ModeComplex {
		t.Errorf("detectMode = %v, want ModeComplex", mode)
	}
}

func TestBuildGAL22V10ControlBits(t *testing.T) {
	bp := NewBlueprint(ChipGAL22V10)
	term := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	bp.OLMC[0].Output = &Output{Mode: Combinatorial, Term: term}
	bp.OLMC[1].Output = &Output{Mode: Registered, Term: term}

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	olmcs := len(bp.OLMC)
	if !g.S1[olmcs-1-0] {
		t.Error("combinatorial output on GAL22V10 should have S1=1")
	}
	if g.S1[olmcs-1-1] {
		t.Error("registered output on GAL22V10 should have S1=0")
	}
}

func TestBuildGAL22V10ReservesOERow(t *testing.T) {
	bp := NewBlueprint(ChipGAL22V10)
	term := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	// OLMC 9 is pin 23, whose block starts at row 1 (right after AR).
	bp.OLMC[9].Output = &Output{Mode: Combinatorial, Term: term}

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	rowLen := ChipGAL22V10.RowWidth()
	for c := 0; c < rowLen; c++ {
		if !g.Fuses[1*rowLen+c] {
			t.Fatalf("OE row (row 1) should stay all-intact with no explicit OE term; column %d blown", c)
		}
	}
	// Pin 1 sits at column 0 on the GAL22V10; the sum term lands on row 2.
	if g.Fuses[2*rowLen+0] {
		t.Error("sum term should occupy row 2 with pin 1's fuse blown")
	}
}

func TestBuildGAL20RA10ControlRows(t *testing.T) {
	bp := NewBlueprint(ChipGAL20RA10)
	sum := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	clk := Term{Line: 2, Pins: [][]Pin{{{Pin: 2}}}}
	// OLMC 9 is pin 23, whose block starts at row 0.
	bp.OLMC[9].Output = &Output{Mode: Registered, Term: sum}
	bp.OLMC[9].Clock = &clk

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	rowLen := ChipGAL20RA10.RowWidth()
	for c := 0; c < rowLen; c++ {
		if !g.Fuses[0*rowLen+c] {
			t.Fatalf("OE row (row 0) should stay all-intact with no explicit OE term; column %d blown", c)
		}
	}
	col2, err := pinToColumn(ChipGAL20RA10, 2)
	if err != nil {
		t.Fatalf("pinToColumn: %v", err)
	}
	if g.Fuses[1*rowLen+col2] {
		t.Error("clock term should occupy row 1 with pin 2's fuse blown")
	}
	col1, err := pinToColumn(ChipGAL20RA10, 1)
	if err != nil {
		t.Fatalf("pinToColumn: %v", err)
	}
	if g.Fuses[4*rowLen+col1] {
		t.Error("sum term should start at row 4 with pin 1's fuse blown")
	}
}

func TestBuildGALGlobalARSP(t *testing.T) {
	bp := NewBlueprint(ChipGAL22V10)
	arTerm := Term{Line: 1, Pins: [][]Pin{{{Pin: 1}}}}
	bp.AR = &arTerm

	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	// AR occupies row 0; its single AND-group should have blown a fuse
	// somewhere in that row.
	rowLen := g.Chip.RowWidth()
	blown := false
	for i := 0; i < rowLen; i++ {
		if !g.Fuses[i] {
			blown = true
			break
		}
	}
	if !blown {
		t.Error("expected AR row to have a blown fuse")
	}
}
