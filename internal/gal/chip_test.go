package gal

import "testing"

func TestParseChip(t *testing.T) {
	cases := map[string]Chip{
		"g16v8as":  ChipGAL16V8,
		"G16V8":    ChipGAL16V8,
		"g20v8as":  ChipGAL20V8,
		"g22v10":   ChipGAL22V10,
		"G20RA10":  ChipGAL20RA10,
		"g20ra10b": ChipGAL20RA10,
	}
	for in, want := range cases {
		got, err := ParseChip(in)
		if err != nil {
			t.Fatalf("ParseChip(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseChip(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseChipUnsupported(t *testing.T) {
	if _, err := ParseChip("g16v6"); err == nil {
		t.Fatal("expected error for unsupported device")
	}
}

func TestPinToOLMC(t *testing.T) {
	if idx, ok := ChipGAL16V8.PinToOLMC(12); !ok || idx != 0 {
		t.Errorf("pin 12 -> %d,%v, want 0,true", idx, ok)
	}
	if idx, ok := ChipGAL16V8.PinToOLMC(19); !ok || idx != 7 {
		t.Errorf("pin 19 -> %d,%v, want 7,true", idx, ok)
	}
	if _, ok := ChipGAL16V8.PinToOLMC(1); ok {
		t.Error("pin 1 should not map to an OLMC on GAL16V8")
	}
	if _, ok := ChipGAL16V8.PinToOLMC(20); ok {
		t.Error("pin 20 (VCC) should not map to an OLMC")
	}
}

func TestVCCGNDPins(t *testing.T) {
	if ChipGAL16V8.VCCPin() != 20 || ChipGAL16V8.GNDPin() != 10 {
		t.Errorf("GAL16V8 VCC/GND = %d/%d, want 20/10", ChipGAL16V8.VCCPin(), ChipGAL16V8.GNDPin())
	}
	if ChipGAL22V10.VCCPin() != 24 || ChipGAL22V10.GNDPin() != 12 {
		t.Errorf("GAL22V10 VCC/GND = %d/%d, want 24/12", ChipGAL22V10.VCCPin(), ChipGAL22V10.GNDPin())
	}
}

func TestNumOLMCs(t *testing.T) {
	cases := map[Chip]int{
		ChipGAL16V8:   8,
		ChipGAL20V8:   8,
		ChipGAL22V10:  10,
		ChipGAL20RA10: 10,
	}
	for chip, want := range cases {
		if got := chip.NumOLMCs(); got != want {
			t.Errorf("%s.NumOLMCs() = %d, want %d", chip.Name(), got, want)
		}
	}
}

func TestBoundsForOLMCGAL22V10(t *testing.T) {
	// OLMC index 0 is pin 14, the lowest output pin, with a 9-row budget.
	// Sanity-check that the bounds and cap tables agree rather than
	// re-deriving real silicon values.
	b := ChipGAL22V10.BoundsForOLMC(0)
	if b.MaxRows != ChipGAL22V10.OLMCCapacity(0) {
		t.Errorf("BoundsForOLMC(0).MaxRows = %d, want %d", b.MaxRows, ChipGAL22V10.OLMCCapacity(0))
	}
}

func TestOLMCCapacity22V10(t *testing.T) {
	want := []int{9, 11, 13, 15, 17, 17, 15, 13, 11, 9}
	for i, w := range want {
		if got := ChipGAL22V10.OLMCCapacity(i); got != w {
			t.Errorf("OLMCCapacity(%d) = %d, want %d", i, got, w)
		}
	}
	// The two trailing descriptor slots hold AR and SP with one row each.
	if ChipGAL22V10.OLMCCapacity(10) != 1 || ChipGAL22V10.OLMCCapacity(11) != 1 {
		t.Error("AR/SP descriptor slots should have capacity 1")
	}
	if ChipGAL22V10.BoundsForOLMC(10).StartRow != ChipGAL22V10.ARRow() {
		t.Error("descriptor slot 10 should start at the AR row")
	}
	if ChipGAL22V10.BoundsForOLMC(11).StartRow != ChipGAL22V10.SPRow() {
		t.Error("descriptor slot 11 should start at the SP row")
	}
}

func TestRowWidthAndCount(t *testing.T) {
	if ChipGAL16V8.RowWidth()*ChipGAL16V8.RowCount() != 2048 {
		t.Errorf("GAL16V8 logic array size = %d, want 2048", ChipGAL16V8.RowWidth()*ChipGAL16V8.RowCount())
	}
	if ChipGAL22V10.RowWidth()*ChipGAL22V10.RowCount() != 5808 {
		t.Errorf("GAL22V10 logic array size = %d, want 5808", ChipGAL22V10.RowWidth()*ChipGAL22V10.RowCount())
	}
}
