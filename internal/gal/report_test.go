package gal

import (
	"strings"
	"testing"
)

func namedPins(chip Chip) []string {
	pins := make([]string, chip.NumPins())
	for i := range pins {
		pins[i] = "P" // placeholder names; report layout is what's under test
	}
	pins[chip.NumPins()-1] = "VCC"
	pins[chip.NumPins()/2-1] = "GND"
	return pins
}

func TestChipDiagramContainsChipName(t *testing.T) {
	out := ChipDiagram(ChipGAL16V8, namedPins(ChipGAL16V8))
	if !strings.Contains(out, "GAL16V8") {
		t.Errorf("chip diagram missing chip name:\n%s", out)
	}
}

func TestChipDiagram20RA10Name(t *testing.T) {
	out := ChipDiagram(ChipGAL20RA10, namedPins(ChipGAL20RA10))
	if !strings.Contains(out, "GAL20RA10") {
		t.Errorf("chip diagram missing GAL20RA10:\n%s", out)
	}
}

func TestPinTableFlagsVCCAndGND(t *testing.T) {
	pins := namedPins(ChipGAL16V8)
	out := PinTable(ChipGAL16V8, pins, ModeSimple, make([]OLMCPinType, ChipGAL16V8.NumOLMCs()))
	if !strings.Contains(out, "| VCC") {
		t.Error("pin table missing VCC row")
	}
	if !strings.Contains(out, "| GND") {
		t.Error("pin table missing GND row")
	}
}

func TestFuseListingRunsWithoutPanic(t *testing.T) {
	bp := NewBlueprint(ChipGAL16V8)
	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	out := FuseListing(g, namedPins(ChipGAL16V8))
	if !strings.Contains(out, "Pin 19") {
		t.Errorf("fuse listing should start at the highest OLMC pin (19):\n%s", out)
	}
}

func TestFuseListing22V10ARRowRendering(t *testing.T) {
	g := NewGAL(ChipGAL22V10)
	for i := range g.Fuses {
		g.Fuses[i] = false
	}
	g.Fuses[0] = true

	out := FuseListing(g, namedPins(ChipGAL22V10))
	// Row 0 is the AR row: column 0 intact renders '-', everything else
	// 'x', with a space before every 4-column group.
	want := "AR\n  0  -xxx xxxx xxxx xxxx xxxx xxxx xxxx xxxx xxxx xxxx xxxx"
	if !strings.Contains(out, want) {
		t.Errorf("fuse listing AR row mismatch; want substring %q in:\n%s", want, out)
	}
}

func TestFuseListing22V10IncludesARSP(t *testing.T) {
	bp := NewBlueprint(ChipGAL22V10)
	g, err := BuildGAL(bp)
	if err != nil {
		t.Fatalf("BuildGAL: %v", err)
	}
	out := FuseListing(g, namedPins(ChipGAL22V10))
	if !strings.Contains(out, "AR") || !strings.Contains(out, "SP") {
		t.Errorf("fuse listing should mention AR and SP rows on GAL22V10:\n%s", out)
	}
}
