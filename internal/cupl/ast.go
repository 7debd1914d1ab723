package cupl

import "github.com/pborges/galc/internal/gal"

// Content is everything the parser recovers from one source file: header
// metadata for the JEDEC comment block, the declared pin table, and the
// fully-resolved equation set ready for gal.BlueprintFrom.
type Content struct {
	Meta map[string]string
	Pins map[int]PinDef
	GAL  gal.Content
}

// PinDef is one `PIN n = name;` declaration.
type PinDef struct {
	Name      string
	ActiveLow bool
}

// symbol is what an identifier resolves to while parsing equations: a
// pin number plus the polarity recorded at its PIN declaration (or the
// implicit VCC/GND sentinels).
type symbol struct {
	pin       int
	activeLow bool
}
