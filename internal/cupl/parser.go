package cupl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pborges/galc/internal/gal"
)

// Parse reads one CUPL-style source file into a Content ready for
// gal.BlueprintFrom. Statements are processed in order: META/DEVICE
// directives and PIN declarations build the symbol table equations are
// resolved against, so (as in real CUPL source) the pin table must
// precede the logic equations that reference it.
//
// The equation grammar is a flat AND/OR/NOT literal list, so equations
// are resolved directly into gal.RawEquation during parsing rather than
// being built as an expression tree and compiled in a separate pass.
func Parse(src []byte) (Content, error) {
	text := stripComments(string(src))
	stmts := splitStatements(text)
	offs := lineOffsets(text)

	c := Content{
		Meta: make(map[string]string),
		Pins: make(map[int]PinDef),
	}
	symbols := make(map[string]symbol)
	var chip gal.Chip
	chipKnown := false

	for _, st := range stmts {
		s := strings.TrimSpace(st.text)
		if s == "" {
			continue
		}
		line := lineOfOffset(offs, st.offset)
		upper := strings.ToUpper(s)

		switch {
		case matchesDirective(upper, "DEVICE"):
			val := strings.TrimSpace(s[len("DEVICE"):])
			parsed, err := gal.ParseChip(val)
			if err != nil {
				return c, fmt.Errorf("line %d: %w", line, err)
			}
			chip = parsed
			chipKnown = true
			c.GAL.Chip = chip
			symbols["VCC"] = symbol{pin: chip.VCCPin()}
			symbols["GND"] = symbol{pin: chip.GNDPin()}

		case matchesAnyDirective(upper, "NAME", "PARTNO", "REVISION", "DATE", "DESIGNER", "COMPANY", "LOCATION", "ASSEMBLY"):
			key, val := splitDirective(s)
			c.Meta[strings.Title(strings.ToLower(key))] = val

		case strings.HasPrefix(upper, "PIN "):
			if !chipKnown {
				return c, fmt.Errorf("line %d: PIN declared before DEVICE", line)
			}
			if err := parsePinStmt(&c, symbols, chip, s, line); err != nil {
				return c, err
			}

		default:
			if !chipKnown {
				return c, fmt.Errorf("line %d: equation before DEVICE", line)
			}
			if err := parseEquationStmt(&c, symbols, chip, s, line); err != nil {
				return c, err
			}
		}
	}

	if !chipKnown {
		return c, fmt.Errorf("missing DEVICE declaration")
	}

	c.GAL.Pins = make([]string, chip.NumPins())
	for pin, def := range c.Pins {
		c.GAL.Pins[pin-1] = def.Name
	}
	if partno := strings.TrimSpace(c.Meta["Partno"]); partno != "" {
		c.GAL.Sig = []byte(partno)
	}
	return c, nil
}

func matchesDirective(upper, key string) bool {
	return strings.HasPrefix(upper, key+" ") || upper == key
}

func matchesAnyDirective(upper string, keys ...string) bool {
	for _, k := range keys {
		if matchesDirective(upper, k) {
			return true
		}
	}
	return false
}

func splitDirective(s string) (key, val string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func parsePinStmt(c *Content, symbols map[string]symbol, chip gal.Chip, stmt string, line int) error {
	s := strings.TrimSpace(stmt)
	s = strings.TrimSpace(s[len("PIN"):])
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("line %d: invalid pin declaration", line)
	}
	pinNum, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("line %d: invalid pin number", line)
	}
	if pinNum < 1 || pinNum > chip.NumPins() {
		return fmt.Errorf("line %d: pin %d out of range for %s", line, pinNum, chip.Name())
	}

	val := strings.TrimSpace(parts[1])
	activeLow := false
	if strings.HasPrefix(val, "!") {
		activeLow = true
		val = strings.TrimSpace(val[1:])
	}
	if val == "" {
		return fmt.Errorf("line %d: invalid pin name", line)
	}

	c.Pins[pinNum] = PinDef{Name: val, ActiveLow: activeLow}
	symbols[val] = symbol{pin: pinNum, activeLow: activeLow}
	return nil
}

func parseEquationStmt(c *Content, symbols map[string]symbol, chip gal.Chip, stmt string, line int) error {
	parts := strings.SplitN(stmt, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("line %d: invalid equation", line)
	}
	lhsText := strings.TrimSpace(parts[0])
	rhsText := strings.TrimSpace(parts[1])
	if lhsText == "" || rhsText == "" {
		return fmt.Errorf("line %d: invalid equation", line)
	}

	lhs, err := parseLHS(lhsText, symbols, chip, line)
	if err != nil {
		return err
	}
	rhs, isOr, err := parseRHS(rhsText, symbols, line)
	if err != nil {
		return err
	}

	c.GAL.Eqns = append(c.GAL.Eqns, gal.RawEquation{
		Line: line,
		LHS:  lhs,
		RHS:  rhs,
		IsOr: isOr,
	})
	return nil
}

func parseLHS(text string, symbols map[string]symbol, chip gal.Chip, line int) (gal.LHS, error) {
	s := strings.TrimSpace(text)
	neg := false
	if strings.HasPrefix(s, "!") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return gal.LHS{}, fmt.Errorf("line %d: invalid equation LHS", line)
	}

	name := s
	suffixText := ""
	if idx := strings.Index(s, "."); idx >= 0 {
		name = s[:idx]
		suffixText = strings.ToUpper(s[idx+1:])
	}

	if suffixText == "" && (name == "AR" || name == "SP") {
		if chip != gal.ChipGAL22V10 {
			return gal.LHS{}, fmt.Errorf("line %d: %s is only valid on GAL22V10", line, name)
		}
		if name == "AR" {
			return gal.LHS{Kind: gal.LHSAr}, nil
		}
		return gal.LHS{Kind: gal.LHSSp}, nil
	}

	sym, ok := symbols[name]
	if !ok {
		return gal.LHS{}, fmt.Errorf("line %d: undefined output %q", line, name)
	}
	if sym.activeLow {
		neg = !neg
	}

	suffix, err := parseSuffix(suffixText, line)
	if err != nil {
		return gal.LHS{}, err
	}

	return gal.LHS{Kind: gal.LHSPin, Pin: gal.Pin{Pin: sym.pin, Neg: neg}, Suffix: suffix}, nil
}

func parseSuffix(text string, line int) (gal.Suffix, error) {
	switch text {
	case "":
		return gal.SuffixNone, nil
	case "T":
		return gal.SuffixT, nil
	case "D", "R":
		return gal.SuffixR, nil
	case "E", "OE":
		return gal.SuffixE, nil
	case "CLK", "CK":
		return gal.SuffixCLK, nil
	case "ARST":
		return gal.SuffixARST, nil
	case "APRST":
		return gal.SuffixAPRST, nil
	default:
		return 0, fmt.Errorf("line %d: unknown equation suffix %q", line, text)
	}
}

// parseRHS walks an equation's right-hand side into a flat literal list
// plus the IsOr boundary markers gal.EqnToTerm groups on: no
// parentheses, no operator precedence beyond AND binding tighter than
// OR at the surface-order level the grouping already preserves.
func parseRHS(text string, symbols map[string]symbol, line int) ([]gal.Pin, []bool, error) {
	lex := newLexer(text)

	first, err := parseLiteral(lex, symbols, line)
	if err != nil {
		return nil, nil, err
	}
	rhs := []gal.Pin{first}
	isOr := []bool{false}

	for {
		tok := lex.peek()
		switch tok.kind {
		case tokEOF:
			return rhs, isOr, nil
		case tokAnd, tokOr:
			lex.next()
			lit, err := parseLiteral(lex, symbols, line)
			if err != nil {
				return nil, nil, err
			}
			rhs = append(rhs, lit)
			isOr = append(isOr, tok.kind == tokOr)
		default:
			return nil, nil, fmt.Errorf("line %d: unexpected token %q", line, tok.text)
		}
	}
}

func parseLiteral(lex *lexer, symbols map[string]symbol, line int) (gal.Pin, error) {
	neg := false
	tok := lex.next()
	if tok.kind == tokNot {
		neg = true
		tok = lex.next()
	}
	if tok.kind != tokIdent {
		return gal.Pin{}, fmt.Errorf("line %d: expected identifier, got %q", line, tok.text)
	}
	sym, ok := symbols[tok.text]
	if !ok {
		return gal.Pin{}, fmt.Errorf("line %d: undefined symbol %q", line, tok.text)
	}
	if sym.activeLow {
		neg = !neg
	}
	return gal.Pin{Pin: sym.pin, Neg: neg}, nil
}

// Lexer for equation right-hand sides: identifiers plus ! (NOT), & (AND)
// and #, | or + (OR) only.
// No parentheses, no numeric or field tokens.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNot
	tokAnd
	tokOr
)

type token struct {
	kind tokenKind
	text string
}

type lexer struct {
	s string
	i int
}

func newLexer(s string) *lexer { return &lexer{s: s} }

func (l *lexer) peek() token {
	pos := l.i
	tok := l.next()
	l.i = pos
	return tok
}

func (l *lexer) next() token {
	for l.i < len(l.s) && unicode.IsSpace(rune(l.s[l.i])) {
		l.i++
	}
	if l.i >= len(l.s) {
		return token{kind: tokEOF}
	}
	switch l.s[l.i] {
	case '!':
		l.i++
		return token{kind: tokNot, text: "!"}
	case '&':
		l.i++
		return token{kind: tokAnd, text: "&"}
	case '#', '|', '+':
		l.i++
		return token{kind: tokOr, text: "#"}
	}

	if isIdentStart(l.s[l.i]) {
		start := l.i
		l.i++
		for l.i < len(l.s) && isIdentPart(l.s[l.i]) {
			l.i++
		}
		return token{kind: tokIdent, text: l.s[start:l.i]}
	}

	tok := token{kind: tokEOF, text: l.s[l.i : l.i+1]}
	l.i++
	return tok
}

func isIdentStart(b byte) bool {
	return unicode.IsLetter(rune(b)) || b == '_' || b == '$'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || unicode.IsDigit(rune(b))
}

// Statement splitting, shared across directive/pin/equation statements.

func stripComments(s string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				if s[i] == '\n' {
					out.WriteByte('\n')
				}
				i++
			}
			if i+1 < len(s) {
				i += 2
			}
			continue
		}
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '/' {
			i += 2
			for i < len(s) && s[i] != '\n' {
				i++
			}
			continue
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}

type statement struct {
	text   string
	offset int
}

func splitStatements(s string) []statement {
	var stmts []statement
	var buf strings.Builder
	start := 0
	for i, r := range s {
		if r == ';' {
			stmts = append(stmts, statement{text: buf.String(), offset: start})
			buf.Reset()
			start = i + 1
			continue
		}
		buf.WriteRune(r)
	}
	if buf.Len() > 0 {
		stmts = append(stmts, statement{text: buf.String(), offset: start})
	}
	return stmts
}

func lineOffsets(s string) []int {
	offs := []int{0}
	for i, r := range s {
		if r == '\n' {
			offs = append(offs, i+1)
		}
	}
	return offs
}

func lineOfOffset(lines []int, off int) int {
	line := 1
	for i := 0; i < len(lines); i++ {
		if lines[i] > off {
			return line
		}
		line++
	}
	return line
}
