package plate

import (
	"strings"

	"toll_plaza/internal/domain"
)

// Result is everything the parser could find in one piece of text.
type Result struct {
	Components domain.PlateComponents
	Assembly
	ClassRule    string
	SerialLayout string
}

type Parser struct {
	gazetteer *Gazetteer
}

// NewParser returns a parser over g, or over the built-in tables when g is nil.
func NewParser(g *Gazetteer) *Parser {
	if g == nil {
		g = DefaultGazetteer()
	}
	return &Parser{gazetteer: g}
}

// Parse extracts plate components from recognized text. Missing components
// are left empty; nothing here is an error.
func (p *Parser) Parse(text string) Result {
	flat := strings.Join(domain.SplitLines(text), " ")

	var r Result
	r.Components.AreaName, r.Components.MetroTag = p.gazetteer.AreaName(flat)
	r.Components.VehicleClass, r.ClassRule, _ = p.gazetteer.MatchClass(flat)
	r.Components.Serial, r.SerialLayout, _ = ExtractSerial(flat)
	r.Assembly = Assemble(r.Components)
	return r
}

// LookupKeys returns the registry keys worth trying for an operator-typed
// plate, most literal first: the input itself with Bangla digits, then its
// canonical form when the parser can complete it.
func (p *Parser) LookupKeys(input string) []string {
	literal := ToBanglaDigits(strings.Join(strings.Fields(input), " "))
	if literal == "" {
		return nil
	}
	keys := []string{literal}
	if r := p.Parse(input); r.Complete && r.Canonical != literal {
		keys = append(keys, r.Canonical)
	}
	return keys
}
