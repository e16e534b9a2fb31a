// README: Plus Code extraction and lookup against the verified code table.
package location

import (
	"regexp"
	"strings"

	"kainan/internal/types"
)

// Open Location Code alphabet plus the separator. Tokens shorter than six
// characters are ignored.
var plusCodeToken = regexp.MustCompile(`(?i)[23456789CFGHJMPQRVWX+]{6,}`)

// ExtractPlusCodes returns the upper-cased Plus Code candidates found in address.
func ExtractPlusCodes(address string) []string {
	var codes []string
	for _, tok := range plusCodeToken.FindAllString(address, -1) {
		if strings.Count(tok, "+") != 1 {
			continue
		}
		codes = append(codes, strings.ToUpper(tok))
	}
	return codes
}

// LookupPlusCode resolves a Plus Code embedded in address against the table.
// This is not an Open Location Code decoder: only codes that were verified and
// tabulated resolve. A full code resolves when it ends with a tabulated short code.
func (t RuleTable) LookupPlusCode(address string) (types.Point, string, bool) {
	for _, code := range ExtractPlusCodes(address) {
		for _, e := range t.PlusCodes {
			if code == e.Code || strings.HasSuffix(code, e.Code) {
				return types.Point{Lat: e.Lat, Lng: e.Lng}, e.Code, true
			}
		}
	}
	return types.Point{}, "", false
}
