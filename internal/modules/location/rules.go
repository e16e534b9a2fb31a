// README: Curated distance rule tables (overrides, heuristic fallback, Plus Codes).
package location

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RuleTable holds the read-only lookup data the resolver consults before and
// after geocoding. Rules are evaluated in order; first match wins.
type RuleTable struct {
	Overrides []Rule          `yaml:"overrides"`
	Fallback  []Rule          `yaml:"fallback"`
	PlusCodes []PlusCodeEntry `yaml:"plus_codes"`
}

// DefaultRules returns the table shipped with the binary.
func DefaultRules() (RuleTable, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads a rule table from a YAML file.
func LoadRules(path string) (RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleTable{}, fmt.Errorf("reading rules %s: %w", path, err)
	}
	t, err := ParseRules(data)
	if err != nil {
		return RuleTable{}, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	return t, nil
}

// ParseRules decodes and normalises a YAML rule table.
func ParseRules(data []byte) (RuleTable, error) {
	var t RuleTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return RuleTable{}, err
	}
	if err := normaliseRules("overrides", t.Overrides); err != nil {
		return RuleTable{}, err
	}
	if err := normaliseRules("fallback", t.Fallback); err != nil {
		return RuleTable{}, err
	}
	for i := range t.PlusCodes {
		code := strings.ToUpper(strings.TrimSpace(t.PlusCodes[i].Code))
		if !strings.Contains(code, "+") {
			return RuleTable{}, fmt.Errorf("plus_codes[%d]: %q has no '+'", i, t.PlusCodes[i].Code)
		}
		t.PlusCodes[i].Code = code
	}
	return t, nil
}

func normaliseRules(section string, rules []Rule) error {
	for i := range rules {
		p := strings.ToLower(strings.TrimSpace(rules[i].Pattern))
		if p == "" {
			return fmt.Errorf("%s[%d]: empty pattern", section, i)
		}
		if rules[i].DistanceKm < 0 {
			return fmt.Errorf("%s[%d]: negative distance %v", section, i, rules[i].DistanceKm)
		}
		rules[i].Pattern = p
	}
	return nil
}

// MatchRules returns the first rule whose pattern occurs in address.
func MatchRules(rules []Rule, address string) (Rule, bool) {
	addr := strings.ToLower(address)
	for _, r := range rules {
		if strings.Contains(addr, r.Pattern) {
			return r, true
		}
	}
	return Rule{}, false
}
