package location

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRules_Load(t *testing.T) {
	table, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules() error = %v", err)
	}
	if len(table.Overrides) == 0 || len(table.Fallback) == 0 || len(table.PlusCodes) == 0 {
		t.Fatalf("expected all sections populated, got %d/%d/%d",
			len(table.Overrides), len(table.Fallback), len(table.PlusCodes))
	}
}

func TestMatchRules_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Pattern: "balibago", DistanceKm: 3.5},
		{Pattern: "angeles", DistanceKm: 4.0},
	}
	r, ok := MatchRules(rules, "Fields Ave, BALIBAGO, Angeles City")
	if !ok || r.DistanceKm != 3.5 {
		t.Fatalf("expected balibago rule, got %+v ok=%v", r, ok)
	}
	r, ok = MatchRules(rules, "Miranda St, Angeles City")
	if !ok || r.DistanceKm != 4.0 {
		t.Fatalf("expected angeles rule, got %+v ok=%v", r, ok)
	}
	if _, ok := MatchRules(rules, "Tarlac City"); ok {
		t.Fatal("expected no match")
	}
}

func TestDefaultRules_CuratedOverrides(t *testing.T) {
	table, err := DefaultRules()
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]float64{
		"Florida Residences":              2.2,
		"SM City Pampanga":                13.1,
		"Blk 5 Lot 2, florida residences": 2.2,
		"Nepo Mart, Angeles":              2.0,
	}
	for addr, want := range cases {
		r, ok := MatchRules(table.Overrides, addr)
		if !ok || r.DistanceKm != want {
			t.Errorf("%q: got %+v ok=%v, want %v", addr, r, ok, want)
		}
	}
}

func TestParseRules_Normalises(t *testing.T) {
	table, err := ParseRules([]byte(`
overrides:
  - pattern: "  Some Village "
    distance_km: 1.2
plus_codes:
  - code: 4hwq+2f
    lat: 15.1
    lng: 120.5
`))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if table.Overrides[0].Pattern != "some village" {
		t.Errorf("pattern not normalised: %q", table.Overrides[0].Pattern)
	}
	if table.PlusCodes[0].Code != "4HWQ+2F" {
		t.Errorf("code not upper-cased: %q", table.PlusCodes[0].Code)
	}
}

func TestParseRules_Invalid(t *testing.T) {
	bad := []string{
		"overrides:\n  - pattern: ''\n    distance_km: 1\n",
		"fallback:\n  - pattern: x\n    distance_km: -1\n",
		"plus_codes:\n  - code: 4HWQ2F\n",
		"overrides: [",
	}
	for _, doc := range bad {
		if _, err := ParseRules([]byte(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("overrides:\n  - pattern: test village\n    distance_km: 7.7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	table, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if r, ok := MatchRules(table.Overrides, "Test Village"); !ok || r.DistanceKm != 7.7 {
		t.Errorf("unexpected rule %+v ok=%v", r, ok)
	}
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
