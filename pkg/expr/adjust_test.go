package expr

import (
	"math"
	"testing"
)

func TestAdjustedToGiveNewResult(t *testing.T) {
	scope := &mapScope{
		uid:     "self",
		symbols: map[string]string{"left": "50", "w": "200"},
		relatives: map[string]*mapScope{
			"nav": {uid: "nav", symbols: map[string]string{"right": "120"}},
		},
	}

	tests := []struct {
		name   string
		in     string
		target float64
		want   string
	}{
		{"literal", "10", 25, "25"},
		{"literal fractional", "10", 2.5, "2.5"},
		{"symbol plus offset", "left + 100", 250, "left + 200"},
		{"symbol minus offset", "left - 10", 45, "left - 5"},
		{"offset sign flips to minus", "left + 10", 40, "left - 10"},
		{"offset sign flips to plus", "left - 10", 70, "left + 20"},
		{"member plus offset", "nav.right + 8", 130, "nav.right + 10"},
		{"bare member", "nav.right", 132, "nav.right + 12"},
		{"bare member below", "nav.right", 100, "nav.right - 20"},
		{"bare member unchanged", "nav.right", 120, "nav.right"},
		{"leading constant", "10 + left", 70, "20 + left"},
		{"proportional", "w * 0.5", 50, "w * 0.25"},
		{"direct constant wins", "(left + 5) * 2", 121, "(left + 5) * 2.2"},
		{"nested", "(left + 5) + nav.right", 200, "left + 30 + nav.right"},
		{"function untouched", "max(left, 10)", 60, "max(left, 10) + 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MustParse(tt.in).AdjustedToGiveNewResult(tt.target, scope)
			if err != nil {
				t.Fatalf("AdjustedToGiveNewResult error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("AdjustedToGiveNewResult(%q, %v) = %q, want %q", tt.in, tt.target, got.String(), tt.want)
			}
			v, err := got.Evaluate(scope)
			if err != nil {
				t.Fatalf("Evaluate adjusted error: %v", err)
			}
			if math.Abs(v-tt.target) > 1e-9 {
				t.Errorf("adjusted %q evaluates to %v, want %v", got, v, tt.target)
			}
		})
	}
}

func TestAdjustedToGiveNewResultZeroSlope(t *testing.T) {
	scope := &mapScope{uid: "self", symbols: map[string]string{"w": "0"}}
	got, err := MustParse("w * 0.5").AdjustedToGiveNewResult(30, scope)
	if err != nil {
		t.Fatalf("AdjustedToGiveNewResult error: %v", err)
	}
	if got.String() != "30" {
		t.Errorf("AdjustedToGiveNewResult = %q, want %q", got.String(), "30")
	}
}

func TestAdjustedToGiveNewResultUnresolved(t *testing.T) {
	_, err := MustParse("ghost").AdjustedToGiveNewResult(10, nil)
	if err == nil {
		t.Fatal("AdjustedToGiveNewResult should fail for an unresolved symbol")
	}
}
