package filter

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

type rec struct {
	text map[string]string
	num  map[string]float64
}

func (r rec) Text(f string) (string, bool) {
	v, ok := r.text[f]
	return v, ok
}

func (r rec) Number(f string) (float64, bool) {
	v, ok := r.num[f]
	return v, ok
}

// --- Range tests ---

func TestNewRangeFilter_NoBoundary(t *testing.T) {
	_, err := NewRangeFilter(nil, nil)
	if err == nil {
		t.Fatal("expected error for no boundary")
	}
	if !strings.Contains(err.Error(), "at least one") {
		t.Errorf("error = %q", err)
	}
}

func TestRange_ContainsIsExclusive(t *testing.T) {
	r, err := NewRangeFilter(floatPtr(100), floatPtr(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		v    float64
		want bool
	}{
		{99, false},
		{100, false},
		{100.01, true},
		{300, true},
		{499.99, true},
		{500, false},
		{501, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestRange_OpenEnded(t *testing.T) {
	lower, _ := NewRangeFilter(floatPtr(4), nil)
	if !lower.Contains(1e9) || lower.Contains(4) {
		t.Error("lower-only range mismatch")
	}
	upper, _ := NewRangeFilter(nil, floatPtr(4))
	if !upper.Contains(-1) || upper.Contains(4) {
		t.Error("upper-only range mismatch")
	}
}

// --- Condition tests ---

func TestNewEquals_Valid(t *testing.T) {
	c, err := NewEquals("type", "豪华型")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Key() != "type" || c.Equals() != "豪华型" {
		t.Errorf("got key=%q equals=%q", c.Key(), c.Equals())
	}
	if !c.IsEquals() || c.IsRange() {
		t.Error("expected equality condition")
	}
}

func TestNewEquals_Invalid(t *testing.T) {
	if _, err := NewEquals("", "x"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewEquals("type", ""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestNewRange_EmptyKey(t *testing.T) {
	r, _ := NewRangeFilter(floatPtr(1), nil)
	if _, err := NewRange("", r); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestCondition_MissingFieldNeverMatches(t *testing.T) {
	r, _ := NewRangeFilter(floatPtr(0), nil)
	c, _ := NewRange("price", r)
	if c.Match(rec{}) {
		t.Error("range on missing field should not match")
	}
	eq, _ := NewEquals("type", "经济型")
	if eq.Match(rec{}) {
		t.Error("equality on missing field should not match")
	}
}

// --- Expression tests ---

func TestExpression_EmptyMatchesAll(t *testing.T) {
	var e Expression
	if !e.IsEmpty() {
		t.Error("zero expression should be empty")
	}
	if !e.Match(rec{}) {
		t.Error("empty expression should match any record")
	}
}

func TestExpression_Conjunction(t *testing.T) {
	eq, _ := NewEquals("type", "豪华型")
	pr, _ := NewRangeFilter(floatPtr(100), floatPtr(500))
	price, _ := NewRange("price", pr)
	e, err := NewExpression(eq, price)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.Conditions()) != 2 {
		t.Fatalf("conditions = %d, want 2", len(e.Conditions()))
	}

	hit := rec{text: map[string]string{"type": "豪华型"}, num: map[string]float64{"price": 300}}
	wrongType := rec{text: map[string]string{"type": "经济型"}, num: map[string]float64{"price": 300}}
	wrongPrice := rec{text: map[string]string{"type": "豪华型"}, num: map[string]float64{"price": 500}}

	if !e.Match(hit) {
		t.Error("expected match")
	}
	if e.Match(wrongType) {
		t.Error("type mismatch should fail")
	}
	if e.Match(wrongPrice) {
		t.Error("price at upper bound should fail")
	}
}

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		conds[i], _ = NewEquals("type", "x")
	}
	if _, err := NewExpression(conds...); err == nil {
		t.Fatal("expected error for too many conditions")
	}
}
