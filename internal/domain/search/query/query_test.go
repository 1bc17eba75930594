package query

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
)

func TestNormalize_DropsNullAndAbsent(t *testing.T) {
	q, err := Normalize(Raw{
		"name":              nil,
		"type":              "经济型",
		"price_range_upper": 500,
		"facilities":        nil,
		"sort.slot":         nil,
		"unknown_slot":      "ignored",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := q.Name(); ok {
		t.Error("null name should be absent")
	}
	if q.Facilities() != nil {
		t.Error("null facilities should be absent")
	}
	if _, _, ok := q.Sort(); ok {
		t.Error("null sort.slot should be absent")
	}

	want := map[string]any{"type": "经济型", "price_range_upper": 500.0}
	if got := q.Slots(); !reflect.DeepEqual(got, want) {
		t.Errorf("Slots() = %v, want %v", got, want)
	}
	for k, v := range q.Slots() {
		if v == nil {
			t.Errorf("slot %q maps to nil after normalization", k)
		}
	}
}

func TestNormalize_AllSlots(t *testing.T) {
	q, err := Normalize(Raw{
		"name":               "如家",
		"type":               "舒适型",
		"address":            "朝阳区",
		"facilities":         []any{"wifi", "停车场"},
		"price_range_lower":  100.0,
		"price_range_upper":  json.Number("800"),
		"rating_range_lower": 4,
		"rating_range_upper": 5.0,
		"sort.slot":          "price",
		"sort.ordering":      "descend",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := q.Name(); v != "如家" {
		t.Errorf("name = %q", v)
	}
	if v, _ := q.Type(); v != "舒适型" {
		t.Errorf("type = %q", v)
	}
	if v, _ := q.Address(); v != "朝阳区" {
		t.Errorf("address = %q", v)
	}
	if got := q.Facilities(); !reflect.DeepEqual(got, []string{"wifi", "停车场"}) {
		t.Errorf("facilities = %v", got)
	}
	if v, _ := q.PriceLower(); v != 100 {
		t.Errorf("price lower = %v", v)
	}
	if v, _ := q.PriceUpper(); v != 800 {
		t.Errorf("price upper = %v", v)
	}
	if v, _ := q.RatingLower(); v != 4 {
		t.Errorf("rating lower = %v", v)
	}
	if v, _ := q.RatingUpper(); v != 5 {
		t.Errorf("rating upper = %v", v)
	}
	slot, ord, ok := q.Sort()
	if !ok || slot != "price" || ord != Descend {
		t.Errorf("Sort() = %q, %q, %v", slot, ord, ok)
	}
}

func TestNormalize_NestedSort(t *testing.T) {
	q, err := Normalize(Raw{"sort": map[string]any{"slot": "rating", "ordering": "ascend"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slot, ord, ok := q.Sort()
	if !ok || slot != "rating" || ord != Ascend {
		t.Errorf("Sort() = %q, %q, %v", slot, ord, ok)
	}
}

func TestNormalize_SortDefaultsToAscend(t *testing.T) {
	q := MustNormalize(Raw{"sort.slot": "rating"})
	if _, ord, _ := q.Sort(); ord != Ascend {
		t.Errorf("ordering = %q, want ascend", ord)
	}
}

func TestNormalize_EmptyFacilitiesKept(t *testing.T) {
	q := MustNormalize(Raw{"facilities": []any{}})
	if q.Facilities() == nil || len(q.Facilities()) != 0 {
		t.Errorf("facilities = %#v, want empty non-nil", q.Facilities())
	}
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		slot string
	}{
		{"string price", Raw{"price_range_lower": "100"}, SlotPriceLower},
		{"bool price", Raw{"price_range_upper": true}, SlotPriceUpper},
		{"numeric name", Raw{"name": 42}, SlotName},
		{"numeric type", Raw{"type": 1.0}, SlotType},
		{"empty type", Raw{"type": ""}, SlotType},
		{"facilities not list", Raw{"facilities": "wifi"}, SlotFacilities},
		{"facility item not string", Raw{"facilities": []any{"wifi", 3}}, SlotFacilities},
		{"rating above 5", Raw{"rating_range_upper": 5.5}, SlotRatingUpper},
		{"rating below 0", Raw{"rating_range_lower": -1}, SlotRatingLower},
		{"bad ordering", Raw{"sort.slot": "price", "sort.ordering": "random"}, SlotSortOrdering},
		{"unknown sort slot", Raw{"sort.slot": "distance"}, SlotSortSlot},
		{"sort not object", Raw{"sort": "price"}, "sort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
			var iq *domain.InvalidQueryError
			if !errors.As(err, &iq) {
				t.Fatal("expected *InvalidQueryError")
			}
			if iq.Slot != tt.slot {
				t.Errorf("slot = %q, want %q", iq.Slot, tt.slot)
			}
		})
	}
}

func TestSlotNames_Sorted(t *testing.T) {
	q := MustNormalize(Raw{"type": "x", "address": "y", "name": "z"})
	want := []string{"address", "name", "type"}
	if got := q.SlotNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("SlotNames() = %v, want %v", got, want)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := Raw{"name": "Park", "rating_range_lower": 3}
	a := MustNormalize(raw)
	b := MustNormalize(raw)
	if !reflect.DeepEqual(a.Slots(), b.Slots()) {
		t.Error("normalization is not deterministic")
	}
}
