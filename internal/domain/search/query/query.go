// Package query holds the typed dialogue-slot query and its normalizer.
package query

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
)

// Recognized slot names.
const (
	SlotName         = "name"
	SlotType         = "type"
	SlotAddress      = "address"
	SlotFacilities   = "facilities"
	SlotPriceLower   = "price_range_lower"
	SlotPriceUpper   = "price_range_upper"
	SlotRatingLower  = "rating_range_lower"
	SlotRatingUpper  = "rating_range_upper"
	SlotSortSlot     = "sort.slot"
	SlotSortOrdering = "sort.ordering"

	slotSort = "sort"
)

// Rating bounds.
const (
	MinRating = 0
	MaxRating = 5
)

// Ordering is the direction of the optional re-sort.
type Ordering string

// Ordering values.
const (
	Ascend  Ordering = "ascend"
	Descend Ordering = "descend"
)

// IsValid checks if the ordering is one of the supported values.
func (o Ordering) IsValid() bool { return o == Ascend || o == Descend }

// Raw is the untyped slot mapping produced by the dialogue model.
type Raw = map[string]any

// Query is a normalized query. A nil field means the slot is absent.
type Query struct {
	name        *string
	hotelType   *string
	address     *string
	facilities  []string
	priceLower  *float64
	priceUpper  *float64
	ratingLower *float64
	ratingUpper *float64
	sortSlot    *string
	ordering    *Ordering
}

// Normalize drops absent and null slots, type-checks the rest and returns a Query.
// Unknown slot keys are ignored.
func Normalize(raw Raw) (Query, error) {
	var q Query
	var err error

	if q.name, err = optString(raw, SlotName); err != nil {
		return Query{}, err
	}
	if q.hotelType, err = optString(raw, SlotType); err != nil {
		return Query{}, err
	}
	if q.hotelType != nil && *q.hotelType == "" {
		return Query{}, domain.NewInvalidQuery(SlotType, "empty hotel type")
	}
	if q.address, err = optString(raw, SlotAddress); err != nil {
		return Query{}, err
	}
	if q.facilities, err = optStrings(raw, SlotFacilities); err != nil {
		return Query{}, err
	}
	if q.priceLower, err = optNumber(raw, SlotPriceLower); err != nil {
		return Query{}, err
	}
	if q.priceUpper, err = optNumber(raw, SlotPriceUpper); err != nil {
		return Query{}, err
	}
	if q.ratingLower, err = optRating(raw, SlotRatingLower); err != nil {
		return Query{}, err
	}
	if q.ratingUpper, err = optRating(raw, SlotRatingUpper); err != nil {
		return Query{}, err
	}
	if err := q.normalizeSort(raw); err != nil {
		return Query{}, err
	}
	return q, nil
}

// MustNormalize is like Normalize but panics on error. Intended for tests and literals.
func MustNormalize(raw Raw) Query {
	q, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return q
}

// normalizeSort accepts both flat dotted keys and a nested {"sort": {"slot", "ordering"}} object.
func (q *Query) normalizeSort(raw Raw) error {
	flat := map[string]any{}
	if v, ok := raw[slotSort]; ok && v != nil {
		nested, ok := v.(map[string]any)
		if !ok {
			return domain.NewInvalidQuery(slotSort, "expected object, got %s", typeName(v))
		}
		flat[SlotSortSlot] = nested["slot"]
		flat[SlotSortOrdering] = nested["ordering"]
	}
	for _, k := range []string{SlotSortSlot, SlotSortOrdering} {
		if v, ok := raw[k]; ok && v != nil {
			flat[k] = v
		}
	}

	slot, err := optString(flat, SlotSortSlot)
	if err != nil {
		return err
	}
	if slot != nil && !hotel.IsSortable(*slot) {
		return domain.NewInvalidQuery(SlotSortSlot, "unknown field %q", *slot)
	}
	ord, err := optString(flat, SlotSortOrdering)
	if err != nil {
		return err
	}
	if ord != nil {
		o := Ordering(*ord)
		if !o.IsValid() {
			return domain.NewInvalidQuery(SlotSortOrdering, "expected %q or %q, got %q", Ascend, Descend, *ord)
		}
		q.ordering = &o
	}
	q.sortSlot = slot
	return nil
}

// Name returns the name slot.
func (q Query) Name() (string, bool) { return deref(q.name) }

// Type returns the hotel type slot.
func (q Query) Type() (string, bool) { return deref(q.hotelType) }

// Address returns the address slot.
func (q Query) Address() (string, bool) { return deref(q.address) }

// Facilities returns the requested facilities in order; nil when absent.
func (q Query) Facilities() []string { return q.facilities }

// PriceLower returns the exclusive lower price bound.
func (q Query) PriceLower() (float64, bool) { return deref(q.priceLower) }

// PriceUpper returns the exclusive upper price bound.
func (q Query) PriceUpper() (float64, bool) { return deref(q.priceUpper) }

// RatingLower returns the exclusive lower rating bound.
func (q Query) RatingLower() (float64, bool) { return deref(q.ratingLower) }

// RatingUpper returns the exclusive upper rating bound.
func (q Query) RatingUpper() (float64, bool) { return deref(q.ratingUpper) }

// Sort returns the re-sort field and direction. Ordering defaults to Ascend.
func (q Query) Sort() (string, Ordering, bool) {
	if q.sortSlot == nil {
		return "", "", false
	}
	o := Ascend
	if q.ordering != nil {
		o = *q.ordering
	}
	return *q.sortSlot, o, true
}

// Slots returns the present slots keyed by their canonical names.
func (q Query) Slots() map[string]any {
	out := map[string]any{}
	putString := func(k string, v *string) {
		if v != nil {
			out[k] = *v
		}
	}
	putNumber := func(k string, v *float64) {
		if v != nil {
			out[k] = *v
		}
	}
	putString(SlotName, q.name)
	putString(SlotType, q.hotelType)
	putString(SlotAddress, q.address)
	if q.facilities != nil {
		out[SlotFacilities] = append([]string(nil), q.facilities...)
	}
	putNumber(SlotPriceLower, q.priceLower)
	putNumber(SlotPriceUpper, q.priceUpper)
	putNumber(SlotRatingLower, q.ratingLower)
	putNumber(SlotRatingUpper, q.ratingUpper)
	putString(SlotSortSlot, q.sortSlot)
	if q.ordering != nil {
		out[SlotSortOrdering] = string(*q.ordering)
	}
	return out
}

// SlotNames returns the names of the present slots, sorted.
func (q Query) SlotNames() []string {
	slots := q.Slots()
	names := make([]string, 0, len(slots))
	for k := range slots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func optString(raw Raw, slot string) (*string, error) {
	v, ok := raw[slot]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, domain.NewInvalidQuery(slot, "expected string, got %s", typeName(v))
	}
	return &s, nil
}

func optStrings(raw Raw, slot string) ([]string, error) {
	v, ok := raw[slot]
	if !ok || v == nil {
		return nil, nil
	}
	switch items := v.(type) {
	case []string:
		return append(make([]string, 0, len(items)), items...), nil
	case []any:
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, domain.NewInvalidQuery(slot, "item %d: expected string, got %s", i, typeName(item))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, domain.NewInvalidQuery(slot, "expected list of strings, got %s", typeName(v))
	}
}

func optNumber(raw Raw, slot string) (*float64, error) {
	v, ok := raw[slot]
	if !ok || v == nil {
		return nil, nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, domain.NewInvalidQuery(slot, "expected number, got %q", n.String())
		}
		f = parsed
	default:
		return nil, domain.NewInvalidQuery(slot, "expected number, got %s", typeName(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, domain.NewInvalidQuery(slot, "expected finite number")
	}
	return &f, nil
}

func optRating(raw Raw, slot string) (*float64, error) {
	f, err := optNumber(raw, slot)
	if err != nil || f == nil {
		return f, err
	}
	if *f < MinRating || *f > MaxRating {
		return nil, domain.NewInvalidQuery(slot, "must be between %d and %d, got %v", MinRating, MaxRating, *f)
	}
	return f, nil
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
