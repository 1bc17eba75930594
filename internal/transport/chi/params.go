package chi

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
)

// searchParams are the GET /v1/hotels/search query parameters.
// facilities is form-exploded: ?facilities=免费WiFi&facilities=停车场.
type searchParams struct {
	Name             *string
	Type             *string
	Address          *string
	Facilities       *[]string
	PriceRangeLower  *float64
	PriceRangeUpper  *float64
	RatingRangeLower *float64
	RatingRangeUpper *float64
	SortSlot         *string
	SortOrdering     *string
	Limit            *int
}

func bindSearchParams(values url.Values) (searchParams, error) {
	var p searchParams
	bindings := []struct {
		name string
		dest any
	}{
		{query.SlotName, &p.Name},
		{query.SlotType, &p.Type},
		{query.SlotAddress, &p.Address},
		{query.SlotFacilities, &p.Facilities},
		{query.SlotPriceLower, &p.PriceRangeLower},
		{query.SlotPriceUpper, &p.PriceRangeUpper},
		{query.SlotRatingLower, &p.RatingRangeLower},
		{query.SlotRatingUpper, &p.RatingRangeUpper},
		{query.SlotSortSlot, &p.SortSlot},
		{query.SlotSortOrdering, &p.SortOrdering},
		{"limit", &p.Limit},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, values, b.dest); err != nil {
			return searchParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

// raw converts bound parameters into the slot mapping accepted by query.Normalize.
func (p searchParams) raw() query.Raw {
	raw := query.Raw{}
	putString := func(k string, v *string) {
		if v != nil {
			raw[k] = *v
		}
	}
	putNumber := func(k string, v *float64) {
		if v != nil {
			raw[k] = *v
		}
	}
	putString(query.SlotName, p.Name)
	putString(query.SlotType, p.Type)
	putString(query.SlotAddress, p.Address)
	if p.Facilities != nil {
		raw[query.SlotFacilities] = *p.Facilities
	}
	putNumber(query.SlotPriceLower, p.PriceRangeLower)
	putNumber(query.SlotPriceUpper, p.PriceRangeUpper)
	putNumber(query.SlotRatingLower, p.RatingRangeLower)
	putNumber(query.SlotRatingUpper, p.RatingRangeUpper)
	putString(query.SlotSortSlot, p.SortSlot)
	putString(query.SlotSortOrdering, p.SortOrdering)
	return raw
}
