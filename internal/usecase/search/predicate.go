package search

import (
	"fmt"

	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/filter"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
)

// BuildPredicate translates the type, price and rating slots into an AND-combined expression.
// Range bounds are exclusive. The result is empty when none of those slots is present.
func BuildPredicate(q query.Query) (filter.Expression, error) {
	var conds []filter.Condition

	if t, ok := q.Type(); ok {
		c, err := filter.NewEquals(hotel.FieldType, t)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("type predicate: %w", err)
		}
		conds = append(conds, c)
	}

	ranges := []struct {
		field  string
		bounds func() (*float64, *float64)
	}{
		{hotel.FieldPrice, func() (*float64, *float64) { return bound(q.PriceLower()), bound(q.PriceUpper()) }},
		{hotel.FieldRating, func() (*float64, *float64) { return bound(q.RatingLower()), bound(q.RatingUpper()) }},
	}
	for _, rg := range ranges {
		gt, lt := rg.bounds()
		if gt == nil && lt == nil {
			continue
		}
		r, err := filter.NewRangeFilter(gt, lt)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%s predicate: %w", rg.field, err)
		}
		c, err := filter.NewRange(rg.field, r)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%s predicate: %w", rg.field, err)
		}
		conds = append(conds, c)
	}

	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("build predicate: %w", err)
	}
	return expr, nil
}

func bound(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
