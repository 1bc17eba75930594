package search

import (
	"slices"
	"strings"

	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
)

// postFilter narrows by name substring, applies the optional stable re-sort and truncates to limit.
// The input slice is not modified.
func postFilter(q query.Query, hotels []hotel.Hotel, limit int) []hotel.Hotel {
	if limit <= 0 {
		return []hotel.Hotel{}
	}

	out := make([]hotel.Hotel, 0, len(hotels))
	name, byName := q.Name()
	for i := range hotels {
		if byName && !strings.Contains(hotels[i].Name, name) {
			continue
		}
		out = append(out, hotels[i])
	}

	if slot, ord, ok := q.Sort(); ok {
		slices.SortStableFunc(out, func(a, b hotel.Hotel) int {
			c := hotel.Compare(&a, &b, slot)
			if ord == query.Descend {
				return -c
			}
			return c
		})
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
