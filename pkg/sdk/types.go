package hotelsearch

import domhotel "github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"

// Query holds dialogue slots keyed by slot name. Nil values are treated as absent.
type Query map[string]any

// Hotel is a ranked search hit.
type Hotel struct {
	ID         int64
	Name       string
	Type       string
	Address    string
	Subway     string
	Phone      string
	Price      float64
	Rating     float64
	Facilities string
}

// Result is a completed search with the strategy that served it.
type Result struct {
	Hotels   []Hotel
	Strategy string
}

func fromInternalHotels(in []domhotel.Hotel) []Hotel {
	out := make([]Hotel, len(in))
	for i := range in {
		h := &in[i]
		id, _ := h.ID()
		out[i] = Hotel{
			ID:         id,
			Name:       h.Name,
			Type:       h.Type,
			Address:    h.Address,
			Subway:     h.Subway,
			Phone:      h.Phone,
			Price:      h.Price,
			Rating:     h.Rating,
			Facilities: h.Facilities,
		}
	}
	return out
}
