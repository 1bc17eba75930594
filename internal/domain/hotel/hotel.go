// Package hotel defines the candidate record returned by the hotel store.
package hotel

import (
	"cmp"
	"strings"
)

// Stored field names.
const (
	FieldID         = "hotel_id"
	FieldName       = "name"
	FieldType       = "type"
	FieldAddress    = "address"
	FieldSubway     = "subway"
	FieldPhone      = "phone"
	FieldPrice      = "price"
	FieldRating     = "rating"
	FieldFacilities = "facilities"

	// FieldNameTokens and FieldAddressTokens hold whitespace-tokenized copies for keyword search.
	FieldNameTokens    = "_name"
	FieldAddressTokens = "_address"
	// FieldVector holds the facilities embedding.
	FieldVector = "vector"
)

// Projection is the fixed set of fields requested from the store for every query.
var Projection = []string{
	FieldID, FieldName, FieldType, FieldAddress, FieldPhone,
	FieldSubway, FieldFacilities, FieldPrice, FieldRating,
}

// Hotel is a single candidate record. HotelID is nil when the store omitted it.
type Hotel struct {
	HotelID    *int64  `json:"hotel_id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Address    string  `json:"address"`
	Subway     string  `json:"subway"`
	Phone      string  `json:"phone"`
	Price      float64 `json:"price"`
	Rating     float64 `json:"rating"`
	Facilities string  `json:"facilities"`
}

// ID returns the ranking key and whether it is present.
func (h *Hotel) ID() (int64, bool) {
	if h.HotelID == nil {
		return 0, false
	}
	return *h.HotelID, true
}

// Number returns a numeric field value. Absent numeric values read as zero.
func (h *Hotel) Number(field string) (float64, bool) {
	switch field {
	case FieldPrice:
		return h.Price, true
	case FieldRating:
		return h.Rating, true
	case FieldID:
		id, _ := h.ID()
		return float64(id), true
	}
	return 0, false
}

// Text returns a string field value.
func (h *Hotel) Text(field string) (string, bool) {
	switch field {
	case FieldName:
		return h.Name, true
	case FieldType:
		return h.Type, true
	case FieldAddress:
		return h.Address, true
	case FieldSubway:
		return h.Subway, true
	case FieldPhone:
		return h.Phone, true
	case FieldFacilities:
		return h.Facilities, true
	}
	return "", false
}

// IsNumeric reports whether field is compared numerically.
func IsNumeric(field string) bool {
	return field == FieldID || field == FieldPrice || field == FieldRating
}

// IsSortable reports whether results can be ordered by field.
func IsSortable(field string) bool {
	if IsNumeric(field) {
		return true
	}
	_, ok := (&Hotel{}).Text(field)
	return ok
}

// Compare orders a and b by field. Missing values compare as zero.
func Compare(a, b *Hotel, field string) int {
	if IsNumeric(field) {
		av, _ := a.Number(field)
		bv, _ := b.Number(field)
		return cmp.Compare(av, bv)
	}
	as, _ := a.Text(field)
	bs, _ := b.Text(field)
	return strings.Compare(as, bs)
}
