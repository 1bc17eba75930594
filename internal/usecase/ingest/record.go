package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/strategy"
)

// Record is one entry of hotel.json.
type Record struct {
	HotelID       *int64     `json:"hotel_id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Address       string     `json:"address"`
	Subway        string     `json:"subway"`
	Phone         string     `json:"phone"`
	Price         float64    `json:"price"`
	Rating        float64    `json:"rating"`
	Facilities    Facilities `json:"facilities"`
	NameTokens    *string    `json:"_name"`
	AddressTokens *string    `json:"_address"`
}

// Facilities accepts either a single string or a list of strings.
type Facilities []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Facilities) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("facilities: %w", err)
		}
		if s == "" {
			*f = nil
		} else {
			*f = Facilities{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("facilities: expected string or list of strings: %w", err)
	}
	*f = list
	return nil
}

// Text joins the facilities with sep.
func (f Facilities) Text(sep string) string {
	return strings.Join(f, sep)
}

// Hotel converts the record into the stored hotel fields.
func (r *Record) Hotel(sep string) hotel.Hotel {
	return hotel.Hotel{
		HotelID:    r.HotelID,
		Name:       r.Name,
		Type:       r.Type,
		Address:    r.Address,
		Subway:     r.Subway,
		Phone:      r.Phone,
		Price:      r.Price,
		Rating:     r.Rating,
		Facilities: r.Facilities.Text(sep),
	}
}

// Tokens returns the keyword fields, derived from name and address when the source omits them.
func (r *Record) Tokens() (name, address string) {
	if r.NameTokens != nil {
		name = *r.NameTokens
	} else {
		name = strategy.CleanTokens(r.Name)
	}
	if r.AddressTokens != nil {
		address = *r.AddressTokens
	} else {
		address = strategy.CleanTokens(r.Address)
	}
	return name, address
}

// Decode parses a hotel.json array.
func Decode(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode hotels: %w", err)
	}
	return records, nil
}
