package hotel

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	domhotel "github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
)

// Document is a hotel as stored: the record plus its keyword token fields and facilities vector.
type Document struct {
	Hotel         domhotel.Hotel
	NameTokens    string
	AddressTokens string
	Vector        []float32
}

// buildHashFields converts a Document into a flat map[string]string for HSET.
func buildHashFields(doc *Document) (map[string]string, error) {
	id, ok := doc.Hotel.ID()
	if !ok {
		return nil, fmt.Errorf("%w: document has no hotel_id", domain.ErrMalformedRecord)
	}
	h := &doc.Hotel
	m := map[string]string{
		domhotel.FieldID:            strconv.FormatInt(id, 10),
		domhotel.FieldName:          h.Name,
		domhotel.FieldType:          h.Type,
		domhotel.FieldAddress:       h.Address,
		domhotel.FieldSubway:        h.Subway,
		domhotel.FieldPhone:         h.Phone,
		domhotel.FieldPrice:         formatFloat(h.Price),
		domhotel.FieldRating:        formatFloat(h.Rating),
		domhotel.FieldFacilities:    h.Facilities,
		domhotel.FieldNameTokens:    doc.NameTokens,
		domhotel.FieldAddressTokens: doc.AddressTokens,
	}
	if len(doc.Vector) > 0 {
		m[domhotel.FieldVector] = vectorToBytes(doc.Vector)
	}
	// empty TAG values are rejected by the query engine
	if h.Type == "" {
		delete(m, domhotel.FieldType)
	}
	return m, nil
}

// parseHotel converts projected hash fields back into a Hotel.
// A missing hotel_id leaves HotelID nil so ranking can reject the record.
func parseHotel(key string, m map[string]string) (domhotel.Hotel, error) {
	h := domhotel.Hotel{
		Name:       m[domhotel.FieldName],
		Type:       m[domhotel.FieldType],
		Address:    m[domhotel.FieldAddress],
		Subway:     m[domhotel.FieldSubway],
		Phone:      m[domhotel.FieldPhone],
		Facilities: m[domhotel.FieldFacilities],
	}

	if v, ok := m[domhotel.FieldID]; ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domhotel.Hotel{}, fmt.Errorf("%w: %s: hotel_id %q", domain.ErrMalformedRecord, key, v)
		}
		h.HotelID = &id
	}

	var err error
	if h.Price, err = parseFloat(m, domhotel.FieldPrice); err != nil {
		return domhotel.Hotel{}, fmt.Errorf("%s: %w", key, err)
	}
	if h.Rating, err = parseFloat(m, domhotel.FieldRating); err != nil {
		return domhotel.Hotel{}, fmt.Errorf("%s: %w", key, err)
	}
	return h, nil
}

// parseFloat reads a numeric field; absent or empty reads as zero.
func parseFloat(m map[string]string, field string) (float64, error) {
	v, ok := m[field]
	if !ok || v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, v, err)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
