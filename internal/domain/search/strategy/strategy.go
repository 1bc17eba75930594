// Package strategy selects the single retrieval modality for a query.
package strategy

import (
	"regexp"
	"strings"

	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
)

// Kind is the retrieval modality.
type Kind string

// Retrieval modalities, in selection priority order.
const (
	Vector         Kind = "vector"
	NameKeyword    Kind = "name_keyword"
	AddressKeyword Kind = "address_keyword"
	Structured     Kind = "structured"
)

// Kinds lists every modality in priority order.
var Kinds = []Kind{Vector, NameKeyword, AddressKeyword, Structured}

// Defaults for the vector description.
const (
	DefaultFacilityPrefix    = "酒店提供："
	DefaultFacilitySeparator = "，"
)

// Options tunes how vector query text is built.
type Options struct {
	FacilityPrefix    string
	FacilitySeparator string
}

// DefaultOptions returns the stock Chinese prefix and separator.
func DefaultOptions() Options {
	return Options{FacilityPrefix: DefaultFacilityPrefix, FacilitySeparator: DefaultFacilitySeparator}
}

// Strategy is the selected modality with its query text and target field.
type Strategy struct {
	kind  Kind
	text  string
	field string
}

// Kind returns the modality.
func (s Strategy) Kind() Kind { return s.kind }

// Text returns the text to embed (Vector) or the cleaned keyword string (keyword kinds).
func (s Strategy) Text() string { return s.text }

// Field returns the tokenized field for keyword kinds.
func (s Strategy) Field() string { return s.field }

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_-]+`)

// CleanTokens keeps word and hyphen runs and joins them with single spaces.
func CleanTokens(s string) string {
	return strings.Join(tokenRe.FindAllString(s, -1), " ")
}

// Select picks the first matching modality: facilities, then name, then address,
// then structured-only. A non-empty name or address selects keyword search even when
// it cleans to no tokens; the keyword text is then empty and matches nothing.
func Select(q query.Query, opts Options) Strategy {
	if fs := q.Facilities(); len(fs) > 0 {
		return Strategy{
			kind: Vector,
			text: opts.FacilityPrefix + strings.Join(fs, opts.FacilitySeparator),
		}
	}
	if name, ok := q.Name(); ok && name != "" {
		return Strategy{kind: NameKeyword, text: CleanTokens(name), field: hotel.FieldNameTokens}
	}
	if addr, ok := q.Address(); ok && addr != "" {
		return Strategy{kind: AddressKeyword, text: CleanTokens(addr), field: hotel.FieldAddressTokens}
	}
	return Strategy{kind: Structured}
}
