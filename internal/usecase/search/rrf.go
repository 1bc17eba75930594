package search

import (
	"sort"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
)

// DefaultRRFK is the Reciprocal Rank Fusion constant (Cormack et al. 2009).
const DefaultRRFK = 60

// Ranked is a fused record with its accumulated score.
type Ranked struct {
	Hotel hotel.Hotel
	Score float64
}

// FuseRRF merges ranked lists via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) with zero-based rank over every list containing d.
// Empty lists are skipped. Ties keep first-seen order; the record kept is the last one seen.
// k <= 0 selects DefaultRRFK.
func FuseRRF(lists [][]hotel.Hotel, k int) ([]Ranked, error) {
	if k <= 0 {
		k = DefaultRRFK
	}

	index := make(map[int64]int)
	var table []Ranked

	for li, list := range lists {
		for rank := range list {
			rec := list[rank]
			id, ok := rec.ID()
			if !ok {
				return nil, &domain.MalformedRecordError{List: li, Rank: rank}
			}
			s := 1.0 / float64(k+rank)
			if i, seen := index[id]; seen {
				table[i].Score += s
				table[i].Hotel = rec
				continue
			}
			index[id] = len(table)
			table = append(table, Ranked{Hotel: rec, Score: s})
		}
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Score > table[j].Score
	})
	return table, nil
}

// Hotels strips the scores.
func Hotels(ranked []Ranked) []hotel.Hotel {
	out := make([]hotel.Hotel, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].Hotel
	}
	return out
}
