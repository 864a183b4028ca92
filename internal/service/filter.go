package service

import (
	"sort"

	"github.com/saadjs/gonext/internal/model"
)

// FilterAndSort applies the open-now, minimum-rating and max-distance filters
// and then orders the result. The input slice is never modified.
func FilterAndSort(places []model.Place, filters model.FilterConfig) []model.Place {
	out := make([]model.Place, 0, len(places))
	for _, p := range places {
		if filters.OpenNow && (p.IsOpen == nil || !*p.IsOpen) {
			continue
		}
		if filters.MinRating > 0 && p.RatingOrZero() < filters.MinRating {
			continue
		}
		if filters.MaxDistance > 0 && p.Distance > float64(filters.MaxDistance) {
			continue
		}
		out = append(out, p)
	}

	switch filters.SortBy {
	case model.SortByDistance:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Distance < out[j].Distance
		})
	case model.SortByRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RatingOrZero() > out[j].RatingOrZero()
		})
	}
	return out
}
