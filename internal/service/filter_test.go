package service_test

import (
	"reflect"
	"testing"

	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/service"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrBool(v bool) *bool        { return &v }

func samplePlaces() []model.Place {
	return []model.Place{
		{ID: "a", Name: "Far Cafe", Distance: 2500, Rating: ptrFloat(4.5), IsOpen: ptrBool(true)},
		{ID: "b", Name: "Near Diner", Distance: 300, Rating: nil, IsOpen: nil},
		{ID: "c", Name: "Mid Bistro", Distance: 1200, Rating: ptrFloat(3.5), IsOpen: ptrBool(true)},
		{ID: "d", Name: "Closed Bar", Distance: 800, Rating: ptrFloat(4.5), IsOpen: ptrBool(false)},
		{ID: "e", Name: "Edge Park", Distance: 3000, Rating: ptrFloat(2), IsOpen: nil},
	}
}

func ids(places []model.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterAndSortNoFiltersKeepsEverything(t *testing.T) {
	t.Parallel()

	in := samplePlaces()
	got := service.FilterAndSort(in, model.FilterConfig{SortBy: model.SortByDistance})
	if want := []string{"b", "d", "c", "a", "e"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	got = service.FilterAndSort(in, model.FilterConfig{SortBy: model.SortByRating})
	// a and d tie on 4.5 and keep input order.
	if want := []string{"a", "d", "c", "e", "b"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := samplePlaces()
	before := ids(in)
	_ = service.FilterAndSort(in, model.FilterConfig{SortBy: model.SortByDistance, OpenNow: true})
	if !reflect.DeepEqual(ids(in), before) {
		t.Fatalf("input reordered: %v", ids(in))
	}
}

func TestFilterAndSortOpenNowExcludesUnknown(t *testing.T) {
	t.Parallel()

	got := service.FilterAndSort(samplePlaces(), model.FilterConfig{OpenNow: true, SortBy: model.SortByDistance})
	if want := []string{"c", "a"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestFilterAndSortMinRatingTreatsAbsentAsZero(t *testing.T) {
	t.Parallel()

	got := service.FilterAndSort(samplePlaces(), model.FilterConfig{MinRating: 3.5, SortBy: model.SortByRating})
	if want := []string{"a", "d", "c"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestFilterAndSortMaxDistanceIsInclusive(t *testing.T) {
	t.Parallel()

	got := service.FilterAndSort(samplePlaces(), model.FilterConfig{MaxDistance: 1200, SortBy: model.SortByDistance})
	if want := []string{"b", "d", "c"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestFilterAndSortIsIdempotent(t *testing.T) {
	t.Parallel()

	configs := []model.FilterConfig{
		{SortBy: model.SortByDistance},
		{SortBy: model.SortByRating, MinRating: 2},
		{SortBy: model.SortByRating, OpenNow: true, MaxDistance: 2600},
	}
	for _, cfg := range configs {
		once := service.FilterAndSort(samplePlaces(), cfg)
		twice := service.FilterAndSort(once, cfg)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Fatalf("not idempotent for %+v: %v vs %v", cfg, ids(once), ids(twice))
		}
	}
}

func TestFilterAndSortDistanceOrderIsMonotonic(t *testing.T) {
	t.Parallel()

	got := service.FilterAndSort(samplePlaces(), model.FilterConfig{SortBy: model.SortByDistance})
	for i := 0; i+1 < len(got); i++ {
		if got[i].Distance > got[i+1].Distance {
			t.Fatalf("distance order broken at %d: %v > %v", i, got[i].Distance, got[i+1].Distance)
		}
	}
}

func TestFilterAndSortEmptyInput(t *testing.T) {
	t.Parallel()

	got := service.FilterAndSort(nil, model.DefaultFilters())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestFilterAndSortUnknownSortKeepsOrder(t *testing.T) {
	t.Parallel()

	got := service.FilterAndSort(samplePlaces(), model.FilterConfig{SortBy: "name"})
	if want := []string{"a", "b", "c", "d", "e"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestValidateFilters(t *testing.T) {
	t.Parallel()

	if err := service.ValidateFilters(model.DefaultFilters()); err != nil {
		t.Fatalf("default filters should be valid: %v", err)
	}
	bad := []model.FilterConfig{
		{SortBy: "name"},
		{SortBy: model.SortByRating, MinRating: 5.5},
		{SortBy: model.SortByRating, MinRating: 2.25},
		{SortBy: model.SortByDistance, MaxDistance: -1},
	}
	for _, f := range bad {
		if err := service.ValidateFilters(f); err == nil {
			t.Fatalf("expected error for %+v", f)
		}
	}
}
