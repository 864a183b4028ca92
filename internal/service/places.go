package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/geo"
	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/provider/geoapify"
)

const DefaultSearchRadius = 3000

// PlacesClient is the places API collaborator.
type PlacesClient interface {
	SearchPlaces(ctx context.Context, in geoapify.SearchRequest) (geoapify.FeatureCollection, []byte, error)
}

// SearchQuery identifies one search. A nil Coords means the location is not
// known yet; such queries are ignored.
type SearchQuery struct {
	Mood    string     `json:"mood"`
	Coords  *geo.Point `json:"coords,omitempty"`
	RadiusM int        `json:"radius"`
}

// CacheKey rounds coordinates to 4 decimals so nearby repeats share a result.
func (q SearchQuery) CacheKey() string {
	if q.Coords == nil {
		return ""
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(q.Mood)),
		strconv.FormatFloat(q.Coords.Lat, 'f', 4, 64),
		strconv.FormatFloat(q.Coords.Lon, 'f', 4, 64),
		strconv.Itoa(q.radius()),
	}, "|")
}

func (q SearchQuery) radius() int {
	if q.RadiusM <= 0 {
		return DefaultSearchRadius
	}
	return q.RadiusM
}

// SearchState is what a UI renders for the latest query.
type SearchState struct {
	Query   SearchQuery   `json:"query"`
	Places  []model.Place `json:"places"`
	Loading bool          `json:"loading"`
	Error   string        `json:"error,omitempty"`
}

// PlaceFinder fetches places for a mood and memoizes results for the
// lifetime of the value.
type PlaceFinder struct {
	client PlacesClient
	log    *zap.Logger

	mu    sync.Mutex
	cache map[string][]model.Place
	seq   uint64
	state SearchState
}

func NewPlaceFinder(client PlacesClient, log *zap.Logger) *PlaceFinder {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlaceFinder{
		client: client,
		log:    log.Named("places"),
		cache:  map[string][]model.Place{},
		state:  SearchState{Places: []model.Place{}},
	}
}

// Search returns places for q. Cached results are returned without a
// network call. Only the most recent call updates State; a result that
// arrives after a newer Search started is returned to its caller and cached
// but does not overwrite the newer state.
func (f *PlaceFinder) Search(ctx context.Context, q SearchQuery) ([]model.Place, error) {
	if strings.TrimSpace(q.Mood) == "" || q.Coords == nil {
		return nil, nil
	}
	mood, err := LookupMood(q.Mood)
	if err != nil {
		return nil, err
	}
	q.Mood = mood.ID
	q.RadiusM = q.radius()
	key := q.CacheKey()

	f.mu.Lock()
	f.seq++
	seq := f.seq
	if cached, ok := f.cache[key]; ok {
		f.state.Query = q
		f.state.Places = cached
		f.state.Loading = false
		f.state.Error = ""
		f.mu.Unlock()
		f.log.Debug("places cache hit", zap.String("key", key), zap.Int("count", len(cached)))
		return clonePlaces(cached), nil
	}
	f.state.Query = q
	f.state.Loading = true
	f.state.Error = ""
	f.mu.Unlock()

	places, err := f.fetch(ctx, mood, *q.Coords, q.RadiusM)

	f.mu.Lock()
	defer f.mu.Unlock()
	latest := seq == f.seq
	if err != nil {
		f.log.Warn("places fetch failed", zap.String("key", key), zap.Error(err))
		if latest {
			f.state.Loading = false
			f.state.Error = MessageFetchFailed
		}
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	f.cache[key] = places
	if latest {
		f.state.Places = places
		f.state.Loading = false
	} else {
		f.log.Debug("discarding superseded places result", zap.String("key", key))
	}
	return clonePlaces(places), nil
}

// Find searches within the filter's max distance and returns the filtered,
// sorted result. An empty SortBy takes the mood's default order.
func (f *PlaceFinder) Find(ctx context.Context, mood string, at *geo.Point, filters model.FilterConfig) ([]model.Place, error) {
	if filters.SortBy == "" {
		filters.SortBy = model.SortByDistance
		if m, err := LookupMood(mood); err == nil {
			filters.SortBy = m.SortBy
		}
	}
	if err := ValidateFilters(filters); err != nil {
		return nil, err
	}
	places, err := f.Search(ctx, SearchQuery{Mood: mood, Coords: at, RadiusM: filters.MaxDistance})
	if err != nil || places == nil {
		return places, err
	}
	return FilterAndSort(places, filters), nil
}

// State returns a snapshot of the latest query's state.
func (f *PlaceFinder) State() SearchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Places = clonePlaces(f.state.Places)
	return s
}

// Purge drops every cached result.
func (f *PlaceFinder) Purge() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.cache)
	f.cache = map[string][]model.Place{}
	return n
}

// CachedPlace finds a place by id among cached results.
func (f *PlaceFinder) CachedPlace(id string) (model.Place, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, places := range f.cache {
		for _, p := range places {
			if p.ID == id {
				return p, true
			}
		}
	}
	return model.Place{}, false
}

func (f *PlaceFinder) fetch(ctx context.Context, mood model.Mood, at geo.Point, radius int) ([]model.Place, error) {
	if f.client == nil {
		return nil, fmt.Errorf("places client is not configured")
	}
	fc, _, err := f.client.SearchPlaces(ctx, geoapify.SearchRequest{
		Categories: mood.Categories,
		Lat:        at.Lat,
		Lon:        at.Lon,
		RadiusM:    radius,
	})
	if err != nil {
		return nil, err
	}
	places := make([]model.Place, 0, len(fc.Features))
	for _, feature := range fc.Features {
		places = append(places, mapFeature(feature, mood, at))
	}
	f.log.Debug("places fetched", zap.String("mood", mood.ID), zap.Int("count", len(places)))
	return places, nil
}

func mapFeature(feature geoapify.Feature, mood model.Mood, from geo.Point) model.Place {
	props := feature.Properties
	lat, lon := feature.Geometry.Lat(), feature.Geometry.Lon()

	p := model.Place{
		ID:       strings.TrimSpace(props.PlaceID),
		Name:     strings.TrimSpace(props.Name),
		Lat:      lat,
		Lon:      lon,
		Distance: from.DistanceTo(geo.Point{Lat: lat, Lon: lon}),
		Address:  firstNonEmpty(props.Formatted, props.AddressLine1, "Address not available"),
		Phone:    firstNonEmpty(props.RawString("phone"), props.Contact.Phone),
		Website:  firstNonEmpty(props.Website, props.RawString("website")),
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("%s-%s-%s",
			strconv.FormatFloat(lat, 'f', -1, 64),
			strconv.FormatFloat(lon, 'f', -1, 64),
			uuid.NewString()[:8],
		)
	}
	if p.Name == "" {
		p.Name = "Unnamed Place"
	}
	p.Category = mood.Label
	if len(props.Categories) > 0 && strings.TrimSpace(props.Categories[0]) != "" {
		p.Category = strings.Replace(props.Categories[0], ".", " › ", 1)
	}
	if stars, ok := props.RawNumber("stars"); ok {
		p.Rating = &stars
	} else if rating, ok := props.RawNumber("rating"); ok {
		p.Rating = &rating
	}
	if props.HasOpeningHours() {
		open := true
		p.IsOpen = &open
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func clonePlaces(in []model.Place) []model.Place {
	return append([]model.Place{}, in...)
}
