package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/storage"
)

// FavoritesStore keeps saved places keyed by place id.
type FavoritesStore struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time

	mu        sync.Mutex
	favorites []model.FavoritePlace
}

func NewFavoritesStore(store storage.Store, log *zap.Logger) *FavoritesStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FavoritesStore{
		store:     store,
		log:       log.Named("favorites"),
		now:       time.Now,
		favorites: []model.FavoritePlace{},
	}
}

func (s *FavoritesStore) Load(ctx context.Context) error {
	var favorites []model.FavoritePlace
	_, err := storage.LoadJSON(ctx, s.store, storage.KeyFavorites, &favorites)
	if errors.Is(err, storage.ErrCorruptState) {
		s.log.Warn("stored favorites are corrupt, starting empty", zap.Error(err))
		favorites = nil
	} else if err != nil {
		return err
	}
	if favorites == nil {
		favorites = []model.FavoritePlace{}
	}
	s.mu.Lock()
	s.favorites = favorites
	s.mu.Unlock()
	return nil
}

// AddFavorite snapshots place under mood. A place already saved is left as is
// and reported with added=false.
func (s *FavoritesStore) AddFavorite(ctx context.Context, place model.Place, mood string) (bool, error) {
	if strings.TrimSpace(place.ID) == "" {
		return false, fmt.Errorf("%w: place id is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(place.ID) >= 0 {
		return false, nil
	}
	fav := model.FavoritePlace{
		Place:   place,
		Mood:    strings.ToLower(strings.TrimSpace(mood)),
		SavedAt: s.now().UTC(),
	}
	next := append(append([]model.FavoritePlace{}, s.favorites...), fav)
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.log.Debug("favorite added", zap.String("id", place.ID), zap.String("mood", fav.Mood))
	return true, nil
}

// RemoveFavorite drops id. Unknown ids are a no-op reported with removed=false.
func (s *FavoritesStore) RemoveFavorite(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := make([]model.FavoritePlace, 0, len(s.favorites)-1)
	next = append(next, s.favorites[:i]...)
	next = append(next, s.favorites[i+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FavoritesStore) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Favorites returns saved places, oldest first.
func (s *FavoritesStore) Favorites() []model.FavoritePlace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FavoritePlace{}, s.favorites...)
}

func (s *FavoritesStore) indexOf(id string) int {
	for i, f := range s.favorites {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *FavoritesStore) persist(ctx context.Context, next []model.FavoritePlace) error {
	if err := storage.SaveJSON(ctx, s.store, storage.KeyFavorites, next); err != nil {
		return err
	}
	s.favorites = next
	return nil
}
