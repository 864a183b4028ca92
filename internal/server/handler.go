// Package server exposes the stores over a loopback JSON API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/calendar"
	"github.com/saadjs/gonext/internal/geo"
	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/service"
)

// Deps are the stores served by the handler.
type Deps struct {
	Places    *service.PlaceFinder
	Favorites *service.FavoritesStore
	Events    *service.EventStore
	Sessions  *service.SessionStore
	// Home is used when a places request omits lat/lon.
	Home *geo.Point
}

// Handler wraps HTTP handlers with logger and stores.
type Handler struct {
	log  *zap.Logger
	deps Deps
	now  func() time.Time
}

func New(log *zap.Logger, deps Deps) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{log: log.Named("http"), deps: deps, now: time.Now}
}

// Routes builds the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/moods", h.ListMoods)
		r.Get("/places", h.SearchPlaces)

		r.Get("/favorites", h.ListFavorites)
		r.Post("/favorites", h.AddFavorite)
		r.Delete("/favorites/{id}", h.RemoveFavorite)

		r.Get("/events", h.ListEvents)
		r.Post("/events", h.AddEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Get("/events.ics", h.ExportEvents)

		r.Get("/notification", h.GetNotification)
		r.Delete("/notification", h.DismissNotification)

		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/session", h.GetSession)
	})
	return r
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) ListMoods(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, service.Moods())
}

type placeView struct {
	model.Place
	DistanceText string `json:"distanceText"`
	Favorite     bool   `json:"favorite"`
}

type placesResponse struct {
	Mood    string             `json:"mood"`
	Filters model.FilterConfig `json:"filters"`
	Loading bool               `json:"loading"`
	Places  []placeView        `json:"places"`
}

// SearchPlaces handles GET /api/places?mood=&lat=&lon=&maxDistance=&minRating=&openNow=&sortBy=.
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mood := strings.TrimSpace(q.Get("mood"))
	if mood == "" {
		h.writeError(w, http.StatusBadRequest, "mood is required")
		return
	}
	at, err := h.location(q.Get("lat"), q.Get("lon"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters, err := parseFilters(q.Get("maxDistance"), q.Get("minRating"), q.Get("openNow"), q.Get("sortBy"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := placesResponse{Mood: strings.ToLower(mood), Filters: filters, Places: []placeView{}}
	if at == nil {
		// No location yet: nothing to search.
		resp.Loading = true
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	places, err := h.deps.Places.Find(r.Context(), mood, at, filters)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	for _, p := range places {
		resp.Places = append(resp.Places, placeView{
			Place:        p,
			DistanceText: geo.FormatDistance(p.Distance),
			Favorite:     h.deps.Favorites.IsFavorite(p.ID),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListFavorites(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.deps.Favorites.Favorites())
}

type favoriteRequest struct {
	PlaceID string       `json:"placeId"`
	Place   *model.Place `json:"place"`
	Mood    string       `json:"mood"`
}

// AddFavorite accepts either a full place snapshot or the id of a place from
// a recent search.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !h.decode(w, r, &req) {
		return
	}
	var place model.Place
	switch {
	case req.Place != nil:
		place = *req.Place
	case strings.TrimSpace(req.PlaceID) != "":
		p, ok := h.deps.Places.CachedPlace(strings.TrimSpace(req.PlaceID))
		if !ok {
			h.writeError(w, http.StatusNotFound, "place not found in recent results")
			return
		}
		place = p
	default:
		h.writeError(w, http.StatusBadRequest, "place or placeId is required")
		return
	}
	added, err := h.deps.Favorites.AddFavorite(r.Context(), place, req.Mood)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, map[string]any{"id": place.ID, "added": added})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.Favorites.RemoveFavorite(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents returns every event, or only today-and-later with ?upcoming=true.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("upcoming")); ok {
		h.writeJSON(w, http.StatusOK, h.deps.Events.Upcoming())
		return
	}
	h.writeJSON(w, http.StatusOK, h.deps.Events.Events())
}

type eventRequest struct {
	Date string `json:"date"`
	Mood string `json:"mood"`
	Note string `json:"note"`
}

func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !h.decode(w, r, &req) {
		return
	}
	ev, err := h.deps.Events.AddEvent(r.Context(), req.Date, req.Mood, req.Note)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, ev)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExportEvents(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="gonext.ics"`)
	if _, err := calendar.Write(w, h.deps.Events.Events(), h.now()); err != nil {
		h.log.Error("unable to write calendar", zap.Error(err))
	}
}

// GetNotification returns the active notification or 204 when there is none.
func (h *Handler) GetNotification(w http.ResponseWriter, _ *http.Request) {
	n := h.deps.Events.Notification()
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, n)
}

func (h *Handler) DismissNotification(w http.ResponseWriter, _ *http.Request) {
	h.deps.Events.DismissNotification()
	w.WriteHeader(http.StatusNoContent)
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.deps.Sessions.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.deps.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Sessions.Logout(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"loading": h.deps.Sessions.Loading(),
		"session": h.deps.Sessions.Current(),
	})
}

func (h *Handler) location(lat, lon string) (*geo.Point, error) {
	lat, lon = strings.TrimSpace(lat), strings.TrimSpace(lon)
	if lat == "" && lon == "" {
		return h.deps.Home, nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return nil, errors.New("lat must be a number between -90 and 90")
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil || lo < -180 || lo > 180 {
		return nil, errors.New("lon must be a number between -180 and 180")
	}
	return &geo.Point{Lat: la, Lon: lo}, nil
}

// parseFilters starts from the defaults; an empty sortBy is left empty so the
// mood's order applies.
func parseFilters(maxDistance, minRating, openNow, sortBy string) (model.FilterConfig, error) {
	f := model.DefaultFilters()
	f.SortBy = strings.TrimSpace(sortBy)
	if v := strings.TrimSpace(maxDistance); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("maxDistance must be an integer")
		}
		f.MaxDistance = n
	}
	if v := strings.TrimSpace(minRating); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("minRating must be a number")
		}
		f.MinRating = n
	}
	if v := strings.TrimSpace(openNow); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("openNow must be true or false")
		}
		f.OpenNow = b
	}
	return f, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		h.log.Warn("failed to decode json", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr validator.ValidationErrors
	switch {
	case errors.As(err, &validationErr):
		h.log.Warn("validation failed", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, service.FieldErrors(err))
	case errors.Is(err, service.ErrNetwork):
		h.writeError(w, http.StatusBadGateway, service.MessageFetchFailed)
	case errors.Is(err, service.ErrDuplicateEmail):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("unable to write response stream", zap.Error(err))
	}
}
