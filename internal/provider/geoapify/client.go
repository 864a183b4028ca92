package geoapify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.geoapify.com"
	defaultLimit   = 20
)

// SearchRequest selects places of the given categories inside a circle.
type SearchRequest struct {
	Categories string
	Lat        float64
	Lon        float64
	RadiusM    int
	Limit      int
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

type Geometry struct {
	Type string `json:"type"`
	// Coordinates are [lon, lat].
	Coordinates []float64 `json:"coordinates"`
}

// Lon returns the longitude or 0 if the geometry is incomplete.
func (g Geometry) Lon() float64 {
	if len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[0]
}

// Lat returns the latitude or 0 if the geometry is incomplete.
func (g Geometry) Lat() float64 {
	if len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[1]
}

type Properties struct {
	PlaceID      string          `json:"place_id"`
	Name         string          `json:"name"`
	Categories   []string        `json:"categories"`
	Formatted    string          `json:"formatted"`
	AddressLine1 string          `json:"address_line1"`
	Website      string          `json:"website"`
	OpeningHours json.RawMessage `json:"opening_hours"`
	Contact      struct {
		Phone string `json:"phone"`
	} `json:"contact"`
	Datasource struct {
		Raw map[string]any `json:"raw"`
	} `json:"datasource"`
}

// HasOpeningHours reports whether any opening_hours value was supplied.
func (p Properties) HasOpeningHours() bool {
	v := strings.TrimSpace(string(p.OpeningHours))
	return v != "" && v != "null" && v != `""`
}

// RawString returns datasource.raw[key] as a trimmed string.
func (p Properties) RawString(key string) string {
	v, ok := p.Datasource.Raw[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// RawNumber returns datasource.raw[key] as a positive number. OSM tags are
// often numeric strings, so those are parsed as well.
func (p Properties) RawNumber(key string) (float64, bool) {
	v, ok := p.Datasource.Raw[key]
	if !ok || v == nil {
		return 0, false
	}
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geoapify request failed with status %d", e.StatusCode)
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// SearchPlaces calls GET /v2/places and returns the decoded collection along
// with the raw body.
func (c *Client) SearchPlaces(ctx context.Context, in SearchRequest) (FeatureCollection, []byte, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return FeatureCollection{}, nil, fmt.Errorf("missing Geoapify API key")
	}
	if strings.TrimSpace(in.Categories) == "" {
		return FeatureCollection{}, nil, fmt.Errorf("categories are required")
	}
	if in.RadiusM <= 0 {
		return FeatureCollection{}, nil, fmt.Errorf("radius must be > 0")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	q := url.Values{}
	q.Set("categories", in.Categories)
	q.Set("filter", fmt.Sprintf("circle:%s,%s,%d",
		strconv.FormatFloat(in.Lon, 'f', -1, 64),
		strconv.FormatFloat(in.Lat, 'f', -1, 64),
		in.RadiusM,
	))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("apiKey", c.APIKey)
	endpoint := baseURL + "/v2/places?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FeatureCollection{}, nil, fmt.Errorf("create geoapify request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return FeatureCollection{}, nil, fmt.Errorf("execute geoapify request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FeatureCollection{}, nil, fmt.Errorf("read geoapify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FeatureCollection{}, body, &StatusError{StatusCode: resp.StatusCode}
	}

	var parsed FeatureCollection
	if err := json.Unmarshal(body, &parsed); err != nil {
		return FeatureCollection{}, body, fmt.Errorf("decode geoapify response: %w", err)
	}
	return parsed, body, nil
}
