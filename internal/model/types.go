package model

import "time"

const (
	SortByDistance = "distance"
	SortByRating   = "rating"
)

type Place struct {
	ID       string   `json:"id" validate:"required"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Lat      float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64  `json:"lon" validate:"gte=-180,lte=180"`
	Distance float64  `json:"distance" validate:"gte=0"`
	Rating   *float64 `json:"rating"`
	IsOpen   *bool    `json:"isOpen"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone,omitempty"`
	Website  string   `json:"website,omitempty"`
}

// RatingOrZero treats an absent rating as 0.
func (p Place) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

type FilterConfig struct {
	MaxDistance int     `json:"maxDistance" validate:"gte=0"`
	MinRating   float64 `json:"minRating" validate:"gte=0,lte=5"`
	OpenNow     bool    `json:"openNow"`
	SortBy      string  `json:"sortBy" validate:"oneof=distance rating"`
}

func DefaultFilters() FilterConfig {
	return FilterConfig{
		MaxDistance: 3000,
		MinRating:   0,
		OpenNow:     false,
		SortBy:      SortByDistance,
	}
}

type CalendarEvent struct {
	ID        string    `json:"id" validate:"required"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Mood      string    `json:"mood"`
	Note      string    `json:"note,omitempty" validate:"max=100"`
	CreatedAt time.Time `json:"createdAt"`
	Notified  bool      `json:"notified"`
}

type Notification struct {
	EventID     string    `json:"eventId"`
	Date        string    `json:"date"`
	Mood        string    `json:"mood"`
	Note        string    `json:"note,omitempty"`
	Emoji       string    `json:"emoji"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Color       string    `json:"color"`
	PublishedAt time.Time `json:"publishedAt"`
}

type FavoritePlace struct {
	Place
	Mood    string    `json:"mood"`
	SavedAt time.Time `json:"savedAt"`
}

type User struct {
	ID       string    `json:"id" validate:"required"`
	Name     string    `json:"name"`
	Email    string    `json:"email" validate:"required"`
	Password string    `json:"password"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Session struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email" validate:"required"`
}

type Mood struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Categories string `json:"categories"`
	SortBy     string `json:"sortBy"`
	Color      string `json:"color"`
}

type MoodMessage struct {
	Emoji   string `json:"emoji"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Color   string `json:"color"`
}
