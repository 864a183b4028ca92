package service

import (
	"fmt"
	"strings"

	"github.com/saadjs/gonext/internal/model"
)

const (
	MoodWork      = "work"
	MoodDate      = "date"
	MoodQuickBite = "quickbite"
	MoodBudget    = "budget"
	MoodExplore   = "explore"
)

var moods = []model.Mood{
	{ID: MoodWork, Label: "💼 Work", Categories: "catering.cafe", SortBy: model.SortByRating, Color: "#7c6df0"},
	{ID: MoodDate, Label: "🌹 Date Night", Categories: "catering.restaurant", SortBy: model.SortByRating, Color: "#f06292"},
	{ID: MoodQuickBite, Label: "🍔 Quick Bite", Categories: "catering.fast_food,catering.food_court", SortBy: model.SortByDistance, Color: "#ff9800"},
	{ID: MoodBudget, Label: "💸 Budget", Categories: "catering.restaurant,catering.cafe", SortBy: model.SortByDistance, Color: "#4caf50"},
	{ID: MoodExplore, Label: "🗺️ Explore", Categories: "tourism.attraction,leisure.park", SortBy: model.SortByRating, Color: "#29b6f6"},
}

var moodMessages = map[string]model.MoodMessage{
	MoodWork: {
		Emoji:   "💼",
		Title:   "Time to Focus!",
		Message: "Your productive space awaits. Let's crush those goals today!",
		Color:   "#7c3aed",
	},
	MoodDate: {
		Emoji:   "🌹",
		Title:   "Romance is in the Air!",
		Message: "Your special evening awaits. Make tonight unforgettable! 💕",
		Color:   "#f06292",
	},
	MoodQuickBite: {
		Emoji:   "🍔",
		Title:   "Time to Refuel!",
		Message: "Your favorite quick bite spot is calling. Bon appétit!",
		Color:   "#ff9800",
	},
	MoodBudget: {
		Emoji:   "💸",
		Title:   "Smart Spending Time!",
		Message: "Great food doesn't need a big budget. Enjoy your value meal!",
		Color:   "#4caf50",
	},
	MoodExplore: {
		Emoji:   "🗺️",
		Title:   "Adventure Awaits!",
		Message: "Time to discover something new. Let curiosity be your guide!",
		Color:   "#29b6f6",
	},
}

// Moods returns the mood table in display order.
func Moods() []model.Mood {
	return append([]model.Mood(nil), moods...)
}

// LookupMood resolves a mood id case-insensitively.
func LookupMood(id string) (model.Mood, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, m := range moods {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Mood{}, fmt.Errorf("%w: unknown mood %q (expected one of %s)", ErrInvalidInput, id, strings.Join(moodIDs(), ", "))
}

// MessageForMood falls back to the explore entry for unknown moods.
func MessageForMood(id string) model.MoodMessage {
	if msg, ok := moodMessages[id]; ok {
		return msg
	}
	return moodMessages[MoodExplore]
}

func moodIDs() []string {
	ids := make([]string, 0, len(moods))
	for _, m := range moods {
		ids = append(ids, m.ID)
	}
	return ids
}
