// Package calendar renders calendar events as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/service"
)

const productID = "-//gonext//mood calendar//EN"

// Export builds a VCALENDAR with one all-day VEVENT per event. Events with an
// unparsable date are skipped and counted.
func Export(events []model.CalendarEvent, stamp time.Time) (*ical.Calendar, int) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("gonext")

	skipped := 0
	for _, e := range events {
		day, err := time.ParseInLocation("2006-01-02", e.Date, time.UTC)
		if err != nil {
			skipped++
			continue
		}
		label := e.Mood
		if m, err := service.LookupMood(e.Mood); err == nil {
			label = m.Label
		}
		msg := service.MessageForMood(e.Mood)

		ve := cal.AddEvent(e.ID + "@gonext")
		ve.SetDtStampTime(stamp.UTC())
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt.UTC())
		}
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ve.SetSummary(summary(label, e.Note))
		ve.SetDescription(fmt.Sprintf("%s %s\n%s", msg.Emoji, msg.Title, msg.Message))
		ve.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(e.Mood))
	}
	return cal, skipped
}

// Write serializes the feed for events to w.
func Write(w io.Writer, events []model.CalendarEvent, stamp time.Time) (int, error) {
	cal, skipped := Export(events, stamp)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return skipped, fmt.Errorf("write calendar: %w", err)
	}
	return skipped, nil
}

func summary(label, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return label
	}
	return label + ": " + note
}
