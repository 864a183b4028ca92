package calendar

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/gonext/internal/model"
)

func TestWriteProducesParsableFeed(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "e1", Date: "2026-10-20", Mood: "date", Note: "Anniversary", CreatedAt: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)},
		{ID: "e2", Date: "2026-10-21", Mood: "mystery"},
		{ID: "bad", Date: "20/10/2026", Mood: "work"},
	}

	var buf bytes.Buffer
	skipped, err := Write(&buf, events, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)

	cal, err := ical.ParseCalendar(&buf)
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	first := parsed[0]
	assert.Equal(t, "e1@gonext", first.Id())
	assert.Equal(t, "🌹 Date Night: Anniversary", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "20261020", first.GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20261021", first.GetProperty(ical.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "DATE", first.GetProperty(ical.ComponentPropertyCategories).Value)

	second := parsed[1]
	assert.Equal(t, "mystery", second.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Contains(t, second.GetProperty(ical.ComponentPropertyDescription).Value, "Adventure Awaits!")
}

func TestExportEmpty(t *testing.T) {
	cal, skipped := Export(nil, time.Now())
	assert.Zero(t, skipped)
	assert.Empty(t, cal.Events())
	assert.Contains(t, cal.Serialize(), "BEGIN:VCALENDAR")
}
