package calendar

import (
	"testing"
	"time"

	"ai-resume-analyst/internal/config"

	"github.com/stretchr/testify/assert"
	gcal "google.golang.org/api/calendar/v3"
)

func TestBusyFromResponse(t *testing.T) {
	start := sunday
	end := sunday.AddDate(0, 0, lookaheadDays+1)
	monday := sunday.AddDate(0, 0, 1)

	resp := &gcal.FreeBusyResponse{
		Calendars: map[string]gcal.FreeBusyCalendar{
			"alice@example.com": {
				Busy: []*gcal.TimePeriod{{
					Start: monday.Add(9 * time.Hour).Format(time.RFC3339),
					End:   monday.Add(10 * time.Hour).Format(time.RFC3339),
				}},
			},
			"ghost@example.com": {
				Errors: []*gcal.Error{{Domain: "global", Reason: "notFound"}},
			},
			"garbled@example.com": {
				Busy: []*gcal.TimePeriod{{Start: "yesterday", End: "tomorrow"}},
			},
		},
	}

	busy := busyFromResponse(resp, start, end)

	assert.Equal(t, []Interval{{Start: monday.Add(9 * time.Hour), End: monday.Add(10 * time.Hour)}}, busy["alice@example.com"])
	assert.Equal(t, []Interval{{Start: start, End: end}}, busy["ghost@example.com"])
	assert.Equal(t, []Interval{{Start: start, End: end}}, busy["garbled@example.com"])
}

func TestBusyFromResponse_UnreadableCalendarHasNoFreeSlots(t *testing.T) {
	start := sunday
	end := sunday.AddDate(0, 0, lookaheadDays+1)
	resp := &gcal.FreeBusyResponse{
		Calendars: map[string]gcal.FreeBusyCalendar{
			"alice@example.com": {},
			"ghost@example.com": {Errors: []*gcal.Error{{Reason: "notFound"}}},
		},
	}

	avail := ComputeAvailability(busyFromResponse(resp, start, end), config.DefaultSlots(), sunday)

	for _, slot := range avail.Slots {
		assert.Empty(t, avail.NextSevenDays[slot], slot)
	}
}
