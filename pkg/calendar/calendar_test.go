package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-resume-analyst/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	busy  map[string][]Interval
	err   error
	calls int
}

func (f *fakeSource) Busy(_ context.Context, _ []string, _, _ time.Time) (map[string][]Interval, error) {
	f.calls++
	return f.busy, f.err
}

// 2025-06-01 是星期日，之后 7 天为周一到周日。
var sunday = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestComputeAvailability_AllFreeSkipsWeekend(t *testing.T) {
	avail := ComputeAvailability(nil, config.DefaultSlots(), sunday)

	assert.Equal(t, []string{"morning", "afternoon", "evening"}, avail.Slots)
	assert.Equal(t, []string{"Mon Jun 2", "Tue Jun 3", "Wed Jun 4", "Thu Jun 5", "Fri Jun 6"}, avail.NextSevenDays["morning"])
	assert.Len(t, avail.NextSevenDays["evening"], 5)
}

func TestComputeAvailability_BusyCandidateBlocksSlot(t *testing.T) {
	tuesday := sunday.AddDate(0, 0, 2)
	busy := map[string][]Interval{
		"alice@example.com": {{Start: tuesday.Add(10 * time.Hour), End: tuesday.Add(11 * time.Hour)}},
		"bob@example.com":   {},
	}

	avail := ComputeAvailability(busy, config.DefaultSlots(), sunday)

	assert.NotContains(t, avail.NextSevenDays["morning"], "Tue Jun 3")
	assert.Contains(t, avail.NextSevenDays["afternoon"], "Tue Jun 3")
}

func TestComputeAvailability_TouchingIntervalIsFree(t *testing.T) {
	monday := sunday.AddDate(0, 0, 1)
	busy := map[string][]Interval{
		"a": {{Start: monday.Add(12 * time.Hour), End: monday.Add(13 * time.Hour)}},
	}

	avail := ComputeAvailability(busy, config.DefaultSlots(), sunday)

	assert.Contains(t, avail.NextSevenDays["morning"], "Mon Jun 2")
	assert.Contains(t, avail.NextSevenDays["afternoon"], "Mon Jun 2")
}

func TestChecker_NoCalendarsSkipsSource(t *testing.T) {
	src := &fakeSource{}
	c := NewChecker(src, config.DefaultSlots(), time.UTC, func() time.Time { return sunday.Add(15 * time.Hour) })

	res, err := c.Availability(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, src.calls)
	assert.Len(t, res.Availability.NextSevenDays["morning"], 5)
}

func TestChecker_SourceErrorPropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("quota exceeded")}
	c := NewChecker(src, config.DefaultSlots(), time.UTC, func() time.Time { return sunday })

	_, err := c.Availability(context.Background(), []string{"a@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewClient_StaticProvider(t *testing.T) {
	c, err := NewClient(context.Background(), config.CalendarConfig{Provider: "static", Timezone: "UTC"})
	require.NoError(t, err)

	res, err := c.Availability(context.Background(), []string{"a@example.com"})
	require.NoError(t, err)
	assert.Len(t, res.Availability.Slots, 3)
}

func TestNewClient_InvalidTimezone(t *testing.T) {
	_, err := NewClient(context.Background(), config.CalendarConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}
