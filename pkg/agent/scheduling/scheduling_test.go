package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/medassist/pkg/agent"
	"github.com/medassist/medassist/pkg/completion/mock"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 10, 0, 0, 0, time.UTC) }
}

func TestProcess_NextWeekYieldsTwentyWeekdaySlots(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Monday 09:00 looks best."))
	// Wednesday 2025-11-05; next week is Nov 10-16
	a := NewWithClock(client, fixedClock(2025, time.November, 5))

	result, err := a.Process(context.Background(), "I need to schedule a checkup for next week")
	require.NoError(t, err)

	assert.Equal(t, agent.ActionSchedule, result.Action)
	assert.Len(t, result.Slots, 20, "4 slots x 5 weekdays")
	for _, slot := range result.Slots {
		day, err := time.Parse("2006-01-02", slot.Date)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, day.Weekday())
		assert.NotEqual(t, time.Sunday, day.Weekday())
		assert.True(t, slot.Available)
		assert.Equal(t, "30 min", slot.Duration)
	}
	assert.Equal(t, "2025-11-10", result.Slots[0].Date)
	assert.Equal(t, "09:00", result.Slots[0].Time)
	assert.Equal(t, "2025-11-14", result.Slots[len(result.Slots)-1].Date)
	assert.Equal(t, "Monday 09:00 looks best.", result.Recommendation)
}

func TestProcess_ReschedulePrompt(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Rescheduled."))
	a := NewWithClock(client, fixedClock(2025, time.November, 5))

	result, err := a.Process(context.Background(), "reschedule|P001|conflict with work next week")
	require.NoError(t, err)

	assert.Equal(t, agent.ActionReschedule, result.Action)
	assert.Equal(t, "P001", result.PatientID)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "Reason for Rescheduling: conflict with work next week")
}

func TestProcess_SchedulePromptCarriesDateContext(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Booked."))
	a := NewWithClock(client, fixedClock(2025, time.November, 5))

	_, err := a.Process(context.Background(), "schedule|P002|checkup next week")
	require.NoError(t, err)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "Patient ID: P002")
	assert.Contains(t, history[0].Prompt, "Today's date: 2025-11-05")
	assert.Contains(t, history[0].Prompt, "Requested date range: 2025-11-10 to 2025-11-16")
}

func TestGenerateSlots_DefaultWindow(t *testing.T) {
	// Wednesday; default window Thu Nov 6 - Mon Nov 10, weekend skipped
	today := time.Date(2025, time.November, 5, 10, 0, 0, 0, time.UTC)

	slots := GenerateSlots(nil, today)
	assert.Len(t, slots, 12, "Thu, Fri, Mon only")
	assert.Equal(t, "2025-11-06", slots[0].Date)
	assert.Equal(t, "2025-11-10", slots[len(slots)-1].Date)
}

func TestProcess_PropagatesCompletionError(t *testing.T) {
	client := mock.NewClient(mock.WithShouldError(true))
	a := NewWithClock(client, fixedClock(2025, time.November, 5))

	_, err := a.Process(context.Background(), "checkup next week")
	assert.Error(t, err)
}
