package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateRange_NextWeek(t *testing.T) {
	// Wednesday
	today := date(2025, time.November, 5)

	dr := ParseDateRange("I need to schedule a checkup for next week", today)
	require.NotNil(t, dr)

	assert.Equal(t, date(2025, time.November, 10), dr.Start)
	assert.Equal(t, date(2025, time.November, 16), dr.End)
	assert.Equal(t, time.Monday, dr.Start.Weekday())
	assert.Equal(t, time.Sunday, dr.End.Weekday())
	assert.True(t, dr.Start.After(today), "next week starts strictly after the current week")
}

func TestParseDateRange_NextWeek_FromSunday(t *testing.T) {
	today := date(2025, time.November, 9) // Sunday

	dr := ParseDateRange("next week please", today)
	require.NotNil(t, dr)
	assert.Equal(t, date(2025, time.November, 10), dr.Start, "Sunday rolls to the very next Monday")
}

func TestParseDateRange_ThisWeek(t *testing.T) {
	today := date(2025, time.November, 5) // Wednesday

	dr := ParseDateRange("anything open this week?", today)
	require.NotNil(t, dr)
	assert.Equal(t, date(2025, time.November, 3), dr.Start)
	assert.Equal(t, date(2025, time.November, 9), dr.End)
}

func TestParseDateRange_LastWeekOfMonth(t *testing.T) {
	t.Run("upcoming month this year", func(t *testing.T) {
		today := date(2025, time.November, 5)

		dr := ParseDateRange("book me for the end of november", today)
		require.NotNil(t, dr)
		assert.Equal(t, date(2025, time.November, 24), dr.Start)
		assert.Equal(t, date(2025, time.November, 30), dr.End)
	})

	t.Run("month already passed rolls to next year", func(t *testing.T) {
		today := date(2025, time.November, 5)

		dr := ParseDateRange("last week of march", today)
		require.NotNil(t, dr)
		assert.Equal(t, date(2026, time.March, 25), dr.Start)
		assert.Equal(t, date(2026, time.March, 31), dr.End)
	})

	t.Run("current month past day 21 rolls to next year", func(t *testing.T) {
		today := date(2025, time.December, 28)

		dr := ParseDateRange("last week of december", today)
		require.NotNil(t, dr)
		assert.Equal(t, date(2026, time.December, 25), dr.Start)
		assert.Equal(t, date(2026, time.December, 31), dr.End)
	})
}

func TestParseDateRange_LastWeekOfNextMonth(t *testing.T) {
	today := date(2025, time.December, 10)

	dr := ParseDateRange("last week of next month", today)
	require.NotNil(t, dr)
	assert.Equal(t, date(2026, time.January, 25), dr.Start)
	assert.Equal(t, date(2026, time.January, 31), dr.End)
}

func TestParseDateRange_NextMonth(t *testing.T) {
	t.Run("mid-year", func(t *testing.T) {
		today := date(2025, time.November, 5)

		dr := ParseDateRange("sometime next month", today)
		require.NotNil(t, dr)
		assert.Equal(t, date(2025, time.December, 1), dr.Start)
		assert.Equal(t, date(2025, time.December, 31), dr.End)
	})

	t.Run("december rolls the year", func(t *testing.T) {
		today := date(2025, time.December, 10)

		dr := ParseDateRange("sometime next month", today)
		require.NotNil(t, dr)
		assert.Equal(t, date(2026, time.January, 1), dr.Start)
		assert.Equal(t, date(2026, time.January, 31), dr.End)
	})
}

func TestParseDateRange_NoMatch(t *testing.T) {
	today := date(2025, time.November, 5)
	assert.Nil(t, ParseDateRange("as soon as possible", today))
}
