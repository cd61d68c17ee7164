package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekID(t *testing.T) {
	t.Run("monday january first", func(t *testing.T) {
		assert.Equal(t, "2024-W01", WeekID(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("early january can belong to the previous year", func(t *testing.T) {
		// 2021-01-01 is a Friday of ISO week 2020-W53.
		assert.Equal(t, "2020-W53", WeekID(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("late december can belong to the next year", func(t *testing.T) {
		// 2024-12-30 is the Monday of 2025-W01.
		assert.Equal(t, "2025-W01", WeekID(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
	})
}

func TestMondayOf(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("monday maps to itself", func(t *testing.T) {
		assert.Equal(t, monday, MondayOf(monday))
	})

	t.Run("mid-week maps back", func(t *testing.T) {
		assert.Equal(t, monday, MondayOf(time.Date(2024, 6, 12, 18, 45, 0, 0, time.UTC)))
	})

	t.Run("sunday belongs to the preceding monday", func(t *testing.T) {
		assert.Equal(t, monday, MondayOf(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)))
	})
}

func TestWeekMonday(t *testing.T) {
	t.Run("resolves a week id to its monday", func(t *testing.T) {
		monday, ok := WeekMonday("2024-W01")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), monday)
	})

	t.Run("round trips through WeekID", func(t *testing.T) {
		for _, date := range []time.Time{
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		} {
			monday, ok := WeekMonday(WeekID(date))
			require.True(t, ok, date)
			assert.Equal(t, WeekID(date), WeekID(monday), date)
			assert.Equal(t, time.Monday, monday.Weekday(), date)
		}
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		for _, id := range []string{"", "2024", "2024-W00", "2024-W60", "garbage"} {
			_, ok := WeekMonday(id)
			assert.False(t, ok, id)
		}
	})
}
