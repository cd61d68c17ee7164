package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

func TestEntryHours(t *testing.T) {
	t.Run("explicit hours win", func(t *testing.T) {
		hours := 3.5
		entry := model.TimeEntry{
			Hours: &hours,
			Start: "2024-06-10T09:00:00Z",
			End:   "2024-06-10T10:00:00Z",
		}
		assert.Equal(t, 3.5, EntryHours(entry))
	})

	t.Run("explicit zero is kept", func(t *testing.T) {
		zero := 0.0
		entry := model.TimeEntry{
			Hours: &zero,
			Start: "2024-06-10T09:00:00Z",
			End:   "2024-06-10T17:00:00Z",
		}
		assert.Equal(t, 0.0, EntryHours(entry))
	})

	t.Run("derived from timestamp delta", func(t *testing.T) {
		entry := model.TimeEntry{
			Start: "2024-06-10T09:00:00Z",
			End:   "2024-06-10T17:30:00Z",
		}
		assert.InDelta(t, 8.5, EntryHours(entry), 1e-9)
	})

	t.Run("no hours and no timestamps is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, EntryHours(model.TimeEntry{Date: "2024-06-10"}))
	})
}

func TestEntryDate(t *testing.T) {
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("explicit date field wins", func(t *testing.T) {
		entry := model.TimeEntry{Date: "2024-06-10", Start: "2024-06-11T09:00:00Z"}
		date, ok := EntryDate(entry)
		require.True(t, ok)
		assert.Equal(t, want, date)
	})

	t.Run("start timestamp date portion", func(t *testing.T) {
		entry := model.TimeEntry{Start: "2024-06-10T23:59:00Z"}
		date, ok := EntryDate(entry)
		require.True(t, ok)
		assert.Equal(t, want, date)
	})

	t.Run("start date then end date", func(t *testing.T) {
		date, ok := EntryDate(model.TimeEntry{StartDate: "2024-06-10"})
		require.True(t, ok)
		assert.Equal(t, want, date)

		date, ok = EntryDate(model.TimeEntry{EndDate: "2024-06-10"})
		require.True(t, ok)
		assert.Equal(t, want, date)
	})

	t.Run("no date source", func(t *testing.T) {
		_, ok := EntryDate(model.TimeEntry{})
		assert.False(t, ok)
	})
}
