package streak_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/streak"
)

func newHabit(t *testing.T, rec domain.Recurrence) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit("Test Habit", "", rec, nil)
	require.NoError(t, err)
	return habit
}

func done(dates ...string) []*domain.Completion {
	var completions []*domain.Completion
	for _, s := range dates {
		d, err := domain.ParseDate(s)
		if err != nil {
			panic(err)
		}
		completions = append(completions, domain.NewCompletion("h1", d, true, 0))
	}
	return completions
}

func TestCompute_Daily(t *testing.T) {
	today := domain.NewDate(2023, time.January, 5)

	t.Run("Success: consecutive run up to yesterday survives an open today", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})
		completions := done("2023-01-02", "2023-01-03", "2023-01-04")

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 3, data.CurrentStreak)
		assert.Equal(t, 3, data.LongestStreak)
		assert.Equal(t, 3, data.TotalCompletions)
		assert.True(t, data.IsDueToday)
		require.NotNil(t, data.LastCompletionDate)
		assert.Equal(t, "2023-01-04", data.LastCompletionDate.String())
	})

	t.Run("Success: completing today extends the run", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})
		completions := done("2023-01-03", "2023-01-04", "2023-01-05")

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 3, data.CurrentStreak)
	})

	t.Run("Edge Case: gap two days ago breaks the current streak", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})
		completions := done("2023-01-01", "2023-01-02", "2023-01-03")

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 0, data.CurrentStreak)
		assert.Equal(t, 3, data.LongestStreak)
	})

	t.Run("Edge Case: longest run lives in the past", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})
		completions := done(
			"2022-12-20", "2022-12-21", "2022-12-22", "2022-12-23",
			"2023-01-04",
		)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 1, data.CurrentStreak)
		assert.Equal(t, 4, data.LongestStreak)
	})

	t.Run("Edge Case: year boundary does not break a run", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})
		completions := done("2022-12-30", "2022-12-31", "2023-01-01")

		data, err := streak.Compute(habit, completions, domain.NewDate(2023, time.January, 1))

		require.NoError(t, err)
		assert.Equal(t, 3, data.CurrentStreak)
		assert.Equal(t, 3, data.LongestStreak)
	})

	t.Run("Edge Case: empty history", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})

		data, err := streak.Compute(habit, nil, today)

		require.NoError(t, err)
		assert.Equal(t, 0, data.CurrentStreak)
		assert.Equal(t, 0, data.LongestStreak)
		assert.Equal(t, 0, data.TotalCompletions)
		assert.Nil(t, data.LastCompletionDate)
		assert.True(t, data.IsDueToday)
	})

	t.Run("Edge Case: not-completed records neither count nor extend", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})
		d3, _ := domain.ParseDate("2023-01-03")
		completions := append(done("2023-01-04"), domain.NewCompletion("h1", d3, false, 0))

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 1, data.CurrentStreak)
		assert.Equal(t, 1, data.TotalCompletions)
	})

	t.Run("Fail: duplicate dates in history", func(t *testing.T) {
		habit := newHabit(t, domain.Daily{})
		completions := done("2023-01-04", "2023-01-04")

		_, err := streak.Compute(habit, completions, today)
		assert.ErrorIs(t, err, domain.ErrDuplicateCompletion)
	})
}

func TestCompute_Weekly(t *testing.T) {
	rec := domain.NewWeekly([]time.Weekday{time.Monday, time.Wednesday, time.Friday})

	t.Run("Success: one due-day completion per week keeps the chain", func(t *testing.T) {
		habit := newHabit(t, rec)
		// Mondays of three consecutive ISO weeks.
		completions := done("2023-01-02", "2023-01-09", "2023-01-16")
		today := domain.NewDate(2023, time.January, 18) // Wednesday, same week as Jan 16

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 3, data.CurrentStreak)
		assert.Equal(t, 3, data.LongestStreak)
		assert.True(t, data.IsDueToday)
	})

	t.Run("Success: open current week does not break the chain", func(t *testing.T) {
		habit := newHabit(t, rec)
		completions := done("2023-01-02", "2023-01-09")
		today := domain.NewDate(2023, time.January, 18)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 2, data.CurrentStreak)
	})

	t.Run("Edge Case: completion on a non-due day does not complete the week", func(t *testing.T) {
		habit := newHabit(t, rec)
		// Jan 10 is a Tuesday; the rule never schedules Tuesdays.
		completions := done("2023-01-02", "2023-01-10", "2023-01-16")
		today := domain.NewDate(2023, time.January, 18)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 1, data.CurrentStreak)
		assert.Equal(t, 3, data.TotalCompletions)
	})

	t.Run("Edge Case: missed week resets the current streak", func(t *testing.T) {
		habit := newHabit(t, rec)
		// Weeks 1 and 3 done, week 2 skipped.
		completions := done("2023-01-02", "2023-01-16")
		today := domain.NewDate(2023, time.January, 18)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 1, data.CurrentStreak)
		assert.Equal(t, 1, data.LongestStreak)
	})

	t.Run("Edge Case: chain spanning the ISO year boundary", func(t *testing.T) {
		habit := newHabit(t, domain.NewWeekly([]time.Weekday{time.Wednesday}))
		// Dec 28 2022 and Jan 4 2023 are consecutive ISO weeks.
		completions := done("2022-12-28", "2023-01-04")
		today := domain.NewDate(2023, time.January, 4)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 2, data.CurrentStreak)
		assert.Equal(t, 2, data.LongestStreak)
	})

	t.Run("Edge Case: chain out of a 53-week ISO year", func(t *testing.T) {
		habit := newHabit(t, domain.NewWeekly([]time.Weekday{time.Monday}))
		// 2020 has 53 ISO weeks: Dec 28 2020 falls in week 53, and the
		// following Monday opens week 1 of 2021.
		completions := done("2020-12-28", "2021-01-04")
		today := domain.NewDate(2021, time.January, 4)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 2, data.CurrentStreak)
		assert.Equal(t, 2, data.LongestStreak)
	})
}

func TestCompute_Monthly(t *testing.T) {
	t.Run("Success: first-of-month chain across the year boundary", func(t *testing.T) {
		habit := newHabit(t, domain.NewMonthly([]int{1}))
		completions := done("2022-11-01", "2022-12-01", "2023-01-01")
		today := domain.NewDate(2023, time.January, 10)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 3, data.CurrentStreak)
		assert.Equal(t, 3, data.LongestStreak)
	})

	t.Run("Edge Case: months without the scheduled day are skipped, not broken", func(t *testing.T) {
		habit := newHabit(t, domain.NewMonthly([]int{31}))
		// February 2023 has no 31st; January and March still chain.
		completions := done("2023-01-31", "2023-03-31")
		today := domain.NewDate(2023, time.March, 31)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 2, data.CurrentStreak)
		assert.Equal(t, 2, data.LongestStreak)
	})

	t.Run("Edge Case: open current month keeps the previous chain", func(t *testing.T) {
		habit := newHabit(t, domain.NewMonthly([]int{15}))
		completions := done("2022-11-15", "2022-12-15")
		today := domain.NewDate(2023, time.January, 10) // before the 15th

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 2, data.CurrentStreak)
	})

	t.Run("Edge Case: missed month resets", func(t *testing.T) {
		habit := newHabit(t, domain.NewMonthly([]int{15}))
		completions := done("2022-10-15", "2022-12-15")
		today := domain.NewDate(2022, time.December, 20)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		assert.Equal(t, 1, data.CurrentStreak)
		assert.Equal(t, 1, data.LongestStreak)
	})

	t.Run("Edge Case: lookback horizon caps a very long chain", func(t *testing.T) {
		habit := newHabit(t, domain.NewMonthly([]int{1}))

		var dates []string
		cursor := domain.NewDate(2021, time.June, 1)
		for i := 0; i < 20; i++ {
			dates = append(dates, cursor.String())
			cursor = domain.NewDate(cursor.Year(), cursor.Month()+1, 1)
		}
		completions := done(dates...)
		today := domain.NewDate(2023, time.January, 15)

		data, err := streak.Compute(habit, completions, today)

		require.NoError(t, err)
		// The backward walk stops after twelve periods.
		assert.Equal(t, 12, data.CurrentStreak)
		assert.Equal(t, 20, data.LongestStreak)
	})
}

func TestCompute_CurrentNeverExceedsLongest(t *testing.T) {
	habit := newHabit(t, domain.NewMonthly([]int{31}))
	completions := done("2023-01-31", "2023-03-31")
	today := domain.NewDate(2023, time.March, 31)

	data, err := streak.Compute(habit, completions, today)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, data.LongestStreak, data.CurrentStreak)
}
