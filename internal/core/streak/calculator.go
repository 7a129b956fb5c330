// Package streak computes current and longest streaks from a habit's full
// completion history.
package streak

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/schedule"
)

// Non-daily current streaks only look back a bounded number of periods.
const maxPeriodLookback = 12

// Compute derives StreakData for one habit. The completions slice must be
// the habit's full, unfiltered history; pre-filtering by date range breaks
// longest-streak detection. A second completion for the same date violates
// the upstream uniqueness invariant and fails fast with
// ErrDuplicateCompletion.
func Compute(habit *domain.Habit, completions []*domain.Completion, today domain.Date) (*domain.StreakData, error) {
	dueToday, err := schedule.IsDue(habit.Recurrence, today)
	if err != nil {
		return nil, err
	}

	data := &domain.StreakData{IsDueToday: dueToday}

	seen := make(map[domain.Date]bool, len(completions))
	completed := make(map[domain.Date]bool)
	var lastDate domain.Date

	for _, c := range completions {
		if c.DeletedAt != nil {
			continue
		}
		if seen[c.Date] {
			return nil, domain.ErrDuplicateCompletion
		}
		seen[c.Date] = true

		if !c.Completed {
			continue
		}
		completed[c.Date] = true
		data.TotalCompletions++
		if lastDate.IsZero() || c.Date.After(lastDate) {
			lastDate = c.Date
		}
	}

	if !lastDate.IsZero() {
		data.LastCompletionDate = &lastDate
	}

	if len(completed) == 0 {
		return data, nil
	}

	switch rec := habit.Recurrence.(type) {
	case domain.Daily:
		data.CurrentStreak = dailyCurrentStreak(completed, today)
		data.LongestStreak = dailyLongestStreak(completed)
	case domain.Weekly:
		periods, err := completedPeriods(rec, completed, weekOf)
		if err != nil {
			return nil, err
		}
		data.CurrentStreak = currentPeriodStreak(periods, today, weekWalker{})
		data.LongestStreak = longestPeriodStreak(periods, nextWeek)
	case domain.Monthly:
		periods, err := completedPeriods(rec, completed, monthOf)
		if err != nil {
			return nil, err
		}
		data.CurrentStreak = currentPeriodStreak(periods, today, monthWalker{rec: rec})
		data.LongestStreak = longestPeriodStreak(periods, nextMonth)
	default:
		return nil, domain.ErrUnsupportedRecurrence
	}

	// The walk can never exceed the historical maximum, but partial data
	// inconsistencies must not produce an impossible pair.
	if data.CurrentStreak > data.LongestStreak {
		data.LongestStreak = data.CurrentStreak
	}

	return data, nil
}

func dailyCurrentStreak(completed map[domain.Date]bool, today domain.Date) int {
	cursor := today
	if !completed[cursor] {
		// Today is still in progress; a missing completion doesn't break
		// the streak yet.
		cursor = cursor.AddDays(-1)
	}

	streak := 0
	for completed[cursor] {
		streak++
		cursor = cursor.AddDays(-1)
	}
	return streak
}

func dailyLongestStreak(completed map[domain.Date]bool) int {
	dates := make([]domain.Date, 0, len(completed))
	for d := range completed {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest := 0
	run := 0
	for i, d := range dates {
		if i > 0 && dates[i-1].DaysUntil(d) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// periodKey identifies one streak period: an ISO (year, week) pair for
// weekly habits, a (year, month) pair for monthly ones.
type periodKey struct {
	year  int
	index int
}

func weekOf(d domain.Date) periodKey {
	y, w := d.ISOWeek()
	return periodKey{year: y, index: w}
}

func monthOf(d domain.Date) periodKey {
	return periodKey{year: d.Year(), index: int(d.Month())}
}

// completedPeriods marks a period completed when it contains at least one
// completed record on a date the rule actually schedules.
func completedPeriods(rec domain.Recurrence, completed map[domain.Date]bool, keyOf func(domain.Date) periodKey) (map[periodKey]bool, error) {
	periods := make(map[periodKey]bool)
	for d := range completed {
		due, err := schedule.IsDue(rec, d)
		if err != nil {
			return nil, err
		}
		if due {
			periods[keyOf(d)] = true
		}
	}
	return periods, nil
}

// periodWalker steps backward through a habit's periods from a cursor date.
type periodWalker interface {
	key(cursor domain.Date) periodKey
	// scheduled reports whether the period containing cursor has any due
	// date at all. A Feb cursor for a day-31 monthly habit is unscheduled.
	scheduled(cursor domain.Date) bool
	back(cursor domain.Date) domain.Date
}

type weekWalker struct{}

func (weekWalker) key(cursor domain.Date) periodKey { return weekOf(cursor) }

func (weekWalker) scheduled(domain.Date) bool { return true }

func (weekWalker) back(cursor domain.Date) domain.Date { return cursor.AddDays(-7) }

type monthWalker struct {
	rec domain.Monthly
}

func (monthWalker) key(cursor domain.Date) periodKey { return monthOf(cursor) }

func (w monthWalker) scheduled(cursor domain.Date) bool {
	last := daysInMonth(cursor.Year(), cursor.Month())
	for _, d := range w.rec.MonthDays {
		if d <= last {
			return true
		}
	}
	return false
}

func (monthWalker) back(cursor domain.Date) domain.Date {
	// Last day of the previous month; avoids AddDate day normalization.
	return domain.NewDate(cursor.Year(), cursor.Month(), 1).AddDays(-1)
}

// currentPeriodStreak walks back from the period containing today, counting
// consecutive completed periods. The still-open current period gets the same
// leniency as a not-yet-completed today; unscheduled periods are skipped and
// never break the walk.
func currentPeriodStreak(periods map[periodKey]bool, today domain.Date, walker periodWalker) int {
	streak := 0
	cursor := today
	for i := 0; i < maxPeriodLookback; i++ {
		switch {
		case !walker.scheduled(cursor):
			// Nothing due this period; skip.
		case periods[walker.key(cursor)]:
			streak++
		case i == 0:
			// Current period still open.
		default:
			return streak
		}
		cursor = walker.back(cursor)
	}
	return streak
}

func longestPeriodStreak(periods map[periodKey]bool, next func(periodKey) periodKey) int {
	keys := make([]periodKey, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].index < keys[j].index
	})

	longest := 0
	run := 0
	for i, k := range keys {
		if i > 0 && next(keys[i-1]) == k {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func nextWeek(k periodKey) periodKey {
	if k.index < isoWeeksInYear(k.year) {
		return periodKey{year: k.year, index: k.index + 1}
	}
	return periodKey{year: k.year + 1, index: 1}
}

// nextMonth handles the December to January rollover explicitly.
func nextMonth(k periodKey) periodKey {
	if k.index < 12 {
		return periodKey{year: k.year, index: k.index + 1}
	}
	return periodKey{year: k.year + 1, index: 1}
}

// isoWeeksInYear returns 52 or 53. December 28 is always in the last ISO
// week of its year.
func isoWeeksInYear(year int) int {
	_, w := domain.NewDate(year, time.December, 28).ISOWeek()
	return w
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
