// Package schedule resolves recurrence rules against calendar dates.
package schedule

import (
	"fmt"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

// IsDue reports whether a recurrence rule schedules the habit on the given
// date. Pure function; an unknown recurrence variant fails loudly.
func IsDue(rec domain.Recurrence, date domain.Date) (bool, error) {
	switch r := rec.(type) {
	case domain.Daily:
		return true, nil
	case domain.Weekly:
		wd := date.Weekday()
		for _, d := range r.Weekdays {
			if d == wd {
				return true, nil
			}
		}
		return false, nil
	case domain.Monthly:
		// Days the month doesn't have never match; no rollover.
		day := date.Day()
		for _, d := range r.MonthDays {
			if d == day {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %T", domain.ErrUnsupportedRecurrence, rec)
	}
}

// DueDatesInRange enumerates every date from start to end inclusive on which
// the recurrence rule is due. An inverted range yields an empty result.
func DueDatesInRange(rec domain.Recurrence, start, end domain.Date) ([]domain.Date, error) {
	var due []domain.Date
	for cur := start; !cur.After(end); cur = cur.AddDays(1) {
		ok, err := IsDue(rec, cur)
		if err != nil {
			return nil, err
		}
		if ok {
			due = append(due, cur)
		}
	}
	return due, nil
}
