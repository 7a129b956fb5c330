// Package rate computes completed-versus-scheduled ratios over date ranges.
package rate

import (
	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/schedule"
)

// CountsAsDone reports whether a completion record closes out its day. A
// streak-goal habit only needs the completed flag; a counter-goal habit
// additionally needs the recorded value to reach the target. Partial counter
// progress keeps its record but does not count.
func CountsAsDone(goal domain.Goal, c *domain.Completion) (bool, error) {
	if c == nil || !c.Completed {
		return false, nil
	}
	switch g := goal.(type) {
	case domain.StreakGoal:
		return true, nil
	case domain.CounterGoal:
		return c.Value >= g.Target, nil
	default:
		return false, domain.ErrUnsupportedGoal
	}
}

// CompletionRate returns the ratio of completed due days to scheduled due
// days in [start, end], as a value in [0, 1]. A range with no due dates
// yields 0, never NaN. Duplicate records for one date violate the upstream
// uniqueness invariant and fail fast.
func CompletionRate(habit *domain.Habit, completions []*domain.Completion, start, end domain.Date) (float64, error) {
	dueDates, err := schedule.DueDatesInRange(habit.Recurrence, start, end)
	if err != nil {
		return 0, err
	}
	if len(dueDates) == 0 {
		return 0, nil
	}

	byDate := make(map[domain.Date]*domain.Completion, len(completions))
	for _, c := range completions {
		if c.DeletedAt != nil {
			continue
		}
		if _, exists := byDate[c.Date]; exists {
			return 0, domain.ErrDuplicateCompletion
		}
		byDate[c.Date] = c
	}

	completed := 0
	for _, d := range dueDates {
		done, err := CountsAsDone(habit.Goal, byDate[d])
		if err != nil {
			return 0, err
		}
		if done {
			completed++
		}
	}

	return float64(completed) / float64(len(dueDates)), nil
}
