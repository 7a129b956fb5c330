package domain

import (
	"fmt"
	"time"
)

// StreakData is recomputed from full completion history on every query.
type StreakData struct {
	CurrentStreak      int   `json:"current_streak"`
	LongestStreak      int   `json:"longest_streak"`
	TotalCompletions   int   `json:"total_completions"`
	LastCompletionDate *Date `json:"last_completion_date,omitempty"`
	IsDueToday         bool  `json:"is_due_today"`
}

// DailyCompletionSummary counts how many habits were due and done on one day.
type DailyCompletionSummary struct {
	Date           Date    `json:"date"`
	DueCount       int     `json:"due_count"`
	CompletedCount int     `json:"completed_count"`
	Rate           float64 `json:"rate"`
}

// CounterStats summarizes the numeric values of a counter habit over a range.
type CounterStats struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
	Highest int     `json:"highest"`
}

type HabitStatistics struct {
	HabitID          string        `json:"habit_id"`
	Name             string        `json:"name"`
	Tag              Tag           `json:"tag"`
	CompletionRate   float64       `json:"completion_rate"`
	TotalCompletions int           `json:"total_completions"`
	Streak           *StreakData   `json:"streak,omitempty"`
	Counter          *CounterStats `json:"counter,omitempty"`
}

type DayOfWeekStat struct {
	Weekday        time.Weekday `json:"weekday"`
	DueCount       int          `json:"due_count"`
	CompletedCount int          `json:"completed_count"`
	Rate           float64      `json:"rate"`
}

type TagStat struct {
	Tag            Tag     `json:"tag"`
	DueCount       int     `json:"due_count"`
	CompletedCount int     `json:"completed_count"`
	Rate           float64 `json:"rate"`
}

type TrendSummary struct {
	Direction string  `json:"direction"`
	Strength  float64 `json:"strength"`
	Slope     float64 `json:"slope"`
}

// PeriodComparison contrasts the queried range with the immediately
// preceding period of equal length. Best-effort; omitted when unavailable.
type PeriodComparison struct {
	PreviousStart Date    `json:"previous_start"`
	PreviousEnd   Date    `json:"previous_end"`
	PreviousRate  float64 `json:"previous_rate"`
	CurrentRate   float64 `json:"current_rate"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Improved      bool    `json:"improved"`
}

type AnalyticsSummary struct {
	StartDate        Date                     `json:"start_date"`
	EndDate          Date                     `json:"end_date"`
	TotalHabits      int                      `json:"total_habits"`
	OverallRate      float64                  `json:"overall_rate"`
	Habits           []HabitStatistics        `json:"habits"`
	Days             []DailyCompletionSummary `json:"days"`
	BestHabitID      string                   `json:"best_habit_id,omitempty"`
	WorstHabitID     string                   `json:"worst_habit_id,omitempty"`
	BestDay          *Date                    `json:"best_day,omitempty"`
	BestStreak       int                      `json:"best_streak"`
	DayOfWeek        []DayOfWeekStat          `json:"day_of_week"`
	Tags             []TagStat                `json:"tags"`
	ConsistencyScore int                      `json:"consistency_score"`
	Trend            TrendSummary             `json:"trend"`
	Comparison       *PeriodComparison        `json:"comparison,omitempty"`
}

// AnalyticsQuery identifies one aggregation request; it doubles as the
// result-cache key.
type AnalyticsQuery struct {
	StartDate       Date
	EndDate         Date
	IncludeArchived bool
	HabitID         string
}

func (q AnalyticsQuery) CacheKey() string {
	return fmt.Sprintf("analytics:summary:%s:%s:%t:%s",
		q.StartDate, q.EndDate, q.IncludeArchived, q.HabitID)
}
