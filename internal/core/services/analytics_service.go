package services

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/metrics"
	"github.com/comitanigiacomo/cadence-engine/internal/core/rate"
	"github.com/comitanigiacomo/cadence-engine/internal/core/schedule"
	"github.com/comitanigiacomo/cadence-engine/internal/core/streak"
)

// Period comparisons never reach back before this year.
var comparisonFloor = domain.NewDate(2000, time.January, 1)

// ResultCache memoizes aggregate results for a bounded time. Implementations
// must be safe for concurrent use; a stale read only costs a recomputation.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.AnalyticsSummary, bool)
	Set(ctx context.Context, key string, summary *domain.AnalyticsSummary)
	Clear(ctx context.Context) error
}

// AnalyticsService aggregates habits and completions into time-windowed
// reports. All computation is pure and per-request; the only shared state is
// the injected result cache.
type AnalyticsService struct {
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	cache          ResultCache
	now            func() time.Time
}

// NewAnalyticsService builds the aggregator. cache may be nil to disable
// memoization.
func NewAnalyticsService(habitRepo domain.HabitRepository, completionRepo domain.CompletionRepository, cache ResultCache) *AnalyticsService {
	return &AnalyticsService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		cache:          cache,
		now:            time.Now,
	}
}

// WithClock overrides the time source. Tests pin "today" with it.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

func (s *AnalyticsService) today() domain.Date {
	return domain.DateOf(s.now().UTC())
}

// GetStreak recomputes StreakData for one habit from its full history.
func (s *AnalyticsService) GetStreak(ctx context.Context, habitID string) (*domain.StreakData, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByHabitID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	return streak.Compute(habit, completions, s.today())
}

// GetSummary builds the full AnalyticsSummary for a query, serving from the
// result cache when possible.
func (s *AnalyticsService) GetSummary(ctx context.Context, q domain.AnalyticsQuery) (*domain.AnalyticsSummary, error) {
	if q.StartDate.After(q.EndDate) {
		return nil, domain.ErrInvalidRange
	}

	key := q.CacheKey()
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	habits, err := s.loadHabits(ctx, q)
	if err != nil {
		return nil, err
	}

	all, err := s.completionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byHabit, index, err := indexCompletions(all)
	if err != nil {
		return nil, err
	}

	summary, err := buildSummary(habits, byHabit, index, q, s.today())
	if err != nil {
		return nil, err
	}

	s.attachComparison(summary, habits, index, q)

	if s.cache != nil {
		s.cache.Set(ctx, key, summary)
	}

	return summary, nil
}

func (s *AnalyticsService) loadHabits(ctx context.Context, q domain.AnalyticsQuery) ([]*domain.Habit, error) {
	if q.HabitID != "" {
		habit, err := s.habitRepo.GetByID(ctx, q.HabitID)
		if err != nil {
			return nil, err
		}
		return []*domain.Habit{habit}, nil
	}
	return s.habitRepo.List(ctx, q.IncludeArchived)
}

// indexCompletions groups live completion records per habit and per
// (habit, date), failing fast on a duplicate date.
func indexCompletions(all []*domain.Completion) (map[string][]*domain.Completion, map[string]map[domain.Date]*domain.Completion, error) {
	byHabit := make(map[string][]*domain.Completion)
	index := make(map[string]map[domain.Date]*domain.Completion)

	for _, c := range all {
		if c.DeletedAt != nil {
			continue
		}
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)

		dates, ok := index[c.HabitID]
		if !ok {
			dates = make(map[domain.Date]*domain.Completion)
			index[c.HabitID] = dates
		}
		if _, exists := dates[c.Date]; exists {
			return nil, nil, domain.ErrDuplicateCompletion
		}
		dates[c.Date] = c
	}

	return byHabit, index, nil
}

func buildSummary(habits []*domain.Habit, byHabit map[string][]*domain.Completion, index map[string]map[domain.Date]*domain.Completion, q domain.AnalyticsQuery, today domain.Date) (*domain.AnalyticsSummary, error) {
	summary := &domain.AnalyticsSummary{
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		TotalHabits: len(habits),
	}

	dates := domain.DatesBetween(q.StartDate, q.EndDate)

	dowDue := make(map[time.Weekday]int)
	dowDone := make(map[time.Weekday]int)
	tagDue := make(map[domain.Tag]int)
	tagDone := make(map[domain.Tag]int)

	totalDue := 0
	totalDone := 0

	for _, d := range dates {
		day := domain.DailyCompletionSummary{Date: d}

		for _, h := range habits {
			due, err := schedule.IsDue(h.Recurrence, d)
			if err != nil {
				return nil, err
			}
			if !due {
				continue
			}

			day.DueCount++
			dowDue[d.Weekday()]++
			tagDue[h.Tag]++

			done, err := rate.CountsAsDone(h.Goal, index[h.ID][d])
			if err != nil {
				return nil, err
			}
			if done {
				day.CompletedCount++
				dowDone[d.Weekday()]++
				tagDone[h.Tag]++
			}
		}

		if day.DueCount > 0 {
			day.Rate = float64(day.CompletedCount) / float64(day.DueCount)
		}
		totalDue += day.DueCount
		totalDone += day.CompletedCount

		summary.Days = append(summary.Days, day)
	}

	// Overall rate weights every due occurrence equally rather than
	// averaging per-day ratios.
	if totalDue > 0 {
		summary.OverallRate = float64(totalDone) / float64(totalDue)
	}

	if err := attachHabitStats(summary, habits, byHabit, q, today); err != nil {
		return nil, err
	}

	attachBestDay(summary, totalDue)
	summary.DayOfWeek = weekdayBreakdown(dowDue, dowDone)
	summary.Tags = tagBreakdown(habits, tagDue, tagDone)

	dailyRates := make([]float64, len(summary.Days))
	for i, day := range summary.Days {
		dailyRates[i] = day.Rate
	}
	summary.ConsistencyScore = metrics.ConsistencyScore(summary.OverallRate, dailyRates)

	trend := metrics.TrendAnalysis(dailyRates)
	summary.Trend = domain.TrendSummary{
		Direction: string(trend.Direction),
		Strength:  trend.Strength,
		Slope:     trend.Slope,
	}

	return summary, nil
}

func attachHabitStats(summary *domain.AnalyticsSummary, habits []*domain.Habit, byHabit map[string][]*domain.Completion, q domain.AnalyticsQuery, today domain.Date) error {
	bestIdx, worstIdx := -1, -1

	for i, h := range habits {
		history := byHabit[h.ID]

		streakData, err := streak.Compute(h, history, today)
		if err != nil {
			return err
		}

		completionRate, err := rate.CompletionRate(h, history, q.StartDate, q.EndDate)
		if err != nil {
			return err
		}

		stat := domain.HabitStatistics{
			HabitID:          h.ID,
			Name:             h.Name,
			Tag:              h.Tag,
			CompletionRate:   completionRate,
			TotalCompletions: streakData.TotalCompletions,
			Streak:           streakData,
		}

		if _, ok := h.Goal.(domain.CounterGoal); ok {
			stat.Counter = counterStats(history, q.StartDate, q.EndDate)
		}

		if streakData.LongestStreak > summary.BestStreak {
			summary.BestStreak = streakData.LongestStreak
		}

		if bestIdx < 0 || completionRate > summary.Habits[bestIdx].CompletionRate {
			bestIdx = i
		}
		if worstIdx < 0 || completionRate < summary.Habits[worstIdx].CompletionRate {
			worstIdx = i
		}

		summary.Habits = append(summary.Habits, stat)
	}

	if bestIdx >= 0 {
		summary.BestHabitID = summary.Habits[bestIdx].HabitID
		summary.WorstHabitID = summary.Habits[worstIdx].HabitID
	}

	return nil
}

func counterStats(history []*domain.Completion, start, end domain.Date) *domain.CounterStats {
	stats := &domain.CounterStats{}
	count := 0

	for _, c := range history {
		if !c.Completed || c.Date.Before(start) || c.Date.After(end) {
			continue
		}
		stats.Total += c.Value
		if c.Value > stats.Highest {
			stats.Highest = c.Value
		}
		count++
	}

	if count > 0 {
		stats.Average = float64(stats.Total) / float64(count)
	}
	return stats
}

func attachBestDay(summary *domain.AnalyticsSummary, totalDue int) {
	if totalDue == 0 {
		return
	}
	bestIdx := 0
	for i, day := range summary.Days {
		if day.Rate > summary.Days[bestIdx].Rate {
			bestIdx = i
		}
	}
	best := summary.Days[bestIdx].Date
	summary.BestDay = &best
}

func weekdayBreakdown(due, done map[time.Weekday]int) []domain.DayOfWeekStat {
	stats := make([]domain.DayOfWeekStat, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		stat := domain.DayOfWeekStat{
			Weekday:        wd,
			DueCount:       due[wd],
			CompletedCount: done[wd],
		}
		if stat.DueCount > 0 {
			stat.Rate = float64(stat.CompletedCount) / float64(stat.DueCount)
		}
		stats = append(stats, stat)
	}
	return stats
}

func tagBreakdown(habits []*domain.Habit, due, done map[domain.Tag]int) []domain.TagStat {
	seen := make(map[domain.Tag]bool)
	var tags []domain.Tag
	for _, h := range habits {
		if !seen[h.Tag] {
			seen[h.Tag] = true
			tags = append(tags, h.Tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	stats := make([]domain.TagStat, 0, len(tags))
	for _, tag := range tags {
		stat := domain.TagStat{
			Tag:            tag,
			DueCount:       due[tag],
			CompletedCount: done[tag],
		}
		if stat.DueCount > 0 {
			stat.Rate = float64(stat.CompletedCount) / float64(stat.DueCount)
		}
		stats = append(stats, stat)
	}
	return stats
}

// attachComparison adds the period-over-period comparison. It is strictly
// best-effort: an out-of-bounds previous period or a computation error only
// logs and leaves the field empty.
func (s *AnalyticsService) attachComparison(summary *domain.AnalyticsSummary, habits []*domain.Habit, index map[string]map[domain.Date]*domain.Completion, q domain.AnalyticsQuery) {
	length := q.StartDate.DaysUntil(q.EndDate) + 1
	prevEnd := q.StartDate.AddDays(-1)
	prevStart := prevEnd.AddDays(-(length - 1))

	if prevStart.Before(comparisonFloor) {
		return
	}

	prevRate, err := overallRateBetween(habits, index, prevStart, prevEnd)
	if err != nil {
		log.Printf("analytics: skipping period comparison: %v", err)
		return
	}

	perf := metrics.RelativePerformance(summary.OverallRate, prevRate)
	summary.Comparison = &domain.PeriodComparison{
		PreviousStart: prevStart,
		PreviousEnd:   prevEnd,
		PreviousRate:  prevRate,
		CurrentRate:   summary.OverallRate,
		Change:        perf.Change,
		ChangePercent: perf.ChangePercent,
		Improved:      perf.Improved,
	}
}

func overallRateBetween(habits []*domain.Habit, index map[string]map[domain.Date]*domain.Completion, start, end domain.Date) (float64, error) {
	due := 0
	done := 0

	for cur := start; !cur.After(end); cur = cur.AddDays(1) {
		for _, h := range habits {
			isDue, err := schedule.IsDue(h.Recurrence, cur)
			if err != nil {
				return 0, err
			}
			if !isDue {
				continue
			}
			due++

			ok, err := rate.CountsAsDone(h.Goal, index[h.ID][cur])
			if err != nil {
				return 0, err
			}
			if ok {
				done++
			}
		}
	}

	if due == 0 {
		return 0, nil
	}
	return float64(done) / float64(due), nil
}
