// Package metrics provides the pure numeric helpers behind the analytics
// aggregator. Nothing here knows about habits.
package metrics

import (
	"math"
	"sort"
)

type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// Slopes inside this band are classified as stable.
const trendThreshold = 0.01

type Trend struct {
	Direction Direction
	Strength  float64
	Slope     float64
}

type Performance struct {
	Change        float64
	ChangePercent float64
	Improved      bool
}

func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev is the population standard deviation; 0 for empty or single-value
// input.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Average(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// ConsistencyScore blends completion rate with day-to-day stability into a
// 0-100 score: up to 80 points for the rate itself, up to 20 for low
// variance across daily rates. An empty rate sequence scores 0.
func ConsistencyScore(completionRate float64, dailyRates []float64) int {
	if len(dailyRates) == 0 {
		return 0
	}

	base := completionRate * 80
	consistencyFactor := math.Max(0, 20*(1-2*StdDev(dailyRates)))
	score := math.Round(math.Min(100, base+consistencyFactor))
	if score < 0 {
		return 0
	}
	return int(score)
}

// TrendAnalysis fits an ordinary least-squares line through values against
// their 1-based index. Strength normalizes the slope by the larger
// endpoint-to-mean delta scaled down by n, clamped to [0, 1].
func TrendAnalysis(values []float64) Trend {
	n := len(values)
	if n <= 1 {
		return Trend{Direction: DirectionStable}
	}

	meanX := float64(n+1) / 2
	meanY := Average(values)

	num := 0.0
	den := 0.0
	for i, v := range values {
		dx := float64(i+1) - meanX
		num += dx * (v - meanY)
		den += dx * dx
	}
	slope := num / den

	direction := DirectionStable
	if slope > trendThreshold {
		direction = DirectionIncreasing
	} else if slope < -trendThreshold {
		direction = DirectionDecreasing
	}

	strength := 0.0
	denom := math.Max(math.Abs(values[0]-meanY), math.Abs(values[n-1]-meanY)) / float64(n)
	if denom > 0 {
		strength = math.Min(1, math.Abs(slope)/denom)
	}

	return Trend{Direction: direction, Strength: strength, Slope: slope}
}

// RelativePerformance compares a current value against a previous one. A
// zero baseline maps to 100% when anything improved and 0% otherwise.
func RelativePerformance(current, previous float64) Performance {
	change := current - previous

	var changePercent float64
	if previous == 0 {
		if current > 0 {
			changePercent = 100
		}
	} else {
		changePercent = change / previous * 100
	}

	return Performance{
		Change:        change,
		ChangePercent: changePercent,
		Improved:      change > 0,
	}
}

// GoalAchievement returns achieved/goal as a percentage capped at 100.
// Non-positive goals score 0.
func GoalAchievement(achieved, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(100, achieved/goal*100)
}
