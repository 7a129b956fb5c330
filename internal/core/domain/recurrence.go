package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Recurrence is a closed set of scheduling rules. Consumers dispatch with a
// type switch and must treat an unknown variant as ErrUnsupportedRecurrence
// instead of silently defaulting.
type Recurrence interface {
	isRecurrence()
	Validate() error
}

// Daily schedules the habit on every calendar date.
type Daily struct{}

// Weekly schedules the habit on specific weekdays (Sunday = 0).
type Weekly struct {
	Weekdays []time.Weekday
}

// Monthly schedules the habit on specific days of the month. Days that a
// month does not have (the 31st in February) simply never match.
type Monthly struct {
	MonthDays []int
}

func (Daily) isRecurrence()   {}
func (Weekly) isRecurrence()  {}
func (Monthly) isRecurrence() {}

func (Daily) Validate() error { return nil }

func (r Weekly) Validate() error {
	if len(r.Weekdays) == 0 {
		return ErrWeekdaysEmpty
	}
	for _, wd := range r.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, wd)
		}
	}
	return nil
}

func (r Monthly) Validate() error {
	if len(r.MonthDays) == 0 {
		return ErrMonthDaysEmpty
	}
	for _, d := range r.MonthDays {
		if d < 1 || d > 31 {
			return fmt.Errorf("%w: %d", ErrInvalidMonthDay, d)
		}
	}
	return nil
}

// NewWeekly builds a Weekly recurrence with its weekday set deduplicated
// and sorted.
func NewWeekly(weekdays []time.Weekday) Weekly {
	seen := make(map[time.Weekday]bool, len(weekdays))
	var unique []time.Weekday
	for _, wd := range weekdays {
		if !seen[wd] {
			seen[wd] = true
			unique = append(unique, wd)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return Weekly{Weekdays: unique}
}

// NewMonthly builds a Monthly recurrence with its day set deduplicated
// and sorted.
func NewMonthly(days []int) Monthly {
	seen := make(map[int]bool, len(days))
	var unique []int
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}
	sort.Ints(unique)
	return Monthly{MonthDays: unique}
}

const (
	recurrenceDaily   = "daily"
	recurrenceWeekly  = "weekly"
	recurrenceMonthly = "monthly"
)

type recurrenceJSON struct {
	Type      string `json:"type"`
	Weekdays  []int  `json:"weekdays,omitempty"`
	MonthDays []int  `json:"month_days,omitempty"`
}

// EncodeRecurrence serializes a recurrence to its wire/storage envelope.
// Shared between the JSON API and the JSONB column in Postgres.
func EncodeRecurrence(rec Recurrence) ([]byte, error) {
	var env recurrenceJSON
	switch r := rec.(type) {
	case Daily:
		env.Type = recurrenceDaily
	case Weekly:
		env.Type = recurrenceWeekly
		env.Weekdays = make([]int, len(r.Weekdays))
		for i, wd := range r.Weekdays {
			env.Weekdays[i] = int(wd)
		}
	case Monthly:
		env.Type = recurrenceMonthly
		env.MonthDays = r.MonthDays
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedRecurrence, rec)
	}
	return json.Marshal(env)
}

// DecodeRecurrence parses a recurrence envelope and validates the result.
func DecodeRecurrence(data []byte) (Recurrence, error) {
	var env recurrenceJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedRecurrence, err)
	}

	var rec Recurrence
	switch env.Type {
	case recurrenceDaily:
		rec = Daily{}
	case recurrenceWeekly:
		weekdays := make([]time.Weekday, len(env.Weekdays))
		for i, wd := range env.Weekdays {
			weekdays[i] = time.Weekday(wd)
		}
		rec = NewWeekly(weekdays)
	case recurrenceMonthly:
		rec = NewMonthly(env.MonthDays)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRecurrence, env.Type)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
