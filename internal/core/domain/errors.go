package domain

import "errors"

var (
	// Not-found errors.
	ErrHabitNotFound      = errors.New("habit not found")
	ErrCompletionNotFound = errors.New("completion not found")

	// Validation errors.
	ErrHabitNameEmpty      = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong    = errors.New("habit name is too long (max 100 chars)")
	ErrInvalidTag          = errors.New("invalid habit tag")
	ErrWeekdaysEmpty       = errors.New("weekly recurrence requires at least one weekday")
	ErrInvalidWeekday      = errors.New("invalid weekday (must be 0-6)")
	ErrMonthDaysEmpty      = errors.New("monthly recurrence requires at least one day of month")
	ErrInvalidMonthDay     = errors.New("invalid day of month (must be 1-31)")
	ErrInvalidGoalTarget   = errors.New("counter goal target must be positive")
	ErrInvalidDate         = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrInvalidRange        = errors.New("start date cannot be after end date")
	ErrNegativeValue       = errors.New("completion value cannot be negative")
	ErrDuplicateCompletion = errors.New("duplicate completion for habit and date")

	// Recurrence and goal variants form closed sets; hitting these means a
	// new variant was added without updating every consumer.
	ErrUnsupportedRecurrence = errors.New("unsupported recurrence variant")
	ErrUnsupportedGoal       = errors.New("unsupported goal variant")

	// State errors.
	ErrHabitArchived      = errors.New("cannot update an archived habit")
	ErrHabitConflict      = errors.New("habit version conflict")
	ErrCompletionConflict = errors.New("completion version conflict")
)
