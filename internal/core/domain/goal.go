package domain

import (
	"encoding/json"
	"fmt"
)

// Goal is the closed set of completion models. A StreakGoal habit is binary
// done/not-done; a CounterGoal habit counts toward a numeric target per day.
type Goal interface {
	isGoal()
	Validate() error
}

type StreakGoal struct{}

type CounterGoal struct {
	Target int
}

func (StreakGoal) isGoal()  {}
func (CounterGoal) isGoal() {}

func (StreakGoal) Validate() error { return nil }

func (g CounterGoal) Validate() error {
	if g.Target <= 0 {
		return ErrInvalidGoalTarget
	}
	return nil
}

const (
	goalStreak  = "streak"
	goalCounter = "counter"
)

type goalJSON struct {
	Type   string `json:"type"`
	Target int    `json:"target,omitempty"`
}

// EncodeGoal serializes a goal to its wire/storage envelope.
func EncodeGoal(goal Goal) ([]byte, error) {
	var env goalJSON
	switch g := goal.(type) {
	case StreakGoal:
		env.Type = goalStreak
	case CounterGoal:
		env.Type = goalCounter
		env.Target = g.Target
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGoal, goal)
	}
	return json.Marshal(env)
}

// DecodeGoal parses a goal envelope and validates the result.
func DecodeGoal(data []byte) (Goal, error) {
	var env goalJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedGoal, err)
	}

	var goal Goal
	switch env.Type {
	case goalStreak:
		goal = StreakGoal{}
	case goalCounter:
		goal = CounterGoal{Target: env.Target}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGoal, env.Type)
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}
	return goal, nil
}
