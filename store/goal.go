package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// GoalKind distinguishes one-off goals from recurring habits.
type GoalKind string

const (
	GoalKindGoal  GoalKind = "goal"
	GoalKindHabit GoalKind = "habit"
)

// Milestone is one step towards a goal.
type Milestone struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Goal is the object representing a goal or habit.
type Goal struct {
	ID        int32
	UID       string
	CreatorID string
	CreatedTs int64
	UpdatedTs int64

	Kind     GoalKind
	Title    string
	Category string
	Target   string
	// Deadline is free text such as "end of June".
	Deadline   string
	Milestones []Milestone
}

// FindGoal is the find condition for goal.
type FindGoal struct {
	ID        *int32
	UID       *string
	CreatorID *string
	Kind      *GoalKind

	// Pagination
	Limit  *int
	Offset *int
}

// CreateGoal creates a new goal. A missing UID is generated.
func (s *Store) CreateGoal(ctx context.Context, create *Goal) (*Goal, error) {
	if create.UID == "" {
		create.UID = NewUID()
	}
	if create.Kind == "" {
		create.Kind = GoalKindGoal
	}
	if create.Milestones == nil {
		create.Milestones = []Milestone{}
	}
	return s.driver.CreateGoal(ctx, create)
}

// ListGoals lists goals with filter.
func (s *Store) ListGoals(ctx context.Context, find *FindGoal) ([]*Goal, error) {
	return s.driver.ListGoals(ctx, find)
}

// MarshalMilestones encodes milestones for the milestones column.
func MarshalMilestones(milestones []Milestone) (string, error) {
	if milestones == nil {
		milestones = []Milestone{}
	}
	b, err := json.Marshal(milestones)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal milestones")
	}
	return string(b), nil
}

// UnmarshalMilestones decodes the milestones column. Empty input yields an empty slice.
func UnmarshalMilestones(raw string) ([]Milestone, error) {
	milestones := []Milestone{}
	if raw == "" {
		return milestones, nil
	}
	if err := json.Unmarshal([]byte(raw), &milestones); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal milestones")
	}
	return milestones, nil
}
