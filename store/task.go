package store

import (
	"context"
	"time"
)

// Task is the object representing a to-do item.
type Task struct {
	ID        int32
	UID       string
	CreatorID string
	CreatedTs int64
	UpdatedTs int64

	Title string
	// DueDate is YYYY-MM-DD, empty when the task has no due date.
	DueDate string
	// DueTs is set when the due date carries a clock time.
	DueTs    *int64
	Priority string
	Category string
	Done     bool
}

// FindTask is the find condition for task.
type FindTask struct {
	ID        *int32
	UID       *string
	CreatorID *string
	DueDate   *string

	// Pagination
	Limit  *int
	Offset *int
}

// DueTime returns the due instant, or nil when the task has no due time.
func (t *Task) DueTime() *time.Time {
	if t.DueTs == nil {
		return nil
	}
	due := time.Unix(*t.DueTs, 0)
	return &due
}

// CreateTask creates a new task. A missing UID is generated.
func (s *Store) CreateTask(ctx context.Context, create *Task) (*Task, error) {
	if create.UID == "" {
		create.UID = NewUID()
	}
	return s.driver.CreateTask(ctx, create)
}

// ListTasks lists tasks with filter.
func (s *Store) ListTasks(ctx context.Context, find *FindTask) ([]*Task, error) {
	return s.driver.ListTasks(ctx, find)
}

// GetTask gets a task, or nil when none matches.
func (s *Store) GetTask(ctx context.Context, find *FindTask) (*Task, error) {
	list, err := s.driver.ListTasks(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
