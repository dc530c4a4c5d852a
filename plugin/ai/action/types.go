// Package action turns a free-text message into a persisted task, event or goal.
//
// A message is classified into an intent, gated for completeness (tasks only), turned
// into a typed draft by a constrained LLM call, anchored to absolute dates and finally
// persisted. Every path ends in an ActionResult, or nil for plain chat.
package action

import (
	"time"

	"github.com/hrygo/planwise/plugin/ai/category"
	"github.com/hrygo/planwise/store"
)

// Intent is the coarse action a message asks for.
type Intent string

const (
	IntentTask  Intent = "task"
	IntentEvent Intent = "event"
	IntentGoal  Intent = "goal"
	IntentChat  Intent = "chat"
)

// Kind is the record type an action produces.
type Kind string

const (
	KindTask  Kind = "task"
	KindEvent Kind = "event"
	KindGoal  Kind = "goal"
)

// Outcome is how an action ended.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeNeedsClarification Outcome = "needs_clarification"
	OutcomeFailed             Outcome = "failed"
)

// ActionResult is the uniform result of one processed message.
// UserMessage is never empty.
type ActionResult struct {
	Kind        Kind    `json:"kind"`
	Outcome     Outcome `json:"outcome"`
	UserMessage string  `json:"userMessage"`
	// Payload is the created *store.Task, *store.Event or *store.Goal on success.
	Payload any `json:"payload,omitempty"`
}

// Priority of a task.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
	PriorityNone Priority = "none"
)

// TaskDraft is a validated task ready to be persisted.
type TaskDraft struct {
	Title string
	// DueDate is YYYY-MM-DD or empty.
	DueDate string
	// DueTime is HH:mm or empty. When set, DueAt holds the composed instant.
	DueTime  string
	DueAt    *time.Time
	Priority Priority
	// Category is one of the eight categories or empty.
	Category category.Category
}

// EventDraft is a validated calendar event. End is strictly after Start.
type EventDraft struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Category    category.Category
}

// GoalDraft is a validated goal or habit.
type GoalDraft struct {
	Kind       store.GoalKind
	Title      string
	Category   category.Category
	Target     string
	Deadline   string
	Milestones []store.Milestone
}
