package action

import (
	"context"
	"strings"
	"time"

	aierrors "github.com/hrygo/planwise/internal/errors"
	"github.com/hrygo/planwise/internal/observability"
	"github.com/hrygo/planwise/plugin/ai"
	"github.com/hrygo/planwise/plugin/ai/aitime"
	"github.com/hrygo/planwise/plugin/ai/category"
	"github.com/hrygo/planwise/store"
)

const (
	defaultEventStartClock = "09:00"
	defaultEventDuration   = time.Hour
)

// Extractor turns a message into a validated draft with one constrained model call.
type Extractor struct {
	llm         ai.LLMService
	categorizer *category.Categorizer
}

// NewExtractor returns an extractor. The categorizer fills in event categories the model
// leaves out and must not be nil.
func NewExtractor(llm ai.LLMService, categorizer *category.Categorizer) *Extractor {
	return &Extractor{llm: llm, categorizer: categorizer}
}

// complete sends one JSON-constrained request. Transport failures come back as
// LLMUnavailable, an unset service as ServiceUnavailable.
func (e *Extractor) complete(ctx context.Context, systemPrompt, message string) (string, error) {
	if e.llm == nil {
		return "", aierrors.ServiceUnavailable("extraction service is not configured")
	}
	reply, err := e.llm.Chat(ctx, ai.FormatMessages(systemPrompt, message), ai.WithJSONResponse())
	if err != nil {
		if aierrors.IsCode(err, aierrors.ErrCodeServiceUnavailable) {
			return "", err
		}
		return "", aierrors.LLMUnavailable("extraction request failed", err)
	}
	return reply, nil
}

// ExtractTask extracts a task. Relative due dates are resolved against r, and an
// unusable due date or time is dropped rather than failing the task.
func (e *Extractor) ExtractTask(ctx context.Context, message string, r *aitime.Resolver) (*TaskDraft, error) {
	reply, err := e.complete(ctx, taskSystemPrompt(r), message)
	if err != nil {
		return nil, err
	}
	parsed, err := decodeStrict[taskSchema](reply)
	if err != nil {
		return nil, err
	}
	return buildTaskDraft(ctx, parsed, r)
}

func buildTaskDraft(ctx context.Context, parsed *taskSchema, r *aitime.Resolver) (*TaskDraft, error) {
	logger := observability.LoggerFromContext(ctx)

	draft := &TaskDraft{Title: str(parsed.Title), Priority: parsePriority(str(parsed.Priority))}
	if draft.Title == "" {
		return nil, aierrors.Validation("title")
	}
	if cat, ok := category.Parse(str(parsed.Category)); ok {
		draft.Category = cat
	}

	if raw := str(parsed.DueDate); raw != "" {
		date, err := r.ResolveDate(raw)
		if err != nil {
			logger.Debug("dropping unusable due date", "due_date", raw, "error", err)
		} else {
			draft.DueDate = date
		}
	}

	if raw := str(parsed.DueTime); raw != "" {
		date := draft.DueDate
		if date == "" {
			date = r.Today()
		}
		at, err := r.Compose(date, raw)
		if err != nil {
			logger.Debug("dropping unusable due time", "due_time", raw, "error", err)
		} else {
			draft.DueDate = date
			draft.DueTime = aitime.FormatClock(at)
			draft.DueAt = &at
		}
	}
	return draft, nil
}

func parsePriority(s string) Priority {
	switch p := Priority(strings.ToLower(s)); p {
	case PriorityHigh, PriorityLow:
		return p
	default:
		return PriorityNone
	}
}

// ExtractEvent extracts a calendar event. The end is always strictly after the start.
func (e *Extractor) ExtractEvent(ctx context.Context, message string, r *aitime.Resolver) (*EventDraft, error) {
	reply, err := e.complete(ctx, eventSystemPrompt(r), message)
	if err != nil {
		return nil, err
	}
	parsed, err := decodeStrict[eventSchema](reply)
	if err != nil {
		return nil, err
	}
	return e.buildEventDraft(parsed, r)
}

func (e *Extractor) buildEventDraft(parsed *eventSchema, r *aitime.Resolver) (*EventDraft, error) {
	draft := &EventDraft{
		Summary:     str(parsed.Summary),
		Description: str(parsed.Description),
		Location:    str(parsed.Location),
	}
	if draft.Summary == "" {
		return nil, aierrors.Validation("summary")
	}

	startDate := str(parsed.StartDate)
	if startDate == "" {
		return nil, aierrors.Validation("startDate")
	}
	startClock := str(parsed.StartTime)
	if startClock == "" {
		startClock = defaultEventStartClock
	}
	start, err := r.Compose(startDate, startClock)
	if err != nil {
		return nil, aierrors.Parse("event start is not a valid date and time", err)
	}
	draft.Start = start

	endDate := str(parsed.EndDate)
	if endDate == "" {
		endDate = startDate
	}
	endClock := str(parsed.EndTime)
	if endClock == "" {
		endClock = aitime.FormatClock(start.Add(defaultEventDuration))
	}
	end, err := r.Compose(endDate, endClock)
	if err != nil {
		return nil, aierrors.Parse("event end is not a valid date and time", err)
	}
	draft.End = end
	if !draft.End.After(draft.Start) {
		draft.End = draft.Start.Add(defaultEventDuration)
	}

	draft.Category = e.categorizer.Coerce(str(parsed.Category), draft.Summary, draft.Description, draft.Location)
	return draft, nil
}

// ExtractGoal extracts a goal or habit.
func (e *Extractor) ExtractGoal(ctx context.Context, message string, r *aitime.Resolver) (*GoalDraft, error) {
	reply, err := e.complete(ctx, goalSystemPrompt(r), message)
	if err != nil {
		return nil, err
	}
	parsed, err := decodeStrict[goalSchema](reply)
	if err != nil {
		return nil, err
	}
	return buildGoalDraft(parsed)
}

func buildGoalDraft(parsed *goalSchema) (*GoalDraft, error) {
	draft := &GoalDraft{
		Kind:       store.GoalKindGoal,
		Title:      str(parsed.Title),
		Category:   category.Default,
		Target:     str(parsed.Target),
		Deadline:   str(parsed.Deadline),
		Milestones: []store.Milestone{},
	}
	if draft.Title == "" {
		return nil, aierrors.Validation("title")
	}
	if strings.EqualFold(str(parsed.Type), string(store.GoalKindHabit)) {
		draft.Kind = store.GoalKindHabit
	}
	if cat, ok := category.Parse(str(parsed.Category)); ok {
		draft.Category = cat
	}
	for _, m := range parsed.Milestones {
		if text := strings.TrimSpace(m.Text); text != "" {
			draft.Milestones = append(draft.Milestones, store.Milestone{Text: text})
		}
	}
	return draft, nil
}
