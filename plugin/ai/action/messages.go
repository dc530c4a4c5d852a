package action

import (
	"errors"
	"fmt"
	"strings"

	aierrors "github.com/hrygo/planwise/internal/errors"
	"github.com/hrygo/planwise/plugin/ai/aitime"
	"github.com/hrygo/planwise/plugin/ai/timeout"
	"github.com/hrygo/planwise/store"
)

const (
	msgTaskNeedsDetail = "What should the task be? Tell me what needs doing, for example \"add task buy milk tomorrow\"."
	msgRephrase        = "Sorry, I couldn't understand the details of that %s. Could you rephrase it?"
	msgMissingField    = "I need a %s to create the %s. Could you tell me what it is?"
	msgUnavailable     = "The assistant is unavailable right now, so I couldn't create the %s. Please try again later."
	msgSaveFailed      = "I understood the %s but couldn't save it. Please try again."
	msgTaskCreated     = "Task created: %s"
	msgEventCreated    = "Event created: %s, %s"
	msgGoalCreated     = "Goal created: %s"
	msgHabitCreated    = "Habit created: %s"
)

var fieldLabels = map[string]string{
	"title":     "title",
	"summary":   "title",
	"startDate": "date",
}

// failureMessage maps an extraction or persistence error to a user-facing message.
func failureMessage(kind Kind, err error) string {
	var aiErr *aierrors.AIError
	switch aierrors.GetCodeFromError(err, aierrors.ErrCodeParse) {
	case aierrors.ErrCodeValidation:
		field := "title"
		if errors.As(err, &aiErr) {
			if f, ok := aiErr.Context["field"].(string); ok {
				if label, ok := fieldLabels[f]; ok {
					field = label
				}
			}
		}
		return fmt.Sprintf(msgMissingField, field, kind)
	case aierrors.ErrCodeServiceUnavailable, aierrors.ErrCodeLLMUnavailable, aierrors.ErrCodeTimeout:
		return fmt.Sprintf(msgUnavailable, kind)
	case aierrors.ErrCodePersistence, aierrors.ErrCodeStoreNotConfigured:
		return fmt.Sprintf(msgSaveFailed, kind)
	default:
		return fmt.Sprintf(msgRephrase, kind)
	}
}

func taskCreatedMessage(draft *TaskDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, msgTaskCreated, draft.Title)
	if draft.DueDate != "" {
		b.WriteString(", due ")
		b.WriteString(draft.DueDate)
		if draft.DueTime != "" {
			b.WriteString(" ")
			b.WriteString(draft.DueTime)
		}
	}
	return b.String()
}

func eventCreatedMessage(draft *EventDraft) string {
	when := draft.Start.Format(aitime.DateLayout+" "+aitime.ClockLayout) + "-" + aitime.FormatClock(draft.End)
	return fmt.Sprintf(msgEventCreated, draft.Summary, when)
}

func goalCreatedMessage(g *store.Goal) string {
	if g.Kind == store.GoalKindHabit {
		return fmt.Sprintf(msgHabitCreated, g.Title)
	}
	return fmt.Sprintf(msgGoalCreated, g.Title)
}

func truncateForLog(s string) string {
	runes := []rune(s)
	if len(runes) <= timeout.MaxTruncateLength {
		return s
	}
	return string(runes[:timeout.MaxTruncateLength]) + "..."
}
