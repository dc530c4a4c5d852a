package action

import (
	"fmt"
	"strings"

	"github.com/hrygo/planwise/plugin/ai/aitime"
	"github.com/hrygo/planwise/plugin/ai/category"
)

const intentSystemPrompt = `You route messages for a personal planning assistant.
Decide what the user wants:
- task: a to-do item or reminder
- event: something that happens at a specific time (meeting, appointment, trip)
- goal: a longer-term goal or a habit to build
- chat: anything else

Answer with exactly one word: task, event, goal or chat.`

const completenessSystemPrompt = `You check whether a request to create a task says what the task is.
A bare trigger such as "add task" or "new task" with no description is not enough.
A concrete, actionable description (for example "add task buy milk") is enough.

Reply with a JSON object and nothing else:
{"hasEnoughInfo": true or false, "reason": "short explanation"}`

const taskSystemPromptTemplate = `You extract a task from the user's message.
%s
Reply with a JSON object with exactly these fields and nothing else:
{
  "title": "what has to be done, required",
  "dueDate": "YYYY-MM-DD, or null",
  "dueTime": "HH:mm in 24-hour time, or null",
  "priority": "high, low or none",
  "category": "one of %s, or null"
}`

const eventSystemPromptTemplate = `You extract a calendar event from the user's message.
%s
Reply with a JSON object with exactly these fields and nothing else:
{
  "summary": "short title of the event, required",
  "description": "details, or null",
  "location": "where it happens, or null",
  "startDate": "YYYY-MM-DD, required",
  "startTime": "HH:mm in 24-hour time, or null",
  "endDate": "YYYY-MM-DD, or null",
  "endTime": "HH:mm in 24-hour time, or null",
  "category": "one of %s, or null"
}`

const goalSystemPromptTemplate = `You extract a goal or habit from the user's message.
%s
Reply with a JSON object with exactly these fields and nothing else:
{
  "type": "goal or habit",
  "title": "the goal, required",
  "category": "one of %s",
  "target": "measurable target, or null",
  "deadline": "when it should be reached in the user's words, or null",
  "milestones": ["step one", "step two"]
}`

// anchorBlock tells the model how to resolve relative dates.
func anchorBlock(r *aitime.Resolver) string {
	now := r.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s, %s. Tomorrow is %s.\n", now.Weekday(), r.Today(), r.Tomorrow())
	fmt.Fprintf(&b, "The current time is %s in time zone %s.\n", aitime.FormatClock(now), r.Location())
	b.WriteString("Always write dates as absolute YYYY-MM-DD, never as \"today\" or \"tomorrow\".")
	return b.String()
}

func categoryList() string {
	names := make([]string, 0, len(category.All()))
	for _, c := range category.All() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func taskSystemPrompt(r *aitime.Resolver) string {
	return fmt.Sprintf(taskSystemPromptTemplate, anchorBlock(r), categoryList())
}

func eventSystemPrompt(r *aitime.Resolver) string {
	return fmt.Sprintf(eventSystemPromptTemplate, anchorBlock(r), categoryList())
}

func goalSystemPrompt(r *aitime.Resolver) string {
	return fmt.Sprintf(goalSystemPromptTemplate, anchorBlock(r), categoryList())
}
