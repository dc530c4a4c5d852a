package action

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aierrors "github.com/hrygo/planwise/internal/errors"
	"github.com/hrygo/planwise/plugin/ai"
	"github.com/hrygo/planwise/plugin/ai/category"
	"github.com/hrygo/planwise/store"
)

func at(date string, hour, minute int) time.Time {
	d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func extractTask(t *testing.T, reply string) (*TaskDraft, error) {
	t.Helper()
	e := NewExtractor(ai.NewMockLLMService(reply), testCategorizer(t))
	return e.ExtractTask(context.Background(), "add task something", testResolver())
}

func TestExtractTask(t *testing.T) {
	dueAt := at("2024-06-02", 14, 0)
	todayAt := at("2024-06-01", 18, 30)

	tests := []struct {
		name  string
		reply string
		want  *TaskDraft
	}{
		{
			name:  "relative date leaks through",
			reply: `{"title": "Buy milk", "dueDate": "tomorrow", "dueTime": null, "priority": "none", "category": null}`,
			want:  &TaskDraft{Title: "Buy milk", DueDate: "2024-06-02", Priority: PriorityNone},
		},
		{
			name:  "date and time",
			reply: `{"title": "Call Anna", "dueDate": "2024-06-02", "dueTime": "14:00", "priority": "HIGH", "category": "Work"}`,
			want:  &TaskDraft{Title: "Call Anna", DueDate: "2024-06-02", DueTime: "14:00", DueAt: &dueAt, Priority: PriorityHigh, Category: category.Work},
		},
		{
			name:  "time without date is today",
			reply: `{"title": "Take pills", "dueDate": null, "dueTime": "18:30", "priority": "low", "category": "health"}`,
			want:  &TaskDraft{Title: "Take pills", DueDate: "2024-06-01", DueTime: "18:30", DueAt: &todayAt, Priority: PriorityLow, Category: category.Health},
		},
		{
			name:  "bad time is dropped",
			reply: `{"title": "Water plants", "dueDate": "today", "dueTime": "25:00", "priority": null, "category": null}`,
			want:  &TaskDraft{Title: "Water plants", DueDate: "2024-06-01", Priority: PriorityNone},
		},
		{
			name:  "bad date is dropped",
			reply: `{"title": "Water plants", "dueDate": "next week", "priority": "urgent", "category": "chores"}`,
			want:  &TaskDraft{Title: "Water plants", Priority: PriorityNone},
		},
		{
			name:  "fenced reply with missing optional fields",
			reply: "```json\n{\"title\": \"  Renew passport \"}\n```",
			want:  &TaskDraft{Title: "Renew passport", Priority: PriorityNone},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractTask(t, tt.reply)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("draft mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractTaskErrors(t *testing.T) {
	_, err := extractTask(t, `{"title": "   ", "dueDate": "tomorrow"}`)
	assert.True(t, aierrors.IsCode(err, aierrors.ErrCodeValidation), err)

	_, err = extractTask(t, `{"dueDate": "tomorrow"}`)
	assert.True(t, aierrors.IsCode(err, aierrors.ErrCodeValidation), err)

	_, err = extractTask(t, `not json at all`)
	assert.True(t, aierrors.IsCode(err, aierrors.ErrCodeParse), err)

	e := NewExtractor(ai.NewFailingMockLLMService(errors.New("503")), testCategorizer(t))
	_, err = e.ExtractTask(context.Background(), "add task x", testResolver())
	assert.True(t, aierrors.IsCode(err, aierrors.ErrCodeLLMUnavailable), err)

	e = NewExtractor(nil, testCategorizer(t))
	_, err = e.ExtractTask(context.Background(), "add task x", testResolver())
	assert.True(t, aierrors.IsCode(err, aierrors.ErrCodeServiceUnavailable), err)
}

func TestTaskPromptCarriesAnchors(t *testing.T) {
	llm := ai.NewMockLLMService(`{"title": "x"}`)
	e := NewExtractor(llm, testCategorizer(t))
	_, err := e.ExtractTask(context.Background(), "add task x tomorrow", testResolver())
	require.NoError(t, err)

	prompt := llm.Calls()[0].Messages[0].Content
	assert.Contains(t, prompt, "Today is Saturday, 2024-06-01")
	assert.Contains(t, prompt, "Tomorrow is 2024-06-02")
	assert.Contains(t, prompt, "work, study, personal")
}

func extractEvent(t *testing.T, reply string) (*EventDraft, error) {
	t.Helper()
	e := NewExtractor(ai.NewMockLLMService(reply), testCategorizer(t))
	return e.ExtractEvent(context.Background(), "schedule something", testResolver())
}

func TestExtractEvent(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  *EventDraft
	}{
		{
			name:  "no end is one hour",
			reply: `{"summary": "Team standup meeting", "startDate": "2024-06-03", "startTime": "14:00"}`,
			want: &EventDraft{
				Summary: "Team standup meeting", Start: at("2024-06-03", 14, 0), End: at("2024-06-03", 15, 0),
				Category: category.Work,
			},
		},
		{
			name:  "default start time",
			reply: `{"summary": "Dentist", "location": "Clinic on Main St", "startDate": "tomorrow", "startTime": null, "category": "health"}`,
			want: &EventDraft{
				Summary: "Dentist", Location: "Clinic on Main St", Start: at("2024-06-02", 9, 0), End: at("2024-06-02", 10, 0),
				Category: category.Health,
			},
		},
		{
			name:  "explicit end",
			reply: `{"summary": "Workshop", "description": "bring laptop", "startDate": "2024-06-03", "startTime": "10:00", "endDate": null, "endTime": "12:30", "category": "study"}`,
			want: &EventDraft{
				Summary: "Workshop", Description: "bring laptop", Start: at("2024-06-03", 10, 0), End: at("2024-06-03", 12, 30),
				Category: category.Study,
			},
		},
		{
			name:  "end before start is reset",
			reply: `{"summary": "Flight", "startDate": "2024-06-03", "startTime": "16:00", "endTime": "15:00", "category": "travel"}`,
			want: &EventDraft{
				Summary: "Flight", Start: at("2024-06-03", 16, 0), End: at("2024-06-03", 17, 0),
				Category: category.Travel,
			},
		},
		{
			name:  "end equal to start is reset",
			reply: `{"summary": "Call", "startDate": "2024-06-03", "startTime": "16:00", "endDate": "2024-06-03", "endTime": "16:00", "category": "bogus"}`,
			want: &EventDraft{
				Summary: "Call", Start: at("2024-06-03", 16, 0), End: at("2024-06-03", 17, 0),
				Category: category.Personal,
			},
		},
		{
			name:  "overnight end date",
			reply: `{"summary": "Night hike", "startDate": "2024-06-03", "startTime": "22:00", "endDate": "2024-06-04", "endTime": "02:00", "category": "fitness"}`,
			want: &EventDraft{
				Summary: "Night hike", Start: at("2024-06-03", 22, 0), End: at("2024-06-04", 2, 0),
				Category: category.Fitness,
			},
		},
		{
			name:  "end date without end time keeps the start clock plus one hour",
			reply: `{"summary": "Conference", "startDate": "2024-06-01", "endDate": "2024-06-03", "category": "work"}`,
			want: &EventDraft{
				Summary: "Conference", Start: at("2024-06-01", 9, 0), End: at("2024-06-03", 10, 0),
				Category: category.Work,
			},
		},
		{
			name:  "late start without end crosses midnight",
			reply: `{"summary": "Stargazing", "startDate": "2024-06-03", "startTime": "23:30", "category": "leisure"}`,
			want: &EventDraft{
				Summary: "Stargazing", Start: at("2024-06-03", 23, 30), End: at("2024-06-04", 0, 30),
				Category: category.Leisure,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractEvent(t, tt.reply)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("draft mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, got.End.After(got.Start))
		})
	}
}

func TestExtractEventErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		code  aierrors.ErrorCode
	}{
		{"missing summary", `{"startDate": "2024-06-03"}`, aierrors.ErrCodeValidation},
		{"missing start date", `{"summary": "Lunch"}`, aierrors.ErrCodeValidation},
		{"bad start date", `{"summary": "Lunch", "startDate": "next Friday"}`, aierrors.ErrCodeParse},
		{"bad start time", `{"summary": "Lunch", "startDate": "2024-06-03", "startTime": "noon"}`, aierrors.ErrCodeParse},
		{"bad end time", `{"summary": "Lunch", "startDate": "2024-06-03", "endTime": "24:00"}`, aierrors.ErrCodeParse},
		{"bad end date", `{"summary": "Lunch", "startDate": "2024-06-03", "endDate": "2024-13-01", "endTime": "13:00"}`, aierrors.ErrCodeParse},
		{"bad end date without end time", `{"summary": "Lunch", "startDate": "2024-06-03", "endDate": "2024-13-01"}`, aierrors.ErrCodeParse},
		{"unknown field", `{"summary": "Lunch", "startDate": "2024-06-03", "attendees": []}`, aierrors.ErrCodeParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractEvent(t, tt.reply)
			assert.True(t, aierrors.IsCode(err, tt.code), "want %s, got %v", tt.code, err)
		})
	}
}

func TestExtractGoal(t *testing.T) {
	e := NewExtractor(ai.NewMockLLMService(`{
		"type": "Habit",
		"title": "Read every night",
		"category": "study",
		"target": "20 pages",
		"deadline": null,
		"milestones": ["First week", "", {"text": "First month", "completed": true}, "   "]
	}`), testCategorizer(t))

	got, err := e.ExtractGoal(context.Background(), "new habit: read", testResolver())
	require.NoError(t, err)
	want := &GoalDraft{
		Kind:     store.GoalKindHabit,
		Title:    "Read every night",
		Category: category.Study,
		Target:   "20 pages",
		Milestones: []store.Milestone{
			{Text: "First week"},
			{Text: "First month"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractGoalDefaults(t *testing.T) {
	e := NewExtractor(ai.NewMockLLMService(`{"type": "milestone", "title": "Run a marathon", "category": "sport"}`), testCategorizer(t))

	got, err := e.ExtractGoal(context.Background(), "set goal run a marathon", testResolver())
	require.NoError(t, err)
	assert.Equal(t, store.GoalKindGoal, got.Kind)
	assert.Equal(t, category.Personal, got.Category)
	assert.NotNil(t, got.Milestones)
	assert.Empty(t, got.Milestones)

	e = NewExtractor(ai.NewMockLLMService(`{"type": "goal", "title": ""}`), testCategorizer(t))
	_, err = e.ExtractGoal(context.Background(), "set goal", testResolver())
	assert.True(t, aierrors.IsCode(err, aierrors.ErrCodeValidation))
}

func TestEventPromptListsCategories(t *testing.T) {
	prompt := eventSystemPrompt(testResolver())
	for _, c := range category.All() {
		assert.True(t, strings.Contains(prompt, string(c)), c)
	}
}
