package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/planwise/plugin/ai"
	"github.com/hrygo/planwise/plugin/ai/aitime"
	"github.com/hrygo/planwise/plugin/ai/category"
	"github.com/hrygo/planwise/store"
)

type dispatcherFixture struct {
	llm      *ai.MockLLMService
	identity *fakeIdentityStore
	fallback *fakeFallbackStore
	d        *Dispatcher
}

func newFixture(t *testing.T, script scriptedLLM) *dispatcherFixture {
	t.Helper()
	f := &dispatcherFixture{
		llm:      script.mock(),
		identity: &fakeIdentityStore{},
		fallback: &fakeFallbackStore{},
	}
	d, err := NewDispatcher(Config{
		LLM:         f.llm,
		Categorizer: testCategorizer(t),
		Persistence: NewPersistenceAdapter(f.identity, f.fallback, nil),
		Clock:       aitime.FixedClock{At: anchor},
	})
	require.NoError(t, err)
	f.d = d
	return f
}

func TestProcessChat(t *testing.T) {
	f := newFixture(t, scriptedLLM{intent: "chat"})
	assert.Nil(t, f.d.ProcessAction(context.Background(), "how are you?", "user-1"))
	assert.Zero(t, f.identity.calls+f.fallback.calls)
}

func TestProcessChatWithoutService(t *testing.T) {
	d, err := NewDispatcher(Config{Clock: aitime.FixedClock{At: anchor}})
	require.NoError(t, err)
	assert.Nil(t, d.ProcessAction(context.Background(), "nice weather", ""))
}

func TestProcessTaskTomorrow(t *testing.T) {
	f := newFixture(t, scriptedLLM{
		intent:       "task",
		completeness: `{"hasEnoughInfo": true, "reason": "clear"}`,
		extraction:   `{"title": "Buy milk", "dueDate": "tomorrow", "dueTime": null, "priority": "none", "category": null}`,
	})

	result := f.d.ProcessAction(context.Background(), "add task buy milk tomorrow", "user-1")
	require.NotNil(t, result)
	assert.Equal(t, KindTask, result.Kind)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "Task created: Buy milk, due 2024-06-02", result.UserMessage)

	task, ok := result.Payload.(*store.Task)
	require.True(t, ok)
	assert.Equal(t, "2024-06-02", task.DueDate)
	assert.Equal(t, "user-1", task.CreatorID)
}

func TestProcessBareTaskNeedsClarification(t *testing.T) {
	// The service is down, so intent and completeness both use their fallbacks.
	f := newFixture(t, scriptedLLM{extraction: `{"title": "should not be used"}`})

	result := f.d.ProcessAction(context.Background(), "add task", "user-1")
	require.NotNil(t, result)
	assert.Equal(t, KindTask, result.Kind)
	assert.Equal(t, OutcomeNeedsClarification, result.Outcome)
	assert.Equal(t, msgTaskNeedsDetail, result.UserMessage)
	assert.Zero(t, extractionCalls(f.llm))
	assert.Zero(t, f.identity.calls+f.fallback.calls)
}

func TestProcessEvent(t *testing.T) {
	f := newFixture(t, scriptedLLM{
		intent:     "event",
		extraction: `{"summary": "Team standup meeting", "startDate": "tomorrow", "startTime": "14:00"}`,
	})

	result := f.d.ProcessAction(context.Background(), "team standup tomorrow at 2pm", "user-1")
	require.NotNil(t, result)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "Event created: Team standup meeting, 2024-06-02 14:00-15:00", result.UserMessage)

	event, ok := result.Payload.(*store.Event)
	require.True(t, ok)
	start := time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Unix(), event.StartTs)
	assert.Equal(t, start.Add(time.Hour).Unix(), event.EndTs)
	assert.Equal(t, "work", event.Category)
}

func TestProcessGoal(t *testing.T) {
	f := newFixture(t, scriptedLLM{
		intent:     "goal",
		extraction: `{"type": "habit", "title": "Meditate daily", "category": "rest", "milestones": ["7 days"]}`,
	})

	result := f.d.ProcessAction(context.Background(), "new habit meditate daily", "")
	require.NotNil(t, result)
	assert.Equal(t, KindGoal, result.Kind)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "Habit created: Meditate daily", result.UserMessage)
	// No identity, so only the fallback store is used.
	assert.Zero(t, f.identity.calls)
	require.Len(t, f.fallback.goals, 1)
	assert.Equal(t, []store.Milestone{{Text: "7 days"}}, f.fallback.goals[0].Milestones)
}

func TestProcessIdentityStoreFailureFallsBack(t *testing.T) {
	f := newFixture(t, scriptedLLM{
		intent:       "task",
		completeness: `{"hasEnoughInfo": true, "reason": "clear"}`,
		extraction:   `{"title": "Pay rent"}`,
	})
	f.identity.err = errors.New("identity store offline")

	result := f.d.ProcessAction(context.Background(), "add task pay rent", "user-1")
	require.NotNil(t, result)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, f.identity.calls)
	assert.Len(t, f.fallback.tasks, 1)
}

func TestProcessFailures(t *testing.T) {
	tests := []struct {
		name        string
		script      scriptedLLM
		storesDown  bool
		message     string
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "unparsable extraction",
			script:      scriptedLLM{intent: "event", extraction: `I'd love to help!`},
			message:     "schedule lunch",
			wantKind:    KindEvent,
			wantMessage: "Sorry, I couldn't understand the details of that event. Could you rephrase it?",
		},
		{
			name:        "missing title",
			script:      scriptedLLM{intent: "goal", extraction: `{"title": " "}`},
			message:     "set goal",
			wantKind:    KindGoal,
			wantMessage: "I need a title to create the goal. Could you tell me what it is?",
		},
		{
			name:        "missing start date",
			script:      scriptedLLM{intent: "event", extraction: `{"summary": "Lunch"}`},
			message:     "schedule lunch",
			wantKind:    KindEvent,
			wantMessage: "I need a date to create the event. Could you tell me what it is?",
		},
		{
			name:        "service down during extraction",
			script:      scriptedLLM{},
			message:     "schedule a call with the bank",
			wantKind:    KindEvent,
			wantMessage: "The assistant is unavailable right now, so I couldn't create the event. Please try again later.",
		},
		{
			name: "both stores fail",
			script: scriptedLLM{
				intent:       "task",
				completeness: `{"hasEnoughInfo": true, "reason": "clear"}`,
				extraction:   `{"title": "Pay rent"}`,
			},
			storesDown:  true,
			message:     "add task pay rent",
			wantKind:    KindTask,
			wantMessage: "I understood the task but couldn't save it. Please try again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.script)
			if tt.storesDown {
				f.identity.err = errors.New("down")
				f.fallback.err = errors.New("down")
			}
			result := f.d.ProcessAction(context.Background(), tt.message, "user-1")
			require.NotNil(t, result)
			assert.Equal(t, tt.wantKind, result.Kind)
			assert.Equal(t, OutcomeFailed, result.Outcome)
			assert.Equal(t, tt.wantMessage, result.UserMessage)
			assert.Nil(t, result.Payload)
		})
	}
}

func TestProcessReadsClockOnce(t *testing.T) {
	clock := &countingClock{at: anchor}
	llm := scriptedLLM{
		intent:     "event",
		extraction: `{"summary": "Dinner", "startDate": "today", "startTime": "19:00"}`,
	}.mock()
	d, err := NewDispatcher(Config{
		LLM:         llm,
		Categorizer: testCategorizer(t),
		Persistence: NewPersistenceAdapter(nil, &fakeFallbackStore{}, nil),
		Clock:       clock,
	})
	require.NoError(t, err)

	result := d.ProcessWithTimeout(context.Background(), "dinner tonight", "", time.Second)
	require.NotNil(t, result)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, clock.calls)
}

func TestProcessCancelled(t *testing.T) {
	f := newFixture(t, scriptedLLM{
		intent:     "event",
		extraction: `{"summary": "Dinner", "startDate": "today"}`,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The mock honours cancellation, so intent falls back to keywords and extraction fails.
	result := f.d.ProcessAction(ctx, "schedule dinner", "user-1")
	require.NotNil(t, result)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, "The assistant is unavailable right now, so I couldn't create the event. Please try again later.", result.UserMessage)
}

func TestNewDispatcherDefaults(t *testing.T) {
	d, err := NewDispatcher(Config{})
	require.NoError(t, err)
	assert.NotNil(t, d.extractor.categorizer)
	assert.Equal(t, category.ModelNotBuilt, d.extractor.categorizer.ModelState())
}

type countingClock struct {
	at    time.Time
	calls int
}

func (c *countingClock) Now() time.Time {
	c.calls++
	return c.at
}
