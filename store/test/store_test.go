package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/planwise/internal/version"
	"github.com/hrygo/planwise/store"
)

func TestMigrateRecordsSchemaVersion(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	setting, err := ts.GetSystemSetting(ctx, store.SystemSettingSchemaVersion)
	require.NoError(t, err)
	require.NotNil(t, setting)

	current, err := ts.GetCurrentSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, current, setting.Value)
	assert.True(t, version.IsValid(setting.Value))

	// A second migration is a no-op.
	require.NoError(t, ts.Migrate(ctx))
}

func TestMigrateRejectsDowngrade(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.UpsertSystemSetting(ctx, &store.SystemSetting{
		Name:  store.SystemSettingSchemaVersion,
		Value: "99.0.0",
	})
	require.NoError(t, err)
	assert.Error(t, ts.Migrate(ctx))
}

func TestTaskStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	due := time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC).Unix()
	task, err := ts.CreateTask(ctx, &store.Task{
		CreatorID: "alice",
		Title:     "Buy milk",
		DueDate:   "2024-06-02",
		DueTs:     &due,
		Priority:  "high",
		Category:  "personal",
	})
	require.NoError(t, err)
	require.NotZero(t, task.ID)
	require.NotEmpty(t, task.UID)
	require.NotZero(t, task.CreatedTs)

	_, err = ts.CreateTask(ctx, &store.Task{Title: "Anonymous", Priority: "none"})
	require.NoError(t, err)

	creator := "alice"
	list, err := ts.ListTasks(ctx, &store.FindTask{CreatorID: &creator})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Buy milk", list[0].Title)
	assert.Equal(t, "2024-06-02", list[0].DueDate)
	require.NotNil(t, list[0].DueTime())
	assert.Equal(t, due, list[0].DueTime().Unix())

	found, err := ts.GetTask(ctx, &store.FindTask{UID: &task.UID})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, task.ID, found.ID)

	missing := "nope"
	found, err = ts.GetTask(ctx, &store.FindTask{UID: &missing})
	require.NoError(t, err)
	assert.Nil(t, found)

	all, err := ts.ListTasks(ctx, &store.FindTask{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Nil(t, all[1].DueTs)
}

func TestEventStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	start := time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC)
	chat, err := ts.CreateEvent(ctx, &store.Event{
		CreatorID: "alice",
		Summary:   "Team standup",
		StartTs:   start.Unix(),
		EndTs:     start.Add(time.Hour).Unix(),
		Category:  "work",
		Source:    store.EventSourceChat,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, chat.UID)

	imported, err := ts.CreateEvent(ctx, &store.Event{
		Summary:  "Dentist",
		Location: "Main St clinic",
		StartTs:  start.Add(24 * time.Hour).Unix(),
		EndTs:    start.Add(25 * time.Hour).Unix(),
		Source:   store.EventSourceImport,
	})
	require.NoError(t, err)

	free, err := ts.CreateEvent(ctx, &store.Event{
		Summary:  "Board sync",
		StartTs:  start.Add(48 * time.Hour).Unix(),
		EndTs:    start.Add(49 * time.Hour).Unix(),
		Category: "Meeting",
		Source:   store.EventSourceImport,
	})
	require.NoError(t, err)

	known := []string{"work", "health"}
	uncategorized, err := ts.ListEvents(ctx, &store.FindEvent{CategoryNotIn: known})
	require.NoError(t, err)
	require.Len(t, uncategorized, 2)
	assert.Equal(t, imported.ID, uncategorized[0].ID)
	assert.Equal(t, store.EventSourceImport, uncategorized[0].Source)
	assert.Equal(t, free.ID, uncategorized[1].ID)

	category := "health"
	require.NoError(t, ts.UpdateEvent(ctx, &store.UpdateEvent{ID: imported.ID, Category: &category}))
	require.NoError(t, ts.UpdateEvent(ctx, &store.UpdateEvent{ID: free.ID, Category: &category}))
	uncategorized, err = ts.ListEvents(ctx, &store.FindEvent{CategoryNotIn: known})
	require.NoError(t, err)
	assert.Empty(t, uncategorized)

	// Range filter: only the first event overlaps the first day.
	dayStart := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC).Unix()
	dayEnd := dayStart + 24*3600
	inDay, err := ts.ListEvents(ctx, &store.FindEvent{StartTs: &dayStart, EndTs: &dayEnd})
	require.NoError(t, err)
	require.Len(t, inDay, 1)
	assert.Equal(t, "Team standup", inDay[0].Summary)
	assert.Equal(t, start, inDay[0].StartTime().UTC())
	assert.Equal(t, start.Add(time.Hour), inDay[0].EndTime().UTC())

	manual, err := ts.CreateEvent(ctx, &store.Event{Summary: "x", StartTs: 1, EndTs: 2})
	require.NoError(t, err)
	assert.Equal(t, store.EventSourceManual, manual.Source)
}

func TestGoalStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	goal, err := ts.CreateGoal(ctx, &store.Goal{
		CreatorID: "bob",
		Kind:      store.GoalKindHabit,
		Title:     "Run every morning",
		Category:  "fitness",
		Target:    "5km",
		Milestones: []store.Milestone{
			{Text: "Buy shoes"},
			{Text: "First 5k"},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, goal.ID)

	bare, err := ts.CreateGoal(ctx, &store.Goal{Title: "Read more", Category: "study"})
	require.NoError(t, err)
	assert.Equal(t, store.GoalKindGoal, bare.Kind)

	habit := store.GoalKindHabit
	list, err := ts.ListGoals(ctx, &store.FindGoal{Kind: &habit})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []store.Milestone{{Text: "Buy shoes"}, {Text: "First 5k"}}, list[0].Milestones)
	assert.Equal(t, "5km", list[0].Target)

	list, err = ts.ListGoals(ctx, &store.FindGoal{UID: &bare.UID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Milestones)
	assert.Empty(t, list[0].Milestones)
}
