package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/planwise/plugin/ai/action"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data", t.TempDir(), "--driver", "none", "--ai-enabled=false"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestProcessCommand(t *testing.T) {
	out, err := run(t, "", "process", "add task")
	require.NoError(t, err)
	assert.Equal(t, "task needs_clarification: "+
		`What should the task be? Tell me what needs doing, for example "add task buy milk tomorrow".`+"\n", out)

	out, err = run(t, "", "process", "lovely weather today")
	require.NoError(t, err)
	assert.Equal(t, "chat: no action taken\n", out)
}

func TestProcessCommandStdinJSON(t *testing.T) {
	out, err := run(t, "add task\n\nhello there\n", "process", "--stdin", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first processOutput
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "add task", first.Message)
	require.NotNil(t, first.Result)
	assert.Equal(t, action.OutcomeNeedsClarification, first.Result.Outcome)

	var second processOutput
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.True(t, second.Chat)
	assert.Nil(t, second.Result)
}

func TestProcessCommandWithoutServiceFails(t *testing.T) {
	out, err := run(t, "", "process", "schedule a call with the bank tomorrow")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "event failed: "), out)
}

func TestProcessCommandWithIncompleteServiceConfig(t *testing.T) {
	t.Setenv("PLANWISE_AI_DEEPSEEK_API_KEY", "")
	out, err := run(t, "", "--ai-enabled=true", "--ai-llm-provider", "deepseek", "process", "schedule a call with the bank tomorrow")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "event failed: "), out)
}

func TestProcessCommandArgs(t *testing.T) {
	_, err := run(t, "", "process")
	assert.Error(t, err)

	_, err = run(t, "", "process", "--stdin", "add task x")
	assert.Error(t, err)

	_, err = run(t, "", "process", "add", "task")
	assert.Error(t, err)
}

func TestCategorizeCommand(t *testing.T) {
	out, err := run(t, "", "categorize", "--summary", "Team standup meeting")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "work "), out)

	out, err = run(t, "", "categorize", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"category": "personal", "path": "empty", "confidence": 0}`, out)
}

func TestBackfillCommandOnEmptyStore(t *testing.T) {
	out, err := run(t, "", "backfill")
	require.NoError(t, err)
	assert.Equal(t, "fallback store: scanned 0, updated 0, failed 0\n", out)
}

func TestFormatCounts(t *testing.T) {
	assert.Empty(t, formatCounts(nil))
}
