package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/planwise/plugin/ai"
)

func TestCheckHeuristic(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"add task", false},
		{"  Add Task  ", false},
		{"task", false},
		{"new task", false},
		{"create task please", false},
		{"add task: ", false},
		{"new task for me", false},
		{"buy milk", false},
		{"add task buy milk", true},
		{"task: renew passport", true},
		{"call the plumber about the leak", true},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := CheckHeuristic(tt.message)
			assert.Equal(t, tt.want, got.HasEnoughInfo)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestCompletenessUsesLLM(t *testing.T) {
	llm := ai.NewMockLLMService(`{"hasEnoughInfo": false, "reason": "no object"}`)
	c := NewCompletenessChecker(llm, nil)

	got := c.Check(context.Background(), "add task to do the thing")
	assert.Equal(t, Completeness{HasEnoughInfo: false, Reason: "no object"}, got)
	if assert.Equal(t, 1, llm.CallCount()) {
		assert.True(t, llm.Calls()[0].Options.JSON)
	}
}

func TestCompletenessFallsBack(t *testing.T) {
	replies := map[string]string{
		"malformed":       `hasEnoughInfo: yes`,
		"missing field":   `{"reason": "looks fine"}`,
		"unknown field":   `{"hasEnoughInfo": true, "reason": "ok", "score": 3}`,
		"wrong type":      `{"hasEnoughInfo": "yes", "reason": "ok"}`,
		"trailing object": `{"hasEnoughInfo": true, "reason": "ok"} {}`,
	}
	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			c := NewCompletenessChecker(ai.NewMockLLMService(reply), nil)
			assert.False(t, c.Check(context.Background(), "add task").HasEnoughInfo)
			assert.True(t, c.Check(context.Background(), "add task buy milk").HasEnoughInfo)
		})
	}

	c := NewCompletenessChecker(nil, nil)
	assert.False(t, c.Check(context.Background(), "add task").HasEnoughInfo)
}
