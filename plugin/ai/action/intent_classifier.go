package action

import (
	"context"
	"strings"

	aierrors "github.com/hrygo/planwise/internal/errors"
	"github.com/hrygo/planwise/internal/observability"
	"github.com/hrygo/planwise/plugin/ai"
)

const (
	stageLLM       = "llm"
	stageKeywords  = "keywords"
	stageHeuristic = "heuristic"
)

// Trigger phrases of the keyword fallback, checked task, event, goal in that order.
var (
	taskTriggers  = []string{"add task", "create task", "new task", "todo", "remind me", "task:"}
	eventTriggers = []string{"add event", "create event", "schedule", "meeting", "appointment", "calendar", "event:"}
	goalTriggers  = []string{"add goal", "create goal", "new goal", "set goal", "add habit", "create habit", "new habit", "goal:", "habit:"}
)

// IntentClassifier decides which action a message asks for.
type IntentClassifier struct {
	llm     ai.LLMService
	metrics *observability.Metrics
}

// NewIntentClassifier returns a classifier. A nil llm means keyword matching only.
func NewIntentClassifier(llm ai.LLMService, metrics *observability.Metrics) *IntentClassifier {
	return &IntentClassifier{llm: llm, metrics: metrics}
}

// Classify never fails: any LLM problem falls back to keyword matching.
func (c *IntentClassifier) Classify(ctx context.Context, message string) Intent {
	runner := stageRunner{component: "intent", metrics: c.metrics}
	intent, decided, err := runStages(ctx, runner,
		stage[Intent]{name: stageLLM, run: func(ctx context.Context) (Intent, error) {
			return c.classifyWithLLM(ctx, message)
		}},
		stage[Intent]{name: stageKeywords, run: func(context.Context) (Intent, error) {
			return ClassifyByKeywords(message), nil
		}},
	)
	if err != nil {
		// Unreachable: the keyword stage cannot fail.
		return IntentChat
	}
	c.metrics.RecordIntent(string(intent), decided)
	observability.LoggerFromContext(ctx).Debug("intent classified",
		"intent", intent,
		observability.LogFieldStage, decided,
		"input", truncateForLog(message))
	return intent
}

func (c *IntentClassifier) classifyWithLLM(ctx context.Context, message string) (Intent, error) {
	if c.llm == nil {
		return "", aierrors.ServiceUnavailable("intent classification service is not configured")
	}
	reply, err := c.llm.Chat(ctx, ai.FormatMessages(intentSystemPrompt, message), ai.WithMaxTokens(8))
	if err != nil {
		return "", err
	}
	return parseIntentReply(reply)
}

// parseIntentReply matches the reply by substring in the order task, event, goal, chat.
func parseIntentReply(reply string) (Intent, error) {
	lower := strings.ToLower(reply)
	for _, intent := range []Intent{IntentTask, IntentEvent, IntentGoal, IntentChat} {
		if strings.Contains(lower, string(intent)) {
			return intent, nil
		}
	}
	return "", aierrors.Parse("intent reply names no known intent", nil).WithContext("reply", truncateForLog(reply))
}

// ClassifyByKeywords is the deterministic fallback. No trigger phrase means chat.
func ClassifyByKeywords(message string) Intent {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, taskTriggers):
		return IntentTask
	case containsAny(lower, eventTriggers):
		return IntentEvent
	case containsAny(lower, goalTriggers):
		return IntentGoal
	default:
		return IntentChat
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
