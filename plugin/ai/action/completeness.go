package action

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	aierrors "github.com/hrygo/planwise/internal/errors"
	"github.com/hrygo/planwise/internal/observability"
	"github.com/hrygo/planwise/plugin/ai"
)

const (
	// minTaskMessageLen is the shortest message the heuristic accepts.
	minTaskMessageLen = 11
	// shortTriggerLen bounds messages that only start with a bare trigger.
	shortTriggerLen = 20
)

var bareTaskTriggers = []string{"add task", "create task", "new task", "task"}

// Words that carry no task content after a trigger, as in "add task please".
var triggerFiller = map[string]bool{
	"please": true, "pls": true, "a": true, "an": true, "the": true, "new": true, "for": true, "me": true,
}

// Completeness is the judgement on whether a task message says what to do.
type Completeness struct {
	HasEnoughInfo bool   `json:"hasEnoughInfo"`
	Reason        string `json:"reason"`
}

// CompletenessChecker gates task creation on a concrete description.
type CompletenessChecker struct {
	llm     ai.LLMService
	metrics *observability.Metrics
}

func NewCompletenessChecker(llm ai.LLMService, metrics *observability.Metrics) *CompletenessChecker {
	return &CompletenessChecker{llm: llm, metrics: metrics}
}

// Check asks the model first and falls back to CheckHeuristic. It never fails.
func (c *CompletenessChecker) Check(ctx context.Context, message string) Completeness {
	runner := stageRunner{component: "completeness", metrics: c.metrics}
	result, decided, err := runStages(ctx, runner,
		stage[Completeness]{name: stageLLM, run: func(ctx context.Context) (Completeness, error) {
			return c.checkWithLLM(ctx, message)
		}},
		stage[Completeness]{name: stageHeuristic, run: func(context.Context) (Completeness, error) {
			return CheckHeuristic(message), nil
		}},
	)
	if err != nil {
		return CheckHeuristic(message)
	}
	observability.LoggerFromContext(ctx).Debug("completeness checked",
		"has_enough_info", result.HasEnoughInfo,
		observability.LogFieldStage, decided)
	return result
}

func (c *CompletenessChecker) checkWithLLM(ctx context.Context, message string) (Completeness, error) {
	if c.llm == nil {
		return Completeness{}, aierrors.ServiceUnavailable("completeness service is not configured")
	}
	reply, err := c.llm.Chat(ctx, ai.FormatMessages(completenessSystemPrompt, message), ai.WithJSONResponse())
	if err != nil {
		return Completeness{}, err
	}
	parsed, err := decodeStrict[completenessSchema](reply)
	if err != nil {
		return Completeness{}, err
	}
	if parsed.HasEnoughInfo == nil {
		return Completeness{}, aierrors.Parse("completeness reply lacks hasEnoughInfo", aierrors.Validation("hasEnoughInfo"))
	}
	return Completeness{HasEnoughInfo: *parsed.HasEnoughInfo, Reason: str(parsed.Reason)}, nil
}

// CheckHeuristic judges a message without the model. A message is insufficient when it
// is a bare trigger phrase, a short trigger followed by filler, or very short.
func CheckHeuristic(message string) Completeness {
	trimmed := strings.ToLower(strings.TrimSpace(message))
	for _, trigger := range bareTaskTriggers {
		if trimmed == trigger {
			return Completeness{Reason: "message is only the phrase \"" + trigger + "\""}
		}
	}
	if utf8.RuneCountInString(trimmed) < shortTriggerLen {
		for _, trigger := range bareTaskTriggers {
			if rest, ok := strings.CutPrefix(trimmed, trigger); ok && onlyFiller(rest) {
				return Completeness{Reason: "message names no task after \"" + trigger + "\""}
			}
		}
	}
	if utf8.RuneCountInString(trimmed) < minTaskMessageLen {
		return Completeness{Reason: "message is too short to describe a task"}
	}
	return Completeness{HasEnoughInfo: true, Reason: "message describes a task"}
}

func onlyFiller(rest string) bool {
	words := strings.FieldsFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	for _, w := range words {
		if !triggerFiller[w] {
			return false
		}
	}
	return true
}
