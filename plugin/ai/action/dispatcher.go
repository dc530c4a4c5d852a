package action

import (
	"context"
	"log/slog"
	"time"

	aierrors "github.com/hrygo/planwise/internal/errors"
	"github.com/hrygo/planwise/internal/observability"
	"github.com/hrygo/planwise/plugin/ai"
	"github.com/hrygo/planwise/plugin/ai/aitime"
	"github.com/hrygo/planwise/plugin/ai/category"
)

// Config wires a Dispatcher. Only Persistence is required in practice: without it
// every write fails.
type Config struct {
	// LLM may be nil, in which case classification uses keyword fallbacks and
	// extraction reports the assistant as unavailable.
	LLM         ai.LLMService
	Categorizer *category.Categorizer
	Persistence *PersistenceAdapter
	Clock       aitime.Clock
	Metrics     *observability.Metrics
	Logger      *slog.Logger
}

// Dispatcher runs one message through classification, extraction and persistence.
// It is safe for concurrent use.
type Dispatcher struct {
	intents      *IntentClassifier
	completeness *CompletenessChecker
	extractor    *Extractor
	persistence  *PersistenceAdapter
	clock        aitime.Clock
	metrics      *observability.Metrics
	logger       *slog.Logger
}

func NewDispatcher(cfg Config) (*Dispatcher, error) {
	categorizer := cfg.Categorizer
	if categorizer == nil {
		var err error
		categorizer, err = category.NewCategorizer(category.Config{Metrics: cfg.Metrics})
		if err != nil {
			return nil, err
		}
	}
	persistence := cfg.Persistence
	if persistence == nil {
		persistence = NewPersistenceAdapter(nil, nil, cfg.Metrics)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = aitime.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		intents:      NewIntentClassifier(cfg.LLM, cfg.Metrics),
		completeness: NewCompletenessChecker(cfg.LLM, cfg.Metrics),
		extractor:    NewExtractor(cfg.LLM, categorizer),
		persistence:  persistence,
		clock:        clock,
		metrics:      cfg.Metrics,
		logger:       logger,
	}, nil
}

// ProcessAction handles one message on behalf of identity, which may be empty.
// It returns nil for plain chat and otherwise a result with a non-empty UserMessage.
// ctx bounds every model and store call; no timeout is applied here.
func (d *Dispatcher) ProcessAction(ctx context.Context, message, identity string) *ActionResult {
	reqCtx := observability.NewRequestContext(d.logger, "action", identity)
	ctx = observability.WithRequestContext(ctx, reqCtx)
	logger := observability.LoggerFromContext(ctx)

	// The clock is read once; every date in this run is anchored on it.
	resolver := aitime.NewResolver(d.clock.Now())

	intent := d.intents.Classify(ctx, message)
	logger.Info("processing message",
		"intent", intent,
		observability.LogFieldMessageLen, len(message))

	var result *ActionResult
	switch intent {
	case IntentTask:
		result = d.processTask(ctx, message, identity, resolver)
	case IntentEvent:
		result = d.processEvent(ctx, message, identity, resolver)
	case IntentGoal:
		result = d.processGoal(ctx, message, identity, resolver)
	default:
		return nil
	}

	d.metrics.RecordAction(string(result.Kind), string(result.Outcome), reqCtx.Duration())
	logger.Info("message processed",
		"kind", result.Kind,
		"outcome", result.Outcome,
		observability.LogFieldDuration, reqCtx.DurationMs())
	return result
}

func (d *Dispatcher) processTask(ctx context.Context, message, identity string, r *aitime.Resolver) *ActionResult {
	if c := d.completeness.Check(ctx, message); !c.HasEnoughInfo {
		observability.LoggerFromContext(ctx).Info("task needs clarification", "reason", c.Reason)
		return &ActionResult{Kind: KindTask, Outcome: OutcomeNeedsClarification, UserMessage: msgTaskNeedsDetail}
	}

	draft, err := d.extractor.ExtractTask(ctx, message, r)
	if err != nil {
		return d.failed(ctx, KindTask, "extract", err)
	}
	task, err := d.persistence.PersistTask(ctx, identity, draft)
	if err != nil {
		return d.failed(ctx, KindTask, "persist", err)
	}
	return &ActionResult{Kind: KindTask, Outcome: OutcomeSuccess, UserMessage: taskCreatedMessage(draft), Payload: task}
}

func (d *Dispatcher) processEvent(ctx context.Context, message, identity string, r *aitime.Resolver) *ActionResult {
	draft, err := d.extractor.ExtractEvent(ctx, message, r)
	if err != nil {
		return d.failed(ctx, KindEvent, "extract", err)
	}
	event, err := d.persistence.PersistEvent(ctx, identity, draft)
	if err != nil {
		return d.failed(ctx, KindEvent, "persist", err)
	}
	return &ActionResult{Kind: KindEvent, Outcome: OutcomeSuccess, UserMessage: eventCreatedMessage(draft), Payload: event}
}

func (d *Dispatcher) processGoal(ctx context.Context, message, identity string, r *aitime.Resolver) *ActionResult {
	draft, err := d.extractor.ExtractGoal(ctx, message, r)
	if err != nil {
		return d.failed(ctx, KindGoal, "extract", err)
	}
	goal, err := d.persistence.PersistGoal(ctx, identity, draft)
	if err != nil {
		return d.failed(ctx, KindGoal, "persist", err)
	}
	return &ActionResult{Kind: KindGoal, Outcome: OutcomeSuccess, UserMessage: goalCreatedMessage(goal), Payload: goal}
}

func (d *Dispatcher) failed(ctx context.Context, kind Kind, step string, err error) *ActionResult {
	if ctx.Err() != nil && !aierrors.IsCode(err, aierrors.ErrCodeTimeout) {
		err = aierrors.Wrap(err, aierrors.ErrCodeTimeout, "action "+step+" interrupted")
	}
	observability.LoggerFromContext(ctx).Warn("action failed",
		"kind", kind,
		observability.LogFieldStage, step,
		observability.LogFieldErrorCode, aierrors.GetCodeFromError(err, aierrors.ErrCodeParse),
		"error", err)
	return &ActionResult{Kind: kind, Outcome: OutcomeFailed, UserMessage: failureMessage(kind, err)}
}

// ProcessWithTimeout is ProcessAction bounded by limit.
func (d *Dispatcher) ProcessWithTimeout(ctx context.Context, message, identity string, limit time.Duration) *ActionResult {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	return d.ProcessAction(ctx, message, identity)
}
