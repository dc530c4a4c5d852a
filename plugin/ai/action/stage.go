package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrygo/planwise/internal/observability"
)

// stage is one attempt in an ordered fallback chain.
type stage[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// stageRunner runs fallback chains for one component.
type stageRunner struct {
	component string
	metrics   *observability.Metrics
}

// run tries stages in order and returns the first success with the name of the
// stage that produced it. A failed stage is logged and the next one runs. When
// every stage fails the joined errors are returned.
func runStages[T any](ctx context.Context, r stageRunner, stages ...stage[T]) (T, string, error) {
	var zero T
	var errs []error
	logger := observability.LoggerFromContext(ctx)

	for i, s := range stages {
		v, err := s.run(ctx)
		if err == nil {
			return v, s.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))

		if i+1 < len(stages) {
			next := stages[i+1].name
			logger.Warn("stage failed, falling back",
				observability.LogFieldComponent, r.component,
				observability.LogFieldStage, s.name,
				"next_stage", next,
				"error", err)
			r.metrics.RecordFallback(r.component, next)
		}
	}
	if len(errs) == 0 {
		return zero, "", fmt.Errorf("%s: no stages to run", r.component)
	}
	return zero, "", errors.Join(errs...)
}
