package category

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/planwise/store"
)

// DefaultBackfillConcurrency bounds concurrent event updates during a backfill.
const DefaultBackfillConcurrency = 4

// EventStore is the part of the store a backfill needs.
type EventStore interface {
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
	UpdateEvent(ctx context.Context, update *store.UpdateEvent) error
}

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Scanned int
	Updated int
	Failed  int
	// ByCategory counts updated events per assigned category.
	ByCategory map[Category]int
}

// Backfill categorizes every stored event whose category is empty or not one of
// the known categories. Update failures are logged and counted; only cancellation
// aborts the run.
func (c *Categorizer) Backfill(ctx context.Context, s EventStore, concurrency int) (*BackfillResult, error) {
	known := make([]string, 0, len(all))
	for _, cat := range all {
		known = append(known, string(cat))
	}
	events, err := s.ListEvents(ctx, &store.FindEvent{CategoryNotIn: known})
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = DefaultBackfillConcurrency
	}

	assigned := make([]Category, len(events))
	var updated, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, event := range events {
		i, event := i, event // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cat := c.Categorize(event.Summary, event.Description, event.Location)
			value := string(cat)
			if err := s.UpdateEvent(gctx, &store.UpdateEvent{ID: event.ID, Category: &value}); err != nil {
				slog.Warn("failed to store event category",
					"event_id", event.ID,
					"category", value,
					"error", err)
				failed.Add(1)
				return nil
			}
			assigned[i] = cat
			updated.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BackfillResult{
		Scanned:    len(events),
		Updated:    int(updated.Load()),
		Failed:     int(failed.Load()),
		ByCategory: make(map[Category]int),
	}
	for _, cat := range assigned {
		if cat != "" {
			result.ByCategory[cat]++
		}
	}
	slog.Info("event category backfill finished",
		"scanned", result.Scanned,
		"updated", result.Updated,
		"failed", result.Failed)
	return result, nil
}
