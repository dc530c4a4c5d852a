package action

import (
	"context"

	aierrors "github.com/hrygo/planwise/internal/errors"
	"github.com/hrygo/planwise/internal/observability"
	"github.com/hrygo/planwise/store"
)

const (
	stageIdentityStore = "identity_store"
	stageFallbackStore = "fallback_store"
)

// IdentityStore persists records owned by a caller identity.
type IdentityStore interface {
	CreateTask(ctx context.Context, identity string, draft *TaskDraft, uid string) (*store.Task, error)
	CreateEvent(ctx context.Context, identity string, draft *EventDraft, uid string) (*store.Event, error)
	CreateGoal(ctx context.Context, identity string, draft *GoalDraft, uid string) (*store.Goal, error)
}

// FallbackStore persists records without an owner.
type FallbackStore interface {
	CreateTask(ctx context.Context, draft *TaskDraft, uid string) (*store.Task, error)
	CreateEvent(ctx context.Context, draft *EventDraft, uid string) (*store.Event, error)
	CreateGoal(ctx context.Context, draft *GoalDraft, uid string) (*store.Goal, error)
}

// StoreIdentityStore is an IdentityStore on a database store. A nil store reports
// StoreNotConfigured on every call.
type StoreIdentityStore struct {
	store *store.Store
}

func NewStoreIdentityStore(s *store.Store) *StoreIdentityStore {
	return &StoreIdentityStore{store: s}
}

func (s *StoreIdentityStore) CreateTask(ctx context.Context, identity string, draft *TaskDraft, uid string) (*store.Task, error) {
	if s.store == nil {
		return nil, aierrors.StoreNotConfigured()
	}
	return s.store.CreateTask(ctx, taskRecord(identity, draft, uid))
}

func (s *StoreIdentityStore) CreateEvent(ctx context.Context, identity string, draft *EventDraft, uid string) (*store.Event, error) {
	if s.store == nil {
		return nil, aierrors.StoreNotConfigured()
	}
	return s.store.CreateEvent(ctx, eventRecord(identity, draft, uid))
}

func (s *StoreIdentityStore) CreateGoal(ctx context.Context, identity string, draft *GoalDraft, uid string) (*store.Goal, error) {
	if s.store == nil {
		return nil, aierrors.StoreNotConfigured()
	}
	return s.store.CreateGoal(ctx, goalRecord(identity, draft, uid))
}

// StoreFallbackStore is a FallbackStore on a database store.
type StoreFallbackStore struct {
	store *store.Store
}

func NewStoreFallbackStore(s *store.Store) *StoreFallbackStore {
	return &StoreFallbackStore{store: s}
}

func (s *StoreFallbackStore) CreateTask(ctx context.Context, draft *TaskDraft, uid string) (*store.Task, error) {
	if s.store == nil {
		return nil, aierrors.Persistence("fallback store not configured", nil)
	}
	return s.store.CreateTask(ctx, taskRecord("", draft, uid))
}

func (s *StoreFallbackStore) CreateEvent(ctx context.Context, draft *EventDraft, uid string) (*store.Event, error) {
	if s.store == nil {
		return nil, aierrors.Persistence("fallback store not configured", nil)
	}
	return s.store.CreateEvent(ctx, eventRecord("", draft, uid))
}

func (s *StoreFallbackStore) CreateGoal(ctx context.Context, draft *GoalDraft, uid string) (*store.Goal, error) {
	if s.store == nil {
		return nil, aierrors.Persistence("fallback store not configured", nil)
	}
	return s.store.CreateGoal(ctx, goalRecord("", draft, uid))
}

func taskRecord(identity string, draft *TaskDraft, uid string) *store.Task {
	t := &store.Task{
		UID:       uid,
		CreatorID: identity,
		Title:     draft.Title,
		DueDate:   draft.DueDate,
		Priority:  string(draft.Priority),
		Category:  string(draft.Category),
	}
	if draft.DueAt != nil {
		ts := draft.DueAt.Unix()
		t.DueTs = &ts
	}
	return t
}

func eventRecord(identity string, draft *EventDraft, uid string) *store.Event {
	return &store.Event{
		UID:         uid,
		CreatorID:   identity,
		Summary:     draft.Summary,
		Description: draft.Description,
		Location:    draft.Location,
		StartTs:     draft.Start.Unix(),
		EndTs:       draft.End.Unix(),
		Timezone:    draft.Start.Location().String(),
		Category:    string(draft.Category),
		Source:      store.EventSourceChat,
	}
}

func goalRecord(identity string, draft *GoalDraft, uid string) *store.Goal {
	return &store.Goal{
		UID:        uid,
		CreatorID:  identity,
		Kind:       draft.Kind,
		Title:      draft.Title,
		Category:   string(draft.Category),
		Target:     draft.Target,
		Deadline:   draft.Deadline,
		Milestones: draft.Milestones,
	}
}

// PersistenceAdapter writes drafts through the identity store and falls back to the
// fallback store. Both attempts share one record UID so a retry can be deduplicated.
type PersistenceAdapter struct {
	identity IdentityStore
	fallback FallbackStore
	metrics  *observability.Metrics
}

// NewPersistenceAdapter returns an adapter. A nil identity store behaves as not configured.
func NewPersistenceAdapter(identity IdentityStore, fallback FallbackStore, metrics *observability.Metrics) *PersistenceAdapter {
	if identity == nil {
		identity = NewStoreIdentityStore(nil)
	}
	if fallback == nil {
		fallback = NewStoreFallbackStore(nil)
	}
	return &PersistenceAdapter{identity: identity, fallback: fallback, metrics: metrics}
}

func (a *PersistenceAdapter) PersistTask(ctx context.Context, identity string, draft *TaskDraft) (*store.Task, error) {
	uid := store.NewUID()
	return persist(ctx, a, KindTask, identity,
		func(ctx context.Context) (*store.Task, error) { return a.identity.CreateTask(ctx, identity, draft, uid) },
		func(ctx context.Context) (*store.Task, error) { return a.fallback.CreateTask(ctx, draft, uid) },
	)
}

func (a *PersistenceAdapter) PersistEvent(ctx context.Context, identity string, draft *EventDraft) (*store.Event, error) {
	uid := store.NewUID()
	return persist(ctx, a, KindEvent, identity,
		func(ctx context.Context) (*store.Event, error) { return a.identity.CreateEvent(ctx, identity, draft, uid) },
		func(ctx context.Context) (*store.Event, error) { return a.fallback.CreateEvent(ctx, draft, uid) },
	)
}

func (a *PersistenceAdapter) PersistGoal(ctx context.Context, identity string, draft *GoalDraft) (*store.Goal, error) {
	uid := store.NewUID()
	return persist(ctx, a, KindGoal, identity,
		func(ctx context.Context) (*store.Goal, error) { return a.identity.CreateGoal(ctx, identity, draft, uid) },
		func(ctx context.Context) (*store.Goal, error) { return a.fallback.CreateGoal(ctx, draft, uid) },
	)
}

// persist skips the identity store when identity is empty.
func persist[T any](ctx context.Context, a *PersistenceAdapter, kind Kind, identity string, primary, fallback func(context.Context) (T, error)) (T, error) {
	stages := make([]stage[T], 0, 2)
	if identity != "" {
		stages = append(stages, stage[T]{name: stageIdentityStore, run: primary})
	}
	stages = append(stages, stage[T]{name: stageFallbackStore, run: fallback})

	runner := stageRunner{component: "persistence", metrics: a.metrics}
	record, used, err := runStages(ctx, runner, stages...)
	if err != nil {
		var zero T
		return zero, aierrors.Persistence("no store accepted the "+string(kind), err)
	}
	observability.LoggerFromContext(ctx).Debug("record persisted",
		"kind", kind,
		observability.LogFieldStage, used)
	return record, nil
}
