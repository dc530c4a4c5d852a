package store

import (
	"context"
	"time"
)

// EventSource tells how an event entered the store.
type EventSource string

const (
	EventSourceChat   EventSource = "chat"
	EventSourceImport EventSource = "import"
	EventSourceManual EventSource = "manual"
)

// Event is the object representing a calendar event.
type Event struct {
	ID        int32
	UID       string
	CreatorID string
	CreatedTs int64
	UpdatedTs int64

	Summary     string
	Description string
	Location    string
	StartTs     int64
	EndTs       int64
	Timezone    string
	// Category is empty until the event has been categorized.
	Category string
	Source   EventSource
}

// FindEvent is the find condition for event.
type FindEvent struct {
	ID        *int32
	UID       *string
	CreatorID *string

	// CategoryNotIn selects events whose category is none of these values.
	CategoryNotIn []string

	// Time range filters
	StartTs *int64
	EndTs   *int64

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateEvent is the update request for event.
type UpdateEvent struct {
	ID          int32
	UpdatedTs   *int64
	Summary     *string
	Description *string
	Location    *string
	StartTs     *int64
	EndTs       *int64
	Category    *string
}

// CreateEvent creates a new event. A missing UID is generated.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	if create.UID == "" {
		create.UID = NewUID()
	}
	if create.Source == "" {
		create.Source = EventSourceManual
	}
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists events with filter.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent gets an event, or nil when none matches.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateEvent updates an event.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) error {
	return s.driver.UpdateEvent(ctx, update)
}

// StartTime returns the event start time.
func (e *Event) StartTime() time.Time {
	return time.Unix(e.StartTs, 0)
}

// EndTime returns the event end time.
func (e *Event) EndTime() time.Time {
	return time.Unix(e.EndTs, 0)
}
