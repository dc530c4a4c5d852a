// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

// AI operation timeout constants.
const (
	// ActionTimeout bounds one processed message end to end. It is applied by callers of
	// the pipeline, never inside it.
	ActionTimeout = 2 * time.Minute

	// BackfillTimeout bounds a bulk categorization run over stored events.
	BackfillTimeout = 5 * time.Minute

	// StoreTimeout bounds opening and migrating a store.
	StoreTimeout = 30 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
