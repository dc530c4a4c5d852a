package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/planwise/internal/profile"
	"github.com/hrygo/planwise/store"
	"github.com/hrygo/planwise/store/db/postgres"
	"github.com/hrygo/planwise/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// Only PostgreSQL and SQLite are supported; the anonymous fallback store is always SQLite.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}

// OpenStore opens the database described by profile and migrates it.
func OpenStore(ctx context.Context, profile *profile.Profile) (*store.Store, error) {
	driver, err := NewDBDriver(profile)
	if err != nil {
		return nil, err
	}
	s := store.New(driver, profile)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, errors.Wrapf(err, "failed to migrate %s store", profile.Driver)
	}
	return s, nil
}
