package store

import (
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/planwise/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// NewUID returns a short, URL-safe record identifier.
func NewUID() string {
	return shortuuid.New()
}
