// Package test provides helpers for running store tests against a real database.
package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/planwise/internal/profile"
	"github.com/hrygo/planwise/store"
	"github.com/hrygo/planwise/store/db"
)

// NewTestingStore opens a migrated store. It uses a fresh SQLite file unless
// DRIVER=postgres and POSTGRES_TEST_DSN are set.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	p := getTestingProfile(t)
	s, err := db.OpenStore(ctx, p)
	if err != nil {
		t.Fatalf("failed to open testing store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func getTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:        "dev",
		Data:        dir,
		Driver:      getDriverFromEnv(),
		FallbackDSN: filepath.Join(dir, "planwise_local.db"),
	}
	switch p.Driver {
	case "postgres":
		p.DSN = os.Getenv("POSTGRES_TEST_DSN")
		if p.DSN == "" {
			t.Skip("POSTGRES_TEST_DSN is not set")
		}
	default:
		p.DSN = filepath.Join(dir, "planwise_test.db")
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}
