// Package seed builds the demo dataset and keeps the store populated with it.
package seed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskdesk/internal/metrics"
	"taskdesk/internal/store"
)

// Seeder owns the seeded flag. A seeded store counts as drifted when users is not a
// non-empty array or no user carries a non-empty employeeId.
type Seeder struct {
	Store *store.Store
	Now   func() time.Time
	Log   *zap.Logger
}

func (s Seeder) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s Seeder) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Seeder) IsSeeded(ctx context.Context) bool {
	return store.Load(ctx, s.Store, store.KeySeeded, false)
}

func (s Seeder) drifted(ctx context.Context) bool {
	return !s.Store.HasField(ctx, store.KeyUsers, "employeeId")
}

// SeedIfNeeded writes the demo dataset and sets the seeded flag when the flag is unset
// or the stored users have drifted, and reports whether it did. Once seeded and valid it
// makes no writes.
func (s Seeder) SeedIfNeeded(ctx context.Context) bool {
	var reason string
	switch {
	case !s.IsSeeded(ctx):
		reason = "unseeded"
	case s.drifted(ctx):
		reason = "drift"
	default:
		return false
	}
	s.logger().Info("seeding demo data", zap.String("reason", reason))
	s.ResetAllToSeed(ctx)
	s.Store.Save(ctx, store.KeySeeded, true)
	metrics.ObserveReseed(reason)
	return true
}

// ResetAllToSeed overwrites every collection with a fresh dataset and clears the deadline
// ledger, the activity log and the seeded flag. Safe to call repeatedly.
func (s Seeder) ResetAllToSeed(ctx context.Context) {
	data := Build(s.now())
	s.Store.Save(ctx, store.KeyUsers, data.Users)
	s.Store.Save(ctx, store.KeyProjects, data.Projects)
	s.Store.Save(ctx, store.KeyTasks, data.Tasks)
	s.Store.Save(ctx, store.KeyNotifications, data.Notifications)
	s.Store.Clear(ctx, store.KeyDeadlineSent)
	s.Store.Clear(ctx, store.KeyActivity)
	s.Store.Clear(ctx, store.KeySeeded)
	s.logger().Debug("store reset to seed",
		zap.Int("users", len(data.Users)),
		zap.Int("projects", len(data.Projects)),
		zap.Int("tasks", len(data.Tasks)))
}
