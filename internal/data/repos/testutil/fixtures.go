package testutil

import (
	"context"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/bridgeos/bridgeos/internal/domain"
)

var nextID int64

// NextID hands out a process-unique int64 for fixtures that need a
// caller-assigned primary key (User, whose id Manager and Worker then
// reuse), so parallel tests never collide on a seeded id.
func NextID() int64 {
	return atomic.AddInt64(&nextID, 1) + 1_000_000
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB) *domain.User {
	tb.Helper()
	u := &domain.User{
		UserID:      NextID(),
		DisplayName: "fixture user",
		UILanguage:  "en",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedManager(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *domain.Manager {
	tb.Helper()
	u := SeedUser(tb, ctx, tx)
	m := &domain.Manager{
		ManagerID: u.UserID,
		Code:      code,
		Industry:  "construction",
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed manager: %v", err)
	}
	return m
}

func SeedWorker(tb testing.TB, ctx context.Context, tx *gorm.DB) *domain.Worker {
	tb.Helper()
	u := SeedUser(tb, ctx, tx)
	w := &domain.Worker{WorkerID: u.UserID}
	if err := tx.WithContext(ctx).Create(w).Error; err != nil {
		tb.Fatalf("seed worker: %v", err)
	}
	return w
}

func SeedConnection(tb testing.TB, ctx context.Context, tx *gorm.DB, managerID, workerID int64, botSlot int) *domain.Connection {
	tb.Helper()
	c := &domain.Connection{
		ManagerID: managerID,
		WorkerID:  workerID,
		BotSlot:   botSlot,
		Status:    domain.ConnectionStatusActive,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed connection: %v", err)
	}
	return c
}
