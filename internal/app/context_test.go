package app

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/internal/repo"
	"taskdesk/internal/store"
)

func TestOpenSeedsSQLiteWorkspace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	eng, err := Open(ctx, dir, config.Default(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := os.Stat(db.Path(dir)); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
	if n := len(eng.Repo.Projects.List(ctx, repo.ProjectFilters{})); n != 6 {
		t.Fatalf("expected 6 seeded projects, got %d", n)
	}
	if _, err := eng.Repo.Users.Create(ctx, repo.UserInput{Name: "Persisted"}); err != nil {
		t.Fatal(err)
	}
	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}

	eng, err = Open(ctx, dir, config.Default(), nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer eng.Close()
	if n := len(eng.Repo.Users.List(ctx)); n != 9 {
		t.Fatalf("reopen should keep data, got %d users", n)
	}
}

func TestOpenRedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.URL = "redis://" + mr.Addr()
	eng, err := Open(ctx, t.TempDir(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer eng.Close()
	if !mr.Exists("taskdesk:" + store.KeyUsers) {
		t.Fatalf("users not written to redis")
	}
}

func TestOpenBackendRejectsUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "etcd"
	if _, err := OpenBackend(context.Background(), t.TempDir(), cfg); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	cfg.Storage.Backend = config.BackendMemory
	b, err := OpenBackend(context.Background(), "", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*store.Memory); !ok {
		t.Fatalf("expected memory backend, got %T", b)
	}
}
