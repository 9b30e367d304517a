package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskdesk/internal/domain"
	"taskdesk/internal/events"
	"taskdesk/internal/repo"
	"taskdesk/internal/store"
)

var (
	admin    = domain.Session{UserID: "user-admin", Role: domain.RoleAdmin}
	employee = domain.Session{UserID: "user-emp", Role: domain.RoleEmployee}
	outsider = domain.Session{UserID: "user-emp2", Role: domain.RoleEmployee}
)

type testEnv struct {
	Ctx   context.Context
	Mem   *store.Memory
	Store *store.Store
	Repo  repo.Repo
	Clock *time.Time
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	s := store.New(mem, nil)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clockFn := func() time.Time { return now }
	s.Save(ctx, store.KeyUsers, []domain.User{
		{ID: "user-admin", Name: "Asha Admin", Role: domain.RoleAdmin, IsActive: true, EmployeeID: "CIPL1001"},
		{ID: "user-emp", Name: "Eli Dev", Role: domain.RoleEmployee, Department: "DEV", IsActive: true, EmployeeID: "T101"},
		{ID: "user-emp2", Name: "Noor Test", Role: domain.RoleEmployee, Department: "TESTER", IsActive: true, EmployeeID: "T102"},
	})
	s.Save(ctx, store.KeyProjects, []domain.Project{
		{ID: "proj-1", Name: "Portal", Status: domain.ProjectActive, EndDate: "2025-03-14T00:00:00.000Z", AssignedUserIDs: []string{"user-emp"}},
		{ID: "proj-hold", Name: "Paused", Status: domain.ProjectOnHold, AssignedUserIDs: []string{"user-emp"}},
		{ID: "proj-done", Name: "Shipped", Status: domain.ProjectCompleted, AssignedUserIDs: []string{"user-emp"}},
	})
	r := repo.New(s, repo.Options{
		Events: &events.Writer{Store: s, Now: clockFn},
		Now:    func() time.Time { return now },
	})
	return testEnv{Ctx: ctx, Mem: mem, Store: s, Repo: r, Clock: &now}
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
