package repo_test

import (
	"strings"
	"testing"

	"taskdesk/internal/domain"
	"taskdesk/internal/repo"
	"taskdesk/internal/store"
)

func TestEmployeeCodeIsSequential(t *testing.T) {
	env := newTestEnv(t)
	env.Store.Save(env.Ctx, store.KeyUsers, []domain.User{
		{ID: "a", Role: domain.RoleEmployee, EmployeeID: "T105"},
		{ID: "b", Role: domain.RoleEmployee, EmployeeID: "T117"},
		{ID: "c", Role: domain.RoleAdmin, EmployeeID: "CIPL1500"},
	})
	u, err := env.Repo.Users.Create(env.Ctx, repo.UserInput{Role: domain.RoleEmployee, Department: "DEV"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.EmployeeID != "T118" {
		t.Fatalf("expected T118, got %s", u.EmployeeID)
	}
	if !u.IsActive || u.Role != domain.RoleEmployee {
		t.Fatalf("unexpected defaults: %+v", u)
	}
}

func TestEmployeeCodeFloor(t *testing.T) {
	if got := repo.NextEmployeeCode(nil); got != "T101" {
		t.Fatalf("expected T101, got %s", got)
	}
	got := repo.NextEmployeeCode([]domain.User{{EmployeeID: "T042"}, {EmployeeID: "Txyz"}})
	if got != "T101" {
		t.Fatalf("expected floor to win, got %s", got)
	}
}

func TestAdminCodeSkipsTakenCodes(t *testing.T) {
	env := newTestEnv(t)
	env.Repo.Users.Rand = func(n int) int { return 1 }
	u, err := env.Repo.Users.Create(env.Ctx, repo.UserInput{Name: "Second", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	// CIPL1001 belongs to user-admin.
	if u.EmployeeID != "CIPL1002" {
		t.Fatalf("expected CIPL1002, got %s", u.EmployeeID)
	}
	env.Repo.Users.Rand = nil
	u, err = env.Repo.Users.Create(env.Ctx, repo.UserInput{Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if !strings.HasPrefix(u.EmployeeID, "CIPL1") || len(u.EmployeeID) != 8 {
		t.Fatalf("unexpected admin code %s", u.EmployeeID)
	}
}

func TestUserCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Repo.Users.Create(env.Ctx, repo.UserInput{Role: "OWNER"})
	requireKind(t, err, repo.ErrValidation)
	_, err = env.Repo.Users.Create(env.Ctx, repo.UserInput{EmployeeID: "T101"})
	requireKind(t, err, repo.ErrConflict)
}

func TestUserUpdateAndRemove(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.Repo.Users.SetActive(env.Ctx, "user-emp2", false)
	if err != nil || u.IsActive {
		t.Fatalf("deactivate: %+v %v", u, err)
	}
	name := "Noor T."
	u, err = env.Repo.Users.Update(env.Ctx, "user-emp2", repo.UserPatch{Name: &name})
	if err != nil || u.Name != name || u.IsActive {
		t.Fatalf("update: %+v %v", u, err)
	}
	taken := "T101"
	_, err = env.Repo.Users.Update(env.Ctx, "user-emp2", repo.UserPatch{EmployeeID: &taken})
	requireKind(t, err, repo.ErrConflict)

	if err := env.Repo.Users.Remove(env.Ctx, "user-emp2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err = env.Repo.Users.Get(env.Ctx, "user-emp2")
	requireKind(t, err, repo.ErrNotFound)
	requireKind(t, env.Repo.Users.Remove(env.Ctx, "user-emp2"), repo.ErrNotFound)
}

func TestRemoveUserLeavesReferences(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "keep", AssigneeID: "user-emp"}, admin)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := env.Repo.Users.Remove(env.Ctx, "user-emp"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err := env.Repo.Tasks.Get(env.Ctx, task.ID)
	if err != nil || got.AssigneeID != "user-emp" {
		t.Fatalf("task should keep dangling assignee: %+v %v", got, err)
	}
}
