package repo_test

import (
	"strings"
	"testing"
	"time"

	"taskdesk/internal/domain"
	"taskdesk/internal/repo"
)

func TestTaskCreateAssignsAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "T", AssigneeID: "user-emp"}, admin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "T" || task.Status != domain.TaskTodo || task.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Tags == nil || len(task.Tags) != 0 {
		t.Fatalf("tags should be empty, got %#v", task.Tags)
	}
	if task.CreatedByID != "user-admin" || task.CreatedAt != task.AssignedAt {
		t.Fatalf("unexpected provenance: %+v", task)
	}
	notes := env.Repo.Notifications.ListByUser(env.Ctx, "user-emp")
	if len(notes) != 1 || notes[0].Type != domain.NotificationAssigned || notes[0].Read {
		t.Fatalf("expected one unread ASSIGNED notification, got %+v", notes)
	}
	if !strings.Contains(notes[0].Message, `"T"`) {
		t.Fatalf("message should name the task: %q", notes[0].Message)
	}
}

func TestTaskCreateKeepsSuppliedAssignedAt(t *testing.T) {
	env := newTestEnv(t)
	deadline := "2025-03-20"
	task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{
		ProjectID:  "proj-1",
		Title:      "backfill",
		AssigneeID: "user-emp",
		AssignedAt: "2025-03-01T08:00:00.000Z",
		Priority:   domain.PriorityHigh,
		Deadline:   &deadline,
		Tags:       []string{"ops"},
	}, admin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.AssignedAt != "2025-03-01T08:00:00.000Z" || task.CreatedAt == task.AssignedAt {
		t.Fatalf("assignedAt not honored: %+v", task)
	}
	if task.Deadline == nil || *task.Deadline != deadline || task.Priority != domain.PriorityHigh {
		t.Fatalf("fields not kept: %+v", task)
	}
}

func TestTaskCreateValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		in    repo.TaskInput
		field string
	}{
		{repo.TaskInput{}, "projectId"},
		{repo.TaskInput{ProjectID: "proj-1"}, "title"},
		{repo.TaskInput{ProjectID: "proj-1", Title: "  "}, "title"},
		{repo.TaskInput{ProjectID: "proj-1", Title: "x"}, "assigneeId"},
	}
	for _, tc := range cases {
		_, err := env.Repo.Tasks.Create(env.Ctx, tc.in, admin)
		requireKind(t, err, repo.ErrValidation)
		if e, ok := err.(*repo.Error); !ok || e.Field != tc.field {
			t.Fatalf("expected field %s, got %v", tc.field, err)
		}
	}
	_, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "missing", Title: "x", AssigneeID: "user-emp"}, admin)
	requireKind(t, err, repo.ErrNotFound)
}

func TestTaskCreateLifecycleAndMembership(t *testing.T) {
	env := newTestEnv(t)
	_, errDone := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-done", Title: "x", AssigneeID: "user-emp"}, admin)
	requireKind(t, errDone, repo.ErrConflict)
	_, errHold := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-hold", Title: "x", AssigneeID: "user-emp"}, admin)
	requireKind(t, errHold, repo.ErrConflict)
	if errDone.Error() == errHold.Error() {
		t.Fatalf("completed and on-hold should report distinct messages")
	}

	_, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "x", AssigneeID: "user-emp2"}, outsider)
	requireKind(t, err, repo.ErrForbidden)
	if _, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "x", AssigneeID: "user-emp"}, employee); err != nil {
		t.Fatalf("member should create: %v", err)
	}
	if n := len(env.Repo.Notifications.ListByUser(env.Ctx, "user-emp2")); n != 0 {
		t.Fatalf("rejected create should not notify, got %d", n)
	}
}

func TestTaskIDsAreUnique(t *testing.T) {
	env := newTestEnv(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "bulk", AssigneeID: "user-emp"}, admin)
		if err != nil {
			t.Fatal(err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestTaskUpdatePermissions(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "mine", AssigneeID: "user-emp"}, admin)
	if err != nil {
		t.Fatal(err)
	}
	title := "renamed"
	got, err := env.Repo.Tasks.Update(env.Ctx, task.ID, repo.TaskPatch{Title: &title}, employee)
	if err != nil || got.Title != title {
		t.Fatalf("assignee edit: %+v %v", got, err)
	}
	_, err = env.Repo.Tasks.Update(env.Ctx, task.ID, repo.TaskPatch{Title: &title}, outsider)
	requireKind(t, err, repo.ErrForbidden)

	other := "user-emp2"
	_, err = env.Repo.Tasks.Update(env.Ctx, task.ID, repo.TaskPatch{AssigneeID: &other}, employee)
	requireKind(t, err, repo.ErrForbidden)
	same := "user-emp"
	if _, err := env.Repo.Tasks.Update(env.Ctx, task.ID, repo.TaskPatch{AssigneeID: &same}, employee); err != nil {
		t.Fatalf("unchanged assignee is not a reassignment: %v", err)
	}

	_, err = env.Repo.Tasks.Update(env.Ctx, "missing", repo.TaskPatch{Title: &title}, admin)
	requireKind(t, err, repo.ErrNotFound)
	bad := domain.Priority("URGENT")
	_, err = env.Repo.Tasks.Update(env.Ctx, task.ID, repo.TaskPatch{Priority: &bad}, admin)
	requireKind(t, err, repo.ErrValidation)
}

func TestAdminReassignmentNotifies(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "hand off", AssigneeID: "user-emp"}, admin)
	if err != nil {
		t.Fatal(err)
	}
	*env.Clock = env.Clock.Add(2 * time.Hour)
	other := "user-emp2"
	got, err := env.Repo.Tasks.Update(env.Ctx, task.ID, repo.TaskPatch{AssigneeID: &other}, admin)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if got.AssigneeID != other || got.AssignedAt == task.AssignedAt {
		t.Fatalf("reassignment not applied: %+v", got)
	}
	if n := len(env.Repo.Notifications.ListByUser(env.Ctx, other)); n != 1 {
		t.Fatalf("expected one notification for new assignee, got %d", n)
	}
}

func TestFrozenProjectBlocksTaskChanges(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "x", AssigneeID: "user-emp"}, admin)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Repo.Projects.SetStatus(env.Ctx, "proj-1", domain.ProjectOnHold); err != nil {
		t.Fatal(err)
	}
	_, err = env.Repo.Tasks.MoveStatus(env.Ctx, task.ID, domain.TaskCompleted, admin)
	requireKind(t, err, repo.ErrConflict)
	requireKind(t, env.Repo.Tasks.Remove(env.Ctx, task.ID, admin), repo.ErrConflict)
}

func TestMoveStatusAllowsAnyTransition(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "x", AssigneeID: "user-emp"}, admin)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []domain.TaskStatus{domain.TaskCompleted, domain.TaskTodo, domain.TaskInProgress} {
		got, err := env.Repo.Tasks.MoveStatus(env.Ctx, task.ID, s, employee)
		if err != nil || got.Status != s {
			t.Fatalf("move to %s: %+v %v", s, got, err)
		}
	}
	_, err = env.Repo.Tasks.MoveStatus(env.Ctx, task.ID, "DONE", employee)
	requireKind(t, err, repo.ErrValidation)
}

func TestTaskRemovePermissions(t *testing.T) {
	env := newTestEnv(t)
	byAdmin, _ := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "a", AssigneeID: "user-emp"}, admin)
	byEmp, _ := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "b", AssigneeID: "user-emp"}, employee)

	requireKind(t, env.Repo.Tasks.Remove(env.Ctx, byAdmin.ID, employee), repo.ErrForbidden)
	if err := env.Repo.Tasks.Remove(env.Ctx, byEmp.ID, employee); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if err := env.Repo.Tasks.Remove(env.Ctx, byAdmin.ID, admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	requireKind(t, env.Repo.Tasks.Remove(env.Ctx, byAdmin.ID, admin), repo.ErrNotFound)
}

func TestListAssignedToday(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "today", AssigneeID: "user-emp"}, admin); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "old", AssigneeID: "user-emp", AssignedAt: "2025-03-09T23:59:00.000Z"}, admin); err != nil {
		t.Fatal(err)
	}
	got := env.Repo.Tasks.ListAssignedToday(env.Ctx, "user-emp", "2025-03-10T23:00:00.000Z")
	if len(got) != 1 || got[0].Title != "today" {
		t.Fatalf("unexpected today list: %+v", got)
	}
}

func TestTaskListFilters(t *testing.T) {
	env := newTestEnv(t)
	env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "a", AssigneeID: "user-emp", Priority: domain.PriorityHigh}, admin)
	env.Repo.Tasks.Create(env.Ctx, repo.TaskInput{ProjectID: "proj-1", Title: "b", AssigneeID: "user-emp2"}, admin)
	got := env.Repo.Tasks.List(env.Ctx, repo.TaskFilters{AssigneeID: "user-emp", Priority: domain.PriorityHigh})
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if got := env.Repo.Tasks.List(env.Ctx, repo.TaskFilters{Status: domain.TaskCompleted}); len(got) != 0 {
		t.Fatalf("expected no completed tasks, got %d", len(got))
	}
}
