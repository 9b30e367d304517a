package repo_test

import (
	"strings"
	"testing"
	"time"

	"taskdesk/internal/domain"
	"taskdesk/internal/repo"
	"taskdesk/internal/store"
)

func TestDeadlineCheckIsIdempotentPerDay(t *testing.T) {
	env := newTestEnv(t)
	now := "2025-03-10T09:00:00.000Z"
	sent, err := env.Repo.Notifications.RunDeadlineCheck(env.Ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	// Only proj-1 has an end date, and user-admin is the only admin.
	if sent != 1 {
		t.Fatalf("expected 1 notification, got %d", sent)
	}
	writes := env.Mem.Writes()
	sent, err = env.Repo.Notifications.RunDeadlineCheck(env.Ctx, "2025-03-10T18:00:00.000Z")
	if err != nil || sent != 0 {
		t.Fatalf("second sweep same day: %d %v", sent, err)
	}
	if env.Mem.Writes() != writes {
		t.Fatalf("second sweep should not write")
	}
	notes := env.Repo.Notifications.ListByUser(env.Ctx, "user-admin")
	if len(notes) != 1 || notes[0].Type != domain.NotificationDeadline {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
	if notes[0].Message != `Project "Portal" is due in 4 day(s)` {
		t.Fatalf("unexpected message %q", notes[0].Message)
	}
	ledger := store.Load(env.Ctx, env.Store, store.KeyDeadlineSent, map[string]bool{})
	if !ledger["proj-1:user-admin:2025-03-10"] {
		t.Fatalf("ledger missing key: %+v", ledger)
	}

	sent, _ = env.Repo.Notifications.RunDeadlineCheck(env.Ctx, "2025-03-11T09:00:00.000Z")
	if sent != 1 {
		t.Fatalf("next day should notify again, got %d", sent)
	}
}

func TestDeadlineCheckWindow(t *testing.T) {
	env := newTestEnv(t)
	env.Store.Save(env.Ctx, store.KeyProjects, []domain.Project{
		{ID: "late", Name: "Late", Status: domain.ProjectActive, EndDate: "2025-03-08T00:00:00.000Z"},
		{ID: "today", Name: "Today", Status: domain.ProjectActive, EndDate: "2025-03-10T23:00:00.000Z"},
		{ID: "edge", Name: "Edge", Status: domain.ProjectActive, EndDate: "2025-03-17T00:00:00.000Z"},
		{ID: "far", Name: "Far", Status: domain.ProjectActive, EndDate: "2025-03-18T00:00:00.000Z"},
		{ID: "open", Name: "Open", Status: domain.ProjectActive},
	})
	if _, err := env.Repo.Users.Create(env.Ctx, repo.UserInput{Name: "Second", Role: domain.RoleAdmin}); err != nil {
		t.Fatal(err)
	}
	sent, err := env.Repo.Notifications.RunDeadlineCheck(env.Ctx, "2025-03-10T09:00:00.000Z")
	if err != nil {
		t.Fatal(err)
	}
	if sent != 6 {
		t.Fatalf("expected 3 projects x 2 admins, got %d", sent)
	}
	var msgs []string
	for _, n := range env.Repo.Notifications.ListByUser(env.Ctx, "user-admin") {
		msgs = append(msgs, n.Message)
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{
		`Project "Late" is overdue by 2 day(s)`,
		`Project "Today" is due today`,
		`Project "Edge" is due in 7 day(s)`,
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %q", want, joined)
		}
	}
	if n := len(env.Repo.Notifications.ListByUser(env.Ctx, "user-emp")); n != 0 {
		t.Fatalf("employees must not get deadline notifications, got %d", n)
	}
}

func TestDeadlineCheckRejectsBadTimestamp(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Repo.Notifications.RunDeadlineCheck(env.Ctx, "yesterday")
	requireKind(t, err, repo.ErrValidation)
}

func TestMarkReadOwnership(t *testing.T) {
	env := newTestEnv(t)
	n, err := env.Repo.Notifications.CreateForUser(env.Ctx, "user-emp", domain.NotificationAssigned, "hello")
	if err != nil {
		t.Fatal(err)
	}
	_, err = env.Repo.Notifications.MarkRead(env.Ctx, n.ID, "user-emp2")
	requireKind(t, err, repo.ErrNotFound)
	got, err := env.Repo.Notifications.MarkRead(env.Ctx, n.ID, "user-emp")
	if err != nil || !got.Read {
		t.Fatalf("mark read: %+v %v", got, err)
	}
	if c := env.Repo.Notifications.UnreadCount(env.Ctx, "user-emp"); c != 0 {
		t.Fatalf("expected 0 unread, got %d", c)
	}
}

func TestMarkAllReadPersistsOnlyOnChange(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.Repo.Notifications.CreateForUser(env.Ctx, "user-emp", domain.NotificationAssigned, "n")
	}
	env.Repo.Notifications.CreateForUser(env.Ctx, "user-emp2", domain.NotificationAssigned, "other")
	if changed := env.Repo.Notifications.MarkAllRead(env.Ctx, "user-emp"); changed != 3 {
		t.Fatalf("expected 3 changed, got %d", changed)
	}
	writes := env.Mem.Writes()
	if changed := env.Repo.Notifications.MarkAllRead(env.Ctx, "user-emp"); changed != 0 {
		t.Fatalf("expected 0 changed, got %d", changed)
	}
	if env.Mem.Writes() != writes {
		t.Fatalf("no-op mark-all should not write")
	}
	if c := env.Repo.Notifications.UnreadCount(env.Ctx, "user-emp2"); c != 1 {
		t.Fatalf("other user's notifications touched")
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.Repo.Notifications.CreateForUser(env.Ctx, "user-emp", domain.NotificationAssigned, "first")
	*env.Clock = env.Clock.Add(time.Minute)
	env.Repo.Notifications.CreateForUser(env.Ctx, "user-emp", domain.NotificationDeadline, "second")
	got := env.Repo.Notifications.ListByUser(env.Ctx, "user-emp")
	if len(got) != 2 || got[0].Message != "second" {
		t.Fatalf("unexpected order: %+v", got)
	}
	_, err := env.Repo.Notifications.CreateForUser(env.Ctx, "", domain.NotificationAssigned, "x")
	requireKind(t, err, repo.ErrValidation)
}
