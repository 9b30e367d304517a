package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"taskdesk/internal/clock"
	"taskdesk/internal/domain"
	"taskdesk/internal/ids"
	"taskdesk/internal/metrics"
	"taskdesk/internal/store"
)

// DefaultDeadlineWindowDays is how far ahead of a project's end date admins are warned.
const DefaultDeadlineWindowDays = 7

// Notifications owns the notifications collection and the deadline sweep.
type Notifications struct {
	base
	users    *Users
	projects *Projects
	// WindowDays overrides DefaultDeadlineWindowDays when positive.
	WindowDays int
}

func (r *Notifications) load(ctx context.Context) []domain.Notification {
	return store.LoadArray(ctx, r.store, store.KeyNotifications, []domain.Notification{})
}

func (r *Notifications) save(ctx context.Context, ns []domain.Notification) {
	r.store.Save(ctx, store.KeyNotifications, ns)
}

// ListByUser returns the user's notifications, newest first.
func (r *Notifications) ListByUser(ctx context.Context, userID string) []domain.Notification {
	out := []domain.Notification{}
	for _, n := range r.load(ctx) {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// UnreadCount counts the user's unread notifications.
func (r *Notifications) UnreadCount(ctx context.Context, userID string) int {
	count := 0
	for _, n := range r.load(ctx) {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count
}

// MarkRead flags one notification as read. Another user's notification reports NotFound.
func (r *Notifications) MarkRead(ctx context.Context, id, userID string) (domain.Notification, error) {
	ns := r.load(ctx)
	for i, n := range ns {
		if n.ID != id || n.UserID != userID {
			continue
		}
		if !n.Read {
			n.Read = true
			ns[i] = n
			r.save(ctx, ns)
		}
		return n, nil
	}
	return domain.Notification{}, notFound("notification", id)
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (r *Notifications) MarkAllRead(ctx context.Context, userID string) int {
	ns := r.load(ctx)
	changed := 0
	for i := range ns {
		if ns[i].UserID == userID && !ns[i].Read {
			ns[i].Read = true
			changed++
		}
	}
	if changed > 0 {
		r.save(ctx, ns)
	}
	return changed
}

// CreateForUser appends an unread notification for userID, which must be non-blank.
func (r *Notifications) CreateForUser(ctx context.Context, userID string, typ domain.NotificationType, message string) (domain.Notification, error) {
	switch {
	case strings.TrimSpace(userID) == "":
		return domain.Notification{}, missingField("userId")
	case typ == "":
		return domain.Notification{}, missingField("type")
	}
	n := domain.Notification{
		ID:        ids.New(ids.PrefixNotification),
		UserID:    userID,
		Type:      typ,
		Message:   message,
		CreatedAt: r.nowISO(),
	}
	r.save(ctx, append(r.load(ctx), n))
	return n, nil
}

// RunDeadlineCheck notifies every admin about each project that is overdue or ends within
// the window. A project/admin pair is notified at most once per calendar day of nowISO.
func (r *Notifications) RunDeadlineCheck(ctx context.Context, nowISO string) (int, error) {
	now, err := clock.Parse(nowISO)
	if err != nil {
		return 0, invalidField("now", nowISO)
	}
	window := r.WindowDays
	if window <= 0 {
		window = DefaultDeadlineWindowDays
	}
	day := clock.DayKey(nowISO)
	admins := r.users.ListByRole(ctx, domain.RoleAdmin)
	ledger := store.Load(ctx, r.store, store.KeyDeadlineSent, map[string]bool{})
	if ledger == nil {
		ledger = map[string]bool{}
	}

	var pending []domain.Notification
	for _, p := range r.projects.List(ctx, ProjectFilters{}) {
		if p.EndDate == "" {
			continue
		}
		days, err := clock.DaysUntil(p.EndDate, nowISO)
		if err != nil || days > window {
			continue
		}
		msg := deadlineMessage(p.Name, days)
		for _, a := range admins {
			key := p.ID + ":" + a.ID + ":" + day
			if ledger[key] {
				continue
			}
			ledger[key] = true
			pending = append(pending, domain.Notification{
				ID:        ids.New(ids.PrefixNotification),
				UserID:    a.ID,
				Type:      domain.NotificationDeadline,
				Message:   msg,
				CreatedAt: r.nowISO(),
			})
		}
	}
	if len(pending) > 0 {
		r.save(ctx, append(r.load(ctx), pending...))
		r.store.Save(ctx, store.KeyDeadlineSent, ledger)
	}
	metrics.ObserveSweep(len(pending), float64(now.Unix()))
	return len(pending), nil
}

func deadlineMessage(name string, days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("Project %q is overdue by %d day(s)", name, -days)
	case days == 0:
		return fmt.Sprintf("Project %q is due today", name)
	default:
		return fmt.Sprintf("Project %q is due in %d day(s)", name, days)
	}
}
