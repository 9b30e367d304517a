package repo

import (
	"time"

	"taskdesk/internal/clock"
	"taskdesk/internal/events"
	"taskdesk/internal/store"
)

// Repo bundles the entity repositories sharing one store. Each repository is the only
// writer of its own collection; Projects.Remove reaches into Tasks for the cascade.
type Repo struct {
	Users         *Users
	Projects      *Projects
	Tasks         *Tasks
	Notifications *Notifications
}

// Options configures New. Zero values fall back to no event log and time.Now.
type Options struct {
	Events *events.Writer
	Now    func() time.Time
	// DeadlineWindowDays overrides the sweep window (default 7).
	DeadlineWindowDays int
}

// New wires the repositories over s.
func New(s *store.Store, opts Options) Repo {
	b := base{store: s, events: opts.Events, now: opts.Now}
	users := &Users{base: b}
	projects := &Projects{base: b}
	notifications := &Notifications{base: b, users: users, projects: projects, WindowDays: opts.DeadlineWindowDays}
	tasks := &Tasks{base: b, projects: projects, notifications: notifications}
	projects.tasks = tasks
	return Repo{Users: users, Projects: projects, Tasks: tasks, Notifications: notifications}
}

type base struct {
	store  *store.Store
	events *events.Writer
	now    func() time.Time
}

func (b base) nowTime() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

func (b base) nowISO() string {
	return clock.ISO(b.nowTime())
}
