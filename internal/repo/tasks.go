package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskdesk/internal/clock"
	"taskdesk/internal/domain"
	"taskdesk/internal/engine/auth"
	"taskdesk/internal/events"
	"taskdesk/internal/ids"
	"taskdesk/internal/store"
)

// Tasks owns the tasks collection. Writes check the owning project's freeze state and the
// session's permissions.
type Tasks struct {
	base
	projects      *Projects
	notifications *Notifications
}

// TaskFilters are conjunctive equality filters; empty fields match everything.
type TaskFilters struct {
	ProjectID  string
	AssigneeID string
	Status     domain.TaskStatus
	Priority   domain.Priority
}

// TaskInput is a new task. ProjectID, Title and AssigneeID are required; Priority and
// Status default to MEDIUM and TODO.
type TaskInput struct {
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string
	Priority    domain.Priority
	Status      domain.TaskStatus
	// AssignedAt defaults to the creation time.
	AssignedAt string
	Deadline   *string
	Tags       []string
}

// TaskPatch holds the fields to change; nil means untouched. An empty Deadline clears it.
type TaskPatch struct {
	Title       *string
	Description *string
	AssigneeID  *string
	Priority    *domain.Priority
	Status      *domain.TaskStatus
	Deadline    *string
	Tags        *[]string
}

func (r *Tasks) load(ctx context.Context) []domain.Task {
	return store.LoadArray(ctx, r.store, store.KeyTasks, []domain.Task{})
}

func (r *Tasks) save(ctx context.Context, tasks []domain.Task) {
	r.store.Save(ctx, store.KeyTasks, tasks)
}

// List returns the tasks matching f in stored order.
func (r *Tasks) List(ctx context.Context, f TaskFilters) []domain.Task {
	out := []domain.Task{}
	for _, t := range r.load(ctx) {
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (r *Tasks) Get(ctx context.Context, id string) (domain.Task, error) {
	for _, t := range r.load(ctx) {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, notFound("task", id)
}

// ListAssignedToday returns the user's tasks whose assignedAt falls on nowISO's calendar day.
func (r *Tasks) ListAssignedToday(ctx context.Context, userID, nowISO string) []domain.Task {
	out := []domain.Task{}
	for _, t := range r.load(ctx) {
		if t.AssigneeID == userID && clock.SameDay(t.AssignedAt, nowISO) {
			out = append(out, t)
		}
	}
	return out
}

// Create validates, stores the task and notifies the assignee.
func (r *Tasks) Create(ctx context.Context, in TaskInput, s domain.Session) (domain.Task, error) {
	switch {
	case strings.TrimSpace(in.ProjectID) == "":
		return domain.Task{}, missingField("projectId")
	case strings.TrimSpace(in.Title) == "":
		return domain.Task{}, missingField("title")
	case strings.TrimSpace(in.AssigneeID) == "":
		return domain.Task{}, missingField("assigneeId")
	}
	p, err := r.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return domain.Task{}, err
	}
	switch p.Status {
	case domain.ProjectCompleted:
		return domain.Task{}, conflict("project is completed; tasks can no longer be added")
	case domain.ProjectOnHold:
		return domain.Task{}, conflict("project is on hold; tasks cannot be added until it is resumed")
	}
	if !auth.CanCreateTask(s, p) {
		return domain.Task{}, forbidden("only project members can add tasks to this project")
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, invalidField("priority", priority)
	}
	status := in.Status
	if status == "" {
		status = domain.TaskTodo
	}
	if !status.Valid() {
		return domain.Task{}, invalidField("status", status)
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	now := r.nowISO()
	assignedAt := in.AssignedAt
	if assignedAt == "" {
		assignedAt = now
	}
	t := domain.Task{
		ID:          ids.New(ids.PrefixTask),
		ProjectID:   p.ID,
		Title:       in.Title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		Priority:    priority,
		Status:      status,
		CreatedByID: s.UserID,
		CreatedAt:   now,
		AssignedAt:  assignedAt,
		Deadline:    normalizeDeadline(in.Deadline),
		Tags:        tags,
	}
	r.save(ctx, append(r.load(ctx), t))
	r.notifyAssigned(ctx, t, p)
	r.events.Append(ctx, "task.created", "task", t.ID, s.UserID, events.EventPayload{
		"project_id": t.ProjectID,
		"title":      t.Title,
		"assignee":   t.AssigneeID,
	})
	return t, nil
}

// Update applies patch after the lifecycle, reassignment and edit-permission checks.
func (r *Tasks) Update(ctx context.Context, id string, patch TaskPatch, s domain.Session) (domain.Task, error) {
	tasks := r.load(ctx)
	idx := indexOfTask(tasks, id)
	if idx < 0 {
		return domain.Task{}, notFound("task", id)
	}
	t := tasks[idx]
	p, err := r.owningProject(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}
	if err := frozenConflict(p, "edited"); err != nil {
		return domain.Task{}, err
	}
	reassigned := patch.AssigneeID != nil && *patch.AssigneeID != t.AssigneeID
	if reassigned && !s.IsAdmin() {
		return domain.Task{}, forbidden("only admins can reassign tasks")
	}
	if !auth.CanEditTask(s, t, p) {
		return domain.Task{}, forbidden("you can only edit tasks assigned to you")
	}

	from := t.Status
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return domain.Task{}, missingField("title")
		}
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return domain.Task{}, invalidField("priority", *patch.Priority)
		}
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return domain.Task{}, invalidField("status", *patch.Status)
		}
		t.Status = *patch.Status
	}
	if patch.Deadline != nil {
		t.Deadline = normalizeDeadline(patch.Deadline)
	}
	if patch.Tags != nil {
		t.Tags = append([]string{}, (*patch.Tags)...)
	}
	if reassigned {
		if strings.TrimSpace(*patch.AssigneeID) == "" {
			return domain.Task{}, missingField("assigneeId")
		}
		t.AssigneeID = *patch.AssigneeID
		t.AssignedAt = r.nowISO()
	}
	tasks[idx] = t
	r.save(ctx, tasks)
	if reassigned {
		r.notifyAssigned(ctx, t, p)
	}
	r.events.Append(ctx, "task.updated", "task", t.ID, s.UserID, events.EventPayload{
		"from_status": from,
		"to_status":   t.Status,
		"reassigned":  reassigned,
	})
	return t, nil
}

// Remove deletes the task if the project is not frozen and the session may delete it.
func (r *Tasks) Remove(ctx context.Context, id string, s domain.Session) error {
	tasks := r.load(ctx)
	idx := indexOfTask(tasks, id)
	if idx < 0 {
		return notFound("task", id)
	}
	t := tasks[idx]
	p, err := r.owningProject(ctx, t)
	if err != nil {
		return err
	}
	if err := frozenConflict(p, "deleted"); err != nil {
		return err
	}
	if !auth.CanDeleteTask(s, t, p) {
		return forbidden("you can only delete tasks you created")
	}
	r.save(ctx, append(tasks[:idx], tasks[idx+1:]...))
	r.events.Append(ctx, "task.deleted", "task", id, s.UserID, events.EventPayload{"project_id": t.ProjectID})
	return nil
}

// MoveStatus sets the status; any status may follow any other.
func (r *Tasks) MoveStatus(ctx context.Context, id string, status domain.TaskStatus, s domain.Session) (domain.Task, error) {
	return r.Update(ctx, id, TaskPatch{Status: &status}, s)
}

// RemoveByProject drops every task of the project and reports how many went.
func (r *Tasks) RemoveByProject(ctx context.Context, projectID string) int {
	tasks := r.load(ctx)
	kept := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID != projectID {
			kept = append(kept, t)
		}
	}
	removed := len(tasks) - len(kept)
	if removed > 0 {
		r.save(ctx, kept)
	}
	return removed
}

// owningProject returns the task's project. A dangling projectId yields an unfrozen zero
// project so admins can still clean the task up.
func (r *Tasks) owningProject(ctx context.Context, t domain.Task) (domain.Project, error) {
	p, err := r.projects.Get(ctx, t.ProjectID)
	if errors.Is(err, ErrNotFound) {
		return domain.Project{ID: t.ProjectID}, nil
	}
	return p, err
}

func (r *Tasks) notifyAssigned(ctx context.Context, t domain.Task, p domain.Project) {
	msg := fmt.Sprintf("You have been assigned %q in %s", t.Title, p.Name)
	if p.Name == "" {
		msg = fmt.Sprintf("You have been assigned %q", t.Title)
	}
	r.notifications.CreateForUser(ctx, t.AssigneeID, domain.NotificationAssigned, msg)
}

func frozenConflict(p domain.Project, verb string) error {
	switch p.Status {
	case domain.ProjectCompleted:
		return conflict(fmt.Sprintf("project is completed; tasks cannot be %s", verb))
	case domain.ProjectOnHold:
		return conflict(fmt.Sprintf("project is on hold; tasks cannot be %s", verb))
	}
	return nil
}

func normalizeDeadline(d *string) *string {
	if d == nil || strings.TrimSpace(*d) == "" {
		return nil
	}
	v := *d
	return &v
}

func indexOfTask(tasks []domain.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
