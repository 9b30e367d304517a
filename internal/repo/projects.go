package repo

import (
	"context"
	"strings"

	"taskdesk/internal/domain"
	"taskdesk/internal/events"
	"taskdesk/internal/ids"
	"taskdesk/internal/store"
)

// Projects owns the projects collection.
type Projects struct {
	base
	tasks *Tasks
}

type ProjectFilters struct {
	// Status restricts to one status; empty matches all.
	Status domain.ProjectStatus
}

// ProjectInput is a new project; only Name is required.
type ProjectInput struct {
	Name            string
	Description     string
	StartDate       string
	EndDate         string
	AssignedUserIDs []string
}

// ProjectPatch holds the fields to change; nil means untouched.
type ProjectPatch struct {
	Name            *string
	Description     *string
	Status          *domain.ProjectStatus
	StartDate       *string
	EndDate         *string
	AssignedUserIDs *[]string
}

func (r *Projects) load(ctx context.Context) []domain.Project {
	return store.LoadArray(ctx, r.store, store.KeyProjects, []domain.Project{})
}

func (r *Projects) save(ctx context.Context, projects []domain.Project) {
	r.store.Save(ctx, store.KeyProjects, projects)
}

// List returns projects in stored order, filtered by f.
func (r *Projects) List(ctx context.Context, f ProjectFilters) []domain.Project {
	all := r.load(ctx)
	if f.Status == "" {
		return all
	}
	out := []domain.Project{}
	for _, p := range all {
		if p.Status == f.Status {
			out = append(out, p)
		}
	}
	return out
}

func (r *Projects) Get(ctx context.Context, id string) (domain.Project, error) {
	for _, p := range r.load(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, notFound("project", id)
}

// Create stores a new ACTIVE project.
func (r *Projects) Create(ctx context.Context, in ProjectInput) (domain.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Project{}, missingField("name")
	}
	p := domain.Project{
		ID:              ids.New(ids.PrefixProject),
		Name:            in.Name,
		Description:     in.Description,
		Status:          domain.ProjectActive,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		AssignedUserIDs: uniqueIDs(in.AssignedUserIDs),
	}
	r.save(ctx, append(r.load(ctx), p))
	r.events.Append(ctx, "project.created", "project", p.ID, events.ActorFrom(ctx), events.EventPayload{"name": p.Name})
	return p, nil
}

// Update merges the patch. On an ON_HOLD or COMPLETED project only Status is applied and
// every other field is silently ignored.
func (r *Projects) Update(ctx context.Context, id string, patch ProjectPatch) (domain.Project, error) {
	projects := r.load(ctx)
	idx := -1
	for i, p := range projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Project{}, notFound("project", id)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Project{}, invalidField("status", *patch.Status)
	}
	p := projects[idx]
	from := p.Status
	if !p.Frozen() {
		if patch.Name != nil {
			if strings.TrimSpace(*patch.Name) == "" {
				return domain.Project{}, missingField("name")
			}
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.StartDate != nil {
			p.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			p.EndDate = *patch.EndDate
		}
		if patch.AssignedUserIDs != nil {
			p.AssignedUserIDs = uniqueIDs(*patch.AssignedUserIDs)
		}
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	projects[idx] = p
	r.save(ctx, projects)
	r.events.Append(ctx, "project.updated", "project", p.ID, events.ActorFrom(ctx), events.EventPayload{
		"from_status": from,
		"to_status":   p.Status,
	})
	return p, nil
}

// SetStatus is Update with only Status set, so it also thaws a frozen project.
func (r *Projects) SetStatus(ctx context.Context, id string, status domain.ProjectStatus) (domain.Project, error) {
	return r.Update(ctx, id, ProjectPatch{Status: &status})
}

// AssignMembers replaces the member list wholesale; nil clears it.
func (r *Projects) AssignMembers(ctx context.Context, id string, userIDs []string) (domain.Project, error) {
	members := uniqueIDs(userIDs)
	return r.Update(ctx, id, ProjectPatch{AssignedUserIDs: &members})
}

// Remove deletes the project's tasks first, then the project.
func (r *Projects) Remove(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	removed := r.tasks.RemoveByProject(ctx, id)
	projects := r.load(ctx)
	kept := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.save(ctx, kept)
	r.events.Append(ctx, "project.deleted", "project", id, events.ActorFrom(ctx), events.EventPayload{"tasks_removed": removed})
	return nil
}

func uniqueIDs(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
