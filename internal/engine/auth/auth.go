// Package auth decides what a session may do to a task. Everything here is pure.
package auth

import "taskdesk/internal/domain"

// IsFrozen reports whether the project's lifecycle blocks task mutation.
func IsFrozen(p domain.Project) bool {
	return p.Frozen()
}

// CanEditTask: admins may edit any task, employees only tasks assigned to them,
// nobody while the project is frozen.
func CanEditTask(s domain.Session, t domain.Task, p domain.Project) bool {
	if IsFrozen(p) {
		return false
	}
	if s.IsAdmin() {
		return true
	}
	return t.AssigneeID != "" && t.AssigneeID == s.UserID
}

// CanDeleteTask: admins may delete any task, employees only tasks they created,
// nobody while the project is frozen.
func CanDeleteTask(s domain.Session, t domain.Task, p domain.Project) bool {
	if IsFrozen(p) {
		return false
	}
	if s.IsAdmin() {
		return true
	}
	return t.CreatedByID != "" && t.CreatedByID == s.UserID
}

// CanCreateTask: admins anywhere, employees only in projects they are members of.
// Lifecycle checks are reported separately by the task repository.
func CanCreateTask(s domain.Session, p domain.Project) bool {
	if s.IsAdmin() {
		return true
	}
	return p.HasMember(s.UserID)
}
