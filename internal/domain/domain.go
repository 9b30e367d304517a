package domain

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NotificationType is open-ended; ASSIGNED and DEADLINE are produced by the repositories.
type NotificationType string

const (
	NotificationAssigned NotificationType = "ASSIGNED"
	NotificationDeadline NotificationType = "DEADLINE"
)

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
	IsActive   bool   `json:"isActive"`
	EmployeeID string `json:"employeeId"`
}

type Project struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Status          ProjectStatus `json:"status"`
	StartDate       string        `json:"startDate,omitempty"`
	EndDate         string        `json:"endDate,omitempty"`
	AssignedUserIDs []string      `json:"assignedUserIds"`
}

// Frozen reports whether the project blocks ordinary field and task mutation.
func (p Project) Frozen() bool {
	return p.Status == ProjectOnHold || p.Status == ProjectCompleted
}

// HasMember reports whether userID is among the assigned users.
func (p Project) HasMember(userID string) bool {
	for _, id := range p.AssignedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assigneeId"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	CreatedByID string     `json:"createdById"`
	CreatedAt   string     `json:"createdAt"`
	AssignedAt  string     `json:"assignedAt"`
	Deadline    *string    `json:"deadline,omitempty"`
	Tags        []string   `json:"tags"`
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	CreatedAt string           `json:"createdAt"`
	Read      bool             `json:"read"`
}

// Session is the caller identity passed into authorization-sensitive operations.
type Session struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

type Event struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts"`
	Type       string         `json:"type"`
	EntityKind string         `json:"entityKind"`
	EntityID   string         `json:"entityId,omitempty"`
	ActorID    string         `json:"actorId,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}
