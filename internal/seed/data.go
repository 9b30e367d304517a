package seed

import (
	"fmt"
	"time"

	"taskdesk/internal/clock"
	"taskdesk/internal/domain"
)

// Dataset is one complete demo population.
type Dataset struct {
	Users         []domain.User
	Projects      []domain.Project
	Tasks         []domain.Task
	Notifications []domain.Notification
}

type taskRow struct {
	project  string
	title    string
	assignee string
	creator  string
	priority domain.Priority
	status   domain.TaskStatus
	// day offsets relative to now; assignedDays 0 means today.
	assignedDays int
	deadlineDays *int
	tags         []string
}

func days(n int) *int { return &n }

// Build returns the demo dataset with every date anchored to now, so "today", "overdue"
// and "due soon" scenarios always exist. It has no side effects.
func Build(now time.Time) Dataset {
	at := func(offset int) string { return clock.ISO(clock.AddDays(now, offset)) }

	users := []domain.User{
		{ID: "user-admin", Name: "Priya Raman", Email: "priya.raman@example.com", Role: domain.RoleAdmin, Department: "DEV", IsActive: true, EmployeeID: "CIPL1001"},
		{ID: "user-admin2", Name: "Marcus Hale", Email: "marcus.hale@example.com", Role: domain.RoleAdmin, Department: "PRESALES", IsActive: true, EmployeeID: "CIPL1002"},
		{ID: "user-emp", Name: "Arjun Mehta", Email: "arjun.mehta@example.com", Role: domain.RoleEmployee, Department: "DEV", IsActive: true, EmployeeID: "T101"},
		{ID: "user-emp2", Name: "Sofia Lind", Email: "sofia.lind@example.com", Role: domain.RoleEmployee, Department: "DEV", IsActive: true, EmployeeID: "T102"},
		{ID: "user-emp3", Name: "Kenji Ito", Email: "kenji.ito@example.com", Role: domain.RoleEmployee, Department: "TESTER", IsActive: true, EmployeeID: "T103"},
		{ID: "user-emp4", Name: "Amara Okafor", Email: "amara.okafor@example.com", Role: domain.RoleEmployee, Department: "PRESALES", IsActive: true, EmployeeID: "T104"},
		{ID: "user-emp5", Name: "Lucas Moreau", Email: "lucas.moreau@example.com", Role: domain.RoleEmployee, Department: "TESTER", IsActive: true, EmployeeID: "T105"},
		{ID: "user-emp6", Name: "Hana Novak", Email: "hana.novak@example.com", Role: domain.RoleEmployee, Department: "DEV", IsActive: false, EmployeeID: "T106"},
	}

	projects := []domain.Project{
		{ID: "proj-1", Name: "Customer Portal", Description: "Self-service portal for account management", Status: domain.ProjectActive,
			StartDate: at(-20), EndDate: at(5), AssignedUserIDs: []string{"user-emp", "user-emp2", "user-emp3"}},
		{ID: "proj-2", Name: "Billing Migration", Description: "Move invoicing to the new ledger service", Status: domain.ProjectActive,
			StartDate: at(-45), EndDate: at(-2), AssignedUserIDs: []string{"user-emp", "user-emp5"}},
		{ID: "proj-3", Name: "Partner API", Description: "Public API for integration partners", Status: domain.ProjectOnHold,
			StartDate: at(-30), EndDate: at(40), AssignedUserIDs: []string{"user-emp2", "user-emp4"}},
		{ID: "proj-4", Name: "Sales Deck Refresh", Description: "Update presales material for the new quarter", Status: domain.ProjectCompleted,
			StartDate: at(-60), EndDate: at(-10), AssignedUserIDs: []string{"user-emp4"}},
		{ID: "proj-5", Name: "Mobile App", Description: "iOS and Android companion app", Status: domain.ProjectActive,
			StartDate: at(-5), EndDate: at(30), AssignedUserIDs: []string{"user-emp", "user-emp3", "user-emp5"}},
		{ID: "proj-6", Name: "Regression Suite", Description: "Automated end-to-end regression coverage", Status: domain.ProjectActive,
			StartDate: at(-14), EndDate: at(3), AssignedUserIDs: []string{"user-emp3", "user-emp5"}},
	}

	rows := []taskRow{
		{"proj-1", "Design login flow", "user-emp", "user-admin", domain.PriorityHigh, domain.TaskInProgress, 0, days(2), []string{"ux", "auth"}},
		{"proj-1", "Implement password reset", "user-emp", "user-admin", domain.PriorityHigh, domain.TaskTodo, 0, days(4), []string{"auth"}},
		{"proj-1", "Account settings page", "user-emp2", "user-admin", domain.PriorityMedium, domain.TaskTodo, -3, days(5), []string{"frontend"}},
		{"proj-1", "Session timeout handling", "user-emp2", "user-emp2", domain.PriorityLow, domain.TaskCompleted, -10, nil, []string{"auth"}},
		{"proj-1", "Portal smoke tests", "user-emp3", "user-admin", domain.PriorityMedium, domain.TaskTodo, 0, days(3), []string{"qa"}},
		{"proj-2", "Export legacy invoices", "user-emp", "user-admin", domain.PriorityHigh, domain.TaskInProgress, -8, days(-3), []string{"data"}},
		{"proj-2", "Reconcile balances", "user-emp5", "user-admin2", domain.PriorityHigh, domain.TaskTodo, -6, days(-1), []string{"data", "qa"}},
		{"proj-2", "Cutover runbook", "user-emp", "user-emp", domain.PriorityMedium, domain.TaskCompleted, -15, nil, []string{"ops"}},
		{"proj-2", "Notify finance team", "user-emp5", "user-admin", domain.PriorityLow, domain.TaskTodo, -1, days(1), nil},
		{"proj-3", "Draft OpenAPI contract", "user-emp2", "user-admin", domain.PriorityMedium, domain.TaskInProgress, -12, nil, []string{"api"}},
		{"proj-3", "Partner sandbox accounts", "user-emp4", "user-admin2", domain.PriorityLow, domain.TaskTodo, -12, nil, []string{"presales"}},
		{"proj-3", "Rate limit design", "user-emp2", "user-admin", domain.PriorityHigh, domain.TaskTodo, -9, nil, []string{"api"}},
		{"proj-4", "Collect case studies", "user-emp4", "user-admin2", domain.PriorityMedium, domain.TaskCompleted, -40, nil, []string{"presales"}},
		{"proj-4", "Pricing slides", "user-emp4", "user-admin2", domain.PriorityHigh, domain.TaskCompleted, -35, nil, []string{"presales"}},
		{"proj-4", "Demo video script", "user-emp4", "user-emp4", domain.PriorityLow, domain.TaskCompleted, -30, nil, nil},
		{"proj-5", "App navigation skeleton", "user-emp", "user-admin", domain.PriorityMedium, domain.TaskTodo, 0, days(10), []string{"mobile"}},
		{"proj-5", "Push notification service", "user-emp5", "user-admin", domain.PriorityHigh, domain.TaskTodo, -2, days(14), []string{"mobile", "backend"}},
		{"proj-5", "Offline cache", "user-emp", "user-admin", domain.PriorityLow, domain.TaskTodo, -2, days(20), []string{"mobile"}},
		{"proj-5", "Device test matrix", "user-emp3", "user-admin", domain.PriorityMedium, domain.TaskInProgress, -1, days(7), []string{"qa", "mobile"}},
		{"proj-5", "App store listing", "user-emp3", "user-admin2", domain.PriorityLow, domain.TaskTodo, 0, nil, nil},
		{"proj-6", "Checkout flow scenarios", "user-emp3", "user-admin", domain.PriorityHigh, domain.TaskInProgress, -4, days(1), []string{"qa"}},
		{"proj-6", "Flaky test triage", "user-emp5", "user-emp5", domain.PriorityMedium, domain.TaskTodo, 0, days(2), []string{"qa"}},
		{"proj-6", "CI pipeline parallelism", "user-emp3", "user-admin", domain.PriorityMedium, domain.TaskTodo, -3, days(-1), []string{"ci"}},
		{"proj-6", "Test data fixtures", "user-emp5", "user-admin", domain.PriorityLow, domain.TaskCompleted, -7, nil, []string{"qa"}},
		{"proj-6", "Coverage report", "user-emp3", "user-emp3", domain.PriorityLow, domain.TaskTodo, 0, days(3), nil},
	}

	tasks := make([]domain.Task, 0, len(rows))
	for i, r := range rows {
		tags := r.tags
		if tags == nil {
			tags = []string{}
		}
		var deadline *string
		if r.deadlineDays != nil {
			d := at(*r.deadlineDays)
			deadline = &d
		}
		created := at(r.assignedDays - 1)
		if r.assignedDays == 0 {
			created = clock.ISO(now)
		}
		tasks = append(tasks, domain.Task{
			ID:          fmt.Sprintf("task-%d", i+1),
			ProjectID:   r.project,
			Title:       r.title,
			AssigneeID:  r.assignee,
			Priority:    r.priority,
			Status:      r.status,
			CreatedByID: r.creator,
			CreatedAt:   created,
			AssignedAt:  at(r.assignedDays),
			Deadline:    deadline,
			Tags:        tags,
		})
	}

	return Dataset{
		Users:         users,
		Projects:      projects,
		Tasks:         tasks,
		Notifications: []domain.Notification{},
	}
}
