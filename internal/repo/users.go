package repo

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"taskdesk/internal/domain"
	"taskdesk/internal/ids"
	"taskdesk/internal/store"
)

const (
	adminCodePrefix    = "CIPL"
	adminCodeMin       = 1000
	adminCodeSpan      = 1000
	employeeCodePrefix = "T"
	employeeCodeFloor  = 100
)

// Users owns the users collection.
type Users struct {
	base
	// Rand returns an int in [0, n); defaults to math/rand/v2.
	Rand func(n int) int
}

// UserInput is a new user. Role defaults to EMPLOYEE and an empty EmployeeID is generated.
type UserInput struct {
	Name       string
	Email      string
	Role       domain.Role
	Department string
	IsActive   *bool
	EmployeeID string
}

// UserPatch holds the fields to change; nil means untouched.
type UserPatch struct {
	Name       *string
	Email      *string
	Role       *domain.Role
	Department *string
	IsActive   *bool
	EmployeeID *string
}

func (r *Users) load(ctx context.Context) []domain.User {
	return store.LoadArray(ctx, r.store, store.KeyUsers, []domain.User{})
}

func (r *Users) save(ctx context.Context, users []domain.User) {
	r.store.Save(ctx, store.KeyUsers, users)
}

// List returns every user in stored order.
func (r *Users) List(ctx context.Context) []domain.User {
	return r.load(ctx)
}

// ListByRole returns users with the given role in stored order.
func (r *Users) ListByRole(ctx context.Context, role domain.Role) []domain.User {
	var out []domain.User
	for _, u := range r.load(ctx) {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// Get returns the user or a NotFound error.
func (r *Users) Get(ctx context.Context, id string) (domain.User, error) {
	for _, u := range r.load(ctx) {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, notFound("user", id)
}

// Create stores a new user, generating an employee code for its role when none is given.
func (r *Users) Create(ctx context.Context, in UserInput) (domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.Valid() {
		return domain.User{}, invalidField("role", role)
	}
	users := r.load(ctx)
	code := strings.TrimSpace(in.EmployeeID)
	if code != "" {
		if codeTaken(users, code, "") {
			return domain.User{}, conflict(fmt.Sprintf("employee id %s already in use", code))
		}
	} else {
		var err error
		if code, err = r.generateCode(role, users); err != nil {
			return domain.User{}, err
		}
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	u := domain.User{
		ID:         ids.New(ids.PrefixUser),
		Name:       in.Name,
		Email:      in.Email,
		Role:       role,
		Department: in.Department,
		IsActive:   active,
		EmployeeID: code,
	}
	r.save(ctx, append(users, u))
	return u, nil
}

// Update merges p into the user. A role must be valid and an employee id non-empty and
// unique among other users.
func (r *Users) Update(ctx context.Context, id string, p UserPatch) (domain.User, error) {
	users := r.load(ctx)
	idx := indexOfUser(users, id)
	if idx < 0 {
		return domain.User{}, notFound("user", id)
	}
	u := users[idx]
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return domain.User{}, invalidField("role", *p.Role)
		}
		u.Role = *p.Role
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.EmployeeID != nil {
		code := strings.TrimSpace(*p.EmployeeID)
		if code == "" {
			return domain.User{}, missingField("employeeId")
		}
		if codeTaken(users, code, id) {
			return domain.User{}, conflict(fmt.Sprintf("employee id %s already in use", code))
		}
		u.EmployeeID = code
	}
	users[idx] = u
	r.save(ctx, users)
	return u, nil
}

// SetActive toggles the active flag.
func (r *Users) SetActive(ctx context.Context, id string, active bool) (domain.User, error) {
	return r.Update(ctx, id, UserPatch{IsActive: &active})
}

// Remove hard-deletes the user. Tasks and projects keep their references to it.
func (r *Users) Remove(ctx context.Context, id string) error {
	users := r.load(ctx)
	idx := indexOfUser(users, id)
	if idx < 0 {
		return notFound("user", id)
	}
	r.save(ctx, append(users[:idx], users[idx+1:]...))
	return nil
}

func (r *Users) generateCode(role domain.Role, users []domain.User) (string, error) {
	if role == domain.RoleAdmin {
		return r.adminCode(users)
	}
	return NextEmployeeCode(users), nil
}

// adminCode picks a random free CIPL code in [1000, 1999].
func (r *Users) adminCode(users []domain.User) (string, error) {
	intn := r.Rand
	if intn == nil {
		intn = rand.Intn
	}
	start := intn(adminCodeSpan)
	for i := 0; i < adminCodeSpan; i++ {
		code := fmt.Sprintf("%s%d", adminCodePrefix, adminCodeMin+(start+i)%adminCodeSpan)
		if !codeTaken(users, code, "") {
			return code, nil
		}
	}
	return "", conflict("no admin employee ids left")
}

// NextEmployeeCode returns T followed by one more than the highest existing T number,
// never below T101.
func NextEmployeeCode(users []domain.User) string {
	highest := employeeCodeFloor
	for _, u := range users {
		if !strings.HasPrefix(u.EmployeeID, employeeCodePrefix) {
			continue
		}
		n, err := strconv.Atoi(u.EmployeeID[len(employeeCodePrefix):])
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", employeeCodePrefix, highest+1)
}

func codeTaken(users []domain.User, code, exceptID string) bool {
	for _, u := range users {
		if u.EmployeeID == code && u.ID != exceptID {
			return true
		}
	}
	return false
}

func indexOfUser(users []domain.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
