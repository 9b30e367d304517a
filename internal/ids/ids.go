package ids

import "github.com/google/uuid"

// New returns a random identifier, prefixed with "<prefix>-" when prefix is set.
func New(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

const (
	PrefixUser         = "user"
	PrefixProject      = "proj"
	PrefixTask         = "task"
	PrefixNotification = "notif"
)
