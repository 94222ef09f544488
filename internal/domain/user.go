package domain

import "time"

// User represents a bot user
type User struct {
	ID          int64
	Username    string
	DisplayName string
	JoinedAt    time.Time
}

// Handle returns the @-less username or a placeholder when the user has none
func (u User) Handle() string {
	if u.Username == "" {
		return "без юзернейма"
	}
	return u.Username
}
