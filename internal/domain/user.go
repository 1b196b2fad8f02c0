package domain

import "time"

// User represents a Mini-App user, keyed by the Telegram account it was created for
type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegramId"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"firstName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DisplayName returns the name shown in greetings
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "friend"
}

// Session is a signed credential bound to a user
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}
