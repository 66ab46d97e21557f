package domain

import "time"

type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Read      bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
