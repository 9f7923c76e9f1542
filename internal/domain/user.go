package domain

import "time"

// User is an ERP login. Tickets reference users by nick as creator or assignee.
type User struct {
	Nick         string
	Email        string
	PasswordHash string
	Admin        bool
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Party returns the user as a notification recipient.
func (u User) Party() Party {
	return Party{Code: u.Nick, Name: u.Nick, Email: u.Email}
}
