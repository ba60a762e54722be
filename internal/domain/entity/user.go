package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID                string
	Email             string
	Password          string
	FirstName         string
	LastName          string
	About             string
	ProfilePic        string
	ProfileBackground string
	EmailVerified     bool
	VerificationOTP   string
	ResetToken        string
	ResetExpires      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Snapshot captures the display fields that get embedded into posts,
// comments, replies and likes. Once embedded it is never refreshed, even if
// the user later renames themselves or changes their picture.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		ProfilePic: u.ProfilePic,
	}
}
