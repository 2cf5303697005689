package model

import "strings"

// User is a member of the host system that entries can be assigned to.
type User struct {
	ID        int64
	Login     string
	FirstName string
	LastName  string
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Matches reports whether name identifies this user by login, first name,
// last name, or full name, case-insensitively.
func (u *User) Matches(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return strings.EqualFold(name, u.Login) ||
		strings.EqualFold(name, u.FirstName) ||
		strings.EqualFold(name, u.LastName) ||
		strings.EqualFold(name, u.FullName())
}
