package domain

import "time"

type User struct {
	ID             string
	Email          string
	FirstName      string
	LastName       string
	Role           string
	CredentialHash string
	AuthProvider   string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Identity is the request-scoped view of a User handed to authenticated
// handlers. It has no credential, provider or status fields.
type Identity struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity projects u into a new value; u itself is left untouched.
func (u User) Identity() Identity {
	return Identity{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
