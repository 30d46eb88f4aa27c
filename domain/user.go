package domain

import "time"

// User is a registered account. ID is the stable identity every other part
// of the system (tokens, presence, messages) refers to.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Color        string
	ProfileSetup bool
	CreatedAt    time.Time
}

// PublicUser is the client-facing projection of a User. It is what gets
// embedded in realtime payloads and HTTP responses; the password hash
// never leaves the repository layer through this type.
type PublicUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Color        string `json:"color,omitempty"`
	ProfileSetup bool   `json:"profileSetup"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Color:        u.Color,
		ProfileSetup: u.ProfileSetup,
	}
}
