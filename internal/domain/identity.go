package domain

import "time"

// EmergencyContact is the optional out-of-band contact on a profile.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Identity is a registered user's profile as held by the session manager.
// It is immutable outside explicit profile operations; the session manager
// only ever replaces it wholesale.
type Identity struct {
	ID               UserID            `json:"id"`
	Email            string            `json:"email"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	DateOfBirth      string            `json:"dateOfBirth"`
	Phone            string            `json:"phone"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	LastLoginAt      *time.Time        `json:"lastLoginAt,omitempty"`
}

// Registration is the profile data supplied by the sign-up flow.
type Registration struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=8,max=72"`
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	DateOfBirth string `validate:"required"`
	Phone       string `validate:"required"`
}
