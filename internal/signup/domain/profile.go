package domain

import "time"

// Profile is the application-side record of an identity. Default
// provisioning creates it when the identity is created.
type Profile struct {
	ID             string // equals the identity id
	Email          string
	FullName       string
	AccountType    AccountType
	HubID          string
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProfileLink carries the fields the signup flow may overwrite after
// default provisioning ran.
type ProfileLink struct {
	FullName    string
	AccountType AccountType
	HubID       string
}
