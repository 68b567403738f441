package domain

// BootstrapData seeds an empty deployment with its first super_admin and,
// optionally, subscription plans.
type BootstrapData struct {
	Email    string
	Password string // generated when empty
	FullName string
	Plans    []string
}

// BootstrapResult reports what bootstrap created.
type BootstrapResult struct {
	UserID            string
	GeneratedPassword string // only set when the password was generated
	PlanIDs           []string
}
