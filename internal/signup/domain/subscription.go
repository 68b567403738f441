package domain

import "time"

const (
	// PremiumPlanName is matched case-insensitively against active plans.
	PremiumPlanName = "premium"

	// FreePlanName is reported when no premium plan is configured.
	FreePlanName = "free"

	// DefaultGrantPeriod is the length of an auto-assigned subscription.
	DefaultGrantPeriod = 30 * 24 * time.Hour
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type Plan struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}

type Subscription struct {
	ID                 string
	UserID             string
	PlanID             string
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CreatedAt          time.Time
}

// GrantResult is the outcome of a default plan grant.
type GrantResult struct {
	Assigned bool
	Plan     string
}
