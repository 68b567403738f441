package signupsdk

import "time"

// ErrorDetail is the body of the error envelope.
type ErrorDetail struct {
	Code    string `json:"code" example:"INVALID_INVITE"`
	Message string `json:"message" example:"Invalid or expired invite code"`
}

// ErrorResponse is the failure shape returned by every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ============================================================================
// Signup
// ============================================================================

// SignupRequest is the body of POST /v1/signup. AccountType is optional and
// must match the invite's when given.
type SignupRequest struct {
	Email       string `json:"email" example:"founder@example.com"`
	Password    string `json:"password" example:"correct horse battery"`
	FullName    string `json:"full_name" example:"Ada Founder"`
	AccountType string `json:"account_type,omitempty" example:"business"`
	InviteCode  string `json:"invite_code" example:"ABCD2345EFGH"`
}

// SubscriptionGrant reports the outcome of default plan assignment.
type SubscriptionGrant struct {
	Assigned bool   `json:"assigned"`
	Plan     string `json:"plan" example:"premium"`
}

// SignupResponse is returned with 201 Created.
type SignupResponse struct {
	Created        bool              `json:"created"`
	UserID         string            `json:"user_id"`
	TokenExchanged bool              `json:"token_exchanged"`
	Session        *TokenResponse    `json:"session,omitempty"`
	Message        string            `json:"message" example:"Account created; sign in to continue"`
	Subscription   SubscriptionGrant `json:"subscription"`
	SagaID         string            `json:"saga_id"`
}

// ============================================================================
// Tokens
// ============================================================================

// TokenRequest is the body of POST /v1/auth/token.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is an issued session.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"3600"`
	RefreshToken string `json:"refresh_token,omitempty"`
	UserID       string `json:"user_id"`
}

// ConfirmResponse is returned by GET /v1/auth/confirm.
type ConfirmResponse struct {
	UserID    string `json:"user_id"`
	Confirmed bool   `json:"confirmed"`
}

// ============================================================================
// Invites
// ============================================================================

// InviteRequest is the body of POST /v1/invite-codes. HubID is only honoured
// for super_admin callers; everyone else gets their own hub.
type InviteRequest struct {
	AccountType  string `json:"account_type" example:"business"`
	InvitedEmail string `json:"invited_email,omitempty" example:"founder@example.com"`
	HubID        string `json:"hub_id,omitempty"`
	TTLSeconds   int64  `json:"ttl_seconds,omitempty" example:"1209600"`
}

// Invite is an invite code as seen by its administrators.
type Invite struct {
	ID           string     `json:"id"`
	Code         string     `json:"code" example:"ABCD2345EFGH"`
	InvitedEmail string     `json:"invited_email,omitempty"`
	AccountType  string     `json:"account_type" example:"business"`
	HubID        string     `json:"hub_id,omitempty"`
	CreatedBy    string     `json:"created_by"`
	ExpiresAt    time.Time  `json:"expires_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedBy       string     `json:"used_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// InviteList is a page of invites, newest first.
type InviteList struct {
	Invites []Invite `json:"invites"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// ValidateInviteRequest is the body of POST /v1/invite-codes/validate.
type ValidateInviteRequest struct {
	Code string `json:"code" example:"ABCD2345EFGH"`
}

// InvitePreview is the part of a usable invite shown to an anonymous caller.
type InvitePreview struct {
	Code         string    `json:"code"`
	AccountType  string    `json:"account_type"`
	InvitedEmail string    `json:"invited_email,omitempty"`
	HubID        string    `json:"hub_id,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ValidateInviteResponse never says why an invite is invalid.
type ValidateInviteResponse struct {
	Valid  bool           `json:"valid"`
	Invite *InvitePreview `json:"invite,omitempty"`
}

// ConsumeInviteRequest is the body of POST /v1/invite-codes/consume. UserID
// defaults to the caller.
type ConsumeInviteRequest struct {
	Code   string `json:"code"`
	UserID string `json:"user_id,omitempty"`
}

// ConsumeInviteResponse is returned when the invite was claimed.
type ConsumeInviteResponse struct {
	Invite       Invite `json:"invite"`
	AccountType  string `json:"account_type"`
	CreatorHubID string `json:"creator_hub_id,omitempty"`
}

// SendInviteRequest re-sends an invite notification. Either Code or Email
// identifies the invite; Code wins when both are set.
type SendInviteRequest struct {
	Code  string `json:"code,omitempty"`
	Email string `json:"email,omitempty"`
}

// ============================================================================
// Roles
// ============================================================================

// RoleRequest is the body of POST and DELETE /v1/roles.
type RoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role" example:"hub_manager"`
	HubID  string `json:"hub_id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// RoleResponse reports whether the role set changed; repeated calls are
// successful no-ops.
type RoleResponse struct {
	Changed bool `json:"changed"`
}

// Grant is one role row.
type Grant struct {
	Role  string `json:"role" example:"admin"`
	HubID string `json:"hub_id,omitempty"`
}

// Profile is the caller's profile.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	AccountType    string    `json:"account_type"`
	HubID          string    `json:"hub_id,omitempty"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// MeResponse is returned by GET /v1/me.
type MeResponse struct {
	Profile Profile `json:"profile"`
	Roles   []Grant `json:"roles"`
}

// ============================================================================
// Bootstrap
// ============================================================================

// BootstrapRequest creates the first super_admin. A blank password is
// generated and returned once.
type BootstrapRequest struct {
	Email    string   `json:"email" example:"ops@example.com"`
	Password string   `json:"password,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	Plans    []string `json:"plans,omitempty" example:"Premium"`
}

// BootstrapResponse is returned with 201 Created.
type BootstrapResponse struct {
	UserID            string   `json:"user_id"`
	GeneratedPassword string   `json:"generated_password,omitempty"`
	PlanIDs           []string `json:"plan_ids,omitempty"`
}

// ============================================================================
// Health
// ============================================================================

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Signer   string `json:"signer,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
