package domain

import "time"

// Identity is an account held by the local identity provider.
type Identity struct {
	ID               string
	Email            string
	PasswordHash     string
	EmailConfirmedAt *time.Time
	Metadata         IdentityMetadata
	CreatedAt        time.Time
}

// IdentityMetadata is attached to an identity at creation time. Default
// provisioning reads it to build the profile and base role.
type IdentityMetadata struct {
	FullName    string      `json:"full_name,omitempty"`
	AccountType AccountType `json:"account_type,omitempty"`
	HubID       string      `json:"hub_id,omitempty"`
	InviteCode  string      `json:"invite_code,omitempty"`
}

// Map renders the metadata as the loosely typed user_metadata object
// identity providers accept.
func (m IdentityMetadata) Map() map[string]any {
	out := map[string]any{}
	if m.FullName != "" {
		out["full_name"] = m.FullName
	}
	if m.AccountType != "" {
		out["account_type"] = string(m.AccountType)
	}
	if m.HubID != "" {
		out["hub_id"] = m.HubID
	}
	if m.InviteCode != "" {
		out["invite_code"] = m.InviteCode
	}
	return out
}

// Session is the result of a password-grant token exchange.
type Session struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int
	ExpiresAt    time.Time
	RefreshToken string
	UserID       string
}
