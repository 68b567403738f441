package domain

import (
	"errors"
	"strings"
	"time"
)

// AccountType classifies the account an invite pre-authorizes.
type AccountType string

const (
	AccountBusiness     AccountType = "business"
	AccountOrganization AccountType = "organization"
)

var ErrUnknownAccountType = errors.New("unknown account type")

// ParseAccountType accepts the wire form case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToLower(strings.TrimSpace(s))) {
	case AccountBusiness:
		return AccountBusiness, nil
	case AccountOrganization:
		return AccountOrganization, nil
	}
	return "", ErrUnknownAccountType
}

func (a AccountType) String() string { return string(a) }

const (
	// DefaultInviteTTL applies when the issuer does not request one.
	DefaultInviteTTL = 14 * 24 * time.Hour

	// MaxInviteTTL caps requested lifetimes.
	MaxInviteTTL = 90 * 24 * time.Hour
)

// InviteCode is a single-use token pre-authorizing one signup.
type InviteCode struct {
	ID           string
	Code         string
	InvitedEmail string // optional
	AccountType  AccountType
	HubID        string // optional
	CreatedBy    string
	ExpiresAt    time.Time
	UsedAt       *time.Time
	UsedBy       string
	CreatedAt    time.Time
}

// Usable reports whether the code can still be consumed at now.
func (i InviteCode) Usable(now time.Time) bool {
	return i.UsedAt == nil && now.Before(i.ExpiresAt)
}

// Used reports whether the code has already been consumed.
func (i InviteCode) Used() bool { return i.UsedAt != nil }

// MatchesEmail reports whether email may redeem this invite. Invites without
// an invited email accept any address.
func (i InviteCode) MatchesEmail(email string) bool {
	if i.InvitedEmail == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(i.InvitedEmail), strings.TrimSpace(email))
}

// InviteFilter scopes invite listings.
type InviteFilter struct {
	// HubIDs restricts results to invites whose hub is in the list.
	HubIDs []string
	// OnlyGlobal restricts results to invites without a hub. Ignored when
	// HubIDs is set.
	OnlyGlobal bool
	Limit      int
	Offset     int
}
