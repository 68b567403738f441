package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// RoleName is the closed set of application roles.
type RoleName string

const (
	RoleEntrepreneur RoleName = "entrepreneur"
	RoleHubManager   RoleName = "hub_manager"
	RoleAdmin        RoleName = "admin"
	RoleSuperAdmin   RoleName = "super_admin"
)

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrHubRequired     = errors.New("role requires a hub")
	ErrHubNotPermitted = errors.New("role must not carry a hub")
)

// ParseRoleName accepts the wire form of a role.
func ParseRoleName(s string) (RoleName, error) {
	r := RoleName(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleEntrepreneur, RoleHubManager, RoleAdmin, RoleSuperAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// HubScoped reports whether the role always requires a hub.
func (r RoleName) HubScoped() bool {
	return r == RoleEntrepreneur || r == RoleHubManager
}

func (r RoleName) String() string { return string(r) }

// Grant is one role held by a user. Its fields are unexported so the only
// way to build one is through the constructors below, which enforce hub
// scoping:
//
//	entrepreneur, hub_manager  hub required
//	admin                      global or hub-scoped
//	super_admin                always global
type Grant struct {
	role RoleName
	hub  string
}

// NewGrant validates a role/hub pair read from storage or the wire.
func NewGrant(role RoleName, hubID string) (Grant, error) {
	hubID = strings.TrimSpace(hubID)
	switch role {
	case RoleEntrepreneur, RoleHubManager:
		if hubID == "" {
			return Grant{}, fmt.Errorf("%s: %w", role, ErrHubRequired)
		}
	case RoleSuperAdmin:
		if hubID != "" {
			return Grant{}, fmt.Errorf("%s: %w", role, ErrHubNotPermitted)
		}
	case RoleAdmin:
	default:
		return Grant{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return Grant{role: role, hub: hubID}, nil
}

// Entrepreneur is the base role of a business account in hub.
func Entrepreneur(hubID string) (Grant, error) { return NewGrant(RoleEntrepreneur, hubID) }

// HubManager manages hub without full admin rights.
func HubManager(hubID string) (Grant, error) { return NewGrant(RoleHubManager, hubID) }

// HubAdmin administers a single hub.
func HubAdmin(hubID string) (Grant, error) {
	if strings.TrimSpace(hubID) == "" {
		return Grant{}, fmt.Errorf("%s: %w", RoleAdmin, ErrHubRequired)
	}
	return NewGrant(RoleAdmin, hubID)
}

// GlobalAdmin is an admin not tied to a hub.
func GlobalAdmin() Grant { return Grant{role: RoleAdmin} }

// SuperAdmin is the platform-wide operator role.
func SuperAdmin() Grant { return Grant{role: RoleSuperAdmin} }

func (g Grant) Role() RoleName { return g.role }

// HubID returns the hub and whether the grant is hub-scoped.
func (g Grant) HubID() (string, bool) { return g.hub, g.hub != "" }

// Hub returns the hub id or "" for global grants.
func (g Grant) Hub() string { return g.hub }

func (g Grant) IsGlobal() bool { return g.hub == "" }
func (g Grant) IsZero() bool   { return g.role == "" }

func (g Grant) String() string {
	if g.hub == "" {
		return string(g.role)
	}
	return string(g.role) + "@" + g.hub
}

// RoleSet is every grant held by one user.
type RoleSet []Grant

// IsSuperAdmin reports whether the set contains super_admin.
func (s RoleSet) IsSuperAdmin() bool {
	return slices.ContainsFunc(s, func(g Grant) bool { return g.role == RoleSuperAdmin })
}

// IsAdmin reports whether the set contains any admin row, global or hub-scoped.
func (s RoleSet) IsAdmin() bool {
	return slices.ContainsFunc(s, func(g Grant) bool { return g.role == RoleAdmin })
}

// IsPrivileged reports super_admin or any admin.
func (s RoleSet) IsPrivileged() bool { return s.IsSuperAdmin() || s.IsAdmin() }

// AdminHub returns the hub of the first hub-scoped admin row. Only the admin
// role counts; hub_manager rows never establish an implicit hub context.
func (s RoleSet) AdminHub() (string, bool) {
	for _, g := range s {
		if g.role == RoleAdmin && g.hub != "" {
			return g.hub, true
		}
	}
	return "", false
}

// ManagedHubs lists hubs where the user is admin or hub_manager, in order
// of first appearance.
func (s RoleSet) ManagedHubs() []string {
	var hubs []string
	for _, g := range s {
		if (g.role == RoleAdmin || g.role == RoleHubManager) && g.hub != "" && !slices.Contains(hubs, g.hub) {
			hubs = append(hubs, g.hub)
		}
	}
	return hubs
}

// ManagesHub reports whether the user is admin or hub_manager of hubID.
func (s RoleSet) ManagesHub(hubID string) bool {
	return hubID != "" && slices.Contains(s.ManagedHubs(), hubID)
}

// CanIssueInvites reports whether the user holds any role allowed to issue.
func (s RoleSet) CanIssueInvites() bool {
	return slices.ContainsFunc(s, func(g Grant) bool {
		return g.role == RoleSuperAdmin || g.role == RoleAdmin || g.role == RoleHubManager
	})
}

// Contains reports whether the set holds exactly g.
func (s RoleSet) Contains(g Grant) bool { return slices.Contains(s, g) }
