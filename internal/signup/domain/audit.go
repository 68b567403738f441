package domain

import "time"

type RoleAction string

const (
	RoleActionAdd    RoleAction = "add"
	RoleActionRemove RoleAction = "remove"
)

// RoleAudit records one role mutation request, including no-op requests
// (Changed == false).
type RoleAudit struct {
	ID           string
	ActorID      string
	TargetUserID string
	Action       RoleAction
	Role         RoleName
	HubID        string
	Reason       string
	Changed      bool
	CreatedAt    time.Time
}
