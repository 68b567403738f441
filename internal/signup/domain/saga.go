package domain

import "time"

// SagaState is a step of the signup saga. States advance in declaration
// order; RolledBack, Reconciled and Failed are terminal alongside Done.
type SagaState string

const (
	SagaStart                SagaState = "START"
	SagaIdentityCreated      SagaState = "IDENTITY_CREATED"
	SagaInviteConsumed       SagaState = "INVITE_CONSUMED"
	SagaProfileLinked        SagaState = "PROFILE_LINKED"
	SagaRolePropagated       SagaState = "ROLE_PROPAGATED"
	SagaSubscriptionAssigned SagaState = "SUBSCRIPTION_ASSIGNED"
	SagaSessionIssued        SagaState = "SESSION_ISSUED"
	SagaDone                 SagaState = "DONE"
	SagaRollback             SagaState = "ROLLBACK"
	SagaRolledBack           SagaState = "ROLLED_BACK"
	SagaRollbackFailed       SagaState = "ROLLBACK_FAILED"
	SagaFailed               SagaState = "FAILED"
	SagaReconciled           SagaState = "RECONCILED"
)

// Terminal reports whether no further work is expected for the saga.
func (s SagaState) Terminal() bool {
	switch s {
	case SagaSessionIssued, SagaDone, SagaRolledBack, SagaFailed, SagaReconciled:
		return true
	}
	return false
}

// NonTerminalSagaStates lists the states a crashed or failed saga can be
// left in. Housekeeping scans for these.
var NonTerminalSagaStates = []SagaState{
	SagaStart,
	SagaIdentityCreated,
	SagaInviteConsumed,
	SagaProfileLinked,
	SagaRolePropagated,
	SagaSubscriptionAssigned,
	SagaRollback,
	SagaRollbackFailed,
}

// SagaRecord is the durable journal row of one signup attempt.
type SagaRecord struct {
	ID         string
	Email      string
	InviteCode string // fingerprint, never the raw code
	UserID     string
	State      SagaState
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
