package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories so a Tx-scoped Store
// can be handed to code that must not open nested transactions.
type Store interface {
	Invites() Invites
	Roles() Roles
	RoleAudit() RoleAudit
	Profiles() Profiles
	Plans() Plans
	Subscriptions() Subscriptions
	Sagas() Sagas
	Identities() Identities

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Invites interface {
	// CreateInvite inserts a new invite. A code collision yields ErrAlreadyExists.
	CreateInvite(ctx context.Context, inv domain.InviteCode) error

	// GetInviteByCode returns the invite regardless of its state.
	GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error)

	GetInviteByID(ctx context.Context, id string) (domain.InviteCode, error)

	// GetLatestInviteByEmail returns the newest invite addressed to email.
	GetLatestInviteByEmail(ctx context.Context, email string) (domain.InviteCode, error)

	// ConsumeInvite is a compare-and-set: it marks the invite used by userID
	// only if it is unused and unexpired at now. When no row matched it
	// returns ErrNotFound without saying why.
	ConsumeInvite(ctx context.Context, code, userID string, now time.Time) (domain.InviteCode, error)

	// ListInvites returns invites newest first.
	ListInvites(ctx context.Context, f domain.InviteFilter) ([]domain.InviteCode, error)

	// DeleteInvite returns ErrNotFound when no row was deleted.
	DeleteInvite(ctx context.Context, id string) error
}

type Roles interface {
	ListRolesByUser(ctx context.Context, userID string) (domain.RoleSet, error)

	// AddRole inserts the grant and reports whether a row was created. A grant
	// the user already holds is not an error.
	AddRole(ctx context.Context, userID string, g domain.Grant) (bool, error)

	// RemoveRole deletes the grant and reports whether a row was deleted.
	RemoveRole(ctx context.Context, userID string, g domain.Grant) (bool, error)

	DeleteRolesByUser(ctx context.Context, userID string) error

	// CountRole counts role rows with the given role across all users.
	CountRole(ctx context.Context, role domain.RoleName) (int, error)
}

type RoleAudit interface {
	RecordRoleAudit(ctx context.Context, a domain.RoleAudit) error
	ListRoleAuditByUser(ctx context.Context, userID string, limit int) ([]domain.RoleAudit, error)
}

type Profiles interface {
	// CreateProfile yields ErrAlreadyExists when the profile exists.
	CreateProfile(ctx context.Context, p domain.Profile) error
	GetProfile(ctx context.Context, id string) (domain.Profile, error)

	// LinkProfile overwrites full name, account type and hub. Empty link
	// fields leave the stored value untouched. Missing profile: ErrNotFound.
	LinkProfile(ctx context.Context, id string, link domain.ProfileLink) error

	SetEmailConfirmed(ctx context.Context, id string, confirmed bool) error
	DeleteProfile(ctx context.Context, id string) error
}

type Plans interface {
	CreatePlan(ctx context.Context, p domain.Plan) error

	// GetActivePlanByName matches name case-insensitively.
	GetActivePlanByName(ctx context.Context, name string) (domain.Plan, error)
}

type Subscriptions interface {
	// GetActiveSubscription returns the user's active subscription whose
	// period has not ended at now.
	GetActiveSubscription(ctx context.Context, userID string, now time.Time) (domain.Subscription, error)

	// InsertActiveIfAbsent inserts s unless the user already has an active
	// subscription row; uniqueness is enforced by the schema.
	InsertActiveIfAbsent(ctx context.Context, s domain.Subscription) (bool, error)

	// ExpireLapsed flips active rows whose period ended before now to expired.
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)

	// ExpireLapsedForUser is ExpireLapsed limited to one user.
	ExpireLapsedForUser(ctx context.Context, userID string, now time.Time) (int64, error)

	DeleteSubscriptionsByUser(ctx context.Context, userID string) error
}

type Sagas interface {
	CreateSaga(ctx context.Context, r domain.SagaRecord) error

	// UpdateSaga records a state transition. Empty userID/errMsg keep the
	// stored values.
	UpdateSaga(ctx context.Context, id string, state domain.SagaState, userID, errMsg string) error

	GetSaga(ctx context.Context, id string) (domain.SagaRecord, error)

	// ListStaleSagas returns sagas in a non-terminal state, carrying an
	// identity id, last updated before cutoff. Oldest first.
	ListStaleSagas(ctx context.Context, cutoff time.Time, limit int) ([]domain.SagaRecord, error)
}

type Identities interface {
	// CreateIdentity yields ErrAlreadyExists when the email is taken.
	CreateIdentity(ctx context.Context, id domain.Identity) error
	GetIdentityByID(ctx context.Context, id string) (domain.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error)
	ConfirmIdentityEmail(ctx context.Context, id string, at time.Time) error
	DeleteIdentity(ctx context.Context, id string) error
}
