package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/metrics"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

const (
	DefaultCreateTimeout     = 5 * time.Second
	DefaultBestEffortTimeout = 3 * time.Second

	minPasswordLen = 8
	maxPasswordLen = 128
	maxFullNameLen = 128

	MessageSignInManually = "Account created; sign in to continue"
)

// SignupOrchestrator runs the signup saga: identity, invite consumption,
// profile link, role propagation and default subscription, compensating
// in reverse order when a step after identity creation fails.
type SignupOrchestrator struct {
	Store         store.Store
	Identity      identity.Provider
	Invites       *InviteCodeRegistry
	Hubs          *HubContextResolver
	Roles         *RoleAuthority
	Subscriptions *SubscriptionAutoAssigner
	Metrics       *metrics.Metrics

	CreateTimeout     time.Duration
	BestEffortTimeout time.Duration
	RollbackTimeout   time.Duration
}

type SignupRequest struct {
	Email       string
	Password    string
	FullName    string
	AccountType domain.AccountType // optional; must match the invite when set
	InviteCode  string
}

type SignupResult struct {
	UserID         string
	Created        bool
	TokenExchanged bool
	Session        *domain.Session
	Message        string
	Subscription   domain.GrantResult
	SagaID         string
}

// Signup creates an account from an invite code.
func (o *SignupOrchestrator) Signup(ctx context.Context, req SignupRequest) (res SignupResult, err error) {
	start := time.Now()
	log := slogx.FromContext(ctx)
	defer func() { o.Metrics.Signup(signupOutcome(err), time.Since(start)) }()

	req, err = normalizeSignup(req)
	if err != nil {
		return SignupResult{}, err
	}

	// 1. Validate the invite. Nothing has been created yet.
	v, err := o.Invites.Validate(ctx, req.InviteCode)
	if err != nil {
		return SignupResult{}, err
	}
	if !v.Valid {
		log.Warn("signup with invalid invite code")
		return SignupResult{}, ErrInvalidInvite
	}
	invite := *v.Invite
	if !invite.MatchesEmail(req.Email) || (req.AccountType != "" && req.AccountType != invite.AccountType) {
		log.Warn("signup does not match invite", slog.String("invite_id", invite.ID))
		return SignupResult{}, ErrInvalidInvite
	}
	accountType := invite.AccountType

	// 2. Snapshot the creator's privileges once.
	creator, err := o.Hubs.Creator(ctx, invite.CreatedBy)
	if err != nil {
		log.Warn("failed to load invite creator roles, treating as unprivileged",
			slog.String("creator_id", invite.CreatedBy),
			slog.Any("error", err),
		)
		creator = CreatorContext{UserID: invite.CreatedBy}
	}
	hubID := creator.HubID
	if hubID == "" {
		hubID = invite.HubID
	}

	sg := newSaga(ctx, o.Store, req.Email, invite.Code, o.RollbackTimeout)
	res.SagaID = sg.id

	// 3. Create the identity. Privileged invites skip email verification.
	createCtx, cancel := context.WithTimeout(ctx, durationOr(o.CreateTimeout, DefaultCreateTimeout))
	userID, err := o.Identity.Create(createCtx, identity.CreateRequest{
		Email:    req.Email,
		Password: req.Password,
		Metadata: domain.IdentityMetadata{
			FullName:    req.FullName,
			AccountType: accountType,
			HubID:       hubID,
			InviteCode:  invite.Code,
		},
		EmailConfirm: creator.AutoConfirm(),
	})
	cancel()
	if err != nil {
		sg.fail(ctx, err)
		log.Error("identity creation failed", slog.String("saga_id", sg.id), slog.Any("error", err))
		return res, fmt.Errorf("%w: %w", ErrAuthCreate, err)
	}
	sg.identityCreated(ctx, userID)
	sg.onRollback("delete identity", func(ctx context.Context) error {
		err := o.Identity.Delete(ctx, userID)
		if errors.Is(err, identity.ErrNotFound) {
			return nil
		}
		return err
	})

	// 4. Consume the invite on behalf of the new user.
	if _, err := o.Invites.Consume(ctx, invite.Code, userID, userID); err != nil {
		return res, sg.rollback(ctx, err)
	}
	// A consumed code stays consumed even if a later step rolls back.
	sg.advance(ctx, domain.SagaInviteConsumed)

	// 5. Link the profile. A super_admin's invite is already correct after
	// default provisioning; other creators' profiles stay untouched.
	if !creator.SuperAdmin && creator.Admin {
		err := o.Store.Profiles().LinkProfile(ctx, userID, domain.ProfileLink{
			FullName:    req.FullName,
			AccountType: accountType,
			HubID:       hubID,
		})
		if err != nil {
			return res, sg.rollback(ctx, err)
		}
	}
	sg.advance(ctx, domain.SagaProfileLinked)

	// 6. Propagate roles. The base entrepreneur role of a business signup
	// comes from default provisioning and is not inserted again here.
	if accountType == domain.AccountOrganization && creator.SuperAdmin {
		_, err := o.Roles.AssignRole(ctx, RoleChange{
			TargetUserID: userID,
			Role:         domain.RoleAdmin,
			HubID:        hubID,
			RequesterID:  creator.UserID,
			Reason:       "organization signup via invite " + invite.ID,
		})
		if err != nil {
			return res, sg.rollback(ctx, err)
		}
	}
	sg.advance(ctx, domain.SagaRolePropagated)

	// 7. Default subscription.
	res.Subscription, err = o.Subscriptions.GrantDefaultIfEligible(ctx, userID, accountType, hubID != "")
	if err != nil {
		return res, sg.rollback(ctx, err)
	}
	sg.advance(ctx, domain.SagaSubscriptionAssigned)

	res.UserID = userID
	res.Created = true
	res.Message = MessageSignInManually

	// 8. Sessions for super_admin invites, verification mail for
	// unprivileged ones. Neither can fail the signup.
	bestEffort := durationOr(o.BestEffortTimeout, DefaultBestEffortTimeout)
	switch {
	case creator.SuperAdmin:
		exCtx, cancel := context.WithTimeout(ctx, bestEffort)
		session, err := o.Identity.TokenExchange(exCtx, req.Email, req.Password)
		cancel()
		if err != nil {
			log.Warn("post-signup token exchange failed", slog.String("user_id", userID), slog.Any("error", err))
		} else {
			res.TokenExchanged = true
			res.Session = &session
			res.Message = "Welcome " + displayName(req)
		}
	case !creator.AutoConfirm():
		vCtx, cancel := context.WithTimeout(ctx, bestEffort)
		if err := o.Identity.SendVerification(vCtx, req.Email); err != nil {
			log.Warn("verification email trigger failed", slog.String("user_id", userID), slog.Any("error", err))
		}
		cancel()
	}

	// 9. Done.
	if res.TokenExchanged {
		sg.advance(ctx, domain.SagaSessionIssued)
	} else {
		sg.advance(ctx, domain.SagaDone)
	}

	log.Info("signup completed",
		slog.String("saga_id", sg.id),
		slog.String("user_id", userID),
		slog.String("account_type", string(accountType)),
		slog.String("hub_id", hubID),
		slog.Bool("auto_confirmed", creator.AutoConfirm()),
		slog.Bool("token_exchanged", res.TokenExchanged),
		slog.String("plan", res.Subscription.Plan),
	)
	return res, nil
}

func normalizeSignup(req SignupRequest) (SignupRequest, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.InviteCode = cryptox.NormalizeInviteCode(req.InviteCode)

	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return req, validationError("email is not a valid address")
	}
	if n := utf8.RuneCountInString(req.Password); n < minPasswordLen || n > maxPasswordLen {
		return req, validationError("password must be %d to %d characters", minPasswordLen, maxPasswordLen)
	}
	if utf8.RuneCountInString(req.FullName) > maxFullNameLen {
		return req, validationError("full_name must be at most %d characters", maxFullNameLen)
	}
	if req.AccountType != "" {
		at, err := domain.ParseAccountType(string(req.AccountType))
		if err != nil {
			return req, validationError("account_type must be business or organization")
		}
		req.AccountType = at
	}
	if req.InviteCode == "" {
		return req, validationError("invite_code is required")
	}
	return req, nil
}

func displayName(req SignupRequest) string {
	if req.FullName != "" {
		return req.FullName
	}
	return req.Email
}

func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func signupOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.SignupCreated
	case errors.Is(err, ErrRollbackFailure):
		return metrics.SignupRollbackFail
	case errors.Is(err, ErrValidation):
		return metrics.SignupValidation
	case errors.Is(err, ErrAuthCreate):
		return metrics.SignupAuthCreate
	case errors.Is(err, ErrConflict):
		return metrics.SignupConflict
	case errors.Is(err, ErrInvalidInvite):
		return metrics.SignupInvalidInvite
	default:
		return metrics.SignupRolledBack
	}
}
