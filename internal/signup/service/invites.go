package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/metrics"
	"github.com/aussiebroadwan/hubsignup/internal/signup/notify"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
	"github.com/google/uuid"
)

const (
	inviteCodeAttempts = 5

	defaultListLimit = 50
	maxListLimit     = 200
)

// InviteCodeRegistry owns the lifecycle of single-use invite codes.
type InviteCodeRegistry struct {
	Store    store.Store
	Hubs     *HubContextResolver
	Notifier *notify.FireAndForget
	Metrics  *metrics.Metrics

	// AppURL is the public frontend base used in invite links.
	AppURL string

	// DefaultTTL applies when IssueRequest.TTL is zero.
	DefaultTTL time.Duration

	now func() time.Time
}

func (r *InviteCodeRegistry) clock() time.Time {
	if r.now != nil {
		return r.now().UTC()
	}
	return time.Now().UTC()
}

type IssueRequest struct {
	CreatorID    string
	AccountType  domain.AccountType
	InvitedEmail string
	HubID        string
	TTL          time.Duration
}

// InviteValidation is the public view of a code. Invalid codes carry no
// detail so callers cannot tell unknown, expired and used codes apart.
type InviteValidation struct {
	Valid  bool
	Invite *domain.InviteCode
}

// ConsumeResult is returned by a winning Consume.
type ConsumeResult struct {
	Invite       domain.InviteCode
	AccountType  domain.AccountType
	CreatorHubID string
}

// Issue creates a new invite code.
func (r *InviteCodeRegistry) Issue(ctx context.Context, req IssueRequest) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	accountType, err := domain.ParseAccountType(string(req.AccountType))
	if err != nil {
		return domain.InviteCode{}, validationError("account_type must be business or organization")
	}
	email := strings.TrimSpace(req.InvitedEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.InviteCode{}, validationError("invited_email is not a valid address")
		}
	}
	ttl := req.TTL
	if ttl == 0 {
		ttl = r.DefaultTTL
	}
	if ttl == 0 {
		ttl = domain.DefaultInviteTTL
	}
	if ttl < 0 || ttl > domain.MaxInviteTTL {
		return domain.InviteCode{}, validationError("ttl must be between 0 and %s", domain.MaxInviteTTL)
	}

	// 2. Authorize the creator.
	creator, err := r.Hubs.Creator(ctx, req.CreatorID)
	if err != nil {
		log.Error("failed to load creator roles", slog.Any("error", err))
		return domain.InviteCode{}, err
	}
	if !creator.Roles.CanIssueInvites() {
		log.Warn("invite issue denied", slog.String("creator_id", req.CreatorID))
		return domain.InviteCode{}, ErrUnauthorized
	}
	if accountType == domain.AccountOrganization && !creator.SuperAdmin {
		log.Warn("organization invite denied for non super_admin",
			slog.String("creator_id", req.CreatorID),
		)
		return domain.InviteCode{}, ErrUnauthorized
	}

	// 3. Scope the invite. Only a super_admin may name a hub; everyone else
	// gets their own admin hub whatever they asked for.
	hubID := creator.HubID
	if creator.SuperAdmin {
		hubID = strings.TrimSpace(req.HubID)
		if hubID != "" {
			if _, err := uuid.Parse(hubID); err != nil {
				return domain.InviteCode{}, validationError("hub_id is not a valid id")
			}
		}
	} else if req.HubID != "" && req.HubID != hubID {
		log.Info("client supplied hub ignored",
			slog.String("creator_id", req.CreatorID),
			slog.String("requested_hub_id", req.HubID),
			slog.String("hub_id", hubID),
		)
	}

	// 4. Generate and store, retrying on code collisions.
	now := r.clock()
	invite := domain.InviteCode{
		InvitedEmail: email,
		AccountType:  accountType,
		HubID:        hubID,
		CreatedBy:    req.CreatorID,
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
	}
	for attempt := 1; ; attempt++ {
		code, err := cryptox.GenerateInviteCode(cryptox.InviteCodeLength)
		if err != nil {
			log.Error("failed to generate invite code", slog.Any("error", err))
			return domain.InviteCode{}, err
		}
		invite.ID = idx.New().String()
		invite.Code = code

		err = r.Store.Invites().CreateInvite(ctx, invite)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrAlreadyExists) || attempt == inviteCodeAttempts {
			log.Error("failed to create invite", slog.Int("attempt", attempt), slog.Any("error", err))
			return domain.InviteCode{}, err
		}
	}

	r.Metrics.InviteIssued(string(accountType))
	log.Info("invite issued",
		slog.String("invite_id", invite.ID),
		slog.String("creator_id", invite.CreatedBy),
		slog.String("account_type", string(invite.AccountType)),
		slog.String("hub_id", invite.HubID),
		slog.Time("expires_at", invite.ExpiresAt),
	)

	// 5. Tell the invitee.
	if invite.InvitedEmail != "" {
		r.notifyInvite(ctx, invite)
	}
	return invite, nil
}

// Validate is the public, read-only check of a code.
func (r *InviteCodeRegistry) Validate(ctx context.Context, code string) (InviteValidation, error) {
	code = cryptox.NormalizeInviteCode(code)
	if code == "" {
		return InviteValidation{}, nil
	}

	invite, err := r.Store.Invites().GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InviteValidation{}, nil
		}
		slogx.FromContext(ctx).Error("failed to look up invite", slog.Any("error", err))
		return InviteValidation{}, err
	}
	if !invite.Usable(r.clock()) {
		return InviteValidation{}, nil
	}
	return InviteValidation{Valid: true, Invite: &invite}, nil
}

// Consume marks the code used by userID with a compare-and-set. The
// requester must be the user or an admin. A lost race yields ErrConflict;
// an expired or unknown code additionally matches ErrInvalidInvite.
func (r *InviteCodeRegistry) Consume(ctx context.Context, code, userID, requesterID string) (ConsumeResult, error) {
	log := slogx.FromContext(ctx)
	code = cryptox.NormalizeInviteCode(code)
	if code == "" || userID == "" {
		return ConsumeResult{}, validationError("code and user_id are required")
	}

	if requesterID != userID {
		roles, err := r.Store.Roles().ListRolesByUser(ctx, requesterID)
		if err != nil {
			log.Error("failed to load requester roles", slog.Any("error", err))
			return ConsumeResult{}, err
		}
		if !roles.IsPrivileged() {
			log.Warn("invite consume denied",
				slog.String("requester_id", requesterID),
				slog.String("user_id", userID),
			)
			return ConsumeResult{}, ErrUnauthorized
		}
	}

	now := r.clock()
	invite, err := r.Store.Invites().ConsumeInvite(ctx, code, userID, now)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to consume invite", slog.Any("error", err))
			return ConsumeResult{}, err
		}
		return ConsumeResult{}, r.consumeMiss(ctx, code, now)
	}
	r.Metrics.InviteConsumed(metrics.ConsumeOK)

	res := ConsumeResult{Invite: invite, AccountType: invite.AccountType}
	if r.Hubs != nil {
		hub, err := r.Hubs.Resolve(ctx, invite.CreatedBy)
		if err != nil {
			log.Warn("failed to resolve creator hub", slog.Any("error", err))
		}
		res.CreatorHubID = hub
	}

	log.Info("invite consumed",
		slog.String("invite_id", invite.ID),
		slog.String("user_id", userID),
	)
	return res, nil
}

// consumeMiss explains a compare-and-set that matched no row.
func (r *InviteCodeRegistry) consumeMiss(ctx context.Context, code string, now time.Time) error {
	invite, err := r.Store.Invites().GetInviteByCode(ctx, code)
	switch {
	case err == nil && invite.Used():
		r.Metrics.InviteConsumed(metrics.ConsumeConflict)
		slogx.FromContext(ctx).Warn("invite consume lost race",
			slog.String("invite_id", invite.ID),
			slog.String("used_by", invite.UsedBy),
		)
		return ErrConflict
	case err == nil, errors.Is(err, store.ErrNotFound):
		r.Metrics.InviteConsumed(metrics.ConsumeExpired)
		return fmt.Errorf("%w: %w", ErrConflict, ErrInvalidInvite)
	default:
		return err
	}
}

// List returns invites visible to the requester, newest first. A
// super_admin sees the given hub, or hub-less invites when hubID is empty.
// Hub admins and managers see their own hubs only.
func (r *InviteCodeRegistry) List(ctx context.Context, requesterID, hubID string, limit, offset int) ([]domain.InviteCode, error) {
	roles, err := r.Store.Roles().ListRolesByUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	filter := domain.InviteFilter{Limit: limit, Offset: max(offset, 0)}

	switch {
	case roles.IsSuperAdmin():
		if hubID != "" {
			filter.HubIDs = []string{hubID}
		} else {
			filter.OnlyGlobal = true
		}
	default:
		managed := roles.ManagedHubs()
		if len(managed) == 0 {
			return nil, ErrUnauthorized
		}
		filter.HubIDs = managed
		if hubID != "" {
			if !roles.ManagesHub(hubID) {
				return []domain.InviteCode{}, nil
			}
			filter.HubIDs = []string{hubID}
		}
	}

	return r.Store.Invites().ListInvites(ctx, filter)
}

// Delete removes an invite the requester is allowed to manage.
func (r *InviteCodeRegistry) Delete(ctx context.Context, inviteID, requesterID string) error {
	log := slogx.FromContext(ctx)

	invite, err := r.Store.Invites().GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := r.authorizeManage(ctx, invite, requesterID); err != nil {
		return err
	}

	if err := r.Store.Invites().DeleteInvite(ctx, inviteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		log.Error("failed to delete invite", slog.Any("error", err))
		return err
	}
	log.Info("invite deleted",
		slog.String("invite_id", inviteID),
		slog.String("requester_id", requesterID),
	)
	return nil
}

// Send re-dispatches the invite notification, looked up by code or, when
// code is empty, the newest invite addressed to email.
func (r *InviteCodeRegistry) Send(ctx context.Context, requesterID, code, email string) (domain.InviteCode, error) {
	var (
		invite domain.InviteCode
		err    error
	)
	switch {
	case strings.TrimSpace(code) != "":
		invite, err = r.Store.Invites().GetInviteByCode(ctx, cryptox.NormalizeInviteCode(code))
	case strings.TrimSpace(email) != "":
		invite, err = r.Store.Invites().GetLatestInviteByEmail(ctx, strings.TrimSpace(email))
	default:
		return domain.InviteCode{}, validationError("code or email is required")
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.InviteCode{}, ErrNotFound
		}
		return domain.InviteCode{}, err
	}

	if err := r.authorizeManage(ctx, invite, requesterID); err != nil {
		return domain.InviteCode{}, err
	}
	if invite.InvitedEmail == "" {
		return domain.InviteCode{}, validationError("invite has no invited email")
	}
	if !invite.Usable(r.clock()) {
		return domain.InviteCode{}, ErrInvalidInvite
	}

	r.notifyInvite(ctx, invite)
	return invite, nil
}

func (r *InviteCodeRegistry) authorizeManage(ctx context.Context, invite domain.InviteCode, requesterID string) error {
	roles, err := r.Store.Roles().ListRolesByUser(ctx, requesterID)
	if err != nil {
		return err
	}
	switch {
	case roles.IsSuperAdmin():
		return nil
	case invite.HubID != "" && roles.ManagesHub(invite.HubID):
		return nil
	case invite.HubID == "" && invite.CreatedBy == requesterID && roles.CanIssueInvites():
		return nil
	}
	slogx.FromContext(ctx).Warn("invite management denied",
		slog.String("invite_id", invite.ID),
		slog.String("requester_id", requesterID),
	)
	return ErrUnauthorized
}

func (r *InviteCodeRegistry) notifyInvite(ctx context.Context, invite domain.InviteCode) {
	q := url.Values{}
	q.Set("code", invite.Code)
	q.Set("email", invite.InvitedEmail)

	r.Notifier.Send(ctx, invite.InvitedEmail, notify.KindInvite, map[string]string{
		"account_type": string(invite.AccountType),
		"code":         invite.Code,
		"expires_at":   invite.ExpiresAt.Format(time.RFC1123),
		"link":         strings.TrimRight(r.AppURL, "/") + "/signup?" + q.Encode(),
	})
}
