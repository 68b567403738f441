package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// Bootstrap seeds an empty deployment with its first super_admin.
type Bootstrap struct {
	Store    store.Store
	Identity identity.Provider
	Token    string // pre-configured bootstrap token; empty disables bootstrap
}

func (b *Bootstrap) IsBootstrapped(ctx context.Context) (bool, error) {
	n, err := b.Store.Roles().CountRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *Bootstrap) Run(ctx context.Context, token string, req domain.BootstrapData) (domain.BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate provided token.
	if b.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(b.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.BootstrapResult{}, ErrBootstrapUnauthorized
	}

	// 2. Check if already bootstrapped.
	done, err := b.IsBootstrapped(ctx)
	if err != nil {
		return domain.BootstrapResult{}, err
	}
	if done {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.BootstrapResult{}, ErrBootstrapAlready
	}

	// 3. Validate input, generating a password when none was given.
	req.Email = strings.TrimSpace(req.Email)
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return domain.BootstrapResult{}, validationError("email is not a valid address")
	}
	var res domain.BootstrapResult
	if req.Password == "" {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			return domain.BootstrapResult{}, err
		}
		req.Password = pw
		res.GeneratedPassword = pw
	}

	// 4. Create the identity, confirmed.
	userID, err := b.Identity.Create(ctx, identity.CreateRequest{
		Email:    req.Email,
		Password: req.Password,
		Metadata: domain.IdentityMetadata{
			FullName:    strings.TrimSpace(req.FullName),
			AccountType: domain.AccountOrganization,
		},
		EmailConfirm: true,
	})
	if err != nil {
		l.Error("failed to create bootstrap identity", slog.Any("error", err))
		return domain.BootstrapResult{}, fmt.Errorf("%w: %w", ErrAuthCreate, err)
	}
	res.UserID = userID

	// 5. Grant super_admin and seed plans in one transaction.
	err = b.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Roles().CountRole(ctx, domain.RoleSuperAdmin)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBootstrapAlready
		}
		if _, err := mutateRole(ctx, tx, domain.RoleActionAdd, SystemActor, userID, domain.SuperAdmin(), "bootstrap"); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, name := range req.Plans {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			plan := domain.Plan{ID: idx.New().String(), Name: name, Active: true, CreatedAt: now}
			if err := tx.Plans().CreatePlan(ctx, plan); err != nil {
				return fmt.Errorf("create plan %q: %w", name, err)
			}
			res.PlanIDs = append(res.PlanIDs, plan.ID)
		}
		return nil
	})
	if err != nil {
		if delErr := b.Identity.Delete(context.WithoutCancel(ctx), userID); delErr != nil {
			slogx.Critical(ctx, "bootstrap identity left behind",
				slog.String("user_id", userID),
				slog.Any("error", delErr),
			)
		}
		if !errors.Is(err, ErrBootstrapAlready) {
			l.Error("bootstrap failed", slog.Any("error", err))
		}
		return domain.BootstrapResult{}, err
	}

	l.Info("successfully bootstrapped system",
		slog.String("user_id", userID),
		slog.Int("plans", len(res.PlanIDs)),
	)
	return res, nil
}
