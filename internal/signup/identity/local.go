package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/notify"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
	"github.com/google/uuid"
)

const (
	// SessionAudience is the audience of sessions minted by Local.
	SessionAudience = "authenticated"

	confirmAudience = "email_confirmation"
	confirmTTL      = 24 * time.Hour
)

type LocalConfig struct {
	Store       store.Store
	Keys        *jwtx.SessionKeys
	Issuer      string
	SessionTTL  time.Duration
	Provisioner Provisioner
	Notifier    *notify.FireAndForget
	AppURL      string
}

// Local is a store-backed identity provider. Identities live in the same
// database as profiles, so provisioning shares the identity's transaction.
type Local struct {
	store       store.Store
	keys        *jwtx.SessionKeys
	confirm     jwtx.Verifier
	issuer      string
	ttl         time.Duration
	provisioner Provisioner
	notifier    *notify.FireAndForget
	appURL      string
	now         func() time.Time
}

func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.Store == nil || cfg.Keys == nil {
		return nil, errors.New("identity: local provider needs a store and session keys")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = jwtx.DefaultSessionTTL
	}
	if cfg.Provisioner == nil {
		cfg.Provisioner = StoreProvisioner{}
	}
	return &Local{
		store:       cfg.Store,
		keys:        cfg.Keys,
		confirm:     jwtx.NewCommonEdDSA(cfg.Keys.KeySet, cfg.Issuer, []string{confirmAudience}),
		issuer:      cfg.Issuer,
		ttl:         cfg.SessionTTL,
		provisioner: cfg.Provisioner,
		notifier:    cfg.Notifier,
		appURL:      strings.TrimRight(cfg.AppURL, "/"),
		now:         time.Now,
	}, nil
}

// Verifier validates sessions minted by TokenExchange.
func (l *Local) Verifier() jwtx.Verifier { return l.keys.Verifier }

// JWKS publishes the session signing key.
func (l *Local) JWKS() jwtx.JWKS { return l.keys.KeySet.PublicJWKS() }

func (l *Local) Create(ctx context.Context, req CreateRequest) (string, error) {
	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := l.now().UTC()
	id := domain.Identity{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Metadata:     req.Metadata,
		CreatedAt:    now,
	}
	if req.EmailConfirm {
		id.EmailConfirmedAt = &now
	}

	err = l.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Identities().CreateIdentity(ctx, id); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return l.provisioner.Provision(ctx, tx, id)
	})
	if err != nil {
		return "", err
	}
	return id.ID, nil
}

func (l *Local) Delete(ctx context.Context, id string) error {
	return l.store.WithTx(ctx, func(tx store.Tx) error {
		if err := l.provisioner.Deprovision(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Identities().DeleteIdentity(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return nil
	})
}

func (l *Local) TokenExchange(ctx context.Context, email, password string) (domain.Session, error) {
	id, err := l.store.Identities().GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so unknown emails are not distinguishable.
			_, _ = cryptox.HashPassword(password)
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	if err := cryptox.VerifyPassword(password, id.PasswordHash); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}
	if id.EmailConfirmedAt == nil {
		return domain.Session{}, ErrEmailNotConfirmed
	}

	now := l.now().UTC()
	claims := jwtx.NewSessionClaims(
		id.ID,
		idx.New().String(),
		id.Email,
		id.Metadata.Map(),
		l.ttl,
		l.issuer,
		[]string{SessionAudience},
		now,
	)
	token, err := l.keys.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign session: %w", err)
	}

	return domain.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(l.ttl.Seconds()),
		ExpiresAt:   now.Add(l.ttl),
		UserID:      id.ID,
	}, nil
}

// SendVerification mails a signed confirmation link. Already confirmed
// identities are left alone.
func (l *Local) SendVerification(ctx context.Context, email string) error {
	id, err := l.store.Identities().GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if id.EmailConfirmedAt != nil {
		return nil
	}

	token, err := l.confirmationToken(id)
	if err != nil {
		return err
	}

	l.notifier.Send(ctx, id.Email, notify.KindSignupConfirmation, map[string]string{
		"full_name": id.Metadata.FullName,
		"link":      l.appURL + "/confirm?token=" + url.QueryEscape(token),
	})
	return nil
}

func (l *Local) confirmationToken(id domain.Identity) (string, error) {
	claims := jwtx.NewSessionClaims(
		id.ID, "", id.Email, nil, confirmTTL, l.issuer, []string{confirmAudience}, l.now().UTC(),
	)
	claims.Role = ""
	return l.keys.Signer.Sign(claims)
}

// ConfirmEmail redeems a confirmation token and returns the identity id.
func (l *Local) ConfirmEmail(ctx context.Context, token string) (string, error) {
	claims, err := l.confirm.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Debug("confirmation token rejected", slog.Any("error", err))
		return "", ErrInvalidToken
	}

	userID := claims.Subject
	err = l.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Identities().ConfirmIdentityEmail(ctx, userID, l.now()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Profiles().SetEmailConfirmed(ctx, userID, true); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}
