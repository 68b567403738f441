package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

// PasswordExchanger is satisfied by every identity.Provider.
type PasswordExchanger interface {
	TokenExchange(ctx context.Context, email, password string) (domain.Session, error)
}

// EmailConfirmer redeems email confirmation tokens.
type EmailConfirmer interface {
	ConfirmEmail(ctx context.Context, token string) (string, error)
}

type TokenHandler struct {
	Passwords PasswordExchanger
}

// ServeHTTP godoc
//
//	@Summary		Password token exchange
//	@Description	Exchanges email and password for a session. Used by operators to obtain bearer tokens.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupsdk.TokenRequest	true	"Credentials"
//	@Success		200		{object}	signupsdk.TokenResponse
//	@Failure		400		{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		401		{object}	signupsdk.ErrorResponse	"UNAUTHENTICATED"
//	@Failure		403		{object}	signupsdk.ErrorResponse	"UNAUTHORIZED: email not confirmed"
//	@Router			/v1/auth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req signupsdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, "email and password are required")
		return
	}

	sess, err := h.Passwords.TokenExchange(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, signupsdk.CodeUnauthenticated, "Invalid email or password")
		case errors.Is(err, identity.ErrEmailNotConfirmed):
			httpx.WriteError(w, http.StatusForbidden, signupsdk.CodeUnauthorized, "Email address has not been confirmed")
		default:
			log.Error("token exchange failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, signupsdk.CodeInternal, msgInternal)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(sess))
}

type ConfirmHandler struct {
	Confirmer EmailConfirmer
}

// ServeHTTP godoc
//
//	@Summary		Confirm an email address
//	@Description	Redeems the token from the signup confirmation email.
//	@Tags			Auth
//	@Produce		json
//	@Param			token	query		string	true	"Confirmation token"
//	@Success		200		{object}	signupsdk.ConfirmResponse
//	@Failure		400		{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR: invalid or expired token"
//	@Failure		404		{object}	signupsdk.ErrorResponse	"NOT_FOUND"
//	@Router			/v1/auth/confirm [get].
func (h *ConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Confirmer.ConfirmEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidToken):
			httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, "Invalid or expired confirmation token")
		case errors.Is(err, identity.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, signupsdk.CodeNotFound, msgNotFound)
		default:
			slogx.FromContext(r.Context()).Error("email confirmation failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, signupsdk.CodeInternal, msgInternal)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, signupsdk.ConfirmResponse{UserID: userID, Confirmed: true})
}
